package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mindwell-app/mindwell/internal/schema"
)

// WatchCatalog 监听徽章目录文件，变更后重新加载并回调
// 监听父目录而不是文件本身：编辑器保存多为 rename+create，直接盯文件会丢事件。
func WatchCatalog(ctx context.Context, path string, onReload func([]schema.BadgeDefinition)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				// 保存动作往往触发一串事件，去抖后只加载一次
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, func() {
					defs, err := LoadCatalog(path)
					if err != nil {
						slog.Warn("徽章目录热更新失败，保留旧目录", "path", path, "error", err)
						return
					}
					onReload(defs)
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("徽章目录监听错误", "error", err)
			}
		}
	}()

	slog.Info("徽章目录监听已启动", "path", path)
	return nil
}
