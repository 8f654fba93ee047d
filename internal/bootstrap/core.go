package bootstrap

import (
	"context"
	"log/slog"
	"os"

	"github.com/mindwell-app/mindwell/internal/eventbus"
	"github.com/mindwell-app/mindwell/internal/pkg/config"
	"github.com/mindwell-app/mindwell/internal/repository"
	"github.com/mindwell-app/mindwell/internal/schema"
	"github.com/mindwell-app/mindwell/internal/service"
)

// Core 持有跨二进制共享的核心依赖
type Core struct {
	Cfg *config.Config
	DB  *repository.Database
	Hub *eventbus.Hub

	Repos struct {
		Account   *repository.AccountRepository
		Activity  *repository.ActivityRepository
		Badge     *repository.BadgeRepository
		Stability *repository.StabilityRepository
	}

	Services struct {
		Progression *service.ProgressionService
		Badges      *service.BadgeService
		Stability   *service.StabilityService
	}
}

// NewCore 构建核心依赖（不启动 HTTP）
func NewCore(cfgPath string) (*Core, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	config.SetupLogger(cfg.App.LogLevel)

	db, err := repository.NewDatabase(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	c := &Core{Cfg: cfg, DB: db, Hub: eventbus.NewHub()}

	// Repos
	c.Repos.Account = repository.NewAccountRepository(db.DB)
	c.Repos.Activity = repository.NewActivityRepository(db.DB)
	c.Repos.Badge = repository.NewBadgeRepository(db.DB)
	c.Repos.Stability = repository.NewStabilityRepository(db.DB)

	// Services
	policy := service.ConfigPointPolicy{
		Points:   cfg.Progression.Points,
		XPRate:   cfg.Progression.XPRate,
		CoinRate: cfg.Progression.CoinRate,
	}
	c.Services.Progression = service.NewProgressionService(c.Repos.Account, c.Repos.Activity, policy, c.Hub)
	c.Services.Badges = service.NewBadgeService(c.Repos.Badge, c.Services.Progression, c.Hub)
	c.Services.Stability = service.NewStabilityService(c.Repos.Stability)

	if !db.SafeMode {
		c.seedCatalog()
	}

	return c, nil
}

// seedCatalog 启动时 seed 徽章目录（文件不存在只告警，目录可后补）
func (c *Core) seedCatalog() {
	path := c.Cfg.Badges.CatalogPath
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		slog.Warn("徽章目录文件不存在，跳过 seed", "path", path)
		return
	}

	defs, err := config.LoadCatalog(path)
	if err != nil {
		slog.Error("加载徽章目录失败", "path", path, "error", err)
		return
	}
	if err := c.Services.Badges.ReloadCatalog(context.Background(), defs); err != nil {
		slog.Error("seed 徽章目录失败", "error", err)
	}
}

// StartCatalogWatch 启动徽章目录热更新监听
func (c *Core) StartCatalogWatch(ctx context.Context) {
	if !c.Cfg.Badges.Watch || c.Cfg.Badges.CatalogPath == "" || c.DB.SafeMode {
		return
	}
	err := config.WatchCatalog(ctx, c.Cfg.Badges.CatalogPath, func(defs []schema.BadgeDefinition) {
		if err := c.Services.Badges.ReloadCatalog(ctx, defs); err != nil {
			slog.Error("热更新徽章目录失败", "error", err)
		}
	})
	if err != nil {
		slog.Warn("启动徽章目录监听失败", "error", err)
	}
}

// Close 释放资源
func (c *Core) Close() {
	if c.DB != nil {
		_ = c.DB.Close()
	}
}
