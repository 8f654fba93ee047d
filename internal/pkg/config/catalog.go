package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mindwell-app/mindwell/internal/schema"
	"go.yaml.in/yaml/v3"
)

// CatalogEntry 徽章目录文件里的一条定义
type CatalogEntry struct {
	Key         string `yaml:"key"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Layer       string `yaml:"layer"`
	Counter     string `yaml:"counter"`
	Threshold   int64  `yaml:"threshold"`
}

type catalogFile struct {
	Badges []CatalogEntry `yaml:"badges"`
}

// LoadCatalog 读取徽章目录文件并转成 schema 定义
// 目录是产品配置：key/counter 为空或阈值非正的条目直接判错，
// 否则一条配错的规则会默默地永远发不出去。
func LoadCatalog(path string) ([]schema.BadgeDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取徽章目录失败: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("解析徽章目录失败: %w", err)
	}
	if len(file.Badges) == 0 {
		return nil, fmt.Errorf("徽章目录为空: %s", path)
	}

	defs := make([]schema.BadgeDefinition, 0, len(file.Badges))
	seen := make(map[string]struct{}, len(file.Badges))
	for i, entry := range file.Badges {
		key := strings.TrimSpace(entry.Key)
		counter := strings.TrimSpace(entry.Counter)
		if key == "" || counter == "" {
			return nil, fmt.Errorf("徽章目录第 %d 条缺少 key 或 counter", i+1)
		}
		if entry.Threshold <= 0 {
			return nil, fmt.Errorf("徽章 %s 的阈值必须为正: %d", key, entry.Threshold)
		}
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("徽章 key 重复: %s", key)
		}
		seen[key] = struct{}{}

		defs = append(defs, schema.BadgeDefinition{
			Key:         key,
			Name:        entry.Name,
			Description: entry.Description,
			Icon:        entry.Icon,
			Layer:       entry.Layer,
			Counter:     counter,
			Threshold:   entry.Threshold,
		})
	}
	return defs, nil
}
