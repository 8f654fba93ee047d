package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mindwell-app/mindwell/internal/schema"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Progression ProgressionConfig `mapstructure:"progression"`
	Badges      BadgesConfig      `mapstructure:"badges"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig 本地 HTTP 配置
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// ProgressionConfig 进度引擎配置
// 分值表是产品配置，不写死在代码里；未配置的事件类型入账 0 分。
type ProgressionConfig struct {
	Points   map[string]float64 `mapstructure:"points"`
	XPRate   float64            `mapstructure:"xp_rate"`
	CoinRate float64            `mapstructure:"coin_rate"`
}

// BadgesConfig 徽章目录配置
type BadgesConfig struct {
	CatalogPath string `mapstructure:"catalog_path"`
	Watch       bool   `mapstructure:"watch"` // 监听目录文件变更并热更新
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 默认查找路径
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量
	v.SetEnvPrefix("MINDWELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 处理相对路径
	cfg.Storage.DBPath = resolvePath(cfg.Storage.DBPath)
	if cfg.Badges.CatalogPath != "" {
		cfg.Badges.CatalogPath = resolvePath(cfg.Badges.CatalogPath)
	}

	return &cfg, nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "mindwell-progression")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")

	// Server
	v.SetDefault("server.listen_addr", "127.0.0.1:8470")

	// Storage
	v.SetDefault("storage.db_path", "./data/mindwell.db")

	// Progression：默认分值表，产品可整体覆盖
	v.SetDefault("progression.points", map[string]float64{
		schema.KindPostCreated:         10,
		schema.KindCommentMade:         5,
		schema.KindChallengeJoined:     5,
		schema.KindChallengeCompleted:  25,
		schema.KindAssessmentCompleted: 15,
		schema.KindReactionGiven:       1,
		schema.KindReferralCompleted:   50,
	})
	v.SetDefault("progression.xp_rate", 1.0)
	v.SetDefault("progression.coin_rate", 0.1)

	// Badges
	v.SetDefault("badges.catalog_path", "./config/badges.yaml")
	v.SetDefault("badges.watch", true)
}

// resolvePath 解析相对路径为绝对路径
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	// 获取可执行文件目录
	exe, err := os.Executable()
	if err != nil {
		return path
	}

	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, path)
}

// SetupLogger 根据配置设置日志级别
func SetupLogger(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
