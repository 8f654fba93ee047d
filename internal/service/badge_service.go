package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mindwell-app/mindwell/internal/eventbus"
	"github.com/mindwell-app/mindwell/internal/schema"
)

// StatisticsProvider 徽章判定需要的统计快照来源
type StatisticsProvider interface {
	GetStatistics(ctx context.Context, accountID string) (*Snapshot, error)
}

// BadgeService 徽章规则引擎
// 核心正确性：每个 (账号, 徽章) 最多发放一次，不管评估被调用多少次、
// 多少个请求并发评估。防线在存储层唯一索引，这里只负责把冲突当成功吞掉。
type BadgeService struct {
	badgeRepo BadgeRepository
	stats     StatisticsProvider
	hub       *eventbus.Hub
}

// NewBadgeService 创建服务
func NewBadgeService(badgeRepo BadgeRepository, stats StatisticsProvider, hub *eventbus.Hub) *BadgeService {
	return &BadgeService{badgeRepo: badgeRepo, stats: stats, hub: hub}
}

// Evaluate 评估某账号的全部未获得徽章，返回本次新发放的记录
// 单条发放失败不阻断同一次调用里其它徽章的发放；
// 唯一索引冲突按"已获得"处理并从返回值里剔除。
// 其它错误必须上抛：已发放的成果和首个非冲突错误一起返回，两边都不丢。
func (s *BadgeService) Evaluate(ctx context.Context, accountID string) ([]schema.BadgeAward, error) {
	if accountID == "" {
		return nil, ErrAccountRequired
	}

	catalog, err := s.badgeRepo.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	awarded, err := s.badgeRepo.GetAwardedKeys(ctx, accountID)
	if err != nil {
		return nil, err
	}
	snap, err := s.stats.GetStatistics(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var earned []schema.BadgeAward
	var firstErr error
	for _, def := range catalog {
		if _, ok := awarded[def.Key]; ok {
			continue
		}
		if snap.Counters[def.Counter] < def.Threshold {
			continue
		}

		award, created, err := s.badgeRepo.CreateAward(ctx, accountID, def.Key)
		if err != nil {
			// 非冲突类错误：不吞，但也不阻断剩余徽章的尝试
			slog.Error("发放徽章失败", "account", accountID, "badge", def.Key, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !created {
			// 并发评估先到一步，视为已获得
			continue
		}

		earned = append(earned, *award)
		s.hub.Publish(eventbus.NewBadgeEarned(accountID, def.Key, def.Name))
		slog.Info("徽章发放", "account", accountID, "badge", def.Key)
	}

	return earned, firstErr
}

// GetCatalog 获取徽章目录
func (s *BadgeService) GetCatalog(ctx context.Context) ([]schema.BadgeDefinition, error) {
	return s.badgeRepo.GetCatalog(ctx)
}

// ListAwards 获取某账号的获得记录
func (s *BadgeService) ListAwards(ctx context.Context, accountID string) ([]schema.BadgeAward, error) {
	if accountID == "" {
		return nil, ErrAccountRequired
	}
	return s.badgeRepo.ListAwards(ctx, accountID)
}

// ReloadCatalog 重新 seed 徽章目录（配置热更新入口）
func (s *BadgeService) ReloadCatalog(ctx context.Context, defs []schema.BadgeDefinition) error {
	if len(defs) == 0 {
		return errors.New("徽章目录不能为空")
	}
	if err := s.badgeRepo.SeedCatalog(ctx, defs); err != nil {
		return err
	}
	slog.Info("徽章目录已更新", "count", len(defs))
	return nil
}
