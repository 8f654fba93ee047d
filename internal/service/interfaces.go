package service

import (
	"context"

	"github.com/mindwell-app/mindwell/internal/repository"
	"github.com/mindwell-app/mindwell/internal/schema"
)

// 仓储依赖的最小接口集合（ISP）

type AccountRepository interface {
	Get(ctx context.Context, id string) (*schema.Account, error)
	Ensure(ctx context.Context, id string) error
	AddScore(ctx context.Context, id string, delta float64) (float64, error)
	AddExperience(ctx context.Context, id string, delta int64) error
	AddCoins(ctx context.Context, id string, delta int64) error
	UpdateStreak(ctx context.Context, id string, current, longest int, lastActiveDate string) error
}

type ActivityRepository interface {
	AppendWithScore(ctx context.Context, event *schema.ActivityEvent, delta float64) (repository.AppendResult, error)
	CountByKind(ctx context.Context, accountID string) (map[string]int64, error)
	GetRecent(ctx context.Context, accountID string, limit int) ([]schema.ActivityEvent, error)
	GetByDate(ctx context.Context, accountID, date string) ([]schema.ActivityEvent, error)
}

type BadgeRepository interface {
	SeedCatalog(ctx context.Context, defs []schema.BadgeDefinition) error
	GetCatalog(ctx context.Context) ([]schema.BadgeDefinition, error)
	GetAwardedKeys(ctx context.Context, accountID string) (map[string]struct{}, error)
	CreateAward(ctx context.Context, accountID, badgeKey string) (*schema.BadgeAward, bool, error)
	ListAwards(ctx context.Context, accountID string) ([]schema.BadgeAward, error)
}

type StabilityRepository interface {
	Create(ctx context.Context, record *schema.StabilityRecord) error
	GetRecent(ctx context.Context, accountID string, limit int) ([]schema.StabilityRecord, error)
}
