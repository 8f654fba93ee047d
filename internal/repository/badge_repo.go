package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mindwell-app/mindwell/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BadgeRepository 徽章目录与获得记录仓储
type BadgeRepository struct {
	db *gorm.DB
}

// NewBadgeRepository 创建仓储
func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// SeedCatalog 写入徽章目录（按 key upsert，目录热更新时重复调用是安全的）
func (r *BadgeRepository) SeedCatalog(ctx context.Context, defs []schema.BadgeDefinition) error {
	if len(defs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range defs {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				UpdateAll: true,
			}).Create(&defs[i]).Error; err != nil {
				return fmt.Errorf("写入徽章目录失败: %w", err)
			}
		}
		return nil
	})
}

// GetCatalog 获取全部徽章定义
func (r *BadgeRepository) GetCatalog(ctx context.Context) ([]schema.BadgeDefinition, error) {
	var defs []schema.BadgeDefinition
	err := r.db.WithContext(ctx).Order("threshold ASC, key ASC").Find(&defs).Error
	if err != nil {
		return nil, fmt.Errorf("查询徽章目录失败: %w", err)
	}
	return defs, nil
}

// GetAwardedKeys 获取某账号已获得的徽章 key 集合
func (r *BadgeRepository) GetAwardedKeys(ctx context.Context, accountID string) (map[string]struct{}, error) {
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&schema.BadgeAward{}).
		Where("account_id = ?", accountID).
		Pluck("badge_key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("查询已获得徽章失败: %w", err)
	}

	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set, nil
}

// CreateAward 尝试发放徽章
// (account_id, badge_key) 唯一索引冲突不是错误：返回 created=false 表示已发放过。
// 其它错误原样上抛，调用方不能把它们和冲突混为一谈。
func (r *BadgeRepository) CreateAward(ctx context.Context, accountID, badgeKey string) (*schema.BadgeAward, bool, error) {
	award := schema.BadgeAward{
		AccountID: accountID,
		BadgeKey:  badgeKey,
		EarnedAt:  time.Now().UnixMilli(),
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "badge_key"}},
		DoNothing: true,
	}).Create(&award)
	if res.Error != nil {
		return nil, false, fmt.Errorf("发放徽章失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	return &award, true, nil
}

// ListAwards 获取某账号的全部获得记录
func (r *BadgeRepository) ListAwards(ctx context.Context, accountID string) ([]schema.BadgeAward, error) {
	var awards []schema.BadgeAward
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("earned_at ASC").
		Find(&awards).Error
	if err != nil {
		return nil, fmt.Errorf("查询获得记录失败: %w", err)
	}
	return awards, nil
}
