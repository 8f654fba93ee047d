package repository

import (
	"context"
	"fmt"

	"github.com/mindwell-app/mindwell/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository 账号仓储
// 积分/经验/金币只提供原子增量接口，应用层不允许读回再写（会丢更新）。
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建仓储
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Get 按 ID 获取账号，不存在返回 nil
func (r *AccountRepository) Get(ctx context.Context, id string) (*schema.Account, error) {
	var acct schema.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&acct).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("查询账号失败: %w", err)
	}
	return &acct, nil
}

// Ensure 确保账号行存在（幂等，已存在时不做任何修改）
func (r *AccountRepository) Ensure(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&schema.Account{ID: id}).Error
	if err != nil {
		return fmt.Errorf("创建账号失败: %w", err)
	}
	return nil
}

// AddScore 原子应用积分增量并返回新值
// 增量下推到 SQL（score = MAX(score+delta, 0)），并发 +5/+3 永远净 +8。
// MAX 下界保证综合积分不会被负增量打到 0 以下。
func (r *AccountRepository) AddScore(ctx context.Context, id string, delta float64) (float64, error) {
	return r.addScoreDB(r.db.WithContext(ctx), id, delta)
}

func (r *AccountRepository) addScoreDB(db *gorm.DB, id string, delta float64) (float64, error) {
	res := db.Model(&schema.Account{}).
		Where("id = ?", id).
		UpdateColumn("score", gorm.Expr("MAX(score + ?, 0)", delta))
	if res.Error != nil {
		return 0, fmt.Errorf("更新积分失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("账号不存在: %s", id)
	}

	var acct schema.Account
	err := db.Select("score").Where("id = ?", id).Take(&acct).Error
	if err != nil {
		return 0, fmt.Errorf("读取积分失败: %w", err)
	}
	return acct.Score, nil
}

// AddExperience 原子增加经验值
func (r *AccountRepository) AddExperience(ctx context.Context, id string, delta int64) error {
	err := r.db.WithContext(ctx).Model(&schema.Account{}).
		Where("id = ?", id).
		UpdateColumn("experience", gorm.Expr("MAX(experience + ?, 0)", delta)).Error
	if err != nil {
		return fmt.Errorf("更新经验失败: %w", err)
	}
	return nil
}

// AddCoins 原子增加金币
func (r *AccountRepository) AddCoins(ctx context.Context, id string, delta int64) error {
	err := r.db.WithContext(ctx).Model(&schema.Account{}).
		Where("id = ?", id).
		UpdateColumn("coins", gorm.Expr("MAX(coins + ?, 0)", delta)).Error
	if err != nil {
		return fmt.Errorf("更新金币失败: %w", err)
	}
	return nil
}

// UpdateStreak 写回连续天数状态（只更新三列，不触碰积分）
func (r *AccountRepository) UpdateStreak(ctx context.Context, id string, current, longest int, lastActiveDate string) error {
	err := r.db.WithContext(ctx).Model(&schema.Account{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"current_streak":   current,
			"longest_streak":   longest,
			"last_active_date": lastActiveDate,
		}).Error
	if err != nil {
		return fmt.Errorf("更新连续天数失败: %w", err)
	}
	return nil
}

// Count 统计账号数量
func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&schema.Account{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计账号失败: %w", err)
	}
	return count, nil
}
