package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mindwell-app/mindwell/internal/schema"
	"gorm.io/gorm"
)

// StabilityRepository 稳定性记录仓储（append-only）
type StabilityRepository struct {
	db *gorm.DB
}

// NewStabilityRepository 创建仓储
func NewStabilityRepository(db *gorm.DB) *StabilityRepository {
	return &StabilityRepository{db: db}
}

// Create 写入一条稳定性记录
func (r *StabilityRepository) Create(ctx context.Context, record *schema.StabilityRecord) error {
	if record.Timestamp == 0 {
		record.Timestamp = time.Now().UnixMilli()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("写入稳定性记录失败: %w", err)
	}
	return nil
}

// GetRecent 获取某账号最近的稳定性记录
func (r *StabilityRepository) GetRecent(ctx context.Context, accountID string, limit int) ([]schema.StabilityRecord, error) {
	var records []schema.StabilityRecord
	query := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("查询稳定性记录失败: %w", err)
	}
	return records, nil
}
