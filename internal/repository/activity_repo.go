package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mindwell-app/mindwell/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActivityRepository 活动台账仓储（append-only）
type ActivityRepository struct {
	db       *gorm.DB
	accounts *AccountRepository
}

// NewActivityRepository 创建仓储
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db, accounts: NewAccountRepository(db)}
}

// AppendResult 一次入账的结果
type AppendResult struct {
	EventID  int64
	Applied  bool    // false 表示 dedup_key 已存在（重试重放），未产生任何副作用
	NewScore float64 // Applied 时为入账后的综合积分
}

// AppendWithScore 追加事件并应用积分增量，两者是同一事务：
// 事件落不下去就不会有增量，增量失败事件回滚。
// dedup_key 冲突视为重放，整个单元跳过（Applied=false）。
func (r *ActivityRepository) AppendWithScore(ctx context.Context, event *schema.ActivityEvent, delta float64) (AppendResult, error) {
	if event == nil {
		return AppendResult{}, fmt.Errorf("event 不能为空")
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}

	var out AppendResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedup_key"}},
			DoNothing: true,
		}).Create(event)
		if res.Error != nil {
			return fmt.Errorf("追加活动事件失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// 同一 dedup_key 已入账过，安全重放
			slog.Debug("活动事件重放，跳过", "account", event.AccountID, "dedup_key", event.DedupKey)
			return nil
		}

		score, err := r.accounts.addScoreDB(tx, event.AccountID, delta)
		if err != nil {
			return err
		}

		out = AppendResult{EventID: event.ID, Applied: true, NewScore: score}
		return nil
	})
	if err != nil {
		return AppendResult{}, err
	}
	return out, nil
}

// KindCount 某类事件的计数
type KindCount struct {
	Kind  string `json:"kind"`
	Count int64  `json:"count"`
}

// CountByKind 按事件类型统计某账号的全量计数（统计快照的数据源）
func (r *ActivityRepository) CountByKind(ctx context.Context, accountID string) (map[string]int64, error) {
	var rows []KindCount
	err := r.db.WithContext(ctx).
		Model(&schema.ActivityEvent{}).
		Select("kind, COUNT(*) as count").
		Where("account_id = ?", accountID).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("统计活动事件失败: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Kind] = row.Count
	}
	return counts, nil
}

// GetByTimeRange 按时间范围查询某账号的事件
func (r *ActivityRepository) GetByTimeRange(ctx context.Context, accountID string, startTime, endTime int64) ([]schema.ActivityEvent, error) {
	var events []schema.ActivityEvent
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND timestamp >= ? AND timestamp <= ?", accountID, startTime, endTime).
		Order("timestamp ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("查询活动事件失败: %w", err)
	}
	return events, nil
}

// GetByDate 按 UTC 日历日查询某账号的事件
func (r *ActivityRepository) GetByDate(ctx context.Context, accountID, date string) ([]schema.ActivityEvent, error) {
	startTime, endTime, err := DayRangeUTC(date)
	if err != nil {
		return nil, err
	}
	return r.GetByTimeRange(ctx, accountID, startTime, endTime)
}

// GetRecent 获取某账号最近的事件
func (r *ActivityRepository) GetRecent(ctx context.Context, accountID string, limit int) ([]schema.ActivityEvent, error) {
	var events []schema.ActivityEvent
	query := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("查询活动事件失败: %w", err)
	}
	return events, nil
}

// Count 统计事件总数
func (r *ActivityRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&schema.ActivityEvent{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计活动事件失败: %w", err)
	}
	return count, nil
}
