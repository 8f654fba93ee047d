package schema

import "time"

// BadgeDefinition 徽章目录条目
// 数据量级：十级。由配置目录 seed，引擎视角下 append-only。
type BadgeDefinition struct {
	Key         string    `gorm:"primaryKey;size:64" json:"key"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:100" json:"icon"`
	Layer       string    `gorm:"size:50" json:"layer"`               // 可选的产品分层标签
	Counter     string    `gorm:"size:50;not null" json:"counter"`    // 对应统计快照里的计数器名
	Threshold   int64     `gorm:"not null" json:"threshold"`          // 达标阈值
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (BadgeDefinition) TableName() string {
	return "badge_definitions"
}

// BadgeAward 徽章获得记录
// (account_id, badge_key) 唯一索引是 exactly-once 语义的最终防线：
// 并发评估同时插入时只有一条成功，另一条按"已获得"处理。
type BadgeAward struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID string    `gorm:"size:64;not null;uniqueIndex:uniq_badge_award,priority:1" json:"account_id"`
	BadgeKey  string    `gorm:"size:64;not null;uniqueIndex:uniq_badge_award,priority:2" json:"badge_key"`
	EarnedAt  int64     `gorm:"not null" json:"earned_at"` // Unix ms
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (BadgeAward) TableName() string {
	return "badge_awards"
}
