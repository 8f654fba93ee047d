package schema

import "time"

// StabilityRecord 系统稳定性计算的持久化记录
// 仅在计算结果有效且调用方要求落盘时写入，写入后不可变。
type StabilityRecord struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID string    `gorm:"size:64;index;not null" json:"account_id"`
	Resources float64   `gorm:"not null" json:"resources"`
	Local     float64   `gorm:"not null" json:"local"`
	Global    float64   `gorm:"not null" json:"global"`
	Coupling  float64   `gorm:"not null" json:"coupling"`
	Agreement float64   `gorm:"not null" json:"agreement"`
	Scaling   float64   `gorm:"not null" json:"scaling"`
	Score     float64   `gorm:"not null" json:"score"`
	Timestamp int64     `gorm:"index;not null" json:"timestamp"` // Unix ms
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (StabilityRecord) TableName() string {
	return "stability_records"
}
