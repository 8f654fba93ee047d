package schema

import "time"

// Account 账号进度状态（每个用户一行）
// 数据量级：十万级。只由 Score/Streak 更新链路写入，账号生命周期由外部系统负责。
type Account struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id"`
	Score          float64   `gorm:"default:0" json:"score"`            // 综合积分，只通过原子增量修改，恒 >= 0
	Experience     int64     `gorm:"default:0" json:"experience"`       // 经验值
	Coins          int64     `gorm:"default:0" json:"coins"`            // 金币余额
	CurrentStreak  int       `gorm:"default:0" json:"current_streak"`   // 当前连续活跃天数
	LongestStreak  int       `gorm:"default:0" json:"longest_streak"`   // 历史最长连续天数
	LastActiveDate string    `gorm:"size:10;index" json:"last_active_date"` // UTC 日历日 YYYY-MM-DD，空表示从未活跃
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Account) TableName() string {
	return "accounts"
}
