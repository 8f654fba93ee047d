package schema

import "time"

// 计分事件类型。Points 的具体数值来自配置，不在代码里写死。
const (
	KindPostCreated         = "post_created"
	KindCommentMade         = "comment_made"
	KindChallengeJoined     = "challenge_joined"
	KindChallengeCompleted  = "challenge_completed"
	KindAssessmentCompleted = "assessment_completed"
	KindReactionGiven       = "reaction_given"
	KindReferralCompleted   = "referral_completed"
)

// ActivityEvent 计分活动台账（append-only）
// 所有派生统计（计数器、徽章判定）都从这里重算，事件本身永不修改或删除。
// DedupKey 唯一索引保证同一真实动作重试时不会重复记账。
type ActivityEvent struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID string    `gorm:"size:64;index;not null" json:"account_id"`
	Kind      string    `gorm:"size:32;index;not null" json:"kind"`
	Points    float64   `gorm:"not null" json:"points"` // 本次动作实际入账的分值
	DedupKey  string    `gorm:"size:64;not null;uniqueIndex:uniq_activity_dedup" json:"dedup_key"`
	Metadata  JSONMap   `gorm:"type:text" json:"metadata"` // 关联上下文，如 post_id
	Timestamp int64     `gorm:"index;not null" json:"timestamp"` // Unix ms
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (ActivityEvent) TableName() string {
	return "activity_events"
}

// KnownKind 判断事件类型是否在枚举内
func KnownKind(kind string) bool {
	switch kind {
	case KindPostCreated, KindCommentMade, KindChallengeJoined,
		KindChallengeCompleted, KindAssessmentCompleted,
		KindReactionGiven, KindReferralCompleted:
		return true
	default:
		return false
	}
}
