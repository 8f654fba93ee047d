package dto

// ========== HTTP 请求/响应契约 ==========

// RecordActivityRequest 活动入账请求
type RecordActivityRequest struct {
	AccountID string         `json:"account_id"`
	Kind      string         `json:"kind"`
	DedupKey  string         `json:"dedup_key,omitempty"` // 重试必须带原 key
	Points    *float64       `json:"points,omitempty"`    // 覆盖该类型的默认分值
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// RecordActivityResponse 入账结果
type RecordActivityResponse struct {
	EventID       int64   `json:"event_id"`
	Applied       bool    `json:"applied"`
	Points        float64 `json:"points"`
	NewScore      float64 `json:"new_score"`
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`
}

// StatisticsResponse 统计快照
type StatisticsResponse struct {
	AccountID     string           `json:"account_id"`
	Counters      map[string]int64 `json:"counters"`
	Score         float64          `json:"score"`
	Experience    int64            `json:"experience"`
	Coins         int64            `json:"coins"`
	CurrentStreak int              `json:"current_streak"`
	LongestStreak int              `json:"longest_streak"`
}

// ActivityDTO 台账事件
type ActivityDTO struct {
	ID            int64   `json:"id"`
	Kind          string  `json:"kind"`
	Points        float64 `json:"points"`
	Timestamp     int64   `json:"timestamp"`
	RelatedPostID int64   `json:"related_post_id,omitempty"`
	Source        string  `json:"source,omitempty"`
}

// BadgeDTO 徽章定义
type BadgeDTO struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Layer       string `json:"layer,omitempty"`
	Counter     string `json:"counter"`
	Threshold   int64  `json:"threshold"`
}

// BadgeAwardDTO 徽章获得记录
type BadgeAwardDTO struct {
	BadgeKey string `json:"badge_key"`
	EarnedAt int64  `json:"earned_at"`
}

// StabilityRequest 稳定性计算请求
type StabilityRequest struct {
	AccountID string  `json:"account_id,omitempty"` // persist 时必填
	Resources float64 `json:"resources"`
	Local     float64 `json:"local"`
	Global    float64 `json:"global"`
	Coupling  float64 `json:"coupling"`
	Agreement float64 `json:"agreement"`
	Scaling   float64 `json:"scaling"`
	Persist   bool    `json:"persist,omitempty"`
}

// StabilityResponse 稳定性计算结果
// valid=false 时 score 缺省，前端展示"该输入下公式无定义"而不是数字。
type StabilityResponse struct {
	Valid bool     `json:"valid"`
	Score *float64 `json:"score,omitempty"`
}
