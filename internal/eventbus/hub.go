package eventbus

import (
	"context"
	"sync"
	"time"
)

// 进度引擎发布的事件类型。投递是尽力而为的进程内广播，
// 正式的通知触达由外部系统负责。
const (
	TypeScoreUpdated  = "score.updated"
	TypeStreakUpdated = "streak.updated"
	TypeBadgeEarned   = "badge.earned"
)

type Event struct {
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewScoreUpdated 综合积分变化事件
func NewScoreUpdated(accountID string, score float64) Event {
	return Event{Type: TypeScoreUpdated, Data: map[string]any{
		"account_id": accountID,
		"score":      score,
	}}
}

// NewStreakUpdated 连续天数变化事件
func NewStreakUpdated(accountID string, current, longest int) Event {
	return Event{Type: TypeStreakUpdated, Data: map[string]any{
		"account_id":     accountID,
		"current_streak": current,
		"longest_streak": longest,
	}}
}

// NewBadgeEarned 徽章发放事件
func NewBadgeEarned(accountID, badgeKey, badgeName string) Event {
	return Event{Type: TypeBadgeEarned, Data: map[string]any{
		"account_id": accountID,
		"badge_key":  badgeKey,
		"badge_name": badgeName,
	}}
}

type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	if evt.Timestamp == 0 {
		evt.Timestamp = time.Now().UnixMilli()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
			// 慢消费者直接丢弃，避免阻塞入账链路
		}
	}
}

func (h *Hub) Subscribe(ctx context.Context, buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}
