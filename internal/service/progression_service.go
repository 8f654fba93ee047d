package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mindwell-app/mindwell/internal/eventbus"
	"github.com/mindwell-app/mindwell/internal/schema"
)

// kindCounter 事件类型 → 统计快照里的计数器名
var kindCounter = map[string]string{
	schema.KindPostCreated:         "posts_created",
	schema.KindCommentMade:         "comments_made",
	schema.KindChallengeJoined:     "challenges_joined",
	schema.KindChallengeCompleted:  "challenges_completed",
	schema.KindAssessmentCompleted: "assessments_completed",
	schema.KindReactionGiven:       "reactions_given",
	schema.KindReferralCompleted:   "referrals_completed",
}

// Snapshot 账号统计快照（派生视图，每次评估现算，不落盘）
type Snapshot struct {
	AccountID     string           `json:"account_id"`
	Counters      map[string]int64 `json:"counters"`
	Score         float64          `json:"score"`
	Experience    int64            `json:"experience"`
	Coins         int64            `json:"coins"`
	CurrentStreak int              `json:"current_streak"`
	LongestStreak int              `json:"longest_streak"`
}

// RecordInput 一次活动入账的输入
type RecordInput struct {
	AccountID string
	Kind      string
	DedupKey  string   // 空则生成；重试同一动作必须带原 key 才能安全重放
	Points    *float64 // 覆盖该类型的默认分值（运营补偿等场景），负值拒绝
	Metadata  schema.JSONMap
}

// RecordResult 入账结果
type RecordResult struct {
	EventID  int64       `json:"event_id"`
	Applied  bool        `json:"applied"` // false：dedup_key 重放，无副作用
	Points   float64     `json:"points"`
	NewScore float64     `json:"new_score"`
	Streak   StreakState `json:"streak"`
}

// ProgressionService 进度引擎的写入口：台账 + 积分 + 连续天数
type ProgressionService struct {
	accountRepo  AccountRepository
	activityRepo ActivityRepository
	policy       PointPolicy
	hub          *eventbus.Hub
	now          func() time.Time // 测试可注入
}

// NewProgressionService 创建服务
func NewProgressionService(accountRepo AccountRepository, activityRepo ActivityRepository, policy PointPolicy, hub *eventbus.Hub) *ProgressionService {
	return &ProgressionService{
		accountRepo:  accountRepo,
		activityRepo: activityRepo,
		policy:       policy,
		hub:          hub,
		now:          time.Now,
	}
}

// RecordActivity 记录一次计分动作：
// 事件追加和积分增量是一个事务单元，增量失败事件不算入账。
// 连续天数按 UTC 日历日在入账后重算，同日重复活跃不刷天数。
// 输入可携带覆盖分值，负值按校验错误拒绝。
func (s *ProgressionService) RecordActivity(ctx context.Context, in RecordInput) (RecordResult, error) {
	if in.AccountID == "" {
		return RecordResult{}, ErrAccountRequired
	}
	points, err := s.policy.PointsFor(in.Kind)
	if err != nil {
		return RecordResult{}, err
	}
	if in.Points != nil {
		if *in.Points < 0 {
			return RecordResult{}, ErrNegativePoints
		}
		points = *in.Points
	}

	if err := s.accountRepo.Ensure(ctx, in.AccountID); err != nil {
		return RecordResult{}, err
	}

	dedupKey := in.DedupKey
	if dedupKey == "" {
		dedupKey = uuid.NewString()
	}

	now := s.now()
	event := &schema.ActivityEvent{
		AccountID: in.AccountID,
		Kind:      in.Kind,
		Points:    points,
		DedupKey:  dedupKey,
		Metadata:  in.Metadata,
		Timestamp: now.UnixMilli(),
	}

	applied, err := s.activityRepo.AppendWithScore(ctx, event, points)
	if err != nil {
		return RecordResult{}, err
	}
	if !applied.Applied {
		return RecordResult{EventID: applied.EventID, Applied: false}, nil
	}

	// 经验与金币随事件入账；失败只告警不回滚，下一次重算可以修复展示值
	if xp := s.policy.ExperienceFor(in.Kind); xp > 0 {
		if err := s.accountRepo.AddExperience(ctx, in.AccountID, xp); err != nil {
			slog.Warn("更新经验失败", "account", in.AccountID, "error", err)
		}
	}
	if coins := s.policy.CoinsForScore(points); coins > 0 {
		if err := s.accountRepo.AddCoins(ctx, in.AccountID, coins); err != nil {
			slog.Warn("更新金币失败", "account", in.AccountID, "error", err)
		}
	}

	streak, err := s.recomputeStreak(ctx, in.AccountID, UTCDate(now))
	if err != nil {
		return RecordResult{}, err
	}

	s.hub.Publish(eventbus.NewScoreUpdated(in.AccountID, applied.NewScore))

	return RecordResult{
		EventID:  applied.EventID,
		Applied:  true,
		Points:   points,
		NewScore: applied.NewScore,
		Streak:   streak,
	}, nil
}

// recomputeStreak 读取账号当前状态，套用纯转移规则后写回
func (s *ProgressionService) recomputeStreak(ctx context.Context, accountID, activityDate string) (StreakState, error) {
	acct, err := s.accountRepo.Get(ctx, accountID)
	if err != nil {
		return StreakState{}, err
	}
	if acct == nil {
		return StreakState{}, ErrAccountRequired
	}

	next := NextStreak(acct.LastActiveDate, activityDate, acct.CurrentStreak, acct.LongestStreak)
	if next.Current == acct.CurrentStreak && next.LastActiveDate == acct.LastActiveDate {
		return next, nil
	}

	if err := s.accountRepo.UpdateStreak(ctx, accountID, next.Current, next.Longest, next.LastActiveDate); err != nil {
		return StreakState{}, err
	}
	if next.Current != acct.CurrentStreak {
		s.hub.Publish(eventbus.NewStreakUpdated(accountID, next.Current, next.Longest))
	}
	return next, nil
}

// GetStatistics 计算账号统计快照
// 计数器每次从台账重算（COUNT + GROUP BY），永远和事件一致，可随时审计重建。
func (s *ProgressionService) GetStatistics(ctx context.Context, accountID string) (*Snapshot, error) {
	if accountID == "" {
		return nil, ErrAccountRequired
	}

	counters := make(map[string]int64, len(kindCounter))
	for _, name := range kindCounter {
		counters[name] = 0
	}

	counts, err := s.activityRepo.CountByKind(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for kind, n := range counts {
		if name, ok := kindCounter[kind]; ok {
			counters[name] = n
		}
	}

	snap := &Snapshot{AccountID: accountID, Counters: counters}

	acct, err := s.accountRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acct != nil {
		snap.Score = acct.Score
		snap.Experience = acct.Experience
		snap.Coins = acct.Coins
		snap.CurrentStreak = acct.CurrentStreak
		snap.LongestStreak = acct.LongestStreak
	}
	return snap, nil
}

// RecentActivities 读取某账号最近的台账事件
func (s *ProgressionService) RecentActivities(ctx context.Context, accountID string, limit int) ([]schema.ActivityEvent, error) {
	if accountID == "" {
		return nil, ErrAccountRequired
	}
	return s.activityRepo.GetRecent(ctx, accountID, limit)
}

// ActivitiesOnDate 按 UTC 日历日读取某账号的台账事件
func (s *ProgressionService) ActivitiesOnDate(ctx context.Context, accountID, date string) ([]schema.ActivityEvent, error) {
	if accountID == "" {
		return nil, ErrAccountRequired
	}
	return s.activityRepo.GetByDate(ctx, accountID, date)
}
