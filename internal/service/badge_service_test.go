package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mindwell-app/mindwell/internal/eventbus"
	"github.com/mindwell-app/mindwell/internal/repository"
	"github.com/mindwell-app/mindwell/internal/schema"
	"github.com/mindwell-app/mindwell/internal/testutil"
)

func newTestBadges(t *testing.T) (*BadgeService, *ProgressionService) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	hub := eventbus.NewHub()

	policy := ConfigPointPolicy{Points: map[string]float64{schema.KindPostCreated: 10}}
	progression := NewProgressionService(
		repository.NewAccountRepository(db),
		repository.NewActivityRepository(db),
		policy,
		hub,
	)

	badgeRepo := repository.NewBadgeRepository(db)
	badges := NewBadgeService(badgeRepo, progression, hub)

	if err := badges.ReloadCatalog(context.Background(), []schema.BadgeDefinition{
		{Key: "first_post", Name: "初次发声", Counter: "posts_created", Threshold: 1},
		{Key: "ten_posts", Name: "十全十美", Counter: "posts_created", Threshold: 10},
	}); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	return badges, progression
}

func recordPosts(t *testing.T, svc *ProgressionService, account string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := svc.RecordActivity(context.Background(), RecordInput{
			AccountID: account,
			Kind:      schema.KindPostCreated,
		}); err != nil {
			t.Fatalf("record post %d: %v", i, err)
		}
	}
}

func TestEvaluateThresholdBoundary(t *testing.T) {
	badges, progression := newTestBadges(t)
	ctx := context.Background()

	// 正好 1 篇：拿 first_post，拿不到 ten_posts
	recordPosts(t, progression, "u1", 1)
	earned, err := badges.Evaluate(ctx, "u1")
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(earned) != 1 || earned[0].BadgeKey != "first_post" {
		t.Fatalf("earned=%v, want only first_post", earned)
	}

	// 到 10 篇：拿 ten_posts，first_post 不重复发放
	recordPosts(t, progression, "u1", 9)
	earned, err = badges.Evaluate(ctx, "u1")
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(earned) != 1 || earned[0].BadgeKey != "ten_posts" {
		t.Fatalf("earned=%v, want only ten_posts", earned)
	}

	awards, err := badges.ListAwards(ctx, "u1")
	if err != nil || len(awards) != 2 {
		t.Fatalf("awards err=%v count=%d, want 2", err, len(awards))
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	badges, progression := newTestBadges(t)
	ctx := context.Background()

	recordPosts(t, progression, "u1", 1)

	first, err := badges.Evaluate(ctx, "u1")
	if err != nil || len(first) != 1 {
		t.Fatalf("first evaluate err=%v earned=%d", err, len(first))
	}

	// 统计不变时重复评估 N 次，不产生新发放
	for i := 0; i < 5; i++ {
		earned, err := badges.Evaluate(ctx, "u1")
		if err != nil {
			t.Fatalf("evaluate %d error: %v", i, err)
		}
		if len(earned) != 0 {
			t.Fatalf("evaluate %d re-awarded: %v", i, earned)
		}
	}

	awards, _ := badges.ListAwards(ctx, "u1")
	if len(awards) != 1 {
		t.Fatalf("award count=%d, want exactly 1", len(awards))
	}
}

func TestEvaluateConcurrentExactlyOnce(t *testing.T) {
	badges, progression := newTestBadges(t)
	ctx := context.Background()

	recordPosts(t, progression, "u1", 1)

	// 两个并发评估同时看到达标：唯一索引保证只有一条发放成功，
	// 落败方按"已获得"静默处理，两边都不报错。
	const workers = 2
	results := make([][]schema.BadgeAward, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = badges.Evaluate(ctx, "u1")
		}(i)
	}
	wg.Wait()

	total := 0
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d error: %v", i, errs[i])
		}
		total += len(results[i])
	}
	if total != 1 {
		t.Fatalf("total earned=%d, want exactly 1", total)
	}

	awards, _ := badges.ListAwards(ctx, "u1")
	if len(awards) != 1 {
		t.Fatalf("award rows=%d, want exactly 1", len(awards))
	}
}

// awardRepoWithFault 指定 key 的发放写入失败，其余走真实仓储
type awardRepoWithFault struct {
	*repository.BadgeRepository
	failKey string
}

func (r *awardRepoWithFault) CreateAward(ctx context.Context, accountID, badgeKey string) (*schema.BadgeAward, bool, error) {
	if badgeKey == r.failKey {
		return nil, false, errors.New("磁盘已满")
	}
	return r.BadgeRepository.CreateAward(ctx, accountID, badgeKey)
}

func TestEvaluatePartialFailurePropagates(t *testing.T) {
	db := testutil.OpenTestDB(t)
	hub := eventbus.NewHub()
	progression := NewProgressionService(
		repository.NewAccountRepository(db),
		repository.NewActivityRepository(db),
		ConfigPointPolicy{Points: map[string]float64{schema.KindPostCreated: 10}},
		hub,
	)
	repo := &awardRepoWithFault{BadgeRepository: repository.NewBadgeRepository(db), failKey: "daily_writer"}
	badges := NewBadgeService(repo, progression, hub)

	ctx := context.Background()
	if err := badges.ReloadCatalog(ctx, []schema.BadgeDefinition{
		{Key: "daily_writer", Name: "日更选手", Counter: "posts_created", Threshold: 1},
		{Key: "first_post", Name: "初次发声", Counter: "posts_created", Threshold: 1},
	}); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	recordPosts(t, progression, "u1", 1)

	// 单条发放写入失败：错误必须上抛，同批里成功的发放也必须保留
	earned, err := badges.Evaluate(ctx, "u1")
	if err == nil {
		t.Fatalf("expected error from failed award write")
	}
	if len(earned) != 1 || earned[0].BadgeKey != "first_post" {
		t.Fatalf("earned=%v, want first_post kept despite failure", earned)
	}

	// 故障恢复后重试补齐缺的那枚，已发放的不重复
	repo.failKey = ""
	earned, err = badges.Evaluate(ctx, "u1")
	if err != nil {
		t.Fatalf("retry error: %v", err)
	}
	if len(earned) != 1 || earned[0].BadgeKey != "daily_writer" {
		t.Fatalf("retry earned=%v, want only daily_writer", earned)
	}
}

func TestEvaluateBelowThreshold(t *testing.T) {
	badges, _ := newTestBadges(t)

	earned, err := badges.Evaluate(context.Background(), "u-noactivity")
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(earned) != 0 {
		t.Fatalf("earned=%v, want none", earned)
	}
}

func TestReloadCatalogUpsert(t *testing.T) {
	badges, _ := newTestBadges(t)
	ctx := context.Background()

	// 同 key 重新 seed 是 upsert，不是翻倍
	if err := badges.ReloadCatalog(ctx, []schema.BadgeDefinition{
		{Key: "first_post", Name: "初次发声（改名）", Counter: "posts_created", Threshold: 1},
	}); err != nil {
		t.Fatalf("reload: %v", err)
	}

	catalog, err := badges.GetCatalog(ctx)
	if err != nil {
		t.Fatalf("GetCatalog error: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("catalog size=%d, want 2", len(catalog))
	}
	for _, def := range catalog {
		if def.Key == "first_post" && def.Name != "初次发声（改名）" {
			t.Fatalf("name not updated: %s", def.Name)
		}
	}
}
