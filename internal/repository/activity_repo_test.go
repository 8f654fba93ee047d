package repository

import (
	"context"
	"testing"
	"time"

	"github.com/mindwell-app/mindwell/internal/schema"
	"github.com/mindwell-app/mindwell/internal/testutil"
)

func TestActivityRepositoryAppendWithScore(t *testing.T) {
	db := testutil.OpenTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	_ = accounts.Ensure(ctx, "u1")

	result, err := repo.AppendWithScore(ctx, &schema.ActivityEvent{
		AccountID: "u1",
		Kind:      schema.KindPostCreated,
		Points:    10,
		DedupKey:  "k1",
	}, 10)
	if err != nil {
		t.Fatalf("AppendWithScore error: %v", err)
	}
	if !result.Applied || result.NewScore != 10 || result.EventID == 0 {
		t.Fatalf("result=%+v, want applied with score 10", result)
	}
}

func TestActivityRepositoryAppendDedup(t *testing.T) {
	db := testutil.OpenTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	_ = accounts.Ensure(ctx, "u1")

	first, err := repo.AppendWithScore(ctx, &schema.ActivityEvent{
		AccountID: "u1", Kind: schema.KindPostCreated, Points: 10, DedupKey: "same-key",
	}, 10)
	if err != nil || !first.Applied {
		t.Fatalf("first append err=%v applied=%v", err, first.Applied)
	}

	// 同 dedup_key 重放：事件不重插，积分不重加
	second, err := repo.AppendWithScore(ctx, &schema.ActivityEvent{
		AccountID: "u1", Kind: schema.KindPostCreated, Points: 10, DedupKey: "same-key",
	}, 10)
	if err != nil {
		t.Fatalf("replay error: %v", err)
	}
	if second.Applied {
		t.Fatalf("replay should not apply")
	}

	acct, _ := accounts.Get(ctx, "u1")
	if acct.Score != 10 {
		t.Fatalf("score=%v, want 10 after replay", acct.Score)
	}

	count, _ := repo.Count(ctx)
	if count != 1 {
		t.Fatalf("event count=%d, want 1", count)
	}
}

func TestActivityRepositoryAppendFailsWithoutAccount(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewActivityRepository(db)

	// 账号不存在时积分增量失败，事件必须一并回滚
	_, err := repo.AppendWithScore(context.Background(), &schema.ActivityEvent{
		AccountID: "ghost", Kind: schema.KindPostCreated, Points: 10, DedupKey: "k1",
	}, 10)
	if err == nil {
		t.Fatalf("expected error for missing account")
	}

	count, _ := repo.Count(context.Background())
	if count != 0 {
		t.Fatalf("event count=%d, want 0 (rolled back)", count)
	}
}

func TestActivityRepositoryCountByKind(t *testing.T) {
	db := testutil.OpenTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	_ = accounts.Ensure(ctx, "u1")
	_ = accounts.Ensure(ctx, "u2")

	events := []struct {
		account, kind, key string
	}{
		{"u1", schema.KindPostCreated, "a"},
		{"u1", schema.KindPostCreated, "b"},
		{"u1", schema.KindCommentMade, "c"},
		{"u2", schema.KindPostCreated, "d"}, // 其它账号不计入
	}
	for _, e := range events {
		if _, err := repo.AppendWithScore(ctx, &schema.ActivityEvent{
			AccountID: e.account, Kind: e.kind, DedupKey: e.key,
		}, 0); err != nil {
			t.Fatalf("append %s: %v", e.key, err)
		}
	}

	counts, err := repo.CountByKind(ctx, "u1")
	if err != nil {
		t.Fatalf("CountByKind error: %v", err)
	}
	if counts[schema.KindPostCreated] != 2 || counts[schema.KindCommentMade] != 1 {
		t.Fatalf("counts=%v, want posts=2 comments=1", counts)
	}
}

func TestActivityRepositoryGetByDate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	_ = accounts.Ensure(ctx, "u1")

	day := func(date string, offset time.Duration) int64 {
		d, err := time.ParseInLocation("2006-01-02", date, time.UTC)
		if err != nil {
			t.Fatalf("parse %s: %v", date, err)
		}
		return d.Add(offset).UnixMilli()
	}

	events := []struct {
		key string
		ts  int64
	}{
		{"start", day("2026-03-10", 0)}, // 日界起点含入
		{"noon", day("2026-03-10", 12*time.Hour)},
		{"last-ms", day("2026-03-11", 0) - 1},  // 日界终点含入
		{"next-day", day("2026-03-11", 0)},     // 次日不计
		{"prev-day", day("2026-03-10", 0) - 1}, // 前日不计
	}
	for _, e := range events {
		if _, err := repo.AppendWithScore(ctx, &schema.ActivityEvent{
			AccountID: "u1", Kind: schema.KindPostCreated, DedupKey: e.key, Timestamp: e.ts,
		}, 0); err != nil {
			t.Fatalf("append %s: %v", e.key, err)
		}
	}

	got, err := repo.GetByDate(ctx, "u1", "2026-03-10")
	if err != nil {
		t.Fatalf("GetByDate error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("events=%d, want 3 within the UTC day", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp < got[i-1].Timestamp {
			t.Fatalf("events not in ascending order")
		}
	}

	if _, err := repo.GetByDate(ctx, "u1", "03/10/2026"); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}
