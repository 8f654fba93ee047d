package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/mindwell-app/mindwell/internal/testutil"
)

func TestAccountRepositoryEnsureIdempotent(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	if err := repo.Ensure(ctx, "u1"); err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	if _, err := repo.AddScore(ctx, "u1", 10); err != nil {
		t.Fatalf("AddScore error: %v", err)
	}

	// 再次 Ensure 不能重置已有状态
	if err := repo.Ensure(ctx, "u1"); err != nil {
		t.Fatalf("second Ensure error: %v", err)
	}
	acct, err := repo.Get(ctx, "u1")
	if err != nil || acct == nil {
		t.Fatalf("Get err=%v acct=%v", err, acct)
	}
	if acct.Score != 10 {
		t.Fatalf("score=%v, want 10 after re-ensure", acct.Score)
	}
}

func TestAccountRepositoryAddScoreAtomic(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	if err := repo.Ensure(ctx, "u1"); err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	if _, err := repo.AddScore(ctx, "u1", 100); err != nil {
		t.Fatalf("seed score: %v", err)
	}

	// 并发 +5 和 +3 在任何交错下都必须净 +8
	var wg sync.WaitGroup
	for _, delta := range []float64{5, 3} {
		wg.Add(1)
		go func(d float64) {
			defer wg.Done()
			if _, err := repo.AddScore(ctx, "u1", d); err != nil {
				t.Errorf("concurrent AddScore(%v): %v", d, err)
			}
		}(delta)
	}
	wg.Wait()

	acct, _ := repo.Get(ctx, "u1")
	if acct.Score != 108 {
		t.Fatalf("score=%v, want 108", acct.Score)
	}
}

func TestAccountRepositoryAddScoreClampsAtZero(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	_ = repo.Ensure(ctx, "u1")
	if _, err := repo.AddScore(ctx, "u1", 5); err != nil {
		t.Fatalf("AddScore error: %v", err)
	}

	score, err := repo.AddScore(ctx, "u1", -50)
	if err != nil {
		t.Fatalf("negative delta error: %v", err)
	}
	if score != 0 {
		t.Fatalf("score=%v, want clamped to 0", score)
	}
}

func TestAccountRepositoryAddScoreMissingAccount(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewAccountRepository(db)

	if _, err := repo.AddScore(context.Background(), "ghost", 5); err == nil {
		t.Fatalf("expected error for missing account")
	}
}

func TestAccountRepositoryUpdateStreak(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	_ = repo.Ensure(ctx, "u1")
	if err := repo.UpdateStreak(ctx, "u1", 3, 7, "2026-03-10"); err != nil {
		t.Fatalf("UpdateStreak error: %v", err)
	}

	acct, _ := repo.Get(ctx, "u1")
	if acct.CurrentStreak != 3 || acct.LongestStreak != 7 || acct.LastActiveDate != "2026-03-10" {
		t.Fatalf("streak state=%+v, want 3/7/2026-03-10", acct)
	}
}

func TestAccountRepositoryGetMissing(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewAccountRepository(db)

	acct, err := repo.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if acct != nil {
		t.Fatalf("acct=%v, want nil for missing account", acct)
	}
}
