package repository

import (
	"context"
	"testing"

	"github.com/mindwell-app/mindwell/internal/schema"
	"github.com/mindwell-app/mindwell/internal/testutil"
)

func seedTestCatalog(t *testing.T, repo *BadgeRepository) {
	t.Helper()
	err := repo.SeedCatalog(context.Background(), []schema.BadgeDefinition{
		{Key: "first_post", Name: "初次发声", Counter: "posts_created", Threshold: 1},
		{Key: "ten_posts", Name: "十全十美", Counter: "posts_created", Threshold: 10},
	})
	if err != nil {
		t.Fatalf("SeedCatalog error: %v", err)
	}
}

func TestBadgeRepositorySeedCatalogUpsert(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	seedTestCatalog(t, repo)
	seedTestCatalog(t, repo) // 重复 seed 不翻倍

	defs, err := repo.GetCatalog(ctx)
	if err != nil {
		t.Fatalf("GetCatalog error: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("catalog size=%d, want 2", len(defs))
	}
	// 阈值升序
	if defs[0].Key != "first_post" || defs[1].Key != "ten_posts" {
		t.Fatalf("order=%s,%s, want first_post,ten_posts", defs[0].Key, defs[1].Key)
	}
}

func TestBadgeRepositoryCreateAwardConflictAsSuccess(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	seedTestCatalog(t, repo)

	award, created, err := repo.CreateAward(ctx, "u1", "first_post")
	if err != nil || !created || award == nil {
		t.Fatalf("first award err=%v created=%v award=%v", err, created, award)
	}

	// 唯一索引冲突不是错误，按"已发放"处理
	dup, created, err := repo.CreateAward(ctx, "u1", "first_post")
	if err != nil {
		t.Fatalf("duplicate award error: %v", err)
	}
	if created || dup != nil {
		t.Fatalf("duplicate created=%v award=%v, want no-op", created, dup)
	}

	awards, err := repo.ListAwards(ctx, "u1")
	if err != nil || len(awards) != 1 {
		t.Fatalf("awards err=%v count=%d, want 1", err, len(awards))
	}
}

func TestBadgeRepositoryAwardsAreScopedByAccount(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	seedTestCatalog(t, repo)

	// 不同账号拿同一徽章互不影响
	if _, created, err := repo.CreateAward(ctx, "u1", "first_post"); err != nil || !created {
		t.Fatalf("u1 award err=%v created=%v", err, created)
	}
	if _, created, err := repo.CreateAward(ctx, "u2", "first_post"); err != nil || !created {
		t.Fatalf("u2 award err=%v created=%v", err, created)
	}

	keys, err := repo.GetAwardedKeys(ctx, "u1")
	if err != nil {
		t.Fatalf("GetAwardedKeys error: %v", err)
	}
	if _, ok := keys["first_post"]; !ok || len(keys) != 1 {
		t.Fatalf("u1 keys=%v, want {first_post}", keys)
	}
}
