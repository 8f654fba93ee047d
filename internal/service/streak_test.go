package service

import "testing"

func TestNextStreakFirstActivity(t *testing.T) {
	got := NextStreak("", "2026-03-10", 0, 0)
	if got.Current != 1 || got.Longest != 1 {
		t.Fatalf("first activity: current=%d longest=%d, want 1/1", got.Current, got.Longest)
	}
	if got.LastActiveDate != "2026-03-10" {
		t.Fatalf("lastActiveDate=%q, want 2026-03-10", got.LastActiveDate)
	}
}

func TestNextStreakContinuity(t *testing.T) {
	// day 10, streak 4：day 11 续到 5；day 13 重置为 1
	next := NextStreak("2026-03-10", "2026-03-11", 4, 4)
	if next.Current != 5 {
		t.Fatalf("next day: current=%d, want 5", next.Current)
	}

	reset := NextStreak("2026-03-10", "2026-03-13", 4, 4)
	if reset.Current != 1 {
		t.Fatalf("gap: current=%d, want 1", reset.Current)
	}
	if reset.Longest != 4 {
		t.Fatalf("gap: longest=%d, want 4", reset.Longest)
	}
}

func TestNextStreakSameDayIdempotent(t *testing.T) {
	got := NextStreak("2026-03-10", "2026-03-10", 4, 6)
	if got.Current != 4 || got.Longest != 6 {
		t.Fatalf("same day: current=%d longest=%d, want 4/6", got.Current, got.Longest)
	}

	// 反复套用同一输入结果不变
	again := NextStreak(got.LastActiveDate, "2026-03-10", got.Current, got.Longest)
	if again != got {
		t.Fatalf("same day not idempotent: %+v vs %+v", again, got)
	}
}

func TestNextStreakLongestTracksCurrent(t *testing.T) {
	got := NextStreak("2026-03-10", "2026-03-11", 6, 6)
	if got.Current != 7 || got.Longest != 7 {
		t.Fatalf("current=%d longest=%d, want 7/7", got.Current, got.Longest)
	}
}

func TestNextStreakMonthBoundary(t *testing.T) {
	got := NextStreak("2026-02-28", "2026-03-01", 3, 3)
	if got.Current != 4 {
		t.Fatalf("month boundary: current=%d, want 4", got.Current)
	}
}

func TestDaysBetween(t *testing.T) {
	cases := []struct {
		from, to string
		want     int
	}{
		{"2026-03-10", "2026-03-11", 1},
		{"2026-03-10", "2026-03-10", 0},
		{"2026-03-10", "2026-03-13", 3},
		{"2026-12-31", "2027-01-01", 1},
	}

	for _, tc := range cases {
		got := daysBetween(tc.from, tc.to)
		if got != tc.want {
			t.Errorf("daysBetween(%s, %s) = %d, want %d", tc.from, tc.to, got, tc.want)
		}
	}
}
