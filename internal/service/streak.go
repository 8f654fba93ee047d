package service

import "time"

// dateLayout 连续天数统一使用 UTC 日历日
const dateLayout = "2006-01-02"

// StreakState 一次连续天数推演的结果
type StreakState struct {
	Current        int
	Longest        int
	LastActiveDate string
}

// NextStreak 连续活跃天数的状态转移规则，纯函数：
//   - 从未活跃：streak = 1
//   - 隔一天：streak + 1
//   - 同一天重复活跃：不变（同日多条事件不会刷天数）
//   - 断档超过一天：重置为 1
//
// longest 在每次推演后取 max。除这四个输入外没有任何隐藏状态。
func NextStreak(lastActiveDate, activityDate string, priorStreak, priorLongest int) StreakState {
	current := priorStreak

	switch {
	case lastActiveDate == "":
		current = 1
	case activityDate == lastActiveDate:
		// 同日重复，幂等
	case daysBetween(lastActiveDate, activityDate) == 1:
		current = priorStreak + 1
	default:
		current = 1
	}

	longest := priorLongest
	if current > longest {
		longest = current
	}

	return StreakState{
		Current:        current,
		Longest:        longest,
		LastActiveDate: activityDate,
	}
}

// daysBetween from → to 的日历天数差（UTC），解析失败按断档处理返回一个大值
func daysBetween(from, to string) int {
	f, err1 := time.ParseInLocation(dateLayout, from, time.UTC)
	t, err2 := time.ParseInLocation(dateLayout, to, time.UTC)
	if err1 != nil || err2 != nil {
		return 1 << 30
	}
	return int(t.Sub(f).Hours() / 24)
}

// UTCDate 取某时刻所在的 UTC 日历日
func UTCDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
