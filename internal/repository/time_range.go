package repository

import (
	"fmt"
	"time"
)

// DayRangeUTC 将 YYYY-MM-DD 解析为 UTC 日区间的毫秒时间戳 [start, end]（闭区间）。
// 连续天数语义统一使用 UTC 日历日，避免跨时区抖动。
func DayRangeUTC(date string) (startMs int64, endMs int64, err error) {
	t, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return 0, 0, fmt.Errorf("解析日期失败: %w", err)
	}
	start := t.UnixMilli()
	end := t.Add(24*time.Hour).UnixMilli() - 1
	return start, end, nil
}
