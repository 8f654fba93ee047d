package service

import (
	"math"

	"github.com/mindwell-app/mindwell/internal/schema"
)

// PointPolicy 分值策略（可替换）：事件类型 → 入账分值，以及积分到金币的换算。
type PointPolicy interface {
	PointsFor(kind string) (float64, error)
	ExperienceFor(kind string) int64
	CoinsForScore(score float64) int64
}

// ConfigPointPolicy 默认策略：分值表与换算率来自配置
type ConfigPointPolicy struct {
	Points   map[string]float64 // 事件类型 → 分值
	XPRate   float64            // 每 1 分对应的经验值
	CoinRate float64            // 综合积分 → 金币的展示换算率
}

// PointsFor 返回某事件类型的配置分值
func (p ConfigPointPolicy) PointsFor(kind string) (float64, error) {
	if !schema.KnownKind(kind) {
		return 0, ErrUnknownEventKind
	}
	v, ok := p.Points[kind]
	if !ok {
		// 类型合法但没配分值：入账 0 分，事件仍然记台账
		return 0, nil
	}
	if v < 0 {
		return 0, ErrNegativePoints
	}
	return v, nil
}

// ExperienceFor 某事件类型对应的经验增量
func (p ConfigPointPolicy) ExperienceFor(kind string) int64 {
	v, ok := p.Points[kind]
	if !ok || v <= 0 {
		return 0
	}
	rate := p.XPRate
	if rate <= 0 {
		rate = 1
	}
	return int64(math.Round(v * rate))
}

// CoinsForScore 综合积分换算为金币（向下取整，非法换算率按 0 处理）
func (p ConfigPointPolicy) CoinsForScore(score float64) int64 {
	if p.CoinRate <= 0 || score <= 0 {
		return 0
	}
	return int64(math.Floor(score * p.CoinRate))
}
