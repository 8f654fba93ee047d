package service

import (
	"context"
	"math"
	"time"

	"github.com/mindwell-app/mindwell/internal/schema"
)

// StabilityVector 稳定性公式的六个输入
type StabilityVector struct {
	Resources float64 `json:"resources"` // R >= 0
	Local     float64 `json:"local"`     // L 局部强度
	Global    float64 `json:"global"`    // G 全局强度
	Coupling  float64 `json:"coupling"`  // C 耦合，约定 > 0
	Agreement float64 `json:"agreement"` // A 一致度，通常 0~1
	Scaling   float64 `json:"scaling"`   // n 规模因子，通常 >= 1
}

// StabilityResult 计算结果
// Valid=false 表示分母 <= 0，公式在该输入上无定义。这是正常的输入区域，
// 不是错误：调用方要能把"得分为 0"和"无定义"区分开，不靠 NaN/Inf 传播。
type StabilityResult struct {
	Score float64 `json:"score"`
	Valid bool    `json:"valid"`
}

// ComputeStability 稳定性公式，纯函数：
//
//	denominator = |L-G| + C - A*n
//	score = R * (L+G) / denominator   （仅当 denominator > 0）
//
// 高一致度 + 低耦合时分母会合法地落到 0 或负数，此时不做除法。
func ComputeStability(v StabilityVector) StabilityResult {
	denominator := math.Abs(v.Local-v.Global) + v.Coupling - v.Agreement*v.Scaling
	if denominator <= 0 {
		return StabilityResult{Valid: false}
	}
	return StabilityResult{
		Score: v.Resources * (v.Local + v.Global) / denominator,
		Valid: true,
	}
}

// validVector 拒绝 NaN/Inf 分量（属于校验错误，而不是无定义域）
func validVector(v StabilityVector) bool {
	for _, f := range []float64{v.Resources, v.Local, v.Global, v.Coupling, v.Agreement, v.Scaling} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// StabilityService 稳定性计算 + 可选落盘
type StabilityService struct {
	stabilityRepo StabilityRepository
}

// NewStabilityService 创建服务
func NewStabilityService(stabilityRepo StabilityRepository) *StabilityService {
	return &StabilityService{stabilityRepo: stabilityRepo}
}

// Evaluate 计算稳定性得分；persist 为真且结果有效时写入一条记录。
// 无定义（Valid=false）不落盘，也不算错误。
func (s *StabilityService) Evaluate(ctx context.Context, accountID string, v StabilityVector, persist bool) (StabilityResult, error) {
	if !validVector(v) {
		return StabilityResult{}, ErrInvalidVector
	}

	result := ComputeStability(v)
	if !persist || !result.Valid {
		return result, nil
	}
	if accountID == "" {
		return StabilityResult{}, ErrAccountRequired
	}

	record := &schema.StabilityRecord{
		AccountID: accountID,
		Resources: v.Resources,
		Local:     v.Local,
		Global:    v.Global,
		Coupling:  v.Coupling,
		Agreement: v.Agreement,
		Scaling:   v.Scaling,
		Score:     result.Score,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := s.stabilityRepo.Create(ctx, record); err != nil {
		return StabilityResult{}, err
	}
	return result, nil
}

// History 读取某账号最近的稳定性记录
func (s *StabilityService) History(ctx context.Context, accountID string, limit int) ([]schema.StabilityRecord, error) {
	if accountID == "" {
		return nil, ErrAccountRequired
	}
	return s.stabilityRepo.GetRecent(ctx, accountID, limit)
}
