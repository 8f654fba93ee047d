package service

import "errors"

// 校验类错误：直接返回给调用方，不做内部重试。
// 存储层错误不在这里定义，原样向上传播（重试策略属于调用方）。
var (
	// ErrUnknownEventKind 事件类型不在枚举内
	ErrUnknownEventKind = errors.New("未知的事件类型")
	// ErrNegativePoints 不允许负分值的场景传入了负值
	ErrNegativePoints = errors.New("分值不能为负")
	// ErrInvalidVector 稳定性输入向量含 NaN/Inf
	ErrInvalidVector = errors.New("稳定性输入向量不合法")
	// ErrAccountRequired 账号 ID 为空
	ErrAccountRequired = errors.New("账号 ID 不能为空")
)
