package grid

import "errors"

// 网格数学相关的哨兵错误
// 调用者可使用 errors.Is 检查错误类型，所有错误都是可恢复的输入校验错误
var (
	// ErrInvalidDimension 网格尺寸的行或列不大于 0
	ErrInvalidDimension = errors.New("grid dimensions must be positive")

	// ErrInvalidCellSize 格子边长不大于 0
	ErrInvalidCellSize = errors.New("grid cell size must be positive")

	// ErrCellIDOutOfRange 格子ID超出 [0, rows*columns) 范围
	ErrCellIDOutOfRange = errors.New("cell id out of range")

	// ErrDivisionByZero 坐标除以 0
	ErrDivisionByZero = errors.New("grid coordinate division by zero")

	// ErrConfirmOnInvalidCell 严格确认策略下，在无效格子上确认放置
	ErrConfirmOnInvalidCell = errors.New("cannot confirm placement on an invalid cell")
)
