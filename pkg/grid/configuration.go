package grid

import "fmt"

// 默认网格参数
const (
	DefaultDimension = 4     // 默认 4x4
	DefaultCellSize  = 100.0 // 默认格子边长（世界单位）
)

// Configuration 网格配置：尺寸 + 格子边长
//
// 作为不可变值显式传入所有网格数学函数，
// 占用检查、索引计算和布局生成共享同一份配置
type Configuration struct {
	// Dimensions.Row 为行数，Dimensions.Column 为列数，且都应大于 0
	Dimensions Coord
	// CellSize 单个格子的世界边长，应大于 0
	CellSize float64
}

// DefaultConfiguration 返回默认配置（4x4，边长 100）
func DefaultConfiguration() Configuration {
	return Configuration{
		Dimensions: Splat(DefaultDimension),
		CellSize:   DefaultCellSize,
	}
}

// NewConfiguration 创建并校验配置
func NewConfiguration(dims Coord, cellSize float64) (Configuration, error) {
	cfg := Configuration{Dimensions: dims, CellSize: cellSize}
	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

// Validate 校验尺寸和格子边长
func (c Configuration) Validate() error {
	if err := validateDimensions(c.Dimensions); err != nil {
		return err
	}
	return validateCellSize(c.CellSize)
}

// CellCount 返回格子总数 rows * columns
func (c Configuration) CellCount() int {
	return c.Dimensions.Row * c.Dimensions.Column
}

func validateDimensions(dims Coord) error {
	if dims.Row <= 0 || dims.Column <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidDimension, dims)
	}
	return nil
}

func validateCellSize(size float64) error {
	if size <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidCellSize, size)
	}
	return nil
}
