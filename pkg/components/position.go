package components

import "github.com/decker502/rtsgrid/pkg/grid"

// PositionComponent 实体的世界位置
// 网格实体的位置即网格拥有者原点，(0,0) 格子的中心与它重合
type PositionComponent struct {
	X, Y, Z float64
}

// Vector 以 grid.Vector3 形式返回位置
func (p *PositionComponent) Vector() grid.Vector3 {
	return grid.Vector3{X: p.X, Y: p.Y, Z: p.Z}
}

// Set 设置位置
func (p *PositionComponent) Set(v grid.Vector3) {
	p.X, p.Y, p.Z = v.X, v.Y, v.Z
}
