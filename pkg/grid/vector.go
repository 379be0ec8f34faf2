package grid

import "fmt"

// Vector2D 二维浮点向量
// 约定：X 对应行方向（纵深），Y 对应列方向（水平）
type Vector2D struct {
	X, Y float64
}

// Scale 返回按比例缩放后的向量
func (v Vector2D) Scale(s float64) Vector2D {
	return Vector2D{X: v.X * s, Y: v.Y * s}
}

// Vector3 三维浮点向量（世界坐标或网格局部坐标）
type Vector3 struct {
	X, Y, Z float64
}

// Add 返回 v + o
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub 返回 v - o
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}
