// Package grid 提供 RTS 放置网格的纯数学模型
//
// 本包不依赖 ECS 或渲染，所有函数都是确定性的纯函数（Occupancy 除外，它持有阻挡集合）。
//
// # 坐标约定
//
//   - Column（列）对应世界坐标 Y 轴（水平方向）
//   - Row（行）对应世界坐标 X 轴（纵深方向）
//   - 负坐标可以表示，用于表示"网格之外"
//
// # 比较语义
//
// Coord 的 Less/Greater 等比较是分量"同时满足"的偏序比较，而不是字典序：
//
//	A.Less(B) == (A.Column < B.Column && A.Row < B.Row)
//
// 因此 (1,5) 与 (5,1) 既不小于、也不大于、也不等于对方。
// 边界检查 IsInBounds 依赖这一语义，修改前必须同步调整调用方。
package grid

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Coord 网格整数坐标（列, 行）
// 值类型，可直接作为 map 键使用
type Coord struct {
	Column int `yaml:"column" json:"column"`
	Row    int `yaml:"row" json:"row"`
}

// NewCoord 使用列、行创建坐标
func NewCoord(column, row int) Coord {
	return Coord{Column: column, Row: row}
}

// Splat 创建列、行都等于 s 的坐标
func Splat(s int) Coord {
	return Coord{Column: s, Row: s}
}

// CoordFromVector2D 从二维向量创建坐标
// 注意轴向交换：Column = v.Y，Row = v.X，小数部分向零截断
func CoordFromVector2D(v Vector2D) Coord {
	return Coord{Column: int(v.Y), Row: int(v.X)}
}

// ToVector2D 转换为二维向量 (X = Row, Y = Column)，是 CoordFromVector2D 的逆操作
func (c Coord) ToVector2D() Vector2D {
	return Vector2D{X: float64(c.Row), Y: float64(c.Column)}
}

// Equal 列和行都相等时返回 true
func (c Coord) Equal(o Coord) bool {
	return c.Column == o.Column && c.Row == o.Row
}

// NotEqual 列或行任一不同时返回 true
func (c Coord) NotEqual(o Coord) bool {
	return c.Column != o.Column || c.Row != o.Row
}

// Less 列和行都严格小于 o 时返回 true（偏序）
func (c Coord) Less(o Coord) bool {
	return c.Column < o.Column && c.Row < o.Row
}

// Greater 列和行都严格大于 o 时返回 true（偏序）
func (c Coord) Greater(o Coord) bool {
	return c.Column > o.Column && c.Row > o.Row
}

// LessEqual 列和行都不大于 o 时返回 true
func (c Coord) LessEqual(o Coord) bool {
	return c.Column <= o.Column && c.Row <= o.Row
}

// GreaterEqual 列和行都不小于 o 时返回 true
func (c Coord) GreaterEqual(o Coord) bool {
	return c.Column >= o.Column && c.Row >= o.Row
}

// Add 分量相加
func (c Coord) Add(o Coord) Coord {
	return Coord{Column: c.Column + o.Column, Row: c.Row + o.Row}
}

// AddInt 两个分量都加上 i
func (c Coord) AddInt(i int) Coord {
	return Coord{Column: c.Column + i, Row: c.Row + i}
}

// AddFloat 两个分量都加上 f，结果向零截断
func (c Coord) AddFloat(f float64) Coord {
	return Coord{Column: int(float64(c.Column) + f), Row: int(float64(c.Row) + f)}
}

// AddVector2D Column 加 v.Y，Row 加 v.X，结果向零截断
func (c Coord) AddVector2D(v Vector2D) Coord {
	return Coord{Column: int(float64(c.Column) + v.Y), Row: int(float64(c.Row) + v.X)}
}

// Sub 分量相减
func (c Coord) Sub(o Coord) Coord {
	return Coord{Column: c.Column - o.Column, Row: c.Row - o.Row}
}

func (c Coord) SubInt(i int) Coord {
	return Coord{Column: c.Column - i, Row: c.Row - i}
}

func (c Coord) SubFloat(f float64) Coord {
	return Coord{Column: int(float64(c.Column) - f), Row: int(float64(c.Row) - f)}
}

// SubVector2D Column 减 v.Y，Row 减 v.X
func (c Coord) SubVector2D(v Vector2D) Coord {
	return Coord{Column: int(float64(c.Column) - v.Y), Row: int(float64(c.Row) - v.X)}
}

// Mul 分量相乘
func (c Coord) Mul(o Coord) Coord {
	return Coord{Column: c.Column * o.Column, Row: c.Row * o.Row}
}

func (c Coord) MulInt(s int) Coord {
	return Coord{Column: c.Column * s, Row: c.Row * s}
}

// MulFloat 按浮点比例缩放，结果向零截断
func (c Coord) MulFloat(s float64) Coord {
	return Coord{Column: int(float64(c.Column) * s), Row: int(float64(c.Row) * s)}
}

// DivInt 分量整除（向零截断）
// 除数为 0 时返回 ErrDivisionByZero
func (c Coord) DivInt(s int) (Coord, error) {
	if s == 0 {
		return Coord{}, ErrDivisionByZero
	}
	return Coord{Column: c.Column / s, Row: c.Row / s}, nil
}

// DivFloat 分量除以浮点数，结果向零截断
// 除数为 0 时返回 ErrDivisionByZero
func (c Coord) DivFloat(s float64) (Coord, error) {
	if s == 0 {
		return Coord{}, ErrDivisionByZero
	}
	return Coord{Column: int(float64(c.Column) / s), Row: int(float64(c.Row) / s)}, nil
}

// Hash 返回坐标的确定性哈希
// 对 Column、Row 的 32 位小端字节做 CRC-32 (IEEE)
func (c Coord) Hash() uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(int32(c.Column)))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(int32(c.Row)))
	return crc32.ChecksumIEEE(buf[:])
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Column, c.Row)
}
