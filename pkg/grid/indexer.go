package grid

import (
	"fmt"
	"math"
)

// Indexer 在坐标、格子ID、网格局部位置和世界位置之间做双向转换
//
// 网格局部坐标系以网格拥有者的位置为原点，(0,0) 格子的中心就在原点上：
//
//	cellCenter = (Row*CellSize, Column*CellSize, 0)
type Indexer struct {
	cfg Configuration
}

// NewIndexer 使用已校验的配置创建 Indexer
func NewIndexer(cfg Configuration) (Indexer, error) {
	if err := cfg.Validate(); err != nil {
		return Indexer{}, err
	}
	return Indexer{cfg: cfg}, nil
}

// Configuration 返回 Indexer 使用的配置
func (ix Indexer) Configuration() Configuration {
	return ix.cfg
}

// CellIDFromCoord 计算格子ID: dims.Row * Column + Row
// 不做边界检查，越界坐标得到的ID没有意义
func (ix Indexer) CellIDFromCoord(c Coord) int {
	return ix.cfg.Dimensions.Row*c.Column + c.Row
}

// CoordFromCellID 是 CellIDFromCoord 的逆运算
// id 超出 [0, rows*columns) 时返回 ErrCellIDOutOfRange
func (ix Indexer) CoordFromCellID(id int) (Coord, error) {
	if err := validateDimensions(ix.cfg.Dimensions); err != nil {
		return Coord{}, err
	}
	if id < 0 || id >= ix.cfg.CellCount() {
		return Coord{}, fmt.Errorf("%w: id=%d, valid range [0, %d)", ErrCellIDOutOfRange, id, ix.cfg.CellCount())
	}
	rows := ix.cfg.Dimensions.Row
	return Coord{Column: id / rows, Row: id % rows}, nil
}

// WorldToRelative 将世界位置转换为相对网格拥有者的位置
func WorldToRelative(world, origin Vector3) Vector3 {
	return world.Sub(origin)
}

// CoordFromRelative 将相对位置吸附到最近的格子
//
// 使用 math.Round（四舍五入，.5 远离零），例如 1.5 -> 2，-0.5 -> -1。
// 返回坐标和对应的格子ID。
func (ix Indexer) CoordFromRelative(rel Vector3) (Coord, int, error) {
	if err := validateCellSize(ix.cfg.CellSize); err != nil {
		return Coord{}, 0, err
	}
	c := Coord{
		Column: int(math.Round(rel.Y / ix.cfg.CellSize)),
		Row:    int(math.Round(rel.X / ix.cfg.CellSize)),
	}
	return c, ix.CellIDFromCoord(c), nil
}

// CellCenterFromCoord 返回格子中心的网格局部位置
func (ix Indexer) CellCenterFromCoord(c Coord) Vector3 {
	return Vector3{
		X: float64(c.Row) * ix.cfg.CellSize,
		Y: float64(c.Column) * ix.cfg.CellSize,
	}
}

// CellCenterFromRelative 返回相对位置所在格子的中心
// worldSpace 为 true 时加上 origin 得到世界位置
func (ix Indexer) CellCenterFromRelative(rel, origin Vector3, worldSpace bool) (Vector3, error) {
	c, _, err := ix.CoordFromRelative(rel)
	if err != nil {
		return Vector3{}, err
	}
	center := ix.CellCenterFromCoord(c)
	if worldSpace {
		return center.Add(origin), nil
	}
	return center, nil
}

// GridOriginRelative 返回网格几何中心相对拥有者的偏移
// 用于包围盒和调试绘制
func (ix Indexer) GridOriginRelative() Vector3 {
	half := ix.cfg.CellSize * 0.5
	return Vector3{
		X: float64(ix.cfg.Dimensions.Row)*0.5*ix.cfg.CellSize - half,
		Y: float64(ix.cfg.Dimensions.Column)*0.5*ix.cfg.CellSize - half,
	}
}

// GridOriginWorld 返回网格几何中心的世界位置
func (ix Indexer) GridOriginWorld(origin Vector3) Vector3 {
	return ix.GridOriginRelative().Add(origin)
}

// GridSize 返回网格宽高 (rows*CellSize, columns*CellSize)
func (ix Indexer) GridSize() Vector2D {
	return Vector2D{
		X: float64(ix.cfg.Dimensions.Row) * ix.cfg.CellSize,
		Y: float64(ix.cfg.Dimensions.Column) * ix.cfg.CellSize,
	}
}

// GridExtents 返回网格半宽高
func (ix Indexer) GridExtents() Vector2D {
	return ix.GridSize().Scale(0.5)
}

// CellInstance 单个格子的可视化实例数据
type CellInstance struct {
	ID       int
	Coord    Coord
	Location Vector3 // 网格局部位置
	Scale    float64 // 单位平面网格的均匀缩放
}

// Instances 为布局列表中的每个坐标生成实例数据，ID 取列表下标
// 平面网格的基准边长为 100，因此缩放为 CellSize*0.01
func (ix Indexer) Instances(layout []Coord) []CellInstance {
	instances := make([]CellInstance, len(layout))
	for i, c := range layout {
		instances[i] = CellInstance{
			ID:       i,
			Coord:    c,
			Location: ix.CellCenterFromCoord(c),
			Scale:    ix.cfg.CellSize * 0.01,
		}
	}
	return instances
}
