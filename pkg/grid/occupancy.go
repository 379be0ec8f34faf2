package grid

import (
	"cmp"
	"slices"
	"sync"
)

// Occupancy 网格占用状态：配置 + 被永久阻挡的格子集合
//
// 集合只在确认放置时增长；插入时不做边界检查，越界坐标也会被记录。
// 查询与写入由读写锁串行化，宿主在多线程中查询时不会看到半写入的集合。
type Occupancy struct {
	mu      sync.RWMutex
	cfg     Configuration
	blocked map[Coord]struct{}
}

// NewOccupancy 创建空的占用状态
func NewOccupancy(cfg Configuration) *Occupancy {
	return &Occupancy{
		cfg:     cfg,
		blocked: make(map[Coord]struct{}),
	}
}

// Configuration 返回当前配置
func (o *Occupancy) Configuration() Configuration {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.cfg
}

// Reconfigure 替换配置，已阻挡的格子保持不变
func (o *Occupancy) Reconfigure(cfg Configuration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cfg = cfg
}

// IsInBounds 检查坐标是否在 [0, dims) 范围内
// 使用 Coord 的分量偏序比较：c >= (0,0) 且 c < dims
func (o *Occupancy) IsInBounds(c Coord) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.inBounds(c)
}

// IsClear 坐标未被阻挡时返回 true
func (o *Occupancy) IsClear(c Coord) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.clear(c)
}

// IsValid 坐标在范围内且未被阻挡
func (o *Occupancy) IsValid(c Coord) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.inBounds(c) && o.clear(c)
}

// Block 将坐标加入阻挡集合，重复插入是无操作
// 返回集合是否因此增长
func (o *Occupancy) Block(c Coord) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.blocked[c]; exists {
		return false
	}
	o.blocked[c] = struct{}{}
	return true
}

// Unblock 从阻挡集合中移除坐标，返回是否确实移除了
// 放置流程不会调用它，预留给将来的拆除功能
func (o *Occupancy) Unblock(c Coord) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.blocked[c]; !exists {
		return false
	}
	delete(o.blocked, c)
	return true
}

// Len 返回阻挡格子数量
func (o *Occupancy) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.blocked)
}

// Blocked 返回阻挡格子的快照，按 (Column, Row) 排序
func (o *Occupancy) Blocked() []Coord {
	o.mu.RLock()
	coords := make([]Coord, 0, len(o.blocked))
	for c := range o.blocked {
		coords = append(coords, c)
	}
	o.mu.RUnlock()

	slices.SortFunc(coords, func(a, b Coord) int {
		if n := cmp.Compare(a.Column, b.Column); n != 0 {
			return n
		}
		return cmp.Compare(a.Row, b.Row)
	})
	return coords
}

func (o *Occupancy) inBounds(c Coord) bool {
	return c.GreaterEqual(Coord{}) && c.Less(o.cfg.Dimensions)
}

func (o *Occupancy) clear(c Coord) bool {
	_, blocked := o.blocked[c]
	return !blocked
}
