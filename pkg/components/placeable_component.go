package components

import (
	"github.com/decker502/rtsgrid/pkg/ecs"
	"github.com/decker502/rtsgrid/pkg/grid"
)

// PlaceableState 可放置物的生命周期状态
type PlaceableState int

const (
	// PlaceableStatePreviewing 跟随光标的预览
	PlaceableStatePreviewing PlaceableState = iota
	// PlaceableStateConstructing 已确认放置，正在建造
	PlaceableStateConstructing
	// PlaceableStateBuilt 建造完成
	PlaceableStateBuilt
	// PlaceableStateCancelled 放置被取消，等待清理
	PlaceableStateCancelled
)

func (s PlaceableState) String() string {
	switch s {
	case PlaceableStatePreviewing:
		return "Previewing"
	case PlaceableStateConstructing:
		return "Constructing"
	case PlaceableStateBuilt:
		return "Built"
	case PlaceableStateCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// PlaceableComponent 标记实体为可放置的建筑
type PlaceableComponent struct {
	TypeID string // 建筑类型ID，对应配置文件中的 placeables[].id
	Name   string

	// BuildDuration 基础建造时长（秒），实际时长再乘以 BuildDurationMultiply
	BuildDuration         float64
	BuildDurationMultiply float64

	// 代理模型资源名（建造中 / 放置预览），由渲染层解释
	ConstructionProxy string
	PlacementProxy    string

	State PlaceableState

	// 确认放置后记录所在网格和格子
	GridEntity ecs.EntityID
	Coord      grid.Coord

	// BuildElapsed 已建造时间（秒）
	BuildElapsed float64
}

// TotalBuildTime 返回实际建造时长
func (p *PlaceableComponent) TotalBuildTime() float64 {
	return p.BuildDuration * p.BuildDurationMultiply
}

// BuildProgress 返回建造进度 0.0 ~ 1.0
func (p *PlaceableComponent) BuildProgress() float64 {
	total := p.TotalBuildTime()
	if total <= 0 || p.BuildElapsed >= total {
		return 1.0
	}
	return p.BuildElapsed / total
}
