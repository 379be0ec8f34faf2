package components

import "github.com/decker502/rtsgrid/pkg/grid"

// GridDevOptions 网格的开发/调试显示选项
// 只影响渲染，不影响占用逻辑
type GridDevOptions struct {
	ShowPreviewGrid  bool // 是否显示格子平面
	ShowTileTextInfo bool // 是否在每个格子上显示坐标和ID
	DrawBoundingBox  bool // 是否绘制网格包围盒
}

// DefaultGridDevOptions 默认显示选项：显示格子和包围盒，不显示文字
func DefaultGridDevOptions() GridDevOptions {
	return GridDevOptions{
		ShowPreviewGrid:  true,
		ShowTileTextInfo: false,
		DrawBoundingBox:  true,
	}
}

// GridSystemComponent 标识网格实体
//
// 持有网格配置、占用状态以及根据配置生成的格子列表。
// Config 只能通过 GridSystem 修改，修改后 GeneratedGrid 和 Instances 会整体重新生成。
type GridSystemComponent struct {
	Config    grid.Configuration
	Indexer   grid.Indexer
	Occupancy *grid.Occupancy

	// GeneratedGrid 按格子ID排序的全部坐标，仅用于可视化
	GeneratedGrid []grid.Coord
	// Instances 每个格子的可视化实例数据，与 GeneratedGrid 一一对应
	Instances []grid.CellInstance

	DevOptions GridDevOptions
}
