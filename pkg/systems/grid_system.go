package systems

import (
	"errors"
	"fmt"
	"log"

	"github.com/decker502/rtsgrid/pkg/components"
	"github.com/decker502/rtsgrid/pkg/ecs"
	"github.com/decker502/rtsgrid/pkg/grid"
)

// ErrNotAGrid 实体没有 GridSystemComponent 或 PositionComponent
var ErrNotAGrid = errors.New("entity is not a grid")

// GridSystem 管理网格实体
// 负责创建网格、在配置修改时重新生成格子列表，并提供网格查询和占用方法
type GridSystem struct {
	entityManager *ecs.EntityManager
}

// NewGridSystem 创建网格系统
func NewGridSystem(em *ecs.EntityManager) *GridSystem {
	return &GridSystem{entityManager: em}
}

// CreateGrid 创建网格实体
// 参数:
//   - cfg: 网格配置，无效时返回错误且不创建实体
//   - origin: 网格拥有者的世界位置，(0,0) 格子的中心与它重合
//   - devOptions: 显示选项
//
// 返回:
//   - ecs.EntityID: 网格实体ID
//   - error: 配置无效
func (s *GridSystem) CreateGrid(cfg grid.Configuration, origin grid.Vector3, devOptions components.GridDevOptions) (ecs.EntityID, error) {
	indexer, err := grid.NewIndexer(cfg)
	if err != nil {
		return ecs.InvalidEntity, fmt.Errorf("failed to create grid: %w", err)
	}
	layout, err := grid.GenerateLayout(cfg.Dimensions)
	if err != nil {
		return ecs.InvalidEntity, fmt.Errorf("failed to create grid: %w", err)
	}

	entity := s.entityManager.CreateEntity()
	ecs.AddComponent(s.entityManager, entity, &components.PositionComponent{X: origin.X, Y: origin.Y, Z: origin.Z})
	ecs.AddComponent(s.entityManager, entity, &components.GridSystemComponent{
		Config:        cfg,
		Indexer:       indexer,
		Occupancy:     grid.NewOccupancy(cfg),
		GeneratedGrid: layout,
		Instances:     indexer.Instances(layout),
		DevOptions:    devOptions,
	})

	log.Printf("[GridSystem] Created grid entity %d: dims=%v, cellSize=%g, origin=%v",
		entity, cfg.Dimensions, cfg.CellSize, origin)
	return entity, nil
}

// Grids 返回全部网格实体，按ID升序
func (s *GridSystem) Grids() []ecs.EntityID {
	return ecs.GetEntitiesWith2[*components.GridSystemComponent, *components.PositionComponent](s.entityManager)
}

// lookup 获取网格组件和拥有者原点
func (s *GridSystem) lookup(gridEntity ecs.EntityID) (*components.GridSystemComponent, grid.Vector3, error) {
	gridComp, ok := ecs.GetComponent[*components.GridSystemComponent](s.entityManager, gridEntity)
	if !ok {
		return nil, grid.Vector3{}, fmt.Errorf("%w: entity %d", ErrNotAGrid, gridEntity)
	}
	pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, gridEntity)
	if !ok {
		return nil, grid.Vector3{}, fmt.Errorf("%w: entity %d has no position", ErrNotAGrid, gridEntity)
	}
	return gridComp, pos.Vector(), nil
}

// IsGrid 检查实体是否为网格
func (s *GridSystem) IsGrid(entity ecs.EntityID) bool {
	_, _, err := s.lookup(entity)
	return err == nil
}

// GenerateGrid 根据当前配置重新生成格子列表和实例数据
// 整体替换旧列表，不做增量更新
func (s *GridSystem) GenerateGrid(gridEntity ecs.EntityID) ([]grid.Coord, error) {
	gridComp, _, err := s.lookup(gridEntity)
	if err != nil {
		return nil, err
	}
	layout, err := grid.GenerateLayout(gridComp.Config.Dimensions)
	if err != nil {
		return nil, err
	}
	gridComp.GeneratedGrid = layout
	gridComp.Instances = gridComp.Indexer.Instances(layout)
	return layout, nil
}

// SetConfiguration 修改网格配置并重新生成格子
// 无效配置被拒绝，原配置保持不变；占用集合不会被清空
func (s *GridSystem) SetConfiguration(gridEntity ecs.EntityID, cfg grid.Configuration) error {
	gridComp, _, err := s.lookup(gridEntity)
	if err != nil {
		return err
	}

	indexer, err := grid.NewIndexer(cfg)
	if err != nil {
		log.Printf("[GridSystem] Rejected configuration change for grid %d: %v", gridEntity, err)
		return fmt.Errorf("rejected configuration change: %w", err)
	}

	gridComp.Config = cfg
	gridComp.Indexer = indexer
	gridComp.Occupancy.Reconfigure(cfg)
	if _, err := s.GenerateGrid(gridEntity); err != nil {
		return err
	}

	log.Printf("[GridSystem] Grid %d reconfigured: dims=%v, cellSize=%g (%d cells)",
		gridEntity, cfg.Dimensions, cfg.CellSize, len(gridComp.GeneratedGrid))
	return nil
}

// SetDimensions 只修改网格尺寸
func (s *GridSystem) SetDimensions(gridEntity ecs.EntityID, dims grid.Coord) error {
	gridComp, _, err := s.lookup(gridEntity)
	if err != nil {
		return err
	}
	cfg := gridComp.Config
	cfg.Dimensions = dims
	return s.SetConfiguration(gridEntity, cfg)
}

// SetCellSize 只修改格子边长
func (s *GridSystem) SetCellSize(gridEntity ecs.EntityID, cellSize float64) error {
	gridComp, _, err := s.lookup(gridEntity)
	if err != nil {
		return err
	}
	cfg := gridComp.Config
	cfg.CellSize = cellSize
	return s.SetConfiguration(gridEntity, cfg)
}

// SetDevOptions 修改显示选项
func (s *GridSystem) SetDevOptions(gridEntity ecs.EntityID, opts components.GridDevOptions) error {
	gridComp, _, err := s.lookup(gridEntity)
	if err != nil {
		return err
	}
	gridComp.DevOptions = opts
	return nil
}

// GetGridOriginRelative 网格几何中心相对拥有者的偏移
func (s *GridSystem) GetGridOriginRelative(gridEntity ecs.EntityID) (grid.Vector3, error) {
	gridComp, _, err := s.lookup(gridEntity)
	if err != nil {
		return grid.Vector3{}, err
	}
	return gridComp.Indexer.GridOriginRelative(), nil
}

// GetGridWorldOriginWorld 网格几何中心的世界位置
func (s *GridSystem) GetGridWorldOriginWorld(gridEntity ecs.EntityID) (grid.Vector3, error) {
	gridComp, origin, err := s.lookup(gridEntity)
	if err != nil {
		return grid.Vector3{}, err
	}
	return gridComp.Indexer.GridOriginWorld(origin), nil
}

// GetGridSize 网格宽高
func (s *GridSystem) GetGridSize(gridEntity ecs.EntityID) (grid.Vector2D, error) {
	gridComp, _, err := s.lookup(gridEntity)
	if err != nil {
		return grid.Vector2D{}, err
	}
	return gridComp.Indexer.GridSize(), nil
}

// GetGridExtents 网格半宽高
func (s *GridSystem) GetGridExtents(gridEntity ecs.EntityID) (grid.Vector2D, error) {
	gridComp, _, err := s.lookup(gridEntity)
	if err != nil {
		return grid.Vector2D{}, err
	}
	return gridComp.Indexer.GridExtents(), nil
}

// GetGridRelativeFromWorld 世界位置转换为相对网格拥有者的位置
func (s *GridSystem) GetGridRelativeFromWorld(gridEntity ecs.EntityID, world grid.Vector3) (grid.Vector3, error) {
	_, origin, err := s.lookup(gridEntity)
	if err != nil {
		return grid.Vector3{}, err
	}
	return grid.WorldToRelative(world, origin), nil
}

// GetCellCenterFromRelative 相对位置吸附到格子中心
// worldSpace 为 true 时返回世界位置
func (s *GridSystem) GetCellCenterFromRelative(gridEntity ecs.EntityID, rel grid.Vector3, worldSpace bool) (grid.Vector3, error) {
	gridComp, origin, err := s.lookup(gridEntity)
	if err != nil {
		return grid.Vector3{}, err
	}
	return gridComp.Indexer.CellCenterFromRelative(rel, origin, worldSpace)
}

// IsInGridBounds 坐标是否在网格内；不是网格时返回 false
func (s *GridSystem) IsInGridBounds(gridEntity ecs.EntityID, c grid.Coord) bool {
	gridComp, _, err := s.lookup(gridEntity)
	if err != nil {
		return false
	}
	return gridComp.Occupancy.IsInBounds(c)
}

// IsClearTile 格子是否未被阻挡；不是网格时返回 false
func (s *GridSystem) IsClearTile(gridEntity ecs.EntityID, c grid.Coord) bool {
	gridComp, _, err := s.lookup(gridEntity)
	if err != nil {
		return false
	}
	return gridComp.Occupancy.IsClear(c)
}

// IsValidLocation 坐标是否在网格内且未被阻挡；不是网格时返回 false
func (s *GridSystem) IsValidLocation(gridEntity ecs.EntityID, c grid.Coord) bool {
	gridComp, _, err := s.lookup(gridEntity)
	if err != nil {
		return false
	}
	return gridComp.Occupancy.IsValid(c)
}

// GetCoordinateFromRelative 相对位置转换为坐标和格子ID
func (s *GridSystem) GetCoordinateFromRelative(gridEntity ecs.EntityID, rel grid.Vector3) (grid.Coord, int, error) {
	gridComp, _, err := s.lookup(gridEntity)
	if err != nil {
		return grid.Coord{}, 0, err
	}
	return gridComp.Indexer.CoordFromRelative(rel)
}

// GetCoordinateFromCellID 格子ID转换为坐标
func (s *GridSystem) GetCoordinateFromCellID(gridEntity ecs.EntityID, id int) (grid.Coord, error) {
	gridComp, _, err := s.lookup(gridEntity)
	if err != nil {
		return grid.Coord{}, err
	}
	return gridComp.Indexer.CoordFromCellID(id)
}

// GetCellIDFromCoordinate 坐标转换为格子ID
func (s *GridSystem) GetCellIDFromCoordinate(gridEntity ecs.EntityID, c grid.Coord) (int, error) {
	gridComp, _, err := s.lookup(gridEntity)
	if err != nil {
		return 0, err
	}
	return gridComp.Indexer.CellIDFromCoord(c), nil
}

// BlockTile 将格子加入阻挡集合
// 不做边界检查，重复阻挡是无操作
func (s *GridSystem) BlockTile(gridEntity ecs.EntityID, c grid.Coord) error {
	gridComp, _, err := s.lookup(gridEntity)
	if err != nil {
		return err
	}
	if gridComp.Occupancy.Block(c) {
		log.Printf("[GridSystem] Grid %d: blocked tile %v (%d blocked)", gridEntity, c, gridComp.Occupancy.Len())
	}
	return nil
}

// HitTest 查找世界位置下方的网格，作为对网格平面的射线检测
// 范围与四舍五入吸附一致：命中点总能吸附到界内格子；多个网格重叠时返回ID最小的
func (s *GridSystem) HitTest(world grid.Vector3) (ecs.EntityID, bool) {
	for _, entity := range s.Grids() {
		gridComp, origin, err := s.lookup(entity)
		if err != nil {
			continue
		}
		rel := grid.WorldToRelative(world, origin)
		size := gridComp.Indexer.GridSize()
		half := gridComp.Config.CellSize * 0.5

		if rel.X > -half && rel.X < size.X-half && rel.Y > -half && rel.Y < size.Y-half {
			return entity, true
		}
	}
	return ecs.InvalidEntity, false
}

// TileLabel 格子的调试文字，X 为行，Y 为列
func TileLabel(c grid.Coord, id int) string {
	return fmt.Sprintf("X:%d, Y:%d\nID:%d", c.Row, c.Column, id)
}
