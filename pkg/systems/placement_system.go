package systems

import (
	"errors"
	"fmt"
	"log"

	"github.com/decker502/rtsgrid/pkg/components"
	"github.com/decker502/rtsgrid/pkg/config"
	"github.com/decker502/rtsgrid/pkg/ecs"
	"github.com/decker502/rtsgrid/pkg/grid"
)

// 放置流程的哨兵错误
var (
	// ErrNoTarget 还没有锁定网格
	ErrNoTarget = errors.New("no grid targeted")
	// ErrPlacementInProgress 已经有一个建筑在预览中
	ErrPlacementInProgress = errors.New("a placement is already in progress")
	// ErrNotPreviewing 当前没有预览中的建筑
	ErrNotPreviewing = errors.New("no placeable is being previewed")
	// ErrUnknownPlaceable 建筑类型ID未配置
	ErrUnknownPlaceable = errors.New("unknown placeable type")
)

// PlacementState 放置状态机的状态
type PlacementState int

const (
	// PlacementStateNoTarget 尚未命中任何网格
	PlacementStateNoTarget PlacementState = iota
	// PlacementStateAwaitingPlaceable 已锁定网格，等待选择建筑
	PlacementStateAwaitingPlaceable
	// PlacementStatePreviewing 建筑预览跟随光标
	PlacementStatePreviewing
	// PlacementStateConfirmed 放置已确认（只作为上一次结果出现）
	PlacementStateConfirmed
	// PlacementStateCancelled 放置已取消（只作为上一次结果出现）
	PlacementStateCancelled
)

func (s PlacementState) String() string {
	switch s {
	case PlacementStateNoTarget:
		return "NoTarget"
	case PlacementStateAwaitingPlaceable:
		return "AwaitingPlaceable"
	case PlacementStatePreviewing:
		return "Previewing"
	case PlacementStateConfirmed:
		return "Confirmed"
	case PlacementStateCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// ConfirmPolicy 确认放置时是否重新校验格子
type ConfirmPolicy int

const (
	// ConfirmPermissive 不校验，直接阻挡目标格子
	ConfirmPermissive ConfirmPolicy = iota
	// ConfirmRequireValid 目标格子无效时拒绝确认，继续预览
	ConfirmRequireValid
)

func (p ConfirmPolicy) String() string {
	if p == ConfirmRequireValid {
		return config.ConfirmPolicyRequireValid
	}
	return config.ConfirmPolicyPermissive
}

// ParseConfirmPolicy 解析配置文件中的策略名
func ParseConfirmPolicy(name string) (ConfirmPolicy, error) {
	switch name {
	case "", config.ConfirmPolicyPermissive:
		return ConfirmPermissive, nil
	case config.ConfirmPolicyRequireValid:
		return ConfirmRequireValid, nil
	default:
		return ConfirmPermissive, fmt.Errorf("unknown confirm policy %q", name)
	}
}

// HitResult 光标射线的命中结果
type HitResult struct {
	// Hit 射线是否命中了任何表面
	Hit bool
	// Location 命中点的世界位置
	Location grid.Vector3
	// Entity 被命中的实体；不是网格或未命中任何实体时为 ecs.InvalidEntity
	Entity ecs.EntityID
}

// PlacementHooks 放置流程的回调
// 参数均为建筑实体ID
type PlacementHooks interface {
	OnPlacementBegin(placeable ecs.EntityID)
	OnPlacementCompleted(placeable ecs.EntityID)
	OnPlacementCancelled(placeable ecs.EntityID)
}

// PlacementOptions 放置系统的配置
type PlacementOptions struct {
	Policy           ConfirmPolicy
	Placeables       []config.PlaceableConfig
	DefaultPlaceable string
}

// PlacementOptionsFromConfig 从网格配置文件构造放置选项
func PlacementOptionsFromConfig(cfg *config.GridFileConfig) (PlacementOptions, error) {
	policy, err := ParseConfirmPolicy(cfg.Placement.ConfirmPolicy)
	if err != nil {
		return PlacementOptions{}, err
	}
	return PlacementOptions{
		Policy:           policy,
		Placeables:       cfg.Placeables,
		DefaultPlaceable: cfg.Placement.DefaultPlaceable,
	}, nil
}

// PlacementSystem 放置控制器
//
// 状态流转：
//
//	NoTarget -> AwaitingPlaceable -> Previewing -> (Confirmed | Cancelled) -> AwaitingPlaceable
//
// Confirmed 和 Cancelled 只记录在 LastOutcome 中，同一次调用内回到 AwaitingPlaceable。
// 目标网格一旦锁定就不会再改变。
type PlacementSystem struct {
	entityManager *ecs.EntityManager
	gridSystem    *GridSystem
	hooks         PlacementHooks

	policy           ConfirmPolicy
	placeables       map[string]config.PlaceableConfig
	placeableOrder   []string
	defaultPlaceable string

	state       PlacementState
	lastOutcome PlacementState

	// 放置会话
	targetGrid        ecs.EntityID
	placementLocation grid.Vector3 // 相对目标网格拥有者的位置
	activePlaceable   ecs.EntityID
}

// NewPlacementSystem 创建放置系统
// hooks 为 nil 时不触发回调
func NewPlacementSystem(em *ecs.EntityManager, gs *GridSystem, hooks PlacementHooks, opts PlacementOptions) *PlacementSystem {
	s := &PlacementSystem{
		entityManager:    em,
		gridSystem:       gs,
		hooks:            hooks,
		policy:           opts.Policy,
		placeables:       make(map[string]config.PlaceableConfig, len(opts.Placeables)),
		defaultPlaceable: opts.DefaultPlaceable,
		state:            PlacementStateNoTarget,
		lastOutcome:      PlacementStateNoTarget,
	}
	for _, p := range opts.Placeables {
		if _, exists := s.placeables[p.ID]; !exists {
			s.placeableOrder = append(s.placeableOrder, p.ID)
		}
		s.placeables[p.ID] = p
	}
	return s
}

// State 当前状态
func (s *PlacementSystem) State() PlacementState { return s.state }

// LastOutcome 上一次放置的结果（Confirmed 或 Cancelled），尚无结果时为 NoTarget
func (s *PlacementSystem) LastOutcome() PlacementState { return s.lastOutcome }

// TargetGrid 锁定的网格实体
func (s *PlacementSystem) TargetGrid() ecs.EntityID { return s.targetGrid }

// PlacementLocation 最近一次计算的相对位置
func (s *PlacementSystem) PlacementLocation() grid.Vector3 { return s.placementLocation }

// ActivePlaceable 预览中的建筑实体
func (s *PlacementSystem) ActivePlaceable() ecs.EntityID { return s.activePlaceable }

// Policy 当前确认策略
func (s *PlacementSystem) Policy() ConfirmPolicy { return s.policy }

// SetPolicy 修改确认策略
func (s *PlacementSystem) SetPolicy(p ConfirmPolicy) {
	s.policy = p
	log.Printf("[PlacementSystem] Confirm policy set to %s", p)
}

// PlaceableIDs 已配置的建筑类型，按配置顺序
func (s *PlacementSystem) PlaceableIDs() []string {
	return append([]string(nil), s.placeableOrder...)
}

// HoveredCoord 最近一次光标位置对应的格子及其是否有效
func (s *PlacementSystem) HoveredCoord() (grid.Coord, bool, error) {
	if s.targetGrid == ecs.InvalidEntity {
		return grid.Coord{}, false, ErrNoTarget
	}
	c, _, err := s.gridSystem.GetCoordinateFromRelative(s.targetGrid, s.placementLocation)
	if err != nil {
		return grid.Coord{}, false, err
	}
	return c, s.gridSystem.IsValidLocation(s.targetGrid, c), nil
}

// ObserveHit 处理一帧的光标命中结果
//
// 未命中时什么也不做。尚未锁定网格时，命中网格即锁定并结束本帧。
// 之后每帧都以锁定的网格重新计算相对位置；预览中且格子有效时，
// 预览建筑移动到吸附后的格子中心，格子无效时预览停在上一个有效位置。
func (s *PlacementSystem) ObserveHit(hit HitResult) {
	if !hit.Hit {
		return
	}

	if s.targetGrid == ecs.InvalidEntity {
		if hit.Entity != ecs.InvalidEntity && s.gridSystem.IsGrid(hit.Entity) {
			s.targetGrid = hit.Entity
			s.state = PlacementStateAwaitingPlaceable
			log.Printf("[PlacementSystem] Targeted grid entity %d", hit.Entity)
		}
		return
	}

	rel, err := s.gridSystem.GetGridRelativeFromWorld(s.targetGrid, hit.Location)
	if err != nil {
		return
	}
	s.placementLocation = rel

	if s.state != PlacementStatePreviewing {
		return
	}

	coord, _, err := s.gridSystem.GetCoordinateFromRelative(s.targetGrid, rel)
	if err != nil || !s.gridSystem.IsValidLocation(s.targetGrid, coord) {
		return
	}
	center, err := s.gridSystem.GetCellCenterFromRelative(s.targetGrid, rel, true)
	if err != nil {
		return
	}
	if pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, s.activePlaceable); ok {
		pos.Set(center)
	}
}

// SelectPlaceable 选择建筑类型并开始预览
// 只能在 AwaitingPlaceable 状态调用，预览实体生成在最近一次的相对位置
func (s *PlacementSystem) SelectPlaceable(typeID string) (ecs.EntityID, error) {
	switch s.state {
	case PlacementStateNoTarget:
		return ecs.InvalidEntity, ErrNoTarget
	case PlacementStatePreviewing:
		return ecs.InvalidEntity, ErrPlacementInProgress
	}

	def, ok := s.placeables[typeID]
	if !ok {
		return ecs.InvalidEntity, fmt.Errorf("%w: %q", ErrUnknownPlaceable, typeID)
	}

	entity := s.entityManager.CreateEntity()
	loc := s.placementLocation
	ecs.AddComponent(s.entityManager, entity, &components.PositionComponent{X: loc.X, Y: loc.Y, Z: loc.Z})
	ecs.AddComponent(s.entityManager, entity, &components.PlaceableComponent{
		TypeID:                def.ID,
		Name:                  def.Name,
		BuildDuration:         def.BuildDuration,
		BuildDurationMultiply: def.BuildDurationMultiply,
		ConstructionProxy:     def.ConstructionProxy,
		PlacementProxy:        def.PlacementProxy,
		State:                 components.PlaceableStatePreviewing,
	})

	s.activePlaceable = entity
	s.state = PlacementStatePreviewing
	log.Printf("[PlacementSystem] Previewing %s (entity %d)", def.ID, entity)

	if s.hooks != nil {
		s.hooks.OnPlacementBegin(entity)
	}
	return entity, nil
}

// Confirm 确认放置，阻挡目标格子
//
// ConfirmPermissive 下无论格子是否有效都会阻挡；
// ConfirmRequireValid 下格子无效时返回 grid.ErrConfirmOnInvalidCell 并保持预览。
func (s *PlacementSystem) Confirm() (grid.Coord, error) {
	if s.state != PlacementStatePreviewing {
		return grid.Coord{}, ErrNotPreviewing
	}

	coord, _, err := s.gridSystem.GetCoordinateFromRelative(s.targetGrid, s.placementLocation)
	if err != nil {
		return grid.Coord{}, err
	}

	if s.policy == ConfirmRequireValid && !s.gridSystem.IsValidLocation(s.targetGrid, coord) {
		log.Printf("[PlacementSystem] Rejected confirm on invalid cell %v", coord)
		return coord, fmt.Errorf("%w: %v", grid.ErrConfirmOnInvalidCell, coord)
	}

	if err := s.gridSystem.BlockTile(s.targetGrid, coord); err != nil {
		return coord, err
	}

	placeable := s.activePlaceable
	if comp, ok := ecs.GetComponent[*components.PlaceableComponent](s.entityManager, placeable); ok {
		comp.GridEntity = s.targetGrid
		comp.Coord = coord
	}

	if s.hooks != nil {
		s.hooks.OnPlacementCompleted(placeable)
	}

	s.activePlaceable = ecs.InvalidEntity
	s.lastOutcome = PlacementStateConfirmed
	s.state = PlacementStateAwaitingPlaceable
	log.Printf("[PlacementSystem] Placement confirmed at %v (entity %d)", coord, placeable)
	return coord, nil
}

// Cancel 取消预览并销毁预览实体
func (s *PlacementSystem) Cancel() error {
	if s.state != PlacementStatePreviewing {
		return ErrNotPreviewing
	}

	placeable := s.activePlaceable
	if s.hooks != nil {
		s.hooks.OnPlacementCancelled(placeable)
	}
	s.entityManager.DestroyEntity(placeable)

	s.activePlaceable = ecs.InvalidEntity
	s.lastOutcome = PlacementStateCancelled
	s.state = PlacementStateAwaitingPlaceable
	log.Printf("[PlacementSystem] Placement cancelled (entity %d)", placeable)
	return nil
}

// HandlePlacement 主操作键：预览中则确认，否则开始预览默认建筑
// 未配置默认建筑时不做任何事
func (s *PlacementSystem) HandlePlacement() error {
	switch s.state {
	case PlacementStateNoTarget:
		return ErrNoTarget
	case PlacementStatePreviewing:
		_, err := s.Confirm()
		return err
	}

	if s.defaultPlaceable == "" {
		return nil
	}
	_, err := s.SelectPlaceable(s.defaultPlaceable)
	return err
}
