package systems

import (
	"errors"
	"testing"

	"github.com/decker502/rtsgrid/pkg/components"
	"github.com/decker502/rtsgrid/pkg/config"
	"github.com/decker502/rtsgrid/pkg/ecs"
	"github.com/decker502/rtsgrid/pkg/grid"
)

// recordingHooks 记录回调调用顺序
type recordingHooks struct {
	calls []string
}

func (h *recordingHooks) OnPlacementBegin(ecs.EntityID)     { h.calls = append(h.calls, "begin") }
func (h *recordingHooks) OnPlacementCompleted(ecs.EntityID) { h.calls = append(h.calls, "completed") }
func (h *recordingHooks) OnPlacementCancelled(ecs.EntityID) { h.calls = append(h.calls, "cancelled") }

var testPlaceables = []config.PlaceableConfig{
	{ID: "barracks", Name: "Barracks", BuildDuration: 2, BuildDurationMultiply: 1},
	{ID: "tower", Name: "Tower", BuildDuration: 1, BuildDurationMultiply: 0.5},
}

// createTestPlacement 创建网格和放置系统
func createTestPlacement(t *testing.T, policy ConfirmPolicy) (*ecs.EntityManager, *GridSystem, *PlacementSystem, *recordingHooks, ecs.EntityID) {
	t.Helper()
	em, gs, gridEntity := createTestGrid(t)
	hooks := &recordingHooks{}
	ps := NewPlacementSystem(em, gs, hooks, PlacementOptions{
		Policy:           policy,
		Placeables:       testPlaceables,
		DefaultPlaceable: "barracks",
	})
	return em, gs, ps, hooks, gridEntity
}

// hitAt 构造命中网格局部偏移处的结果
func hitAt(gs *GridSystem, offset grid.Vector3) HitResult {
	world := testGridOrigin.Add(offset)
	entity, _ := gs.HitTest(world)
	return HitResult{Hit: true, Location: world, Entity: entity}
}

func placeablePosition(t *testing.T, em *ecs.EntityManager, entity ecs.EntityID) grid.Vector3 {
	t.Helper()
	pos, ok := ecs.GetComponent[*components.PositionComponent](em, entity)
	if !ok {
		t.Fatalf("entity %d has no PositionComponent", entity)
	}
	return pos.Vector()
}

// TestPlacementTargeting 测试锁定网格的流程
func TestPlacementTargeting(t *testing.T) {
	_, gs, ps, _, gridEntity := createTestPlacement(t, ConfirmPermissive)

	if ps.State() != PlacementStateNoTarget {
		t.Fatalf("initial state = %v, want NoTarget", ps.State())
	}

	// 未命中：无变化
	ps.ObserveHit(HitResult{})
	if ps.State() != PlacementStateNoTarget {
		t.Errorf("state after miss = %v, want NoTarget", ps.State())
	}

	// 命中非网格表面：仍无目标
	ps.ObserveHit(HitResult{Hit: true, Location: grid.Vector3{X: -9999}})
	if ps.State() != PlacementStateNoTarget {
		t.Errorf("state after non-grid hit = %v, want NoTarget", ps.State())
	}

	// 无目标时无法选择建筑
	if _, err := ps.SelectPlaceable("barracks"); !errors.Is(err, ErrNoTarget) {
		t.Errorf("SelectPlaceable without target error = %v, want ErrNoTarget", err)
	}
	if err := ps.HandlePlacement(); !errors.Is(err, ErrNoTarget) {
		t.Errorf("HandlePlacement without target error = %v, want ErrNoTarget", err)
	}

	// 命中网格：锁定，本帧不计算位置
	ps.ObserveHit(hitAt(gs, grid.Vector3{X: 230, Y: 150}))
	if ps.State() != PlacementStateAwaitingPlaceable || ps.TargetGrid() != gridEntity {
		t.Fatalf("state = %v, target = %d; want AwaitingPlaceable, %d", ps.State(), ps.TargetGrid(), gridEntity)
	}
	if ps.PlacementLocation() != (grid.Vector3{}) {
		t.Errorf("PlacementLocation = %v, want unchanged on the targeting frame", ps.PlacementLocation())
	}

	// 之后任何命中都只更新位置，目标不变
	ps.ObserveHit(HitResult{Hit: true, Location: testGridOrigin.Add(grid.Vector3{X: 900, Y: -300})})
	if ps.TargetGrid() != gridEntity {
		t.Error("target should be sticky")
	}
	if ps.PlacementLocation() != (grid.Vector3{X: 900, Y: -300}) {
		t.Errorf("PlacementLocation = %v, want (900, -300, 0)", ps.PlacementLocation())
	}
}

// TestPlacementPreviewFollowsValidCells 测试预览只在有效格子上移动
func TestPlacementPreviewFollowsValidCells(t *testing.T) {
	em, gs, ps, hooks, gridEntity := createTestPlacement(t, ConfirmPermissive)

	ps.ObserveHit(hitAt(gs, grid.Vector3{}))
	ps.ObserveHit(hitAt(gs, grid.Vector3{X: 230, Y: 150}))

	placeable, err := ps.SelectPlaceable("tower")
	if err != nil {
		t.Fatalf("SelectPlaceable() error: %v", err)
	}
	if ps.State() != PlacementStatePreviewing || ps.ActivePlaceable() != placeable {
		t.Fatalf("state = %v, active = %d", ps.State(), ps.ActivePlaceable())
	}
	if len(hooks.calls) != 1 || hooks.calls[0] != "begin" {
		t.Errorf("hooks = %v, want [begin]", hooks.calls)
	}

	// 生成在最近一次的相对位置
	if got := placeablePosition(t, em, placeable); got != (grid.Vector3{X: 230, Y: 150}) {
		t.Errorf("spawn position = %v, want (230, 150, 0)", got)
	}

	comp, _ := ecs.GetComponent[*components.PlaceableComponent](em, placeable)
	if comp.TypeID != "tower" || comp.TotalBuildTime() != 0.5 {
		t.Errorf("placeable = %+v", comp)
	}

	// 已在预览中
	if _, err := ps.SelectPlaceable("barracks"); !errors.Is(err, ErrPlacementInProgress) {
		t.Errorf("second SelectPlaceable error = %v, want ErrPlacementInProgress", err)
	}

	// 有效格子：吸附到世界中心
	ps.ObserveHit(hitAt(gs, grid.Vector3{X: 230, Y: 150}))
	if got := placeablePosition(t, em, placeable); got != (grid.Vector3{X: 1200, Y: 2200}) {
		t.Errorf("snapped position = %v, want (1200, 2200, 0)", got)
	}

	// 被阻挡的格子：停在上一个有效位置
	gs.BlockTile(gridEntity, grid.NewCoord(0, 0))
	ps.ObserveHit(hitAt(gs, grid.Vector3{X: 10, Y: -10}))
	if got := placeablePosition(t, em, placeable); got != (grid.Vector3{X: 1200, Y: 2200}) {
		t.Errorf("position on blocked cell = %v, want last valid (1200, 2200, 0)", got)
	}

	// 越界：同样停留
	ps.ObserveHit(HitResult{Hit: true, Location: testGridOrigin.Add(grid.Vector3{X: 800})})
	if got := placeablePosition(t, em, placeable); got != (grid.Vector3{X: 1200, Y: 2200}) {
		t.Errorf("position out of bounds = %v, want last valid (1200, 2200, 0)", got)
	}

	// 另一个有效格子
	ps.ObserveHit(hitAt(gs, grid.Vector3{X: 90, Y: 310}))
	if got := placeablePosition(t, em, placeable); got != (grid.Vector3{X: 1100, Y: 2300}) {
		t.Errorf("snapped position = %v, want (1100, 2300, 0)", got)
	}
}

// TestPlacementConfirm 测试确认放置阻挡格子并回到等待状态
func TestPlacementConfirm(t *testing.T) {
	em, gs, ps, hooks, gridEntity := createTestPlacement(t, ConfirmPermissive)

	ps.ObserveHit(hitAt(gs, grid.Vector3{}))
	ps.ObserveHit(hitAt(gs, grid.Vector3{X: 230, Y: 150}))

	if err := ps.HandlePlacement(); err != nil {
		t.Fatalf("HandlePlacement() (begin) error: %v", err)
	}
	placeable := ps.ActivePlaceable()

	if err := ps.HandlePlacement(); err != nil {
		t.Fatalf("HandlePlacement() (confirm) error: %v", err)
	}

	if gs.IsValidLocation(gridEntity, grid.NewCoord(2, 2)) {
		t.Error("(2,2) should be blocked after confirm")
	}
	if ps.State() != PlacementStateAwaitingPlaceable || ps.LastOutcome() != PlacementStateConfirmed {
		t.Errorf("state = %v, outcome = %v; want AwaitingPlaceable, Confirmed", ps.State(), ps.LastOutcome())
	}
	if ps.ActivePlaceable() != ecs.InvalidEntity {
		t.Error("active placeable should be cleared")
	}
	if len(hooks.calls) != 2 || hooks.calls[1] != "completed" {
		t.Errorf("hooks = %v, want [begin completed]", hooks.calls)
	}

	comp, _ := ecs.GetComponent[*components.PlaceableComponent](em, placeable)
	if comp.TypeID != "barracks" || comp.GridEntity != gridEntity || comp.Coord != grid.NewCoord(2, 2) {
		t.Errorf("placed component = %+v", comp)
	}

	// 确认后可以立即开始下一次放置
	if _, err := ps.Confirm(); !errors.Is(err, ErrNotPreviewing) {
		t.Errorf("Confirm while awaiting error = %v, want ErrNotPreviewing", err)
	}
	if _, err := ps.SelectPlaceable("tower"); err != nil {
		t.Errorf("SelectPlaceable after confirm error: %v", err)
	}
}

// TestConfirmPolicy 测试两种确认策略在无效格子上的行为
func TestConfirmPolicy(t *testing.T) {
	tests := []struct {
		name        string
		policy      ConfirmPolicy
		wantErr     error
		wantState   PlacementState
		wantBlocked int
	}{
		{"宽松策略照常阻挡", ConfirmPermissive, nil, PlacementStateAwaitingPlaceable, 2},
		{"严格策略拒绝", ConfirmRequireValid, grid.ErrConfirmOnInvalidCell, PlacementStatePreviewing, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			em, gs, ps, _, gridEntity := createTestPlacement(t, tt.policy)
			gs.BlockTile(gridEntity, grid.NewCoord(1, 1))

			ps.ObserveHit(hitAt(gs, grid.Vector3{}))
			ps.SelectPlaceable("barracks")

			// 越界位置，吸附到 (column 1, row 6)
			ps.ObserveHit(HitResult{Hit: true, Location: testGridOrigin.Add(grid.Vector3{X: 600, Y: 100})})

			coord, err := ps.Confirm()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Confirm() error = %v, want %v", err, tt.wantErr)
			}
			if coord != grid.NewCoord(1, 6) {
				t.Errorf("Confirm() coord = %v, want (1,6)", coord)
			}
			if ps.State() != tt.wantState {
				t.Errorf("state = %v, want %v", ps.State(), tt.wantState)
			}

			gridComp, _ := ecs.GetComponent[*components.GridSystemComponent](em, gridEntity)
			if gridComp.Occupancy.Len() != tt.wantBlocked {
				t.Errorf("blocked count = %d, want %d", gridComp.Occupancy.Len(), tt.wantBlocked)
			}
		})
	}
}

// TestConfirmRequireValidThenMove 严格策略下移到有效格子后可以确认
func TestConfirmRequireValidThenMove(t *testing.T) {
	_, gs, ps, _, gridEntity := createTestPlacement(t, ConfirmRequireValid)
	gs.BlockTile(gridEntity, grid.NewCoord(0, 0))

	ps.ObserveHit(hitAt(gs, grid.Vector3{}))
	ps.SelectPlaceable("barracks")
	ps.ObserveHit(hitAt(gs, grid.Vector3{}))

	if _, err := ps.Confirm(); !errors.Is(err, grid.ErrConfirmOnInvalidCell) {
		t.Fatalf("Confirm on blocked cell error = %v, want ErrConfirmOnInvalidCell", err)
	}

	ps.ObserveHit(hitAt(gs, grid.Vector3{X: 100}))
	coord, err := ps.Confirm()
	if err != nil || coord != grid.NewCoord(0, 1) {
		t.Errorf("Confirm() = %v, %v; want (0,1), nil", coord, err)
	}
}

// TestPlacementCancel 测试取消预览
func TestPlacementCancel(t *testing.T) {
	em, gs, ps, hooks, gridEntity := createTestPlacement(t, ConfirmPermissive)

	if err := ps.Cancel(); !errors.Is(err, ErrNotPreviewing) {
		t.Errorf("Cancel without preview error = %v, want ErrNotPreviewing", err)
	}

	ps.ObserveHit(hitAt(gs, grid.Vector3{}))
	placeable, _ := ps.SelectPlaceable("barracks")
	ps.ObserveHit(hitAt(gs, grid.Vector3{X: 100, Y: 100}))

	if err := ps.Cancel(); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	if ps.State() != PlacementStateAwaitingPlaceable || ps.LastOutcome() != PlacementStateCancelled {
		t.Errorf("state = %v, outcome = %v; want AwaitingPlaceable, Cancelled", ps.State(), ps.LastOutcome())
	}
	if len(hooks.calls) != 2 || hooks.calls[1] != "cancelled" {
		t.Errorf("hooks = %v, want [begin cancelled]", hooks.calls)
	}

	// 取消不阻挡格子
	if !gs.IsValidLocation(gridEntity, grid.NewCoord(1, 1)) {
		t.Error("cancel must not block the hovered cell")
	}

	em.RemoveMarkedEntities()
	if em.EntityExists(placeable) {
		t.Error("cancelled preview entity should be destroyed")
	}
}

// TestSelectUnknownPlaceable 测试未配置的建筑类型
func TestSelectUnknownPlaceable(t *testing.T) {
	_, gs, ps, _, _ := createTestPlacement(t, ConfirmPermissive)
	ps.ObserveHit(hitAt(gs, grid.Vector3{}))

	if _, err := ps.SelectPlaceable("ghost"); !errors.Is(err, ErrUnknownPlaceable) {
		t.Errorf("error = %v, want ErrUnknownPlaceable", err)
	}
	if ps.State() != PlacementStateAwaitingPlaceable {
		t.Errorf("state = %v, want AwaitingPlaceable", ps.State())
	}
}

// TestHandlePlacementWithoutDefault 未配置默认建筑时主操作什么也不做
func TestHandlePlacementWithoutDefault(t *testing.T) {
	em, gs, gridEntity := createTestGrid(t)
	ps := NewPlacementSystem(em, gs, nil, PlacementOptions{})

	ps.ObserveHit(hitAt(gs, grid.Vector3{}))
	if err := ps.HandlePlacement(); err != nil {
		t.Errorf("HandlePlacement() error = %v, want nil", err)
	}
	if ps.State() != PlacementStateAwaitingPlaceable {
		t.Errorf("state = %v, want AwaitingPlaceable", ps.State())
	}
	if ps.TargetGrid() != gridEntity {
		t.Errorf("target = %d, want %d", ps.TargetGrid(), gridEntity)
	}
}

// TestHoveredCoord 测试悬停格子查询
func TestHoveredCoord(t *testing.T) {
	_, gs, ps, _, gridEntity := createTestPlacement(t, ConfirmPermissive)

	if _, _, err := ps.HoveredCoord(); !errors.Is(err, ErrNoTarget) {
		t.Errorf("HoveredCoord without target error = %v, want ErrNoTarget", err)
	}

	ps.ObserveHit(hitAt(gs, grid.Vector3{}))
	ps.ObserveHit(hitAt(gs, grid.Vector3{X: 310, Y: 190}))
	c, valid, err := ps.HoveredCoord()
	if err != nil || c != grid.NewCoord(2, 3) || !valid {
		t.Errorf("HoveredCoord() = %v, %v, %v; want (2,3), true, nil", c, valid, err)
	}

	gs.BlockTile(gridEntity, c)
	if _, valid, _ := ps.HoveredCoord(); valid {
		t.Error("blocked hovered cell should be invalid")
	}
}

// TestParseConfirmPolicy 测试策略名解析
func TestParseConfirmPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    ConfirmPolicy
		wantErr bool
	}{
		{"", ConfirmPermissive, false},
		{config.ConfirmPolicyPermissive, ConfirmPermissive, false},
		{config.ConfirmPolicyRequireValid, ConfirmRequireValid, false},
		{"strict", ConfirmPermissive, true},
	}

	for _, tt := range tests {
		got, err := ParseConfirmPolicy(tt.input)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseConfirmPolicy(%q) = %v, %v", tt.input, got, err)
		}
	}

	if ConfirmRequireValid.String() != config.ConfirmPolicyRequireValid {
		t.Errorf("String() = %q", ConfirmRequireValid.String())
	}
}

// TestPlacementOptionsFromConfig 测试从配置文件构造选项
func TestPlacementOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultGridFileConfig()
	cfg.Placement.ConfirmPolicy = config.ConfirmPolicyRequireValid
	cfg.Placeables = testPlaceables
	cfg.Placement.DefaultPlaceable = "tower"

	opts, err := PlacementOptionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("PlacementOptionsFromConfig() error: %v", err)
	}
	if opts.Policy != ConfirmRequireValid || opts.DefaultPlaceable != "tower" || len(opts.Placeables) != 2 {
		t.Errorf("options = %+v", opts)
	}

	cfg.Placement.ConfirmPolicy = "bogus"
	if _, err := PlacementOptionsFromConfig(cfg); err == nil {
		t.Error("expected an error for an unknown policy")
	}
}
