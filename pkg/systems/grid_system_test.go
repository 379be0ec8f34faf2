package systems

import (
	"errors"
	"testing"

	"github.com/decker502/rtsgrid/pkg/components"
	"github.com/decker502/rtsgrid/pkg/ecs"
	"github.com/decker502/rtsgrid/pkg/grid"
)

var testGridOrigin = grid.Vector3{X: 1000, Y: 2000, Z: 0}

// createTestGrid 创建默认 4x4、边长 100 的网格
func createTestGrid(t *testing.T) (*ecs.EntityManager, *GridSystem, ecs.EntityID) {
	t.Helper()
	em := ecs.NewEntityManager()
	gs := NewGridSystem(em)
	gridEntity, err := gs.CreateGrid(grid.DefaultConfiguration(), testGridOrigin, components.DefaultGridDevOptions())
	if err != nil {
		t.Fatalf("CreateGrid() error: %v", err)
	}
	return em, gs, gridEntity
}

// TestCreateGrid 测试网格实体的组件和生成的格子
func TestCreateGrid(t *testing.T) {
	em, _, gridEntity := createTestGrid(t)

	gridComp, ok := ecs.GetComponent[*components.GridSystemComponent](em, gridEntity)
	if !ok {
		t.Fatal("grid entity should have GridSystemComponent")
	}
	if len(gridComp.GeneratedGrid) != 16 || len(gridComp.Instances) != 16 {
		t.Fatalf("generated %d coords / %d instances, want 16", len(gridComp.GeneratedGrid), len(gridComp.Instances))
	}

	inst := gridComp.Instances[10]
	if inst.Coord != grid.NewCoord(2, 2) {
		t.Errorf("Instances[10].Coord = %v, want (2,2)", inst.Coord)
	}
	if inst.Location != (grid.Vector3{X: 200, Y: 200}) {
		t.Errorf("Instances[10].Location = %v, want (200, 200, 0)", inst.Location)
	}
	if inst.Scale != 1.0 {
		t.Errorf("Instances[10].Scale = %g, want 1", inst.Scale)
	}
}

// TestCreateGridInvalid 测试无效配置不创建实体
func TestCreateGridInvalid(t *testing.T) {
	em := ecs.NewEntityManager()
	gs := NewGridSystem(em)

	tests := []struct {
		name    string
		cfg     grid.Configuration
		wantErr error
	}{
		{"零列", grid.Configuration{Dimensions: grid.NewCoord(0, 4), CellSize: 100}, grid.ErrInvalidDimension},
		{"负行", grid.Configuration{Dimensions: grid.NewCoord(4, -1), CellSize: 100}, grid.ErrInvalidDimension},
		{"零边长", grid.Configuration{Dimensions: grid.Splat(4), CellSize: 0}, grid.ErrInvalidCellSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity, err := gs.CreateGrid(tt.cfg, grid.Vector3{}, components.DefaultGridDevOptions())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if entity != ecs.InvalidEntity {
				t.Errorf("entity = %d, want InvalidEntity", entity)
			}
		})
	}

	if len(gs.Grids()) != 0 {
		t.Errorf("Grids() = %v, want none", gs.Grids())
	}
}

// TestGridGeometryQueries 测试网格原点、尺寸和半尺寸
func TestGridGeometryQueries(t *testing.T) {
	_, gs, gridEntity := createTestGrid(t)

	rel, err := gs.GetGridOriginRelative(gridEntity)
	if err != nil || rel != (grid.Vector3{X: 150, Y: 150}) {
		t.Errorf("GetGridOriginRelative() = %v, %v; want (150, 150, 0)", rel, err)
	}

	world, err := gs.GetGridWorldOriginWorld(gridEntity)
	if err != nil || world != (grid.Vector3{X: 1150, Y: 2150}) {
		t.Errorf("GetGridWorldOriginWorld() = %v, %v; want (1150, 2150, 0)", world, err)
	}

	size, err := gs.GetGridSize(gridEntity)
	if err != nil || size != (grid.Vector2D{X: 400, Y: 400}) {
		t.Errorf("GetGridSize() = %v, %v; want (400, 400)", size, err)
	}

	extents, err := gs.GetGridExtents(gridEntity)
	if err != nil || extents != (grid.Vector2D{X: 200, Y: 200}) {
		t.Errorf("GetGridExtents() = %v, %v; want (200, 200)", extents, err)
	}
}

// TestWorldToCellRoundTrip 测试世界位置 -> 坐标 -> 格子中心
func TestWorldToCellRoundTrip(t *testing.T) {
	_, gs, gridEntity := createTestGrid(t)

	world := testGridOrigin.Add(grid.Vector3{X: 230, Y: 150})
	rel, err := gs.GetGridRelativeFromWorld(gridEntity, world)
	if err != nil {
		t.Fatalf("GetGridRelativeFromWorld() error: %v", err)
	}
	if rel != (grid.Vector3{X: 230, Y: 150}) {
		t.Errorf("relative = %v, want (230, 150, 0)", rel)
	}

	coord, id, err := gs.GetCoordinateFromRelative(gridEntity, rel)
	if err != nil {
		t.Fatalf("GetCoordinateFromRelative() error: %v", err)
	}
	if coord != grid.NewCoord(2, 2) || id != 10 {
		t.Errorf("coord, id = %v, %d; want (2,2), 10", coord, id)
	}

	center, err := gs.GetCellCenterFromRelative(gridEntity, rel, true)
	if err != nil || center != (grid.Vector3{X: 1200, Y: 2200}) {
		t.Errorf("world center = %v, %v; want (1200, 2200, 0)", center, err)
	}
	local, _ := gs.GetCellCenterFromRelative(gridEntity, rel, false)
	if local != (grid.Vector3{X: 200, Y: 200}) {
		t.Errorf("local center = %v, want (200, 200, 0)", local)
	}

	back, err := gs.GetCoordinateFromCellID(gridEntity, id)
	if err != nil || back != coord {
		t.Errorf("GetCoordinateFromCellID(%d) = %v, %v; want %v", id, back, err, coord)
	}
	gotID, _ := gs.GetCellIDFromCoordinate(gridEntity, coord)
	if gotID != id {
		t.Errorf("GetCellIDFromCoordinate(%v) = %d, want %d", coord, gotID, id)
	}

	if _, err := gs.GetCoordinateFromCellID(gridEntity, 16); !errors.Is(err, grid.ErrCellIDOutOfRange) {
		t.Errorf("GetCoordinateFromCellID(16) error = %v, want ErrCellIDOutOfRange", err)
	}
}

// TestBlockTile 测试阻挡格子后的有效性查询
func TestBlockTile(t *testing.T) {
	_, gs, gridEntity := createTestGrid(t)

	if err := gs.BlockTile(gridEntity, grid.NewCoord(1, 1)); err != nil {
		t.Fatalf("BlockTile() error: %v", err)
	}

	if gs.IsClearTile(gridEntity, grid.NewCoord(1, 1)) {
		t.Error("(1,1) should not be clear")
	}
	if gs.IsValidLocation(gridEntity, grid.NewCoord(1, 1)) {
		t.Error("(1,1) should not be valid")
	}
	if !gs.IsValidLocation(gridEntity, grid.NewCoord(2, 2)) {
		t.Error("(2,2) should still be valid")
	}
	if gs.IsInGridBounds(gridEntity, grid.NewCoord(4, 0)) {
		t.Error("(4,0) should be out of bounds")
	}
	if !gs.IsInGridBounds(gridEntity, grid.NewCoord(1, 1)) {
		t.Error("blocked (1,1) is still in bounds")
	}
}

// TestSetConfiguration 测试修改配置后重新生成格子，无效修改被拒绝
func TestSetConfiguration(t *testing.T) {
	em, gs, gridEntity := createTestGrid(t)
	gridComp, _ := ecs.GetComponent[*components.GridSystemComponent](em, gridEntity)

	gs.BlockTile(gridEntity, grid.NewCoord(0, 1))

	// 无效尺寸：拒绝且保持原配置
	err := gs.SetDimensions(gridEntity, grid.NewCoord(0, 4))
	if !errors.Is(err, grid.ErrInvalidDimension) {
		t.Errorf("SetDimensions((0,4)) error = %v, want ErrInvalidDimension", err)
	}
	if gridComp.Config != grid.DefaultConfiguration() || len(gridComp.GeneratedGrid) != 16 {
		t.Errorf("configuration changed after rejected edit: %+v", gridComp.Config)
	}

	// 无效边长
	if err := gs.SetCellSize(gridEntity, -5); !errors.Is(err, grid.ErrInvalidCellSize) {
		t.Errorf("SetCellSize(-5) error = %v, want ErrInvalidCellSize", err)
	}

	// 有效修改：3 列 2 行，列在外层循环
	if err := gs.SetDimensions(gridEntity, grid.NewCoord(3, 2)); err != nil {
		t.Fatalf("SetDimensions((3,2)) error: %v", err)
	}
	want := []grid.Coord{
		grid.NewCoord(0, 0), grid.NewCoord(0, 1),
		grid.NewCoord(1, 0), grid.NewCoord(1, 1),
		grid.NewCoord(2, 0), grid.NewCoord(2, 1),
	}
	if len(gridComp.GeneratedGrid) != len(want) {
		t.Fatalf("GeneratedGrid = %v, want %v", gridComp.GeneratedGrid, want)
	}
	for i, c := range want {
		if gridComp.GeneratedGrid[i] != c {
			t.Errorf("GeneratedGrid[%d] = %v, want %v", i, gridComp.GeneratedGrid[i], c)
		}
		if id, _ := gs.GetCellIDFromCoordinate(gridEntity, c); id != i {
			t.Errorf("cell id of %v = %d, want list index %d", c, id, i)
		}
	}

	if err := gs.SetCellSize(gridEntity, 50); err != nil {
		t.Fatalf("SetCellSize(50) error: %v", err)
	}
	if gridComp.Instances[1].Location != (grid.Vector3{X: 50, Y: 0}) || gridComp.Instances[1].Scale != 0.5 {
		t.Errorf("Instances[1] = %+v, want location (50, 0, 0), scale 0.5", gridComp.Instances[1])
	}

	// 阻挡集合在重新配置后保留
	if gs.IsClearTile(gridEntity, grid.NewCoord(0, 1)) {
		t.Error("blocked tile should survive reconfiguration")
	}
}

// TestSetDevOptions 测试显示选项修改
func TestSetDevOptions(t *testing.T) {
	em, gs, gridEntity := createTestGrid(t)

	opts := components.GridDevOptions{ShowTileTextInfo: true}
	if err := gs.SetDevOptions(gridEntity, opts); err != nil {
		t.Fatalf("SetDevOptions() error: %v", err)
	}
	gridComp, _ := ecs.GetComponent[*components.GridSystemComponent](em, gridEntity)
	if gridComp.DevOptions != opts {
		t.Errorf("DevOptions = %+v, want %+v", gridComp.DevOptions, opts)
	}
}

// TestHitTest 测试对网格平面的射线检测
func TestHitTest(t *testing.T) {
	_, gs, gridEntity := createTestGrid(t)

	tests := []struct {
		name   string
		offset grid.Vector3
		hit    bool
	}{
		{"原点格子中心", grid.Vector3{}, true},
		{"左上角内侧", grid.Vector3{X: -49, Y: -49}, true},
		{"左边界", grid.Vector3{X: -50, Y: 0}, false},
		{"右下角内侧", grid.Vector3{X: 349, Y: 349}, true},
		{"右边界", grid.Vector3{X: 0, Y: 350}, false},
		{"远处", grid.Vector3{X: 5000, Y: 5000}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity, ok := gs.HitTest(testGridOrigin.Add(tt.offset))
			if ok != tt.hit {
				t.Fatalf("HitTest(%v) hit = %v, want %v", tt.offset, ok, tt.hit)
			}
			if ok && entity != gridEntity {
				t.Errorf("HitTest entity = %d, want %d", entity, gridEntity)
			}
			if ok {
				// 命中点总能吸附到界内格子
				c, _, _ := gs.GetCoordinateFromRelative(gridEntity, tt.offset)
				if !gs.IsInGridBounds(gridEntity, c) {
					t.Errorf("hit %v snapped to out-of-bounds %v", tt.offset, c)
				}
			}
		})
	}
}

// TestQueriesOnNonGrid 测试对非网格实体的查询返回安全结果
func TestQueriesOnNonGrid(t *testing.T) {
	em := ecs.NewEntityManager()
	gs := NewGridSystem(em)
	other := em.CreateEntity()

	if gs.IsValidLocation(other, grid.NewCoord(0, 0)) || gs.IsClearTile(other, grid.NewCoord(0, 0)) ||
		gs.IsInGridBounds(other, grid.NewCoord(0, 0)) {
		t.Error("queries on a non-grid entity should report false")
	}
	if err := gs.BlockTile(other, grid.NewCoord(0, 0)); !errors.Is(err, ErrNotAGrid) {
		t.Errorf("BlockTile error = %v, want ErrNotAGrid", err)
	}
	if _, err := gs.GetGridSize(other); !errors.Is(err, ErrNotAGrid) {
		t.Errorf("GetGridSize error = %v, want ErrNotAGrid", err)
	}
	if gs.IsGrid(other) {
		t.Error("IsGrid should be false")
	}
}

// TestTileLabel 测试格子调试文字格式
func TestTileLabel(t *testing.T) {
	got := TileLabel(grid.NewCoord(1, 2), 6)
	want := "X:2, Y:1\nID:6"
	if got != want {
		t.Errorf("TileLabel() = %q, want %q", got, want)
	}
}
