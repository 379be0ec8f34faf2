package main

import (
	"errors"
	"fmt"
	"log"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/decker502/rtsgrid/pkg/components"
	"github.com/decker502/rtsgrid/pkg/config"
	"github.com/decker502/rtsgrid/pkg/ecs"
	"github.com/decker502/rtsgrid/pkg/grid"
	"github.com/decker502/rtsgrid/pkg/systems"
)

// 终端中每个格子占用的字符数
const (
	cellWidth  = 4
	cellHeight = 2

	// 网格左上角在终端中的位置，上方留给状态行
	gridLeft = 2
	gridTop  = 4
)

var (
	clearStyle         = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	blockedStyle       = tcell.StyleDefault.Foreground(tcell.ColorRed)
	constructingStyle  = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	builtStyle         = tcell.StyleDefault.Foreground(tcell.ColorBlue).Bold(true)
	cursorValidStyle   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Reverse(true)
	cursorInvalidStyle = tcell.StyleDefault.Foreground(tcell.ColorRed).Reverse(true)
	statusStyle        = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// cellWriter 终端绘制目标，tcell.Screen 满足该接口
type cellWriter interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
}

// viewer 终端版网格查看器：光标以格子为单位移动，位置投射到网格的世界坐标后交给放置系统
type viewer struct {
	entityManager *ecs.EntityManager
	gridSystem    *systems.GridSystem
	placement     *systems.PlacementSystem
	construction  *systems.ConstructionSystem

	gridEntity ecs.EntityID
	origin     grid.Vector3
	gridConfig grid.Configuration

	// cursor 光标所在格子，可以越出网格一格以便观察无效位置
	cursor grid.Coord

	message string
}

// newViewer 按配置创建网格和放置系统
func newViewer(cfg *config.GridFileConfig) (*viewer, error) {
	em := ecs.NewEntityManager()
	gs := systems.NewGridSystem(em)
	gridEntity, err := gs.CreateGrid(cfg.Configuration(), cfg.Origin(), components.DefaultGridDevOptions())
	if err != nil {
		return nil, fmt.Errorf("create grid: %w", err)
	}

	opts, err := systems.PlacementOptionsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("placement options: %w", err)
	}
	cs := systems.NewConstructionSystem(em)

	v := &viewer{
		entityManager: em,
		gridSystem:    gs,
		placement:     systems.NewPlacementSystem(em, gs, cs, opts),
		construction:  cs,
		gridEntity:    gridEntity,
		origin:        cfg.Origin(),
		gridConfig:    cfg.Configuration(),
	}
	v.observeCursor()
	return v, nil
}

// cursorWorld 光标格子中心的世界位置
func cursorWorld(origin grid.Vector3, cellSize float64, c grid.Coord) grid.Vector3 {
	return origin.Add(grid.Vector3{
		X: float64(c.Row) * cellSize,
		Y: float64(c.Column) * cellSize,
	})
}

// coordToScreen 格子左上角的终端位置
func coordToScreen(c grid.Coord) (int, int) {
	return gridLeft + (c.Column+1)*cellWidth, gridTop + (c.Row+1)*cellHeight
}

// screenToCoord 终端位置所在的格子
func screenToCoord(x, y int) grid.Coord {
	return grid.NewCoord(floorDiv(x-gridLeft, cellWidth)-1, floorDiv(y-gridTop, cellHeight)-1)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

// clampCursor 把光标限制在网格外扩一格的范围内
func clampCursor(c, dims grid.Coord) grid.Coord {
	clamp := func(v, n int) int {
		if v < -1 {
			return -1
		}
		if v > n {
			return n
		}
		return v
	}
	return grid.NewCoord(clamp(c.Column, dims.Column), clamp(c.Row, dims.Row))
}

// moveCursor 移动光标并通知放置系统
func (v *viewer) moveCursor(dColumn, dRow int) {
	v.setCursor(v.cursor.Add(grid.NewCoord(dColumn, dRow)))
}

func (v *viewer) setCursor(c grid.Coord) {
	v.cursor = clampCursor(c, v.gridConfig.Dimensions)
	v.observeCursor()
}

// observeCursor 地面射线总能命中，落在网格范围内时带上网格实体
func (v *viewer) observeCursor() {
	world := cursorWorld(v.origin, v.gridConfig.CellSize, v.cursor)
	entity, _ := v.gridSystem.HitTest(world)
	v.placement.ObserveHit(systems.HitResult{Hit: true, Location: world, Entity: entity})
}

// handleKey 处理按键，返回 false 表示退出
func (v *viewer) handleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		v.moveCursor(0, -1)
	case tcell.KeyDown:
		v.moveCursor(0, 1)
	case tcell.KeyLeft:
		v.moveCursor(-1, 0)
	case tcell.KeyRight:
		v.moveCursor(1, 0)
	case tcell.KeyEnter:
		v.place()
	case tcell.KeyEscape:
		v.cancel()
	case tcell.KeyRune:
		return v.handleRune(r)
	}
	return true
}

func (v *viewer) handleRune(r rune) bool {
	switch {
	case r == 'q':
		return false
	case r == ' ':
		v.place()
	case r == 'p':
		v.togglePolicy()
	case r >= '1' && r <= '9':
		v.selectPlaceable(int(r - '1'))
	}
	return true
}

// handleMouse 左键移动光标并放置，右键取消
func (v *viewer) handleMouse(x, y int, buttons tcell.ButtonMask) {
	v.setCursor(screenToCoord(x, y))
	switch {
	case buttons&tcell.Button1 != 0:
		v.place()
	case buttons&tcell.Button2 != 0:
		v.cancel()
	}
}

func (v *viewer) place() {
	err := v.placement.HandlePlacement()
	switch {
	case err == nil:
		v.message = v.placement.LastOutcome().String()
		if v.placement.State() == systems.PlacementStatePreviewing {
			v.message = "previewing"
		}
	case errors.Is(err, grid.ErrConfirmOnInvalidCell):
		v.message = "cell is blocked or out of bounds"
	default:
		v.message = err.Error()
		log.Printf("[gridtui] Placement action failed: %v", err)
	}
}

func (v *viewer) cancel() {
	if err := v.placement.Cancel(); err != nil {
		if !errors.Is(err, systems.ErrNotPreviewing) {
			log.Printf("[gridtui] Cancel failed: %v", err)
		}
		return
	}
	v.message = "cancelled"
}

func (v *viewer) togglePolicy() {
	if v.placement.Policy() == systems.ConfirmPermissive {
		v.placement.SetPolicy(systems.ConfirmRequireValid)
	} else {
		v.placement.SetPolicy(systems.ConfirmPermissive)
	}
	v.message = "policy " + v.placement.Policy().String()
}

// selectPlaceable 按下标选择建筑；预览中时先取消当前预览
func (v *viewer) selectPlaceable(index int) {
	ids := v.placement.PlaceableIDs()
	if index >= len(ids) {
		return
	}
	if v.placement.State() == systems.PlacementStatePreviewing {
		if err := v.placement.Cancel(); err != nil {
			log.Printf("[gridtui] Failed to cancel current preview: %v", err)
			return
		}
	}
	if _, err := v.placement.SelectPlaceable(ids[index]); err != nil {
		v.message = err.Error()
		return
	}
	v.message = "selected " + ids[index]
}

// tick 推进建造并清理取消的预览
func (v *viewer) tick(dt float64) {
	v.construction.Update(dt)
	v.entityManager.RemoveMarkedEntities()
}

// placeableGlyph 建造中用小写首字母，建成用大写
func placeableGlyph(p *components.PlaceableComponent) (rune, tcell.Style, bool) {
	letter := '?'
	for _, r := range p.Name {
		letter = r
		break
	}
	switch p.State {
	case components.PlaceableStateConstructing:
		return unicode.ToLower(letter), constructingStyle, true
	case components.PlaceableStateBuilt:
		return unicode.ToUpper(letter), builtStyle, true
	default:
		return 0, tcell.StyleDefault, false
	}
}

// draw 绘制状态行、格子、建筑和光标
func (v *viewer) draw(w cellWriter) {
	drawText(w, 0, 0, statusStyle, fmt.Sprintf("state: %s  last: %s  policy: %s",
		v.placement.State(), v.placement.LastOutcome(), v.placement.Policy()))
	drawText(w, 0, 1, statusStyle, v.hoverLine())
	drawText(w, 0, 2, statusStyle, "arrows/mouse move  enter place  esc cancel  1-9 select  p policy  q quit  "+v.message)

	dims := v.gridConfig.Dimensions
	for row := 0; row < dims.Row; row++ {
		for column := 0; column < dims.Column; column++ {
			c := grid.NewCoord(column, row)
			x, y := coordToScreen(c)
			glyph, style := '·', clearStyle
			if !v.gridSystem.IsClearTile(v.gridEntity, c) {
				glyph, style = '█', blockedStyle
			}
			w.SetContent(x+1, y, glyph, nil, style)
		}
	}

	entities := ecs.GetEntitiesWith1[*components.PlaceableComponent](v.entityManager)
	for _, entity := range entities {
		p, _ := ecs.GetComponent[*components.PlaceableComponent](v.entityManager, entity)
		glyph, style, visible := placeableGlyph(p)
		if !visible {
			continue
		}
		x, y := coordToScreen(p.Coord)
		w.SetContent(x+1, y, glyph, nil, style)
	}

	style := cursorInvalidStyle
	if v.gridSystem.IsValidLocation(v.gridEntity, v.cursor) {
		style = cursorValidStyle
	}
	x, y := coordToScreen(v.cursor)
	w.SetContent(x, y, '[', nil, style)
	w.SetContent(x+2, y, ']', nil, style)
}

func (v *viewer) hoverLine() string {
	c, valid, err := v.placement.HoveredCoord()
	if err != nil {
		return "hover: -"
	}
	id, _ := v.gridSystem.GetCellIDFromCoordinate(v.gridEntity, c)
	counts := v.construction.Counts()
	return fmt.Sprintf("hover: %v id=%d valid=%v  constructing: %d  built: %d",
		c, id, valid, counts[components.PlaceableStateConstructing], counts[components.PlaceableStateBuilt])
}

func drawText(w cellWriter, x, y int, style tcell.Style, s string) {
	for _, r := range s {
		w.SetContent(x, y, r, nil, style)
		x++
	}
}
