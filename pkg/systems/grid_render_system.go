package systems

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/decker502/rtsgrid/pkg/components"
	"github.com/decker502/rtsgrid/pkg/ecs"
	"github.com/decker502/rtsgrid/pkg/utils"
)

// 网格渲染颜色
var (
	cellClearColor    = color.RGBA{R: 70, G: 110, B: 70, A: 160}
	cellBlockedColor  = color.RGBA{R: 150, G: 50, B: 50, A: 200}
	cellOutlineColor  = color.RGBA{R: 200, G: 220, B: 200, A: 255}
	boundingBoxColor  = color.RGBA{R: 255, G: 210, B: 0, A: 255}
	hoverValidColor   = color.RGBA{R: 120, G: 255, B: 120, A: 255}
	hoverInvalidColor = color.RGBA{R: 255, G: 90, B: 90, A: 255}
	tileTextColor     = color.RGBA{R: 255, G: 255, B: 255, A: 230}

	previewColor      = color.RGBA{R: 80, G: 200, B: 255, A: 120}
	constructingColor = color.RGBA{R: 230, G: 150, B: 40, A: 220}
	builtColor        = color.RGBA{R: 60, G: 120, B: 230, A: 255}
	progressBackColor = color.RGBA{R: 0, G: 0, B: 0, A: 180}
	progressFillColor = color.RGBA{R: 120, G: 255, B: 120, A: 255}
)

const (
	// placeableInset 建筑方块相对格子的内缩比例
	placeableInset = 0.15
	// tileTextLineSpacing 格子文字行距（像素）
	tileTextLineSpacing = 14
)

// cellFillColor 格子填充颜色
func cellFillColor(blocked bool) color.RGBA {
	if blocked {
		return cellBlockedColor
	}
	return cellClearColor
}

// placeableColor 建筑方块颜色；取消的建筑不绘制
func placeableColor(state components.PlaceableState) (color.RGBA, bool) {
	switch state {
	case components.PlaceableStatePreviewing:
		return previewColor, true
	case components.PlaceableStateConstructing:
		return constructingColor, true
	case components.PlaceableStateBuilt:
		return builtColor, true
	default:
		return color.RGBA{}, false
	}
}

// GridRenderSystem 绘制网格、格子文字、包围盒、悬停格子和建筑
type GridRenderSystem struct {
	entityManager *ecs.EntityManager
	gridSystem    *GridSystem
	placement     *PlacementSystem
	camera        *utils.Camera
	labelFace     text.Face
}

// NewGridRenderSystem 创建网格渲染系统
// placement 可以为 nil（此时不绘制悬停格子）
func NewGridRenderSystem(em *ecs.EntityManager, gs *GridSystem, ps *PlacementSystem, camera *utils.Camera) *GridRenderSystem {
	return &GridRenderSystem{
		entityManager: em,
		gridSystem:    gs,
		placement:     ps,
		camera:        camera,
		labelFace:     text.NewGoXFace(basicfont.Face7x13),
	}
}

// Draw 绘制全部网格和建筑
func (s *GridRenderSystem) Draw(screen *ebiten.Image) {
	for _, gridEntity := range s.gridSystem.Grids() {
		s.drawGrid(screen, gridEntity)
	}
	s.drawHover(screen)
	s.drawPlaceables(screen)
}

// drawGrid 按显示选项绘制一个网格
func (s *GridRenderSystem) drawGrid(screen *ebiten.Image, gridEntity ecs.EntityID) {
	gridComp, origin, err := s.gridSystem.lookup(gridEntity)
	if err != nil {
		return
	}
	cellSize := gridComp.Config.CellSize
	opts := gridComp.DevOptions

	if opts.ShowPreviewGrid {
		for _, inst := range gridComp.Instances {
			x, y, size := s.camera.CellScreenRect(inst.Location.Add(origin), cellSize)
			fill := cellFillColor(!gridComp.Occupancy.IsClear(inst.Coord))
			vector.DrawFilledRect(screen, float32(x), float32(y), float32(size), float32(size), fill, true)
			vector.StrokeRect(screen, float32(x), float32(y), float32(size), float32(size), 1, cellOutlineColor, true)
		}
	}

	if opts.ShowTileTextInfo {
		for _, inst := range gridComp.Instances {
			x, y, _ := s.camera.CellScreenRect(inst.Location.Add(origin), cellSize)
			op := &text.DrawOptions{}
			op.GeoM.Translate(x+4, y+4)
			op.ColorScale.ScaleWithColor(tileTextColor)
			op.LineSpacing = tileTextLineSpacing
			text.Draw(screen, TileLabel(inst.Coord, inst.ID), s.labelFace, op)
		}
	}

	if opts.DrawBoundingBox {
		center := gridComp.Indexer.GridOriginWorld(origin)
		extents := gridComp.Indexer.GridExtents()
		topLeft := center
		topLeft.X -= extents.X
		topLeft.Y -= extents.Y
		x, y := s.camera.WorldToScreen(topLeft)
		zoom := s.camera.Zoom
		if zoom <= 0 {
			zoom = 1
		}
		w := extents.Y * 2 * zoom
		h := extents.X * 2 * zoom
		vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 2, boundingBoxColor, true)
	}
}

// drawHover 绘制光标所在格子的轮廓，有效为绿色，无效为红色
func (s *GridRenderSystem) drawHover(screen *ebiten.Image) {
	if s.placement == nil {
		return
	}
	coord, valid, err := s.placement.HoveredCoord()
	if err != nil {
		return
	}
	gridComp, origin, err := s.gridSystem.lookup(s.placement.TargetGrid())
	if err != nil {
		return
	}

	center := gridComp.Indexer.CellCenterFromCoord(coord).Add(origin)
	x, y, size := s.camera.CellScreenRect(center, gridComp.Config.CellSize)
	clr := hoverInvalidColor
	if valid {
		clr = hoverValidColor
	}
	vector.StrokeRect(screen, float32(x), float32(y), float32(size), float32(size), 2, clr, true)
}

// drawPlaceables 绘制预览、建造中和已建成的建筑
func (s *GridRenderSystem) drawPlaceables(screen *ebiten.Image) {
	entities := ecs.GetEntitiesWith2[*components.PlaceableComponent, *components.PositionComponent](s.entityManager)
	for _, entity := range entities {
		placeable, _ := ecs.GetComponent[*components.PlaceableComponent](s.entityManager, entity)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, entity)

		clr, visible := placeableColor(placeable.State)
		if !visible {
			continue
		}

		cellSize := s.placeableCellSize(placeable)
		x, y, size := s.camera.CellScreenRect(pos.Vector(), cellSize)
		inset := size * placeableInset
		vector.DrawFilledRect(screen, float32(x+inset), float32(y+inset), float32(size-2*inset), float32(size-2*inset), clr, true)

		if placeable.State == components.PlaceableStateConstructing {
			barY := y + size - inset
			barW := size - 2*inset
			vector.DrawFilledRect(screen, float32(x+inset), float32(barY), float32(barW), 4, progressBackColor, true)
			vector.DrawFilledRect(screen, float32(x+inset), float32(barY), float32(barW*placeable.BuildProgress()), 4, progressFillColor, true)
		}

		if placeable.State != components.PlaceableStatePreviewing {
			op := &text.DrawOptions{}
			op.GeoM.Translate(x+inset+2, y+inset+2)
			op.ColorScale.ScaleWithColor(tileTextColor)
			text.Draw(screen, placeableCaption(placeable), s.labelFace, op)
		}
	}
}

// placeableCellSize 建筑所在网格的格子边长
// 预览中的建筑还没有记录网格，使用放置系统锁定的网格
func (s *GridRenderSystem) placeableCellSize(placeable *components.PlaceableComponent) float64 {
	gridEntity := placeable.GridEntity
	if gridEntity == ecs.InvalidEntity && s.placement != nil {
		gridEntity = s.placement.TargetGrid()
	}
	if gridComp, _, err := s.gridSystem.lookup(gridEntity); err == nil {
		return gridComp.Config.CellSize
	}
	return 100
}

// placeableCaption 建筑方块上的文字
func placeableCaption(p *components.PlaceableComponent) string {
	if p.State == components.PlaceableStateConstructing {
		return fmt.Sprintf("%s %d%%", p.Name, int(p.BuildProgress()*100))
	}
	return p.Name
}
