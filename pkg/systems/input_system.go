package systems

import (
	"errors"
	"log"

	"github.com/decker502/rtsgrid/pkg/ecs"
	"github.com/decker502/rtsgrid/pkg/game"
	"github.com/decker502/rtsgrid/pkg/utils"
)

// wheelZoomStep 每格滚轮的缩放比例
const wheelZoomStep = 0.1

// InputSystem 将查看器输入转换为摄像机、显示选项和放置操作
//
// 每帧先把光标投射到地面并交给放置系统，再处理按键，
// 因此同一帧的确认操作使用的是本帧的光标位置。
type InputSystem struct {
	entityManager *ecs.EntityManager
	gridSystem    *GridSystem
	placement     *PlacementSystem
	settings      *game.SettingsManager
	camera        *utils.Camera
}

// NewInputSystem 创建输入系统
func NewInputSystem(em *ecs.EntityManager, gs *GridSystem, ps *PlacementSystem, settings *game.SettingsManager, camera *utils.Camera) *InputSystem {
	return &InputSystem{
		entityManager: em,
		gridSystem:    gs,
		placement:     ps,
		settings:      settings,
		camera:        camera,
	}
}

// Update 读取 ebiten 输入并处理
func (s *InputSystem) Update(dt float64) {
	s.Apply(utils.ReadViewerInput(), dt)
}

// Apply 处理一帧输入
func (s *InputSystem) Apply(in utils.ViewerInput, dt float64) {
	s.updateCamera(in, dt)

	// 地面无限大，射线总能命中；只有落在网格范围内时才带上网格实体
	world := s.camera.ScreenToWorld(in.Pointer.X, in.Pointer.Y)
	gridEntity, _ := s.gridSystem.HitTest(world)
	s.placement.ObserveHit(HitResult{Hit: true, Location: world, Entity: gridEntity})

	s.updateDevOptions(in)

	if in.ToggleConfirmMode {
		if s.placement.Policy() == ConfirmPermissive {
			s.placement.SetPolicy(ConfirmRequireValid)
		} else {
			s.placement.SetPolicy(ConfirmPermissive)
		}
	}

	if in.Cancel {
		if err := s.placement.Cancel(); err != nil && !errors.Is(err, ErrNotPreviewing) {
			log.Printf("[InputSystem] Cancel failed: %v", err)
		}
	}

	if in.SelectIndex >= 0 {
		s.selectPlaceable(in.SelectIndex)
	}

	if in.Pointer.JustPressed {
		if err := s.placement.HandlePlacement(); err != nil && !errors.Is(err, ErrNoTarget) {
			log.Printf("[InputSystem] Placement action failed: %v", err)
		}
	}
}

// selectPlaceable 按下标选择建筑；预览中时先取消当前预览再切换
func (s *InputSystem) selectPlaceable(index int) {
	ids := s.placement.PlaceableIDs()
	if index >= len(ids) {
		return
	}
	if s.placement.State() == PlacementStatePreviewing {
		if err := s.placement.Cancel(); err != nil {
			log.Printf("[InputSystem] Failed to cancel current preview: %v", err)
			return
		}
	}
	if _, err := s.placement.SelectPlaceable(ids[index]); err != nil && !errors.Is(err, ErrNoTarget) {
		log.Printf("[InputSystem] Failed to select %s: %v", ids[index], err)
	}
}

// updateCamera 平移和滚轮缩放
func (s *InputSystem) updateCamera(in utils.ViewerInput, dt float64) {
	if in.PanX != 0 || in.PanY != 0 {
		s.camera.Pan(in.PanX, in.PanY, dt)
	}
	if in.Wheel != 0 {
		s.camera.ZoomAround(s.camera.Zoom*(1+wheelZoomStep*in.Wheel), in.Pointer.X, in.Pointer.Y)
		s.settings.SetCameraZoom(s.camera.Zoom)
	}
}

// updateDevOptions 切换显示选项，保存设置并同步到全部网格
func (s *InputSystem) updateDevOptions(in utils.ViewerInput) {
	if !in.TogglePreviewGrid && !in.ToggleTileText && !in.ToggleBoundingBox {
		return
	}

	if in.TogglePreviewGrid {
		s.settings.TogglePreviewGrid()
	}
	if in.ToggleTileText {
		s.settings.ToggleTileTextInfo()
	}
	if in.ToggleBoundingBox {
		s.settings.ToggleBoundingBox()
	}

	opts := s.settings.GetSettings().DevOptions()
	for _, gridEntity := range s.gridSystem.Grids() {
		s.gridSystem.SetDevOptions(gridEntity, opts)
	}

	if err := s.settings.Save(); err != nil {
		log.Printf("[InputSystem] Failed to save settings: %v", err)
	}
}
