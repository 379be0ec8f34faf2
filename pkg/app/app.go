// Package app 提供网格查看器的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/rtsgrid/pkg/components"
	"github.com/decker502/rtsgrid/pkg/config"
	"github.com/decker502/rtsgrid/pkg/ecs"
	"github.com/decker502/rtsgrid/pkg/game"
	"github.com/decker502/rtsgrid/pkg/systems"
	"github.com/decker502/rtsgrid/pkg/utils"
)

// gdataAppName 设置存储的应用名
const gdataAppName = "rtsgrid"

var backgroundColor = color.RGBA{R: 28, G: 32, B: 36, A: 255}

// 操作提示
const (
	desktopHelp = "LMB place  RMB/Esc cancel  1-9 select  G/T/B toggles  P policy  arrows pan  wheel zoom"
	mobileHelp  = "tap place  two-finger tap cancel"
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 网格配置文件路径，为空时使用嵌入的默认配置
	ConfigPath string
	// Preset 嵌入的预设名，优先级低于 ConfigPath
	Preset string
}

// App 网格查看器，实现 ebiten.Game 接口
type App struct {
	entityManager *ecs.EntityManager
	settings      *game.SettingsManager
	camera        *utils.Camera

	gridSystem         *systems.GridSystem
	placementSystem    *systems.PlacementSystem
	constructionSystem *systems.ConstructionSystem
	inputSystem        *systems.InputSystem
	renderSystem       *systems.GridRenderSystem

	gridEntity ecs.EntityID
	verbose    bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化查看器
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	gridCfg, err := loadGridConfig(cfg)
	if err != nil {
		return nil, err
	}

	settings := newSettingsManager(gridCfg)

	camera := utils.DefaultCamera()
	camera.Zoom = settings.GetSettings().CameraZoom

	em := ecs.NewEntityManager()
	gridSystem := systems.NewGridSystem(em)
	gridEntity, err := gridSystem.CreateGrid(gridCfg.Configuration(), gridCfg.Origin(), settings.GetSettings().DevOptions())
	if err != nil {
		return nil, fmt.Errorf("网格创建失败: %w", err)
	}

	placementOpts, err := systems.PlacementOptionsFromConfig(gridCfg)
	if err != nil {
		return nil, fmt.Errorf("放置配置无效: %w", err)
	}
	constructionSystem := systems.NewConstructionSystem(em)
	placementSystem := systems.NewPlacementSystem(em, gridSystem, constructionSystem, placementOpts)

	a := &App{
		entityManager:      em,
		settings:           settings,
		camera:             &camera,
		gridSystem:         gridSystem,
		placementSystem:    placementSystem,
		constructionSystem: constructionSystem,
		gridEntity:         gridEntity,
		verbose:            cfg.Verbose,
	}
	a.inputSystem = systems.NewInputSystem(em, gridSystem, placementSystem, settings, a.camera)
	a.renderSystem = systems.NewGridRenderSystem(em, gridSystem, placementSystem, a.camera)

	log.Printf("[App] Viewer initialized: grid entity %d, %d placeables, policy %s",
		gridEntity, len(placementOpts.Placeables), placementOpts.Policy)
	return a, nil
}

// loadGridConfig 按 ConfigPath > Preset > 嵌入默认配置 的顺序加载
func loadGridConfig(cfg Config) (*config.GridFileConfig, error) {
	switch {
	case cfg.ConfigPath != "":
		gridCfg, err := config.LoadGridConfig(cfg.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("网格配置加载失败: %w", err)
		}
		log.Printf("[Config] Loaded grid config from %s", cfg.ConfigPath)
		return gridCfg, nil

	case cfg.Preset != "":
		gridCfg, err := config.LoadGridPreset(cfg.Preset)
		if err != nil {
			return nil, fmt.Errorf("网格预设加载失败: %w", err)
		}
		log.Printf("[Config] Loaded grid preset %s", cfg.Preset)
		return gridCfg, nil
	}

	gridCfg, err := config.LoadEmbeddedGridConfig(config.DefaultGridConfigPath)
	if err != nil {
		log.Printf("[Config] Embedded grid config unavailable (%v), using built-in defaults", err)
		return config.DefaultGridFileConfig(), nil
	}
	return gridCfg, nil
}

// newSettingsManager 创建设置管理器，配置文件中的显示选项作为默认值
// 存储不可用时降级为仅内存设置
func newSettingsManager(gridCfg *config.GridFileConfig) *game.SettingsManager {
	defaults := game.DefaultSettings()
	defaults.ShowPreviewGrid = *gridCfg.DevOptions.ShowPreviewGrid
	defaults.ShowTileTextInfo = *gridCfg.DevOptions.ShowTileTextInfo
	defaults.DrawBoundingBox = *gridCfg.DevOptions.DrawBoundingBox

	var manager *gdata.Manager
	if err := utils.EnsureStorageDir(); err != nil {
		log.Printf("[App] Warning: storage directory unavailable: %v", err)
	} else if m, err := gdata.Open(gdata.Config{AppName: gdataAppName}); err != nil {
		log.Printf("[App] Warning: failed to open settings storage: %v (settings will not persist)", err)
	} else {
		manager = m
	}

	settings, _ := game.NewSettingsManager(manager, defaults)
	return settings
}

// Update 更新查看器逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(config.ScreenWidth, config.ScreenHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.inputSystem.Update(deltaTime)
	a.constructionSystem.Update(deltaTime)
	a.entityManager.RemoveMarkedEntities()
	return nil
}

// Draw 绘制查看器画面
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	a.renderSystem.Draw(screen)
	ebitenutil.DebugPrintAt(screen, a.statusLine(), 8, 8)
}

// statusLine 左上角的状态文字
func (a *App) statusLine() string {
	hover := "-"
	if c, valid, err := a.placementSystem.HoveredCoord(); err == nil {
		id, _ := a.gridSystem.GetCellIDFromCoordinate(a.gridEntity, c)
		hover = fmt.Sprintf("%v id=%d valid=%v", c, id, valid)
	}
	help := desktopHelp
	if utils.IsMobile() {
		help = mobileHelp
	}
	counts := a.constructionSystem.Counts()
	return fmt.Sprintf(
		"state: %s  last: %s  policy: %s\nhover: %s\nconstructing: %d  built: %d\n%s",
		a.placementSystem.State(), a.placementSystem.LastOutcome(), a.placementSystem.Policy(),
		hover,
		counts[components.PlaceableStateConstructing], counts[components.PlaceableStateBuilt],
		help,
	)
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.ScreenWidth, config.ScreenHeight
}

// Close 保存设置
// 用于在窗口关闭时调用
func (a *App) Close() error {
	a.settings.SetCameraZoom(a.camera.Zoom)
	return a.settings.Save()
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
