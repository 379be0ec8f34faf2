package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/decker502/rtsgrid/pkg/components"
	"github.com/decker502/rtsgrid/pkg/config"
)

// ViewerSettings 查看器设置
// 注意：这里只保存显示相关的开关，不保存网格的阻挡状态
type ViewerSettings struct {
	// 网格显示开关
	ShowPreviewGrid  bool `yaml:"showPreviewGrid"`  // 显示格子平面
	ShowTileTextInfo bool `yaml:"showTileTextInfo"` // 显示格子坐标和ID
	DrawBoundingBox  bool `yaml:"drawBoundingBox"`  // 绘制网格包围盒

	// 摄像机
	CameraZoom float64 `yaml:"cameraZoom"` // 缩放 0.25 ~ 4.0
}

// 缩放范围
const (
	minCameraZoom = 0.25
	maxCameraZoom = 4.0
)

// DefaultSettings 返回默认设置
func DefaultSettings() *ViewerSettings {
	defaults := components.DefaultGridDevOptions()
	return &ViewerSettings{
		ShowPreviewGrid:  defaults.ShowPreviewGrid,
		ShowTileTextInfo: defaults.ShowTileTextInfo,
		DrawBoundingBox:  defaults.DrawBoundingBox,
		CameraZoom:       config.DefaultCameraZoom,
	}
}

// DevOptions 转换为网格组件使用的显示选项
func (s *ViewerSettings) DevOptions() components.GridDevOptions {
	return components.GridDevOptions{
		ShowPreviewGrid:  s.ShowPreviewGrid,
		ShowTileTextInfo: s.ShowTileTextInfo,
		DrawBoundingBox:  s.DrawBoundingBox,
	}
}

// SettingsManager 设置管理器
// 负责查看器设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager  // gdata 跨平台存储管理器，可为 nil（降级模式）
	defaults     *ViewerSettings // 没有存档时使用的设置（通常来自网格配置文件）
	settings     *ViewerSettings // 当前设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "viewer"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//   - defaults: 没有已保存设置时使用的值，为 nil 时使用 DefaultSettings()
//
// 返回：
//   - *SettingsManager: 设置管理器实例
//   - error: 保留给调用方统一处理，加载失败不影响创建
func NewSettingsManager(gdataManager *gdata.Manager, defaults *ViewerSettings) (*SettingsManager, error) {
	if defaults == nil {
		defaults = DefaultSettings()
	}

	sm := &SettingsManager{
		gdataManager: gdataManager,
		defaults:     defaults,
		settings:     cloneSettings(defaults),
	}

	// 尝试加载已保存的设置
	if err := sm.Load(); err != nil {
		// 加载失败不是致命错误，使用默认设置
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm, nil
}

// cloneSettings 复制默认设置，避免调用方修改共享的默认值
func cloneSettings(defaults *ViewerSettings) *ViewerSettings {
	copied := *defaults
	return &copied
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或没有已保存的设置，使用默认设置
//
// 返回：
//   - error: 如果反序列化失败返回错误
func (sm *SettingsManager) Load() error {
	// 降级模式：无法持久化，使用默认设置
	if sm.gdataManager == nil {
		sm.settings = cloneSettings(sm.defaults)
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = cloneSettings(sm.defaults)
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = cloneSettings(sm.defaults)
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 以默认值为底，缺失字段保持默认
	loaded := cloneSettings(sm.defaults)
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = cloneSettings(sm.defaults)
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.CameraZoom = clampZoom(loaded.CameraZoom)

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *ViewerSettings {
	return sm.settings
}

// TogglePreviewGrid 切换格子平面显示，返回新值
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) TogglePreviewGrid() bool {
	sm.settings.ShowPreviewGrid = !sm.settings.ShowPreviewGrid
	return sm.settings.ShowPreviewGrid
}

// ToggleTileTextInfo 切换格子文字显示，返回新值
func (sm *SettingsManager) ToggleTileTextInfo() bool {
	sm.settings.ShowTileTextInfo = !sm.settings.ShowTileTextInfo
	return sm.settings.ShowTileTextInfo
}

// ToggleBoundingBox 切换包围盒显示，返回新值
func (sm *SettingsManager) ToggleBoundingBox() bool {
	sm.settings.DrawBoundingBox = !sm.settings.DrawBoundingBox
	return sm.settings.DrawBoundingBox
}

// SetCameraZoom 设置摄像机缩放
//
// 缩放值会被限制在 0.25 ~ 4.0 范围内
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetCameraZoom(zoom float64) {
	sm.settings.CameraZoom = clampZoom(zoom)
}

// clampZoom 将缩放值限制在有效范围内，0 视为未设置
func clampZoom(zoom float64) float64 {
	if zoom == 0 {
		return config.DefaultCameraZoom
	}
	if zoom < minCameraZoom {
		return minCameraZoom
	}
	if zoom > maxCameraZoom {
		return maxCameraZoom
	}
	return zoom
}
