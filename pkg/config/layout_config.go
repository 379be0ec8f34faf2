package config

// 布局配置常量
// 本文件定义了查看器窗口和摄像机的布局参数

// Viewer Window Configuration (查看器窗口配置)
const (
	// ScreenWidth 查看器逻辑宽度（像素）
	ScreenWidth = 960

	// ScreenHeight 查看器逻辑高度（像素）
	ScreenHeight = 720

	// WindowTitle 窗口标题
	WindowTitle = "RTS Grid Placement"
)

// Camera Configuration (摄像机配置)
// 俯视视角：屏幕X对应世界Y（列方向），屏幕Y对应世界X（行方向）
const (
	// DefaultCameraX 摄像机在屏幕X方向的默认偏移（世界单位）
	DefaultCameraX = -120.0

	// DefaultCameraY 摄像机在屏幕Y方向的默认偏移（世界单位）
	DefaultCameraY = -80.0

	// DefaultCameraZoom 默认缩放（屏幕像素 / 世界单位）
	DefaultCameraZoom = 1.0

	// CameraPanSpeed 方向键平移速度（世界单位/秒）
	CameraPanSpeed = 400.0
)

// GetCellScreenSize 返回一个格子在屏幕上的边长（像素）
func GetCellScreenSize(cellSize, zoom float64) float64 {
	return cellSize * zoom
}
