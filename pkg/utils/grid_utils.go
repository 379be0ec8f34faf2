package utils

import (
	"github.com/decker502/rtsgrid/pkg/config"
	"github.com/decker502/rtsgrid/pkg/grid"
)

// 缩放范围
const (
	MinCameraZoom = 0.25
	MaxCameraZoom = 4.0
)

// Camera 俯视摄像机
//
// 屏幕X对应世界Y（列方向），屏幕Y对应世界X（行方向）：
//
//	screenX = (world.Y - Camera.X) * Zoom
//	screenY = (world.X - Camera.Y) * Zoom
//
// X、Y 是屏幕左上角对应的世界位置。
type Camera struct {
	X, Y float64
	Zoom float64
}

// DefaultCamera 返回默认摄像机
func DefaultCamera() Camera {
	return Camera{X: config.DefaultCameraX, Y: config.DefaultCameraY, Zoom: config.DefaultCameraZoom}
}

// zoom 返回有效缩放，未设置时为 1
func (c Camera) zoom() float64 {
	if c.Zoom <= 0 {
		return 1.0
	}
	return c.Zoom
}

// WorldToScreen 将世界位置转换为屏幕坐标（忽略高度Z）
func (c Camera) WorldToScreen(world grid.Vector3) (screenX, screenY float64) {
	z := c.zoom()
	return (world.Y - c.X) * z, (world.X - c.Y) * z
}

// ScreenToWorld 将屏幕坐标投射到 Z=0 的地面上
func (c Camera) ScreenToWorld(screenX, screenY int) grid.Vector3 {
	z := c.zoom()
	return grid.Vector3{
		X: float64(screenY)/z + c.Y,
		Y: float64(screenX)/z + c.X,
	}
}

// CellScreenRect 返回以 center 为中心、边长 cellSize 的格子在屏幕上的矩形
// 返回左上角坐标和屏幕边长
func (c Camera) CellScreenRect(center grid.Vector3, cellSize float64) (x, y, size float64) {
	half := cellSize * 0.5
	x, y = c.WorldToScreen(grid.Vector3{X: center.X - half, Y: center.Y - half})
	return x, y, config.GetCellScreenSize(cellSize, c.zoom())
}

// Pan 平移摄像机
// dx, dy 为屏幕方向上的 -1..1 输入，dt 为帧时间（秒）
func (c *Camera) Pan(dx, dy, dt float64) {
	step := config.CameraPanSpeed * dt / c.zoom()
	c.X += dx * step
	c.Y += dy * step
}

// ZoomAround 以屏幕点为中心缩放，保持该点下方的世界位置不变
func (c *Camera) ZoomAround(newZoom float64, screenX, screenY int) {
	if newZoom < MinCameraZoom {
		newZoom = MinCameraZoom
	} else if newZoom > MaxCameraZoom {
		newZoom = MaxCameraZoom
	}
	anchor := c.ScreenToWorld(screenX, screenY)
	c.Zoom = newZoom
	c.X = anchor.Y - float64(screenX)/newZoom
	c.Y = anchor.X - float64(screenY)/newZoom
}
