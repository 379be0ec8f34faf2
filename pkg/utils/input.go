// Package utils 提供通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputState 存储当前帧的指针状态
// 用于统一处理鼠标和触摸输入
type InputState struct {
	// 是否有点击/触摸事件刚刚发生
	JustPressed bool
	// 点击/触摸位置
	X, Y int
	// 是否有活动的触摸
	IsTouching bool
}

// GetInputState 获取当前帧的指针状态
// 同时支持鼠标点击和触摸输入，优先检测触摸
func GetInputState() InputState {
	state := InputState{}

	// 首先检查触摸输入（移动设备）
	touchIDs := inpututil.AppendJustPressedTouchIDs(nil)
	if len(touchIDs) > 0 {
		state.JustPressed = true
		state.X, state.Y = ebiten.TouchPosition(touchIDs[0])
		state.IsTouching = true
		return state
	}

	// 检查是否有活动的触摸（用于悬停检测）
	allTouchIDs := ebiten.AppendTouchIDs(nil)
	if len(allTouchIDs) > 0 {
		state.X, state.Y = ebiten.TouchPosition(allTouchIDs[0])
		state.IsTouching = true
		return state
	}

	// 其次检查鼠标输入（桌面设备）
	state.JustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	state.X, state.Y = ebiten.CursorPosition()
	return state
}

// ViewerInput 查看器一帧的全部输入
type ViewerInput struct {
	Pointer InputState

	// Cancel 右键或 Esc
	Cancel bool
	// SelectIndex 数字键 1-9 选择的建筑下标，未按下时为 -1
	SelectIndex int

	TogglePreviewGrid bool // G
	ToggleTileText    bool // T
	ToggleBoundingBox bool // B
	ToggleConfirmMode bool // P

	// PanX, PanY 方向键/WASD 的屏幕方向平移输入，-1..1
	PanX, PanY float64
	// Wheel 鼠标滚轮的纵向增量
	Wheel float64
}

// digitKeys 数字键 1-9，下标即建筑下标
var digitKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// DigitKeyIndex 返回数字键对应的建筑下标，非数字键返回 -1
func DigitKeyIndex(key ebiten.Key) int {
	for i, k := range digitKeys {
		if k == key {
			return i
		}
	}
	return -1
}

// PanAxis 将一对相反方向的按键合成为 -1..1 的轴输入
func PanAxis(negative, positive bool) float64 {
	axis := 0.0
	if negative {
		axis--
	}
	if positive {
		axis++
	}
	return axis
}

// IsTwoFingerTap 本帧有新触摸且同时存在至少两个触摸点
func IsTwoFingerTap(justPressed, active int) bool {
	return justPressed > 0 && active >= 2
}

// ReadViewerInput 读取当前帧的查看器输入
func ReadViewerInput() ViewerInput {
	in := ViewerInput{
		Pointer:     GetInputState(),
		SelectIndex: -1,
	}

	in.Cancel = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) ||
		inpututil.IsKeyJustPressed(ebiten.KeyEscape)

	// 移动端没有右键和键盘，双指点击视为取消
	if IsMobile() && IsTwoFingerTap(len(inpututil.AppendJustPressedTouchIDs(nil)), len(ebiten.AppendTouchIDs(nil))) {
		in.Cancel = true
		in.Pointer.JustPressed = false
	}

	for _, key := range inpututil.AppendJustPressedKeys(nil) {
		if idx := DigitKeyIndex(key); idx >= 0 {
			in.SelectIndex = idx
			break
		}
	}

	in.TogglePreviewGrid = inpututil.IsKeyJustPressed(ebiten.KeyG)
	in.ToggleTileText = inpututil.IsKeyJustPressed(ebiten.KeyT)
	in.ToggleBoundingBox = inpututil.IsKeyJustPressed(ebiten.KeyB)
	in.ToggleConfirmMode = inpututil.IsKeyJustPressed(ebiten.KeyP)

	in.PanX = PanAxis(
		ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA),
		ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD),
	)
	in.PanY = PanAxis(
		ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW),
		ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyS),
	)

	_, in.Wheel = ebiten.Wheel()
	return in
}
