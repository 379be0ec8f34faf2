package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/decker502/rtsgrid/pkg/embedded"
	"github.com/decker502/rtsgrid/pkg/grid"
	"github.com/decker502/rtsgrid/pkg/systems"
)

// setupTestEnv 初始化嵌入配置并把 HOME 指向临时目录（gdata 存储位置）
func setupTestEnv(t *testing.T) {
	t.Helper()

	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", t.TempDir())
	t.Cleanup(func() { os.Setenv("HOME", originalHome) })

	embedded.Init(fstest.MapFS{
		"data/grid.yaml": {Data: []byte(`grid:
  dimensions: {column: 5, row: 3}
  cellSize: 80
placeables:
  - id: barracks
`)},
		"data/presets/tiny.yaml": {Data: []byte("grid:\n  dimensions: {column: 1, row: 1}\n")},
	})
}

// TestLoadGridConfigPriority 测试配置来源优先级
func TestLoadGridConfigPriority(t *testing.T) {
	setupTestEnv(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("grid:\n  dimensions: {column: 7, row: 2}\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
		want grid.Coord
	}{
		{"嵌入默认配置", Config{}, grid.NewCoord(5, 3)},
		{"预设", Config{Preset: "tiny"}, grid.NewCoord(1, 1)},
		{"文件优先于预设", Config{ConfigPath: path, Preset: "tiny"}, grid.NewCoord(7, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gridCfg, err := loadGridConfig(tt.cfg)
			if err != nil {
				t.Fatalf("loadGridConfig() error: %v", err)
			}
			if got := gridCfg.Configuration().Dimensions; got != tt.want {
				t.Errorf("Dimensions = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := loadGridConfig(Config{Preset: "missing"}); err == nil {
		t.Error("missing preset should fail")
	}
	if _, err := loadGridConfig(Config{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml")}); err == nil {
		t.Error("missing config file should fail")
	}
}

// TestNewApp 测试查看器的系统装配
func TestNewApp(t *testing.T) {
	setupTestEnv(t)

	a, err := NewApp(Config{Verbose: true})
	if err != nil {
		t.Fatalf("NewApp() error: %v", err)
	}

	size, err := a.gridSystem.GetGridSize(a.gridEntity)
	if err != nil {
		t.Fatalf("GetGridSize() error: %v", err)
	}
	// rows * cellSize, columns * cellSize
	if size != (grid.Vector2D{X: 240, Y: 400}) {
		t.Errorf("grid size = %v, want (240, 400)", size)
	}

	if a.placementSystem.State() != systems.PlacementStateNoTarget {
		t.Errorf("initial state = %v, want NoTarget", a.placementSystem.State())
	}
	if ids := a.placementSystem.PlaceableIDs(); len(ids) != 1 || ids[0] != "barracks" {
		t.Errorf("PlaceableIDs() = %v, want [barracks]", ids)
	}

	if !strings.Contains(a.statusLine(), "state: NoTarget") {
		t.Errorf("statusLine() = %q", a.statusLine())
	}

	w, h := a.Layout(0, 0)
	if w <= 0 || h <= 0 {
		t.Errorf("Layout() = (%d, %d)", w, h)
	}

	if err := a.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
