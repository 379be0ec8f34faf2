package config

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/decker502/rtsgrid/pkg/embedded"
	"github.com/decker502/rtsgrid/pkg/grid"
)

// 嵌入的默认配置路径
const (
	DefaultGridConfigPath = "data/grid.yaml"
	gridPresetPattern     = "data/presets/*.yaml"
)

// 确认放置策略
const (
	// ConfirmPolicyPermissive 确认时不重新校验格子（与旧行为一致）
	ConfirmPolicyPermissive = "permissive"
	// ConfirmPolicyRequireValid 确认时格子必须有效，否则拒绝
	ConfirmPolicyRequireValid = "requireValid"
)

// GridFileConfig 网格配置文件（YAML）的顶层结构
type GridFileConfig struct {
	Grid       GridSection       `yaml:"grid" json:"grid" jsonschema:"title=Grid,description=Grid dimensions and cell size,required"`
	DevOptions DevOptionsSection `yaml:"devOptions" json:"devOptions,omitempty" jsonschema:"title=Dev options,description=Presentation toggles for the grid preview"`
	Placement  PlacementSection  `yaml:"placement" json:"placement,omitempty" jsonschema:"title=Placement,description=Placement controller behavior"`
	Placeables []PlaceableConfig `yaml:"placeables" json:"placeables,omitempty" jsonschema:"title=Placeables,description=Building types that can be placed on the grid"`
}

// GridSection 网格尺寸与位置
type GridSection struct {
	Dimensions DimensionsConfig `yaml:"dimensions" json:"dimensions" jsonschema:"description=Number of columns and rows"`
	CellSize   float64          `yaml:"cellSize" json:"cellSize" jsonschema:"description=World length of one cell edge,exclusiveMinimum=0"`
	Origin     OriginConfig     `yaml:"origin" json:"origin,omitempty" jsonschema:"description=World position of the grid owner"`
}

// DimensionsConfig 列数和行数
type DimensionsConfig struct {
	Column int `yaml:"column" json:"column" jsonschema:"minimum=1"`
	Row    int `yaml:"row" json:"row" jsonschema:"minimum=1"`
}

// OriginConfig 网格拥有者的世界位置
type OriginConfig struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// DevOptionsSection 显示选项
// 使用指针区分"未配置"和"显式关闭"
type DevOptionsSection struct {
	ShowPreviewGrid  *bool `yaml:"showPreviewGrid" json:"showPreviewGrid,omitempty"`
	ShowTileTextInfo *bool `yaml:"showTileTextInfo" json:"showTileTextInfo,omitempty"`
	DrawBoundingBox  *bool `yaml:"drawBoundingBox" json:"drawBoundingBox,omitempty"`
}

// PlacementSection 放置控制器配置
type PlacementSection struct {
	ConfirmPolicy    string `yaml:"confirmPolicy" json:"confirmPolicy,omitempty" jsonschema:"enum=permissive,enum=requireValid,default=permissive"`
	DefaultPlaceable string `yaml:"defaultPlaceable" json:"defaultPlaceable,omitempty" jsonschema:"description=Placeable id spawned by the primary action"`
}

// PlaceableConfig 可放置建筑类型
type PlaceableConfig struct {
	ID                    string  `yaml:"id" json:"id" jsonschema:"pattern=^[a-z0-9_-]+$,minLength=1,required"`
	Name                  string  `yaml:"name" json:"name,omitempty"`
	BuildDuration         float64 `yaml:"buildDuration" json:"buildDuration,omitempty" jsonschema:"minimum=0,default=1"`
	BuildDurationMultiply float64 `yaml:"buildDurationMultiply" json:"buildDurationMultiply,omitempty" jsonschema:"minimum=0,default=1"`
	ConstructionProxy     string  `yaml:"constructionProxy" json:"constructionProxy,omitempty"`
	PlacementProxy        string  `yaml:"placementProxy" json:"placementProxy,omitempty"`
}

// LoadGridConfig 从YAML文件加载网格配置
// 参数：
//
//	filepath - 配置文件路径（相对或绝对路径）
//
// 返回：
//
//	*GridFileConfig - 解析、补全默认值并校验后的配置
//	error - 文件读取、解析或校验失败
func LoadGridConfig(filepath string) (*GridFileConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read grid config file %s: %w", filepath, err)
	}
	return ParseGridConfig(data, filepath)
}

// LoadEmbeddedGridConfig 从嵌入文件系统加载网格配置
// 需要先调用 embedded.Init()
func LoadEmbeddedGridConfig(filepath string) (*GridFileConfig, error) {
	data, err := embedded.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded grid config %s: %w", filepath, err)
	}
	return ParseGridConfig(data, filepath)
}

// ListGridPresets 返回嵌入的预设名（文件名去掉扩展名），按名称排序
func ListGridPresets() ([]string, error) {
	files, err := embedded.Glob(gridPresetPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list grid presets: %w", err)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(path.Base(f), path.Ext(f)))
	}
	sort.Strings(names)
	return names, nil
}

// LoadGridPreset 按名称加载嵌入的预设
func LoadGridPreset(name string) (*GridFileConfig, error) {
	return LoadEmbeddedGridConfig(path.Join("data/presets", name+".yaml"))
}

// ParseGridConfig 解析YAML数据，source 仅用于错误信息
func ParseGridConfig(data []byte, source string) (*GridFileConfig, error) {
	var cfg GridFileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse grid config YAML from %s: %w", source, err)
	}

	// 应用默认值（未配置的字段沿用网格默认值）
	applyGridDefaults(&cfg)

	if err := validateGridConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid grid config in %s: %w", source, err)
	}

	return &cfg, nil
}

// DefaultGridFileConfig 返回完全由默认值组成的配置
func DefaultGridFileConfig() *GridFileConfig {
	cfg := &GridFileConfig{}
	applyGridDefaults(cfg)
	return cfg
}

// applyGridDefaults 为缺失的可选字段设置默认值
func applyGridDefaults(cfg *GridFileConfig) {
	if cfg.Grid.Dimensions.Column == 0 && cfg.Grid.Dimensions.Row == 0 {
		cfg.Grid.Dimensions = DimensionsConfig{Column: grid.DefaultDimension, Row: grid.DefaultDimension}
	}
	if cfg.Grid.CellSize == 0 {
		cfg.Grid.CellSize = grid.DefaultCellSize
	}

	if cfg.DevOptions.ShowPreviewGrid == nil {
		cfg.DevOptions.ShowPreviewGrid = boolPtr(true)
	}
	if cfg.DevOptions.ShowTileTextInfo == nil {
		cfg.DevOptions.ShowTileTextInfo = boolPtr(false)
	}
	if cfg.DevOptions.DrawBoundingBox == nil {
		cfg.DevOptions.DrawBoundingBox = boolPtr(true)
	}

	if cfg.Placement.ConfirmPolicy == "" {
		cfg.Placement.ConfirmPolicy = ConfirmPolicyPermissive
	}

	for i := range cfg.Placeables {
		p := &cfg.Placeables[i]
		if p.Name == "" {
			p.Name = p.ID
		}
		if p.BuildDuration == 0 {
			p.BuildDuration = 1.0
		}
		if p.BuildDurationMultiply == 0 {
			p.BuildDurationMultiply = 1.0
		}
	}

	// 未指定默认建筑时使用第一个
	if cfg.Placement.DefaultPlaceable == "" && len(cfg.Placeables) > 0 {
		cfg.Placement.DefaultPlaceable = cfg.Placeables[0].ID
	}
}

// validateGridConfig 校验配置的完整性和合法性
func validateGridConfig(cfg *GridFileConfig) error {
	if _, err := grid.NewConfiguration(cfg.Configuration().Dimensions, cfg.Grid.CellSize); err != nil {
		return fmt.Errorf("grid: %w", err)
	}

	switch cfg.Placement.ConfirmPolicy {
	case ConfirmPolicyPermissive, ConfirmPolicyRequireValid:
	default:
		return fmt.Errorf("placement.confirmPolicy must be one of: %s, %s, got %q",
			ConfirmPolicyPermissive, ConfirmPolicyRequireValid, cfg.Placement.ConfirmPolicy)
	}

	seen := make(map[string]bool, len(cfg.Placeables))
	for i, p := range cfg.Placeables {
		if p.ID == "" {
			return fmt.Errorf("placeables[%d]: id is required", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("placeables[%d]: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true

		if p.BuildDuration < 0 {
			return fmt.Errorf("placeables[%d] (%s): buildDuration cannot be negative", i, p.ID)
		}
		if p.BuildDurationMultiply < 0 {
			return fmt.Errorf("placeables[%d] (%s): buildDurationMultiply cannot be negative", i, p.ID)
		}
	}

	if cfg.Placement.DefaultPlaceable != "" && !seen[cfg.Placement.DefaultPlaceable] {
		return fmt.Errorf("placement.defaultPlaceable %q is not a known placeable", cfg.Placement.DefaultPlaceable)
	}

	return nil
}

// Configuration 转换为 grid.Configuration
func (c *GridFileConfig) Configuration() grid.Configuration {
	return grid.Configuration{
		Dimensions: grid.NewCoord(c.Grid.Dimensions.Column, c.Grid.Dimensions.Row),
		CellSize:   c.Grid.CellSize,
	}
}

// Origin 返回网格拥有者的世界位置
func (c *GridFileConfig) Origin() grid.Vector3 {
	return grid.Vector3{X: c.Grid.Origin.X, Y: c.Grid.Origin.Y, Z: c.Grid.Origin.Z}
}

// FindPlaceable 按ID查找建筑类型
func (c *GridFileConfig) FindPlaceable(id string) (PlaceableConfig, bool) {
	for _, p := range c.Placeables {
		if p.ID == id {
			return p, true
		}
	}
	return PlaceableConfig{}, false
}

func boolPtr(b bool) *bool {
	return &b
}
