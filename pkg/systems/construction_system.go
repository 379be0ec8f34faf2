package systems

import (
	"log"

	"github.com/decker502/rtsgrid/pkg/components"
	"github.com/decker502/rtsgrid/pkg/ecs"
)

// ConstructionSystem 驱动已放置建筑的建造进度
// 同时实现 PlacementHooks，作为放置系统的默认回调
type ConstructionSystem struct {
	entityManager *ecs.EntityManager
}

// NewConstructionSystem 创建建造系统
func NewConstructionSystem(em *ecs.EntityManager) *ConstructionSystem {
	return &ConstructionSystem{entityManager: em}
}

// OnPlacementBegin 建筑进入预览
func (s *ConstructionSystem) OnPlacementBegin(placeable ecs.EntityID) {
	comp, ok := ecs.GetComponent[*components.PlaceableComponent](s.entityManager, placeable)
	if !ok {
		return
	}
	comp.State = components.PlaceableStatePreviewing
	comp.BuildElapsed = 0
}

// OnPlacementCompleted 放置确认后开始建造
// 建造时长为 0 时立即完成
func (s *ConstructionSystem) OnPlacementCompleted(placeable ecs.EntityID) {
	comp, ok := ecs.GetComponent[*components.PlaceableComponent](s.entityManager, placeable)
	if !ok {
		return
	}
	comp.BuildElapsed = 0
	if comp.TotalBuildTime() <= 0 {
		comp.State = components.PlaceableStateBuilt
		log.Printf("[ConstructionSystem] %s (entity %d) built instantly at %v", comp.TypeID, placeable, comp.Coord)
		return
	}
	comp.State = components.PlaceableStateConstructing
	log.Printf("[ConstructionSystem] %s (entity %d) started construction at %v, %.2fs",
		comp.TypeID, placeable, comp.Coord, comp.TotalBuildTime())
}

// OnPlacementCancelled 放置被取消
func (s *ConstructionSystem) OnPlacementCancelled(placeable ecs.EntityID) {
	comp, ok := ecs.GetComponent[*components.PlaceableComponent](s.entityManager, placeable)
	if !ok {
		return
	}
	comp.State = components.PlaceableStateCancelled
}

// Update 推进建造中的建筑
func (s *ConstructionSystem) Update(dt float64) {
	for _, entity := range ecs.GetEntitiesWith1[*components.PlaceableComponent](s.entityManager) {
		comp, _ := ecs.GetComponent[*components.PlaceableComponent](s.entityManager, entity)
		if comp.State != components.PlaceableStateConstructing {
			continue
		}

		comp.BuildElapsed += dt
		if comp.BuildElapsed >= comp.TotalBuildTime() {
			comp.BuildElapsed = comp.TotalBuildTime()
			comp.State = components.PlaceableStateBuilt
			log.Printf("[ConstructionSystem] %s (entity %d) finished construction at %v", comp.TypeID, entity, comp.Coord)
		}
	}
}

// Counts 按状态统计建筑数量
func (s *ConstructionSystem) Counts() map[components.PlaceableState]int {
	counts := make(map[components.PlaceableState]int)
	for _, entity := range ecs.GetEntitiesWith1[*components.PlaceableComponent](s.entityManager) {
		comp, _ := ecs.GetComponent[*components.PlaceableComponent](s.entityManager, entity)
		counts[comp.State]++
	}
	return counts
}
