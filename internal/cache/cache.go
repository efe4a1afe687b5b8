package cache

import (
	"slices"
	"sync"

	"github.com/OCAP2/boarding/pkg/core"
)

// EntityCache is the vehicle registry. It owns every live vehicle; everything else
// holds a VehicleID and resolves it here, so a vehicle that was removed simply stops
// resolving.
type EntityCache struct {
	m        sync.Mutex
	Vehicles map[core.VehicleID]*core.Vehicle
}

func NewEntityCache() *EntityCache {
	return &EntityCache{
		m:        sync.Mutex{},
		Vehicles: make(map[core.VehicleID]*core.Vehicle),
	}
}

func (c *EntityCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.Vehicles = make(map[core.VehicleID]*core.Vehicle)
}

func (c *EntityCache) Lock() {
	c.m.Lock()
}

func (c *EntityCache) Unlock() {
	c.m.Unlock()
}

// Get returns the live vehicle. Callers mutate it in place.
func (c *EntityCache) Get(id core.VehicleID) (*core.Vehicle, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if v, ok := c.Vehicles[id]; ok {
		return v, true
	}
	return nil, false
}

// Add registers v, replacing any vehicle with the same ID. Its caches are computed
// on the way in.
func (c *EntityCache) Add(v *core.Vehicle) {
	v.RecomputeMass()
	v.RecomputeWeapons()
	c.m.Lock()
	defer c.m.Unlock()
	c.Vehicles[v.ID] = v
}

// Remove drops the vehicle. It reports whether it was registered.
func (c *EntityCache) Remove(id core.VehicleID) bool {
	c.m.Lock()
	defer c.m.Unlock()
	if _, ok := c.Vehicles[id]; !ok {
		return false
	}
	delete(c.Vehicles, id)
	return true
}

func (c *EntityCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.Vehicles)
}

// IDs returns the registered IDs in ascending order.
func (c *EntityCache) IDs() []core.VehicleID {
	c.m.Lock()
	defer c.m.Unlock()
	ids := make([]core.VehicleID, 0, len(c.Vehicles))
	for id := range c.Vehicles {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Each calls fn for every vehicle in ID order. fn must not call back into the cache.
func (c *EntityCache) Each(fn func(v *core.Vehicle)) {
	c.m.Lock()
	defer c.m.Unlock()
	ids := make([]core.VehicleID, 0, len(c.Vehicles))
	for id := range c.Vehicles {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fn(c.Vehicles[id])
	}
}

// Refresh recomputes the vehicle's mass and weapon caches after a loadout change.
func (c *EntityCache) Refresh(v *core.Vehicle) {
	v.RecomputeMass()
	v.RecomputeWeapons()
}
