package cache

import (
	"sync"

	"github.com/OCAP2/boarding/pkg/core"
)

// OutfitCache is the outfit catalogue for the current scenario. Vehicles refer to
// outfits by name; slots share the catalogue's *core.Outfit.
type OutfitCache struct {
	mu      sync.RWMutex
	outfits map[string]*core.Outfit
}

// NewOutfitCache creates a new OutfitCache
func NewOutfitCache() *OutfitCache {
	return &OutfitCache{
		outfits: make(map[string]*core.Outfit),
	}
}

// Get retrieves an outfit by name
func (c *OutfitCache) Get(name string) (*core.Outfit, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	o, ok := c.outfits[name]
	return o, ok
}

// Set stores an outfit under its name
func (c *OutfitCache) Set(o *core.Outfit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outfits[o.Name] = o
}

// Delete removes an outfit by name
func (c *OutfitCache) Delete(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.outfits, name)
}

// Len returns the number of catalogued outfits
func (c *OutfitCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.outfits)
}

// Reset clears the catalogue
func (c *OutfitCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outfits = make(map[string]*core.Outfit)
}
