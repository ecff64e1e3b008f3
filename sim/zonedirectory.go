package sim

import (
	"time"

	"github.com/lab1702/actionserver/zone"
)

// zoneDirectoryCache is a locally cached set of grid squares currently
// backed by some server, refreshed from WorldManager every
// ZoneDirectoryTTL.
type zoneDirectoryCache struct {
	wm        WorldManager
	available map[zone.GridSquare]struct{}
	lastSync  time.Time
}

func newZoneDirectoryCache(wm WorldManager) *zoneDirectoryCache {
	return &zoneDirectoryCache{wm: wm, available: make(map[zone.GridSquare]struct{})}
}

// Available reports whether square is currently backed by some server.
// On a stale cache it refreshes synchronously from WorldManager first
// (a stale-read refresh is the one mutator of this resource outside
// the tick).
func (c *zoneDirectoryCache) Available(now time.Time, square zone.GridSquare) bool {
	if now.Sub(c.lastSync) >= zone.ZoneDirectoryTTL {
		c.refresh(now)
	}
	_, ok := c.available[square]
	return ok
}

func (c *zoneDirectoryCache) refresh(now time.Time) {
	c.lastSync = now
	if c.wm == nil {
		return
	}
	servers := c.wm.GetAllActionServers()
	fresh := make(map[zone.GridSquare]struct{}, len(servers))
	for sq := range servers {
		fresh[sq] = struct{}{}
	}
	c.available = fresh
}

// Seed installs an initial set of available squares without waiting
// for the first TTL refresh — used in tests and at startup.
func (c *zoneDirectoryCache) Seed(now time.Time, squares ...zone.GridSquare) {
	c.lastSync = now
	if c.available == nil {
		c.available = make(map[zone.GridSquare]struct{})
	}
	for _, sq := range squares {
		c.available[sq] = struct{}{}
	}
}
