package sim

import (
	"testing"
	"time"

	"github.com/lab1702/actionserver/zone"
)

func TestZoneDirectoryCacheSeedAndAvailable(t *testing.T) {
	c := newZoneDirectoryCache(nil)
	now := time.Now()
	c.Seed(now, zone.GridSquare{X: 1, Y: 1})

	if !c.Available(now, zone.GridSquare{X: 1, Y: 1}) {
		t.Errorf("Available(1,1) = false, want true after Seed")
	}
	if c.Available(now, zone.GridSquare{X: 2, Y: 2}) {
		t.Errorf("Available(2,2) = true, want false (never seeded)")
	}
}

func TestZoneDirectoryCacheRefreshesOnStaleTTL(t *testing.T) {
	wm := &fakeDirectoryWorldManager{
		servers: map[zone.GridSquare]string{{X: 5, Y: 5}: "server-a"},
	}
	c := newZoneDirectoryCache(wm)
	now := time.Now()
	c.Seed(now.Add(-2*zone.ZoneDirectoryTTL), zone.GridSquare{X: 9, Y: 9})

	if !c.Available(now, zone.GridSquare{X: 5, Y: 5}) {
		t.Errorf("Available(5,5) = false after stale-triggered refresh, want true")
	}
	if c.Available(now, zone.GridSquare{X: 9, Y: 9}) {
		t.Errorf("Available(9,9) = true after refresh replaced the seeded set, want false")
	}
}

type fakeDirectoryWorldManager struct {
	NoopWorldManager
	servers map[zone.GridSquare]string
}

func (f *fakeDirectoryWorldManager) GetAllActionServers() map[zone.GridSquare]string {
	return f.servers
}
