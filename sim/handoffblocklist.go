package sim

import (
	"time"

	"github.com/lab1702/actionserver/zone"
)

// handoffBlocklist is the short-lived set of bullet IDs this zone has
// expelled; re-entry trajectories are rejected for HandoffBlocklistTTL
// A bullet ID is never simultaneously present in
// EntityStore and here.
type handoffBlocklist struct {
	entries map[zone.EntityID]time.Time // value = insertion time
}

func newHandoffBlocklist() *handoffBlocklist {
	return &handoffBlocklist{entries: make(map[zone.EntityID]time.Time)}
}

func (b *handoffBlocklist) Add(id zone.EntityID, now time.Time) {
	b.entries[id] = now
}

func (b *handoffBlocklist) Contains(id zone.EntityID) bool {
	_, ok := b.entries[id]
	return ok
}

// Sweep drops entries older than HandoffBlocklistTTL.
func (b *handoffBlocklist) Sweep(now time.Time) {
	for id, at := range b.entries {
		if now.Sub(at) >= zone.HandoffBlocklistTTL {
			delete(b.entries, id)
		}
	}
}
