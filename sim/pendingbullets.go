package sim

import "github.com/lab1702/actionserver/zone"

// pendingBulletTable holds trajectories announced by neighbours for
// bullets not yet materialized in this zone.
type pendingBulletTable struct {
	pending map[zone.EntityID]zone.PendingBullet
}

func newPendingBulletTable() *pendingBulletTable {
	return &pendingBulletTable{pending: make(map[zone.EntityID]zone.PendingBullet)}
}

func (t *pendingBulletTable) Put(b zone.PendingBullet) {
	t.pending[b.ID] = b
}

func (t *pendingBulletTable) Remove(id zone.EntityID) {
	delete(t.pending, id)
}

func (t *pendingBulletTable) Has(id zone.EntityID) bool {
	_, ok := t.pending[id]
	return ok
}

func (t *pendingBulletTable) All() []zone.PendingBullet {
	out := make([]zone.PendingBullet, 0, len(t.pending))
	for _, b := range t.pending {
		out = append(out, b)
	}
	return out
}
