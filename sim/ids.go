package sim

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/lab1702/actionserver/zone"
)

// epochTag is generated once per process start and folded into every
// server-spawned entity ID, since the naming scheme
// "<kind>_<zx>_<zy>_<counter>" can collide across a restart if the
// counter resets to a value a neighbour still has an in-flight
// trajectory or blocklist entry for; stamping a short UUID-derived
// epoch tag into the ID makes a post-restart ID distinguishable from
// its pre-restart counterpart even if the numeric counter repeats.
func newEpochTag() string {
	return uuid.New().String()[:8]
}

// idGenerator allocates entity IDs for one WorldSimulation.
type idGenerator struct {
	zx, zy  int32
	epoch   string
	counter uint64
}

func newIDGenerator(zx, zy int32) *idGenerator {
	return &idGenerator{zx: zx, zy: zy, epoch: newEpochTag()}
}

func (g *idGenerator) next(kind zone.EntityType) zone.EntityID {
	n := atomic.AddUint64(&g.counter, 1)
	return zone.EntityID(fmt.Sprintf("%s_%d_%d_%s_%d", kind, g.zx, g.zy, g.epoch, n))
}

func playerEntityID(playerID string) zone.EntityID {
	return zone.EntityID(playerID)
}
