package sim

import (
	"context"
	"testing"
	"time"

	"github.com/lab1702/actionserver/zone"
)

// newTestSimulation builds a WorldSimulation assigned to zone (0,0)
// with no-op collaborators, suitable for exercising actor-owned state
// through do(). The tick loop runs for real in the background, so
// tests that need a deterministic entity set do their setup/assertions
// inside ws.do to stay serialized with it.
func newTestSimulation(t *testing.T) *WorldSimulation {
	t.Helper()
	ws := NewWorldSimulation(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	ws.SetAssignedSquare(ctx, zone.GridSquare{X: 0, Y: 0})
	t.Cleanup(func() {
		cancel()
		ws.Shutdown()
	})
	return ws
}

func mustGetEntity(t *testing.T, ws *WorldSimulation, id zone.EntityID) *zone.Entity {
	t.Helper()
	var e *zone.Entity
	ws.do(func() {
		got, ok := ws.entities.Get(id)
		if ok {
			cp := *got
			e = &cp
		}
	})
	if e == nil {
		t.Fatalf("entity %s not found", id)
	}
	return e
}

func entityCount(ws *WorldSimulation, pred func(*zone.Entity) bool) int {
	var n int
	ws.do(func() {
		n = len(ws.entities.Filter(pred))
	})
	return n
}

// timeSoon returns a timestamp one millisecond after the current wall
// clock, for tests that need a "now" inside a do() closure.
func timeSoon() time.Time {
	return time.Now().Add(time.Millisecond)
}
