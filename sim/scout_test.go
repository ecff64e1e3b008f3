package sim

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/lab1702/actionserver/zone"
)

// fakeWorldManager answers GetActionServerForPosition only for the
// grid squares listed in owned, simulating a cluster where some
// neighbour zones have no assigned server.
type fakeWorldManager struct {
	NoopWorldManager
	owned map[zone.GridSquare]string
}

func (f fakeWorldManager) GetActionServerForPosition(pos zone.Vec2) (string, bool) {
	endpoint, ok := f.owned[zone.GridSquareOf(pos)]
	return endpoint, ok
}

func TestTriggerScoutAlertWakesLocalEnemies(t *testing.T) {
	ws := newTestSimulation(t)
	now := time.Now()

	ws.do(func() {
		ws.entities.Put(&zone.Entity{
			ID: "player1", Kind: zone.EntityPlayer, Position: zone.Vec2{X: 250, Y: 250}, State: zone.StateActive,
		})
		scout := &zone.Entity{
			ID: "scout1", Kind: zone.EntityEnemy, SubType: int32(zone.EnemyScout),
			Position: zone.Vec2{X: 250, Y: 250}, State: zone.StateActive,
		}
		ws.entities.Put(scout)
		sleeper := &zone.Entity{
			ID: "sniper1", Kind: zone.EntityEnemy, SubType: int32(zone.EnemySniper),
			Position: zone.Vec2{X: 0, Y: 0}, State: zone.StateActive,
		}
		ws.entities.Put(sleeper)

		ws.triggerScoutAlert(now, scout)

		updated, _ := ws.entities.Get("sniper1")
		if !updated.IsAlerted {
			t.Errorf("alertLocalEnemies did not alert sniper1")
		}
		if updated.LastKnownPlayerAt != (zone.Vec2{X: 250, Y: 250}) {
			t.Errorf("LastKnownPlayerAt = %v, want player's position", updated.LastKnownPlayerAt)
		}
	})
}

// newScoutAlertTestSimulation builds a zone (0,0) simulation with a
// fakeWorldManager owning exactly the neighbour squares in owned, for
// exercising alertNeighbourZones' direction/revert logic.
func newScoutAlertTestSimulation(t *testing.T, owned map[zone.GridSquare]string) *WorldSimulation {
	t.Helper()
	ws := NewWorldSimulation(Config{WorldManager: fakeWorldManager{owned: owned}})
	ctx, cancel := context.WithCancel(context.Background())
	ws.SetAssignedSquare(ctx, zone.GridSquare{X: 0, Y: 0})
	t.Cleanup(func() {
		cancel()
		ws.Shutdown()
	})
	return ws
}

func TestAlertNeighbourZonesCentreAlertsAll8(t *testing.T) {
	ws := newScoutAlertTestSimulation(t, map[zone.GridSquare]string{
		{X: -1, Y: 0}: "ep",
	})
	ws.do(func() {
		min, _ := ws.assigned.Bounds()
		scout := &zone.Entity{ID: "scout1", Kind: zone.EntityEnemy, SubType: int32(zone.EnemyScout), State: zone.StateAlerting}
		centre := zone.Vec2{X: min.X + zone.ZoneSize/2, Y: min.Y + zone.ZoneSize/2}

		ws.alertNeighbourZones(scout, centre)

		if scout.AlertDirection != zone.ScoutAlertDirectionCentre {
			t.Errorf("AlertDirection = %v, want ScoutAlertDirectionCentre (centre sighting alerts all 8 neighbours)", scout.AlertDirection)
		}
	})
}

func TestAlertNeighbourZonesCornerDirectsTowardOwnedNeighbour(t *testing.T) {
	ws := newScoutAlertTestSimulation(t, map[zone.GridSquare]string{
		{X: -1, Y: 0}: "ep", // the lone owned candidate for a (gx=0, gy=0) corner sighting
	})
	ws.do(func() {
		min, _ := ws.assigned.Bounds()
		scout := &zone.Entity{ID: "scout1", Kind: zone.EntityEnemy, SubType: int32(zone.EnemyScout), State: zone.StateAlerting}
		corner := zone.Vec2{X: min.X + 1, Y: min.Y + 1}

		ws.alertNeighbourZones(scout, corner)

		if math.Abs(scout.AlertDirection-math.Pi) > 1e-9 {
			t.Errorf("AlertDirection = %v, want ~Pi (only the west neighbour survived)", scout.AlertDirection)
		}
	})
}

func TestAlertNeighbourZonesNoSurvivorsRevertsToActive(t *testing.T) {
	ws := newScoutAlertTestSimulation(t, nil)
	ws.do(func() {
		min, _ := ws.assigned.Bounds()
		scout := &zone.Entity{
			ID: "scout1", Kind: zone.EntityEnemy, SubType: int32(zone.EnemyScout),
			State: zone.StateAlerting, HasSpotted: true, HasAlerted: true, StateTimer: 7,
		}
		corner := zone.Vec2{X: min.X + 1, Y: min.Y + 1}

		ws.alertNeighbourZones(scout, corner)

		if scout.AlertDirection != zone.ScoutAlertDirectionNone {
			t.Errorf("AlertDirection = %v, want ScoutAlertDirectionNone", scout.AlertDirection)
		}
		if scout.State != zone.StateActive {
			t.Errorf("State = %v, want StateActive after an alert with no surviving neighbours", scout.State)
		}
		if scout.HasSpotted || scout.HasAlerted || scout.StateTimer != 0 {
			t.Errorf("scout not fully reset: %+v", scout)
		}
	})
}

func TestIntraZoneCellClassification(t *testing.T) {
	ws := newTestSimulation(t)
	ws.do(func() {
		min, _ := ws.assigned.Bounds()
		tests := []struct {
			name   string
			pos    zone.Vec2
			wantGX int
			wantGY int
		}{
			{"bottom-left corner", zone.Vec2{X: min.X + 1, Y: min.Y + 1}, 0, 0},
			{"centre", zone.Vec2{X: min.X + zone.ZoneSize/2, Y: min.Y + zone.ZoneSize/2}, 1, 1},
		}
		for _, tt := range tests {
			gx, gy := ws.intraZoneCell(tt.pos)
			if gx != tt.wantGX || gy != tt.wantGY {
				t.Errorf("%s: intraZoneCell(%v) = (%d,%d), want (%d,%d)", tt.name, tt.pos, gx, gy, tt.wantGX, tt.wantGY)
			}
		}
	})
}
