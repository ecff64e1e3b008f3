package sim

import (
	"math"
	"time"

	"github.com/lab1702/actionserver/zone"
)

// updateAI drives every enemy with state Active or Alerting.
func (ws *WorldSimulation) updateAI(now time.Time, dt float64) {
	players := ws.entities.Filter(func(e *zone.Entity) bool {
		return e.Kind == zone.EntityPlayer && e.State == zone.StateActive
	})

	enemies := ws.entities.Filter(func(e *zone.Entity) bool {
		return e.Kind == zone.EntityEnemy && (e.State == zone.StateActive || e.State == zone.StateAlerting)
	})

	for _, e := range enemies {
		if len(players) == 0 {
			ws.aiIdle(e)
			continue
		}

		closest, dist := closestPlayer(e, players)

		if e.IsAlerted && now.Before(e.AlertedUntil) {
			ws.aiAlerted(now, dt, e)
			continue
		}
		e.IsAlerted = false

		switch zone.EnemySubType(e.SubType) {
		case zone.EnemyKamikaze:
			ws.aiKamikaze(e, closest, dist)
		case zone.EnemySniper:
			ws.aiSniper(now, e, closest, dist)
		case zone.EnemyStrafing:
			ws.aiStrafing(now, e, closest, dist)
		case zone.EnemyScout:
			ws.aiScout(now, dt, e, closest, dist)
		}
	}
}

func (ws *WorldSimulation) aiIdle(e *zone.Entity) {
	if zone.EnemySubType(e.SubType) == zone.EnemyScout {
		e.HasSpotted = false
		e.HasAlerted = false
		e.State = zone.StateActive
		e.Velocity = zone.Vec2{}
	}
	// Other enemies simply hold position (no velocity change) when idle.
}

// aiAlerted moves a silently-alerted enemy toward the last known
// player position.
func (ws *WorldSimulation) aiAlerted(now time.Time, dt float64, e *zone.Entity) {
	dir := e.LastKnownPlayerAt.Sub(e.Position)
	if dir.Len() <= 50 {
		e.IsAlerted = false
		e.Velocity = zone.Vec2{}
		return
	}
	e.Velocity = dir.Normalize().Scale(zone.ScoutAlertMoveSpeed)
}

func closestPlayer(e *zone.Entity, players []*zone.Entity) (*zone.Entity, float64) {
	var best *zone.Entity
	bestDist := math.MaxFloat64
	for _, p := range players {
		d := zone.Distance(e.Position, p.Position)
		if d < bestDist {
			bestDist = d
			best = p
		}
	}
	return best, bestDist
}

func (ws *WorldSimulation) aiKamikaze(e, target *zone.Entity, dist float64) {
	dir := target.Position.Sub(e.Position).Normalize()
	e.Velocity = dir.Scale(zone.KamikazeSpeed)
}

func (ws *WorldSimulation) aiSniper(now time.Time, e, target *zone.Entity, dist float64) {
	if dist > zone.SniperRange {
		dir := target.Position.Sub(e.Position).Normalize()
		e.Velocity = dir.Scale(zone.SniperSpeed)
		return
	}
	e.Velocity = zone.Vec2{}
	if ws.rng.Float64() < zone.SniperFireProb {
		dir := target.Position.Sub(e.Position).Normalize()
		ws.spawnBullet(now, e, dir, true)
	}
}

func (ws *WorldSimulation) aiStrafing(now time.Time, e, target *zone.Entity, dist float64) {
	if dist > zone.StrafeRange {
		dir := target.Position.Sub(e.Position).Normalize()
		e.Velocity = dir.Scale(zone.StrafeApproachSpd)
		return
	}

	if e.StrafeSign == 0 {
		if ws.rng.Intn(2) == 0 {
			e.StrafeSign = 1
		} else {
			e.StrafeSign = -1
		}
	} else if ws.rng.Float64() < zone.StrafeFlipProb {
		e.StrafeSign = -e.StrafeSign
	}

	dir := target.Position.Sub(e.Position).Normalize()
	e.Velocity = dir.Perp().Scale(float64(e.StrafeSign) * zone.StrafeSpeed)

	if ws.rng.Float64() < zone.StrafeFireProb {
		toTarget := target.Position.Sub(e.Position).Normalize()
		ws.spawnBullet(now, e, toTarget, true)
	}
}

func (ws *WorldSimulation) aiScout(now time.Time, dt float64, e, target *zone.Entity, dist float64) {
	if dist > zone.ScoutDetectRange {
		e.HasSpotted = false
		e.HasAlerted = false
		e.State = zone.StateActive
		ws.scoutRoam(e, dt)
		return
	}

	if !e.HasSpotted {
		e.HasSpotted = true
		e.StateTimer = 0
		e.Velocity = zone.Vec2{}
		return
	}
	e.StateTimer += dt

	if e.State == zone.StateAlerting {
		if now.Sub(e.AlertedUntil.Add(-zone.ScoutAlertSendSpan)) >= zone.ScoutAlertSendSpan {
			e.State = zone.StateActive
			e.HasSpotted = false
			e.HasAlerted = false
		}
		return
	}

	if !e.HasAlerted && e.StateTimer >= 5 {
		e.HasAlerted = true
		e.State = zone.StateAlerting
		e.StateTimer = 0
		e.AlertedUntil = now.Add(zone.ScoutAlertSendSpan)
		ws.triggerScoutAlert(now, e)
	}
}

// scoutRoam implements the roam-when-not-detecting behaviour.
func (ws *WorldSimulation) scoutRoam(e *zone.Entity, dt float64) {
	min, max := ws.assigned.Bounds()
	roamMin := zone.Vec2{X: min.X + zone.ScoutRoamMargin, Y: min.Y + zone.ScoutRoamMargin}
	roamMax := zone.Vec2{X: max.X - zone.ScoutRoamMargin, Y: max.Y - zone.ScoutRoamMargin}

	if e.RoamDir == (zone.Vec2{}) || ws.inCentralCell(e) || ws.rng.Float64() < 0.01 {
		angle := ws.rng.Float64() * 2 * math.Pi
		e.RoamDir = zone.DirectionVec(angle)
	}

	e.Velocity = e.RoamDir.Scale(zone.SniperSpeed)
	next := e.Position.Add(e.Velocity.Scale(dt))

	if next.X < roamMin.X || next.X >= roamMax.X {
		e.RoamDir.X = -e.RoamDir.X
	}
	if next.Y < roamMin.Y || next.Y >= roamMax.Y {
		e.RoamDir.Y = -e.RoamDir.Y
	}
	e.Position = e.Position.Add(e.RoamDir.Scale(zone.SniperSpeed).Scale(dt)).Clamp(roamMin, roamMax)
}

// inCentralCell reports whether e sits in the centre cell of the
// zone's intra-zone 3x3 grid (used by roam-direction forcing;
// scout-alert targeting calls intraZoneCell directly).
func (ws *WorldSimulation) inCentralCell(e *zone.Entity) bool {
	gx, gy := ws.intraZoneCell(e.Position)
	return gx == 1 && gy == 1
}

// intraZoneCell returns the 3x3 cell (0..2, 0..2) a position falls
// into within the assigned zone.
func (ws *WorldSimulation) intraZoneCell(pos zone.Vec2) (int, int) {
	min, _ := ws.assigned.Bounds()
	third := zone.ZoneSize / 3
	gx := int((pos.X - min.X) / third)
	gy := int((pos.Y - min.Y) / third)
	if gx < 0 {
		gx = 0
	} else if gx > 2 {
		gx = 2
	}
	if gy < 0 {
		gy = 0
	} else if gy > 2 {
		gy = 2
	}
	return gx, gy
}
