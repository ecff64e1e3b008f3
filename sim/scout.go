package sim

import (
	"log"
	"math"
	"time"

	"github.com/lab1702/actionserver/zone"
)

// triggerScoutAlert fires when a scout that has spotted a player
// for 5 uninterrupted seconds alerts every neighbour whose direction
// the spotted player's intra-zone cell points toward, plus every
// currently-Active enemy in this zone.
func (ws *WorldSimulation) triggerScoutAlert(now time.Time, scout *zone.Entity) {
	players := ws.entities.Filter(func(e *zone.Entity) bool {
		return e.Kind == zone.EntityPlayer && e.State == zone.StateActive
	})
	target, _ := closestPlayer(scout, players)
	if target == nil {
		return
	}
	scout.LastKnownPlayerAt = target.Position

	ws.alertLocalEnemies(now, target.Position)
	ws.alertNeighbourZones(scout, target.Position)
}

// alertLocalEnemies wakes every other enemy sharing this zone.
func (ws *WorldSimulation) alertLocalEnemies(now time.Time, playerPos zone.Vec2) {
	for _, e := range ws.entities.Filter(func(e *zone.Entity) bool {
		return e.Kind == zone.EntityEnemy && e.State == zone.StateActive
	}) {
		e.IsAlerted = true
		e.AlertedUntil = now.Add(zone.ScoutAlertValidity)
		e.LastKnownPlayerAt = playerPos
	}
}

// neighbourCandidate pairs a candidate neighbour zone with its offset
// (dx, dy) from the scout's own zone, used afterward to compute the
// alert direction reported back for display.
type neighbourCandidate struct {
	square zone.GridSquare
	offset zone.Vec2
}

// alertNeighbourZones determines which neighbouring zones lie in the
// direction of the spotted player's intra-zone cell, fire-and-forgets
// ReceiveScoutAlert to each one with a live owner, and records the
// resulting alert direction (and, if nothing survived, reverts the
// scout to Active) on scout.
func (ws *WorldSimulation) alertNeighbourZones(scout *zone.Entity, playerPos zone.Vec2) {
	gx, gy := ws.intraZoneCell(playerPos)
	square := ws.assigned
	centre := gx == 1 && gy == 1

	var candidates []neighbourCandidate
	if centre {
		for _, sq := range square.Neighbors8() {
			candidates = append(candidates, neighbourCandidate{square: sq})
		}
	} else {
		dx, dy := int32(0), int32(0)
		if gx == 0 {
			dx = -1
		} else if gx == 2 {
			dx = 1
		}
		if gy == 0 {
			dy = -1
		} else if gy == 2 {
			dy = 1
		}

		switch {
		case dx != 0 && dy != 0:
			// Player is in a corner cell: alert the diagonal neighbour plus
			// the two edge-adjacent neighbours that share that corner.
			candidates = []neighbourCandidate{
				{zone.GridSquare{X: square.X + dx, Y: square.Y + dy}, zone.Vec2{X: float64(dx), Y: float64(dy)}},
				{zone.GridSquare{X: square.X + dx, Y: square.Y}, zone.Vec2{X: float64(dx), Y: 0}},
				{zone.GridSquare{X: square.X, Y: square.Y + dy}, zone.Vec2{X: 0, Y: float64(dy)}},
			}
		case dx != 0:
			candidates = []neighbourCandidate{{zone.GridSquare{X: square.X + dx, Y: square.Y}, zone.Vec2{X: float64(dx), Y: 0}}}
		case dy != 0:
			candidates = []neighbourCandidate{{zone.GridSquare{X: square.X, Y: square.Y + dy}, zone.Vec2{X: 0, Y: float64(dy)}}}
		}
	}

	type survivor struct {
		neighbourCandidate
		endpoint string
	}
	var survivors []survivor
	for _, c := range candidates {
		endpoint, ok := ws.wm.GetActionServerForPosition(c.square.Centre())
		if !ok {
			continue
		}
		survivors = append(survivors, survivor{c, endpoint})
	}

	switch {
	case centre:
		scout.AlertDirection = zone.ScoutAlertDirectionCentre
	case len(survivors) == 0:
		scout.AlertDirection = zone.ScoutAlertDirectionNone
		scout.State = zone.StateActive
		scout.HasSpotted = false
		scout.HasAlerted = false
		scout.StateTimer = 0
	default:
		var sumX, sumY float64
		for _, s := range survivors {
			sumX += s.offset.X
			sumY += s.offset.Y
		}
		scout.AlertDirection = math.Atan2(sumY/float64(len(survivors)), sumX/float64(len(survivors)))
	}

	for _, s := range survivors {
		endpoint := s.endpoint
		ws.outbox.Submit("scout-alert", func() {
			if err := ws.xzone.ReceiveScoutAlert(endpoint, square, playerPos); err != nil {
				log.Printf("warning: ReceiveScoutAlert to %s failed: %v", endpoint, err)
			}
		})
	}
}

// ReceiveScoutAlert implements the receive side of a neighbour's alert: every
// Active enemy in this zone is alerted toward the
// reported position for ScoutAlertValidity seconds.
func (ws *WorldSimulation) ReceiveScoutAlert(fromZone zone.GridSquare, playerPos zone.Vec2) {
	ws.fireAndForget(func() {
		ws.alertLocalEnemies(ws.lastTick, playerPos)
	})
}
