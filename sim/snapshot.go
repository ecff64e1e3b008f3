package sim

import (
	"time"

	"github.com/lab1702/actionserver/zone"
)

// GetCurrentState returns an immutable, sequenced snapshot of every
// entity in this zone. Each call takes a fresh copy so a
// caller holding the result is unaffected by later ticks.
func (ws *WorldSimulation) GetCurrentState() zone.WorldState {
	var state zone.WorldState
	ws.do(func() {
		ws.sequence++
		all := ws.entities.All()
		snaps := make([]zone.EntitySnapshot, 0, len(all))
		for _, e := range all {
			snaps = append(snaps, zone.EntitySnapshot{
				ID:         e.ID,
				Kind:       e.Kind,
				Position:   e.Position,
				Velocity:   e.Velocity,
				Health:     e.Health,
				Rotation:   e.Rotation,
				SubType:    e.SubType,
				State:      e.State,
				StateTimer: e.StateTimer,
				PlayerName: e.PlayerName,
				Team:       e.Team,
			})
		}
		state = zone.WorldState{
			Entities:       snaps,
			Timestamp:      time.Now(),
			SequenceNumber: ws.sequence,
		}
	})
	return state
}

// GetCurrentPhase returns the current round phase.
func (ws *WorldSimulation) GetCurrentPhase() zone.GamePhase {
	var phase zone.GamePhase
	ws.do(func() {
		phase = ws.phase.Phase()
	})
	return phase
}

// GetServerFps returns the observed tick rate over the rolling FPS
// window.
func (ws *WorldSimulation) GetServerFps() float64 {
	var fps float64
	ws.do(func() {
		fps = ws.fps.FPS()
	})
	return fps
}

// GetPlayersOutsideZone returns every player entity whose position no
// longer falls inside this zone's bounds — a consistency check used
// by WorldManager to detect a stuck handoff (the clamp case should
// make this permanently empty, but a caller relying on
// clamp-only is fragile against future movement rules).
func (ws *WorldSimulation) GetPlayersOutsideZone() []zone.EntityOutsideZone {
	var out []zone.EntityOutsideZone
	ws.do(func() {
		for _, e := range ws.entities.Filter(isPlayer) {
			if zone.GridSquareOf(e.Position) != ws.assigned {
				out = append(out, zone.EntityOutsideZone{
					ID:       e.ID,
					Position: e.Position,
					Kind:     e.Kind,
					SubType:  e.SubType,
				})
			}
		}
	})
	return out
}

// GetEntitiesOutsideZone is GetPlayersOutsideZone's generalization to
// every entity kind, used by diagnostics tooling.
func (ws *WorldSimulation) GetEntitiesOutsideZone() []zone.EntityOutsideZone {
	var out []zone.EntityOutsideZone
	ws.do(func() {
		for _, e := range ws.entities.All() {
			if zone.GridSquareOf(e.Position) != ws.assigned {
				out = append(out, zone.EntityOutsideZone{
					ID:       e.ID,
					Position: e.Position,
					Kind:     e.Kind,
					SubType:  e.SubType,
				})
			}
		}
	})
	return out
}

// GetDamageReport returns a copy of this round's damage ledger.
func (ws *WorldSimulation) GetDamageReport() zone.ZoneDamageReport {
	var report zone.ZoneDamageReport
	ws.do(func() {
		report = ws.ledger.Report(ws.assigned, time.Now())
	})
	return report
}

// GetPlayerInfo returns the subset of a live player's state exposed to
// collaborators, or ok=false if the player isn't present in this zone.
func (ws *WorldSimulation) GetPlayerInfo(playerID string) (zone.PlayerInfo, bool) {
	var info zone.PlayerInfo
	var ok bool
	ws.do(func() {
		e, found := ws.entities.Get(playerEntityID(playerID))
		if !found || e.Kind != zone.EntityPlayer {
			return
		}
		ok = true
		info = zone.PlayerInfo{
			ID:       e.ID,
			Name:     e.PlayerName,
			Team:     e.Team,
			Position: e.Position,
			Health:   e.Health,
			State:    e.State,
		}
	})
	return info, ok
}
