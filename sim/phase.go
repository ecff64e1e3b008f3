package sim

import (
	"time"

	"github.com/lab1702/actionserver/zone"
)

// phaseController is the zone-local round state machine:
// Playing -> VictoryPause -> GameOver -> Restarting -> Playing.
type phaseController struct {
	phase zone.GamePhase

	allEnemiesDefeated bool
	lastEnemyDeathTime time.Time

	victoryPauseTime time.Time
	gameOverTime     time.Time

	lastChatSecond int // last "N seconds" countdown value announced
}

func newPhaseController() *phaseController {
	return &phaseController{phase: zone.PhasePlaying}
}

func (p *phaseController) Phase() zone.GamePhase { return p.phase }

// checkGameOver runs the round-over detection once
// per tick during Playing.
func (ws *WorldSimulation) checkGameOver(now time.Time) {
	p := ws.phase
	hostileCount := len(ws.entities.Filter(func(e *zone.Entity) bool {
		if e.Kind != zone.EntityEnemy && e.Kind != zone.EntityFactory {
			return false
		}
		return e.State != zone.StateDead && e.State != zone.StateDying
	}))

	if hostileCount == 0 {
		if !p.allEnemiesDefeated {
			p.allEnemiesDefeated = true
			p.lastEnemyDeathTime = now
		}
	} else {
		p.allEnemiesDefeated = false // resets the first tick an enemy exists
	}

	if p.allEnemiesDefeated && now.Sub(p.lastEnemyDeathTime) >= zone.EnemyDefeatedCooldown {
		ws.enterVictoryPause(now)
	}
}

func (ws *WorldSimulation) enterVictoryPause(now time.Time) {
	p := ws.phase
	p.phase = zone.PhaseVictoryPause
	p.victoryPauseTime = now
	p.lastChatSecond = -1
	if ws.metrics != nil {
		ws.metrics.phaseTransitions.Inc()
	}

	scores := ws.computeScores()
	ws.broker.RaiseVictoryPause(ws.assigned, scores, zone.VictoryPauseDuration.Seconds())
	ws.outbox.Submit("NotifyGameOver", func() {
		ws.wm.NotifyGameOver(ws.assigned, "")
	})
	ws.broker.RaiseChatMessage(ws.assigned, summarizeScores(scores))
}

// TickVictoryPause advances the 10-second cinematic pause.
func (p *phaseController) TickVictoryPause(now time.Time, ws *WorldSimulation) {
	elapsed := now.Sub(p.victoryPauseTime)
	remaining := int(zone.VictoryPauseDuration.Seconds() - elapsed.Seconds())

	switch remaining {
	case 8, 6, 4, 2:
		if p.lastChatSecond != remaining {
			p.lastChatSecond = remaining
			ws.broker.RaiseChatMessage(ws.assigned, chatCountdown(remaining))
		}
	}

	if elapsed >= zone.VictoryPauseDuration {
		p.phase = zone.PhaseGameOver
		p.gameOverTime = now
		if ws.metrics != nil {
			ws.metrics.phaseTransitions.Inc()
		}
		scores := ws.computeScores()
		ws.broker.RaiseGameOver(ws.assigned, scores)
		for _, pl := range ws.entities.Filter(isPlayer) {
			id := string(pl.ID)
			ws.outbox.Submit("PlayerGrain.NotifyGameOver", func() {
				ws.grain.NotifyGameOver(id)
			})
		}
	}
}

// TickGameOver advances the 15-second delay before restart.
func (p *phaseController) TickGameOver(now time.Time, ws *WorldSimulation) {
	if now.Sub(p.gameOverTime) >= zone.GameOverDelay {
		ws.restartRound(now)
	}
}

func chatCountdown(remaining int) string {
	switch remaining {
	case 1:
		return "Game restarting in 1 second..."
	default:
		return "Game restarting in " + itoa(int32(remaining)) + " seconds..."
	}
}

func isPlayer(e *zone.Entity) bool { return e.Kind == zone.EntityPlayer }
