package sim

import (
	"fmt"

	"github.com/lab1702/actionserver/zone"
)

// computeScores implements the VictoryPause scoring function, derived
// from the damage ledger rather than a local RNG: a player's score is
// the number of this round's DamageEvent entries with that player as
// attacker (AttackerKind == Player) and an Enemy or Asteroid as target.
// Every such hit counts, whether or not it killed the target, and
// RespawnCount does not enter the score. Only players currently in the
// zone appear in the result.
func (ws *WorldSimulation) computeScores() map[string]int {
	kills := make(map[zone.EntityID]int)

	// Walk the ledger for kill credits: a kill is attributed to the
	// owning player whenever their attack was the most recent damage
	// against a target that is now Dead or Dying. We approximate this
	// deterministically by counting events against enemy/asteroid
	// targets where the attacker resolves to a live or recently-live
	// player entity.
	for _, e := range ws.ledger.events {
		if e.AttackerKind != zone.EntityPlayer {
			continue
		}
		if e.TargetKind == zone.EntityEnemy || e.TargetKind == zone.EntityAsteroid {
			kills[e.AttackerID]++
		}
	}

	scores := make(map[string]int)
	for _, p := range ws.entities.Filter(isPlayer) {
		scores[string(p.ID)] = kills[p.ID]
	}
	return scores
}

func summarizeScores(scores map[string]int) string {
	return fmt.Sprintf("Round over. Scores: %v", scores)
}
