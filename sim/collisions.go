package sim

import (
	"time"

	"github.com/lab1702/actionserver/zone"
)

// runCollisions runs a spatialGrid broad phase followed by
// an exact-distance narrow phase. Each bullet hits at most one target
// per tick (one DamageEvent); each player/enemy or player/asteroid pair
// collides at most once per tick, recording one DamageEvent per side.
func (ws *WorldSimulation) runCollisions(now time.Time) {
	ws.grid.Clear()
	live := ws.entities.Filter(func(e *zone.Entity) bool {
		if e.State != zone.StateActive && e.State != zone.StateAlerting {
			return false
		}
		switch e.Kind {
		case zone.EntityPlayer, zone.EntityEnemy, zone.EntityFactory, zone.EntityBullet, zone.EntityAsteroid:
			return true
		default:
			return false
		}
	})
	for _, e := range live {
		ws.grid.Insert(e.ID, e.Position)
	}

	hitBullets := make(map[zone.EntityID]bool)
	hitPairs := make(map[[2]zone.EntityID]bool)

	for _, b := range live {
		if b.Kind != zone.EntityBullet || hitBullets[b.ID] {
			continue
		}
		for _, id := range ws.grid.Nearby(b.Position) {
			if id == b.ID {
				continue
			}
			target, ok := ws.entities.Get(id)
			if !ok {
				continue
			}
			if target.Kind != zone.EntityPlayer && target.Kind != zone.EntityEnemy && target.Kind != zone.EntityFactory && target.Kind != zone.EntityAsteroid {
				continue
			}
			if b.OwnerID != nil && *b.OwnerID == target.ID {
				continue
			}
			if ws.friendlyFire(b.Team, target.Team) {
				continue
			}
			if zone.Distance(b.Position, target.Position) > zone.CollisionRadius {
				continue
			}
			ws.applyBulletHit(now, b, target)
			hitBullets[b.ID] = true
			break
		}
	}

	for _, a := range live {
		if a.Kind != zone.EntityPlayer {
			continue
		}
		for _, id := range ws.grid.Nearby(a.Position) {
			if id == a.ID {
				continue
			}
			b, ok := ws.entities.Get(id)
			if !ok {
				continue
			}
			if b.Kind != zone.EntityEnemy && b.Kind != zone.EntityAsteroid {
				continue
			}
			key := pairKeyOf(a.ID, b.ID)
			if hitPairs[key] {
				continue
			}
			if zone.Distance(a.Position, b.Position) > zone.CollisionRadius {
				continue
			}
			hitPairs[key] = true
			ws.applyDirectCollision(now, a, b)
		}
	}
}

// friendlyFire reports whether a hit between these two teams should be
// suppressed: disabled only when both sides share a real (>0) team.
func (ws *WorldSimulation) friendlyFire(attacker, victim int32) bool {
	return attacker == victim && attacker > 0
}

func (ws *WorldSimulation) applyBulletHit(now time.Time, bullet, target *zone.Entity) {
	attackerKind := zone.EntityPlayer
	if bullet.SubType != 0 {
		attackerKind = zone.EntityEnemy
	}
	attackerID := bullet.ID
	if bullet.OwnerID != nil {
		attackerID = *bullet.OwnerID
	}

	wasAlive := target.Health > 0
	target.Health -= zone.GunDamage
	ws.recordDamage(now, attackerKind, bullet.SubType, attackerID, target, zone.GunDamage, zone.WeaponGun)

	if wasAlive && target.Health <= 0 {
		ws.creditKillToOwner(bullet.OwnerID, target)
	}
	ws.destroyBullet(bullet)
}

func (ws *WorldSimulation) applyDirectCollision(now time.Time, player, other *zone.Entity) {
	var playerDmg, otherDmg float64

	switch other.Kind {
	case zone.EntityEnemy:
		playerDmg = zone.OtherEnemyCollisionDmg
		if zone.EnemySubType(other.SubType) == zone.EnemyKamikaze {
			playerDmg = zone.KamikazeCollisionDmg
		}
		otherDmg = zone.PlayerVsEnemyDamage
	case zone.EntityAsteroid:
		playerDmg = zone.AsteroidVsPlayerDamage
		otherDmg = zone.PlayerVsAsteroidDamage
	default:
		return
	}

	wasAlive := other.Health > 0
	player.Health -= playerDmg
	other.Health -= otherDmg

	ws.recordDamage(now, other.Kind, other.SubType, other.ID, player, playerDmg, zone.WeaponCollision)
	ws.recordDamage(now, zone.EntityPlayer, player.SubType, player.ID, other, otherDmg, zone.WeaponCollision)

	if wasAlive && other.Health <= 0 {
		ws.creditKillToPlayer(player, other)
	}
}

func (ws *WorldSimulation) recordDamage(now time.Time, attackerKind zone.EntityType, attackerSub int32, attackerID zone.EntityID, target *zone.Entity, amount float64, weapon zone.WeaponKind) {
	ws.ledger.Append(zone.DamageEvent{
		AttackerID:   attackerID,
		TargetID:     target.ID,
		AttackerKind: attackerKind,
		TargetKind:   target.Kind,
		AttackerSub:  attackerSub,
		TargetSub:    target.SubType,
		Amount:       amount,
		Weapon:       weapon,
		When:         now,
	})
}

// creditKillToOwner grants the bullet's owning player kill-credit HP,
// if that owner still exists and is a player (OwnerID is a lookup
// key only, see Entity.OwnerID doc).
func (ws *WorldSimulation) creditKillToOwner(ownerID *zone.EntityID, target *zone.Entity) {
	if ownerID == nil {
		return
	}
	owner, ok := ws.entities.Get(*ownerID)
	if !ok || owner.Kind != zone.EntityPlayer {
		return
	}
	ws.creditKillToPlayer(owner, target)
}

func (ws *WorldSimulation) creditKillToPlayer(player, target *zone.Entity) {
	var credit float64
	switch target.Kind {
	case zone.EntityEnemy, zone.EntityFactory:
		credit = zone.EnemyKillCreditHP
	case zone.EntityAsteroid:
		credit = zone.AsteroidKillCreditHP
	default:
		return
	}
	player.Health += credit
	if player.Health > zone.MaxCreditedHP {
		player.Health = zone.MaxCreditedHP
	}
}

func pairKeyOf(a, b zone.EntityID) [2]zone.EntityID {
	if a < b {
		return [2]zone.EntityID{a, b}
	}
	return [2]zone.EntityID{b, a}
}
