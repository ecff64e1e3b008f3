package sim

import (
	"math"
	"time"

	"github.com/lab1702/actionserver/zone"
)

// maxOpportunisticEnemies is the live enemy count (initial population
// included) at or above which an opportunisticSpawn roll adds nothing,
// so a zone left unattended for a long Playing phase doesn't grow
// unbounded.
const maxOpportunisticEnemies = 8

// enemySpawnWeights is the opportunisticSpawn subtype distribution:
// Scout 35%, Kamikaze 25%, Sniper 20%, Strafing 20%.
var enemySpawnWeights = []struct {
	sub    zone.EnemySubType
	weight float64
}{
	{zone.EnemyScout, 0.35},
	{zone.EnemyKamikaze, 0.25},
	{zone.EnemySniper, 0.20},
	{zone.EnemyStrafing, 0.20},
}

func (ws *WorldSimulation) weightedEnemySubType() zone.EnemySubType {
	roll := ws.rng.Float64()
	var cum float64
	for _, w := range enemySpawnWeights {
		cum += w.weight
		if roll < cum {
			return w.sub
		}
	}
	return enemySpawnWeights[len(enemySpawnWeights)-1].sub
}

// updateStateTimers advances every entity's lifecycle state machine
// Active -(health<=0)-> Dying -> Dead [-> Respawning -> Active
// for players], and Explosion -> removed.
func (ws *WorldSimulation) updateStateTimers(now time.Time, dt float64) {
	for _, e := range ws.entities.All() {
		switch e.Kind {
		case zone.EntityPlayer:
			ws.updatePlayerState(e, dt)
		case zone.EntityEnemy, zone.EntityFactory:
			ws.updateEnemyState(e, dt)
		case zone.EntityAsteroid:
			ws.updateAsteroidState(e, dt)
		case zone.EntityExplosion:
			e.StateTimer += dt
			if e.StateTimer >= zone.ExplosionDuration {
				e.Health = -1
			}
		}
	}
}

func (ws *WorldSimulation) updatePlayerState(e *zone.Entity, dt float64) {
	switch e.State {
	case zone.StateActive:
		if e.Health <= 0 {
			ws.startDying(e)
		}
	case zone.StateDying:
		e.StateTimer += dt
		if e.StateTimer >= zone.DyingDuration {
			e.State = zone.StateDead
			e.StateTimer = 0
			e.RespawnCount++
			pid := string(e.ID)
			ws.outbox.Submit("PlayerGrain.UpdateHealth", func() {
				ws.grain.UpdateHealth(pid, 0)
			})
		}
	case zone.StateDead:
		e.StateTimer += dt
		if e.StateTimer >= zone.DeadRespawnSeconds {
			ws.respawnPlayer(e)
		}
	case zone.StateRespawning:
		e.StateTimer += dt
		if e.StateTimer >= zone.RespawningDuration {
			e.State = zone.StateActive
			e.StateTimer = 0
		}
	}
}

func (ws *WorldSimulation) updateEnemyState(e *zone.Entity, dt float64) {
	switch e.State {
	case zone.StateActive, zone.StateAlerting:
		if e.Health <= 0 {
			ws.startDying(e)
		}
	case zone.StateDying:
		e.StateTimer += dt
		if e.StateTimer >= zone.DyingDuration {
			e.State = zone.StateDead
		}
	}
}

func (ws *WorldSimulation) updateAsteroidState(e *zone.Entity, dt float64) {
	switch e.State {
	case zone.StateActive:
		if e.Health <= 0 {
			ws.startDying(e)
		}
	case zone.StateDying:
		e.StateTimer += dt
		if e.StateTimer >= zone.DyingDuration {
			e.State = zone.StateDead
		}
	}
}

func (ws *WorldSimulation) startDying(e *zone.Entity) {
	e.State = zone.StateDying
	e.StateTimer = 0
	e.Velocity = zone.Vec2{}
	ws.spawnExplosion(e.Position)
}

func (ws *WorldSimulation) respawnPlayer(e *zone.Entity) {
	e.Health = zone.StartingHealth
	e.Position = ws.randomPointInZone()
	e.Velocity = zone.Vec2{}
	e.State = zone.StateRespawning
	e.StateTimer = 0
}

func (ws *WorldSimulation) spawnExplosion(pos zone.Vec2) {
	ws.entities.Put(&zone.Entity{
		ID:       ws.ids.next(zone.EntityExplosion),
		Kind:     zone.EntityExplosion,
		Position: pos,
		State:    zone.StateActive,
	})
}

// cleanup removes entities whose lifecycle has run its course: spent
// bullets, expired explosions, and enemies/factories/asteroids that
// finished dying. destroyBulletForZoneExit is used instead of
// destroyBullet when the bullet is already on the handoff blocklist,
// since neighbours dropped it locally and a broadcast would be wasted.
// Player entities are not removed here.
func (ws *WorldSimulation) cleanup(now time.Time) {
	for _, e := range ws.entities.All() {
		switch e.Kind {
		case zone.EntityBullet:
			if e.Health <= 0 {
				if ws.blocklist.Contains(e.ID) {
					ws.destroyBulletForZoneExit(e.ID)
				} else {
					ws.destroyBullet(e)
				}
			}
		case zone.EntityExplosion:
			if e.Health < 0 {
				ws.entities.Remove(e.ID)
			}
		case zone.EntityEnemy, zone.EntityFactory, zone.EntityAsteroid:
			if e.State == zone.StateDead {
				ws.entities.Remove(e.ID)
			}
		}
	}

	ws.cleanupIdlePlayers(now)
}

// cleanupIdlePlayers fires the configured timeout callback for players
// whose input hasn't been refreshed in PlayerIdleTimeout; it does not
// remove the entity itself, leaving that to RemovePlayer once the
// caller (e.g. the player's connection handler) acts on the callback.
func (ws *WorldSimulation) cleanupIdlePlayers(now time.Time) {
	if ws.timeoutFn == nil {
		return
	}
	for _, e := range ws.entities.Filter(isPlayer) {
		in, ok := ws.inputs.Get(e.ID)
		if !ok || now.Sub(in.LastUpdated) < zone.PlayerIdleTimeout {
			continue
		}
		pid := string(e.ID)
		ws.outbox.Submit("player-timeout", func() {
			ws.timeoutFn(pid)
		})
	}
}

// opportunisticSpawn is the low-probability per-tick enemy
// spawn, capped so an unattended zone doesn't accumulate enemies
// indefinitely. New enemies emerge near a live Factory, so a zone
// that has lost all of its Factories stops reinforcing itself.
func (ws *WorldSimulation) opportunisticSpawn(now time.Time) {
	if ws.rng.Float64() >= zone.OpportunisticSpawnProb {
		return
	}
	count := len(ws.entities.Filter(func(e *zone.Entity) bool {
		return e.Kind == zone.EntityEnemy && e.State != zone.StateDead
	}))
	if count >= maxOpportunisticEnemies {
		return
	}
	factory := ws.randomLiveFactory()
	if factory == nil {
		return
	}
	radius := zone.FactorySpawnRadiusMin + ws.rng.Float64()*(zone.FactorySpawnRadiusMax-zone.FactorySpawnRadiusMin)
	angle := ws.rng.Float64() * 2 * math.Pi
	pos := factory.Position.Add(zone.DirectionVec(angle).Scale(radius))
	min, max := ws.assigned.Bounds()
	pos = pos.Clamp(min, max)
	ws.spawnEnemy(pos, ws.weightedEnemySubType())
}

// randomLiveFactory returns a uniformly chosen Factory that hasn't
// been killed, or nil if none remain in this zone.
func (ws *WorldSimulation) randomLiveFactory() *zone.Entity {
	factories := ws.entities.Filter(func(e *zone.Entity) bool {
		return e.Kind == zone.EntityFactory && e.State != zone.StateDead && e.State != zone.StateDying
	})
	if len(factories) == 0 {
		return nil
	}
	return factories[ws.rng.Intn(len(factories))]
}

func (ws *WorldSimulation) spawnEnemy(pos zone.Vec2, sub zone.EnemySubType) *zone.Entity {
	health := zone.EnemyDefaultHealthOther
	switch sub {
	case zone.EnemyKamikaze:
		health = zone.EnemyDefaultHealthKamikaze
	case zone.EnemyScout:
		health = zone.EnemyDefaultHealthScout
	}
	e := &zone.Entity{
		ID:       ws.ids.next(zone.EntityEnemy),
		Kind:     zone.EntityEnemy,
		SubType:  int32(sub),
		Position: pos,
		Health:   health,
		State:    zone.StateActive,
	}
	ws.entities.Put(e)
	return e
}

func (ws *WorldSimulation) spawnAsteroid(pos zone.Vec2, moving bool) *zone.Entity {
	sub := zone.AsteroidStationary
	var vel zone.Vec2
	if moving {
		sub = zone.AsteroidMoving
		angle := ws.rng.Float64() * 2 * math.Pi
		speed := zone.AsteroidSpeedMin + ws.rng.Float64()*(zone.AsteroidSpeedMax-zone.AsteroidSpeedMin)
		vel = zone.DirectionVec(angle).Scale(speed)
	}
	e := &zone.Entity{
		ID:       ws.ids.next(zone.EntityAsteroid),
		Kind:     zone.EntityAsteroid,
		SubType:  int32(sub),
		Position: pos,
		Velocity: vel,
		Health:   zone.AsteroidDefaultHealth,
		State:    zone.StateActive,
	}
	ws.entities.Put(e)
	return e
}

func (ws *WorldSimulation) randomPointInZone() zone.Vec2 {
	min, max := ws.assigned.Bounds()
	return zone.Vec2{
		X: min.X + ws.rng.Float64()*(max.X-min.X),
		Y: min.Y + ws.rng.Float64()*(max.Y-min.Y),
	}
}

// zoneEdge is one of the four sides of the assigned zone, given as
// the axis it lies along (vertical=false means the edge runs along the
// X axis at a fixed Y, i.e. top/bottom) and the fixed coordinate value.
type zoneEdge struct {
	vertical bool // true: fixed X (left/right); false: fixed Y (top/bottom)
	fixed    float64
}

func (ws *WorldSimulation) zoneEdges() []zoneEdge {
	min, max := ws.assigned.Bounds()
	return []zoneEdge{
		{vertical: true, fixed: min.X},
		{vertical: true, fixed: max.X},
		{vertical: false, fixed: min.Y},
		{vertical: false, fixed: max.Y},
	}
}

// pointNearEdge returns a point within margin world units of edge,
// chosen uniformly along the edge's run and uniformly inward from
// its fixed coordinate by up to margin.
func (ws *WorldSimulation) pointNearEdge(edge zoneEdge, margin float64) zone.Vec2 {
	min, max := ws.assigned.Bounds()
	inset := ws.rng.Float64() * margin
	sign := 1.0
	if edge.vertical && edge.fixed == max.X {
		sign = -1
	}
	if !edge.vertical && edge.fixed == max.Y {
		sign = -1
	}
	if edge.vertical {
		return zone.Vec2{
			X: edge.fixed + sign*inset,
			Y: min.Y + ws.rng.Float64()*(max.Y-min.Y),
		}
	}
	return zone.Vec2{
		X: min.X + ws.rng.Float64()*(max.X-min.X),
		Y: edge.fixed + sign*inset,
	}
}

func (ws *WorldSimulation) spawnFactory(pos zone.Vec2) *zone.Entity {
	e := &zone.Entity{
		ID:       ws.ids.next(zone.EntityFactory),
		Kind:     zone.EntityFactory,
		Position: pos,
		Health:   zone.FactoryDefaultHealth,
		State:    zone.StateActive,
	}
	ws.entities.Put(e)
	return e
}

// spawnInitialWorld seeds a freshly assigned zone with 1-2 Factories
// near random edges, 6 enemies (2 Kamikaze, 2 Sniper, 1 Strafing, 1
// Scout), and 4 asteroids (one per zone edge, each drifting with
// probability 0.5).
// Called once from SetAssignedSquare and again by restartRound for
// each new round.
func (ws *WorldSimulation) spawnInitialWorld() {
	factoryCount := 1 + ws.rng.Intn(2)
	edges := ws.zoneEdges()
	for i := 0; i < factoryCount; i++ {
		edge := edges[ws.rng.Intn(len(edges))]
		ws.spawnFactory(ws.pointNearEdge(edge, zone.FactoryEdgeMargin))
	}

	for _, sub := range []zone.EnemySubType{
		zone.EnemyKamikaze, zone.EnemyKamikaze,
		zone.EnemySniper, zone.EnemySniper,
		zone.EnemyStrafing, zone.EnemyScout,
	} {
		ws.spawnEnemy(ws.randomPointInZone(), sub)
	}

	for _, edge := range edges {
		moving := ws.rng.Float64() < 0.5
		ws.spawnAsteroid(ws.pointNearEdge(edge, zone.AsteroidEdgeMargin), moving)
	}
}

// restartRound runs the Restarting phase: clear non-player
// entities, reset every player to full health at a fresh spawn point,
// reseed the initial world, and reset the ledger for the new round.
func (ws *WorldSimulation) restartRound(now time.Time) {
	ws.phase.phase = zone.PhaseRestarting

	for _, e := range ws.entities.Filter(func(e *zone.Entity) bool {
		return e.Kind != zone.EntityPlayer
	}) {
		ws.entities.Remove(e.ID)
	}

	for _, p := range ws.entities.Filter(isPlayer) {
		p.Health = zone.StartingHealth
		p.Position = ws.randomPointInZone()
		p.Velocity = zone.Vec2{}
		p.State = zone.StateActive
		p.StateTimer = 0
		pid := string(p.ID)
		ws.outbox.Submit("PlayerGrain.NotifyGameRestarted", func() {
			ws.grain.NotifyGameRestarted(pid)
		})
	}

	ws.spawnInitialWorld()
	ws.ledger.Reset(now)

	ws.phase.allEnemiesDefeated = false
	ws.phase.lastChatSecond = -1
	ws.phase.phase = zone.PhasePlaying
	if ws.metrics != nil {
		ws.metrics.phaseTransitions.Inc()
	}
	ws.broker.RaiseGameRestart(ws.assigned)
}
