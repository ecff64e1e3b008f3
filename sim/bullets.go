package sim

import (
	"log"
	"time"

	"github.com/lab1702/actionserver/zone"
)

// spawnBullet performs local bullet creation,
// trajectory sampling, and fire-and-forget broadcast to neighbours
// whose zones the trajectory will visit.
func (ws *WorldSimulation) spawnBullet(now time.Time, shooter *zone.Entity, dir zone.Vec2, isEnemyBullet bool) {
	speed := zone.PlayerBulletSpeed
	if isEnemyBullet {
		speed = zone.EnemyBulletSpeed
	}

	min, max := ws.assigned.Bounds()
	margin := zone.Vec2{X: zone.ZoneEdgeSpawnMargin, Y: zone.ZoneEdgeSpawnMargin}
	spawnPos := shooter.Position.Add(dir.Scale(zone.PlayerFireSpawnOffset)).Clamp(
		min.Add(margin), max.Sub(margin))

	ownerID := shooter.ID
	bullet := &zone.Entity{
		ID:       ws.ids.next(zone.EntityBullet),
		Kind:     zone.EntityBullet,
		SubType:  bulletSubType(shooter),
		Position: spawnPos,
		Velocity: dir.Scale(speed),
		Health:   zone.BulletLifespan,
		State:    zone.StateActive,
		Team:     shooter.Team,
		OwnerID:  &ownerID,
	}
	ws.entities.Put(bullet)

	spawnGameTime := ws.GetCurrentGameTime()
	ws.broadcastTrajectory(bullet, spawnGameTime)
}

// bulletSubType encodes 0 for player-fired bullets (kill-credit
// eligible) and 1 for enemy-fired bullets.
func bulletSubType(shooter *zone.Entity) int32 {
	if shooter.Kind == zone.EntityPlayer {
		return 0
	}
	return 1
}

// broadcastTrajectory samples the bullet's trajectory at 11 equally
// spaced times across its lifespan and fire-and-forgets a
// TransferBulletTrajectory call to every other zone visited.
func (ws *WorldSimulation) broadcastTrajectory(b *zone.Entity, spawnGameTime float64) {
	const samples = 11
	lifespan := zone.BulletLifespan
	visited := make(map[zone.GridSquare]struct{})

	for i := 0; i < samples; i++ {
		t := lifespan * float64(i) / float64(samples-1)
		pos := b.Position.Add(b.Velocity.Scale(t))
		sq := zone.GridSquareOf(pos)
		if sq == ws.assigned {
			continue
		}
		visited[sq] = struct{}{}
	}

	origin := b.Position
	vel := b.Velocity
	owner := b.OwnerID
	id := b.ID
	sub := b.SubType
	team := b.Team

	for sq := range visited {
		sq := sq
		ws.outbox.Submit("trajectory-broadcast", func() {
			endpoint, ok := ws.wm.GetActionServerForPosition(sq.Centre())
			if !ok {
				return
			}
			if err := ws.xzone.TransferBulletTrajectory(endpoint, zone.PendingBullet{
				ID:            id,
				SubType:       sub,
				Origin:        origin,
				Velocity:      vel,
				SpawnGameTime: spawnGameTime,
				Lifespan:      lifespan,
				OwnerID:       owner,
				Team:          team,
			}); err != nil {
				log.Printf("warning: TransferBulletTrajectory %s to %s failed: %v", id, endpoint, err)
			}
		})
	}
}

// ReceiveBulletTrajectory is the receive-side of the cross-zone bullet protocol.
func (ws *WorldSimulation) ReceiveBulletTrajectory(b zone.PendingBullet) {
	ws.fireAndForget(func() {
		ws.receiveBulletTrajectory(b)
	})
}

func (ws *WorldSimulation) receiveBulletTrajectory(b zone.PendingBullet) {
	if ws.blocklist.Contains(b.ID) {
		return // prevents oscillation
	}

	now := ws.GetCurrentGameTime()
	elapsed := now - b.SpawnGameTime
	if elapsed >= b.Lifespan {
		return
	}

	posNow := b.Origin.Add(b.Velocity.Scale(elapsed))
	if zone.GridSquareOf(posNow) == ws.assigned && !ws.entities.Has(b.ID) {
		ws.materializeBullet(b, elapsed)
		return
	}

	// Sample [elapsed, lifespan] at 50ms granularity; if any sample
	// lands in our zone, remember the trajectory for activation.
	const step = 0.05
	for t := elapsed; t <= b.Lifespan; t += step {
		pos := b.Origin.Add(b.Velocity.Scale(t))
		if zone.GridSquareOf(pos) == ws.assigned {
			ws.pendingTorps.Put(b)
			return
		}
	}
}

func (ws *WorldSimulation) materializeBullet(b zone.PendingBullet, elapsed float64) {
	bullet := &zone.Entity{
		ID:       b.ID,
		Kind:     zone.EntityBullet,
		SubType:  b.SubType,
		Position: b.Origin.Add(b.Velocity.Scale(elapsed)),
		Velocity: b.Velocity,
		Health:   b.Lifespan - elapsed,
		State:    zone.StateActive,
		Team:     b.Team,
		OwnerID:  b.OwnerID,
	}
	ws.entities.Put(bullet)
	ws.pendingTorps.Remove(b.ID)
}

// activatePendingBullets materializes pending cross-zone bullets once their arrival time elapses.
func (ws *WorldSimulation) activatePendingBullets(now time.Time) {
	ws.blocklist.Sweep(now)

	gameTime := ws.GetCurrentGameTime()
	for _, pb := range ws.pendingTorps.All() {
		if ws.blocklist.Contains(pb.ID) {
			ws.pendingTorps.Remove(pb.ID)
			continue
		}
		elapsed := gameTime - pb.SpawnGameTime
		if elapsed >= pb.Lifespan {
			ws.pendingTorps.Remove(pb.ID)
			continue
		}
		posNow := pb.Origin.Add(pb.Velocity.Scale(elapsed))
		if zone.GridSquareOf(posNow) == ws.assigned && !ws.entities.Has(pb.ID) {
			ws.materializeBullet(pb, elapsed)
		}
	}
}

// destroyBullet removes a bullet and broadcasts NotifyBulletDestroyed
// to all 8 neighbours. Zone-exit destructions skip the broadcast by
// going through destroyBulletForZoneExit instead.
func (ws *WorldSimulation) destroyBullet(b *zone.Entity) {
	ws.entities.Remove(b.ID)
	ws.broadcastBulletDestroyed(b.ID)
}

// destroyBulletForZoneExit is used by cleanup when a bullet's health
// reached zero because it left the zone (already blocklisted in
// stepBullet). The broadcast is redundant in this case
// (neighbours already drop it locally) so it is suppressed to save a
// wasted fan-out of 8 RPCs per expired bullet.
func (ws *WorldSimulation) destroyBulletForZoneExit(id zone.EntityID) {
	ws.entities.Remove(id)
}

func (ws *WorldSimulation) broadcastBulletDestroyed(id zone.EntityID) {
	square := ws.assigned
	for _, n := range square.Neighbors8() {
		n := n
		ws.outbox.Submit("notify-bullet-destroyed", func() {
			endpoint, ok := ws.wm.GetActionServerForPosition(n.Centre())
			if !ok {
				return
			}
			if err := ws.xzone.NotifyBulletDestroyed(endpoint, square, id); err != nil {
				log.Printf("warning: NotifyBulletDestroyed %s to %s failed: %v", id, endpoint, err)
			}
		})
	}
}

// ReceiveBulletDestroyed is an alias for RemoveBullet.
func (ws *WorldSimulation) ReceiveBulletDestroyed(id zone.EntityID) {
	ws.fireAndForget(func() {
		ws.removeBullet(id)
	})
}

// removeBullet is idempotent: removing an already-gone bullet is a no-op.
func (ws *WorldSimulation) removeBullet(id zone.EntityID) {
	if e, ok := ws.entities.Get(id); ok && e.Kind == zone.EntityBullet {
		ws.entities.Remove(id)
	}
	ws.blocklist.Add(id, ws.lastTick)
}
