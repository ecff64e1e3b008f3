package sim

import (
	"time"

	"github.com/lab1702/actionserver/zone"
)

// physicsStep advances movement for every live entity.
func (ws *WorldSimulation) physicsStep(now time.Time, dt float64) {
	for _, e := range ws.entities.All() {
		switch e.Kind {
		case zone.EntityPlayer:
			ws.stepPlayer(now, dt, e)
		case zone.EntityBullet:
			ws.stepBullet(dt, e)
		case zone.EntityAsteroid:
			ws.stepAsteroid(e, dt)
		case zone.EntityEnemy:
			ws.stepEnemyPhysics(e, dt)
		default:
			if e.State == zone.StateActive && e.Velocity != (zone.Vec2{}) {
				e.Position = e.Position.Add(e.Velocity.Scale(dt))
			}
		}
	}
}

func (ws *WorldSimulation) stepPlayer(now time.Time, dt float64, e *zone.Entity) {
	if e.State != zone.StateActive {
		return
	}

	in, hasInput := ws.inputs.Get(e.ID)
	var moveDir zone.Vec2
	if hasInput {
		moveDir = in.MoveDir.Normalize()
	}
	v := moveDir.Scale(zone.PlayerSpeed)
	candidate := e.Position.Add(v.Scale(dt))
	destSquare := zone.GridSquareOf(candidate)

	if destSquare == ws.assigned {
		e.Velocity = v
		e.Position = candidate
	} else if ws.directory.Available(now, destSquare) {
		e.Velocity = v
		e.Position = candidate
		pid := string(e.ID)
		pos := candidate
		ws.outbox.Submit("player-transfer", func() {
			ws.wm.UpdatePlayerPositionAndVelocity(pid, pos, v)
			ws.wm.InitiatePlayerTransfer(pid, pos)
			ws.grain.UpdatePosition(pid, pos)
		})
	} else {
		e.Velocity = zone.Vec2{}
		min, max := ws.assigned.Bounds()
		e.Position = e.Position.Clamp(min, max)
	}

	if v.Len() > 0 {
		e.Rotation = zone.AngleOf(v)
	}

	if hasInput {
		ws.maybeShoot(now, e, in)
	}
}

// maybeShoot applies the shooting rule.
func (ws *WorldSimulation) maybeShoot(now time.Time, shooter *zone.Entity, in *zone.PlayerInput) {
	if !in.IsShooting {
		return
	}
	if now.Sub(in.LastShot) <= zone.FireCooldown {
		return
	}

	var dir zone.Vec2
	switch {
	case in.ShootDir != nil:
		dir = in.ShootDir.Normalize()
	case in.MoveDir != (zone.Vec2{}):
		dir = in.MoveDir.Normalize()
	default:
		dir = zone.DirectionVec(shooter.Rotation)
	}

	in.LastShot = now
	ws.spawnBullet(now, shooter, dir, false)
}

func (ws *WorldSimulation) stepBullet(dt float64, e *zone.Entity) {
	e.Health -= dt
	e.StateTimer += dt
	if e.Health <= 0 {
		return // removed in cleanup once expired
	}
	e.Position = e.Position.Add(e.Velocity.Scale(dt))

	if zone.GridSquareOf(e.Position) != ws.assigned {
		e.Health = 0
		ws.blocklist.Add(e.ID, ws.lastTick)
	}
}

func (ws *WorldSimulation) stepAsteroid(e *zone.Entity, dt float64) {
	if e.State != zone.StateActive {
		return
	}
	e.Position = e.Position.Add(e.Velocity.Scale(dt))
	if e.Velocity != (zone.Vec2{}) {
		sq := zone.GridSquareOf(e.Position)
		if sq != ws.assigned && !ws.isZoneAvailableNow(sq) {
			e.Health = 0
		}
	}
}

func (ws *WorldSimulation) isZoneAvailableNow(sq zone.GridSquare) bool {
	return ws.directory.Available(ws.lastTick, sq)
}

func (ws *WorldSimulation) stepEnemyPhysics(e *zone.Entity, dt float64) {
	if e.State != zone.StateActive && e.State != zone.StateAlerting {
		return
	}
	e.Position = e.Position.Add(e.Velocity.Scale(dt))
	if e.Velocity.Len() > 0 {
		e.Rotation = zone.AngleOf(e.Velocity)
	}

	min, max := ws.assigned.Bounds()
	min = zone.Vec2{X: min.X + zone.EnemyClampMargin, Y: min.Y + zone.EnemyClampMargin}
	max = zone.Vec2{X: max.X - zone.EnemyClampMargin, Y: max.Y - zone.EnemyClampMargin}

	if e.Position.X < min.X {
		e.Position.X = min.X
		e.Velocity.X = -e.Velocity.X
	} else if e.Position.X >= max.X {
		e.Position.X = max.X
		e.Velocity.X = -e.Velocity.X
	}
	if e.Position.Y < min.Y {
		e.Position.Y = min.Y
		e.Velocity.Y = -e.Velocity.Y
	} else if e.Position.Y >= max.Y {
		e.Position.Y = max.Y
		e.Velocity.Y = -e.Velocity.Y
	}
}
