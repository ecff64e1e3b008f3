package zone

import "time"

// Constants that are part of the observable cross-server contract:
// every ActionServer process must agree on these exactly.
const (
	// ZoneSize is the side length, in world units, of a grid square.
	// GridSquareOf divides world positions by this to locate a zone.
	ZoneSize = 500.0

	PlayerSpeed       = 80.0 // units/s
	PlayerBulletSpeed = 500.0
	EnemyBulletSpeed  = 200.0
	BulletLifespan    = 3.0 // seconds
	FireCooldown      = 250 * time.Millisecond
	CollisionRadius   = 20.0

	StartingHealth = 1000.0
	RespawnDelay   = 5 * time.Second

	GunDamage              = 25.0
	KamikazeCollisionDmg   = 30.0
	OtherEnemyCollisionDmg = 10.0
	PlayerVsEnemyDamage    = 10.0
	PlayerVsAsteroidDamage = 20.0
	AsteroidVsPlayerDamage = 25.0

	EnemyKillCreditHP    = 2.0
	AsteroidKillCreditHP = 5.0
	MaxCreditedHP        = 1000.0

	DyingDuration      = 0.5 // seconds
	ExplosionDuration  = 0.5 // seconds
	DeadRespawnSeconds = 5.0
	RespawningDuration = 0.5 // seconds

	PlayerIdleTimeout   = 30 * time.Second
	DeadCleanupTimeout  = 30 * time.Second
	HandoffBlocklistTTL = 5 * time.Second
	ZoneDirectoryTTL    = 10 * time.Second
	ScoutAlertValidity  = 30 * time.Second  // applied on receipt
	ScoutAlertSendSpan  = 120 * time.Second // max time an alerting scout stays alerting
	EnemyDefeatedCooldown = 10 * time.Second

	VictoryPauseDuration = 10 * time.Second
	GameOverDelay        = 15 * time.Second

	EnemyClampMargin  = 5.0
	ScoutRoamMargin   = 50.0
	ScoutDetectRange  = 300.0
	ScoutAlertMoveSpeed = 19.2

	SniperRange       = 250.0
	SniperSpeed       = 19.2
	SniperFireProb    = 0.04
	KamikazeSpeed     = 36.0
	StrafeRange       = 200.0
	StrafeApproachSpd = 24.0
	StrafeSpeed       = 28.8
	StrafeFlipProb    = 0.02
	StrafeFireProb    = 0.03

	OpportunisticSpawnProb = 0.0005

	TickRate           = 60.0
	NominalTickPeriod  = time.Second / time.Duration(TickRate)
	FPSWindow          = 10 * time.Second

	PlayerFireSpawnOffset = 30.0
	ZoneEdgeSpawnMargin   = 1.0 // keep spawned bullets inside zone bounds minus this margin

	EnemyDefaultHealthKamikaze = 30.0
	EnemyDefaultHealthScout    = 200.0
	EnemyDefaultHealthOther    = 50.0
	AsteroidDefaultHealth      = 50.0
	FactoryDefaultHealth       = 150.0

	PlayerDuplicateStaleInput = 10 * time.Second

	FactoryEdgeMargin      = 50.0
	AsteroidEdgeMargin     = 100.0
	AsteroidSpeedMin       = 10.0
	AsteroidSpeedMax       = 40.0
	FactorySpawnRadiusMin  = 20.0
	FactorySpawnRadiusMax  = 60.0

	ScoutAlertDirectionCentre = 0.0
	ScoutAlertDirectionNone   = -999.0
)

// BotNamePattern is exported for callers (sim/handlers.go) that
// classify a player's sub_type from its display name.
const BotNamePattern = `(?i)^(LiteNetLib|Ruffles)(Test)?\d+$`

// GridSquareOf maps a world position to the zone that owns it.
func GridSquareOf(p Vec2) GridSquare {
	return GridSquare{
		X: int32(floorDiv(p.X, ZoneSize)),
		Y: int32(floorDiv(p.Y, ZoneSize)),
	}
}

func floorDiv(v, size float64) int64 {
	q := v / size
	iq := int64(q)
	if q < 0 && float64(iq) != q {
		iq--
	}
	return iq
}

// Bounds returns [min, max) for a grid square.
func (g GridSquare) Bounds() (min, max Vec2) {
	min = Vec2{X: float64(g.X) * ZoneSize, Y: float64(g.Y) * ZoneSize}
	max = Vec2{X: min.X + ZoneSize, Y: min.Y + ZoneSize}
	return
}

// Centre returns the midpoint of a grid square, used to resolve a
// neighbour's owning server via GetActionServerForPosition.
func (g GridSquare) Centre() Vec2 {
	min, max := g.Bounds()
	return Vec2{X: (min.X + max.X) / 2, Y: (min.Y + max.Y) / 2}
}

// Neighbors8 returns the 8 grid squares surrounding g.
func (g GridSquare) Neighbors8() []GridSquare {
	out := make([]GridSquare, 0, 8)
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			out = append(out, GridSquare{X: g.X + dx, Y: g.Y + dy})
		}
	}
	return out
}
