package sim

import (
	"testing"
	"time"

	"github.com/lab1702/actionserver/zone"
)

func TestRemoveBulletIsIdempotent(t *testing.T) {
	ws := newTestSimulation(t)
	now := time.Now()

	ws.do(func() {
		ws.entities.Put(&zone.Entity{ID: "b1", Kind: zone.EntityBullet, State: zone.StateActive})
		ws.lastTick = now

		ws.removeBullet("b1")
		if ws.entities.Has("b1") {
			t.Fatalf("removeBullet did not remove the bullet")
		}
		if !ws.blocklist.Contains("b1") {
			t.Fatalf("removeBullet did not blocklist the id")
		}

		// Calling again must not panic and must remain a no-op on EntityStore.
		ws.removeBullet("b1")
		if ws.entities.Has("b1") {
			t.Fatalf("second removeBullet call resurrected the bullet")
		}
	})
}

func TestReceiveBulletTrajectoryRejectsBlocklisted(t *testing.T) {
	ws := newTestSimulation(t)
	now := time.Now()

	ws.do(func() {
		ws.lastTick = now
		ws.blocklist.Add("b2", now)

		pb := zone.PendingBullet{
			ID:            "b2",
			Origin:        zone.Vec2{X: 10, Y: 10},
			Velocity:      zone.Vec2{X: 0, Y: 0},
			SpawnGameTime: 0,
			Lifespan:      zone.BulletLifespan,
		}
		ws.receiveBulletTrajectory(pb)

		if ws.entities.Has("b2") {
			t.Errorf("receiveBulletTrajectory materialized a blocklisted bullet")
		}
	})
}

func TestReceiveBulletTrajectoryMaterializesInZone(t *testing.T) {
	ws := newTestSimulation(t)

	ws.do(func() {
		pb := zone.PendingBullet{
			ID:            "b3",
			Origin:        zone.Vec2{X: 100, Y: 100},
			Velocity:      zone.Vec2{X: 0, Y: 0},
			SpawnGameTime: 0,
			Lifespan:      zone.BulletLifespan,
		}
		ws.receiveBulletTrajectory(pb)

		if !ws.entities.Has("b3") {
			t.Errorf("receiveBulletTrajectory did not materialize an in-zone bullet")
		}
	})
}

func TestActivatePendingBulletsSweepsExpiredBlocklist(t *testing.T) {
	ws := newTestSimulation(t)

	ws.do(func() {
		old := time.Now().Add(-2 * zone.HandoffBlocklistTTL)
		ws.blocklist.Add("stale", old)

		ws.activatePendingBullets(time.Now())

		if ws.blocklist.Contains("stale") {
			t.Errorf("activatePendingBullets did not sweep an expired blocklist entry")
		}
	})
}
