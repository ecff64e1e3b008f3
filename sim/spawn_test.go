package sim

import (
	"testing"

	"github.com/lab1702/actionserver/zone"
)

func TestSpawnInitialWorldComposition(t *testing.T) {
	ws := newTestSimulation(t)
	ws.do(func() {
		for _, e := range ws.entities.All() {
			ws.entities.Remove(e.ID)
		}
		ws.spawnInitialWorld()

		factories := ws.entities.Filter(func(e *zone.Entity) bool { return e.Kind == zone.EntityFactory })
		if n := len(factories); n != 1 && n != 2 {
			t.Errorf("factory count = %d, want 1 or 2", n)
		}
		min, max := ws.assigned.Bounds()
		for _, f := range factories {
			if !withinMarginOfEdge(f.Position, min, max, zone.FactoryEdgeMargin) {
				t.Errorf("factory %+v not within %v of a zone edge", f.Position, zone.FactoryEdgeMargin)
			}
		}

		counts := map[zone.EnemySubType]int{}
		for _, e := range ws.entities.Filter(func(e *zone.Entity) bool { return e.Kind == zone.EntityEnemy }) {
			counts[zone.EnemySubType(e.SubType)]++
		}
		want := map[zone.EnemySubType]int{
			zone.EnemyKamikaze: 2,
			zone.EnemySniper:   2,
			zone.EnemyStrafing: 1,
			zone.EnemyScout:    1,
		}
		for sub, n := range want {
			if counts[sub] != n {
				t.Errorf("enemy subtype %v count = %d, want %d", sub, counts[sub], n)
			}
		}

		asteroids := ws.entities.Filter(func(e *zone.Entity) bool { return e.Kind == zone.EntityAsteroid })
		if len(asteroids) != 4 {
			t.Fatalf("asteroid count = %d, want 4", len(asteroids))
		}
		for _, a := range asteroids {
			if !withinMarginOfEdge(a.Position, min, max, zone.AsteroidEdgeMargin) {
				t.Errorf("asteroid %+v not within %v of a zone edge", a.Position, zone.AsteroidEdgeMargin)
			}
			if zone.AsteroidSubType(a.SubType) == zone.AsteroidMoving {
				speed := a.Velocity.Len()
				if speed < zone.AsteroidSpeedMin-1e-9 || speed > zone.AsteroidSpeedMax+1e-9 {
					t.Errorf("moving asteroid speed = %v, want [%v,%v]", speed, zone.AsteroidSpeedMin, zone.AsteroidSpeedMax)
				}
			}
		}
	})
}

func withinMarginOfEdge(p, min, max zone.Vec2, margin float64) bool {
	return p.X <= min.X+margin || p.X >= max.X-margin || p.Y <= min.Y+margin || p.Y >= max.Y-margin
}

func TestOpportunisticSpawnSkipsWithoutLiveFactory(t *testing.T) {
	ws := newTestSimulation(t)
	ws.do(func() {
		for _, e := range ws.entities.All() {
			ws.entities.Remove(e.ID)
		}
		before := ws.entities.Count()
		for i := 0; i < 40000; i++ {
			ws.opportunisticSpawn(ws.lastTick)
		}
		if ws.entities.Count() != before {
			t.Errorf("opportunisticSpawn spawned an enemy with no live Factory in the zone")
		}
	})
}

func TestOpportunisticSpawnNearLiveFactory(t *testing.T) {
	ws := newTestSimulation(t)
	ws.do(func() {
		for _, e := range ws.entities.All() {
			ws.entities.Remove(e.ID)
		}
		factory := ws.spawnFactory(ws.randomPointInZone())

		var spawned *zone.Entity
		for i := 0; i < 40000 && spawned == nil; i++ {
			before := len(ws.entities.Filter(func(e *zone.Entity) bool { return e.Kind == zone.EntityEnemy }))
			ws.opportunisticSpawn(ws.lastTick)
			after := ws.entities.Filter(func(e *zone.Entity) bool { return e.Kind == zone.EntityEnemy })
			if len(after) > before {
				spawned = after[len(after)-1]
			}
		}
		if spawned == nil {
			t.Fatal("opportunisticSpawn never spawned an enemy across 40000 attempts with a live Factory present")
		}
		if d := zone.Distance(spawned.Position, factory.Position); d > zone.FactorySpawnRadiusMax+1e-6 {
			t.Errorf("spawned enemy %v away from its Factory, want <= %v", d, zone.FactorySpawnRadiusMax)
		}
	})
}

func TestWeightedEnemySubTypeDistribution(t *testing.T) {
	ws := newTestSimulation(t)
	ws.do(func() {
		counts := map[zone.EnemySubType]int{}
		const n = 20000
		for i := 0; i < n; i++ {
			counts[ws.weightedEnemySubType()]++
		}
		want := map[zone.EnemySubType]float64{
			zone.EnemyScout:    0.35,
			zone.EnemyKamikaze: 0.25,
			zone.EnemySniper:   0.20,
			zone.EnemyStrafing: 0.20,
		}
		for sub, wantFrac := range want {
			got := float64(counts[sub]) / n
			if diff := got - wantFrac; diff < -0.03 || diff > 0.03 {
				t.Errorf("subtype %v frequency = %.3f, want ~%.2f", sub, got, wantFrac)
			}
		}
	})
}
