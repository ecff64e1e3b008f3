package sim

import (
	"testing"
	"time"

	"github.com/lab1702/actionserver/zone"
)

func TestAddPlayerThenDuplicateFails(t *testing.T) {
	ws := newTestSimulation(t)

	if err := ws.AddPlayer("alice", "Alice", 1); err != nil {
		t.Fatalf("AddPlayer() error = %v, want nil", err)
	}
	if err := ws.AddPlayer("alice", "Alice", 1); err == nil {
		t.Fatalf("AddPlayer() duplicate error = nil, want ErrPlayerExists")
	}

	e := mustGetEntity(t, ws, playerEntityID("alice"))
	if e.Kind != zone.EntityPlayer || e.PlayerName != "Alice" {
		t.Errorf("unexpected player entity: %+v", e)
	}
	if e.Health != zone.StartingHealth {
		t.Errorf("Health = %v, want %v", e.Health, zone.StartingHealth)
	}
}

// TestAddPlayerEvictsDeadExisting covers the case where a second
// AddPlayer call lands after the first entity died but before
// RemovePlayer cleaned it up: the new registration should replace it
// rather than being rejected.
func TestAddPlayerEvictsDeadExisting(t *testing.T) {
	ws := newTestSimulation(t)
	if err := ws.AddPlayer("dave", "Dave", 1); err != nil {
		t.Fatalf("AddPlayer() error = %v", err)
	}
	ws.do(func() {
		e, _ := ws.entities.Get(playerEntityID("dave"))
		e.State = zone.StateDead
	})

	if err := ws.AddPlayer("dave", "Dave2", 1); err != nil {
		t.Fatalf("AddPlayer() over dead existing error = %v, want nil", err)
	}
	e := mustGetEntity(t, ws, playerEntityID("dave"))
	if e.PlayerName != "Dave2" || e.State != zone.StateActive {
		t.Errorf("eviction over dead existing didn't take: %+v", e)
	}
}

// TestAddPlayerEvictsStaleInputExisting covers the case where the
// existing entity is still Active but its input hasn't been refreshed
// in PlayerDuplicateStaleInput: its connection is assumed gone.
func TestAddPlayerEvictsStaleInputExisting(t *testing.T) {
	ws := newTestSimulation(t)
	if err := ws.AddPlayer("erin", "Erin", 1); err != nil {
		t.Fatalf("AddPlayer() error = %v", err)
	}
	ws.do(func() {
		ws.inputs.Set(playerEntityID("erin"), &zone.PlayerInput{
			LastUpdated: time.Now().Add(-zone.PlayerDuplicateStaleInput - time.Second),
		})
	})

	if err := ws.AddPlayer("erin", "Erin2", 1); err != nil {
		t.Fatalf("AddPlayer() over stale-input existing error = %v, want nil", err)
	}
	e := mustGetEntity(t, ws, playerEntityID("erin"))
	if e.PlayerName != "Erin2" {
		t.Errorf("eviction over stale-input existing didn't take: %+v", e)
	}
}

// TestAddPlayerRejectsLiveFreshExisting is the existing-behavior
// counterpart: a live, recently-active entity under the same ID is
// not evicted.
func TestAddPlayerRejectsLiveFreshExisting(t *testing.T) {
	ws := newTestSimulation(t)
	if err := ws.AddPlayer("frank", "Frank", 1); err != nil {
		t.Fatalf("AddPlayer() error = %v", err)
	}
	ws.UpdatePlayerInput("frank", zone.Vec2{X: 1}, false)

	if err := ws.AddPlayer("frank", "Frank2", 1); err == nil {
		t.Fatalf("AddPlayer() over live fresh existing error = nil, want ErrPlayerExists")
	}
	e := mustGetEntity(t, ws, playerEntityID("frank"))
	if e.PlayerName != "Frank" {
		t.Errorf("live fresh existing was unexpectedly replaced: %+v", e)
	}
}

func TestAddPlayerClassifiesBotName(t *testing.T) {
	ws := newTestSimulation(t)
	if err := ws.AddPlayer("bot1", "LiteNetLib42", 0); err != nil {
		t.Fatalf("AddPlayer() error = %v", err)
	}
	e := mustGetEntity(t, ws, playerEntityID("bot1"))
	if e.SubType != 1 {
		t.Errorf("SubType = %d, want 1 (bot)", e.SubType)
	}
}

func TestRemovePlayerUnknownFails(t *testing.T) {
	ws := newTestSimulation(t)
	if err := ws.RemovePlayer("nobody"); err == nil {
		t.Fatalf("RemovePlayer(unknown) error = nil, want ErrPlayerNotFound")
	}
}

func TestRemovePlayerRemovesEntityAndInput(t *testing.T) {
	ws := newTestSimulation(t)
	if err := ws.AddPlayer("bob", "Bob", 1); err != nil {
		t.Fatalf("AddPlayer() error = %v", err)
	}
	ws.UpdatePlayerInput("bob", zone.Vec2{X: 1}, false)

	if err := ws.RemovePlayer("bob"); err != nil {
		t.Fatalf("RemovePlayer() error = %v", err)
	}

	var hasEntity, hasInput bool
	ws.do(func() {
		hasEntity = ws.entities.Has(playerEntityID("bob"))
		_, hasInput = ws.inputs.Get(playerEntityID("bob"))
	})
	if hasEntity {
		t.Errorf("player entity still present after RemovePlayer")
	}
	if hasInput {
		t.Errorf("player input still buffered after RemovePlayer")
	}
}

// TestUpdatePlayerInputNoopForAbsentPlayer covers the case where an
// input update for a player not present in the zone must not create
// one or panic.
func TestUpdatePlayerInputNoopForAbsentPlayer(t *testing.T) {
	ws := newTestSimulation(t)
	ws.UpdatePlayerInput("ghost", zone.Vec2{X: 1}, true)

	ws.do(func() {
		if ws.entities.Has(playerEntityID("ghost")) {
			t.Errorf("UpdatePlayerInput for absent player created an entity")
		}
		if _, ok := ws.inputs.Get(playerEntityID("ghost")); ok {
			t.Errorf("UpdatePlayerInput for absent player buffered an input")
		}
	})
}

func TestGetPlayerInfoRoundTrip(t *testing.T) {
	ws := newTestSimulation(t)
	if err := ws.AddPlayer("carol", "Carol", 2); err != nil {
		t.Fatalf("AddPlayer() error = %v", err)
	}
	info, ok := ws.GetPlayerInfo("carol")
	if !ok {
		t.Fatalf("GetPlayerInfo(carol) ok = false, want true")
	}
	if info.Name != "Carol" || info.Team != 2 {
		t.Errorf("GetPlayerInfo(carol) = %+v, unexpected", info)
	}

	if _, ok := ws.GetPlayerInfo("nobody"); ok {
		t.Errorf("GetPlayerInfo(nobody) ok = true, want false")
	}
}
