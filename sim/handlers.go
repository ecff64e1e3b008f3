package sim

import (
	"regexp"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/lab1702/actionserver/zone"
)

// botNameRe classifies a player's PlayerName against the naming
// scheme known bot/load-test clients use, so AddPlayer can tag
// SubType without the caller having to say so explicitly.
var botNameRe = regexp.MustCompile(zone.BotNamePattern)

var (
	ErrPlayerExists   = errors.New("player already present in zone")
	ErrPlayerNotFound = errors.New("player not found in zone")
)

// inputLimiters rate-limits UpdatePlayerInput per player before it
// reaches the actor's command channel, so a flooding or misbehaving
// client can't starve the tick loop of its own select cases. Separate
// from actor-owned state because rate.Limiter is meant for concurrent
// use from whichever goroutine a transport layer calls us on.
type inputLimiters struct {
	mu       sync.Mutex
	limiters map[zone.EntityID]*rate.Limiter
}

func newInputLimiters() *inputLimiters {
	return &inputLimiters{limiters: make(map[zone.EntityID]*rate.Limiter)}
}

// allow permits roughly 2x tick-rate input updates per player, with a
// one-tick-rate burst, comfortably above any legitimate client's input
// rate while bounding a hostile one.
func (l *inputLimiters) allow(id zone.EntityID) bool {
	l.mu.Lock()
	lim, ok := l.limiters[id]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(2*zone.TickRate), int(zone.TickRate))
		l.limiters[id] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

func (l *inputLimiters) remove(id zone.EntityID) {
	l.mu.Lock()
	delete(l.limiters, id)
	l.mu.Unlock()
}

// AddPlayer spawns a new player entity at a random in-zone point. If
// an entity with this ID is already present, it is evicted and the
// new registration accepted when the existing one is Dead or its
// buffered input is stale beyond PlayerDuplicateStaleInput; otherwise
// AddPlayer returns ErrPlayerExists (e.g. a second client racing to
// join while the first connection is still live).
func (ws *WorldSimulation) AddPlayer(playerID, name string, team int32) error {
	id := playerEntityID(playerID)
	var err error
	ws.do(func() {
		if existing, ok := ws.entities.Get(id); ok {
			if !ws.playerDuplicateEvictable(existing, id) {
				err = errors.Wrapf(ErrPlayerExists, "player %s", playerID)
				return
			}
			ws.entities.Remove(id)
			ws.inputs.Remove(id)
		}
		subType := int32(0)
		if botNameRe.MatchString(name) {
			subType = 1
		}
		ws.entities.Put(&zone.Entity{
			ID:         id,
			Kind:       zone.EntityPlayer,
			SubType:    subType,
			Position:   ws.randomPointInZone(),
			Health:     zone.StartingHealth,
			State:      zone.StateActive,
			Team:       team,
			PlayerName: name,
		})
	})
	return err
}

// playerDuplicateEvictable reports whether an existing player entity
// may be displaced by a new AddPlayer registration for the same ID: a
// Dead entity, or one whose buffered input hasn't been refreshed in
// PlayerDuplicateStaleInput, is assumed abandoned by its connection.
func (ws *WorldSimulation) playerDuplicateEvictable(existing *zone.Entity, id zone.EntityID) bool {
	if existing.State == zone.StateDead {
		return true
	}
	in, ok := ws.inputs.Get(id)
	if !ok {
		return false
	}
	return time.Since(in.LastUpdated) > zone.PlayerDuplicateStaleInput
}

// RemovePlayer deletes the player entity and its
// buffered input, and releases its rate limiter. Returns
// ErrPlayerNotFound if the player isn't present in this zone.
func (ws *WorldSimulation) RemovePlayer(playerID string) error {
	id := playerEntityID(playerID)
	var err error
	ws.do(func() {
		if !ws.entities.Has(id) {
			err = errors.Wrapf(ErrPlayerNotFound, "player %s", playerID)
			return
		}
		ws.entities.Remove(id)
		ws.inputs.Remove(id)
	})
	ws.limiters.remove(id)
	return err
}

// UpdatePlayerInput reports a movement direction and whether the
// player is firing; aim direction falls back to maybeShoot's
// MoveDir/Rotation derivation.
func (ws *WorldSimulation) UpdatePlayerInput(playerID string, moveDir zone.Vec2, isShooting bool) {
	ws.updatePlayerInput(playerID, zone.PlayerInput{
		MoveDir:    moveDir,
		IsShooting: isShooting,
	})
}

// UpdatePlayerInputWithAim is for clients that can report an explicit
// aim/shoot direction independent of their movement direction (e.g.
// twin-stick controls).
func (ws *WorldSimulation) UpdatePlayerInputWithAim(playerID string, moveDir, shootDir zone.Vec2, isShooting bool) {
	ws.updatePlayerInput(playerID, zone.PlayerInput{
		MoveDir:    moveDir,
		ShootDir:   &shootDir,
		IsShooting: isShooting,
	})
}

func (ws *WorldSimulation) updatePlayerInput(playerID string, in zone.PlayerInput) {
	id := playerEntityID(playerID)
	if !ws.limiters.allow(id) {
		return
	}
	in.LastUpdated = time.Now()
	ws.fireAndForget(func() {
		if !ws.entities.Has(id) {
			return // no player entity: input updates are a no-op until it rejoins
		}
		if existing, ok := ws.inputs.Get(id); ok {
			in.LastShot = existing.LastShot
		}
		stored := in
		ws.inputs.Set(id, &stored)
	})
}

// TransferEntityIn is the receive side of a cross-zone handoff: a
// neighbour's InitiatePlayerTransfer lands here once the transferred
// entity's owning collaborator re-points it at this server. It
// rejects (returning false, without mutating state) an entity whose
// position no longer falls in this zone, and is otherwise idempotent:
// calling it twice for the same ID updates rather than duplicates the
// entity.
func (ws *WorldSimulation) TransferEntityIn(e zone.Entity) bool {
	var accepted bool
	ws.do(func() {
		if zone.GridSquareOf(e.Position) != ws.assigned {
			return // stale handoff: entity has since moved elsewhere
		}
		cp := e
		ws.entities.Put(&cp)
		accepted = true
	})
	return accepted
}

// SetPlayerTimeoutCallback installs the function cleanupIdlePlayers
// invokes for a player whose input has gone stale past
// PlayerIdleTimeout.
func (ws *WorldSimulation) SetPlayerTimeoutCallback(fn func(playerID string)) {
	ws.do(func() {
		ws.timeoutFn = fn
	})
}
