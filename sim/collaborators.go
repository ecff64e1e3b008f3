package sim

import (
	"log"

	"github.com/lab1702/actionserver/zone"
)

// WorldManager is the cluster directory: owned by another service,
// addressed here only as an interface contract.
type WorldManager interface {
	RegisterActionServer(square zone.GridSquare, endpoint string)
	UnregisterActionServer(square zone.GridSquare)
	GetAllActionServers() map[zone.GridSquare]string
	GetActionServerForPosition(pos zone.Vec2) (endpoint string, ok bool)
	UpdatePlayerPositionAndVelocity(playerID string, pos, vel zone.Vec2)
	InitiatePlayerTransfer(playerID string, pos zone.Vec2)
	NotifyGameOver(square zone.GridSquare, winner string)
}

// PlayerGrain is the durable per-player record, owned by another service.
type PlayerGrain interface {
	GetInfo(playerID string) (zone.PlayerInfo, error)
	UpdatePosition(playerID string, pos zone.Vec2)
	UpdateHealth(playerID string, health float64)
	NotifyGameOver(playerID string)
	NotifyGameRestarted(playerID string)
}

// CrossZoneClient is the outbound RPC stub set to neighbour servers.
type CrossZoneClient interface {
	GetGameGrainForZone(serverInfo string, square zone.GridSquare, bypassZoneCheck bool) (string, error)
	TransferBulletTrajectory(endpoint string, b zone.PendingBullet) error
	NotifyBulletDestroyed(endpoint string, square zone.GridSquare, id zone.EntityID) error
	ReceiveScoutAlert(endpoint string, playerZone zone.GridSquare, playerPos zone.Vec2) error
}

// GameEventBroker raises user-facing events to collaborators/clients.
type GameEventBroker interface {
	RaiseChatMessage(square zone.GridSquare, text string)
	RaiseVictoryPause(square zone.GridSquare, scores map[string]int, duration float64)
	RaiseGameOver(square zone.GridSquare, scores map[string]int)
	RaiseGameRestart(square zone.GridSquare)
}

// The Noop* implementations below are the default collaborators: they
// do nothing and return zero values (LoggingEventBroker logs each
// event). They let WorldSimulation run standalone (and in tests)
// without a live cluster; cmd/actionserver also runs with these
// defaults.

type NoopWorldManager struct{}

func (NoopWorldManager) RegisterActionServer(zone.GridSquare, string)   {}
func (NoopWorldManager) UnregisterActionServer(zone.GridSquare)        {}
func (NoopWorldManager) GetAllActionServers() map[zone.GridSquare]string { return nil }
func (NoopWorldManager) GetActionServerForPosition(zone.Vec2) (string, bool) {
	return "", false
}
func (NoopWorldManager) UpdatePlayerPositionAndVelocity(string, zone.Vec2, zone.Vec2) {}
func (NoopWorldManager) InitiatePlayerTransfer(string, zone.Vec2)                     {}
func (NoopWorldManager) NotifyGameOver(zone.GridSquare, string)                       {}

type NoopPlayerGrain struct{}

func (NoopPlayerGrain) GetInfo(playerID string) (zone.PlayerInfo, error) {
	return zone.PlayerInfo{ID: zone.EntityID(playerID)}, nil
}
func (NoopPlayerGrain) UpdatePosition(string, zone.Vec2) {}
func (NoopPlayerGrain) UpdateHealth(string, float64)     {}
func (NoopPlayerGrain) NotifyGameOver(string)            {}
func (NoopPlayerGrain) NotifyGameRestarted(string)       {}

type NoopCrossZoneClient struct{}

func (NoopCrossZoneClient) GetGameGrainForZone(string, zone.GridSquare, bool) (string, error) {
	return "", nil
}
func (NoopCrossZoneClient) TransferBulletTrajectory(string, zone.PendingBullet) error { return nil }
func (NoopCrossZoneClient) NotifyBulletDestroyed(string, zone.GridSquare, zone.EntityID) error {
	return nil
}
func (NoopCrossZoneClient) ReceiveScoutAlert(string, zone.GridSquare, zone.Vec2) error { return nil }

type LoggingEventBroker struct{}

func (LoggingEventBroker) RaiseChatMessage(square zone.GridSquare, text string) {
	log.Printf("[zone %d,%d] chat: %s", square.X, square.Y, text)
}
func (LoggingEventBroker) RaiseVictoryPause(square zone.GridSquare, scores map[string]int, duration float64) {
	log.Printf("[zone %d,%d] victory pause (%.0fs): %v", square.X, square.Y, duration, scores)
}
func (LoggingEventBroker) RaiseGameOver(square zone.GridSquare, scores map[string]int) {
	log.Printf("[zone %d,%d] game over: %v", square.X, square.Y, scores)
}
func (LoggingEventBroker) RaiseGameRestart(square zone.GridSquare) {
	log.Printf("[zone %d,%d] game restart", square.X, square.Y)
}
