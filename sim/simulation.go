// Package sim implements the per-zone WorldSimulation: the tick loop,
// entity state machines, collision/damage engine, cross-zone handoff
// protocol, scout-alert propagation, and the game-phase state machine.
//
// Concurrency uses a single actor goroutine that owns all simulation
// state. Every inbound RPC is implemented as a method that builds a
// closure, sends it on a command channel, and (for calls with a return
// value) waits on a response channel. The actor's select loop drains
// this channel between ticks, so every mutation is naturally
// serialized with respect to the tick — there is no separate locking
// scheme to get wrong.
package sim

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lab1702/actionserver/zone"
)

// Config bundles the collaborators and tunables a WorldSimulation
// needs. Unset collaborators default to no-op/logging implementations
// so the simulation can run standalone (tests, local dev).
type Config struct {
	WorldManager    WorldManager
	PlayerGrain     PlayerGrain
	CrossZoneClient CrossZoneClient
	EventBroker     GameEventBroker
	MetricsRegistry prometheus.Registerer

	OutboundWorkers  int
	OutboundQueue    int
	PlayerTimeoutFn  func(playerID string)
}

// WorldSimulation is the per-zone authoritative simulation core.
type WorldSimulation struct {
	cmds   chan func()
	cancel context.CancelFunc
	done   chan struct{}

	startTime time.Time
	rng       *rand.Rand

	wm      WorldManager
	grain   PlayerGrain
	xzone   CrossZoneClient
	broker  GameEventBroker
	outbox  *outboundDispatcher
	metrics *metrics

	timeoutFn func(playerID string)

	// --- actor-owned state below; touched only inside cmds closures
	// (and by SetAssignedSquare before the tick loop starts) ---

	assigned     zone.GridSquare
	assignedSet  bool
	ids          *idGenerator
	entities     *entityStore
	inputs       *inputBuffer
	pendingTorps *pendingBulletTable
	blocklist    *handoffBlocklist
	directory    *zoneDirectoryCache
	ledger       *damageLedger
	fps          *fpsMonitor
	grid         *spatialGrid
	phase        *phaseController
	sequence     uint64
	lastTick     time.Time

	pendingMetricsRegistry prometheus.Registerer

	// limiters is safe for concurrent use outside the actor goroutine:
	// it guards UpdatePlayerInput calls before they ever reach ws.cmds.
	limiters *inputLimiters
}

// NewWorldSimulation constructs a simulation with the given
// collaborators. The tick loop does not start until SetAssignedSquare
// is called.
func NewWorldSimulation(cfg Config) *WorldSimulation {
	if cfg.WorldManager == nil {
		cfg.WorldManager = NoopWorldManager{}
	}
	if cfg.PlayerGrain == nil {
		cfg.PlayerGrain = NoopPlayerGrain{}
	}
	if cfg.CrossZoneClient == nil {
		cfg.CrossZoneClient = NoopCrossZoneClient{}
	}
	if cfg.EventBroker == nil {
		cfg.EventBroker = LoggingEventBroker{}
	}
	if cfg.OutboundWorkers <= 0 {
		cfg.OutboundWorkers = 4
	}
	if cfg.OutboundQueue <= 0 {
		cfg.OutboundQueue = 256
	}

	now := time.Now()
	ws := &WorldSimulation{
		cmds:      make(chan func(), 512),
		done:      make(chan struct{}),
		startTime: now,
		rng:       rand.New(rand.NewSource(now.UnixNano())),
		wm:        cfg.WorldManager,
		grain:     cfg.PlayerGrain,
		xzone:     cfg.CrossZoneClient,
		broker:    cfg.EventBroker,
		timeoutFn: cfg.PlayerTimeoutFn,
		entities:  newEntityStore(),
		inputs:    newInputBuffer(),
		pendingTorps: newPendingBulletTable(),
		blocklist: newHandoffBlocklist(),
		ledger:    newDamageLedger(now, nil),
		fps:       newFPSMonitor(nil),
		limiters:  newInputLimiters(),
	}
	ws.directory = newZoneDirectoryCache(ws.wm)
	ws.phase = newPhaseController()

	if cfg.MetricsRegistry != nil {
		// Metrics need the zone label, which isn't known until
		// SetAssignedSquare; deferred wiring happens there.
		ws.pendingMetricsRegistry = cfg.MetricsRegistry
	}
	ws.outbox = newOutboundDispatcher(cfg.OutboundWorkers, cfg.OutboundQueue, nil)

	return ws
}

// GetCurrentGameTime returns seconds since process start_time, used
// for cross-zone trajectory arithmetic.
func (ws *WorldSimulation) GetCurrentGameTime() float64 {
	return time.Since(ws.startTime).Seconds()
}

// do executes fn on the actor goroutine and blocks until it returns.
// Used by RPC handlers that need a result.
func (ws *WorldSimulation) do(fn func()) {
	reply := make(chan struct{})
	ws.cmds <- func() {
		fn()
		close(reply)
	}
	<-reply
}

// fireAndForget enqueues fn on the actor goroutine without waiting.
// Used for notify-style RPCs (ReceiveBulletDestroyed, ReceiveScoutAlert)
// where the caller does not need a result.
func (ws *WorldSimulation) fireAndForget(fn func()) {
	ws.cmds <- fn
}

// SetAssignedSquare assigns this simulation's zone and starts the tick
// loop. Must be called exactly once.
func (ws *WorldSimulation) SetAssignedSquare(ctx context.Context, square zone.GridSquare) {
	// The loop that drains ws.cmds only starts below, so the assignment
	// is applied directly on the calling goroutine.
	if ws.assignedSet {
		log.Printf("SetAssignedSquare called more than once; ignoring")
		return
	}
	ws.assigned = square
	ws.assignedSet = true
	ws.ids = newIDGenerator(square.X, square.Y)
	ws.grid = newSpatialGrid(square)
	if ws.pendingMetricsRegistry != nil {
		ws.wireMetrics(ws.pendingMetricsRegistry, square)
	}
	ws.spawnInitialWorld()

	runCtx, cancel := context.WithCancel(ctx)
	ws.cancel = cancel
	go ws.run(runCtx)
}

func (ws *WorldSimulation) wireMetrics(reg prometheus.Registerer, square zone.GridSquare) {
	ws.metrics = newMetrics(reg, square.X, square.Y)
	ws.ledger.metrics = ws.metrics
	ws.fps.metrics = ws.metrics
	ws.outbox.metrics = ws.metrics
}

// Shutdown terminates the tick loop after the current iteration.
// Pending outbound jobs are allowed to abandon.
func (ws *WorldSimulation) Shutdown() {
	if ws.cancel != nil {
		ws.cancel()
		<-ws.done
	}
}

// run is the tick loop. It is the only goroutine that ever
// touches actor-owned state directly; every other accessor goes
// through ws.cmds.
func (ws *WorldSimulation) run(ctx context.Context) {
	defer close(ws.done)

	ticker := time.NewTicker(zone.NominalTickPeriod)
	defer ticker.Stop()
	ws.lastTick = time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-ws.cmds:
			fn()
		case now := <-ticker.C:
			elapsed := now.Sub(ws.lastTick)
			ws.lastTick = now
			ws.fps.Record(now, elapsed)
			ws.tick(now, elapsed.Seconds())
		}
	}
}

// tick dispatches one iteration according to the current phase.
func (ws *WorldSimulation) tick(now time.Time, dt float64) {
	start := time.Now()
	defer func() {
		if ws.metrics != nil {
			ws.metrics.tickDuration.Observe(time.Since(start).Seconds())
			ws.metrics.entityCount.Set(float64(ws.entities.Count()))
		}
	}()

	switch ws.phase.Phase() {
	case zone.PhasePlaying:
		ws.tickPlaying(now, dt)
	case zone.PhaseVictoryPause:
		ws.tickVictoryPause(now, dt)
	case zone.PhaseGameOver:
		ws.tickGameOver(now, dt)
	case zone.PhaseRestarting:
		// no-op; restart routine itself flips the phase back.
	}
}

func (ws *WorldSimulation) tickPlaying(now time.Time, dt float64) {
	ws.physicsStep(now, dt)
	ws.activatePendingBullets(now)
	ws.updateAI(now, dt)
	ws.runCollisions(now)
	ws.updateStateTimers(now, dt)
	ws.cleanup(now)
	ws.checkGameOver(now)
	ws.opportunisticSpawn(now)
}

func (ws *WorldSimulation) tickVictoryPause(now time.Time, dt float64) {
	ws.physicsStep(now, dt)
	ws.updateStateTimers(now, dt)
	ws.cleanup(now)
	ws.phase.TickVictoryPause(now, ws)
}

func (ws *WorldSimulation) tickGameOver(now time.Time, dt float64) {
	ws.physicsStep(now, dt)
	ws.updateStateTimers(now, dt)
	ws.phase.TickGameOver(now, ws)
}
