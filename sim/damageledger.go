package sim

import (
	"time"

	"github.com/lab1702/actionserver/zone"
)

// damageLedger is the append-only per-round damage log plus per-player
// aggregated stats.
type damageLedger struct {
	roundStart time.Time
	events     []zone.DamageEvent
	perPlayer  map[zone.EntityID]*zone.PlayerDamageStats
	metrics    *metrics
}

func newDamageLedger(now time.Time, m *metrics) *damageLedger {
	return &damageLedger{
		roundStart: now,
		perPlayer:  make(map[zone.EntityID]*zone.PlayerDamageStats),
		metrics:    m,
	}
}

// Append records a damage event and updates aggregated stats. Amount
// is attributed to the attacker (dealt) and the target (received).
func (l *damageLedger) Append(ev zone.DamageEvent) {
	l.events = append(l.events, ev)
	if l.metrics != nil {
		l.metrics.damageEvents.Inc()
	}

	if ev.AttackerKind == zone.EntityPlayer {
		stats := l.statsFor(ev.AttackerID)
		stats.DamageDealtByWeapon[ev.Weapon] += ev.Amount
	}
	if ev.TargetKind == zone.EntityPlayer {
		stats := l.statsFor(ev.TargetID)
		stats.DamageReceivedByWeapon[ev.Weapon] += ev.Amount
		if ev.AttackerKind == zone.EntityEnemy {
			name := zone.DamageReportSubTypeName(zone.EnemySubType(ev.AttackerSub))
			stats.DamageReceivedByEnemy[name] += ev.Amount
		}
	}
}

func (l *damageLedger) statsFor(id zone.EntityID) *zone.PlayerDamageStats {
	s, ok := l.perPlayer[id]
	if !ok {
		s = zone.NewPlayerDamageStats()
		l.perPlayer[id] = s
	}
	return s
}

// Report builds a ZoneDamageReport snapshot of the ledger so far.
func (l *damageLedger) Report(square zone.GridSquare, now time.Time) zone.ZoneDamageReport {
	events := make([]zone.DamageEvent, len(l.events))
	copy(events, l.events)

	stats := make(map[zone.EntityID]*zone.PlayerDamageStats, len(l.perPlayer))
	for id, s := range l.perPlayer {
		cp := zone.NewPlayerDamageStats()
		for k, v := range s.DamageDealtByWeapon {
			cp.DamageDealtByWeapon[k] = v
		}
		for k, v := range s.DamageReceivedByWeapon {
			cp.DamageReceivedByWeapon[k] = v
		}
		for k, v := range s.DamageReceivedByEnemy {
			cp.DamageReceivedByEnemy[k] = v
		}
		stats[id] = cp
	}

	return zone.ZoneDamageReport{
		Zone:           square,
		RoundStart:     l.roundStart,
		RoundEnd:       now,
		Events:         events,
		PerPlayerStats: stats,
	}
}

// Reset clears the ledger for a new round.
func (l *damageLedger) Reset(now time.Time) {
	l.roundStart = now
	l.events = nil
	l.perPlayer = make(map[zone.EntityID]*zone.PlayerDamageStats)
}
