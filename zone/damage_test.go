package zone

import "testing"

func TestDamageReportSubTypeName(t *testing.T) {
	tests := []struct {
		sub  EnemySubType
		want string
	}{
		{EnemyKamikaze, "kamikaze"},
		{EnemySniper, "sniper"},
		{EnemyStrafing, "strafing"},
		{EnemyScout, "scout"},
		{EnemySubType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := DamageReportSubTypeName(tt.sub); got != tt.want {
			t.Errorf("DamageReportSubTypeName(%v) = %q, want %q", tt.sub, got, tt.want)
		}
	}
}
