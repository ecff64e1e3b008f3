package zone

// DamageReportSubTypeName reconciles the two enemy-subtype encodings in
// use: EnemySubType's declared enum order (Kamikaze=0, Sniper=1,
// Strafing=2, Scout=3) versus the damage-report naming
// historically keyed 1=Kamikaze, 2=Sniper, 3=Strafing, 4=Scout. All
// new code speaks EnemySubType (enum order); this is the single
// translation point so a damage report's per-enemy-type breakdown
// uses human-readable names regardless of which encoding a caller
// remembers.
func DamageReportSubTypeName(sub EnemySubType) string {
	switch sub {
	case EnemyKamikaze:
		return "kamikaze"
	case EnemySniper:
		return "sniper"
	case EnemyStrafing:
		return "strafing"
	case EnemyScout:
		return "scout"
	default:
		return "unknown"
	}
}
