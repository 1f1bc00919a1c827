package game

import "time"

// Config holds every gameplay constant for a session
type Config struct {
	Field Field

	TickInterval time.Duration // sleep between ticks
	JoinTimeout  time.Duration // bounded wait in Clock.Stop

	PlayerW, PlayerH int
	PlayerSpeed      int

	AlienW, AlienH int
	AlienDX        int // per-tick translation
	AlienDY        int

	BulletW, BulletH    int
	PlayerBulletSpeed   float64
	EnemyBulletSpeed    float64
	BulletExitMargin    int
	StraightShots       bool // simplified single-axis bullets
	StraightPlayerSpeed int
	StraightEnemySpeed  int

	ObstacleW, ObstacleH int
	ObstacleHP           int
	ObstacleTopMargin    int // keep-out band above the obstacle zone
	ObstacleBottomMargin int // keep-out band below the obstacle zone
	ObstacleAttempts     int
	InitialObstacles     int

	AlienSpawnChance int // out of AlienSpawnRoll
	AlienSpawnRoll   int
	AlienShootChance int // out of AlienShootRoll
	AlienShootRoll   int

	KillScore int
}

// DefaultConfig returns the standard 800x600 arcade rules
func DefaultConfig() Config {
	return Config{
		Field:        Field{W: 800, H: 600},
		TickInterval: 16 * time.Millisecond,
		JoinTimeout:  500 * time.Millisecond,

		PlayerW:     50,
		PlayerH:     50,
		PlayerSpeed: 5,

		AlienW:  40,
		AlienH:  40,
		AlienDX: 0,
		AlienDY: -3,

		BulletW:             10,
		BulletH:             10,
		PlayerBulletSpeed:   10.0,
		EnemyBulletSpeed:    7.0,
		BulletExitMargin:    50,
		// aliens climb from the bottom edge, so player shots travel down
		// toward them and alien shots travel up toward the player
		StraightPlayerSpeed: 10,
		StraightEnemySpeed:  -7,

		ObstacleW:            60,
		ObstacleH:            60,
		ObstacleHP:           25,
		ObstacleTopMargin:    50,
		ObstacleBottomMargin: 150,
		ObstacleAttempts:     10,
		InitialObstacles:     5,

		AlienSpawnChance: 2,
		AlienSpawnRoll:   100,
		AlienShootChance: 1,
		AlienShootRoll:   300,

		KillScore: 10,
	}
}
