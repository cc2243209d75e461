package game

const (
	SimHz        = 50.0 // fixed simulation tick rate
	Dt           = 1.0 / SimHz
	UpdateRateHz = 20.0 // per-client WS state pushes

	RecordInterval     = 0.1 // seconds between history records
	MinRecordInterval  = 1e-3
	MaxRecordInterval  = 1.0
	HistoryMargin      = 3 // extra slots beyond the farthest follower's delay
	MaxHistoryMargin   = 64
	MaxHistoryCapacity = 1 << 16
	MinHeadToRecord    = 1e-6
	recordTolerance    = 1e-9

	FollowerCount      = 4
	MaxFollowers       = 64
	FollowerGap        = 0.3 // seconds of delay between consecutive followers
	MinFollowerGap     = 0.01
	MaxFollowerGap     = 5.0
	FollowerPursuit    = 5.0 // proportional pursuit gain, 1/s
	MaxPursuitFraction = 0.5 // cap on PursuitSpeed*Dt
	FacingEpsilonSqr   = 1e-5

	MoveAccel             = 50.0
	SteerRate             = 20.0 // degrees per unit speed per second
	Traction              = 1.0
	BrakeForwardDecel     = 60.0
	BrakeLateralBoost     = 3.0
	BrakeTractionScale    = 0.5
	MinBrakeTractionScale = 0.05
	MaxPlanarSpeed        = 30.0
	PlanarSpeedLimit      = 500.0 // upper bound for the configurable cap
	BaseLateralFriction   = 0.0
	LeaderRadius          = 0.5
	SweepSkin             = 0.01
	SweepPasses           = 2
	minMoveLenSqr         = 1e-8
	minForceLenSqr        = 1e-7

	FiniteDifferenceMinH  = 1e-4
	launchDirMinLenSqr    = 1e-8
	LaunchVelocityScale   = 1.0
	LaunchMinSpeed        = 4.0
	LaunchMaxSpeed        = 40.0
	LaunchSpeedLimit      = 500.0
	LaunchUpwardKick      = 1.5
	ProjectileRadius      = 0.2
	ProjectileMaxBounces  = 2
	ProjectileMaxLifetime = 6.0
	MinProjectileLifetime = 0.1
	MaxProjectileLifetime = 60.0
	ProjectileRestitution = 0.6
	ProjectileGravity     = -9.81

	ExplosionBaseRadius     = 2.5
	ExplosionBaseEnergy     = 1.0
	ExplosionReferenceSpeed = LaunchMaxSpeed

	RoomIdleTimeoutS = 300.0
)
