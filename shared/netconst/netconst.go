// Package netconst holds the constants that both the server and the client
// must agree on. Nothing here is configurable at runtime: a mismatch between
// a server build and a client build silently desynchronizes prediction.
package netconst

import "time"

const (
	// WorldPacketMagic prefixes every server-to-client datagram.
	WorldPacketMagic uint32 = 0xBA11BA11

	// HeaderLen is the size in bytes of the fixed server-to-client header:
	// magic (u32) + last_applied_input (u32) + local_client_index (u8).
	HeaderLen = 4 + 4 + 1

	TickRateHz = 60.0
	TickS      = 1.0 / TickRateHz

	// MinJitterS is added to every buffer-delay computation so that a
	// zero-latency loopback connection still has a small absorption window.
	MinJitterS = 0.006

	EthernetMTU = 1500
)

// TickDuration is TickS expressed as a time.Duration for use with timers.
const TickDuration = time.Second / TickRateHz

// Arena bounds, in the same units the simulation positions live in.
const (
	WallThickness = 10.0

	LeftWall   = -450.0
	RightWall  = 450.0
	BottomWall = -300.0
	TopWall    = 300.0
)

// Paddle constants.
const (
	PaddleWidth  = 120.0
	PaddleHeight = 20.0
	PaddleSpeed  = 500.0
	PaddlePadding = 10.0

	GapBetweenPaddleAndFloor = 60.0
	PaddleY                  = BottomWall + GapBetweenPaddleAndFloor

	PaddleLeftBound  = LeftWall + WallThickness/2.0 + PaddleWidth/2.0 + PaddlePadding
	PaddleRightBound = RightWall - WallThickness/2.0 - PaddleWidth/2.0 - PaddlePadding
)

// Ball constants.
const (
	BallDiameter = 30.0
	BallSpeed    = 400.0

	InitialBallDirectionX = 0.5
	InitialBallDirectionY = -0.5

	BallStartingPositionX = 0.0
	BallStartingPositionY = -50.0
)

// Brick grid constants.
const (
	BrickWidth  = 100.0
	BrickHeight = 30.0

	GapBetweenBricks          = 5.0
	GapBetweenPaddleAndBricks = 270.0
	GapBetweenBricksAndCeiling = 20.0
	GapBetweenBricksAndSides   = 20.0
)

// Input buffer (server-side jitter buffer) constants. K is the number of
// whole ticks of absorption the buffer targets before it starts consuming
// input; 5 matches the default deployment value called out in the spec.
const (
	BufferDelayK = 5
	BufferDelayS = BufferDelayK*TickS + MinJitterS
)

// BufferLen returns 1 + round(BufferDelayS/TickS), i.e. the queue length the
// input buffer state machine drains toward while Playing.
func BufferLen() int {
	return 1 + roundHalfAwayFromZero(BufferDelayS/TickS)
}

// Client snapshot interpolation constants.
const (
	InterpDelayS = TickS + MinJitterS
)

// ExpectedSnapshotBuffer returns 2 + round(InterpDelayS/TickS), the target
// length of the client's snapshot queue.
func ExpectedSnapshotBuffer() int {
	return 2 + roundHalfAwayFromZero(InterpDelayS/TickS)
}

func roundHalfAwayFromZero(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}

// Networking defaults.
const (
	DefaultHeartbeatTickRateSecs = 2.0
	DefaultIdleTimeoutSecs       = 5.0
	DefaultPingIntervalMs        = 250

	DefaultListenAddress = "127.0.0.1:7001"
)

const IdleTimeout = time.Duration(DefaultIdleTimeoutSecs * float64(time.Second))
const HeartbeatInterval = time.Duration(DefaultHeartbeatTickRateSecs * float64(time.Second))
const PingInterval = time.Duration(DefaultPingIntervalMs) * time.Millisecond
