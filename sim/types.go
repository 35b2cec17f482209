// Package sim implements the deterministic simulation primitives shared by
// the server's authoritative tick and the client's local prediction: paddle
// movement, ball integration, and circle-AABB collision with brick removal
// and scoring. Both callers run the exact same functions so that, given the
// same dt and input order, they produce the same result.
package sim

import (
	"github.com/alexokonski/fixedtick/shared/geom"
	"github.com/alexokonski/fixedtick/shared/netconst"
)

type Paddle struct {
	Pos         geom.Vec2
	PlayerIndex uint8
}

type Ball struct {
	Pos         geom.Vec2
	Velocity    geom.Vec2
	PlayerIndex uint8
}

type Brick struct {
	Pos geom.Vec2
}

// InitialBallVelocity returns the canonical spawn velocity: the constant
// initial direction, normalized, scaled to BallSpeed.
func InitialBallVelocity() geom.Vec2 {
	dir := geom.New(netconst.InitialBallDirectionX, netconst.InitialBallDirectionY).Normalize()
	return dir.Scale(netconst.BallSpeed)
}

// BallStartingPosition is the canonical spawn position for every new ball.
func BallStartingPosition() geom.Vec2 {
	return geom.New(netconst.BallStartingPositionX, netconst.BallStartingPositionY)
}
