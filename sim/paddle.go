package sim

import (
	"github.com/alexokonski/fixedtick/shared/geom"
	"github.com/alexokonski/fixedtick/shared/netconst"
	"github.com/alexokonski/fixedtick/shared/wire"
)

// MoveIntent is the paddle direction derived from a key mask: -1, 0, or 1.
// Deriving it is split from applying it (MovePaddle) so the two can be
// tested and reasoned about independently, per the source's "consume
// input" vs "apply to transform" split.
type MoveIntent float32

func DeriveMoveIntent(keyMask uint8) MoveIntent {
	var dir float32
	if keyMask&wire.KeyLeft != 0 {
		dir -= 1.0
	}
	if keyMask&wire.KeyRight != 0 {
		dir += 1.0
	}
	return MoveIntent(dir)
}

// MovePaddle advances a paddle's X position by one tick of deltaSeconds
// given a move intent, clamped to the arena's paddle bounds.
func MovePaddle(p *Paddle, deltaSeconds float32, intent MoveIntent) {
	newX := p.Pos.X + float32(intent)*netconst.PaddleSpeed*deltaSeconds
	p.Pos.X = geom.ClampF(newX, netconst.PaddleLeftBound, netconst.PaddleRightBound)
}

// MovePaddleWithInput is a convenience wrapper matching the source's
// move_paddle(dt, transform, input) call shape.
func MovePaddleWithInput(p *Paddle, deltaSeconds float32, input wire.PlayerInputData) {
	MovePaddle(p, deltaSeconds, DeriveMoveIntent(input.KeyMask))
}
