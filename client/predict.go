package client

import (
	"github.com/alexokonski/fixedtick/shared/entity"
	"github.com/alexokonski/fixedtick/shared/geom"
	"github.com/alexokonski/fixedtick/shared/netconst"
	"github.com/alexokonski/fixedtick/shared/wire"
	"github.com/alexokonski/fixedtick/sim"
)

// mispredictEpsilon is the positional slack allowed between a replayed
// prediction and what was predicted the first time before it's counted as a
// misprediction. Float rounding alone shouldn't trip this.
const mispredictEpsilon = 0.01

type predictedSample struct {
	sequence  uint32
	paddlePos geom.Vec2
	ballPos   geom.Vec2
}

// Predictor owns the local player's client-side predicted paddle and ball,
// the FIFO of inputs sent but not yet acknowledged, and the rollback/replay
// reconciliation that runs each time an authoritative snapshot arrives. Both
// the paddle (input-driven) and the ball (dead-reckoned, then collided
// against predicted colliders) are replayed one unacked input at a time, the
// same step function used for ordinary per-tick prediction between
// snapshots.
type Predictor struct {
	paddle sim.Paddle
	ball   sim.Ball

	// bricks is the last authoritative brick layout, frozen into colliders
	// the same shape as server.World.FrozenColliders builds. It's refreshed
	// on every snapshot; the client never predicts brick destruction itself,
	// so a brick the server has already removed simply isn't in this set
	// once the next snapshot lands.
	bricks []sim.Collider

	localPaddleID entity.NetID
	localBallID   entity.NetID
	haveLocalIDs  bool

	pending []wire.PlayerInputData
	history []predictedSample

	nextSequence uint32

	metrics *Metrics
}

func NewPredictor(metrics *Metrics) *Predictor {
	return &Predictor{metrics: metrics}
}

// LocalIDs reports the NetIDs of the locally predicted paddle and ball, once
// learned from a snapshot.
func (p *Predictor) LocalIDs() (paddleID, ballID entity.NetID, ok bool) {
	return p.localPaddleID, p.localBallID, p.haveLocalIDs
}

// ApplyLocalInput predicts one tick of local paddle movement and ball
// integration/collision for a newly-captured input, records it as
// unacknowledged, and returns the packet to send.
func (p *Predictor) ApplyLocalInput(keyMask uint8, simulatingFrame uint32) wire.PlayerInputData {
	input := wire.PlayerInputData{
		KeyMask:         keyMask,
		SimulatingFrame: simulatingFrame,
		Sequence:        p.nextSequence,
	}
	p.nextSequence++

	p.pending = append(p.pending, input)
	p.history = append(p.history, p.step(input))
	return input
}

// Paddle returns the current predicted paddle.
func (p *Predictor) Paddle() sim.Paddle { return p.paddle }

// Ball returns the current predicted ball.
func (p *Predictor) Ball() sim.Ball { return p.ball }

// step advances the predicted paddle and ball by one tick for a single
// input: move the paddle, integrate the ball, then resolve the ball against
// the predicted paddle plus the last known bricks (server.World.FrozenColliders
// also includes every other player's paddle; this set does not). It's the
// single per-input step shared by live prediction (ApplyLocalInput) and
// reconciliation's replay (Reconcile), so both advance state identically.
func (p *Predictor) step(input wire.PlayerInputData) predictedSample {
	sim.MovePaddleWithInput(&p.paddle, netconst.TickS, input)
	sim.IntegrateBall(&p.ball, netconst.TickS)

	colliders := make([]sim.Collider, 0, len(p.bricks)+1)
	colliders = append(colliders, p.bricks...)
	colliders = append(colliders, sim.Collider{
		Box: sim.AABB{Center: p.paddle.Pos, HalfExtents: geom.New(netconst.PaddleWidth/2, netconst.PaddleHeight/2)},
	})
	sim.ResolveBallCollisions(&p.ball, netconst.BallDiameter/2, colliders, nil)

	return predictedSample{sequence: input.Sequence, paddlePos: p.paddle.Pos, ballPos: p.ball.Pos}
}

// Reconcile runs when a new authoritative snapshot arrives: it discards
// acknowledged inputs, rolls the predicted paddle and ball back to the
// authoritative state, refreshes the brick colliders from the snapshot, and
// replays every still-pending input through the same step used for live
// prediction (§4.8 step 4: ball advance plus collision against predicted
// paddles and non-predicted colliders, run once per unacked input). Each
// replayed position (except the last, not yet confirmed by a further ack)
// is compared against what was last predicted for that same input before
// this rollback, counting a mismatch as a misprediction.
func (p *Predictor) Reconcile(lastAppliedInput uint32, ws entity.WorldState) {
	authoritativePaddle, authoritativeBall, ok := p.findLocalEntities(ws)
	if !ok {
		return
	}

	cut := 0
	for cut < len(p.pending) && p.pending[cut].Sequence <= lastAppliedInput {
		cut++
	}
	p.pending = p.pending[cut:]
	p.history = p.history[cut:]

	originals := p.history

	p.paddle.Pos = authoritativePaddle.Pos
	p.ball.Pos = authoritativeBall.Pos
	p.ball.Velocity = authoritativeBall.Velocity
	p.bricks = brickColliders(ws)

	newHistory := make([]predictedSample, 0, len(p.pending))
	for i, input := range p.pending {
		sample := p.step(input)
		newHistory = append(newHistory, sample)

		if i < len(p.pending)-1 && i < len(originals) {
			if sample.paddlePos.Sub(originals[i].paddlePos).Magnitude() > mispredictEpsilon ||
				sample.ballPos.Sub(originals[i].ballPos).Magnitude() > mispredictEpsilon {
				p.metrics.mispredictions.Inc()
			}
		}
	}
	p.history = newHistory
}

// brickColliders builds the non-predicted collider set (bricks only; other
// players' paddles are interpolated, not predicted, and per the resolved
// open question in DESIGN.md are left out of the client's replay set) from
// a snapshot's brick entities, matching server.World.FrozenColliders'
// half-extent conventions.
func brickColliders(ws entity.WorldState) []sim.Collider {
	var colliders []sim.Collider
	for i, e := range ws.Entities {
		if e.Kind != entity.KindBrick {
			continue
		}
		colliders = append(colliders, sim.Collider{
			Box:        sim.AABB{Center: e.Brick.Pos, HalfExtents: geom.New(netconst.BrickWidth/2, netconst.BrickHeight/2)},
			IsBrick:    true,
			BrickIndex: i,
		})
	}
	return colliders
}

func (p *Predictor) findLocalEntities(ws entity.WorldState) (entity.NetEntity, entity.NetEntity, bool) {
	var paddle, ball entity.NetEntity
	var havePaddle, haveBall bool

	if p.haveLocalIDs {
		for _, e := range ws.Entities {
			if e.Kind == entity.KindPaddle && e.NetID == p.localPaddleID {
				paddle, havePaddle = e, true
			}
			if e.Kind == entity.KindBall && e.NetID == p.localBallID {
				ball, haveBall = e, true
			}
		}
	}
	return paddle, ball, havePaddle && haveBall
}

// LearnLocalIDs binds this predictor to the paddle/ball owned by
// localIndex, the first time a snapshot reveals them (on initial connect).
func (p *Predictor) LearnLocalIDs(ws entity.WorldState, localIndex entity.PlayerIndex) {
	if p.haveLocalIDs {
		return
	}
	for _, e := range ws.Entities {
		switch e.Kind {
		case entity.KindPaddle:
			if e.Paddle.PlayerIndex == localIndex {
				p.localPaddleID = e.NetID
				p.paddle = sim.Paddle{Pos: e.Paddle.Pos, PlayerIndex: uint8(localIndex)}
			}
		case entity.KindBall:
			if e.Ball.PlayerIndex == localIndex {
				p.localBallID = e.NetID
				p.ball = sim.Ball{Pos: e.Ball.Pos, Velocity: e.Ball.Velocity, PlayerIndex: uint8(localIndex)}
			}
		}
	}
	if p.localPaddleID != 0 && p.localBallID != 0 {
		p.haveLocalIDs = true
		p.bricks = brickColliders(ws)
	}
}
