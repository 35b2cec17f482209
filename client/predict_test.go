package client

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexokonski/fixedtick/shared/entity"
	"github.com/alexokonski/fixedtick/shared/geom"
	"github.com/alexokonski/fixedtick/shared/netconst"
	"github.com/alexokonski/fixedtick/shared/wire"
)

func snapshotWithLocal(paddlePos, ballPos geom.Vec2) entity.WorldState {
	return entity.WorldState{
		Frame: 1,
		Entities: []entity.NetEntity{
			entity.NewPaddleEntity(1, entity.PaddleData{Pos: paddlePos, PlayerIndex: 0}),
			entity.NewBallEntity(2, entity.BallData{Pos: ballPos, Velocity: geom.New(0, 0), PlayerIndex: 0}),
		},
	}
}

func snapshotWithLocalAndBrick(paddlePos, ballPos, ballVel, brickPos geom.Vec2) entity.WorldState {
	ws := snapshotWithLocal(paddlePos, ballPos)
	ws.Entities[1] = entity.NewBallEntity(2, entity.BallData{Pos: ballPos, Velocity: ballVel, PlayerIndex: 0})
	ws.Entities = append(ws.Entities, entity.NewBrickEntity(3, entity.BrickData{Pos: brickPos}))
	return ws
}

func TestPredictorLearnsLocalIDsOnce(t *testing.T) {
	p := NewPredictor(NewMetrics())
	ws := snapshotWithLocal(geom.New(0, netconst.PaddleY), geom.New(0, -50))
	p.LearnLocalIDs(ws, 0)

	paddleID, ballID, ok := p.LocalIDs()
	require.True(t, ok)
	require.EqualValues(t, 1, paddleID)
	require.EqualValues(t, 2, ballID)
}

func TestPredictorAppliesLocalInputImmediately(t *testing.T) {
	p := NewPredictor(NewMetrics())
	p.LearnLocalIDs(snapshotWithLocal(geom.New(0, netconst.PaddleY), geom.New(0, -50)), 0)

	before := p.Paddle().Pos.X
	p.ApplyLocalInput(wire.KeyRight, 1)
	after := p.Paddle().Pos.X

	require.Greater(t, after, before)
}

func TestPredictorReconcileReplaysUnackedInputs(t *testing.T) {
	p := NewPredictor(NewMetrics())
	p.LearnLocalIDs(snapshotWithLocal(geom.New(0, netconst.PaddleY), geom.New(0, -50)), 0)

	p.ApplyLocalInput(wire.KeyRight, 1) // sequence 0
	p.ApplyLocalInput(wire.KeyRight, 2) // sequence 1
	predictedAfterTwo := p.Paddle().Pos.X

	// Server acknowledges input 0 and reports the authoritative paddle
	// position after applying it, matching what was predicted.
	p.Reconcile(0, snapshotWithLocal(geom.New(netconst.PaddleSpeed*netconst.TickS, netconst.PaddleY), geom.New(0, -50)))

	require.InDelta(t, predictedAfterTwo, p.Paddle().Pos.X, 1e-3)
}

func TestPredictorCountsMispredictionOnDivergence(t *testing.T) {
	p := NewPredictor(NewMetrics())
	p.LearnLocalIDs(snapshotWithLocal(geom.New(0, netconst.PaddleY), geom.New(0, -50)), 0)

	p.ApplyLocalInput(wire.KeyRight, 1)
	p.ApplyLocalInput(wire.KeyRight, 2)
	p.ApplyLocalInput(wire.KeyRight, 3)

	// Authoritative state disagrees sharply with what was predicted for
	// input 0 (e.g. the paddle was actually clamped against a wall), so
	// replaying forward from here should diverge from the stored original
	// for the non-final replayed input and increment the counter.
	p.Reconcile(0, snapshotWithLocal(geom.New(netconst.PaddleLeftBound, netconst.PaddleY), geom.New(0, -50)))

	require.Greater(t, p.metrics.mispredictions.Get(), uint64(0))
}

// TestPredictorReconcileCollidesBallWithBrick exercises the replay path
// added for the reconciliation collision fix: the ball must be integrated
// and collided against the predicted paddle and the snapshot's bricks once
// per still-pending input, not merely dead-reckoned.
func TestPredictorReconcileCollidesBallWithBrick(t *testing.T) {
	p := NewPredictor(NewMetrics())
	brickPos := geom.New(0, 100)
	ballPos := geom.New(0, 84) // already overlapping the brick's bottom edge
	ballVel := geom.New(0, 200)

	p.LearnLocalIDs(snapshotWithLocalAndBrick(geom.New(0, netconst.PaddleY), ballPos, ballVel, brickPos), 0)

	p.ApplyLocalInput(0, 1) // sequence 0, will be acked below
	p.ApplyLocalInput(0, 2) // sequence 1, stays pending and gets replayed

	p.Reconcile(0, snapshotWithLocalAndBrick(geom.New(0, netconst.PaddleY), ballPos, ballVel, brickPos))

	require.Less(t, p.Ball().Velocity.Y, float32(0), "ball should have bounced off the brick during replay")
}
