package server

import (
	"math"

	"github.com/alexokonski/fixedtick/shared/entity"
	"github.com/alexokonski/fixedtick/shared/geom"
	"github.com/alexokonski/fixedtick/shared/netconst"
	"github.com/alexokonski/fixedtick/sim"
)

// World is the server's authoritative entity storage: parallel slices per
// entity kind, each paired with a parallel slice of NetIDs. This is the
// non-ECS translation of the source's component tables called for in the
// design notes: typed iteration ("all balls") plus a linear NetID search
// (indexOfPaddle/indexOfBall) for the lookup/removal paths that need it.
type World struct {
	idGen *entity.IDGenerator
	score uint32

	paddles   []sim.Paddle
	paddleIDs []entity.NetID

	balls   []sim.Ball
	ballIDs []entity.NetID

	bricks   []sim.Brick
	brickIDs []entity.NetID
}

func NewWorld() *World {
	return &World{idGen: entity.NewIDGenerator()}
}

// SetupBricks lays out the brick grid exactly the way the source's setup()
// does: fit as many columns/rows as the available space allows, centered
// horizontally, stacked upward from the gap above the paddle.
func (w *World) SetupBricks() {
	totalWidth := netconst.RightWall - netconst.LeftWall - 2*netconst.GapBetweenBricksAndSides
	bottomEdge := netconst.PaddleY + netconst.GapBetweenPaddleAndBricks
	totalHeight := netconst.TopWall - bottomEdge - netconst.GapBetweenBricksAndCeiling

	nCols := int(math.Floor(totalWidth / (netconst.BrickWidth + netconst.GapBetweenBricks)))
	nRows := int(math.Floor(totalHeight / (netconst.BrickHeight + netconst.GapBetweenBricks)))
	nVerticalGaps := nCols - 1

	centerX := (netconst.LeftWall + netconst.RightWall) / 2.0
	leftEdge := centerX - (float64(nCols)/2.0)*netconst.BrickWidth - (float64(nVerticalGaps)/2.0)*netconst.GapBetweenBricks

	offsetX := leftEdge + netconst.BrickWidth/2.0
	offsetY := bottomEdge + netconst.BrickHeight/2.0

	for row := 0; row < nRows; row++ {
		for col := 0; col < nCols; col++ {
			pos := geom.New(
				float32(offsetX+float64(col)*(netconst.BrickWidth+netconst.GapBetweenBricks)),
				float32(offsetY+float64(row)*(netconst.BrickHeight+netconst.GapBetweenBricks)),
			)
			w.spawnBrick(pos)
		}
	}
}

func (w *World) spawnBrick(pos geom.Vec2) entity.NetID {
	id := w.idGen.Next()
	w.bricks = append(w.bricks, sim.Brick{Pos: pos})
	w.brickIDs = append(w.brickIDs, id)
	return id
}

// SpawnPlayer creates a paddle and a ball for a newly connected player and
// returns their NetIDs.
func (w *World) SpawnPlayer(playerIndex entity.PlayerIndex, paddleX float32, rng *sim.RNG) (paddleID, ballID entity.NetID) {
	_ = rng // paddleX is already rolled by the caller; kept for symmetry/testability
	paddleID = w.idGen.Next()
	w.paddles = append(w.paddles, sim.Paddle{
		Pos:         geom.New(paddleX, netconst.PaddleY),
		PlayerIndex: uint8(playerIndex),
	})
	w.paddleIDs = append(w.paddleIDs, paddleID)

	ballID = w.idGen.Next()
	w.balls = append(w.balls, sim.Ball{
		Pos:         sim.BallStartingPosition(),
		Velocity:    sim.InitialBallVelocity(),
		PlayerIndex: uint8(playerIndex),
	})
	w.ballIDs = append(w.ballIDs, ballID)
	return paddleID, ballID
}

func (w *World) indexOfPaddle(id entity.NetID) int {
	for i, pid := range w.paddleIDs {
		if pid == id {
			return i
		}
	}
	return -1
}

func (w *World) indexOfBall(id entity.NetID) int {
	for i, bid := range w.ballIDs {
		if bid == id {
			return i
		}
	}
	return -1
}

func (w *World) Paddle(id entity.NetID) (*sim.Paddle, bool) {
	i := w.indexOfPaddle(id)
	if i < 0 {
		return nil, false
	}
	return &w.paddles[i], true
}

func (w *World) Ball(id entity.NetID) (*sim.Ball, bool) {
	i := w.indexOfBall(id)
	if i < 0 {
		return nil, false
	}
	return &w.balls[i], true
}

// DespawnPlayer removes a player's paddle and ball. Their NetIDs are never
// reused.
func (w *World) DespawnPlayer(paddleID, ballID entity.NetID) {
	if i := w.indexOfPaddle(paddleID); i >= 0 {
		w.paddles = append(w.paddles[:i], w.paddles[i+1:]...)
		w.paddleIDs = append(w.paddleIDs[:i], w.paddleIDs[i+1:]...)
	}
	if i := w.indexOfBall(ballID); i >= 0 {
		w.balls = append(w.balls[:i], w.balls[i+1:]...)
		w.ballIDs = append(w.ballIDs[:i], w.ballIDs[i+1:]...)
	}
}

// AllBalls returns every ball alongside its NetID, for iteration during
// velocity integration and collision.
func (w *World) AllBalls() ([]sim.Ball, []entity.NetID) {
	return w.balls, w.ballIDs
}

// FrozenColliders builds the per-tick frozen collider snapshot: every brick
// plus every paddle, as required by §4.4 ("collisions are evaluated against
// a frozen per-tick snapshot of colliders so that deletions within a tick
// do not affect iteration").
func (w *World) FrozenColliders() []sim.Collider {
	colliders := make([]sim.Collider, 0, len(w.bricks)+len(w.paddles))
	for i, b := range w.bricks {
		colliders = append(colliders, sim.Collider{
			Box:        sim.AABB{Center: b.Pos, HalfExtents: geom.New(netconst.BrickWidth/2, netconst.BrickHeight/2)},
			IsBrick:    true,
			BrickIndex: i,
		})
	}
	for _, p := range w.paddles {
		colliders = append(colliders, sim.Collider{
			Box: sim.AABB{Center: p.Pos, HalfExtents: geom.New(netconst.PaddleWidth/2, netconst.PaddleHeight/2)},
		})
	}
	return colliders
}

// DestroyBricks removes bricks at the given indices (as produced by
// sim.ResolveBallCollisions against FrozenColliders' BrickIndex) and
// increments score by the number destroyed. Indices are resolved against
// the brick slice as it stood when FrozenColliders was built; the caller
// must call this once per tick, after all balls have been resolved against
// the same frozen snapshot, passing the union of hit indices.
func (w *World) DestroyBricks(indices map[int]bool) int {
	if len(indices) == 0 {
		return 0
	}
	kept := w.bricks[:0]
	keptIDs := w.brickIDs[:0]
	destroyed := 0
	for i, b := range w.bricks {
		if indices[i] {
			destroyed++
			continue
		}
		kept = append(kept, b)
		keptIDs = append(keptIDs, w.brickIDs[i])
	}
	w.bricks = kept
	w.brickIDs = keptIDs
	w.score += uint32(destroyed)
	return destroyed
}

func (w *World) Score() uint32 {
	return w.score
}

// Snapshot builds the broadcastable WorldState for the current frame.
func (w *World) Snapshot(frame uint32) entity.WorldState {
	entities := make([]entity.NetEntity, 0, len(w.paddles)+len(w.balls)+len(w.bricks)+1)
	for i, p := range w.paddles {
		entities = append(entities, entity.NewPaddleEntity(w.paddleIDs[i], entity.PaddleData{
			Pos:         p.Pos,
			PlayerIndex: entity.PlayerIndex(p.PlayerIndex),
		}))
	}
	for i, b := range w.balls {
		entities = append(entities, entity.NewBallEntity(w.ballIDs[i], entity.BallData{
			Pos:         b.Pos,
			Velocity:    b.Velocity,
			PlayerIndex: entity.PlayerIndex(b.PlayerIndex),
		}))
	}
	for i, b := range w.bricks {
		entities = append(entities, entity.NewBrickEntity(w.brickIDs[i], entity.BrickData{Pos: b.Pos}))
	}
	entities = append(entities, entity.NewScoreEntity(entity.ScoreData{Score: w.score}))
	return entity.WorldState{Frame: frame, Entities: entities}
}
