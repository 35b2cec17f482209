package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexokonski/fixedtick/shared/entity"
	"github.com/alexokonski/fixedtick/shared/geom"
	"github.com/alexokonski/fixedtick/shared/netconst"
)

func paddleSnapshot(frame uint32, x float32) entity.WorldState {
	return entity.WorldState{
		Frame: frame,
		Entities: []entity.NetEntity{
			entity.NewPaddleEntity(1, entity.PaddleData{Pos: geom.New(x, netconst.PaddleY), PlayerIndex: 0}),
		},
	}
}

func TestSnapshotBufferStaysBufferingUntilTargetDepth(t *testing.T) {
	b := NewSnapshotBuffer()
	start := time.Now()

	target := netconst.ExpectedSnapshotBuffer()
	for i := 0; i < target-1; i++ {
		b.Push(paddleSnapshot(uint32(i), float32(i)), start.Add(time.Duration(i)*netconst.TickDuration))
	}
	_, starved := b.Render(start.Add(time.Duration(target) * netconst.TickDuration))
	require.Equal(t, SnapshotBuffering, b.state)
	require.False(t, starved)
}

func TestSnapshotBufferInterpolatesBetweenBracketingSnapshots(t *testing.T) {
	b := NewSnapshotBuffer()
	start := time.Now()

	target := netconst.ExpectedSnapshotBuffer()
	for i := 0; i < target+2; i++ {
		b.Push(paddleSnapshot(uint32(i), float32(i)*10), start.Add(time.Duration(i)*netconst.TickDuration))
	}

	renderAt := start.Add(time.Duration(target) * netconst.TickDuration)
	ws, starved := b.Render(renderAt)
	require.False(t, starved)
	require.Equal(t, SnapshotPlaying, b.state)
	require.Len(t, ws.Entities, 1)
	// The overflow drain leaves only the newest target snapshots, all with
	// X > 0, so the interpolated X is positive too.
	require.Greater(t, ws.Entities[0].Paddle.Pos.X, float32(0))
}

func TestSnapshotBufferStarvesBackToBufferingWhenStale(t *testing.T) {
	b := NewSnapshotBuffer()
	start := time.Now()
	target := netconst.ExpectedSnapshotBuffer()
	for i := 0; i < target; i++ {
		b.Push(paddleSnapshot(uint32(i), float32(i)), start.Add(time.Duration(i)*netconst.TickDuration))
	}
	// Prime into Playing.
	b.Render(start.Add(time.Duration(target) * netconst.TickDuration))

	// Render far in the future with nothing new arriving: should starve.
	_, starved := b.Render(start.Add(time.Hour))
	require.True(t, starved)
	require.Equal(t, SnapshotBuffering, b.state)
}

// TestSnapshotBufferRenderOverstepHalfway is scenario S3: a paddle moving
// +1 unit per frame, rendered at overstep_fraction = 0.5 should land exactly
// halfway between the two bracketing snapshots.
func TestSnapshotBufferRenderOverstepHalfway(t *testing.T) {
	b := NewSnapshotBuffer()
	b.Push(paddleSnapshot(0, 10), time.Time{})
	b.Push(paddleSnapshot(1, 11), time.Time{})

	ws := b.RenderOverstep(0.5)
	require.Len(t, ws.Entities, 1)
	require.InDelta(t, 10.5, ws.Entities[0].Paddle.Pos.X, 1e-6)
}
