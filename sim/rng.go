package sim

import (
	"math/rand"

	"github.com/alexokonski/fixedtick/shared/netconst"
)

// RNG is a seeded pseudo-random stream. The server owns one instance for
// paddle spawn X; the transport layer owns a separate instance for latency
// jitter simulation. Keeping them separate means enabling latency
// simulation in a test doesn't perturb the paddle-spawn sequence.
type RNG struct {
	r *rand.Rand
}

func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewSource(seed))}
}

// PaddleSpawnX returns a uniformly random X within the paddle's legal
// bounds, for spawning a newly connected player's paddle.
func (g *RNG) PaddleSpawnX() float32 {
	lo, hi := float32(netconst.PaddleLeftBound), float32(netconst.PaddleRightBound)
	return lo + g.r.Float32()*(hi-lo)
}

// Float64 exposes the underlying uniform sample for callers (e.g. loss-chance
// rolls) that don't want a full NormFloat64.
func (g *RNG) Float64() float64 {
	return g.r.Float64()
}

// NormFloat64 returns a standard-normal sample, used to draw latency jitter.
func (g *RNG) NormFloat64() float64 {
	return g.r.NormFloat64()
}
