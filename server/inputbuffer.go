package server

import (
	"time"

	"github.com/alexokonski/fixedtick/shared/netconst"
	"github.com/alexokonski/fixedtick/shared/wire"
)

// InputState is the per-connection jitter buffer's state.
type InputState uint8

const (
	StateBuffering InputState = iota
	StatePlaying
)

type receivedInput struct {
	data         wire.PlayerInputData
	timeReceived time.Time
}

// InputBuffer absorbs jitter in a client's input arrival by delaying
// playback until a target buffer depth has accumulated, then draining in
// FIFO order, at least one input per tick, faster than one-per-tick
// whenever the queue has grown past BUFFER_LEN (catching back up instead of
// falling permanently behind).
type InputBuffer struct {
	state InputState
	queue []receivedInput
}

func NewInputBuffer() *InputBuffer {
	return &InputBuffer{state: StateBuffering}
}

func (b *InputBuffer) State() InputState {
	return b.state
}

func (b *InputBuffer) Len() int {
	return len(b.queue)
}

// Push appends a newly arrived input to the tail of the FIFO. Arrivals are
// never reordered by sequence, only kept in arrival order.
func (b *InputBuffer) Push(data wire.PlayerInputData, now time.Time) {
	b.queue = append(b.queue, receivedInput{data: data, timeReceived: now})
}

// ConsumeResult reports what a single tick's call to Consume did.
type ConsumeResult struct {
	Consumed     []wire.PlayerInputData
	Starved      bool // queue went empty while Playing (Playing -> Buffering)
	StartedPlaying bool
}

// Consume runs one tick of the state machine and returns the inputs that
// should be applied to the simulation this tick.
func (b *InputBuffer) Consume(now time.Time) ConsumeResult {
	switch b.state {
	case StateBuffering:
		if len(b.queue) == 0 {
			return ConsumeResult{}
		}
		if now.Sub(b.queue[0].timeReceived).Seconds() < netconst.BufferDelayS {
			return ConsumeResult{}
		}
		b.state = StatePlaying
		return b.playOneTick(ConsumeResult{StartedPlaying: true})

	case StatePlaying:
		if len(b.queue) == 0 {
			b.state = StateBuffering
			return ConsumeResult{Starved: true}
		}
		return b.playOneTick(ConsumeResult{})

	default:
		return ConsumeResult{}
	}
}

func (b *InputBuffer) playOneTick(result ConsumeResult) ConsumeResult {
	bufferLen := netconst.BufferLen()

	// Consume at least one input.
	result.Consumed = append(result.Consumed, b.queue[0].data)
	b.queue = b.queue[1:]

	// Keep draining while the buffer has grown beyond target, to catch up.
	for len(b.queue) >= bufferLen {
		result.Consumed = append(result.Consumed, b.queue[0].data)
		b.queue = b.queue[1:]
	}
	return result
}
