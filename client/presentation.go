package client

import "github.com/alexokonski/fixedtick/shared/entity"

// Sink is the rendering/input boundary this package stops at: something
// that can draw a world state and report the local player's current key
// mask. Windowing, input polling, and drawing are out of scope here; Run
// only needs something that implements this.
type Sink interface {
	Render(ws entity.WorldState)
	KeyMask() uint8
}
