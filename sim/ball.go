package sim

// IntegrateBall advances a ball's position by one tick of deltaSeconds
// given its current velocity: p' = p + v*dt.
func IntegrateBall(b *Ball, deltaSeconds float32) {
	b.Pos = b.Pos.Add(b.Velocity.Scale(deltaSeconds))
}
