package sim

import "github.com/alexokonski/fixedtick/shared/geom"

// Side is which face of an AABB a ball's closest point landed on.
type Side uint8

const (
	SideLeft Side = iota
	SideRight
	SideTop
	SideBottom
)

// AABB is an axis-aligned collider: Center plus half-extents on each axis.
type AABB struct {
	Center      geom.Vec2
	HalfExtents geom.Vec2
}

// ClosestPoint returns the point on the AABB closest to p.
func (a AABB) ClosestPoint(p geom.Vec2) geom.Vec2 {
	return geom.New(
		geom.ClampF(p.X, a.Center.X-a.HalfExtents.X, a.Center.X+a.HalfExtents.X),
		geom.ClampF(p.Y, a.Center.Y-a.HalfExtents.Y, a.Center.Y+a.HalfExtents.Y),
	)
}

// Intersects reports whether a circle of the given center/radius overlaps
// the AABB.
func (a AABB) Intersects(center geom.Vec2, radius float32) bool {
	closest := a.ClosestPoint(center)
	d := center.Sub(closest)
	return d.MagnitudeSq() <= radius*radius
}

// BallCollision checks a ball (as a bounding circle) against an AABB and,
// if they intersect, reports which side of the AABB the ball hit: the axis
// of larger absolute offset from the AABB's closest point to the ball
// center.
func BallCollision(ballCenter geom.Vec2, ballRadius float32, box AABB) (Side, bool) {
	if !box.Intersects(ballCenter, ballRadius) {
		return 0, false
	}
	closest := box.ClosestPoint(ballCenter)
	offset := ballCenter.Sub(closest)
	if absF(offset.X) > absF(offset.Y) {
		if offset.X < 0 {
			return SideLeft, true
		}
		return SideRight, true
	}
	if offset.Y > 0 {
		return SideTop, true
	}
	return SideBottom, true
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Collider is one obstacle a ball can bounce off during a single tick's
// frozen snapshot: a brick (deletable, scores) or anything else (paddle,
// wall — not deletable, no score).
type Collider struct {
	Box     AABB
	IsBrick bool
	// BrickIndex is only meaningful when IsBrick is true; it's the index
	// into the caller's brick slice, used to report which bricks to remove.
	BrickIndex int
}

// CollisionResult reports the outcome of resolving one ball against a
// frozen set of colliders for a single tick.
type CollisionResult struct {
	BricksHit []int // indices into the colliders slice's brick entries, by BrickIndex
}

// ResolveBallCollisions checks ball against every collider in order,
// skipping any brick collider whose BrickIndex is already in
// alreadyDeleted (so a brick destroyed earlier this tick by another ball
// doesn't get hit twice). It mutates ball.Velocity in place, reflecting on
// an axis only when the ball is moving into the obstacle on that axis
// (prevents sticking), and returns which brick indices were newly hit.
func ResolveBallCollisions(ball *Ball, radius float32, colliders []Collider, alreadyDeleted map[int]bool) []int {
	var hit []int
	for _, c := range colliders {
		if c.IsBrick && alreadyDeleted[c.BrickIndex] {
			continue
		}
		side, ok := BallCollision(ball.Pos, radius, c.Box)
		if !ok {
			continue
		}

		if c.IsBrick {
			hit = append(hit, c.BrickIndex)
			if alreadyDeleted != nil {
				alreadyDeleted[c.BrickIndex] = true
			}
		}

		var reflectX, reflectY bool
		switch side {
		case SideLeft:
			reflectX = ball.Velocity.X > 0
		case SideRight:
			reflectX = ball.Velocity.X < 0
		case SideTop:
			reflectY = ball.Velocity.Y < 0
		case SideBottom:
			reflectY = ball.Velocity.Y > 0
		}
		if reflectX {
			ball.Velocity.X = -ball.Velocity.X
		}
		if reflectY {
			ball.Velocity.Y = -ball.Velocity.Y
		}
	}
	return hit
}
