package entity

import "github.com/alexokonski/fixedtick/shared/geom"

// Kind discriminates the payload carried by a NetEntity.
type Kind uint8

const (
	KindPaddle Kind = iota
	KindBrick
	KindBall
	KindScore
)

func (k Kind) String() string {
	switch k {
	case KindPaddle:
		return "paddle"
	case KindBrick:
		return "brick"
	case KindBall:
		return "ball"
	case KindScore:
		return "score"
	default:
		return "unknown"
	}
}

type PaddleData struct {
	Pos         geom.Vec2
	PlayerIndex PlayerIndex
}

type BrickData struct {
	Pos geom.Vec2
}

type BallData struct {
	Pos         geom.Vec2
	Velocity    geom.Vec2
	PlayerIndex PlayerIndex
}

type ScoreData struct {
	Score uint32
}

// NetEntity is one entry of a WorldState snapshot. Exactly one of the *Data
// fields is meaningful, selected by Kind; this mirrors the wire tagged
// union without needing a Go interface per entity (there is nothing to
// dispatch on besides "which fields to encode/decode").
type NetEntity struct {
	NetID NetID
	Kind  Kind

	Paddle PaddleData
	Brick  BrickData
	Ball   BallData
	Score  ScoreData
}

func NewPaddleEntity(id NetID, d PaddleData) NetEntity {
	return NetEntity{NetID: id, Kind: KindPaddle, Paddle: d}
}

func NewBrickEntity(id NetID, d BrickData) NetEntity {
	return NetEntity{NetID: id, Kind: KindBrick, Brick: d}
}

func NewBallEntity(id NetID, d BallData) NetEntity {
	return NetEntity{NetID: id, Kind: KindBall, Ball: d}
}

func NewScoreEntity(d ScoreData) NetEntity {
	return NetEntity{NetID: ScoreNetID, Kind: KindScore, Score: d}
}

// WorldState is the full snapshot the server broadcasts each tick.
type WorldState struct {
	Frame    uint32
	Entities []NetEntity
}
