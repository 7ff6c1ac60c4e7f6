package models

import (
	"strings"
	"time"
)

// Direction is the decision a user makes on a candidate profile.
type Direction string

// Positive is true for directions that count toward a match.
// A superlike matches exactly like a plain like.
func (d Direction) Positive() bool {
	return d == DirectionLike || d == DirectionSuperlike
}

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	switch d {
	case DirectionPass, DirectionLike, DirectionSuperlike:
		return true
	}
	return false
}

// ParseDirection accepts the canonical names and the card gestures
// (left, right, up) sent by swipe clients.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pass", "left", "dislike":
		return DirectionPass, nil
	case "like", "right":
		return DirectionLike, nil
	case "superlike", "up":
		return DirectionSuperlike, nil
	}
	return "", NewValidationError("direction", "must be one of pass, like, superlike")
}

// SwipeDecision is the single stored decision of ActorID toward TargetID.
type SwipeDecision struct {
	ActorID   string    `json:"actorId" validate:"required"`
	TargetID  string    `json:"targetId" validate:"required"`
	Direction Direction `json:"direction" validate:"required,oneof=pass like superlike"`
	DecidedAt time.Time `json:"decidedAt" validate:"required"`
}
