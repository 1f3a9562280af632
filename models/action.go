package models

import (
	"errors"
	"fmt"
)

// Direction is a unit step on the grid. Y grows downward.
type Direction struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

var (
	Up    = Direction{DX: 0, DY: -1}
	Down  = Direction{DX: 0, DY: 1}
	Left  = Direction{DX: -1, DY: 0}
	Right = Direction{DX: 1, DY: 0}
)

// Name returns UP, DOWN, LEFT, RIGHT or "" for a non-cardinal vector.
func (d Direction) Name() string {
	switch d {
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	}
	return ""
}

// Action is one of the nine tokens accepted at the boundary.
type Action string

const (
	MoveUp    Action = "MOVE_UP"
	MoveDown  Action = "MOVE_DOWN"
	MoveLeft  Action = "MOVE_LEFT"
	MoveRight Action = "MOVE_RIGHT"

	ShootUp    Action = "SHOOT_UP"
	ShootDown  Action = "SHOOT_DOWN"
	ShootLeft  Action = "SHOOT_LEFT"
	ShootRight Action = "SHOOT_RIGHT"

	Wait Action = "WAIT"
)

// AllActions is the fixed action set in mask/encoder order.
var AllActions = []Action{
	MoveUp, MoveDown, MoveLeft, MoveRight,
	ShootUp, ShootDown, ShootLeft, ShootRight,
	Wait,
}

var ErrInvalidAction = errors.New("invalid action")

// ParseAction validates a boundary token.
func ParseAction(token string) (Action, error) {
	a := Action(token)
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, token)
	}
	return a, nil
}

func (a Action) Valid() bool {
	for _, v := range AllActions {
		if a == v {
			return true
		}
	}
	return false
}

func (a Action) IsMove() bool {
	return a == MoveUp || a == MoveDown || a == MoveLeft || a == MoveRight
}

func (a Action) IsShoot() bool {
	return a == ShootUp || a == ShootDown || a == ShootLeft || a == ShootRight
}

// Direction returns the step vector of a move or shoot action. WAIT has none.
func (a Action) Direction() (Direction, bool) {
	switch a {
	case MoveUp, ShootUp:
		return Up, true
	case MoveDown, ShootDown:
		return Down, true
	case MoveLeft, ShootLeft:
		return Left, true
	case MoveRight, ShootRight:
		return Right, true
	}
	return Direction{}, false
}

// Index returns the slot of a in AllActions, or -1.
func (a Action) Index() int {
	for i, v := range AllActions {
		if a == v {
			return i
		}
	}
	return -1
}
