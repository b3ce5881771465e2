package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAction        = errors.New("invalid action")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrInvalidPosition      = errors.New("invalid position")
)

// Environment is what a driver needs from an episodic grid environment.
type Environment interface {
	Reset() Position
	Step(action Action) (Transition, error)
	ActionSpace() Discrete
	ObservationSpace() Tuple
}

var _ Environment = (*WindyGridworld)(nil)

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Info is the auxiliary record of a transition. It is always empty.
type Info struct{}

type Transition struct {
	Position   Position `json:"position"`
	Reward     int      `json:"reward"`
	Terminated bool     `json:"terminated"`
	Info       Info     `json:"info"`
}
