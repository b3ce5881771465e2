package engine

import "fmt"

const (
	DefaultHeight = 7
	DefaultWidth  = 10

	stepReward = -1
)

var (
	startPosition = Position{Row: 3, Col: 0}
	goalPosition  = Position{Row: 3, Col: 7}
)

// Action indexes the displacement table of a WindyGridworld.
type Action int

const (
	ActionUp Action = iota
	ActionRight
	ActionDown
	ActionLeft
	ActionStay
)

func (a Action) String() string {
	switch a {
	case ActionUp:
		return "up"
	case ActionRight:
		return "right"
	case ActionDown:
		return "down"
	case ActionLeft:
		return "left"
	case ActionStay:
		return "stay"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

type move struct {
	dRow, dCol int
}

var baseMoves = [...]move{
	ActionUp:    {dRow: -1},
	ActionRight: {dCol: 1},
	ActionDown:  {dRow: 1},
	ActionLeft:  {dCol: -1},
}

// Config sizes a WindyGridworld. Zero dimensions take the defaults.
type Config struct {
	Height     int  `json:"height" yaml:"height"`
	Width      int  `json:"width" yaml:"width"`
	StandStill bool `json:"standStill" yaml:"stand_still"`
}

func DefaultConfig() Config {
	return Config{Height: DefaultHeight, Width: DefaultWidth}
}

// WindyGridworld is the windy gridworld: every step first applies the wind of
// the current column, then the chosen move, then clamps to the grid.
// An instance is not safe for concurrent use.
type WindyGridworld struct {
	rows, cols int
	standStill bool
	moves      []move
	currRow    int
	currCol    int
}

func NewWindyGridworld(cfg Config) (*WindyGridworld, error) {
	if cfg.Height == 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.Width == 0 {
		cfg.Width = DefaultWidth
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	moves := make([]move, 0, len(baseMoves)+1)
	moves = append(moves, baseMoves[:]...)
	if cfg.StandStill {
		moves = append(moves, move{})
	}
	g := &WindyGridworld{
		rows:       cfg.Height,
		cols:       cfg.Width,
		standStill: cfg.StandStill,
		moves:      moves,
	}
	g.Reset()
	return g, nil
}

func (c Config) validate() error {
	if c.Height <= 0 || c.Width <= 0 {
		return fmt.Errorf("%w: grid %dx%d must be positive", ErrInvalidConfiguration, c.Height, c.Width)
	}
	for _, p := range []Position{startPosition, goalPosition} {
		if p.Row >= c.Height || p.Col >= c.Width {
			return fmt.Errorf("%w: grid %dx%d does not contain cell %s", ErrInvalidConfiguration, c.Height, c.Width, p)
		}
	}
	return nil
}

func (g *WindyGridworld) Reset() Position {
	g.currRow = startPosition.Row
	g.currCol = startPosition.Col
	return g.Position()
}

func (g *WindyGridworld) Step(action Action) (Transition, error) {
	if !g.ActionSpace().Contains(int(action)) {
		return Transition{}, fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidAction, int(action), len(g.moves))
	}
	row, col := g.currRow-Wind(g.currCol), g.currCol
	m := g.moves[action]
	row, col = g.clamp(row+m.dRow, col+m.dCol)
	g.currRow = row
	g.currCol = col
	pos := g.Position()
	return Transition{
		Position:   pos,
		Reward:     stepReward,
		Terminated: pos == goalPosition,
	}, nil
}

// Wind returns how many rows the wind in col pushes the agent up.
func Wind(col int) int {
	switch col {
	case 3, 4, 5, 8:
		return 1
	case 6, 7:
		return 2
	}
	return 0
}

func (g *WindyGridworld) clamp(row, col int) (int, int) {
	if row < 0 {
		row = 0
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	if col < 0 {
		col = 0
	}
	if col >= g.cols {
		col = g.cols - 1
	}
	return row, col
}

// SetPosition places the agent directly, bypassing the dynamics.
func (g *WindyGridworld) SetPosition(p Position) error {
	if !g.ObservationSpace().Contains(p) {
		return fmt.Errorf("%w: %s outside %dx%d grid", ErrInvalidPosition, p, g.rows, g.cols)
	}
	g.currRow = p.Row
	g.currCol = p.Col
	return nil
}

func (g *WindyGridworld) Position() Position {
	return Position{Row: g.currRow, Col: g.currCol}
}

func (g *WindyGridworld) Height() int      { return g.rows }
func (g *WindyGridworld) Width() int       { return g.cols }
func (g *WindyGridworld) StandStill() bool { return g.standStill }
func (g *WindyGridworld) Start() Position  { return startPosition }
func (g *WindyGridworld) Goal() Position   { return goalPosition }

func (g *WindyGridworld) ActionSpace() Discrete {
	return Discrete{N: len(g.moves)}
}

func (g *WindyGridworld) ObservationSpace() Tuple {
	return Tuple{Rows: Discrete{N: g.rows}, Cols: Discrete{N: g.cols}}
}
