package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// optimalPath reaches the goal from the start cell in 15 steps.
var optimalPath = []Action{
	ActionRight, ActionRight, ActionRight, ActionRight, ActionRight,
	ActionRight, ActionRight, ActionRight, ActionRight,
	ActionDown, ActionDown, ActionDown, ActionDown,
	ActionLeft, ActionLeft,
}

func newDefaultEnv(t *testing.T, standStill bool) *WindyGridworld {
	t.Helper()
	env, err := NewWindyGridworld(Config{StandStill: standStill})
	require.NoError(t, err)
	return env
}

func TestNewWindyGridworldDefaults(t *testing.T) {
	env := newDefaultEnv(t, false)

	assert.Equal(t, DefaultHeight, env.Height())
	assert.Equal(t, DefaultWidth, env.Width())
	assert.False(t, env.StandStill())
	assert.Equal(t, Position{Row: 3, Col: 0}, env.Position())
	assert.Equal(t, Position{Row: 3, Col: 0}, env.Start())
	assert.Equal(t, Position{Row: 3, Col: 7}, env.Goal())
	assert.Equal(t, Discrete{N: 4}, env.ActionSpace())
	assert.Equal(t, Tuple{Rows: Discrete{N: 7}, Cols: Discrete{N: 10}}, env.ObservationSpace())

	standStill := newDefaultEnv(t, true)
	assert.Equal(t, Discrete{N: 5}, standStill.ActionSpace())
}

func TestNewWindyGridworldRejectsSmallGrids(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{name: "smallest valid", cfg: Config{Height: 4, Width: 8}, ok: true},
		{name: "large", cfg: Config{Height: 20, Width: 30}, ok: true},
		{name: "goal row outside", cfg: Config{Height: 3, Width: 10}},
		{name: "goal column outside", cfg: Config{Height: 7, Width: 7}},
		{name: "negative height", cfg: Config{Height: -1, Width: 10}},
		{name: "negative width", cfg: Config{Height: 7, Width: -4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := NewWindyGridworld(tt.cfg)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, Position{Row: 3, Col: 0}, env.Position())
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.Nil(t, env)
		})
	}
}

func TestResetReturnsStart(t *testing.T) {
	env := newDefaultEnv(t, false)
	for _, a := range optimalPath[:5] {
		_, err := env.Step(a)
		require.NoError(t, err)
	}
	assert.Equal(t, Position{Row: 3, Col: 0}, env.Reset())
	assert.Equal(t, Position{Row: 3, Col: 0}, env.Position())
}

func TestWind(t *testing.T) {
	want := []int{0, 0, 0, 1, 1, 1, 2, 2, 1, 0}
	for col, w := range want {
		assert.Equal(t, w, Wind(col), "column %d", col)
	}
	assert.Equal(t, 0, Wind(10))
	assert.Equal(t, 0, Wind(-1))
}

func TestStepTransitions(t *testing.T) {
	tests := []struct {
		name       string
		standStill bool
		from       Position
		action     Action
		want       Position
		terminated bool
	}{
		{name: "strong wind then right", from: Position{3, 6}, action: ActionRight, want: Position{1, 7}},
		{name: "strong wind then up", from: Position{4, 7}, action: ActionUp, want: Position{1, 7}},
		{name: "weak wind then right", from: Position{3, 8}, action: ActionRight, want: Position{2, 9}},
		{name: "no wind", from: Position{3, 0}, action: ActionRight, want: Position{3, 1}},
		{name: "wind lifts into goal", from: Position{6, 7}, action: ActionUp, want: Position{3, 7}, terminated: true},
		{name: "left into goal", from: Position{4, 8}, action: ActionLeft, want: Position{3, 7}, terminated: true},
		{name: "clamp top", from: Position{0, 0}, action: ActionUp, want: Position{0, 0}},
		{name: "clamp wind above top", from: Position{0, 6}, action: ActionLeft, want: Position{0, 5}},
		{name: "clamp right edge", from: Position{6, 9}, action: ActionRight, want: Position{6, 9}},
		{name: "clamp bottom", from: Position{6, 0}, action: ActionDown, want: Position{6, 0}},
		{name: "clamp left edge", from: Position{2, 0}, action: ActionLeft, want: Position{2, 0}},
		{name: "down against wind", from: Position{2, 4}, action: ActionDown, want: Position{2, 4}},
		{name: "stepping past the goal", from: Position{3, 7}, action: ActionRight, want: Position{1, 8}},
		{name: "stay keeps wind", standStill: true, from: Position{3, 3}, action: ActionStay, want: Position{2, 3}},
		{name: "stay without wind", standStill: true, from: Position{3, 0}, action: ActionStay, want: Position{3, 0}},
		{name: "stay blown into goal", standStill: true, from: Position{5, 7}, action: ActionStay, want: Position{3, 7}, terminated: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newDefaultEnv(t, tt.standStill)
			require.NoError(t, env.SetPosition(tt.from))

			tr, err := env.Step(tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tr.Position)
			assert.Equal(t, tt.want, env.Position())
			assert.Equal(t, -1, tr.Reward)
			assert.Equal(t, tt.terminated, tr.Terminated)
			assert.Equal(t, Info{}, tr.Info)
		})
	}
}

func TestStepRejectsInvalidAction(t *testing.T) {
	tests := []struct {
		name       string
		standStill bool
		action     Action
	}{
		{name: "negative", action: -1},
		{name: "stay disabled", action: ActionStay},
		{name: "past stay", standStill: true, action: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newDefaultEnv(t, tt.standStill)
			require.NoError(t, env.SetPosition(Position{Row: 2, Col: 4}))

			_, err := env.Step(tt.action)
			assert.ErrorIs(t, err, ErrInvalidAction)
			assert.Equal(t, Position{Row: 2, Col: 4}, env.Position())
		})
	}
}

func TestSetPositionRejectsOutsideGrid(t *testing.T) {
	env := newDefaultEnv(t, false)
	for _, p := range []Position{{-1, 0}, {0, -1}, {7, 0}, {0, 10}} {
		assert.ErrorIs(t, env.SetPosition(p), ErrInvalidPosition, "position %s", p)
	}
	assert.Equal(t, Position{Row: 3, Col: 0}, env.Position())
}

func TestOptimalPathReachesGoal(t *testing.T) {
	env := newDefaultEnv(t, false)
	want := []Position{
		{3, 1}, {3, 2}, {3, 3}, {2, 4}, {1, 5}, {0, 6}, {0, 7}, {0, 8}, {0, 9},
		{1, 9}, {2, 9}, {3, 9}, {4, 9},
		{4, 8}, {3, 7},
	}
	require.Len(t, want, len(optimalPath))

	total := 0
	for i, a := range optimalPath {
		tr, err := env.Step(a)
		require.NoError(t, err)
		assert.Equal(t, want[i], tr.Position, "step %d", i+1)
		assert.Equal(t, i == len(optimalPath)-1, tr.Terminated, "step %d", i+1)
		total += tr.Reward
	}
	assert.Equal(t, -15, total)
}

func TestSevenRightsDoNotReachGoal(t *testing.T) {
	env := newDefaultEnv(t, false)
	var tr Transition
	for i := 0; i < 7; i++ {
		var err error
		tr, err = env.Step(ActionRight)
		require.NoError(t, err)
		assert.False(t, tr.Terminated)
	}
	assert.Equal(t, Position{Row: 0, Col: 7}, tr.Position)
}

func TestRandomWalkInvariants(t *testing.T) {
	configs := []Config{
		{},
		{StandStill: true},
		{Height: 4, Width: 8},
		{Height: 12, Width: 15, StandStill: true},
	}
	for _, cfg := range configs {
		env, err := NewWindyGridworld(cfg)
		require.NoError(t, err)
		rng := rand.New(rand.NewSource(42))
		space := env.ObservationSpace()
		for i := 0; i < 2000; i++ {
			tr, err := env.Step(Action(env.ActionSpace().Sample(rng)))
			require.NoError(t, err)
			require.True(t, space.Contains(tr.Position), "position %s outside %dx%d", tr.Position, env.Height(), env.Width())
			require.Equal(t, -1, tr.Reward)
			require.Equal(t, tr.Position == env.Goal(), tr.Terminated)
			if tr.Terminated {
				env.Reset()
			}
		}
	}
}

func TestInstancesAreIndependent(t *testing.T) {
	a := newDefaultEnv(t, false)
	b := newDefaultEnv(t, false)
	_, err := a.Step(ActionRight)
	require.NoError(t, err)
	assert.Equal(t, Position{Row: 3, Col: 1}, a.Position())
	assert.Equal(t, Position{Row: 3, Col: 0}, b.Position())
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "up", ActionUp.String())
	assert.Equal(t, "stay", ActionStay.String())
	assert.Equal(t, "action(9)", Action(9).String())
}
