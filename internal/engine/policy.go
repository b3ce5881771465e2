package engine

import "math/rand"

// Policy picks the next action for a driver. It does not learn.
type Policy interface {
	Act(state Position) Action
	// Reset is called at the start of every episode.
	Reset()
}

type randomPolicy struct {
	rng   *rand.Rand
	space Discrete
}

// NewRandomPolicy samples actions uniformly from space.
func NewRandomPolicy(rng *rand.Rand, space Discrete) Policy {
	return &randomPolicy{rng: rng, space: space}
}

func (p *randomPolicy) Act(Position) Action {
	return Action(p.space.Sample(p.rng))
}

func (p *randomPolicy) Reset() {}

// ScriptedPolicy replays a fixed action sequence from the start of each
// episode. Callers check Done before Act; a used up script yields ActionUp.
type ScriptedPolicy struct {
	script []Action
	next   int
}

func NewScriptedPolicy(script []Action) *ScriptedPolicy {
	copied := make([]Action, len(script))
	copy(copied, script)
	return &ScriptedPolicy{script: copied}
}

func (p *ScriptedPolicy) Act(Position) Action {
	if p.Done() {
		return ActionUp
	}
	a := p.script[p.next]
	p.next++
	return a
}

func (p *ScriptedPolicy) Done() bool {
	return p.next >= len(p.script)
}

func (p *ScriptedPolicy) Reset() {
	p.next = 0
}
