// Package config loads run settings for windyrl from a YAML file and
// WINDY_* environment variables.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"windy-gridworld-go/internal/engine"
)

type File struct {
	Grid engine.Config `yaml:"grid"`
	Run  Run           `yaml:"run"`
}

type Run struct {
	Episodes    int    `yaml:"episodes"`
	Seed        int64  `yaml:"seed"`
	MaxSteps    int    `yaml:"max_steps"`
	StepDelayMs int    `yaml:"step_delay_ms"`
	Policy      string `yaml:"policy"`
	Script      []int  `yaml:"script"`
}

func Default() File {
	return File{
		Grid: engine.DefaultConfig(),
		Run: Run{
			Episodes: 1,
			MaxSteps: engine.DefaultMaxSteps,
			Policy:   engine.PolicyRandom,
		},
	}
}

func Load(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	f, err := Parse(raw)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse checks raw against the run file schema and decodes it on top of
// Default(). Cross-field rules are left to Validate so later layers can
// still complete the settings.
func Parse(raw []byte) (File, error) {
	f := Default()
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return f, err
	}
	if doc == nil {
		return f, nil
	}
	if err := validateDocument(doc); err != nil {
		return f, err
	}
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return f, err
	}
	return f, nil
}

func validateDocument(doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config is not representable as JSON: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	return runSchema.Validate(v)
}

func (f File) Validate() error {
	if f.Run.Episodes < 0 {
		return fmt.Errorf("episodes must not be negative (got %d)", f.Run.Episodes)
	}
	if f.Run.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative (got %d)", f.Run.MaxSteps)
	}
	switch f.Run.Policy {
	case engine.PolicyRandom, "":
	case engine.PolicyScripted:
		if len(f.Run.Script) == 0 {
			return fmt.Errorf("policy %q needs a script", f.Run.Policy)
		}
	default:
		return fmt.Errorf("unknown policy %q", f.Run.Policy)
	}
	return nil
}

func (f File) RunConfig() engine.RunConfig {
	script := make([]engine.Action, len(f.Run.Script))
	for i, a := range f.Run.Script {
		script[i] = engine.Action(a)
	}
	return engine.RunConfig{
		Env:         f.Grid,
		Episodes:    f.Run.Episodes,
		Seed:        f.Run.Seed,
		MaxSteps:    f.Run.MaxSteps,
		StepDelayMs: f.Run.StepDelayMs,
		Policy:      f.Run.Policy,
		Script:      script,
	}
}

// ApplyEnv overrides f with any WINDY_* variables that lookup finds. It does
// not call Validate.
func ApplyEnv(f *File, lookup func(string) (string, bool)) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"WINDY_HEIGHT", &f.Grid.Height},
		{"WINDY_WIDTH", &f.Grid.Width},
		{"WINDY_EPISODES", &f.Run.Episodes},
		{"WINDY_MAX_STEPS", &f.Run.MaxSteps},
		{"WINDY_STEP_DELAY_MS", &f.Run.StepDelayMs},
	}
	for _, e := range ints {
		value, ok := lookup(e.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", e.key, err)
		}
		*e.dst = n
	}
	if value, ok := lookup("WINDY_SEED"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return fmt.Errorf("WINDY_SEED must be an integer: %w", err)
		}
		f.Run.Seed = n
	}
	if value, ok := lookup("WINDY_STAND_STILL"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("WINDY_STAND_STILL must be a boolean: %w", err)
		}
		f.Grid.StandStill = b
	}
	if value, ok := lookup("WINDY_POLICY"); ok {
		f.Run.Policy = strings.TrimSpace(value)
	}
	if value, ok := lookup("WINDY_SCRIPT"); ok {
		actions, err := ParseActions(value)
		if err != nil {
			return fmt.Errorf("WINDY_SCRIPT: %w", err)
		}
		f.Run.Script = make([]int, len(actions))
		for i, a := range actions {
			f.Run.Script[i] = int(a)
		}
	}
	return nil
}

// ParseActions parses a comma separated list of action numbers or names
// such as "1,1,down,left".
func ParseActions(s string) ([]engine.Action, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	actions := make([]engine.Action, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if n, err := strconv.Atoi(part); err == nil {
			actions = append(actions, engine.Action(n))
			continue
		}
		a, ok := actionNames[strings.ToLower(part)]
		if !ok {
			return nil, fmt.Errorf("unknown action %q", part)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

var actionNames = map[string]engine.Action{
	"up":    engine.ActionUp,
	"right": engine.ActionRight,
	"down":  engine.ActionDown,
	"left":  engine.ActionLeft,
	"stay":  engine.ActionStay,
}
