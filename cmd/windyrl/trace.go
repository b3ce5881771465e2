package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"windy-gridworld-go/internal/config"
	"windy-gridworld-go/internal/engine"
)

func runTrace(args []string) error {
	fs := flag.NewFlagSet("trace", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	actionsFlag := fs.String("actions", "", "comma separated actions, e.g. 1,1,down,left")
	height := fs.Int("height", engine.DefaultHeight, "grid height")
	width := fs.Int("width", engine.DefaultWidth, "grid width")
	standStill := fs.Bool("stand-still", false, "enable the stand-still action")

	if err := fs.Parse(args); err != nil {
		return err
	}
	actions, err := config.ParseActions(*actionsFlag)
	if err != nil {
		return err
	}
	if len(actions) == 0 {
		return errors.New("trace needs -actions")
	}

	env, err := engine.NewWindyGridworld(engine.Config{Height: *height, Width: *width, StandStill: *standStill})
	if err != nil {
		return err
	}
	return trace(os.Stdout, env, actions)
}

// trace steps env from its start cell and stops at the first terminal
// transition.
func trace(w io.Writer, env *engine.WindyGridworld, actions []engine.Action) error {
	pos := env.Reset()
	fmt.Fprintf(w, "start %s\n", pos)
	total := 0
	for i, a := range actions {
		tr, err := env.Step(a)
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		total += tr.Reward
		fmt.Fprintf(w, "step %d: %s wind=%d %s -> %s reward=%d terminated=%t\n",
			i+1, pos, engine.Wind(pos.Col), a, tr.Position, tr.Reward, tr.Terminated)
		pos = tr.Position
		if tr.Terminated {
			break
		}
	}
	fmt.Fprintf(w, "total reward=%d\n", total)
	return nil
}
