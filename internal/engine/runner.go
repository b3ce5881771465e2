package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusRunning         = "running"
	StatusEpisodeComplete = "episode_complete"
	StatusDone            = "done"
	StatusCancelled       = "cancelled"
)

const (
	PolicyRandom   = "random"
	PolicyScripted = "scripted"
)

const (
	OutcomeTerminated = "terminated"
	OutcomeTruncated  = "truncated"
)

const DefaultMaxSteps = 1000

type RunConfig struct {
	Env         Config   `json:"env"`
	Episodes    int      `json:"episodes"`
	Seed        int64    `json:"seed"`
	MaxSteps    int      `json:"maxSteps"`
	StepDelayMs int      `json:"stepDelayMs"`
	Policy      string   `json:"policy"`
	Script      []Action `json:"script,omitempty"`
}

type Snapshot struct {
	RunID             string
	Step              int
	Episode           int
	EpisodeSteps      int
	EpisodeReward     int
	Transition        Transition
	Outcome           string
	VisitMap          [][]int
	SuccessCount      int
	EpisodesCompleted int
	TotalReward       int
	TotalSteps        int
	Config            RunConfig
	Status            string
}

// Runner rolls out episodes of a WindyGridworld under a fixed policy and
// streams what happens as Snapshots.
type Runner struct {
	cfg               RunConfig
	runID             string
	env               *WindyGridworld
	policy            Policy
	visits            *visitTable
	logger            *slog.Logger
	registerer        prometheus.Registerer
	metrics           *runnerMetrics
	step              int
	successCount      int
	episodesCompleted int
	totalReward       int
	totalSteps        int
}

type Option func(*Runner)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRegisterer registers the runner's collectors on reg instead of a
// private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Runner) {
		if reg != nil {
			r.registerer = reg
		}
	}
}

func NewRunner(cfg RunConfig, opts ...Option) (*Runner, error) {
	if cfg.Policy == "" {
		cfg.Policy = PolicyRandom
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.StepDelayMs < 0 {
		cfg.StepDelayMs = 0
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	env, err := NewWindyGridworld(cfg.Env)
	if err != nil {
		return nil, err
	}
	cfg.Env = Config{Height: env.Height(), Width: env.Width(), StandStill: env.StandStill()}

	rng := rand.New(rand.NewSource(cfg.Seed))
	var policy Policy
	switch cfg.Policy {
	case PolicyRandom:
		policy = NewRandomPolicy(rng, env.ActionSpace())
	case PolicyScripted:
		if len(cfg.Script) == 0 {
			return nil, fmt.Errorf("scripted policy needs at least one action")
		}
		space := env.ActionSpace()
		for i, a := range cfg.Script {
			if !space.Contains(int(a)) {
				return nil, fmt.Errorf("script[%d]: %w: %d not in [0,%d)", i, ErrInvalidAction, int(a), space.N)
			}
		}
		policy = NewScriptedPolicy(cfg.Script)
	default:
		return nil, fmt.Errorf("unknown policy %q", cfg.Policy)
	}

	r := &Runner{
		cfg:    cfg,
		runID:  uuid.NewString(),
		env:    env,
		policy: policy,
		visits: newVisitTable(env.Height(), env.Width()),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registerer == nil {
		r.registerer = prometheus.NewRegistry()
	}
	if r.metrics, err = newRunnerMetrics(r.registerer); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	return r, nil
}

func (r *Runner) RunID() string {
	return r.runID
}

// Config returns the configuration after defaults were applied.
func (r *Runner) Config() RunConfig {
	cfg := r.cfg
	cfg.Script = append([]Action(nil), r.cfg.Script...)
	return cfg
}

// Run plays cfg.Episodes episodes in a goroutine. The channel is closed after
// the final StatusDone or StatusCancelled snapshot; callers must drain it.
func (r *Runner) Run(ctx context.Context) <-chan Snapshot {
	out := make(chan Snapshot)
	go func() {
		defer close(out)
		if r.cfg.Episodes <= 0 {
			return
		}
		for episode := 1; episode <= r.cfg.Episodes; episode++ {
			select {
			case <-ctx.Done():
				out <- r.snapshot(StatusCancelled, episode, episodeProgress{})
				return
			default:
			}
			if !r.runEpisode(ctx, episode, out) {
				return
			}
		}
		r.logger.Info("run finished",
			"run_id", r.runID,
			"episodes", r.episodesCompleted,
			"successes", r.successCount,
			"total_steps", r.totalSteps,
			"total_reward", r.totalReward)
		out <- r.snapshot(StatusDone, r.cfg.Episodes, episodeProgress{})
	}()
	return out
}

type episodeProgress struct {
	steps   int
	reward  int
	last    Transition
	outcome string
}

type exhaustible interface {
	Done() bool
}

// runEpisode reports false if ctx was cancelled mid-episode.
func (r *Runner) runEpisode(ctx context.Context, episode int, out chan<- Snapshot) bool {
	state := r.env.Reset()
	r.policy.Reset()
	r.visits.record(state)
	progress := episodeProgress{outcome: OutcomeTruncated}
	for progress.steps < r.cfg.MaxSteps {
		if ex, ok := r.policy.(exhaustible); ok && ex.Done() {
			break
		}
		select {
		case <-ctx.Done():
			out <- r.snapshot(StatusCancelled, episode, progress)
			return false
		default:
		}
		action := r.policy.Act(state)
		tr, err := r.env.Step(action)
		if err != nil {
			r.logger.Error("step failed", "run_id", r.runID, "episode", episode, "err", err)
			break
		}
		progress.steps++
		progress.reward += tr.Reward
		progress.last = tr
		r.step++
		r.visits.record(tr.Position)
		r.metrics.steps.Inc()
		out <- r.snapshot(StatusRunning, episode, progress)
		if r.cfg.StepDelayMs > 0 {
			select {
			case <-ctx.Done():
				out <- r.snapshot(StatusCancelled, episode, progress)
				return false
			case <-time.After(time.Duration(r.cfg.StepDelayMs) * time.Millisecond):
			}
		}
		if tr.Terminated {
			progress.outcome = OutcomeTerminated
			break
		}
		state = tr.Position
	}
	if progress.outcome == OutcomeTerminated {
		r.successCount++
	}
	r.totalReward += progress.reward
	r.totalSteps += progress.steps
	r.episodesCompleted++
	r.metrics.observeEpisode(progress.outcome, progress.steps)
	r.logger.Debug("episode complete",
		"run_id", r.runID,
		"episode", episode,
		"outcome", progress.outcome,
		"steps", progress.steps,
		"reward", progress.reward)
	out <- r.snapshot(StatusEpisodeComplete, episode, progress)
	return true
}

func (r *Runner) snapshot(status string, episode int, p episodeProgress) Snapshot {
	var outcome string
	if status == StatusEpisodeComplete {
		outcome = p.outcome
	}
	return Snapshot{
		RunID:             r.runID,
		Step:              r.step,
		Episode:           episode,
		EpisodeSteps:      p.steps,
		EpisodeReward:     p.reward,
		Transition:        p.last,
		Outcome:           outcome,
		VisitMap:          r.visits.cloneData(),
		SuccessCount:      r.successCount,
		EpisodesCompleted: r.episodesCompleted,
		TotalReward:       r.totalReward,
		TotalSteps:        r.totalSteps,
		Config:            r.Config(),
		Status:            status,
	}
}
