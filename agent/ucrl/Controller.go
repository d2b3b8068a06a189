// Package ucrl implements an episodic controller for learning in
// unknown, finite, average-reward MDPs with the optimism in the face of
// uncertainty principle.
//
// The controller keeps visitation counts of each (state, action) pair.
// At the start of each episode it builds confidence sets around the
// empirical estimates of the MDP, plans with Extended Value Iteration
// and then follows the resulting optimistic policy until the number of
// visits of some (state, action) pair in the episode reaches the number
// of visits of the pair before the episode (the doubling trick).
//
// UCRL, SCAL and SCAL+ share the same control loop and differ only in
// their planning Strategy.
package ucrl

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/samuelfneumann/ucrl/agent"
	"github.com/samuelfneumann/ucrl/confidence"
	"github.com/samuelfneumann/ucrl/environment"
	"github.com/samuelfneumann/ucrl/evi"
	"github.com/samuelfneumann/ucrl/experiment/checkpointer"
	"github.com/samuelfneumann/ucrl/experiment/tracker"
	"github.com/samuelfneumann/ucrl/model"
	"github.com/samuelfneumann/ucrl/timestep"
	"github.com/samuelfneumann/ucrl/utils/intutils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// Controller is an episodic optimistic agent. It owns the counts and
// the Session of a run.
//
// A Controller is not safe for concurrent use.
type Controller struct {
	env          environment.Environment
	stateActions [][]int
	config       Config
	strategy     Strategy
	rMax         float64
	logger       *zap.Logger

	counts  *model.Counts
	solver  *evi.Solver
	policy  *model.Policy
	session *Session

	// step is the last TimeStep observed
	step    timestep.TimeStep
	started bool

	// planned is false until the first episode starts, and firstStep is
	// true until the first step of the current episode is executed
	planned   bool
	firstStep bool

	// diverged holds the *evi.DivergenceError that aborted the run, after
	// which the Controller takes no more steps
	diverged error

	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer
}

// New returns a new Controller learning in env. Regret is measured
// against referenceGain, usually the optimal gain of env. A nil logger
// disables logging.
func New(env environment.Environment, c Config, referenceGain float64,
	logger *zap.Logger) (*Controller, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	strategy, err := NewStrategy(c.Type(), c.Bound)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	stateActions := env.StateActions()
	if len(stateActions) != env.NumStates() {
		return nil, fmt.Errorf("new: %v action sets for %v states",
			len(stateActions), env.NumStates())
	}
	for s, actions := range stateActions {
		if len(actions) == 0 {
			return nil, fmt.Errorf("new: state %v has no legal actions", s)
		}
	}

	rMax := c.RMax
	if rMax == 0 {
		rMax = 1
		if r, ok := env.(interface{ RMax() float64 }); ok {
			rMax = r.RMax()
		}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Controller{
		env:          env,
		stateActions: stateActions,
		config:       c,
		strategy:     strategy,
		rMax:         rMax,
		logger:       logger.With(zap.Stringer("strategy", strategy)),
		counts:       model.NewCounts(stateActions),
		solver:       evi.NewSolver(len(stateActions)),
		policy:       model.NewPolicy(stateActions),
		session:      NewSession(referenceGain),
	}, nil
}

// Register adds a Tracker which is sent every TimeStep executed by
// Learn
func (c *Controller) Register(t tracker.Tracker) {
	c.trackers = append(c.trackers, t)
}

// AddCheckpointer adds a Checkpointer which is called with every
// TimeStep executed by Learn
func (c *Controller) AddCheckpointer(ch checkpointer.Checkpointer) {
	c.checkpointers = append(c.checkpointers, ch)
}

// Learn interacts with the environment until Session().T reaches
// duration. The environment is reset before the first step of the
// first call.
//
// If planning fails with an *evi.DivergenceError, learning stops and
// the returned Outcome reports the divergence; the counts, policy and
// Session keep everything collected up to that point. The run cannot be
// continued: later calls take no step and report the same divergence.
// Any other error is returned.
//
// Every executed TimeStep is sent to the registered Trackers and
// Checkpointers. The first step of each episode has type
// timestep.First and the others timestep.Mid.
func (c *Controller) Learn(duration int) (agent.Outcome, error) {
	startT, startEpisode := c.session.T, c.session.Episode
	outcome := func() agent.Outcome {
		return agent.Outcome{
			Steps:      c.session.T - startT,
			Episodes:   c.session.Episode - startEpisode,
			Diverged:   c.diverged != nil,
			Divergence: c.diverged,
		}
	}

	if c.diverged != nil {
		return outcome(), nil
	}
	if !c.started {
		if err := c.ObserveFirst(c.env.Reset()); err != nil {
			return outcome(), fmt.Errorf("learn: %w", err)
		}
	}

	for c.session.T < duration {
		action, err := c.SelectAction(c.step)
		if err != nil {
			if c.diverged != nil {
				c.logger.Error("planning diverged, aborting",
					zap.Int("t", c.session.T),
					zap.Int("episode", c.session.Episode+1),
					zap.Error(err))
				return outcome(), nil
			}
			return outcome(), fmt.Errorf("learn: %w", err)
		}

		step, err := c.env.Execute(action)
		if err != nil {
			return outcome(), fmt.Errorf("learn: %w", err)
		}
		step.Number = c.session.T + 1
		step.Episode = c.session.Episode
		step.StepType = timestep.Mid
		if c.firstStep {
			step.StepType = timestep.First
			c.firstStep = false
		}

		if err := c.Observe(action, step); err != nil {
			return outcome(), fmt.Errorf("learn: %w", err)
		}

		for _, t := range c.trackers {
			t.Track(step)
		}
		for _, ch := range c.checkpointers {
			if err := ch.Checkpoint(step); err != nil {
				return outcome(), fmt.Errorf("learn: checkpoint: %w", err)
			}
		}
	}
	return outcome(), nil
}

// ObserveFirst records the TimeStep returned by a reset of the
// environment
func (c *Controller) ObserveFirst(t timestep.TimeStep) error {
	if t.NextState < 0 || t.NextState >= len(c.stateActions) {
		return fmt.Errorf("observeFirst: no such state %v", t.NextState)
	}
	c.step = t
	c.started = true
	return nil
}

// Observe records that taking the action with id action in t.State
// lead to t.NextState with reward t.Reward. An action that is not legal
// in t.State results in an *environment.IllegalActionError.
func (c *Controller) Observe(action int, t timestep.TimeStep) error {
	a, err := environment.ActionIndex(c.stateActions, t.State, action)
	if err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	if err := c.counts.Update(t.State, a, t.Reward, t.NextState, 1); err != nil {
		return fmt.Errorf("observe: %w", err)
	}

	c.session.record(t.Reward, c.config.RegretTimeSteps)
	c.step = t
	c.started = true
	return nil
}

// SelectAction returns the action id the current policy takes in
// t.NextState. If no episode has started yet, or if the stopping rule
// of the current episode fires in t.NextState, a new episode is
// started first, which requires planning. Once planning has diverged
// every call returns the *evi.DivergenceError.
func (c *Controller) SelectAction(t timestep.TimeStep) (int, error) {
	s := t.NextState
	if s < 0 || s >= len(c.stateActions) {
		return -1, fmt.Errorf("selectAction: no such state %v", s)
	}

	if c.diverged != nil {
		return -1, fmt.Errorf("selectAction: %w", c.diverged)
	}

	if !c.planned || c.episodeOver(s) {
		if err := c.startEpisode(c.session); err != nil {
			var divergence *evi.DivergenceError
			if errors.As(err, &divergence) {
				c.diverged = err
			}
			return -1, fmt.Errorf("selectAction: %w", err)
		}
	}
	return c.policy.Actions[s], nil
}

// episodeOver returns whether the policy's action in state s has been
// taken in the current episode as often as before the episode
func (c *Controller) episodeOver(s int) bool {
	a := c.policy.Indices[s]
	return c.counts.Episode(s, a) >= intutils.Max(1, c.counts.Total(s, a))
}

// startEpisode folds the episode counts, builds the confidence sets and
// plans a new optimistic policy. The policy is only replaced if
// planning succeeds.
func (c *Controller) startEpisode(sess *Session) error {
	c.counts.StartEpisode()

	params := confidence.Params{
		Delta:  c.config.Delta,
		Time:   sess.T,
		RMax:   c.rMax,
		TauMin: 1,
		TauMax: 1,
		AlphaP: c.config.AlphaP,
		AlphaR: c.config.AlphaR,
	}
	radii, err := c.strategy.BuildRadii(c.counts, params)
	if err != nil {
		return fmt.Errorf("startEpisode: %w", err)
	}
	est := model.Estimate(c.counts)

	pol := c.policy.Clone()
	res, err := c.strategy.SolvePlanning(c.solver, est, radii, pol,
		c.eviConfig(sess.T))
	if err != nil {
		return fmt.Errorf("startEpisode: episode %v at t = %v: %w",
			sess.Episode+1, sess.T, err)
	}

	c.policy = pol
	c.planned = true
	c.firstStep = true
	sess.startEpisode(res.Span, res.Gain(), res.Iterations,
		c.config.SpanEpisodeSteps)

	if ev, ok := c.env.(environment.Evaluator); ok {
		gain, err := ev.PolicyGain(pol.Indices)
		if err != nil {
			c.logger.Warn("could not evaluate policy", zap.Error(err))
			gain = math.NaN()
		}
		sess.PolicyGains = append(sess.PolicyGains, gain)
	}

	c.logger.Info("episode started",
		zap.Int("episode", sess.Episode),
		zap.Int("t", sess.T),
		zap.Float64("span", res.Span),
		zap.Float64("gain", res.Gain()),
		zap.Int("iterations", res.Iterations))
	if ce := c.logger.Check(zap.DebugLevel, "confidence radii"); ce != nil {
		known, meanR := radiusSummary(radii)
		ce.Write(zap.Int("visited", known), zap.Float64("meanRewardRadius",
			meanR), zap.Ints("policy", pol.Actions))
	}
	return nil
}

// eviConfig returns the EVI configuration of an episode starting at
// time step t
func (c *Controller) eviConfig(t int) evi.Config {
	cfg := evi.DefaultConfig(c.rMax)
	cfg.Epsilon = c.config.Epsilon
	if cfg.Epsilon == 0 {
		cfg.Epsilon = c.rMax / math.Sqrt(math.Max(1, float64(t)))
	}
	cfg.Tau = c.config.Tau
	cfg.MaxIterations = c.config.MaxIterations
	if c.strategy.Operator == evi.N {
		cfg.SpanConstraint = c.config.SpanConstraint
		cfg.TruncationLevel = c.config.TruncationLevel
	}
	return cfg
}

// Session returns a copy of the run state
func (c *Controller) Session() *Session {
	return c.session.Clone()
}

// Policy returns a copy of the current policy
func (c *Controller) Policy() *model.Policy {
	return c.policy.Clone()
}

// Counts returns a copy of the visitation counts
func (c *Controller) Counts() *model.Counts {
	return c.counts.Clone()
}

// Span returns the span of the bias vector of the last plan
func (c *Controller) Span() float64 {
	return c.session.Span
}

// Strategy returns the planning Strategy of the Controller
func (c *Controller) Strategy() Strategy {
	return c.strategy
}

// Snapshot is the serializable state of a Controller
type Snapshot struct {
	Strategy Strategy
	Policy   model.Policy

	// Visits[s][a] is the number of visits to (s, a) so far and
	// Total[s][a] the number of those made before the current episode
	Visits  [][]int
	Total   [][]int
	Bias    []float64
	Session Session
}

// Snapshot returns the current state of the Controller
func (c *Controller) Snapshot() Snapshot {
	visits := make([][]int, len(c.stateActions))
	for s := range c.stateActions {
		visits[s] = make([]int, len(c.stateActions[s]))
		for a := range visits[s] {
			visits[s][a] = c.counts.Visits(s, a)
		}
	}

	return Snapshot{
		Strategy: c.strategy,
		Policy:   *c.policy.Clone(),
		Visits:   visits,
		Total:    c.counts.TotalMatrix(),
		Bias:     c.solver.Bias(),
		Session:  *c.session.Clone(),
	}
}

// Save gob encodes the Controller's Snapshot to a file
func (c *Controller) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	if err := gob.NewEncoder(file).Encode(c.Snapshot()); err != nil {
		file.Close()
		return fmt.Errorf("save: %w", err)
	}
	return file.Close()
}

// LoadSnapshot loads a Snapshot saved by Controller.Save
func LoadSnapshot(filename string) (Snapshot, error) {
	file, err := os.Open(filename)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loadSnapshot: %w", err)
	}
	defer file.Close()

	var snapshot Snapshot
	if err := gob.NewDecoder(file).Decode(&snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("loadSnapshot: %w", err)
	}
	return snapshot, nil
}

// radiusSummary returns the number of visited pairs and their mean
// reward radius
func radiusSummary(radii *confidence.Set) (int, float64) {
	var finite []float64
	for s := range radii.R {
		for _, r := range radii.R[s] {
			if !math.IsInf(r, 1) {
				finite = append(finite, r)
			}
		}
	}
	if len(finite) == 0 {
		return 0, math.Inf(1)
	}
	return len(finite), stat.Mean(finite, nil)
}
