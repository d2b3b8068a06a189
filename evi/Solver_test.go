package evi_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samuelfneumann/ucrl/confidence"
	"github.com/samuelfneumann/ucrl/evi"
	"github.com/samuelfneumann/ucrl/model"
	"github.com/samuelfneumann/ucrl/vi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// toy3D returns the three state MDP in which state 2 has an absorbing
// action with reward 0.5 and states 0 and 1 form a nearly periodic
// cycle with no reward
func toy3D(t testing.TB, delta float64) *model.Estimates {
	stateActions := [][]int{{0}, {0}, {0, 1}}
	p := [][][]float64{
		{{0, delta, 1 - delta}},
		{{1, 0, 0}},
		{{1 - delta, delta, 0}, {0, 0, 1}},
	}
	r := [][]float64{{0}, {0}, {0.5, 0.5}}

	est, err := model.NewEstimates(stateActions, p, r)
	require.NoError(t, err)
	return est
}

// dense returns an MDP with two actions per state and strictly positive
// transition probabilities
func dense(t testing.TB) *model.Estimates {
	stateActions := [][]int{{0, 1}, {0, 1}, {0, 1}}
	p := [][][]float64{
		{{0.5, 0.3, 0.2}, {0.2, 0.2, 0.6}},
		{{0.3, 0.4, 0.3}, {0.1, 0.1, 0.8}},
		{{0.4, 0.4, 0.2}, {0.6, 0.2, 0.2}},
	}
	r := [][]float64{{0.1, 0}, {0.5, 0.2}, {0.9, 0.3}}

	est, err := model.NewEstimates(stateActions, p, r)
	require.NoError(t, err)
	return est
}

func TestRunToy3D(t *testing.T) {
	tests := []struct {
		name   string
		shape  confidence.Shape
		modify func(*evi.Config)
	}{
		{"box", confidence.Box, func(*evi.Config) {}},
		{"l1", confidence.L1, func(*evi.Config) {}},
		{"no recenter", confidence.Box, func(c *evi.Config) {
			c.Recenter = evi.NoRecenter
		}},
		{"initial recenter", confidence.Box, func(c *evi.Config) {
			c.Recenter = evi.RecenterInitial
		}},
		{"aperiodicity transformation", confidence.L1, func(c *evi.Config) {
			c.Tau = 0.9
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			est := toy3D(t, 0.99)
			pol := model.NewPolicy(est.StateActions)
			cfg := evi.DefaultConfig(1)
			cfg.Epsilon = 1e-10
			test.modify(&cfg)

			res, err := evi.Run(est, confidence.Zero(est.StateActions,
				test.shape), pol, cfg)
			require.NoError(t, err)

			assert.InDelta(t, 0.5, res.Gain(), 1e-8)
			assert.Equal(t, 1, pol.Indices[2])
			assert.Equal(t, 1, pol.Actions[2])
			assert.NoError(t, pol.Validate(est.StateActions))
			assert.Less(t, res.IncrementSpan, cfg.Epsilon)
		})
	}
}

func TestRunToy3DSpan(t *testing.T) {
	est := toy3D(t, 0.99)
	pol := model.NewPolicy(est.StateActions)
	cfg := evi.DefaultConfig(1)
	cfg.Epsilon = 1e-10

	res, err := evi.Run(est, confidence.Zero(est.StateActions,
		confidence.Box), pol, cfg)
	require.NoError(t, err)

	// h(2) - h(1) = 100 with h(0) = h(1) + 0.5
	assert.InDelta(t, 100, res.Span, 1e-5)
	assert.InDelta(t, res.Span, floats.Max(res.U2)-floats.Min(res.U2), 1e-12)
}

func TestRunUnknownMDP(t *testing.T) {
	for _, bound := range []confidence.Bound{confidence.Hoeffding,
		confidence.Bernstein, confidence.Chernoff} {
		t.Run(bound.String(), func(t *testing.T) {
			est := toy3D(t, 0.99)
			counts := model.NewCounts(est.StateActions)
			radii, err := confidence.Build(counts, bound,
				confidence.DefaultParams(1, 1))
			require.NoError(t, err)

			pol := model.NewPolicy(est.StateActions)
			res, err := evi.Run(model.Estimate(counts), radii, pol,
				evi.DefaultConfig(1))
			require.NoError(t, err)

			// Every pair is maximally optimistic
			assert.Equal(t, 1, res.Iterations)
			assert.InDelta(t, 1, res.Gain(), 1e-12)
			assert.Equal(t, []int{0, 0, 0}, pol.Indices)
		})
	}
}

func TestRunMatchesRelativeValueIteration(t *testing.T) {
	est := dense(t)
	wantBias, wantGain, wantPolicy, err := vi.RelativeValueIteration(est,
		1e-12, 100_000)
	require.NoError(t, err)

	for _, shape := range []confidence.Shape{confidence.L1, confidence.Box} {
		t.Run(shape.String(), func(t *testing.T) {
			pol := model.NewPolicy(est.StateActions)
			cfg := evi.DefaultConfig(1)
			cfg.Epsilon = 1e-12
			res, err := evi.Run(est, confidence.Zero(est.StateActions, shape),
				pol, cfg)
			require.NoError(t, err)

			assert.InDelta(t, wantGain, res.Gain(), 1e-9)
			assert.True(t, wantPolicy.Equal(pol), "policies differ: %v != %v",
				wantPolicy.Indices, pol.Indices)

			// Both bias vectors are relative to state 0
			bias := append([]float64(nil), res.U2...)
			floats.AddConst(-bias[0], bias)
			require.Len(t, bias, len(wantBias))
			for s := range bias {
				assert.InDelta(t, wantBias[s], bias[s], 1e6*cfg.Epsilon,
					"state %v", s)
			}

			gain, err := vi.PolicyGain(est, pol.Indices, 0)
			require.NoError(t, err)
			assert.InDelta(t, res.Gain(), gain, 1e-8)
		})
	}
}

func TestRunTiesWithoutRecentering(t *testing.T) {
	// One state whose two self loops differ by a reward far larger than
	// the tie window but far smaller than the drifted bias
	stateActions := [][]int{{0, 1}}
	p := [][][]float64{{{1}, {1}}}
	r := [][]float64{{0, 1e-3}}
	est, err := model.NewEstimates(stateActions, p, r)
	require.NoError(t, err)

	solver := evi.NewSolver(1)
	require.NoError(t, solver.SetBias([]float64{1e8}))

	cfg := evi.DefaultConfig(1)
	cfg.Recenter = evi.NoRecenter
	pol := model.NewPolicy(stateActions)
	res, err := solver.Run(est, confidence.Zero(stateActions, confidence.Box),
		pol, cfg)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, pol.Indices)
	assert.InDelta(t, 1e-3, res.Gain(), 1e-6)

	// Exact ties still go to the lowest index
	r = [][]float64{{0.5, 0.5}}
	est, err = model.NewEstimates(stateActions, p, r)
	require.NoError(t, err)
	pol = model.NewPolicy(stateActions)
	_, err = solver.Run(est, confidence.Zero(stateActions, confidence.Box),
		pol, cfg)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, pol.Indices)
}

func TestRunOptimism(t *testing.T) {
	est := dense(t)
	cfg := evi.DefaultConfig(1)
	cfg.Epsilon = 1e-10

	zero, err := evi.Run(est, confidence.Zero(est.StateActions,
		confidence.L1), model.NewPolicy(est.StateActions), cfg)
	require.NoError(t, err)

	radii := confidence.Zero(est.StateActions, confidence.L1)
	for s := range radii.P {
		for a := range radii.P[s] {
			radii.P[s][a][0] = 0.2
			radii.R[s][a] = 0.05
		}
	}
	optimistic, err := evi.Run(est, radii, model.NewPolicy(est.StateActions),
		cfg)
	require.NoError(t, err)

	assert.Greater(t, optimistic.Gain(), zero.Gain())
	assert.LessOrEqual(t, optimistic.Gain(), 1.0)
}

func TestSolverSeed(t *testing.T) {
	est := dense(t)
	radii := confidence.Zero(est.StateActions, confidence.Box)
	cfg := evi.DefaultConfig(1)
	cfg.Epsilon = 1e-10

	solver := evi.NewSolver(est.NumStates())
	pol := model.NewPolicy(est.StateActions)
	first, err := solver.Run(est, radii, pol, cfg)
	require.NoError(t, err)
	assert.Equal(t, first.U2, solver.Bias())

	// Shifting the seed by a constant changes nothing
	bias := solver.Bias()
	floats.AddConst(7, bias)
	require.NoError(t, solver.SetBias(bias))

	seeded := model.NewPolicy(est.StateActions)
	second, err := solver.Run(est, radii, seeded, cfg)
	require.NoError(t, err)

	assert.True(t, pol.Equal(seeded))
	assert.InDelta(t, first.Gain(), second.Gain(), 1e-9)
	assert.LessOrEqual(t, second.Iterations, first.Iterations)

	assert.Error(t, solver.SetBias([]float64{0}))

	solver.Reset()
	assert.Equal(t, []float64{0, 0, 0}, solver.Bias())
}

func TestRunOperatorN(t *testing.T) {
	est := dense(t)
	radii := confidence.Zero(est.StateActions, confidence.Box)
	cfg := evi.DefaultConfig(1)
	cfg.Epsilon = 1e-10

	unconstrained, err := evi.Run(est, radii, model.NewPolicy(est.StateActions),
		cfg)
	require.NoError(t, err)
	require.Greater(t, unconstrained.Span, 0.0)

	for _, level := range []float64{0, math.Inf(1)} {
		cfg.Operator = evi.N
		cfg.SpanConstraint = unconstrained.Span / 2
		cfg.TruncationLevel = level

		res, err := evi.Run(est, radii, model.NewPolicy(est.StateActions), cfg)
		require.NoError(t, err)

		assert.LessOrEqual(t, res.Span, cfg.SpanConstraint+1e-12)
		assert.LessOrEqual(t, res.Gain(), unconstrained.Gain()+1e-9)
	}

	// A loose constraint is the unconstrained operator
	cfg.TruncationLevel = 0
	cfg.SpanConstraint = 2 * unconstrained.Span
	res, err := evi.Run(est, radii, model.NewPolicy(est.StateActions), cfg)
	require.NoError(t, err)
	assert.InDelta(t, unconstrained.Gain(), res.Gain(), 1e-9)
}

func TestRunAugmentReward(t *testing.T) {
	est := dense(t)
	radii := confidence.Zero(est.StateActions, confidence.Box)
	cfg := evi.DefaultConfig(1)
	cfg.Epsilon = 1e-10
	cfg.Operator = evi.N
	cfg.SpanConstraint = 0.2

	plain, err := evi.Run(est, radii, model.NewPolicy(est.StateActions), cfg)
	require.NoError(t, err)

	for s := range radii.P {
		for a := range radii.P[s] {
			for next := range radii.P[s][a] {
				radii.P[s][a][next] = 0.01
			}
		}
	}
	cfg.AugmentReward = true
	augmented, err := evi.Run(est, radii, model.NewPolicy(est.StateActions),
		cfg)
	require.NoError(t, err)

	assert.Greater(t, augmented.Gain(), plain.Gain())
}

func TestConfigurationError(t *testing.T) {
	tests := []struct {
		field  string
		modify func(*evi.Config, **model.Policy, **confidence.Set)
	}{
		{"Epsilon", func(c *evi.Config, _ **model.Policy, _ **confidence.Set) {
			c.Epsilon = 0
		}},
		{"RMax", func(c *evi.Config, _ **model.Policy, _ **confidence.Set) {
			c.RMax = math.Inf(1)
		}},
		{"Tau", func(c *evi.Config, _ **model.Policy, _ **confidence.Set) {
			c.Tau = 2
		}},
		{"TauMax", func(c *evi.Config, _ **model.Policy, _ **confidence.Set) {
			c.TauMax = 0.5
		}},
		{"Operator", func(c *evi.Config, _ **model.Policy, _ **confidence.Set) {
			c.Operator = "X"
		}},
		{"SpanConstraint", func(c *evi.Config, _ **model.Policy,
			_ **confidence.Set) {
			c.SpanConstraint = 0
		}},
		{"AugmentReward", func(c *evi.Config, _ **model.Policy,
			_ **confidence.Set) {
			c.AugmentReward = true
		}},
		{"TruncationLevel", func(c *evi.Config, _ **model.Policy,
			_ **confidence.Set) {
			c.TruncationLevel = -1
		}},
		{"ReferenceState", func(c *evi.Config, _ **model.Policy,
			_ **confidence.Set) {
			c.ReferenceState = 3
		}},
		{"MaxIterations", func(c *evi.Config, _ **model.Policy,
			_ **confidence.Set) {
			c.MaxIterations = 0
		}},
		{"Policy", func(_ *evi.Config, p **model.Policy, _ **confidence.Set) {
			*p = model.NewPolicy([][]int{{0}})
		}},
		{"Radii", func(_ *evi.Config, _ **model.Policy, r **confidence.Set) {
			(*r).R[0][0] = math.NaN()
		}},
		{"Model", func(_ *evi.Config, _ **model.Policy, r **confidence.Set) {
			*r = nil
		}},
	}

	for _, test := range tests {
		t.Run(test.field, func(t *testing.T) {
			est := dense(t)
			pol := model.NewPolicy(est.StateActions)
			radii := confidence.Zero(est.StateActions, confidence.L1)
			cfg := evi.DefaultConfig(1)
			test.modify(&cfg, &pol, &radii)

			solver := evi.NewSolver(est.NumStates())
			_, err := solver.Run(est, radii, pol, cfg)

			var cfgErr *evi.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, test.field, cfgErr.Field)
		})
	}
}

func TestRunDivergence(t *testing.T) {
	est := toy3D(t, 0.99)
	cfg := evi.DefaultConfig(1)
	cfg.MaxIterations = 1

	solver := evi.NewSolver(est.NumStates())
	_, err := solver.Run(est, confidence.Zero(est.StateActions, confidence.L1),
		model.NewPolicy(est.StateActions), cfg)

	var divErr *evi.DivergenceError
	require.True(t, errors.As(err, &divErr), "got %v", err)
	assert.Equal(t, 1, divErr.Iterations)
	assert.Equal(t, 2, divErr.State)
	assert.InDelta(t, 0.5, divErr.IncrementSpan, 1e-12)
	assert.Equal(t, 0.5, divErr.Reward)
	assert.NotEmpty(t, divErr.Error())

	// Failed calls leave the seed untouched
	assert.Equal(t, []float64{0, 0, 0}, solver.Bias())
}

func TestRunTieBreaking(t *testing.T) {
	stateActions := [][]int{{4, 7, 9}}
	p := [][][]float64{{{1}, {1}, {1}}}
	r := [][]float64{{0.5, 0.5, 0.5 + 1e-12}}
	est, err := model.NewEstimates(stateActions, p, r)
	require.NoError(t, err)

	pol := model.NewPolicy(stateActions)
	pol.Set(stateActions, 0, 2)
	res, err := evi.Run(est, confidence.Zero(stateActions, confidence.L1), pol,
		evi.DefaultConfig(1))
	require.NoError(t, err)

	assert.Equal(t, []int{0}, pol.Indices)
	assert.Equal(t, []int{4}, pol.Actions)
	assert.InDelta(t, 0.5, res.Gain(), 1e-12)
}

func BenchmarkRun(b *testing.B) {
	const (
		numStates  = 50
		numActions = 4
	)
	rng := rand.New(rand.NewSource(1))

	stateActions := make([][]int, numStates)
	p := make([][][]float64, numStates)
	r := make([][]float64, numStates)
	for s := range stateActions {
		stateActions[s] = []int{0, 1, 2, 3}
		p[s] = make([][]float64, numActions)
		r[s] = make([]float64, numActions)
		for a := range stateActions[s] {
			row := make([]float64, numStates)
			for next := range row {
				row[next] = rng.Float64()
			}
			floats.Scale(1/floats.Sum(row), row)
			p[s][a] = row
			r[s][a] = rng.Float64()
		}
	}
	est, err := model.NewEstimates(stateActions, p, r)
	if err != nil {
		b.Fatal(err)
	}

	radii := confidence.Zero(stateActions, confidence.L1)
	for s := range radii.P {
		for a := range radii.P[s] {
			radii.P[s][a][0] = 0.1
		}
	}
	pol := model.NewPolicy(stateActions)
	cfg := evi.DefaultConfig(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		solver := evi.NewSolver(numStates)
		if _, err := solver.Run(est, radii, pol, cfg); err != nil {
			b.Fatal(err)
		}
	}
}
