package vi_test

import (
	"testing"

	"github.com/samuelfneumann/ucrl/model"
	"github.com/samuelfneumann/ucrl/vi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEstimates(t *testing.T, stateActions [][]int, p [][][]float64,
	r [][]float64) *model.Estimates {
	est, err := model.NewEstimates(stateActions, p, r)
	require.NoError(t, err)
	return est
}

func TestRelativeValueIteration(t *testing.T) {
	est := newEstimates(t,
		[][]int{{0}, {0}, {0, 1}},
		[][][]float64{
			{{0, 0.99, 0.01}},
			{{1, 0, 0}},
			{{0.01, 0.99, 0}, {0, 0, 1}},
		},
		[][]float64{{0}, {0}, {0.5, 0.5}},
	)

	bias, gain, pol, err := vi.RelativeValueIteration(est, 1e-10, 1_000_000)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, gain, 1e-8)
	assert.Equal(t, []int{0, 0, 1}, pol.Indices)
	assert.Equal(t, 0.0, bias[0])
	assert.InDelta(t, -0.5, bias[1], 1e-5)
	assert.InDelta(t, 99.5, bias[2], 1e-5)
}

func TestRelativeValueIterationErrors(t *testing.T) {
	est := newEstimates(t, [][]int{{0}}, [][][]float64{{{1}}},
		[][]float64{{1}})

	_, _, _, err := vi.RelativeValueIteration(est, 0, 10)
	assert.Error(t, err)

	_, _, _, err = vi.RelativeValueIteration(nil, 1e-6, 10)
	assert.Error(t, err)
}

func TestPolicyGain(t *testing.T) {
	tests := []struct {
		name   string
		p      [][][]float64
		r      [][]float64
		start  int
		policy []int
		want   float64
	}{
		{
			name:   "periodic",
			p:      [][][]float64{{{0, 1}}, {{1, 0}}},
			r:      [][]float64{{1}, {0}},
			policy: []int{0, 0},
			want:   0.5,
		},
		{
			name:   "first recurrent class",
			p:      [][][]float64{{{1, 0}}, {{0, 1}}},
			r:      [][]float64{{1}, {0}},
			policy: []int{0, 0},
			want:   1,
		},
		{
			name:   "second recurrent class",
			p:      [][][]float64{{{1, 0}}, {{0, 1}}},
			r:      [][]float64{{1}, {0}},
			start:  1,
			policy: []int{0, 0},
			want:   0,
		},
		{
			name:   "transient start",
			p:      [][][]float64{{{0.5, 0.5}}, {{0, 1}}},
			r:      [][]float64{{1}, {0.25}},
			policy: []int{0, 0},
			want:   0.25,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			est := newEstimates(t, [][]int{{0}, {0}}, test.p, test.r)
			gain, err := vi.PolicyGain(est, test.policy, test.start)
			require.NoError(t, err)
			assert.InDelta(t, test.want, gain, 1e-9)
		})
	}
}

func TestPolicyGainErrors(t *testing.T) {
	est := newEstimates(t, [][]int{{0}, {0}},
		[][][]float64{{{0, 1}}, {{1, 0}}}, [][]float64{{1}, {0}})

	_, err := vi.PolicyGain(est, []int{0, 0}, 2)
	assert.Error(t, err)

	_, err = vi.PolicyGain(est, []int{0, 1}, 0)
	assert.Error(t, err)

	_, err = vi.PolicyGain(est, []int{0}, 0)
	assert.Error(t, err)
}
