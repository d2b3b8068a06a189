package confidence_test

import (
	"math"
	"testing"

	"github.com/samuelfneumann/ucrl/confidence"
	"github.com/samuelfneumann/ucrl/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	stateActions = [][]int{{0, 1}, {0}, {0, 1, 2}}
	bounds       = []confidence.Bound{confidence.Hoeffding,
		confidence.Bernstein, confidence.Chernoff}
)

// visit records n transitions of (0, 0) alternating between states 1
// and 2 with alternating rewards 0 and 1
func visit(t *testing.T, c *model.Counts, n int) {
	for i := 0; i < n; i++ {
		require.NoError(t, c.Update(0, 0, float64(i%2), 1+i%2, 1))
	}
	c.StartEpisode()
}

func TestBuildUnvisited(t *testing.T) {
	for _, b := range bounds {
		t.Run(b.String(), func(t *testing.T) {
			c := model.NewCounts(stateActions)
			set, err := confidence.Build(c, b, confidence.DefaultParams(1, 1))
			require.NoError(t, err)
			require.NoError(t, set.Validate(stateActions))

			assert.Equal(t, b.Shape(), set.Shape)
			for s := range stateActions {
				for a := range stateActions[s] {
					assert.True(t, math.IsInf(set.R[s][a], 1))
					assert.True(t, math.IsInf(set.Tau[s][a], 1))
					for _, beta := range set.P[s][a] {
						assert.True(t, math.IsInf(beta, 1))
					}
				}
			}
		})
	}
}

func TestBuildShrinks(t *testing.T) {
	for _, b := range bounds {
		t.Run(b.String(), func(t *testing.T) {
			c := model.NewCounts(stateActions)
			params := confidence.DefaultParams(1, 1000)

			previous := math.Inf(1)
			previousR := math.Inf(1)
			for i := 0; i < 5; i++ {
				visit(t, c, 10)
				set, err := confidence.Build(c, b, params)
				require.NoError(t, err)

				radius := set.P[0][0][0]
				assert.Less(t, radius, previous)
				assert.Less(t, set.R[0][0], previousR)
				assert.GreaterOrEqual(t, radius, 0.0)
				assert.GreaterOrEqual(t, set.R[0][0], 0.0)
				previous, previousR = radius, set.R[0][0]

				// Holding times are fixed for MDPs
				assert.Equal(t, 0.0, set.Tau[0][0])
				assert.True(t, math.IsInf(set.R[0][1], 1))
			}
		})
	}
}

func TestBuildHoeffding(t *testing.T) {
	c := model.NewCounts(stateActions)
	visit(t, c, 100)

	params := confidence.DefaultParams(2, 50)
	params.AlphaP = 0.5
	set, err := confidence.Build(c, confidence.Hoeffding, params)
	require.NoError(t, err)

	// 3 states, at most 3 actions
	wantP := 0.5 * math.Sqrt(14*3*math.Log(2*3*50/0.05)/100)
	wantR := 2 * math.Sqrt(3.5*math.Log(2*3*3*50/0.05)/100)
	assert.InDelta(t, wantP, set.P[0][0][0], 1e-12)
	assert.InDelta(t, wantR, set.R[0][0], 1e-12)
}

func TestBuildBernstein(t *testing.T) {
	c := model.NewCounts(stateActions)
	visit(t, c, 100)

	set, err := confidence.Build(c, confidence.Bernstein,
		confidence.DefaultParams(1, 1))
	require.NoError(t, err)

	L := math.Log(6 * 3 * 3 / 0.05)
	assert.InDelta(t, 3*L/100, set.P[0][0][0], 1e-12)
	assert.InDelta(t, math.Sqrt(2*0.25*L/100)+3*L/100, set.P[0][0][1], 1e-12)
	assert.InDelta(t, math.Sqrt(2*0.25*L/100)+7*L/300, set.R[0][0], 1e-12)
	assert.Equal(t, set.P[0][0][1], set.P[0][0][2])
}

func TestBuildErrors(t *testing.T) {
	c := model.NewCounts(stateActions)
	require.NoError(t, c.Update(0, 0, 0, 0, 1))

	_, err := confidence.Build(c, confidence.Hoeffding,
		confidence.DefaultParams(1, 1))
	assert.Error(t, err, "episode counts must be folded")

	c.StartEpisode()
	_, err = confidence.Build(c, "kl", confidence.DefaultParams(1, 1))
	assert.Error(t, err)

	params := confidence.DefaultParams(1, 1)
	params.Delta = 0
	_, err = confidence.Build(c, confidence.Hoeffding, params)
	assert.Error(t, err)
}

func TestParseBound(t *testing.T) {
	b, err := confidence.ParseBound("Bernstein")
	require.NoError(t, err)
	assert.Equal(t, confidence.Bernstein, b)
	assert.Equal(t, confidence.Box, b.Shape())
	assert.Equal(t, confidence.L1, confidence.Hoeffding.Shape())

	_, err = confidence.ParseBound("kl")
	assert.Error(t, err)
}

func TestZero(t *testing.T) {
	set := confidence.Zero(stateActions, confidence.Box)
	require.NoError(t, set.Validate(stateActions))
	assert.Len(t, set.P[2][1], 3)
	assert.Equal(t, 0.0, set.L1Radius(2, 1))

	assert.Error(t, set.Validate([][]int{{0}}))
}
