package toys

import (
	"fmt"

	"github.com/samuelfneumann/ucrl/utils/floatutils"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Reward is a bounded reward distribution of a state-action pair
type Reward interface {
	Sample() float64
	Mean() float64

	// Max returns an upper bound on the rewards the distribution samples
	Max() float64
}

// Constant is a deterministic reward
type Constant float64

// Sample returns the reward
func (c Constant) Sample() float64 { return float64(c) }

// Mean returns the reward
func (c Constant) Mean() float64 { return float64(c) }

// Max returns the reward
func (c Constant) Max() float64 { return float64(c) }

// Bernoulli samples reward Scale with probability P and 0 otherwise
type Bernoulli struct {
	dist  distuv.Bernoulli
	scale float64
}

// NewBernoulli returns a new Bernoulli reward
func NewBernoulli(p, scale float64, src rand.Source) (*Bernoulli, error) {
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("newBernoulli: probability %v outside [0, 1]", p)
	}
	return &Bernoulli{distuv.Bernoulli{P: p, Src: src}, scale}, nil
}

// Sample samples a reward
func (b *Bernoulli) Sample() float64 { return b.scale * b.dist.Rand() }

// Mean returns the expected reward
func (b *Bernoulli) Mean() float64 { return b.scale * b.dist.P }

// Max returns the scale of the reward
func (b *Bernoulli) Max() float64 { return b.scale }

// Uniform samples rewards uniformly in an interval
type Uniform struct {
	dist distuv.Uniform
}

// NewUniform returns a new Uniform reward on [min, max]
func NewUniform(min, max float64, src rand.Source) (*Uniform, error) {
	if min > max {
		return nil, fmt.Errorf("newUniform: empty interval [%v, %v]", min, max)
	}
	return &Uniform{distuv.Uniform{Min: min, Max: max, Src: src}}, nil
}

// Sample samples a reward
func (u *Uniform) Sample() float64 { return u.dist.Rand() }

// Mean returns the expected reward
func (u *Uniform) Mean() float64 { return u.dist.Mean() }

// Max returns the upper end of the interval
func (u *Uniform) Max() float64 { return u.dist.Max }

// Gaussian samples rewards from a normal distribution clipped
// symmetrically to [mean - width, mean + width], which keeps the mean
// of the distribution unchanged
type Gaussian struct {
	dist  distuv.Normal
	width float64
}

// NewGaussian returns a new clipped Gaussian reward
func NewGaussian(mean, stdDev, width float64, src rand.Source) (*Gaussian,
	error) {
	if stdDev <= 0 || width < 0 {
		return nil, fmt.Errorf("newGaussian: invalid standard deviation %v "+
			"or width %v", stdDev, width)
	}
	return &Gaussian{distuv.Normal{Mu: mean, Sigma: stdDev, Src: src}, width}, nil
}

// Sample samples a reward
func (g *Gaussian) Sample() float64 {
	return floatutils.Clip(g.dist.Rand(), g.dist.Mu-g.width, g.dist.Mu+g.width)
}

// Mean returns the expected reward
func (g *Gaussian) Mean() float64 { return g.dist.Mu }

// Max returns the largest reward that can be sampled
func (g *Gaussian) Max() float64 { return g.dist.Mu + g.width }
