package ucrl

import (
	"fmt"

	"github.com/samuelfneumann/ucrl/agent"
	"github.com/samuelfneumann/ucrl/confidence"
	"github.com/samuelfneumann/ucrl/evi"
	"github.com/samuelfneumann/ucrl/model"
)

// Strategy determines how a Controller builds its confidence sets and
// solves the optimistic planning problem at the start of each episode.
// The algorithms differ only in their Strategy:
//
//	UCRL:  Bound × operator T
//	SCAL:  Bound × operator N
//	SCAL+: Bound × operator N with the exploration bonus
type Strategy struct {
	Algorithm     agent.Type
	Bound         confidence.Bound
	Operator      evi.Operator
	AugmentReward bool
}

// NewStrategy returns the Strategy of the argument algorithm using
// confidence sets built with bound b
func NewStrategy(algorithm agent.Type, b confidence.Bound) (Strategy, error) {
	bound, err := confidence.ParseBound(string(b))
	if err != nil {
		return Strategy{}, fmt.Errorf("newStrategy: %w", err)
	}

	switch algorithm {
	case agent.UCRL:
		return Strategy{algorithm, bound, evi.T, false}, nil
	case agent.SCAL:
		return Strategy{algorithm, bound, evi.N, false}, nil
	case agent.SCALPlus:
		return Strategy{algorithm, bound, evi.N, true}, nil
	}
	return Strategy{}, fmt.Errorf("newStrategy: no such algorithm %v",
		algorithm)
}

// BuildRadii builds the confidence sets around the estimates from the
// counts
func (s Strategy) BuildRadii(c *model.Counts,
	params confidence.Params) (*confidence.Set, error) {
	return confidence.Build(c, s.Bound, params)
}

// SolvePlanning runs Extended Value Iteration with the Strategy's
// operator, writing the optimistic policy into pol
func (s Strategy) SolvePlanning(solver *evi.Solver, est *model.Estimates,
	radii *confidence.Set, pol *model.Policy, cfg evi.Config) (evi.Result,
	error) {
	cfg.Operator = s.Operator
	cfg.AugmentReward = s.AugmentReward
	return solver.Run(est, radii, pol, cfg)
}

func (s Strategy) String() string {
	return fmt.Sprintf("%v(%v, %v)", s.Algorithm, s.Bound, s.Operator)
}
