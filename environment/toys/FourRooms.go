package toys

import (
	"fmt"

	"github.com/samuelfneumann/ucrl/environment"
)

// FourRooms actions
const (
	Left = iota
	Right
	Up
	Down
)

// FourRooms configures a square gridworld split into four rooms by a
// horizontal and a vertical wall, each with two doorways. Moves succeed
// with probability SuccessProbability and otherwise go in one of the
// other three directions uniformly at random. Moving into a wall or out
// of the grid leaves the agent in place.
//
// Any action taken in the target cell gives TargetReward and moves the
// agent back to the start cell, so the gridworld is a continuing task.
type FourRooms struct {
	Dimension          int
	SuccessProbability float64
	TargetReward       float64

	// Cells are given as (x, y) coordinates
	StartX, StartY   int
	TargetX, TargetY int
}

// DefaultFourRooms returns a FourRooms of the argument dimension which
// starts in the corner opposite to the target
func DefaultFourRooms(dimension int) FourRooms {
	return FourRooms{
		Dimension:          dimension,
		SuccessProbability: 0.8,
		TargetReward:       1,
		StartX:             dimension - 1,
		StartY:             dimension - 1,
	}
}

// wall returns whether the cell (x, y) is part of a wall
func (c FourRooms) wall(x, y int) bool {
	mid := c.Dimension / 2
	if x != mid && y != mid {
		return false
	}
	doors := [][2]int{
		{mid / 2, mid},
		{mid + (c.Dimension-mid)/2, mid},
		{mid, mid / 2},
		{mid, mid + (c.Dimension-mid)/2},
	}
	for _, door := range doors {
		if x == door[0] && y == door[1] {
			return false
		}
	}
	return true
}

// Create returns the FourRooms environment
func (c FourRooms) Create(seed uint64) (*Tabular, error) {
	d := c.Dimension
	if d < 5 {
		return nil, fmt.Errorf("create: dimension must be at least 5, got %v",
			d)
	}
	if c.SuccessProbability < 0 || c.SuccessProbability > 1 {
		return nil, fmt.Errorf("create: success probability %v outside "+
			"[0, 1]", c.SuccessProbability)
	}

	// Map the open cells to states
	states := make(map[int]int)
	var cells []int
	for y := 0; y < d; y++ {
		for x := 0; x < d; x++ {
			if !c.wall(x, y) {
				states[cToInd(x, y, d)] = len(cells)
				cells = append(cells, cToInd(x, y, d))
			}
		}
	}

	start, ok := states[cToInd(c.StartX, c.StartY, d)]
	if !ok || !c.inside(c.StartX, c.StartY) {
		return nil, fmt.Errorf("create: start (%v, %v) is not an open cell",
			c.StartX, c.StartY)
	}
	target, ok := states[cToInd(c.TargetX, c.TargetY, d)]
	if !ok || !c.inside(c.TargetX, c.TargetY) {
		return nil, fmt.Errorf("create: target (%v, %v) is not an open cell",
			c.TargetX, c.TargetY)
	}

	ns := len(cells)
	stateActions := make([][]int, ns)
	p := make([][][]float64, ns)
	rewards := make([][]Reward, ns)
	for s, cell := range cells {
		stateActions[s] = []int{Left, Right, Up, Down}
		p[s] = make([][]float64, 4)
		rewards[s] = make([]Reward, 4)

		x, y := indToC(cell, d)
		for a := range stateActions[s] {
			row := make([]float64, ns)
			if s == target {
				row[start] = 1
				p[s][a] = row
				rewards[s][a] = Constant(c.TargetReward)
				continue
			}

			for direction := Left; direction <= Down; direction++ {
				prob := (1 - c.SuccessProbability) / 3
				if direction == a {
					prob = c.SuccessProbability
				}

				nx, ny := move(x, y, direction)
				next := s
				if c.inside(nx, ny) && !c.wall(nx, ny) {
					next = states[cToInd(nx, ny, d)]
				}
				row[next] += prob
			}
			p[s][a] = row
			rewards[s][a] = Constant(0)
		}
	}

	starter, err := environment.NewSingleStart(start, ns)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	return NewTabular("FourRooms", stateActions, p, rewards, starter, seed)
}

func (c FourRooms) inside(x, y int) bool {
	return x >= 0 && x < c.Dimension && y >= 0 && y < c.Dimension
}

// move returns the cell reached from (x, y) by moving in direction,
// ignoring walls
func move(x, y, direction int) (int, int) {
	switch direction {
	case Left:
		return x - 1, y
	case Right:
		return x + 1, y
	case Up:
		return x, y + 1
	default:
		return x, y - 1
	}
}

func cToInd(x, y, c int) int {
	return y*c + x
}

func indToC(i, c int) (int, int) {
	y := i / c
	return i - y*c, y
}
