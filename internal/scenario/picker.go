package scenario

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
)

// ErrNoActions is returned when no action has a positive weight.
var ErrNoActions = errors.New("scenario: no actions with positive weight")

// Picker selects actions with probability proportional to their weight.
// Actions with a zero or negative weight are never selected.
type Picker struct {
	mu         sync.Mutex
	rng        *rand.Rand
	actions    []Action
	cumulative []int
	total      int
}

// NewPicker creates a picker over actions drawing from rng.
func NewPicker(actions []Action, rng *rand.Rand) (*Picker, error) {
	p := &Picker{rng: rng}
	for _, a := range actions {
		if a.Weight <= 0 {
			continue
		}
		p.total += a.Weight
		p.actions = append(p.actions, a)
		p.cumulative = append(p.cumulative, p.total)
	}
	if p.total == 0 {
		return nil, ErrNoActions
	}
	return p, nil
}

// Next returns the next action.
func (p *Picker) Next() Action {
	p.mu.Lock()
	n := p.rng.Intn(p.total)
	p.mu.Unlock()

	i := sort.SearchInts(p.cumulative, n+1)
	return p.actions[i]
}

// Share returns the expected selection frequency of the named action.
func (p *Picker) Share(name string) float64 {
	for _, a := range p.actions {
		if a.Name == name {
			return float64(a.Weight) / float64(p.total)
		}
	}
	return 0
}
