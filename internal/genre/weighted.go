package genre

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

// DefaultResolution is the pool size multiplier used by LegacySampler.
const DefaultResolution = 10

var (
	// ErrEmptyDistribution is returned when no outcome can ever be drawn.
	ErrEmptyDistribution = errors.New("empty distribution")
	// ErrInvalidWeights is returned for an empty table or a negative, NaN or infinite weight.
	ErrInvalidWeights = errors.New("invalid weights")
)

// Outcome is a single label with its relative weight.
type Outcome struct {
	Label  int
	Weight float64
}

// Table is an ordered weighting table. Weights are relative and need not sum to 1.
type Table []Outcome

// Validate reports ErrInvalidWeights for an empty table or a bad weight.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: table has no outcomes", ErrInvalidWeights)
	}
	for _, o := range t {
		if o.Weight < 0 || math.IsNaN(o.Weight) || math.IsInf(o.Weight, 0) {
			return fmt.Errorf("%w: label %d has weight %v", ErrInvalidWeights, o.Label, o.Weight)
		}
	}
	return nil
}

// Source is the random source consumed by samplers and the generator.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
	Float64() float64
}

// globalSource draws from the process-wide math/rand/v2 generator, which is safe for concurrent use.
type globalSource struct{}

func (globalSource) IntN(n int) int   { return rand.IntN(n) }
func (globalSource) Float64() float64 { return rand.Float64() }

// GlobalSource returns a Source backed by the process-wide random generator.
func GlobalSource() Source { return globalSource{} }

// Sampler draws one label from a weighting table.
type Sampler interface {
	Choose(r Source, t Table) (int, error)
}

// Choose draws a label from t using the cumulative distribution sampler.
func Choose(r Source, t Table) (int, error) {
	return CDFSampler{}.Choose(r, t)
}

// CDFSampler samples exactly by binary search over cumulative weights.
type CDFSampler struct{}

// Choose implements Sampler.
func (CDFSampler) Choose(r Source, t Table) (int, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	cumulative := make([]float64, len(t))
	total := 0.0
	last := -1
	for i, o := range t {
		total += o.Weight
		cumulative[i] = total
		if o.Weight > 0 {
			last = i
		}
	}
	if last < 0 {
		return 0, ErrEmptyDistribution
	}

	x := r.Float64() * total
	i := sort.Search(len(cumulative), func(i int) bool { return cumulative[i] > x })
	if i >= len(t) {
		// x rounded up to total.
		i = last
	}
	return t[i].Label, nil
}

// LegacySampler reproduces the discretized pool: each label is repeated
// round(weight*Resolution) times, halves to even, and one entry is drawn
// uniformly. Weights at or below half of 1/Resolution can never be drawn.
type LegacySampler struct {
	Resolution int
}

// Pool returns the discretized selection pool for t.
func (s LegacySampler) Pool(t Table) ([]int, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	res := s.Resolution
	if res <= 0 {
		res = DefaultResolution
	}

	var pool []int
	for _, o := range t {
		n := int(math.RoundToEven(o.Weight * float64(res)))
		for range n {
			pool = append(pool, o.Label)
		}
	}
	return pool, nil
}

// Choose implements Sampler.
func (s LegacySampler) Choose(r Source, t Table) (int, error) {
	pool, err := s.Pool(t)
	if err != nil {
		return 0, err
	}
	if len(pool) == 0 {
		return 0, ErrEmptyDistribution
	}
	return pool[r.IntN(len(pool))], nil
}

// SamplerByName returns the sampler for "cdf" or "legacy".
func SamplerByName(name string, resolution int) (Sampler, error) {
	switch name {
	case "", "cdf":
		return CDFSampler{}, nil
	case "legacy":
		return LegacySampler{Resolution: resolution}, nil
	default:
		return nil, fmt.Errorf("unknown sampler %q (must be cdf or legacy)", name)
	}
}
