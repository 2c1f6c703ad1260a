package genre

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays fixed draws so sampling can be asserted exactly.
type scriptedSource struct {
	ints   []int
	floats []float64
}

func (s *scriptedSource) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestChoose_OnlyReturnsKnownLabels(t *testing.T) {
	r := seeded(1)
	table := Table{{Label: 4, Weight: 2}, {Label: 9, Weight: 1}}

	for range 5000 {
		label, err := Choose(r, table)
		require.NoError(t, err)
		assert.Contains(t, []int{4, 9}, label)
	}
}

func TestChoose_FrequencyConverges(t *testing.T) {
	r := seeded(42)
	const draws = 100000

	counts := map[int]int{}
	for range draws {
		label, err := Choose(r, AdjectiveCounts)
		require.NoError(t, err)
		counts[label]++
	}

	assert.InDelta(t, 0.70, float64(counts[1])/draws, 0.01)
	assert.InDelta(t, 0.25, float64(counts[2])/draws, 0.01)
	assert.InDelta(t, 0.05, float64(counts[3])/draws, 0.01)
}

func TestChoose_UnnormalizedWeights(t *testing.T) {
	r := seeded(7)
	const draws = 50000

	hits := 0
	for range draws {
		label, err := Choose(r, Table{{Label: 1, Weight: 3}, {Label: 2, Weight: 1}})
		require.NoError(t, err)
		if label == 1 {
			hits++
		}
	}

	assert.InDelta(t, 0.75, float64(hits)/draws, 0.01)
}

func TestChoose_ZeroWeightNeverChosen(t *testing.T) {
	r := seeded(3)
	table := Table{{Label: 1, Weight: 0}, {Label: 2, Weight: 1}, {Label: 3, Weight: 0}}

	for range 5000 {
		label, err := Choose(r, table)
		require.NoError(t, err)
		assert.Equal(t, 2, label)
	}
}

func TestChoose_Errors(t *testing.T) {
	tests := []struct {
		name    string
		table   Table
		wantErr error
	}{
		{"empty table", Table{}, ErrInvalidWeights},
		{"nil table", nil, ErrInvalidWeights},
		{"negative weight", Table{{Label: 1, Weight: 1}, {Label: 2, Weight: -0.1}}, ErrInvalidWeights},
		{"NaN weight", Table{{Label: 1, Weight: math.NaN()}}, ErrInvalidWeights},
		{"infinite weight", Table{{Label: 1, Weight: math.Inf(1)}}, ErrInvalidWeights},
		{"all zero", Table{{Label: 1, Weight: 0}, {Label: 2, Weight: 0}}, ErrEmptyDistribution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Choose(seeded(1), tt.table)
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = LegacySampler{}.Choose(seeded(1), tt.table)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCDFSampler_ScriptedDraws(t *testing.T) {
	tests := []struct {
		draw float64
		want int
	}{
		{0.0, 1},
		{0.5, 1},
		{0.8, 2},
		{0.99, 3},
	}

	for _, tt := range tests {
		src := &scriptedSource{floats: []float64{tt.draw}}
		label, err := CDFSampler{}.Choose(src, AdjectiveCounts)
		require.NoError(t, err)
		assert.Equal(t, tt.want, label, "draw %v", tt.draw)
	}
}

func TestCDFSampler_SmallWeightsAreReachable(t *testing.T) {
	label, err := Choose(&scriptedSource{floats: []float64{0.5}}, Table{{Label: 1, Weight: 0.05}})
	require.NoError(t, err)
	assert.Equal(t, 1, label)
}

func TestLegacySampler_Pool(t *testing.T) {
	s := LegacySampler{Resolution: DefaultResolution}

	adj, err := s.Pool(AdjectiveCounts)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1, 1, 1, 1, 1, 2, 2}, adj)

	nouns, err := s.Pool(NounCounts)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1, 1, 1, 1, 1, 1, 2, 2}, nouns)
}

func TestLegacySampler_PoolRounds(t *testing.T) {
	tests := []struct {
		weight float64
		want   int
	}{
		{0.27, 3},
		{0.38, 4},
		{0.69, 7},
		{0.3, 3},
		{0.25, 2},
		{0.15, 2},
		{0.05, 0},
	}

	s := LegacySampler{Resolution: DefaultResolution}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.weight), func(t *testing.T) {
			pool, err := s.Pool(Table{{Label: 1, Weight: tt.weight}})
			require.NoError(t, err)
			assert.Len(t, pool, tt.want)
		})
	}
}

func TestLegacySampler_RoundedAwayWeightIsEmpty(t *testing.T) {
	_, err := LegacySampler{Resolution: DefaultResolution}.Choose(seeded(1), Table{{Label: 1, Weight: 0.05}})
	assert.ErrorIs(t, err, ErrEmptyDistribution)
}

func TestLegacySampler_ZeroResolutionUsesDefault(t *testing.T) {
	pool, err := LegacySampler{}.Pool(Table{{Label: 5, Weight: 0.3}})
	require.NoError(t, err)
	assert.Len(t, pool, 3)
}

func TestLegacySampler_HigherResolution(t *testing.T) {
	pool, err := LegacySampler{Resolution: 100}.Pool(Table{{Label: 1, Weight: 0.05}, {Label: 2, Weight: 0.57}})
	require.NoError(t, err)

	counts := map[int]int{}
	for _, label := range pool {
		counts[label]++
	}
	assert.Equal(t, 5, counts[1])
	assert.Equal(t, 57, counts[2])
}

func TestLegacySampler_NeverDrawsRoundedAwayLabel(t *testing.T) {
	r := seeded(9)
	s := LegacySampler{Resolution: DefaultResolution}

	for range 10000 {
		label, err := s.Choose(r, AdjectiveCounts)
		require.NoError(t, err)
		assert.NotEqual(t, 3, label)
	}
}

func TestLegacySampler_ScriptedDraws(t *testing.T) {
	s := LegacySampler{Resolution: DefaultResolution}

	label, err := s.Choose(&scriptedSource{ints: []int{6}}, AdjectiveCounts)
	require.NoError(t, err)
	assert.Equal(t, 1, label)

	label, err = s.Choose(&scriptedSource{ints: []int{7}}, AdjectiveCounts)
	require.NoError(t, err)
	assert.Equal(t, 2, label)
}

func TestSamplerByName(t *testing.T) {
	s, err := SamplerByName("", 0)
	require.NoError(t, err)
	assert.IsType(t, CDFSampler{}, s)

	s, err = SamplerByName("legacy", 20)
	require.NoError(t, err)
	assert.Equal(t, LegacySampler{Resolution: 20}, s)

	_, err = SamplerByName("alias", 0)
	assert.Error(t, err)
}
