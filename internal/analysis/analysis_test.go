package analysis

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openintel/achboard/internal/domain"
)

func votes(vs ...domain.Vote) []domain.Vote { return vs }

func TestAggregateVote(t *testing.T) {
	t.Run("no votes has no consensus", func(t *testing.T) {
		_, ok := AggregateVote(nil)
		assert.False(t, ok)
	})

	t.Run("single NA vote yields NA", func(t *testing.T) {
		consensus, ok := AggregateVote(votes(domain.VoteNA))
		require.True(t, ok)
		assert.Equal(t, domain.VoteNA, consensus)
	})

	t.Run("single rated vote yields that rating", func(t *testing.T) {
		consensus, ok := AggregateVote(votes(domain.VoteConsistent))
		require.True(t, ok)
		assert.Equal(t, domain.VoteConsistent, consensus)
	})

	t.Run("rated wins ties against NA", func(t *testing.T) {
		for _, v := range []domain.Vote{domain.VoteVeryInconsistent, domain.VoteNeutral, domain.VoteVeryConsistent} {
			consensus, ok := AggregateVote(votes(v, domain.VoteNA))
			require.True(t, ok)
			assert.Equal(t, v, consensus)

			consensus, ok = AggregateVote(votes(domain.VoteNA, v))
			require.True(t, ok)
			assert.Equal(t, v, consensus)
		}
	})

	t.Run("NA majority yields NA", func(t *testing.T) {
		consensus, ok := AggregateVote(votes(domain.VoteNA, domain.VoteNA, domain.VoteConsistent))
		require.True(t, ok)
		assert.Equal(t, domain.VoteNA, consensus)
	})

	t.Run("rounds toward neutral", func(t *testing.T) {
		consensus, ok := AggregateVote(votes(domain.VoteConsistent, domain.VoteVeryConsistent))
		require.True(t, ok)
		assert.Equal(t, domain.VoteConsistent, consensus)

		consensus, ok = AggregateVote(votes(domain.VoteInconsistent, domain.VoteVeryInconsistent))
		require.True(t, ok)
		assert.Equal(t, domain.VoteInconsistent, consensus)
	})

	t.Run("tracks the mean away from ties", func(t *testing.T) {
		consensus, ok := AggregateVote(votes(domain.VoteVeryConsistent, domain.VoteVeryConsistent, domain.VoteConsistent))
		require.True(t, ok)
		assert.Equal(t, domain.VoteVeryConsistent, consensus)
	})
}

func TestMeanNANeutral(t *testing.T) {
	t.Run("maps NA votes to neutral", func(t *testing.T) {
		mean, ok := MeanNANeutral(votes(domain.VoteNA))
		require.True(t, ok)
		assert.Equal(t, float64(domain.VoteNeutral), mean)

		mean, ok = MeanNANeutral(votes(domain.VoteNA, domain.VoteVeryInconsistent))
		require.True(t, ok)
		assert.Equal(t, float64(domain.VoteInconsistent), mean)
	})

	t.Run("leaves rated votes untouched", func(t *testing.T) {
		for v := domain.VoteVeryInconsistent; v <= domain.VoteVeryConsistent; v++ {
			mean, ok := MeanNANeutral(votes(v))
			require.True(t, ok)
			assert.Equal(t, float64(v), mean)
		}
	})

	t.Run("empty input has no mean", func(t *testing.T) {
		_, ok := MeanNANeutral(nil)
		assert.False(t, ok)
	})
}

func TestDiagnosticity(t *testing.T) {
	t.Run("zero without hypotheses or votes", func(t *testing.T) {
		assert.Zero(t, Diagnosticity(nil))
		assert.Zero(t, Diagnosticity([][]domain.Vote{{}, {}}))
	})

	t.Run("zero when consensuses agree", func(t *testing.T) {
		same := Diagnosticity([][]domain.Vote{votes(domain.VoteNeutral), votes(domain.VoteNeutral)})
		assert.Zero(t, same)
	})

	t.Run("positive when consensuses differ", func(t *testing.T) {
		different := Diagnosticity([][]domain.Vote{votes(domain.VoteConsistent), votes(domain.VoteInconsistent)})
		assert.Greater(t, different, 0.0)
	})
}

func TestInconsistency(t *testing.T) {
	t.Run("zero without evidence", func(t *testing.T) {
		assert.Zero(t, Inconsistency(nil))
	})

	t.Run("zero at or above neutral", func(t *testing.T) {
		for _, v := range []domain.Vote{domain.VoteNeutral, domain.VoteConsistent, domain.VoteVeryConsistent} {
			assert.Zero(t, Inconsistency([][]domain.Vote{votes(v)}))
		}
	})

	t.Run("positive below neutral", func(t *testing.T) {
		for _, v := range []domain.Vote{domain.VoteVeryInconsistent, domain.VoteInconsistent} {
			assert.Greater(t, Inconsistency([][]domain.Vote{votes(v)}), 0.0)
		}
	})

	t.Run("grows as votes move below neutral", func(t *testing.T) {
		h1 := Inconsistency([][]domain.Vote{votes(domain.VoteConsistent), votes(domain.VoteInconsistent)})
		h2 := Inconsistency([][]domain.Vote{votes(domain.VoteVeryInconsistent), votes(domain.VoteInconsistent)})
		assert.Less(t, h1, h2)
	})

	t.Run("monotone in refuting evidence", func(t *testing.T) {
		h1 := Inconsistency([][]domain.Vote{
			votes(domain.VoteVeryConsistent),
			votes(domain.VoteNA),
			votes(domain.VoteInconsistent),
			votes(domain.VoteInconsistent),
		})
		h2 := Inconsistency([][]domain.Vote{
			votes(domain.VoteInconsistent),
			votes(domain.VoteInconsistent),
			votes(domain.VoteNeutral),
			votes(domain.VoteInconsistent),
		})
		h3 := Inconsistency([][]domain.Vote{
			votes(domain.VoteNeutral),
			votes(domain.VoteNA),
			votes(domain.VoteVeryConsistent),
			votes(domain.VoteVeryInconsistent),
		})
		assert.Less(t, h1, h2)
		assert.Less(t, h2, h3)
	})
}

func TestConsistency(t *testing.T) {
	assert.Zero(t, Consistency(nil))
	assert.Greater(t,
		Consistency([][]domain.Vote{votes(domain.VoteVeryConsistent)}),
		Consistency([][]domain.Vote{votes(domain.VoteConsistent)}))
}

func TestProportions(t *testing.T) {
	na := domain.VoteNA
	neutral := domain.VoteNeutral

	assert.Zero(t, ProportionNA(nil))
	assert.Equal(t, 1.0, ProportionNA([][]domain.Vote{votes(na)}))
	assert.Zero(t, ProportionNA([][]domain.Vote{votes(neutral)}))
	assert.Equal(t, 1.0, ProportionNA([][]domain.Vote{votes(na), votes(na)}))
	assert.Equal(t, 0.5, ProportionNA([][]domain.Vote{votes(na), {}}))
	assert.Equal(t, 0.5, ProportionNA([][]domain.Vote{votes(neutral), votes(na)}))

	assert.Zero(t, ProportionUnevaluated(nil))
	assert.Equal(t, 1.0, ProportionUnevaluated([][]domain.Vote{{}}))
	assert.Zero(t, ProportionUnevaluated([][]domain.Vote{votes(na)}))
	assert.Equal(t, 0.5, ProportionUnevaluated([][]domain.Vote{{}, votes(na)}))
}

func TestDisagreement(t *testing.T) {
	t.Run("no votes has no disagreement score", func(t *testing.T) {
		_, ok := Disagreement(nil)
		assert.False(t, ok)
	})

	t.Run("single or uniform votes score zero", func(t *testing.T) {
		for v := domain.VoteNA; v <= domain.VoteVeryConsistent; v++ {
			d, ok := Disagreement(votes(v))
			require.True(t, ok)
			assert.Zero(t, d)

			d, ok = Disagreement(votes(v, v))
			require.True(t, ok)
			assert.Zero(t, d)
		}
	})

	t.Run("never negative", func(t *testing.T) {
		d, ok := Disagreement(votes(domain.VoteNA, domain.VoteConsistent, domain.VoteInconsistent))
		require.True(t, ok)
		assert.GreaterOrEqual(t, d, 0.0)
	})

	t.Run("wider spread scores higher", func(t *testing.T) {
		small, ok := Disagreement(votes(domain.VoteConsistent, domain.VoteInconsistent))
		require.True(t, ok)
		large, ok := Disagreement(votes(domain.VoteVeryInconsistent, domain.VoteVeryConsistent))
		require.True(t, ok)
		assert.Greater(t, large, small)
	})

	t.Run("NA split counts as disagreement", func(t *testing.T) {
		d, ok := Disagreement(votes(domain.VoteNA, domain.VoteNeutral))
		require.True(t, ok)
		assert.InDelta(t, math.Sqrt2/2, d, 1e-9)
	})
}

func TestHypothesisSorting(t *testing.T) {
	reverse := [][][]domain.Vote{
		{votes(domain.VoteVeryInconsistent)},
		{votes(domain.VoteInconsistent)},
		{votes(domain.VoteNA)},
		{{}},
		{votes(domain.VoteNeutral)},
		{votes(domain.VoteConsistent)},
		{votes(domain.VoteVeryConsistent)},
	}
	ordered := make([][][]domain.Vote, len(reverse))
	copy(ordered, reverse)
	sort.SliceStable(ordered, func(i, j int) bool {
		return HypothesisSortKey(ordered[i]).Less(HypothesisSortKey(ordered[j]))
	})
	for i := range ordered {
		assert.Equal(t, reverse[len(reverse)-1-i], ordered[i], "position %d", i)
	}
}

func TestEvidenceSorting(t *testing.T) {
	reverse := [][][]domain.Vote{
		{votes(domain.VoteNA), votes(domain.VoteNA)},
		{votes(domain.VoteNA), {}},
		{votes(domain.VoteNeutral), votes(domain.VoteNA)},
		{{}, {}},
		{votes(domain.VoteNeutral), {}},
		{votes(domain.VoteNeutral), votes(domain.VoteNeutral)},
		{votes(domain.VoteVeryConsistent), votes(domain.VoteVeryInconsistent)},
	}
	ordered := make([][][]domain.Vote, len(reverse))
	copy(ordered, reverse)
	sort.SliceStable(ordered, func(i, j int) bool {
		return EvidenceSortKey(ordered[i]).Less(EvidenceSortKey(ordered[j]))
	})
	for i := range ordered {
		assert.Equal(t, reverse[len(reverse)-1-i], ordered[i], "position %d", i)
	}
}
