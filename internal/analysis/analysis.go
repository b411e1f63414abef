// Package analysis implements the vote-aggregation statistics for ACH
// boards: consensus, disagreement, inconsistency, consistency, and
// diagnosticity, plus the derived sort keys for hypotheses and evidence.
//
// All functions are pure reductions over vote slices. A pair that nobody
// has evaluated is represented by an empty slice.
package analysis

import (
	"math"

	"github.com/openintel/achboard/internal/domain"
)

// MeanNANeutral returns the mean rating on the 1-5 scale, treating N/A as a
// neutral vote. ok is false when there are no votes.
func MeanNANeutral(votes []domain.Vote) (float64, bool) {
	if len(votes) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range votes {
		if v == domain.VoteNA {
			sum += float64(domain.VoteNeutral)
		} else {
			sum += float64(v)
		}
	}
	return sum / float64(len(votes)), true
}

// AggregateVote returns the consensus for a set of votes on a single
// evidence/hypothesis pair. The consensus is N/A when strictly more voters
// chose N/A than a rating; otherwise it is the mean rating rounded to the
// nearest value, with exact ties resolved toward neutral. ok is false when
// there are no votes.
func AggregateVote(votes []domain.Vote) (domain.Vote, bool) {
	na, rated := partition(votes)
	if len(na) == 0 && len(rated) == 0 {
		return 0, false
	}
	if len(na) > len(rated) {
		return domain.VoteNA, true
	}
	var sum float64
	for _, v := range rated {
		sum += float64(v)
	}
	return roundTowardNeutral(sum / float64(len(rated))), true
}

// Disagreement returns the spread of opinion for votes on a single pair,
// computed as the larger of (1) the sample standard deviation of the N/A
// versus rated split and (2) the sample standard deviation of the rated
// values. ok is false when there are no votes.
func Disagreement(votes []domain.Vote) (float64, bool) {
	if len(votes) == 0 {
		return 0, false
	}
	na, rated := partition(votes)

	var naDisagreement float64
	if len(na)+len(rated) > 1 {
		split := make([]float64, 0, len(na)+len(rated))
		for range na {
			split = append(split, 0)
		}
		for range rated {
			split = append(split, 1)
		}
		naDisagreement = sampleStdev(split)
	}

	var ratedDisagreement float64
	if len(rated) > 1 {
		values := make([]float64, len(rated))
		for i, v := range rated {
			values[i] = float64(v)
		}
		ratedDisagreement = sampleStdev(values)
	}

	return math.Max(naDisagreement, ratedDisagreement), true
}

// Inconsistency measures the extent to which the evidence refutes a
// hypothesis. perEvidence holds the votes for each piece of evidence
// against the hypothesis. The metric is monotone in evidence: further
// evaluated evidence can only raise it.
func Inconsistency(perEvidence [][]domain.Vote) float64 {
	var total float64
	for _, votes := range perEvidence {
		if mean, ok := MeanNANeutral(votes); ok && mean < float64(domain.VoteNeutral) {
			d := float64(domain.VoteNeutral) - mean
			total += d * d
		}
	}
	return total
}

// Consistency measures supporting evidence for a hypothesis, ignoring
// inconsistent evaluations.
func Consistency(perEvidence [][]domain.Vote) float64 {
	var total float64
	for _, votes := range perEvidence {
		if mean, ok := MeanNANeutral(votes); ok && mean > float64(domain.VoteNeutral) {
			d := mean - float64(domain.VoteNeutral)
			total += d * d
		}
	}
	return total
}

// Diagnosticity measures how well a piece of evidence separates the
// hypotheses. perHypothesis holds the votes for the evidence against each
// hypothesis. Zero when every hypothesis has the same consensus, or when
// nothing has been evaluated.
func Diagnosticity(perHypothesis [][]domain.Vote) float64 {
	means := make([]float64, 0, len(perHypothesis))
	for _, votes := range perHypothesis {
		if mean, ok := MeanNANeutral(votes); ok {
			means = append(means, mean)
		}
	}
	if len(means) == 0 {
		return 0
	}
	return populationStdev(means)
}

// ProportionNA returns the proportion of pairs whose consensus is N/A.
func ProportionNA(groups [][]domain.Vote) float64 {
	return proportion(groups, func(votes []domain.Vote) bool {
		consensus, ok := AggregateVote(votes)
		return ok && consensus == domain.VoteNA
	})
}

// ProportionUnevaluated returns the proportion of pairs with no votes.
func ProportionUnevaluated(groups [][]domain.Vote) float64 {
	return proportion(groups, func(votes []domain.Vote) bool {
		_, ok := AggregateVote(votes)
		return !ok
	})
}

func proportion(groups [][]domain.Vote, pred func([]domain.Vote) bool) float64 {
	if len(groups) == 0 {
		return 0
	}
	matched := 0
	for _, votes := range groups {
		if pred(votes) {
			matched++
		}
	}
	return float64(matched) / float64(len(groups))
}

func partition(votes []domain.Vote) (na, rated []domain.Vote) {
	for _, v := range votes {
		if v == domain.VoteNA {
			na = append(na, v)
		} else {
			rated = append(rated, v)
		}
	}
	return na, rated
}

// roundTowardNeutral rounds to the nearest vote, breaking exact .5 ties
// toward the neutral rating.
func roundTowardNeutral(mean float64) domain.Vote {
	lo := math.Floor(mean)
	frac := mean - lo
	const eps = 1e-9
	if math.Abs(frac-0.5) < eps {
		hi := lo + 1
		if math.Abs(hi-float64(domain.VoteNeutral)) < math.Abs(lo-float64(domain.VoteNeutral)) {
			return domain.Vote(int(hi))
		}
		return domain.Vote(int(lo))
	}
	return domain.Vote(int(math.Round(mean)))
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdev is the square root of the sum of squared deviations divided
// by n-1. Callers guarantee len(values) > 1.
func sampleStdev(values []float64) float64 {
	return math.Sqrt(sumSquaredDeviations(values) / float64(len(values)-1))
}

// populationStdev is the square root of the sum of squared deviations
// divided by n. Callers guarantee len(values) > 0.
func populationStdev(values []float64) float64 {
	return math.Sqrt(sumSquaredDeviations(values) / float64(len(values)))
}

func sumSquaredDeviations(values []float64) float64 {
	m := mean(values)
	var total float64
	for _, v := range values {
		d := v - m
		total += d * d
	}
	return total
}
