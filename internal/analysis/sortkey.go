package analysis

import "github.com/openintel/achboard/internal/domain"

// HypothesisKey orders hypotheses from most to least consistent with the
// evidence: ascending inconsistency, then descending consistency, then
// ascending proportion N/A, then ascending proportion unevaluated.
type HypothesisKey struct {
	Inconsistency         float64
	Consistency           float64
	ProportionNA          float64
	ProportionUnevaluated float64
}

// HypothesisSortKey computes the ordering key for a hypothesis from its
// votes against each piece of evidence.
func HypothesisSortKey(perEvidence [][]domain.Vote) HypothesisKey {
	return HypothesisKey{
		Inconsistency:         Inconsistency(perEvidence),
		Consistency:           Consistency(perEvidence),
		ProportionNA:          ProportionNA(perEvidence),
		ProportionUnevaluated: ProportionUnevaluated(perEvidence),
	}
}

// Less reports whether k sorts before other.
func (k HypothesisKey) Less(other HypothesisKey) bool {
	if k.Inconsistency != other.Inconsistency {
		return k.Inconsistency < other.Inconsistency
	}
	if k.Consistency != other.Consistency {
		return k.Consistency > other.Consistency
	}
	if k.ProportionNA != other.ProportionNA {
		return k.ProportionNA < other.ProportionNA
	}
	return k.ProportionUnevaluated < other.ProportionUnevaluated
}

// EvidenceKey orders evidence from most to least diagnostic: descending
// diagnosticity, then ascending proportion N/A, then ascending proportion
// unevaluated.
type EvidenceKey struct {
	Diagnosticity         float64
	ProportionNA          float64
	ProportionUnevaluated float64
}

// EvidenceSortKey computes the ordering key for a piece of evidence from
// its votes against each hypothesis.
func EvidenceSortKey(perHypothesis [][]domain.Vote) EvidenceKey {
	return EvidenceKey{
		Diagnosticity:         Diagnosticity(perHypothesis),
		ProportionNA:          ProportionNA(perHypothesis),
		ProportionUnevaluated: ProportionUnevaluated(perHypothesis),
	}
}

// Less reports whether k sorts before other.
func (k EvidenceKey) Less(other EvidenceKey) bool {
	if k.Diagnosticity != other.Diagnosticity {
		return k.Diagnosticity > other.Diagnosticity
	}
	if k.ProportionNA != other.ProportionNA {
		return k.ProportionNA < other.ProportionNA
	}
	return k.ProportionUnevaluated < other.ProportionUnevaluated
}
