package main

import "math"

// ConditionalProbability returns joint / denominator.
// A zero denominator yields +Inf (or NaN when joint is also zero); it never panics.
func ConditionalProbability(denominator, joint int64) float64 {
	return float64(joint) / float64(denominator)
}

// MutualInformation returns ln(pxy / (px * py)).
//
// This is the enrichment score the tool has always reported: raw counts, natural
// log, and no division by the total number of files, so it is not textbook PMI.
// Values are only comparable with each other. Any zero count gives a non-finite result.
func MutualInformation(px, py, pxy int64) float64 {
	return math.Log(float64(pxy) / (float64(px) * float64(py)))
}

// NewResultRow computes every derived metric for a co-occurrence record.
func NewResultRow(c CoOccurrence) ResultRow {
	return ResultRow{
		X:       c.X.QualifiedName(),
		Y:       c.Y.QualifiedName(),
		Px:      c.Px,
		Py:      c.Py,
		Pxy:     c.Pxy,
		CPxy:    ConditionalProbability(c.Py, c.Pxy),
		CPyx:    ConditionalProbability(c.Px, c.Pxy),
		MIxy:    MutualInformation(c.Px, c.Py, c.Pxy),
		Metric1: float64(c.Pxy) / float64(c.Px+c.Py),
		Metric2: float64(c.Pxy) / (float64(c.Px) * float64(c.Py)),
	}
}
