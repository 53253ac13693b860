package dualcore

import (
	"math"
	"sort"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

// Comparator finds the signature and hidden enemy across two analyses.
type Comparator struct {
	cal domain.ComparisonCalibration
}

// NewComparator creates a Comparator.
func NewComparator(cal domain.ComparisonCalibration) *Comparator {
	return &Comparator{cal: cal}
}

// Compare builds the cross-song result. Side A is the slow recording and
// wins fused persona ties. If either side failed nothing is compared and
// the result is marked Partial.
func (c *Comparator) Compare(a, b domain.SideResult) domain.ComparisonResult {
	if a.Failed() || b.Failed() {
		res := domain.ComparisonResult{
			Signature:   domain.Finding{Metrics: []domain.MetricFinding{}},
			HiddenEnemy: domain.Finding{Metrics: []domain.MetricFinding{}},
			Partial:     true,
		}
		if a.Failed() {
			res.FailedSides = append(res.FailedSides, domain.SideA)
		}
		if b.Failed() {
			res.FailedSides = append(res.FailedSides, domain.SideB)
		}
		return res
	}

	pairs := pairScores(a.Analysis.Scores, b.Analysis.Scores)
	res := domain.ComparisonResult{
		Deltas: make(map[domain.Metric]float64, len(pairs)),
	}
	for _, p := range pairs {
		res.Deltas[p.Metric] = p.Delta
	}
	res.Signature = c.signature(pairs)
	res.HiddenEnemy = c.hiddenEnemy(pairs)
	fused := c.fuse(a.Analysis.Persona, b.Analysis.Persona)
	res.Fused = &fused
	return res
}

// pairScores lists every metric present on both sides, in metric order.
func pairScores(a, b domain.SubScores) []domain.MetricFinding {
	var pairs []domain.MetricFinding
	for _, m := range domain.Metrics {
		va, okA := a.Get(m)
		vb, okB := b.Get(m)
		if !okA || !okB {
			continue
		}
		pairs = append(pairs, domain.MetricFinding{
			Metric:  m,
			ScoreA:  va,
			ScoreB:  vb,
			Average: (va + vb) / 2,
			Delta:   vb - va,
		})
	}
	return pairs
}

func (c *Comparator) consistent(p domain.MetricFinding) bool {
	return math.Abs(p.Delta) <= c.cal.ConsistencyThreshold
}

func (c *Comparator) signature(pairs []domain.MetricFinding) domain.Finding {
	var found []domain.MetricFinding
	for _, p := range pairs {
		if p.ScoreA >= c.cal.StrongThreshold && p.ScoreB >= c.cal.StrongThreshold && c.consistent(p) {
			p.Pattern = SignaturePatterns[p.Metric]
			found = append(found, p)
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].Average > found[j].Average })
	return finding(found, c.cal.SignatureLimit)
}

func (c *Comparator) hiddenEnemy(pairs []domain.MetricFinding) domain.Finding {
	var found []domain.MetricFinding
	for _, p := range pairs {
		if p.ScoreA <= c.cal.WeakThreshold && p.ScoreB <= c.cal.WeakThreshold && c.consistent(p) {
			remedy := EnemyRemedies[p.Metric]
			p.Pattern = remedy.Enemy
			p.Remedy = &remedy
			found = append(found, p)
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].Average < found[j].Average })
	return finding(found, c.cal.EnemyLimit)
}

func finding(found []domain.MetricFinding, limit int) domain.Finding {
	if len(found) > limit {
		found = found[:limit]
	}
	if len(found) == 0 {
		return domain.Finding{Found: false, Metrics: []domain.MetricFinding{}}
	}
	return domain.Finding{Found: true, Metrics: found}
}

func (c *Comparator) fuse(a, b domain.Persona) domain.FusedPersona {
	if a.Tag == b.Tag {
		return domain.FusedPersona{
			Tag:       a.Tag,
			Margin:    math.Min(100, math.Max(a.Margin, b.Margin)+c.cal.AgreementBoost),
			Agreement: true,
		}
	}
	if b.Margin > a.Margin {
		return domain.FusedPersona{Tag: b.Tag, Margin: b.Margin, Secondary: a.Tag}
	}
	return domain.FusedPersona{Tag: a.Tag, Margin: a.Margin, Secondary: b.Tag}
}
