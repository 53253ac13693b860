package persona

import (
	"fmt"
	"math"
	"sort"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

// Classifier scores a DNA vector against every persona profile.
type Classifier struct {
	cal      domain.PersonaCalibration
	profiles []Profile
}

// NewClassifier creates a Classifier over the built-in profiles.
func NewClassifier(cal domain.PersonaCalibration) *Classifier {
	return &Classifier{cal: cal, profiles: Profiles}
}

// Fit returns 100 minus the weighted L1 distance between dna and the profile.
func (c *Classifier) Fit(dna domain.DNAVector, p Profile) float64 {
	dist := 0.0
	for _, d := range domain.DNADimensions {
		w := c.cal.OtherWeight
		if p.privileged(d) {
			w = c.cal.PrivilegedWeight
		}
		dist += w * math.Abs(dna.Get(d)-p.Vector.Get(d))
	}
	return 100 - dist
}

type candidate struct {
	profile Profile
	order   int
	fit     float64
	// strength is the mean DNA value over the privileged dimensions.
	strength float64
	// extremity is the larger distance of a privileged DNA value from 50.
	extremity float64
}

// Classify picks the best fitting persona. Fits within TieEpsilon of the top
// are resolved by privileged DNA strength, then how far a privileged value
// sits from 50, then declaration order. fallbacks is the number of
// sub-scores that used fallback constants; each lowers the confidence.
func (c *Classifier) Classify(dna domain.DNAVector, q domain.Quality, fallbacks int) (domain.Persona, error) {
	cands := make([]candidate, len(c.profiles))
	fits := make(map[domain.PersonaTag]float64, len(c.profiles))
	for i, p := range c.profiles {
		fit := c.Fit(dna, p)
		if math.IsNaN(fit) {
			return domain.Persona{}, fmt.Errorf("persona: classify: %w", &domain.CalibrationViolationError{
				Stage: "persona",
				Field: string(p.Tag),
				Value: fit,
			})
		}
		fits[p.Tag] = fit
		a, b := dna.Get(p.Privileged[0]), dna.Get(p.Privileged[1])
		cands[i] = candidate{
			profile:   p,
			order:     i,
			fit:       fit,
			strength:  (a + b) / 2,
			extremity: math.Max(math.Abs(a-50), math.Abs(b-50)),
		}
	}
	if len(cands) < 2 {
		return domain.Persona{}, fmt.Errorf("persona: classify: need at least two profiles, have %d", len(cands))
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].fit > cands[j].fit })
	top := cands[0].fit

	tied := 1
	for tied < len(cands) && top-cands[tied].fit <= c.cal.TieEpsilon {
		tied++
	}
	if tied > 1 {
		sort.SliceStable(cands[:tied], func(i, j int) bool {
			return beats(cands[i], cands[j])
		})
	}

	winner := cands[0]
	runner := cands[1]
	for _, cand := range cands[2:] {
		if cand.fit > runner.fit {
			runner = cand
		}
	}

	result := domain.Persona{
		Tag:       winner.profile.Tag,
		RunnerUp:  runner.profile.Tag,
		Margin:    math.Max(0, winner.fit-runner.fit),
		Fits:      fits,
		TieBroken: tied > 1,
	}
	result.Borderline = result.Margin < c.cal.BorderlineMargin
	result.Confidence = c.confidence(winner.fit, runner.fit, q, fallbacks)
	return result, nil
}

// beats orders two tied candidates.
func beats(a, b candidate) bool {
	if a.strength != b.strength {
		return a.strength > b.strength
	}
	if a.extremity != b.extremity {
		return a.extremity > b.extremity
	}
	return a.order < b.order
}

func (c *Classifier) confidence(winFit, runnerFit float64, q domain.Quality, fallbacks int) float64 {
	if winFit <= 0 {
		return 0
	}
	conf := (winFit - runnerFit) / winFit
	conf *= q.Overall / 100
	conf *= 1 - c.cal.FallbackPenalty*float64(fallbacks)
	return math.Min(1, math.Max(0, conf))
}
