// Package persona classifies a DNA vector into one of six vocal archetypes.
package persona

import "github.com/jang1563/worship-vocal-ai/internal/core/domain"

// Profile is the canonical DNA of one persona. Privileged dimensions carry
// most of the fit weight; the first one is the persona's primary trait.
type Profile struct {
	Tag        domain.PersonaTag
	Vector     domain.DNAVector
	Privileged [2]domain.DNADimension
}

// Profiles are listed in declaration order.
var Profiles = []Profile{
	{
		Tag:        domain.PersonaStoryteller,
		Vector:     domain.DNAVector{Warmth: 75, Power: 40, Stability: 75, Expression: 50, Groove: 45, Intimacy: 60},
		Privileged: [2]domain.DNADimension{domain.DNAWarmth, domain.DNAStability},
	},
	{
		Tag:        domain.PersonaWorshipLeader,
		Vector:     domain.DNAVector{Warmth: 55, Power: 65, Stability: 85, Expression: 55, Groove: 55, Intimacy: 40},
		Privileged: [2]domain.DNADimension{domain.DNAStability, domain.DNAPower},
	},
	{
		Tag:        domain.PersonaPassionate,
		Vector:     domain.DNAVector{Warmth: 45, Power: 90, Stability: 55, Expression: 85, Groove: 55, Intimacy: 20},
		Privileged: [2]domain.DNADimension{domain.DNAPower, domain.DNAExpression},
	},
	{
		Tag:        domain.PersonaIntimate,
		Vector:     domain.DNAVector{Warmth: 85, Power: 25, Stability: 60, Expression: 40, Groove: 35, Intimacy: 90},
		Privileged: [2]domain.DNADimension{domain.DNAIntimacy, domain.DNAWarmth},
	},
	{
		Tag:        domain.PersonaJoyful,
		Vector:     domain.DNAVector{Warmth: 30, Power: 60, Stability: 60, Expression: 65, Groove: 90, Intimacy: 35},
		Privileged: [2]domain.DNADimension{domain.DNAGroove, domain.DNAWarmth},
	},
	{
		Tag:        domain.PersonaSoulful,
		Vector:     domain.DNAVector{Warmth: 60, Power: 70, Stability: 50, Expression: 85, Groove: 80, Intimacy: 45},
		Privileged: [2]domain.DNADimension{domain.DNAExpression, domain.DNAGroove},
	},
}

// ProfileFor returns the profile of tag.
func ProfileFor(tag domain.PersonaTag) (Profile, bool) {
	for _, p := range Profiles {
		if p.Tag == tag {
			return p, true
		}
	}
	return Profile{}, false
}

func (p Profile) privileged(d domain.DNADimension) bool {
	return p.Privileged[0] == d || p.Privileged[1] == d
}
