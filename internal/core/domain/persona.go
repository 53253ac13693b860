package domain

// PersonaTag is one of the six vocal archetypes.
type PersonaTag string

const (
	PersonaStoryteller   PersonaTag = "storyteller"
	PersonaWorshipLeader PersonaTag = "worship-leader"
	PersonaPassionate    PersonaTag = "passionate"
	PersonaIntimate      PersonaTag = "intimate"
	PersonaJoyful        PersonaTag = "joyful"
	PersonaSoulful       PersonaTag = "soulful"
)

// PersonaTags is the fixed declaration order, also used as the final tie-break.
var PersonaTags = []PersonaTag{
	PersonaStoryteller,
	PersonaWorshipLeader,
	PersonaPassionate,
	PersonaIntimate,
	PersonaJoyful,
	PersonaSoulful,
}

// Code returns the two-letter short code shown on the vocal type chart.
func (p PersonaTag) Code() string {
	switch p {
	case PersonaStoryteller:
		return "ST"
	case PersonaWorshipLeader:
		return "WL"
	case PersonaPassionate:
		return "PA"
	case PersonaIntimate:
		return "IN"
	case PersonaJoyful:
		return "JO"
	case PersonaSoulful:
		return "SO"
	}
	return ""
}

// Persona is the classification of one DNA vector.
type Persona struct {
	Tag      PersonaTag `json:"tag"`
	RunnerUp PersonaTag `json:"runner_up"`
	// Margin is the winner's fit minus the runner-up's fit.
	Margin     float64                `json:"margin"`
	Fits       map[PersonaTag]float64 `json:"fits"`
	TieBroken  bool                   `json:"tie_broken"`
	Borderline bool                   `json:"borderline"`
	// Confidence is in [0,1] and already discounted for quality and fallbacks.
	Confidence float64 `json:"confidence"`
}
