package presentation

import (
	"fmt"
	"math"
)

// Mode selects how the displayed percentages relate to the backend breakdown.
type Mode string

const (
	// ModeRoll ignores the breakdown and rolls every dimension from the title seed.
	ModeRoll Mode = "roll"
	// ModeBlend adds seeded Gaussian jitter to the weighted breakdown.
	ModeBlend Mode = "blend"
)

// DefaultNoise is the jitter standard deviation used by ModeBlend.
const DefaultNoise = 8.0

// swapThreshold is the fourth-draw cutoff above which accessibility and
// work type trade places in ModeRoll.
const swapThreshold = 0.6

// ParseMode converts a config value into a Mode. An empty string means ModeRoll.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeRoll:
		return ModeRoll, nil
	case ModeBlend:
		return ModeBlend, nil
	default:
		return "", fmt.Errorf("unknown score mode %q (want %q or %q)", s, ModeRoll, ModeBlend)
	}
}

// Breakdown holds the raw backend sub-scores of a match.
type Breakdown struct {
	Skill         float64 `json:"skill"`
	Accessibility float64 `json:"accessibility"`
	WorkType      float64 `json:"workType"`
}

// Score is the presentable breakdown: one integer percentage per dimension.
type Score struct {
	Skill         int `json:"skill"`
	Accessibility int `json:"accessibility"`
	WorkType      int `json:"workType"`
}

// Band is an inclusive integer range a displayed percentage is clamped into.
type Band struct {
	Min int
	Max int
}

// Clamp rounds v half up and forces it into the band.
func (b Band) Clamp(v float64) int {
	r := int(math.Floor(v + 0.5))
	if r < b.Min {
		return b.Min
	}
	if r > b.Max {
		return b.Max
	}
	return r
}

// Contains reports whether v lies within the band.
func (b Band) Contains(v int) bool {
	return v >= b.Min && v <= b.Max
}

// Output bands per dimension.
var (
	SkillBand         = Band{Min: 55, Max: 92}
	AccessibilityBand = Band{Min: 50, Max: 88}
	WorkTypeBand      = Band{Min: 45, Max: 85}
)

// Weights is the relative importance of each dimension.
type Weights struct {
	Skill         float64
	Accessibility float64
	WorkType      float64
}

// DefaultWeights are the fixed dimension weights.
var DefaultWeights = Weights{Skill: 0.5, Accessibility: 0.3, WorkType: 0.2}

// Starting bands for ModeRoll: low end and width of each initial roll.
// Skill fit is expected to read higher than environment or work-type fit.
const (
	skillRollBase         = 78.0
	accessibilityRollBase = 66.0
	workTypeRollBase      = 58.0
	rollWidth             = 6.0
)

// Offsets added to the weighted breakdown in ModeBlend.
const (
	skillBlendOffset         = 40.0
	accessibilityBlendOffset = 35.0
	workTypeBlendOffset      = 30.0
)

// Normalizer converts a breakdown into a Score. The zero value uses ModeRoll.
type Normalizer struct {
	Mode    Mode
	Noise   float64
	Weights Weights
}

// NewNormalizer returns a Normalizer for mode with default weights and noise.
func NewNormalizer(mode Mode) Normalizer {
	return Normalizer{Mode: mode, Noise: DefaultNoise, Weights: DefaultWeights}
}

// Normalize is the default pipeline: ModeRoll seeded by jobTitle.
func Normalize(jobTitle string, b Breakdown) Score {
	return Normalizer{Mode: ModeRoll}.Normalize(jobTitle, b)
}

// Normalize returns the presentable score for jobTitle. The result depends only
// on jobTitle in ModeRoll and on jobTitle plus b in ModeBlend; it never fails.
func (n Normalizer) Normalize(jobTitle string, b Breakdown) Score {
	rng := NewMulberry32(HashTitle(jobTitle))
	if n.Mode == ModeBlend {
		return n.blend(rng, b)
	}
	return roll(rng)
}

func roll(rng Source) Score {
	skill := skillRollBase + rng.Next()*rollWidth
	access := accessibilityRollBase + rng.Next()*rollWidth
	work := workTypeRollBase + rng.Next()*rollWidth
	if rng.Next() > swapThreshold {
		access, work = work, access
	}
	return Score{
		Skill:         SkillBand.Clamp(skill),
		Accessibility: AccessibilityBand.Clamp(access),
		WorkType:      WorkTypeBand.Clamp(work),
	}
}

func (n Normalizer) blend(rng Source, b Breakdown) Score {
	w := n.Weights
	if w == (Weights{}) {
		w = DefaultWeights
	}
	noise := n.Noise
	if noise <= 0 || math.IsNaN(noise) || math.IsInf(noise, 0) {
		noise = DefaultNoise
	}

	// the first draw is discarded to decorrelate from the seed
	rng.Next()

	skill := finite(b.Skill)*w.Skill + skillBlendOffset
	access := finite(b.Accessibility)*w.Accessibility + accessibilityBlendOffset
	work := finite(b.WorkType)*w.WorkType + workTypeBlendOffset

	skill += Gaussian(rng, noise)
	access += Gaussian(rng, noise)
	work += Gaussian(rng, noise)

	return Score{
		Skill:         SkillBand.Clamp(skill),
		Accessibility: AccessibilityBand.Clamp(access),
		WorkType:      WorkTypeBand.Clamp(work),
	}
}

// finite maps missing or non-finite backend values to 0. Extremely large
// values are bounded so the clamp never sees an overflowing int conversion.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	const limit = 1e6
	return math.Max(-limit, math.Min(limit, v))
}
