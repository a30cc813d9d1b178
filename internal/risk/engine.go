package risk

import (
	"math"
	"math/rand/v2"
)

// Profile holds the raw risk factors of a validator, each in [0, 1].
type Profile struct {
	Type          string  `json:"type" mapstructure:"type"`
	Concentration float64 `json:"concentration" mapstructure:"concentration"`
	Volatility    float64 `json:"volatility" mapstructure:"volatility"`
	UnstakeSpike  float64 `json:"unstakeSpike" mapstructure:"unstakeSpike"`
}

// Factor weights of the liquid staking risk model.
const (
	weightConcentration = 0.40
	weightVolatility    = 0.30
	weightUnstake       = 0.30

	// noiseAmplitude bounds the market noise added to every computation.
	noiseAmplitude = 0.05
)

// Engine computes risk scores from profiles.
type Engine struct {
	rng *rand.Rand
}

// NewEngine creates an engine drawing noise from rng. A nil rng uses a
// randomly seeded source.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Engine{rng: rng}
}

// Compute returns the 0-100 score for a profile with fresh market noise.
func (e *Engine) Compute(p Profile) int {
	noise := (e.rng.Float64()*2 - 1) * noiseAmplitude
	return ScoreWithNoise(p, noise)
}

// ScoreWithNoise applies the weighted model with an explicit noise term and
// clamps the result to [0, 100].
func ScoreWithNoise(p Profile, noise float64) int {
	raw := p.Concentration*weightConcentration +
		p.Volatility*weightVolatility +
		p.UnstakeSpike*weightUnstake +
		noise

	scaled := math.Min(math.Max(raw*100, 0), 100)
	return int(scaled)
}
