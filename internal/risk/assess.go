package risk

// Tier is the coarse recommendation bucket for a score.
type Tier int

const (
	TierSafe Tier = iota
	TierMonitor
	TierUnstake
)

// String returns the lowercase tier name.
func (t Tier) String() string {
	switch t {
	case TierSafe:
		return "safe"
	case TierMonitor:
		return "monitor"
	case TierUnstake:
		return "unstake"
	default:
		return "unknown"
	}
}

// Tone is the semantic color of a tag. Rendering maps tones to colors.
type Tone int

const (
	ToneHealthy Tone = iota // emerald
	ToneInfo                // blue
	ToneCaution             // yellow
	ToneWarning             // orange
	ToneCritical            // red
)

// Tag is a short label shown under a score.
type Tag struct {
	Label string
	Tone  Tone
}

// Thresholds controls how scores map to tiers.
type Thresholds struct {
	UnstakeAt int // score >= UnstakeAt is TierUnstake
	SafeBelow int // score < SafeBelow is TierSafe
	AlertAt   int // score >= AlertAt is rendered as an alert
}

// DefaultThresholds returns the stock 75 / 40 / 50 thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{UnstakeAt: 75, SafeBelow: 40, AlertAt: 50}
}

// Assessment is everything the dashboard derives from a single score.
type Assessment struct {
	Score          int
	Tier           Tier
	Recommendation string
	Tags           []Tag
	Alert          bool
}

// Recommendation strings.
const (
	RecommendSafe    = "SAFE TO STAKE"
	RecommendMonitor = "MONITOR CLOSELY"
	RecommendUnstake = "CONSIDER UNSTAKING"
)

// Assess maps a score to its assessment using the default thresholds.
func Assess(score int) Assessment {
	return DefaultThresholds().Assess(score)
}

// Assess maps a score to its assessment.
func (t Thresholds) Assess(score int) Assessment {
	a := Assessment{
		Score: score,
		Alert: score >= t.AlertAt,
	}

	switch {
	case score >= t.UnstakeAt:
		a.Tier = TierUnstake
		a.Recommendation = RecommendUnstake
		a.Tags = []Tag{
			{Label: "High Concentration", Tone: ToneCritical},
			{Label: "Volatility Spike", Tone: ToneWarning},
		}
	case score < t.SafeBelow:
		a.Tier = TierSafe
		a.Recommendation = RecommendSafe
		a.Tags = []Tag{
			{Label: "Decentralized", Tone: ToneHealthy},
			{Label: "99.9% Uptime", Tone: ToneInfo},
		}
	default:
		a.Tier = TierMonitor
		a.Recommendation = RecommendMonitor
		a.Tags = []Tag{
			{Label: "Moderate Risk", Tone: ToneCaution},
		}
	}

	return a
}

// HasTone reports whether any tag carries the given tone.
func (a Assessment) HasTone(tone Tone) bool {
	for _, tag := range a.Tags {
		if tag.Tone == tone {
			return true
		}
	}
	return false
}

// criticalConcentration is the share of network stake above which a single
// validator is flagged.
const criticalConcentration = 0.33

// ConcentrationVerdict labels a stake concentration ratio.
func ConcentrationVerdict(concentration float64) string {
	if concentration > criticalConcentration {
		return "CRITICAL"
	}
	return "HEALTHY"
}
