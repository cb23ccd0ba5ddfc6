package profile

import (
	"math"

	"github.com/jonathan/voicedna/internal/types"
)

const (
	volumeWeight     = 0.6
	ruleWeight       = 0.4
	freshContributor = 1.0
)

// Score computes the calibration score from contribution volume, recency and
// confident learned rules. The result is always within [0,100].
func (a *Aggregator) Score(p *types.VoiceDNA) int {
	if p == nil {
		return 0
	}
	v := math.Min(1, math.Log1p(a.effectiveCount(p))/math.Log1p(float64(a.cfg.SaturationCount)))
	r := a.ruleConfidence(p)
	score := int(math.Round(100 * (volumeWeight*v + ruleWeight*r)))
	return max(0, min(100, score))
}

// effectiveCount counts contributions, discounting those older than the
// recency window relative to the newest one. Contributions that have aged
// out of the retained history count as stale.
func (a *Aggregator) effectiveCount(p *types.VoiceDNA) float64 {
	var newest int64
	for _, rec := range p.History {
		if t := rec.At.UnixNano(); t > newest {
			newest = t
		}
	}
	cutoff := newest - a.cfg.RecencyWindow.Nanoseconds()

	n := 0.0
	for _, rec := range p.History {
		if rec.At.UnixNano() >= cutoff {
			n += freshContributor
		} else {
			n += a.cfg.StaleWeight
		}
	}
	if trimmed := p.TotalContributions() - len(p.History); trimmed > 0 {
		n += float64(trimmed) * a.cfg.StaleWeight
	}
	return n
}

func (a *Aggregator) ruleConfidence(p *types.VoiceDNA) float64 {
	var sum float64
	var n int
	for _, r := range p.LearnedRules {
		if r.Confidence > a.cfg.RuleConfidenceFloor {
			sum += r.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// CheckInvariants verifies a profile is internally consistent.
func CheckInvariants(p *types.VoiceDNA) error {
	if p == nil {
		return invariantError("profile", "nil profile")
	}
	if p.CalibrationScore < 0 || p.CalibrationScore > 100 {
		return invariantError("calibration_score", "%d outside [0,100]", p.CalibrationScore)
	}
	if p.VoiceSessionsAnalyzed < 0 || p.WritingSamplesAnalyzed < 0 || p.CalibrationRoundsCompleted < 0 {
		return invariantError("counters", "negative contribution counter")
	}

	scalars := map[string]float64{
		"pace_variation": p.SpokenPatterns.Rhythm.PaceVariation,
		"average_energy": p.SpokenPatterns.Enthusiasm.AverageEnergy,
		"formality":      p.WrittenPatterns.Formality,
	}
	for _, dim := range types.TonalOrder {
		scalars[string(dim)] = p.TonalAttributes.Get(dim)
	}
	for name, v := range scalars {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return invariantError(name, "%v outside [0,1]", v)
		}
	}

	for i, r := range p.LearnedRules {
		if r.Confidence < 0 || r.Confidence > 1 {
			return invariantError("learned_rules", "rule %d confidence %v outside [0,1]", i, r.Confidence)
		}
	}

	if ri := p.ReferentInfluences; ri != nil {
		if ri.UserWeight < 50 {
			return invariantError("referent_influences", "user weight %d below 50", ri.UserWeight)
		}
		if total := ri.UserWeight + ri.ReferentTotal(); total != 100 {
			return invariantError("referent_influences", "weights sum to %d, want 100", total)
		}
	}
	return nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
