// Package matching selects the mood profile that best fits an emotion vector.
package matching

import (
	"strings"

	"github.com/justestif/moodmatch/internal/profile"
)

// Evaluate scores one profile against an emotion vector.
//
// Every condition must hold with a strict comparison (score > threshold); emotions
// missing from v count as 0. When all hold, the score is the summed margin by which
// the thresholds are exceeded. ok is false for non-candidates, including profiles
// without conditions.
func Evaluate(p profile.Profile, v map[string]float64) (score float64, ok bool) {
	if len(p.PercentConditions) == 0 {
		return 0, false
	}
	// sorted order keeps the float sum identical across calls
	for _, emotion := range p.Emotions() {
		minPct := p.PercentConditions[emotion]
		actual := v[emotion]
		if !(actual > minPct) {
			return 0, false
		}
		score += actual - minPct
	}
	return score, true
}

// Normalize returns a copy of v with keys trimmed and lower-cased.
// When two keys collide the larger score is kept.
func Normalize(v map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(v))
	for k, score := range v {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		if existing, ok := out[key]; ok && existing >= score {
			continue
		}
		out[key] = score
	}
	return out
}
