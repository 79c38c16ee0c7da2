// Package scoring computes normalized reading scores. All functions are
// pure: an assessment plus the configured ranges/weights in, integers out.
package scoring

import (
	"math"

	"github.com/lasmonitor/lasmonitor/internal/reading"
)

// Round is round-half-up: 58.5 -> 59, matching how every score in the
// persisted data was produced. Every score-producing computation rounds
// through this one helper.
func Round(x float64) int { return int(math.Floor(x + 0.5)) }

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Scale100 clamps v to [min,max] and maps it linearly onto 0..100,
// rounded half-up. Precondition: min < max. Equal bounds divide by zero
// and an inverted range inverts the scale; neither is checked here.
func Scale100(v, min, max float64) int {
	return Round(clamp((v-min)/(max-min), 0, 1) * 100)
}

// LevelScore averages whichever text-level measures the assessment
// carries: lexile and lix rescaled through their ranges, a stanine in
// 1..9 mapped onto 0..100, a percentile in 0..100 used as-is. Each
// present measure contributes equally. ok is false when none is present.
func LevelScore(a reading.Assessment, r reading.Ranges) (int, bool) {
	var parts []int
	if a.Lexile != nil {
		parts = append(parts, Scale100(*a.Lexile, r.Lexile.Min(), r.Lexile.Max()))
	}
	if a.Lix != nil {
		parts = append(parts, Scale100(*a.Lix, r.Lix.Min(), r.Lix.Max()))
	}
	if a.DLSStanine != nil && *a.DLSStanine >= 1 && *a.DLSStanine <= 9 {
		parts = append(parts, Round(float64(*a.DLSStanine-1)/8*100))
	}
	if a.DLSPercentile != nil && *a.DLSPercentile >= 0 && *a.DLSPercentile <= 100 {
		parts = append(parts, Round(*a.DLSPercentile))
	}
	if len(parts) == 0 {
		return 0, false
	}
	sum := 0
	for _, p := range parts {
		sum += p
	}
	return Round(float64(sum) / float64(len(parts))), true
}

// NRS is the normalized composite reading score: the weighted average of
// the speed, comprehension and level sub-scores. Only sub-scores that
// exist contribute, to both numerator and denominator, so missing
// measurements do not drag the composite down. ok is false when no
// sub-score exists at all.
func NRS(a reading.Assessment, r reading.Ranges, w reading.Weights) (int, bool) {
	type item struct {
		score  int
		weight float64
	}
	var items []item
	if a.WPM != nil {
		items = append(items, item{Scale100(*a.WPM, r.WPM.Min(), r.WPM.Max()), w.WPM})
	}
	if a.Comprehension != nil {
		items = append(items, item{Scale100(*a.Comprehension, r.Comp.Min(), r.Comp.Max()), w.Comp})
	}
	if lvl, ok := LevelScore(a, r); ok {
		items = append(items, item{lvl, w.Level})
	}
	if len(items) == 0 {
		return 0, false
	}
	var sum, totalW float64
	for _, it := range items {
		sum += float64(it.score) * it.weight
		totalW += it.weight
	}
	return Round(sum / totalW), true
}
