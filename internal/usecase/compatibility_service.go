package usecase

import (
	"fmt"
	"math"

	"github.com/scentpair/backend/internal/domain"
	"github.com/scentpair/backend/internal/metrics"
)

// Sub-score weights for the final compatibility score
const (
	weightNoteOverlap   = 0.20
	weightFamilyHarmony = 0.35
	weightLayerBalance  = 0.20
	weightAccordBlend   = 0.25
)

// Neutral sub-scores used when a record lacks the data a sub-score needs
const (
	neutralScore       = 50.0
	neutralAccordScore = 70.0 // accord data is often missing, so absence is not penalized
)

// Ideal share of notes per layer across both records
const (
	idealTopRatio    = 0.30
	idealMiddleRatio = 0.40
	idealBaseRatio   = 0.30
	deviationPenalty = 333.0
)

// Overlap curve breakpoints
const (
	overlapLowBreak  = 0.1
	overlapHighBreak = 0.4
	overlapDecay     = 83.3
)

// Explanatory list limits
const (
	maxComplementaryNotes = 5
	maxPotentialClashes   = 3
	complementaryCompat   = 75
	clashCompat           = 50
	topAccordsCompared    = 3
)

// CompatibilityService scores how well two fragrances layer together.
// It is stateless and never fails: missing data falls back to neutral sub-scores.
type CompatibilityService struct{}

// NewCompatibilityService creates a new compatibility service
func NewCompatibilityService() *CompatibilityService {
	return &CompatibilityService{}
}

// Score computes the weighted compatibility of a and b with explanatory note lists
func (s *CompatibilityService) Score(a, b *domain.Fragrance) domain.MatchAnalysis {
	if a == nil {
		a = &domain.Fragrance{}
	}
	if b == nil {
		b = &domain.Fragrance{}
	}

	overlap, shared := noteOverlap(a, b)
	harmony := familyHarmony(a, b)
	layers := layerBalance(a, b)
	accords := accordBlend(a, b)

	score := int(math.Round(
		overlap*weightNoteOverlap +
			harmony*weightFamilyHarmony +
			layers*weightLayerBalance +
			accords*weightAccordBlend,
	))
	metrics.MatchScores.Observe(float64(score))

	return domain.MatchAnalysis{
		Score: score,
		Breakdown: domain.MatchBreakdown{
			NoteOverlap:   int(math.Round(overlap)),
			FamilyHarmony: int(math.Round(harmony)),
			LayerBalance:  int(math.Round(layers)),
			AccordBlend:   int(math.Round(accords)),
		},
		SharedNotes:        shared,
		ComplementaryNotes: complementaryNotes(a, b),
		PotentialClashes:   potentialClashes(a, b),
	}
}

// uniqueNormalized returns normalized note names in first-seen order
func uniqueNormalized(f *domain.Fragrance) []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range f.AllNotes() {
		n := domain.NormalizeNoteName(name)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// noteOverlap scores the shared-to-unique ratio on a curve that peaks at 0.4.
// Both records empty yields the neutral score.
func noteOverlap(a, b *domain.Fragrance) (float64, []string) {
	notesA := uniqueNormalized(a)
	notesB := uniqueNormalized(b)

	inB := make(map[string]bool, len(notesB))
	for _, n := range notesB {
		inB[n] = true
	}

	shared := []string{}
	for _, n := range notesA {
		if inB[n] {
			shared = append(shared, n)
		}
	}

	total := len(notesA) + len(notesB) - len(shared)
	if total == 0 {
		return neutralScore, shared
	}
	return overlapCurve(float64(len(shared)) / float64(total)), shared
}

func overlapCurve(ratio float64) float64 {
	var score float64
	switch {
	case ratio < overlapLowBreak:
		score = ratio * (50 / overlapLowBreak)
	case ratio <= overlapHighBreak:
		score = 50 + (ratio-overlapLowBreak)*(50/(overlapHighBreak-overlapLowBreak))
	default:
		score = 100 - (ratio-overlapHighBreak)*overlapDecay
	}
	return math.Min(100, math.Max(0, score))
}

// familyCounts tallies classified notes per family, in first-seen family order
func familyCounts(f *domain.Fragrance) ([]Family, map[Family]int) {
	var order []Family
	counts := make(map[Family]int)
	for _, name := range f.AllNotes() {
		family, ok := Classify(name)
		if !ok {
			continue
		}
		if counts[family] == 0 {
			order = append(order, family)
		}
		counts[family]++
	}
	return order, counts
}

// familyHarmony is the count-weighted average compat over every family pair
func familyHarmony(a, b *domain.Fragrance) float64 {
	orderA, countsA := familyCounts(a)
	orderB, countsB := familyCounts(b)
	if len(orderA) == 0 || len(orderB) == 0 {
		return neutralScore
	}

	var total, weights int
	for _, fa := range orderA {
		for _, fb := range orderB {
			w := countsA[fa] * countsB[fb]
			total += Compat(fa, fb) * w
			weights += w
		}
	}
	return float64(total) / float64(weights)
}

// layerBalance compares the combined pyramid against a 30/40/30 split
func layerBalance(a, b *domain.Fragrance) float64 {
	top := float64(len(a.TopNotes) + len(b.TopNotes))
	middle := float64(len(a.MiddleNotes) + len(b.MiddleNotes))
	base := float64(len(a.BaseNotes) + len(b.BaseNotes))

	total := top + middle + base
	if total == 0 {
		return neutralScore
	}

	deviation := (math.Abs(top/total-idealTopRatio) +
		math.Abs(middle/total-idealMiddleRatio) +
		math.Abs(base/total-idealBaseRatio)) / 3

	return math.Max(0, 100-deviation*deviationPenalty)
}

// accordBlend averages compat across the dominant accords of both records
func accordBlend(a, b *domain.Fragrance) float64 {
	if len(a.Accords) == 0 || len(b.Accords) == 0 {
		return neutralAccordScore
	}

	familiesA := dominantAccordFamilies(a.Accords)
	familiesB := dominantAccordFamilies(b.Accords)

	var sum, count float64
	for _, fa := range familiesA {
		for _, fb := range familiesB {
			sum += float64(Compat(fa, fb))
			count++
		}
	}
	if count == 0 {
		return neutralAccordScore
	}
	return sum / count
}

func dominantAccordFamilies(accords []string) []Family {
	var families []Family
	for _, accord := range accords[:min(topAccordsCompared, len(accords))] {
		if family, ok := Classify(accord); ok {
			families = append(families, family)
		}
	}
	return families
}

// complementaryNotes lists notes only b carries whose family pairs well with one of a's families
func complementaryNotes(a, b *domain.Fragrance) []string {
	orderA, _ := familyCounts(a)

	inA := make(map[string]bool)
	for _, n := range uniqueNormalized(a) {
		inA[n] = true
	}

	result := []string{}
	seen := make(map[string]bool)
	for _, name := range b.AllNotes() {
		normalized := domain.NormalizeNoteName(name)
		if inA[normalized] || seen[normalized] {
			continue
		}
		family, ok := Classify(name)
		if !ok {
			continue
		}
		for _, fa := range orderA {
			if Compat(fa, family) >= complementaryCompat {
				seen[normalized] = true
				result = append(result, name)
				break
			}
		}
		if len(result) == maxComplementaryNotes {
			break
		}
	}
	return result
}

// potentialClashes lists the first cross-record note pairs whose families pair poorly
func potentialClashes(a, b *domain.Fragrance) []string {
	result := []string{}
	for _, noteA := range a.AllNotes() {
		familyA, ok := Classify(noteA)
		if !ok {
			continue
		}
		for _, noteB := range b.AllNotes() {
			familyB, ok := Classify(noteB)
			if !ok {
				continue
			}
			if Compat(familyA, familyB) < clashCompat {
				result = append(result, fmt.Sprintf("%s + %s", noteA, noteB))
				if len(result) == maxPotentialClashes {
					return result
				}
			}
		}
	}
	return result
}
