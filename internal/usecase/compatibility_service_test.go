package usecase

import (
	"testing"

	"github.com/scentpair/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestScore_EndToEnd(t *testing.T) {
	svc := NewCompatibilityService()
	a := fragrance([]string{"bergamot"}, nil, []string{"vanilla"})
	b := fragrance([]string{"bergamot"}, nil, []string{"sandalwood"})

	got := svc.Score(a, b)

	// overlap 1/3 sits in the sweet spot; harmony is (85+70+60+95)/4
	assert.Equal(t, domain.MatchBreakdown{
		NoteOverlap:   89,
		FamilyHarmony: 78,
		LayerBalance:  11,
		AccordBlend:   70,
	}, got.Breakdown)
	assert.Equal(t, 65, got.Score)
	assert.Equal(t, []string{"bergamot"}, got.SharedNotes)
	assert.Equal(t, []string{"sandalwood"}, got.ComplementaryNotes)
	assert.Empty(t, got.PotentialClashes)
}

func TestScore_Symmetric(t *testing.T) {
	svc := NewCompatibilityService()
	records := []*domain.Fragrance{
		fragrance([]string{"bergamot", "pink pepper"}, []string{"rose", "jasmine"}, []string{"musk", "vanilla"}, "citrus", "rose", "amber"),
		fragrance([]string{"lemon", "mint"}, []string{"lavender"}, []string{"cedar", "civet"}, "musk"),
		fragrance(nil, nil, nil),
		fragrance([]string{"Apple"}, []string{"Cinnamon", "Honey"}, []string{"Oakmoss", "Leather", "Tonka Bean"}, "vanilla", "leather"),
	}

	for i, a := range records {
		for j, b := range records {
			ab, ba := svc.Score(a, b), svc.Score(b, a)
			assert.Equal(t, ab.Score, ba.Score, "score %d/%d", i, j)
			assert.Equal(t, ab.Breakdown, ba.Breakdown, "breakdown %d/%d", i, j)
		}
	}
}

func TestScore_SelfOverlapDecays(t *testing.T) {
	a := fragrance([]string{"bergamot", "lemon"}, []string{"rose", "jasmine"}, []string{"vanilla", "musk"})

	got := NewCompatibilityService().Score(a, a)

	assert.Less(t, got.Breakdown.NoteOverlap, 100)
	assert.Equal(t, 50, got.Breakdown.NoteOverlap)
	assert.Len(t, got.SharedNotes, 6)
	assert.Empty(t, got.ComplementaryNotes)
}

func TestScore_EmptyRecordsAreNeutral(t *testing.T) {
	svc := NewCompatibilityService()

	for _, pair := range [][2]*domain.Fragrance{
		{fragrance(nil, nil, nil), fragrance(nil, nil, nil)},
		{nil, nil},
	} {
		got := svc.Score(pair[0], pair[1])
		assert.Equal(t, 50, got.Breakdown.NoteOverlap)
		assert.Equal(t, 50, got.Breakdown.FamilyHarmony)
		assert.Equal(t, 50, got.Breakdown.LayerBalance)
		assert.Equal(t, 70, got.Breakdown.AccordBlend)
		assert.Equal(t, 55, got.Score)
		assert.NotNil(t, got.SharedNotes)
		assert.NotNil(t, got.ComplementaryNotes)
		assert.NotNil(t, got.PotentialClashes)
	}
}

func TestScore_UnclassifiedNotesStillOverlap(t *testing.T) {
	a := fragrance([]string{"Iso E Super"}, nil, nil)
	b := fragrance([]string{"iso e super "}, nil, nil)

	got := NewCompatibilityService().Score(a, b)

	assert.Equal(t, []string{"iso e super"}, got.SharedNotes)
	assert.Equal(t, 50, got.Breakdown.FamilyHarmony)
}

func TestOverlapCurve(t *testing.T) {
	tests := []struct {
		ratio float64
		want  float64
	}{
		{0, 0},
		{0.05, 25},
		{0.1, 50},
		{0.25, 75},
		{0.4, 100},
		{1.0, 50.02},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, overlapCurve(tt.ratio), 1e-6, "ratio %v", tt.ratio)
	}
}

func TestAccordBlend(t *testing.T) {
	a := fragrance(nil, nil, nil, "citrus", "amber", "rose", "leather")
	b := fragrance(nil, nil, nil, "musk", "leather", "vanilla")

	// citrus, oriental, floral against musky, musky, oriental
	assert.InDelta(t, 740.0/9, accordBlend(a, b), 1e-9)

	unclassified := fragrance(nil, nil, nil, "woody", "fresh")
	assert.Equal(t, 70.0, accordBlend(unclassified, b))
	assert.Equal(t, 70.0, accordBlend(fragrance(nil, nil, nil), b))
}

func TestComplementaryNotes_Capped(t *testing.T) {
	a := fragrance([]string{"bergamot", "lemon"}, nil, nil)
	b := fragrance([]string{"Bergamot", "mint", "eucalyptus"}, []string{"cucumber", "melon"}, []string{"marine", "aquatic", "ozonic"})

	got := complementaryNotes(a, b)

	assert.Equal(t, []string{"mint", "eucalyptus", "cucumber", "melon", "marine"}, got)
}

func TestPotentialClashes_Capped(t *testing.T) {
	a := fragrance([]string{"bergamot", "lemon", "lime"}, nil, nil)
	b := fragrance(nil, nil, []string{"civet", "castoreum", "hyraceum", "costus"})

	got := potentialClashes(a, b)

	assert.Equal(t, []string{"bergamot + civet", "bergamot + castoreum", "bergamot + hyraceum"}, got)
}
