package fragranceapi

import (
	"strconv"

	"github.com/scentpair/backend/internal/domain"
)

// MapToFragrance converts a catalog hit to the canonical record.
// The catalog reports a flat note list, so layers are approximated by position.
func MapToFragrance(hit domain.CatalogHit) *domain.Fragrance {
	notes := make([]domain.Note, 0, len(hit.Notes))
	for _, n := range hit.Notes {
		notes = append(notes, domain.Note{Name: n.Name})
	}
	top, middle, base := domain.SplitIntoLayers(notes)

	f := &domain.Fragrance{
		ID:          strconv.FormatInt(hit.ID, 10),
		Name:        hit.Name,
		Brand:       hit.Brand.Name,
		Rating:      hit.ReviewsScoreAvg,
		Votes:       hit.ReviewsCount,
		TopNotes:    top,
		MiddleNotes: middle,
		BaseNotes:   base,
		Source:      domain.SourceStructured,
	}
	if hit.Image != nil {
		f.ImageURL = hit.Image.URL
	}
	return f
}

// MapToSearchHit converts a catalog hit to a search hit. The catalog has no
// page URL, so the id doubles as the resolvable reference.
func MapToSearchHit(hit domain.CatalogHit) domain.SearchHit {
	id := strconv.FormatInt(hit.ID, 10)
	result := domain.SearchHit{
		ID:    id,
		Name:  hit.Name,
		Brand: hit.Brand.Name,
		URL:   id,
	}
	if hit.Image != nil {
		result.ImageURL = hit.Image.URL
	}
	return result
}

// MapToSearchHits converts a list of catalog hits
func MapToSearchHits(hits []domain.CatalogHit) []domain.SearchHit {
	results := make([]domain.SearchHit, 0, len(hits))
	for _, h := range hits {
		results = append(results, MapToSearchHit(h))
	}
	return results
}
