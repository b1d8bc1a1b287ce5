package domain

import "strings"

// Source identifies which adapter produced a fragrance record
type Source string

const (
	SourceStructured Source = "structured"
	SourceScraped    Source = "scraped"
)

// Note is a single olfactory ingredient as reported by a source.
// Names are kept as reported; normalization happens at comparison time.
type Note struct {
	Name      string   `json:"name"`
	Intensity *float64 `json:"intensity,omitempty"`
	ImageURL  string   `json:"imageUrl,omitempty"`
}

// Fragrance is the canonical fragrance record shared by both sources and the scoring engine
type Fragrance struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Brand           string            `json:"brand"`
	ImageURL        string            `json:"imageUrl,omitempty"`
	URL             string            `json:"url,omitempty"`
	Rating          *float64          `json:"rating,omitempty"` // 0-5
	Votes           *int              `json:"votes,omitempty"`
	TopNotes        []Note            `json:"topNotes"`
	MiddleNotes     []Note            `json:"middleNotes"`
	BaseNotes       []Note            `json:"baseNotes"`
	Accords         []string          `json:"accords,omitempty"` // most dominant first
	AccordStrengths map[string]string `json:"accordStrengths,omitempty"`
	Longevity       string            `json:"longevity,omitempty"`
	Sillage         string            `json:"sillage,omitempty"`
	Year            string            `json:"year,omitempty"`
	Gender          string            `json:"gender,omitempty"`
	Perfumer        string            `json:"perfumer,omitempty"`
	Concentration   string            `json:"concentration,omitempty"`
	Source          Source            `json:"source"`

	// Degraded marks a thin record built from a search hit after fetching or
	// parsing the detail page failed.
	Degraded bool `json:"degraded,omitempty"`
}

// AllNotes returns every note name in top, middle, base order
func (f *Fragrance) AllNotes() []string {
	if f == nil {
		return nil
	}
	names := make([]string, 0, len(f.TopNotes)+len(f.MiddleNotes)+len(f.BaseNotes))
	for _, layer := range [][]Note{f.TopNotes, f.MiddleNotes, f.BaseNotes} {
		for _, n := range layer {
			names = append(names, n.Name)
		}
	}
	return names
}

// HasNotes reports whether any layer carries at least one note
func (f *Fragrance) HasNotes() bool {
	return f != nil && len(f.TopNotes)+len(f.MiddleNotes)+len(f.BaseNotes) > 0
}

// SearchHit is the lightweight record returned by search before a full record is resolved
type SearchHit struct {
	ID       string `json:"id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Brand    string `json:"brand"`
	ImageURL string `json:"imageUrl,omitempty"`
	URL      string `json:"url"`
}

// MinimalFragrance projects a search hit into a thin scraped record with empty note lists
func MinimalFragrance(hit SearchHit) *Fragrance {
	return &Fragrance{
		ID:          hit.ID,
		Name:        hit.Name,
		Brand:       hit.Brand,
		ImageURL:    hit.ImageURL,
		URL:         hit.URL,
		TopNotes:    []Note{},
		MiddleNotes: []Note{},
		BaseNotes:   []Note{},
		Accords:     []string{},
		Source:      SourceScraped,
		Degraded:    true,
	}
}

// NotesFromNames wraps plain names into notes
func NotesFromNames(names []string) []Note {
	notes := make([]Note, 0, len(names))
	for _, name := range names {
		notes = append(notes, Note{Name: name})
	}
	return notes
}

// SplitIntoLayers approximates a pyramid from a flat list by cutting it into
// thirds at ceil(n/3). The split is positional, not a statement about volatility.
func SplitIntoLayers(notes []Note) (top, middle, base []Note) {
	third := (len(notes) + 2) / 3
	top = append([]Note{}, notes[:min(third, len(notes))]...)
	middle = append([]Note{}, notes[min(third, len(notes)):min(2*third, len(notes))]...)
	base = append([]Note{}, notes[min(2*third, len(notes)):]...)
	return top, middle, base
}

// NormalizeNoteName lowercases and trims a note name for comparison
func NormalizeNoteName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
