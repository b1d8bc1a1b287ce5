package domain

// CatalogHit is a single hit from the structured search API
type CatalogHit struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	Brand           CatalogBrand  `json:"brand"`
	Image           *CatalogImage `json:"image,omitempty"`
	ReviewsScoreAvg *float64      `json:"reviewsScoreAvg,omitempty"`
	ReviewsCount    *int          `json:"reviewsCount,omitempty"`
	Notes           []CatalogNote `json:"notes,omitempty"`
}

// CatalogBrand is the nested brand object of a catalog hit
type CatalogBrand struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CatalogImage is the nested image object of a catalog hit
type CatalogImage struct {
	URL string `json:"url"`
}

// CatalogNote is a flat note entry of a catalog hit
type CatalogNote struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// ScrapeFormat selects the document format returned by the scraping proxy
type ScrapeFormat string

const (
	FormatMarkdown ScrapeFormat = "markdown"
	FormatHTML     ScrapeFormat = "html"
)

// ScrapeRequest describes a page capture through the scraping proxy
type ScrapeRequest struct {
	URL             string
	Format          ScrapeFormat
	OnlyMainContent bool
	WaitForMillis   int
}

// ScrapeResponse is the scraping proxy envelope
type ScrapeResponse struct {
	Success bool        `json:"success"`
	Data    *ScrapeData `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ScrapeData holds the captured page
type ScrapeData struct {
	Markdown string          `json:"markdown,omitempty"`
	HTML     string          `json:"html,omitempty"`
	Metadata *ScrapeMetadata `json:"metadata,omitempty"`
}

// ScrapeMetadata is the page metadata reported by the proxy
type ScrapeMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}
