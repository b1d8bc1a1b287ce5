package fragrantica

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/scentpair/backend/internal/domain"
	"github.com/scentpair/backend/internal/logging"
	"github.com/yuin/goldmark"
)

// MaxAccords caps the number of main accords kept per record
const MaxAccords = 10

// Page is a captured detail page. Markdown is preferred; HTML is used when
// the proxy returned only HTML and for link scanning.
type Page struct {
	Markdown string
	HTML     string

	once     sync.Once
	text     string
	linkHTML string
}

// prepare derives the text and link views of the page once
func (p *Page) prepare() {
	p.once.Do(func() {
		p.text = p.Markdown
		p.linkHTML = p.HTML

		if p.linkHTML == "" && p.Markdown != "" {
			var buf bytes.Buffer
			if err := goldmark.Convert([]byte(p.Markdown), &buf); err == nil {
				p.linkHTML = buf.String()
			}
		}
		if p.text == "" && p.HTML != "" {
			if doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.HTML)); err == nil {
				p.text = doc.Text()
			}
		}
	})
}

// Text returns the searchable body of the page
func (p *Page) Text() string {
	p.prepare()
	return p.text
}

// LinkHTML returns an HTML view of the page for structural link scanning
func (p *Page) LinkHTML() string {
	p.prepare()
	return p.linkHTML
}

// extractor returns a field value, or false when its pattern finds nothing
type extractor func(p *Page) (string, bool)

// firstMatch runs extractors in priority order and returns the first success
func firstMatch(p *Page, extractors ...extractor) (string, bool) {
	for _, extract := range extractors {
		if v, ok := extract(p); ok {
			return v, true
		}
	}
	return "", false
}

// patternExtractor returns the first capture group of pattern over the page text
func patternExtractor(pattern *regexp.Regexp) extractor {
	return func(p *Page) (string, bool) {
		m := pattern.FindStringSubmatch(p.Text())
		if m == nil || strings.TrimSpace(m[1]) == "" {
			return "", false
		}
		return m[1], true
	}
}

const perfumerChars = `a-zA-Zéèêëàâäùûüôöîïç\s\-'`

var (
	genderPattern    = regexp.MustCompile(`(?im)^#\s+(.+?)\s+for\s+(men|women|unisex)`)
	imagePattern     = regexp.MustCompile(`(?i)!\[perfume[^\]]*\]\((https://fimgs\.net/mdimg/perfume[^)]+)\)`)
	ratingPattern    = regexp.MustCompile(`(?i)(?:Perfume\s+)?rating\s+(\d+\.\d+)\s+out\s+of\s+5`)
	votesPattern     = regexp.MustCompile(`(?i)(?:with\s+)?(\d{1,3}(?:,\d{3})*)\s+votes`)
	yearVerbPattern  = regexp.MustCompile(`(?i)(?:launched|released|from|in)\s*(\d{4})`)
	yearAnyPattern   = regexp.MustCompile(`\b(19\d{2}|20[0-2]\d)\b`)
	longevityPattern = regexp.MustCompile(`(?i)longevity[:\s]*(very weak|weak|moderate|long lasting|very long lasting|eternal)`)
	sillagePattern   = regexp.MustCompile(`(?i)sillage[:\s]*(intimate|soft|moderate|heavy|enormous)`)

	perfumerProsePattern   = regexp.MustCompile(`(?i)(?:nose behind this fragrance is|created by|perfumer[:\s]*)\s*(?:\*\*)?([A-Z][` + perfumerChars + `]+?)(?:\*\*)?(?:\.|,|\s+Top|\s+Middle|\s+Base|\n)`)
	perfumerSectionPattern = regexp.MustCompile(`(?i)### Perfumer[\s\S]*?\[([A-Z][` + perfumerChars + `]+)\]\(`)
	trailingImagePattern   = regexp.MustCompile(`!\[.*$`)

	accordHeadingPattern  = regexp.MustCompile(`(?i)###### main accords`)
	accordBoundaryPattern = regexp.MustCompile(`(?i)\n\n\n|\n#{1,5}\s|\nUser\s|\nWhen\s|Perfume rating|Online shop`)

	topNotesPattern    = regexp.MustCompile(`(?i)top\s+notes?\s+(?:is|are)\s+([^;.]+?)(?:;|\.|\s+middle|\s+heart)`)
	middleNotesPattern = regexp.MustCompile(`(?i)(?:middle|heart)\s+notes?\s+(?:is|are)\s+([^;.]+?)(?:;|\.|\s+base)`)
	baseNotesPattern   = regexp.MustCompile(`(?i)base\s+notes?\s+(?:is|are)\s+([^;.]+?)(?:;|\.)`)

	markdownLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	noteSeparator       = regexp.MustCompile(`(?i),|;|\s+and\s+`)
	articlePattern      = regexp.MustCompile(`(?i)^(is|are|the|a|an)$`)
)

// accordDenylist holds tokens that appear in the accords section but are page chrome
var accordDenylist = []string{"sponsored", "online", "shop", "offers", "rating", "buy", "price", "sale"}

// ParseFragrance builds a scraped record from a detail page, seeded with the
// identity fields of the search hit it was resolved from.
func ParseFragrance(page *Page, hit domain.SearchHit) *domain.Fragrance {
	f := &domain.Fragrance{
		ID:          hit.ID,
		Name:        hit.Name,
		Brand:       hit.Brand,
		ImageURL:    hit.ImageURL,
		URL:         hit.URL,
		TopNotes:    []domain.Note{},
		MiddleNotes: []domain.Note{},
		BaseNotes:   []domain.Note{},
		Accords:     []string{},
		Source:      domain.SourceScraped,
	}

	if m := genderPattern.FindStringSubmatch(page.Text()); m != nil {
		f.Gender = strings.ToLower(m[2])
	}
	if v, ok := firstMatch(page, patternExtractor(imagePattern)); ok {
		f.ImageURL = v
	}

	f.Accords = parseAccords(page.Text())
	f.TopNotes, f.MiddleNotes, f.BaseNotes = parseNotes(page)

	if v, ok := firstMatch(page, patternExtractor(ratingPattern)); ok {
		if rating, err := strconv.ParseFloat(v, 64); err == nil {
			f.Rating = &rating
		}
	}
	if v, ok := firstMatch(page, patternExtractor(votesPattern)); ok {
		if votes, err := strconv.Atoi(strings.ReplaceAll(v, ",", "")); err == nil {
			f.Votes = &votes
		}
	}
	if v, ok := firstMatch(page, patternExtractor(yearVerbPattern), patternExtractor(yearAnyPattern)); ok {
		f.Year = v
	}
	if v, ok := firstMatch(page, patternExtractor(longevityPattern)); ok {
		f.Longevity = v
	}
	if v, ok := firstMatch(page, patternExtractor(sillagePattern)); ok {
		f.Sillage = v
	}
	if v, ok := firstMatch(page, perfumerFromProse, patternExtractor(perfumerSectionPattern)); ok {
		f.Perfumer = strings.TrimSpace(v)
	}

	// a page without notes or accords is a bot check or an unknown layout
	f.Degraded = !f.HasNotes() && len(f.Accords) == 0

	logging.Debug().Str("id", f.ID).Str("name", f.Name).
		Int("accords", len(f.Accords)).Int("top", len(f.TopNotes)).Int("middle", len(f.MiddleNotes)).Int("base", len(f.BaseNotes)).
		Bool("degraded", f.Degraded).
		Msg("parsed fragrance page")

	return f
}

func perfumerFromProse(p *Page) (string, bool) {
	m := perfumerProsePattern.FindStringSubmatch(p.Text())
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	name = strings.TrimSuffix(strings.TrimPrefix(name, "["), "]")
	name = strings.TrimSpace(trailingImagePattern.ReplaceAllString(name, ""))
	return name, name != ""
}

// parseAccords reads the lines between the main accords heading and the next section
func parseAccords(text string) []string {
	accords := []string{}

	loc := accordHeadingPattern.FindStringIndex(text)
	if loc == nil {
		return accords
	}
	section := strings.TrimLeft(text[loc[1]:], " \t\r\n\f\v")

	end := accordBoundaryPattern.FindStringIndex(section)
	if end == nil {
		return accords
	}
	section = section[:end[0]]

	for _, line := range strings.Split(section, "\n") {
		line = strings.ToLower(strings.TrimSpace(line))
		if !looksLikeAccord(line) {
			continue
		}
		accords = append(accords, line)
		if len(accords) == MaxAccords {
			break
		}
	}
	return accords
}

func looksLikeAccord(line string) bool {
	if len(line) <= 2 || len(line) >= 25 {
		return false
	}
	if line[0] < 'a' || line[0] > 'z' {
		return false
	}
	if strings.Contains(line, "http") || strings.ContainsAny(line, ":0123456789") {
		return false
	}
	for _, token := range accordDenylist {
		if strings.Contains(line, token) {
			return false
		}
	}
	return true
}

// noteStrategy extracts the three layers, or false when it finds none
type noteStrategy func(p *Page) (top, middle, base []domain.Note, ok bool)

func parseNotes(p *Page) (top, middle, base []domain.Note) {
	for _, strategy := range []noteStrategy{notesFromProse, notesFromLinks} {
		if top, middle, base, ok := strategy(p); ok {
			return top, middle, base
		}
	}
	return []domain.Note{}, []domain.Note{}, []domain.Note{}
}

// notesFromProse reads sentences like "Top notes are X, Y and Z; middle notes are ..."
func notesFromProse(p *Page) (top, middle, base []domain.Note, ok bool) {
	prose := markdownLinkPattern.ReplaceAllString(p.Text(), "$1")

	layer := func(pattern *regexp.Regexp) []domain.Note {
		if m := pattern.FindStringSubmatch(prose); m != nil {
			return splitNoteList(m[1])
		}
		return []domain.Note{}
	}

	top, middle, base = layer(topNotesPattern), layer(middleNotesPattern), layer(baseNotesPattern)
	return top, middle, base, len(top)+len(middle)+len(base) > 0
}

// notesFromLinks collects note-page hyperlinks and splits them into thirds by position
func notesFromLinks(p *Page) (top, middle, base []domain.Note, ok bool) {
	html := p.LinkHTML()
	if html == "" {
		return nil, nil, nil, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, nil, false
	}

	var notes []domain.Note
	seen := make(map[string]bool)
	doc.Find(`a[href*="/notes/"]`).Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Text())
		if len(name) <= 1 || len(name) >= 40 || strings.Contains(name, "!") || !startsWithLetter(name) {
			return
		}
		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true
		notes = append(notes, domain.Note{Name: name})
	})

	if len(notes) == 0 {
		return nil, nil, nil, false
	}
	top, middle, base = domain.SplitIntoLayers(notes)
	return top, middle, base, true
}

// splitNoteList splits "Lavender, Iris, Ambrette (Musk Mallow) and Pear" into notes
func splitNoteList(text string) []domain.Note {
	text = markdownLinkPattern.ReplaceAllString(text, "$1")

	notes := []domain.Note{}
	for _, part := range noteSeparator.Split(text, -1) {
		part = strings.TrimSpace(part)
		if len(part) <= 1 || len(part) >= 50 || articlePattern.MatchString(part) {
			continue
		}
		notes = append(notes, domain.Note{Name: part})
	}
	return notes
}

func startsWithLetter(s string) bool {
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
