package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/scentpair/backend/internal/domain"
	"github.com/scentpair/backend/internal/logging"
	"github.com/scentpair/backend/internal/usecase"
	"golang.org/x/sync/errgroup"
)

// SessionHeader identifies the client search session whose older searches a new one supersedes
const SessionHeader = "X-Search-Session"

// Services groups the use cases served over HTTP
type Services struct {
	Catalog  *usecase.CatalogService
	Scrape   *usecase.ScrapeService
	Sessions *usecase.SearchSessions
	Scorer   *usecase.CompatibilityService
	Advice   *usecase.AdviceService
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog  *usecase.CatalogService
	scrape   *usecase.ScrapeService
	sessions *usecase.SearchSessions
	scorer   *usecase.CompatibilityService
	advice   *usecase.AdviceService
}

// NewHandler creates a new HTTP handler
func NewHandler(s Services) *Handler {
	if s.Sessions == nil {
		s.Sessions = usecase.NewSearchSessions()
	}
	if s.Scorer == nil {
		s.Scorer = usecase.NewCompatibilityService()
	}
	return &Handler{
		catalog:  s.Catalog,
		scrape:   s.Scrape,
		sessions: s.Sessions,
		scorer:   s.Scorer,
		advice:   s.Advice,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "scentpair-backend",
		"version": "1.0.0",
	})
}

// SearchFragrances handles GET /api/v1/fragrances/search?q=
func (h *Handler) SearchFragrances(c *gin.Context) {
	results, err := h.catalog.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetFragrance handles GET /api/v1/fragrances/:id?name=
// The record and its similar fragrances are looked up concurrently; a failed
// similar lookup degrades to an empty list.
func (h *Handler) GetFragrance(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	name := c.Query("name")

	var (
		fragrance *domain.Fragrance
		similar   = []domain.SearchHit{}
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		f, err := h.catalog.Resolve(ctx, id, name)
		if err != nil {
			return err
		}
		fragrance = f
		return nil
	})
	g.Go(func() error {
		hits, err := h.catalog.Similar(ctx, id, name)
		if err != nil {
			logging.Warn().Err(err).Str("id", id).Msg("similar lookup failed")
			return nil
		}
		similar = hits
		return nil
	})

	if err := g.Wait(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fragrance": fragrance, "similar": similar})
}

// SearchFragrancesV2 handles GET /api/v2/fragrances/search?q= against the scraped source
func (h *Handler) SearchFragrancesV2(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len(query) < usecase.MinQueryLength {
		c.JSON(http.StatusOK, gin.H{"results": []domain.SearchHit{}, "source": "none"})
		return
	}

	results, err := h.sessions.Run(c.Request.Context(), c.GetHeader(SessionHeader), func(ctx context.Context) ([]domain.SearchHit, error) {
		return h.scrape.Search(ctx, query)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "source": "fragrantica", "version": "v2"})
}

// ResolveFragranceV2 handles POST /api/v2/fragrances/resolve with a search hit body.
// It always answers with a record; thin records carry degraded=true.
func (h *Handler) ResolveFragranceV2(c *gin.Context) {
	var hit domain.SearchHit
	if err := c.ShouldBindJSON(&hit); err != nil {
		respondBindError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fragrance": h.scrape.Resolve(c.Request.Context(), hit)})
}

// MatchRequest is the body of a scoring request
type MatchRequest struct {
	First  *domain.Fragrance `json:"first" binding:"required"`
	Second *domain.Fragrance `json:"second" binding:"required"`
}

// Match handles POST /api/v1/match
func (h *Handler) Match(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": h.scorer.Score(req.First, req.Second)})
}

// AnalyzeRequest is the body of a layering analysis request.
// The match analysis is computed when omitted.
type AnalyzeRequest struct {
	First         *domain.Fragrance     `json:"first" binding:"required"`
	Second        *domain.Fragrance     `json:"second" binding:"required"`
	MatchAnalysis *domain.MatchAnalysis `json:"matchAnalysis"`
}

// Analyze handles POST /api/v1/advice/analyze
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	match := h.scorer.Score(req.First, req.Second)
	if req.MatchAnalysis != nil {
		match = *req.MatchAnalysis
	}

	analysis, err := h.advice.Analyze(c.Request.Context(), req.First, req.Second, match)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": analysis, "match": match})
}

// AskRequest is the body of a free-form advice question
type AskRequest struct {
	Question string               `json:"question" binding:"required"`
	First    *domain.Fragrance    `json:"first"`
	Second   *domain.Fragrance    `json:"second"`
	History  []domain.ChatMessage `json:"conversationHistory" binding:"omitempty,dive"`
}

// Ask handles POST /api/v1/advice/ask
func (h *Handler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	answer, err := h.advice.Ask(c.Request.Context(), usecase.AskRequest{
		Question: req.Question,
		First:    req.First,
		Second:   req.Second,
		History:  req.History,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
