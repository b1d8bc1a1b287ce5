package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
	"github.com/scentpair/backend/internal/domain"
	"github.com/scentpair/backend/internal/logging"
)

// MaxHistoryMessages is how much prior conversation is replayed to the generator
const MaxHistoryMessages = 12

const (
	analyzeSystemPrompt = "You are a fragrance expert. Always respond with valid JSON only, no markdown formatting."

	askSystemPrompt = `You are "The Nose," an expert perfumer and fragrance consultant with deep knowledge of olfactory science, perfumery history, and scent composition.

Your expertise includes:
- Note pyramids and volatility (top, heart, base notes)
- Olfactory families (Floral, Oriental, Woody, Fresh, Chypre, Fougere, Gourmand)
- Ingredient chemistry and interactions
- Layering techniques and compatibility
- Seasonal/occasion recommendations

When answering:
- Be conversational but informative
- Reference specific notes and accords when relevant
- Keep responses concise (2-4 sentences for simple questions, more for complex ones)
- If asked about perfumes you have context for, use that specific information`

	notConfiguredAnswer = "AI features require a text generation API key. Please configure one to enable this feature."
	rateLimitedAnswer   = "I'm currently experiencing high demand. Please try again in a few minutes. In the meantime, you can explore the note profiles and compatibility scores shown above!"
	emptyAnswer         = "I couldn't generate a response. Please try again."
)

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// AskRequest is a free-form question, optionally about one or two fragrances
type AskRequest struct {
	Question string
	First    *domain.Fragrance
	Second   *domain.Fragrance
	History  []domain.ChatMessage
}

// AdviceService produces layering advice on top of the deterministic score.
// Every path has a deterministic fallback so a missing or failing generator
// never surfaces as an error.
type AdviceService struct {
	generator domain.TextGenerator
}

// NewAdviceService creates a new advice service. A nil generator selects the fallbacks.
func NewAdviceService(generator domain.TextGenerator) *AdviceService {
	return &AdviceService{generator: generator}
}

// Analyze explains how first and second layer together given their match analysis
func (s *AdviceService) Analyze(ctx context.Context, first, second *domain.Fragrance, match domain.MatchAnalysis) (*domain.AdviceAnalysis, error) {
	if first == nil || second == nil {
		return nil, domain.ErrInvalidRequest
	}
	if s.generator == nil {
		return fallbackAnalysis(first, second, match), nil
	}

	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: analyzeSystemPrompt},
		{Role: domain.RoleUser, Content: analysisPrompt(first, second, match)},
	}
	text, err := s.generator.Generate(ctx, messages, domain.GenerateOptions{Temperature: 0.7, MaxTokens: 1000})
	if err != nil {
		logging.Warn().Err(err).Msg("analysis generation failed, using fallback")
		return fallbackAnalysis(first, second, match), nil
	}

	analysis, err := parseAnalysis(text)
	if err != nil {
		logging.Warn().Err(err).Msg("analysis response unparseable")
		return unparsedAnalysis(text), nil
	}
	return analysis, nil
}

// Ask answers a question with the fragrances in view as context
func (s *AdviceService) Ask(ctx context.Context, req AskRequest) (string, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return "", domain.ErrInvalidRequest
	}
	if s.generator == nil {
		return notConfiguredAnswer, nil
	}

	messages := []domain.ChatMessage{{Role: domain.RoleSystem, Content: askSystemPrompt}}
	if scene := askContext(req.First, req.Second); scene != "" {
		messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: scene})
	}
	history := req.History
	if len(history) > MaxHistoryMessages {
		history = history[len(history)-MaxHistoryMessages:]
	}
	messages = append(messages, history...)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: question})

	answer, err := s.generator.Generate(ctx, messages, domain.GenerateOptions{Temperature: 0.7, MaxTokens: 800})
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) && upstream.StatusCode == 429 {
			return rateLimitedAnswer, nil
		}
		if errors.Is(err, domain.ErrConfiguration) {
			return notConfiguredAnswer, nil
		}
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}
	if strings.TrimSpace(answer) == "" {
		return emptyAnswer, nil
	}
	return answer, nil
}

func fallbackAnalysis(first, second *domain.Fragrance, match domain.MatchAnalysis) *domain.AdviceAnalysis {
	level := "limited"
	switch {
	case match.Score >= 70:
		level = "good"
	case match.Score >= 50:
		level = "moderate"
	}

	strengths := []string{"Both perfumes have distinct character that could create complexity"}
	if len(match.SharedNotes) > 0 {
		strengths = []string{fmt.Sprintf("Shared notes (%s) create cohesion", strings.Join(match.SharedNotes, ", "))}
	}

	considerations := []string{"Apply lightly and let each fragrance bloom naturally"}
	if len(match.PotentialClashes) > 0 {
		considerations = []string{"Watch for intensity balance between " + match.PotentialClashes[0]}
	}

	return &domain.AdviceAnalysis{
		Summary:        fmt.Sprintf("Based on note analysis, %s and %s show %s compatibility for layering.", first.Name, second.Name, level),
		Strengths:      strengths,
		Considerations: considerations,
		Occasions:      []string{"Evening events", "Special occasions"},
		LayeringTip:    "Apply the heavier fragrance first, then layer the lighter one on top.",
	}
}

func unparsedAnalysis(text string) *domain.AdviceAnalysis {
	summary := text
	if r := []rune(summary); len(r) > 200 {
		summary = string(r[:200])
	}
	return &domain.AdviceAnalysis{
		Summary:        summary,
		Strengths:      []string{"Creates a unique scent combination"},
		Considerations: []string{"Test on skin before wearing out"},
		Occasions:      []string{"Casual outings", "Personal enjoyment"},
		LayeringTip:    "Apply sparingly and adjust based on your preference.",
	}
}

// parseAnalysis extracts the first JSON object from a generated response
func parseAnalysis(text string) (*domain.AdviceAnalysis, error) {
	raw := jsonObjectPattern.FindString(text)
	if raw == "" {
		return nil, errors.New("no JSON object in response")
	}
	var analysis domain.AdviceAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &analysis, nil
}

func analysisPrompt(first, second *domain.Fragrance, match domain.MatchAnalysis) string {
	return fmt.Sprintf(`You are a professional perfumer and fragrance expert. Analyze the following two perfumes for layering/mixing compatibility.

PERFUME 1:
%s

PERFUME 2:
%s

ALGORITHMIC ANALYSIS:
- Overall compatibility score: %d%%
- Shared notes: %s
- Complementary notes: %s
- Potential clashes: %s

Based on this information, provide a JSON response with exactly this structure:
{
  "summary": "2-3 sentence overview of how these fragrances work together when layered",
  "strengths": ["strength 1", "strength 2", "strength 3"],
  "considerations": ["thing to watch out for 1", "thing to watch out for 2"],
  "occasions": ["best occasion 1", "best occasion 2", "best occasion 3"],
  "layeringTip": "specific advice on how to apply these two fragrances together for best results"
}

Be specific about note interactions. Focus on practical advice.`,
		pyramidSummary(first, "none listed"),
		pyramidSummary(second, "none listed"),
		match.Score,
		joinOr(match.SharedNotes, "none"),
		joinOr(match.ComplementaryNotes, "none identified"),
		joinOr(match.PotentialClashes, "none identified"),
	)
}

func askContext(first, second *domain.Fragrance) string {
	switch {
	case first != nil && second != nil:
		return fmt.Sprintf("The user is currently comparing two perfumes for layering:\n\nPERFUME 1:\n%s\n\nPERFUME 2:\n%s\n\nAnswer their question with these specific perfumes in mind.",
			profile(first), profile(second))
	case first != nil:
		return fmt.Sprintf("The user is currently viewing this perfume:\n\n%s\n\nAnswer their question with this specific perfume in mind.", profile(first))
	}
	return ""
}

func pyramidSummary(f *domain.Fragrance, missing string) string {
	return fmt.Sprintf("%s by %s\n  - Top notes: %s\n  - Heart notes: %s\n  - Base notes: %s",
		f.Name, f.Brand,
		joinOr(noteNames(f.TopNotes), missing),
		joinOr(noteNames(f.MiddleNotes), missing),
		joinOr(noteNames(f.BaseNotes), missing),
	)
}

func profile(f *domain.Fragrance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** by %s\n", f.Name, f.Brand)
	fmt.Fprintf(&b, "- Accords: %s\n", joinOr(f.Accords, "unknown"))
	fmt.Fprintf(&b, "- Top Notes: %s\n", joinOr(noteNames(f.TopNotes), "unknown"))
	fmt.Fprintf(&b, "- Heart Notes: %s\n", joinOr(noteNames(f.MiddleNotes), "unknown"))
	fmt.Fprintf(&b, "- Base Notes: %s", joinOr(noteNames(f.BaseNotes), "unknown"))
	if f.Perfumer != "" {
		fmt.Fprintf(&b, "\n- Perfumer: %s", f.Perfumer)
	}
	if f.Year != "" {
		fmt.Fprintf(&b, "\n- Year: %s", f.Year)
	}
	if f.Rating != nil {
		fmt.Fprintf(&b, "\n- Rating: %.2f/5", *f.Rating)
	}
	return b.String()
}

func noteNames(notes []domain.Note) []string {
	names := make([]string, 0, len(notes))
	for _, n := range notes {
		names = append(names, n.Name)
	}
	return names
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}
