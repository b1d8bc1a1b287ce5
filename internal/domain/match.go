package domain

// MatchBreakdown holds each sub-score on a 0-100 scale
type MatchBreakdown struct {
	NoteOverlap   int `json:"noteOverlap"`
	FamilyHarmony int `json:"familyHarmony"`
	LayerBalance  int `json:"layerBalance"`
	AccordBlend   int `json:"accordBlend"`
}

// MatchAnalysis is the deterministic compatibility result for two fragrances
type MatchAnalysis struct {
	Score              int            `json:"score"`
	Breakdown          MatchBreakdown `json:"breakdown"`
	SharedNotes        []string       `json:"sharedNotes"`
	ComplementaryNotes []string       `json:"complementaryNotes"`
	PotentialClashes   []string       `json:"potentialClashes"`
}

// AdviceAnalysis is the free-text layering analysis produced on top of a MatchAnalysis
type AdviceAnalysis struct {
	Summary        string   `json:"summary"`
	Strengths      []string `json:"strengths"`
	Considerations []string `json:"considerations"`
	Occasions      []string `json:"occasions"`
	LayeringTip    string   `json:"layeringTip"`
}

// ChatMessage is one turn of an advice conversation
type ChatMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

// Chat roles understood by the text generator
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
