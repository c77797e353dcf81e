package dto

import "scheme-saathi/internal/models"

// ChatTurn is one message of the caller-supplied conversation history.
// Only user-authored turns feed profile extraction.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the inbound contract of the conversational endpoint.
// The full history must be resupplied on every call or the inferred
// profile regresses.
type ChatRequest struct {
	Message             string     `json:"message" validate:"required"`
	ChatID              string     `json:"chat_id,omitempty"`
	ConversationHistory []ChatTurn `json:"conversation_history"`
	Language            string     `json:"language,omitempty"`
}

// SchemeCard carries enough fields to render a scheme without a second
// lookup.
type SchemeCard struct {
	SchemeID          string   `json:"scheme_id"`
	SchemeName        string   `json:"scheme_name"`
	Category          string   `json:"category"`
	BriefDescription  string   `json:"brief_description"`
	BenefitsSummary   string   `json:"benefits_summary,omitempty"`
	EligibilityText   string   `json:"eligibility_text,omitempty"`
	RequiredDocuments []string `json:"required_documents,omitempty"`
	ApplicationLink   string   `json:"application_link,omitempty"`
	MatchScore        float64  `json:"match_score,omitempty"`
}

// ChatResponse is what the conversational front end receives back.
type ChatResponse struct {
	Message              string              `json:"message"`
	ChatID               string              `json:"chat_id,omitempty"`
	Schemes              []SchemeCard        `json:"schemes"`
	NeedsMoreInfo        bool                `json:"needs_more_info"`
	RetrievalUnavailable bool                `json:"retrieval_unavailable,omitempty"`
	ExtractedProfile     *models.UserProfile `json:"extracted_profile,omitempty"`
}

// ChatSummary lists a persisted conversation.
type ChatSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ChatDetail is a persisted conversation with its messages.
type ChatDetail struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Messages []ChatTurn `json:"messages"`
}
