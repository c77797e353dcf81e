package dto

import "scheme-saathi/internal/models"

// SearchRequest is the direct semantic-search contract.
type SearchRequest struct {
	Query    string `json:"query" validate:"required"`
	State    string `json:"state,omitempty"`
	Category string `json:"category,omitempty"`
	TopK     int    `json:"top_k,omitempty"`
}

// SearchResponse lists matched schemes for a direct search.
type SearchResponse struct {
	Query        string          `json:"query"`
	TotalMatches int             `json:"total_matches"`
	Schemes      []models.Scheme `json:"schemes"`
}

// SchemeListResponse is the corpus-browsing contract.
type SchemeListResponse struct {
	Total   int             `json:"total"`
	Schemes []models.Scheme `json:"schemes"`
}

// CategoriesResponse lists the distinct scheme categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// HealthResponse reports serving readiness of the collaborators.
type HealthResponse struct {
	Status       string `json:"status"`
	LLMStatus    string `json:"llm_status"`
	IndexStatus  string `json:"index_status"`
	TotalSchemes int    `json:"total_schemes"`
}
