package models

// Eligibility holds the structured eligibility criteria of a scheme.
// Values are free-form strings from the corpus enrichment pipeline;
// "any", "All India" or an empty string mean "no constraint".
type Eligibility struct {
	State         string   `json:"state"`
	Occupation    string   `json:"occupation"`
	Gender        string   `json:"gender"`
	CasteCategory string   `json:"caste_category"`
	AgeRange      string   `json:"age_range"`
	IncomeLimit   string   `json:"income_limit"`
	Education     string   `json:"education"`
	BPLMandatory  bool     `json:"bpl_mandatory"`
	Conditions    []string `json:"other_conditions,omitempty"`
	RawText       string   `json:"raw_eligibility_text"`
}

// Benefits describes what a scheme provides.
type Benefits struct {
	Summary          string `json:"summary"`
	FinancialBenefit string `json:"financial_benefit"`
	Type             string `json:"benefit_type"`
	Frequency        string `json:"frequency"`
	RawText          string `json:"raw_benefits_text"`
}

// RequiredDocument is a single document a scheme asks for.
type RequiredDocument struct {
	Name      string `json:"document_name"`
	Mandatory bool   `json:"mandatory"`
	Notes     string `json:"notes,omitempty"`
}

// Scheme is one government welfare program record. Records are
// produced by an external enrichment pipeline and are read-only at
// serve time; MatchScore is the only field set per request.
type Scheme struct {
	ID                  string             `json:"scheme_id"`
	Name                string             `json:"scheme_name"`
	LocalName           string             `json:"scheme_name_local,omitempty"`
	Category            string             `json:"category"`
	BriefDescription    string             `json:"brief_description"`
	DetailedDescription string             `json:"detailed_description,omitempty"`
	Eligibility         Eligibility        `json:"eligibility_criteria"`
	Benefits            Benefits           `json:"benefits"`
	RequiredDocuments   []RequiredDocument `json:"required_documents,omitempty"`
	ApplicationProcess  []string           `json:"application_process,omitempty"`
	OfficialWebsite     string             `json:"official_website,omitempty"`
	ApplicationLink     string             `json:"application_link,omitempty"`
	Ministry            string             `json:"ministry_department,omitempty"`
	GeographicalCoverage string            `json:"geographical_coverage,omitempty"`
	QualityScore        int                `json:"data_quality_score"`

	// Embedding is populated by cmd/seed and carried through the
	// repository; empty when the serving embedder rebuilds vectors.
	Embedding []float32 `json:"-"`

	// MatchScore is the retrieval similarity in [0,1], set transiently
	// during search and never persisted.
	MatchScore float64 `json:"match_score,omitempty"`
}

// Candidate is a scheme returned by semantic retrieval.
type Candidate struct {
	Scheme *Scheme
	Score  float64
}
