package models

// UserProfile is the cumulative set of eligibility attributes inferred
// from a conversation. It is recomputed from the full history on every
// request; the core keeps no session state of its own.
//
// String attributes use "" for unset. Tri-state flags (BPL,
// Disability) use ""/"yes"/"no" so an explicit negation ("I'm not
// BPL") is distinguishable from never having been asked.
type UserProfile struct {
	Occupation     string `json:"occupation,omitempty"`
	State          string `json:"state,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Age            int    `json:"age,omitempty"`
	CasteCategory  string `json:"caste_category,omitempty"`
	HelpType       string `json:"help_type,omitempty"`
	SpecificNeed   string `json:"specific_need,omitempty"`
	EducationLevel string `json:"education_level,omitempty"`
	Income         string `json:"income,omitempty"`
	BPL            string `json:"bpl,omitempty"`
	Disability     string `json:"disability,omitempty"`
	Residence      string `json:"residence,omitempty"`
	FamilyStatus   string `json:"family_status,omitempty"`
}

// Merge overlays non-empty attributes from other onto p. Later turns
// win per attribute; an attribute never reverts to unset.
func (p *UserProfile) Merge(other UserProfile) {
	if other.Occupation != "" {
		p.Occupation = other.Occupation
	}
	if other.State != "" {
		p.State = other.State
	}
	if other.Gender != "" {
		p.Gender = other.Gender
	}
	if other.Age != 0 {
		p.Age = other.Age
	}
	if other.CasteCategory != "" {
		p.CasteCategory = other.CasteCategory
	}
	if other.HelpType != "" {
		p.HelpType = other.HelpType
	}
	if other.SpecificNeed != "" {
		p.SpecificNeed = other.SpecificNeed
	}
	if other.EducationLevel != "" {
		p.EducationLevel = other.EducationLevel
	}
	if other.Income != "" {
		p.Income = other.Income
	}
	if other.BPL != "" {
		p.BPL = other.BPL
	}
	if other.Disability != "" {
		p.Disability = other.Disability
	}
	if other.Residence != "" {
		p.Residence = other.Residence
	}
	if other.FamilyStatus != "" {
		p.FamilyStatus = other.FamilyStatus
	}
}

// IsEmpty reports whether nothing has been inferred yet.
func (p UserProfile) IsEmpty() bool {
	return p == UserProfile{}
}
