package service

import (
	"testing"

	"scheme-saathi/internal/dto"
	"scheme-saathi/internal/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newExtractor() *ProfileExtractor {
	return NewProfileExtractor(zap.NewNop())
}

func TestExtractFromText(t *testing.T) {
	e := newExtractor()

	tests := []struct {
		name string
		text string
		want models.UserProfile
	}{
		{
			name: "engineering student",
			text: "I'm a female engineering student in Karnataka",
			want: models.UserProfile{
				Occupation:     "student",
				Gender:         "female",
				State:          "Karnataka",
				EducationLevel: "higher",
			},
		},
		{
			name: "farmer with age",
			text: "I'm a 45 year old farmer in Bihar",
			want: models.UserProfile{
				Occupation: "farmer",
				Age:        45,
				State:      "Bihar",
			},
		},
		{
			name: "retired senior citizen",
			text: "I am a retired senior citizen, age 67, from Kerala",
			want: models.UserProfile{
				Occupation: "senior citizen",
				Age:        67,
				State:      "Kerala",
			},
		},
		{
			name: "SC student wanting scholarships",
			text: "I'm an SC student looking for scholarships",
			want: models.UserProfile{
				Occupation:    "student",
				CasteCategory: "SC",
				HelpType:      "scholarship",
				SpecificNeed:  "scholarship",
			},
		},
		{
			name: "school level OBC male",
			text: "I'm in class 9, male, OBC category from Rajasthan",
			want: models.UserProfile{
				Occupation:     "student",
				Gender:         "male",
				CasteCategory:  "OBC",
				State:          "Rajasthan",
				EducationLevel: "school",
			},
		},
		{
			name: "rural BPL family",
			text: "We are a BPL family from rural Jharkhand",
			want: models.UserProfile{
				State:     "Jharkhand",
				BPL:       "yes",
				Residence: "rural",
			},
		},
		{
			name: "disability",
			text: "I am a person with disability, divyang, from Delhi",
			want: models.UserProfile{
				State:      "Delhi",
				Disability: "yes",
			},
		},
		{
			name: "widow with age",
			text: "I am a widow from Gujarat, 50 years old",
			want: models.UserProfile{
				State:        "Gujarat",
				Age:          50,
				Gender:       "female",
				FamilyStatus: "widow",
			},
		},
		{
			name: "urban entrepreneur",
			text: "I want to start a business in urban Pune, Maharashtra",
			want: models.UserProfile{
				Occupation:   "entrepreneur",
				State:        "Maharashtra",
				Residence:    "urban",
				HelpType:     "business_support",
				SpecificNeed: "business_support",
			},
		},
		{
			name: "pregnancy implies female",
			text: "I am pregnant, looking for maternity benefits in Tamil Nadu",
			want: models.UserProfile{
				State:        "Tamil Nadu",
				Gender:       "female",
				FamilyStatus: "pregnant",
			},
		},
		{
			name: "hindi farmer",
			text: "मैं बिहार से किसान हूं",
			want: models.UserProfile{
				Occupation: "farmer",
				State:      "Bihar",
			},
		},
		{
			name: "hindi scholarship ask",
			text: "मुझे छात्रवृत्ति चाहिए",
			want: models.UserProfile{
				Occupation:   "student",
				HelpType:     "scholarship",
				SpecificNeed: "scholarship",
			},
		},
		{
			name: "empty text",
			text: "   ",
			want: models.UserProfile{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ExtractFromText(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractNegations(t *testing.T) {
	e := newExtractor()

	p := e.ExtractFromText("I'm not a minority, I'm general category")
	assert.Equal(t, "General", p.CasteCategory)

	p = e.ExtractFromText("I'm not disabled, I'm a normal student")
	assert.Equal(t, "no", p.Disability)

	p = e.ExtractFromText("I'm not BPL, my income is decent")
	assert.Equal(t, "no", p.BPL)
}

func TestExtractSpecificNeeds(t *testing.T) {
	e := newExtractor()

	tests := []struct {
		text string
		want string
	}{
		{"I need a scholarship for college", "scholarship"},
		{"I need a loan for my business", "loan"},
		{"Is there any pension for old people", "pension"},
		{"I need health insurance", "health_insurance"},
		{"Is there a housing scheme for me", "housing"},
		{"I need help with marriage expenses", "marriage"},
		{"I want skill training", "skill_training"},
		{"I need money for my family", "financial_assistance"},
		{"Looking for a job", "employment"},
		{"I want to start a business", "business_support"},
		{"I need crop insurance", "agriculture_support"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			p := e.ExtractFromText(tt.text)
			assert.Equal(t, tt.want, p.SpecificNeed)
			assert.Equal(t, tt.want, p.HelpType)
		})
	}

	// A generic greeting carries no need.
	p := e.ExtractFromText("Hello, how are you?")
	assert.Empty(t, p.SpecificNeed)
}

func TestExtractGenderEdgeCases(t *testing.T) {
	e := newExtractor()

	// "woman" must not register as male despite containing "man".
	assert.Equal(t, "female", e.ExtractFromText("I am a woman from Punjab").Gender)
	// Schemes open to both genders should not pin the user to male.
	assert.Empty(t, e.ExtractFromText("is it for male and female applicants?").Gender)
	assert.Equal(t, "male", e.ExtractFromText("I am a 30 year old man").Gender)
}

func TestExtractAgeSanityRange(t *testing.T) {
	e := newExtractor()

	assert.Equal(t, 0, e.ExtractFromText("my phone is 3 years old").Age)
	assert.Equal(t, 22, e.ExtractFromText("I am 22 years old").Age)
	assert.Equal(t, 67, e.ExtractFromText("age 67").Age)
	assert.Equal(t, 45, e.ExtractFromText("i'm 45").Age)
}

func TestBuildProfileCumulative(t *testing.T) {
	e := newExtractor()

	history := []dto.ChatTurn{
		{Role: models.RoleUser, Content: "Show me scholarships for SC students"},
		{Role: models.RoleAssistant, Content: "Which state are you from?"},
		{Role: models.RoleUser, Content: "Karnataka"},
		{Role: models.RoleAssistant, Content: "Are you male or female?"},
	}
	p := e.BuildProfile(history, "female, I'm studying btech")

	assert.Equal(t, "student", p.Occupation)
	assert.Equal(t, "SC", p.CasteCategory)
	assert.Equal(t, "Karnataka", p.State)
	assert.Equal(t, "female", p.Gender)
	assert.Equal(t, "higher", p.EducationLevel)
	assert.Equal(t, "scholarship", p.HelpType)
}

func TestBuildProfileLaterTurnsWin(t *testing.T) {
	e := newExtractor()

	history := []dto.ChatTurn{
		{Role: models.RoleUser, Content: "I am from Bihar"},
	}
	p := e.BuildProfile(history, "Sorry, I actually live in Jharkhand now")
	assert.Equal(t, "Jharkhand", p.State)
}

func TestBuildProfileIgnoresAssistantTurns(t *testing.T) {
	e := newExtractor()

	history := []dto.ChatTurn{
		{Role: models.RoleAssistant, Content: "Are you a farmer from Punjab?"},
	}
	p := e.BuildProfile(history, "no, I am a student")
	assert.Equal(t, "student", p.Occupation)
	assert.Empty(t, p.State)
}

func TestBuildProfileIdempotent(t *testing.T) {
	e := newExtractor()

	history := []dto.ChatTurn{
		{Role: models.RoleUser, Content: "I'm a farmer in Bihar needing a loan"},
		{Role: models.RoleUser, Content: "I am male, 45 years old"},
	}
	first := e.BuildProfile(history, "")
	second := e.BuildProfile(history, "")
	assert.Equal(t, first, second)
}
