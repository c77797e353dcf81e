package service

import (
	"fmt"
	"testing"

	"scheme-saathi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type schemeOpt func(*models.Scheme)

func withState(v string) schemeOpt      { return func(s *models.Scheme) { s.Eligibility.State = v } }
func withGender(v string) schemeOpt     { return func(s *models.Scheme) { s.Eligibility.Gender = v } }
func withCaste(v string) schemeOpt      { return func(s *models.Scheme) { s.Eligibility.CasteCategory = v } }
func withAgeRange(v string) schemeOpt   { return func(s *models.Scheme) { s.Eligibility.AgeRange = v } }
func withOccupation(v string) schemeOpt { return func(s *models.Scheme) { s.Eligibility.Occupation = v } }
func withEligText(v string) schemeOpt   { return func(s *models.Scheme) { s.Eligibility.RawText = v } }
func withBenefitType(v string) schemeOpt {
	return func(s *models.Scheme) { s.Benefits.Type = v }
}

func makeScheme(name string, opts ...schemeOpt) *models.Scheme {
	s := &models.Scheme{
		ID:   name,
		Name: name,
		Eligibility: models.Eligibility{
			State:         "All India",
			Gender:        "any",
			CasteCategory: "any",
			AgeRange:      "any",
			Occupation:    "any",
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func TestMatchesState(t *testing.T) {
	karnataka := models.UserProfile{State: "Karnataka"}

	assert.True(t, matchesState(makeScheme("s", withState("All India")), karnataka))
	assert.True(t, matchesState(makeScheme("s", withState("Karnataka")), karnataka))
	assert.True(t, matchesState(makeScheme("s", withState("")), karnataka))
	assert.True(t, matchesState(makeScheme("s", withState("nationwide")), karnataka))
	assert.False(t, matchesState(makeScheme("s", withState("Meghalaya")), karnataka))
	assert.False(t, matchesState(makeScheme("s", withState("Gujarat")), karnataka))
	// Unset profile state never filters.
	assert.True(t, matchesState(makeScheme("s", withState("Gujarat")), models.UserProfile{}))
}

func TestMatchesGender(t *testing.T) {
	female := models.UserProfile{Gender: "female"}
	male := models.UserProfile{Gender: "male"}

	assert.True(t, matchesGender(makeScheme("s", withGender("any")), female))
	assert.True(t, matchesGender(makeScheme("s", withGender("female")), female))
	assert.False(t, matchesGender(makeScheme("s", withGender("female")), male))
	assert.False(t, matchesGender(makeScheme("s", withGender("male")), female))
	assert.True(t, matchesGender(makeScheme("s", withGender("both")), male))
}

func TestMatchesCaste(t *testing.T) {
	sc := models.UserProfile{CasteCategory: "SC"}
	general := models.UserProfile{CasteCategory: "General"}

	assert.True(t, matchesCaste(makeScheme("s", withCaste("any")), sc))
	assert.True(t, matchesCaste(makeScheme("s", withCaste("SC")), sc))
	assert.True(t, matchesCaste(makeScheme("s", withCaste("SC/ST")), sc))
	assert.False(t, matchesCaste(makeScheme("s", withCaste("SC")), general))
	assert.False(t, matchesCaste(makeScheme("s", withCaste("OBC")), general))
	assert.False(t, matchesCaste(makeScheme("s", withCaste("Minority")), general))
	assert.True(t, matchesCaste(makeScheme("s", withCaste("any (higher subsidy for SC/ST)")), general))
}

func TestMatchesAge(t *testing.T) {
	age := func(a int) models.UserProfile { return models.UserProfile{Age: a} }

	assert.True(t, matchesAge(makeScheme("s", withAgeRange("any")), age(22)))
	assert.True(t, matchesAge(makeScheme("s", withAgeRange("18-40")), age(22)))
	assert.False(t, matchesAge(makeScheme("s", withAgeRange("18-40")), age(50)))
	assert.True(t, matchesAge(makeScheme("s", withAgeRange("60+")), age(67)))
	assert.False(t, matchesAge(makeScheme("s", withAgeRange("60+")), age(22)))
	assert.True(t, matchesAge(makeScheme("s", withAgeRange("<10")), age(7)))
	assert.False(t, matchesAge(makeScheme("s", withAgeRange("<10")), age(22)))
	// Unparseable and unset ranges fail open.
	assert.True(t, matchesAge(makeScheme("s", withAgeRange("working age")), age(22)))
	assert.True(t, matchesAge(makeScheme("s", withAgeRange("")), age(22)))
	// No age in the profile never filters.
	assert.True(t, matchesAge(makeScheme("s", withAgeRange("60+")), models.UserProfile{}))
}

func TestMatchesOccupation(t *testing.T) {
	student := models.UserProfile{Occupation: "student"}
	farmer := models.UserProfile{Occupation: "farmer"}

	assert.True(t, matchesOccupation(makeScheme("s", withOccupation("any")), student))
	assert.True(t, matchesOccupation(makeScheme("s", withOccupation("student")), student))
	assert.False(t, matchesOccupation(makeScheme("s", withOccupation("farmer")), student))
	assert.True(t, matchesOccupation(makeScheme("s", withOccupation("farmer")), farmer))
	assert.False(t, matchesOccupation(makeScheme("s", withOccupation("student")), farmer))
	assert.True(t, matchesOccupation(makeScheme("s", withOccupation("farmers and agricultural labourers")), farmer))
}

func TestMatchesEducation(t *testing.T) {
	preMatric := makeScheme("Pre-Matric Scholarship for SC Students")
	postMatric := makeScheme("Post Matric Scholarship for SC Students")
	general := makeScheme("National Scholarship Portal")

	higher := models.UserProfile{EducationLevel: "higher"}
	school := models.UserProfile{EducationLevel: "school"}

	assert.False(t, matchesEducation(preMatric, higher))
	assert.True(t, matchesEducation(postMatric, higher))
	assert.True(t, matchesEducation(general, higher))
	assert.False(t, matchesEducation(postMatric, school))
	assert.True(t, matchesEducation(preMatric, school))
	assert.True(t, matchesEducation(preMatric, models.UserProfile{}))
}

func TestMatchesNeed(t *testing.T) {
	scholarship := makeScheme("National Merit Scholarship", withBenefitType("Scholarship"))
	loan := makeScheme("Mudra Business Loan", withBenefitType("Subsidized Loan"))
	pension := makeScheme("Old Age Support", withBenefitType("Pension"))
	generic := makeScheme("PM Cash Transfer", withBenefitType("Direct Cash Transfer"))

	wants := func(need string) models.UserProfile { return models.UserProfile{SpecificNeed: need} }

	assert.True(t, matchesNeed(scholarship, wants("scholarship")))
	assert.False(t, matchesNeed(loan, wants("scholarship")))
	assert.False(t, matchesNeed(pension, wants("scholarship")))
	assert.True(t, matchesNeed(generic, wants("scholarship")))

	assert.True(t, matchesNeed(loan, wants("loan")))
	assert.False(t, matchesNeed(scholarship, wants("loan")))

	// Adjacent needs stay compatible.
	assert.True(t, matchesNeed(loan, wants("business_support")))
	assert.True(t, matchesNeed(makeScheme("Skill India Training", withBenefitType("Training")), wants("employment")))

	// The declared benefit type wins over farm words in the name: a
	// Kisan Credit Card is a loan product.
	kcc := makeScheme("Kisan Credit Card Scheme", withBenefitType("Subsidized Loan"))
	assert.Equal(t, "loan", classifySchemeNeed(kcc))
	assert.True(t, matchesNeed(kcc, wants("loan")))
	// Name-based classification still applies when no type is declared.
	assert.Equal(t, "agriculture_support", classifySchemeNeed(makeScheme("PM Fasal Bima Yojana")))

	// No declared need or the generic money ask filters nothing.
	assert.True(t, matchesNeed(scholarship, models.UserProfile{}))
	assert.True(t, matchesNeed(loan, wants("financial_assistance")))
}

func TestTargetingFilters(t *testing.T) {
	disabilityScheme := makeScheme("Scholarship for Students with Disabilities")
	normalScheme := makeScheme("National Merit Scholarship")

	assert.False(t, matchesDisability(disabilityScheme, models.UserProfile{Disability: "no"}))
	assert.True(t, matchesDisability(disabilityScheme, models.UserProfile{Disability: "yes"}))
	assert.True(t, matchesDisability(disabilityScheme, models.UserProfile{}))
	assert.True(t, matchesDisability(normalScheme, models.UserProfile{Disability: "no"}))

	kisan := makeScheme("PM-KISAN Samman Nidhi")
	assert.False(t, matchesFarmerTargeting(kisan, models.UserProfile{Occupation: "student"}))
	assert.True(t, matchesFarmerTargeting(kisan, models.UserProfile{Occupation: "farmer"}))
	assert.True(t, matchesFarmerTargeting(kisan, models.UserProfile{}))

	oldAge := makeScheme("Indira Gandhi Old Age Pension")
	assert.False(t, matchesSeniorTargeting(oldAge, models.UserProfile{Age: 22, Occupation: "student"}))
	assert.True(t, matchesSeniorTargeting(oldAge, models.UserProfile{Age: 67, Occupation: "senior citizen"}))
	assert.True(t, matchesSeniorTargeting(oldAge, models.UserProfile{Age: 60, Occupation: "worker"}))

	girlChild := makeScheme("Sukanya Samriddhi Yojana", withEligText("for girl child below 10"))
	assert.False(t, matchesChildTargeting(girlChild, models.UserProfile{Age: 30}))
	assert.True(t, matchesChildTargeting(girlChild, models.UserProfile{Age: 7}))
	assert.True(t, matchesChildTargeting(girlChild, models.UserProfile{}))

	widowPension := makeScheme("Widow Pension Scheme")
	assert.False(t, matchesFamilyStatus(widowPension, models.UserProfile{FamilyStatus: "pregnant"}))
	assert.True(t, matchesFamilyStatus(widowPension, models.UserProfile{FamilyStatus: "widow"}))
	assert.True(t, matchesFamilyStatus(widowPension, models.UserProfile{}))
}

func TestFilterPipeline(t *testing.T) {
	f := NewFilterService(20, zap.NewNop())

	schemes := []*models.Scheme{
		makeScheme("Pre-Matric SC Scholarship", withCaste("SC"), withOccupation("student")),
		makeScheme("Post Matric SC Scholarship", withCaste("SC"), withOccupation("student")),
		makeScheme("Karnataka Engineering Scholarship", withState("Karnataka"), withOccupation("student")),
		makeScheme("Meghalaya Tribal Scheme", withState("Meghalaya"), withCaste("ST")),
		makeScheme("PM-KISAN", withOccupation("farmer")),
		makeScheme("Old Age Pension", withAgeRange("60+")),
		makeScheme("Scholarship for Students with Disabilities", withOccupation("student")),
		makeScheme("Women Entrepreneur Loan", withGender("female"), withOccupation("entrepreneur")),
	}
	candidates := make([]models.Candidate, len(schemes))
	for i, s := range schemes {
		candidates[i] = models.Candidate{Scheme: s, Score: 0.9}
	}

	// 22 year old female SC engineering student from Karnataka.
	profile := models.UserProfile{
		State:          "Karnataka",
		Gender:         "female",
		CasteCategory:  "SC",
		Age:            22,
		Occupation:     "student",
		EducationLevel: "higher",
		Disability:     "no",
	}

	result := f.Filter(candidates, profile)
	names := make([]string, 0, len(result))
	for _, c := range result {
		names = append(names, c.Scheme.Name)
	}

	assert.Contains(t, names, "Post Matric SC Scholarship")
	assert.Contains(t, names, "Karnataka Engineering Scholarship")
	assert.NotContains(t, names, "Pre-Matric SC Scholarship")
	assert.NotContains(t, names, "Meghalaya Tribal Scheme")
	assert.NotContains(t, names, "PM-KISAN")
	assert.NotContains(t, names, "Old Age Pension")
	assert.NotContains(t, names, "Scholarship for Students with Disabilities")
	assert.NotContains(t, names, "Women Entrepreneur Loan")
}

func TestFilterPreservesOrder(t *testing.T) {
	f := NewFilterService(20, zap.NewNop())

	candidates := []models.Candidate{
		{Scheme: makeScheme("first"), Score: 0.9},
		{Scheme: makeScheme("blocked", withState("Punjab")), Score: 0.8},
		{Scheme: makeScheme("second"), Score: 0.7},
	}
	result := f.Filter(candidates, models.UserProfile{State: "Bihar"})

	require.Len(t, result, 2)
	assert.Equal(t, "first", result[0].Scheme.Name)
	assert.Equal(t, "second", result[1].Scheme.Name)
}

func TestFilterFallbackWhenEverythingRemoved(t *testing.T) {
	f := NewFilterService(20, zap.NewNop())

	candidates := []models.Candidate{
		{Scheme: makeScheme("a", withState("Punjab")), Score: 0.9},
		{Scheme: makeScheme("b", withState("Kerala")), Score: 0.8},
	}
	result := f.Filter(candidates, models.UserProfile{State: "Bihar"})

	// Everything was removed, so the unfiltered candidates come back.
	require.Len(t, result, 2)
	assert.Equal(t, "a", result[0].Scheme.Name)
}

func TestFilterCapsOutput(t *testing.T) {
	f := NewFilterService(20, zap.NewNop())

	var candidates []models.Candidate
	for i := 0; i < 35; i++ {
		candidates = append(candidates, models.Candidate{
			Scheme: makeScheme(fmt.Sprintf("scheme-%d", i)),
			Score:  0.9,
		})
	}

	assert.Len(t, f.Filter(candidates, models.UserProfile{}), 20)

	// The cap also holds on the fallback path.
	for i := range candidates {
		candidates[i].Scheme.Eligibility.State = "Punjab"
	}
	assert.Len(t, f.Filter(candidates, models.UserProfile{State: "Bihar"}), 20)
}
