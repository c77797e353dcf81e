package service

import (
	"regexp"
	"strconv"
	"strings"

	"scheme-saathi/internal/models"

	"go.uber.org/zap"
)

// FilterService applies deterministic eligibility rules to retrieval
// candidates. Retrieval ranks by semantic similarity, which happily
// surfaces a Meghalaya tribal scheme for a Karnataka student; this
// layer is what prevents wrong-state, wrong-gender and
// wrong-life-stage recommendations from reaching the user.
//
// Every rule is removal-only and order-preserving. Rules fire only
// when the profile carries the relevant attribute, so a sparse profile
// filters less, never more.
type FilterService struct {
	topK   int
	logger *zap.Logger
}

func NewFilterService(topK int, logger *zap.Logger) *FilterService {
	return &FilterService{topK: topK, logger: logger}
}

// Filter runs the full rule battery over candidates.
//
// If the battery removes every candidate the unfiltered list wins:
// loosely-matching recommendations beat an empty answer, and the
// assistant can still caveat them. Output is capped at topK either
// way.
func (f *FilterService) Filter(candidates []models.Candidate, profile models.UserProfile) []models.Candidate {
	if len(candidates) == 0 {
		return candidates
	}

	filtered := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Scheme == nil || f.matches(c.Scheme, profile) {
			filtered = append(filtered, c)
		}
	}

	if removed := len(candidates) - len(filtered); removed > 0 {
		f.logger.Info("Eligibility filter removed candidates",
			zap.Int("removed", removed),
			zap.Int("kept", len(filtered)),
		)
	}

	if len(filtered) == 0 {
		f.logger.Warn("Eligibility filter removed all candidates, falling back to unfiltered results")
		filtered = candidates
	}
	if len(filtered) > f.topK {
		filtered = filtered[:f.topK]
	}
	return filtered
}

func (f *FilterService) matches(s *models.Scheme, p models.UserProfile) bool {
	return matchesState(s, p) &&
		matchesGender(s, p) &&
		matchesCaste(s, p) &&
		matchesAge(s, p) &&
		matchesOccupation(s, p) &&
		matchesEducation(s, p) &&
		matchesNeed(s, p) &&
		matchesDisability(s, p) &&
		matchesBPL(s, p) &&
		matchesFamilyStatus(s, p) &&
		matchesFarmerTargeting(s, p) &&
		matchesSeniorTargeting(s, p) &&
		matchesChildTargeting(s, p)
}

func isOpenValue(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "any", "all":
		return true
	}
	return false
}

var allIndiaKeywords = []string{"all india", "all states", "national", "central", "nationwide"}

// matchesState rejects schemes tied to a different specific state.
// All-India and unscoped schemes always pass; otherwise the two state
// strings must contain one another ("Jammu and Kashmir" vs "Jammu &
// Kashmir (UT)" style variance in the corpus).
func matchesState(s *models.Scheme, p models.UserProfile) bool {
	if !isValidValue(p.State) {
		return true
	}
	schemeState := strings.ToLower(strings.TrimSpace(s.Eligibility.State))
	if isOpenValue(schemeState) {
		return true
	}
	for _, kw := range allIndiaKeywords {
		if strings.Contains(schemeState, kw) {
			return true
		}
	}
	userState := strings.ToLower(strings.TrimSpace(p.State))
	return strings.Contains(schemeState, userState) || strings.Contains(userState, schemeState)
}

func matchesGender(s *models.Scheme, p models.UserProfile) bool {
	if !isValidValue(p.Gender) {
		return true
	}
	schemeGender := strings.ToLower(strings.TrimSpace(s.Eligibility.Gender))
	if isOpenValue(schemeGender) || strings.Contains(schemeGender, "both") {
		return true
	}
	userGender := strings.ToLower(p.Gender)
	// "female" contains "male"; an exact-or-contains check on the user
	// value is safe because the user side is always normalized.
	return schemeGender == userGender || strings.Contains(schemeGender, userGender) && !(userGender == "male" && strings.Contains(schemeGender, "female"))
}

func isGeneralCaste(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "any", "all", "general":
		return true
	}
	return false
}

// matchesCaste keeps caste-open schemes for everyone. A scheme
// reserved for specific categories ("SC", "SC/ST") drops General
// users, and users with a specific category must appear in the
// scheme's list. Corpus values like "any (higher subsidy for SC/ST)"
// count as open.
func matchesCaste(s *models.Scheme, p models.UserProfile) bool {
	if !isValidValue(p.CasteCategory) {
		return true
	}
	schemeCaste := strings.ToLower(strings.TrimSpace(s.Eligibility.CasteCategory))
	if isGeneralCaste(schemeCaste) || strings.HasPrefix(schemeCaste, "any") {
		return true
	}
	userCaste := strings.ToLower(strings.TrimSpace(p.CasteCategory))
	if isGeneralCaste(userCaste) {
		return false
	}
	return strings.Contains(schemeCaste, userCaste) || strings.Contains(userCaste, schemeCaste)
}

var (
	ageBetween = regexp.MustCompile(`^(\d{1,3})\s*[-–to]+\s*(\d{1,3})$`)
	ageAbove   = regexp.MustCompile(`^(\d{1,3})\s*\+$`)
	ageBelow   = regexp.MustCompile(`^<\s*(\d{1,3})$`)
)

// matchesAge understands the three range shapes the corpus uses:
// "18-40", "60+" and "<10". Anything unparseable fails open, as does
// a scheme with no declared range.
func matchesAge(s *models.Scheme, p models.UserProfile) bool {
	if p.Age == 0 {
		return true
	}
	r := strings.ToLower(strings.TrimSpace(s.Eligibility.AgeRange))
	if isOpenValue(r) {
		return true
	}
	if m := ageBetween.FindStringSubmatch(r); m != nil {
		low, _ := strconv.Atoi(m[1])
		high, _ := strconv.Atoi(m[2])
		return p.Age >= low && p.Age <= high
	}
	if m := ageAbove.FindStringSubmatch(r); m != nil {
		low, _ := strconv.Atoi(m[1])
		return p.Age >= low
	}
	if m := ageBelow.FindStringSubmatch(r); m != nil {
		high, _ := strconv.Atoi(m[1])
		return p.Age < high
	}
	return true
}

func matchesOccupation(s *models.Scheme, p models.UserProfile) bool {
	if !isValidValue(p.Occupation) {
		return true
	}
	schemeOcc := strings.ToLower(strings.TrimSpace(s.Eligibility.Occupation))
	if isOpenValue(schemeOcc) {
		return true
	}
	userOcc := strings.ToLower(strings.TrimSpace(p.Occupation))
	return strings.Contains(schemeOcc, userOcc) || strings.Contains(userOcc, schemeOcc)
}

var (
	preMatricPattern  = regexp.MustCompile(`\bpre[- ]?matric\b`)
	schoolClassRange  = regexp.MustCompile(`\bclass(?:es)?\s+(?:[1-9]|10)\b`)
	higherEdIndicator = regexp.MustCompile(`\bclass\s*1[1-2]\b|\bpost[- ]?matric\b|\bcollege\b|\buniversity\b|\bdegree\b|\bgraduate\b`)
	postMatricPattern = regexp.MustCompile(`\bpost[- ]?matric\b|\bcollege\b|\buniversity\b|\bdegree\b|\bgraduate\b|\bprofessional\s+course\b|\bengineering\b|\bmbbs\b|\bdiploma\b`)
)

func schemeFilterText(s *models.Scheme) string {
	return strings.ToLower(s.Name + " " + s.BriefDescription + " " + s.Eligibility.RawText)
}

func schemeIsPreMatric(s *models.Scheme) bool {
	text := schemeFilterText(s)
	if preMatricPattern.MatchString(text) {
		return true
	}
	return schoolClassRange.MatchString(text) && !higherEdIndicator.MatchString(text)
}

func schemeIsPostMatric(s *models.Scheme) bool {
	return postMatricPattern.MatchString(schemeFilterText(s))
}

// matchesEducation drops pre-matric-only schemes for higher-ed users
// and vice versa. The tier is detected from the scheme's name,
// description and raw eligibility text since the structured fields
// rarely carry it.
func matchesEducation(s *models.Scheme, p models.UserProfile) bool {
	switch p.EducationLevel {
	case "higher":
		return !schemeIsPreMatric(s)
	case "school":
		return !schemeIsPostMatric(s)
	}
	return true
}

// needClassifiers map a scheme's benefit type and name onto the same
// normalized help types the extractor produces. Order matters: "crop
// insurance" is agriculture support, not health insurance.
var needClassifiers = []detector{
	det(`crop\s+insurance|kisan|fasal|agricult|farm`, "agriculture_support"),
	det(`scholarship|stipend|fellowship`, "scholarship"),
	det(`loan|credit|mudra`, "loan"),
	det(`pension`, "pension"),
	det(`health\s+insurance|medical|treatment|ayushman|hospital`, "health_insurance"),
	det(`housing|house|awas`, "housing"),
	det(`marriage|wedding|kanyadan`, "marriage"),
	det(`training|skill`, "skill_training"),
	det(`employment|rozgar|\bjob\b|wage`, "employment"),
	det(`business|startup|enterprise|udyam`, "business_support"),
}

// compatibleNeeds lists normalized help types close enough that
// rejecting one for the other would hurt: loans fund businesses,
// training leads to jobs.
var compatibleNeeds = map[string]string{
	"loan":             "business_support",
	"business_support": "loan",
	"employment":       "skill_training",
	"skill_training":   "employment",
}

// classifySchemeNeed trusts the declared benefit type when there is
// one; the name is a heuristic of last resort. "Kisan Credit Card"
// with benefit type "Subsidized Loan" is a loan, not farm support.
func classifySchemeNeed(s *models.Scheme) string {
	if t := strings.ToLower(strings.TrimSpace(s.Benefits.Type)); t != "" {
		return detectFirst(needClassifiers, t)
	}
	return detectFirst(needClassifiers, strings.ToLower(s.Name))
}

// matchesNeed rejects a scheme whose benefit type contradicts what
// the user asked for (a pension scheme for a scholarship seeker).
// Schemes that classify as nothing specific — cash transfers,
// subsidies, unlabeled benefits — pass for every need, as does any
// scheme when the user's need is the generic financial-assistance
// catch-all.
func matchesNeed(s *models.Scheme, p models.UserProfile) bool {
	need := p.SpecificNeed
	if !isValidValue(need) || need == "financial_assistance" {
		return true
	}
	schemeNeed := classifySchemeNeed(s)
	if schemeNeed == "" || schemeNeed == need {
		return true
	}
	return compatibleNeeds[need] == schemeNeed
}

var (
	disabilityScheme = regexp.MustCompile(`disabilit|divyang|handicapped|viklang`)
	bplScheme        = regexp.MustCompile(`\bbpl\b|below\s+poverty`)
	widowScheme      = regexp.MustCompile(`widow|vidhwa`)
	maternityScheme  = regexp.MustCompile(`pregnan|maternity|matru`)
	farmerScheme     = regexp.MustCompile(`\bkisan\b|\bfarmers?\b|\bpm[- ]?kisan\b|agricultural\s+labou?r`)
	seniorScheme     = regexp.MustCompile(`old\s+age|senior\s+citizen|\bvayoshri\b|वृद्धावस्था`)
	childScheme      = regexp.MustCompile(`girl\s+child|\bchild(?:ren)?\s+(?:below|under)\s+\d|\bsukanya\b|\bbalika\b`)
)

// The targeting filters below are inclusion filters: they fire only
// when the scheme visibly targets a group AND the profile says
// something about membership. Silence on either side keeps the
// candidate.

func matchesDisability(s *models.Scheme, p models.UserProfile) bool {
	if p.Disability == "" {
		return true
	}
	if !disabilityScheme.MatchString(schemeFilterText(s)) {
		return true
	}
	return p.Disability == "yes"
}

func matchesBPL(s *models.Scheme, p models.UserProfile) bool {
	if p.BPL == "" {
		return true
	}
	if s.Eligibility.BPLMandatory || bplScheme.MatchString(schemeFilterText(s)) {
		return p.BPL == "yes"
	}
	return true
}

func matchesFamilyStatus(s *models.Scheme, p models.UserProfile) bool {
	if !isValidValue(p.FamilyStatus) {
		return true
	}
	text := schemeFilterText(s)
	if widowScheme.MatchString(text) && p.FamilyStatus != "widow" {
		return false
	}
	if maternityScheme.MatchString(text) && p.FamilyStatus != "pregnant" {
		return false
	}
	return true
}

func matchesFarmerTargeting(s *models.Scheme, p models.UserProfile) bool {
	if !isValidValue(p.Occupation) {
		return true
	}
	if !farmerScheme.MatchString(strings.ToLower(s.Name)) {
		return true
	}
	return strings.Contains(strings.ToLower(p.Occupation), "farmer")
}

func matchesSeniorTargeting(s *models.Scheme, p models.UserProfile) bool {
	if !seniorScheme.MatchString(schemeFilterText(s)) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Occupation), "senior") {
		return true
	}
	if p.Age == 0 {
		return true
	}
	return p.Age >= 60
}

func matchesChildTargeting(s *models.Scheme, p models.UserProfile) bool {
	if p.Age == 0 {
		return true
	}
	if !childScheme.MatchString(schemeFilterText(s)) {
		return true
	}
	return p.Age <= 18
}
