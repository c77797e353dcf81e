package service

import (
	"regexp"
	"strconv"
	"strings"

	"scheme-saathi/internal/dto"
	"scheme-saathi/internal/models"

	"go.uber.org/zap"
)

// ProfileExtractor infers a structured eligibility profile from
// free-text conversation turns. Detection is a fixed battery of
// pattern detectors, one per attribute; no LLM call is involved, so
// extraction is fast, deterministic and idempotent.
//
// Detectors accept English and Hindi. Devanagari patterns deliberately
// avoid \b: RE2 word boundaries are ASCII-only and never match at a
// Devanagari rune.
type ProfileExtractor struct {
	logger *zap.Logger
}

func NewProfileExtractor(logger *zap.Logger) *ProfileExtractor {
	return &ProfileExtractor{logger: logger}
}

// BuildProfile walks the whole conversation in chronological order
// and merges what each user turn reveals. Later turns overwrite
// earlier values per attribute; an attribute never reverts to unset.
// Assistant turns are ignored: they would otherwise leak the
// assistant's own question wording into the profile.
func (e *ProfileExtractor) BuildProfile(history []dto.ChatTurn, current string) models.UserProfile {
	var profile models.UserProfile
	for _, turn := range history {
		if turn.Role != models.RoleUser || turn.Content == "" {
			continue
		}
		profile.Merge(e.ExtractFromText(turn.Content))
	}
	if current != "" {
		profile.Merge(e.ExtractFromText(current))
	}
	e.logger.Debug("Built cumulative profile",
		zap.Int("history_turns", len(history)),
		zap.Any("profile", profile),
	)
	return profile
}

// ExtractFromText runs every detector over a single message. Each
// detector is independent; a malformed message simply yields an empty
// profile, never an error.
func (e *ProfileExtractor) ExtractFromText(text string) models.UserProfile {
	var p models.UserProfile
	if strings.TrimSpace(text) == "" {
		return p
	}
	t := strings.ToLower(text)

	p.State = detectFirst(stateDetectors, t)
	p.Occupation = detectFirst(occupationDetectors, t)
	p.Gender = detectGender(t)
	p.CasteCategory = detectCaste(t)
	p.Age = detectAge(t)
	p.Income = detectIncome(t)
	p.EducationLevel = detectFirst(educationDetectors, t)
	p.SpecificNeed = detectFirst(needDetectors, t)
	p.HelpType = p.SpecificNeed
	p.BPL = detectFlag(t, bplPattern, bplNegation)
	p.Disability = detectFlag(t, disabilityPattern, disabilityNegation)
	p.Residence = detectFirst(residenceDetectors, t)
	p.FamilyStatus = detectFirst(familyDetectors, t)

	// Pregnancy and widowhood imply gender when it was not stated.
	if p.Gender == "" && (p.FamilyStatus == "pregnant" || p.FamilyStatus == "widow") {
		p.Gender = "female"
	}
	return p
}

// detector pairs a compiled pattern with the normalized value it
// yields. Batteries are ordered; the first match wins, which is a
// deliberate simplification for ambiguous text.
type detector struct {
	re    *regexp.Regexp
	value string
}

func det(expr, value string) detector {
	return detector{re: regexp.MustCompile(expr), value: value}
}

func detectFirst(battery []detector, text string) string {
	for _, d := range battery {
		if d.re.MatchString(text) {
			return d.value
		}
	}
	return ""
}

// stateDetectors covers all Indian states and UTs, longest names
// first so "arunachal pradesh" is not shadowed by a bare "pradesh"
// fragment, with Devanagari aliases for the most common states.
var stateDetectors = buildStateDetectors()

func buildStateDetectors() []detector {
	type state struct {
		pattern string
		display string
	}
	states := []state{
		{`andhra pradesh|आंध्र प्रदेश`, "Andhra Pradesh"},
		{`arunachal pradesh`, "Arunachal Pradesh"},
		{`himachal pradesh|हिमाचल प्रदेश`, "Himachal Pradesh"},
		{`madhya pradesh|मध्य प्रदेश`, "Madhya Pradesh"},
		{`uttar pradesh|उत्तर प्रदेश`, "Uttar Pradesh"},
		{`west bengal|पश्चिम बंगाल`, "West Bengal"},
		{`tamil nadu|तमिलनाडु`, "Tamil Nadu"},
		{`jammu and kashmir|जम्मू|कश्मीर`, "Jammu and Kashmir"},
		{`andaman and nicobar`, "Andaman and Nicobar"},
		{`assam|असम`, "Assam"},
		{`bihar|बिहार`, "Bihar"},
		{`chhattisgarh|छत्तीसगढ़`, "Chhattisgarh"},
		{`\bgoa\b|गोवा`, "Goa"},
		{`gujarat|गुजरात`, "Gujarat"},
		{`haryana|हरियाणा`, "Haryana"},
		{`jharkhand|झारखंड`, "Jharkhand"},
		{`karnataka|कर्नाटक`, "Karnataka"},
		{`kerala|केरल`, "Kerala"},
		{`maharashtra|महाराष्ट्र`, "Maharashtra"},
		{`manipur`, "Manipur"},
		{`meghalaya`, "Meghalaya"},
		{`mizoram`, "Mizoram"},
		{`nagaland`, "Nagaland"},
		{`odisha|ओडिशा`, "Odisha"},
		{`punjab|पंजाब`, "Punjab"},
		{`rajasthan|राजस्थान`, "Rajasthan"},
		{`sikkim`, "Sikkim"},
		{`telangana|तेलंगाना`, "Telangana"},
		{`tripura`, "Tripura"},
		{`uttarakhand|उत्तराखंड`, "Uttarakhand"},
		{`delhi|दिल्ली`, "Delhi"},
		{`ladakh`, "Ladakh"},
		{`chandigarh|चंडीगढ़`, "Chandigarh"},
		{`puducherry`, "Puducherry"},
	}
	out := make([]detector, 0, len(states))
	for _, s := range states {
		out = append(out, det(s.pattern, s.display))
	}
	return out
}

var occupationDetectors = []detector{
	det(`\bfarmers?\b|\bkisan\b|\bfarming\b|\bagriculture\b|\bkhet\b|किसान|खेती`, "farmer"),
	det(`\bstudents?\b|\bstudying\b|\bcollege\b|\buniversity\b|\bengineering\b|\bbtech\b|\bmba\b|\bschool\b|\bscholarship\b|\bclass\s+\d|\bmatric\b|\bdegree\b|\bpost.?graduate\b|\bgraduate\b|\bdiploma\b|छात्र|विद्यार्थी|छात्रवृत्ति`, "student"),
	det(`\bsenior\s*citizens?\b|\bretired\b|\bold\s*age\b|\bpensioners?\b|\belderly\b|\bvridh\b|\bpension\b|बुजुर्ग|वृद्ध|पेंशन`, "senior citizen"),
	det(`\bbusiness\b|\bentrepreneur\b|\bself.?employed\b|\bshop\b|\bstartup\b|\bmsme\b|\btrader\b|\budyami\b|व्यवसाय|दुकान`, "entrepreneur"),
	det(`\bworkers?\b|\blabou?r\b|\bemployee\b|\bdaily\s*wage\b|\bsalaried\b|\bjob\b|मजदूर|श्रमिक`, "worker"),
	det(`\bfisherm[ae]n\b|\bfishing\b|मछुआरा`, "fisherman"),
	det(`\bartisan\b|\bhandicraft\b|\bweaver\b|\bpotter\b|\bvishwakarma\b|कारीगर|बुनकर`, "artisan"),
}

var (
	femalePattern    = regexp.MustCompile(`\bfemale\b|\bwoman\b|\bwomen\b|\bgirl\b|\bmahila\b|\bmother\b|\bpregnant\b|\bwidow\b|\blady\b|\bdaughter\b|\bsister\b|महिला|औरत|लड़की|बेटी`)
	malePattern      = regexp.MustCompile(`\bmale\b|\bboy\b|\bman\b|पुरुष|आदमी|लड़का`)
	bothGenderPhrase = regexp.MustCompile(`male\s*(?:and|or|/)\s*female|female\s*(?:and|or|/)\s*male`)
)

// detectGender checks the both-genders phrase first, then female
// before male: words like "woman" contain "man". RE2 has no
// lookahead, so the both-genders phrase is a separate guard.
func detectGender(text string) string {
	if bothGenderPhrase.MatchString(text) {
		return ""
	}
	if femalePattern.MatchString(text) {
		return "female"
	}
	if malePattern.MatchString(text) {
		return "male"
	}
	return ""
}

var casteDetectors = []detector{
	det(`\bsc\s*/\s*st\b|\bsc\s+st\b|\bsc\s*&\s*st\b|\bsc\s+and\s+st\b`, "SC/ST"),
	det(`\bsc\b|\bschedul\w+\s*caste\b|\bdalit\b|अनुसूचित जाति|दलित`, "SC"),
	det(`\bst\b|\bschedul\w+\s*tribe\b|\btribal\b|\badivasi\b|अनुसूचित जनजाति|आदिवासी`, "ST"),
	det(`\bobc\b|\bother\s*backward\b|पिछड़ा वर्ग`, "OBC"),
	det(`\bgeneral\s*category\b|\bunreserved\b|सामान्य वर्ग`, "General"),
	det(`\bminority\b|\bmuslim\b|\bchristian\b|\bsikh\b|\bbuddhist\b|\bjain\b|\bparsi\b|अल्पसंख्यक`, "Minority"),
}

const negationPrefix = `(?:not|no|neither|don'?t|isn'?t|i'?m\s+not)\s+(?:a\s+)?`

var casteNegations = buildCasteNegations()

func buildCasteNegations() []detector {
	out := make([]detector, 0, len(casteDetectors))
	for _, d := range casteDetectors {
		out = append(out, det(negationPrefix+`(?:`+d.re.String()+`)`, d.value))
	}
	return out
}

// detectCaste applies the battery, then drops the value again if the
// text negates it ("I'm not SC"), which lets a later "I'm general
// category" sentence in the same message still win.
func detectCaste(text string) string {
	found := detectFirst(casteDetectors, text)
	if found == "" {
		return ""
	}
	for _, neg := range casteNegations {
		if neg.value == found && neg.re.MatchString(text) {
			return ""
		}
	}
	return found
}

var agePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{1,2})\s*(?:years?|yrs?)?\s*old\b`),
	regexp.MustCompile(`\bage\s*(?:is\s*)?(\d{1,2})\b`),
	regexp.MustCompile(`\bi(?:'?m| am)\s*(\d{1,2})\b`),
	regexp.MustCompile(`(\d{1,2})\s*(?:साल|वर्ष)`),
}

func detectAge(text string) int {
	for _, re := range agePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		age, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		// Sanity range; "class 9" style numbers are caught by the
		// \bage / old anchors, not bare digits.
		if age >= 5 && age <= 100 {
			return age
		}
	}
	return 0
}

var incomePattern = regexp.MustCompile(`(?:income|earn|salary|आय).{0,20}?([\d,.]+)\s*(?:lakh|lac|lpa|लाख|per\s*(?:annum|year|month))`)

func detectIncome(text string) string {
	if m := incomePattern.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}

// Education tiers: "higher" is post-matric (college and beyond),
// "school" is pre-matric (class 1-10). Ordering puts higher first so
// "higher secondary" does not fall into the school bucket.
var educationDetectors = []detector{
	det(`\bengineering\b|\bb\.?tech\b|\bb\.?e\b|\bm\.?tech\b|\bmba\b|\bbba\b|\bm\.?sc\b|\bb\.?sc\b|\bm\.?a\b|\bb\.?a\b|\bm\.?com\b|\bb\.?com\b|\bph\.?d\b|\bpost.?graduate\b|\bgraduate\b|\bdiploma\b|\bcollege\b|\buniversity\b|\bdegree\b|\bmbbs\b|\bllb\b|\bnursing\b|\bpolytechnic\b|\biti\b|\bpost.?matric\b|\bclass\s*1[1-2]\b|\b1[1-2]th\b|\bhigher\s+secondary\b|\bhigher\s+education\b|\bunder.?graduate\b|\bug\b|\bpg\b|कॉलेज|विश्वविद्यालय`, "higher"),
	det(`\bpre.?matric\b|\bclass\s*[1-9]\b|\bclass\s*10\b|\b[1-9]th\s+(?:class|standard|std)\b|\b10th\s+(?:class|standard|std)\b|\bprimary\s+school\b|\bmiddle\s+school\b|\bhigh\s+school\b`, "school"),
}

// needDetectors map what the user asked for to a normalized help type.
// Order is load-bearing: "loan for my business" is a loan, "crop
// insurance" is agriculture support rather than health insurance, and
// the generic money ask sits last as the catch-all.
var needDetectors = []detector{
	det(`\bscholarships?\b|\bstipend\b|छात्रवृत्ति|वज़ीफ़ा`, "scholarship"),
	det(`\bloans?\b|\bcredit\b|\bmudra\b|कर्ज|ऋण|लोन`, "loan"),
	det(`\bpensions?\b|पेंशन`, "pension"),
	det(`\bcrop\s+insurance\b|\bkisan\s+credit\b|\bfasal\b|\bfertilizer\b|\bseeds?\s+subsidy\b|\bagricultur\w+\s+(?:support|subsidy|scheme)\b|फसल बीमा`, "agriculture_support"),
	det(`\bhealth\s*insurance\b|\bmedical\b|\btreatment\b|\bhospital\b|\bayushman\b|\bilaj\b|इलाज|स्वास्थ्य|बीमा`, "health_insurance"),
	det(`\bhousing\b|\bhouse\b|\bawas\b|\bpmay\b|आवास|घर|मकान`, "housing"),
	det(`\bmarriage\b|\bwedding\b|\bkanyadan\b|शादी|विवाह`, "marriage"),
	det(`\btraining\b|\bskill\b|\bupskill\b|कौशल|प्रशिक्षण`, "skill_training"),
	det(`\bjobs?\b|\bemployment\b|\bunemploy\w+\b|\brozgar\b|रोजगार|नौकरी|बेरोजगार`, "employment"),
	det(`\bbusiness\b|\bstartup\b|\benterprise\b|\budyam\b|व्यवसाय|धंधा`, "business_support"),
	det(`\bmoney\b|\bfinancial\s+(?:help|assistance|aid|support)\b|\bfunds?\b|\bcash\b|पैसा|पैसे|आर्थिक सहायता|सहायता`, "financial_assistance"),
}

var (
	bplPattern         = regexp.MustCompile(`\bbpl\b|\bbelow\s+poverty\b|\bration\s*card\b|गरीबी रेखा|राशन कार्ड`)
	bplNegation        = regexp.MustCompile(negationPrefix + `(?:\bbpl\b|\bbelow\s+poverty\b)`)
	disabilityPattern  = regexp.MustCompile(`\bdisabled\b|\bdisabilit\w+\b|\bdivyang\b|\bhandicapped\b|\bpwd\b|विकलांग|दिव्यांग`)
	disabilityNegation = regexp.MustCompile(negationPrefix + `(?:\bdisabled\b|\bdisabilit\w+\b|\bdivyang\b|\bhandicapped\b)`)
)

// detectFlag returns "yes", "no" (explicit negation) or "" (never
// mentioned). The tri-state keeps "I'm not disabled" distinguishable
// from silence, which the eligibility filter relies on.
func detectFlag(text string, positive, negation *regexp.Regexp) string {
	if negation.MatchString(text) {
		return "no"
	}
	if positive.MatchString(text) {
		return "yes"
	}
	return ""
}

var residenceDetectors = []detector{
	det(`\brural\b|\bvillage\b|गांव|ग्रामीण`, "rural"),
	det(`\burban\b|\bcity\b|\btown\b|शहर|शहरी`, "urban"),
}

var familyDetectors = []detector{
	det(`\bwidows?\b|विधवा`, "widow"),
	det(`\bpregnant\b|\bmaternity\b|गर्भवती`, "pregnant"),
	det(`\borphans?\b|अनाथ`, "orphan"),
	det(`\bsingle\s+mother\b|\bsingle\s+parent\b`, "single mother"),
	det(`\bdivorced\b|तलाकशुदा`, "divorced"),
}
