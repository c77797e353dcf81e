package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"scheme-saathi/internal/dto"
	"scheme-saathi/internal/models"
	"scheme-saathi/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// ReplyGenerator abstracts the language model so ChatService can be
// tested with a stub.
type ReplyGenerator interface {
	GenerateReply(
		ctx context.Context,
		message string,
		history []dto.ChatTurn,
		profile models.UserProfile,
		missing []string,
		schemes []*models.Scheme,
		language string,
	) (string, error)
	Healthy() bool
	Close()
}

// LLMService wraps the GigaChat client. All scheme facts in a
// recommendation come from the retrieval layer; the model only chooses
// wording and language, and the system instruction forbids it from
// inventing schemes of its own.
type LLMService struct {
	client    *gigago.Client
	modelName string
	logger    *zap.Logger
}

func NewLLMService(cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "GigaChat"
	}

	return &LLMService{
		client:    client,
		modelName: modelName,
		logger:    logger,
	}, nil
}

// GenerateReply produces the assistant's next message. The system
// instruction is rebuilt per call because it embeds the current
// profile, the next question to ask and the matched schemes; a fresh
// model value per call keeps the service safe for concurrent use.
func (s *LLMService) GenerateReply(
	ctx context.Context,
	message string,
	history []dto.ChatTurn,
	profile models.UserProfile,
	missing []string,
	schemes []*models.Scheme,
	language string,
) (string, error) {
	model := s.client.GenerativeModel(s.modelName)
	model.SystemInstruction = buildSystemInstruction(profile, missing, schemes, language)
	model.Temperature = 0.3

	messages := make([]gigago.Message, 0, len(history)+1)
	for _, turn := range history {
		role := gigago.RoleUser
		if turn.Role == models.RoleAssistant {
			role = gigago.RoleAssistant
		}
		messages = append(messages, gigago.Message{Role: role, Content: turn.Content})
	}
	messages = append(messages, gigago.Message{Role: gigago.RoleUser, Content: message})

	resp, err := model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Healthy reports whether the client was initialized. The upstream
// API is not probed on every health check.
func (s *LLMService) Healthy() bool {
	return s.client != nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// buildSystemInstruction encodes the two-phase conversation protocol.
// Without matched schemes the model is in gathering mode and must ask
// exactly one question; with schemes it recommends strictly from the
// provided list.
func buildSystemInstruction(
	profile models.UserProfile,
	missing []string,
	schemes []*models.Scheme,
	language string,
) string {
	var b strings.Builder

	b.WriteString(`You are Scheme Saathi, a warm and knowledgeable assistant helping Indian citizens discover government schemes.

PERSONALITY:
- Friendly, empathetic, like a helpful neighbor at a government office.
- Use simple language. Avoid jargon.
- Respond in the same language the user writes in (Hindi/English/Hinglish).
- Be concise. No filler words.

QUESTIONING RULES:
- Ask ONE question at a time. Never ask two or more questions in one message.
- If the user already told you something in earlier messages, do NOT ask again.
- If the user gave multiple details at once, acknowledge all of them and ask the next missing piece.
- For caste, ask politely: 'To find category-specific schemes, may I know your category - General, SC, ST, OBC, or Minority?'

CRITICAL RULES:
- Never assume the user's state, gender, caste, or help type. Always ask explicitly.
- If you do NOT have a list of schemes below, you are in GATHERING mode. Do NOT name or recommend any scheme.
`)

	writeProfileBlock(&b, profile)

	if len(schemes) == 0 {
		b.WriteString("\n>>> MODE: GATHERING INFORMATION <<<\n\n")
		b.WriteString("You do NOT have enough information yet to recommend schemes.\n")
		b.WriteString("Do NOT recommend or name any scheme, benefit amount, or eligibility detail.\n")
		b.WriteString("Your ONLY job right now: ask ONE more piece of information.\n\n")
		if len(missing) > 0 {
			b.WriteString("-> NEXT QUESTION TO ASK: " + fieldQuestion(missing[0]) + "\n")
			if len(missing) > 1 {
				rest := make([]string, 0, len(missing)-1)
				for _, f := range missing[1:] {
					rest = append(rest, strings.ReplaceAll(f, "_", " "))
				}
				b.WriteString("(After this, still need: " + strings.Join(rest, ", ") + ")\n")
			}
		}
		b.WriteString(`
HOW TO RESPOND:
1. Acknowledge what the user just said in one short sentence.
2. Ask ONE clear, specific question about the next missing detail.
3. Keep your response to 2-3 sentences maximum.
`)
	} else {
		b.WriteString("\n>>> MODE: RECOMMENDING SCHEMES <<<\n\n")
		b.WriteString(`CRITICAL RULES:
- ONLY recommend schemes from the list below. NEVER invent schemes.
- Present the TOP 2-3 most relevant schemes.
- For EACH scheme: name in bold, what the user gets, why it fits their profile, key eligibility, how to apply.
- Use bullet points. Keep the response under 350 words.
- If a scheme does not match the user's profile, skip it even if it is in the list.
- If the user asks a follow-up about a specific scheme, give full details.
`)
		if isValidValue(profile.SpecificNeed) {
			b.WriteString("- User specifically wants: " + profile.SpecificNeed +
				". Do NOT recommend schemes of a different type.\n")
		}
		if profile.Disability != "yes" {
			b.WriteString("- User did not report a disability. Skip disability-specific schemes.\n")
		}
		writeSchemeBlock(&b, schemes)
	}

	if language != "" {
		b.WriteString("\nPreferred response language code: " + language + "\n")
	}
	return b.String()
}

// fieldQuestion maps a missing profile field to the question the
// model should ask next.
func fieldQuestion(field string) string {
	switch field {
	case "occupation":
		return "What do you do - are you a farmer, student, worker, or something else?"
	case "state":
		return "Which state do you live in?"
	case "help_type":
		return "What kind of help are you looking for - money, loan, scholarship, pension, or something else?"
	case "gender":
		return "Are you looking for schemes for yourself? May I know your gender?"
	case "age":
		return "How old are you?"
	case "caste_category":
		return "To find category-specific schemes, may I know your category - General, SC, ST, OBC, or Minority?"
	default:
		return "Could you tell me a bit more about your " + strings.ReplaceAll(field, "_", " ") + "?"
	}
}

func writeProfileBlock(b *strings.Builder, p models.UserProfile) {
	type field struct {
		label, value string
	}
	age := ""
	if p.Age > 0 {
		age = strconv.Itoa(p.Age)
	}
	fields := []field{
		{"Occupation", p.Occupation},
		{"State", p.State},
		{"Type of help needed", p.HelpType},
		{"Specific need", p.SpecificNeed},
		{"Gender", p.Gender},
		{"Age", age},
		{"Category", p.CasteCategory},
		{"Education Level", p.EducationLevel},
		{"Income", p.Income},
		{"Below Poverty Line", p.BPL},
		{"Disability", p.Disability},
		{"Residence", p.Residence},
		{"Family Status", p.FamilyStatus},
	}

	any := false
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if !any {
			b.WriteString("\n=== USER PROFILE (gathered so far) ===\n")
			any = true
		}
		b.WriteString("  " + f.label + ": " + f.value + "\n")
	}
	if any {
		b.WriteString("=== END PROFILE ===\n")
	}
}

const maxSchemesInPrompt = 7

func writeSchemeBlock(b *strings.Builder, schemes []*models.Scheme) {
	b.WriteString("\n=== MATCHED SCHEMES (pre-filtered for relevance) ===\n")
	for i, s := range schemes {
		if i >= maxSchemesInPrompt {
			break
		}
		fmt.Fprintf(b, "\n%d. %s [%s]\n", i+1, s.Name, s.Category)
		if benefit := truncate(firstNonEmpty(s.Benefits.Summary, s.Benefits.RawText), 350); benefit != "" {
			b.WriteString("   Benefits: " + benefit + "\n")
		}
		if elig := truncate(s.Eligibility.RawText, 350); elig != "" {
			b.WriteString("   Eligibility: " + elig + "\n")
		}
		fmt.Fprintf(b, "   State: %s | Gender: %s | Category: %s | Age: %s | Occupation: %s\n",
			orAny(s.Eligibility.State, "All India"),
			orAny(s.Eligibility.Gender, "any"),
			orAny(s.Eligibility.CasteCategory, "any"),
			orAny(s.Eligibility.AgeRange, "any"),
			orAny(s.Eligibility.Occupation, "any"),
		)
		if site := firstNonEmpty(s.OfficialWebsite, s.ApplicationLink); site != "" {
			b.WriteString("   Website: " + site + "\n")
		}
	}
	b.WriteString("\n=== END SCHEMES ===\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func orAny(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}
