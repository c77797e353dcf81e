package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"scheme-saathi/internal/dto"
	"scheme-saathi/internal/models"
	"scheme-saathi/internal/repository"
	"scheme-saathi/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrChatNotFound = errors.New("chat not found")

// ChatService orchestrates one conversational turn: extract the
// profile from the full history, gate on readiness, retrieve and
// filter schemes when ready, and have the language model phrase the
// reply. The core is stateless between calls; persistence is an
// optional side effect for authenticated users.
type ChatService struct {
	extractor *ProfileExtractor
	retrieval *RetrievalService
	filter    *FilterService
	llm       ReplyGenerator
	chatRepo  *repository.ChatRepository
	// fetchK is how many candidates retrieval hands to the eligibility
	// filter. It is deliberately larger than the final answer size:
	// the filter may remove most of the head of the ranking, and
	// eligible schemes just below it must still be reachable.
	fetchK int
	logger *zap.Logger
}

func NewChatService(
	extractor *ProfileExtractor,
	retrieval *RetrievalService,
	filter *FilterService,
	llm ReplyGenerator,
	chatRepo *repository.ChatRepository,
	cfg *config.Config,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		extractor: extractor,
		retrieval: retrieval,
		filter:    filter,
		llm:       llm,
		chatRepo:  chatRepo,
		fetchK:    cfg.Retrieval.FetchK,
		logger:    logger,
	}
}

// Chat handles one turn. userID is uuid.Nil for anonymous callers, in
// which case nothing is persisted.
//
// Retrieval being down degrades the reply to text-only and is flagged
// in the response; it is never surfaced as a request failure and never
// papered over with invented schemes.
func (s *ChatService) Chat(ctx context.Context, req *dto.ChatRequest, userID uuid.UUID) (*dto.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("message is empty")
	}

	profile := s.extractor.BuildProfile(req.ConversationHistory, message)
	ready := IsReady(profile)
	missing := MissingFields(profile)

	var (
		matched              []models.Candidate
		retrievalUnavailable bool
	)
	if ready {
		candidates, err := s.retrieval.Retrieve(ctx, message, profile, req.ConversationHistory, s.fetchK)
		switch {
		case errors.Is(err, ErrRetrievalUnavailable):
			retrievalUnavailable = true
			s.logger.Warn("Retrieval unavailable, replying without schemes")
		case err != nil:
			return nil, err
		default:
			matched = s.filter.Filter(candidates, profile)
		}
	}

	schemes := make([]*models.Scheme, len(matched))
	for i, c := range matched {
		schemes[i] = c.Scheme
	}

	reply, err := s.llm.GenerateReply(ctx, message, req.ConversationHistory, profile, missing, schemes, req.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reply: %w", err)
	}

	resp := &dto.ChatResponse{
		Message:              reply,
		Schemes:              toSchemeCards(matched),
		NeedsMoreInfo:        !ready,
		RetrievalUnavailable: retrievalUnavailable,
	}
	if !profile.IsEmpty() {
		resp.ExtractedProfile = &profile
	}

	if userID != uuid.Nil {
		chatID, err := s.persistTurn(ctx, req, userID, message, reply)
		if err != nil {
			// History persistence failing should not lose the reply.
			s.logger.Error("Failed to persist chat turn", zap.Error(err))
		} else {
			resp.ChatID = chatID.String()
		}
	}

	return resp, nil
}

func (s *ChatService) persistTurn(
	ctx context.Context,
	req *dto.ChatRequest,
	userID uuid.UUID,
	message, reply string,
) (uuid.UUID, error) {
	var chatID uuid.UUID
	if req.ChatID != "" {
		parsed, err := uuid.Parse(req.ChatID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid chat id: %w", err)
		}
		if _, err := s.chatRepo.GetByID(ctx, parsed, userID); err != nil {
			return uuid.Nil, fmt.Errorf("failed to load chat: %w", err)
		}
		chatID = parsed
	} else {
		chat := &models.Chat{
			ID:     uuid.New(),
			UserID: userID,
			Title:  chatTitle(message),
		}
		if err := s.chatRepo.Create(ctx, chat); err != nil {
			return uuid.Nil, fmt.Errorf("failed to create chat: %w", err)
		}
		chatID = chat.ID
	}

	for _, m := range []*models.ChatMessage{
		{ID: uuid.New(), ChatID: chatID, Role: models.RoleUser, Content: message},
		{ID: uuid.New(), ChatID: chatID, Role: models.RoleAssistant, Content: reply},
	} {
		if err := s.chatRepo.AppendMessage(ctx, m); err != nil {
			return uuid.Nil, fmt.Errorf("failed to append message: %w", err)
		}
	}
	return chatID, nil
}

// ListChats returns the caller's persisted conversations, most
// recently updated first.
func (s *ChatService) ListChats(ctx context.Context, userID uuid.UUID) ([]dto.ChatSummary, error) {
	chats, err := s.chatRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	out := make([]dto.ChatSummary, 0, len(chats))
	for _, c := range chats {
		out = append(out, dto.ChatSummary{
			ID:        c.ID.String(),
			Title:     c.Title,
			CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			UpdatedAt: c.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out, nil
}

// GetChat returns one persisted conversation with its messages.
// Ownership is enforced by the repository query.
func (s *ChatService) GetChat(ctx context.Context, chatID, userID uuid.UUID) (*dto.ChatDetail, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID, userID)
	if err != nil {
		return nil, ErrChatNotFound
	}
	messages, err := s.chatRepo.ListMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	detail := &dto.ChatDetail{
		ID:    chat.ID.String(),
		Title: chat.Title,
	}
	for _, m := range messages {
		detail.Messages = append(detail.Messages, dto.ChatTurn{Role: m.Role, Content: m.Content})
	}
	return detail, nil
}

const maxTitleLength = 60

func chatTitle(message string) string {
	title := strings.TrimSpace(message)
	if len(title) > maxTitleLength {
		title = strings.TrimSpace(title[:maxTitleLength])
	}
	if title == "" {
		title = "New conversation"
	}
	return title
}

func toSchemeCards(candidates []models.Candidate) []dto.SchemeCard {
	cards := make([]dto.SchemeCard, 0, len(candidates))
	for _, c := range candidates {
		s := c.Scheme
		if s == nil {
			continue
		}
		card := dto.SchemeCard{
			SchemeID:         s.ID,
			SchemeName:       s.Name,
			Category:         s.Category,
			BriefDescription: s.BriefDescription,
			BenefitsSummary:  firstNonEmpty(s.Benefits.Summary, s.Benefits.RawText),
			EligibilityText:  s.Eligibility.RawText,
			ApplicationLink:  firstNonEmpty(s.ApplicationLink, s.OfficialWebsite),
			MatchScore:       s.MatchScore,
		}
		for _, d := range s.RequiredDocuments {
			card.RequiredDocuments = append(card.RequiredDocuments, d.Name)
		}
		cards = append(cards, card)
	}
	return cards
}
