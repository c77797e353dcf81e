package handlers

import (
	"errors"

	"scheme-saathi/internal/dto"
	"scheme-saathi/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService *service.ChatService
	logger      *zap.Logger
}

func NewChatHandler(chatService *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// callerID returns the authenticated user id or uuid.Nil for
// anonymous callers. The optional-auth middleware only sets the local
// when a valid token was presented.
func callerID(c *fiber.Ctx) uuid.UUID {
	raw, ok := c.Locals("userID").(string)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Chat godoc
// @Summary Conversational scheme discovery
// @Description One turn of the discovery conversation. Resupply the full history on each call; the profile is re-derived from it.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Chat request"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	resp, err := h.chatService.Chat(c.Context(), &req, callerID(c))
	if err != nil {
		h.logger.Error("Chat turn failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process message",
		})
	}

	return c.JSON(resp)
}

// ListChats godoc
// @Summary List saved conversations
// @Tags chats
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ChatSummary
// @Router /api/v1/chats [get]
func (h *ChatHandler) ListChats(c *fiber.Ctx) error {
	userID := callerID(c)
	if userID == uuid.Nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	chats, err := h.chatService.ListChats(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list chats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list chats",
		})
	}

	return c.JSON(chats)
}

// GetChat godoc
// @Summary Get one saved conversation with messages
// @Tags chats
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chat ID"
// @Success 200 {object} dto.ChatDetail
// @Failure 404 {object} map[string]string
// @Router /api/v1/chats/{id} [get]
func (h *ChatHandler) GetChat(c *fiber.Ctx) error {
	userID := callerID(c)
	if userID == uuid.Nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	chatID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid chat id",
		})
	}

	detail, err := h.chatService.GetChat(c.Context(), chatID, userID)
	if err != nil {
		if errors.Is(err, service.ErrChatNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Chat not found",
			})
		}
		h.logger.Error("Failed to load chat", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load chat",
		})
	}

	return c.JSON(detail)
}
