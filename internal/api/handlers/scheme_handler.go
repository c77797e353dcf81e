package handlers

import (
	"errors"

	"scheme-saathi/internal/dto"
	"scheme-saathi/internal/models"
	"scheme-saathi/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SchemeHandler struct {
	retrieval *service.RetrievalService
	logger    *zap.Logger
}

func NewSchemeHandler(retrieval *service.RetrievalService, logger *zap.Logger) *SchemeHandler {
	return &SchemeHandler{
		retrieval: retrieval,
		logger:    logger,
	}
}

// Search godoc
// @Summary Semantic scheme search
// @Description Direct semantic search over the scheme corpus, without the conversational flow
// @Tags schemes
// @Accept json
// @Produce json
// @Param request body dto.SearchRequest true "Search request"
// @Success 200 {object} dto.SearchResponse
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/search [post]
func (h *SchemeHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is required",
		})
	}

	schemes, err := h.retrieval.SearchSchemes(c.Context(), req.Query, req.State, req.Category, req.TopK)
	if err != nil {
		if errors.Is(err, service.ErrRetrievalUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Search is temporarily unavailable",
			})
		}
		h.logger.Error("Search failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Search failed",
		})
	}

	return c.JSON(dto.SearchResponse{
		Query:        req.Query,
		TotalMatches: len(schemes),
		Schemes:      schemes,
	})
}

// List godoc
// @Summary Browse schemes
// @Description List schemes with optional category/state narrowing and paging
// @Tags schemes
// @Produce json
// @Param category query string false "Category"
// @Param state query string false "State"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.SchemeListResponse
// @Router /api/v1/schemes [get]
func (h *SchemeHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	schemes, total := h.retrieval.ListSchemes(c.Query("category"), c.Query("state"), limit, offset)
	out := make([]models.Scheme, 0, len(schemes))
	for _, s := range schemes {
		out = append(out, *s)
	}

	return c.JSON(dto.SchemeListResponse{
		Total:   total,
		Schemes: out,
	})
}

// Categories godoc
// @Summary List scheme categories
// @Tags schemes
// @Produce json
// @Success 200 {object} dto.CategoriesResponse
// @Router /api/v1/schemes/categories [get]
func (h *SchemeHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(dto.CategoriesResponse{
		Categories: h.retrieval.Categories(),
	})
}

// Get godoc
// @Summary Get scheme details
// @Tags schemes
// @Produce json
// @Param id path string true "Scheme ID"
// @Success 200 {object} models.Scheme
// @Failure 404 {object} map[string]string
// @Router /api/v1/schemes/{id} [get]
func (h *SchemeHandler) Get(c *fiber.Ctx) error {
	scheme, ok := h.retrieval.GetSchemeByID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Scheme not found",
		})
	}
	return c.JSON(scheme)
}
