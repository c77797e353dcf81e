package handlers

import (
	"scheme-saathi/internal/dto"
	"scheme-saathi/internal/service"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	retrieval *service.RetrievalService
	llm       service.ReplyGenerator
}

func NewHealthHandler(retrieval *service.RetrievalService, llm service.ReplyGenerator) *HealthHandler {
	return &HealthHandler{
		retrieval: retrieval,
		llm:       llm,
	}
}

// Health godoc
// @Summary Service health
// @Description Readiness of the LLM client and the scheme index
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	resp := dto.HealthResponse{
		Status:       "ok",
		LLMStatus:    "ok",
		IndexStatus:  "ok",
		TotalSchemes: h.retrieval.TotalSchemes(),
	}
	if !h.llm.Healthy() {
		resp.LLMStatus = "unavailable"
		resp.Status = "degraded"
	}
	if !h.retrieval.Healthy() {
		resp.IndexStatus = "empty"
		resp.Status = "degraded"
	}
	return c.JSON(resp)
}
