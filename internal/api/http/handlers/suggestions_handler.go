package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cassianoaxe/endurancy-support/internal/api/dto"
	"github.com/cassianoaxe/endurancy-support/internal/service"
	apperrors "github.com/cassianoaxe/endurancy-support/pkg/util"
)

// SuggestionsHandler serves the advisor engine endpoints.
type SuggestionsHandler struct {
	suggestions *service.SuggestionService
	apply       *service.ApplyService
}

// NewSuggestionsHandler constructs handler.
func NewSuggestionsHandler(suggestionService *service.SuggestionService, applyService *service.ApplyService) *SuggestionsHandler {
	return &SuggestionsHandler{suggestions: suggestionService, apply: applyService}
}

// GetSuggestions GET /tickets/:id/suggestions.
func (h *SuggestionsHandler) GetSuggestions(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	batch, err := h.suggestions.GetSuggestions(c.Context(), c.Params("id"), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": batch})
}

// ApplySuggestion POST /tickets/:id/suggestions/apply.
func (h *SuggestionsHandler) ApplySuggestion(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ApplySuggestionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ActionKind == "" {
		return apperrors.NewValidationError("actionKind required", nil)
	}
	result, err := h.apply.Apply(c.Context(), c.Params("id"), req.ActionKind, req.Value, principal)
	if err != nil {
		return err
	}
	resp := dto.ApplySuggestionResponse{}
	if result.Ticket != nil {
		detail := ticketDetailFromTicket(result.Ticket)
		resp.Ticket = &detail
	}
	if result.Comment != nil {
		comment := commentResponse(result.Comment)
		resp.Comment = &comment
	}
	return c.JSON(fiber.Map{"data": resp})
}
