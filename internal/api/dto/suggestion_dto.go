package dto

import "github.com/cassianoaxe/endurancy-support/internal/domain"

// ApplySuggestionRequest payload.
type ApplySuggestionRequest struct {
	ActionKind domain.ActionKind `json:"actionKind"`
	Value      string            `json:"value"`
}

// ApplySuggestionResponse carries whichever entity the action mutated.
type ApplySuggestionResponse struct {
	Ticket  *TicketDetailResponse `json:"ticket,omitempty"`
	Comment *CommentResponse      `json:"comment,omitempty"`
}
