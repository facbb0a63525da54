package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/cassianoaxe/endurancy-support/internal/auth"
	"github.com/cassianoaxe/endurancy-support/internal/domain"
	"github.com/cassianoaxe/endurancy-support/internal/repository"
	apperrors "github.com/cassianoaxe/endurancy-support/pkg/util"
)

// AccessGuard resolves a ticket and verifies the requesting principal may
// see or act on it. It must run before any read or mutation that touches a
// specific ticket; the resolved ticket is returned as an explicit value and
// threaded through subsequent calls.
type AccessGuard struct {
	tickets repository.TicketRepository
}

// NewAccessGuard constructs the guard.
func NewAccessGuard(tickets repository.TicketRepository) *AccessGuard {
	return &AccessGuard{tickets: tickets}
}

// Resolve loads the ticket and enforces tenant isolation: the principal's
// tenant must match the ticket's tenant unless the principal is admin.
func (g *AccessGuard) Resolve(ctx context.Context, ticketID string, principal *auth.Principal) (*domain.Ticket, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("principal required")
	}
	ticket, err := g.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if ticket.TenantID != principal.TenantID && !principal.IsAdmin() {
		return nil, apperrors.NewForbidden("ticket belongs to another organization")
	}
	return ticket, nil
}
