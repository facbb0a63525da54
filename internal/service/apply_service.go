package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cassianoaxe/endurancy-support/internal/auth"
	"github.com/cassianoaxe/endurancy-support/internal/domain"
	"github.com/cassianoaxe/endurancy-support/internal/events"
	"github.com/cassianoaxe/endurancy-support/internal/repository"
	apperrors "github.com/cassianoaxe/endurancy-support/pkg/util"
)

// ApplyResult carries whichever entity the applied action mutated.
type ApplyResult struct {
	Ticket  *domain.Ticket
	Comment *domain.Comment
}

// ApplyService executes one chosen suggestion action against a ticket.
// Advisors emit intents; this handler is the single place that turns an
// intent into a mutation, so advisors stay pure and independently testable.
type ApplyService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	history    repository.TicketHistoryRepository
	guard      *AccessGuard
	dispatcher events.Dispatcher
}

// ApplyDependencies bundles collaborators for the apply service.
type ApplyDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	UserRepo    repository.UserRepository
	HistoryRepo repository.TicketHistoryRepository
	Guard       *AccessGuard
	Dispatcher  events.Dispatcher
}

// NewApplyService constructs the service.
func NewApplyService(deps ApplyDependencies) *ApplyService {
	return &ApplyService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		guard:      deps.Guard,
		dispatcher: deps.Dispatcher,
	}
}

// Apply performs exactly one mutation for the given action kind. Staff-level
// principals only.
func (s *ApplyService) Apply(ctx context.Context, ticketID string, kind domain.ActionKind, value string, principal *auth.Principal) (*ApplyResult, error) {
	if principal == nil || !principal.IsStaffLevel() {
		return nil, apperrors.NewForbidden("applying suggestions requires staff role")
	}
	ticket, err := s.guard.Resolve(ctx, ticketID, principal)
	if err != nil {
		return nil, err
	}

	var result *ApplyResult
	switch kind {
	case domain.ActionChangeStatus:
		result, err = s.applyStatusChange(ctx, ticket, value, principal)
	case domain.ActionChangePriority:
		result, err = s.applyPriorityChange(ctx, ticket, value, principal)
	case domain.ActionAssignUser:
		result, err = s.applyAssignment(ctx, ticket, value, principal)
	case domain.ActionAddComment:
		result, err = s.applyComment(ctx, ticket, value, principal)
	default:
		return nil, apperrors.NewValidationError("unrecognized action kind", map[string]any{"action_kind": kind})
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventSuggestionApplied,
		TenantID: ticket.TenantID,
		TicketID: ticket.ID,
		ActorID:  principal.ID,
		Payload:  events.SuggestionAppliedPayload{ActionKind: kind, Value: value},
	})
	return result, nil
}

func (s *ApplyService) applyStatusChange(ctx context.Context, ticket *domain.Ticket, value string, principal *auth.Principal) (*ApplyResult, error) {
	next := domain.TicketStatus(value)
	if !domain.ValidTicketStatus(next) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": value})
	}
	oldStatus := ticket.Status
	applyStatus(ticket, next)
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordChange(ctx, principal.ID, ticket.ID, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus}, map[string]any{"status": next})
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TenantID: ticket.TenantID,
		TicketID: ticket.ID,
		ActorID:  principal.ID,
		Payload:  events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: next},
	})
	return &ApplyResult{Ticket: ticket}, nil
}

func (s *ApplyService) applyPriorityChange(ctx context.Context, ticket *domain.Ticket, value string, principal *auth.Principal) (*ApplyResult, error) {
	next := domain.TicketPriority(value)
	if !domain.ValidTicketPriority(next) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": value})
	}
	oldPriority := ticket.Priority
	ticket.Priority = next
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordChange(ctx, principal.ID, ticket.ID, domain.ChangeTypePriority,
		map[string]any{"priority": oldPriority}, map[string]any{"priority": next})
	s.publish(ctx, events.Event{
		Type:     events.EventTicketPriorityChanged,
		TenantID: ticket.TenantID,
		TicketID: ticket.ID,
		ActorID:  principal.ID,
		Payload:  events.TicketPriorityChangedPayload{OldPriority: oldPriority, NewPriority: next},
	})
	return &ApplyResult{Ticket: ticket}, nil
}

// applyAssignment sets the assignee. An empty value unassigns; otherwise the
// value must be a valid user id belonging to the ticket's tenant.
func (s *ApplyService) applyAssignment(ctx context.Context, ticket *domain.Ticket, value string, principal *auth.Principal) (*ApplyResult, error) {
	oldAssignee := ticket.AssignedToID
	value = strings.TrimSpace(value)
	if value == "" {
		ticket.AssignedToID = nil
	} else {
		if _, err := uuid.Parse(value); err != nil {
			return nil, apperrors.NewValidationError("malformed user id", map[string]any{"user_id": value})
		}
		assignee, err := s.users.GetByID(ctx, value)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("user", map[string]any{"user_id": value})
			}
			return nil, apperrors.MapError(err)
		}
		if assignee.TenantID != ticket.TenantID {
			return nil, apperrors.NewForbidden("assignee belongs to another organization")
		}
		ticket.AssignedToID = &assignee.ID
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordChange(ctx, principal.ID, ticket.ID, domain.ChangeTypeAssignee,
		map[string]any{"assigned_to_id": oldAssignee}, map[string]any{"assigned_to_id": ticket.AssignedToID})
	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TenantID: ticket.TenantID,
		TicketID: ticket.ID,
		ActorID:  principal.ID,
		Payload:  events.TicketAssignedPayload{AssignedToID: ticket.AssignedToID},
	})
	return &ApplyResult{Ticket: ticket}, nil
}

// applyComment inserts a public comment authored by the principal. This path
// intentionally does not re-run the comment-driven status transitions that a
// direct AddComment call performs.
func (s *ApplyService) applyComment(ctx context.Context, ticket *domain.Ticket, value string, principal *auth.Principal) (*ApplyResult, error) {
	content := strings.TrimSpace(value)
	if content == "" {
		return nil, apperrors.NewValidationError("comment content required", nil)
	}
	comment := &domain.Comment{
		TicketID:   ticket.ID,
		UserID:     principal.ID,
		Content:    content,
		IsInternal: false,
		AuthorName: principal.Name,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TenantID: ticket.TenantID,
		TicketID: ticket.ID,
		ActorID:  principal.ID,
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			IsInternal:  false,
			BodyPreview: preview(comment.Content, 120),
		},
	})
	return &ApplyResult{Comment: comment}, nil
}

func (s *ApplyService) recordChange(ctx context.Context, actorID, ticketID string, changeType domain.TicketChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	_ = s.history.Create(ctx, &domain.TicketHistory{
		TicketID:    ticketID,
		ChangedByID: &actorID,
		ChangeType:  changeType,
		OldValue:    oldValue,
		NewValue:    newValue,
	})
}

func (s *ApplyService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
