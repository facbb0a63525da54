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

const maxPageSize = 100

// TicketService owns the ticket lifecycle: CRUD, the status state machine
// and the transitions triggered implicitly by new comments.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	history    repository.TicketHistoryRepository
	guard      *AccessGuard
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	HistoryRepo repository.TicketHistoryRepository
	Guard       *AccessGuard
	Dispatcher  events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	TenantID    string
	Title       string
	Description string
	Category    string
	Priority    domain.TicketPriority
}

// TicketUpdateInput carries the independent optional fields of an update.
// AssigneeSet distinguishes "field absent" from an explicit null, which
// unassigns the ticket.
type TicketUpdateInput struct {
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	AssigneeSet bool
	AssigneeID  *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		history:    deps.HistoryRepo,
		guard:      deps.Guard,
		dispatcher: deps.Dispatcher,
	}
}

// Create opens a ticket in status novo for the principal's tenant.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput, principal *auth.Principal) (*domain.Ticket, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("principal required")
	}
	tenantID := input.TenantID
	if tenantID == "" {
		tenantID = principal.TenantID
	}
	if tenantID != principal.TenantID && !principal.IsAdmin() {
		return nil, apperrors.NewForbidden("cannot create tickets for another organization")
	}
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidTicketPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	ticket := &domain.Ticket{
		TenantID:    tenantID,
		Title:       title,
		Description: description,
		Category:    strings.TrimSpace(input.Category),
		Priority:    priority,
		Status:      domain.TicketStatusNew,
		CreatedByID: principal.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TenantID: ticket.TenantID,
		TicketID: ticket.ID,
		ActorID:  principal.ID,
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Category: ticket.Category,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// List returns a page of tickets scoped to the principal's tenant, newest
// first, annotated with creator name, assignee name and comment count.
// Admins see every tenant.
func (s *TicketService) List(ctx context.Context, principal *auth.Principal, page, limit int) ([]domain.TicketWithMeta, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("principal required")
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	filter := repository.TicketFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if !principal.IsAdmin() {
		tenantID := principal.TenantID
		filter.TenantID = &tenantID
	}
	result, err := s.tickets.ListWithMeta(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// Get fetches a single ticket with joined names, via the access guard.
func (s *TicketService) Get(ctx context.Context, ticketID string, principal *auth.Principal) (*domain.TicketWithMeta, error) {
	if _, err := s.guard.Resolve(ctx, ticketID, principal); err != nil {
		return nil, err
	}
	meta, err := s.tickets.GetWithMeta(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return meta, nil
}

// Update applies the independent optional fields of the patch. Entering
// resolvido or fechado stamps ResolvedAt or ClosedAt on first entry only;
// neither timestamp is ever cleared by later updates.
func (s *TicketService) Update(ctx context.Context, ticketID string, input TicketUpdateInput, principal *auth.Principal) (*domain.Ticket, error) {
	ticket, err := s.guard.Resolve(ctx, ticketID, principal)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	oldPriority := ticket.Priority
	oldAssignee := ticket.AssignedToID

	if input.Status != nil {
		if !domain.ValidTicketStatus(*input.Status) {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
		}
		applyStatus(ticket, *input.Status)
	}
	if input.Priority != nil {
		if !domain.ValidTicketPriority(*input.Priority) {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": *input.Priority})
		}
		ticket.Priority = *input.Priority
	}
	if input.AssigneeSet {
		ticket.AssignedToID = input.AssigneeID
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if input.Status != nil && oldStatus != ticket.Status {
		s.recordStatusChange(ctx, principal.ID, ticket.ID, oldStatus, ticket.Status)
		s.publish(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TenantID: ticket.TenantID,
			TicketID: ticket.ID,
			ActorID:  principal.ID,
			Payload:  events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: ticket.Status},
		})
	}
	if input.Priority != nil && oldPriority != ticket.Priority {
		s.recordPriorityChange(ctx, principal.ID, ticket.ID, oldPriority, ticket.Priority)
		s.publish(ctx, events.Event{
			Type:     events.EventTicketPriorityChanged,
			TenantID: ticket.TenantID,
			TicketID: ticket.ID,
			ActorID:  principal.ID,
			Payload:  events.TicketPriorityChangedPayload{OldPriority: oldPriority, NewPriority: ticket.Priority},
		})
	}
	if input.AssigneeSet && !equalAssignee(oldAssignee, ticket.AssignedToID) {
		s.recordAssigneeChange(ctx, principal.ID, ticket.ID, oldAssignee, ticket.AssignedToID)
		s.publish(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TenantID: ticket.TenantID,
			TicketID: ticket.ID,
			ActorID:  principal.ID,
			Payload:  events.TicketAssignedPayload{AssignedToID: ticket.AssignedToID},
		})
	}
	return ticket, nil
}

// ListComments returns the ticket thread oldest first. Internal comments are
// stripped for readers without staff privileges.
func (s *TicketService) ListComments(ctx context.Context, ticketID string, principal *auth.Principal) ([]domain.Comment, error) {
	if _, err := s.guard.Resolve(ctx, ticketID, principal); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if principal.IsStaffLevel() {
		return comments, nil
	}
	filtered := make([]domain.Comment, 0, len(comments))
	for _, comment := range comments {
		if comment.IsInternal {
			continue
		}
		filtered = append(filtered, comment)
	}
	return filtered, nil
}

// AddComment appends a comment and, for public comments, applies at most one
// comment-triggered status transition (first match wins):
//  1. aguardando_resposta + commenter is not the creator -> resolvido
//  2. em_analise or em_desenvolvimento + commenter is the creator -> aguardando_resposta
//
// Internal comments never trigger transitions.
func (s *TicketService) AddComment(ctx context.Context, ticketID, content string, isInternal bool, principal *auth.Principal) (*domain.Comment, error) {
	ticket, err := s.guard.Resolve(ctx, ticketID, principal)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	if isInternal && !principal.IsStaffLevel() {
		return nil, apperrors.NewForbidden("internal comments require staff role")
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		UserID:     principal.ID,
		Content:    content,
		IsInternal: isInternal,
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
			IsInternal:  comment.IsInternal,
			BodyPreview: preview(comment.Content, 120),
		},
	})

	if !isInternal {
		if next, ok := commentTransition(ticket, principal.ID); ok {
			oldStatus := ticket.Status
			applyStatus(ticket, next)
			if err := s.tickets.Update(ctx, ticket); err != nil {
				return nil, apperrors.MapError(err)
			}
			s.recordStatusChange(ctx, principal.ID, ticket.ID, oldStatus, ticket.Status)
			s.publish(ctx, events.Event{
				Type:     events.EventTicketStatusChanged,
				TenantID: ticket.TenantID,
				TicketID: ticket.ID,
				ActorID:  principal.ID,
				Payload:  events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: ticket.Status},
			})
		}
	}
	return comment, nil
}

// ListHistory returns the audit trail, staff-level only.
func (s *TicketService) ListHistory(ctx context.Context, ticketID string, principal *auth.Principal, limit, offset int) ([]domain.TicketHistory, error) {
	if principal == nil || !principal.IsStaffLevel() {
		return nil, apperrors.NewForbidden("staff role required")
	}
	if _, err := s.guard.Resolve(ctx, ticketID, principal); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// commentTransition evaluates the comment-driven rules against the ticket's
// current status and the commenter. At most one rule fires.
func commentTransition(ticket *domain.Ticket, commenterID string) (domain.TicketStatus, bool) {
	switch {
	case ticket.Status == domain.TicketStatusAwaitingUser && commenterID != ticket.CreatedByID:
		return domain.TicketStatusResolved, true
	case (ticket.Status == domain.TicketStatusInAnalysis || ticket.Status == domain.TicketStatusInDev) && commenterID == ticket.CreatedByID:
		return domain.TicketStatusAwaitingUser, true
	}
	return "", false
}

// applyStatus sets the status and stamps ResolvedAt/ClosedAt on first entry
// into resolvido/fechado. The timestamps are never cleared afterwards.
func applyStatus(ticket *domain.Ticket, next domain.TicketStatus) {
	ticket.Status = next
	now := time.Now()
	if next == domain.TicketStatusResolved && ticket.ResolvedAt == nil {
		ticket.ResolvedAt = &now
	}
	if next == domain.TicketStatusClosed && ticket.ClosedAt == nil {
		ticket.ClosedAt = &now
	}
}

func equalAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
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

func (s *TicketService) recordStatusChange(ctx context.Context, actorID, ticketID string, oldStatus, newStatus domain.TicketStatus) {
	if s.history == nil {
		return
	}
	_ = s.history.Create(ctx, &domain.TicketHistory{
		TicketID:    ticketID,
		ChangedByID: &actorID,
		ChangeType:  domain.ChangeTypeStatus,
		OldValue:    map[string]any{"status": oldStatus},
		NewValue:    map[string]any{"status": newStatus},
	})
}

func (s *TicketService) recordPriorityChange(ctx context.Context, actorID, ticketID string, oldPriority, newPriority domain.TicketPriority) {
	if s.history == nil {
		return
	}
	_ = s.history.Create(ctx, &domain.TicketHistory{
		TicketID:    ticketID,
		ChangedByID: &actorID,
		ChangeType:  domain.ChangeTypePriority,
		OldValue:    map[string]any{"priority": oldPriority},
		NewValue:    map[string]any{"priority": newPriority},
	})
}

func (s *TicketService) recordAssigneeChange(ctx context.Context, actorID, ticketID string, oldAssignee, newAssignee *string) {
	if s.history == nil {
		return
	}
	_ = s.history.Create(ctx, &domain.TicketHistory{
		TicketID:    ticketID,
		ChangedByID: &actorID,
		ChangeType:  domain.ChangeTypeAssignee,
		OldValue:    map[string]any{"assigned_to_id": oldAssignee},
		NewValue:    map[string]any{"assigned_to_id": newAssignee},
	})
}
