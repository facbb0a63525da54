package service

import (
	"context"

	"github.com/cassianoaxe/endurancy-support/internal/domain"
	"github.com/cassianoaxe/endurancy-support/internal/events"
	"github.com/cassianoaxe/endurancy-support/internal/repository"
)

type mockTicketRepo struct {
	CreateFn               func(ctx context.Context, ticket *domain.Ticket) error
	UpdateFn               func(ctx context.Context, ticket *domain.Ticket) error
	GetByIDFn              func(ctx context.Context, id string) (*domain.Ticket, error)
	GetWithMetaFn          func(ctx context.Context, id string) (*domain.TicketWithMeta, error)
	ListWithMetaFn         func(ctx context.Context, filter repository.TicketFilter) ([]domain.TicketWithMeta, error)
	SearchRelatedFn        func(ctx context.Context, tenantID, excludeID string, tokens []string, limit int) ([]domain.Ticket, error)
	OpenCountsByAssigneeFn func(ctx context.Context, tenantID string) (map[string]int, error)
}

func (m *mockTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	return m.CreateFn(ctx, ticket)
}

func (m *mockTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	return m.UpdateFn(ctx, ticket)
}

func (m *mockTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockTicketRepo) GetWithMeta(ctx context.Context, id string) (*domain.TicketWithMeta, error) {
	return m.GetWithMetaFn(ctx, id)
}

func (m *mockTicketRepo) ListWithMeta(ctx context.Context, filter repository.TicketFilter) ([]domain.TicketWithMeta, error) {
	return m.ListWithMetaFn(ctx, filter)
}

func (m *mockTicketRepo) SearchRelated(ctx context.Context, tenantID, excludeID string, tokens []string, limit int) ([]domain.Ticket, error) {
	return m.SearchRelatedFn(ctx, tenantID, excludeID, tokens, limit)
}

func (m *mockTicketRepo) OpenCountsByAssignee(ctx context.Context, tenantID string) (map[string]int, error) {
	return m.OpenCountsByAssigneeFn(ctx, tenantID)
}

type mockCommentRepo struct {
	CreateFn       func(ctx context.Context, comment *domain.Comment) error
	ListByTicketFn func(ctx context.Context, ticketID string) ([]domain.Comment, error)
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	return m.CreateFn(ctx, comment)
}

func (m *mockCommentRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	return m.ListByTicketFn(ctx, ticketID)
}

type mockUserRepo struct {
	CreateFn            func(ctx context.Context, user *domain.User) error
	UpdateFn            func(ctx context.Context, user *domain.User) error
	GetByIDFn           func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFn        func(ctx context.Context, email string) (*domain.User, error)
	ListStaffByTenantFn func(ctx context.Context, tenantID string) ([]domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.CreateFn(ctx, user)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.UpdateFn(ctx, user)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.GetByEmailFn(ctx, email)
}

func (m *mockUserRepo) ListStaffByTenant(ctx context.Context, tenantID string) ([]domain.User, error) {
	return m.ListStaffByTenantFn(ctx, tenantID)
}

type mockHistoryRepo struct {
	entries []domain.TicketHistory
}

func (m *mockHistoryRepo) Create(ctx context.Context, entry *domain.TicketHistory) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockHistoryRepo) ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	return m.entries, nil
}

type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	out := make([]events.EventType, 0, len(d.published))
	for _, event := range d.published {
		out = append(out, event.Type)
	}
	return out
}
