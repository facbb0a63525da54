package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cassianoaxe/endurancy-support/internal/domain"
	"github.com/cassianoaxe/endurancy-support/internal/suggest"
	apperrors "github.com/cassianoaxe/endurancy-support/pkg/util"
)

func newSuggestionFixture(ticket *domain.Ticket, comments *mockCommentRepo, users *mockUserRepo) *SuggestionService {
	tickets := &mockTicketRepo{
		GetByIDFn: func(ctx context.Context, id string) (*domain.Ticket, error) {
			copied := *ticket
			return &copied, nil
		},
		SearchRelatedFn: func(ctx context.Context, tenantID, excludeID string, tokens []string, limit int) ([]domain.Ticket, error) {
			return nil, nil
		},
		OpenCountsByAssigneeFn: func(ctx context.Context, tenantID string) (map[string]int, error) {
			return nil, nil
		},
	}
	engine := suggest.NewEngine(
		suggest.NewStatusAdvisor(),
		suggest.NewPriorityAdvisor(),
		suggest.NewAssignmentAdvisor(users, &suggest.LeastOpenTickets{Counter: tickets}),
		suggest.NewResponseAdvisor(),
		suggest.NewRelatedAdvisor(tickets),
		nil,
	)
	return NewSuggestionService(NewAccessGuard(tickets), comments, engine, suggest.NewCache(nil, 0, nil), nil)
}

func TestGetSuggestionsRequiresStaff(t *testing.T) {
	svc := newSuggestionFixture(&domain.Ticket{ID: "t1", TenantID: "org-7"}, &mockCommentRepo{}, &mockUserRepo{})
	_, err := svc.GetSuggestions(context.Background(), "t1", memberPrincipal("u1", "org-7"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestGetSuggestionsEnforcesTenant(t *testing.T) {
	svc := newSuggestionFixture(&domain.Ticket{ID: "t1", TenantID: "org-7"}, &mockCommentRepo{}, &mockUserRepo{})
	_, err := svc.GetSuggestions(context.Background(), "t1", staffPrincipal("s1", "org-9"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestGetSuggestionsHappyPath(t *testing.T) {
	ticket := &domain.Ticket{
		ID:          "t1",
		TenantID:    "org-7",
		Title:       "Sistema urgente parado",
		Description: "Ninguém consegue emitir notas.",
		Status:      domain.TicketStatusNew,
		Priority:    domain.TicketPriorityMedium,
		CreatedByID: "u1",
		CreatedAt:   time.Now().Add(-time.Hour),
	}
	comments := &mockCommentRepo{
		ListByTicketFn: func(ctx context.Context, ticketID string) ([]domain.Comment, error) {
			return nil, nil
		},
	}
	users := &mockUserRepo{
		ListStaffByTenantFn: func(ctx context.Context, tenantID string) ([]domain.User, error) {
			return []domain.User{{ID: "s1", Name: "Ana", TenantID: tenantID, Role: domain.RoleStaff}}, nil
		},
	}

	batch, err := newSuggestionFixture(ticket, comments, users).GetSuggestions(context.Background(), "t1", staffPrincipal("s1", "org-7"))
	require.NoError(t, err)
	require.NotEmpty(t, batch)

	types := make([]domain.SuggestionType, 0, len(batch))
	for _, suggestion := range batch {
		types = append(types, suggestion.Type)
	}
	assert.Contains(t, types, domain.SuggestionTypePriority)
	assert.Contains(t, types, domain.SuggestionTypeAssignment)
	assert.Contains(t, types, domain.SuggestionTypeResponse)
}

func TestGetSuggestionsThreadFailureEmptiesBatch(t *testing.T) {
	ticket := &domain.Ticket{ID: "t1", TenantID: "org-7", Status: domain.TicketStatusNew, CreatedByID: "u1"}
	comments := &mockCommentRepo{
		ListByTicketFn: func(ctx context.Context, ticketID string) ([]domain.Comment, error) {
			return nil, errors.New("connection reset")
		},
	}

	batch, err := newSuggestionFixture(ticket, comments, &mockUserRepo{}).GetSuggestions(context.Background(), "t1", staffPrincipal("s1", "org-7"))
	require.NoError(t, err, "thread load failure degrades to an empty batch, not an error")
	assert.NotNil(t, batch)
	assert.Empty(t, batch)
}
