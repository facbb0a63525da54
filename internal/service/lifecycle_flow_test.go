package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cassianoaxe/endurancy-support/internal/domain"
	"github.com/cassianoaxe/endurancy-support/internal/suggest"
)

// TestSupportFlow walks a ticket through its full life: a member opens it,
// staff picks it up, the conversation bounces status around, an advisor
// recommends the next state and the staff applies it.
func TestSupportFlow(t *testing.T) {
	ctx := context.Background()
	member := memberPrincipal("u1", "org-7")
	staff := staffPrincipal("s1", "org-7")

	f := newTicketFixture(nil)

	ticket, err := f.service.Create(ctx, TicketCreateInput{
		Title:       "Não consigo emitir nota fiscal",
		Description: "O sistema retorna erro 500 ao emitir.",
		Category:    "faturamento",
	}, member)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)

	inAnalysis := domain.TicketStatusInAnalysis
	_, err = f.service.Update(ctx, ticket.ID, TicketUpdateInput{Status: &inAnalysis}, staff)
	require.NoError(t, err)

	// creator replies while the team is analysing, ball goes back to the team's court
	_, err = f.service.AddComment(ctx, ticket.ID, "Acontece também no app.", false, member)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusAwaitingUser, f.stored.Status)

	// staff asks for suggestions before replying
	engine := suggest.NewEngine(
		suggest.NewStatusAdvisor(),
		suggest.NewPriorityAdvisor(),
		suggest.NewAssignmentAdvisor(&flowStaffSource{}, &suggest.LeastOpenTickets{}),
		suggest.NewResponseAdvisor(),
		suggest.NewRelatedAdvisor(f.tickets),
		nil,
	)
	f.tickets.SearchRelatedFn = func(ctx context.Context, tenantID, excludeID string, tokens []string, limit int) ([]domain.Ticket, error) {
		return nil, nil
	}
	suggestionSvc := NewSuggestionService(NewAccessGuard(f.tickets), f.comments, engine, suggest.NewCache(nil, 0, nil), nil)
	f.comments.ListByTicketFn = func(ctx context.Context, ticketID string) ([]domain.Comment, error) {
		return []domain.Comment{{UserID: "u1", Content: "Acontece também no app.", CreatedAt: time.Now()}}, nil
	}

	batch, err := suggestionSvc.GetSuggestions(ctx, ticket.ID, staff)
	require.NoError(t, err)
	require.NotEmpty(t, batch)
	// "não consigo" in the title pushes an alta recommendation
	assert.Equal(t, domain.SuggestionTypePriority, batch[0].Type)
	assert.Equal(t, string(domain.TicketPriorityHigh), batch[0].Actions[0].Value)

	// staff replies directly, which resolves the waiting ticket
	_, err = f.service.AddComment(ctx, ticket.ID, "Corrigido na versão 2.4.1.", false, staff)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, f.stored.Status)
	require.NotNil(t, f.stored.ResolvedAt)

	// member confirms; the ticket stays resolved and the resolution
	// timestamp does not move
	firstResolved := *f.stored.ResolvedAt
	_, err = f.service.AddComment(ctx, ticket.ID, "Funcionou, obrigado!", false, member)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, f.stored.Status)
	assert.Equal(t, firstResolved, *f.stored.ResolvedAt)
}

// TestSuggestionAppliedFlow covers the path where staff replied last, the
// status advisor recommends respondido at 0.80 and staff applies it.
func TestSuggestionAppliedFlow(t *testing.T) {
	ctx := context.Background()
	member := memberPrincipal("u1", "org-7")
	staff := staffPrincipal("s1", "org-7")

	f := newTicketFixture(nil)
	ticket, err := f.service.Create(ctx, TicketCreateInput{
		Title:       "Dashboard lento",
		Description: "Os gráficos demoram para carregar.",
	}, member)
	require.NoError(t, err)

	_, err = f.service.AddComment(ctx, ticket.ID, "Estamos verificando o ambiente.", false, staff)
	require.NoError(t, err)
	// a staff comment on a novo ticket does not transition anything
	assert.Equal(t, domain.TicketStatusNew, f.stored.Status)

	engine := suggest.NewEngine(
		suggest.NewStatusAdvisor(),
		suggest.NewPriorityAdvisor(),
		suggest.NewAssignmentAdvisor(&flowStaffSource{}, &suggest.LeastOpenTickets{}),
		suggest.NewResponseAdvisor(),
		suggest.NewRelatedAdvisor(f.tickets),
		nil,
	)
	f.tickets.SearchRelatedFn = func(ctx context.Context, tenantID, excludeID string, tokens []string, limit int) ([]domain.Ticket, error) {
		return nil, nil
	}
	f.comments.ListByTicketFn = func(ctx context.Context, ticketID string) ([]domain.Comment, error) {
		return []domain.Comment{{UserID: "s1", Content: "Estamos verificando o ambiente.", CreatedAt: time.Now()}}, nil
	}
	suggestionSvc := NewSuggestionService(NewAccessGuard(f.tickets), f.comments, engine, suggest.NewCache(nil, 0, nil), nil)

	batch, err := suggestionSvc.GetSuggestions(ctx, ticket.ID, staff)
	require.NoError(t, err)
	require.NotEmpty(t, batch)
	require.Equal(t, domain.SuggestionTypeStatus, batch[0].Type)
	assert.InDelta(t, 0.80, batch[0].Confidence, 1e-9)
	require.Len(t, batch[0].Actions, 1)
	assert.Equal(t, string(domain.TicketStatusReplied), batch[0].Actions[0].Value)

	applySvc := NewApplyService(ApplyDependencies{
		TicketRepo:  f.tickets,
		CommentRepo: f.comments,
		HistoryRepo: f.history,
		Guard:       NewAccessGuard(f.tickets),
		Dispatcher:  f.dispatcher,
	})
	result, err := applySvc.Apply(ctx, ticket.ID, batch[0].Actions[0].Kind, batch[0].Actions[0].Value, staff)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusReplied, result.Ticket.Status)
	assert.Equal(t, domain.TicketStatusReplied, f.stored.Status)
}

type flowStaffSource struct{}

func (s *flowStaffSource) ListStaffByTenant(ctx context.Context, tenantID string) ([]domain.User, error) {
	return nil, nil
}
