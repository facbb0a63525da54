package suggest

import (
	"context"
	"fmt"
	"sort"

	"github.com/cassianoaxe/endurancy-support/internal/domain"
)

// CandidateSource yields the staff-level users of a tenant.
type CandidateSource interface {
	ListStaffByTenant(ctx context.Context, tenantID string) ([]domain.User, error)
}

// OpenCounter reports how many unresolved tickets each assignee carries.
type OpenCounter interface {
	OpenCountsByAssignee(ctx context.Context, tenantID string) (map[string]int, error)
}

// Strategy selects one candidate from a non-empty pool. Strategies must be
// deterministic so suggestions are reproducible and testable.
type Strategy interface {
	Pick(ctx context.Context, tenantID string, candidates []domain.User) (*domain.User, error)
}

// LeastOpenTickets picks the candidate with the fewest open assigned
// tickets, breaking ties by user id.
type LeastOpenTickets struct {
	Counter OpenCounter
}

// Pick implements Strategy.
func (s *LeastOpenTickets) Pick(ctx context.Context, tenantID string, candidates []domain.User) (*domain.User, error) {
	counts := map[string]int{}
	if s.Counter != nil {
		loaded, err := s.Counter.OpenCountsByAssignee(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		counts = loaded
	}
	picked := candidates
	sort.SliceStable(picked, func(i, j int) bool {
		ci, cj := counts[picked[i].ID], counts[picked[j].ID]
		if ci != cj {
			return ci < cj
		}
		return picked[i].ID < picked[j].ID
	})
	chosen := picked[0]
	return &chosen, nil
}

// AssignmentAdvisor proposes an assignee for unassigned tickets.
type AssignmentAdvisor struct {
	candidates CandidateSource
	strategy   Strategy
}

// NewAssignmentAdvisor builds the advisor.
func NewAssignmentAdvisor(candidates CandidateSource, strategy Strategy) *AssignmentAdvisor {
	return &AssignmentAdvisor{candidates: candidates, strategy: strategy}
}

// Evaluate fires only when the ticket has no assignee and the tenant has at
// least one staff-level user.
func (a *AssignmentAdvisor) Evaluate(ctx context.Context, ticket *domain.Ticket) (*domain.Suggestion, error) {
	if ticket.AssignedToID != nil {
		return nil, nil
	}
	pool, err := a.candidates.ListStaffByTenant(ctx, ticket.TenantID)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, nil
	}
	chosen, err := a.strategy.Pick(ctx, ticket.TenantID, pool)
	if err != nil {
		return nil, err
	}

	return &domain.Suggestion{
		Type:        domain.SuggestionTypeAssignment,
		Description: fmt.Sprintf("Chamado sem responsável; %s é o atendente com menos chamados abertos.", chosen.Name),
		Confidence:  0.65,
		Actions: []domain.SuggestionAction{
			{Label: fmt.Sprintf("Atribuir a %s", chosen.Name), Value: chosen.ID, Kind: domain.ActionAssignUser},
			{Label: "Manter sem responsável", Value: "", Kind: domain.ActionAssignUser},
		},
	}, nil
}
