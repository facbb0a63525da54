package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cassianoaxe/endurancy-support/internal/domain"
)

type stubCandidates struct {
	users []domain.User
	err   error
}

func (s *stubCandidates) ListStaffByTenant(ctx context.Context, tenantID string) ([]domain.User, error) {
	return s.users, s.err
}

type stubCounter struct {
	counts map[string]int
	err    error
}

func (s *stubCounter) OpenCountsByAssignee(ctx context.Context, tenantID string) (map[string]int, error) {
	return s.counts, s.err
}

func TestLeastOpenTicketsPick(t *testing.T) {
	pool := []domain.User{
		{ID: "a", Name: "Ana"},
		{ID: "b", Name: "Bruno"},
		{ID: "c", Name: "Carla"},
	}

	t.Run("fewest open tickets wins", func(t *testing.T) {
		strategy := &LeastOpenTickets{Counter: &stubCounter{counts: map[string]int{"a": 4, "b": 1, "c": 2}}}
		chosen, err := strategy.Pick(context.Background(), "org-7", pool)
		require.NoError(t, err)
		assert.Equal(t, "b", chosen.ID)
	})

	t.Run("ties break by id", func(t *testing.T) {
		strategy := &LeastOpenTickets{Counter: &stubCounter{counts: map[string]int{"a": 1, "b": 1, "c": 5}}}
		chosen, err := strategy.Pick(context.Background(), "org-7", pool)
		require.NoError(t, err)
		assert.Equal(t, "a", chosen.ID)
	})

	t.Run("nil counter still deterministic", func(t *testing.T) {
		strategy := &LeastOpenTickets{}
		chosen, err := strategy.Pick(context.Background(), "org-7", pool)
		require.NoError(t, err)
		assert.Equal(t, "a", chosen.ID)
	})

	t.Run("counter failure propagates", func(t *testing.T) {
		strategy := &LeastOpenTickets{Counter: &stubCounter{err: errors.New("boom")}}
		_, err := strategy.Pick(context.Background(), "org-7", pool)
		assert.Error(t, err)
	})
}

func TestAssignmentAdvisor(t *testing.T) {
	pool := []domain.User{{ID: "a", Name: "Ana"}, {ID: "b", Name: "Bruno"}}

	t.Run("suggests least loaded staff", func(t *testing.T) {
		advisor := NewAssignmentAdvisor(
			&stubCandidates{users: pool},
			&LeastOpenTickets{Counter: &stubCounter{counts: map[string]int{"a": 3}}},
		)
		suggestion, err := advisor.Evaluate(context.Background(), &domain.Ticket{ID: "t1", TenantID: "org-7"})
		require.NoError(t, err)
		require.NotNil(t, suggestion)
		assert.Equal(t, domain.SuggestionTypeAssignment, suggestion.Type)
		assert.InDelta(t, 0.65, suggestion.Confidence, 1e-9)
		require.Len(t, suggestion.Actions, 2)
		assert.Equal(t, "b", suggestion.Actions[0].Value)
		assert.Equal(t, domain.ActionAssignUser, suggestion.Actions[0].Kind)
		assert.Equal(t, "", suggestion.Actions[1].Value, "second action keeps the ticket unassigned")
	})

	t.Run("silent when already assigned", func(t *testing.T) {
		assignee := "a"
		advisor := NewAssignmentAdvisor(&stubCandidates{users: pool}, &LeastOpenTickets{})
		suggestion, err := advisor.Evaluate(context.Background(), &domain.Ticket{ID: "t1", AssignedToID: &assignee})
		require.NoError(t, err)
		assert.Nil(t, suggestion)
	})

	t.Run("silent when tenant has no staff", func(t *testing.T) {
		advisor := NewAssignmentAdvisor(&stubCandidates{}, &LeastOpenTickets{})
		suggestion, err := advisor.Evaluate(context.Background(), &domain.Ticket{ID: "t1"})
		require.NoError(t, err)
		assert.Nil(t, suggestion)
	})

	t.Run("candidate lookup failure propagates", func(t *testing.T) {
		advisor := NewAssignmentAdvisor(&stubCandidates{err: errors.New("db down")}, &LeastOpenTickets{})
		_, err := advisor.Evaluate(context.Background(), &domain.Ticket{ID: "t1"})
		assert.Error(t, err)
	})
}
