package suggest

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cassianoaxe/endurancy-support/internal/domain"
)

// Engine runs the five advisors over one ticket. Advisors are pure and
// read-only, so they run in parallel; the returned order is fixed: status,
// priority, assignment, response, relatedTickets.
type Engine struct {
	status     *StatusAdvisor
	priority   *PriorityAdvisor
	assignment *AssignmentAdvisor
	response   *ResponseAdvisor
	related    *RelatedAdvisor
	logger     *zap.Logger
}

// NewEngine wires the advisors together.
func NewEngine(status *StatusAdvisor, priority *PriorityAdvisor, assignment *AssignmentAdvisor, response *ResponseAdvisor, related *RelatedAdvisor, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		status:     status,
		priority:   priority,
		assignment: assignment,
		response:   response,
		related:    related,
		logger:     logger,
	}
}

// Suggest evaluates every advisor and collects their opinions. When any
// advisor fails on data access the whole batch comes back empty rather than
// partial: a half-populated suggestion list reads as "the other advisors had
// no opinion", which is wrong.
func (e *Engine) Suggest(ctx context.Context, ticket *domain.Ticket, comments []domain.Comment) []domain.Suggestion {
	slots := make([]*domain.Suggestion, 5)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slots[0] = e.status.Evaluate(ticket, comments)
		return nil
	})
	g.Go(func() error {
		slots[1] = e.priority.Evaluate(ticket, comments)
		return nil
	})
	g.Go(func() error {
		suggestion, err := e.assignment.Evaluate(gctx, ticket)
		slots[2] = suggestion
		return err
	})
	g.Go(func() error {
		slots[3] = e.response.Evaluate(ticket, comments)
		return nil
	})
	g.Go(func() error {
		suggestion, err := e.related.Evaluate(gctx, ticket)
		slots[4] = suggestion
		return err
	})

	if err := g.Wait(); err != nil {
		e.logger.Error("advisor evaluation failed; dropping suggestion batch",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return []domain.Suggestion{}
	}

	result := make([]domain.Suggestion, 0, len(slots))
	for _, suggestion := range slots {
		if suggestion != nil {
			result = append(result, *suggestion)
		}
	}
	return result
}
