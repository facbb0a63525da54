package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/cassianoaxe/endurancy-support/internal/auth"
	"github.com/cassianoaxe/endurancy-support/internal/domain"
	"github.com/cassianoaxe/endurancy-support/internal/repository"
	"github.com/cassianoaxe/endurancy-support/internal/suggest"
	apperrors "github.com/cassianoaxe/endurancy-support/pkg/util"
)

// SuggestionService fronts the advisor engine: access control, the ticket
// thread load, and the batch cache. Advisors themselves stay pure.
type SuggestionService struct {
	guard    *AccessGuard
	comments repository.CommentRepository
	engine   *suggest.Engine
	cache    *suggest.Cache
	logger   *zap.Logger
}

// NewSuggestionService constructs the service.
func NewSuggestionService(guard *AccessGuard, comments repository.CommentRepository, engine *suggest.Engine, cache *suggest.Cache, logger *zap.Logger) *SuggestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionService{
		guard:    guard,
		comments: comments,
		engine:   engine,
		cache:    cache,
		logger:   logger,
	}
}

// GetSuggestions returns the ordered advisor batch for a ticket,
// staff-level only. Data-access failures while gathering the thread empty
// the batch instead of erroring; only guard failures surface to the caller.
func (s *SuggestionService) GetSuggestions(ctx context.Context, ticketID string, principal *auth.Principal) ([]domain.Suggestion, error) {
	if principal == nil || !principal.IsStaffLevel() {
		return nil, apperrors.NewForbidden("suggestions require staff role")
	}
	ticket, err := s.guard.Resolve(ctx, ticketID, principal)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		s.logger.Error("failed to load ticket thread; dropping suggestion batch",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return []domain.Suggestion{}, nil
	}

	if cached, ok := s.cache.Get(ctx, ticket, comments); ok {
		return cached, nil
	}

	batch := s.engine.Suggest(ctx, ticket, comments)
	if len(batch) > 0 {
		s.cache.Set(ctx, ticket, comments, batch)
	}
	return batch, nil
}
