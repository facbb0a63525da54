package suggest

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cassianoaxe/endurancy-support/internal/domain"
)

const (
	relatedLimit         = 5
	relatedConfidenceCap = 0.95
	minTokenLength       = 4
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// RelatedSearcher performs the tenant-scoped token search. Implementations
// must bind every token as a query parameter.
type RelatedSearcher interface {
	SearchRelated(ctx context.Context, tenantID, excludeID string, tokens []string, limit int) ([]domain.Ticket, error)
}

// RelatedAdvisor surfaces same-tenant tickets sharing vocabulary with the
// current one.
type RelatedAdvisor struct {
	searcher RelatedSearcher
}

// NewRelatedAdvisor builds the advisor.
func NewRelatedAdvisor(searcher RelatedSearcher) *RelatedAdvisor {
	return &RelatedAdvisor{searcher: searcher}
}

// Evaluate tokenizes title and description and searches the ticket's own
// tenant, excluding the ticket itself. Nil when there is nothing to match.
func (a *RelatedAdvisor) Evaluate(ctx context.Context, ticket *domain.Ticket) (*domain.Suggestion, error) {
	tokens := tokenize(ticket.Title + " " + ticket.Description)
	if len(tokens) == 0 {
		return nil, nil
	}
	matches, err := a.searcher.SearchRelated(ctx, ticket.TenantID, ticket.ID, tokens, relatedLimit)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	confidence := 0.6 + 0.05*float64(len(matches))
	if confidence > relatedConfidenceCap {
		confidence = relatedConfidenceCap
	}

	ids := make([]string, 0, len(matches))
	actions := make([]domain.SuggestionAction, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, match.ID)
		actions = append(actions, domain.SuggestionAction{
			Label: match.Title,
			Value: match.ID,
			Kind:  domain.ActionViewTicket,
		})
	}

	return &domain.Suggestion{
		Type:           domain.SuggestionTypeRelated,
		Description:    fmt.Sprintf("%d chamado(s) da mesma organização com termos em comum.", len(matches)),
		Confidence:     confidence,
		Actions:        actions,
		RelatedTickets: ids,
	}, nil
}

// tokenize extracts distinct lowercase alphanumeric words longer than three
// characters, preserving first-seen order.
func tokenize(text string) []string {
	words := tokenPattern.FindAllString(strings.ToLower(text), -1)
	seen := make(map[string]struct{}, len(words))
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if utf8.RuneCountInString(word) < minTokenLength {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		tokens = append(tokens, word)
	}
	return tokens
}
