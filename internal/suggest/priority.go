package suggest

import (
	"fmt"
	"strings"

	"github.com/cassianoaxe/endurancy-support/internal/domain"
)

// Keyword lists are matched as substrings against the lowercased ticket
// text. Kept disjoint so one occurrence counts exactly once.
var (
	highPriorityKeywords = []string{
		"urgente", "crítico", "critico", "parado", "travado",
		"não consigo", "nao consigo", "inacessível", "inacessivel", "bloqueado",
	}
	mediumPriorityKeywords = []string{
		"problema", "erro", "falha", "lento", "demora", "instável", "instavel",
	}
	lowPriorityKeywords = []string{
		"dúvida", "duvida", "sugestão", "sugestao", "melhoria",
		"quando possível", "quando possivel",
	}
)

const priorityConfidenceCap = 0.95

type priorityTier struct {
	priority  domain.TicketPriority
	keywords  []string
	base      float64
	increment float64
}

// Tiers are ordered alta > media > baixa; on tied counts the earlier tier wins.
var priorityTiers = []priorityTier{
	{domain.TicketPriorityHigh, highPriorityKeywords, 0.5, 0.1},
	{domain.TicketPriorityMedium, mediumPriorityKeywords, 0.4, 0.08},
	{domain.TicketPriorityLow, lowPriorityKeywords, 0.3, 0.06},
}

// PriorityAdvisor scores the ticket text against fixed keyword lists and
// recommends the tier with the most matches.
type PriorityAdvisor struct{}

// NewPriorityAdvisor builds the advisor.
func NewPriorityAdvisor() *PriorityAdvisor {
	return &PriorityAdvisor{}
}

// Evaluate returns nil when no keyword matched or when the winning tier is
// already the ticket's priority.
func (a *PriorityAdvisor) Evaluate(ticket *domain.Ticket, comments []domain.Comment) *domain.Suggestion {
	var sb strings.Builder
	sb.WriteString(ticket.Title)
	sb.WriteString(" ")
	sb.WriteString(ticket.Description)
	for _, comment := range comments {
		sb.WriteString(" ")
		sb.WriteString(comment.Content)
	}
	blob := strings.ToLower(sb.String())

	winner := priorityTier{}
	winnerCount := 0
	for _, tier := range priorityTiers {
		count := 0
		for _, keyword := range tier.keywords {
			count += strings.Count(blob, keyword)
		}
		if count > winnerCount {
			winner = tier
			winnerCount = count
		}
	}
	if winnerCount == 0 || winner.priority == ticket.Priority {
		return nil
	}

	confidence := winner.base + float64(winnerCount)*winner.increment
	if confidence > priorityConfidenceCap {
		confidence = priorityConfidenceCap
	}

	actions := []domain.SuggestionAction{
		{
			Label: fmt.Sprintf("Alterar prioridade para %s", winner.priority),
			Value: string(winner.priority),
			Kind:  domain.ActionChangePriority,
		},
	}
	for _, tier := range priorityTiers {
		if tier.priority == winner.priority {
			continue
		}
		actions = append(actions, domain.SuggestionAction{
			Label: fmt.Sprintf("Alterar prioridade para %s", tier.priority),
			Value: string(tier.priority),
			Kind:  domain.ActionChangePriority,
		})
	}

	return &domain.Suggestion{
		Type: domain.SuggestionTypePriority,
		Description: fmt.Sprintf("O texto do chamado contém %d termo(s) associado(s) à prioridade %s.",
			winnerCount, winner.priority),
		Confidence: confidence,
		Actions:    actions,
	}
}
