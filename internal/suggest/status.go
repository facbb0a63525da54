package suggest

import (
	"fmt"
	"time"

	"github.com/cassianoaxe/endurancy-support/internal/domain"
)

const defaultStaleAfter = 7 * 24 * time.Hour

// StatusAdvisor recommends the next lifecycle state from the conversation
// shape: who spoke last, and for how long the ticket has been quiet.
type StatusAdvisor struct {
	// StaleAfter is how long without activity before suggesting closure.
	StaleAfter time.Duration
	// Now is overridable for tests.
	Now func() time.Time
}

// NewStatusAdvisor builds the advisor with default thresholds.
func NewStatusAdvisor() *StatusAdvisor {
	return &StatusAdvisor{StaleAfter: defaultStaleAfter, Now: time.Now}
}

// Evaluate applies the rules in order; the first match wins. A nil result
// means no opinion.
func (a *StatusAdvisor) Evaluate(ticket *domain.Ticket, comments []domain.Comment) *domain.Suggestion {
	staleAfter := a.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	if len(comments) > 0 {
		last := comments[len(comments)-1]
		if last.UserID == ticket.CreatedByID && ticket.Status != domain.TicketStatusAwaitingUser {
			return &domain.Suggestion{
				Type:        domain.SuggestionTypeStatus,
				Description: "O solicitante respondeu por último; o chamado aguarda ação da equipe.",
				Confidence:  0.85,
				Actions: []domain.SuggestionAction{
					{Label: "Alterar status para aguardando_resposta", Value: string(domain.TicketStatusAwaitingUser), Kind: domain.ActionChangeStatus},
					{Label: "Marcar como resolvido", Value: string(domain.TicketStatusResolved), Kind: domain.ActionChangeStatus},
				},
			}
		}
		if last.UserID != ticket.CreatedByID && ticket.Status != domain.TicketStatusReplied {
			return &domain.Suggestion{
				Type:        domain.SuggestionTypeStatus,
				Description: "A equipe respondeu por último; marque o chamado como respondido.",
				Confidence:  0.80,
				Actions: []domain.SuggestionAction{
					{Label: "Alterar status para respondido", Value: string(domain.TicketStatusReplied), Kind: domain.ActionChangeStatus},
				},
			}
		}
	}

	lastActivity := ticket.CreatedAt
	if len(comments) > 0 {
		lastActivity = comments[len(comments)-1].CreatedAt
	}
	if idle := now().Sub(lastActivity); idle > staleAfter && ticket.Status != domain.TicketStatusClosed {
		days := int(idle.Hours() / 24)
		return &domain.Suggestion{
			Type:        domain.SuggestionTypeStatus,
			Description: fmt.Sprintf("Sem atividade há %d dias; considere fechar o chamado.", days),
			Confidence:  0.70,
			Actions: []domain.SuggestionAction{
				{Label: "Fechar chamado", Value: string(domain.TicketStatusClosed), Kind: domain.ActionChangeStatus},
				{Label: "Reabrir chamado", Value: string(domain.TicketStatusReopened), Kind: domain.ActionChangeStatus},
			},
		}
	}
	return nil
}
