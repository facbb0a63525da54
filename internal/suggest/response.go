package suggest

import (
	"strings"

	"github.com/cassianoaxe/endurancy-support/internal/domain"
)

const (
	templateAcknowledge = "Olá! Recebemos sua solicitação e nossa equipe já está analisando o chamado. " +
		"Retornaremos assim que tivermos uma atualização."
	templateMoreInfo = "Para darmos continuidade ao atendimento, precisamos de mais informações. " +
		"Poderia detalhar o problema, incluindo mensagens de erro e os passos para reproduzi-lo?"
	templateAccessHelp = "Identificamos que o chamado está relacionado a acesso. " +
		"Por favor, tente redefinir sua senha pela opção \"Esqueci minha senha\" na tela de login. " +
		"Se o problema persistir, confirme o e-mail utilizado para entrarmos em contato."
	templateClosing = "O chamado foi marcado como resolvido. Caso a solução tenha atendido sua necessidade, " +
		"nenhuma ação é necessária; se precisar de algo mais, basta responder por aqui."
)

const accessCategory = "acesso"

// ResponseAdvisor offers canned reply templates gated by the ticket's state
// and content.
type ResponseAdvisor struct{}

// NewResponseAdvisor builds the advisor.
func NewResponseAdvisor() *ResponseAdvisor {
	return &ResponseAdvisor{}
}

// Evaluate returns nil when no template condition applies; otherwise one
// action per applicable template plus a combined preview.
func (a *ResponseAdvisor) Evaluate(ticket *domain.Ticket, comments []domain.Comment) *domain.Suggestion {
	type template struct {
		label string
		body  string
	}
	var applicable []template

	onlyCreatorSpoke := len(comments) == 0 ||
		(len(comments) == 1 && comments[0].UserID == ticket.CreatedByID)
	if onlyCreatorSpoke {
		applicable = append(applicable, template{"Enviar confirmação de recebimento", templateAcknowledge})
	}
	if ticket.Status == domain.TicketStatusAwaitingInfo {
		applicable = append(applicable, template{"Solicitar mais informações", templateMoreInfo})
	}
	description := strings.ToLower(ticket.Description)
	if strings.EqualFold(ticket.Category, accessCategory) ||
		strings.Contains(description, "senha") || strings.Contains(description, "login") {
		applicable = append(applicable, template{"Enviar orientações de acesso", templateAccessHelp})
	}
	if ticket.Status == domain.TicketStatusResolved {
		applicable = append(applicable, template{"Enviar mensagem de encerramento", templateClosing})
	}

	if len(applicable) == 0 {
		return nil
	}

	actions := make([]domain.SuggestionAction, 0, len(applicable))
	bodies := make([]string, 0, len(applicable))
	for _, tpl := range applicable {
		actions = append(actions, domain.SuggestionAction{
			Label: tpl.label,
			Value: tpl.body,
			Kind:  domain.ActionAddComment,
		})
		bodies = append(bodies, tpl.body)
	}

	return &domain.Suggestion{
		Type:             domain.SuggestionTypeResponse,
		Description:      "Modelos de resposta aplicáveis ao chamado.",
		Confidence:       0.75,
		Actions:          actions,
		ResponseTemplate: strings.Join(bodies, "\n\n---\n\n"),
	}
}
