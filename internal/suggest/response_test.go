package suggest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cassianoaxe/endurancy-support/internal/domain"
)

func TestResponseAdvisorAcknowledge(t *testing.T) {
	advisor := NewResponseAdvisor()
	ticket := &domain.Ticket{Status: domain.TicketStatusNew, CreatedByID: "u1", Description: "relatório quebrado"}

	t.Run("no comments yet", func(t *testing.T) {
		suggestion := advisor.Evaluate(ticket, nil)
		require.NotNil(t, suggestion)
		require.Len(t, suggestion.Actions, 1)
		assert.Equal(t, templateAcknowledge, suggestion.Actions[0].Value)
		assert.Equal(t, domain.ActionAddComment, suggestion.Actions[0].Kind)
	})

	t.Run("single creator comment still counts", func(t *testing.T) {
		suggestion := advisor.Evaluate(ticket, []domain.Comment{{UserID: "u1"}})
		require.NotNil(t, suggestion)
		assert.Equal(t, templateAcknowledge, suggestion.Actions[0].Value)
	})

	t.Run("staff already replied", func(t *testing.T) {
		suggestion := advisor.Evaluate(ticket, []domain.Comment{{UserID: "u1"}, {UserID: "s1"}})
		assert.Nil(t, suggestion)
	})
}

func TestResponseAdvisorMoreInfo(t *testing.T) {
	advisor := NewResponseAdvisor()
	ticket := &domain.Ticket{Status: domain.TicketStatusAwaitingInfo, CreatedByID: "u1", Description: "tela branca"}
	comments := []domain.Comment{{UserID: "u1"}, {UserID: "s1"}}

	suggestion := advisor.Evaluate(ticket, comments)
	require.NotNil(t, suggestion)
	require.Len(t, suggestion.Actions, 1)
	assert.Equal(t, templateMoreInfo, suggestion.Actions[0].Value)
}

func TestResponseAdvisorAccessHelp(t *testing.T) {
	advisor := NewResponseAdvisor()
	comments := []domain.Comment{{UserID: "u1"}, {UserID: "s1"}}

	t.Run("category acesso", func(t *testing.T) {
		ticket := &domain.Ticket{Status: domain.TicketStatusInAnalysis, Category: "Acesso", CreatedByID: "u1"}
		suggestion := advisor.Evaluate(ticket, comments)
		require.NotNil(t, suggestion)
		assert.Equal(t, templateAccessHelp, suggestion.Actions[0].Value)
	})

	t.Run("description mentions senha", func(t *testing.T) {
		ticket := &domain.Ticket{Status: domain.TicketStatusInAnalysis, Description: "Esqueci minha SENHA", CreatedByID: "u1"}
		suggestion := advisor.Evaluate(ticket, comments)
		require.NotNil(t, suggestion)
		assert.Equal(t, templateAccessHelp, suggestion.Actions[0].Value)
	})
}

func TestResponseAdvisorClosing(t *testing.T) {
	advisor := NewResponseAdvisor()
	ticket := &domain.Ticket{Status: domain.TicketStatusResolved, CreatedByID: "u1", Description: "corrigido"}
	comments := []domain.Comment{{UserID: "u1"}, {UserID: "s1"}}

	suggestion := advisor.Evaluate(ticket, comments)
	require.NotNil(t, suggestion)
	assert.Equal(t, templateClosing, suggestion.Actions[0].Value)
}

func TestResponseAdvisorCombinesTemplates(t *testing.T) {
	advisor := NewResponseAdvisor()
	ticket := &domain.Ticket{
		Status:      domain.TicketStatusAwaitingInfo,
		Category:    "acesso",
		CreatedByID: "u1",
		Description: "não consigo fazer login",
	}

	suggestion := advisor.Evaluate(ticket, nil)
	require.NotNil(t, suggestion)
	assert.InDelta(t, 0.75, suggestion.Confidence, 1e-9)
	assert.Len(t, suggestion.Actions, 3)
	parts := strings.Split(suggestion.ResponseTemplate, "\n\n---\n\n")
	assert.Len(t, parts, 3)
}

func TestResponseAdvisorNoOpinion(t *testing.T) {
	advisor := NewResponseAdvisor()
	ticket := &domain.Ticket{Status: domain.TicketStatusInDev, CreatedByID: "u1", Description: "em andamento"}
	comments := []domain.Comment{{UserID: "u1"}, {UserID: "s1"}}

	assert.Nil(t, advisor.Evaluate(ticket, comments))
}
