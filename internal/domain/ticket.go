package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew          TicketStatus = "novo"
	TicketStatusInAnalysis   TicketStatus = "em_analise"
	TicketStatusInDev        TicketStatus = "em_desenvolvimento"
	TicketStatusAwaitingInfo TicketStatus = "aguardando_informacoes"
	TicketStatusAwaitingUser TicketStatus = "aguardando_resposta"
	TicketStatusReplied      TicketStatus = "respondido"
	TicketStatusResolved     TicketStatus = "resolvido"
	TicketStatusClosed       TicketStatus = "fechado"
	TicketStatusReopened     TicketStatus = "aberto"
)

// ValidTicketStatus reports whether the value is a known lifecycle state.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusNew, TicketStatusInAnalysis, TicketStatusInDev,
		TicketStatusAwaitingInfo, TicketStatusAwaitingUser, TicketStatusReplied,
		TicketStatusResolved, TicketStatusClosed, TicketStatusReopened:
		return true
	}
	return false
}

// TicketPriority enumerates urgency tiers.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "baixa"
	TicketPriorityMedium TicketPriority = "media"
	TicketPriorityHigh   TicketPriority = "alta"
)

// ValidTicketPriority reports whether the value is a known tier.
func ValidTicketPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. Every ticket belongs to
// exactly one tenant; ResolvedAt and ClosedAt are set on first entry into
// their states and never cleared afterwards.
type Ticket struct {
	ID           string
	TenantID     string
	Title        string
	Description  string
	Category     string
	Priority     TicketPriority
	Status       TicketStatus
	CreatedByID  string
	AssignedToID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ResolvedAt   *time.Time
	ClosedAt     *time.Time
}

// TicketWithMeta decorates a ticket with listing annotations.
type TicketWithMeta struct {
	Ticket
	CreatorName  string
	AssigneeName *string
	CommentCount int
}
