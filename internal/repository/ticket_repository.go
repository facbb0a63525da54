package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cassianoaxe/endurancy-support/internal/domain"
)

// TicketFilter captures listing parameters. A nil TenantID means all
// tenants (admin scope).
type TicketFilter struct {
	TenantID *string
	Limit    int
	Offset   int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetWithMeta(ctx context.Context, id string) (*domain.TicketWithMeta, error)
	ListWithMeta(ctx context.Context, filter TicketFilter) ([]domain.TicketWithMeta, error)
	SearchRelated(ctx context.Context, tenantID, excludeID string, tokens []string, limit int) ([]domain.Ticket, error)
	OpenCountsByAssignee(ctx context.Context, tenantID string) (map[string]int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (tenant_id, title, description, category, priority, status, created_by_id, assigned_to_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TenantID,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.CreatedByID,
		ticket.AssignedToID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, category=$3, priority=$4, status=$5,
            assigned_to_id=$6, resolved_at=$7, closed_at=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.AssignedToID,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, tenant_id, title, description, category, priority, status,
               created_by_id, assigned_to_id, created_at, updated_at, resolved_at, closed_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.TenantID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Status,
		&ticket.CreatedByID,
		&ticket.AssignedToID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

const ticketMetaSelect = `
        SELECT t.id, t.tenant_id, t.title, t.description, t.category, t.priority, t.status,
               t.created_by_id, t.assigned_to_id, t.created_at, t.updated_at, t.resolved_at, t.closed_at,
               creator.name,
               assignee.name,
               (SELECT COUNT(*) FROM comments c WHERE c.ticket_id = t.id)
        FROM tickets t
        JOIN users creator ON creator.id = t.created_by_id
        LEFT JOIN users assignee ON assignee.id = t.assigned_to_id`

func (r *ticketRepository) GetWithMeta(ctx context.Context, id string) (*domain.TicketWithMeta, error) {
	query := ticketMetaSelect + ` WHERE t.id=$1`
	var meta domain.TicketWithMeta
	if err := scanTicketMeta(r.pool.QueryRow(ctx, query, id), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (r *ticketRepository) ListWithMeta(ctx context.Context, filter TicketFilter) ([]domain.TicketWithMeta, error) {
	query := ticketMetaSelect
	args := []any{}
	if filter.TenantID != nil {
		args = append(args, *filter.TenantID)
		query += fmt.Sprintf(" WHERE t.tenant_id=$%d", len(args))
	}
	query += " ORDER BY t.created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketWithMeta
	for rows.Next() {
		var meta domain.TicketWithMeta
		if err := scanTicketMeta(rows, &meta); err != nil {
			return nil, err
		}
		result = append(result, meta)
	}
	return result, rows.Err()
}

// SearchRelated finds same-tenant tickets whose title or description contains
// any of the given tokens. Every token is bound as a query parameter; tokens
// never reach the SQL text itself.
func (r *ticketRepository) SearchRelated(ctx context.Context, tenantID, excludeID string, tokens []string, limit int) ([]domain.Ticket, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	args := []any{tenantID, excludeID}
	clauses := make([]string, 0, len(tokens))
	for _, token := range tokens {
		args = append(args, "%"+strings.ToLower(token)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("LOWER(title) LIKE %s OR LOWER(description) LIKE %s", placeholder, placeholder))
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
        SELECT id, tenant_id, title, description, category, priority, status,
               created_by_id, assigned_to_id, created_at, updated_at, resolved_at, closed_at
        FROM tickets
        WHERE tenant_id=$1 AND id<>$2 AND (%s)
        ORDER BY updated_at DESC
        LIMIT $%d`, strings.Join(clauses, " OR "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TenantID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Category,
			&ticket.Priority,
			&ticket.Status,
			&ticket.CreatedByID,
			&ticket.AssignedToID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.ResolvedAt,
			&ticket.ClosedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

// OpenCountsByAssignee returns, per assignee id, how many unresolved tickets
// of the tenant are currently assigned to them.
func (r *ticketRepository) OpenCountsByAssignee(ctx context.Context, tenantID string) (map[string]int, error) {
	const query = `
        SELECT assigned_to_id, COUNT(*)
        FROM tickets
        WHERE tenant_id=$1 AND assigned_to_id IS NOT NULL AND status NOT IN ($2,$3)
        GROUP BY assigned_to_id`
	rows, err := r.pool.Query(ctx, query, tenantID, domain.TicketStatusResolved, domain.TicketStatusClosed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var assigneeID string
		var count int
		if err := rows.Scan(&assigneeID, &count); err != nil {
			return nil, err
		}
		counts[assigneeID] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicketMeta(row rowScanner, meta *domain.TicketWithMeta) error {
	return row.Scan(
		&meta.ID,
		&meta.TenantID,
		&meta.Title,
		&meta.Description,
		&meta.Category,
		&meta.Priority,
		&meta.Status,
		&meta.CreatedByID,
		&meta.AssignedToID,
		&meta.CreatedAt,
		&meta.UpdatedAt,
		&meta.ResolvedAt,
		&meta.ClosedAt,
		&meta.CreatorName,
		&meta.AssigneeName,
		&meta.CommentCount,
	)
}
