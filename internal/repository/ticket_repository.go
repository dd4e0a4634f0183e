package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// TicketAccess carries the ownership fields the notification fan-out needs
// to decide visibility for one ticket.
type TicketAccess struct {
	Ticket              domain.Ticket
	CustomerOverseerID  *string
	TerminalCustodianID *string
}

// EscalationUpdate describes the atomic field changes of one tier advance.
type EscalationUpdate struct {
	FromLevel     domain.EscalationLevel
	ToLevel       domain.EscalationLevel
	EscalatedAt   time.Time
	MarkSLABreach bool
	HistoryNote   string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetAccessByID(ctx context.Context, id string) (*TicketAccess, error)
	ListForSweep(ctx context.Context) ([]domain.Ticket, error)
	Assign(ctx context.Context, ticketID, assigneeID string, at time.Time) error
	Resolve(ctx context.Context, ticketID string, at time.Time) error
	SetZone(ctx context.Context, ticketID, zone string) error
	SetUnassignedNotifiedAt(ctx context.Context, ticketID string, at time.Time) error
	ApplyEscalation(ctx context.Context, ticketID string, update EscalationUpdate) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `
        id, title, description, status, priority, zone, customer_id, terminal_id,
        requester_user_id, assignee_user_id, current_escalation_level, is_escalated,
        is_sla_breached, created_at, updated_at, assigned_at, escalated_at, due_date,
        resolved_at, last_unassigned_notification`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, priority, zone, customer_id, terminal_id, requester_user_id, due_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Zone,
		ticket.CustomerID,
		ticket.TerminalID,
		ticket.RequesterID,
		ticket.DueDate,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) GetAccessByID(ctx context.Context, id string) (*TicketAccess, error) {
	query := `
        SELECT ` + prefixedTicketColumns("t") + `,
               c.overseer_user_id, term.custodian_user_id
        FROM tickets t
        LEFT JOIN customers c ON c.id = t.customer_id
        LEFT JOIN terminals term ON term.id = t.terminal_id
        WHERE t.id=$1`
	var access TicketAccess
	row := r.pool.QueryRow(ctx, query, id)
	if err := row.Scan(append(ticketFields(&access.Ticket), &access.CustomerOverseerID, &access.TerminalCustodianID)...); err != nil {
		return nil, err
	}
	return &access, nil
}

func (r *ticketRepository) ListForSweep(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT` + ticketColumns + `
        FROM tickets WHERE status IN ('open', 'in_progress') ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Assign(ctx context.Context, ticketID, assigneeID string, at time.Time) error {
	const query = `
        UPDATE tickets SET assignee_user_id=$1, assigned_at=$2, status='in_progress', updated_at=NOW()
        WHERE id=$3 AND status IN ('open', 'in_progress')`
	cmd, err := r.pool.Exec(ctx, query, assigneeID, at, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Resolve(ctx context.Context, ticketID string, at time.Time) error {
	const query = `
        UPDATE tickets SET status='resolved', resolved_at=$1, updated_at=NOW()
        WHERE id=$2 AND status IN ('open', 'in_progress')`
	cmd, err := r.pool.Exec(ctx, query, at, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) SetZone(ctx context.Context, ticketID, zone string) error {
	const query = `UPDATE tickets SET zone=$1, updated_at=NOW() WHERE id=$2 AND (zone IS NULL OR zone = '')`
	_, err := r.pool.Exec(ctx, query, zone, ticketID)
	return err
}

func (r *ticketRepository) SetUnassignedNotifiedAt(ctx context.Context, ticketID string, at time.Time) error {
	const query = `UPDATE tickets SET last_unassigned_notification=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, at, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ApplyEscalation advances one ticket a single tier and appends its history
// record in one transaction. The WHERE clause guards the expected current
// level so overlapping sweeps cannot double-advance a ticket.
func (r *ticketRepository) ApplyEscalation(ctx context.Context, ticketID string, update EscalationUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const updateQuery = `
        UPDATE tickets
        SET current_escalation_level=$1, is_escalated=TRUE, escalated_at=$2,
            is_sla_breached = is_sla_breached OR $3, updated_at=NOW()
        WHERE id=$4
          AND (current_escalation_level = $5 OR (current_escalation_level IS NULL AND $5 = 'Tier 1'))`
	cmd, err := tx.Exec(ctx, updateQuery,
		update.ToLevel,
		update.EscalatedAt,
		update.MarkSLABreach,
		ticketID,
		update.FromLevel,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	const historyQuery = `
        INSERT INTO escalation_history (ticket_id, from_level, to_level, note)
        VALUES ($1,$2,$3,$4)`
	if _, err := tx.Exec(ctx, historyQuery, ticketID, update.FromLevel, update.ToLevel, update.HistoryNote); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func prefixedTicketColumns(alias string) string {
	return alias + `.id, ` + alias + `.title, ` + alias + `.description, ` + alias + `.status, ` +
		alias + `.priority, ` + alias + `.zone, ` + alias + `.customer_id, ` + alias + `.terminal_id, ` +
		alias + `.requester_user_id, ` + alias + `.assignee_user_id, ` + alias + `.current_escalation_level, ` +
		alias + `.is_escalated, ` + alias + `.is_sla_breached, ` + alias + `.created_at, ` + alias + `.updated_at, ` +
		alias + `.assigned_at, ` + alias + `.escalated_at, ` + alias + `.due_date, ` + alias + `.resolved_at, ` +
		alias + `.last_unassigned_notification`
}

func ticketFields(ticket *domain.Ticket) []any {
	return []any{
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Zone,
		&ticket.CustomerID,
		&ticket.TerminalID,
		&ticket.RequesterID,
		&ticket.AssigneeID,
		&ticket.CurrentEscalationLevel,
		&ticket.IsEscalated,
		&ticket.IsSLABreached,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.AssignedAt,
		&ticket.EscalatedAt,
		&ticket.DueDate,
		&ticket.ResolvedAt,
		&ticket.LastUnassignedNotification,
	}
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(ticketFields(ticket)...)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(ticketFields(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
