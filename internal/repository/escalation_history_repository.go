package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// EscalationHistoryRepository reads the append-only escalation audit trail.
// Records are written by TicketRepository.ApplyEscalation inside the same
// transaction as the tier advance; nothing mutates or deletes them.
type EscalationHistoryRepository interface {
	ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]domain.EscalationHistory, error)
}

type escalationHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewEscalationHistoryRepository builds repository.
func NewEscalationHistoryRepository(pool *pgxpool.Pool) EscalationHistoryRepository {
	return &escalationHistoryRepository{pool: pool}
}

func (r *escalationHistoryRepository) ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]domain.EscalationHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, ticket_id, from_level, to_level, note, created_at
        FROM escalation_history WHERE ticket_id=$1 ORDER BY created_at ASC
        LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, ticketID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EscalationHistory
	for rows.Next() {
		var entry domain.EscalationHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.FromLevel,
			&entry.ToLevel,
			&entry.Note,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
