package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// NotificationView joins a delivery record with its ticket and the ticket's
// ownership fields, so visibility scopes can filter rows with pure
// predicates and no further queries.
type NotificationView struct {
	Notification        domain.UserNotification
	Ticket              domain.Ticket
	CustomerOverseerID  *string
	TerminalCustodianID *string
}

// NotificationRepository encapsulates per-user delivery records.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.UserNotification) error
	ListUnreadByUser(ctx context.Context, userID string) ([]NotificationView, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.UserNotification) error {
	const query = `
        INSERT INTO user_notifications (user_id, ticket_id, notification_type)
        VALUES ($1,$2,$3)
        RETURNING id, is_read, created_at`
	return r.pool.QueryRow(ctx, query,
		notification.UserID,
		notification.TicketID,
		notification.NotificationType,
	).Scan(&notification.ID, &notification.IsRead, &notification.CreatedAt)
}

// ListUnreadByUser returns the user's unread notifications joined with
// ticket and ownership data, newest ticket first. Scope filtering and
// per-ticket deduplication happen in the fan-out layer.
func (r *notificationRepository) ListUnreadByUser(ctx context.Context, userID string) ([]NotificationView, error) {
	query := `
        SELECT n.id, n.user_id, n.ticket_id, n.notification_type, n.is_read, n.created_at,
               ` + prefixedTicketColumns("t") + `,
               c.overseer_user_id, term.custodian_user_id
        FROM user_notifications n
        JOIN tickets t ON t.id = n.ticket_id
        LEFT JOIN customers c ON c.id = t.customer_id
        LEFT JOIN terminals term ON term.id = t.terminal_id
        WHERE n.user_id=$1 AND NOT n.is_read
        ORDER BY t.created_at DESC, n.created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []NotificationView
	for rows.Next() {
		var view NotificationView
		fields := []any{
			&view.Notification.ID,
			&view.Notification.UserID,
			&view.Notification.TicketID,
			&view.Notification.NotificationType,
			&view.Notification.IsRead,
			&view.Notification.CreatedAt,
		}
		fields = append(fields, ticketFields(&view.Ticket)...)
		fields = append(fields, &view.CustomerOverseerID, &view.TerminalCustodianID)
		if err := rows.Scan(fields...); err != nil {
			return nil, err
		}
		result = append(result, view)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	const query = `UPDATE user_notifications SET is_read=TRUE WHERE id=$1 AND user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
