package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// UserRepository encapsulates user, group and ownership lookups.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	OverseesAnyCustomer(ctx context.Context, userID string) (bool, error)
	GetTerminal(ctx context.Context, terminalID string) (*domain.Terminal, error)
	// ListRecipientsForTicket returns the IDs of every user who should
	// receive a delivery record for a ticket: elevated-group members plus
	// the customer's overseer and the terminal's custodian.
	ListRecipientsForTicket(ctx context.Context, customerID, terminalID *string) ([]string, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, is_superuser, terminal_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	if err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsSuperuser,
		user.TerminalID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return err
	}

	for _, group := range user.Groups {
		const groupQuery = `INSERT INTO user_groups (user_id, group_name) VALUES ($1,$2) ON CONFLICT DO NOTHING`
		if _, err := r.pool.Exec(ctx, groupQuery, user.ID, group); err != nil {
			return err
		}
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, is_superuser, terminal_id, created_at, updated_at
        FROM users WHERE id=$1`
	return r.fetchWithGroups(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, is_superuser, terminal_id, created_at, updated_at
        FROM users WHERE email=$1`
	return r.fetchWithGroups(ctx, query, email)
}

func (r *userRepository) fetchWithGroups(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsSuperuser,
		&user.TerminalID,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	const groupQuery = `SELECT group_name FROM user_groups WHERE user_id=$1 ORDER BY group_name`
	rows, err := r.pool.Query(ctx, groupQuery, user.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var group string
		if err := rows.Scan(&group); err != nil {
			return nil, err
		}
		user.Groups = append(user.Groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) OverseesAnyCustomer(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM customers WHERE overseer_user_id=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *userRepository) GetTerminal(ctx context.Context, terminalID string) (*domain.Terminal, error) {
	const query = `SELECT id, name, custodian_user_id FROM terminals WHERE id=$1`
	var terminal domain.Terminal
	if err := r.pool.QueryRow(ctx, query, terminalID).Scan(
		&terminal.ID,
		&terminal.Name,
		&terminal.CustodianID,
	); err != nil {
		return nil, err
	}
	return &terminal, nil
}

func (r *userRepository) ListRecipientsForTicket(ctx context.Context, customerID, terminalID *string) ([]string, error) {
	const query = `
        SELECT DISTINCT u.id FROM users u
        LEFT JOIN user_groups g ON g.user_id = u.id
        WHERE u.is_superuser
           OR g.group_name IN ('Admin', 'Director', 'Manager', 'Staff')
           OR ($1::uuid IS NOT NULL AND u.id IN (SELECT overseer_user_id FROM customers WHERE id=$1 AND overseer_user_id IS NOT NULL))
           OR ($2::uuid IS NOT NULL AND u.id IN (SELECT custodian_user_id FROM terminals WHERE id=$2 AND custodian_user_id IS NOT NULL))`
	rows, err := r.pool.Query(ctx, query, customerID, terminalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	return result, rows.Err()
}
