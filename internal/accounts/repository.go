package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aula-lms/aula-lms/internal/platform/db"
	"github.com/aula-lms/aula-lms/internal/shared"
)

// Repository provides PostgreSQL backed persistence for accounts.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, acc NewAccount) (int64, error)
}

// PGRepository is the pgx implementation of Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail returns the account with the given email, or nil when absent.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var acc Account
	err := r.pool.QueryRow(ctx,
		`SELECT account_id, email, password_hash, account_type, name, contact_info
		 FROM account WHERE email = $1`, email).
		Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &acc.Role, &acc.Name, &acc.ContactInfo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("accounts: find by email: %w", err)
	}
	return &acc, nil
}

// Create inserts the account and its role-scoped details row in one
// transaction and returns the new account id.
func (r *PGRepository) Create(ctx context.Context, acc NewAccount) (int64, error) {
	var accountID int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO account (email, password_hash, account_type, name, contact_info)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING account_id`,
			acc.Email, acc.PasswordHash, acc.Role, acc.Name, acc.ContactInfo).
			Scan(&accountID)
		if err != nil {
			return fmt.Errorf("accounts: insert account: %w", err)
		}

		switch acc.Role {
		case shared.RoleStudent:
			_, err = tx.Exec(ctx,
				`INSERT INTO student_details (account_id, major) VALUES ($1, $2)`,
				accountID, acc.Major)
		case shared.RoleLecturer:
			_, err = tx.Exec(ctx,
				`INSERT INTO lecturer_details (account_id, department) VALUES ($1, $2)`,
				accountID, acc.Department)
		}
		if err != nil {
			return fmt.Errorf("accounts: insert details: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return accountID, nil
}
