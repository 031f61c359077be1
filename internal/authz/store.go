package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the PostgreSQL-backed Directory. Every call checks out a pooled
// connection for the duration of its query; nothing is shared across
// requests.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// StudentIDByAccount resolves the student surrogate id for an account.
func (s *Store) StudentIDByAccount(ctx context.Context, accountID int64) (int64, bool, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`SELECT student_id FROM student_details WHERE account_id = $1`, accountID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("authz: student details: %w", err)
	}
	return id, true, nil
}

// LecturerIDByAccount resolves the lecturer surrogate id for an account.
func (s *Store) LecturerIDByAccount(ctx context.Context, accountID int64) (int64, bool, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`SELECT lecturer_id FROM lecturer_details WHERE account_id = $1`, accountID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("authz: lecturer details: %w", err)
	}
	return id, true, nil
}

// IsEnrolled reports whether the student is enrolled in the course.
func (s *Store) IsEnrolled(ctx context.Context, studentID int64, courseCode string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollment WHERE student_id = $1 AND course_code = $2)`,
		studentID, courseCode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("authz: enrollment: %w", err)
	}
	return exists, nil
}

// OwnsCourse reports whether the lecturer owns the course.
func (s *Store) OwnsCourse(ctx context.Context, lecturerID int64, courseCode string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM course WHERE course_code = $1 AND lecturer_id = $2)`,
		courseCode, lecturerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("authz: course ownership: %w", err)
	}
	return exists, nil
}
