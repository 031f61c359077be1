package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for calendar events.
type Repository interface {
	CourseExists(ctx context.Context, courseCode string) (bool, error)
	StudentIDByAccount(ctx context.Context, accountID int64) (int64, bool, error)
	CreateEvent(ctx context.Context, e Event) (*Event, error)
	EventsByCourse(ctx context.Context, courseCode string) ([]Event, error)
	EventsByCourseAndStudent(ctx context.Context, courseCode string, studentID int64) ([]Event, error)
	EventsByStudent(ctx context.Context, studentID int64) ([]Event, error)
}

// PGRepository is the pgx implementation of Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) CourseExists(ctx context.Context, courseCode string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM course WHERE course_code = $1)`, courseCode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("calendar: course exists: %w", err)
	}
	return exists, nil
}

func (r *PGRepository) StudentIDByAccount(ctx context.Context, accountID int64) (int64, bool, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`SELECT student_id FROM student_details WHERE account_id = $1`, accountID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("calendar: student details: %w", err)
	}
	return id, true, nil
}

const eventColumns = `event_no, course_code, event_name, event_date`

func (r *PGRepository) CreateEvent(ctx context.Context, e Event) (*Event, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO calendar_event (course_code, event_name, event_date)
		 VALUES ($1, $2, $3)
		 RETURNING event_no`,
		e.CourseCode, e.EventName, e.Date).Scan(&e.EventNo)
	if err != nil {
		return nil, fmt.Errorf("calendar: create event: %w", err)
	}
	return &e, nil
}

func (r *PGRepository) EventsByCourse(ctx context.Context, courseCode string) ([]Event, error) {
	return r.scanEvents(ctx,
		`SELECT `+eventColumns+` FROM calendar_event
		 WHERE course_code = $1 ORDER BY event_date, event_no`, courseCode)
}

func (r *PGRepository) EventsByCourseAndStudent(ctx context.Context, courseCode string, studentID int64) ([]Event, error) {
	return r.scanEvents(ctx,
		`SELECT `+eventColumns+` FROM calendar_event
		 WHERE course_code = $1
		   AND course_code IN (SELECT course_code FROM enrollment WHERE student_id = $2)
		 ORDER BY event_date, event_no`, courseCode, studentID)
}

func (r *PGRepository) EventsByStudent(ctx context.Context, studentID int64) ([]Event, error) {
	return r.scanEvents(ctx,
		`SELECT `+eventColumns+` FROM calendar_event
		 WHERE course_code IN (SELECT course_code FROM enrollment WHERE student_id = $1)
		 ORDER BY event_date, event_no`, studentID)
}

func (r *PGRepository) scanEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("calendar: query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.EventNo, &e.CourseCode, &e.EventName, &e.Date); err != nil {
			return nil, fmt.Errorf("calendar: scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
