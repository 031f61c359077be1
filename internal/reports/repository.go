// Package reports serves read-only aggregate views over the enrollment and
// grading data.
package reports

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CourseEnrollment pairs a course with its student head count.
type CourseEnrollment struct {
	CourseCode   string `json:"course_code"`
	CourseName   string `json:"course_name"`
	StudentCount int64  `json:"student_count"`
}

// StudentLoad pairs a student with the number of courses they take.
type StudentLoad struct {
	StudentID   int64  `json:"student_id"`
	Name        string `json:"name"`
	CourseCount int64  `json:"course_count"`
}

// LecturerLoad pairs a lecturer with the number of courses they teach.
type LecturerLoad struct {
	LecturerID  int64  `json:"lecturer_id"`
	Name        string `json:"name"`
	CourseCount int64  `json:"course_count"`
}

// StudentAverage pairs a student with their average submission grade.
type StudentAverage struct {
	StudentID    int64   `json:"student_id"`
	Name         string  `json:"name"`
	AverageGrade float64 `json:"average_grade"`
}

// Repository runs the aggregate queries behind the report endpoints.
type Repository interface {
	CoursesWithAtLeastStudents(ctx context.Context, min int) ([]CourseEnrollment, error)
	StudentsWithAtLeastCourses(ctx context.Context, min int) ([]StudentLoad, error)
	LecturersWithAtLeastCourses(ctx context.Context, min int) ([]LecturerLoad, error)
	TopEnrolledCourses(ctx context.Context, limit int) ([]CourseEnrollment, error)
	TopStudentsByAverageGrade(ctx context.Context, limit int) ([]StudentAverage, error)
}

// PGRepository is the pgx implementation of Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) CoursesWithAtLeastStudents(ctx context.Context, min int) ([]CourseEnrollment, error) {
	return r.scanCourseEnrollments(ctx,
		`SELECT c.course_code, c.course_name, COUNT(e.student_id) AS student_count
		 FROM course c
		 JOIN enrollment e ON e.course_code = c.course_code
		 GROUP BY c.course_code, c.course_name
		 HAVING COUNT(e.student_id) >= $1
		 ORDER BY student_count DESC, c.course_code`, min)
}

func (r *PGRepository) StudentsWithAtLeastCourses(ctx context.Context, min int) ([]StudentLoad, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sd.student_id, a.name, COUNT(e.course_code) AS course_count
		 FROM student_details sd
		 JOIN account a ON a.account_id = sd.account_id
		 JOIN enrollment e ON e.student_id = sd.student_id
		 GROUP BY sd.student_id, a.name
		 HAVING COUNT(e.course_code) >= $1
		 ORDER BY course_count DESC, sd.student_id`, min)
	if err != nil {
		return nil, fmt.Errorf("reports: student loads: %w", err)
	}
	defer rows.Close()

	var loads []StudentLoad
	for rows.Next() {
		var l StudentLoad
		if err := rows.Scan(&l.StudentID, &l.Name, &l.CourseCount); err != nil {
			return nil, fmt.Errorf("reports: scan student load: %w", err)
		}
		loads = append(loads, l)
	}
	return loads, rows.Err()
}

func (r *PGRepository) LecturersWithAtLeastCourses(ctx context.Context, min int) ([]LecturerLoad, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ld.lecturer_id, a.name, COUNT(c.course_code) AS course_count
		 FROM lecturer_details ld
		 JOIN account a ON a.account_id = ld.account_id
		 JOIN course c ON c.lecturer_id = ld.lecturer_id
		 GROUP BY ld.lecturer_id, a.name
		 HAVING COUNT(c.course_code) >= $1
		 ORDER BY course_count DESC, ld.lecturer_id`, min)
	if err != nil {
		return nil, fmt.Errorf("reports: lecturer loads: %w", err)
	}
	defer rows.Close()

	var loads []LecturerLoad
	for rows.Next() {
		var l LecturerLoad
		if err := rows.Scan(&l.LecturerID, &l.Name, &l.CourseCount); err != nil {
			return nil, fmt.Errorf("reports: scan lecturer load: %w", err)
		}
		loads = append(loads, l)
	}
	return loads, rows.Err()
}

func (r *PGRepository) TopEnrolledCourses(ctx context.Context, limit int) ([]CourseEnrollment, error) {
	return r.scanCourseEnrollments(ctx,
		`SELECT c.course_code, c.course_name, COUNT(e.student_id) AS student_count
		 FROM course c
		 JOIN enrollment e ON e.course_code = c.course_code
		 GROUP BY c.course_code, c.course_name
		 ORDER BY student_count DESC, c.course_code
		 LIMIT $1`, limit)
}

func (r *PGRepository) TopStudentsByAverageGrade(ctx context.Context, limit int) ([]StudentAverage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sd.student_id, a.name, AVG(s.grade) AS average_grade
		 FROM student_details sd
		 JOIN account a ON a.account_id = sd.account_id
		 JOIN assignment_submission s ON s.student_id = sd.student_id
		 WHERE s.grade IS NOT NULL
		 GROUP BY sd.student_id, a.name
		 ORDER BY average_grade DESC, sd.student_id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("reports: top students: %w", err)
	}
	defer rows.Close()

	var averages []StudentAverage
	for rows.Next() {
		var s StudentAverage
		if err := rows.Scan(&s.StudentID, &s.Name, &s.AverageGrade); err != nil {
			return nil, fmt.Errorf("reports: scan student average: %w", err)
		}
		averages = append(averages, s)
	}
	return averages, rows.Err()
}

func (r *PGRepository) scanCourseEnrollments(ctx context.Context, query string, args ...any) ([]CourseEnrollment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reports: course enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []CourseEnrollment
	for rows.Next() {
		var e CourseEnrollment
		if err := rows.Scan(&e.CourseCode, &e.CourseName, &e.StudentCount); err != nil {
			return nil, fmt.Errorf("reports: scan course enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}
