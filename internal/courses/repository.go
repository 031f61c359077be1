package courses

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateEnrollment is returned when the enrollment unique key fires.
var ErrDuplicateEnrollment = errors.New("courses: duplicate enrollment")

// Repository provides PostgreSQL backed persistence for courses and their
// sub-resources.
type Repository interface {
	GetCourse(ctx context.Context, code string) (*Course, error)
	ListCourses(ctx context.Context) ([]Course, error)
	CreateCourse(ctx context.Context, c Course) error
	UpdateCourse(ctx context.Context, c Course) error
	LecturerExists(ctx context.Context, lecturerID int64) (bool, error)
	CoursesByStudent(ctx context.Context, studentID int64) ([]Course, error)
	CoursesByLecturer(ctx context.Context, lecturerID int64) ([]Course, error)

	StudentIDByAccount(ctx context.Context, accountID int64) (int64, bool, error)
	IsEnrolled(ctx context.Context, studentID int64, courseCode string) (bool, error)
	Enroll(ctx context.Context, studentID int64, courseCode string) error
	Unenroll(ctx context.Context, studentID int64, courseCode string) error
	Members(ctx context.Context, courseCode string) ([]Member, error)

	CreateAssignment(ctx context.Context, a Assignment) (int64, error)
	AssignmentsByCourse(ctx context.Context, courseCode string) ([]Assignment, error)
	GetAssignment(ctx context.Context, id int64) (*Assignment, error)

	CreateSubmission(ctx context.Context, s Submission) (int64, error)
	SubmissionsByAssignment(ctx context.Context, assignmentID int64) ([]Submission, error)
	SubmissionsByStudent(ctx context.Context, assignmentID, studentID int64) ([]Submission, error)
	GetSubmission(ctx context.Context, assignmentID, submissionID int64) (*Submission, error)
	SetGrade(ctx context.Context, submissionID int64, grade float64) error

	CreateSection(ctx context.Context, courseCode, name string) (int64, error)
	SectionsByCourse(ctx context.Context, courseCode string) ([]Section, error)
	GetSection(ctx context.Context, courseCode string, sectionID int64) (*Section, error)
	CreateSectionItem(ctx context.Context, item SectionItem) (int64, error)
	GetSectionItem(ctx context.Context, sectionID, itemID int64) (*SectionItem, error)
}

// PGRepository is the pgx implementation of Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const courseColumns = `course_code, course_name, lecturer_id, semester`

func (r *PGRepository) GetCourse(ctx context.Context, code string) (*Course, error) {
	var c Course
	err := r.pool.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM course WHERE course_code = $1`, code).
		Scan(&c.Code, &c.Name, &c.LecturerID, &c.Semester)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("courses: get course: %w", err)
	}
	return &c, nil
}

func (r *PGRepository) ListCourses(ctx context.Context) ([]Course, error) {
	return r.scanCourses(ctx, `SELECT `+courseColumns+` FROM course ORDER BY course_code`)
}

func (r *PGRepository) CreateCourse(ctx context.Context, c Course) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO course (course_code, course_name, lecturer_id, semester)
		 VALUES ($1, $2, $3, $4)`,
		c.Code, c.Name, c.LecturerID, c.Semester)
	if err != nil {
		return fmt.Errorf("courses: create course: %w", err)
	}
	return nil
}

func (r *PGRepository) UpdateCourse(ctx context.Context, c Course) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE course SET course_name = $1, lecturer_id = $2, semester = $3
		 WHERE course_code = $4`,
		c.Name, c.LecturerID, c.Semester, c.Code)
	if err != nil {
		return fmt.Errorf("courses: update course: %w", err)
	}
	return nil
}

func (r *PGRepository) LecturerExists(ctx context.Context, lecturerID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM lecturer_details WHERE lecturer_id = $1)`, lecturerID).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("courses: lecturer exists: %w", err)
	}
	return exists, nil
}

func (r *PGRepository) CoursesByStudent(ctx context.Context, studentID int64) ([]Course, error) {
	return r.scanCourses(ctx,
		`SELECT `+courseColumns+` FROM course
		 WHERE course_code IN (SELECT course_code FROM enrollment WHERE student_id = $1)
		 ORDER BY course_code`, studentID)
}

func (r *PGRepository) CoursesByLecturer(ctx context.Context, lecturerID int64) ([]Course, error) {
	return r.scanCourses(ctx,
		`SELECT `+courseColumns+` FROM course WHERE lecturer_id = $1 ORDER BY course_code`,
		lecturerID)
}

func (r *PGRepository) StudentIDByAccount(ctx context.Context, accountID int64) (int64, bool, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`SELECT student_id FROM student_details WHERE account_id = $1`, accountID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("courses: student details: %w", err)
	}
	return id, true, nil
}

func (r *PGRepository) IsEnrolled(ctx context.Context, studentID int64, courseCode string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollment WHERE student_id = $1 AND course_code = $2)`,
		studentID, courseCode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("courses: is enrolled: %w", err)
	}
	return exists, nil
}

func (r *PGRepository) Enroll(ctx context.Context, studentID int64, courseCode string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO enrollment (student_id, course_code) VALUES ($1, $2)`,
		studentID, courseCode)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEnrollment
		}
		return fmt.Errorf("courses: enroll: %w", err)
	}
	return nil
}

func (r *PGRepository) Unenroll(ctx context.Context, studentID int64, courseCode string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM enrollment WHERE student_id = $1 AND course_code = $2`,
		studentID, courseCode)
	if err != nil {
		return fmt.Errorf("courses: unenroll: %w", err)
	}
	return nil
}

func (r *PGRepository) Members(ctx context.Context, courseCode string) ([]Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT student_id, account_id, gpa, major FROM student_details
		 WHERE student_id IN (SELECT student_id FROM enrollment WHERE course_code = $1)
		 ORDER BY student_id`, courseCode)
	if err != nil {
		return nil, fmt.Errorf("courses: members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.StudentID, &m.AccountID, &m.GPA, &m.Major); err != nil {
			return nil, fmt.Errorf("courses: scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *PGRepository) CreateAssignment(ctx context.Context, a Assignment) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO assignment (course_code, title, description, deadline, total_marks)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING assignment_id`,
		a.CourseCode, a.Title, a.Description, a.Deadline, a.TotalMarks).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("courses: create assignment: %w", err)
	}
	return id, nil
}

const assignmentColumns = `assignment_id, course_code, title, description, deadline, total_marks`

func (r *PGRepository) AssignmentsByCourse(ctx context.Context, courseCode string) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assignment WHERE course_code = $1 ORDER BY assignment_id`,
		courseCode)
	if err != nil {
		return nil, fmt.Errorf("courses: assignments: %w", err)
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.CourseCode, &a.Title, &a.Description, &a.Deadline, &a.TotalMarks); err != nil {
			return nil, fmt.Errorf("courses: scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *PGRepository) GetAssignment(ctx context.Context, id int64) (*Assignment, error) {
	var a Assignment
	err := r.pool.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignment WHERE assignment_id = $1`, id).
		Scan(&a.ID, &a.CourseCode, &a.Title, &a.Description, &a.Deadline, &a.TotalMarks)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("courses: get assignment: %w", err)
	}
	return &a, nil
}

const submissionColumns = `submission_id, assignment_id, student_id, submission_time, grade, file_path`

func (r *PGRepository) CreateSubmission(ctx context.Context, s Submission) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO assignment_submission (assignment_id, student_id, submission_time, file_path)
		 VALUES ($1, $2, $3, $4)
		 RETURNING submission_id`,
		s.AssignmentID, s.StudentID, s.SubmissionTime, s.FilePath).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("courses: create submission: %w", err)
	}
	return id, nil
}

func (r *PGRepository) SubmissionsByAssignment(ctx context.Context, assignmentID int64) ([]Submission, error) {
	return r.scanSubmissions(ctx,
		`SELECT `+submissionColumns+` FROM assignment_submission
		 WHERE assignment_id = $1 ORDER BY submission_id`, assignmentID)
}

func (r *PGRepository) SubmissionsByStudent(ctx context.Context, assignmentID, studentID int64) ([]Submission, error) {
	return r.scanSubmissions(ctx,
		`SELECT `+submissionColumns+` FROM assignment_submission
		 WHERE assignment_id = $1 AND student_id = $2 ORDER BY submission_id`,
		assignmentID, studentID)
}

func (r *PGRepository) GetSubmission(ctx context.Context, assignmentID, submissionID int64) (*Submission, error) {
	var s Submission
	err := r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM assignment_submission
		 WHERE assignment_id = $1 AND submission_id = $2`, assignmentID, submissionID).
		Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.SubmissionTime, &s.Grade, &s.FilePath)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("courses: get submission: %w", err)
	}
	return &s, nil
}

func (r *PGRepository) SetGrade(ctx context.Context, submissionID int64, grade float64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE assignment_submission SET grade = $1 WHERE submission_id = $2`,
		grade, submissionID)
	if err != nil {
		return fmt.Errorf("courses: set grade: %w", err)
	}
	return nil
}

func (r *PGRepository) CreateSection(ctx context.Context, courseCode, name string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO course_section (course_code, section_name) VALUES ($1, $2)
		 RETURNING section_id`, courseCode, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("courses: create section: %w", err)
	}
	return id, nil
}

func (r *PGRepository) SectionsByCourse(ctx context.Context, courseCode string) ([]Section, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT section_id, course_code, section_name FROM course_section
		 WHERE course_code = $1 ORDER BY section_id`, courseCode)
	if err != nil {
		return nil, fmt.Errorf("courses: sections: %w", err)
	}
	defer rows.Close()

	var sections []Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.CourseCode, &s.Name); err != nil {
			return nil, fmt.Errorf("courses: scan section: %w", err)
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

func (r *PGRepository) GetSection(ctx context.Context, courseCode string, sectionID int64) (*Section, error) {
	var s Section
	err := r.pool.QueryRow(ctx,
		`SELECT section_id, course_code, section_name FROM course_section
		 WHERE course_code = $1 AND section_id = $2`, courseCode, sectionID).
		Scan(&s.ID, &s.CourseCode, &s.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("courses: get section: %w", err)
	}
	return &s, nil
}

func (r *PGRepository) CreateSectionItem(ctx context.Context, item SectionItem) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO section_item (section_id, title, description, deadline, link, file_location)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING item_id`,
		item.SectionID, item.Title, item.Description, item.Deadline, item.Link, item.FileLocation).
		Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("courses: create section item: %w", err)
	}
	return id, nil
}

func (r *PGRepository) GetSectionItem(ctx context.Context, sectionID, itemID int64) (*SectionItem, error) {
	var item SectionItem
	err := r.pool.QueryRow(ctx,
		`SELECT item_id, section_id, title, description, deadline, link, file_location
		 FROM section_item WHERE section_id = $1 AND item_id = $2`, sectionID, itemID).
		Scan(&item.ID, &item.SectionID, &item.Title, &item.Description, &item.Deadline, &item.Link, &item.FileLocation)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("courses: get section item: %w", err)
	}
	return &item, nil
}

func (r *PGRepository) scanCourses(ctx context.Context, query string, args ...any) ([]Course, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("courses: query courses: %w", err)
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.Code, &c.Name, &c.LecturerID, &c.Semester); err != nil {
			return nil, fmt.Errorf("courses: scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *PGRepository) scanSubmissions(ctx context.Context, query string, args ...any) ([]Submission, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("courses: query submissions: %w", err)
	}
	defer rows.Close()

	var submissions []Submission
	for rows.Next() {
		var s Submission
		if err := rows.Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.SubmissionTime, &s.Grade, &s.FilePath); err != nil {
			return nil, fmt.Errorf("courses: scan submission: %w", err)
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}
