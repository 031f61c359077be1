package courses

import "time"

// Course is owned by exactly one lecturer; the code doubles as the key.
type Course struct {
	Code       string `json:"course_code"`
	Name       string `json:"course_name"`
	LecturerID int64  `json:"lecturer_id"`
	Semester   int    `json:"semester"`
}

// Member is the student-details view of a course roster entry.
type Member struct {
	StudentID int64    `json:"student_id"`
	AccountID int64    `json:"account_id"`
	GPA       *float64 `json:"gpa"`
	Major     *string  `json:"major"`
}

// Assignment is a graded piece of coursework under a course.
type Assignment struct {
	ID          int64     `json:"assignment_id"`
	CourseCode  string    `json:"course_code"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Deadline    time.Time `json:"deadline"`
	TotalMarks  float64   `json:"total_marks"`
}

// Submission is a student's uploaded answer to an assignment.
type Submission struct {
	ID             int64     `json:"submission_id"`
	AssignmentID   int64     `json:"assignment_id"`
	StudentID      int64     `json:"student_id"`
	SubmissionTime time.Time `json:"submission_time"`
	Grade          *float64  `json:"grade"`
	FilePath       string    `json:"file_path"`
}

// Section groups course material (lecture notes, tutorials, ...).
type Section struct {
	ID         int64  `json:"section_id"`
	CourseCode string `json:"course_code"`
	Name       string `json:"section_name"`
}

// SectionItem is one piece of material inside a section, optionally backed
// by an uploaded file or an external link.
type SectionItem struct {
	ID           int64      `json:"item_id"`
	SectionID    int64      `json:"section_id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	Deadline     *time.Time `json:"deadline"`
	Link         *string    `json:"link"`
	FileLocation *string    `json:"file_location"`
}
