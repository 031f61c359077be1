package courses

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/aula-lms/aula-lms/internal/authz"
	"github.com/aula-lms/aula-lms/internal/platform/filestore"
	"github.com/aula-lms/aula-lms/internal/platform/httpx"
	"github.com/aula-lms/aula-lms/internal/shared"
)

const msgNoCourse = "There is no course with that course code!"

// Service carries the course, enrollment, assignment and section rules.
type Service struct {
	repo       Repository
	visibility *authz.Visibility
	files      *filestore.Store
	now        func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, visibility *authz.Visibility, files *filestore.Store) *Service {
	return &Service{repo: repo, visibility: visibility, files: files, now: time.Now}
}

// CreateCourse registers a new course under an existing lecturer.
func (s *Service) CreateCourse(ctx context.Context, c Course) (*Course, error) {
	existing, err := s.repo.GetCourse(ctx, c.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, httpx.Fail(httpx.ErrDuplicate, "There is already a course with that course code!")
	}

	ok, err := s.repo.LecturerExists(ctx, c.LecturerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httpx.Fail(httpx.ErrValidation, "There is no lecturer with that ID!")
	}

	if err := s.repo.CreateCourse(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

// CoursePatch carries the optional fields of a partial course update.
type CoursePatch struct {
	Name       *string
	LecturerID *int64
	Semester   *int
}

// UpdateCourse applies a partial update and returns the updated course.
func (s *Service) UpdateCourse(ctx context.Context, code string, patch CoursePatch) (*Course, error) {
	c, err := s.repo.GetCourse(ctx, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, httpx.Fail(httpx.ErrNotFound, msgNoCourse)
	}

	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.LecturerID != nil {
		ok, err := s.repo.LecturerExists(ctx, *patch.LecturerID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, httpx.Fail(httpx.ErrValidation, "There is no lecturer with that ID!")
		}
		c.LecturerID = *patch.LecturerID
	}
	if patch.Semester != nil {
		c.Semester = *patch.Semester
	}

	if err := s.repo.UpdateCourse(ctx, *c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCourses returns every course.
func (s *Service) ListCourses(ctx context.Context) ([]Course, error) {
	return s.repo.ListCourses(ctx)
}

// GetCourse returns one course or a not-found error.
func (s *Service) GetCourse(ctx context.Context, code string) (*Course, error) {
	c, err := s.repo.GetCourse(ctx, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, httpx.Fail(httpx.ErrNotFound, msgNoCourse)
	}
	return c, nil
}

// CoursesForStudent lists a student's enrolled courses. A student session may
// only query its own student id.
func (s *Service) CoursesForStudent(ctx context.Context, sess *shared.Session, studentID int64) ([]Course, error) {
	if sess.Role == shared.RoleStudent {
		own, found, err := s.repo.StudentIDByAccount(ctx, sess.AccountID)
		if err != nil {
			return nil, err
		}
		if !found || own != studentID {
			return nil, httpx.Fail(httpx.ErrForbidden, "You can only view your own courses!")
		}
	}

	list, err := s.repo.CoursesByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, httpx.Fail(httpx.ErrNotFound, "There are no courses for this student!")
	}
	return list, nil
}

// CoursesForLecturer lists the courses a lecturer teaches.
func (s *Service) CoursesForLecturer(ctx context.Context, lecturerID int64) ([]Course, error) {
	list, err := s.repo.CoursesByLecturer(ctx, lecturerID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, httpx.Fail(httpx.ErrNotFound, "There are no courses for this lecturer!")
	}
	return list, nil
}

// Enrollment is the wire shape of a register/unregister response.
type Enrollment struct {
	CourseCode string `json:"course_code"`
	StudentID  int64  `json:"student_id"`
}

// Register enrolls the session's student in a course.
func (s *Service) Register(ctx context.Context, sess *shared.Session, courseCode string) (*Enrollment, error) {
	studentID, err := s.requireCourseAndStudent(ctx, sess, courseCode)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.repo.IsEnrolled(ctx, studentID, courseCode)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, httpx.Fail(httpx.ErrDuplicate, "You are already enrolled in this course!")
	}

	if err := s.repo.Enroll(ctx, studentID, courseCode); err != nil {
		if errors.Is(err, ErrDuplicateEnrollment) {
			return nil, httpx.Fail(httpx.ErrDuplicate, "You are already enrolled in this course!")
		}
		return nil, err
	}
	return &Enrollment{CourseCode: courseCode, StudentID: studentID}, nil
}

// Unregister removes the session's student from a course.
func (s *Service) Unregister(ctx context.Context, sess *shared.Session, courseCode string) (*Enrollment, error) {
	studentID, err := s.requireCourseAndStudent(ctx, sess, courseCode)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.repo.IsEnrolled(ctx, studentID, courseCode)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, httpx.Fail(httpx.ErrValidation, "You are not enrolled in this course!")
	}

	if err := s.repo.Unenroll(ctx, studentID, courseCode); err != nil {
		return nil, err
	}
	return &Enrollment{CourseCode: courseCode, StudentID: studentID}, nil
}

func (s *Service) requireCourseAndStudent(ctx context.Context, sess *shared.Session, courseCode string) (int64, error) {
	c, err := s.repo.GetCourse(ctx, courseCode)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, httpx.Fail(httpx.ErrNotFound, msgNoCourse)
	}

	studentID, found, err := s.repo.StudentIDByAccount(ctx, sess.AccountID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, httpx.Fail(httpx.ErrForbidden, "You can only view your courses!")
	}
	return studentID, nil
}

// Members lists the student details of a course roster. Students may only
// view rosters of courses they are enrolled in.
func (s *Service) Members(ctx context.Context, sess *shared.Session, courseCode string) ([]Member, error) {
	if _, err := s.GetCourse(ctx, courseCode); err != nil {
		return nil, err
	}
	if sess.Role == shared.RoleStudent {
		err := s.visibility.Check(ctx, sess, courseCode, authz.Messages{
			StudentErr: "You can only view members for your courses!",
		})
		if err != nil {
			return nil, err
		}
	}

	members, err := s.repo.Members(ctx, courseCode)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, httpx.Fail(httpx.ErrNotFound, "There are no members for this course!")
	}
	return members, nil
}

// CreateAssignment adds an assignment under a course the caller teaches.
func (s *Service) CreateAssignment(ctx context.Context, sess *shared.Session, a Assignment) (*Assignment, error) {
	if _, err := s.GetCourse(ctx, a.CourseCode); err != nil {
		return nil, err
	}
	err := s.visibility.Check(ctx, sess, a.CourseCode, authz.Messages{
		LecturerErr: "You can only create assignments for your own courses!",
	})
	if err != nil {
		return nil, err
	}

	id, err := s.repo.CreateAssignment(ctx, a)
	if err != nil {
		return nil, err
	}
	a.ID = id
	return &a, nil
}

// AssignmentsForCourse lists a course's assignments, visibility-checked.
func (s *Service) AssignmentsForCourse(ctx context.Context, sess *shared.Session, courseCode string) ([]Assignment, error) {
	if _, err := s.GetCourse(ctx, courseCode); err != nil {
		return nil, err
	}
	err := s.visibility.Check(ctx, sess, courseCode, authz.Messages{
		StudentErr:  "You can only view assignments for your courses!",
		LecturerErr: "You can only view assignments for your courses!",
	})
	if err != nil {
		return nil, err
	}

	list, err := s.repo.AssignmentsByCourse(ctx, courseCode)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, httpx.Fail(httpx.ErrNotFound, "There are no assignments for this course!")
	}
	return list, nil
}

func (s *Service) requireAssignment(ctx context.Context, id int64) (*Assignment, error) {
	a, err := s.repo.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, httpx.Fail(httpx.ErrNotFound, "There is no assignment with that ID!")
	}
	return a, nil
}

// Submit stores an uploaded answer file and records the submission for the
// session's student. The student must be enrolled in the assignment's course.
func (s *Service) Submit(ctx context.Context, sess *shared.Session, assignmentID int64, filename string, file io.Reader) (*Submission, error) {
	a, err := s.requireAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	studentID, found, err := s.repo.StudentIDByAccount(ctx, sess.AccountID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, httpx.Fail(httpx.ErrForbidden, "You are not enrolled in this course!")
	}
	enrolled, err := s.repo.IsEnrolled(ctx, studentID, a.CourseCode)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, httpx.Fail(httpx.ErrForbidden, "You are not enrolled in this course!")
	}

	rel := fmt.Sprintf("assignments/%d/%d_%s%s", assignmentID, studentID, uuid.NewString(), path.Ext(filename))
	stored, err := s.files.Save(rel, file)
	if err != nil {
		return nil, err
	}

	sub := Submission{
		AssignmentID:   assignmentID,
		StudentID:      studentID,
		SubmissionTime: s.now().UTC(),
		FilePath:       stored,
	}
	id, err := s.repo.CreateSubmission(ctx, sub)
	if err != nil {
		return nil, err
	}
	sub.ID = id
	return &sub, nil
}

// Submissions lists an assignment's submissions. Lecturers and admins see
// every row; a student sees only their own.
func (s *Service) Submissions(ctx context.Context, sess *shared.Session, assignmentID int64) ([]Submission, error) {
	if _, err := s.requireAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}

	if sess.Role == shared.RoleStudent {
		studentID, found, err := s.repo.StudentIDByAccount(ctx, sess.AccountID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, httpx.Fail(httpx.ErrForbidden, "You can only view your own submissions!")
		}
		return s.repo.SubmissionsByStudent(ctx, assignmentID, studentID)
	}
	return s.repo.SubmissionsByAssignment(ctx, assignmentID)
}

// Submission fetches a single submission; students may only fetch their own.
func (s *Service) Submission(ctx context.Context, sess *shared.Session, assignmentID, submissionID int64) (*Submission, error) {
	sub, err := s.repo.GetSubmission(ctx, assignmentID, submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, httpx.Fail(httpx.ErrNotFound, "There is no submission with that ID!")
	}

	if sess.Role == shared.RoleStudent {
		studentID, found, err := s.repo.StudentIDByAccount(ctx, sess.AccountID)
		if err != nil {
			return nil, err
		}
		if !found || studentID != sub.StudentID {
			return nil, httpx.Fail(httpx.ErrForbidden, "You can only view your own submissions!")
		}
	}
	return sub, nil
}

// Grade records a grade on a submission. The grade must lie within the
// assignment's total marks.
func (s *Service) Grade(ctx context.Context, sess *shared.Session, assignmentID, submissionID int64, grade float64) (*Submission, error) {
	a, err := s.requireAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	err = s.visibility.Check(ctx, sess, a.CourseCode, authz.Messages{
		LecturerErr: "You can only grade submissions for your own courses!",
	})
	if err != nil {
		return nil, err
	}

	sub, err := s.repo.GetSubmission(ctx, assignmentID, submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, httpx.Fail(httpx.ErrNotFound, "There is no submission with that ID!")
	}

	if grade < 0 || grade > a.TotalMarks {
		return nil, httpx.Fail(httpx.ErrValidation, "Grade must be between 0 and the total marks!")
	}
	if err := s.repo.SetGrade(ctx, submissionID, grade); err != nil {
		return nil, err
	}
	sub.Grade = &grade
	return sub, nil
}

// CreateSection adds a material section under a course.
func (s *Service) CreateSection(ctx context.Context, sess *shared.Session, courseCode, name string) (*Section, error) {
	if _, err := s.GetCourse(ctx, courseCode); err != nil {
		return nil, err
	}
	err := s.visibility.Check(ctx, sess, courseCode, authz.Messages{
		LecturerErr: "You can only create sections for your own courses!",
	})
	if err != nil {
		return nil, err
	}

	id, err := s.repo.CreateSection(ctx, courseCode, name)
	if err != nil {
		return nil, err
	}
	return &Section{ID: id, CourseCode: courseCode, Name: name}, nil
}

// Sections lists a course's sections, visibility-checked.
func (s *Service) Sections(ctx context.Context, sess *shared.Session, courseCode string) ([]Section, error) {
	if _, err := s.GetCourse(ctx, courseCode); err != nil {
		return nil, err
	}
	err := s.visibility.Check(ctx, sess, courseCode, authz.Messages{
		StudentErr:  "You can only view sections for your courses!",
		LecturerErr: "You can only view sections for your courses!",
	})
	if err != nil {
		return nil, err
	}
	return s.repo.SectionsByCourse(ctx, courseCode)
}

// Section fetches one section of a course.
func (s *Service) Section(ctx context.Context, sess *shared.Session, courseCode string, sectionID int64) (*Section, error) {
	if _, err := s.GetCourse(ctx, courseCode); err != nil {
		return nil, err
	}
	err := s.visibility.Check(ctx, sess, courseCode, authz.Messages{
		StudentErr:  "You can only view sections for your courses!",
		LecturerErr: "You can only view sections for your courses!",
	})
	if err != nil {
		return nil, err
	}
	return s.requireSection(ctx, courseCode, sectionID)
}

func (s *Service) requireSection(ctx context.Context, courseCode string, sectionID int64) (*Section, error) {
	sec, err := s.repo.GetSection(ctx, courseCode, sectionID)
	if err != nil {
		return nil, err
	}
	if sec == nil {
		return nil, httpx.Fail(httpx.ErrNotFound, "There is no section with that ID!")
	}
	return sec, nil
}

// NewSectionItem is the input to CreateSectionItem. When File is non-nil the
// upload is stored and wins over any posted file location.
type NewSectionItem struct {
	Title        string
	Description  *string
	Deadline     *time.Time
	Link         *string
	FileLocation *string
	FileName     string
	File         io.Reader
}

// CreateSectionItem adds one item of material under a section, storing the
// uploaded file when present.
func (s *Service) CreateSectionItem(ctx context.Context, sess *shared.Session, courseCode string, sectionID int64, in NewSectionItem) (*SectionItem, error) {
	if _, err := s.GetCourse(ctx, courseCode); err != nil {
		return nil, err
	}
	err := s.visibility.Check(ctx, sess, courseCode, authz.Messages{
		LecturerErr: "You can only add items to sections of your own courses!",
	})
	if err != nil {
		return nil, err
	}
	sec, err := s.requireSection(ctx, courseCode, sectionID)
	if err != nil {
		return nil, err
	}

	item := SectionItem{
		SectionID:    sec.ID,
		Title:        in.Title,
		Description:  in.Description,
		Deadline:     in.Deadline,
		Link:         in.Link,
		FileLocation: in.FileLocation,
	}
	if in.File != nil {
		rel := fmt.Sprintf("course-sections/%s/%d/%s%s", courseCode, sectionID, uuid.NewString(), path.Ext(in.FileName))
		stored, err := s.files.Save(rel, in.File)
		if err != nil {
			return nil, err
		}
		item.FileLocation = &stored
	}

	id, err := s.repo.CreateSectionItem(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = id
	return &item, nil
}

// SectionItemFile opens the stored file of a section item for streaming. The
// caller must close the returned file.
func (s *Service) SectionItemFile(ctx context.Context, sess *shared.Session, courseCode string, sectionID, itemID int64) (*os.File, error) {
	if _, err := s.Section(ctx, sess, courseCode, sectionID); err != nil {
		return nil, err
	}

	item, err := s.repo.GetSectionItem(ctx, sectionID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, httpx.Fail(httpx.ErrNotFound, "There is no item with that ID!")
	}
	if item.FileLocation == nil {
		return nil, httpx.Fail(httpx.ErrNotFound, "There is no file for this item!")
	}

	f, err := s.files.Open(*item.FileLocation)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, httpx.Fail(httpx.ErrNotFound, "There is no file for this item!")
		}
		return nil, err
	}
	return f, nil
}
