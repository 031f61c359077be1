package courses

import (
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aula-lms/aula-lms/internal/authz"
	"github.com/aula-lms/aula-lms/internal/platform/httpx"
	"github.com/aula-lms/aula-lms/internal/shared"
)

// Uploads above this size spill to disk while parsing multipart bodies.
const maxUploadMemory = 10 << 20

// Handler wires the HTTP endpoints for courses and their sub-resources.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      authz.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		gate:      gate,
		validator: validator.New(),
	}
}

// MountRoutes registers course routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.gate.Require(shared.RoleAdmin))
			r.Post("/", h.createCourse)
			r.Patch("/{code}", h.updateCourse)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.gate.Require(shared.RoleStudent))
			r.Post("/register/{code}", h.register)
			r.Delete("/unregister/{code}", h.unregister)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.gate.Require(shared.RoleLecturer, shared.RoleAdmin))
			r.Post("/{code}/assignments", h.createAssignment)
			r.Post("/assignments/{id}/submissions/{sid}/grade", h.grade)
			r.Post("/{code}/sections", h.createSection)
			r.Post("/{code}/sections/{id}", h.createSectionItem)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.gate.Require(shared.RoleStudent))
			r.Post("/assignments/{id}/submit", h.submit)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.gate.Require())
			r.Get("/", h.listCourses)
			r.Get("/{code}", h.getCourse)
			r.Get("/student/{student_id}", h.coursesForStudent)
			r.Get("/lecturer/{lecturer_id}", h.coursesForLecturer)
			r.Get("/{code}/members", h.members)
			r.Get("/{code}/assignments", h.assignments)
			r.Get("/assignments/{id}/submissions", h.submissions)
			r.Get("/assignments/{id}/submissions/{sid}", h.submission)
			r.Get("/{code}/sections", h.sections)
			r.Get("/{code}/sections/{id}", h.section)
			r.Get("/{code}/sections/{id}/{item_id}/file", h.sectionItemFile)
		})
	})
}

type createCourseRequest struct {
	Code       string `json:"course_code" validate:"required"`
	Name       string `json:"course_name" validate:"required"`
	LecturerID int64  `json:"lecturer_id" validate:"required"`
	Semester   int    `json:"semester" validate:"required"`
}

func (h *Handler) createCourse(w http.ResponseWriter, r *http.Request) {
	var req createCourseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}

	c, err := h.service.CreateCourse(r.Context(), Course{
		Code:       req.Code,
		Name:       req.Name,
		LecturerID: req.LecturerID,
		Semester:   req.Semester,
	})
	if err != nil {
		h.logError(r, "create course", err)
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, c)
}

type updateCourseRequest struct {
	Name       *string `json:"course_name"`
	LecturerID *int64  `json:"lecturer_id"`
	Semester   *int    `json:"semester"`
}

func (h *Handler) updateCourse(w http.ResponseWriter, r *http.Request) {
	var req updateCourseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	c, err := h.service.UpdateCourse(r.Context(), chi.URLParam(r, "code"), CoursePatch{
		Name:       req.Name,
		LecturerID: req.LecturerID,
		Semester:   req.Semester,
	})
	if err != nil {
		h.logError(r, "update course", err)
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) listCourses(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListCourses(r.Context())
	if err != nil {
		h.logError(r, "list courses", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) getCourse(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetCourse(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.logError(r, "get course", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) coursesForStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.pathID(w, r, "student_id")
	if !ok {
		return
	}

	list, err := h.service.CoursesForStudent(r.Context(), shared.SessionFromContext(r.Context()), studentID)
	if err != nil {
		h.logError(r, "courses for student", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) coursesForLecturer(w http.ResponseWriter, r *http.Request) {
	lecturerID, ok := h.pathID(w, r, "lecturer_id")
	if !ok {
		return
	}

	list, err := h.service.CoursesForLecturer(r.Context(), lecturerID)
	if err != nil {
		h.logError(r, "courses for lecturer", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	enr, err := h.service.Register(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"))
	if err != nil {
		h.logError(r, "register for course", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, enr)
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	enr, err := h.service.Unregister(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"))
	if err != nil {
		h.logError(r, "unregister from course", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, enr)
}

func (h *Handler) members(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Members(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"))
	if err != nil {
		h.logError(r, "course members", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

type createAssignmentRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description *string   `json:"description"`
	Deadline    time.Time `json:"deadline" validate:"required"`
	TotalMarks  float64   `json:"total_marks" validate:"required,gt=0"`
}

func (h *Handler) createAssignment(w http.ResponseWriter, r *http.Request) {
	var req createAssignmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}

	a, err := h.service.CreateAssignment(r.Context(), shared.SessionFromContext(r.Context()), Assignment{
		CourseCode:  chi.URLParam(r, "code"),
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		TotalMarks:  req.TotalMarks,
	})
	if err != nil {
		h.logError(r, "create assignment", err)
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, a)
}

func (h *Handler) assignments(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.AssignmentsForCourse(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"))
	if err != nil {
		h.logError(r, "list assignments", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Missing file!")
		return
	}
	defer file.Close()

	sub, err := h.service.Submit(r.Context(), shared.SessionFromContext(r.Context()), assignmentID, header.Filename, file)
	if err != nil {
		h.logError(r, "submit assignment", err)
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, sub)
}

func (h *Handler) submissions(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	list, err := h.service.Submissions(r.Context(), shared.SessionFromContext(r.Context()), assignmentID)
	if err != nil {
		h.logError(r, "list submissions", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) submission(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	submissionID, ok := h.pathID(w, r, "sid")
	if !ok {
		return
	}

	sub, err := h.service.Submission(r.Context(), shared.SessionFromContext(r.Context()), assignmentID, submissionID)
	if err != nil {
		h.logError(r, "get submission", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
}

type gradeRequest struct {
	Grade *float64 `json:"grade" validate:"required"`
}

func (h *Handler) grade(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	submissionID, ok := h.pathID(w, r, "sid")
	if !ok {
		return
	}

	var req gradeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}

	sub, err := h.service.Grade(r.Context(), shared.SessionFromContext(r.Context()), assignmentID, submissionID, *req.Grade)
	if err != nil {
		h.logError(r, "grade submission", err)
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, sub)
}

type createSectionRequest struct {
	Name string `json:"section_name" validate:"required"`
}

func (h *Handler) createSection(w http.ResponseWriter, r *http.Request) {
	var req createSectionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}

	sec, err := h.service.CreateSection(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"), req.Name)
	if err != nil {
		h.logError(r, "create section", err)
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, sec)
}

func (h *Handler) sections(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Sections(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"))
	if err != nil {
		h.logError(r, "list sections", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) section(w http.ResponseWriter, r *http.Request) {
	sectionID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	sec, err := h.service.Section(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"), sectionID)
	if err != nil {
		h.logError(r, "get section", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sec)
}

func (h *Handler) createSectionItem(w http.ResponseWriter, r *http.Request) {
	sectionID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}

	title := r.FormValue("title")
	if title == "" {
		httpx.Message(w, http.StatusBadRequest, "Missing data for required field.")
		return
	}

	in := NewSectionItem{
		Title:        title,
		Description:  optionalForm(r, "description"),
		Link:         optionalForm(r, "link"),
		FileLocation: optionalForm(r, "file_location"),
	}
	if raw := r.FormValue("deadline"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.Message(w, http.StatusBadRequest, "Invalid deadline!")
			return
		}
		in.Deadline = &t
	}
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		in.File = file
		in.FileName = header.Filename
	}

	item, err := h.service.CreateSectionItem(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"), sectionID, in)
	if err != nil {
		h.logError(r, "create section item", err)
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) sectionItemFile(w http.ResponseWriter, r *http.Request) {
	sectionID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathID(w, r, "item_id")
	if !ok {
		return
	}

	f, err := h.service.SectionItemFile(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"), sectionID, itemID)
	if err != nil {
		h.logError(r, "section item file", err)
		httpx.RespondError(w, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filepath.Base(f.Name())))
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = io.Copy(w, f)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid ID!")
		return 0, false
	}
	return id, true
}

func optionalForm(r *http.Request, name string) *string {
	if v := r.FormValue(name); v != "" {
		return &v
	}
	return nil
}

func (h *Handler) logError(r *http.Request, op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
}
