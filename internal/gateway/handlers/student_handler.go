package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"unirecords/internal/gateway/util"
	"unirecords/internal/gpa"
	"unirecords/internal/registrar"
	"unirecords/internal/shared"
)

// StudentHandler serves the student-facing endpoints: profile, eligibility,
// registration, grade reports, GPA, and petitions.
type StudentHandler struct {
	Registrar *registrar.Service
	GPA       *gpa.Service
}

// RegisterCoursesRequest mirrors the JSON input for
// POST /students/{email}/register-courses.
type RegisterCoursesRequest struct {
	CourseCodes []string `json:"course_codes" validate:"required,min=1,dive,required"`
}

// PetitionRequest mirrors the JSON input for POST /students/{email}/petitions.
type PetitionRequest struct {
	CourseName string `json:"course_name" validate:"required"`
	Text       string `json:"text" validate:"required"`
}

// requireStudent checks the caller is a student acting on their own record.
// Returns the path email, or "" after writing the error response.
func requireStudent(w http.ResponseWriter, r *http.Request) string {
	account := AccountFromContext(r)
	if account == nil || account.Role != shared.RoleStudent {
		util.WriteJSONError(w, http.StatusForbidden, "forbidden", "access denied: student endpoint")
		return ""
	}

	email := chi.URLParam(r, "email")
	if email == "" {
		util.WriteJSONError(w, http.StatusBadRequest, "validation", "email is required")
		return ""
	}
	if email != account.Email {
		util.WriteJSONError(w, http.StatusForbidden, "forbidden", "access denied: not your record")
		return ""
	}
	return email
}

// GetProfile handles GET /students/{email}.
func (h *StudentHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	email := requireStudent(w, r)
	if email == "" {
		return
	}

	student, err := h.Registrar.StudentProfile(r.Context(), email)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, student)
}

// AvailableCourses handles GET /students/{email}/available-courses.
func (h *StudentHandler) AvailableCourses(w http.ResponseWriter, r *http.Request) {
	email := requireStudent(w, r)
	if email == "" {
		return
	}

	courses, err := h.Registrar.AvailableCourses(r.Context(), email)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"courses": courses,
		"total":   len(courses),
	})
}

// RegisterCourses handles POST /students/{email}/register-courses.
func (h *StudentHandler) RegisterCourses(w http.ResponseWriter, r *http.Request) {
	email := requireStudent(w, r)
	if email == "" {
		return
	}

	var req RegisterCoursesRequest
	if err := util.DecodeJSONBody(r, &req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}

	created, err := h.Registrar.RegisterCourses(r.Context(), email, req.CourseCodes)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":            "courses registered successfully",
		"courses_registered": created,
	})
}

// CompleteRegistration handles PUT /students/{email}/registration-complete.
func (h *StudentHandler) CompleteRegistration(w http.ResponseWriter, r *http.Request) {
	email := requireStudent(w, r)
	if email == "" {
		return
	}

	if err := h.Registrar.CompleteRegistration(r.Context(), email); err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "registration status updated successfully",
	})
}

// Records handles GET /students/{email}/records with an optional
// ?semester= query parameter.
func (h *StudentHandler) Records(w http.ResponseWriter, r *http.Request) {
	email := requireStudent(w, r)
	if email == "" {
		return
	}

	semesterStr := r.URL.Query().Get("semester")
	var (
		report *shared.GradeReport
		err    error
	)
	if semesterStr == "" {
		report, err = h.GPA.CumulativeReport(r.Context(), email)
	} else {
		semester, convErr := parseSemester(semesterStr)
		if convErr != nil {
			util.WriteJSONError(w, http.StatusBadRequest, "validation", "semester must be a positive integer")
			return
		}
		report, err = h.GPA.SemesterReport(r.Context(), email, semester)
	}
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, report)
}

// SemesterGPA handles GET /students/{email}/gpa?semester=N.
func (h *StudentHandler) SemesterGPA(w http.ResponseWriter, r *http.Request) {
	email := requireStudent(w, r)
	if email == "" {
		return
	}

	semester, err := parseSemester(r.URL.Query().Get("semester"))
	if err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "validation", "semester must be a positive integer")
		return
	}

	value, err := h.GPA.SemesterGPA(r.Context(), email, semester)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"semester": semester,
		"gpa":      value,
	})
}

// CumulativeGPA handles GET /students/{email}/cgpa.
func (h *StudentHandler) CumulativeGPA(w http.ResponseWriter, r *http.Request) {
	email := requireStudent(w, r)
	if email == "" {
		return
	}

	value, err := h.GPA.CumulativeGPA(r.Context(), email)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{"cgpa": value})
}

// SubmitPetition handles POST /students/{email}/petitions.
func (h *StudentHandler) SubmitPetition(w http.ResponseWriter, r *http.Request) {
	email := requireStudent(w, r)
	if email == "" {
		return
	}

	var req PetitionRequest
	if err := util.DecodeJSONBody(r, &req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}

	petition, err := h.Registrar.SubmitPetition(r.Context(), email, req.CourseName, req.Text)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, petition)
}

func parseSemester(value string) (int32, error) {
	semester, err := strconv.ParseInt(value, 10, 32)
	if err != nil || semester <= 0 {
		return 0, strconv.ErrSyntax
	}
	return int32(semester), nil
}
