package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"unirecords/internal/gateway/util"
	"unirecords/internal/grading"
	"unirecords/internal/shared"
)

// InstructorHandler serves the instructor-facing endpoints: taught courses,
// rosters, per-student records, and grade updates.
type InstructorHandler struct {
	Grading *grading.Service
}

// GradeUpdateRequest mirrors the JSON input for PUT /courses/{code}/grades.
// Omitted components leave the stored values unchanged.
type GradeUpdateRequest struct {
	StudentEmail string   `json:"student_email" validate:"required,email"`
	MidTerm      *float64 `json:"mid_term"`
	FinalExam    *float64 `json:"final_exam"`
	Quizzes      *float64 `json:"quizzes"`
	Practical    *float64 `json:"practical"`
}

// requireInstructor checks the caller holds an instructor role and returns
// the account, or nil after writing the error response.
func requireInstructor(w http.ResponseWriter, r *http.Request) *shared.Account {
	account := AccountFromContext(r)
	if account == nil || !shared.IsInstructorRole(account.Role) {
		util.WriteJSONError(w, http.StatusForbidden, "forbidden", "access denied: instructor endpoint")
		return nil
	}
	return account
}

// GetProfile handles GET /instructors/{email}.
func (h *InstructorHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	account := requireInstructor(w, r)
	if account == nil {
		return
	}

	email := chi.URLParam(r, "email")
	if email != account.Email {
		util.WriteJSONError(w, http.StatusForbidden, "forbidden", "access denied: not your record")
		return
	}

	instructor, err := h.Grading.InstructorProfile(r.Context(), email, account.Role)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, instructor)
}

// Courses handles GET /instructors/{email}/courses.
func (h *InstructorHandler) Courses(w http.ResponseWriter, r *http.Request) {
	account := requireInstructor(w, r)
	if account == nil {
		return
	}

	email := chi.URLParam(r, "email")
	if email != account.Email {
		util.WriteJSONError(w, http.StatusForbidden, "forbidden", "access denied: not your record")
		return
	}

	courses, err := h.Grading.InstructorCourses(r.Context(), email, account.Role)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"courses": courses,
		"total":   len(courses),
	})
}

// Roster handles GET /courses/{code}/roster. The course must be one the
// caller teaches.
func (h *InstructorHandler) Roster(w http.ResponseWriter, r *http.Request) {
	account := requireInstructor(w, r)
	if account == nil {
		return
	}

	courseCode := chi.URLParam(r, "code")
	students, err := h.Grading.CourseRoster(r.Context(), account.Email, account.Role, courseCode)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"course_code": courseCode,
		"students":    students,
		"total":       len(students),
	})
}

// StudentRecord handles GET /courses/{code}/records/{studentEmail}.
func (h *InstructorHandler) StudentRecord(w http.ResponseWriter, r *http.Request) {
	account := requireInstructor(w, r)
	if account == nil {
		return
	}

	courseCode := chi.URLParam(r, "code")
	studentEmail := chi.URLParam(r, "studentEmail")

	record, err := h.Grading.StudentCourseRecord(r.Context(), account.Email, account.Role, courseCode, studentEmail)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, record)
}

// UpdateGrade handles PUT /courses/{code}/grades.
func (h *InstructorHandler) UpdateGrade(w http.ResponseWriter, r *http.Request) {
	account := requireInstructor(w, r)
	if account == nil {
		return
	}

	var req GradeUpdateRequest
	if err := util.DecodeJSONBody(r, &req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}

	courseCode := chi.URLParam(r, "code")
	update := shared.GradeUpdate{
		StudentEmail: req.StudentEmail,
		MidTerm:      req.MidTerm,
		FinalExam:    req.FinalExam,
		Quizzes:      req.Quizzes,
		Practical:    req.Practical,
	}

	if err := h.Grading.UpdateGrade(r.Context(), account.Email, account.Role, courseCode, update); err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "grades updated successfully",
	})
}
