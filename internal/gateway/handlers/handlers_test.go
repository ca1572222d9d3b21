package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"unirecords/internal/gpa"
	"unirecords/internal/grading"
	"unirecords/internal/registrar"
	"unirecords/internal/shared"
	"unirecords/internal/store"
)

// newTestRouter wires the student and instructor handlers over a seeded
// in-memory store. Authentication is bypassed; each request carries its
// account directly in the context.
func newTestRouter(t *testing.T) (*chi.Mux, *store.Memory) {
	t.Helper()
	m := store.NewMemory()

	m.AddStudent(shared.Student{
		AccountID: "stud-1", Email: "student@test.edu", Name: "Student One",
		Faculty: "Engineering", Department: "Computer Engineering",
		CurrentSemester: shared.Int32Ptr(3),
	})
	m.AddInstructor(shared.Instructor{
		AccountID: "doc-1", Email: "doctor@test.edu", Name: "Dr. One",
		Faculty: "Engineering", Role: shared.RoleDoctor,
	})
	m.AddCourse(shared.Course{
		ID: "c-1", Code: "CS101", Name: "Intro to Programming",
		CreditHours: shared.Int32Ptr(3), Faculty: "Engineering", Semester: 3,
		HasPractical: true,
		MaxTotal:     shared.Float64Ptr(100),
	}, "Computer Engineering")
	m.AssignInstructor("c-1", "doc-1", shared.RoleDoctor)
	m.AddGradeRecord(shared.GradeRecord{
		ID: "rec-1", StudentID: "stud-1", CourseID: "c-1",
		MidTerm: shared.Float64Ptr(10), Total: 10,
	})

	studentHandler := &StudentHandler{
		Registrar: registrar.NewService(m),
		GPA:       gpa.NewService(m),
	}
	instructorHandler := &InstructorHandler{
		Grading: grading.NewService(m),
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/students/{email}", func(r chi.Router) {
			r.Get("/", studentHandler.GetProfile)
			r.Get("/available-courses", studentHandler.AvailableCourses)
			r.Post("/register-courses", studentHandler.RegisterCourses)
			r.Get("/gpa", studentHandler.SemesterGPA)
			r.Get("/cgpa", studentHandler.CumulativeGPA)
		})
		r.Route("/courses/{code}", func(r chi.Router) {
			r.Get("/roster", instructorHandler.Roster)
			r.Put("/grades", instructorHandler.UpdateGrade)
		})
	})
	return r, m
}

func doRequest(t *testing.T, router *chi.Mux, account *shared.Account, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if account != nil {
		req = req.WithContext(WithAccount(req.Context(), account))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func studentAccount() *shared.Account {
	return &shared.Account{ID: "stud-1", Email: "student@test.edu", Role: shared.RoleStudent}
}

func doctorAccount() *shared.Account {
	return &shared.Account{ID: "doc-1", Email: "doctor@test.edu", Role: shared.RoleDoctor}
}

func TestStudentEndpointAccess(t *testing.T) {
	t.Run("OwnProfile", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rec := doRequest(t, router, studentAccount(), http.MethodGet, "/api/students/student@test.edu/", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("OtherStudentsRecordForbidden", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rec := doRequest(t, router, studentAccount(), http.MethodGet, "/api/students/other@test.edu/", "")
		if rec.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", rec.Code)
		}
	})

	t.Run("InstructorForbiddenOnStudentEndpoint", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rec := doRequest(t, router, doctorAccount(), http.MethodGet, "/api/students/student@test.edu/", "")
		if rec.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", rec.Code)
		}
	})

	t.Run("UnauthenticatedForbidden", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rec := doRequest(t, router, nil, http.MethodGet, "/api/students/student@test.edu/", "")
		if rec.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", rec.Code)
		}
	})
}

func TestRegisterCoursesEndpoint(t *testing.T) {
	t.Run("ValidRequest", func(t *testing.T) {
		router, m := newTestRouter(t)
		m.AddCourse(shared.Course{
			ID: "c-2", Code: "CS102", Name: "Discrete Mathematics",
			CreditHours: shared.Int32Ptr(2), Faculty: "Engineering", Semester: 3,
		}, "Computer Engineering")

		rec := doRequest(t, router, studentAccount(), http.MethodPost,
			"/api/students/student@test.edu/register-courses", `{"course_codes":["CS102"]}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("EmptyCodesRejected", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rec := doRequest(t, router, studentAccount(), http.MethodPost,
			"/api/students/student@test.edu/register-courses", `{"course_codes":[]}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("UnknownFieldRejected", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rec := doRequest(t, router, studentAccount(), http.MethodPost,
			"/api/students/student@test.edu/register-courses", `{"course_codes":["CS101"],"admin":true}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})
}

func TestGPAEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("SemesterGPA", func(t *testing.T) {
		rec := doRequest(t, router, studentAccount(), http.MethodGet,
			"/api/students/student@test.edu/gpa?semester=3", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var body struct {
			Data struct {
				GPA float64 `json:"gpa"`
			} `json:"data"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if body.Data.GPA != 0.1 {
			t.Errorf("Expected GPA 0.1 (10/100), got %v", body.Data.GPA)
		}
	})

	t.Run("MissingSemesterRejected", func(t *testing.T) {
		rec := doRequest(t, router, studentAccount(), http.MethodGet,
			"/api/students/student@test.edu/gpa", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("CGPA", func(t *testing.T) {
		rec := doRequest(t, router, studentAccount(), http.MethodGet,
			"/api/students/student@test.edu/cgpa", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestGradeUpdateEndpoint(t *testing.T) {
	t.Run("DoctorUpdatesGrade", func(t *testing.T) {
		router, m := newTestRouter(t)
		rec := doRequest(t, router, doctorAccount(), http.MethodPut,
			"/api/courses/CS101/grades",
			`{"student_email":"student@test.edu","final_exam":45}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		record, err := m.FindGradeRecord(context.Background(), "student@test.edu", "CS101")
		if err != nil {
			t.Fatalf("FindGradeRecord failed: %v", err)
		}
		if record.FinalExam == nil || *record.FinalExam != 45 || record.Total != 55 {
			t.Errorf("Grade not applied: %+v", record)
		}
	})

	t.Run("StudentForbidden", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rec := doRequest(t, router, studentAccount(), http.MethodPut,
			"/api/courses/CS101/grades",
			`{"student_email":"student@test.edu","final_exam":45}`)
		if rec.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", rec.Code)
		}
	})

	t.Run("CourseNotTaughtForbidden", func(t *testing.T) {
		router, m := newTestRouter(t)
		m.AddCourse(shared.Course{
			ID: "c-9", Code: "EE999", Name: "Unassigned Course",
			Faculty: "Engineering", Semester: 3,
		}, "Computer Engineering")

		rec := doRequest(t, router, doctorAccount(), http.MethodPut,
			"/api/courses/EE999/grades",
			`{"student_email":"student@test.edu","mid_term":5}`)
		if rec.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", rec.Code)
		}
	})

	t.Run("RosterListsStudents", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rec := doRequest(t, router, doctorAccount(), http.MethodGet, "/api/courses/CS101/roster", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var body struct {
			Data struct {
				Total int `json:"total"`
			} `json:"data"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if body.Data.Total != 1 {
			t.Errorf("Expected 1 roster entry, got %d", body.Data.Total)
		}
	})
}
