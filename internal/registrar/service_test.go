package registrar

import (
	"context"
	"testing"

	"unirecords/internal/apperr"
	"unirecords/internal/shared"
	"unirecords/internal/store"
)

const testStudentEmail = "student@test.edu"

// newTestStore seeds a computer-engineering student in semester 3 and a
// catalog spanning two departments, two semesters, and two faculties.
func newTestStore(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory()

	m.AddStudent(shared.Student{
		AccountID: "stud-1", Email: testStudentEmail, Name: "Student Test",
		Faculty: "Engineering", Department: "Computer Engineering",
		CurrentSemester: shared.Int32Ptr(3),
	})

	// Matches: department, semester, and faculty all line up.
	m.AddCourse(shared.Course{
		ID: "c-cs101", Code: "CS101", Name: "Intro to Programming",
		CreditHours: shared.Int32Ptr(3), Faculty: "Engineering", Semester: 3,
	}, "Computer Engineering")
	m.AddCourse(shared.Course{
		ID: "c-cs102", Code: "CS102", Name: "Discrete Mathematics",
		CreditHours: shared.Int32Ptr(2), Faculty: "Engineering", Semester: 3,
	}, "Computer Engineering")
	// Wrong semester.
	m.AddCourse(shared.Course{
		ID: "c-ee201", Code: "EE201", Name: "Circuit Analysis",
		CreditHours: shared.Int32Ptr(4), Faculty: "Engineering", Semester: 4,
	}, "Computer Engineering")
	// Wrong department.
	m.AddCourse(shared.Course{
		ID: "c-me301", Code: "ME301", Name: "Thermodynamics",
		CreditHours: shared.Int32Ptr(3), Faculty: "Engineering", Semester: 3,
	}, "Mechanical Engineering")
	// Wrong faculty.
	m.AddCourse(shared.Course{
		ID: "c-bio101", Code: "BIO101", Name: "Cell Biology",
		CreditHours: shared.Int32Ptr(3), Faculty: "Science", Semester: 3,
	}, "Computer Engineering")

	return m
}

func TestAvailableCourses(t *testing.T) {
	ctx := context.Background()

	t.Run("MatchesDepartmentSemesterAndFaculty", func(t *testing.T) {
		m := newTestStore(t)
		service := NewService(m)

		courses, err := service.AvailableCourses(ctx, testStudentEmail)
		if err != nil {
			t.Fatalf("AvailableCourses failed: %v", err)
		}
		if len(courses) != 2 {
			t.Fatalf("Expected 2 eligible courses, got %d", len(courses))
		}
		codes := map[string]bool{courses[0].Code: true, courses[1].Code: true}
		if !codes["CS101"] || !codes["CS102"] {
			t.Errorf("Expected CS101 and CS102, got %v", codes)
		}
	})

	t.Run("InvalidStateWithoutSemester", func(t *testing.T) {
		m := newTestStore(t)
		m.AddStudent(shared.Student{
			AccountID: "stud-2", Email: "fresh@test.edu",
			Faculty: "Engineering", Department: "Computer Engineering",
			CurrentSemester: nil,
		})
		service := NewService(m)

		_, err := service.AvailableCourses(ctx, "fresh@test.edu")
		if apperr.KindOf(err) != apperr.KindInvalidState {
			t.Fatalf("Expected InvalidState, got %v", err)
		}
	})

	t.Run("UnknownStudentNotFound", func(t *testing.T) {
		m := newTestStore(t)
		service := NewService(m)

		_, err := service.AvailableCourses(ctx, "ghost@test.edu")
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Fatalf("Expected NotFound, got %v", err)
		}
	})
}

func TestRegisterCourses(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesZeroInitializedRecords", func(t *testing.T) {
		m := newTestStore(t)
		service := NewService(m)

		created, err := service.RegisterCourses(ctx, testStudentEmail, []string{"CS101", "CS102"})
		if err != nil {
			t.Fatalf("RegisterCourses failed: %v", err)
		}
		if created != 2 {
			t.Errorf("Expected 2 created records, got %d", created)
		}

		record, err := m.FindGradeRecord(ctx, testStudentEmail, "CS101")
		if err != nil {
			t.Fatalf("Record not created: %v", err)
		}
		if record.MidTerm == nil || *record.MidTerm != 0 || record.Total != 0 {
			t.Errorf("Expected zero-initialized record, got %+v", record)
		}
	})

	t.Run("DropsUnresolvedCodes", func(t *testing.T) {
		m := newTestStore(t)
		service := NewService(m)

		// BIO101 exists in another faculty; NOPE does not exist at all.
		created, err := service.RegisterCourses(ctx, testStudentEmail, []string{"CS101", "BIO101", "NOPE"})
		if err != nil {
			t.Fatalf("RegisterCourses failed: %v", err)
		}
		if created != 1 {
			t.Errorf("Expected only CS101 to register, got %d", created)
		}
		if _, err := m.FindGradeRecord(ctx, testStudentEmail, "BIO101"); apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("Cross-faculty course must not register")
		}
	})

	t.Run("ValidationWhenNothingResolves", func(t *testing.T) {
		m := newTestStore(t)
		service := NewService(m)

		_, err := service.RegisterCourses(ctx, testStudentEmail, []string{"NOPE", "ALSO-NOPE"})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("Expected Validation, got %v", err)
		}
	})

	t.Run("RepeatRegistrationIsIdempotent", func(t *testing.T) {
		m := newTestStore(t)
		service := NewService(m)

		if _, err := service.RegisterCourses(ctx, testStudentEmail, []string{"CS101"}); err != nil {
			t.Fatalf("First registration failed: %v", err)
		}

		// Grade the record, then register the same course again.
		record, _ := m.FindGradeRecord(ctx, testStudentEmail, "CS101")
		record.MidTerm = shared.Float64Ptr(15)
		record.Total = 15
		if err := m.UpdateGradeRecord(ctx, record); err != nil {
			t.Fatalf("UpdateGradeRecord failed: %v", err)
		}

		created, err := service.RegisterCourses(ctx, testStudentEmail, []string{"CS101", "CS102"})
		if err != nil {
			t.Fatalf("Second registration failed: %v", err)
		}
		if created != 1 {
			t.Errorf("Expected only CS102 to create a record, got %d", created)
		}

		// Existing marks survive the re-registration.
		record, _ = m.FindGradeRecord(ctx, testStudentEmail, "CS101")
		if record.MidTerm == nil || *record.MidTerm != 15 || record.Total != 15 {
			t.Errorf("Re-registration overwrote marks: %+v", record)
		}
	})

	t.Run("SemesterNotCheckedAtRegistration", func(t *testing.T) {
		// Eligibility narrows the browsing list; registration only requires
		// the code to resolve within the faculty.
		m := newTestStore(t)
		service := NewService(m)

		created, err := service.RegisterCourses(ctx, testStudentEmail, []string{"EE201"})
		if err != nil {
			t.Fatalf("RegisterCourses failed: %v", err)
		}
		if created != 1 {
			t.Errorf("Expected EE201 to register, got %d", created)
		}
	})
}

func TestCompleteRegistration(t *testing.T) {
	ctx := context.Background()
	m := newTestStore(t)
	service := NewService(m)

	if err := service.CompleteRegistration(ctx, testStudentEmail); err != nil {
		t.Fatalf("CompleteRegistration failed: %v", err)
	}

	student, err := m.FindStudent(ctx, testStudentEmail)
	if err != nil {
		t.Fatalf("FindStudent failed: %v", err)
	}
	if !student.HasRegistered {
		t.Error("Expected HasRegistered to be set")
	}

	if err := service.CompleteRegistration(ctx, "ghost@test.edu"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("Expected NotFound for unknown student, got %v", err)
	}
}

func TestSubmitPetition(t *testing.T) {
	ctx := context.Background()

	t.Run("SavesPetition", func(t *testing.T) {
		m := newTestStore(t)
		service := NewService(m)

		petition, err := service.SubmitPetition(ctx, testStudentEmail, "Advanced Robotics", "Please open this course next term.")
		if err != nil {
			t.Fatalf("SubmitPetition failed: %v", err)
		}
		if petition.Date.IsZero() {
			t.Error("Expected petition date to be set")
		}

		stored := m.Petitions()
		if len(stored) != 1 || stored[0].CourseName != "Advanced Robotics" {
			t.Errorf("Petition not stored correctly: %v", stored)
		}
	})

	t.Run("ValidationOnEmptyFields", func(t *testing.T) {
		m := newTestStore(t)
		service := NewService(m)

		if _, err := service.SubmitPetition(ctx, testStudentEmail, "", "text"); apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("Expected Validation for empty course name, got %v", err)
		}
		if _, err := service.SubmitPetition(ctx, testStudentEmail, "Course", ""); apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("Expected Validation for empty text, got %v", err)
		}
	})

	t.Run("UnknownStudentNotFound", func(t *testing.T) {
		m := newTestStore(t)
		service := NewService(m)

		if _, err := service.SubmitPetition(ctx, "ghost@test.edu", "Course", "text"); apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("Expected NotFound, got %v", err)
		}
	})
}
