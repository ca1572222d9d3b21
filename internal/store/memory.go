package store

import (
	"context"
	"fmt"
	"sync"

	"unirecords/internal/apperr"
	"unirecords/internal/shared"
)

// Memory implements Store on in-process maps. It backs the engine's unit
// tests and mirrors the Mongo implementation's error contract exactly.
// Writes take the lock for their whole call, so a batch create is atomic,
// but two interleaved read-modify-write sequences on the same record are
// not isolated from each other, matching the production store.
type Memory struct {
	mu sync.RWMutex

	students    map[string]*shared.Student    // keyed by email
	instructors map[string]*shared.Instructor // keyed by role + "/" + email
	courses     []*shared.Course

	courseDepartments []shared.CourseDepartment
	courseDoctors     []shared.CourseInstructor
	courseAssistants  []shared.CourseInstructor

	records   []*shared.GradeRecord
	petitions []*shared.Petition

	nextID int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		students:    make(map[string]*shared.Student),
		instructors: make(map[string]*shared.Instructor),
	}
}

// ============================================================================
// Seeding (test setup)
// ============================================================================

// AddStudent registers a student. The account ID is taken from the struct.
func (m *Memory) AddStudent(student shared.Student) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := student
	m.students[student.Email] = &copied
}

// AddInstructor registers a doctor or assistant.
func (m *Memory) AddInstructor(instructor shared.Instructor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := instructor
	m.instructors[instructor.Role+"/"+instructor.Email] = &copied
}

// AddCourse registers a course and links it to the given departments.
func (m *Memory) AddCourse(course shared.Course, departments ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := course
	m.courses = append(m.courses, &copied)
	for _, department := range departments {
		m.courseDepartments = append(m.courseDepartments, shared.CourseDepartment{
			CourseID:   course.ID,
			Department: department,
		})
	}
}

// AssignInstructor links an instructor account to a course in the relation
// matching role.
func (m *Memory) AssignInstructor(courseID, accountID, role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link := shared.CourseInstructor{CourseID: courseID, AccountID: accountID}
	if role == shared.RoleAssistant {
		m.courseAssistants = append(m.courseAssistants, link)
	} else {
		m.courseDoctors = append(m.courseDoctors, link)
	}
}

// AddGradeRecord inserts a record directly, bypassing registration.
func (m *Memory) AddGradeRecord(record shared.GradeRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := record
	if copied.ID == "" {
		copied.ID = m.generateID()
	}
	m.records = append(m.records, &copied)
}

// Petitions returns the stored petitions, for test assertions.
func (m *Memory) Petitions() []shared.Petition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]shared.Petition, 0, len(m.petitions))
	for _, petition := range m.petitions {
		result = append(result, *petition)
	}
	return result
}

func (m *Memory) generateID() string {
	m.nextID++
	return fmt.Sprintf("MEM_%d", m.nextID)
}

// ============================================================================
// Store Implementation
// ============================================================================

func (m *Memory) FindStudent(ctx context.Context, email string) (*shared.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	student, ok := m.students[email]
	if !ok {
		return nil, apperr.NotFound("student not found: %s", email)
	}
	copied := *student
	return &copied, nil
}

func (m *Memory) FindInstructor(ctx context.Context, email, role string) (*shared.Instructor, error) {
	if !shared.IsInstructorRole(role) {
		return nil, apperr.Validation("invalid instructor role: %s", role)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	instructor, ok := m.instructors[role+"/"+email]
	if !ok {
		return nil, apperr.NotFound("%s not found: %s", role, email)
	}
	copied := *instructor
	return &copied, nil
}

func (m *Memory) FindCourse(ctx context.Context, code, faculty string) (*shared.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, course := range m.courses {
		if course.Code == code && course.Faculty == faculty {
			copied := *course
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("course not found: %s", code)
}

func (m *Memory) FindCourseByCode(ctx context.Context, code string) (*shared.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	course := m.courseByCode(code)
	if course == nil {
		return nil, apperr.NotFound("course not found: %s", code)
	}
	copied := *course
	return &copied, nil
}

func (m *Memory) courseByCode(code string) *shared.Course {
	for _, course := range m.courses {
		if course.Code == code {
			return course
		}
	}
	return nil
}

func (m *Memory) courseByID(id string) *shared.Course {
	for _, course := range m.courses {
		if course.ID == id {
			return course
		}
	}
	return nil
}

func (m *Memory) FindGradeRecord(ctx context.Context, studentEmail, courseCode string) (*shared.GradeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	student, ok := m.students[studentEmail]
	if !ok {
		return nil, apperr.NotFound("student not found: %s", studentEmail)
	}
	course := m.courseByCode(courseCode)
	if course == nil {
		return nil, apperr.NotFound("course not found: %s", courseCode)
	}

	for _, record := range m.records {
		if record.StudentID == student.AccountID && record.CourseID == course.ID {
			copied := *record
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("student %s is not registered in course %s", studentEmail, courseCode)
}

func (m *Memory) ListGradeRecords(ctx context.Context, studentEmail string, filter shared.RecordFilter) ([]shared.RecordWithCourse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	student, ok := m.students[studentEmail]
	if !ok {
		return nil, apperr.NotFound("student not found: %s", studentEmail)
	}

	var result []shared.RecordWithCourse
	for _, record := range m.records {
		if record.StudentID != student.AccountID {
			continue
		}
		course := m.courseByID(record.CourseID)
		if course == nil {
			continue
		}
		if !matchesFilter(*course, filter) {
			continue
		}
		result = append(result, shared.RecordWithCourse{Record: *record, Course: *course})
	}
	return result, nil
}

func (m *Memory) ListRoster(ctx context.Context, courseCode string) ([]shared.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	course := m.courseByCode(courseCode)
	if course == nil {
		return nil, apperr.NotFound("course not found: %s", courseCode)
	}

	var result []shared.Student
	for _, record := range m.records {
		if record.CourseID != course.ID {
			continue
		}
		for _, student := range m.students {
			if student.AccountID == record.StudentID {
				result = append(result, *student)
				break
			}
		}
	}
	return result, nil
}

func (m *Memory) CoursesForInstructor(ctx context.Context, email, role string) ([]shared.Course, error) {
	instructor, err := m.FindInstructor(ctx, email, role)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	relation := m.courseDoctors
	if role == shared.RoleAssistant {
		relation = m.courseAssistants
	}

	var result []shared.Course
	for _, link := range relation {
		if link.AccountID != instructor.AccountID {
			continue
		}
		if course := m.courseByID(link.CourseID); course != nil {
			result = append(result, *course)
		}
	}
	return result, nil
}

func (m *Memory) EligibleCourses(ctx context.Context, department string, semester int32, faculty string) ([]shared.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	linked := make(map[string]bool)
	for _, link := range m.courseDepartments {
		if link.Department == department {
			linked[link.CourseID] = true
		}
	}

	var result []shared.Course
	for _, course := range m.courses {
		if linked[course.ID] && course.Semester == semester && course.Faculty == faculty {
			result = append(result, *course)
		}
	}
	return result, nil
}

func (m *Memory) ResolveCourses(ctx context.Context, codes []string, faculty string) ([]shared.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := make(map[string]bool, len(codes))
	for _, code := range codes {
		wanted[code] = true
	}

	var result []shared.Course
	for _, course := range m.courses {
		if wanted[course.Code] && course.Faculty == faculty {
			result = append(result, *course)
		}
	}
	return result, nil
}

func (m *Memory) CreateGradeRecords(ctx context.Context, studentID string, courseIDs []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := make(map[string]bool)
	for _, record := range m.records {
		if record.StudentID == studentID {
			existing[record.CourseID] = true
		}
	}

	created := 0
	for _, courseID := range courseIDs {
		if existing[courseID] {
			continue
		}
		existing[courseID] = true
		m.records = append(m.records, &shared.GradeRecord{
			ID:        m.generateID(),
			StudentID: studentID,
			CourseID:  courseID,
			MidTerm:   shared.Float64Ptr(0),
			FinalExam: shared.Float64Ptr(0),
			Quizzes:   shared.Float64Ptr(0),
			Practical: shared.Float64Ptr(0),
			Total:     0,
		})
		created++
	}
	return created, nil
}

func (m *Memory) UpdateGradeRecord(ctx context.Context, record *shared.GradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, stored := range m.records {
		if stored.ID == record.ID {
			copied := *record
			m.records[i] = &copied
			return nil
		}
	}
	return apperr.NotFound("grade record not found: %s", record.ID)
}

func (m *Memory) SetRegistrationComplete(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	student, ok := m.students[email]
	if !ok {
		return apperr.NotFound("student not found: %s", email)
	}
	student.HasRegistered = true
	return nil
}

func (m *Memory) SavePetition(ctx context.Context, petition *shared.Petition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *petition
	if copied.ID == "" {
		copied.ID = m.generateID()
	}
	m.petitions = append(m.petitions, &copied)
	return nil
}
