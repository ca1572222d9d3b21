// Package store is the record store: it owns persisted students, courses,
// and grade records and exposes lookups by business keys (enrollment email,
// course code) rather than internal identifiers.
//
// Two implementations exist: Mongo for production and Memory for tests. Both
// honor the same error contract: lookups for entities that do not exist fail
// with an apperr NotFound, never a silent nil.
package store

import (
	"context"

	"unirecords/internal/shared"
)

// Store is the persistence boundary for the grading engine. Every method
// takes the request-scoped context; the Mongo implementation accepts a
// session context for transactional calls.
type Store interface {
	// FindStudent resolves a student by enrollment email.
	FindStudent(ctx context.Context, email string) (*shared.Student, error)

	// FindInstructor resolves a doctor or assistant by email. Role selects
	// which profile set is consulted.
	FindInstructor(ctx context.Context, email, role string) (*shared.Instructor, error)

	// FindCourse resolves a course by code within a faculty.
	FindCourse(ctx context.Context, code, faculty string) (*shared.Course, error)

	// FindCourseByCode resolves a course by code alone.
	FindCourseByCode(ctx context.Context, code string) (*shared.Course, error)

	// FindGradeRecord resolves the grade record for a (student, course)
	// pair, joining through the student and course by business keys.
	FindGradeRecord(ctx context.Context, studentEmail, courseCode string) (*shared.GradeRecord, error)

	// ListGradeRecords returns a student's grade records, each paired with
	// its course. The filter narrows by course semester or course code;
	// the zero filter returns everything. An empty result is not an error
	// here; callers decide whether emptiness is a failure.
	ListGradeRecords(ctx context.Context, studentEmail string, filter shared.RecordFilter) ([]shared.RecordWithCourse, error)

	// ListRoster returns every student holding a grade record for the
	// course.
	ListRoster(ctx context.Context, courseCode string) ([]shared.Student, error)

	// CoursesForInstructor returns the courses the instructor teaches,
	// consulting the doctor or assistant relation depending on role.
	CoursesForInstructor(ctx context.Context, email, role string) ([]shared.Course, error)

	// EligibleCourses returns courses offered to the given department,
	// semester, and faculty. No ordering guarantee beyond store iteration
	// order.
	EligibleCourses(ctx context.Context, department string, semester int32, faculty string) ([]shared.Course, error)

	// ResolveCourses returns the subset of codes that exist and belong to
	// the faculty. Codes that do not resolve are dropped, not reported.
	ResolveCourses(ctx context.Context, codes []string, faculty string) ([]shared.Course, error)

	// CreateGradeRecords creates zero-valued grade records for the student
	// in each course, as one atomic batch. Pairs that already hold a
	// record are left untouched; the returned count covers only records
	// actually created.
	CreateGradeRecords(ctx context.Context, studentID string, courseIDs []string) (int, error)

	// UpdateGradeRecord persists the record's components and total in one
	// write.
	UpdateGradeRecord(ctx context.Context, record *shared.GradeRecord) error

	// SetRegistrationComplete marks the student's registration cycle done.
	SetRegistrationComplete(ctx context.Context, email string) error

	// SavePetition stores a student petition.
	SavePetition(ctx context.Context, petition *shared.Petition) error
}
