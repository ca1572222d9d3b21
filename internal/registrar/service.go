// Package registrar resolves the courses a student may register for and
// turns a registration request into grade records.
package registrar

import (
	"context"
	"log"
	"time"

	"unirecords/internal/apperr"
	"unirecords/internal/shared"
	"unirecords/internal/store"
)

// Service is the eligibility resolver and registration policy.
type Service struct {
	store store.Store
}

// NewService creates a registrar Service over the record store.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// StudentProfile resolves the student account itself.
func (s *Service) StudentProfile(ctx context.Context, email string) (*shared.Student, error) {
	return s.store.FindStudent(ctx, email)
}

// AvailableCourses returns the courses the student may register for: those
// offered to the student's department, in the student's current semester,
// within the student's faculty. A student without an assigned semester
// cannot resolve eligibility.
func (s *Service) AvailableCourses(ctx context.Context, email string) ([]shared.Course, error) {
	student, err := s.store.FindStudent(ctx, email)
	if err != nil {
		return nil, err
	}

	if student.CurrentSemester == nil {
		return nil, apperr.InvalidState("current semester is not assigned for student %s", email)
	}

	courses, err := s.store.EligibleCourses(ctx, student.Department, *student.CurrentSemester, student.Faculty)
	if err != nil {
		return nil, err
	}

	log.Printf("INFO: resolved %d available courses for %s (department=%s semester=%d)",
		len(courses), email, student.Department, *student.CurrentSemester)
	return courses, nil
}

// RegisterCourses creates zero-valued grade records for every supplied
// course code that resolves within the student's faculty. Codes that do not
// resolve are dropped; if none resolve the request fails as a whole.
// Registration is idempotent per (student, course) pair: registering a
// course twice never yields a second record. Returns the number of records
// actually created.
func (s *Service) RegisterCourses(ctx context.Context, email string, courseCodes []string) (int, error) {
	student, err := s.store.FindStudent(ctx, email)
	if err != nil {
		return 0, err
	}

	courses, err := s.store.ResolveCourses(ctx, courseCodes, student.Faculty)
	if err != nil {
		return 0, err
	}
	if len(courses) == 0 {
		return 0, apperr.Validation("no matching courses found")
	}

	courseIDs := make([]string, 0, len(courses))
	for _, course := range courses {
		courseIDs = append(courseIDs, course.ID)
	}

	created, err := s.store.CreateGradeRecords(ctx, student.AccountID, courseIDs)
	if err != nil {
		return 0, err
	}

	log.Printf("INFO: registered %d of %d requested courses for %s", created, len(courseCodes), email)
	return created, nil
}

// CompleteRegistration marks the student's registration cycle done.
func (s *Service) CompleteRegistration(ctx context.Context, email string) error {
	return s.store.SetRegistrationComplete(ctx, email)
}

// SubmitPetition files a free-text petition about a course on behalf of the
// student.
func (s *Service) SubmitPetition(ctx context.Context, email, courseName, text string) (*shared.Petition, error) {
	if courseName == "" || text == "" {
		return nil, apperr.Validation("course name and petition text are required")
	}

	// The petition keeps the raw email; students may petition about
	// courses they are not registered in, so only the student itself is
	// verified.
	if _, err := s.store.FindStudent(ctx, email); err != nil {
		return nil, err
	}

	petition := &shared.Petition{
		Email:      email,
		CourseName: courseName,
		Text:       text,
		Date:       time.Now().UTC(),
	}
	if err := s.store.SavePetition(ctx, petition); err != nil {
		return nil, err
	}

	log.Printf("INFO: petition saved for %s (course=%s)", email, courseName)
	return petition, nil
}
