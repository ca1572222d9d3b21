// Package grading applies instructor grade edits to student records and
// keeps the derived total consistent with the course's practical-inclusion
// rule.
package grading

import (
	"context"
	"log"

	"unirecords/internal/apperr"
	"unirecords/internal/shared"
	"unirecords/internal/store"
)

// Service is the grade update policy plus the instructor-facing queries
// (taught courses, rosters, per-student records). The same policy serves
// doctors and assistants; the role only selects which taught-courses
// relation is consulted.
type Service struct {
	store store.Store
}

// NewService creates a grading Service over the record store.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// InstructorCourses returns the courses the instructor teaches.
func (s *Service) InstructorCourses(ctx context.Context, email, role string) ([]shared.Course, error) {
	return s.store.CoursesForInstructor(ctx, email, role)
}

// InstructorProfile resolves the instructor account itself.
func (s *Service) InstructorProfile(ctx context.Context, email, role string) (*shared.Instructor, error) {
	return s.store.FindInstructor(ctx, email, role)
}

// CourseRoster returns the students registered in a course the instructor
// teaches.
func (s *Service) CourseRoster(ctx context.Context, email, role, courseCode string) ([]shared.RosterEntry, error) {
	if _, err := s.taughtCourse(ctx, email, role, courseCode); err != nil {
		return nil, err
	}

	students, err := s.store.ListRoster(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	entries := make([]shared.RosterEntry, 0, len(students))
	for _, student := range students {
		entries = append(entries, shared.RosterEntry{
			StudentNumber:    student.StudentNumber,
			Email:            student.Email,
			Name:             student.Name,
			Department:       student.Department,
			CurrentSemester:  student.CurrentSemester,
			TotalCreditHours: student.TotalCreditHours,
		})
	}
	return entries, nil
}

// StudentCourseRecord returns one student's grade record for a course the
// instructor teaches, paired with the course reference data.
func (s *Service) StudentCourseRecord(ctx context.Context, email, role, courseCode, studentEmail string) (*shared.RecordWithCourse, error) {
	course, err := s.taughtCourse(ctx, email, role, courseCode)
	if err != nil {
		return nil, err
	}

	record, err := s.store.FindGradeRecord(ctx, studentEmail, courseCode)
	if err != nil {
		return nil, err
	}

	return &shared.RecordWithCourse{Record: *record, Course: *course}, nil
}

// UpdateGrade applies a partial grade update on behalf of an instructor and
// recomputes the record's total.
//
// Omitted components leave the stored value unchanged. A supplied practical
// value is applied only when the course has a practical component; on other
// courses it is silently ignored, and the stored practical never counts
// toward the total either way.
func (s *Service) UpdateGrade(ctx context.Context, email, role, courseCode string, update shared.GradeUpdate) error {
	if update.StudentEmail == "" {
		return apperr.Validation("student email is required")
	}

	course, err := s.taughtCourse(ctx, email, role, courseCode)
	if err != nil {
		return err
	}

	record, err := s.store.FindGradeRecord(ctx, update.StudentEmail, courseCode)
	if err != nil {
		return err
	}

	if update.MidTerm != nil {
		record.MidTerm = update.MidTerm
	}
	if update.FinalExam != nil {
		record.FinalExam = update.FinalExam
	}
	if update.Quizzes != nil {
		record.Quizzes = update.Quizzes
	}
	if update.Practical != nil && course.HasPractical {
		record.Practical = update.Practical
	}

	record.Total = record.ComponentSum(course.HasPractical)

	if err := s.store.UpdateGradeRecord(ctx, record); err != nil {
		return err
	}

	log.Printf("INFO: grade record updated: course=%s student=%s by=%s total=%.2f",
		courseCode, update.StudentEmail, email, record.Total)
	return nil
}

// taughtCourse resolves courseCode within the instructor's taught courses.
// An instructor asking about a course they do not teach gets Forbidden, not
// NotFound: the course may well exist.
func (s *Service) taughtCourse(ctx context.Context, email, role, courseCode string) (*shared.Course, error) {
	courses, err := s.store.CoursesForInstructor(ctx, email, role)
	if err != nil {
		return nil, err
	}

	for i := range courses {
		if courses[i].Code == courseCode {
			return &courses[i], nil
		}
	}
	return nil, apperr.Forbidden("%s %s does not teach course %s", role, email, courseCode)
}
