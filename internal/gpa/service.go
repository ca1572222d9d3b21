// Package gpa aggregates a student's grade records into credit-weighted
// grade-point averages and per-course grade reports.
package gpa

import (
	"context"

	"unirecords/internal/apperr"
	"unirecords/internal/shared"
	"unirecords/internal/store"
)

// Service is the aggregation engine.
type Service struct {
	store store.Store
}

// NewService creates an aggregation Service over the record store.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// SemesterGPA computes the credit-weighted GPA over the student's courses
// in one semester. Fails NotFound when the student has no records for the
// semester.
func (s *Service) SemesterGPA(ctx context.Context, email string, semester int32) (float64, error) {
	pairs, err := s.listChecked(ctx, email, shared.RecordFilter{Semester: &semester})
	if err != nil {
		return 0, err
	}
	return weightedAverage(pairs), nil
}

// CumulativeGPA computes the credit-weighted GPA over every course the
// student is registered in, across all semesters.
func (s *Service) CumulativeGPA(ctx context.Context, email string) (float64, error) {
	pairs, err := s.listChecked(ctx, email, shared.RecordFilter{})
	if err != nil {
		return 0, err
	}
	return weightedAverage(pairs), nil
}

// SemesterReport returns the student's per-course grade detail for one
// semester: course maxima side by side with achieved values.
func (s *Service) SemesterReport(ctx context.Context, email string, semester int32) (*shared.GradeReport, error) {
	return s.report(ctx, email, shared.RecordFilter{Semester: &semester})
}

// CumulativeReport returns the student's full transcript detail.
func (s *Service) CumulativeReport(ctx context.Context, email string) (*shared.GradeReport, error) {
	return s.report(ctx, email, shared.RecordFilter{})
}

func (s *Service) report(ctx context.Context, email string, filter shared.RecordFilter) (*shared.GradeReport, error) {
	student, err := s.store.FindStudent(ctx, email)
	if err != nil {
		return nil, err
	}

	pairs, err := s.listChecked(ctx, email, filter)
	if err != nil {
		return nil, err
	}

	report := &shared.GradeReport{
		StudentNumber:   student.StudentNumber,
		Email:           student.Email,
		Department:      student.Department,
		CurrentSemester: student.CurrentSemester,
		Courses:         make([]shared.CourseGradeDetail, 0, len(pairs)),
	}
	for _, pair := range pairs {
		report.Courses = append(report.Courses, shared.CourseGradeDetail{
			CourseCode:   pair.Course.Code,
			CourseName:   pair.Course.Name,
			CreditHours:  pair.Course.CreditHours,
			HasPractical: pair.Course.HasPractical,
			MaxMidTerm:   pair.Course.MaxMidTerm,
			MaxFinalExam: pair.Course.MaxFinalExam,
			MaxQuizzes:   pair.Course.MaxQuizzes,
			MaxPractical: pair.Course.MaxPractical,
			MaxTotal:     pair.Course.MaxTotal,
			MidTerm:      pair.Record.MidTerm,
			FinalExam:    pair.Record.FinalExam,
			Quizzes:      pair.Record.Quizzes,
			Practical:    pair.Record.Practical,
			Total:        pair.Record.Total,
		})
	}
	return report, nil
}

func (s *Service) listChecked(ctx context.Context, email string, filter shared.RecordFilter) ([]shared.RecordWithCourse, error) {
	pairs, err := s.store.ListGradeRecords(ctx, email, filter)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		if filter.Semester != nil {
			return nil, apperr.NotFound("no courses found for student %s in semester %d", email, *filter.Semester)
		}
		return nil, apperr.NotFound("no courses found for student %s", email)
	}
	return pairs, nil
}

// weightedAverage accumulates (total / course maximum) * credit hours over
// the pairs and divides by the credit-hour sum. Pairs missing either the
// course maximum or the credit hours are skipped entirely: they contribute
// to neither the numerator nor the denominator. A zero credit-hour sum
// yields 0, not an error.
func weightedAverage(pairs []shared.RecordWithCourse) float64 {
	var gradePoints, credits float64

	for _, pair := range pairs {
		if pair.Course.MaxTotal == nil || pair.Course.CreditHours == nil {
			continue
		}
		creditHours := float64(*pair.Course.CreditHours)
		gradePoints += (pair.Record.Total / *pair.Course.MaxTotal) * creditHours
		credits += creditHours
	}

	if credits > 0 {
		return gradePoints / credits
	}
	return 0
}
