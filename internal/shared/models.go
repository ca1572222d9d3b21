// ============================================================================
// internal/shared/models.go
// Shared data models and structs for MongoDB documents
// ============================================================================

package shared

import (
	"time"
)

// ============================================================================
// Account Models
// ============================================================================

// Account holds the fields common to every user of the system. Role-specific
// data lives in the profile documents below, joined by AccountID.
type Account struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	Faculty      string    `bson:"faculty" json:"faculty"`
	Role         string    `bson:"role" json:"role"` // student, doctor, assistant
	PasswordHash string    `bson:"password_hash" json:"-"`
	IsActive     bool      `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// StudentProfile carries the student-specific side of an account.
type StudentProfile struct {
	AccountID        string `bson:"account_id" json:"account_id"`
	StudentNumber    string `bson:"student_number,omitempty" json:"student_number,omitempty"`
	Department       string `bson:"department" json:"department"`
	CurrentSemester  *int32 `bson:"current_semester,omitempty" json:"current_semester,omitempty"`
	TotalCreditHours int32  `bson:"total_credit_hours" json:"total_credit_hours"`
	HasRegistered    bool   `bson:"has_registered_courses" json:"has_registered_courses"`
}

// InstructorProfile carries the doctor/assistant-specific side of an account.
type InstructorProfile struct {
	AccountID  string `bson:"account_id" json:"account_id"`
	Title      string `bson:"title,omitempty" json:"title,omitempty"`
	Department string `bson:"department,omitempty" json:"department,omitempty"`
}

// Student is the composed Account+StudentProfile view the record store hands
// back from lookups.
type Student struct {
	AccountID        string `json:"account_id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Faculty          string `json:"faculty"`
	StudentNumber    string `json:"student_number,omitempty"`
	Department       string `json:"department"`
	CurrentSemester  *int32 `json:"current_semester,omitempty"`
	TotalCreditHours int32  `json:"total_credit_hours"`
	HasRegistered    bool   `json:"has_registered_courses"`
}

// Instructor is the composed Account+InstructorProfile view.
type Instructor struct {
	AccountID  string `json:"account_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Faculty    string `json:"faculty"`
	Role       string `json:"role"`
	Title      string `json:"title,omitempty"`
	Department string `json:"department,omitempty"`
}

// Session represents an active login session (for JWT revocation).
type Session struct {
	ID        string    `bson:"_id" json:"id"`
	AccountID string    `bson:"account_id" json:"account_id"`
	Token     string    `bson:"token" json:"token"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// IsExpired checks if a session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// ============================================================================
// Course Models
// ============================================================================

// Course is a course offering. Code is the human-readable identifier, unique
// within a faculty. The Max* fields are the course-level maximum scores for
// each grade component; MaxTotal is the maximum achievable total. CreditHours
// and MaxTotal are pointers because reference data can legitimately lack them,
// and GPA aggregation skips such courses rather than divide by a missing
// maximum.
type Course struct {
	ID            string   `bson:"_id" json:"id"`
	Code          string   `bson:"code" json:"code"`
	Name          string   `bson:"name" json:"name"`
	CreditHours   *int32   `bson:"credit_hours,omitempty" json:"credit_hours,omitempty"`
	Faculty       string   `bson:"faculty" json:"faculty"`
	Semester      int32    `bson:"semester" json:"semester"`
	HasPractical  bool     `bson:"has_practical" json:"has_practical"`
	HasAssistants bool     `bson:"has_assistants" json:"has_assistants"`
	MaxMidTerm    *float64 `bson:"max_mid_term,omitempty" json:"max_mid_term,omitempty"`
	MaxFinalExam  *float64 `bson:"max_final_exam,omitempty" json:"max_final_exam,omitempty"`
	MaxQuizzes    *float64 `bson:"max_quizzes,omitempty" json:"max_quizzes,omitempty"`
	MaxPractical  *float64 `bson:"max_practical,omitempty" json:"max_practical,omitempty"`
	MaxTotal      *float64 `bson:"max_total,omitempty" json:"max_total,omitempty"`
}

// Department is a department within a faculty.
type Department struct {
	ID      string `bson:"_id" json:"id"`
	Name    string `bson:"name" json:"name"`
	Faculty string `bson:"faculty" json:"faculty"`
}

// CourseDepartment links a course to a department it belongs to. Pure
// relation, no payload.
type CourseDepartment struct {
	CourseID   string `bson:"course_id" json:"course_id"`
	Department string `bson:"department" json:"department"`
}

// CourseInstructor links a course to a doctor or assistant who teaches it.
// Doctors and assistants live in separate collections but share this shape.
type CourseInstructor struct {
	CourseID  string `bson:"course_id" json:"course_id"`
	AccountID string `bson:"account_id" json:"account_id"`
}

// ============================================================================
// Grade Record Models
// ============================================================================

// GradeRecord is the data-bearing junction between a student and a course:
// at most one record per (student, course) pair. Components are nullable; a
// record is created with explicit zeros at registration time. Total is
// derived, never set directly: it is the sum of the stored components, with
// Practical counted only when the course has a practical component.
type GradeRecord struct {
	ID        string   `bson:"_id" json:"id"`
	StudentID string   `bson:"student_id" json:"student_id"`
	CourseID  string   `bson:"course_id" json:"course_id"`
	MidTerm   *float64 `bson:"mid_term,omitempty" json:"mid_term,omitempty"`
	FinalExam *float64 `bson:"final_exam,omitempty" json:"final_exam,omitempty"`
	Quizzes   *float64 `bson:"quizzes,omitempty" json:"quizzes,omitempty"`
	Practical *float64 `bson:"practical,omitempty" json:"practical,omitempty"`
	Total     float64  `bson:"total" json:"total"`
}

// RecordWithCourse pairs a grade record with its course. GPA aggregation
// needs the course's credit hours and maximum total, so record listings
// always carry the course along.
type RecordWithCourse struct {
	Record GradeRecord `json:"record"`
	Course Course      `json:"course"`
}

// RecordFilter narrows a grade-record listing. Zero value means no filter.
type RecordFilter struct {
	Semester   *int32 `json:"semester,omitempty"`
	CourseCode string `json:"course_code,omitempty"`
}

// Petition is a free-text request a student files about a course.
type Petition struct {
	ID         string    `bson:"_id" json:"id"`
	Email      string    `bson:"email" json:"email"`
	CourseName string    `bson:"course_name" json:"course_name"`
	Text       string    `bson:"text" json:"text"`
	Date       time.Time `bson:"date" json:"date"`
}

// ============================================================================
// Response Models (for API responses)
// ============================================================================

// CourseGradeDetail is one course row in a student's grade report: the
// course reference data (maxima) side by side with the student's achieved
// values.
type CourseGradeDetail struct {
	CourseCode   string   `json:"course_code"`
	CourseName   string   `json:"course_name"`
	CreditHours  *int32   `json:"credit_hours,omitempty"`
	HasPractical bool     `json:"has_practical"`
	MaxMidTerm   *float64 `json:"max_mid_term,omitempty"`
	MaxFinalExam *float64 `json:"max_final_exam,omitempty"`
	MaxQuizzes   *float64 `json:"max_quizzes,omitempty"`
	MaxPractical *float64 `json:"max_practical,omitempty"`
	MaxTotal     *float64 `json:"max_total,omitempty"`
	MidTerm      *float64 `json:"mid_term,omitempty"`
	FinalExam    *float64 `json:"final_exam,omitempty"`
	Quizzes      *float64 `json:"quizzes,omitempty"`
	Practical    *float64 `json:"practical,omitempty"`
	Total        float64  `json:"total"`
}

// GradeReport is a student's grade listing for one semester or the whole
// transcript.
type GradeReport struct {
	StudentNumber   string              `json:"student_number,omitempty"`
	Email           string              `json:"email"`
	Department      string              `json:"department"`
	CurrentSemester *int32              `json:"current_semester,omitempty"`
	Courses         []CourseGradeDetail `json:"courses"`
}

// RosterEntry is one student row in a course roster.
type RosterEntry struct {
	StudentNumber    string `json:"student_number,omitempty"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Department       string `json:"department"`
	CurrentSemester  *int32 `json:"current_semester,omitempty"`
	TotalCreditHours int32  `json:"total_credit_hours"`
}

// ============================================================================
// Grade Update Input
// ============================================================================

// GradeUpdate is a partial update to one grade record. Nil fields mean "no
// change"; they never clear the stored value. Practical is applied only when
// the course has a practical component, and is otherwise ignored without
// error.
type GradeUpdate struct {
	StudentEmail string   `json:"student_email"`
	MidTerm      *float64 `json:"mid_term,omitempty"`
	FinalExam    *float64 `json:"final_exam,omitempty"`
	Quizzes      *float64 `json:"quizzes,omitempty"`
	Practical    *float64 `json:"practical,omitempty"`
}

// ============================================================================
// Constants
// ============================================================================

const (
	// Account roles
	RoleStudent   = "student"
	RoleDoctor    = "doctor"
	RoleAssistant = "assistant"
)

// IsInstructorRole reports whether role names one of the two instructor
// collections.
func IsInstructorRole(role string) bool {
	return role == RoleDoctor || role == RoleAssistant
}

// IsValidRole checks if an account role is valid.
func IsValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleDoctor, RoleAssistant:
		return true
	}
	return false
}

// ============================================================================
// Helper Methods
// ============================================================================

// ComponentSum returns the sum of the stored components, counting Practical
// only when hasPractical is true. Nil components contribute nothing.
func (r *GradeRecord) ComponentSum(hasPractical bool) float64 {
	var total float64
	if r.MidTerm != nil {
		total += *r.MidTerm
	}
	if r.FinalExam != nil {
		total += *r.FinalExam
	}
	if r.Quizzes != nil {
		total += *r.Quizzes
	}
	if r.Practical != nil && hasPractical {
		total += *r.Practical
	}
	return total
}

// Float64Ptr returns a pointer to v. Convenience for literals in seeds and
// tests.
func Float64Ptr(v float64) *float64 { return &v }

// Int32Ptr returns a pointer to v.
func Int32Ptr(v int32) *int32 { return &v }
