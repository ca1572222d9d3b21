package store

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"unirecords/internal/apperr"
	"unirecords/internal/shared"
)

// Mongo implements Store on MongoDB collections.
type Mongo struct {
	client              *mongo.Client
	db                  *mongo.Database
	accountsCol         *mongo.Collection
	studentProfilesCol  *mongo.Collection
	instructorProfsCol  *mongo.Collection
	coursesCol          *mongo.Collection
	departmentsCol      *mongo.Collection
	courseDepartments   *mongo.Collection
	courseDoctorsCol    *mongo.Collection
	courseAssistantsCol *mongo.Collection
	gradeRecordsCol     *mongo.Collection
	petitionsCol        *mongo.Collection
}

// NewMongo creates a Mongo store over db. The client is retained for
// transactional batches.
func NewMongo(client *mongo.Client, db *mongo.Database) *Mongo {
	return &Mongo{
		client:              client,
		db:                  db,
		accountsCol:         db.Collection("accounts"),
		studentProfilesCol:  db.Collection("student_profiles"),
		instructorProfsCol:  db.Collection("instructor_profiles"),
		coursesCol:          db.Collection("courses"),
		departmentsCol:      db.Collection("departments"),
		courseDepartments:   db.Collection("course_departments"),
		courseDoctorsCol:    db.Collection("course_doctors"),
		courseAssistantsCol: db.Collection("course_assistants"),
		gradeRecordsCol:     db.Collection("grade_records"),
		petitionsCol:        db.Collection("petitions"),
	}
}

// EnsureIndexes creates the unique and lookup indexes the store relies on.
// The (student_id, course_id) unique index is what enforces the one-record-
// per-pair invariant at the persistence layer.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.accountsCol.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create accounts index: %w", err)
	}

	_, err = m.coursesCol.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}, {Key: "faculty", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create courses index: %w", err)
	}

	_, err = m.gradeRecordsCol.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "course_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create grade_records index: %w", err)
	}

	for _, col := range []*mongo.Collection{m.courseDoctorsCol, m.courseAssistantsCol} {
		_, err = col.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "course_id", Value: 1}, {Key: "account_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("failed to create instructor relation index: %w", err)
		}
	}

	_, err = m.courseDepartments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "department", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create course_departments index: %w", err)
	}

	return nil
}

// ============================================================================
// Account Lookups
// ============================================================================

func (m *Mongo) findAccount(ctx context.Context, email, role string) (*shared.Account, error) {
	var account shared.Account
	err := m.accountsCol.FindOne(ctx, bson.M{"email": email, "role": role}).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("%s not found: %s", role, email)
		}
		return nil, apperr.Internal(err, "failed to retrieve account")
	}
	return &account, nil
}

// FindStudent resolves a student by enrollment email, composing the account
// with its student profile.
func (m *Mongo) FindStudent(ctx context.Context, email string) (*shared.Student, error) {
	account, err := m.findAccount(ctx, email, shared.RoleStudent)
	if err != nil {
		return nil, err
	}

	var profile shared.StudentProfile
	err = m.studentProfilesCol.FindOne(ctx, bson.M{"account_id": account.ID}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("student profile not found: %s", email)
		}
		return nil, apperr.Internal(err, "failed to retrieve student profile")
	}

	return &shared.Student{
		AccountID:        account.ID,
		Email:            account.Email,
		Name:             account.Name,
		Faculty:          account.Faculty,
		StudentNumber:    profile.StudentNumber,
		Department:       profile.Department,
		CurrentSemester:  profile.CurrentSemester,
		TotalCreditHours: profile.TotalCreditHours,
		HasRegistered:    profile.HasRegistered,
	}, nil
}

// FindInstructor resolves a doctor or assistant by email.
func (m *Mongo) FindInstructor(ctx context.Context, email, role string) (*shared.Instructor, error) {
	if !shared.IsInstructorRole(role) {
		return nil, apperr.Validation("invalid instructor role: %s", role)
	}

	account, err := m.findAccount(ctx, email, role)
	if err != nil {
		return nil, err
	}

	instructor := &shared.Instructor{
		AccountID: account.ID,
		Email:     account.Email,
		Name:      account.Name,
		Faculty:   account.Faculty,
		Role:      account.Role,
	}

	// The profile is optional reference data; its absence is not an error.
	var profile shared.InstructorProfile
	err = m.instructorProfsCol.FindOne(ctx, bson.M{"account_id": account.ID}).Decode(&profile)
	if err == nil {
		instructor.Title = profile.Title
		instructor.Department = profile.Department
	} else if err != mongo.ErrNoDocuments {
		return nil, apperr.Internal(err, "failed to retrieve instructor profile")
	}

	return instructor, nil
}

// ============================================================================
// Course Lookups
// ============================================================================

// FindCourse resolves a course by code within a faculty.
func (m *Mongo) FindCourse(ctx context.Context, code, faculty string) (*shared.Course, error) {
	var course shared.Course
	err := m.coursesCol.FindOne(ctx, bson.M{"code": code, "faculty": faculty}).Decode(&course)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("course not found: %s", code)
		}
		return nil, apperr.Internal(err, "failed to retrieve course")
	}
	return &course, nil
}

// FindCourseByCode resolves a course by code alone.
func (m *Mongo) FindCourseByCode(ctx context.Context, code string) (*shared.Course, error) {
	var course shared.Course
	err := m.coursesCol.FindOne(ctx, bson.M{"code": code}).Decode(&course)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("course not found: %s", code)
		}
		return nil, apperr.Internal(err, "failed to retrieve course")
	}
	return &course, nil
}

// ============================================================================
// Grade Record Queries
// ============================================================================

// FindGradeRecord joins through the student and course business keys to the
// record for the pair.
func (m *Mongo) FindGradeRecord(ctx context.Context, studentEmail, courseCode string) (*shared.GradeRecord, error) {
	student, err := m.FindStudent(ctx, studentEmail)
	if err != nil {
		return nil, err
	}

	course, err := m.FindCourseByCode(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	var record shared.GradeRecord
	err = m.gradeRecordsCol.FindOne(ctx, bson.M{
		"student_id": student.AccountID,
		"course_id":  course.ID,
	}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("student %s is not registered in course %s", studentEmail, courseCode)
		}
		return nil, apperr.Internal(err, "failed to retrieve grade record")
	}
	return &record, nil
}

// ListGradeRecords returns the student's records paired with their courses.
func (m *Mongo) ListGradeRecords(ctx context.Context, studentEmail string, filter shared.RecordFilter) ([]shared.RecordWithCourse, error) {
	student, err := m.FindStudent(ctx, studentEmail)
	if err != nil {
		return nil, err
	}

	cursor, err := m.gradeRecordsCol.Find(ctx, bson.M{"student_id": student.AccountID})
	if err != nil {
		return nil, apperr.Internal(err, "failed to query grade records")
	}
	defer cursor.Close(ctx)

	var records []shared.GradeRecord
	for cursor.Next(ctx) {
		var record shared.GradeRecord
		if err := cursor.Decode(&record); err != nil {
			log.Printf("Error decoding grade record for %s: %v", studentEmail, err)
			continue
		}
		records = append(records, record)
	}
	if err := cursor.Err(); err != nil {
		return nil, apperr.Internal(err, "error iterating grade records")
	}

	courses, err := m.coursesByID(ctx, recordCourseIDs(records))
	if err != nil {
		return nil, err
	}

	var result []shared.RecordWithCourse
	for _, record := range records {
		course, ok := courses[record.CourseID]
		if !ok {
			// Record pointing at a deleted course; skip rather than fail
			// the whole listing.
			log.Printf("Warning: grade record %s references missing course %s", record.ID, record.CourseID)
			continue
		}
		if !matchesFilter(course, filter) {
			continue
		}
		result = append(result, shared.RecordWithCourse{Record: record, Course: course})
	}
	return result, nil
}

func matchesFilter(course shared.Course, filter shared.RecordFilter) bool {
	if filter.Semester != nil && course.Semester != *filter.Semester {
		return false
	}
	if filter.CourseCode != "" && course.Code != filter.CourseCode {
		return false
	}
	return true
}

func recordCourseIDs(records []shared.GradeRecord) []string {
	ids := make([]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, record := range records {
		if !seen[record.CourseID] {
			seen[record.CourseID] = true
			ids = append(ids, record.CourseID)
		}
	}
	return ids
}

func (m *Mongo) coursesByID(ctx context.Context, ids []string) (map[string]shared.Course, error) {
	courses := make(map[string]shared.Course, len(ids))
	if len(ids) == 0 {
		return courses, nil
	}

	cursor, err := m.coursesCol.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperr.Internal(err, "failed to query courses")
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var course shared.Course
		if err := cursor.Decode(&course); err != nil {
			continue
		}
		courses[course.ID] = course
	}
	if err := cursor.Err(); err != nil {
		return nil, apperr.Internal(err, "error iterating courses")
	}
	return courses, nil
}

// ListRoster returns every student holding a grade record for the course.
func (m *Mongo) ListRoster(ctx context.Context, courseCode string) ([]shared.Student, error) {
	course, err := m.FindCourseByCode(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	cursor, err := m.gradeRecordsCol.Find(ctx, bson.M{"course_id": course.ID},
		options.Find().SetSort(bson.D{{Key: "student_id", Value: 1}}))
	if err != nil {
		return nil, apperr.Internal(err, "failed to query roster")
	}
	defer cursor.Close(ctx)

	var students []shared.Student
	for cursor.Next(ctx) {
		var record shared.GradeRecord
		if err := cursor.Decode(&record); err != nil {
			continue
		}

		student, err := m.studentByAccountID(ctx, record.StudentID)
		if err != nil {
			log.Printf("Warning: roster entry for course %s references missing student %s", courseCode, record.StudentID)
			continue
		}
		students = append(students, *student)
	}
	if err := cursor.Err(); err != nil {
		return nil, apperr.Internal(err, "error iterating roster")
	}
	return students, nil
}

func (m *Mongo) studentByAccountID(ctx context.Context, accountID string) (*shared.Student, error) {
	var account shared.Account
	if err := m.accountsCol.FindOne(ctx, bson.M{"_id": accountID}).Decode(&account); err != nil {
		return nil, err
	}
	var profile shared.StudentProfile
	if err := m.studentProfilesCol.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&profile); err != nil {
		return nil, err
	}
	return &shared.Student{
		AccountID:        account.ID,
		Email:            account.Email,
		Name:             account.Name,
		Faculty:          account.Faculty,
		StudentNumber:    profile.StudentNumber,
		Department:       profile.Department,
		CurrentSemester:  profile.CurrentSemester,
		TotalCreditHours: profile.TotalCreditHours,
		HasRegistered:    profile.HasRegistered,
	}, nil
}

// ============================================================================
// Instructor Relations
// ============================================================================

func (m *Mongo) instructorRelation(role string) (*mongo.Collection, error) {
	switch role {
	case shared.RoleDoctor:
		return m.courseDoctorsCol, nil
	case shared.RoleAssistant:
		return m.courseAssistantsCol, nil
	default:
		return nil, apperr.Validation("invalid instructor role: %s", role)
	}
}

// CoursesForInstructor returns the courses the instructor teaches.
func (m *Mongo) CoursesForInstructor(ctx context.Context, email, role string) ([]shared.Course, error) {
	relation, err := m.instructorRelation(role)
	if err != nil {
		return nil, err
	}

	instructor, err := m.FindInstructor(ctx, email, role)
	if err != nil {
		return nil, err
	}

	cursor, err := relation.Find(ctx, bson.M{"account_id": instructor.AccountID})
	if err != nil {
		return nil, apperr.Internal(err, "failed to query taught courses")
	}
	defer cursor.Close(ctx)

	var courseIDs []string
	for cursor.Next(ctx) {
		var link shared.CourseInstructor
		if err := cursor.Decode(&link); err != nil {
			continue
		}
		courseIDs = append(courseIDs, link.CourseID)
	}
	if err := cursor.Err(); err != nil {
		return nil, apperr.Internal(err, "error iterating taught courses")
	}

	courses, err := m.coursesByID(ctx, courseIDs)
	if err != nil {
		return nil, err
	}

	result := make([]shared.Course, 0, len(courses))
	for _, id := range courseIDs {
		if course, ok := courses[id]; ok {
			result = append(result, course)
		}
	}
	return result, nil
}

// ============================================================================
// Eligibility Queries
// ============================================================================

// EligibleCourses returns courses linked to the department and matching the
// semester and faculty.
func (m *Mongo) EligibleCourses(ctx context.Context, department string, semester int32, faculty string) ([]shared.Course, error) {
	cursor, err := m.courseDepartments.Find(ctx, bson.M{"department": department})
	if err != nil {
		return nil, apperr.Internal(err, "failed to query department courses")
	}
	defer cursor.Close(ctx)

	var courseIDs []string
	for cursor.Next(ctx) {
		var link shared.CourseDepartment
		if err := cursor.Decode(&link); err != nil {
			continue
		}
		courseIDs = append(courseIDs, link.CourseID)
	}
	if err := cursor.Err(); err != nil {
		return nil, apperr.Internal(err, "error iterating department courses")
	}

	if len(courseIDs) == 0 {
		return nil, nil
	}

	courseCursor, err := m.coursesCol.Find(ctx, bson.M{
		"_id":      bson.M{"$in": courseIDs},
		"semester": semester,
		"faculty":  faculty,
	})
	if err != nil {
		return nil, apperr.Internal(err, "failed to query eligible courses")
	}
	defer courseCursor.Close(ctx)

	var courses []shared.Course
	for courseCursor.Next(ctx) {
		var course shared.Course
		if err := courseCursor.Decode(&course); err != nil {
			continue
		}
		courses = append(courses, course)
	}
	if err := courseCursor.Err(); err != nil {
		return nil, apperr.Internal(err, "error iterating eligible courses")
	}
	return courses, nil
}

// ResolveCourses returns the subset of codes that exist within the faculty.
func (m *Mongo) ResolveCourses(ctx context.Context, codes []string, faculty string) ([]shared.Course, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	cursor, err := m.coursesCol.Find(ctx, bson.M{
		"code":    bson.M{"$in": codes},
		"faculty": faculty,
	})
	if err != nil {
		return nil, apperr.Internal(err, "failed to resolve courses")
	}
	defer cursor.Close(ctx)

	var courses []shared.Course
	for cursor.Next(ctx) {
		var course shared.Course
		if err := cursor.Decode(&course); err != nil {
			continue
		}
		courses = append(courses, course)
	}
	if err := cursor.Err(); err != nil {
		return nil, apperr.Internal(err, "error iterating resolved courses")
	}
	return courses, nil
}

// ============================================================================
// Mutations
// ============================================================================

// CreateGradeRecords creates zero-valued records for the student in each
// course as one transaction. $setOnInsert upserts keep the operation
// idempotent per (student, course) pair: an existing record is never
// replaced and never duplicated.
func (m *Mongo) CreateGradeRecords(ctx context.Context, studentID string, courseIDs []string) (int, error) {
	created := 0
	zero := 0.0

	err := shared.WithTransaction(ctx, m.client, func(sessCtx mongo.SessionContext) error {
		created = 0
		for _, courseID := range courseIDs {
			filter := bson.M{"student_id": studentID, "course_id": courseID}
			update := bson.M{"$setOnInsert": bson.M{
				"_id":        shared.GenerateRecordID(),
				"student_id": studentID,
				"course_id":  courseID,
				"mid_term":   zero,
				"final_exam": zero,
				"quizzes":    zero,
				"practical":  zero,
				"total":      zero,
			}}
			result, err := m.gradeRecordsCol.UpdateOne(sessCtx, filter, update, options.Update().SetUpsert(true))
			if err != nil {
				return err
			}
			if result.UpsertedCount > 0 {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, apperr.Internal(err, "failed to create grade records")
	}
	return created, nil
}

// UpdateGradeRecord persists components and total in a single write.
func (m *Mongo) UpdateGradeRecord(ctx context.Context, record *shared.GradeRecord) error {
	update := bson.M{"$set": bson.M{
		"mid_term":   record.MidTerm,
		"final_exam": record.FinalExam,
		"quizzes":    record.Quizzes,
		"practical":  record.Practical,
		"total":      record.Total,
	}}

	result, err := m.gradeRecordsCol.UpdateOne(ctx, bson.M{"_id": record.ID}, update)
	if err != nil {
		return apperr.Internal(err, "failed to update grade record")
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("grade record not found: %s", record.ID)
	}
	return nil
}

// SetRegistrationComplete marks the student's registration cycle done.
func (m *Mongo) SetRegistrationComplete(ctx context.Context, email string) error {
	student, err := m.FindStudent(ctx, email)
	if err != nil {
		return err
	}

	_, err = m.studentProfilesCol.UpdateOne(ctx,
		bson.M{"account_id": student.AccountID},
		bson.M{"$set": bson.M{"has_registered_courses": true}})
	if err != nil {
		return apperr.Internal(err, "failed to update registration status")
	}
	return nil
}

// SavePetition stores a student petition.
func (m *Mongo) SavePetition(ctx context.Context, petition *shared.Petition) error {
	if petition.ID == "" {
		petition.ID = shared.GeneratePetitionID()
	}
	if _, err := m.petitionsCol.InsertOne(ctx, petition); err != nil {
		return apperr.Internal(err, "failed to save petition")
	}
	return nil
}
