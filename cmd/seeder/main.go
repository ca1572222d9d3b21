package main

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"unirecords/internal/shared"
	"unirecords/internal/store"
)

// Seed constants for a small but complete dataset: one faculty, two
// departments, three courses (one with a practical component), two
// instructors, and three students at different registration stages.
const (
	// Account IDs
	DoctorID1    = "doctor-001"
	AssistantID1 = "assistant-001"
	StudentID1   = "student-001" // registered, graded
	StudentID2   = "student-002" // registered, ungraded
	StudentID3   = "student-003" // no semester assigned yet

	// Common Credentials
	CommonPassword = "password"

	// Faculty / Departments
	FacultyEngineering = "Engineering"
	DeptComputer       = "Computer Engineering"
	DeptElectrical     = "Electrical Engineering"

	// Course IDs
	CS101ID = "course-cs101"
	CS102ID = "course-cs102"
	EE201ID = "course-ee201"
)

// AccountSeed pairs an account with its role-specific profile data.
type AccountSeed struct {
	Account         shared.Account
	StudentNumber   string
	Department      string
	CurrentSemester *int32
	HasRegistered   bool
	Title           string
}

// RecordSeed is one pre-graded record.
type RecordSeed struct {
	StudentID string
	CourseID  string
	MidTerm   *float64
	FinalExam *float64
	Quizzes   *float64
	Practical *float64
}

func main() {
	log.Println("Starting Database Seeder...")

	if err := shared.LoadEnv(".env"); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := shared.LoadAppConfig("seeder")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client, db, err := shared.ConnectMongoDB(&cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer shared.DisconnectMongoDB(client)

	// Clean start
	if err := db.Drop(context.Background()); err != nil {
		log.Fatalf("Failed to drop database: %v", err)
	}
	log.Println("Database cleared successfully.")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	recordStore := store.NewMongo(client, db)
	if err := recordStore.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// --- 1. Seed Departments ---
	seedDepartments(ctx, db)

	// --- 2. Seed Accounts and Profiles ---
	seedAccounts(ctx, db, cfg.Security.BCryptCost)

	// --- 3. Seed Courses and Relations ---
	seedCourses(ctx, db)

	// --- 4. Seed Grade Records ---
	seedGradeRecords(ctx, db)

	log.Println("All data seeding completed successfully.")
}

// ============================================================================
// SEEDING FUNCTIONS
// ============================================================================

func seedDepartments(ctx context.Context, db *mongo.Database) {
	log.Println("--- Seeding Departments ---")
	departmentsCol := db.Collection("departments")

	departments := []shared.Department{
		{ID: "dept-ce", Name: DeptComputer, Faculty: FacultyEngineering},
		{ID: "dept-ee", Name: DeptElectrical, Faculty: FacultyEngineering},
	}

	for _, d := range departments {
		if _, err := departmentsCol.InsertOne(ctx, d); err != nil {
			log.Fatalf("Error seeding department %s: %v", d.Name, err)
		}
		log.Printf("Seeded Department: %s (%s)", d.Name, d.Faculty)
	}
}

func seedAccounts(ctx context.Context, db *mongo.Database, bcryptCost int) {
	log.Println("--- Seeding Accounts ---")
	accountsCol := db.Collection("accounts")
	studentProfilesCol := db.Collection("student_profiles")
	instructorProfilesCol := db.Collection("instructor_profiles")

	now := time.Now()
	seeds := []AccountSeed{
		{
			Account: shared.Account{ID: DoctorID1, Email: "doctor@example.com", Name: "Dr. Grace Hopper",
				Faculty: FacultyEngineering, Role: shared.RoleDoctor, IsActive: true, CreatedAt: now},
			Title: "Professor", Department: DeptComputer,
		},
		{
			Account: shared.Account{ID: AssistantID1, Email: "assistant@example.com", Name: "Alan Kay",
				Faculty: FacultyEngineering, Role: shared.RoleAssistant, IsActive: true, CreatedAt: now},
			Title: "Teaching Assistant", Department: DeptComputer,
		},
		{
			Account: shared.Account{ID: StudentID1, Email: "student@example.com", Name: "Ada Lovelace",
				Faculty: FacultyEngineering, Role: shared.RoleStudent, IsActive: true, CreatedAt: now},
			StudentNumber: "202400001", Department: DeptComputer,
			CurrentSemester: shared.Int32Ptr(3), HasRegistered: true,
		},
		{
			Account: shared.Account{ID: StudentID2, Email: "student2@example.com", Name: "Edsger Dijkstra",
				Faculty: FacultyEngineering, Role: shared.RoleStudent, IsActive: true, CreatedAt: now},
			StudentNumber: "202400002", Department: DeptComputer,
			CurrentSemester: shared.Int32Ptr(3), HasRegistered: false,
		},
		{
			Account: shared.Account{ID: StudentID3, Email: "student3@example.com", Name: "Barbara Liskov",
				Faculty: FacultyEngineering, Role: shared.RoleStudent, IsActive: true, CreatedAt: now},
			StudentNumber: "202400003", Department: DeptElectrical,
			CurrentSemester: nil, HasRegistered: false,
		},
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(CommonPassword), bcryptCost)
	if err != nil {
		log.Fatalf("Error hashing common password: %v", err)
	}
	hashedPassword := string(hashedBytes)

	for _, s := range seeds {
		account := s.Account
		account.PasswordHash = hashedPassword

		filter := bson.M{"email": account.Email}
		update := bson.M{"$set": account}
		opts := options.Update().SetUpsert(true)
		if _, err := accountsCol.UpdateOne(ctx, filter, update, opts); err != nil {
			log.Fatalf("Error seeding account %s: %v", account.Email, err)
		}

		switch account.Role {
		case shared.RoleStudent:
			profile := shared.StudentProfile{
				AccountID:       account.ID,
				StudentNumber:   s.StudentNumber,
				Department:      s.Department,
				CurrentSemester: s.CurrentSemester,
				HasRegistered:   s.HasRegistered,
			}
			if _, err := studentProfilesCol.InsertOne(ctx, profile); err != nil {
				log.Fatalf("Error seeding student profile %s: %v", account.Email, err)
			}
		default:
			profile := shared.InstructorProfile{
				AccountID:  account.ID,
				Title:      s.Title,
				Department: s.Department,
			}
			if _, err := instructorProfilesCol.InsertOne(ctx, profile); err != nil {
				log.Fatalf("Error seeding instructor profile %s: %v", account.Email, err)
			}
		}

		log.Printf("Seeded %s: %s", account.Role, account.Email)
	}
}

func seedCourses(ctx context.Context, db *mongo.Database) {
	log.Println("--- Seeding Courses ---")
	coursesCol := db.Collection("courses")
	courseDepartmentsCol := db.Collection("course_departments")
	courseDoctorsCol := db.Collection("course_doctors")
	courseAssistantsCol := db.Collection("course_assistants")

	courses := []shared.Course{
		{
			ID: CS101ID, Code: "CS101", Name: "Introduction to Programming",
			CreditHours: shared.Int32Ptr(3), Faculty: FacultyEngineering, Semester: 3,
			HasPractical: true, HasAssistants: true,
			MaxMidTerm: shared.Float64Ptr(20), MaxFinalExam: shared.Float64Ptr(50),
			MaxQuizzes: shared.Float64Ptr(10), MaxPractical: shared.Float64Ptr(20),
			MaxTotal: shared.Float64Ptr(100),
		},
		{
			ID: CS102ID, Code: "CS102", Name: "Discrete Mathematics",
			CreditHours: shared.Int32Ptr(2), Faculty: FacultyEngineering, Semester: 3,
			HasPractical: false, HasAssistants: false,
			MaxMidTerm: shared.Float64Ptr(15), MaxFinalExam: shared.Float64Ptr(30),
			MaxQuizzes: shared.Float64Ptr(5),
			MaxTotal:   shared.Float64Ptr(50),
		},
		{
			ID: EE201ID, Code: "EE201", Name: "Circuit Analysis",
			CreditHours: shared.Int32Ptr(4), Faculty: FacultyEngineering, Semester: 4,
			HasPractical: true, HasAssistants: false,
			MaxMidTerm: shared.Float64Ptr(25), MaxFinalExam: shared.Float64Ptr(50),
			MaxQuizzes: shared.Float64Ptr(10), MaxPractical: shared.Float64Ptr(15),
			MaxTotal: shared.Float64Ptr(100),
		},
	}

	for _, c := range courses {
		if _, err := coursesCol.InsertOne(ctx, c); err != nil {
			log.Fatalf("Error seeding course %s: %v", c.Code, err)
		}
		log.Printf("Seeded Course: %s (%s)", c.Code, c.Name)
	}

	courseDepartments := []shared.CourseDepartment{
		{CourseID: CS101ID, Department: DeptComputer},
		{CourseID: CS102ID, Department: DeptComputer},
		{CourseID: EE201ID, Department: DeptComputer},
		{CourseID: EE201ID, Department: DeptElectrical},
	}
	for _, cd := range courseDepartments {
		if _, err := courseDepartmentsCol.InsertOne(ctx, cd); err != nil {
			log.Fatalf("Error seeding course-department relation: %v", err)
		}
	}
	log.Printf("Seeded %d course-department relations", len(courseDepartments))

	courseDoctors := []shared.CourseInstructor{
		{CourseID: CS101ID, AccountID: DoctorID1},
		{CourseID: CS102ID, AccountID: DoctorID1},
		{CourseID: EE201ID, AccountID: DoctorID1},
	}
	for _, cd := range courseDoctors {
		if _, err := courseDoctorsCol.InsertOne(ctx, cd); err != nil {
			log.Fatalf("Error seeding course-doctor relation: %v", err)
		}
	}

	courseAssistants := []shared.CourseInstructor{
		{CourseID: CS101ID, AccountID: AssistantID1},
	}
	for _, ca := range courseAssistants {
		if _, err := courseAssistantsCol.InsertOne(ctx, ca); err != nil {
			log.Fatalf("Error seeding course-assistant relation: %v", err)
		}
	}
	log.Printf("Seeded %d doctor and %d assistant assignments", len(courseDoctors), len(courseAssistants))
}

func seedGradeRecords(ctx context.Context, db *mongo.Database) {
	log.Println("--- Seeding Grade Records ---")
	recordsCol := db.Collection("grade_records")

	seeds := []RecordSeed{
		// Student 1: fully graded in CS101, partially in CS102
		{StudentID1, CS101ID,
			shared.Float64Ptr(16), shared.Float64Ptr(40), shared.Float64Ptr(8), shared.Float64Ptr(16)},
		{StudentID1, CS102ID,
			shared.Float64Ptr(12), shared.Float64Ptr(24), shared.Float64Ptr(4), nil},
		// Student 2: registered, no marks yet
		{StudentID2, CS101ID, nil, nil, nil, nil},
	}

	hasPractical := map[string]bool{CS101ID: true, CS102ID: false, EE201ID: true}

	for _, s := range seeds {
		record := shared.GradeRecord{
			ID:        shared.GenerateRecordID(),
			StudentID: s.StudentID,
			CourseID:  s.CourseID,
			MidTerm:   s.MidTerm,
			FinalExam: s.FinalExam,
			Quizzes:   s.Quizzes,
			Practical: s.Practical,
		}
		record.Total = record.ComponentSum(hasPractical[s.CourseID])

		if _, err := recordsCol.InsertOne(ctx, record); err != nil {
			log.Fatalf("Error seeding grade record for %s in %s: %v", s.StudentID, s.CourseID, err)
		}
		log.Printf("Seeded Grade Record: %s in %s (Total: %.2f)", s.StudentID, s.CourseID, record.Total)
	}
}
