// Package gateway is the HTTP surface of the records service: routing,
// CORS, auth middleware, and the JSON handlers.
package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"unirecords/internal/auth"
	"unirecords/internal/gateway/handlers"
	"unirecords/internal/gateway/util"
	"unirecords/internal/gpa"
	"unirecords/internal/grading"
	"unirecords/internal/registrar"
	"unirecords/internal/shared"
)

// Services bundles the engine services the router dispatches to.
type Services struct {
	Auth      *auth.Service
	Registrar *registrar.Service
	Grading   *grading.Service
	GPA       *gpa.Service
}

// SetupRoutes configures the Chi router, middleware, and route handlers.
func SetupRoutes(services *Services, config *shared.AppConfig) *chi.Mux {
	r := chi.NewRouter()

	// 1. Global Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS Configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 2. Initialize Handlers
	authHandler := &handlers.AuthHandler{Auth: services.Auth}
	studentHandler := &handlers.StudentHandler{Registrar: services.Registrar, GPA: services.GPA}
	instructorHandler := &handlers.InstructorHandler{Grading: services.Grading}

	// 3. Define Routes (grouped by prefix)
	r.Route("/api", func(r chi.Router) {

		// --- Public Routes ---
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout) // Logout handles its own token extraction

		// --- Protected Routes (Require Valid Token) ---
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(services.Auth))

			// Auth (Authenticated Only)
			r.Get("/auth/validate", authHandler.Validate)
			r.Post("/auth/change-password", authHandler.ChangePassword)

			// Student (Student Only, own record)
			r.Route("/students/{email}", func(r chi.Router) {
				r.Get("/", studentHandler.GetProfile)
				r.Get("/available-courses", studentHandler.AvailableCourses)
				r.Post("/register-courses", studentHandler.RegisterCourses)
				r.Put("/registration-complete", studentHandler.CompleteRegistration)
				r.Get("/records", studentHandler.Records)
				r.Get("/gpa", studentHandler.SemesterGPA)
				r.Get("/cgpa", studentHandler.CumulativeGPA)
				r.Post("/petitions", studentHandler.SubmitPetition)
			})

			// Instructor (Doctor or Assistant)
			r.Route("/instructors/{email}", func(r chi.Router) {
				r.Get("/", instructorHandler.GetProfile)
				r.Get("/courses", instructorHandler.Courses)
			})
			r.Route("/courses/{code}", func(r chi.Router) {
				r.Get("/roster", instructorHandler.Roster)
				r.Get("/records/{studentEmail}", instructorHandler.StudentRecord)
				r.Put("/grades", instructorHandler.UpdateGrade)
			})
		})
	})

	return r
}

// AuthMiddleware creates a middleware that validates JWT tokens and injects
// the account into the request context.
func AuthMiddleware(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Extract Token
			tokenStr, err := util.ExtractToken(r)
			if err != nil {
				util.WriteJSONError(w, http.StatusUnauthorized, "forbidden", "authorization token required")
				return
			}

			// 2. Validate token, session, and account state
			account, err := authService.Validate(r.Context(), tokenStr)
			if err != nil {
				util.WriteJSONError(w, http.StatusUnauthorized, "forbidden", "invalid or expired token")
				return
			}

			// 3. Inject Account into Context
			ctx := handlers.WithAccount(r.Context(), account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
