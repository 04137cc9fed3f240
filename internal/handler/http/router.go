package http

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/auth"
	"github.com/cmlabs-hris/training-records-backend/internal/handler/http/middleware"
	"github.com/cmlabs-hris/training-records-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/training-records-backend/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string

	// AssetsURL and AssetsDir serve stored files; an empty AssetsDir disables it
	AssetsURL string
	AssetsDir string
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, authHandler AuthHandler, employeeHandler EmployeeHandler, trainingHandler TrainingHandler) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logFormat := httplog.SchemaECS.Concise(false)
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			ReplaceAttr: logFormat.ReplaceAttr,
		}))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		response.Text(w, http.StatusOK, "API is working!")
	})

	r.Route("/employees", func(r chi.Router) {
		r.Get("/", employeeHandler.ListEmployees)
		r.Post("/add", employeeHandler.CreateEmployee)
		r.Post("/login", authHandler.EmployeeLogin)
		r.Put("/updateProfile/{employeeId}", employeeHandler.UpdateProfile)

		r.Route("/{employeeId}", func(r chi.Router) {
			r.Get("/", employeeHandler.GetEmployee)
			r.Delete("/", employeeHandler.DeleteEmployee)
			r.Get("/training", trainingHandler.ListByEmployee)
		})
	})

	r.Get("/employeeDetailPage/{employeeId}", employeeHandler.GetEmployeeDetail)
	r.Get("/viewEmployeeProfile/{employeeId}", employeeHandler.ViewEmployeeProfile)

	r.Route("/updateEmployeeProfile/{employeeId}", func(r chi.Router) {
		r.Post("/", employeeHandler.UploadAvatar)
		r.Put("/", employeeHandler.UpdatePicture)
	})

	r.Route("/training", func(r chi.Router) {
		r.Get("/all", trainingHandler.ListAll)
		r.Post("/add", trainingHandler.AddTraining)
	})

	r.Post("/admin/login", authHandler.AdminLogin)

	// Requires authentication
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired)
		r.Use(middleware.RequireRole(auth.RoleEmployee))

		r.Get("/me", employeeHandler.Me)
	})

	if opts.AssetsDir != "" {
		prefix := "/" + strings.Trim(opts.AssetsURL, "/")
		files := http.StripPrefix(prefix, noDirListing(http.FileServer(http.Dir(opts.AssetsDir))))
		r.Get(prefix+"/*", files.ServeHTTP)
	}

	return r
}

// noDirListing answers 404 for directory paths instead of an index page
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			response.NotFound(w, "File not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}
