package api

import (
	"net/http"

	"github.com/garnizeh/jobboard/internal/catalog"
	"github.com/garnizeh/jobboard/internal/config"
	"github.com/garnizeh/jobboard/internal/tracker"
	"github.com/garnizeh/jobboard/pkg/repository"
	"github.com/gorilla/mux"
)

// Services are the dependencies the HTTP layer is built on.
type Services struct {
	Users    repository.UserRepo
	Profiles repository.ProfileRepo
	Catalog  *catalog.Catalog
	Tracker  *tracker.Tracker
	// DB backs the health check; nil reports healthy without a ping.
	DB Pinger
}

func SetupRoutes(cfg *config.Config, version, buildTime string, s Services) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	auth := JWTAuthMiddlewareWithSecret(cfg.JWTSecret)
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	// Create handlers
	systemHandler := NewSystemHandler(s.DB)
	authHandler := NewAuthHandler(s.Users, s.Profiles, cfg.JWTSecret, cfg.TokenDuration)
	profileHandler := NewProfileHandler(s.Profiles)
	jobsHandler := NewJobsHandler(s.Catalog)
	wizardHandler := NewWizardHandler(s.Catalog)
	interestsHandler := NewInterestsHandler(s.Tracker)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// Catalog: reads are public, writes need a user
	r.HandleFunc("/v1/jobs", jobsHandler.ListJobs).Methods("GET")
	r.Handle("/v1/jobs", protected(jobsHandler.CreateJob)).Methods("POST")
	r.HandleFunc("/v1/jobs/{jobId}", jobsHandler.GetJob).Methods("GET")
	r.Handle("/v1/jobs/{jobId}", protected(jobsHandler.UpdateJob)).Methods("PUT")
	r.Handle("/v1/jobs/{jobId}", protected(jobsHandler.DeleteJob)).Methods("DELETE")
	r.HandleFunc("/v1/categories", jobsHandler.ListCategories).Methods("GET")
	r.Handle("/v1/categories", protected(jobsHandler.AddCategory)).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(auth)

	apiV1.HandleFunc("/auth/signout", authHandler.Signout).Methods("POST")

	apiV1.HandleFunc("/profile", profileHandler.GetProfile).Methods("GET")
	apiV1.HandleFunc("/profile", profileHandler.UpdateProfile).Methods("PUT")

	apiV1.HandleFunc("/wizard/steps/{step}/validate", wizardHandler.ValidateStep).Methods("POST")
	apiV1.HandleFunc("/wizard/submit", wizardHandler.Submit).Methods("POST")

	interests := apiV1.PathPrefix("/interests").Subrouter()
	interests.HandleFunc("", interestsHandler.ListInterests).Methods("GET")
	interests.HandleFunc("", interestsHandler.AddInterest).Methods("POST")
	interests.HandleFunc("/stream", interestsHandler.Stream).Methods("GET")
	interests.HandleFunc("/alerts", interestsHandler.Alerts).Methods("GET")
	interests.HandleFunc("/coverage", interestsHandler.Coverage).Methods("GET")
	interests.HandleFunc("/with-jobs", interestsHandler.WithJobs).Methods("GET")
	interests.HandleFunc("/{jobId}", interestsHandler.GetInterest).Methods("GET")
	interests.HandleFunc("/{jobId}", interestsHandler.DeleteInterest).Methods("DELETE")
	interests.HandleFunc("/{jobId}/status", interestsHandler.UpdateStatus).Methods("PUT")
	interests.HandleFunc("/{jobId}/notes", interestsHandler.AddNote).Methods("POST")
	interests.HandleFunc("/{jobId}/priority", interestsHandler.UpdatePriority).Methods("PUT")
	interests.HandleFunc("/{jobId}/tags", interestsHandler.UpdateTags).Methods("PUT")
	interests.HandleFunc("/{jobId}/bookmarked", interestsHandler.Bookmarked).Methods("GET")

	return r
}
