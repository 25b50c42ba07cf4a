package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/examprep/backend/internal/analytics"
	"github.com/examprep/backend/internal/auth"
	"github.com/examprep/backend/internal/database"
	"github.com/examprep/backend/internal/generator"
	"github.com/examprep/backend/internal/middleware"
	"github.com/examprep/backend/internal/questions"
	"github.com/examprep/backend/internal/session"
)

func main() {
	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Collaborators
	questionStore := questions.NewStore(db)
	analyticsStore := analytics.NewStore(db)

	// Engine
	assembler := session.NewAssembler(questionStore)
	manager := session.NewManager(assembler, questionStore, analyticsStore)

	// Handlers
	authHandler := auth.NewHandler(db)
	questionHandler := questions.NewHandler(questionStore)
	sessionHandler := session.NewHandler(manager)
	analyticsHandler := analytics.NewHandler(analyticsStore)
	backfillHandler := generator.NewHandler(
		generator.NewBackfiller(questionStore, generator.NewExplainer()),
	)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/subjects", questionHandler.ListSubjects).Methods("GET")
	api.HandleFunc("/years", questionHandler.ListYears).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/sessions", sessionHandler.Start).Methods("POST")
	protected.HandleFunc("/sessions/current", sessionHandler.Get).Methods("GET")
	protected.HandleFunc("/sessions/current", sessionHandler.Cancel).Methods("DELETE")
	protected.HandleFunc("/sessions/current/answer", sessionHandler.SelectAnswer).Methods("POST")
	protected.HandleFunc("/sessions/current/advance", sessionHandler.Advance).Methods("POST")
	protected.HandleFunc("/sessions/current/submit", sessionHandler.Submit).Methods("POST")
	protected.HandleFunc("/sessions/current/key", sessionHandler.Key).Methods("POST")
	protected.HandleFunc("/sessions/current/result", sessionHandler.Result).Methods("GET")

	protected.HandleFunc("/attempts", analyticsHandler.ListAttempts).Methods("GET")
	protected.HandleFunc("/attempts/stats", analyticsHandler.GetStats).Methods("GET")

	protected.HandleFunc("/admin/explanations/backfill", backfillHandler.Backfill).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
