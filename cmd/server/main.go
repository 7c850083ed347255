package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/dte-pulse/Recruitment-Module-Backend/internal/auth"
	"github.com/dte-pulse/Recruitment-Module-Backend/internal/database"
	"github.com/dte-pulse/Recruitment-Module-Backend/internal/exam"
	"github.com/dte-pulse/Recruitment-Module-Backend/internal/generator"
	"github.com/dte-pulse/Recruitment-Module-Backend/internal/irt"
	"github.com/dte-pulse/Recruitment-Module-Backend/internal/middleware"
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

	bankPath := os.Getenv("ITEM_BANK_PATH")
	if bankPath == "" {
		bankPath = "item_bank.json"
	}
	if err := database.SeedItems(db, bankPath); err != nil {
		log.Printf("WARN: seeding item bank: %v", err)
	}

	// Initialize handlers
	calibrator := irt.NewCalibrator(irt.UnavailableEstimator{}, irt.DefaultBounds())
	examService := exam.NewService(exam.NewStore(db), generator.NewGenerator(), calibrator)
	examHandler := exam.NewHandler(examService)
	authHandler := auth.NewHandler(db)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes — candidates authenticate per-request with
	// email + exam key, not with accounts
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/cat/start", examHandler.StartExam).Methods("POST")
	api.HandleFunc("/cat/next-item", examHandler.NextItem).Methods("POST")
	api.HandleFunc("/cat/submit-answer", examHandler.SubmitAnswer).Methods("POST")
	api.HandleFunc("/cat/complete", examHandler.CompleteExam).Methods("POST")

	// Protected routes — HR dashboard
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/cat/sessions/{id}/status", examHandler.SessionStatus).Methods("GET")
	protected.HandleFunc("/cat/recalibrate", examHandler.Recalibrate).Methods("POST")
	protected.HandleFunc("/cat-items", examHandler.ListItems).Methods("GET")
	protected.HandleFunc("/cat-items", examHandler.CreateItem).Methods("POST")
	protected.HandleFunc("/cat-items/generate", examHandler.GenerateItems).Methods("POST")
	protected.HandleFunc("/cat-items/{id}", examHandler.GetItem).Methods("GET")
	protected.HandleFunc("/cat-items/{id}", examHandler.UpdateItem).Methods("PUT")
	protected.HandleFunc("/cat-items/{id}", examHandler.DeleteItem).Methods("DELETE")

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
