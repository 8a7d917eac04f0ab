package main

import (
	"context"
	"net/http"

	"vibelearner/internal/auth"
	"vibelearner/internal/cache"
	"vibelearner/internal/config"
	"vibelearner/internal/handlers"
	"vibelearner/internal/logger"
	courseService "vibelearner/internal/service/course"
	"vibelearner/internal/service/generator"
	historyService "vibelearner/internal/service/history"
	"vibelearner/internal/store"
)

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	logger.Log.WithField("project_id", cfg.Firestore.ProjectID).Info("Connecting to document store")
	docStore, err := store.NewFirestoreStore(ctx, &cfg.Firestore)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to document store: %v", err)
	}
	defer docStore.Close()

	historyCache, err := cache.Open(cfg.Cache.DBPath)
	if err != nil {
		logger.Log.Fatalf("Failed to open history cache: %v", err)
	}
	defer historyCache.Close()

	genClient := generator.NewHTTPClient(&cfg.Generator)

	courses := courseService.NewCourseService(docStore, historyCache, genClient, &cfg.Course)
	history := historyService.NewHistoryService(docStore, historyCache)

	authHandlers := auth.NewAuthHandlers(docStore, &cfg.Auth)
	apiHandlers := handlers.NewHandlers(courses, history, docStore)

	// Go 1.22+ routing with method and path patterns
	mux := http.NewServeMux()

	corsHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.WriteHeader(http.StatusOK)
	}

	// Public routes
	mux.HandleFunc("POST /api/register", enableCORS(authHandlers.RegisterHandler))
	mux.HandleFunc("OPTIONS /api/register", corsHandler)
	mux.HandleFunc("POST /api/login", enableCORS(authHandlers.LoginHandler))
	mux.HandleFunc("OPTIONS /api/login", corsHandler)
	mux.HandleFunc("GET /api/health", enableCORS(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))
	mux.HandleFunc("OPTIONS /api/health", corsHandler)

	// Protected routes
	mux.HandleFunc("POST /api/courses", enableCORS(authHandlers.Middleware(apiHandlers.SubmitCourseHandler)))
	mux.HandleFunc("OPTIONS /api/courses", corsHandler)
	mux.HandleFunc("GET /api/courses/{id}", enableCORS(authHandlers.Middleware(apiHandlers.GetCourseHandler)))
	mux.HandleFunc("OPTIONS /api/courses/{id}", corsHandler)

	mux.HandleFunc("GET /api/history", enableCORS(authHandlers.Middleware(apiHandlers.GetHistoryHandler)))
	mux.HandleFunc("POST /api/history", enableCORS(authHandlers.Middleware(apiHandlers.AddHistoryHandler)))
	mux.HandleFunc("DELETE /api/history", enableCORS(authHandlers.Middleware(apiHandlers.ClearHistoryHandler)))
	mux.HandleFunc("OPTIONS /api/history", corsHandler)
	mux.HandleFunc("DELETE /api/history/{id}", enableCORS(authHandlers.Middleware(apiHandlers.DeleteHistoryItemHandler)))
	mux.HandleFunc("OPTIONS /api/history/{id}", corsHandler)

	mux.HandleFunc("GET /api/profile", enableCORS(authHandlers.Middleware(apiHandlers.GetProfileHandler)))
	mux.HandleFunc("OPTIONS /api/profile", corsHandler)
	mux.HandleFunc("POST /api/profile/sync", enableCORS(authHandlers.Middleware(apiHandlers.SyncProfileHandler)))
	mux.HandleFunc("OPTIONS /api/profile/sync", corsHandler)

	logger.Log.WithField("port", cfg.Server.Port).Info("Server starting")

	if err := http.ListenAndServe(":"+cfg.Server.Port, mux); err != nil {
		logger.Log.Fatalf("Server failed to start: %v", err)
	}
}
