package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/config"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/database"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/handlers"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/logger"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/services"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/store"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin == config.Cfg.AllowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, X-User-ID, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Portfolio tracker backend starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	logger.L.Info("Initializing stores, services and handlers...")
	txStore := store.NewTransactionStore(database.DB)
	refStore := store.NewReferenceStore(database.DB)
	snapshotStore := store.NewSnapshotStore(database.DB)

	portfolioService := services.NewPortfolioService(txStore, reportCache)
	snapshotService := services.NewSnapshotService(txStore, snapshotStore, portfolioService)
	importService := services.NewImportService(txStore, refStore, portfolioService, snapshotService)

	if err := snapshotService.Start(config.Cfg.SnapshotSchedule); err != nil {
		logger.L.Error("Failed to start snapshot scheduler", "error", err)
	}
	defer snapshotService.Stop()

	uploadHandler := handlers.NewUploadHandler(importService)
	txHandler := handlers.NewTransactionHandler(importService, portfolioService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
	snapshotHandler := handlers.NewSnapshotHandler(snapshotService)
	referenceHandler := handlers.NewReferenceHandler(refStore)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/upload", uploadHandler.HandleUpload)
	apiRouter.HandleFunc("GET /api/transactions", txHandler.HandleGetTransactions)
	apiRouter.HandleFunc("POST /api/transactions", txHandler.HandleCreateTransaction)
	apiRouter.HandleFunc("DELETE /api/transactions/{id}", txHandler.HandleDeleteTransaction)
	apiRouter.HandleFunc("DELETE /api/transactions", txHandler.HandleDeleteAllTransactions)
	apiRouter.HandleFunc("DELETE /api/imports/{batchID}", txHandler.HandleDeleteBatch)
	apiRouter.HandleFunc("GET /api/holdings", portfolioHandler.HandleGetHoldings)
	apiRouter.HandleFunc("GET /api/portfolio/timeseries", portfolioHandler.HandleGetTimeSeries)
	apiRouter.HandleFunc("GET /api/dividends", portfolioHandler.HandleGetDividends)
	apiRouter.HandleFunc("GET /api/allocation", portfolioHandler.HandleGetAllocation)
	apiRouter.HandleFunc("GET /api/snapshots", snapshotHandler.HandleGetSnapshots)
	apiRouter.HandleFunc("POST /api/snapshots", snapshotHandler.HandleRecordSnapshot)
	apiRouter.HandleFunc("GET /api/securities", referenceHandler.HandleGetSecurities)
	apiRouter.HandleFunc("GET /api/brokers", referenceHandler.HandleGetBrokers)

	rootMux.Handle("/api/", handlers.UserMiddleware(apiRouter))

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Portfolio Tracker backend is running"})
		} else if !strings.HasPrefix(r.URL.Path, "/api/") {
			logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
