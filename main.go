package main

import (
	"crypto/tls"
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/catearacil/facturas/src/config"
	"github.com/catearacil/facturas/src/database"
	"github.com/catearacil/facturas/src/handlers"
	"github.com/catearacil/facturas/src/history"
	"github.com/catearacil/facturas/src/logger"
	"github.com/catearacil/facturas/src/processors"
	"github.com/catearacil/facturas/src/renderer"
	"github.com/catearacil/facturas/src/services"
	"github.com/catearacil/facturas/src/utils"
)

func proxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		for _, allowed := range config.Cfg.AllowedOrigins {
			if origin == allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")
				break
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Facturas backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	// History persistence: SQLite primary, JSON flat file secondary. The
	// fallback wrapper keeps processing alive when the database is down.
	primaryStore := history.NewSQLiteStore(database.DB)
	secondaryStore := history.NewJSONFileStore(config.Cfg.HistoryFilePath)
	historyStore := history.NewFallbackStore(primaryStore, secondaryStore)

	sequencer := processors.NewSequencer(historyStore, config.Cfg.LastInvoiceNumbers)
	invoiceRenderer := renderer.NewTextRenderer(config.Cfg.OutputDir)

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	historyService := services.NewHistoryService(historyStore, sequencer, reportCache)
	statementService := services.NewStatementService(historyStore, sequencer, invoiceRenderer, historyService.InvalidateCache)

	uploadHandler := handlers.NewUploadHandler(statementService)
	historyHandler := handlers.NewHistoryHandler(historyService)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(proxyHeadersMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Facturas backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", uploadHandler.HandleUpload)
		r.Get("/history", historyHandler.HandleListRecords)
		r.Get("/history/months", historyHandler.HandleMonthSummaries)
		r.Delete("/history/{id}", historyHandler.HandleDeleteRecord)
		r.Delete("/history/months/{month}", historyHandler.HandleDeleteMonth)
		r.Get("/numbering", historyHandler.HandleNumberingStatus)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			utils.SendJSONError(w, "not found", http.StatusNotFound)
			return
		}
		http.NotFound(w, r)
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
