package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jasperwreed/bookstats/api/handlers"
	"github.com/jasperwreed/bookstats/api/middleware"
	"github.com/jasperwreed/bookstats/internal/pricing"
	"github.com/jasperwreed/bookstats/internal/storage"
)

type Server struct {
	store  *storage.SQLiteStore
	router *http.ServeMux
	port   string
}

func main() {
	var port string
	var dbPath string
	var pricingPath string

	flag.StringVar(&port, "port", "8080", "Port to run the API server on")
	flag.StringVar(&dbPath, "db", "", "Path to library database file")
	flag.StringVar(&pricingPath, "pricing", "", "Path to pricing table JSON file")
	flag.Parse()

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatal("Failed to open library:", err)
	}
	defer store.Close()

	rates := pricing.Default()
	if pricingPath != "" {
		rates, err = pricing.Load(pricingPath)
		if err != nil {
			log.Fatal("Failed to load pricing table:", err)
		}
	}

	server := NewServer(store, rates, port)

	log.Printf("Starting API server on port %s", port)
	log.Printf("Library: %s", store.Path())
	log.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		log.Fatal("Server error:", err)
	}
}

func NewServer(store *storage.SQLiteStore, rates []pricing.Model, port string) *Server {
	s := &Server{
		store:  store,
		router: http.NewServeMux(),
		port:   port,
	}
	s.setupRoutes(rates)
	return s
}

func (s *Server) setupRoutes(rates []pricing.Model) {
	h := handlers.NewHandlers(s.store, rates)

	// Apply middleware
	withCORS := middleware.CORS
	withLogging := middleware.Logging
	withJSON := middleware.JSON

	// Health check
	s.router.HandleFunc("GET /api/health", withLogging(withJSON(h.Health)))

	// Book routes
	s.router.HandleFunc("GET /api/books", withLogging(withCORS(withJSON(h.ListBooks))))
	s.router.HandleFunc("GET /api/books/{id}", withLogging(withCORS(withJSON(h.GetBook))))
	s.router.HandleFunc("POST /api/analyze", withLogging(withCORS(withJSON(h.AnalyzeBook))))
	s.router.HandleFunc("DELETE /api/books/{id}", withLogging(withCORS(withJSON(h.DeleteBook))))

	// Search routes
	s.router.HandleFunc("GET /api/search", withLogging(withCORS(withJSON(h.Search))))
	s.router.HandleFunc("GET /api/words/{word}", withLogging(withCORS(withJSON(h.WordOccurrences))))

	// Statistics route
	s.router.HandleFunc("GET /api/stats", withLogging(withCORS(withJSON(h.GetStatistics))))

	// Report routes set their own content type
	s.router.HandleFunc("GET /api/books/{id}/report", withLogging(withCORS(h.GetReport)))
	s.router.HandleFunc("GET /api/books/{id}/export", withLogging(withCORS(h.ExportBook)))
}

func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         ":" + s.port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server shutdown complete")
	return nil
}
