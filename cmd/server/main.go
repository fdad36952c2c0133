package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikolailic0529/easyquote-ingest/internal/config"
	"github.com/nikolailic0529/easyquote-ingest/internal/db"
	"github.com/nikolailic0529/easyquote-ingest/internal/domain"
	"github.com/nikolailic0529/easyquote-ingest/internal/events"
	"github.com/nikolailic0529/easyquote-ingest/internal/extraction"
	"github.com/nikolailic0529/easyquote-ingest/internal/ingestion"
	"github.com/nikolailic0529/easyquote-ingest/internal/mapping"
	"github.com/nikolailic0529/easyquote-ingest/internal/middleware"
	"github.com/nikolailic0529/easyquote-ingest/internal/processor"
	"github.com/nikolailic0529/easyquote-ingest/internal/repository"

	"github.com/rs/cors"
)

func main() {
	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations(conn.Pool); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := os.MkdirAll(cfg.Server.UploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	// Create repositories
	columnRepo := repository.NewColumnRepository(conn)
	fileRepo := repository.NewQuoteFileRepository(conn.Pool)
	importStore := repository.NewImportStore(conn)

	// Outbound sync to the mapping service; disabled when unconfigured
	var syncer ingestion.ColumnSyncer
	if cfg.Mapping.BaseURL != "" {
		mappingClient := mapping.NewClient(ctx, cfg.Mapping)
		syncer = mapping.NewSyncer(mappingClient)
	} else {
		log.Println("Mapping service not configured, outbound column sync disabled")
	}

	importer := ingestion.NewService(importStore, fileRepo, syncer)

	// Document engine clients, one per parser endpoint
	generic := processor.NewPriceListProcessor(processor.GenericSpreadsheetProcessorID, extraction.NewGenericClient(cfg.Engine), importer)
	legacy := processor.NewLegacySpreadsheetProcessor(importer)
	pdf := processor.NewPriceListProcessor(processor.PDFPriceListProcessorID, extraction.NewPDFClient(cfg.Engine), importer)
	uePDF := processor.NewPriceListProcessor(processor.UEPDFPriceListProcessorID, extraction.NewUEPDFClient(cfg.Engine), importer)
	word := processor.NewPriceListProcessor(processor.WordPriceListProcessorID, extraction.NewWordClient(cfg.Engine), importer)
	schedule := processor.NewScheduleProcessor(processor.PaymentScheduleProcessorID, extraction.NewScheduleClient(cfg.Engine), importer)

	// Spreadsheets fall back to the local parser when the engine yields nothing
	dispatcher := processor.NewDispatcher(processor.WithFallback(generic, legacy))
	dispatcher.Register("", domain.FileKindSpreadsheet, "", processor.WithFallback(generic, legacy))
	dispatcher.Register("", domain.FileKindPDF, "", pdf)
	dispatcher.Register("UE", domain.FileKindPDF, "", uePDF)
	dispatcher.Register("", domain.FileKindWord, "", word)
	dispatcher.Register("", domain.FileKindSchedule, "", schedule)

	eventService, err := events.NewService(cfg.Mapping.ClientID, columnRepo)
	if err != nil {
		log.Fatalf("Failed to initialize event service: %v", err)
	}

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	processHandler := middleware.LoggingMiddleware(processor.NewHTTPHandler(fileRepo, dispatcher, cfg.Server.UploadDir))
	webhookHandler := middleware.LoggingMiddleware(events.NewHTTPHandler(eventService))

	http.Handle("/api/quote-files", corsHandler.Handler(processHandler))
	http.Handle("/api/document-engine/events", corsHandler.Handler(webhookHandler))

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting ingestion server on %s", cfg.Server.Addr)
		log.Printf("Upload endpoint available at http://localhost%s/api/quote-files", cfg.Server.Addr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
