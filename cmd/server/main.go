package main

import (
	"fmt"
	"log"

	"invoiceai/internal/config"
	"invoiceai/internal/extract"
	_ "invoiceai/internal/extract/claude"
	"invoiceai/internal/handler"
	"invoiceai/internal/logger"
	"invoiceai/internal/port"
	"invoiceai/internal/repository/postgres"
	"invoiceai/internal/router"
	"invoiceai/internal/service"
	localstorage "invoiceai/internal/storage/local"
	s3storage "invoiceai/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Setup(&cfg.Log); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize storage disk
	var storage port.FileStorage
	switch cfg.Storage.Disk {
	case "s3":
		storage, err = s3storage.NewS3Storage(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
	default:
		storage, err = localstorage.NewLocalStorage(&cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize local storage: %w", err)
		}
	}

	// Initialize extractor driver
	extractor, err := extract.NewExtractor(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}

	// Initialize repository, service, handlers
	invoiceRepo := postgres.NewInvoiceRepo(db, &cfg.Tables, &cfg.MultiTenancy)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, storage, extractor, &cfg.Storage, &cfg.Upload)
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, invoiceH, healthH, nil)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
