package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ErmoGarcia/expense-toolkit/internal/api"
	"github.com/ErmoGarcia/expense-toolkit/internal/config"
	"github.com/ErmoGarcia/expense-toolkit/internal/data/mongo"
	"github.com/ErmoGarcia/expense-toolkit/internal/data/postgres"
	"github.com/ErmoGarcia/expense-toolkit/internal/importer"
	"github.com/ErmoGarcia/expense-toolkit/internal/logger"
	"github.com/ErmoGarcia/expense-toolkit/internal/notifier"
	"github.com/ErmoGarcia/expense-toolkit/internal/parser"
	"github.com/ErmoGarcia/expense-toolkit/internal/platform/messaging/producers"
	"github.com/ErmoGarcia/expense-toolkit/internal/platform/persistence"
	"github.com/ErmoGarcia/expense-toolkit/internal/queue"
	"github.com/ErmoGarcia/expense-toolkit/internal/rules"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for the notification topic
	kafkaProducer, err := producers.NewNotificationMessageProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	recordRepo := postgres.NewRecordRepository(log, postgresDB)
	jobRepo := postgres.NewImportJobRepository(log, postgresDB)
	expenseRepo := postgres.NewExpenseRepository(log, postgresDB)
	aliasRepo := postgres.NewMerchantAliasRepository(log, postgresDB)
	tagRepo := postgres.NewTagRepository(log, postgresDB)
	ruleRepo := postgres.NewRuleRepository(log, postgresDB)
	notificationRepo := postgres.NewNotificationRepository(log, postgresDB)
	auditRepo := mongo.NewAuditRepository(log, mongoDB)

	// Initialize services
	registry := parser.NewRegistry(cfg.Import.DefaultCurrency)
	importService := importer.NewService(postgresDB, registry, jobRepo, accountRepo, recordRepo, auditRepo, &cfg.Import, log)
	notifierService := notifier.NewService(postgresDB, notificationRepo, accountRepo, recordRepo, kafkaProducer, &cfg.Import, log)
	finalizer := queue.NewFinalizer(expenseRepo, aliasRepo, tagRepo, log)
	queueService := queue.NewService(postgresDB, recordRepo, expenseRepo, finalizer, auditRepo, log)
	ruleEngine := rules.NewEngine(postgresDB, ruleRepo, recordRepo, finalizer, auditRepo, log)

	// Initialize REST server
	server := api.NewServer(log, cfg, importService, notifierService, queueService, ruleEngine)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = kafkaProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
