package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"fakturo/internal/config"
	"fakturo/internal/email/noop"
	"fakturo/internal/email/ses"
	"fakturo/internal/handler"
	"fakturo/internal/port"
	"fakturo/internal/repository/postgres"
	"fakturo/internal/router"
	"fakturo/internal/service"
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

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	clientRepo := postgres.NewClientRepo(db)
	accountRepo := postgres.NewBankAccountRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	templateRepo := postgres.NewRecurringTemplateRepo(db)
	profileRepo := postgres.NewProfileRepo(db)

	// Initialize email delivery
	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender()
	}

	// Initialize services
	invoiceSvc := service.NewInvoiceService(invoiceRepo, clientRepo, accountRepo, profileRepo)
	recurringSvc := service.NewRecurringService(templateRepo, invoiceRepo, clientRepo, accountRepo, profileRepo, emailSender)
	migrationSvc := service.NewMigrationService(invoiceRepo, clientRepo, accountRepo, profileRepo)

	// Initialize handlers
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	paymentH := handler.NewPaymentHandler()
	recurringH := handler.NewRecurringHandler(recurringSvc)
	migrationH := handler.NewMigrationHandler(migrationSvc)
	healthH := handler.NewHealthHandler(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the recurring invoice sweep loop
	if cfg.Scheduler.Enabled {
		worker := service.NewRecurringWorker(recurringSvc, service.RecurringWorkerConfig{
			PollInterval: time.Duration(cfg.Scheduler.PollIntervalSecs) * time.Second,
		})
		go worker.Start(ctx)
	}

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, invoiceH, paymentH, recurringH, migrationH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
