// Command server runs the GridBill HTTP API.
//
//	@title						GridBill API
//	@version					1.0
//	@description				Electricity billing engine: customers, tariffs, meter readings, bills and payments.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"fmt"
	"log"
	"net/http"

	"go.uber.org/zap"

	_ "gridbill/docs"
	"gridbill/internal/config"
	"gridbill/internal/handler"
	"gridbill/internal/logging"
	"gridbill/internal/notify/noop"
	"gridbill/internal/notify/ses"
	"gridbill/internal/port"
	"gridbill/internal/repository/postgres"
	"gridbill/internal/router"
	"gridbill/internal/service"
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

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	staffRepo := postgres.NewStaffRepo(db)
	customerRepo := postgres.NewCustomerRepo(db)
	tariffRepo := postgres.NewTariffRepo(db)
	readingRepo := postgres.NewMeterReadingRepo(db)
	billRepo := postgres.NewBillRepo(db)
	paymentRepo := postgres.NewPaymentRepo(db)

	// Initialize notifier
	var notifier port.Notifier
	switch cfg.Notify.Provider {
	case "ses":
		notifier, err = ses.NewNotifier(cfg.Notify)
		if err != nil {
			return fmt.Errorf("failed to init SES notifier: %w", err)
		}
	default:
		notifier = noop.NewNotifier(logger)
	}

	// Initialize services
	authSvc := service.NewAuthService(staffRepo, cfg.JWT)
	customerSvc := service.NewCustomerService(customerRepo)
	tariffSvc := service.NewTariffService(tariffRepo)
	readingSvc := service.NewReadingService(readingRepo, customerRepo, logger)
	reconcileSvc := service.NewReconcileService(customerRepo, billRepo, paymentRepo, logger)
	billingSvc := service.NewBillingService(
		customerRepo, readingRepo, billRepo, tariffSvc, reconcileSvc, notifier, cfg.Billing, logger)
	paymentSvc := service.NewPaymentService(
		billRepo, paymentRepo, customerRepo, reconcileSvc, notifier, logger)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	customerH := handler.NewCustomerHandler(customerSvc, billingSvc, paymentSvc, readingSvc)
	tariffH := handler.NewTariffHandler(tariffSvc)
	readingH := handler.NewReadingHandler(readingSvc)
	billH := handler.NewBillHandler(billingSvc, paymentSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, logger, authSvc, authH, customerH, tariffH, readingH, billH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("server starting", zap.String("addr", cfg.Server.Port))
	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
