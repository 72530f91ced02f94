package main

import (
	"fmt"
	"log"
	"time"

	"invogen/internal/config"
	"invogen/internal/email/noop"
	"invogen/internal/email/ses"
	"invogen/internal/handler"
	"invogen/internal/payment/razorpay"
	"invogen/internal/pdf"
	"invogen/internal/port"
	"invogen/internal/repository/postgres"
	"invogen/internal/router"
	"invogen/internal/service"
	s3storage "invogen/internal/storage/s3"
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
	accountRepo := postgres.NewAccountRepo(db)
	profileRepo := postgres.NewProfileRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	orderRepo := postgres.NewOrderRepo(db)

	// Initialize storage
	logoStore, err := s3storage.NewLogoStore(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize email relay
	var emailSender port.EmailSender
	if cfg.Email.Provider == "ses" {
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress,
			cfg.Email.FromName, cfg.Email.FrontendURL,
			time.Duration(cfg.Email.TimeoutSecs)*time.Second)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		emailSender = noop.NewSender()
	}

	// Initialize payment gateway
	gateway := razorpay.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret,
		cfg.Razorpay.WebhookSecret, cfg.Razorpay.BaseURL,
		time.Duration(cfg.Razorpay.TimeoutSecs)*time.Second)

	// Initialize services
	renderer := pdf.NewRenderer()
	authSvc := service.NewAuthService(accountRepo, cfg.JWT)
	profileSvc := service.NewProfileService(profileRepo, logoStore, cfg.S3)
	invoiceSvc := service.NewInvoiceService(accountRepo, profileRepo, invoiceRepo,
		logoStore, emailSender, renderer, cfg.S3, cfg.Billing)
	billingSvc := service.NewBillingService(accountRepo, orderRepo, gateway,
		cfg.Billing, cfg.Razorpay.KeyID)
	exportSvc := service.NewExportService(invoiceRepo, profileRepo, cfg.Billing.HistoryLimit)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	profileH := handler.NewProfileHandler(profileSvc, accountRepo)
	invoiceH := handler.NewInvoiceHandler(invoiceSvc, exportSvc)
	billingH := handler.NewBillingHandler(billingSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(authSvc, cfg.CORS.AllowedOrigins, authH, profileH, invoiceH, billingH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
