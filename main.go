package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"

	"invoicing-cloud/internal/audit"
	"invoicing-cloud/internal/auth"
	"invoicing-cloud/internal/config"
	identityapp "invoicing-cloud/internal/identity/application"
	identity "invoicing-cloud/internal/identity/domain"
	identitymemory "invoicing-cloud/internal/identity/infrastructure/memory"
	identityrepo "invoicing-cloud/internal/identity/infrastructure/postgres"
	identityhttp "invoicing-cloud/internal/identity/interfaces/http"
	invoiceapp "invoicing-cloud/internal/invoicing/application"
	invoicing "invoicing-cloud/internal/invoicing/domain"
	invoicememory "invoicing-cloud/internal/invoicing/infrastructure/memory"
	invoicerepo "invoicing-cloud/internal/invoicing/infrastructure/postgres"
	invoicehttp "invoicing-cloud/internal/invoicing/interfaces/http"
	"invoicing-cloud/internal/invoicing/notify"
	"invoicing-cloud/internal/observability/metrics"
	"invoicing-cloud/internal/platform/database"
	profileapp "invoicing-cloud/internal/profiles/application"
	profiles "invoicing-cloud/internal/profiles/domain"
	profilememory "invoicing-cloud/internal/profiles/infrastructure/memory"
	profilerepo "invoicing-cloud/internal/profiles/infrastructure/postgres"
	profilehttp "invoicing-cloud/internal/profiles/interfaces/http"
	"invoicing-cloud/internal/storage"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		userRepo    identity.Repository
		invoiceRepo invoicing.Repository
		profileRepo profiles.Repository
		auditLogger audit.Logger
	)
	if cfg.DatabaseURL != "" {
		if err := database.RunMigrations(cfg.DatabaseURL, database.Migrations(), logger); err != nil {
			logger.Fatalf("db migrate error: %v", err)
		}
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()

		metrics.Init(db, logger)
		userRepo = identityrepo.NewUserRepository(db)
		invoiceRepo = invoicerepo.NewInvoiceRepository(db)
		profileRepo = profilerepo.NewRepository(db)
		auditLogger = audit.NewRepository(db)
	} else {
		logger.Printf("DATABASE_URL not set; using in-memory repositories")
		metrics.Init(nil, logger)
		userRepo = identitymemory.NewUserRepository()
		invoiceRepo = invoicememory.NewInvoiceRepository()
		profileRepo = profilememory.NewRepository()
		auditLogger = audit.NewLogLogger(logger)
	}

	store, err := storage.New(storage.Config{
		Driver:   cfg.StorageDriver,
		Root:     cfg.StorageRoot,
		Bucket:   cfg.S3Bucket,
		Region:   cfg.S3Region,
		Endpoint: cfg.S3Endpoint,
	})
	if err != nil {
		logger.Fatalf("storage error: %v", err)
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.WebhookURL != "" {
		webhook, err := notify.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookTimeout)
		if err != nil {
			logger.Fatalf("webhook notifier error: %v", err)
		}
		notifier = webhook
	}

	secret := []byte(cfg.JWTSecret)
	userService, err := identityapp.NewUserService(userRepo, identityapp.NewBcryptHasher(bcrypt.DefaultCost), secret, cfg.TokenTTL)
	if err != nil {
		logger.Fatalf("user service error: %v", err)
	}
	invoiceService, err := invoiceapp.NewInvoiceService(invoiceRepo, notifier, logger)
	if err != nil {
		logger.Fatalf("invoice service error: %v", err)
	}
	profileService, err := profileapp.NewService(profileRepo, store)
	if err != nil {
		logger.Fatalf("profile service error: %v", err)
	}

	userHandler, err := identityhttp.NewUserHandler(userService, auditLogger, logger)
	if err != nil {
		logger.Fatalf("user handler error: %v", err)
	}
	invoiceHandler, err := invoicehttp.NewInvoiceHandler(invoiceService, issuerSource(profileService), auditLogger, logger, cfg.Currency)
	if err != nil {
		logger.Fatalf("invoice handler error: %v", err)
	}
	profileHandler, err := profilehttp.NewHandler(profileService, auditLogger, logger)
	if err != nil {
		logger.Fatalf("profile handler error: %v", err)
	}

	router := chi.NewRouter()
	router.Route("/users", userHandler.Routes)
	router.Route("/invoices", invoiceHandler.Routes)
	router.Route("/profiles", profileHandler.ProfileRoutes)
	router.Route("/accounts", profileHandler.AccountRoutes)
	exemptPrefixes := []string(nil)
	if cfg.StorageDriver == storage.DriverLocal {
		router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StorageRoot))))
		exemptPrefixes = append(exemptPrefixes, "/static/")
	}
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authMiddleware := auth.NewMiddleware(secret, auth.NewDefaultPolicy(nil, exemptPrefixes))
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           loggingMiddleware(authMiddleware.Wrap(router), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("http shutdown error: %v", err)
		}
	}()

	logger.Printf("http listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("http server error: %v", err)
	}
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// ---- Adapters ----

// issuerSource prints the caller's profile and first payout account on PDFs.
func issuerSource(service *profileapp.Service) invoicehttp.IssuerSource {
	return invoicehttp.IssuerFunc(func(ctx context.Context) (invoicehttp.Issuer, error) {
		found, err := service.Issuer(ctx)
		if err != nil {
			return invoicehttp.Issuer{}, err
		}
		var issuer invoicehttp.Issuer
		if p := found.Profile; p != nil {
			issuer.Name = p.FirstName + " " + p.LastName
			issuer.BusinessName = p.BusinessName
			issuer.Address = p.Address
		}
		if a := found.Account; a != nil {
			issuer.AccountName = a.AccountName
			issuer.AccountNumber = a.AccountNumber
			issuer.BankName = a.BankName
			issuer.PayPalID = a.PayPalID
		}
		return issuer, nil
	})
}
