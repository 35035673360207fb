package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/punchamoorthee/formgate/internal/api"
	"github.com/punchamoorthee/formgate/internal/config"
	"github.com/punchamoorthee/formgate/internal/logger"
	"github.com/punchamoorthee/formgate/internal/paystack"
	"github.com/punchamoorthee/formgate/internal/service"
	"github.com/punchamoorthee/formgate/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Env)
	defer log.Sync()

	db, err := store.NewStore(cfg.DBSource)
	if err != nil {
		log.Fatal("unable to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.EnsureSchema(context.Background()); err != nil {
		log.Fatal("schema bootstrap failed", zap.Error(err))
	}

	// Initialize Layers
	provider := paystack.New(cfg.PaystackBaseURL, cfg.PaystackSecretKey)
	shares := service.NewShareLedger(db)
	eligibility := service.NewEligibilityEvaluator(db)
	payments := service.NewPaymentLedger(db, provider, log, cfg.PaymentCallbackURL, cfg.UpgradeThresholdKobo)
	applications := service.NewApplicationService(db, eligibility)
	handler := api.NewHandler(shares, payments, eligibility, applications, log)

	// Router
	r := mux.NewRouter()
	r.Use(api.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(api.LoggingMiddleware(log))
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", handler.HealthCheckHandler).Methods("GET")

	apiRoutes := r.PathPrefix("/api").Subrouter()
	apiRoutes.HandleFunc("/share", handler.RecordShareHandler).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/share-status", handler.ShareStatusHandler).Methods("GET")
	apiRoutes.HandleFunc("/eligibility", handler.EligibilityHandler).Methods("GET")
	apiRoutes.HandleFunc("/application", handler.SubmitApplicationHandler).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/init-payment", handler.InitPaymentHandler).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/verify-payment", handler.VerifyPaymentHandler).Methods("GET", "POST", "OPTIONS")
	apiRoutes.HandleFunc("/paystack-webhook", handler.WebhookHandler).Methods("POST")

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
}
