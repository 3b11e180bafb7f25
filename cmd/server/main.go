package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/handlers"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"

	"staybnb/internal/api"
	"staybnb/internal/config"
	"staybnb/internal/db"
	"staybnb/internal/repository"
	"staybnb/internal/service"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	conn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer conn.Close()
	if err := conn.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	stripe.Key = cfg.StripeSecretKey

	userRepo := repository.NewUserRepository(conn)
	propertyRepo := repository.NewPropertyRepository(conn)
	bookingRepo := repository.NewBookingRepository(conn)
	paymentRepo := repository.NewPaymentRepository(conn)
	jobRepo := repository.NewJobRepository(conn)

	blocklist := newBlocklist(cfg.RedisAddr)
	searchCache := repository.NewSearchCache(cfg.MemcachedHost, cfg.SearchTTL)

	gateway := service.NewStripeService()
	notifier := service.NewBookingNotifier(
		service.NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName),
		service.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber),
	)

	authSvc := service.NewAuthService(userRepo, blocklist, cfg.JWTSecret, cfg.TokenTTL)
	propertySvc := service.NewPropertyService(propertyRepo, bookingRepo, searchCache)
	pricingSvc := service.NewPricingService(propertyRepo, service.Rates{
		ServiceFee: cfg.ServiceFeeRate,
		Tax:        cfg.TaxRate,
		Currency:   cfg.Currency,
	})
	bookingSvc := service.NewBookingService(bookingRepo, paymentRepo, userRepo, gateway, notifier)
	paymentSvc := service.NewPaymentService(pricingSvc, bookingRepo, paymentRepo, bookingSvc, gateway)

	jobs, err := service.NewJobService(jobRepo, cfg.PendingExpiresIn).Schedule(cfg.JobSchedule)
	if err != nil {
		log.Fatalf("Failed to schedule booking jobs: %v", err)
	}
	jobs.Start()
	defer jobs.Stop()

	r := api.NewRouter(api.Handlers{
		Auth:     api.NewAuthHandler(authSvc),
		Property: api.NewPropertyHandler(propertySvc),
		Booking:  api.NewBookingHandler(bookingSvc),
		Payment:  api.NewPaymentHandler(paymentSvc, cfg.StripeWebhookSecret),
		Tokens:   authSvc,
		Users:    userRepo,
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.AllowCredentials(),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.CombinedLoggingHandler(log.StandardLogger().Writer(), cors(r)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// newBlocklist uses Redis when it answers and keeps revoked tokens in memory otherwise.
func newBlocklist(addr string) repository.TokenBlocklist {
	if addr == "" {
		return repository.NewMemoryBlocklist()
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis unavailable, revoked tokens are kept in memory")
		client.Close()
		return repository.NewMemoryBlocklist()
	}
	return repository.NewRedisBlocklist(client)
}
