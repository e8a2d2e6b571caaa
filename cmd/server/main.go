// Server runs the dashboard HTTP API.
// Requires DATABASE_URL and the JWT key pair; see .env.example.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dastyar-dashboard/internal/audit"
	auditproducer "dastyar-dashboard/internal/audit/producer"
	auditrepo "dastyar-dashboard/internal/audit/repository"
	authservice "dastyar-dashboard/internal/auth/service"
	"dastyar-dashboard/internal/config"
	"dastyar-dashboard/internal/db"
	"dastyar-dashboard/internal/devotp"
	fundsrepo "dastyar-dashboard/internal/funds/repository"
	fundsservice "dastyar-dashboard/internal/funds/service"
	"dastyar-dashboard/internal/httpapi"
	otprepo "dastyar-dashboard/internal/otp/repository"
	"dastyar-dashboard/internal/policy/engine"
	"dastyar-dashboard/internal/security"
	"dastyar-dashboard/internal/sms"
	"dastyar-dashboard/internal/telemetry/otel"
	userrepo "dastyar-dashboard/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("jwt private key: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	ctx := context.Background()
	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "dastyar-api", false)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	var emitter audit.EventEmitter
	var kafkaProducer *auditproducer.KafkaProducer
	if brokers := cfg.AuditKafkaBrokersList(); len(brokers) > 0 {
		kafkaProducer, err = auditproducer.NewKafkaProducer(brokers, cfg.AuditKafkaTopic)
		if err != nil {
			log.Fatalf("audit kafka: %v", err)
		}
		emitter = kafkaProducer
		log.Printf("audit events emitting to kafka topic %s", cfg.AuditKafkaTopic)
	}
	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(conn), emitter, httpapi.RequestIPFromContext)

	var devStore devotp.Store
	if cfg.OTPReturnToClient {
		devStore = devotp.NewMemoryStore()
		log.Println("dev OTP mode: codes are returned to the client, no SMS is sent")
	}
	smsClient := sms.NewClient(cfg.SMSAPIKey, cfg.SMSBaseURL, cfg.SMSSender)

	authSvc := authservice.NewAuthService(
		userrepo.NewPostgresRepository(conn),
		otprepo.NewPostgresRepository(conn),
		smsClient,
		devStore,
		hasher,
		tokens,
		auditLogger,
		cfg.OTPReturnToClient,
	)
	fundsSvc := fundsservice.NewService(fundsrepo.NewPostgresRepository(conn), cfg.DollarRate)

	policy, err := engine.NewOPAEvaluator()
	if err != nil {
		log.Fatalf("policy: %v", err)
	}
	if err := policy.HealthCheck(ctx); err != nil {
		log.Fatalf("policy health check: %v", err)
	}

	metrics := httpapi.NewMetrics()
	router := httpapi.NewRouter(
		httpapi.NewAuthHandler(authSvc, metrics),
		httpapi.NewFundsHandler(fundsSvc),
		httpapi.NewAuthMiddleware(tokens, policy),
		metrics,
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Let in-flight async audit emits drain before tearing the pipeline down.
	time.Sleep(audit.ShutdownDrainDuration)
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Printf("audit kafka close: %v", err)
		}
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
