package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/storefront-api/internal/application/auth"
	"github.com/storefront-api/internal/config"
	"github.com/storefront-api/internal/infrastructure/blob"
	"github.com/storefront-api/internal/infrastructure/dynamo"
	"github.com/storefront-api/internal/infrastructure/resend"
	"github.com/storefront-api/internal/infrastructure/synctoken"
	transporthttp "github.com/storefront-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	if cfg.SessionSecret == "" {
		log.Println("WARN: SESSION_SECRET not set; issued cookies will not survive a restart secret change")
	}

	// Blob store (product metadata, images, overrides).
	blobStore := blob.NewStore(blob.NewClient(cfg), cfg.BlobBucket, cfg.BlobPublicURL)

	// Per-email OTP issuance ledger (creates its table if missing).
	var otpLimiter auth.OTPLimiter
	if cfg.DynamoTableOTPLimits != "" {
		dynamoClient := dynamo.NewClient(cfg)
		dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTableOTPLimits)
		otpLimiter = dynamo.NewOTPLimitRepo(dynamoClient, cfg.DynamoTableOTPLimits, cfg.OTPMaxPerDay)
	} else {
		log.Println("WARN: OTP issuance ledger disabled (no table configured)")
	}

	deps := &transporthttp.Deps{
		Blob:       blobStore,
		Mailer:     resend.NewMailer(cfg),
		OTPLimiter: otpLimiter,
		SyncTokens: synctoken.NewProvider(cfg),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
