package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkanatbekov/epay-gateway/internal/gateway"
	"github.com/mkanatbekov/epay-gateway/internal/logger"
	"github.com/mkanatbekov/epay-gateway/internal/merchant"
	"github.com/mkanatbekov/epay-gateway/internal/notifier"
	ordersvc "github.com/mkanatbekov/epay-gateway/internal/order"
	"github.com/mkanatbekov/epay-gateway/internal/payment"
	"github.com/mkanatbekov/epay-gateway/internal/router"
	"github.com/mkanatbekov/epay-gateway/internal/stats"
	"github.com/mkanatbekov/epay-gateway/internal/storage"
	"github.com/mkanatbekov/epay-gateway/internal/storage/postgres"
)

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}

func run() error {
	cfg, err := NewConfig()
	if err != nil {
		log.Fatal(err)
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store storage.Storage
	store, err = postgres.NewPostgresStorage(cfg.DatabaseConnection)
	if err != nil {
		log.Fatalf("Failed to initialize Postgres storage: %v", err)
	}
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := store.Ping(pingCtx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Warning: failed to close storage: %v", err)
		}
	}()

	key, err := gateway.LoadPrivateKey(cfg.KeyPath)
	if err != nil {
		log.Fatalf("Failed to load merchant key: %v", err)
	}
	bankKey, err := gateway.LoadBankKey(cfg.BankCertPath)
	if err != nil {
		log.Fatalf("Failed to load bank certificate: %v", err)
	}
	gw := gateway.New(cfg.MerchantName, key, bankKey,
		cfg.EpayURL, cfg.EpayTemplate, cfg.PostbackURL, cfg.BackLink)

	sender := &notifier.SMTPSender{Addr: cfg.SMTPAddress, From: cfg.SMTPFrom}
	notif := notifier.NewEmailNotifier(sender, cfg.NotifyBuffer)
	go notif.Run(ctx, cfg.NotifyWorkers)

	merchantSvc := merchant.NewService(store, []byte(cfg.JWTSecret), cfg.JWTTTL)
	merchantHandler := merchant.NewHandler(merchantSvc)

	paymentSvc := payment.NewService(store, ordersvc.UUIDFactory{}, gw, notif)
	paymentHandler := payment.NewHandler(paymentSvc)

	statsSvc := stats.NewService(store)
	statsHandler := stats.NewHandler(statsSvc)

	r := router.NewRouter(merchantHandler, paymentHandler, statsHandler, []byte(cfg.JWTSecret), store)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
	return nil
}
