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

	"shoplink/internal/client"
	"shoplink/internal/config"
	"shoplink/internal/provider"
	"shoplink/internal/repository"
	"shoplink/internal/server"
	"shoplink/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db := client.InitDBClient(cfg.DatabaseURL)
	whatsappClient := client.NewWhatsAppClient(&cfg.WhatsApp)

	providers := []provider.Client{
		provider.NewPaystackClient(&cfg.Paystack),
		provider.NewFlutterwaveClient(&cfg.Flutterwave),
	}

	shopRepo := repository.NewShopRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	codeRepo := repository.NewRedemptionCodeRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	proofRepo := repository.NewPaymentProofRepository(db)

	walletService := service.NewWalletService(db, shopRepo, paymentRepo, walletRepo)
	redemptionService := service.NewRedemptionService(
		db, orderRepo, shopRepo, codeRepo, paymentRepo, walletService,
	)
	paymentService := service.NewPaymentService(
		db, providers, cfg.PlatformFeePercent,
		orderRepo, shopRepo, paymentRepo, subscriptionRepo, proofRepo,
		redemptionService, walletService, whatsappClient,
	)
	proofService := service.NewProofService(
		db, cfg.PlatformFeePercent, cfg.AdminUserIDs,
		proofRepo, orderRepo, shopRepo, paymentRepo, subscriptionRepo,
		redemptionService, walletService,
	)
	storeService := service.NewStoreService(shopRepo, orderRepo)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(paymentService, redemptionService, proofService, storeService, walletService, cfg.JWTSecret)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
