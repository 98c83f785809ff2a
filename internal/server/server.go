package server

import (
	"shoplink/internal/handler"
	appmiddleware "shoplink/internal/middleware"
	"shoplink/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo              *echo.Echo
	paymentHandler    *handler.PaymentHandler
	webhookHandler    *handler.WebhookHandler
	redemptionHandler *handler.RedemptionHandler
	proofHandler      *handler.ProofHandler
	storeHandler      *handler.StoreHandler
	walletHandler     *handler.WalletHandler
	jwtSecret         string
}

func NewServer(
	paymentService service.PaymentService,
	redemptionService service.RedemptionService,
	proofService service.ProofService,
	storeService service.StoreService,
	walletService service.WalletService,
	jwtSecret string,
) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:              e,
		paymentHandler:    handler.NewPaymentHandler(paymentService),
		webhookHandler:    handler.NewWebhookHandler(paymentService),
		redemptionHandler: handler.NewRedemptionHandler(redemptionService),
		proofHandler:      handler.NewProofHandler(proofService),
		storeHandler:      handler.NewStoreHandler(storeService),
		walletHandler:     handler.NewWalletHandler(walletService),
		jwtSecret:         jwtSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")
	auth := appmiddleware.AuthMiddleware(s.jwtSecret)

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- storefront --------
	api.POST("/shops", s.storeHandler.CreateShop, auth)
	api.POST("/orders", s.storeHandler.CreateOrder)
	api.GET("/orders/:id", s.storeHandler.GetOrder)

	// -------- payments --------
	payments := api.Group("/payments")
	payments.POST("/initialize", s.paymentHandler.InitializeOrderPayment)
	payments.POST("/subscription/initialize", s.paymentHandler.InitializeSubscriptionPayment)
	payments.POST("/verify", s.paymentHandler.VerifyPayment)

	// -------- provider webhooks --------
	api.POST("/webhooks/:provider", s.webhookHandler.HandleProviderWebhook)

	// -------- redemption --------
	redemptions := api.Group("/redemptions")
	redemptions.GET("/:code", s.redemptionHandler.ViewByCode)
	redemptions.POST("/confirm-delivery", s.redemptionHandler.ConfirmDelivery, auth)
	redemptions.POST("/confirm-receipt", s.redemptionHandler.ConfirmReceipt, auth)
	redemptions.POST("/direct-confirm", s.redemptionHandler.DirectConfirm)

	// -------- seller wallet --------
	api.GET("/wallets/:shop_id", s.walletHandler.GetWallet, auth)

	// -------- manual payment proofs --------
	proofs := api.Group("/proofs")
	proofs.POST("", s.proofHandler.Submit)
	proofs.POST("/:id/review", s.proofHandler.Review, auth)
	proofs.GET("/pending", s.proofHandler.ListPending, auth)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
