package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go/v7"

	"ticket-gate/config"
	"ticket-gate/internal/fees"
	"ticket-gate/internal/gateway"
	"ticket-gate/internal/handlers"
	"ticket-gate/internal/qr"
	"ticket-gate/internal/services"
	"ticket-gate/internal/store"
	"ticket-gate/monitoring"
	"ticket-gate/utils"

	_ "ticket-gate/migrations"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	if cfg.Environment == "production" && cfg.QrSecret == "dev-only-secret" {
		log.Fatal("QR_SECRET must be set in production")
	}

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub
	var notifier services.Notifier = services.NoopNotifier{}
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId("ticket-gate-server"))
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey

		notifier = services.NewPubNubNotifier(pubnub.NewPubNub(pnConfig))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize stores
	ledger := store.NewRedisLedger(redisClient)
	roster := store.NewRedisRoster(redisClient)
	listings := store.NewRedisListings(redisClient)
	scanLog := store.NewRedisScanLog(redisClient)
	catalog := store.NewPocketBaseCatalog(app)
	clock := store.SystemClock{}

	// Initialize domain services
	engine := fees.NewEngine()
	engine.PrimaryFeeBps = cfg.PrimaryFeeBps
	engine.ResaleFeeBps = cfg.ResaleFeeBps

	protocol := qr.NewProtocol(cfg.QrScheme, cfg.QrHost, []byte(cfg.QrSecret))
	protocol.TTL = cfg.QrTTL

	staffService := services.NewStaffService(roster, catalog)
	scanService := services.NewScanService(ledger, scanLog, catalog, staffService, protocol, clock, notifier)
	transferService := services.NewTransferService(ledger, catalog, clock, notifier)
	marketplaceService := services.NewMarketplaceService(ledger, listings, catalog, engine, clock, notifier)

	// Initialize handlers
	ticketHandler := handlers.NewTicketHandler(app, scanService, transferService)
	scanHandler := handlers.NewScanHandler(app, scanService)
	staffHandler := handlers.NewStaffHandler(app, staffService)
	marketplaceHandler := handlers.NewMarketplaceHandler(app, marketplaceService, listings)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Start metrics sampling
	if cfg.EnableMetrics {
		monitoring.NewMonitor(redisClient)
	}

	// Start the venue scanner gateway
	if cfg.GatewayEnabled {
		gw := gateway.New(redisClient, scanService, staffService)
		go func() {
			slog.Info("Starting scanner gateway", "port", cfg.GatewayPort)
			if err := gw.Start(":" + cfg.GatewayPort); err != nil {
				slog.Error("Scanner gateway stopped", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := gw.Shutdown(shutdownCtx); err != nil {
				slog.Error("Scanner gateway shutdown", "error", err)
			}
		}()
	}

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Ticket routes
		e.Router.GET("/api/v1/tickets/{ticketId}", ticketHandler.GetTicket)
		e.Router.GET("/api/v1/tickets/{ticketId}/decode", ticketHandler.DecodeTicketID)
		e.Router.POST("/api/v1/tickets/{ticketId}/transfer", ticketHandler.TransferTicket)
		e.Router.POST("/api/v1/tickets/{ticketId}/qr", ticketHandler.BuildQr)

		// Staff scan routes
		e.Router.POST("/api/v1/staff/scan", scanHandler.Scan)
		e.Router.GET("/staff/scan/{ticketId}", scanHandler.ScanFallback)

		// Staff roster routes
		e.Router.GET("/api/v1/events/{eventId}/staff", staffHandler.GetRoster)
		e.Router.POST("/api/v1/events/{eventId}/staff", staffHandler.AssignRole)
		e.Router.GET("/api/v1/events/{eventId}/staff/{account}", staffHandler.GetRole)
		e.Router.DELETE("/api/v1/events/{eventId}/staff/{account}", staffHandler.RevokeRole)

		// Organizer routes
		e.Router.POST("/api/v1/events/{eventId}/refund", ticketHandler.RefundEvent)

		// Marketplace routes
		e.Router.POST("/api/v1/marketplace/listings", marketplaceHandler.CreateListing)
		e.Router.DELETE("/api/v1/marketplace/listings/{listingId}", marketplaceHandler.CancelListing)
		e.Router.POST("/api/v1/marketplace/listings/{listingId}/purchase", marketplaceHandler.PurchaseListing)
		e.Router.GET("/api/v1/events/{eventId}/listings", marketplaceHandler.ListEventListings)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutting down gracefully...")
	cancel()

	time.Sleep(2 * time.Second)
	os.Exit(0)
}
