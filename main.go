package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/global-bites/config"
	"github.com/yeremiapane/global-bites/database"
	"github.com/yeremiapane/global-bites/events"
	"github.com/yeremiapane/global-bites/kds"
	"github.com/yeremiapane/global-bites/repositories"
	"github.com/yeremiapane/global-bites/router"
	"github.com/yeremiapane/global-bites/services"
	"github.com/yeremiapane/global-bites/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}
	utils.InitLogger(cfg.Log.Level, cfg.Log.Format)

	if cfg.Server.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize DB
	db, err := config.InitDB(cfg.Database)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to get database handle: %v", err)
	}
	defer sqlDB.Close()

	if err := database.AutoMigrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	if cfg.Auth.AdminEmail != "" {
		created, err := database.EnsureAdmin(db, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to bootstrap admin: %v", err)
		}
		if created {
			utils.InfoLogger.Printf("Bootstrap admin %s created", cfg.Auth.AdminEmail)
		}
	}

	// Event fan-out: KDS websocket selalu aktif, redis dan kafka opsional
	hub := kds.NewHub()
	defer hub.CloseAll()
	publisher := events.NewMultiPublisher(hub)

	var cache services.MenuCache = services.NoopCache{}
	if cfg.Redis.Enabled() {
		client, err := config.NewRedisClient(cfg.Redis)
		if err != nil {
			utils.ErrorLogger.Warnf("Redis unavailable, running without cache: %v", err)
		} else {
			defer client.Close()
			cache = services.NewRedisCache(client, cfg.Redis.CacheTTL)
			publisher.Add(events.NewRedisPublisher(client, ""))
		}
	}
	if cfg.Kafka.Enabled() {
		producer, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ClientID)
		if err != nil {
			utils.ErrorLogger.Warnf("Kafka unavailable, order events stay local: %v", err)
		} else {
			defer producer.Close()
			publisher.Add(producer)
		}
	}
	utils.InfoLogger.Printf("Order events go to %d publisher(s)", publisher.Len())
	// Delivery runs off the request path; Close drains before the brokers shut down.
	orderEvents := events.NewAsyncPublisher(publisher, cfg.Events.QueueSize, cfg.Events.DeliveryTimeout)
	defer orderEvents.Close()

	blacklist := utils.NewTokenBlacklist()
	blacklist.Start()
	defer blacklist.Stop()
	jwtManager := utils.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, blacklist)

	var generator services.TextGenerator
	gemini, err := services.NewGeminiGenerator(context.Background(), cfg.AI.APIKey)
	if err != nil {
		utils.ErrorLogger.Warnf("AI features disabled: %v", err)
	} else {
		generator = services.NewThrottledGenerator(gemini, cfg.AI.RequestsPerMinute, cfg.AI.Timeout)
	}

	dishRepo := repositories.NewDishRepository(db)
	menuRepo := repositories.NewMenuRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	aiLogRepo := repositories.NewAILogRepository(db)
	userRepo := repositories.NewUserRepository(db)

	aiService := services.NewAIService(generator, dishRepo, aiLogRepo, cfg.AI.SuggestionModel, cfg.AI.ChatModel)

	r, err := router.SetupRouter(router.Dependencies{
		Server:    cfg.Server,
		RateLimit: cfg.RateLimit,
		JWT:       jwtManager,
		Hub:       hub,
		Orders:    services.NewOrderService(orderRepo, dishRepo, orderEvents),
		Menus:     services.NewMenuService(dishRepo, menuRepo, cache),
		AI:        aiService,
		Analytics: services.NewAnalyticsService(orderRepo, dishRepo, aiLogRepo, aiService),
		Auth:      services.NewAuthService(userRepo, jwtManager),
	})
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to set up router: %v", err)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Errorf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Graceful shutdown failed: %v", err)
	}
}
