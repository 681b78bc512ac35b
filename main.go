package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"checkout-service/config"
	"checkout-service/controllers"
	"checkout-service/database"
	"checkout-service/logger"
	"checkout-service/middleware"
	"checkout-service/repository"
	"checkout-service/routes"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[CheckoutService] failed to load config:", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal("[CheckoutService] failed to initialize logger:", err)
	}
	defer zlog.Sync()

	client, db, err := database.Connect(context.Background(), cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		zlog.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := database.Close(client); err != nil {
			zlog.Error("Failed to disconnect from MongoDB", zap.Error(err))
		}
	}()

	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)
	if err := orderRepo.EnsureIndexes(context.Background()); err != nil {
		zlog.Fatal("Failed to ensure order indexes", zap.Error(err))
	}
	if err := userRepo.EnsureIndexes(context.Background()); err != nil {
		zlog.Fatal("Failed to ensure user indexes", zap.Error(err))
	}

	stripeSvc := services.NewStripeService(cfg.StripeWebhookKey)
	orderSvc := services.NewOrderService(orderRepo, userRepo, zlog)
	userSvc := services.NewUserService(userRepo, zlog)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(zlog))

	routes.RegisterRoutes(r, routes.Controllers{
		Webhook:   controllers.NewWebhookController(stripeSvc, orderSvc, zlog),
		User:      controllers.NewUserController(userSvc, zlog),
		Health:    controllers.NewHealthController(client),
		TestOrder: controllers.NewTestOrderController(orderSvc, zlog),
		Env:       cfg.Env,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zlog.Info("Checkout service running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	zlog.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("Forced shutdown", zap.Error(err))
	}
}
