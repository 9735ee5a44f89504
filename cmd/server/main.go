package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ascendhq/ascend-go/internal/auth"
	"github.com/ascendhq/ascend-go/internal/config"
	"github.com/ascendhq/ascend-go/internal/database"
	"github.com/ascendhq/ascend-go/internal/generate"
	"github.com/ascendhq/ascend-go/internal/handlers"
	"github.com/ascendhq/ascend-go/internal/middleware"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var Version = "dev"

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := database.Connect(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()

	if cfg.ReconcileCounters {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		err := database.ReconcileCounters(ctx, db)
		cancel()
		if err != nil {
			logger.Fatal("counter reconciliation failed", zap.Error(err))
		}
		logger.Info("counter reconciliation complete")
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer)
	gemini := generate.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)

	r := gin.New()
	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": Version})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/register", handlers.Register(db, jwtService))
		api.POST("/auth/login", handlers.Login(db, jwtService))

		api.GET("/public/roadmap/:id", handlers.GetPublicRoadmap(db))
		api.GET("/public/resources", handlers.ListPublicResources(db))
	}

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(jwtService))
	{
		protected.GET("/auth/me", handlers.Me(db))

		protected.POST("/roadmap", handlers.CreateRoadmap(db, gemini))
		protected.GET("/roadmap", handlers.ListRoadmaps(db))
		protected.POST("/roadmap/custom", handlers.CreateCustomRoadmap(db))
		protected.GET("/roadmap/:id", handlers.GetRoadmap(db, gemini))
		protected.PUT("/roadmap/:id", handlers.RegenerateRoadmap(db, gemini))
		protected.DELETE("/roadmap/:id", handlers.DeleteRoadmap(db))
		protected.PATCH("/roadmap/:id/visibility", handlers.SetRoadmapVisibility(db))
		protected.POST("/roadmap/:id/star", handlers.ToggleStar(db))
		protected.GET("/roadmap/:id/star", handlers.GetStarStatus(db))

		protected.POST("/tasks", handlers.ToggleTask(db))

		protected.GET("/tasks/resources", handlers.ListResources(db))
		protected.POST("/tasks/resources", handlers.CreateResource(db))
		protected.DELETE("/tasks/resources/:id", handlers.DeleteResource(db))

		protected.POST("/connections/follow", handlers.ToggleFollow(db))
		protected.GET("/connections/status/:userId", handlers.GetConnectionStatus(db))
		protected.POST("/connections/friend/request", handlers.SendFriendRequest(db))
		protected.POST("/connections/friend/respond", handlers.RespondFriendRequest(db))
		protected.DELETE("/connections/friend/:userId", handlers.RemoveFriend(db))
		protected.GET("/connections/requests", handlers.ListFriendRequests(db))

		protected.GET("/leaderboard", handlers.GetLeaderboard(db))
		protected.GET("/profile/:userId", handlers.GetProfile(db))
		protected.GET("/users/search", handlers.SearchUsers(db))

		protected.GET("/settings", handlers.GetSettings(db))
		protected.PATCH("/settings", handlers.UpdateSettings(db))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("version", Version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
