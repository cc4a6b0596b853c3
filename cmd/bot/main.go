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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"channel-bot-backend/internal/common/config"
	"channel-bot-backend/internal/common/logger"
	"channel-bot-backend/internal/common/middleware"
	"channel-bot-backend/internal/events"
	channelHTTP "channel-bot-backend/internal/features/channel/delivery/http"
	channelTG "channel-bot-backend/internal/features/channel/delivery/telegram"
	channelRepo "channel-bot-backend/internal/features/channel/repository/postgres"
	channelService "channel-bot-backend/internal/features/channel/service"
	auditRepo "channel-bot-backend/internal/features/audit/repository/postgres"
	dealRepo "channel-bot-backend/internal/features/deal/repository/postgres"
	dealService "channel-bot-backend/internal/features/deal/service"
	postHTTP "channel-bot-backend/internal/features/post/delivery/http"
	postService "channel-bot-backend/internal/features/post/service"
	statsHTTP "channel-bot-backend/internal/features/stats/delivery/http"
	statsService "channel-bot-backend/internal/features/stats/service"
	userRepo "channel-bot-backend/internal/features/user/repository/postgres"
	"channel-bot-backend/internal/platform/mtproto"
	"channel-bot-backend/internal/platform/postgres"
	"channel-bot-backend/internal/platform/redis"
	"channel-bot-backend/internal/platform/telegram"
	"channel-bot-backend/internal/platform/userbot"
)

func main() {
	// Загружаем переменные окружения
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.Load()
	logger.Init("channel-bot-backend", cfg.Debug)

	// Инициализируем логгер
	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("Starting Channel Bot Backend", zap.Bool("debug", cfg.Debug))

	// Инициализируем базу данных
	postgresClient, err := postgres.NewClient(cfg)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer postgresClient.Close()

	// Инициализируем Redis
	redisClient, err := redis.Open(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		zlog.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Клиенты внешних API
	botClient := telegram.NewClient(cfg.Telegram.BotToken, zlog)
	userbotClient := userbot.NewClient(cfg.Userbot.BaseURL, zlog)
	mtprotoClient := mtproto.NewClient(cfg.MTProto.APIID, cfg.MTProto.APIHash, cfg.MTProto.SessionFile, zlog)

	// Репозитории
	db := postgresClient.GetDB()
	userRepository := userRepo.NewPostgresRepository(db)
	channelRepository := channelRepo.NewPostgresRepository(db)
	dealRepository := dealRepo.NewPostgresRepository(db)
	auditRepository := auditRepo.NewPostgresRepository(db)

	// Сервисы
	publisher := events.NewRedisPublisher(redisClient, zlog)
	cascadeSvc := dealService.NewCascadeService(dealRepository, userRepository, auditRepository, botClient, publisher, zlog)
	channelSvc := channelService.NewService(channelRepository, userRepository, botClient, userbotClient, cascadeSvc, publisher, zlog)
	collector := statsService.NewCollector(mtprotoClient, zlog)
	scheduler := postService.NewScheduler(botClient, dealRepository, channelRepository, zlog)

	// Настраиваем Gin
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(zlog))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept"}
	router.Use(cors.New(corsConfig))

	// Внутренний API для основного бэкенда
	internal := router.Group("/internal")
	channelHTTP.NewChannelHandler(channelSvc, zlog).RegisterRoutes(internal)
	statsHTTP.NewStatsHandler(collector, channelRepository, zlog).RegisterRoutes(internal)
	postHTTP.NewPostHandler(scheduler, zlog).RegisterRoutes(internal)

	setupProbes(router, postgresClient, redisClient, userbotClient)

	// Слушатель апдейтов Telegram
	listenerCtx, stopListener := context.WithCancel(context.Background())
	listener := channelTG.NewListener(botClient, channelSvc, cfg.Telegram.PollTimeout, zlog)
	go listener.Run(listenerCtx)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zlog.Info("Starting HTTP server", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Ждем сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down...")
	stopListener()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}

	zlog.Info("Server exited")
}

func setupProbes(router *gin.Engine, postgresClient *postgres.Client, redisClient *redis.Client, userbotClient *userbot.Client) {
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		// Юзербот не гейтит readiness: его деградация лишь
		// замораживает онбординг аналитики.
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "channel-bot-backend",
			"userbot":   userbotClient.IsAvailable(ctx),
		})
	})

	// Liveness probe
	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Readiness probe
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		// Проверка Postgres
		if err := postgresClient.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unready",
				"error":  "postgres unavailable",
			})
			return
		}

		// Проверка Redis
		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unready",
				"error":  "redis unavailable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
		})
	})
}
