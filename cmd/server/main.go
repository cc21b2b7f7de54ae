package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bizbridge/acquisition-backend/internal/config"
	"github.com/bizbridge/acquisition-backend/internal/db"
	httpHandlers "github.com/bizbridge/acquisition-backend/internal/http/handlers"
	httpRouter "github.com/bizbridge/acquisition-backend/internal/http/router"
	"github.com/bizbridge/acquisition-backend/internal/logger"
	"github.com/bizbridge/acquisition-backend/internal/repository"
	"github.com/bizbridge/acquisition-backend/internal/service"
	"github.com/bizbridge/acquisition-backend/internal/storage"
	"github.com/bizbridge/acquisition-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	fileStorage, err := storage.NewFileStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	businessRepo := repository.NewBusinessRepository(dbConn)
	matchRepo := repository.NewMatchRepository(dbConn)
	dealRepo := repository.NewDealRepository(dbConn)
	stageRepo := repository.NewStageRepository(dbConn)
	conversationRepo := repository.NewConversationRepository(dbConn)
	favoriteRepo := repository.NewFavoriteRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	mediaRepo := repository.NewMediaRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	notificationService := service.NewNotificationService(notificationRepo)
	businessService := service.NewBusinessService(businessRepo, mediaRepo, cfg.MaxBusinessImages)
	favoriteService := service.NewFavoriteService(favoriteRepo, businessRepo)
	dealService := service.NewDealService(dealRepo, stageRepo, userRepo, businessRepo, conversationRepo, notificationService, cfg.CreateDealTimeout)
	matchService := service.NewMatchService(matchRepo, businessRepo, dealService, notificationService)
	stageService := service.NewStageService(stageRepo, dealRepo, mediaRepo, notificationService)
	conversationService := service.NewConversationService(conversationRepo, mediaRepo, notificationService)

	// Вебсокеты. Хаб только доставляет события, сохранение
	// уведомлений остаётся за сервисами.
	hub := ws.NewHub()
	go hub.Run()

	dealService.SetHub(hub)
	matchService.SetHub(hub)
	stageService.SetHub(hub)
	conversationService.SetHub(hub)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	profileHandler := httpHandlers.NewProfileHandler(authService)
	businessHandler := httpHandlers.NewBusinessHandler(businessService, favoriteService)
	matchHandler := httpHandlers.NewMatchHandler(matchService)
	dealHandler := httpHandlers.NewDealHandler(dealService)
	stageHandler := httpHandlers.NewStageHandler(stageService)
	conversationHandler := httpHandlers.NewConversationHandler(conversationService)
	favoriteHandler := httpHandlers.NewFavoriteHandler(favoriteService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	mediaHandler := httpHandlers.NewMediaHandler(mediaRepo, fileStorage)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		profileHandler,
		businessHandler,
		matchHandler,
		dealHandler,
		stageHandler,
		conversationHandler,
		favoriteHandler,
		notificationHandler,
		mediaHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
