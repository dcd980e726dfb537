package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/dotoriham/backend/internal/auth"
	"github.com/dotoriham/backend/internal/cache"
	"github.com/dotoriham/backend/internal/config"
	"github.com/dotoriham/backend/internal/handler"
	"github.com/dotoriham/backend/internal/middleware"
	"github.com/dotoriham/backend/internal/repository/postgres"
	"github.com/dotoriham/backend/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Identity: access/invitation token signing and social ID token checks
	tokens, err := auth.NewJWTProvider(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.InvitationTTL, logger)
	if err != nil {
		log.Fatalf("Failed to create token provider: %v", err)
	}

	socialVerifier, err := auth.NewSocialVerifier(cfg.SocialJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create social verifier: %v", err)
	}

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Forest snapshot cache, disabled when no Redis address is configured
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		logger.Info("redis connected", "addr", cfg.RedisAddr)
	}
	forestCache := cache.NewForestCache(redisClient, logger)

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	accountRepo := postgres.NewAccountRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)
	bookmarkRepo := postgres.NewBookmarkRepository(repoConfig)
	accountFolderRepo := postgres.NewAccountFolderRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Create services
	folderService := service.NewFolderService(folderRepo, accountFolderRepo, bookmarkRepo, txManager, forestCache, logger)
	moveService := service.NewFolderMoveService(folderRepo, accountFolderRepo, txManager, forestCache, logger)
	bookmarkService := service.NewBookmarkService(bookmarkRepo, folderRepo, accountRepo, accountFolderRepo, txManager, forestCache, logger)
	trashService := service.NewTrashService(bookmarkRepo, folderRepo, accountFolderRepo, txManager, forestCache, logger)
	shareService := service.NewShareService(folderRepo, accountFolderRepo, txManager, tokens, forestCache, logger)
	accountService := service.NewAccountService(accountRepo, folderService, tokens, logger)

	// Create handlers
	folderHandler := handler.NewFolderHandler(folderService, moveService, logger)
	bookmarkHandler := handler.NewBookmarkHandler(bookmarkService, logger)
	trashHandler := handler.NewTrashHandler(trashService, logger)
	shareHandler := handler.NewShareHandler(shareService, logger)
	userHandler := handler.NewUserHandler(accountService, socialVerifier, logger)

	logger.Info("services initialized")

	// Authenticated routes (Go 1.22+ enhanced patterns)
	api := http.NewServeMux()

	// Folder routes
	api.HandleFunc("POST /api/v1/folder", folderHandler.Create)
	api.HandleFunc("GET /api/v1/folder", folderHandler.GetForest)
	api.HandleFunc("PATCH /api/v1/folder/{id}/name", folderHandler.Rename)
	api.HandleFunc("PATCH /api/v1/folder/{id}/emoji", folderHandler.ChangeEmoji)
	api.HandleFunc("PATCH /api/v1/folder/{id}/move", folderHandler.Move)
	api.HandleFunc("DELETE /api/v1/folder/{id}", folderHandler.Delete)
	api.HandleFunc("POST /api/v1/folder/delete-list", folderHandler.DeleteList)
	api.HandleFunc("GET /api/v1/folder/{id}/children", folderHandler.ListChildren)
	api.HandleFunc("GET /api/v1/folder/{id}/ancestors", folderHandler.ListAncestors)

	// Bookmark routes
	api.HandleFunc("POST /api/v1/bookmark", bookmarkHandler.Add)
	api.HandleFunc("GET /api/v1/bookmark", bookmarkHandler.PageByAccount)
	api.HandleFunc("GET /api/v1/bookmark/remind/today", bookmarkHandler.TodayRemind)
	api.HandleFunc("GET /api/v1/bookmark/folder/{folderID}", bookmarkHandler.PageByFolder)
	api.HandleFunc("PATCH /api/v1/bookmark/{id}", bookmarkHandler.Update)
	api.HandleFunc("POST /api/v1/bookmark/{id}/click", bookmarkHandler.Click)
	api.HandleFunc("PATCH /api/v1/bookmark/{id}/move", bookmarkHandler.Move)
	api.HandleFunc("PATCH /api/v1/bookmark/move-list", bookmarkHandler.MoveList)
	api.HandleFunc("POST /api/v1/bookmark/{id}/remind", bookmarkHandler.RemindOn)
	api.HandleFunc("DELETE /api/v1/bookmark/{id}/remind", bookmarkHandler.RemindOff)
	api.HandleFunc("POST /api/v1/bookmark/delete-list", bookmarkHandler.DeleteList)

	// Trash routes
	api.HandleFunc("GET /api/v1/trash", trashHandler.List)
	api.HandleFunc("PATCH /api/v1/trash/restore", trashHandler.Restore)
	api.HandleFunc("POST /api/v1/trash/truncate", trashHandler.Truncate)

	// Share routes
	api.HandleFunc("POST /api/v1/share/{folderID}/invite", shareHandler.Invite)
	api.HandleFunc("POST /api/v1/share/accept", shareHandler.Accept)
	api.HandleFunc("DELETE /api/v1/share/{folderID}", shareHandler.Exit)

	// User routes
	api.HandleFunc("GET /api/v1/user/profile", userHandler.Profile)
	api.HandleFunc("PATCH /api/v1/user/delivery-token", userHandler.RegisterDeliveryToken)

	// Public routes: login and health skip the auth middleware
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /api/v1/user/login", userHandler.Login)
	mux.Handle("/api/v1/", middleware.Auth(tokens, logger)(api))

	// Build middleware chain
	var root http.Handler = mux
	root = middleware.Recovery(logger)(root)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
