package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/danmwale/shopledger-backend/internal/config"
	"github.com/danmwale/shopledger-backend/internal/modules/assist"
	"github.com/danmwale/shopledger-backend/internal/modules/auth"
	"github.com/danmwale/shopledger-backend/internal/modules/chat"
	"github.com/danmwale/shopledger-backend/internal/modules/inventory"
	"github.com/danmwale/shopledger-backend/internal/modules/invoice"
	"github.com/danmwale/shopledger-backend/internal/modules/notification"
	"github.com/danmwale/shopledger-backend/internal/modules/report"
	"github.com/danmwale/shopledger-backend/internal/modules/returns"
	"github.com/danmwale/shopledger-backend/internal/modules/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("failed to reach database", zap.Error(err))
	}
	logger.Info("connected to database")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Identity ────────────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)
	userHandler.RegisterRoutes(router)

	authService := auth.NewService(userService, userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	auth.NewHandler(authService, userService).RegisterRoutes(router)

	// ── Ledgers & messaging (authenticated) ─────────────────
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(cfg.JWTSecret))

		userHandler.RegisterProtectedRoutes(r)

		notificationRepo := notification.NewPostgresRepository(db)
		notificationService := notification.NewService(notificationRepo, userRepo, logger)
		notification.NewHandler(notificationService).RegisterRoutes(r)

		inventoryRepo := inventory.NewPostgresRepository(db)
		inventoryService := inventory.NewService(inventoryRepo, notificationService, logger)
		inventory.NewHandler(inventoryService).RegisterRoutes(r)

		invoiceRepo := invoice.NewPostgresRepository(db)
		invoiceService := invoice.NewService(invoiceRepo, inventoryRepo, userRepo, logger)
		invoice.NewHandler(invoiceService).RegisterRoutes(r)

		returnsRepo := returns.NewPostgresRepository(db)
		returnsService := returns.NewService(returnsRepo, inventoryRepo, logger)
		returns.NewHandler(returnsService).RegisterRoutes(r)

		chatRepo := chat.NewPostgresRepository(db)
		chatService := chat.NewService(chatRepo, userRepo, logger)
		chat.NewHandler(chatService).RegisterRoutes(r)

		assistGateway := assist.NewHTTPGateway(cfg.AssistBaseURL)
		assist.NewHandler(assistGateway, logger).RegisterRoutes(r)

		reportService := report.NewService(inventoryRepo, invoiceRepo)
		report.NewHandler(reportService).RegisterRoutes(r)
	})

	// ── Start server ────────────────────────────────────────
	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}
