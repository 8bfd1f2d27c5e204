// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики
// и собирает бота, HTTP-сервер и планировщик.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"droplab.ru/points-bot/internal/bot"
	"droplab.ru/points-bot/internal/config"
	"droplab.ru/points-bot/internal/db/postgres"
	"droplab.ru/points-bot/internal/features/notifications"
	"droplab.ru/points-bot/internal/features/points"
	"droplab.ru/points-bot/internal/features/reactions"
	"droplab.ru/points-bot/internal/features/reconcile"
	"droplab.ru/points-bot/internal/features/verification"
	"droplab.ru/points-bot/internal/jobs"
	"droplab.ru/points-bot/internal/server"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Server    *server.Server
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Запускаем миграции
	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := telego.NewBot(cfg.TelegramBotToken,
		telego.WithDefaultLogger(cfg.AppEnv == "development", true))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	me, err := botAPI.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка авторизации бота: %w", err)
	}
	log.Infof("Авторизован как @%s", me.Username)

	// === 3. Репозитории ===
	pointsRepo := points.NewRepository(pool)
	reactionRepo := reactions.NewRepository(pool)
	notificationRepo := notifications.NewRepository(pool)
	verificationRepo := verification.NewRepository(pool)

	// === 4. Сервисы ===
	notificationService := notifications.NewService(notificationRepo)
	pointsService := points.NewService(pointsRepo)

	guard := reactions.NewCooldownGuard(pointsRepo, cfg.PointsCooldown)
	detector := reactions.NewManipulationDetector(
		pointsRepo, cfg.PointsManipulationWindow, cfg.PointsManipulationThreshold)
	reactionService := reactions.NewService(
		reactionRepo, pointsRepo, guard, detector, notificationService, cfg.PointsReactionAward)

	source := reconcile.NewJournalSource(reactionRepo)
	reconcileService := reconcile.NewService(
		reactionRepo, source, reactionService, pointsService,
		cfg.ReconcileWindow, cfg.ReconcileBatchSize)

	verificationService := verification.NewService(verificationRepo, notificationService)
	auth := verification.NewAuth(verificationRepo, cfg.AdminPasswordHash)

	// === 5. Обработчики ===
	pointsHandler := points.NewHandler(pointsService, botAPI)
	reactionHandler := reactions.NewHandler(reactionService, cfg.FloodChatID)
	reconcileHandler := reconcile.NewHandler(reconcileService)
	verificationHandler := verification.NewHandler(verificationService, auth)

	// === 6. Собираем бота, сервер и планировщик ===
	b := bot.New(botAPI, cfg, pointsHandler, reactionHandler)
	srv := server.New(cfg, reconcileHandler, verificationHandler, auth)
	scheduler := jobs.NewScheduler(reconcileService, cfg.AppTimezone, cfg.ReconcileCron)

	return &App{
		Bot:       b,
		Server:    srv,
		Scheduler: scheduler,
		DB:        pool,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	// Инициализируем систему миграций
	if err := postgres.InitMigrations(ctx, pool); err != nil {
		return err
	}

	// Выполняем миграции по порядку
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Users},
		{2, migration002Reactions},
		{3, migration003PointAdjustments},
		{4, migration004Completions},
		{5, migration005Notifications},
		{6, migration006Admin},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    telegram_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255),
    first_name VARCHAR(255) NOT NULL DEFAULT '',
    total_points BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_telegram_id ON users(telegram_id);
`

var migration002Reactions = `
CREATE TABLE IF NOT EXISTS reactions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    chat_id BIGINT NOT NULL,
    content_id BIGINT NOT NULL,
    kind VARCHAR(64) NOT NULL,
    status VARCHAR(16) NOT NULL DEFAULT 'active',
    points BIGINT NOT NULL,
    created_at TIMESTAMP DEFAULT NOW(),
    last_verified_at TIMESTAMP,
    removed_at TIMESTAMP,
    UNIQUE (user_id, content_id, kind)
);
CREATE INDEX IF NOT EXISTS idx_reactions_status_created ON reactions(status, created_at);
CREATE TABLE IF NOT EXISTS reaction_events (
    id BIGSERIAL PRIMARY KEY,
    telegram_user_id BIGINT NOT NULL,
    chat_id BIGINT NOT NULL,
    content_id BIGINT NOT NULL,
    kind VARCHAR(64) NOT NULL,
    action VARCHAR(16) NOT NULL,
    occurred_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_reaction_events_key
    ON reaction_events(telegram_user_id, content_id, kind, occurred_at DESC);
`

var migration003PointAdjustments = `
CREATE TABLE IF NOT EXISTS point_adjustments (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    content_id BIGINT,
    reaction_id BIGINT REFERENCES reactions(id),
    amount BIGINT NOT NULL,
    reason VARCHAR(50) NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_point_adjustments_pair
    ON point_adjustments(user_id, content_id, created_at DESC);
`

var migration004Completions = `
CREATE TABLE IF NOT EXISTS tasks (
    id BIGSERIAL PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    points BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS completions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    task_id BIGINT NOT NULL REFERENCES tasks(id),
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
    needs_review BOOLEAN NOT NULL DEFAULT TRUE,
    fraud_score INTEGER NOT NULL DEFAULT 0,
    rejection_reason TEXT,
    reviewed_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_completions_pending
    ON completions(status, fraud_score DESC);
`

var migration005Notifications = `
CREATE TABLE IF NOT EXISTS notifications (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    type VARCHAR(50) NOT NULL,
    title VARCHAR(255) NOT NULL,
    message TEXT NOT NULL,
    points_change BIGINT NOT NULL DEFAULT 0,
    show_on_login BOOLEAN NOT NULL DEFAULT TRUE,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id);
`

var migration006Admin = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    session_token VARCHAR(255) UNIQUE NOT NULL,
    expires_at TIMESTAMP NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    ip VARCHAR(64) NOT NULL,
    attempt_time TIMESTAMP DEFAULT NOW(),
    success BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_admin_login_attempts_ip
    ON admin_login_attempts(ip, attempt_time DESC);
`
