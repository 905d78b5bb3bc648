// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики
// и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"giftvault.app/telegram-shop/internal/bot"
	"giftvault.app/telegram-shop/internal/config"
	"giftvault.app/telegram-shop/internal/db/postgres"
	"giftvault.app/telegram-shop/internal/features/admin"
	"giftvault.app/telegram-shop/internal/features/catalog"
	"giftvault.app/telegram-shop/internal/features/deposits"
	"giftvault.app/telegram-shop/internal/features/ledger"
	"giftvault.app/telegram-shop/internal/features/members"
	"giftvault.app/telegram-shop/internal/features/shop"
	"giftvault.app/telegram-shop/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 3. Репозитории ===
	memberRepo := members.NewRepository(pool)
	ledgerRepo := ledger.NewRepository(pool)
	depositsRepo := deposits.NewRepository(pool, ledgerRepo)
	catalogRepo := catalog.NewRepository(pool)
	adminRepo := admin.NewRepository(pool)

	// === 4. Сервисы ===
	memberService := members.NewService(memberRepo, cfg)
	ledgerService := ledger.NewService(ledgerRepo)
	depositsService := deposits.NewService(depositsRepo, cfg.ApprovalSessionTTL)
	catalogService := catalog.NewService(catalogRepo)
	shopService := shop.NewService(catalogService, ledgerService)
	adminService := admin.NewService(adminRepo, catalogService, cfg)

	// Админов из конфига помечаем в БД при старте
	memberService.SyncAdmins(ctx)

	// === 5. Обработчики ===
	selections := shop.NewSelectionStore()
	catalogHandler := catalog.NewHandler(catalogService, botAPI)
	ledgerHandler := ledger.NewHandler(ledgerService, botAPI)
	depositsHandler := deposits.NewHandler(depositsService, botAPI, cfg)
	shopHandler := shop.NewHandler(shopService, selections, botAPI, cfg)
	adminHandler := admin.NewHandler(adminService, catalogService, botAPI)

	// === 6. Собираем бота ===
	b := bot.New(
		botAPI, cfg,
		memberService, catalogService, adminService, selections,
		catalogHandler, ledgerHandler, depositsHandler, shopHandler, adminHandler,
	)

	// === 7. Планировщик задач ===
	scheduler := jobs.NewScheduler(depositsService, cfg.AdminIDs, b.SendMessageToUser)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.EnsureMigrationTable(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Members},
		{2, migration002Ledger},
		{3, migration003Deposits},
		{4, migration004Catalog},
		{5, migration005Admin},
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

var migration001Members = `
CREATE TABLE IF NOT EXISTS members (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255),
    first_name VARCHAR(255) NOT NULL,
    last_name VARCHAR(255),
    is_admin BOOLEAN DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_members_user_id ON members(user_id);
CREATE INDEX IF NOT EXISTS idx_members_username ON members(username);
`

var migration002Ledger = `
CREATE TABLE IF NOT EXISTS balances (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL REFERENCES members(user_id),
    balance_cents BIGINT DEFAULT 0,
    total_deposited_cents BIGINT DEFAULT 0,
    total_spent_cents BIGINT DEFAULT 0,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS ledger_transactions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    txid TEXT,
    amount_cents BIGINT NOT NULL,
    service VARCHAR(50) NOT NULL,
    status VARCHAR(20) NOT NULL,
    description TEXT,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_ledger_transactions_user ON ledger_transactions(user_id);
CREATE INDEX IF NOT EXISTS idx_ledger_transactions_created_at ON ledger_transactions(created_at DESC);
`

var migration003Deposits = `
CREATE TABLE IF NOT EXISTS pending_deposits (
    id BIGSERIAL PRIMARY KEY,
    alias VARCHAR(16) UNIQUE NOT NULL,
    txid TEXT NOT NULL,
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    username VARCHAR(255),
    submitted_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_pending_deposits_submitted_at ON pending_deposits(submitted_at);
CREATE TABLE IF NOT EXISTS approval_sessions (
    admin_id BIGINT PRIMARY KEY,
    alias VARCHAR(16) NOT NULL,
    txid TEXT NOT NULL,
    user_id BIGINT NOT NULL,
    created_at TIMESTAMP DEFAULT NOW(),
    expires_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_approval_sessions_expires_at ON approval_sessions(expires_at);
`

var migration004Catalog = `
CREATE TABLE IF NOT EXISTS catalog_offers (
    id BIGSERIAL PRIMARY KEY,
    category VARCHAR(32) NOT NULL,
    brand VARCHAR(64) NOT NULL,
    label VARCHAR(128) NOT NULL,
    available BOOLEAN DEFAULT TRUE,
    created_at TIMESTAMP DEFAULT NOW(),
    UNIQUE (category, brand, label)
);
CREATE INDEX IF NOT EXISTS idx_catalog_offers_category_brand ON catalog_offers(category, brand);
`

var migration005Admin = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT REFERENCES members(user_id),
    session_token VARCHAR(255) UNIQUE,
    authenticated_at TIMESTAMP DEFAULT NOW(),
    expires_at TIMESTAMP,
    last_activity TIMESTAMP DEFAULT NOW(),
    is_active BOOLEAN DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_admin_sessions_user_id ON admin_sessions(user_id);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT,
    attempt_time TIMESTAMP DEFAULT NOW(),
    success BOOLEAN DEFAULT FALSE
);
`
