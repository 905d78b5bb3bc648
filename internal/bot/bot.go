// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go запускает polling и раздаёт апдейты обработчикам.
package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"giftvault.app/telegram-shop/internal/bot/filters"
	"giftvault.app/telegram-shop/internal/bot/middleware"
	"giftvault.app/telegram-shop/internal/common"
	"giftvault.app/telegram-shop/internal/config"
	"giftvault.app/telegram-shop/internal/features/admin"
	"giftvault.app/telegram-shop/internal/features/catalog"
	"giftvault.app/telegram-shop/internal/features/deposits"
	"giftvault.app/telegram-shop/internal/features/ledger"
	"giftvault.app/telegram-shop/internal/features/members"
	"giftvault.app/telegram-shop/internal/features/shop"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	memberService  *members.Service
	catalogService *catalog.Service
	adminService   *admin.Service
	selections     *shop.SelectionStore

	catalogHandler  *catalog.Handler
	ledgerHandler   *ledger.Handler
	depositsHandler *deposits.Handler
	shopHandler     *shop.Handler
	adminHandler    *admin.Handler

	dispatch map[IntentKind]routeFunc

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	memberService *members.Service,
	catalogService *catalog.Service,
	adminService *admin.Service,
	selections *shop.SelectionStore,
	catalogHandler *catalog.Handler,
	ledgerHandler *ledger.Handler,
	depositsHandler *deposits.Handler,
	shopHandler *shop.Handler,
	adminHandler *admin.Handler,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	b := &Bot{
		api:             api,
		cfg:             cfg,
		chatFilter:      filters.NewChatFilter(),
		rateLimiter:     middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		memberService:   memberService,
		catalogService:  catalogService,
		adminService:    adminService,
		selections:      selections,
		catalogHandler:  catalogHandler,
		ledgerHandler:   ledgerHandler,
		depositsHandler: depositsHandler,
		shopHandler:     shopHandler,
		adminHandler:    adminHandler,
		inflight:        make(chan struct{}, maxInFlight),
	}
	b.dispatch = b.routes()
	return b
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				b.rateLimiter.Close()
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.Text == "" {
		return
	}
	message := update.Message

	middleware.LogMessage(message)

	// Магазин работает только в личке
	if !b.chatFilter.CheckAccess(message) {
		return
	}

	if !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID
	username := message.From.UserName

	// EnsureMember — ошибки нельзя игнорировать, иначе потом будет "оно не работает"
	if err := b.memberService.EnsureMember(ctx, userID, username,
		message.From.FirstName, message.From.LastName,
	); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureMember failed")
	}

	// Открытая сессия аппрува перехватывает свободный текст админа как сумму
	if b.cfg.IsAdmin(userID) {
		if b.depositsHandler.HandleAmountInput(ctx, chatID, userID, message.Text) {
			return
		}
		if b.adminHandler.HandleMessage(ctx, chatID, userID, message.Text) {
			return
		}
	}

	intent := ParseIntent(message.Text)
	rc := routeContext{chatID: chatID, userID: userID, username: username}
	if route, ok := b.dispatch[intent.Kind]; ok {
		route(ctx, rc, intent)
		return
	}
	b.handleFreeText(ctx, rc, message.Text)
}

// handleCallback маршрутизирует нажатия инлайн-кнопок.
// Пространства имён: approve:/reject: — аппрув депозитов, admin: — панель.
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	defer middleware.RecoverFromPanic()

	if query.Message == nil || query.Message.Chat == nil {
		return
	}
	chatID := query.Message.Chat.ID
	userID := query.From.ID
	data := query.Data

	switch {
	case strings.HasPrefix(data, "approve:"):
		b.answerCallback(query.ID)
		if !b.requireAdmin(chatID, userID) {
			return
		}
		alias, _, ok := parseApprovalData(strings.TrimPrefix(data, "approve:"))
		if !ok {
			return
		}
		b.depositsHandler.HandleApproveCallback(ctx, chatID, userID, alias)

	case strings.HasPrefix(data, "reject:"):
		b.answerCallback(query.ID)
		if !b.requireAdmin(chatID, userID) {
			return
		}
		b.depositsHandler.HandleRejectCallback(ctx, chatID, strings.TrimPrefix(data, "reject:"))

	case data == admin.CallbackPending:
		b.answerCallback(query.ID)
		if !b.requireAdmin(chatID, userID) {
			return
		}
		// Очередь и аппрувы доступны по списку админов из конфига:
		// истёкшая сессия панели не должна блокировать разбор депозитов
		b.depositsHandler.HandleListPending(ctx, chatID)

	case strings.HasPrefix(data, admin.CallbackPrefix):
		b.adminHandler.HandleCallback(ctx, query)

	default:
		b.answerCallback(query.ID)
		log.WithField("data", data).Warn("Неизвестный callback")
	}
}

// handlePendingRequest — /pending в личке админа. Гейт только по конфигу,
// как и approve/reject: логин в панель для очереди не требуется.
func (b *Bot) handlePendingRequest(ctx context.Context, chatID, userID int64) {
	if !b.requireAdmin(chatID, userID) {
		return
	}
	b.depositsHandler.HandleListPending(ctx, chatID)
}

// requireAdmin отвечает явным отказом вместо молчаливого игнора.
func (b *Bot) requireAdmin(chatID, userID int64) bool {
	if errors.Is(b.adminService.Authorize(userID), common.ErrNotAdmin) {
		b.sendMessage(chatID, "❌ You are not authorized to use this command.")
		return false
	}
	return true
}

// parseApprovalData разбирает "<alias>:<user_id>" из approve-callback.
func parseApprovalData(data string) (string, int64, bool) {
	alias, rawID, ok := strings.Cut(data, ":")
	if !ok || alias == "" {
		return "", 0, false
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return "", 0, false
	}
	return alias, id, true
}

// sendMainMenu показывает главное меню магазина.
func (b *Bot) sendMainMenu(chatID int64) {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(catalog.ButtonGiftCards),
			tgbotapi.NewKeyboardButton(catalog.ButtonStreaming),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonTopUp),
			tgbotapi.NewKeyboardButton(ButtonBalance),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonCoupon),
			tgbotapi.NewKeyboardButton(ButtonReferral),
		),
	)
	keyboard.ResizeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, "👋 Welcome! Pick a section:")
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки меню")
	}
}

// SendMessageToUser отправляет сообщение пользователю (для фоновых задач).
func (b *Bot) SendMessageToUser(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить сообщение")
	}
}

func (b *Bot) answerCallback(callbackID string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		log.WithError(err).Error("Не удалось ответить на callback")
	}
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
