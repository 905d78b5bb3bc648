// Package admin — handlers.go обрабатывает взаимодействие с админ-панелью.
// Панель открывается в личных сообщениях после ввода пароля.
// Поток: аутентификация → инлайн-панель → выбор действия → пошаговый диалог.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"giftvault.app/telegram-shop/internal/common"
	"giftvault.app/telegram-shop/internal/features/catalog"
)

// Callback data админ-панели. Роутер отдаёт сюда всё с префиксом "admin:".
const (
	CallbackPrefix       = "admin:"
	callbackAddGiftCard  = "admin:add_gift_card"
	callbackAddStreaming = "admin:add_streaming"
	callbackManageStock  = "admin:manage_stock"
	callbackStockPrefix  = "admin:stock:"
	callbackBrandPrefix  = "admin:brand:"
	callbackTogglePrefix = "admin:toggle:"
)

// CallbackPending показывает очередь депозитов; роутер обрабатывает его сам.
const CallbackPending = "admin:pending"

// Handler обрабатывает админ-команды.
type Handler struct {
	service *Service
	catalog *catalog.Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик админ-панели.
func NewHandler(service *Service, cat *catalog.Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, catalog: cat, bot: bot}
}

// HandleAdminCommand обрабатывает /admin в личных сообщениях.
func (h *Handler) HandleAdminCommand(ctx context.Context, chatID, userID int64) {
	if errors.Is(h.service.Authorize(userID), common.ErrNotAdmin) {
		h.sendMessage(chatID, "❌ You are not authorized to use this command.")
		return
	}
	if errors.Is(h.service.RequireSession(ctx, userID), common.ErrSessionExpired) {
		h.sendMessage(chatID, "🔐 Enter the admin password:")
		h.service.SetState(userID, StateAwaitingPassword, "")
		return
	}
	h.service.TouchSession(ctx, userID)
	h.showPanel(chatID)
}

// HandleMessage перехватывает сообщения администратора, занятого диалогом.
// Возвращает true, если сообщение обработано и дальше его вести не нужно.
func (h *Handler) HandleMessage(ctx context.Context, chatID, userID int64, text string) bool {
	if h.service.Authorize(userID) != nil {
		return false
	}

	state := h.service.GetState(userID)
	if state == nil {
		return false
	}

	if state.State == StateAwaitingPassword {
		h.handlePasswordInput(ctx, chatID, userID, text)
		return true
	}

	// Диалоги со стоком требуют живой сессии
	if errors.Is(h.service.RequireSession(ctx, userID), common.ErrSessionExpired) {
		h.service.ClearState(userID)
		h.sendMessage(chatID, "🔐 Session expired. Send /admin to log in again.")
		return true
	}
	h.service.TouchSession(ctx, userID)

	switch state.State {
	case StateAddGiftCardBrand:
		h.handleBrandInput(chatID, userID, text, StateAddGiftCardOffers)
		return true
	case StateAddStreamingBrand:
		h.handleBrandInput(chatID, userID, text, StateAddStreamingOffers)
		return true
	case StateAddGiftCardOffers:
		h.handleOffersInput(ctx, chatID, userID, catalog.CategoryGiftCards, state.Data, text)
		return true
	case StateAddStreamingOffers:
		h.handleOffersInput(ctx, chatID, userID, catalog.CategoryStreaming, state.Data, text)
		return true
	}
	return false
}

// HandleCallback обрабатывает нажатия инлайн-кнопок панели.
func (h *Handler) HandleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	data := query.Data

	if errors.Is(h.service.Authorize(userID), common.ErrNotAdmin) {
		h.answerCallback(query.ID, "Not authorized")
		h.sendMessage(chatID, "❌ You are not authorized to use this command.")
		return
	}
	if errors.Is(h.service.RequireSession(ctx, userID), common.ErrSessionExpired) {
		h.answerCallback(query.ID, "")
		h.sendMessage(chatID, "🔐 Session expired. Send /admin to log in again.")
		return
	}
	h.service.TouchSession(ctx, userID)
	h.answerCallback(query.ID, "")

	switch {
	case data == callbackAddGiftCard:
		h.sendMessage(chatID, "✏️ Send the gift card brand name (e.g. Amazon):")
		h.service.SetState(userID, StateAddGiftCardBrand, "")
	case data == callbackAddStreaming:
		h.sendMessage(chatID, "✏️ Send the streaming service name (e.g. Netflix):")
		h.service.SetState(userID, StateAddStreamingBrand, "")
	case data == callbackManageStock:
		h.showStockCategories(chatID)
	case strings.HasPrefix(data, callbackStockPrefix):
		h.showStockBrands(ctx, chatID, strings.TrimPrefix(data, callbackStockPrefix))
	case strings.HasPrefix(data, callbackBrandPrefix):
		h.showStockOffers(ctx, chatID, strings.TrimPrefix(data, callbackBrandPrefix))
	case strings.HasPrefix(data, callbackTogglePrefix):
		h.toggleOffer(ctx, chatID, strings.TrimPrefix(data, callbackTogglePrefix))
	default:
		log.WithField("data", data).Warn("Неизвестный админ-callback")
	}
}

// handlePasswordInput обрабатывает ввод пароля.
func (h *Handler) handlePasswordInput(ctx context.Context, chatID, userID int64, password string) {
	err := h.service.VerifyPassword(ctx, userID, password)
	switch {
	case errors.Is(err, common.ErrTooManyAttempts):
		h.service.ClearState(userID)
		h.sendMessage(chatID, "❌ Too many failed attempts. Try again in an hour.")
		return
	case errors.Is(err, common.ErrWrongPassword):
		h.service.ClearState(userID)
		h.sendMessage(chatID, "❌ Wrong password.")
		return
	case err != nil:
		log.WithError(err).Error("Ошибка проверки пароля")
		h.service.ClearState(userID)
		h.sendMessage(chatID, "❌ Something went wrong. Please try again.")
		return
	}

	h.service.ClearState(userID)
	h.sendMessage(chatID, "✅ Authenticated!")
	h.showPanel(chatID)
}

// showPanel отображает инлайн-клавиатуру админ-панели.
func (h *Handler) showPanel(chatID int64) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add Gift Card Brand", callbackAddGiftCard),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add Streaming Service", callbackAddStreaming),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📦 Manage Stock", callbackManageStock),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Pending Deposits", CallbackPending),
		),
	)

	msg := tgbotapi.NewMessage(chatID, "🛠 Admin panel")
	msg.ReplyMarkup = keyboard
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Не удалось отправить клавиатуру панели")
	}
}

// --- Добавление бренда (2 шага) ---

// handleBrandInput — шаг 1: запомнить бренд, попросить офферы.
func (h *Handler) handleBrandInput(chatID, userID int64, text, nextState string) {
	brand := strings.TrimSpace(text)
	if brand == "" || len([]rune(brand)) > 64 {
		h.sendMessage(chatID, "❌ Brand name must be 1-64 characters. Try again.")
		return
	}
	h.service.SetState(userID, nextState, brand)
	h.sendMessage(chatID, fmt.Sprintf(
		"✏️ Now send the offers for %s, one per line:\n\n<label>,<true|false>\n\nExample:\n$50 for $25,true\n$100 for $45,false",
		brand,
	))
}

// handleOffersInput — шаг 2: разобрать строки офферов и сохранить.
func (h *Handler) handleOffersInput(ctx context.Context, chatID, userID int64, category, brand, text string) {
	count, err := h.service.AddBrandOffers(ctx, category, brand, text)
	if err != nil {
		h.sendMessage(chatID, fmt.Sprintf("❌ %s\n\nFix the lines and send them again.", err.Error()))
		return
	}
	h.service.ClearState(userID)
	h.sendMessage(chatID, fmt.Sprintf("✅ Saved %d offer(s) for %s.", count, brand))
}

// --- Управление стоком ---

func (h *Handler) showStockCategories(chatID int64) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎁 Gift Cards", callbackStockPrefix+catalog.CategoryGiftCards),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎬 Streaming Services", callbackStockPrefix+catalog.CategoryStreaming),
		),
	)
	msg := tgbotapi.NewMessage(chatID, "📦 Pick a category:")
	msg.ReplyMarkup = keyboard
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Не удалось отправить список категорий")
	}
}

func (h *Handler) showStockBrands(ctx context.Context, chatID int64, category string) {
	brands, err := h.catalog.Brands(ctx, category)
	if err != nil {
		log.WithError(err).WithField("category", category).Error("Не удалось получить бренды")
		h.sendMessage(chatID, "❌ Something went wrong.")
		return
	}
	if len(brands) == 0 {
		h.sendMessage(chatID, "Nothing in this category yet.")
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(brands))
	for _, brand := range brands {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(brand, callbackBrandPrefix+category+":"+brand),
		))
	}
	msg := tgbotapi.NewMessage(chatID, "📦 Pick a brand:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Не удалось отправить список брендов")
	}
}

// showStockOffers показывает все офферы бренда, включая скрытые.
// Нажатие на оффер переключает его доступность.
func (h *Handler) showStockOffers(ctx context.Context, chatID int64, key string) {
	category, brand, ok := strings.Cut(key, ":")
	if !ok {
		return
	}
	offers, err := h.catalog.AllOffers(ctx, category, brand)
	if err != nil {
		log.WithError(err).WithField("brand", brand).Error("Не удалось получить офферы")
		h.sendMessage(chatID, "❌ Something went wrong.")
		return
	}
	if len(offers) == 0 {
		h.sendMessage(chatID, "No offers for this brand yet.")
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(offers))
	for _, o := range offers {
		icon := "✅"
		if !o.Available {
			icon = "🚫"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s", icon, o.Label),
				callbackTogglePrefix+strconv.FormatInt(o.ID, 10),
			),
		))
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("📦 %s — tap an offer to toggle it:", brand))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Не удалось отправить список офферов")
	}
}

func (h *Handler) toggleOffer(ctx context.Context, chatID int64, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return
	}
	offer, err := h.catalog.ToggleByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		h.sendMessage(chatID, "❌ That offer no longer exists.")
		return
	}
	if err != nil {
		log.WithError(err).WithField("offer_id", id).Error("Не удалось переключить оффер")
		h.sendMessage(chatID, "❌ Something went wrong.")
		return
	}

	status := "available"
	if !offer.Available {
		status = "hidden"
	}
	h.sendMessage(chatID, fmt.Sprintf("✅ %s (%s) is now %s.", offer.Label, offer.Brand, status))
}

func (h *Handler) answerCallback(callbackID, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.WithError(err).Error("Не удалось ответить на callback")
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Не удалось отправить сообщение")
	}
}
