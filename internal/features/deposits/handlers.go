// Package deposits — handlers.go обрабатывает Telegram-взаимодействие:
// приём txid от пользователя, /pending, коллбэки Approve/Reject и ввод суммы.
// Вся логика — в Service; здесь только тексты и отправка сообщений.
package deposits

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"giftvault.app/telegram-shop/internal/common"
	"giftvault.app/telegram-shop/internal/config"
)

// Handler обрабатывает сообщения и коллбэки, связанные с депозитами.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
	cfg     *config.Config
}

// NewHandler создаёт обработчик депозитов.
func NewHandler(service *Service, bot *tgbotapi.BotAPI, cfg *config.Config) *Handler {
	return &Handler{service: service, bot: bot, cfg: cfg}
}

// ApprovalKeyboard строит inline-клавиатуру Approve/Reject для заявки.
// Формат callback data: "approve:<alias>:<user_id>" и "reject:<alias>" —
// в кнопку кладём alias, а не txid: txid длиннее лимита callback data.
func ApprovalKeyboard(alias string, userID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", fmt.Sprintf("approve:%s:%d", alias, userID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", fmt.Sprintf("reject:%s", alias)),
		),
	)
}

// HandleTxidSubmission обрабатывает присланный пользователем txid:
// ставит заявку в очередь, подтверждает приём и уведомляет админов.
func (h *Handler) HandleTxidSubmission(ctx context.Context, chatID, userID int64, username, txid string) {
	p, err := h.service.Submit(ctx, userID, username, txid)
	if errors.Is(err, common.ErrInvalidTxid) {
		h.sendMessage(chatID, "❌ Invalid Transaction ID format.")
		return
	}
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Submit failed")
		h.sendMessage(chatID, "⚠️ We couldn't accept your transaction right now. Please try again later.")
		return
	}

	h.sendMessage(chatID, "✅ Transaction submitted for review. It may take up to 24 hours for approval.")

	text := fmt.Sprintf(
		"🧾 New Deposit Request\n\n"+
			"👤 User: @%s (id %d)\n"+
			"🆔 TXID: %s\n"+
			"🔑 Alias: %s\n"+
			"🕒 Submitted: %s",
		p.Username, p.UserID, p.Txid, p.Alias, common.FormatDateTime(p.SubmittedAt),
	)
	for _, adminID := range h.cfg.AdminIDs {
		msg := tgbotapi.NewMessage(adminID, text)
		msg.ReplyMarkup = ApprovalKeyboard(p.Alias, p.UserID)
		if _, err := h.bot.Send(msg); err != nil {
			log.WithError(err).WithField("admin_id", adminID).Warn("не удалось уведомить админа о заявке")
		}
	}
}

// HandleListPending обрабатывает /pending: по сообщению на заявку,
// каждое с клавиатурой Approve/Reject. Доступ уже проверен роутером.
func (h *Handler) HandleListPending(ctx context.Context, chatID int64) {
	pending, err := h.service.List(ctx)
	if err != nil {
		log.WithError(err).Error("ListPending failed")
		h.sendMessage(chatID, "⚠️ Could not read the pending queue.")
		return
	}
	if len(pending) == 0 {
		h.sendMessage(chatID, "✅ No pending deposits.")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("📋 %d pending:", len(pending)))
	for _, p := range pending {
		text := fmt.Sprintf("🧾 User: @%s\nTXID: %s\nAlias: %s\nSubmitted: %s",
			p.Username, p.Txid, p.Alias, common.FormatDateTime(p.SubmittedAt))
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = ApprovalKeyboard(p.Alias, p.UserID)
		if _, err := h.bot.Send(msg); err != nil {
			log.WithError(err).Warn("не удалось отправить заявку админу")
		}
	}
}

// HandleApproveCallback обрабатывает нажатие Approve: открывает сессию
// и просит ввести сумму.
func (h *Handler) HandleApproveCallback(ctx context.Context, chatID, adminID int64, alias string) {
	p, err := h.service.BeginApproval(ctx, adminID, alias)
	if errors.Is(err, common.ErrNotFound) {
		h.sendMessage(chatID, "❌ That deposit is no longer pending.")
		return
	}
	if err != nil {
		log.WithError(err).WithField("alias", alias).Error("BeginApproval failed")
		h.sendMessage(chatID, "⚠️ Error processing request.")
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("💰 Enter amount for TXID %s:", p.Txid))
}

// HandleRejectCallback обрабатывает нажатие Reject: удаляет заявку
// и уведомляет пользователя. Леджер не трогается.
func (h *Handler) HandleRejectCallback(ctx context.Context, chatID int64, alias string) {
	p, err := h.service.Reject(ctx, alias)
	if errors.Is(err, common.ErrNotFound) {
		h.sendMessage(chatID, "❌ That deposit is no longer pending.")
		return
	}
	if err != nil {
		log.WithError(err).WithField("alias", alias).Error("Reject failed")
		h.sendMessage(chatID, "⚠️ Error processing request.")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("❌ Rejected TXID %s.", p.Txid))
	h.sendMessage(p.UserID, "❌ Your deposit was rejected. Contact support if you believe this is a mistake.")
}

// HandleAmountInput пробует истолковать свободный текст админа как сумму
// для открытой сессии аппрува. Возвращает true, если текст относился
// к аппруву (успех или ошибка ввода), и false, если сессии нет —
// тогда текст уходит дальше по обычному маршруту.
func (h *Handler) HandleAmountInput(ctx context.Context, chatID, adminID int64, text string) bool {
	result, err := h.service.SubmitAmount(ctx, adminID, text)
	switch {
	case errors.Is(err, ErrNoSession):
		return false
	case errors.Is(err, common.ErrInvalidAmount):
		// Сессия осталась открытой — админ может повторить
		h.sendMessage(chatID, "❌ Please enter a valid positive number.")
		return true
	case errors.Is(err, common.ErrNotFound):
		h.sendMessage(chatID, "❌ That deposit was already resolved. Nothing was credited.")
		return true
	case err != nil:
		log.WithError(err).WithField("admin_id", adminID).Error("SubmitAmount failed")
		h.sendMessage(chatID, "⚠️ Failed to process approval.")
		return true
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ Approved %s for user %d (TXID %s).",
		common.FormatMoney(result.Amount), result.UserID, result.Txid))
	h.sendMessage(result.UserID, fmt.Sprintf("🎉 Your deposit of %s has been approved and added to your balance!",
		common.FormatMoney(result.Amount)))
	return true
}

// HandleTopUp показывает доступные способы пополнения.
func (h *Handler) HandleTopUp(chatID int64) {
	if len(h.cfg.DepositWallets) == 0 {
		h.sendMessage(chatID, "😔 Top-ups are temporarily unavailable.")
		return
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(h.cfg.DepositWallets)+1)
	for _, w := range h.cfg.DepositWallets {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Deposit "+w.Method),
		))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("⬅️ Back")))
	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, "💳 Pick a payment method:")
	msg.ReplyMarkup = keyboard
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// HandleDepositMethod показывает адрес кошелька и инструкцию.
func (h *Handler) HandleDepositMethod(chatID int64, method string) {
	for _, w := range h.cfg.DepositWallets {
		if w.Method == method {
			h.sendMessage(chatID, fmt.Sprintf(
				"💳 %s deposit\n\nSend at least %s to:\n\n%s\n\nThen paste the transaction ID (TXID) here. It may take up to 24 hours for approval.",
				w.Method, common.FormatMoney(common.Cents(h.cfg.DepositMinimumCents)), w.Address,
			))
			return
		}
	}
	h.sendMessage(chatID, "❌ Unknown payment method.")
}

// sendMessage — утилита для отправки сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
