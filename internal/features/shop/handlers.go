package shop

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"giftvault.app/telegram-shop/internal/common"
	"giftvault.app/telegram-shop/internal/config"
)

// Handler отвечает на выбор оффера в чате.
type Handler struct {
	service    *Service
	selections *SelectionStore
	bot        *tgbotapi.BotAPI
	cfg        *config.Config
}

// NewHandler создаёт обработчик покупок.
func NewHandler(service *Service, selections *SelectionStore, bot *tgbotapi.BotAPI, cfg *config.Config) *Handler {
	return &Handler{service: service, selections: selections, bot: bot, cfg: cfg}
}

// HandleOfferSelection проводит покупку выбранного в клавиатуре оффера.
// Доставка ручная: после списания админы получают заявку на выдачу.
func (h *Handler) HandleOfferSelection(ctx context.Context, chatID, userID int64, username, label string) {
	sel := h.selections.Get(chatID)
	if sel == nil || sel.Brand == "" {
		h.sendMessage(chatID, "Please pick a brand first — use the menu below.")
		return
	}

	receipt, err := h.service.Purchase(ctx, userID, username, sel.Category, sel.Brand, label)
	switch {
	case errors.Is(err, common.ErrOfferUnavailable):
		h.sendMessage(chatID, "❌ That offer is no longer available.")
		return
	case errors.Is(err, common.ErrInsufficientBalance):
		h.sendMessage(chatID, "❌ Insufficient balance. Use 💳 Balance Top Up to add funds.")
		return
	case errors.Is(err, common.ErrMalformedOffer):
		h.sendMessage(chatID, "❌ This offer is misconfigured. Please try another one.")
		return
	case err != nil:
		log.WithError(err).WithField("user_id", userID).Error("Покупка не прошла")
		h.sendMessage(chatID, "❌ Something went wrong. Your balance was not charged.")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf(
		"🎉 Purchase successful!\n\n%s for %s.\nYour order will be delivered within 24 hours.",
		receipt.Summary(), common.FormatMoney(receipt.PriceCents),
	))

	// Заявка на ручную выдачу
	notice := fmt.Sprintf(
		"🛒 New order\n\nUser: @%s (%d)\nItem: %s\nCharged: %s\n\nDeliver within 24 hours.",
		receipt.Username, receipt.UserID, receipt.Summary(), common.FormatMoney(receipt.PriceCents),
	)
	for _, adminID := range h.cfg.AdminIDs {
		h.sendMessage(adminID, notice)
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Не удалось отправить сообщение")
	}
}
