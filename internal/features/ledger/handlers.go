package ledger

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"giftvault.app/telegram-shop/internal/common"
)

// Handler показывает баланс и историю операций в чате.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик баланса.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleBalance отвечает текущим балансом.
func (h *Handler) HandleBalance(ctx context.Context, chatID, userID int64) {
	balance, err := h.service.GetBalance(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Не удалось получить баланс")
		h.sendMessage(chatID, "❌ Something went wrong. Please try again.")
		return
	}
	h.sendMessage(chatID,
		"💰 Available balance: "+common.FormatMoney(balance)+
			"\n\nUse 💳 Balance Top Up to add funds.")
}

// HandleHistory отвечает последними транзакциями.
func (h *Handler) HandleHistory(ctx context.Context, chatID, userID int64) {
	text, err := h.service.FormatHistory(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Не удалось получить историю")
		h.sendMessage(chatID, "❌ Something went wrong. Please try again.")
		return
	}
	h.sendMessage(chatID, text)
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Не удалось отправить сообщение")
	}
}
