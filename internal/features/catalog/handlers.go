package catalog

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Надписи кнопок витрины. Роутер сводит нажатия обратно к категориям
// по этим же константам, поэтому менять их можно только синхронно.
const (
	ButtonGiftCards = "🎁 Gift Cards"
	ButtonStreaming = "🎬 Streaming Services"
	ButtonBack      = "⬅️ Back"
)

// CategoryForButton возвращает категорию по нажатой кнопке меню.
func CategoryForButton(text string) (string, bool) {
	switch text {
	case ButtonGiftCards:
		return CategoryGiftCards, true
	case ButtonStreaming:
		return CategoryStreaming, true
	}
	return "", false
}

// Handler отвечает за показ витрины в чате.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик витрины.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleCategory показывает бренды категории клавиатурой-списком.
func (h *Handler) HandleCategory(ctx context.Context, chatID int64, category string) {
	brands, err := h.service.Brands(ctx, category)
	if err != nil {
		log.WithError(err).WithField("category", category).Error("Не удалось получить бренды")
		h.send(chatID, "❌ Something went wrong. Please try again.", nil)
		return
	}
	if len(brands) == 0 {
		h.send(chatID, "😔 Nothing here yet. Check back soon!", nil)
		return
	}

	var text string
	switch category {
	case CategoryGiftCards:
		text = "🎁 Pick a gift card brand:"
	default:
		text = "🎬 Pick a streaming service:"
	}
	h.send(chatID, text, listKeyboard(brands))
}

// HandleBrand показывает доступные офферы бренда.
func (h *Handler) HandleBrand(ctx context.Context, chatID int64, category, brand string) {
	offers, err := h.service.AvailableOffers(ctx, category, brand)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"category": category, "brand": brand}).
			Error("Не удалось получить офферы")
		h.send(chatID, "❌ Something went wrong. Please try again.", nil)
		return
	}
	if len(offers) == 0 {
		h.send(chatID, fmt.Sprintf("😔 %s is out of stock right now.", brand), nil)
		return
	}

	labels := make([]string, 0, len(offers))
	for _, o := range offers {
		labels = append(labels, o.Label)
	}
	h.send(chatID, fmt.Sprintf("🛒 %s — pick an offer:", brand), listKeyboard(labels))
}

// listKeyboard строит клавиатуру: по кнопке на строку плюс «назад».
func listKeyboard(items []string) *tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(items)+1)
	for _, item := range items {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(item)))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonBack)))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return &kb
}

func (h *Handler) send(chatID int64, text string, keyboard *tgbotapi.ReplyKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Не удалось отправить сообщение")
	}
}
