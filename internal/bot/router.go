// Package bot — router.go разбирает текст сообщения в нормализованный интент
// и ведёт таблицу диспетчеризации. Текст парсится один раз, дальше решение
// принимается по Kind — никаких разбросанных по обработчикам регэкспов.
package bot

import (
	"context"
	"strings"

	"giftvault.app/telegram-shop/internal/common"
	"giftvault.app/telegram-shop/internal/features/catalog"
)

// Надписи кнопок главного меню. Кнопки категорий живут в catalog.
const (
	ButtonTopUp    = "💳 Balance Top Up"
	ButtonBalance  = "💰 Available Balance"
	ButtonCoupon   = "🏷️ Apply Coupon"
	ButtonReferral = "👥 Referrals"

	depositPrefix = "Deposit "
)

// IntentKind — вид распознанного намерения.
type IntentKind int

const (
	IntentFreeText IntentKind = iota // не распознано, решаем по контексту выбора
	IntentMainMenu
	IntentCategory // Arg: категория витрины
	IntentBack
	IntentTopUp
	IntentBalance
	IntentHistory
	IntentDeposit // Arg: метод пополнения ("BTC", ...)
	IntentTxid    // Arg: сам txid
	IntentCoupon
	IntentReferral
	IntentAdmin
	IntentPending
)

// Intent — нормализованное намерение пользователя.
type Intent struct {
	Kind IntentKind
	Arg  string
}

// ParseIntent разбирает текст сообщения. Чистая функция, без состояния.
func ParseIntent(text string) Intent {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "/") {
		cmd := strings.ToLower(strings.Fields(text)[0])
		switch cmd {
		case "/start", "/menu":
			return Intent{Kind: IntentMainMenu}
		case "/balance":
			return Intent{Kind: IntentBalance}
		case "/history":
			return Intent{Kind: IntentHistory}
		case "/admin":
			return Intent{Kind: IntentAdmin}
		case "/pending":
			return Intent{Kind: IntentPending}
		}
		return Intent{Kind: IntentFreeText, Arg: text}
	}

	if category, ok := catalog.CategoryForButton(text); ok {
		return Intent{Kind: IntentCategory, Arg: category}
	}

	switch text {
	case catalog.ButtonBack:
		return Intent{Kind: IntentBack}
	case ButtonTopUp:
		return Intent{Kind: IntentTopUp}
	case ButtonBalance:
		return Intent{Kind: IntentBalance}
	case ButtonCoupon:
		return Intent{Kind: IntentCoupon}
	case ButtonReferral:
		return Intent{Kind: IntentReferral}
	}

	if strings.HasPrefix(text, depositPrefix) {
		method := strings.TrimSpace(strings.TrimPrefix(text, depositPrefix))
		if method != "" {
			return Intent{Kind: IntentDeposit, Arg: method}
		}
	}

	if common.ValidTxidShape(text) {
		return Intent{Kind: IntentTxid, Arg: text}
	}

	return Intent{Kind: IntentFreeText, Arg: text}
}

// routeContext — всё, что нужно обработчику интента об отправителе.
type routeContext struct {
	chatID   int64
	userID   int64
	username string
}

type routeFunc func(ctx context.Context, rc routeContext, intent Intent)

// routes строит таблицу диспетчеризации интентов.
func (b *Bot) routes() map[IntentKind]routeFunc {
	return map[IntentKind]routeFunc{
		IntentMainMenu: func(ctx context.Context, rc routeContext, _ Intent) {
			b.selections.Clear(rc.chatID)
			b.sendMainMenu(rc.chatID)
		},
		IntentCategory: func(ctx context.Context, rc routeContext, intent Intent) {
			b.selections.SetCategory(rc.chatID, intent.Arg)
			b.catalogHandler.HandleCategory(ctx, rc.chatID, intent.Arg)
		},
		IntentBack: func(ctx context.Context, rc routeContext, _ Intent) {
			sel := b.selections.Get(rc.chatID)
			switch {
			case sel != nil && sel.Brand != "":
				b.selections.ClearBrand(rc.chatID)
				b.catalogHandler.HandleCategory(ctx, rc.chatID, sel.Category)
			default:
				b.selections.Clear(rc.chatID)
				b.sendMainMenu(rc.chatID)
			}
		},
		IntentTopUp: func(_ context.Context, rc routeContext, _ Intent) {
			b.depositsHandler.HandleTopUp(rc.chatID)
		},
		IntentBalance: func(ctx context.Context, rc routeContext, _ Intent) {
			b.ledgerHandler.HandleBalance(ctx, rc.chatID, rc.userID)
		},
		IntentHistory: func(ctx context.Context, rc routeContext, _ Intent) {
			b.ledgerHandler.HandleHistory(ctx, rc.chatID, rc.userID)
		},
		IntentDeposit: func(_ context.Context, rc routeContext, intent Intent) {
			b.depositsHandler.HandleDepositMethod(rc.chatID, intent.Arg)
		},
		IntentTxid: func(ctx context.Context, rc routeContext, intent Intent) {
			b.depositsHandler.HandleTxidSubmission(ctx, rc.chatID, rc.userID, rc.username, intent.Arg)
		},
		IntentCoupon: func(_ context.Context, rc routeContext, _ Intent) {
			b.sendMessage(rc.chatID, "🏷️ Coupons are coming soon.")
		},
		IntentReferral: func(_ context.Context, rc routeContext, _ Intent) {
			b.sendMessage(rc.chatID, "👥 The referral program is coming soon.")
		},
		IntentAdmin: func(ctx context.Context, rc routeContext, _ Intent) {
			b.adminHandler.HandleAdminCommand(ctx, rc.chatID, rc.userID)
		},
		IntentPending: func(ctx context.Context, rc routeContext, _ Intent) {
			b.handlePendingRequest(ctx, rc.chatID, rc.userID)
		},
		IntentFreeText: func(ctx context.Context, rc routeContext, intent Intent) {
			b.handleFreeText(ctx, rc, intent.Arg)
		},
	}
}

// handleFreeText решает судьбу нераспознанного текста по контексту выбора:
// после выбора категории это может быть бренд, после бренда — оффер.
func (b *Bot) handleFreeText(ctx context.Context, rc routeContext, text string) {
	sel := b.selections.Get(rc.chatID)

	if sel != nil && sel.Brand != "" {
		b.shopHandler.HandleOfferSelection(ctx, rc.chatID, rc.userID, rc.username, text)
		return
	}

	if sel != nil {
		exists, err := b.catalogService.BrandExists(ctx, sel.Category, text)
		if err == nil && exists {
			b.selections.SetBrand(rc.chatID, text)
			b.catalogHandler.HandleBrand(ctx, rc.chatID, sel.Category, text)
			return
		}
	}

	b.sendMessage(rc.chatID, "🤔 I didn't get that. Use the menu below.")
	b.sendMainMenu(rc.chatID)
}
