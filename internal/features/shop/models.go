// Package shop разбирает офферы витрины и проводит покупки с баланса.
package shop

import (
	"fmt"
	"regexp"

	"giftvault.app/telegram-shop/internal/common"
	"giftvault.app/telegram-shop/internal/features/catalog"
)

// Форматы label фиксированы витриной: подарочные карты "<номинал> for <цена>",
// стриминг "<срок> - <цена>". Всё остальное — ошибка данных, а не пользователя.
var (
	giftCardPattern  = regexp.MustCompile(`^\$(\d+(?:\.\d{1,2})?) for \$(\d+(?:\.\d{1,2})?)$`)
	streamingPattern = regexp.MustCompile(`^(\d+\s(?:Month|Year)s?) - \$(\d+(?:\.\d{1,2})?)$`)
)

// ParsedOffer — оффер, разобранный до цены и человекочитаемой сути.
type ParsedOffer struct {
	Label      string
	Detail     string // "$50" для карты, "6 Months" для подписки
	PriceCents common.Cents
}

// ParseOffer извлекает цену из label по правилам категории.
func ParseOffer(category, label string) (*ParsedOffer, error) {
	var pattern *regexp.Regexp
	switch category {
	case catalog.CategoryGiftCards:
		pattern = giftCardPattern
	case catalog.CategoryStreaming:
		pattern = streamingPattern
	default:
		return nil, common.ErrMalformedOffer
	}

	m := pattern.FindStringSubmatch(label)
	if m == nil {
		return nil, common.ErrMalformedOffer
	}
	price, err := common.ParseAmount(m[2])
	if err != nil {
		return nil, common.ErrMalformedOffer
	}

	detail := m[1]
	if category == catalog.CategoryGiftCards {
		detail = "$" + m[1]
	}
	return &ParsedOffer{Label: label, Detail: detail, PriceCents: price}, nil
}

// Receipt — результат успешной покупки, сырьё для уведомлений.
type Receipt struct {
	UserID     int64
	Username   string
	Category   string
	Brand      string
	Label      string
	PriceCents common.Cents
}

// Summary возвращает строку вида "Amazon gift card, $50 for $25".
func (r *Receipt) Summary() string {
	kind := "gift card"
	if r.Category == catalog.CategoryStreaming {
		kind = "subscription"
	}
	return fmt.Sprintf("%s %s, %s", r.Brand, kind, r.Label)
}
