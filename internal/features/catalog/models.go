// Package catalog хранит витрину: категория → бренд → оффер → доступность.
package catalog

import "time"

// Категории витрины. Других не бывает, валидируем на входе.
const (
	CategoryGiftCards = "gift_cards"
	CategoryStreaming = "streaming_services"
)

// Offer — одна позиция витрины. Label несёт и номинал, и цену
// (например "$50 for $25" или "6 Months - $20"), разбором занимается shop.
type Offer struct {
	ID        int64
	Category  string
	Brand     string
	Label     string
	Available bool
	CreatedAt time.Time
}

// ValidCategory сообщает, известна ли нам такая категория.
func ValidCategory(category string) bool {
	return category == CategoryGiftCards || category == CategoryStreaming
}
