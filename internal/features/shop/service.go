package shop

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"giftvault.app/telegram-shop/internal/common"
	"giftvault.app/telegram-shop/internal/features/catalog"
	"giftvault.app/telegram-shop/internal/features/ledger"
)

// Catalog — то, что магазину нужно от витрины.
type Catalog interface {
	EnsureAvailable(ctx context.Context, category, brand, label string) (*catalog.Offer, error)
}

// Ledger — то, что магазину нужно от баланса.
type Ledger interface {
	Debit(ctx context.Context, userID int64, amount common.Cents, service, description string) error
}

// Service проводит покупку: проверка наличия, разбор цены, списание.
type Service struct {
	catalog Catalog
	ledger  Ledger
}

// NewService создаёт сервис покупок.
func NewService(cat Catalog, led Ledger) *Service {
	return &Service{catalog: cat, ledger: led}
}

// Purchase проводит покупку оффера выбранного бренда.
// Порядок важен: сначала наличие, потом разбор цены, и только затем списание —
// до Debit состояние не меняется, любая ошибка оставляет баланс нетронутым.
func (s *Service) Purchase(ctx context.Context, userID int64, username, category, brand, label string) (*Receipt, error) {
	offer, err := s.catalog.EnsureAvailable(ctx, category, brand, label)
	if err != nil {
		return nil, err
	}

	parsed, err := ParseOffer(category, offer.Label)
	if err != nil {
		log.WithFields(log.Fields{
			"category": category,
			"brand":    brand,
			"label":    offer.Label,
		}).Error("Оффер в витрине не соответствует формату")
		return nil, err
	}

	service := ledger.ServiceGiftCard
	if category == catalog.CategoryStreaming {
		service = ledger.ServiceStreaming
	}
	description := fmt.Sprintf("%s %s", brand, parsed.Label)

	if err := s.ledger.Debit(ctx, userID, parsed.PriceCents, service, description); err != nil {
		return nil, err
	}

	return &Receipt{
		UserID:     userID,
		Username:   username,
		Category:   category,
		Brand:      brand,
		Label:      parsed.Label,
		PriceCents: parsed.PriceCents,
	}, nil
}
