package catalog

import (
	"context"
	"errors"

	"giftvault.app/telegram-shop/internal/common"
)

// Store описывает хранилище витрины. В проде — Repository поверх Postgres.
type Store interface {
	Brands(ctx context.Context, category string) ([]string, error)
	AvailableOffers(ctx context.Context, category, brand string) ([]*Offer, error)
	AllOffers(ctx context.Context, category, brand string) ([]*Offer, error)
	GetOffer(ctx context.Context, category, brand, label string) (*Offer, error)
	UpsertOffer(ctx context.Context, category, brand, label string, available bool) error
	ToggleOffer(ctx context.Context, category, brand, label string) (bool, error)
	ToggleOfferByID(ctx context.Context, id int64) (*Offer, error)
	BrandExists(ctx context.Context, category, brand string) (bool, error)
}

// Service — бизнес-логика витрины.
type Service struct {
	store Store
}

// NewService создаёт сервис витрины.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Brands возвращает бренды категории.
func (s *Service) Brands(ctx context.Context, category string) ([]string, error) {
	if !ValidCategory(category) {
		return nil, common.ErrNotFound
	}
	return s.store.Brands(ctx, category)
}

// AvailableOffers возвращает офферы, которые можно купить прямо сейчас.
func (s *Service) AvailableOffers(ctx context.Context, category, brand string) ([]*Offer, error) {
	if !ValidCategory(category) {
		return nil, common.ErrNotFound
	}
	return s.store.AvailableOffers(ctx, category, brand)
}

// AllOffers возвращает и скрытые офферы — для управления стоком.
func (s *Service) AllOffers(ctx context.Context, category, brand string) ([]*Offer, error) {
	if !ValidCategory(category) {
		return nil, common.ErrNotFound
	}
	return s.store.AllOffers(ctx, category, brand)
}

// EnsureAvailable проверяет, что оффер существует и доступен к покупке.
// Отсутствие и недоступность схлопываются в ErrOfferUnavailable:
// покупателю разница не важна, а скрытый сток светить не нужно.
func (s *Service) EnsureAvailable(ctx context.Context, category, brand, label string) (*Offer, error) {
	offer, err := s.store.GetOffer(ctx, category, brand, label)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrOfferUnavailable
	}
	if err != nil {
		return nil, err
	}
	if !offer.Available {
		return nil, common.ErrOfferUnavailable
	}
	return offer, nil
}

// BrandExists проверяет наличие бренда в категории.
func (s *Service) BrandExists(ctx context.Context, category, brand string) (bool, error) {
	if !ValidCategory(category) {
		return false, nil
	}
	return s.store.BrandExists(ctx, category, brand)
}

// AddOffers сохраняет пачку офферов бренда. Используется админ-диалогом
// добавления бренда: повторная строка с тем же label просто обновит доступность.
func (s *Service) AddOffers(ctx context.Context, category, brand string, offers []*Offer) error {
	if !ValidCategory(category) {
		return common.ErrNotFound
	}
	for _, o := range offers {
		if err := s.store.UpsertOffer(ctx, category, brand, o.Label, o.Available); err != nil {
			return err
		}
	}
	return nil
}

// Toggle инвертирует доступность и возвращает новое значение.
func (s *Service) Toggle(ctx context.Context, category, brand, label string) (bool, error) {
	if !ValidCategory(category) {
		return false, common.ErrNotFound
	}
	return s.store.ToggleOffer(ctx, category, brand, label)
}

// ToggleByID инвертирует доступность по id и возвращает обновлённый оффер.
func (s *Service) ToggleByID(ctx context.Context, id int64) (*Offer, error) {
	return s.store.ToggleOfferByID(ctx, id)
}
