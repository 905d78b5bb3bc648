package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"giftvault.app/telegram-shop/internal/common"
)

type fakeStore struct {
	offers map[string]*Offer // ключ category|brand|label
	nextID int64
}

func key(category, brand, label string) string {
	return category + "|" + brand + "|" + label
}

func newFakeStore() *fakeStore {
	return &fakeStore{offers: make(map[string]*Offer)}
}

func (f *fakeStore) Brands(_ context.Context, category string) ([]string, error) {
	seen := make(map[string]bool)
	var brands []string
	for _, o := range f.offers {
		if o.Category == category && !seen[o.Brand] {
			seen[o.Brand] = true
			brands = append(brands, o.Brand)
		}
	}
	return brands, nil
}

func (f *fakeStore) AvailableOffers(_ context.Context, category, brand string) ([]*Offer, error) {
	var out []*Offer
	for _, o := range f.offers {
		if o.Category == category && o.Brand == brand && o.Available {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) AllOffers(_ context.Context, category, brand string) ([]*Offer, error) {
	var out []*Offer
	for _, o := range f.offers {
		if o.Category == category && o.Brand == brand {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) GetOffer(_ context.Context, category, brand, label string) (*Offer, error) {
	o, ok := f.offers[key(category, brand, label)]
	if !ok {
		return nil, common.ErrNotFound
	}
	return o, nil
}

func (f *fakeStore) UpsertOffer(_ context.Context, category, brand, label string, available bool) error {
	k := key(category, brand, label)
	if o, ok := f.offers[k]; ok {
		o.Available = available
		return nil
	}
	f.nextID++
	f.offers[k] = &Offer{ID: f.nextID, Category: category, Brand: brand, Label: label, Available: available}
	return nil
}

func (f *fakeStore) ToggleOfferByID(_ context.Context, id int64) (*Offer, error) {
	for _, o := range f.offers {
		if o.ID == id {
			o.Available = !o.Available
			return o, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeStore) ToggleOffer(_ context.Context, category, brand, label string) (bool, error) {
	o, ok := f.offers[key(category, brand, label)]
	if !ok {
		return false, common.ErrNotFound
	}
	o.Available = !o.Available
	return o.Available, nil
}

func (f *fakeStore) BrandExists(_ context.Context, category, brand string) (bool, error) {
	for _, o := range f.offers {
		if o.Category == category && o.Brand == brand {
			return true, nil
		}
	}
	return false, nil
}

func TestEnsureAvailable(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddOffers(ctx, CategoryGiftCards, "Amazon", []*Offer{
		{Label: "$50 for $25", Available: true},
		{Label: "$100 for $45", Available: false},
	}))

	offer, err := svc.EnsureAvailable(ctx, CategoryGiftCards, "Amazon", "$50 for $25")
	require.NoError(t, err)
	require.Equal(t, "$50 for $25", offer.Label)

	// Скрытый и несуществующий офферы неотличимы для покупателя
	_, err = svc.EnsureAvailable(ctx, CategoryGiftCards, "Amazon", "$100 for $45")
	require.ErrorIs(t, err, common.ErrOfferUnavailable)
	_, err = svc.EnsureAvailable(ctx, CategoryGiftCards, "Amazon", "$500 for $200")
	require.ErrorIs(t, err, common.ErrOfferUnavailable)
}

func TestAvailableOffersHidesDisabled(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddOffers(ctx, CategoryStreaming, "Netflix", []*Offer{
		{Label: "1 Month - $5", Available: true},
		{Label: "1 Year - $40", Available: false},
	}))

	visible, err := svc.AvailableOffers(ctx, CategoryStreaming, "Netflix")
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, "1 Month - $5", visible[0].Label)

	all, err := svc.AllOffers(ctx, CategoryStreaming, "Netflix")
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestToggleFlipsAvailability(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddOffers(ctx, CategoryGiftCards, "Steam", []*Offer{
		{Label: "$20 for $12", Available: true},
	}))

	available, err := svc.Toggle(ctx, CategoryGiftCards, "Steam", "$20 for $12")
	require.NoError(t, err)
	require.False(t, available)

	_, err = svc.EnsureAvailable(ctx, CategoryGiftCards, "Steam", "$20 for $12")
	require.ErrorIs(t, err, common.ErrOfferUnavailable)

	_, err = svc.Toggle(ctx, CategoryGiftCards, "Steam", "nope")
	require.ErrorIs(t, err, common.ErrNotFound)

	// Переключение по id возвращает оффер в продажу
	offer, err := svc.ToggleByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, offer.Available)

	_, err = svc.ToggleByID(ctx, 999)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestInvalidCategoryRejected(t *testing.T) {
	t.Parallel()
	svc := NewService(newFakeStore())
	ctx := context.Background()

	_, err := svc.Brands(ctx, "weapons")
	require.ErrorIs(t, err, common.ErrNotFound)
	err = svc.AddOffers(ctx, "weapons", "ACME", nil)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestCategoryForButton(t *testing.T) {
	t.Parallel()

	cat, ok := CategoryForButton(ButtonGiftCards)
	require.True(t, ok)
	require.Equal(t, CategoryGiftCards, cat)

	cat, ok = CategoryForButton(ButtonStreaming)
	require.True(t, ok)
	require.Equal(t, CategoryStreaming, cat)

	_, ok = CategoryForButton("lunch")
	require.False(t, ok)
}
