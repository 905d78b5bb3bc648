package shop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"giftvault.app/telegram-shop/internal/common"
	"giftvault.app/telegram-shop/internal/features/catalog"
	"giftvault.app/telegram-shop/internal/features/ledger"
)

type fakeCatalog struct {
	offers map[string]*catalog.Offer // ключ brand|label
}

func (f *fakeCatalog) EnsureAvailable(_ context.Context, _, brand, label string) (*catalog.Offer, error) {
	o, ok := f.offers[brand+"|"+label]
	if !ok || !o.Available {
		return nil, common.ErrOfferUnavailable
	}
	return o, nil
}

type fakeLedger struct {
	balance     common.Cents
	debits      []string
	lastService string
}

func (f *fakeLedger) Debit(_ context.Context, _ int64, amount common.Cents, service, description string) error {
	if amount > f.balance {
		return common.ErrInsufficientBalance
	}
	f.balance -= amount
	f.debits = append(f.debits, description)
	f.lastService = service
	return nil
}

func TestParseOffer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		category string
		label    string
		want     common.Cents
		detail   string
		wantErr  bool
	}{
		{name: "gift card", category: catalog.CategoryGiftCards, label: "$50 for $25", want: 2500, detail: "$50"},
		{name: "gift card with cents", category: catalog.CategoryGiftCards, label: "$100 for $45.99", want: 4599, detail: "$100"},
		{name: "streaming months", category: catalog.CategoryStreaming, label: "6 Months - $20", want: 2000, detail: "6 Months"},
		{name: "streaming single month", category: catalog.CategoryStreaming, label: "1 Month - $5", want: 500, detail: "1 Month"},
		{name: "streaming year", category: catalog.CategoryStreaming, label: "1 Year - $40", want: 4000, detail: "1 Year"},
		{name: "gift format in streaming category", category: catalog.CategoryStreaming, label: "$50 for $25", wantErr: true},
		{name: "missing price", category: catalog.CategoryGiftCards, label: "$50 for cheap", wantErr: true},
		{name: "too many decimals", category: catalog.CategoryGiftCards, label: "$50 for $25.999", wantErr: true},
		{name: "empty", category: catalog.CategoryGiftCards, label: "", wantErr: true},
		{name: "unknown category", category: "weapons", label: "$50 for $25", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			parsed, err := ParseOffer(tt.category, tt.label)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrMalformedOffer)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, parsed.PriceCents)
			require.Equal(t, tt.detail, parsed.Detail)
		})
	}
}

func TestPurchaseDebitsExactPrice(t *testing.T) {
	t.Parallel()
	cat := &fakeCatalog{offers: map[string]*catalog.Offer{
		"Amazon|$50 for $25": {Category: catalog.CategoryGiftCards, Brand: "Amazon", Label: "$50 for $25", Available: true},
	}}
	led := &fakeLedger{balance: 3000}
	svc := NewService(cat, led)

	receipt, err := svc.Purchase(context.Background(), 777, "alice", catalog.CategoryGiftCards, "Amazon", "$50 for $25")
	require.NoError(t, err)
	require.Equal(t, common.Cents(2500), receipt.PriceCents)
	require.Equal(t, common.Cents(500), led.balance)
	require.Equal(t, []string{"Amazon $50 for $25"}, led.debits)
}

func TestPurchaseInsufficientBalanceLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	cat := &fakeCatalog{offers: map[string]*catalog.Offer{
		"Amazon|$50 for $25": {Category: catalog.CategoryGiftCards, Brand: "Amazon", Label: "$50 for $25", Available: true},
	}}
	led := &fakeLedger{balance: 1000} // $10 против цены $25
	svc := NewService(cat, led)

	_, err := svc.Purchase(context.Background(), 777, "alice", catalog.CategoryGiftCards, "Amazon", "$50 for $25")
	require.ErrorIs(t, err, common.ErrInsufficientBalance)
	require.Equal(t, common.Cents(1000), led.balance)
	require.Empty(t, led.debits)
}

func TestPurchaseUnavailableOffer(t *testing.T) {
	t.Parallel()
	svc := NewService(&fakeCatalog{offers: map[string]*catalog.Offer{}}, &fakeLedger{balance: 10000})

	_, err := svc.Purchase(context.Background(), 777, "alice", catalog.CategoryGiftCards, "Amazon", "$50 for $25")
	require.ErrorIs(t, err, common.ErrOfferUnavailable)
}

func TestPurchaseMalformedLabelNoDebit(t *testing.T) {
	t.Parallel()
	cat := &fakeCatalog{offers: map[string]*catalog.Offer{
		"Amazon|fifty bucks": {Category: catalog.CategoryGiftCards, Brand: "Amazon", Label: "fifty bucks", Available: true},
	}}
	led := &fakeLedger{balance: 10000}
	svc := NewService(cat, led)

	_, err := svc.Purchase(context.Background(), 777, "alice", catalog.CategoryGiftCards, "Amazon", "fifty bucks")
	require.ErrorIs(t, err, common.ErrMalformedOffer)
	require.Equal(t, common.Cents(10000), led.balance)
}

func TestPurchaseStreamingUsesStreamingService(t *testing.T) {
	t.Parallel()
	cat := &fakeCatalog{offers: map[string]*catalog.Offer{
		"Netflix|6 Months - $20": {Category: catalog.CategoryStreaming, Brand: "Netflix", Label: "6 Months - $20", Available: true},
	}}
	led := &fakeLedger{balance: 5000}
	svc := NewService(cat, led)

	receipt, err := svc.Purchase(context.Background(), 777, "alice", catalog.CategoryStreaming, "Netflix", "6 Months - $20")
	require.NoError(t, err)
	require.Equal(t, "Netflix subscription, 6 Months - $20", receipt.Summary())
	require.Equal(t, ledger.ServiceStreaming, led.lastService)
}

func TestSelectionStoreLifecycle(t *testing.T) {
	t.Parallel()
	store := NewSelectionStore()
	chatID := int64(42)

	require.Nil(t, store.Get(chatID))

	store.SetCategory(chatID, catalog.CategoryGiftCards)
	store.SetBrand(chatID, "Amazon")
	sel := store.Get(chatID)
	require.NotNil(t, sel)
	require.Equal(t, "Amazon", sel.Brand)

	store.ClearBrand(chatID)
	sel = store.Get(chatID)
	require.NotNil(t, sel)
	require.Empty(t, sel.Brand)
	require.Equal(t, catalog.CategoryGiftCards, sel.Category)

	store.Clear(chatID)
	require.Nil(t, store.Get(chatID))
}

func TestSetBrandWithoutCategoryIsNoop(t *testing.T) {
	t.Parallel()
	store := NewSelectionStore()
	store.SetBrand(7, "Amazon")
	require.Nil(t, store.Get(7))
}
