package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"giftvault.app/telegram-shop/internal/common"
)

// memStore повторяет семантику Repository в памяти:
// кредит всегда проходит, дебет проверяет остаток, история append-only.
type memStore struct {
	balances map[int64]common.Cents
	history  map[int64][]*Transaction
}

func newMemStore() *memStore {
	return &memStore{
		balances: make(map[int64]common.Cents),
		history:  make(map[int64][]*Transaction),
	}
}

func (m *memStore) EnsureBalance(_ context.Context, userID int64) error {
	if _, ok := m.balances[userID]; !ok {
		m.balances[userID] = 0
	}
	return nil
}

func (m *memStore) Balance(_ context.Context, userID int64) (common.Cents, error) {
	return m.balances[userID], nil
}

func (m *memStore) Credit(_ context.Context, userID int64, amount common.Cents, txid, service string) error {
	m.balances[userID] += amount
	m.history[userID] = append(m.history[userID], &Transaction{
		UserID:      userID,
		Txid:        txid,
		AmountCents: amount,
		Service:     service,
		Status:      StatusApproved,
	})
	return nil
}

func (m *memStore) Debit(_ context.Context, userID int64, amount common.Cents, service, description string) error {
	if m.balances[userID] < amount {
		return common.ErrInsufficientBalance
	}
	m.balances[userID] -= amount
	m.history[userID] = append(m.history[userID], &Transaction{
		UserID:      userID,
		AmountCents: -amount,
		Service:     service,
		Status:      StatusCompleted,
		Description: description,
	})
	return nil
}

func (m *memStore) History(_ context.Context, userID int64, limit int) ([]*Transaction, error) {
	txs := m.history[userID]
	if len(txs) > limit {
		txs = txs[len(txs)-limit:]
	}
	// новые сверху, как в SQL-запросе
	out := make([]*Transaction, 0, len(txs))
	for i := len(txs) - 1; i >= 0; i-- {
		out = append(out, txs[i])
	}
	return out, nil
}

func TestCreditIncreasesBalanceAndAppendsTransaction(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	svc := NewService(store)
	ctx := context.Background()

	before, err := svc.GetBalance(ctx, 100)
	require.NoError(t, err)

	require.NoError(t, svc.Credit(ctx, 100, 2550, "AAAA1111BBBB2222CCCC", ServiceTopUp))

	after, err := svc.GetBalance(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, before+2550, after)

	txs, err := store.History(ctx, 100, 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, common.Cents(2550), txs[0].AmountCents)
	require.Equal(t, StatusApproved, txs[0].Status)
	require.Equal(t, "AAAA1111BBBB2222CCCC", txs[0].Txid)
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	svc := NewService(store)
	ctx := context.Background()

	for _, amount := range []common.Cents{0, -500} {
		err := svc.Credit(ctx, 100, amount, "AAAA1111BBBB2222CCCC", ServiceTopUp)
		require.ErrorIs(t, err, common.ErrInvalidAmount)
	}

	balance, err := svc.GetBalance(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, common.Cents(0), balance)

	txs, err := store.History(ctx, 100, 10)
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestDebitWithSufficientBalance(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, 7, 5000, "BBBB2222CCCC3333DDDD", ServiceTopUp))
	require.NoError(t, svc.Debit(ctx, 7, 2500, ServiceGiftCard, "Amazon $50 gift card"))

	balance, err := svc.GetBalance(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, common.Cents(2500), balance)

	txs, err := store.History(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	// новые сверху
	require.Equal(t, common.Cents(-2500), txs[0].AmountCents)
	require.Equal(t, StatusCompleted, txs[0].Status)
}

func TestDebitInsufficientBalanceLeavesLedgerUntouched(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, 7, 1000, "CCCC3333DDDD4444EEEE", ServiceTopUp))

	err := svc.Debit(ctx, 7, 2500, ServiceGiftCard, "$50 for $25")
	require.ErrorIs(t, err, common.ErrInsufficientBalance)

	balance, err := svc.GetBalance(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, common.Cents(1000), balance)

	txs, err := store.History(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, txs, 1) // только исходный кредит
}

func TestFormatHistory(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	svc := NewService(store)
	ctx := context.Background()

	text, err := svc.FormatHistory(ctx, 55)
	require.NoError(t, err)
	require.Equal(t, "📋 No transactions yet.", text)

	require.NoError(t, svc.Credit(ctx, 55, 2550, "DDDD4444EEEE5555FFFF", ServiceTopUp))
	require.NoError(t, svc.Debit(ctx, 55, 500, ServiceStreaming, "Netflix 1 Month"))

	text, err = svc.FormatHistory(ctx, 55)
	require.NoError(t, err)
	require.Contains(t, text, "+$25.50")
	require.Contains(t, text, "-$5.00")
	require.Contains(t, text, "Netflix 1 Month")
}

func TestDebitRejectsNonPositiveAmount(t *testing.T) {
	t.Parallel()
	svc := NewService(newMemStore())
	err := svc.Debit(context.Background(), 1, 0, ServiceGiftCard, "")
	require.True(t, errors.Is(err, common.ErrInvalidAmount))
}
