package deposits

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"giftvault.app/telegram-shop/internal/common"
)

// fakeStore повторяет семантику Repository в памяти, включая атомарность
// ResolveApproval: заявка, кредит и сессия меняются как одна единица работы.
type fakeStore struct {
	pending   map[string]*PendingDeposit
	sessions  map[int64]*ApprovalSession
	balances  map[int64]common.Cents
	credits   int
	failAlias int // сколько ближайших вставок вернут ErrAliasTaken
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pending:  make(map[string]*PendingDeposit),
		sessions: make(map[int64]*ApprovalSession),
		balances: make(map[int64]common.Cents),
	}
}

func (f *fakeStore) InsertPending(_ context.Context, p *PendingDeposit) error {
	if f.failAlias > 0 {
		f.failAlias--
		return ErrAliasTaken
	}
	if _, ok := f.pending[p.Alias]; ok {
		return ErrAliasTaken
	}
	f.pending[p.Alias] = p
	return nil
}

func (f *fakeStore) ListPending(_ context.Context) ([]*PendingDeposit, error) {
	out := make([]*PendingDeposit, 0, len(f.pending))
	for _, p := range f.pending {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) GetPending(_ context.Context, alias string) (*PendingDeposit, error) {
	p, ok := f.pending[alias]
	if !ok {
		return nil, common.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) DeletePending(_ context.Context, alias string) error {
	if _, ok := f.pending[alias]; !ok {
		return common.ErrNotFound
	}
	delete(f.pending, alias)
	return nil
}

func (f *fakeStore) SaveSession(_ context.Context, s *ApprovalSession) error {
	f.sessions[s.AdminID] = s
	return nil
}

func (f *fakeStore) Session(_ context.Context, adminID int64) (*ApprovalSession, error) {
	s, ok := f.sessions[adminID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) DeleteSession(_ context.Context, adminID int64) error {
	delete(f.sessions, adminID)
	return nil
}

func (f *fakeStore) ResolveApproval(_ context.Context, adminID int64, alias string, userID int64, amount common.Cents, _ string) error {
	if _, ok := f.pending[alias]; !ok {
		delete(f.sessions, adminID)
		return common.ErrNotFound
	}
	delete(f.pending, alias)
	f.balances[userID] += amount
	f.credits++
	delete(f.sessions, adminID)
	return nil
}

func (f *fakeStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for adminID, s := range f.sessions {
		if s.Expired(now) {
			delete(f.sessions, adminID)
			n++
		}
	}
	return n, nil
}

const (
	testAdmin = int64(1)
	testUser  = int64(777)
	testTxid  = "AAAA1111BBBB2222CCCC"
)

func newTestService(store *fakeStore) *Service {
	return NewService(store, 30*time.Minute)
}

func TestSubmitQueuesPendingDeposit(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	p, err := svc.Submit(ctx, testUser, "alice", testTxid)
	require.NoError(t, err)
	require.Len(t, p.Alias, 8)
	require.Equal(t, testTxid, p.Txid)

	queue, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
}

func TestSubmitRejectsMalformedTxid(t *testing.T) {
	t.Parallel()
	svc := newTestService(newFakeStore())
	_, err := svc.Submit(context.Background(), testUser, "alice", "too-short")
	require.ErrorIs(t, err, common.ErrInvalidTxid)
}

func TestSubmitRetriesAliasCollision(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.failAlias = 2
	svc := newTestService(store)

	p, err := svc.Submit(context.Background(), testUser, "alice", testTxid)
	require.NoError(t, err)
	require.NotEmpty(t, p.Alias)
}

func TestSubmitAcceptsDuplicateTxid(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	// Дубликаты txid принимаются сознательно — решает админ
	_, err := svc.Submit(ctx, testUser, "alice", testTxid)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, testUser, "alice", testTxid)
	require.NoError(t, err)

	queue, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 2)
}

func TestApproveEndToEnd(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	p, err := svc.Submit(ctx, testUser, "alice", testTxid)
	require.NoError(t, err)

	_, err = svc.BeginApproval(ctx, testAdmin, p.Alias)
	require.NoError(t, err)
	require.True(t, svc.HasOpenSession(ctx, testAdmin))

	result, err := svc.SubmitAmount(ctx, testAdmin, "25.50")
	require.NoError(t, err)
	require.Equal(t, common.Cents(2550), result.Amount)
	require.Equal(t, testUser, result.UserID)

	require.Equal(t, common.Cents(2550), store.balances[testUser])
	require.Empty(t, store.pending)
	require.False(t, svc.HasOpenSession(ctx, testAdmin))
}

func TestInvalidAmountKeepsSessionOpen(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	p, err := svc.Submit(ctx, testUser, "alice", testTxid)
	require.NoError(t, err)
	_, err = svc.BeginApproval(ctx, testAdmin, p.Alias)
	require.NoError(t, err)

	for _, input := range []string{"-5", "0", "abc"} {
		_, err = svc.SubmitAmount(ctx, testAdmin, input)
		require.ErrorIs(t, err, common.ErrInvalidAmount, "input %q", input)
		require.True(t, svc.HasOpenSession(ctx, testAdmin), "session must survive input %q", input)
	}
	require.Zero(t, store.balances[testUser])
	require.Len(t, store.pending, 1)

	// После ошибок валидная сумма всё ещё проходит
	result, err := svc.SubmitAmount(ctx, testAdmin, "10")
	require.NoError(t, err)
	require.Equal(t, common.Cents(1000), result.Amount)
}

func TestDoubleApprovalCreditsExactlyOnce(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	p, err := svc.Submit(ctx, testUser, "alice", testTxid)
	require.NoError(t, err)

	// Два админа открыли аппрув одной и той же заявки
	secondAdmin := int64(2)
	_, err = svc.BeginApproval(ctx, testAdmin, p.Alias)
	require.NoError(t, err)
	_, err = svc.BeginApproval(ctx, secondAdmin, p.Alias)
	require.NoError(t, err)

	_, err = svc.SubmitAmount(ctx, testAdmin, "25.50")
	require.NoError(t, err)

	// Второй аппрув не должен зачислить ещё раз
	_, err = svc.SubmitAmount(ctx, secondAdmin, "25.50")
	require.ErrorIs(t, err, common.ErrNotFound)

	require.Equal(t, 1, store.credits)
	require.Equal(t, common.Cents(2550), store.balances[testUser])
	require.False(t, svc.HasOpenSession(ctx, secondAdmin))
}

func TestRejectRemovesEntryWithoutLedgerEffect(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	p, err := svc.Submit(ctx, testUser, "alice", testTxid)
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, p.Alias)
	require.NoError(t, err)
	require.Equal(t, testUser, rejected.UserID)

	require.Empty(t, store.pending)
	require.Zero(t, store.balances[testUser])
	require.Zero(t, store.credits)

	_, err = svc.Reject(ctx, p.Alias)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestBeginApprovalUnknownAlias(t *testing.T) {
	t.Parallel()
	svc := newTestService(newFakeStore())
	_, err := svc.BeginApproval(context.Background(), testAdmin, "deadbeef")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestExpiredSessionIsNotConsumable(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	p, err := svc.Submit(ctx, testUser, "alice", testTxid)
	require.NoError(t, err)
	_, err = svc.BeginApproval(ctx, testAdmin, p.Alias)
	require.NoError(t, err)

	// Сдвигаем часы за TTL
	svc.now = func() time.Time { return time.Now().Add(time.Hour) }

	require.False(t, svc.HasOpenSession(ctx, testAdmin))
	_, err = svc.SubmitAmount(ctx, testAdmin, "25.50")
	require.ErrorIs(t, err, ErrNoSession)

	// Заявка осталась в очереди — потерян только «замах» админа
	queue, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.Zero(t, store.balances[testUser])
}

func TestExpireSessionsSweep(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	p, err := svc.Submit(ctx, testUser, "alice", testTxid)
	require.NoError(t, err)
	_, err = svc.BeginApproval(ctx, testAdmin, p.Alias)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }

	n, err := svc.ExpireSessions(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.Empty(t, store.sessions)
}
