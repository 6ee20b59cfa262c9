package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btg-funds-backend/internal/domain/fund"
	"github.com/btg-funds-backend/internal/domain/outbox"
	"github.com/btg-funds-backend/internal/domain/shared"
	"github.com/btg-funds-backend/internal/domain/transaction"
	"github.com/btg-funds-backend/internal/domain/user"
)

// memStore is an in-memory stand-in for the PostgreSQL layer. Its
// ExecuteTx snapshots all state before running the body and restores it
// when the body fails, mirroring a rolled-back transaction. Failure hooks
// inject storage errors mid-transaction.
type memStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*user.User
	funds   map[uuid.UUID]*fund.Fund
	entries []*transaction.Entry
	outbox  []*outbox.Message

	failLedgerCreate bool
	failUserUpdate   bool
	failOutboxCreate bool
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[uuid.UUID]*user.User),
		funds: make(map[uuid.UUID]*fund.Fund),
	}
}

func copyUser(u *user.User) *user.User {
	clone := *u
	clone.SubscribedFunds = append([]uuid.UUID(nil), u.SubscribedFunds...)
	return &clone
}

func (s *memStore) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	savedUsers := make(map[uuid.UUID]*user.User, len(s.users))
	for id, u := range s.users {
		savedUsers[id] = copyUser(u)
	}
	savedEntries := append([]*transaction.Entry(nil), s.entries...)
	savedOutbox := append([]*outbox.Message(nil), s.outbox...)

	if err := fn(nil); err != nil {
		s.users = savedUsers
		s.entries = savedEntries
		s.outbox = savedOutbox
		return err
	}
	return nil
}

type memFundRepo struct{ s *memStore }

func (r *memFundRepo) Create(ctx context.Context, f *fund.Fund) error {
	r.s.funds[f.ID] = f
	return nil
}

func (r *memFundRepo) GetByID(ctx context.Context, id uuid.UUID) (*fund.Fund, error) {
	f, ok := r.s.funds[id]
	if !ok {
		return nil, fund.ErrFundNotFound{FundID: id}
	}
	return f, nil
}

func (r *memFundRepo) GetByName(ctx context.Context, name string) (*fund.Fund, error) {
	for _, f := range r.s.funds {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, nil
}

func (r *memFundRepo) List(ctx context.Context, filter fund.Filter) ([]*fund.Fund, error) {
	var out []*fund.Fund
	for _, f := range r.s.funds {
		out = append(out, f)
	}
	return out, nil
}

func (r *memFundRepo) WithTx(tx pgx.Tx) fund.Repository { return r }

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(ctx context.Context, u *user.User) error {
	r.s.users[u.ID] = copyUser(u)
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound{UserID: id}
	}
	return copyUser(u), nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	var out []*user.User
	for _, u := range r.s.users {
		out = append(out, copyUser(u))
	}
	return out, nil
}

func (r *memUserRepo) Update(ctx context.Context, u *user.User) error {
	if r.s.failUserUpdate {
		return errors.New("injected user update failure")
	}
	if _, ok := r.s.users[u.ID]; !ok {
		return user.ErrUserNotFound{UserID: u.ID}
	}
	r.s.users[u.ID] = copyUser(u)
	return nil
}

func (r *memUserRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.GetByID(ctx, id)
}

func (r *memUserRepo) WithTx(tx pgx.Tx) user.Repository { return r }

type memLedgerRepo struct{ s *memStore }

func (r *memLedgerRepo) Create(ctx context.Context, entry *transaction.Entry) error {
	if r.s.failLedgerCreate {
		return errors.New("injected ledger write failure")
	}
	r.s.entries = append(r.s.entries, entry)
	return nil
}

func (r *memLedgerRepo) GetByTransactionID(ctx context.Context, transactionID string) (*transaction.Entry, error) {
	for _, e := range r.s.entries {
		if e.TransactionID == transactionID {
			return e, nil
		}
	}
	return nil, transaction.ErrEntryNotFound{TransactionID: transactionID}
}

func (r *memLedgerRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*transaction.Entry, error) {
	var out []*transaction.Entry
	for i := len(r.s.entries) - 1; i >= 0; i-- {
		if r.s.entries[i].UserID == userID {
			out = append(out, r.s.entries[i])
		}
	}
	return out, nil
}

func (r *memLedgerRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, e := range r.s.entries {
		if e.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *memLedgerRepo) NetInvested(ctx context.Context, userID, fundID uuid.UUID) (int64, error) {
	var net int64
	for _, e := range r.s.entries {
		if e.UserID != userID || e.FundID != fundID || e.Status != shared.TransactionStatusCompleted {
			continue
		}
		if e.Type == shared.TransactionTypeSubscription {
			net += e.Amount
		} else {
			net -= e.Amount
		}
	}
	return net, nil
}

func (r *memLedgerRepo) TotalInvested(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	for _, e := range r.s.entries {
		if e.UserID != userID || e.Status != shared.TransactionStatusCompleted {
			continue
		}
		if e.Type == shared.TransactionTypeSubscription {
			total += e.Amount
		} else {
			total -= e.Amount
		}
	}
	return total, nil
}

func (r *memLedgerRepo) WithTx(tx pgx.Tx) transaction.Repository { return r }

type memOutboxRepo struct{ s *memStore }

func (r *memOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	if r.s.failOutboxCreate {
		return errors.New("injected outbox write failure")
	}
	message.ID = int64(len(r.s.outbox) + 1)
	r.s.outbox = append(r.s.outbox, message)
	return nil
}

func (r *memOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	var out []*outbox.Message
	for _, m := range r.s.outbox {
		if m.Status == shared.OutboxStatusPending {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	for _, m := range r.s.outbox {
		if m.ID == id {
			m.Status = status
			return nil
		}
	}
	return outbox.ErrMessageNotFound{ID: id}
}

func (r *memOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	for _, m := range r.s.outbox {
		if m.ID == id {
			m.Attempts++
			return nil
		}
	}
	return outbox.ErrMessageNotFound{ID: id}
}

func (r *memOutboxRepo) Delete(ctx context.Context, id int64) error { return nil }

func (r *memOutboxRepo) GetByTransactionID(ctx context.Context, transactionID string) (*outbox.Message, error) {
	for _, m := range r.s.outbox {
		if m.TransactionID == transactionID {
			return m, nil
		}
	}
	return nil, outbox.ErrMessageNotFound{}
}

func (r *memOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository { return r }

func newTestSubscriptionService(s *memStore) SubscriptionService {
	logger := slog.Default()
	return NewSubscriptionService(
		logger,
		s,
		&memFundRepo{s: s},
		&memUserRepo{s: s},
		&memLedgerRepo{s: s},
		&memOutboxRepo{s: s},
	)
}

func seedUser(t *testing.T, s *memStore) *user.User {
	t.Helper()
	u, err := user.NewUser("client@example.com", "Test Client", "+573001112233", "hashed-password", user.NotifyByEmail)
	require.NoError(t, err)
	s.users[u.ID] = u
	return u
}

func seedFund(t *testing.T, s *memStore, name string, minimum int64) *fund.Fund {
	t.Helper()
	f, err := fund.NewFund(name, fund.CategoryFPV, minimum)
	require.NoError(t, err)
	s.funds[f.ID] = f
	return f
}

func TestSubscriptionServiceImpl_Subscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)
		f := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)

		entry, err := svc.Subscribe(ctx, u.ID, f.ID, 75000)

		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, shared.TransactionTypeSubscription, entry.Type)
		assert.Equal(t, shared.TransactionStatusCompleted, entry.Status)
		assert.Equal(t, int64(75000), entry.Amount)
		assert.Equal(t, f.Name, entry.FundName)
		assert.True(t, strings.HasPrefix(entry.TransactionID, "TXN_"))

		updated := store.users[u.ID]
		assert.Equal(t, int64(425000), updated.Balance)
		assert.True(t, updated.IsSubscribed(f.ID))
		assert.Len(t, store.entries, 1)
		require.Len(t, store.outbox, 1)
		assert.Equal(t, entry.TransactionID, store.outbox[0].TransactionID)
		assert.Equal(t, shared.OutboxStatusPending, store.outbox[0].Status)
	})

	t.Run("ExactBalanceAllowed", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)
		f := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)

		_, err := svc.Subscribe(ctx, u.ID, f.ID, user.InitialBalance)

		require.NoError(t, err)
		assert.Equal(t, int64(0), store.users[u.ID].Balance)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)
		f := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)

		for _, amount := range []int64{0, -75000} {
			_, err := svc.Subscribe(ctx, u.ID, f.ID, amount)
			assert.ErrorIs(t, err, transaction.ErrInvalidAmount)
		}
		assert.Empty(t, store.entries)
	})

	t.Run("FundNotFound", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)

		_, err := svc.Subscribe(ctx, u.ID, uuid.New(), 75000)

		var notFound fund.ErrFundNotFound
		assert.ErrorAs(t, err, &notFound)
		assert.Equal(t, int64(user.InitialBalance), store.users[u.ID].Balance)
	})

	t.Run("InactiveFund", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)
		f := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)
		f.IsActive = false

		_, err := svc.Subscribe(ctx, u.ID, f.ID, 75000)

		var inactive fund.ErrFundInactive
		assert.ErrorAs(t, err, &inactive)
	})

	t.Run("BelowMinimum", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)
		f := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)

		_, err := svc.Subscribe(ctx, u.ID, f.ID, 74999)

		var belowMin fund.ErrBelowMinimum
		require.ErrorAs(t, err, &belowMin)
		assert.Equal(t, int64(75000), belowMin.Required)
		assert.Equal(t, int64(user.InitialBalance), store.users[u.ID].Balance)
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)
		f := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)

		_, err := svc.Subscribe(ctx, u.ID, f.ID, user.InitialBalance+1)

		assert.ErrorIs(t, err, user.ErrInsufficientFunds)
		assert.Equal(t, int64(user.InitialBalance), store.users[u.ID].Balance)
		assert.Empty(t, store.entries)
	})

	// When several preconditions are violated at once, the earliest check
	// in the sequence produces the error.
	t.Run("PreconditionOrder", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)
		f := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)
		f.IsActive = false

		// Unknown fund and nonpositive amount: the missing fund wins.
		_, err := svc.Subscribe(ctx, u.ID, uuid.New(), 0)
		var notFound fund.ErrFundNotFound
		assert.ErrorAs(t, err, &notFound)

		// Inactive fund and below-minimum amount: inactive wins.
		_, err = svc.Subscribe(ctx, u.ID, f.ID, 1000)
		var inactive fund.ErrFundInactive
		assert.ErrorAs(t, err, &inactive)

		// Below-minimum amount and insufficient balance: minimum wins.
		f.IsActive = true
		store.users[u.ID].Balance = 10000
		_, err = svc.Subscribe(ctx, u.ID, f.ID, 50000)
		var belowMin fund.ErrBelowMinimum
		assert.ErrorAs(t, err, &belowMin)
	})

	t.Run("LedgerWriteFailureRollsBackBalance", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)
		f := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)
		store.failLedgerCreate = true

		_, err := svc.Subscribe(ctx, u.ID, f.ID, 75000)

		require.Error(t, err)
		assert.Equal(t, int64(user.InitialBalance), store.users[u.ID].Balance)
		assert.False(t, store.users[u.ID].IsSubscribed(f.ID))
		assert.Empty(t, store.entries)
		assert.Empty(t, store.outbox)
	})

	t.Run("UserUpdateFailureRollsBackLedger", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)
		f := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)
		store.failUserUpdate = true

		_, err := svc.Subscribe(ctx, u.ID, f.ID, 75000)

		require.Error(t, err)
		assert.Equal(t, int64(user.InitialBalance), store.users[u.ID].Balance)
		assert.Empty(t, store.entries)
		assert.Empty(t, store.outbox)
	})

	t.Run("OutboxWriteFailureRollsBackEverything", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)
		f := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)
		store.failOutboxCreate = true

		_, err := svc.Subscribe(ctx, u.ID, f.ID, 75000)

		require.Error(t, err)
		assert.Equal(t, int64(user.InitialBalance), store.users[u.ID].Balance)
		assert.Empty(t, store.entries)
	})
}

func TestSubscriptionServiceImpl_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("FullLiquidation", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)
		f := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)

		_, err := svc.Subscribe(ctx, u.ID, f.ID, 75000)
		require.NoError(t, err)

		entry, err := svc.Cancel(ctx, u.ID, f.ID)

		require.NoError(t, err)
		assert.Equal(t, shared.TransactionTypeCancellation, entry.Type)
		assert.Equal(t, int64(75000), entry.Amount)

		updated := store.users[u.ID]
		assert.Equal(t, int64(user.InitialBalance), updated.Balance)
		assert.False(t, updated.IsSubscribed(f.ID))
		assert.Len(t, store.entries, 2)
		assert.Len(t, store.outbox, 2)
	})

	t.Run("LiquidatesAccumulatedPosition", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)
		f := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)

		_, err := svc.Subscribe(ctx, u.ID, f.ID, 75000)
		require.NoError(t, err)
		_, err = svc.Subscribe(ctx, u.ID, f.ID, 100000)
		require.NoError(t, err)

		entry, err := svc.Cancel(ctx, u.ID, f.ID)

		require.NoError(t, err)
		assert.Equal(t, int64(175000), entry.Amount)
		assert.Equal(t, int64(user.InitialBalance), store.users[u.ID].Balance)
	})

	t.Run("NotSubscribed", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)
		f := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)

		_, err := svc.Cancel(ctx, u.ID, f.ID)

		var notSubscribed user.ErrNotSubscribed
		assert.ErrorAs(t, err, &notSubscribed)
	})

	t.Run("AlreadyCancelled", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)
		f := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)

		_, err := svc.Subscribe(ctx, u.ID, f.ID, 75000)
		require.NoError(t, err)
		_, err = svc.Cancel(ctx, u.ID, f.ID)
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, u.ID, f.ID)

		var notSubscribed user.ErrNotSubscribed
		assert.ErrorAs(t, err, &notSubscribed)
	})

	t.Run("DriftedCacheWithoutLedgerBacking", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)
		f := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)

		// The subscribed_funds cache claims a position the ledger never
		// recorded. The ledger is authoritative, so cancellation must be
		// refused without appending anything.
		u.AddFund(f.ID)

		_, err := svc.Cancel(ctx, u.ID, f.ID)

		var noInvestment user.ErrNoActiveInvestment
		require.ErrorAs(t, err, &noInvestment)
		assert.Equal(t, f.Name, noInvestment.FundName)
		assert.Empty(t, store.entries)
		assert.Empty(t, store.outbox)
		assert.Equal(t, int64(user.InitialBalance), store.users[u.ID].Balance)
	})

	t.Run("CancelFailureLeavesPositionIntact", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)
		f := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)

		_, err := svc.Subscribe(ctx, u.ID, f.ID, 75000)
		require.NoError(t, err)

		store.failUserUpdate = true
		_, err = svc.Cancel(ctx, u.ID, f.ID)

		require.Error(t, err)
		assert.Equal(t, int64(425000), store.users[u.ID].Balance)
		assert.True(t, store.users[u.ID].IsSubscribed(f.ID))
		assert.Len(t, store.entries, 1)
	})

	t.Run("InactiveFundStillCancellable", func(t *testing.T) {
		store := newMemStore()
		svc := newTestSubscriptionService(store)
		u := seedUser(t, store)
		f := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)

		_, err := svc.Subscribe(ctx, u.ID, f.ID, 75000)
		require.NoError(t, err)

		f.IsActive = false
		_, err = svc.Cancel(ctx, u.ID, f.ID)

		assert.NoError(t, err)
	})
}

// The engine's core invariant: at all times available balance plus net
// invested value equals the initial endowment when no external
// adjustments occurred.
func TestSubscriptionServiceImpl_BalanceReconciliation(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestSubscriptionService(store)
	u := seedUser(t, store)
	fundA := seedFund(t, store, "FPV_BTG_PACTUAL_RECAUDADORA", 75000)
	fundB := seedFund(t, store, "FDO-ACCIONES", 125000)
	ledger := &memLedgerRepo{s: store}

	steps := []func() error{
		func() error { _, err := svc.Subscribe(ctx, u.ID, fundA.ID, 75000); return err },
		func() error { _, err := svc.Subscribe(ctx, u.ID, fundB.ID, 125000); return err },
		func() error { _, err := svc.Subscribe(ctx, u.ID, fundA.ID, 80000); return err },
		func() error { _, err := svc.Cancel(ctx, u.ID, fundA.ID); return err },
		func() error { _, err := svc.Cancel(ctx, u.ID, fundB.ID); return err },
	}

	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)

		invested, err := ledger.TotalInvested(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(user.InitialBalance), store.users[u.ID].Balance+invested, "step %d", i)
	}

	assert.Equal(t, int64(user.InitialBalance), store.users[u.ID].Balance)
	assert.Empty(t, store.users[u.ID].SubscribedFunds)
}
