package operator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

type funcAction struct {
	perform func(ctx context.Context, writer *storage.Writer) error
}

func (f funcAction) Perform(ctx context.Context, writer *storage.Writer) error {
	return f.perform(ctx, writer)
}

func newTestDelegator(t *testing.T, workers int) (*OperatorDelegator, *storage.Storage) {
	t.Helper()
	store := storage.NewMemoryStorage()
	d := NewOperatorDelegator(store, workers)
	d.Start()
	t.Cleanup(d.Stop)
	return d, store
}

// -- Process tests --

func TestProcess_PerformsAction(t *testing.T) {
	d, store := newTestDelegator(t, 2)
	ctx := context.Background()

	_, err := store.Accounts.Insert(ctx, &sqlconfig.AccountCreate{IBAN: "VN1", Name: "ALICE"})
	require.NoError(t, err)

	action := &actions.RecordAdjustment{AccountID: "VN1", Amount: decimal.NewFromInt(40), Description: "**Salary**"}
	require.NoError(t, d.Process(ctx, action))
	require.NotNil(t, action.Created)

	account, err := store.Accounts.FindByIBAN(ctx, "VN1", false)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(account.Balance))
}

func TestProcess_ReturnsActionError(t *testing.T) {
	d, _ := newTestDelegator(t, 1)
	boom := errors.New("boom")

	err := d.Process(context.Background(), funcAction{perform: func(context.Context, *storage.Writer) error {
		return boom
	}})

	assert.ErrorIs(t, err, boom)
}

func TestProcess_CancelledContext(t *testing.T) {
	d, _ := newTestDelegator(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := d.Process(ctx, funcAction{perform: func(context.Context, *storage.Writer) error {
		called = true
		return nil
	}})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestProcess_AfterStop(t *testing.T) {
	d, _ := newTestDelegator(t, 1)
	d.Stop()

	err := d.Process(context.Background(), funcAction{perform: func(context.Context, *storage.Writer) error {
		return nil
	}})

	assert.ErrorIs(t, err, ErrStopped)
}

func TestProcess_ConcurrentAdjustments(t *testing.T) {
	d, store := newTestDelegator(t, 4)
	ctx := context.Background()
	_, err := store.Accounts.Insert(ctx, &sqlconfig.AccountCreate{IBAN: "VN1", Name: "ALICE"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, d.Process(ctx, &actions.RecordAdjustment{AccountID: "VN1", Amount: decimal.NewFromInt(2)}))
		}()
	}
	wg.Wait()

	account, err := store.Accounts.FindByIBAN(ctx, "VN1", false)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(account.Balance))

	count, err := store.Transactions.CountInRange(ctx, &sqlconfig.TransactionFilter{AccountID: "VN1"})
	require.NoError(t, err)
	assert.Equal(t, 50, count)
}
