package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

// Wednesday 13 March 2024.
var testNow = time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

type testEnv struct {
	store     *storage.Storage
	svc       *Service
	publisher *recordingPublisher
	issuer    *auth.Issuer
}

func testOptions() Options {
	return Options{
		Calendar:     ledger.NewCalendar(time.UTC, time.Monday),
		PageSize:     10,
		StoreTimeout: time.Second,
		Now:          testClock,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := storage.NewMemoryStorage()
	delegator := operator.NewOperatorDelegator(store, 2)
	delegator.Start()
	t.Cleanup(delegator.Stop)

	publisher := &recordingPublisher{}
	issuer := auth.NewIssuer("test-secret", time.Hour).WithClock(testClock)
	svc := NewService(store, delegator, publisher, issuer, testOptions())
	svc.Account.hashCost = bcrypt.MinCost

	return &testEnv{store: store, svc: svc, publisher: publisher, issuer: issuer}
}

func (e *testEnv) addAccount(t *testing.T, iban, name string) {
	t.Helper()
	_, err := e.store.Accounts.Insert(context.Background(), &sqlconfig.AccountCreate{IBAN: iban, Name: name})
	require.NoError(t, err)
}

func (e *testEnv) addTransaction(t *testing.T, iban, amount, description string, at time.Time) {
	t.Helper()
	_, err := e.store.Transactions.Insert(context.Background(), &sqlconfig.TransactionCreate{
		AccountID:   iban,
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		CreatedAt:   at,
	})
	require.NoError(t, err)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func day(month time.Month, d, hour int) time.Time {
	return time.Date(2024, month, d, hour, 0, 0, 0, time.UTC)
}

func ledgerAmount(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}
