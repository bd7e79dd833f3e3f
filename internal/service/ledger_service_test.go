package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
)

type failingProcessor struct {
	err error
}

func (p failingProcessor) Process(context.Context, actions.IAction) error {
	return p.err
}

func balance(t *testing.T, env *testEnv, iban string) string {
	t.Helper()
	account, err := env.svc.Account.GetAccount(context.Background(), iban)
	require.NoError(t, err)
	return account.Balance.String()
}

// -- RecordAdjustment tests --

func TestRecordAdjustment(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "VN1", "ALICE")

	created, err := env.svc.Ledger.RecordAdjustment(context.Background(), "VN1", ledgerAmount("-42.5"), "**Food** dinner", true)
	require.NoError(t, err)

	assert.Equal(t, "VN1", created.AccountID)
	assert.True(t, created.OffRecord)
	assert.Equal(t, "-42.5", balance(t, env, "VN1"))

	published := env.publisher.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.AdjustmentRecorded, published[0].Type)
	payload := published[0].Payload.(map[string]any)
	assert.Equal(t, "Food", payload["category"])
}

func TestRecordAdjustment_PublishFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "VN1", "ALICE")
	env.publisher.err = errors.New("broker down")

	_, err := env.svc.Ledger.RecordAdjustment(context.Background(), "VN1", ledgerAmount("10"), "deposit", false)

	assert.NoError(t, err)
	assert.Equal(t, "10", balance(t, env, "VN1"))
}

func TestRecordAdjustment_AccountNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Ledger.RecordAdjustment(context.Background(), "VN404", ledgerAmount("10"), "deposit", false)

	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	assert.Empty(t, env.publisher.published())
}

func TestRecordAdjustment_StoreFailure(t *testing.T) {
	svc := NewLedgerService(failingProcessor{err: context.DeadlineExceeded}, nil, testOptions())

	_, err := svc.RecordAdjustment(context.Background(), "VN1", ledgerAmount("1"), "", false)

	assert.ErrorIs(t, err, ledger.ErrStoreUnavailable)
}

func TestRecordAdjustment_UnstorableAmount(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "VN1", "ALICE")

	for _, amount := range []string{"1.23456", "10000000000000000"} {
		_, err := env.svc.Ledger.RecordAdjustment(context.Background(), "VN1", ledgerAmount(amount), "", false)
		assert.ErrorIs(t, err, ledger.ErrInvalidAmount, amount)

		_, err = env.svc.Ledger.RecordPendingAdjustment(context.Background(), "VN1", ledgerAmount(amount), "")
		assert.ErrorIs(t, err, ledger.ErrInvalidAmount, amount)
	}

	assert.Equal(t, "0", balance(t, env, "VN1"))
	assert.Empty(t, env.publisher.published())
}

// -- Transfer tests --

func TestTransfer(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "VN1", "ALICE")
	env.addAccount(t, "VN2", "BOB")

	debit, err := env.svc.Ledger.Transfer(context.Background(), "VN1", "VN2", ledgerAmount("25"), "rent")
	require.NoError(t, err)

	assert.Equal(t, "VN1", debit.AccountID)
	assert.Equal(t, "-25", debit.Amount.String())
	assert.Equal(t, "-25", balance(t, env, "VN1"))
	assert.Equal(t, "25", balance(t, env, "VN2"))

	published := env.publisher.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.TransferCompleted, published[0].Type)
}

func TestTransfer_RecipientNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "VN1", "ALICE")

	_, err := env.svc.Ledger.Transfer(context.Background(), "VN1", "VN404", ledgerAmount("25"), "rent")

	assert.ErrorIs(t, err, ledger.ErrRecipientNotFound)
	assert.Equal(t, "recipient account not found", ledger.ErrRecipientNotFound.Error())
	assert.Equal(t, "0", balance(t, env, "VN1"))
}

func TestTransfer_InvalidAmount(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "VN1", "ALICE")
	env.addAccount(t, "VN2", "BOB")

	_, err := env.svc.Ledger.Transfer(context.Background(), "VN1", "VN2", ledgerAmount("-5"), "")

	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

// -- RecordPendingAdjustment tests --

func TestRecordPendingAdjustment(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "VN1", "ALICE")

	created, err := env.svc.Ledger.RecordPendingAdjustment(context.Background(), "VN1", ledgerAmount("-9"), "card hold")
	require.NoError(t, err)

	assert.Equal(t, "card hold", created.Description)
	assert.Equal(t, "0", balance(t, env, "VN1"))

	pending, err := env.svc.Report.PendingTransactions(context.Background(), "VN1", "", "")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, created.ID, pending[0].ID)
}
