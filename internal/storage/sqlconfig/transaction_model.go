package sqlconfig

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

const (
	TransactionsTableName        = "transactions"
	PendingTransactionsTableName = "pending_transactions"
)

// Transaction represents a row of the transaction log or the pending log.
type Transaction struct {
	ID          uuid.UUID       `db:"id"`
	Seq         int64           `db:"seq"`
	AccountID   string          `db:"account_id"`
	Amount      decimal.Decimal `db:"amount"`
	Description string          `db:"description"`
	OffRecord   bool            `db:"off_record"`
	CreatedAt   time.Time       `db:"created_at"`
}

// TransactionCreate is the input for appending a transaction.
type TransactionCreate struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
	OffRecord   bool
	CreatedAt   time.Time // defaults to now if zero
}

// TransactionFilter selects transactions of one account.
//
// Window bounds left zero are unbounded. Text is matched as a case-insensitive
// substring. Results are unordered unless Limit is set, in which case they come
// newest first (ties by Seq descending) with Offset applied.
type TransactionFilter struct {
	AccountID        string
	Window           ledger.Window
	Text             string
	ExcludeOffRecord bool
	NonPositiveOnly  bool
	Limit            int
	Offset           int
}

// ITransactionTable defines the interface for transaction storage operations.
// The same contract serves the transaction log and the pending log.
//
//go:generate mockery --name ITransactionTable --inpackage --filename mock_ITransactionTable.go
type ITransactionTable interface {
	Insert(ctx context.Context, create *TransactionCreate) (*Transaction, error)
	FindInRange(ctx context.Context, filter *TransactionFilter) ([]*Transaction, error)
	CountInRange(ctx context.Context, filter *TransactionFilter) (int, error)
}

// ToLedger converts a storage row to the domain type.
func (t *Transaction) ToLedger() ledger.Transaction {
	return ledger.Transaction{
		ID:          t.ID,
		Seq:         t.Seq,
		AccountID:   t.AccountID,
		Amount:      t.Amount,
		Description: t.Description,
		OffRecord:   t.OffRecord,
		Timestamp:   t.CreatedAt,
	}
}

// ToLedgerSlice converts rows to domain transactions, preserving order.
func ToLedgerSlice(rows []*Transaction) []ledger.Transaction {
	result := make([]ledger.Transaction, len(rows))
	for i, row := range rows {
		result[i] = row.ToLedger()
	}
	return result
}
