package storage

import (
	"context"

	"github.com/stephenafamo/bob"

	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

// Writer groups the tables bound to one write transaction.
type Writer struct {
	Transactions sqlconfig.ITransactionTable
	Pending      sqlconfig.ITransactionTable
	Accounts     sqlconfig.IAccountTable

	commit   func(ctx context.Context) error
	rollback func(ctx context.Context) error
}

func newSQLWriter(tx bob.Tx) *Writer {
	return &Writer{
		Transactions: sqlconfig.NewTransactionsTable(tx, sqlconfig.TransactionsTableName),
		Pending:      sqlconfig.NewTransactionsTable(tx, sqlconfig.PendingTransactionsTableName),
		Accounts:     sqlconfig.NewAccountsTable(tx),
		commit:       tx.Commit,
		rollback:     tx.Rollback,
	}
}

func (w *Writer) Commit() error {
	return w.commit(context.Background())
}

func (w *Writer) Rollback() error {
	return w.rollback(context.Background())
}
