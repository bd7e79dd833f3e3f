package actions

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

// RecordAdjustment appends one transaction and moves the balance by its amount.
type RecordAdjustment struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
	OffRecord   bool
	CreatedAt   time.Time

	// Created is set once Perform succeeds.
	Created *sqlconfig.Transaction

	IAction
}

func (r *RecordAdjustment) Perform(ctx context.Context, writer *storage.Writer) error {
	account, err := writer.Accounts.FindByIBAN(ctx, r.AccountID, true)
	if err != nil {
		return err
	}
	if account == nil {
		return ledger.ErrAccountNotFound
	}

	created, err := writer.Transactions.Insert(ctx, &sqlconfig.TransactionCreate{
		AccountID:   r.AccountID,
		Amount:      r.Amount,
		Description: r.Description,
		OffRecord:   r.OffRecord,
		CreatedAt:   r.CreatedAt,
	})
	if err != nil {
		return err
	}

	if err := writer.Accounts.AdjustBalance(ctx, r.AccountID, r.Amount); err != nil {
		return err
	}

	r.Created = created
	return nil
}
