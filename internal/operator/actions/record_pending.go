package actions

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

// RecordPendingAdjustment appends to the pending log. Balances are untouched.
type RecordPendingAdjustment struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string

	Created *sqlconfig.Transaction

	IAction
}

func (r *RecordPendingAdjustment) Perform(ctx context.Context, writer *storage.Writer) error {
	account, err := writer.Accounts.FindByIBAN(ctx, r.AccountID, false)
	if err != nil {
		return err
	}
	if account == nil {
		return ledger.ErrAccountNotFound
	}

	created, err := writer.Pending.Insert(ctx, &sqlconfig.TransactionCreate{
		AccountID:   r.AccountID,
		Amount:      r.Amount,
		Description: r.Description,
	})
	if err != nil {
		return err
	}

	r.Created = created
	return nil
}
