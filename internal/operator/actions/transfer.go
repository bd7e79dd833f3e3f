package actions

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

// Transfer moves a positive amount between two accounts: a debit row on the
// sender, a credit row on the recipient, and both balances.
type Transfer struct {
	FromIBAN    string
	ToIBAN      string
	Amount      decimal.Decimal
	Description string

	Debit  *sqlconfig.Transaction
	Credit *sqlconfig.Transaction

	IAction
}

func (t *Transfer) Perform(ctx context.Context, writer *storage.Writer) error {
	if !t.Amount.IsPositive() {
		return ledger.ErrInvalidAmount
	}
	if t.FromIBAN == t.ToIBAN {
		return ledger.ErrInvalidAccount
	}

	// Lock in a fixed order so opposite transfers cannot deadlock.
	first, second := t.FromIBAN, t.ToIBAN
	if second < first {
		first, second = second, first
	}
	locked := map[string]*sqlconfig.Account{}
	for _, iban := range []string{first, second} {
		account, err := writer.Accounts.FindByIBAN(ctx, iban, true)
		if err != nil {
			return err
		}
		locked[iban] = account
	}
	if locked[t.FromIBAN] == nil {
		return ledger.ErrAccountNotFound
	}
	if locked[t.ToIBAN] == nil {
		return ledger.ErrRecipientNotFound
	}

	debit, err := writer.Transactions.Insert(ctx, &sqlconfig.TransactionCreate{
		AccountID:   t.FromIBAN,
		Amount:      t.Amount.Neg(),
		Description: t.Description,
	})
	if err != nil {
		return err
	}
	credit, err := writer.Transactions.Insert(ctx, &sqlconfig.TransactionCreate{
		AccountID:   t.ToIBAN,
		Amount:      t.Amount,
		Description: t.Description,
	})
	if err != nil {
		return err
	}

	if err := writer.Accounts.AdjustBalance(ctx, t.FromIBAN, t.Amount.Neg()); err != nil {
		return err
	}
	if err := writer.Accounts.AdjustBalance(ctx, t.ToIBAN, t.Amount); err != nil {
		return err
	}

	t.Debit = debit
	t.Credit = credit
	return nil
}
