package actions

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

const (
	ibanPrefix       = "VN"
	maxIBANAttempts  = 5
	ibanNumericLimit = 1_000_000_000_000_000_000
)

var errIBANExhausted = errors.New("could not allocate a free iban")

// NewIBAN returns "VN" followed by a random number below 10^18.
func NewIBAN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(ibanNumericLimit))
	if err != nil {
		return "", err
	}
	return ibanPrefix + n.String(), nil
}

// CreateAccount opens an account with a zero balance under a fresh IBAN.
type CreateAccount struct {
	Name         string
	PasswordHash string

	// GenerateIBAN defaults to NewIBAN.
	GenerateIBAN func() (string, error)

	Created *sqlconfig.Account

	IAction
}

func (c *CreateAccount) Perform(ctx context.Context, writer *storage.Writer) error {
	generate := c.GenerateIBAN
	if generate == nil {
		generate = NewIBAN
	}

	for attempt := 0; attempt < maxIBANAttempts; attempt++ {
		iban, err := generate()
		if err != nil {
			return err
		}

		existing, err := writer.Accounts.FindByIBAN(ctx, iban, false)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		created, err := writer.Accounts.Insert(ctx, &sqlconfig.AccountCreate{
			IBAN:         iban,
			Name:         c.Name,
			PasswordHash: c.PasswordHash,
		})
		if err != nil {
			return err
		}
		c.Created = created
		return nil
	}

	return fmt.Errorf("CreateAccount: %w", errIBANExhausted)
}

// DeleteAccount removes an account. Its transaction history is kept.
type DeleteAccount struct {
	IBAN string

	Deleted *sqlconfig.Account

	IAction
}

func (d *DeleteAccount) Perform(ctx context.Context, writer *storage.Writer) error {
	account, err := writer.Accounts.FindByIBAN(ctx, d.IBAN, true)
	if err != nil {
		return err
	}
	if account == nil {
		return ledger.ErrAccountNotFound
	}

	deleted, err := writer.Accounts.Delete(ctx, d.IBAN)
	if err != nil {
		return err
	}
	if !deleted {
		return ledger.ErrAccountNotFound
	}

	d.Deleted = account
	return nil
}
