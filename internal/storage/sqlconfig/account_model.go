package sqlconfig

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Account represents an account record.
type Account struct {
	IBAN         string          `db:"iban"`
	Name         string          `db:"name"`
	PasswordHash string          `db:"password_hash"`
	Balance      decimal.Decimal `db:"balance"`
	OpeningDate  time.Time       `db:"opening_date"`
}

// AccountCreate is the input for creating a new account.
type AccountCreate struct {
	IBAN         string
	Name         string
	PasswordHash string
	OpeningDate  time.Time // defaults to now if zero
}

// AccountFilter specifies filters for listing accounts.
type AccountFilter struct {
	Limit  int
	Offset int
}

// IAccountTable defines the interface for account storage operations.
// Lookups return a nil account and a nil error when nothing matches.
//
//go:generate mockery --name IAccountTable --inpackage --filename mock_IAccountTable.go
type IAccountTable interface {
	FindByIBAN(ctx context.Context, iban string, forUpdate bool) (*Account, error)
	FindByName(ctx context.Context, name string) (*Account, error)
	Insert(ctx context.Context, create *AccountCreate) (*Account, error)
	List(ctx context.Context, filter *AccountFilter) ([]*Account, error)
	AdjustBalance(ctx context.Context, iban string, delta decimal.Decimal) error
	Delete(ctx context.Context, iban string) (bool, error)
}
