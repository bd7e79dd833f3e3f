package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

var _ sqlconfig.IAccountTable = (*AccountsTable)(nil)

// ErrDuplicateIBAN is returned by Insert when the IBAN is taken.
var ErrDuplicateIBAN = errors.New("duplicate iban")

// AccountsTable is an in-memory accounts table. Row locks are not modelled;
// Storage serializes writers instead.
type AccountsTable struct {
	mu       sync.RWMutex
	accounts map[string]*sqlconfig.Account
	now      func() time.Time
}

func NewAccountsTable() *AccountsTable {
	return &AccountsTable{
		accounts: make(map[string]*sqlconfig.Account),
		now:      time.Now,
	}
}

func (t *AccountsTable) FindByIBAN(ctx context.Context, iban string, forUpdate bool) (*sqlconfig.Account, error) {
	if err := checkContext(ctx, "AccountsTable.FindByIBAN"); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	account, ok := t.accounts[iban]
	if !ok {
		return nil, nil
	}
	accountCopy := *account
	return &accountCopy, nil
}

func (t *AccountsTable) FindByName(ctx context.Context, name string) (*sqlconfig.Account, error) {
	if err := checkContext(ctx, "AccountsTable.FindByName"); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	// Oldest account wins when names collide, matching the SQL ordering.
	var found *sqlconfig.Account
	for _, account := range t.accounts {
		if account.Name != name {
			continue
		}
		if found == nil || account.OpeningDate.Before(found.OpeningDate) ||
			(account.OpeningDate.Equal(found.OpeningDate) && account.IBAN < found.IBAN) {
			found = account
		}
	}
	if found == nil {
		return nil, nil
	}
	accountCopy := *found
	return &accountCopy, nil
}

func (t *AccountsTable) Insert(ctx context.Context, create *sqlconfig.AccountCreate) (*sqlconfig.Account, error) {
	if err := checkContext(ctx, "AccountsTable.Insert"); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.accounts[create.IBAN]; exists {
		return nil, ErrDuplicateIBAN
	}
	openingDate := create.OpeningDate
	if openingDate.IsZero() {
		openingDate = t.now()
	}
	account := &sqlconfig.Account{
		IBAN:         create.IBAN,
		Name:         create.Name,
		PasswordHash: create.PasswordHash,
		Balance:      decimal.Zero,
		OpeningDate:  openingDate,
	}
	t.accounts[account.IBAN] = account

	accountCopy := *account
	return &accountCopy, nil
}

// List mirrors the SQL table: ordered by name then IBAN, with one extra row past
// Limit.
func (t *AccountsTable) List(ctx context.Context, filter *sqlconfig.AccountFilter) ([]*sqlconfig.Account, error) {
	if err := checkContext(ctx, "AccountsTable.List"); err != nil {
		return nil, err
	}
	t.mu.RLock()
	result := make([]*sqlconfig.Account, 0, len(t.accounts))
	for _, account := range t.accounts {
		accountCopy := *account
		result = append(result, &accountCopy)
	}
	t.mu.RUnlock()

	slices.SortFunc(result, func(a, b *sqlconfig.Account) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.IBAN, b.IBAN)
	})

	if filter == nil {
		return result, nil
	}
	if filter.Offset >= len(result) {
		return []*sqlconfig.Account{}, nil
	}
	result = result[filter.Offset:]
	if filter.Limit > 0 && filter.Limit+1 < len(result) {
		result = result[:filter.Limit+1]
	}
	return result, nil
}

func (t *AccountsTable) AdjustBalance(ctx context.Context, iban string, delta decimal.Decimal) error {
	if err := checkContext(ctx, "AccountsTable.AdjustBalance"); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if account, ok := t.accounts[iban]; ok {
		account.Balance = account.Balance.Add(delta)
	}
	return nil
}

func (t *AccountsTable) Delete(ctx context.Context, iban string) (bool, error) {
	if err := checkContext(ctx, "AccountsTable.Delete"); err != nil {
		return false, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.accounts[iban]; !ok {
		return false, nil
	}
	delete(t.accounts, iban)
	return true, nil
}
