package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

var _ sqlconfig.ITransactionTable = (*TransactionsTable)(nil)

// TransactionsTable is an in-memory transaction namespace. It is safe for
// concurrent use. Data is lost on restart.
type TransactionsTable struct {
	mu   sync.RWMutex
	rows []sqlconfig.Transaction
	seq  int64
	now  func() time.Time
}

func NewTransactionsTable() *TransactionsTable {
	return &TransactionsTable{now: time.Now}
}

// WithClock replaces the clock used for rows created without a timestamp.
func (t *TransactionsTable) WithClock(now func() time.Time) *TransactionsTable {
	t.now = now
	return t
}

func (t *TransactionsTable) Insert(ctx context.Context, create *sqlconfig.TransactionCreate) (*sqlconfig.Transaction, error) {
	if err := checkContext(ctx, "TransactionsTable.Insert"); err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	createdAt := create.CreatedAt
	if createdAt.IsZero() {
		createdAt = t.now()
	}
	t.seq++
	row := sqlconfig.Transaction{
		ID:          id,
		Seq:         t.seq,
		AccountID:   create.AccountID,
		Amount:      create.Amount,
		Description: create.Description,
		OffRecord:   create.OffRecord,
		CreatedAt:   createdAt,
	}
	t.rows = append(t.rows, row)

	return &row, nil
}

func (t *TransactionsTable) FindInRange(ctx context.Context, filter *sqlconfig.TransactionFilter) ([]*sqlconfig.Transaction, error) {
	if err := checkContext(ctx, "TransactionsTable.FindInRange"); err != nil {
		return nil, err
	}

	if filter.Offset < 0 {
		return nil, fmt.Errorf("TransactionsTable.FindInRange: negative offset %d", filter.Offset)
	}

	matched := t.match(filter)
	if filter.Limit <= 0 {
		return matched, nil
	}

	slices.SortStableFunc(matched, func(a, b *sqlconfig.Transaction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.Seq - a.Seq)
	})

	if filter.Offset >= len(matched) {
		return []*sqlconfig.Transaction{}, nil
	}
	end := min(filter.Offset+filter.Limit, len(matched))
	return matched[filter.Offset:end], nil
}

func (t *TransactionsTable) CountInRange(ctx context.Context, filter *sqlconfig.TransactionFilter) (int, error) {
	if err := checkContext(ctx, "TransactionsTable.CountInRange"); err != nil {
		return 0, err
	}
	return len(t.match(filter)), nil
}

func (t *TransactionsTable) match(filter *sqlconfig.TransactionFilter) []*sqlconfig.Transaction {
	t.mu.RLock()
	defer t.mu.RUnlock()

	needle := strings.ToLower(filter.Text)
	result := []*sqlconfig.Transaction{}
	for _, row := range t.rows {
		if row.AccountID != filter.AccountID {
			continue
		}
		if !filter.Window.Contains(row.CreatedAt) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(row.Description), needle) {
			continue
		}
		if filter.ExcludeOffRecord && row.OffRecord {
			continue
		}
		if filter.NonPositiveOnly && row.Amount.IsPositive() {
			continue
		}

		rowCopy := row
		result = append(result, &rowCopy)
	}
	return result
}

// checkContext mirrors the driver: an expired deadline is a store failure while a
// cancelled caller is reported as is.
func checkContext(ctx context.Context, op string) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case err == context.Canceled:
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ledger.ErrStoreUnavailable, err)
	}
}
