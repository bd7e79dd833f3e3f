package ledger

import (
	"slices"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Transaction is one monetary movement in the transaction log or the pending log.
type Transaction struct {
	ID          uuid.UUID
	Seq         int64
	AccountID   string
	Amount      decimal.Decimal
	Description string
	OffRecord   bool
	Timestamp   time.Time
}

// SortNewestFirst orders txs by timestamp descending. Equal timestamps fall back to
// insertion order, newest first, so repeated queries page identically.
func SortNewestFirst(txs []Transaction) {
	slices.SortStableFunc(txs, func(a, b Transaction) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		switch {
		case a.Seq > b.Seq:
			return -1
		case a.Seq < b.Seq:
			return 1
		}
		return 0
	})
}
