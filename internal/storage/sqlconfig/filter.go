package sqlconfig

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns arbitrary user text into a LIKE pattern matching it as a
// literal substring.
func ContainsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

// storeError tags a driver failure as ErrStoreUnavailable. Caller cancellation is
// passed through untouched.
func storeError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ledger.ErrStoreUnavailable, err)
}
