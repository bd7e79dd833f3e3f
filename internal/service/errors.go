package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

// storeFailure makes sure an expired store deadline surfaces as
// ErrStoreUnavailable, whatever layer noticed it.
func storeFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ledger.ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w: %w", op, ledger.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
