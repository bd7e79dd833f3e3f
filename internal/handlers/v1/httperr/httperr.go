package httperr

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
)

// FromError maps a service error onto an HTTP problem response. Unknown errors
// become a 500 whose detail is logged, not returned.
func FromError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ledger.ErrInvalidRange),
		errors.Is(err, ledger.ErrInvalidPage),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidAccount):
		return huma.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInvalidCredentials):
		return huma.NewError(http.StatusUnauthorized, ledger.ErrInvalidCredentials.Error())
	case errors.Is(err, ledger.ErrRecipientNotFound):
		return huma.NewError(http.StatusNotFound, ledger.ErrRecipientNotFound.Error())
	case errors.Is(err, ledger.ErrAccountNotFound):
		return huma.NewError(http.StatusNotFound, ledger.ErrAccountNotFound.Error())
	case errors.Is(err, ledger.ErrStoreUnavailable):
		logging.GetLogData(ctx).AddData("storeError", err.Error())
		return huma.NewError(http.StatusServiceUnavailable, ledger.ErrStoreUnavailable.Error())
	default:
		logging.GetLogData(ctx).AddData("internalError", err.Error())
		return huma.NewError(http.StatusInternalServerError, "internal error")
	}
}
