package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/service"
)

// AccountOutput wraps a single account.
type AccountOutput struct {
	Body Account
}

type accountManager interface {
	GetAccount(ctx context.Context, iban string) (*service.Account, error)
	DeleteAccount(ctx context.Context, iban string) (*service.Account, error)
}

// AccountHandler handles GET and DELETE /v1/account for the caller's own account.
type AccountHandler struct {
	AccountService accountManager
}

func NewAccountHandler(svc accountManager) *AccountHandler {
	return &AccountHandler{AccountService: svc}
}

func (h *AccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-account",
		Method:      http.MethodGet,
		Path:        "/v1/account",
		Summary:     "Get own account",
		Tags:        []string{"Accounts"},
	}, h.get)

	huma.Register(api, huma.Operation{
		OperationID: "delete-account",
		Method:      http.MethodDelete,
		Path:        "/v1/account",
		Summary:     "Delete own account",
		Description: "Deletes the account. Its transactions are kept.",
		Tags:        []string{"Accounts"},
	}, h.delete)
}

func (h *AccountHandler) get(ctx context.Context, _ *struct{}) (*AccountOutput, error) {
	iban, err := auth.CurrentIBAN(ctx)
	if err != nil {
		return nil, err
	}
	account, err := h.AccountService.GetAccount(ctx, iban)
	if err != nil {
		return nil, httperr.FromError(ctx, err)
	}
	return &AccountOutput{Body: fromService(account)}, nil
}

func (h *AccountHandler) delete(ctx context.Context, _ *struct{}) (*AccountOutput, error) {
	iban, err := auth.CurrentIBAN(ctx)
	if err != nil {
		return nil, err
	}
	account, err := h.AccountService.DeleteAccount(ctx, iban)
	if err != nil {
		return nil, httperr.FromError(ctx, err)
	}
	return &AccountOutput{Body: fromService(account)}, nil
}
