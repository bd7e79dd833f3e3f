package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
)

const CreateAccountOperationID = "create-account"

// CreateAccountInput is the Huma input for creating an account.
type CreateAccountInput struct {
	Body CreateAccountBody
}

// CreateAccountBody is the request body fields for creating an account.
type CreateAccountBody struct {
	Name     string `json:"name" minLength:"1" doc:"Account holder name"`
	Password string `json:"password" minLength:"1" doc:"Account password"`
}

// CreateAccountOutput is the response for creating an account.
type CreateAccountOutput struct {
	Status int
	Body   Account
}

// accountCreator is the interface for creating accounts.
type accountCreator interface {
	CreateAccount(ctx context.Context, name, password string) (*service.Account, error)
}

// CreateAccountHandler handles POST /v1/account.
type CreateAccountHandler struct {
	AccountService accountCreator
}

// NewCreateAccountHandler creates a new CreateAccountHandler.
func NewCreateAccountHandler(svc accountCreator) *CreateAccountHandler {
	return &CreateAccountHandler{AccountService: svc}
}

// Register registers the create account endpoint with the Huma API.
func (h *CreateAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: CreateAccountOperationID,
		Method:      http.MethodPost,
		Path:        "/v1/account",
		Summary:     "Create an account",
		Description: "Opens an account with a zero balance under a generated IBAN.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *CreateAccountHandler) handle(ctx context.Context, input *CreateAccountInput) (*CreateAccountOutput, error) {
	logData := logging.GetLogData(ctx)

	stopTimer := logData.AddTiming("createAccountMs")
	account, err := h.AccountService.CreateAccount(ctx, input.Body.Name, input.Body.Password)
	stopTimer()
	if err != nil {
		return nil, httperr.FromError(ctx, err)
	}

	logData.AddData("accountID", account.IBAN)

	return &CreateAccountOutput{
		Status: http.StatusCreated,
		Body:   fromService(account),
	}, nil
}
