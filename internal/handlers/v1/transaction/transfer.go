package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
)

// TransferBody is the request body for a transfer.
type TransferBody struct {
	ToIBAN      string `json:"toIban" minLength:"1" doc:"Recipient IBAN"`
	Amount      string `json:"amount" doc:"Positive decimal amount"`
	Description string `json:"description"`
}

type TransferInput struct {
	Body TransferBody
}

type transferer interface {
	Transfer(ctx context.Context, fromIBAN, toIBAN string, amount decimal.Decimal, description string) (*ledger.Transaction, error)
}

// TransferHandler handles POST /v1/transfer.
type TransferHandler struct {
	LedgerService transferer
}

func NewTransferHandler(svc transferer) *TransferHandler {
	return &TransferHandler{LedgerService: svc}
}

func (h *TransferHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "transfer",
		Method:      http.MethodPost,
		Path:        "/v1/transfer",
		Summary:     "Transfer",
		Description: "Moves an amount to another account. Returns the debit leg.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func (h *TransferHandler) handle(ctx context.Context, input *TransferInput) (*TransactionOutput, error) {
	iban, err := auth.CurrentIBAN(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(input.Body.Amount)
	if err != nil {
		return nil, err
	}

	logData := logging.GetLogData(ctx)
	logData.AddData("toIban", input.Body.ToIBAN)

	stopTimer := logData.AddTiming("transferMs")
	debit, err := h.LedgerService.Transfer(ctx, iban, input.Body.ToIBAN, amount, input.Body.Description)
	stopTimer()
	if err != nil {
		return nil, httperr.FromError(ctx, err)
	}

	return &TransactionOutput{Status: http.StatusCreated, Body: fromLedger(*debit)}, nil
}
