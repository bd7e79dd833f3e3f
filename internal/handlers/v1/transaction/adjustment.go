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

// AdjustmentBody is the request body for a balance adjustment.
type AdjustmentBody struct {
	Amount      string `json:"amount" doc:"Signed decimal amount"`
	Description string `json:"description" doc:"Free text. A **name** marker sets the category"`
	OffRecord   bool   `json:"offRecord,omitempty" doc:"Hide from record-only reports"`
}

// AdjustmentInput is the Huma input for recording an adjustment.
type AdjustmentInput struct {
	Body AdjustmentBody
}

// PendingAdjustmentBody is the request body for a pending adjustment.
type PendingAdjustmentBody struct {
	Amount      string `json:"amount" doc:"Signed decimal amount"`
	Description string `json:"description"`
}

// PendingAdjustmentInput is the Huma input for recording a pending adjustment.
type PendingAdjustmentInput struct {
	Body PendingAdjustmentBody
}

// TransactionOutput returns the created transaction.
type TransactionOutput struct {
	Status int
	Body   Transaction
}

type adjustmentRecorder interface {
	RecordAdjustment(ctx context.Context, iban string, amount decimal.Decimal, description string, offRecord bool) (*ledger.Transaction, error)
	RecordPendingAdjustment(ctx context.Context, iban string, amount decimal.Decimal, description string) (*ledger.Transaction, error)
}

// AdjustmentHandler handles POST /v1/adjustment and POST /v1/pending-adjustment.
type AdjustmentHandler struct {
	LedgerService adjustmentRecorder
}

func NewAdjustmentHandler(svc adjustmentRecorder) *AdjustmentHandler {
	return &AdjustmentHandler{LedgerService: svc}
}

func (h *AdjustmentHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "record-adjustment",
		Method:      http.MethodPost,
		Path:        "/v1/adjustment",
		Summary:     "Record adjustment",
		Description: "Appends a transaction and applies it to the account balance.",
		Tags:        []string{"Transactions"},
	}, h.record)

	huma.Register(api, huma.Operation{
		OperationID: "record-pending-adjustment",
		Method:      http.MethodPost,
		Path:        "/v1/pending-adjustment",
		Summary:     "Record pending adjustment",
		Description: "Appends to the pending log. The balance is unchanged.",
		Tags:        []string{"Transactions"},
	}, h.recordPending)
}

func (h *AdjustmentHandler) record(ctx context.Context, input *AdjustmentInput) (*TransactionOutput, error) {
	iban, err := auth.CurrentIBAN(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(input.Body.Amount)
	if err != nil {
		return nil, err
	}

	stopTimer := logging.GetLogData(ctx).AddTiming("recordAdjustmentMs")
	tx, err := h.LedgerService.RecordAdjustment(ctx, iban, amount, input.Body.Description, input.Body.OffRecord)
	stopTimer()
	if err != nil {
		return nil, httperr.FromError(ctx, err)
	}

	return &TransactionOutput{Status: http.StatusCreated, Body: fromLedger(*tx)}, nil
}

func (h *AdjustmentHandler) recordPending(ctx context.Context, input *PendingAdjustmentInput) (*TransactionOutput, error) {
	iban, err := auth.CurrentIBAN(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(input.Body.Amount)
	if err != nil {
		return nil, err
	}

	tx, err := h.LedgerService.RecordPendingAdjustment(ctx, iban, amount, input.Body.Description)
	if err != nil {
		return nil, httperr.FromError(ctx, err)
	}

	return &TransactionOutput{Status: http.StatusCreated, Body: fromLedger(*tx)}, nil
}
