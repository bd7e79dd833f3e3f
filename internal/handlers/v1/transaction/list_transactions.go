package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
)

// ListTransactionsInput is the Huma input for the range listings.
type ListTransactionsInput struct {
	RangeQuery
}

// ListTransactionsOutput is the Huma output for the range listings.
type ListTransactionsOutput struct {
	Body []Transaction
}

// transactionLister is the interface for listing ledger and pending transactions.
type transactionLister interface {
	Transactions(ctx context.Context, iban, from, to string) ([]ledger.Transaction, error)
	PendingTransactions(ctx context.Context, iban, from, to string) ([]ledger.Transaction, error)
}

// ListTransactionsHandler handles GET /v1/transactions and GET /v1/pending-transactions.
type ListTransactionsHandler struct {
	ReportService transactionLister
}

// NewListTransactionsHandler creates a new ListTransactionsHandler.
func NewListTransactionsHandler(svc transactionLister) *ListTransactionsHandler {
	return &ListTransactionsHandler{ReportService: svc}
}

// Register registers both listing endpoints with the Huma API.
func (h *ListTransactionsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-transactions",
		Method:      http.MethodGet,
		Path:        "/v1/transactions",
		Summary:     "List transactions",
		Description: "Returns every transaction of the account inside a required date range.",
		Tags:        []string{"Transactions"},
	}, h.list)

	huma.Register(api, huma.Operation{
		OperationID: "list-pending-transactions",
		Method:      http.MethodGet,
		Path:        "/v1/pending-transactions",
		Summary:     "List pending transactions",
		Description: "Returns pending transactions. Either bound may be omitted.",
		Tags:        []string{"Transactions"},
	}, h.pending)
}

func (h *ListTransactionsHandler) list(ctx context.Context, input *ListTransactionsInput) (*ListTransactionsOutput, error) {
	iban, err := auth.CurrentIBAN(ctx)
	if err != nil {
		return nil, err
	}

	logData := logging.GetLogData(ctx)
	stopTimer := logData.AddTiming("listTransactionsMs")
	txs, err := h.ReportService.Transactions(ctx, iban, input.From, input.To)
	stopTimer()
	if err != nil {
		return nil, httperr.FromError(ctx, err)
	}

	logData.AddData("transactionCount", len(txs))
	return &ListTransactionsOutput{Body: fromLedgerSlice(txs)}, nil
}

func (h *ListTransactionsHandler) pending(ctx context.Context, input *ListTransactionsInput) (*ListTransactionsOutput, error) {
	iban, err := auth.CurrentIBAN(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := h.ReportService.PendingTransactions(ctx, iban, input.From, input.To)
	if err != nil {
		return nil, httperr.FromError(ctx, err)
	}

	logging.GetLogData(ctx).AddData("transactionCount", len(txs))
	return &ListTransactionsOutput{Body: fromLedgerSlice(txs)}, nil
}
