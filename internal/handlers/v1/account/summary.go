package account

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/service"
)

// Facet is the deposit/withdrawal split of one window.
type Facet struct {
	Deposit    string `json:"deposit" doc:"Sum of positive amounts"`
	Withdrawal string `json:"withdrawal" doc:"Sum of negative amounts, signed"`
}

// RecentTransaction is one of the latest transactions shown with the summary.
type RecentTransaction struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	OffRecord   bool   `json:"offRecord"`
	Timestamp   string `json:"timestamp"`
}

// SummaryBody is the account dashboard.
type SummaryBody struct {
	Account      Account             `json:"account"`
	CurrentWeek  Facet               `json:"currentWeek"`
	LastWeek     Facet               `json:"lastWeek"`
	CurrentMonth Facet               `json:"currentMonth"`
	LastMonth    Facet               `json:"lastMonth"`
	Transactions []RecentTransaction `json:"transactions" doc:"Five most recent transactions, newest first"`
}

type SummaryOutput struct {
	Body SummaryBody
}

type summaryService interface {
	AccountSummary(ctx context.Context, iban string) (*service.AccountSummary, error)
}

// SummaryHandler handles GET /v1/account/summary.
type SummaryHandler struct {
	ReportService summaryService
}

func NewSummaryHandler(svc summaryService) *SummaryHandler {
	return &SummaryHandler{ReportService: svc}
}

func (h *SummaryHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "account-summary",
		Method:      http.MethodGet,
		Path:        "/v1/account/summary",
		Summary:     "Account summary",
		Description: "Deposits and withdrawals for the current and previous week and month, plus the latest transactions.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *SummaryHandler) handle(ctx context.Context, _ *struct{}) (*SummaryOutput, error) {
	iban, err := auth.CurrentIBAN(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := h.ReportService.AccountSummary(ctx, iban)
	if err != nil {
		return nil, httperr.FromError(ctx, err)
	}

	body := SummaryBody{
		Account:      fromService(&summary.Account),
		CurrentWeek:  facetFromLedger(summary.CurrentWeek),
		LastWeek:     facetFromLedger(summary.LastWeek),
		CurrentMonth: facetFromLedger(summary.CurrentMonth),
		LastMonth:    facetFromLedger(summary.LastMonth),
		Transactions: make([]RecentTransaction, len(summary.Transactions)),
	}
	for i, tx := range summary.Transactions {
		body.Transactions[i] = RecentTransaction{
			ID:          tx.ID.String(),
			Amount:      tx.Amount.String(),
			Description: tx.Description,
			Category:    ledger.CategoryOf(tx.Description),
			OffRecord:   tx.OffRecord,
			Timestamp:   tx.Timestamp.Format(time.RFC3339Nano),
		}
	}
	return &SummaryOutput{Body: body}, nil
}

func facetFromLedger(facet ledger.Facet) Facet {
	return Facet{Deposit: facet.Deposit.String(), Withdrawal: facet.Withdrawal.String()}
}
