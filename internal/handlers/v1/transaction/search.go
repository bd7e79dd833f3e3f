package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
)

// SearchFilter holds the query parameters shared by search and its stats.
type SearchFilter struct {
	RangeQuery
	Text      string `query:"q" doc:"Case-insensitive substring of the description"`
	OffRecord bool   `query:"offRecord" default:"true" doc:"Include off-record transactions"`
}

// SearchInput is the Huma input for the paged search.
type SearchInput struct {
	SearchFilter
	Page int `query:"page" default:"1" doc:"1-based page number"`
}

// SearchResponseBody is one page of results plus the total match count.
type SearchResponseBody struct {
	Results []Transaction `json:"results"`
	Total   int           `json:"total" doc:"Matches across all pages"`
}

type SearchOutput struct {
	Body SearchResponseBody
}

// CategoryTotals is the per-category split in the stats response.
type CategoryTotals struct {
	Deposits    string `json:"deposits"`
	Withdrawals string `json:"withdrawals"`
}

// StatsInput is the Huma input for search stats.
type StatsInput struct {
	SearchFilter
}

type StatsOutput struct {
	Body map[string]CategoryTotals
}

type transactionSearcher interface {
	TransactionsCustom(ctx context.Context, query service.SearchQuery) (*ledger.PagedResult, error)
	TransactionsCustomStats(ctx context.Context, query service.SearchQuery) (ledger.CategorySummary, error)
}

// SearchHandler handles the custom search endpoints.
type SearchHandler struct {
	ReportService transactionSearcher
}

func NewSearchHandler(svc transactionSearcher) *SearchHandler {
	return &SearchHandler{ReportService: svc}
}

func (h *SearchHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "search-transactions",
		Method:      http.MethodGet,
		Path:        "/v1/transactions/search",
		Summary:     "Search transactions",
		Description: "Pages through matching transactions, newest first.",
		Tags:        []string{"Transactions"},
	}, h.search)

	huma.Register(api, huma.Operation{
		OperationID: "search-transactions-stats",
		Method:      http.MethodGet,
		Path:        "/v1/transactions/search/stats",
		Summary:     "Search statistics",
		Description: "Deposits and withdrawals per category over every matching transaction.",
		Tags:        []string{"Transactions"},
	}, h.stats)
}

func toQuery(iban string, filter SearchFilter) service.SearchQuery {
	return service.SearchQuery{
		AccountID:        iban,
		From:             filter.From,
		To:               filter.To,
		Text:             filter.Text,
		IncludeOffRecord: filter.OffRecord,
	}
}

func (h *SearchHandler) search(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	iban, err := auth.CurrentIBAN(ctx)
	if err != nil {
		return nil, err
	}

	query := toQuery(iban, input.SearchFilter)
	query.Page = input.Page

	logData := logging.GetLogData(ctx)
	stopTimer := logData.AddTiming("searchTransactionsMs")
	result, err := h.ReportService.TransactionsCustom(ctx, query)
	stopTimer()
	if err != nil {
		return nil, httperr.FromError(ctx, err)
	}

	logData.AddData("total", result.Total)
	return &SearchOutput{Body: SearchResponseBody{
		Results: fromLedgerSlice(result.Results),
		Total:   result.Total,
	}}, nil
}

func (h *SearchHandler) stats(ctx context.Context, input *StatsInput) (*StatsOutput, error) {
	iban, err := auth.CurrentIBAN(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := h.ReportService.TransactionsCustomStats(ctx, toQuery(iban, input.SearchFilter))
	if err != nil {
		return nil, httperr.FromError(ctx, err)
	}

	body := make(map[string]CategoryTotals, len(summary))
	for category, totals := range summary {
		body[category] = CategoryTotals{
			Deposits:    totals.Deposits.String(),
			Withdrawals: totals.Withdrawals.String(),
		}
	}
	return &StatsOutput{Body: body}, nil
}
