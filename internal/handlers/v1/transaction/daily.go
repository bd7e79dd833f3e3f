package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/ledger"
)

// DailyInput is the Huma input for the per-day rollup.
type DailyInput struct {
	RangeQuery
	Text string `query:"q" doc:"Case-insensitive substring of the description"`
}

// DailyNet is the net amount of one calendar day.
type DailyNet struct {
	Day string `json:"day" doc:"YYYY-MM-DD in the report timezone"`
	Net string `json:"net"`
}

type DailyOutput struct {
	Body []DailyNet
}

type dailyReporter interface {
	TransactionsByDay(ctx context.Context, iban, from, to, text string) ([]ledger.DailyRollup, error)
}

// DailyHandler handles GET /v1/transactions/daily.
type DailyHandler struct {
	ReportService dailyReporter
}

func NewDailyHandler(svc dailyReporter) *DailyHandler {
	return &DailyHandler{ReportService: svc}
}

func (h *DailyHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "transactions-by-day",
		Method:      http.MethodGet,
		Path:        "/v1/transactions/daily",
		Summary:     "Net per day",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func (h *DailyHandler) handle(ctx context.Context, input *DailyInput) (*DailyOutput, error) {
	iban, err := auth.CurrentIBAN(ctx)
	if err != nil {
		return nil, err
	}

	rollups, err := h.ReportService.TransactionsByDay(ctx, iban, input.From, input.To, input.Text)
	if err != nil {
		return nil, httperr.FromError(ctx, err)
	}

	out := &DailyOutput{Body: make([]DailyNet, len(rollups))}
	for i, r := range rollups {
		out.Body[i] = DailyNet{Day: r.Day, Net: r.Net.String()}
	}
	return out, nil
}
