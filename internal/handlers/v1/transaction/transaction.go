package transaction

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

// Transaction is the API response model for a transaction.
// It is used only for responses, not for request bodies.
type Transaction struct {
	ID          string `json:"id" doc:"Transaction UUID"`
	AccountID   string `json:"accountId" doc:"Account IBAN"`
	Amount      string `json:"amount" doc:"Signed decimal amount"`
	Description string `json:"description"`
	Category    string `json:"category" doc:"Category parsed from the description"`
	OffRecord   bool   `json:"offRecord"`
	Timestamp   string `json:"timestamp" doc:"RFC3339 creation time with sub-second precision"`
}

// RangeQuery holds the optional bounds shared by the list endpoints.
type RangeQuery struct {
	From string `query:"from" doc:"Inclusive lower bound. YYYY-MM-DD starts at midnight, RFC3339 is used as given"`
	To   string `query:"to" doc:"Upper bound. YYYY-MM-DD includes that whole day, an RFC3339 instant is exclusive"`
}

func fromLedger(tx ledger.Transaction) Transaction {
	return Transaction{
		ID:          tx.ID.String(),
		AccountID:   tx.AccountID,
		Amount:      tx.Amount.String(),
		Description: tx.Description,
		Category:    ledger.CategoryOf(tx.Description),
		OffRecord:   tx.OffRecord,
		Timestamp:   tx.Timestamp.Format(time.RFC3339Nano),
	}
}

func fromLedgerSlice(txs []ledger.Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	for i, tx := range txs {
		out[i] = fromLedger(tx)
	}
	return out
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, huma.NewError(http.StatusBadRequest, "invalid amount", err)
	}
	if err := ledger.ValidateAmount(amount); err != nil {
		return decimal.Zero, huma.NewError(http.StatusBadRequest, err.Error())
	}
	return amount, nil
}
