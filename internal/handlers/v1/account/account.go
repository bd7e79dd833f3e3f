package account

import (
	"time"

	"github.com/carson-networks/ledger-server/internal/service"
)

// Account is the API response model for an account.
type Account struct {
	IBAN        string `json:"iban" doc:"Account IBAN"`
	Name        string `json:"name" doc:"Account holder name, upper-cased"`
	Balance     string `json:"balance" doc:"Decimal balance"`
	OpeningDate string `json:"openingDate" doc:"RFC3339 opening date"`
}

func fromService(account *service.Account) Account {
	return Account{
		IBAN:        account.IBAN,
		Name:        account.Name,
		Balance:     account.Balance.String(),
		OpeningDate: account.OpeningDate.Format(time.RFC3339Nano),
	}
}
