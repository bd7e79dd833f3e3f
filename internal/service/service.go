package service

import (
	"context"
	"time"

	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// Processor runs a write action inside one store transaction.
type Processor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// TokenIssuer signs login tokens.
type TokenIssuer interface {
	Issue(iban, name string) (string, error)
}

// Options carries the tunables shared by the services.
type Options struct {
	Calendar     ledger.Calendar
	PageSize     int
	StoreTimeout time.Duration
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.PageSize < 1 {
		o.PageSize = 10
	}
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = 5 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Calendar.Location == nil {
		o.Calendar = ledger.NewCalendar(nil, o.Calendar.WeekStart)
	}
	return o
}

// Service holds all business logic services.
type Service struct {
	Report  *ReportService
	Ledger  *LedgerService
	Account *AccountService
}

// NewService creates a new Service with the given storage.
func NewService(
	store *storage.Storage,
	processor Processor,
	publisher events.Publisher,
	issuer TokenIssuer,
	opts Options,
) *Service {
	opts = opts.withDefaults()
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	return &Service{
		Report:  NewReportService(store, opts),
		Ledger:  NewLedgerService(processor, publisher, opts),
		Account: NewAccountService(store, processor, publisher, issuer, opts),
	}
}
