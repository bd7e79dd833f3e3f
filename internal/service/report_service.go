package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

const recentTransactionCount = 5

// AccountSummary is the dashboard view of one account.
type AccountSummary struct {
	Account      Account
	CurrentWeek  ledger.Facet
	LastWeek     ledger.Facet
	CurrentMonth ledger.Facet
	LastMonth    ledger.Facet
	Transactions []ledger.Transaction
}

// SearchQuery selects transactions for the custom search and its stats.
type SearchQuery struct {
	AccountID        string
	From             string
	To               string
	Text             string
	IncludeOffRecord bool
	Page             int
}

// ReportService answers the read-only reporting queries.
type ReportService struct {
	storage      *storage.Storage
	calendar     ledger.Calendar
	pageSize     int
	storeTimeout time.Duration
	now          func() time.Time
}

func NewReportService(store *storage.Storage, opts Options) *ReportService {
	opts = opts.withDefaults()
	return &ReportService{
		storage:      store,
		calendar:     opts.Calendar,
		pageSize:     opts.PageSize,
		storeTimeout: opts.StoreTimeout,
		now:          opts.Now,
	}
}

// Calendar exposes the reference calendar used for windows and day keys.
func (s *ReportService) Calendar() ledger.Calendar {
	return s.calendar
}

// AccountSummary reports the four window facets and the most recent transactions.
// The fetches run concurrently; the first failure cancels the rest.
func (s *ReportService) AccountSummary(ctx context.Context, iban string) (*AccountSummary, error) {
	defer logging.GetLogData(ctx).AddTiming("accountSummary")()

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	row, err := s.storage.Accounts.FindByIBAN(ctx, iban, false)
	if err != nil {
		return nil, storeFailure("ReportService.AccountSummary", err)
	}
	if row == nil {
		return nil, ledger.ErrAccountNotFound
	}

	windows := s.calendar.Windows(s.now())
	summary := &AccountSummary{Account: accountFromStorage(row)}

	group, groupCtx := errgroup.WithContext(ctx)
	facets := []struct {
		window ledger.Window
		target *ledger.Facet
	}{
		{windows.CurrentWeek, &summary.CurrentWeek},
		{windows.LastWeek, &summary.LastWeek},
		{windows.CurrentMonth, &summary.CurrentMonth},
		{windows.LastMonth, &summary.LastMonth},
	}
	for _, facet := range facets {
		group.Go(func() error {
			rows, err := s.storage.Transactions.FindInRange(groupCtx, &sqlconfig.TransactionFilter{
				AccountID: iban,
				Window:    facet.window,
			})
			if err != nil {
				return err
			}
			*facet.target = ledger.SumFacet(sqlconfig.ToLedgerSlice(rows))
			return nil
		})
	}
	group.Go(func() error {
		rows, err := s.storage.Transactions.FindInRange(groupCtx, &sqlconfig.TransactionFilter{
			AccountID: iban,
			Limit:     recentTransactionCount,
		})
		if err != nil {
			return err
		}
		summary.Transactions = sqlconfig.ToLedgerSlice(rows)
		ledger.SortNewestFirst(summary.Transactions)
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, storeFailure("ReportService.AccountSummary", err)
	}
	return summary, nil
}

// Transactions lists every transaction in a bounded range, newest first.
func (s *ReportService) Transactions(ctx context.Context, iban, from, to string) ([]ledger.Transaction, error) {
	window, err := s.boundedRange(from, to)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	rows, err := s.storage.Transactions.FindInRange(ctx, &sqlconfig.TransactionFilter{
		AccountID: iban,
		Window:    window,
	})
	if err != nil {
		return nil, storeFailure("ReportService.Transactions", err)
	}

	txs := sqlconfig.ToLedgerSlice(rows)
	ledger.SortNewestFirst(txs)
	return txs, nil
}

// TransactionsCustom returns one page of a filtered search plus the size of the
// whole match set. The count and the page are separate reads, so a concurrent
// insert can leave Total out of step with Results.
func (s *ReportService) TransactionsCustom(ctx context.Context, query SearchQuery) (*ledger.PagedResult, error) {
	offset, err := ledger.PageOffset(query.Page, s.pageSize)
	if err != nil {
		return nil, err
	}
	filter, err := s.searchFilter(query)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	result := &ledger.PagedResult{}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		total, err := s.storage.Transactions.CountInRange(groupCtx, filter)
		result.Total = total
		return err
	})
	group.Go(func() error {
		paged := *filter
		paged.Limit = s.pageSize
		paged.Offset = offset
		rows, err := s.storage.Transactions.FindInRange(groupCtx, &paged)
		if err != nil {
			return err
		}
		result.Results = sqlconfig.ToLedgerSlice(rows)
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, storeFailure("ReportService.TransactionsCustom", err)
	}

	ledger.SortNewestFirst(result.Results)
	return result, nil
}

// TransactionsCustomStats groups every transaction matching query by category.
// Page is ignored.
func (s *ReportService) TransactionsCustomStats(ctx context.Context, query SearchQuery) (ledger.CategorySummary, error) {
	filter, err := s.searchFilter(query)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	rows, err := s.storage.Transactions.FindInRange(ctx, filter)
	if err != nil {
		return nil, storeFailure("ReportService.TransactionsCustomStats", err)
	}

	txs := sqlconfig.ToLedgerSlice(rows)
	ledger.SortNewestFirst(txs)
	return ledger.GroupByCategory(txs), nil
}

// TransactionsByDay rolls non-positive amounts up per calendar day.
func (s *ReportService) TransactionsByDay(ctx context.Context, iban, from, to, text string) ([]ledger.DailyRollup, error) {
	window, err := s.boundedRange(from, to)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	rows, err := s.storage.Transactions.FindInRange(ctx, &sqlconfig.TransactionFilter{
		AccountID:       iban,
		Window:          window,
		Text:            text,
		NonPositiveOnly: true,
	})
	if err != nil {
		return nil, storeFailure("ReportService.TransactionsByDay", err)
	}

	return ledger.SummaryByDay(sqlconfig.ToLedgerSlice(rows), s.calendar.Location), nil
}

// PendingTransactions lists the pending log, newest first. Either bound may be
// omitted.
func (s *ReportService) PendingTransactions(ctx context.Context, iban, from, to string) ([]ledger.Transaction, error) {
	window, err := s.calendar.ParseRange(from, to)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	rows, err := s.storage.Pending.FindInRange(ctx, &sqlconfig.TransactionFilter{
		AccountID: iban,
		Window:    window,
	})
	if err != nil {
		return nil, storeFailure("ReportService.PendingTransactions", err)
	}

	txs := sqlconfig.ToLedgerSlice(rows)
	ledger.SortNewestFirst(txs)
	return txs, nil
}

// PreviousWeek returns the last full week's facet for an account.
func (s *ReportService) PreviousWeek(ctx context.Context, iban string) (ledger.Window, ledger.Facet, error) {
	window := s.calendar.Windows(s.now()).LastWeek

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	rows, err := s.storage.Transactions.FindInRange(ctx, &sqlconfig.TransactionFilter{
		AccountID: iban,
		Window:    window,
	})
	if err != nil {
		return window, ledger.Facet{}, storeFailure("ReportService.PreviousWeek", err)
	}
	return window, ledger.SumFacet(sqlconfig.ToLedgerSlice(rows)), nil
}

func (s *ReportService) boundedRange(from, to string) (ledger.Window, error) {
	window, err := s.calendar.ParseRange(from, to)
	if err != nil {
		return ledger.Window{}, err
	}
	if err := window.RequireBounded(); err != nil {
		return ledger.Window{}, err
	}
	return window, nil
}

func (s *ReportService) searchFilter(query SearchQuery) (*sqlconfig.TransactionFilter, error) {
	window, err := s.boundedRange(query.From, query.To)
	if err != nil {
		return nil, err
	}
	return &sqlconfig.TransactionFilter{
		AccountID:        query.AccountID,
		Window:           window,
		Text:             query.Text,
		ExcludeOffRecord: !query.IncludeOffRecord,
	}, nil
}
