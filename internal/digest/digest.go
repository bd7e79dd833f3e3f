package digest

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/service"
)

const pageSize = 100

// AccountLister pages through every account.
type AccountLister interface {
	ListAccounts(ctx context.Context, cursor *service.AccountCursor) ([]service.Account, *service.AccountCursor, error)
}

// WeeklyReporter computes the previous week's facet for one account.
type WeeklyReporter interface {
	PreviousWeek(ctx context.Context, iban string) (ledger.Window, ledger.Facet, error)
}

// Payload is the body of a digest.weekly event.
type Payload struct {
	WeekStart  time.Time `json:"weekStart"`
	WeekEnd    time.Time `json:"weekEnd"`
	Deposit    string    `json:"deposit"`
	Withdrawal string    `json:"withdrawal"`
	Net        string    `json:"net"`
}

// Scheduler publishes a weekly summary for every account on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	accounts  AccountLister
	reports   WeeklyReporter
	publisher events.Publisher
	logger    *logrus.Logger
	now       func() time.Time
}

func NewScheduler(accounts AccountLister, reports WeeklyReporter, publisher events.Publisher, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		accounts:  accounts,
		reports:   reports,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Start registers the job under spec, a standard five-field cron expression, and
// starts the cron loop.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		sent, err := s.RunOnce(context.Background())
		if err != nil {
			s.logger.WithError(err).Error("Digest.Run.Error")
			return
		}
		s.logger.WithField("sent", sent).Info("Digest.Run.Complete")
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce publishes one digest per account and returns how many were sent. A
// failing account is logged and skipped; only a listing failure aborts the run.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	sent := 0
	cursor := &service.AccountCursor{Limit: pageSize}
	for cursor != nil {
		accounts, next, err := s.accounts.ListAccounts(ctx, cursor)
		if err != nil {
			return sent, err
		}
		for _, account := range accounts {
			if err := s.sendDigest(ctx, account); err != nil {
				s.logger.WithError(err).WithField("accountID", account.IBAN).Warn("Digest.Account.Error")
				continue
			}
			sent++
		}
		cursor = next
	}
	return sent, nil
}

func (s *Scheduler) sendDigest(ctx context.Context, account service.Account) error {
	window, facet, err := s.reports.PreviousWeek(ctx, account.IBAN)
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, events.Event{
		Type:       events.WeeklyDigest,
		AccountID:  account.IBAN,
		OccurredAt: s.now(),
		Payload: Payload{
			WeekStart:  window.Start,
			WeekEnd:    window.End,
			Deposit:    facet.Deposit.String(),
			Withdrawal: facet.Withdrawal.String(),
			Net:        facet.Net().String(),
		},
	})
}
