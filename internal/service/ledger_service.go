package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
)

// LedgerService records balance-changing and pending transactions.
type LedgerService struct {
	operator  Processor
	publisher events.Publisher
}

func NewLedgerService(processor Processor, publisher events.Publisher, _ Options) *LedgerService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &LedgerService{operator: processor, publisher: publisher}
}

// RecordAdjustment appends a transaction and applies its amount to the balance.
func (s *LedgerService) RecordAdjustment(ctx context.Context, iban string, amount decimal.Decimal, description string, offRecord bool) (*ledger.Transaction, error) {
	if err := ledger.ValidateAmount(amount); err != nil {
		return nil, err
	}
	action := &actions.RecordAdjustment{
		AccountID:   iban,
		Amount:      amount,
		Description: description,
		OffRecord:   offRecord,
	}
	if err := s.process(ctx, "LedgerService.RecordAdjustment", action); err != nil {
		return nil, err
	}

	created := action.Created.ToLedger()
	publish(ctx, s.publisher, events.Event{
		Type:       events.AdjustmentRecorded,
		AccountID:  iban,
		OccurredAt: created.Timestamp,
		Payload:    transactionPayload(created),
	})
	return &created, nil
}

// Transfer debits fromIBAN and credits toIBAN, returning the debit.
func (s *LedgerService) Transfer(ctx context.Context, fromIBAN, toIBAN string, amount decimal.Decimal, description string) (*ledger.Transaction, error) {
	if err := ledger.ValidateAmount(amount); err != nil {
		return nil, err
	}
	action := &actions.Transfer{
		FromIBAN:    fromIBAN,
		ToIBAN:      toIBAN,
		Amount:      amount,
		Description: description,
	}
	if err := s.process(ctx, "LedgerService.Transfer", action); err != nil {
		return nil, err
	}

	debit := action.Debit.ToLedger()
	credit := action.Credit.ToLedger()
	publish(ctx, s.publisher, events.Event{
		Type:       events.TransferCompleted,
		AccountID:  fromIBAN,
		OccurredAt: debit.Timestamp,
		Payload: map[string]any{
			"debit":  transactionPayload(debit),
			"credit": transactionPayload(credit),
		},
	})
	return &debit, nil
}

// RecordPendingAdjustment appends to the pending log only.
func (s *LedgerService) RecordPendingAdjustment(ctx context.Context, iban string, amount decimal.Decimal, description string) (*ledger.Transaction, error) {
	if err := ledger.ValidateAmount(amount); err != nil {
		return nil, err
	}
	action := &actions.RecordPendingAdjustment{
		AccountID:   iban,
		Amount:      amount,
		Description: description,
	}
	if err := s.process(ctx, "LedgerService.RecordPendingAdjustment", action); err != nil {
		return nil, err
	}

	created := action.Created.ToLedger()
	publish(ctx, s.publisher, events.Event{
		Type:       events.PendingRecorded,
		AccountID:  iban,
		OccurredAt: created.Timestamp,
		Payload:    transactionPayload(created),
	})
	return &created, nil
}

func (s *LedgerService) process(ctx context.Context, op string, action actions.IAction) error {
	defer logging.GetLogData(ctx).AddTiming("operator")()

	err := s.operator.Process(ctx, action)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrRecipientNotFound),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidAccount):
		return err
	default:
		return storeFailure(op, err)
	}
}

func transactionPayload(tx ledger.Transaction) map[string]any {
	return map[string]any{
		"id":          tx.ID.String(),
		"amount":      tx.Amount.String(),
		"description": tx.Description,
		"category":    ledger.CategoryOf(tx.Description),
		"offRecord":   tx.OffRecord,
	}
}

// publish sends event. Failures are logged, never returned.
func publish(ctx context.Context, publisher events.Publisher, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		logging.GetLogData(ctx).Log().
			WithError(err).
			WithField("eventType", event.Type).
			Warn("Service.publish.Error")
	}
}
