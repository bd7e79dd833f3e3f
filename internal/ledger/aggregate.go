package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Facet is the deposit/withdrawal split of one window. Withdrawal keeps its sign.
type Facet struct {
	Deposit    decimal.Decimal
	Withdrawal decimal.Decimal
}

// Net is deposits plus the signed withdrawals.
func (f Facet) Net() decimal.Decimal {
	return f.Deposit.Add(f.Withdrawal)
}

// SumFacet reduces txs to their deposit and withdrawal totals.
func SumFacet(txs []Transaction) Facet {
	facet := Facet{Deposit: decimal.Zero, Withdrawal: decimal.Zero}
	for _, tx := range txs {
		switch tx.Amount.Sign() {
		case 1:
			facet.Deposit = facet.Deposit.Add(tx.Amount)
		case -1:
			facet.Withdrawal = facet.Withdrawal.Add(tx.Amount)
		}
	}
	return facet
}

// CategoryTotals holds non-negative totals for one category.
type CategoryTotals struct {
	Deposits    decimal.Decimal
	Withdrawals decimal.Decimal
}

// CategorySummary maps category labels to their totals.
type CategorySummary map[string]CategoryTotals

// GroupByCategory accumulates txs per category. Positive amounts count as deposits;
// everything else adds its absolute value to withdrawals.
func GroupByCategory(txs []Transaction) CategorySummary {
	summary := make(CategorySummary)
	for _, tx := range txs {
		label := CategoryOf(tx.Description)
		totals, ok := summary[label]
		if !ok {
			totals = CategoryTotals{Deposits: decimal.Zero, Withdrawals: decimal.Zero}
		}
		if tx.Amount.IsPositive() {
			totals.Deposits = totals.Deposits.Add(tx.Amount)
		} else {
			totals.Withdrawals = totals.Withdrawals.Add(tx.Amount.Abs())
		}
		summary[label] = totals
	}
	return summary
}

// DailyRollup is the signed net of non-positive amounts on one calendar day.
type DailyRollup struct {
	Day string
	Net decimal.Decimal
}

// SummaryByDay sums non-positive amounts per calendar day in loc. Days without
// such transactions are omitted; the result is sorted by day ascending.
func SummaryByDay(txs []Transaction, loc *time.Location) []DailyRollup {
	if loc == nil {
		loc = time.UTC
	}

	byDay := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Amount.IsPositive() {
			continue
		}
		day := tx.Timestamp.In(loc).Format(time.DateOnly)
		byDay[day] = byDay[day].Add(tx.Amount)
	}

	rollups := make([]DailyRollup, 0, len(byDay))
	for day, net := range byDay {
		rollups = append(rollups, DailyRollup{Day: day, Net: net})
	}
	sort.Slice(rollups, func(i, j int) bool {
		return rollups[i].Day < rollups[j].Day
	})
	return rollups
}
