package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

var base = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, table *TransactionsTable, creates ...sqlconfig.TransactionCreate) {
	t.Helper()
	for i := range creates {
		_, err := table.Insert(context.Background(), &creates[i])
		require.NoError(t, err)
	}
}

func descriptions(rows []*sqlconfig.Transaction) []string {
	result := make([]string, len(rows))
	for i, row := range rows {
		result[i] = row.Description
	}
	return result
}

// -- TransactionsTable tests --

func TestInsert_AssignsSeqAndClock(t *testing.T) {
	table := NewTransactionsTable().WithClock(func() time.Time { return base })

	first, err := table.Insert(context.Background(), &sqlconfig.TransactionCreate{AccountID: "VN1", Amount: decimal.NewFromInt(5)})
	require.NoError(t, err)
	second, err := table.Insert(context.Background(), &sqlconfig.TransactionCreate{AccountID: "VN1", Amount: decimal.NewFromInt(6)})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(2), second.Seq)
	assert.Equal(t, base, first.CreatedAt)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestFindInRange_Filters(t *testing.T) {
	table := NewTransactionsTable()
	seed(t, table,
		sqlconfig.TransactionCreate{AccountID: "VN1", Amount: decimal.NewFromInt(100), Description: "**Salary** March", CreatedAt: base},
		sqlconfig.TransactionCreate{AccountID: "VN1", Amount: decimal.NewFromInt(-20), Description: "**Food** lunch", CreatedAt: base.Add(time.Hour)},
		sqlconfig.TransactionCreate{AccountID: "VN1", Amount: decimal.NewFromInt(-5), Description: "100% juice_bar", OffRecord: true, CreatedAt: base.Add(2 * time.Hour)},
		sqlconfig.TransactionCreate{AccountID: "VN2", Amount: decimal.NewFromInt(-7), Description: "**Food** other account", CreatedAt: base},
		sqlconfig.TransactionCreate{AccountID: "VN1", Amount: decimal.NewFromInt(-9), Description: "before window", CreatedAt: base.Add(-time.Hour)},
	)
	window := ledger.Window{Start: base, End: base.Add(3 * time.Hour)}

	tests := []struct {
		name   string
		filter sqlconfig.TransactionFilter
		want   []string
	}{
		{
			name:   "window and account",
			filter: sqlconfig.TransactionFilter{AccountID: "VN1", Window: window},
			want:   []string{"**Salary** March", "**Food** lunch", "100% juice_bar"},
		},
		{
			name:   "end is exclusive",
			filter: sqlconfig.TransactionFilter{AccountID: "VN1", Window: ledger.Window{Start: base, End: base.Add(time.Hour)}},
			want:   []string{"**Salary** March"},
		},
		{
			name:   "unbounded",
			filter: sqlconfig.TransactionFilter{AccountID: "VN1"},
			want:   []string{"**Salary** March", "**Food** lunch", "100% juice_bar", "before window"},
		},
		{
			name:   "text is case insensitive",
			filter: sqlconfig.TransactionFilter{AccountID: "VN1", Window: window, Text: "FOOD"},
			want:   []string{"**Food** lunch"},
		},
		{
			name:   "text metacharacters are literal",
			filter: sqlconfig.TransactionFilter{AccountID: "VN1", Window: window, Text: "0% j"},
			want:   []string{"100% juice_bar"},
		},
		{
			name:   "percent is not a wildcard",
			filter: sqlconfig.TransactionFilter{AccountID: "VN1", Window: window, Text: "juice%bar"},
			want:   []string{},
		},
		{
			name:   "exclude off record",
			filter: sqlconfig.TransactionFilter{AccountID: "VN1", Window: window, ExcludeOffRecord: true},
			want:   []string{"**Salary** March", "**Food** lunch"},
		},
		{
			name:   "non positive only",
			filter: sqlconfig.TransactionFilter{AccountID: "VN1", Window: window, NonPositiveOnly: true},
			want:   []string{"**Food** lunch", "100% juice_bar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := table.FindInRange(context.Background(), &tt.filter)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, descriptions(rows))

			count, err := table.CountInRange(context.Background(), &tt.filter)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), count)
		})
	}
}

func TestFindInRange_PagingOrder(t *testing.T) {
	table := NewTransactionsTable()
	seed(t, table,
		sqlconfig.TransactionCreate{AccountID: "VN1", Amount: decimal.NewFromInt(1), Description: "a", CreatedAt: base},
		sqlconfig.TransactionCreate{AccountID: "VN1", Amount: decimal.NewFromInt(1), Description: "b", CreatedAt: base.Add(time.Minute)},
		sqlconfig.TransactionCreate{AccountID: "VN1", Amount: decimal.NewFromInt(1), Description: "c", CreatedAt: base.Add(time.Minute)},
		sqlconfig.TransactionCreate{AccountID: "VN1", Amount: decimal.NewFromInt(1), Description: "d", CreatedAt: base.Add(2 * time.Minute)},
	)

	var pages [][]string
	for offset := 0; offset < 6; offset += 2 {
		filter := &sqlconfig.TransactionFilter{AccountID: "VN1", Limit: 2, Offset: offset}
		rows, err := table.FindInRange(context.Background(), filter)
		require.NoError(t, err)
		pages = append(pages, descriptions(rows))

		count, err := table.CountInRange(context.Background(), filter)
		require.NoError(t, err)
		assert.Equal(t, 4, count)
	}

	// c was inserted after b at the same instant, so it sorts first.
	assert.Equal(t, [][]string{{"d", "c"}, {"b", "a"}, {}}, pages)
}

func TestFindInRange_NegativeOffset(t *testing.T) {
	table := NewTransactionsTable()
	seed(t, table,
		sqlconfig.TransactionCreate{AccountID: "VN1", Amount: decimal.NewFromInt(1), Description: "a", CreatedAt: base},
	)

	rows, err := table.FindInRange(context.Background(), &sqlconfig.TransactionFilter{AccountID: "VN1", Limit: 2, Offset: -4})
	assert.Error(t, err)
	assert.Nil(t, rows)
}

func TestFindInRange_Context(t *testing.T) {
	table := NewTransactionsTable()

	expired, cancel := context.WithDeadline(context.Background(), base)
	defer cancel()
	_, err := table.FindInRange(expired, &sqlconfig.TransactionFilter{AccountID: "VN1"})
	assert.ErrorIs(t, err, ledger.ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	_, err = table.CountInRange(cancelled, &sqlconfig.TransactionFilter{AccountID: "VN1"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ledger.ErrStoreUnavailable))
}

// -- AccountsTable tests --

func TestAccounts_Lifecycle(t *testing.T) {
	ctx := context.Background()
	table := NewAccountsTable()

	created, err := table.Insert(ctx, &sqlconfig.AccountCreate{IBAN: "VN1", Name: "ALICE", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.True(t, created.Balance.IsZero())
	assert.False(t, created.OpeningDate.IsZero())

	_, err = table.Insert(ctx, &sqlconfig.AccountCreate{IBAN: "VN1", Name: "BOB"})
	assert.ErrorIs(t, err, ErrDuplicateIBAN)

	require.NoError(t, table.AdjustBalance(ctx, "VN1", decimal.RequireFromString("12.50")))
	require.NoError(t, table.AdjustBalance(ctx, "VN1", decimal.RequireFromString("-2.25")))

	found, err := table.FindByIBAN(ctx, "VN1", false)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, decimal.RequireFromString("10.25").Equal(found.Balance))

	byName, err := table.FindByName(ctx, "ALICE")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, "VN1", byName.IBAN)

	missing, err := table.FindByName(ctx, "CAROL")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	deleted, err := table.Delete(ctx, "VN1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = table.Delete(ctx, "VN1")
	require.NoError(t, err)
	assert.False(t, deleted)

	gone, err := table.FindByIBAN(ctx, "VN1", true)
	assert.NoError(t, err)
	assert.Nil(t, gone)
}

func TestAccounts_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	table := NewAccountsTable()
	_, err := table.Insert(ctx, &sqlconfig.AccountCreate{IBAN: "VN1", Name: "ALICE"})
	require.NoError(t, err)

	found, err := table.FindByIBAN(ctx, "VN1", false)
	require.NoError(t, err)
	found.Name = "MALLORY"

	again, err := table.FindByIBAN(ctx, "VN1", false)
	require.NoError(t, err)
	assert.Equal(t, "ALICE", again.Name)
}

func TestAccounts_List(t *testing.T) {
	ctx := context.Background()
	table := NewAccountsTable()
	for _, create := range []sqlconfig.AccountCreate{
		{IBAN: "VN3", Name: "CAROL"},
		{IBAN: "VN1", Name: "ALICE"},
		{IBAN: "VN2", Name: "BOB"},
	} {
		_, err := table.Insert(ctx, &create)
		require.NoError(t, err)
	}

	all, err := table.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "ALICE", all[0].Name)

	page, err := table.List(ctx, &sqlconfig.AccountFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "BOB", page[0].Name)
	assert.Equal(t, "CAROL", page[1].Name)

	empty, err := table.List(ctx, &sqlconfig.AccountFilter{Limit: 1, Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
