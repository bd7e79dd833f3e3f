package sqlconfig

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

var _ ITransactionTable = (*TransactionsTable)(nil)

var transactionColumns = []any{"id", "seq", "account_id", "amount", "description", "off_record", "created_at"}

// TransactionsTable provides access to one transaction namespace.
type TransactionsTable struct {
	exec  bob.Executor
	table string
	now   func() time.Time
}

// NewTransactionsTable binds a table name to an executor, either the pool or a
// write transaction.
func NewTransactionsTable(exec bob.Executor, table string) *TransactionsTable {
	return &TransactionsTable{exec: exec, table: table, now: time.Now}
}

// Insert appends a transaction and returns the stored row.
func (t *TransactionsTable) Insert(ctx context.Context, create *TransactionCreate) (*Transaction, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	createdAt := create.CreatedAt
	if createdAt.IsZero() {
		createdAt = t.now()
	}

	query := psql.Insert(
		im.Into(t.table, "id", "account_id", "amount", "description", "off_record", "created_at"),
		im.Values(
			psql.Arg(id),
			psql.Arg(create.AccountID),
			psql.Arg(create.Amount),
			psql.Arg(create.Description),
			psql.Arg(create.OffRecord),
			psql.Arg(createdAt),
		),
		im.Returning(transactionColumns...),
	)

	row, err := bob.One(ctx, t.exec, query, scan.StructMapper[Transaction]())
	if err != nil {
		return nil, storeError("TransactionsTable.Insert", err)
	}
	return &row, nil
}

// FindInRange returns the transactions matching filter.
func (t *TransactionsTable) FindInRange(ctx context.Context, filter *TransactionFilter) ([]*Transaction, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(transactionColumns...),
		sm.From(t.table),
	}
	queryMods = append(queryMods, whereMods(filter)...)
	if filter.Limit > 0 {
		queryMods = append(queryMods,
			sm.OrderBy(psql.Quote("created_at")).Desc(),
			sm.OrderBy(psql.Quote("seq")).Desc(),
			sm.Limit(filter.Limit),
		)
		if filter.Offset > 0 {
			queryMods = append(queryMods, sm.Offset(filter.Offset))
		}
	}

	rows, err := bob.All(ctx, t.exec, psql.Select(queryMods...), scan.StructMapper[*Transaction]())
	if err != nil {
		return nil, storeError("TransactionsTable.FindInRange", err)
	}
	return rows, nil
}

// CountInRange counts the transactions matching filter, ignoring Limit and Offset.
func (t *TransactionsTable) CountInRange(ctx context.Context, filter *TransactionFilter) (int, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns("count(*)"),
		sm.From(t.table),
	}
	queryMods = append(queryMods, whereMods(filter)...)

	count, err := bob.One(ctx, t.exec, psql.Select(queryMods...), scan.SingleColumnMapper[int64])
	if err != nil {
		return 0, storeError("TransactionsTable.CountInRange", err)
	}
	return int(count), nil
}

func whereMods(filter *TransactionFilter) []bob.Mod[*dialect.SelectQuery] {
	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Where(psql.Quote("account_id").EQ(psql.Arg(filter.AccountID))),
	}
	if !filter.Window.Start.IsZero() {
		mods = append(mods, sm.Where(psql.Quote("created_at").GTE(psql.Arg(filter.Window.Start))))
	}
	if !filter.Window.End.IsZero() {
		mods = append(mods, sm.Where(psql.Quote("created_at").LT(psql.Arg(filter.Window.End))))
	}
	if filter.Text != "" {
		mods = append(mods, sm.Where(psql.Raw("description ILIKE ?", ContainsPattern(filter.Text))))
	}
	if filter.ExcludeOffRecord {
		mods = append(mods, sm.Where(psql.Quote("off_record").EQ(psql.Arg(false))))
	}
	if filter.NonPositiveOnly {
		mods = append(mods, sm.Where(psql.Quote("amount").LTE(psql.Arg(decimal.Zero))))
	}
	return mods
}
