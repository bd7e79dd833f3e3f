package sqlconfig

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"
)

const AccountsTableName = "accounts"

var accountColumns = []any{"iban", "name", "password_hash", "balance", "opening_date"}

// AccountsTable provides access to the accounts table.
type AccountsTable struct {
	exec bob.Executor
	now  func() time.Time
}

// Ensure AccountsTable implements IAccountTable at compile time.
var _ IAccountTable = (*AccountsTable)(nil)

// NewAccountsTable creates an AccountsTable on the given executor.
func NewAccountsTable(exec bob.Executor) *AccountsTable {
	return &AccountsTable{exec: exec, now: time.Now}
}

// FindByIBAN retrieves an account by IBAN, locking the row when forUpdate is set.
func (t *AccountsTable) FindByIBAN(ctx context.Context, iban string, forUpdate bool) (*Account, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(accountColumns...),
		sm.From(AccountsTableName),
		sm.Where(psql.Quote("iban").EQ(psql.Arg(iban))),
	}
	if forUpdate {
		queryMods = append(queryMods, sm.ForUpdate())
	}
	return t.findOne(ctx, "AccountsTable.FindByIBAN", queryMods)
}

// FindByName retrieves an account by its normalized name.
func (t *AccountsTable) FindByName(ctx context.Context, name string) (*Account, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(accountColumns...),
		sm.From(AccountsTableName),
		sm.Where(psql.Quote("name").EQ(psql.Arg(name))),
		sm.OrderBy(psql.Quote("opening_date")).Asc(),
		sm.Limit(1),
	}
	return t.findOne(ctx, "AccountsTable.FindByName", queryMods)
}

func (t *AccountsTable) findOne(ctx context.Context, op string, queryMods []bob.Mod[*dialect.SelectQuery]) (*Account, error) {
	row, err := bob.One(ctx, t.exec, psql.Select(queryMods...), scan.StructMapper[Account]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(op, err)
	}
	return &row, nil
}

// Insert creates a new account with a zero balance.
func (t *AccountsTable) Insert(ctx context.Context, create *AccountCreate) (*Account, error) {
	openingDate := create.OpeningDate
	if openingDate.IsZero() {
		openingDate = t.now()
	}

	query := psql.Insert(
		im.Into(AccountsTableName, "iban", "name", "password_hash", "balance", "opening_date"),
		im.Values(
			psql.Arg(create.IBAN),
			psql.Arg(create.Name),
			psql.Arg(create.PasswordHash),
			psql.Arg(decimal.Zero),
			psql.Arg(openingDate),
		),
		im.Returning(accountColumns...),
	)
	row, err := bob.One(ctx, t.exec, query, scan.StructMapper[Account]())
	if err != nil {
		return nil, storeError("AccountsTable.Insert", err)
	}
	return &row, nil
}

// List returns accounts ordered by name then IBAN. Limit fetches one extra row so
// callers can tell whether another page exists.
func (t *AccountsTable) List(ctx context.Context, filter *AccountFilter) ([]*Account, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(accountColumns...),
		sm.From(AccountsTableName),
	}
	if filter != nil {
		if filter.Limit > 0 {
			queryMods = append(queryMods, sm.Limit(filter.Limit+1))
		}
		if filter.Offset > 0 {
			queryMods = append(queryMods, sm.Offset(filter.Offset))
		}
	}
	queryMods = append(queryMods,
		sm.OrderBy(psql.Quote("name")).Asc(),
		sm.OrderBy(psql.Quote("iban")).Asc(),
	)
	rows, err := bob.All(ctx, t.exec, psql.Select(queryMods...), scan.StructMapper[*Account]())
	if err != nil {
		return nil, storeError("AccountsTable.List", err)
	}
	return rows, nil
}

// AdjustBalance adds delta to the stored balance.
func (t *AccountsTable) AdjustBalance(ctx context.Context, iban string, delta decimal.Decimal) error {
	query := psql.Update(
		um.Table(AccountsTableName),
		um.SetCol("balance").To(psql.Raw("balance + ?", delta)),
		um.Where(psql.Quote("iban").EQ(psql.Arg(iban))),
	)
	if _, err := bob.Exec(ctx, t.exec, query); err != nil {
		return storeError("AccountsTable.AdjustBalance", err)
	}
	return nil
}

// Delete removes an account and reports whether it existed.
func (t *AccountsTable) Delete(ctx context.Context, iban string) (bool, error) {
	query := psql.Delete(
		dm.From(AccountsTableName),
		dm.Where(psql.Quote("iban").EQ(psql.Arg(iban))),
	)
	result, err := bob.Exec(ctx, t.exec, query)
	if err != nil {
		return false, storeError("AccountsTable.Delete", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, storeError("AccountsTable.Delete", err)
	}
	return affected > 0, nil
}
