package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/lib/pq"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/storage/memory"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

// Storage exposes the read side of every table plus a way to open a Writer.
type Storage struct {
	DB           *sql.DB
	Transactions sqlconfig.ITransactionTable
	Pending      sqlconfig.ITransactionTable
	Accounts     sqlconfig.IAccountTable

	begin func(ctx context.Context) (*Writer, error)
}

// NewStorage opens the backend selected by env.Store.Backend.
func NewStorage(env *config.Config) (*Storage, error) {
	switch env.Store.Backend {
	case config.BackendMemory:
		return NewMemoryStorage(), nil
	case config.BackendPostgres:
		db, err := sql.Open("postgres", env.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("sql.Open: %w", err)
		}
		return NewPostgresStorage(db), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", env.Store.Backend)
	}
}

// NewPostgresStorage builds the SQL-backed storage over an open pool.
func NewPostgresStorage(db *sql.DB) *Storage {
	bobDB := bob.NewDB(db)

	return &Storage{
		DB:           db,
		Transactions: sqlconfig.NewTransactionsTable(bobDB, sqlconfig.TransactionsTableName),
		Pending:      sqlconfig.NewTransactionsTable(bobDB, sqlconfig.PendingTransactionsTableName),
		Accounts:     sqlconfig.NewAccountsTable(bobDB),
		begin: func(ctx context.Context) (*Writer, error) {
			tx, err := bobDB.BeginTx(ctx, nil)
			if err != nil {
				return nil, fmt.Errorf("BeginTx: %w", err)
			}
			return newSQLWriter(tx), nil
		},
	}
}

// NewMemoryStorage builds a process-local storage. Writers are serialized but
// rollback does not undo earlier statements.
func NewMemoryStorage() *Storage {
	transactions := memory.NewTransactionsTable()
	pending := memory.NewTransactionsTable()
	accounts := memory.NewAccountsTable()
	writeLock := &sync.Mutex{}

	return &Storage{
		Transactions: transactions,
		Pending:      pending,
		Accounts:     accounts,
		begin: func(ctx context.Context) (*Writer, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			writeLock.Lock()
			var once sync.Once
			release := func(context.Context) error {
				once.Do(writeLock.Unlock)
				return nil
			}
			return &Writer{
				Transactions: transactions,
				Pending:      pending,
				Accounts:     accounts,
				commit:       release,
				rollback:     release,
			}, nil
		},
	}
}

// Write opens a write transaction. Callers must Commit or Rollback it.
func (s *Storage) Write(ctx context.Context) (*Writer, error) {
	return s.begin(ctx)
}

// Close releases the connection pool, if any.
func (s *Storage) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// Ping checks that the backend is reachable. The memory backend always is.
func (s *Storage) Ping(ctx context.Context) error {
	if s.DB == nil {
		return nil
	}
	return s.DB.PingContext(ctx)
}
