package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

const defaultAccountLimit = 20

// Account is the public view of an account. The password hash never leaves
// storage.
type Account struct {
	IBAN        string
	Name        string
	Balance     decimal.Decimal
	OpeningDate time.Time
}

// AccountCursor identifies a position in a paginated result set.
type AccountCursor struct {
	Position int
	Limit    int
}

func accountFromStorage(row *sqlconfig.Account) Account {
	return Account{
		IBAN:        row.IBAN,
		Name:        row.Name,
		Balance:     row.Balance,
		OpeningDate: row.OpeningDate,
	}
}

// NormalizeName trims and upper-cases an account holder name.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// AccountService handles account business logic.
type AccountService struct {
	storage      *storage.Storage
	operator     Processor
	publisher    events.Publisher
	issuer       TokenIssuer
	storeTimeout time.Duration
	now          func() time.Time
	hashCost     int
}

// NewAccountService creates a new AccountService.
func NewAccountService(store *storage.Storage, processor Processor, publisher events.Publisher, issuer TokenIssuer, opts Options) *AccountService {
	opts = opts.withDefaults()
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &AccountService{
		storage:      store,
		operator:     processor,
		publisher:    publisher,
		issuer:       issuer,
		storeTimeout: opts.StoreTimeout,
		now:          opts.Now,
		hashCost:     bcrypt.DefaultCost,
	}
}

// CreateAccount opens an account with a zero balance.
func (s *AccountService) CreateAccount(ctx context.Context, name, password string) (*Account, error) {
	name = NormalizeName(name)
	if name == "" || password == "" {
		return nil, fmt.Errorf("%w: name and password are required", ledger.ErrInvalidAccount)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	action := &actions.CreateAccount{Name: name, PasswordHash: string(hash)}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, storeFailure("AccountService.CreateAccount", err)
	}

	account := accountFromStorage(action.Created)
	publish(ctx, s.publisher, events.Event{
		Type:       events.AccountCreated,
		AccountID:  account.IBAN,
		OccurredAt: account.OpeningDate,
		Payload:    map[string]string{"name": account.Name},
	})
	return &account, nil
}

// GetAccount retrieves an account by IBAN.
func (s *AccountService) GetAccount(ctx context.Context, iban string) (*Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	row, err := s.storage.Accounts.FindByIBAN(ctx, iban, false)
	if err != nil {
		return nil, storeFailure("AccountService.GetAccount", err)
	}
	if row == nil {
		return nil, ledger.ErrAccountNotFound
	}
	account := accountFromStorage(row)
	return &account, nil
}

// DeleteAccount removes an account and returns its last state.
func (s *AccountService) DeleteAccount(ctx context.Context, iban string) (*Account, error) {
	action := &actions.DeleteAccount{IBAN: iban}
	if err := s.operator.Process(ctx, action); err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil, err
		}
		return nil, storeFailure("AccountService.DeleteAccount", err)
	}

	account := accountFromStorage(action.Deleted)
	publish(ctx, s.publisher, events.Event{
		Type:       events.AccountDeleted,
		AccountID:  account.IBAN,
		OccurredAt: s.now(),
	})
	return &account, nil
}

// Login checks the password of the account holder called name and issues a token.
func (s *AccountService) Login(ctx context.Context, name, password string) (string, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	row, err := s.storage.Accounts.FindByName(lookupCtx, NormalizeName(name))
	if err != nil {
		return "", storeFailure("AccountService.Login", err)
	}
	if row == nil {
		return "", ledger.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)); err != nil {
		return "", ledger.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(row.IBAN, row.Name)
	if err != nil {
		return "", err
	}
	logging.GetLogData(ctx).AddData("accountID", row.IBAN)
	return token, nil
}

// ListAccounts returns a page of accounts using cursor pagination.
func (s *AccountService) ListAccounts(ctx context.Context, cursor *AccountCursor) ([]Account, *AccountCursor, error) {
	limit := defaultAccountLimit
	offset := 0
	if cursor != nil {
		limit = cursor.Limit
		offset = cursor.Position
	}

	filter := &sqlconfig.AccountFilter{
		Limit:  limit,
		Offset: offset,
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	var nextCursor *AccountCursor
	accounts, err := s.storage.Accounts.List(ctx, filter)
	if err != nil {
		return nil, nil, storeFailure("AccountService.ListAccounts", err)
	}

	if len(accounts) == 0 {
		return nil, nil, nil
	}

	if len(accounts) > limit {
		accounts = accounts[:limit]
		nextCursor = &AccountCursor{
			Position: offset + limit,
			Limit:    limit,
		}
	}

	convertedAccounts := make([]Account, len(accounts))
	for i, account := range accounts {
		convertedAccounts[i] = accountFromStorage(account)
	}

	return convertedAccounts, nextCursor, nil
}
