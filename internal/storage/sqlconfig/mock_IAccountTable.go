package sqlconfig

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockIAccountTable is a testify mock of IAccountTable.
type MockIAccountTable struct {
	mock.Mock
}

func NewMockIAccountTable(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockIAccountTable {
	m := &MockIAccountTable{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockIAccountTable) FindByIBAN(ctx context.Context, iban string, forUpdate bool) (*Account, error) {
	args := m.Called(ctx, iban, forUpdate)
	account, _ := args.Get(0).(*Account)
	return account, args.Error(1)
}

func (m *MockIAccountTable) FindByName(ctx context.Context, name string) (*Account, error) {
	args := m.Called(ctx, name)
	account, _ := args.Get(0).(*Account)
	return account, args.Error(1)
}

func (m *MockIAccountTable) Insert(ctx context.Context, create *AccountCreate) (*Account, error) {
	args := m.Called(ctx, create)
	account, _ := args.Get(0).(*Account)
	return account, args.Error(1)
}

func (m *MockIAccountTable) List(ctx context.Context, filter *AccountFilter) ([]*Account, error) {
	args := m.Called(ctx, filter)
	accounts, _ := args.Get(0).([]*Account)
	return accounts, args.Error(1)
}

func (m *MockIAccountTable) AdjustBalance(ctx context.Context, iban string, delta decimal.Decimal) error {
	args := m.Called(ctx, iban, delta)
	return args.Error(0)
}

func (m *MockIAccountTable) Delete(ctx context.Context, iban string) (bool, error) {
	args := m.Called(ctx, iban)
	return args.Bool(0), args.Error(1)
}
