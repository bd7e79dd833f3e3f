package sqlconfig

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockITransactionTable is a testify mock of ITransactionTable.
type MockITransactionTable struct {
	mock.Mock
}

// NewMockITransactionTable creates the mock and asserts its expectations when the
// test ends.
func NewMockITransactionTable(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockITransactionTable {
	m := &MockITransactionTable{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockITransactionTable) Insert(ctx context.Context, create *TransactionCreate) (*Transaction, error) {
	args := m.Called(ctx, create)
	row, _ := args.Get(0).(*Transaction)
	return row, args.Error(1)
}

func (m *MockITransactionTable) FindInRange(ctx context.Context, filter *TransactionFilter) ([]*Transaction, error) {
	args := m.Called(ctx, filter)
	rows, _ := args.Get(0).([]*Transaction)
	return rows, args.Error(1)
}

func (m *MockITransactionTable) CountInRange(ctx context.Context, filter *TransactionFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}
