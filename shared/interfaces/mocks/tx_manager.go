package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fallen-dragon-server/shared/interfaces"
)

// TxManager is a mock of interfaces.TxManager. When the expectation returns
// nil, fn runs against Querier (nil unless the test sets one).
type TxManager struct {
	mock.Mock
	Querier interfaces.DBTX
}

func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.DBTX) error) error {
	if err := m.Called(ctx).Error(0); err != nil {
		return err
	}
	return fn(ctx, m.Querier)
}

var _ interfaces.TxManager = (*TxManager)(nil)
