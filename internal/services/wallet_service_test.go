package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/repositories"
	"fintrack/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newWalletService() (*services.WalletService, *MockWalletRepository, *MockTransactionRepository) {
	wallets := new(MockWalletRepository)
	transactions := new(MockTransactionRepository)
	return services.NewWalletService(wallets, transactions, zap.NewNop()), wallets, transactions
}

func TestWalletService_GuardOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("missing wallet", func(t *testing.T) {
		service, wallets, _ := newWalletService()
		wallets.On("GetByID", ctx, "w-1").Return(nil, repositories.ErrNotFound).Once()

		_, err := service.Get(ctx, "u-1", "w-1")
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("foreign wallet", func(t *testing.T) {
		service, wallets, _ := newWalletService()
		wallets.On("GetByID", ctx, "w-1").Return(&models.Wallet{ID: "w-1", UserID: "u-2"}, nil)

		_, err := service.Get(ctx, "u-1", "w-1")
		assert.ErrorIs(t, err, services.ErrForbidden)

		err = service.Delete(ctx, "u-1", "w-1")
		assert.ErrorIs(t, err, services.ErrForbidden)
		wallets.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

		_, err = service.Update(ctx, "u-1", "w-1", "Renamed wallet")
		assert.ErrorIs(t, err, services.ErrForbidden)
		wallets.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure on write", func(t *testing.T) {
		service, wallets, _ := newWalletService()
		wallets.On("GetByID", ctx, "w-1").Return(&models.Wallet{ID: "w-1", UserID: "u-1"}, nil)
		wallets.On("Delete", ctx, "w-1").Return(errors.New("db down")).Once()

		err := service.Delete(ctx, "u-1", "w-1")
		assert.ErrorIs(t, err, services.ErrConflict)
	})

	t.Run("store failure on read", func(t *testing.T) {
		service, wallets, _ := newWalletService()
		wallets.On("GetByID", ctx, "w-1").Return(nil, errors.New("db down")).Once()

		_, err := service.Get(ctx, "u-1", "w-1")
		assert.ErrorIs(t, err, services.ErrInternal)
	})
}

func TestWalletService_CreateAndGet(t *testing.T) {
	service, wallets, _ := newWalletService()
	ctx := context.Background()

	wallets.On("Create", ctx, mock.MatchedBy(func(w *models.Wallet) bool {
		return w.Title == "Main wallet" && w.UserID == "u-1"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Wallet).ID = "w-1"
	}).Return(nil).Once()

	created, err := service.Create(ctx, "u-1", "Main wallet")
	require.NoError(t, err)
	assert.Equal(t, "w-1", created.ID)
	assert.True(t, created.Balance.IsZero())

	wallets.On("GetByID", ctx, "w-1").Return(&models.Wallet{ID: "w-1", UserID: "u-1"}, nil).Once()
	wallets.On("GetWithBalance", ctx, "w-1").
		Return(&models.WalletBalance{ID: "w-1", UserID: "u-1", Balance: decimal.NewFromInt(70)}, nil).Once()

	got, err := service.Get(ctx, "u-1", "w-1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(70).Equal(got.Balance))
	wallets.AssertExpectations(t)
}

func TestWalletService_RecentTransactionsLimit(t *testing.T) {
	service, wallets, transactions := newWalletService()
	ctx := context.Background()
	wallets.On("GetByID", ctx, "w-1").Return(&models.Wallet{ID: "w-1", UserID: "u-1"}, nil)
	transactions.On("Recent", ctx, "w-1", 10).Return([]models.Transaction{}, nil).Once()
	transactions.On("Recent", ctx, "w-1", 100).Return([]models.Transaction{}, nil).Once()
	transactions.On("Recent", ctx, "w-1", 3).Return([]models.Transaction{{ID: "t-1"}}, nil).Once()

	_, err := service.RecentTransactions(ctx, "u-1", "w-1", 0)
	require.NoError(t, err)
	_, err = service.RecentTransactions(ctx, "u-1", "w-1", 5000)
	require.NoError(t, err)
	list, err := service.RecentTransactions(ctx, "u-1", "w-1", 3)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	transactions.AssertExpectations(t)
}

func TestWalletService_LastDayTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("day of newest transaction", func(t *testing.T) {
		service, wallets, transactions := newWalletService()
		wallets.On("GetByID", ctx, "w-1").Return(&models.Wallet{ID: "w-1", UserID: "u-1"}, nil)
		latest := &models.Transaction{ID: "t-9", CreatedAt: time.Date(2024, 3, 20, 18, 30, 0, 0, time.UTC)}
		transactions.On("Latest", ctx, "w-1").Return(latest, nil).Once()
		from := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
		transactions.On("Between", ctx, "w-1", from, from.AddDate(0, 0, 1)).
			Return([]models.Transaction{*latest}, nil).Once()

		list, err := service.LastDayTransactions(ctx, "u-1", "w-1")
		require.NoError(t, err)
		assert.Len(t, list, 1)
		transactions.AssertExpectations(t)
	})

	t.Run("empty wallet", func(t *testing.T) {
		service, wallets, transactions := newWalletService()
		wallets.On("GetByID", ctx, "w-1").Return(&models.Wallet{ID: "w-1", UserID: "u-1"}, nil)
		transactions.On("Latest", ctx, "w-1").Return(nil, repositories.ErrNotFound).Once()

		_, err := service.LastDayTransactions(ctx, "u-1", "w-1")
		assert.ErrorIs(t, err, services.ErrNotFound)
	})
}

func TestWalletService_MonthlySummary(t *testing.T) {
	service, wallets, _ := newWalletService()
	ctx := context.Background()
	wallets.On("GetByID", ctx, "w-1").Return(&models.Wallet{ID: "w-1", UserID: "u-1"}, nil)

	from := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	wallets.On("SumByType", ctx, "w-1", from, to).
		Return([]models.TypeSum{{Name: models.TransactionExpense, Value: decimal.NewFromInt(30)}}, nil).Once()

	sums, err := service.MonthlySummary(ctx, "u-1", "w-1", 2024, 12)
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, models.TransactionIncome, sums[0].Name)
	assert.True(t, sums[0].Value.IsZero())
	assert.True(t, decimal.NewFromInt(30).Equal(sums[1].Value))

	_, err = service.MonthlySummary(ctx, "u-1", "w-1", 2024, 13)
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestWalletService_Calendar(t *testing.T) {
	service, wallets, _ := newWalletService()
	ctx := context.Background()
	wallets.On("GetByID", ctx, "w-1").Return(&models.Wallet{ID: "w-1", UserID: "u-1"}, nil)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	wallets.On("DailyNet", ctx, "w-1", from, to).
		Return([]models.CalendarDay{{Day: "2024-03-05", Value: decimal.NewFromInt(5)}}, nil).Once()

	days, err := service.Calendar(ctx, "u-1", "w-1", from, to)
	require.NoError(t, err)
	assert.Len(t, days, 1)

	_, err = service.Calendar(ctx, "u-1", "w-1", to, from)
	assert.ErrorIs(t, err, services.ErrValidation)
}
