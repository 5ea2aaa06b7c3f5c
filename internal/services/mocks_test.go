package services_test

import (
	"context"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User, tokens ...*models.SingleUseToken) error {
	args := m.Called(ctx, user, tokens)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

// MockTokenRepository is a mock implementation of repositories.TokenRepository
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Replace(ctx context.Context, token *models.SingleUseToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) Find(ctx context.Context, kind models.TokenKind, token string) (*models.SingleUseToken, error) {
	args := m.Called(ctx, kind, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SingleUseToken), args.Error(1)
}

func (m *MockTokenRepository) Consume(ctx context.Context, kind models.TokenKind, token string, now time.Time,
	changes func(*models.SingleUseToken) map[string]interface{}) (*models.SingleUseToken, error) {
	args := m.Called(ctx, kind, token, now, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SingleUseToken), args.Error(1)
}

func (m *MockTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockWalletRepository is a mock implementation of repositories.WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetByID(ctx context.Context, id string) (*models.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetWithBalance(ctx context.Context, id string) (*models.WalletBalance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WalletBalance), args.Error(1)
}

func (m *MockWalletRepository) ListWithBalance(ctx context.Context, userID string) ([]models.WalletBalance, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.WalletBalance), args.Error(1)
}

func (m *MockWalletRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockWalletRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWalletRepository) SumByType(ctx context.Context, walletID string, from, to time.Time) ([]models.TypeSum, error) {
	args := m.Called(ctx, walletID, from, to)
	return args.Get(0).([]models.TypeSum), args.Error(1)
}

func (m *MockWalletRepository) DailyNet(ctx context.Context, walletID string, from, to time.Time) ([]models.CalendarDay, error) {
	args := m.Called(ctx, walletID, from, to)
	return args.Get(0).([]models.CalendarDay), args.Error(1)
}

func (m *MockWalletRepository) TagSummary(ctx context.Context, walletID string) ([]models.TagSummary, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).([]models.TagSummary), args.Error(1)
}

// MockTransactionRepository is a mock implementation of repositories.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) List(ctx context.Context, filter repositories.TransactionFilter) ([]models.Transaction, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Recent(ctx context.Context, walletID string, limit int) ([]models.Transaction, error) {
	args := m.Called(ctx, walletID, limit)
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Latest(ctx context.Context, walletID string) (*models.Transaction, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Between(ctx context.Context, walletID string, from, to time.Time) ([]models.Transaction, error) {
	args := m.Called(ctx, walletID, from, to)
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTagRepository is a mock implementation of repositories.TagRepository
type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) Create(ctx context.Context, tag *models.TransactionTag) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *MockTagRepository) GetByID(ctx context.Context, id string) (*models.TransactionTag, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransactionTag), args.Error(1)
}

func (m *MockTagRepository) ListByUser(ctx context.Context, userID string) ([]models.TransactionTag, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.TransactionTag), args.Error(1)
}

func (m *MockTagRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockTagRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDispatcher is a mock implementation of notify.Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) SendVerifyEmail(name, email, token string) {
	m.Called(name, email, token)
}

func (m *MockDispatcher) SendChangeEmail(name, oldEmail, token string) {
	m.Called(name, oldEmail, token)
}

func (m *MockDispatcher) SendResetPassword(name, email, token string) {
	m.Called(name, email, token)
}

func (m *MockDispatcher) SendPasswordChangedInfo(name, email string) {
	m.Called(name, email)
}
