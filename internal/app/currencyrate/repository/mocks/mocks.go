package mocks

import (
	"context"

	"currencyrate-service/internal/app/currencyrate/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCurrencyRateRepository мок для CurrencyRateRepository
type MockCurrencyRateRepository struct {
	mock.Mock
}

func (m *MockCurrencyRateRepository) Upsert(ctx context.Context, point entity.CurrencyRatePoint) error {
	args := m.Called(ctx, point)
	return args.Error(0)
}

func (m *MockCurrencyRateRepository) GetLatestRate(ctx context.Context, baseIso, quoteIso, providerCode string) (float64, error) {
	args := m.Called(ctx, baseIso, quoteIso, providerCode)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockCurrencyRateRepository) GetAllLatestRates(ctx context.Context, baseIso, providerCode string) (map[string]float64, error) {
	args := m.Called(ctx, baseIso, providerCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

func (m *MockCurrencyRateRepository) GetHistoricalRates(ctx context.Context, limit, offset int, orderBy, orderWay string, days int, providerCode string) ([]entity.CurrencyRate, error) {
	args := m.Called(ctx, limit, offset, orderBy, orderWay, days, providerCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CurrencyRate), args.Error(1)
}

func (m *MockCurrencyRateRepository) CountHistoricalRates(ctx context.Context, days int, providerCode string) (int64, error) {
	args := m.Called(ctx, days, providerCode)
	return args.Get(0).(int64), args.Error(1)
}

// MockCurrencyRepository мок для CurrencyRepository
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) ListActive(ctx context.Context) ([]entity.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) IsoCodeByID(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// MockProductRepository мок для ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

// MockSettingRepository мок для SettingRepository
type MockSettingRepository struct {
	mock.Mock
}

func (m *MockSettingRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockSettingRepository) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MockRateCacheRepository мок для RateCacheRepository
type MockRateCacheRepository struct {
	mock.Mock
}

func (m *MockRateCacheRepository) GetRates(ctx context.Context, baseIso, providerCode string) (map[string]float64, error) {
	args := m.Called(ctx, baseIso, providerCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

func (m *MockRateCacheRepository) SetRates(ctx context.Context, baseIso, providerCode string, rates map[string]float64) error {
	args := m.Called(ctx, baseIso, providerCode, rates)
	return args.Error(0)
}

func (m *MockRateCacheRepository) DeleteRates(ctx context.Context, baseIso, providerCode string) error {
	args := m.Called(ctx, baseIso, providerCode)
	return args.Error(0)
}

func (m *MockRateCacheRepository) GetProductPrices(ctx context.Context, productID uuid.UUID, baseIso, providerCode string) ([]entity.CurrencyPrice, error) {
	args := m.Called(ctx, productID, baseIso, providerCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CurrencyPrice), args.Error(1)
}

func (m *MockRateCacheRepository) SetProductPrices(ctx context.Context, productID uuid.UUID, baseIso, providerCode string, prices []entity.CurrencyPrice) error {
	args := m.Called(ctx, productID, baseIso, providerCode, prices)
	return args.Error(0)
}

func (m *MockRateCacheRepository) DeleteProductPrices(ctx context.Context, productID uuid.UUID, baseIso, providerCode string) error {
	args := m.Called(ctx, productID, baseIso, providerCode)
	return args.Error(0)
}
