package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"currencyrate-service/internal/app/currencyrate/entity"
	"currencyrate-service/internal/app/currencyrate/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSyncService мок для SyncServiceInterface
type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) Sync(ctx context.Context, baseIso, quoteIso string, from, to time.Time) (int, error) {
	args := m.Called(ctx, baseIso, quoteIso, from, to)
	return args.Int(0), args.Error(1)
}

// MockEventPublisher мок для EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishRatesUpdated(ctx context.Context, event *entity.RatesUpdatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func activeCurrencies(isoCodes ...string) []entity.Currency {
	currencies := make([]entity.Currency, 0, len(isoCodes))
	for _, iso := range isoCodes {
		currencies = append(currencies, entity.Currency{ID: uuid.New(), IsoCode: iso, Active: true})
	}
	return currencies
}

// ===================== RefreshAll Tests =====================

func TestRefreshService_RefreshAll_Success(t *testing.T) {
	// Arrange
	syncSvc := new(MockSyncService)
	currencyRepo := new(mocks.MockCurrencyRepository)
	settings := new(mocks.MockSettingRepository)
	publisher := new(MockEventPublisher)

	settings.On("Get", mock.Anything, entity.SettingAutoUpdate).Return("1", nil)
	settings.On("Get", mock.Anything, entity.SettingProviderCode).Return("nbp", nil)
	settings.On("Set", mock.Anything, entity.SettingLastUpdate, mock.AnythingOfType("string")).Return(nil)

	currencyRepo.On("ListActive", mock.Anything).Return(activeCurrencies("EUR", "PLN", "USD"), nil)

	// Базовая валюта пропускается, синхронизируются только EUR и USD
	syncSvc.On("Sync", mock.Anything, "PLN", "EUR", mock.Anything, mock.Anything).Return(5, nil)
	syncSvc.On("Sync", mock.Anything, "PLN", "USD", mock.Anything, mock.Anything).Return(3, nil)

	publisher.On("PublishRatesUpdated", mock.Anything, mock.AnythingOfType("*entity.RatesUpdatedEvent")).Return(nil)

	svc := NewRefreshService(syncSvc, currencyRepo, settings, publisher)

	// Act
	result, err := svc.RefreshAll(context.Background(), "PLN", 14)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "PLN", result.BaseIso)
	assert.Equal(t, "nbp", result.ProviderCode)
	assert.Equal(t, 8, result.TotalPoints)
	assert.ElementsMatch(t, []string{"EUR", "USD"}, result.Succeeded)
	assert.Empty(t, result.Failed)

	syncSvc.AssertExpectations(t)
	publisher.AssertExpectations(t)
	settings.AssertExpectations(t)
}

func TestRefreshService_RefreshAll_PartialFailureContinues(t *testing.T) {
	// Arrange - ошибка по одной валюте не прерывает пакет
	syncSvc := new(MockSyncService)
	currencyRepo := new(mocks.MockCurrencyRepository)
	settings := new(mocks.MockSettingRepository)

	settings.On("Get", mock.Anything, entity.SettingAutoUpdate).Return("1", nil)
	settings.On("Get", mock.Anything, entity.SettingProviderCode).Return("nbp", nil)
	settings.On("Set", mock.Anything, entity.SettingLastUpdate, mock.AnythingOfType("string")).Return(nil)

	currencyRepo.On("ListActive", mock.Anything).Return(activeCurrencies("EUR", "PLN", "USD"), nil)

	syncSvc.On("Sync", mock.Anything, "PLN", "EUR", mock.Anything, mock.Anything).Return(0, errors.New("api timeout"))
	syncSvc.On("Sync", mock.Anything, "PLN", "USD", mock.Anything, mock.Anything).Return(7, nil)

	svc := NewRefreshService(syncSvc, currencyRepo, settings, nil)

	// Act
	result, err := svc.RefreshAll(context.Background(), "PLN", 14)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 7, result.TotalPoints)
	assert.Equal(t, []string{"USD"}, result.Succeeded)
	assert.Contains(t, result.Failed, "EUR")
	assert.Contains(t, result.Failed["EUR"], "api timeout")

	syncSvc.AssertExpectations(t)
}

func TestRefreshService_RefreshAll_AllFailed(t *testing.T) {
	// Arrange
	syncSvc := new(MockSyncService)
	currencyRepo := new(mocks.MockCurrencyRepository)
	settings := new(mocks.MockSettingRepository)

	settings.On("Get", mock.Anything, entity.SettingAutoUpdate).Return("1", nil)
	settings.On("Get", mock.Anything, entity.SettingProviderCode).Return("nbp", nil)

	currencyRepo.On("ListActive", mock.Anything).Return(activeCurrencies("EUR", "PLN"), nil)

	syncSvc.On("Sync", mock.Anything, "PLN", "EUR", mock.Anything, mock.Anything).Return(0, errors.New("api down"))

	svc := NewRefreshService(syncSvc, currencyRepo, settings, nil)

	// Act
	result, err := svc.RefreshAll(context.Background(), "PLN", 14)

	// Assert - результат с деталями возвращается вместе с ошибкой
	assert.ErrorIs(t, err, ErrRefreshFailed)
	require.NotNil(t, result)
	assert.Contains(t, result.Failed, "EUR")
	settings.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshService_RefreshAll_AutoUpdateDisabled(t *testing.T) {
	// Arrange
	syncSvc := new(MockSyncService)
	currencyRepo := new(mocks.MockCurrencyRepository)
	settings := new(mocks.MockSettingRepository)

	settings.On("Get", mock.Anything, entity.SettingAutoUpdate).Return("0", nil)

	svc := NewRefreshService(syncSvc, currencyRepo, settings, nil)

	// Act
	result, err := svc.RefreshAll(context.Background(), "PLN", 14)

	// Assert
	assert.ErrorIs(t, err, ErrAutoUpdateDisabled)
	assert.Nil(t, result)
	syncSvc.AssertNotCalled(t, "Sync", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshService_RefreshAll_AutoUpdateUnset(t *testing.T) {
	// Arrange - незаданная настройка трактуется как выключенное обновление
	syncSvc := new(MockSyncService)
	currencyRepo := new(mocks.MockCurrencyRepository)
	settings := new(mocks.MockSettingRepository)

	settings.On("Get", mock.Anything, entity.SettingAutoUpdate).Return("", entity.ErrSettingNotFound)

	svc := NewRefreshService(syncSvc, currencyRepo, settings, nil)

	// Act
	_, err := svc.RefreshAll(context.Background(), "PLN", 14)

	// Assert
	assert.ErrorIs(t, err, ErrAutoUpdateDisabled)
}

func TestRefreshService_RefreshAll_ResolvesBaseFromSettings(t *testing.T) {
	// Arrange - пустой baseIso резолвится через base_currency_id
	syncSvc := new(MockSyncService)
	currencyRepo := new(mocks.MockCurrencyRepository)
	settings := new(mocks.MockSettingRepository)

	baseID := uuid.New()
	settings.On("Get", mock.Anything, entity.SettingAutoUpdate).Return("1", nil)
	settings.On("Get", mock.Anything, entity.SettingBaseCurrencyID).Return(baseID.String(), nil)
	settings.On("Get", mock.Anything, entity.SettingProviderCode).Return("nbp", nil)
	settings.On("Set", mock.Anything, entity.SettingLastUpdate, mock.AnythingOfType("string")).Return(nil)

	currencyRepo.On("IsoCodeByID", mock.Anything, baseID).Return("PLN", nil)
	currencyRepo.On("ListActive", mock.Anything).Return(activeCurrencies("EUR", "PLN"), nil)

	syncSvc.On("Sync", mock.Anything, "PLN", "EUR", mock.Anything, mock.Anything).Return(2, nil)

	svc := NewRefreshService(syncSvc, currencyRepo, settings, nil)

	// Act
	result, err := svc.RefreshAll(context.Background(), "", 14)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "PLN", result.BaseIso)
	currencyRepo.AssertExpectations(t)
}

func TestRefreshService_RefreshAll_BaseCurrencyUnknown(t *testing.T) {
	// Arrange
	syncSvc := new(MockSyncService)
	currencyRepo := new(mocks.MockCurrencyRepository)
	settings := new(mocks.MockSettingRepository)

	settings.On("Get", mock.Anything, entity.SettingAutoUpdate).Return("1", nil)
	settings.On("Get", mock.Anything, entity.SettingBaseCurrencyID).Return("", entity.ErrSettingNotFound)

	svc := NewRefreshService(syncSvc, currencyRepo, settings, nil)

	// Act
	_, err := svc.RefreshAll(context.Background(), "", 14)

	// Assert
	assert.ErrorIs(t, err, ErrBaseCurrencyUnknown)
}

func TestRefreshService_RefreshAll_NoActiveCurrencies(t *testing.T) {
	// Arrange
	syncSvc := new(MockSyncService)
	currencyRepo := new(mocks.MockCurrencyRepository)
	settings := new(mocks.MockSettingRepository)

	settings.On("Get", mock.Anything, entity.SettingAutoUpdate).Return("1", nil)
	currencyRepo.On("ListActive", mock.Anything).Return([]entity.Currency{}, nil)

	svc := NewRefreshService(syncSvc, currencyRepo, settings, nil)

	// Act
	_, err := svc.RefreshAll(context.Background(), "PLN", 14)

	// Assert
	assert.ErrorIs(t, err, ErrNoActiveCurrencies)
}

func TestRefreshService_RefreshAll_PublishFailureNotFatal(t *testing.T) {
	// Arrange - недоступная Kafka не должна ломать обновление курсов
	syncSvc := new(MockSyncService)
	currencyRepo := new(mocks.MockCurrencyRepository)
	settings := new(mocks.MockSettingRepository)
	publisher := new(MockEventPublisher)

	settings.On("Get", mock.Anything, entity.SettingAutoUpdate).Return("1", nil)
	settings.On("Get", mock.Anything, entity.SettingProviderCode).Return("nbp", nil)
	settings.On("Set", mock.Anything, entity.SettingLastUpdate, mock.AnythingOfType("string")).Return(nil)

	currencyRepo.On("ListActive", mock.Anything).Return(activeCurrencies("EUR", "PLN"), nil)
	syncSvc.On("Sync", mock.Anything, "PLN", "EUR", mock.Anything, mock.Anything).Return(4, nil)

	publisher.On("PublishRatesUpdated", mock.Anything, mock.Anything).Return(errors.New("kafka down"))

	svc := NewRefreshService(syncSvc, currencyRepo, settings, publisher)

	// Act
	result, err := svc.RefreshAll(context.Background(), "PLN", 14)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, result.TotalPoints)
	publisher.AssertExpectations(t)
}
