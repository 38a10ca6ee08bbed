package service

import (
	"context"
	"errors"
	"testing"

	"currencyrate-service/internal/app/currencyrate/entity"
	"currencyrate-service/internal/app/currencyrate/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type calculatorFixture struct {
	svc          *PriceCalculatorService
	rateRepo     *mocks.MockCurrencyRateRepository
	currencyRepo *mocks.MockCurrencyRepository
	cache        *mocks.MockRateCacheRepository
	settings     *mocks.MockSettingRepository
}

func newCalculatorFixture() *calculatorFixture {
	f := &calculatorFixture{
		rateRepo:     new(mocks.MockCurrencyRateRepository),
		currencyRepo: new(mocks.MockCurrencyRepository),
		cache:        new(mocks.MockRateCacheRepository),
		settings:     new(mocks.MockSettingRepository),
	}
	f.svc = NewPriceCalculatorService(f.rateRepo, f.currencyRepo, f.cache, f.settings, NewDefaultPriceFormatter())
	return f
}

func shopCurrencies() []entity.Currency {
	return []entity.Currency{
		{ID: uuid.New(), IsoCode: "EUR", Name: "Euro", Sign: "€", Active: true},
		{ID: uuid.New(), IsoCode: "PLN", Name: "Polish Zloty", Sign: "zł", Active: true},
		{ID: uuid.New(), IsoCode: "USD", Name: "US Dollar", Sign: "$", Active: true},
	}
}

// ===================== CalculateProductPrices Tests =====================

func TestCalculateProductPrices_Computed(t *testing.T) {
	// Arrange
	f := newCalculatorFixture()
	productID := uuid.New()

	f.cache.On("GetProductPrices", mock.Anything, productID, "PLN", "nbp").Return(nil, nil)
	f.currencyRepo.On("ListActive", mock.Anything).Return(shopCurrencies(), nil)
	f.cache.On("GetRates", mock.Anything, "PLN", "nbp").Return(nil, nil)
	f.rateRepo.On("GetAllLatestRates", mock.Anything, "PLN", "nbp").
		Return(map[string]float64{"EUR": 4.0, "USD": 2.0}, nil)
	f.cache.On("SetRates", mock.Anything, "PLN", "nbp", mock.Anything).Return(nil)
	f.cache.On("SetProductPrices", mock.Anything, productID, "PLN", "nbp", mock.Anything).Return(nil)

	// Act
	prices, err := f.svc.CalculateProductPrices(context.Background(), productID, 100.0, "PLN", "nbp")

	// Assert
	require.NoError(t, err)
	require.Len(t, prices, 3)

	byIso := map[string]entity.CurrencyPrice{}
	for _, p := range prices {
		byIso[p.IsoCode] = p
	}

	// Базовая валюта: цена без конвертации, курс ровно 1.0
	base := byIso["PLN"]
	assert.True(t, base.IsBase)
	assert.Equal(t, 100.0, base.Price)
	assert.Equal(t, 1.0, base.Rate)
	assert.Equal(t, 100.0, base.BasePrice)

	// Конвертация: price = basePrice / rate
	assert.Equal(t, 25.0, byIso["EUR"].Price)
	assert.Equal(t, 4.0, byIso["EUR"].Rate)
	assert.False(t, byIso["EUR"].IsBase)
	assert.Equal(t, 50.0, byIso["USD"].Price)

	f.cache.AssertExpectations(t)
}

func TestCalculateProductPrices_CacheHit(t *testing.T) {
	// Arrange - при попадании в кэш БД не трогается
	f := newCalculatorFixture()
	productID := uuid.New()

	cached := []entity.CurrencyPrice{{IsoCode: "PLN", Price: 100.0, IsBase: true}}
	f.cache.On("GetProductPrices", mock.Anything, productID, "PLN", "nbp").Return(cached, nil)

	// Act
	prices, err := f.svc.CalculateProductPrices(context.Background(), productID, 100.0, "PLN", "nbp")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, cached, prices)
	f.currencyRepo.AssertNotCalled(t, "ListActive", mock.Anything)
	f.rateRepo.AssertNotCalled(t, "GetAllLatestRates", mock.Anything, mock.Anything, mock.Anything)
}

func TestCalculateProductPrices_SkipsCurrencyWithoutRate(t *testing.T) {
	// Arrange - для USD курса нет: валюта молча пропускается
	f := newCalculatorFixture()
	productID := uuid.New()

	f.cache.On("GetProductPrices", mock.Anything, productID, "PLN", "nbp").Return(nil, nil)
	f.currencyRepo.On("ListActive", mock.Anything).Return(shopCurrencies(), nil)
	f.cache.On("GetRates", mock.Anything, "PLN", "nbp").Return(map[string]float64{"EUR": 4.0}, nil)
	f.cache.On("SetProductPrices", mock.Anything, productID, "PLN", "nbp", mock.Anything).Return(nil)

	// Act
	prices, err := f.svc.CalculateProductPrices(context.Background(), productID, 100.0, "PLN", "nbp")

	// Assert
	require.NoError(t, err)
	require.Len(t, prices, 2)
	for _, p := range prices {
		assert.NotEqual(t, "USD", p.IsoCode)
	}
}

func TestCalculateProductPrices_FewerThanTwoCurrencies(t *testing.T) {
	// Arrange - конвертировать не во что
	f := newCalculatorFixture()
	productID := uuid.New()

	f.cache.On("GetProductPrices", mock.Anything, productID, "PLN", "nbp").Return(nil, nil)
	f.currencyRepo.On("ListActive", mock.Anything).Return(shopCurrencies()[1:2], nil)

	// Act
	prices, err := f.svc.CalculateProductPrices(context.Background(), productID, 100.0, "PLN", "nbp")

	// Assert
	require.NoError(t, err)
	assert.Empty(t, prices)
	f.rateRepo.AssertNotCalled(t, "GetAllLatestRates", mock.Anything, mock.Anything, mock.Anything)
}

func TestCalculateProductPrices_NoStoredRates(t *testing.T) {
	// Arrange - курсы ещё ни разу не синхронизировались
	f := newCalculatorFixture()
	productID := uuid.New()

	f.cache.On("GetProductPrices", mock.Anything, productID, "PLN", "nbp").Return(nil, nil)
	f.currencyRepo.On("ListActive", mock.Anything).Return(shopCurrencies(), nil)
	f.cache.On("GetRates", mock.Anything, "PLN", "nbp").Return(nil, nil)
	f.rateRepo.On("GetAllLatestRates", mock.Anything, "PLN", "nbp").Return(map[string]float64{}, nil)

	// Act
	prices, err := f.svc.CalculateProductPrices(context.Background(), productID, 100.0, "PLN", "nbp")

	// Assert
	require.NoError(t, err)
	assert.Empty(t, prices)
	f.cache.AssertNotCalled(t, "SetProductPrices", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCalculateProductPrices_DirtyRateGivesZeroPrice(t *testing.T) {
	// Arrange - неположительный курс в хранилище не должен ронять расчёт
	f := newCalculatorFixture()
	productID := uuid.New()

	f.cache.On("GetProductPrices", mock.Anything, productID, "PLN", "nbp").Return(nil, nil)
	f.currencyRepo.On("ListActive", mock.Anything).Return(shopCurrencies()[:2], nil)
	f.cache.On("GetRates", mock.Anything, "PLN", "nbp").Return(map[string]float64{"EUR": -4.0}, nil)
	f.cache.On("SetProductPrices", mock.Anything, productID, "PLN", "nbp", mock.Anything).Return(nil)

	// Act
	prices, err := f.svc.CalculateProductPrices(context.Background(), productID, 100.0, "PLN", "nbp")

	// Assert
	require.NoError(t, err)

	var eur entity.CurrencyPrice
	for _, p := range prices {
		if p.IsoCode == "EUR" {
			eur = p
		}
	}
	assert.Equal(t, 0.0, eur.Price)
}

func TestCalculateProductPrices_FormattedPrice(t *testing.T) {
	// Arrange
	f := newCalculatorFixture()
	productID := uuid.New()

	f.cache.On("GetProductPrices", mock.Anything, productID, "PLN", "nbp").Return(nil, nil)
	f.currencyRepo.On("ListActive", mock.Anything).Return(shopCurrencies()[:2], nil)
	f.cache.On("GetRates", mock.Anything, "PLN", "nbp").Return(map[string]float64{"EUR": 4.0}, nil)
	f.cache.On("SetProductPrices", mock.Anything, productID, "PLN", "nbp", mock.Anything).Return(nil)

	// Act
	prices, err := f.svc.CalculateProductPrices(context.Background(), productID, 100.0, "PLN", "nbp")

	// Assert
	require.NoError(t, err)
	for _, p := range prices {
		if p.IsoCode == "EUR" {
			assert.Equal(t, "€25.00", p.FormattedPrice)
		}
	}
}

// ===================== Cache Invalidation Tests =====================

func TestClearRatesCache_AllActiveCurrencies(t *testing.T) {
	// Arrange
	f := newCalculatorFixture()

	f.currencyRepo.On("ListActive", mock.Anything).Return(shopCurrencies(), nil)
	f.settings.On("Get", mock.Anything, entity.SettingProviderCode).Return("nbp", nil)

	f.cache.On("DeleteRates", mock.Anything, "EUR", "nbp").Return(nil)
	f.cache.On("DeleteRates", mock.Anything, "PLN", "nbp").Return(nil)
	f.cache.On("DeleteRates", mock.Anything, "USD", "nbp").Return(nil)

	// Act
	err := f.svc.ClearRatesCache(context.Background())

	// Assert
	require.NoError(t, err)
	f.cache.AssertExpectations(t)
}

func TestClearRatesCache_FirstErrorReturned(t *testing.T) {
	// Arrange - сброс продолжается по всем ключам, возвращается первая ошибка
	f := newCalculatorFixture()

	f.currencyRepo.On("ListActive", mock.Anything).Return(shopCurrencies(), nil)
	f.settings.On("Get", mock.Anything, entity.SettingProviderCode).Return("nbp", nil)

	f.cache.On("DeleteRates", mock.Anything, "EUR", "nbp").Return(errors.New("redis down"))
	f.cache.On("DeleteRates", mock.Anything, "PLN", "nbp").Return(nil)
	f.cache.On("DeleteRates", mock.Anything, "USD", "nbp").Return(nil)

	// Act
	err := f.svc.ClearRatesCache(context.Background())

	// Assert
	assert.Error(t, err)
	f.cache.AssertExpectations(t)
}

func TestClearProductCache(t *testing.T) {
	// Arrange
	f := newCalculatorFixture()
	productID := uuid.New()
	baseID := uuid.New()

	f.settings.On("Get", mock.Anything, entity.SettingBaseCurrencyID).Return(baseID.String(), nil)
	f.settings.On("Get", mock.Anything, entity.SettingProviderCode).Return("frankfurter", nil)
	f.currencyRepo.On("IsoCodeByID", mock.Anything, baseID).Return("PLN", nil)

	f.cache.On("DeleteProductPrices", mock.Anything, productID, "PLN", "frankfurter").Return(nil)

	// Act
	err := f.svc.ClearProductCache(context.Background(), productID)

	// Assert
	require.NoError(t, err)
	f.cache.AssertExpectations(t)
}

func TestClearProductCache_BaseCurrencyUnknown(t *testing.T) {
	// Arrange
	f := newCalculatorFixture()

	f.settings.On("Get", mock.Anything, entity.SettingBaseCurrencyID).Return("", entity.ErrSettingNotFound)

	// Act
	err := f.svc.ClearProductCache(context.Background(), uuid.New())

	// Assert
	assert.ErrorIs(t, err, ErrBaseCurrencyUnknown)
}
