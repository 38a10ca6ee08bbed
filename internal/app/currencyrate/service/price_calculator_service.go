package service

import (
	"context"
	"errors"
	"fmt"

	"currencyrate-service/internal/app/currencyrate/entity"
	"currencyrate-service/internal/app/currencyrate/repository"
	"currencyrate-service/pkg/logger"
	"currencyrate-service/pkg/metrics"

	"github.com/google/uuid"
)

// PriceCalculatorService пересчитывает базовую цену товара во все активные
// валюты магазина по последним сохранённым курсам. Результаты и курсы
// кэшируются в Redis с TTL; сервис - единственный владелец обоих
// пространств ключей кэша
type PriceCalculatorService struct {
	rateRepo     repository.CurrencyRateRepository
	currencyRepo repository.CurrencyRepository
	cache        repository.RateCacheRepository
	settings     repository.SettingRepository
	formatter    PriceFormatter
}

// NewPriceCalculatorService создает сервис расчёта цен
func NewPriceCalculatorService(
	rateRepo repository.CurrencyRateRepository,
	currencyRepo repository.CurrencyRepository,
	cache repository.RateCacheRepository,
	settings repository.SettingRepository,
	formatter PriceFormatter,
) *PriceCalculatorService {
	return &PriceCalculatorService{
		rateRepo:     rateRepo,
		currencyRepo: currencyRepo,
		cache:        cache,
		settings:     settings,
		formatter:    formatter,
	}
}

// CalculateProductPrices возвращает цену товара в каждой активной валюте.
// Кэш цен авторитетен в пределах TTL. Валюты без известного курса молча
// пропускаются; менее двух активных валют - конвертировать нечего
func (s *PriceCalculatorService) CalculateProductPrices(ctx context.Context, productID uuid.UUID, basePrice float64, baseCurrencyIso, providerCode string) ([]entity.CurrencyPrice, error) {
	cached, err := s.cache.GetProductPrices(ctx, productID, baseCurrencyIso, providerCode)
	if err != nil {
		logger.Warn().Err(err).Msg("product price cache read failed, recomputing")
	}
	if cached != nil {
		metrics.PriceCalculations.WithLabelValues("cache").Inc()
		return cached, nil
	}

	currencies, err := s.currencyRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active currencies: %w", err)
	}
	if len(currencies) < 2 {
		return []entity.CurrencyPrice{}, nil
	}

	rates, err := s.getExchangeRates(ctx, baseCurrencyIso, providerCode)
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return []entity.CurrencyPrice{}, nil
	}

	prices := s.buildPrices(currencies, basePrice, baseCurrencyIso, rates)

	if len(prices) > 0 {
		if err := s.cache.SetProductPrices(ctx, productID, baseCurrencyIso, providerCode, prices); err != nil {
			logger.Warn().Err(err).Msg("failed to cache product prices")
		}
	}

	metrics.PriceCalculations.WithLabelValues("computed").Inc()
	return prices, nil
}

// getExchangeRates возвращает последние курсы для базовой валюты,
// кэшируя их по ключу base+provider
func (s *PriceCalculatorService) getExchangeRates(ctx context.Context, baseIso, providerCode string) (map[string]float64, error) {
	cached, err := s.cache.GetRates(ctx, baseIso, providerCode)
	if err != nil {
		logger.Warn().Err(err).Msg("rates cache read failed, querying repository")
	}
	if cached != nil {
		return cached, nil
	}

	rates, err := s.rateRepo.GetAllLatestRates(ctx, baseIso, providerCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest rates: %w", err)
	}

	if len(rates) > 0 {
		if err := s.cache.SetRates(ctx, baseIso, providerCode, rates); err != nil {
			logger.Warn().Err(err).Msg("failed to cache rates")
		}
	}

	return rates, nil
}

func (s *PriceCalculatorService) buildPrices(currencies []entity.Currency, basePrice float64, baseCurrencyIso string, rates map[string]float64) []entity.CurrencyPrice {
	prices := make([]entity.CurrencyPrice, 0, len(currencies))

	for _, currency := range currencies {
		if currency.IsoCode == baseCurrencyIso {
			prices = append(prices, s.buildPrice(currency, basePrice, basePrice, 1.0, true))
			continue
		}

		rate, ok := rates[currency.IsoCode]
		if !ok {
			continue
		}

		prices = append(prices, s.buildPrice(currency, convertPrice(basePrice, rate), basePrice, rate, false))
	}

	return prices
}

func (s *PriceCalculatorService) buildPrice(currency entity.Currency, price, basePrice, rate float64, isBase bool) entity.CurrencyPrice {
	return entity.CurrencyPrice{
		IsoCode:        currency.IsoCode,
		Name:           currency.Name,
		Sign:           currency.Sign,
		Price:          price,
		FormattedPrice: s.formatter.Format(price, currency.IsoCode, currency.Sign),
		IsBase:         isBase,
		Rate:           rate,
		BasePrice:      basePrice,
	}
}

// convertPrice переводит базовую цену по курсу "1 base = rate quote".
// Неположительный курс не должен пройти валидацию провайдера, но на случай
// грязных данных даёт нулевую цену вместо деления на ноль
func convertPrice(basePrice, rate float64) float64 {
	if rate <= 0 {
		return 0.0
	}
	return basePrice / rate
}

// ClearRatesCache сбрасывает кэш курсов каждой активной валюты под текущим
// провайдером. Грубая инвалидация: вызывается после любой синхронизации
func (s *PriceCalculatorService) ClearRatesCache(ctx context.Context) error {
	currencies, err := s.currencyRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active currencies: %w", err)
	}

	providerCode := currentProviderCode(ctx, s.settings)

	var firstErr error
	for _, currency := range currencies {
		if err := s.cache.DeleteRates(ctx, currency.IsoCode, providerCode); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// ClearProductCache сбрасывает кэш цен товара для текущей базовой валюты
// и текущего провайдера
func (s *PriceCalculatorService) ClearProductCache(ctx context.Context, productID uuid.UUID) error {
	baseIso, err := s.baseCurrencyIso(ctx)
	if err != nil {
		return err
	}

	providerCode := currentProviderCode(ctx, s.settings)

	return s.cache.DeleteProductPrices(ctx, productID, baseIso, providerCode)
}

// ClearAllCache эквивалентен сбросу кэша курсов: кэш цен истекает по TTL
// и инвалидируется точечно при записи
func (s *PriceCalculatorService) ClearAllCache(ctx context.Context) error {
	return s.ClearRatesCache(ctx)
}

func (s *PriceCalculatorService) baseCurrencyIso(ctx context.Context) (string, error) {
	idValue, err := s.settings.Get(ctx, entity.SettingBaseCurrencyID)
	if err != nil {
		if errors.Is(err, entity.ErrSettingNotFound) {
			return "", ErrBaseCurrencyUnknown
		}
		return "", fmt.Errorf("failed to read base currency setting: %w", err)
	}

	id, err := uuid.Parse(idValue)
	if err != nil {
		return "", fmt.Errorf("%w: bad base_currency_id %q", ErrBaseCurrencyUnknown, idValue)
	}

	return s.currencyRepo.IsoCodeByID(ctx, id)
}
