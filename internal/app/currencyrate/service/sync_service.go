package service

import (
	"context"
	"fmt"
	"time"

	"currencyrate-service/internal/app/currencyrate/entity"
	"currencyrate-service/internal/app/currencyrate/provider"
	"currencyrate-service/internal/app/currencyrate/repository"
	"currencyrate-service/pkg/logger"
	"currencyrate-service/pkg/metrics"
)

// SyncService оркестрирует получение истории курсов у провайдера
// и её идемпотентное сохранение в репозиторий
type SyncService struct {
	factory    *provider.Factory
	rateRepo   repository.CurrencyRateRepository
	calculator PriceCalculatorInterface
}

// NewSyncService создает сервис синхронизации курсов
func NewSyncService(
	factory *provider.Factory,
	rateRepo repository.CurrencyRateRepository,
	calculator PriceCalculatorInterface,
) *SyncService {
	return &SyncService{
		factory:    factory,
		rateRepo:   rateRepo,
		calculator: calculator,
	}
}

// Sync валидирует вход, получает ленивую последовательность точек у активного
// провайдера и сохраняет каждую. Последовательность может оборваться ошибкой
// посреди перебора: уже сохранённые точки остаются в БД, ошибка уходит
// вызывающему без повторов. Кэш курсов сбрасывается целиком, если хоть одна
// точка записана либо синхронизация прошла без ошибок
func (s *SyncService) Sync(ctx context.Context, baseIso, quoteIso string, from, to time.Time) (int, error) {
	base, err := entity.NewCurrencyIsoCode(baseIso)
	if err != nil {
		return 0, err
	}
	quote, err := entity.NewCurrencyIsoCode(quoteIso)
	if err != nil {
		return 0, err
	}
	rng, err := entity.NewDateRange(from, to)
	if err != nil {
		return 0, err
	}

	prov, err := s.factory.ForCurrentConfig(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	var syncErr error

	for point, pointErr := range prov.FetchHistory(ctx, base.String(), quote.String(), rng) {
		if pointErr != nil {
			syncErr = pointErr
			break
		}

		if err := s.rateRepo.Upsert(ctx, point); err != nil {
			syncErr = fmt.Errorf("failed to persist rate point %s %s/%s: %w",
				point.Date.Format(entity.DateFormat), point.BaseIso, point.QuoteIso, err)
			break
		}
		count++
	}

	if count > 0 || syncErr == nil {
		if err := s.calculator.ClearRatesCache(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to invalidate rates cache after sync")
		}
	}

	if syncErr != nil {
		metrics.RateSyncFailures.WithLabelValues(prov.Code()).Inc()
		return count, syncErr
	}

	metrics.RatePointsSynced.WithLabelValues(prov.Code()).Add(float64(count))

	logger.Info().
		Str("provider", prov.Code()).
		Str("base", base.String()).
		Str("quote", quote.String()).
		Int("points", count).
		Msg("currency pair synchronized")

	return count, nil
}
