package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"currencyrate-service/internal/app/currencyrate/entity"
	"currencyrate-service/internal/app/currencyrate/repository"
	"currencyrate-service/pkg/logger"
	"currencyrate-service/pkg/metrics"

	"github.com/google/uuid"
)

// RefreshService выполняет пакетное обновление курсов: по одной паре
// base/quote на каждую активную валюту магазина, последовательно.
// Ошибка одной валюты не прерывает пакет
type RefreshService struct {
	syncSvc      SyncServiceInterface
	currencyRepo repository.CurrencyRepository
	settings     repository.SettingRepository
	publisher    EventPublisher
}

// NewRefreshService создает сервис пакетного обновления.
// publisher может быть nil - тогда события не публикуются
func NewRefreshService(
	syncSvc SyncServiceInterface,
	currencyRepo repository.CurrencyRepository,
	settings repository.SettingRepository,
	publisher EventPublisher,
) *RefreshService {
	return &RefreshService{
		syncSvc:      syncSvc,
		currencyRepo: currencyRepo,
		settings:     settings,
		publisher:    publisher,
	}
}

// RefreshAll синхронизирует курсы всех активных валют относительно базовой
// за окно [today-days, today]. Возвращает агрегированный результат;
// пакет без единого успеха при наличии неудач - ErrRefreshFailed
func (s *RefreshService) RefreshAll(ctx context.Context, baseIso string, days int) (*entity.RefreshResult, error) {
	start := time.Now()
	defer func() {
		metrics.RateSyncDuration.Observe(time.Since(start).Seconds())
	}()

	if err := s.ensureAutoUpdateEnabled(ctx); err != nil {
		return nil, err
	}

	if baseIso == "" {
		resolved, err := s.resolveBaseIso(ctx)
		if err != nil {
			return nil, err
		}
		baseIso = resolved
	}

	base, err := entity.NewCurrencyIsoCode(baseIso)
	if err != nil {
		return nil, err
	}

	currencies, err := s.currencyRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active currencies: %w", err)
	}
	if len(currencies) == 0 {
		return nil, ErrNoActiveCurrencies
	}

	result := &entity.RefreshResult{
		BaseIso:      base.String(),
		ProviderCode: currentProviderCode(ctx, s.settings),
		Succeeded:    []string{},
		Failed:       map[string]string{},
	}

	to := time.Now()
	from := to.AddDate(0, 0, -days)

	for _, currency := range currencies {
		if currency.IsoCode == base.String() {
			continue
		}

		count, err := s.syncSvc.Sync(ctx, base.String(), currency.IsoCode, from, to)
		result.TotalPoints += count

		if err != nil {
			result.Failed[currency.IsoCode] = err.Error()
			logger.Warn().
				Err(err).
				Str("base", base.String()).
				Str("quote", currency.IsoCode).
				Int("points_before_failure", count).
				Msg("currency pair synchronization failed, continuing batch")
			continue
		}

		result.Succeeded = append(result.Succeeded, currency.IsoCode)
	}

	if result.TotalPoints > 0 {
		s.markUpdated(ctx)
		s.publishRatesUpdated(ctx, result)
	}

	if len(result.Succeeded) == 0 && len(result.Failed) > 0 {
		return result, ErrRefreshFailed
	}

	logger.Info().
		Str("base", result.BaseIso).
		Int("total_points", result.TotalPoints).
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Msg("currency rate refresh completed")

	return result, nil
}

func (s *RefreshService) ensureAutoUpdateEnabled(ctx context.Context) error {
	value, err := s.settings.Get(ctx, entity.SettingAutoUpdate)
	if err != nil {
		if errors.Is(err, entity.ErrSettingNotFound) {
			return ErrAutoUpdateDisabled
		}
		return fmt.Errorf("failed to read auto-update setting: %w", err)
	}

	if value != "1" {
		return ErrAutoUpdateDisabled
	}

	return nil
}

// resolveBaseIso определяет базовую валюту магазина через настройку
// base_currency_id и справочник валют
func (s *RefreshService) resolveBaseIso(ctx context.Context) (string, error) {
	idValue, err := s.settings.Get(ctx, entity.SettingBaseCurrencyID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBaseCurrencyUnknown, err)
	}

	id, err := uuid.Parse(idValue)
	if err != nil {
		return "", fmt.Errorf("%w: bad base_currency_id %q", ErrBaseCurrencyUnknown, idValue)
	}

	isoCode, err := s.currencyRepo.IsoCodeByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBaseCurrencyUnknown, err)
	}

	return isoCode, nil
}

func (s *RefreshService) markUpdated(ctx context.Context) {
	if err := s.settings.Set(ctx, entity.SettingLastUpdate, time.Now().Format(time.RFC3339)); err != nil {
		logger.Warn().Err(err).Msg("failed to store last update timestamp")
	}
}

func (s *RefreshService) publishRatesUpdated(ctx context.Context, result *entity.RefreshResult) {
	if s.publisher == nil {
		return
	}

	event := &entity.RatesUpdatedEvent{
		EventType:    entity.EventTypeRatesUpdated,
		BaseIso:      result.BaseIso,
		ProviderCode: result.ProviderCode,
		PointsSynced: result.TotalPoints,
		Timestamp:    time.Now(),
	}

	if err := s.publisher.PublishRatesUpdated(ctx, event); err != nil {
		logger.Warn().Err(err).Msg("failed to publish rates updated event")
	}
}

// currentProviderCode читает код активного провайдера; незаданная настройка
// откатывается к провайдеру по умолчанию
func currentProviderCode(ctx context.Context, settings repository.SettingRepository) string {
	code, err := settings.Get(ctx, entity.SettingProviderCode)
	if err != nil || code == "" {
		return entity.DefaultProviderCode
	}
	return code
}
