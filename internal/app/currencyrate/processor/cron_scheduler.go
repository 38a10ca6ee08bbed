package processor

import (
	"context"
	"errors"

	"currencyrate-service/internal/app/currencyrate/service"
	"currencyrate-service/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronScheduler периодически запускает пакетное обновление курсов
type CronScheduler struct {
	cron       *cron.Cron
	refreshSvc service.RefreshServiceInterface
	days       int
}

func NewCronScheduler(refreshSvc service.RefreshServiceInterface, days int) *CronScheduler {
	return &CronScheduler{
		cron:       cron.New(),
		refreshSvc: refreshSvc,
		days:       days,
	}
}

// Start регистрирует задачу по расписанию и сразу выполняет первый прогон.
// Пустой baseIso - обновление от базовой валюты магазина
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.runRefresh(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	logger.Info().Msg("Performing initial currency rates refresh")
	s.runRefresh(ctx)

	return nil
}

// Stop останавливает планировщик и дожидается завершения текущей задачи
func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler")
	<-s.cron.Stop().Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *CronScheduler) runRefresh(ctx context.Context) {
	result, err := s.refreshSvc.RefreshAll(ctx, "", s.days)
	if err != nil {
		if errors.Is(err, service.ErrAutoUpdateDisabled) {
			logger.Warn().Msg("Auto-update disabled, skipping scheduled refresh")
			return
		}
		logger.Error().Err(err).Msg("Scheduled currency rates refresh failed")
		return
	}

	logger.Info().
		Int("total_points", result.TotalPoints).
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Msg("Scheduled currency rates refresh completed")
}
