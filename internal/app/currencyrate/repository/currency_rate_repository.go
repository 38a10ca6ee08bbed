package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"currencyrate-service/internal/app/currencyrate/entity"
	"currencyrate-service/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrRateNotFound = errors.New("currency rate not found")

const serviceName = "currencyrate-service"

// allowedOrderColumns - allow-list сортируемых колонок истории курсов.
// Всё остальное молча заменяется на date
var allowedOrderColumns = map[string]bool{
	"date":       true,
	"base_iso":   true,
	"quote_iso":  true,
	"rate":       true,
	"provider":   true,
	"updated_at": true,
}

type currencyRateRepository struct {
	db           *gorm.DB
	currencyRepo CurrencyRepository
}

// NewCurrencyRateRepository создает репозиторий курсов валют.
// currencyRepo нужен для фильтрации истории по активным валютам магазина
func NewCurrencyRateRepository(db *gorm.DB, currencyRepo CurrencyRepository) CurrencyRateRepository {
	return &currencyRateRepository{db: db, currencyRepo: currencyRepo}
}

// Upsert реализует last-write-wins по уникальному ключу точки курса
func (r *currencyRateRepository) Upsert(ctx context.Context, point entity.CurrencyRatePoint) error {
	date := point.Date.Format(entity.DateFormat)

	var existing entity.CurrencyRate
	err := r.db.WithContext(ctx).
		Where("base_iso = ? AND quote_iso = ? AND date = ? AND provider = ?",
			point.BaseIso, point.QuoteIso, date, point.ProviderCode).
		First(&existing).Error

	if err == nil {
		timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "currency_rates")
		defer timer.ObserveDuration()

		result := r.db.WithContext(ctx).
			Model(&entity.CurrencyRate{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"rate":       point.Rate,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
			return fmt.Errorf("failed to update currency rate: %w", result.Error)
		}
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return fmt.Errorf("failed to look up currency rate: %w", err)
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "currency_rates")
	defer timer.ObserveDuration()

	record := entity.CurrencyRate{
		ID:       uuid.New(),
		Date:     point.Date,
		BaseIso:  point.BaseIso,
		QuoteIso: point.QuoteIso,
		Provider: point.ProviderCode,
		Rate:     point.Rate,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to insert currency rate: %w", err)
	}

	return nil
}

func (r *currencyRateRepository) GetLatestRate(ctx context.Context, baseIso, quoteIso, providerCode string) (float64, error) {
	var record entity.CurrencyRate
	err := r.db.WithContext(ctx).
		Where("base_iso = ? AND quote_iso = ? AND provider = ?", baseIso, quoteIso, providerCode).
		Order("date DESC, updated_at DESC").
		First(&record).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrRateNotFound
		}
		return 0, fmt.Errorf("failed to get latest rate: %w", err)
	}

	return record.Rate, nil
}

// GetAllLatestRates берёт для каждой котируемой валюты запись на её максимальную
// дату: даты покрытия у разных валют могут отличаться
func (r *currencyRateRepository) GetAllLatestRates(ctx context.Context, baseIso, providerCode string) (map[string]float64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "currency_rates")
	defer timer.ObserveDuration()

	var rows []struct {
		QuoteIso string
		Rate     float64
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT cr1.quote_iso, cr1.rate
		FROM currency_rates cr1
		INNER JOIN (
			SELECT quote_iso, MAX(date) AS max_date
			FROM currency_rates
			WHERE base_iso = ? AND provider = ?
			GROUP BY quote_iso
		) cr2 ON cr1.quote_iso = cr2.quote_iso AND cr1.date = cr2.max_date
		WHERE cr1.base_iso = ? AND cr1.provider = ?`,
		baseIso, providerCode, baseIso, providerCode,
	).Scan(&rows).Error

	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get latest rates: %w", err)
	}

	rates := make(map[string]float64, len(rows))
	for _, row := range rows {
		rates[row.QuoteIso] = row.Rate
	}

	return rates, nil
}

func (r *currencyRateRepository) GetHistoricalRates(ctx context.Context, limit, offset int, orderBy, orderWay string, days int, providerCode string) ([]entity.CurrencyRate, error) {
	if !allowedOrderColumns[orderBy] {
		orderBy = "date"
	}
	if strings.ToUpper(orderWay) == "ASC" {
		orderWay = "ASC"
	} else {
		orderWay = "DESC"
	}

	isoCodes, err := r.activeIsoCodes(ctx)
	if err != nil {
		return nil, err
	}
	if len(isoCodes) == 0 {
		return []entity.CurrencyRate{}, nil
	}

	query := r.historyWindow(ctx, days, providerCode, isoCodes)

	var rates []entity.CurrencyRate
	// orderBy/orderWay прошли allow-list, конкатенация безопасна
	err = query.Order(orderBy + " " + orderWay).
		Limit(limit).
		Offset(offset).
		Find(&rates).Error

	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get historical rates: %w", err)
	}

	return rates, nil
}

func (r *currencyRateRepository) CountHistoricalRates(ctx context.Context, days int, providerCode string) (int64, error) {
	isoCodes, err := r.activeIsoCodes(ctx)
	if err != nil {
		return 0, err
	}
	if len(isoCodes) == 0 {
		return 0, nil
	}

	var count int64
	err = r.historyWindow(ctx, days, providerCode, isoCodes).
		Model(&entity.CurrencyRate{}).
		Count(&count).Error

	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return 0, fmt.Errorf("failed to count historical rates: %w", err)
	}

	return count, nil
}

// historyWindow строит общий фильтр истории: окно дат + активные валюты + провайдер
func (r *currencyRateRepository) historyWindow(ctx context.Context, days int, providerCode string, isoCodes []string) *gorm.DB {
	endDate := time.Now().Format(entity.DateFormat)
	startDate := time.Now().AddDate(0, 0, -days).Format(entity.DateFormat)

	query := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", startDate, endDate).
		Where("base_iso IN ?", isoCodes).
		Where("quote_iso IN ?", isoCodes)

	if providerCode != "" {
		query = query.Where("provider = ?", providerCode)
	}

	return query
}

func (r *currencyRateRepository) activeIsoCodes(ctx context.Context) ([]string, error) {
	currencies, err := r.currencyRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active currencies: %w", err)
	}

	isoCodes := make([]string, 0, len(currencies))
	for _, c := range currencies {
		if c.IsoCode != "" {
			isoCodes = append(isoCodes, c.IsoCode)
		}
	}

	return isoCodes, nil
}
