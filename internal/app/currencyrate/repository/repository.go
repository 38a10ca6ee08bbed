package repository

import (
	"context"

	"currencyrate-service/internal/app/currencyrate/entity"

	"github.com/google/uuid"
)

// CurrencyRateRepository - интерфейс для работы с сохранёнными курсами в PostgreSQL.
// Репозиторий единолично владеет таблицей currency_rates; записи никогда не удаляются
type CurrencyRateRepository interface {
	// Upsert вставляет точку курса или перезаписывает rate по уникальному ключу
	// (base_iso, quote_iso, date, provider). created_at ставится один раз,
	// updated_at обновляется при каждой записи
	Upsert(ctx context.Context, point entity.CurrencyRatePoint) error

	// GetLatestRate возвращает самый свежий курс пары (date DESC, updated_at DESC)
	GetLatestRate(ctx context.Context, baseIso, quoteIso, providerCode string) (float64, error)

	// GetAllLatestRates возвращает для каждой котируемой валюты курс на её
	// собственную максимальную дату
	GetAllLatestRates(ctx context.Context, baseIso, providerCode string) (map[string]float64, error)

	// GetHistoricalRates возвращает страницу записей за окно [today-days, today],
	// ограниченную активными валютами. orderBy вне allow-list заменяется на date,
	// orderWay нормализуется к ASC/DESC. Пустой providerCode - без фильтра
	GetHistoricalRates(ctx context.Context, limit, offset int, orderBy, orderWay string, days int, providerCode string) ([]entity.CurrencyRate, error)

	// CountHistoricalRates считает записи под тем же фильтром для пагинации
	CountHistoricalRates(ctx context.Context, days int, providerCode string) (int64, error)
}

// CurrencyRepository - справочник валют магазина (только чтение)
type CurrencyRepository interface {
	ListActive(ctx context.Context) ([]entity.Currency, error)
	IsoCodeByID(ctx context.Context, id uuid.UUID) (string, error)
}

// ProductRepository - справочник товаров магазина (только чтение)
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
}

// SettingRepository - хранилище настроек модуля
type SettingRepository interface {
	// Get возвращает entity.ErrSettingNotFound, если ключ не задан
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// RateCacheRepository - кэш последних курсов и рассчитанных цен в Redis.
// Оба пространства ключей - чистые кэши поверх PostgreSQL: их всегда
// безопасно сбросить и пересчитать. Промах кэша - не ошибка (nil, nil)
type RateCacheRepository interface {
	GetRates(ctx context.Context, baseIso, providerCode string) (map[string]float64, error)
	SetRates(ctx context.Context, baseIso, providerCode string, rates map[string]float64) error
	DeleteRates(ctx context.Context, baseIso, providerCode string) error

	GetProductPrices(ctx context.Context, productID uuid.UUID, baseIso, providerCode string) ([]entity.CurrencyPrice, error)
	SetProductPrices(ctx context.Context, productID uuid.UUID, baseIso, providerCode string, prices []entity.CurrencyPrice) error
	DeleteProductPrices(ctx context.Context, productID uuid.UUID, baseIso, providerCode string) error
}
