package service

import (
	"context"
	"time"

	"currencyrate-service/internal/app/currencyrate/entity"

	"github.com/google/uuid"
)

// SyncServiceInterface определяет синхронизацию курсов одной валютной пары
type SyncServiceInterface interface {
	// Sync получает историю base/quote за диапазон дат у активного провайдера
	// и сохраняет каждую точку. Возвращает число сохранённых точек;
	// 0 - допустимый результат, не ошибка
	Sync(ctx context.Context, baseIso, quoteIso string, from, to time.Time) (int, error)
}

// RefreshServiceInterface определяет пакетное обновление курсов по всем
// активным валютам магазина
type RefreshServiceInterface interface {
	// RefreshAll синхронизирует пары base/quote для всех активных валют,
	// кроме базовой. Пустой baseIso - использовать базовую валюту магазина
	RefreshAll(ctx context.Context, baseIso string, days int) (*entity.RefreshResult, error)
}

// PriceCalculatorInterface определяет расчёт цен товара в активных валютах
type PriceCalculatorInterface interface {
	CalculateProductPrices(ctx context.Context, productID uuid.UUID, basePrice float64, baseCurrencyIso, providerCode string) ([]entity.CurrencyPrice, error)
	// ClearRatesCache сбрасывает кэш курсов для всех активных валют
	// под текущим провайдером
	ClearRatesCache(ctx context.Context) error
	// ClearProductCache сбрасывает кэш цен одного товара для текущей
	// базовой валюты и провайдера
	ClearProductCache(ctx context.Context, productID uuid.UUID) error
	ClearAllCache(ctx context.Context) error
}

// DisplayServiceInterface - тонкий адаптер для витрины хоста
type DisplayServiceInterface interface {
	GetPricesForProduct(ctx context.Context, productID uuid.UUID) ([]entity.CurrencyPrice, error)
	BaseCurrencyIso(ctx context.Context) (string, error)
	ProviderCode(ctx context.Context) string
}

// EventPublisher публикует событие об обновлении курсов (Kafka)
type EventPublisher interface {
	PublishRatesUpdated(ctx context.Context, event *entity.RatesUpdatedEvent) error
}

// PriceFormatter форматирует цену для отображения (коллаборатор хоста)
type PriceFormatter interface {
	Format(price float64, isoCode, sign string) string
}
