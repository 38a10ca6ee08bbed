package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CurrencyRate - сохранённая точка курса валюты.
// Уникальность записи определяется ключом (base_iso, quote_iso, date, provider)
type CurrencyRate struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Date      time.Time `json:"date" gorm:"type:date;not null;uniqueIndex:idx_currency_rates_key,priority:3"`
	BaseIso   string    `json:"base_iso" gorm:"type:varchar(3);not null;uniqueIndex:idx_currency_rates_key,priority:1"`
	QuoteIso  string    `json:"quote_iso" gorm:"type:varchar(3);not null;uniqueIndex:idx_currency_rates_key,priority:2"`
	Provider  string    `json:"provider" gorm:"type:varchar(50);not null;uniqueIndex:idx_currency_rates_key,priority:4"`
	Rate      float64   `json:"rate" gorm:"type:decimal(16,6);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CurrencyRate) TableName() string {
	return "currency_rates"
}

// Currency - валюта магазина. Справочные данные хоста, сервис их только читает
type Currency struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	IsoCode string    `json:"iso_code" gorm:"type:varchar(3);not null;unique"`
	Name    string    `json:"name" gorm:"type:varchar(100);not null"`
	Sign    string    `json:"sign" gorm:"type:varchar(8);not null"`
	Active  bool      `json:"active" gorm:"not null;default:true"`
}

func (Currency) TableName() string {
	return "currencies"
}

// Product - товар магазина. Справочные данные хоста, сервис их только читает
type Product struct {
	ID    uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name  string    `json:"name" gorm:"type:varchar(200);not null"`
	Price float64   `json:"price" gorm:"type:decimal(10,2);not null"`
}

func (Product) TableName() string {
	return "products"
}

// ErrSettingNotFound - значение для ключа настройки не задано
var ErrSettingNotFound = errors.New("setting not found")

// Setting - настройка модуля в формате ключ/значение
type Setting struct {
	Key       string    `json:"key" gorm:"column:setting_key;type:varchar(64);primaryKey"`
	Value     string    `json:"value" gorm:"column:setting_value;type:varchar(255);not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "currencyrate_settings"
}

// Ключи настроек модуля
const (
	SettingProviderCode    = "provider_code"
	SettingAutoUpdate      = "auto_update"
	SettingLastUpdate      = "last_update"
	SettingDefaultQuoteIso = "default_quote_iso"
	SettingBaseCurrencyID  = "base_currency_id"
)

// DefaultProviderCode - провайдер по умолчанию, если настройка не задана
const DefaultProviderCode = "nbp"

// CurrencyPrice - цена товара, пересчитанная в одну из активных валют
type CurrencyPrice struct {
	IsoCode        string  `json:"iso_code"`
	Name           string  `json:"name"`
	Sign           string  `json:"sign"`
	Price          float64 `json:"price"`
	FormattedPrice string  `json:"formatted_price"`
	IsBase         bool    `json:"is_base"`
	Rate           float64 `json:"rate"`
	BasePrice      float64 `json:"base_price"`
}

// RatesUpdatedEvent - событие для Kafka после успешного обновления курсов
type RatesUpdatedEvent struct {
	EventType    string    `json:"event_type"` // RATES_UPDATED
	BaseIso      string    `json:"base_iso"`
	ProviderCode string    `json:"provider_code"`
	PointsSynced int       `json:"points_synced"`
	Timestamp    time.Time `json:"timestamp"`
}

const EventTypeRatesUpdated = "RATES_UPDATED"

// RefreshResult - итог пакетного обновления курсов по всем активным валютам.
// Ошибка по одной валюте не прерывает пакет: неудачи копятся в Failed
type RefreshResult struct {
	BaseIso      string            `json:"base_iso"`
	ProviderCode string            `json:"provider_code"`
	TotalPoints  int               `json:"total_points"`
	Succeeded    []string          `json:"succeeded"`
	Failed       map[string]string `json:"failed"`
}

// Префиксы ключей кэша в Redis
const (
	RatesCachePrefix  = "currencyrate:rates:"
	PricesCachePrefix = "currencyrate:prices:"
)

// RatesCacheKey - ключ кэша последних курсов для пары базовая валюта + провайдер
func RatesCacheKey(baseIso, providerCode string) string {
	return RatesCachePrefix + baseIso + "_" + providerCode
}

// PricesCacheKey - ключ кэша рассчитанных цен товара
func PricesCacheKey(productID uuid.UUID, baseIso, providerCode string) string {
	return PricesCachePrefix + productID.String() + "_" + baseIso + "_" + providerCode
}
