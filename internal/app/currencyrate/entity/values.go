package entity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateFormat - формат дат, используемый провайдерами и БД (YYYY-MM-DD)
const DateFormat = "2006-01-02"

var (
	ErrInvalidIsoCode   = errors.New("invalid currency iso code")
	ErrInvalidDateRange = errors.New("invalid date range: from is after to")
)

var isoCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// CurrencyIsoCode - валидированный трёхбуквенный код валюты (ISO 4217)
type CurrencyIsoCode struct {
	code string
}

// NewCurrencyIsoCode нормализует строку (trim + uppercase) и проверяет формат.
// Возвращает ErrInvalidIsoCode для любого значения, не являющегося тремя латинскими буквами
func NewCurrencyIsoCode(code string) (CurrencyIsoCode, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	if !isoCodePattern.MatchString(normalized) {
		return CurrencyIsoCode{}, fmt.Errorf("%w: %q", ErrInvalidIsoCode, code)
	}

	return CurrencyIsoCode{code: normalized}, nil
}

func (c CurrencyIsoCode) String() string {
	return c.code
}

func (c CurrencyIsoCode) Equals(other CurrencyIsoCode) bool {
	return c.code == other.code
}

// DateRange - включительный диапазон календарных дат
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange проверяет инвариант from <= to (с точностью до дня).
// Нарушение - ошибка конструирования, диапазон не корректируется молча
func NewDateRange(from, to time.Time) (DateRange, error) {
	from = truncateToDay(from)
	to = truncateToDay(to)

	if from.After(to) {
		return DateRange{}, fmt.Errorf("%w: %s > %s",
			ErrInvalidDateRange, from.Format(DateFormat), to.Format(DateFormat))
	}

	return DateRange{From: from, To: to}, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CurrencyRatePoint - одно наблюдение курса: на дату Date один BaseIso стоит Rate QuoteIso
// по данным провайдера ProviderCode
type CurrencyRatePoint struct {
	Date         time.Time
	BaseIso      string
	QuoteIso     string
	ProviderCode string
	Rate         float64
}
