package provider

import (
	"context"
	"fmt"
	"iter"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"currencyrate-service/internal/app/currencyrate/entity"
)

const (
	frankfurterCode         = "frankfurter"
	frankfurterBaseCurrency = "EUR"
	frankfurterName         = "Frankfurter"
)

// FrankfurterProvider получает курсы из API Frankfurter (данные ЕЦБ).
//
// API котирует base->quote, то есть "1 base = apiRate quote". Чтобы привести
// значение к семантике NBP ("1 base = rate quote" с направлением,
// ожидаемым потребителем), курс инвертируется: rate = 1 / apiRate
type FrankfurterProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewFrankfurterProvider(baseURL string, timeoutSec int) *FrankfurterProvider {
	return &FrankfurterProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
	}
}

func (p *FrankfurterProvider) Code() string {
	return frankfurterCode
}

func (p *FrankfurterProvider) BaseCurrency() string {
	return frankfurterBaseCurrency
}

type frankfurterResponse struct {
	Rates map[string]map[string]float64 `json:"rates"`
}

// FetchHistory запрашивает историю base->quote за диапазон дат одним запросом.
// Даты, для которых quote отсутствует в ответе, молча пропускаются.
// Даты перебираются по возрастанию для детерминированного порядка
func (p *FrankfurterProvider) FetchHistory(ctx context.Context, baseIso, quoteIso string, rng entity.DateRange) iter.Seq2[entity.CurrencyRatePoint, error] {
	return func(yield func(entity.CurrencyRatePoint, error) bool) {
		url := fmt.Sprintf(
			"%s/%s..%s?base=%s&symbols=%s",
			p.baseURL,
			rng.From.Format(entity.DateFormat),
			rng.To.Format(entity.DateFormat),
			strings.ToUpper(baseIso),
			strings.ToUpper(quoteIso),
		)

		var payload frankfurterResponse
		if err := fetchJSON(ctx, p.httpClient, url, &payload); err != nil {
			yield(entity.CurrencyRatePoint{}, fmt.Errorf("frankfurter: %w", err))
			return
		}

		if payload.Rates == nil {
			yield(entity.CurrencyRatePoint{}, missingFieldErr(frankfurterName, "rates"))
			return
		}

		dates := make([]string, 0, len(payload.Rates))
		for date := range payload.Rates {
			dates = append(dates, date)
		}
		sort.Strings(dates)

		quote := strings.ToUpper(quoteIso)

		for _, dateStr := range dates {
			apiRate, ok := payload.Rates[dateStr][quote]
			if !ok {
				continue
			}

			if apiRate <= 0 || math.IsInf(apiRate, 0) || math.IsNaN(apiRate) {
				yield(entity.CurrencyRatePoint{}, invalidRateErr(frankfurterName, apiRate))
				return
			}

			date, err := time.Parse(entity.DateFormat, dateStr)
			if err != nil {
				yield(entity.CurrencyRatePoint{}, fmt.Errorf("frankfurter: bad date %q: %w", dateStr, err))
				return
			}

			point := entity.CurrencyRatePoint{
				Date:         date,
				BaseIso:      baseIso,
				QuoteIso:     quoteIso,
				ProviderCode: frankfurterCode,
				Rate:         1.0 / apiRate,
			}

			if !yield(point, nil) {
				return
			}
		}
	}
}
