package provider

import (
	"context"
	"fmt"
	"iter"
	"math"
	"net/http"
	"strings"
	"time"

	"currencyrate-service/internal/app/currencyrate/entity"
)

const (
	nbpCode         = "nbp"
	nbpBaseCurrency = "PLN"
	nbpName         = "NBP"
)

// NBPProvider получает курсы из API Национального банка Польши.
// API отдаёт средний курс (mid) в семантике "1 quote = mid PLN",
// значение используется без преобразований
type NBPProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewNBPProvider(baseURL string, timeoutSec int) *NBPProvider {
	return &NBPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
	}
}

func (p *NBPProvider) Code() string {
	return nbpCode
}

func (p *NBPProvider) BaseCurrency() string {
	return nbpBaseCurrency
}

type nbpRate struct {
	EffectiveDate string   `json:"effectiveDate"`
	Mid           *float64 `json:"mid"`
}

type nbpResponse struct {
	Rates []nbpRate `json:"rates"`
}

// FetchHistory запрашивает таблицу A за диапазон дат одним запросом.
// Дни без котировок (выходные, праздники) в ответе отсутствуют - это норма.
// Первая некорректная точка завершает последовательность ошибкой
func (p *NBPProvider) FetchHistory(ctx context.Context, baseIso, quoteIso string, rng entity.DateRange) iter.Seq2[entity.CurrencyRatePoint, error] {
	return func(yield func(entity.CurrencyRatePoint, error) bool) {
		url := fmt.Sprintf(
			"%s/rates/A/%s/%s/%s/?format=json",
			p.baseURL,
			strings.ToLower(quoteIso),
			rng.From.Format(entity.DateFormat),
			rng.To.Format(entity.DateFormat),
		)

		var payload nbpResponse
		if err := fetchJSON(ctx, p.httpClient, url, &payload); err != nil {
			yield(entity.CurrencyRatePoint{}, fmt.Errorf("nbp: %w", err))
			return
		}

		if payload.Rates == nil {
			yield(entity.CurrencyRatePoint{}, missingFieldErr(nbpName, "rates"))
			return
		}

		for _, row := range payload.Rates {
			if row.EffectiveDate == "" {
				yield(entity.CurrencyRatePoint{}, missingFieldErr(nbpName, "effectiveDate"))
				return
			}
			if row.Mid == nil {
				yield(entity.CurrencyRatePoint{}, missingFieldErr(nbpName, "mid"))
				return
			}

			rate := *row.Mid
			if rate <= 0 || math.IsInf(rate, 0) || math.IsNaN(rate) {
				yield(entity.CurrencyRatePoint{}, invalidRateErr(nbpName, rate))
				return
			}

			date, err := time.Parse(entity.DateFormat, row.EffectiveDate)
			if err != nil {
				yield(entity.CurrencyRatePoint{}, fmt.Errorf("nbp: bad effectiveDate %q: %w", row.EffectiveDate, err))
				return
			}

			point := entity.CurrencyRatePoint{
				Date:         date,
				BaseIso:      baseIso,
				QuoteIso:     quoteIso,
				ProviderCode: nbpCode,
				Rate:         rate,
			}

			if !yield(point, nil) {
				return
			}
		}
	}
}
