package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"

	"currencyrate-service/internal/app/currencyrate/entity"
)

var (
	// ErrMissingField - ответ провайдера не содержит ожидаемого поля с курсами
	ErrMissingField = errors.New("provider response: missing field")
	// ErrInvalidRate - провайдер вернул неположительный или неконечный курс
	ErrInvalidRate = errors.New("provider response: invalid rate")
	// ErrUnknownProvider - код провайдера не зарегистрирован
	ErrUnknownProvider = errors.New("unknown provider")
)

// RateProvider - внешний источник исторических курсов валют.
//
// FetchHistory выполняет один сетевой запрос и возвращает ленивую
// последовательность точек курса. Последовательность может завершиться
// ошибкой посреди перебора: потребитель обязан сохранить уже полученные
// точки и после этого обработать ошибку
type RateProvider interface {
	Code() string
	BaseCurrency() string
	FetchHistory(ctx context.Context, baseIso, quoteIso string, rng entity.DateRange) iter.Seq2[entity.CurrencyRatePoint, error]
}

func missingFieldErr(providerName, field string) error {
	return fmt.Errorf("%s API: missing %q field: %w", providerName, field, ErrMissingField)
}

func invalidRateErr(providerName string, rate float64) error {
	return fmt.Errorf("%s API: rate %v must be positive and finite: %w", providerName, rate, ErrInvalidRate)
}

// fetchJSON выполняет GET запрос и декодирует JSON ответ в target
func fetchJSON(ctx context.Context, client *http.Client, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to unmarshal API response: %w", err)
	}

	return nil
}
