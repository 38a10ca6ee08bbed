package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"currencyrate-service/internal/app/currencyrate/entity"
)

// Registry - реестр провайдеров курсов по их кодам
type Registry struct {
	providers map[string]RateProvider
}

func NewRegistry(providers ...RateProvider) *Registry {
	r := &Registry{providers: make(map[string]RateProvider)}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

func (r *Registry) Register(p RateProvider) {
	r.providers[p.Code()] = p
}

// Get возвращает провайдера по коду или ErrUnknownProvider
func (r *Registry) Get(code string) (RateProvider, error) {
	p, ok := r.providers[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, code)
	}
	return p, nil
}

// Codes возвращает отсортированный список зарегистрированных кодов
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.providers))
	for code := range r.providers {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// SettingsStore - хранилище настроек модуля (коллаборатор хоста)
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
}

// Factory выбирает активного провайдера по текущей конфигурации
type Factory struct {
	registry *Registry
	settings SettingsStore
}

func NewFactory(registry *Registry, settings SettingsStore) *Factory {
	return &Factory{registry: registry, settings: settings}
}

// ForCurrentConfig читает настройку provider_code и резолвит её через реестр.
// Незаданная настройка - не ошибка: используется провайдер по умолчанию
func (f *Factory) ForCurrentConfig(ctx context.Context) (RateProvider, error) {
	code, err := f.settings.Get(ctx, entity.SettingProviderCode)
	if err != nil {
		if !errors.Is(err, entity.ErrSettingNotFound) {
			return nil, fmt.Errorf("failed to read provider setting: %w", err)
		}
		code = ""
	}

	if code == "" {
		code = entity.DefaultProviderCode
	}

	return f.registry.Get(code)
}
