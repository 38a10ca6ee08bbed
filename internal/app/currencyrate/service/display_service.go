package service

import (
	"context"
	"fmt"

	"currencyrate-service/internal/app/currencyrate/entity"
	"currencyrate-service/internal/app/currencyrate/repository"

	"github.com/google/uuid"
)

// DisplayService - тонкий адаптер между витриной хоста и калькулятором цен.
// Сам ничего не считает: резолвит товар и конфигурацию, делегирует дальше
type DisplayService struct {
	calculator   PriceCalculatorInterface
	productRepo  repository.ProductRepository
	currencyRepo repository.CurrencyRepository
	settings     repository.SettingRepository
}

func NewDisplayService(
	calculator PriceCalculatorInterface,
	productRepo repository.ProductRepository,
	currencyRepo repository.CurrencyRepository,
	settings repository.SettingRepository,
) *DisplayService {
	return &DisplayService{
		calculator:   calculator,
		productRepo:  productRepo,
		currencyRepo: currencyRepo,
		settings:     settings,
	}
}

// GetPricesForProduct возвращает цены товара во всех активных валютах.
// Товар с нулевой или отрицательной ценой не конвертируется
func (s *DisplayService) GetPricesForProduct(ctx context.Context, productID uuid.UUID) ([]entity.CurrencyPrice, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if product.Price <= 0 {
		return []entity.CurrencyPrice{}, nil
	}

	baseIso, err := s.BaseCurrencyIso(ctx)
	if err != nil {
		return nil, err
	}

	return s.calculator.CalculateProductPrices(ctx, productID, product.Price, baseIso, s.ProviderCode(ctx))
}

// BaseCurrencyIso возвращает ISO код базовой валюты магазина
func (s *DisplayService) BaseCurrencyIso(ctx context.Context) (string, error) {
	idValue, err := s.settings.Get(ctx, entity.SettingBaseCurrencyID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBaseCurrencyUnknown, err)
	}

	id, err := uuid.Parse(idValue)
	if err != nil {
		return "", fmt.Errorf("%w: bad base_currency_id %q", ErrBaseCurrencyUnknown, idValue)
	}

	return s.currencyRepo.IsoCodeByID(ctx, id)
}

// ProviderCode возвращает код активного провайдера (с откатом к значению
// по умолчанию)
func (s *DisplayService) ProviderCode(ctx context.Context) string {
	return currentProviderCode(ctx, s.settings)
}
