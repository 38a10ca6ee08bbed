package repository

import (
	"context"
	"errors"
	"fmt"

	"currencyrate-service/internal/app/currencyrate/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCurrencyNotFound = errors.New("currency not found")
	ErrProductNotFound  = errors.New("product not found")
)

type currencyRepository struct {
	db *gorm.DB
}

// NewCurrencyRepository создает репозиторий справочника валют.
// Таблицей владеет хост-магазин, сервис её только читает
func NewCurrencyRepository(db *gorm.DB) CurrencyRepository {
	return &currencyRepository{db: db}
}

func (r *currencyRepository) ListActive(ctx context.Context) ([]entity.Currency, error) {
	var currencies []entity.Currency
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("iso_code ASC").
		Find(&currencies).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list active currencies: %w", err)
	}

	return currencies, nil
}

func (r *currencyRepository) IsoCodeByID(ctx context.Context, id uuid.UUID) (string, error) {
	var currency entity.Currency
	err := r.db.WithContext(ctx).First(&currency, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrCurrencyNotFound
		}
		return "", fmt.Errorf("failed to get currency by id: %w", err)
	}

	return currency.IsoCode, nil
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает репозиторий справочника товаров (только чтение)
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by id: %w", err)
	}

	return &product, nil
}
