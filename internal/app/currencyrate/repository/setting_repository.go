package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"currencyrate-service/internal/app/currencyrate/entity"

	"gorm.io/gorm"
)

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository создает хранилище настроек модуля
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context, key string) (string, error) {
	var setting entity.Setting
	err := r.db.WithContext(ctx).First(&setting, "setting_key = ?", key).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %q", entity.ErrSettingNotFound, key)
		}
		return "", fmt.Errorf("failed to get setting: %w", err)
	}

	return setting.Value, nil
}

func (r *settingRepository) Set(ctx context.Context, key, value string) error {
	var existing entity.Setting
	err := r.db.WithContext(ctx).First(&existing, "setting_key = ?", key).Error

	if err == nil {
		result := r.db.WithContext(ctx).
			Model(&entity.Setting{}).
			Where("setting_key = ?", key).
			Updates(map[string]interface{}{
				"setting_value": value,
				"updated_at":    time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update setting: %w", result.Error)
		}
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up setting: %w", err)
	}

	setting := entity.Setting{Key: key, Value: value}
	if err := r.db.WithContext(ctx).Create(&setting).Error; err != nil {
		return fmt.Errorf("failed to insert setting: %w", err)
	}

	return nil
}
