package service

import "errors"

var (
	// ErrAutoUpdateDisabled - пакетное обновление запрещено настройкой auto_update
	ErrAutoUpdateDisabled = errors.New("currency rate auto-update is disabled")

	// ErrNoActiveCurrencies - в магазине нет активных валют
	ErrNoActiveCurrencies = errors.New("no active currencies found")

	// ErrRefreshFailed - ни одна валютная пара не синхронизировалась
	ErrRefreshFailed = errors.New("currency rate refresh failed for all currencies")

	// ErrBaseCurrencyUnknown - базовую валюту магазина определить не удалось
	ErrBaseCurrencyUnknown = errors.New("could not determine base currency")
)
