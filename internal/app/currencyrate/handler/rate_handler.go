package handler

import (
	"errors"
	"net/http"
	"strconv"

	"currencyrate-service/internal/app/currencyrate/entity"
	"currencyrate-service/internal/app/currencyrate/provider"
	"currencyrate-service/internal/app/currencyrate/repository"
	"currencyrate-service/internal/app/currencyrate/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	historyPageSize   = 20
	historyWindowDays = 30
	defaultSyncDays   = 30
	defaultQuoteIso   = "EUR"
)

// RateHandler обрабатывает HTTP запросы модуля курсов валют с использованием Gin
type RateHandler struct {
	refreshService service.RefreshServiceInterface
	displayService service.DisplayServiceInterface
	rateRepo       repository.CurrencyRateRepository
	settings       repository.SettingRepository
	registry       *provider.Registry
	validator      *validator.Validate
}

// NewRateHandler создает новый обработчик курсов валют
func NewRateHandler(
	refreshService service.RefreshServiceInterface,
	displayService service.DisplayServiceInterface,
	rateRepo repository.CurrencyRateRepository,
	settings repository.SettingRepository,
	registry *provider.Registry,
) *RateHandler {
	return &RateHandler{
		refreshService: refreshService,
		displayService: displayService,
		rateRepo:       rateRepo,
		settings:       settings,
		registry:       registry,
		validator:      validator.New(),
	}
}

// GetHistory обрабатывает GET /rates/history
// Возвращает страницу сохранённых курсов за последние 30 дней
func (h *RateHandler) GetHistory(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	orderBy := c.DefaultQuery("order_by", "date")
	orderWay := c.DefaultQuery("order_way", "DESC")

	providerCode := h.displayService.ProviderCode(c.Request.Context())
	offset := (page - 1) * historyPageSize

	rates, err := h.rateRepo.GetHistoricalRates(c.Request.Context(), historyPageSize, offset, orderBy, orderWay, historyWindowDays, providerCode)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to get rate history")
		return
	}

	total, err := h.rateRepo.CountHistoricalRates(c.Request.Context(), historyWindowDays, providerCode)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to count rate history")
		return
	}

	totalPages := int(total) / historyPageSize
	if int(total)%historyPageSize > 0 {
		totalPages++
	}

	c.JSON(http.StatusOK, entity.HistoryResponse{
		Rates:        rates,
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalRecords: total,
		OrderBy:      orderBy,
		OrderWay:     orderWay,
		ProviderCode: providerCode,
	})
}

// GetProductPrices обрабатывает GET /products/:id/prices
// Возвращает цену товара во всех активных валютах магазина
func (h *RateHandler) GetProductPrices(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	prices, err := h.displayService.GetPricesForProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to calculate product prices")
		return
	}

	c.JSON(http.StatusOK, entity.ProductPricesResponse{
		ProductID: id.String(),
		Prices:    prices,
	})
}

// SyncRates обрабатывает POST /rates/sync
// Запускает пакетное обновление курсов по всем активным валютам
func (h *RateHandler) SyncRates(c *gin.Context) {
	var req entity.SyncRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	days := req.Days
	if days == 0 {
		days = defaultSyncDays
	}

	result, err := h.refreshService.RefreshAll(c.Request.Context(), req.Base, days)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAutoUpdateDisabled):
			respondError(c, http.StatusConflict, "Auto-update is disabled in settings")
		case errors.Is(err, service.ErrRefreshFailed):
			c.JSON(http.StatusBadGateway, result)
		case errors.Is(err, entity.ErrInvalidIsoCode):
			respondError(c, http.StatusBadRequest, "Invalid base currency code")
		default:
			respondError(c, http.StatusInternalServerError, "Failed to refresh currency rates")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSettings обрабатывает GET /settings
func (h *RateHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settingsResponse(c))
}

// UpdateSettings обрабатывает PUT /settings
// Меняет только переданные поля; код провайдера проверяется по реестру
func (h *RateHandler) UpdateSettings(c *gin.Context) {
	var req entity.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	ctx := c.Request.Context()

	if req.ProviderCode != "" {
		if _, err := h.registry.Get(req.ProviderCode); err != nil {
			respondError(c, http.StatusBadRequest, "Unknown rate provider")
			return
		}
		if err := h.settings.Set(ctx, entity.SettingProviderCode, req.ProviderCode); err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to save settings")
			return
		}
	}

	if req.AutoUpdate != nil {
		value := "0"
		if *req.AutoUpdate {
			value = "1"
		}
		if err := h.settings.Set(ctx, entity.SettingAutoUpdate, value); err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to save settings")
			return
		}
	}

	if req.DefaultQuoteIso != "" {
		iso, err := entity.NewCurrencyIsoCode(req.DefaultQuoteIso)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid currency code")
			return
		}
		if err := h.settings.Set(ctx, entity.SettingDefaultQuoteIso, iso.String()); err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to save settings")
			return
		}
	}

	c.JSON(http.StatusOK, h.settingsResponse(c))
}

// settingsResponse собирает текущие настройки с откатом к значениям по умолчанию
func (h *RateHandler) settingsResponse(c *gin.Context) entity.SettingsResponse {
	ctx := c.Request.Context()

	autoUpdate := false
	if value, err := h.settings.Get(ctx, entity.SettingAutoUpdate); err == nil && value == "1" {
		autoUpdate = true
	}

	quoteIso := defaultQuoteIso
	if value, err := h.settings.Get(ctx, entity.SettingDefaultQuoteIso); err == nil && value != "" {
		quoteIso = value
	}

	lastUpdate := ""
	if value, err := h.settings.Get(ctx, entity.SettingLastUpdate); err == nil {
		lastUpdate = value
	}

	return entity.SettingsResponse{
		ProviderCode:    h.displayService.ProviderCode(ctx),
		AutoUpdate:      autoUpdate,
		DefaultQuoteIso: quoteIso,
		LastUpdate:      lastUpdate,
		KnownProviders:  h.registry.Codes(),
	}
}

// respondError отправляет ответ об ошибке
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// formatValidationError форматирует ошибки валидации
func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return validationErrors[0].Field() + " validation failed"
	}
	return "Validation failed"
}
