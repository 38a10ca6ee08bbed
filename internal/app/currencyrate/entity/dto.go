package entity

type SyncRequest struct {
	Base string `json:"base" validate:"omitempty,len=3,alpha"`
	Days int    `json:"days" validate:"omitempty,gt=0,lte=365"`
}

type UpdateSettingsRequest struct {
	ProviderCode    string `json:"provider_code" validate:"omitempty,max=50"`
	AutoUpdate      *bool  `json:"auto_update"`
	DefaultQuoteIso string `json:"default_quote_iso" validate:"omitempty,len=3,alpha"`
}

type SettingsResponse struct {
	ProviderCode    string   `json:"provider_code"`
	AutoUpdate      bool     `json:"auto_update"`
	DefaultQuoteIso string   `json:"default_quote_iso"`
	LastUpdate      string   `json:"last_update,omitempty"`
	KnownProviders  []string `json:"known_providers"`
}

type HistoryResponse struct {
	Rates        []CurrencyRate `json:"rates"`
	CurrentPage  int            `json:"current_page"`
	TotalPages   int            `json:"total_pages"`
	TotalRecords int64          `json:"total_records"`
	OrderBy      string         `json:"order_by"`
	OrderWay     string         `json:"order_way"`
	ProviderCode string         `json:"provider_code"`
}

type ProductPricesResponse struct {
	ProductID string          `json:"product_id"`
	Prices    []CurrencyPrice `json:"prices"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
