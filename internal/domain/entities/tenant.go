package entities

import "time"

// DefaultBaseCurrency is used when a tenant has no settings row.
const DefaultBaseCurrency = "USD"

// Tenant is a distributor that owns rates, price lists and leads
type Tenant struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Email             string    `json:"email" db:"email"`
	NotificationPhone string    `json:"notification_phone" db:"notification_phone"`
	DefaultCurrency   string    `json:"default_currency" db:"default_currency"`
	CurrencyLocale    string    `json:"currency_locale" db:"currency_locale"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// TenantSettings holds per-tenant currency configuration
type TenantSettings struct {
	TenantID          int64     `json:"tenant_id" db:"tenant_id"`
	BaseCurrency      string    `json:"base_currency" db:"base_currency"`
	CurrencyAPISource string    `json:"currency_api_source" db:"currency_api_source"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}
