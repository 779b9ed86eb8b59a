package entities

import "time"

// PriceListItem is a treatment or service a tenant sells, priced in its own currency
type PriceListItem struct {
	ID           int64     `json:"id" db:"id"`
	TenantID     int64     `json:"tenant_id" db:"tenant_id"`
	Category     string    `json:"category" db:"category"`
	ServiceCode  string    `json:"service_code" db:"service_code"`
	NameTR       string    `json:"name_tr" db:"name_tr"`
	NameEN       string    `json:"name_en" db:"name_en"`
	NameAR       string    `json:"name_ar" db:"name_ar"`
	BasePrice    float64   `json:"base_price" db:"base_price"`
	Currency     string    `json:"currency" db:"currency"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	IsFeatured   bool      `json:"is_featured" db:"is_featured"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PricedItem is a PriceListItem with its price resolved into a display currency
type PricedItem struct {
	PriceListItem
	DisplayCurrency string  `json:"display_currency"`
	DisplayPrice    float64 `json:"display_price"`
	Converted       bool    `json:"converted"`
	Formatted       string  `json:"formatted"`
}
