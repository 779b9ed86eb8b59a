package entities

import "time"

// Rate provenance values
const (
	RateSourceExchangeRateAPI = "exchangerate-api"
	RateSourceTCMB            = "tcmb"
	RateSourceManual          = "manual"
)

// SupportedCurrencies lists the ISO codes the sync job stores and the price
// formatter knows symbols for.
var SupportedCurrencies = []string{"USD", "EUR", "GBP", "TRY", "SAR", "AED", "KWD", "QAR", "BHD", "OMR", "JOD"}

// IsSupportedCurrency reports whether code is one of SupportedCurrencies
func IsSupportedCurrency(code string) bool {
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

// CurrencyRate means 1 BaseCurrency = Rate TargetCurrency for one tenant.
// At most one row exists per (TenantID, BaseCurrency, TargetCurrency).
type CurrencyRate struct {
	ID             int64     `json:"id" db:"id"`
	TenantID       int64     `json:"tenant_id" db:"tenant_id"`
	BaseCurrency   string    `json:"base_currency" db:"base_currency"`
	TargetCurrency string    `json:"target_currency" db:"target_currency"`
	Rate           float64   `json:"rate" db:"rate"`
	Source         string    `json:"source" db:"source"`
	IsManual       bool      `json:"is_manual" db:"is_manual"`
	LastUpdated    time.Time `json:"last_updated" db:"last_updated"`
}
