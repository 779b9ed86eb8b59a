package providers

import "context"

// ExchangeRateProvider fetches current rates from an external API
type ExchangeRateProvider interface {
	// Name is stored as the rate's source
	Name() string

	// LatestRates returns target -> rate meaning 1 base = rate target.
	// Providers with a fixed base (TCMB quotes TRY) ignore base and report it.
	LatestRates(ctx context.Context, base string) (actualBase string, rates map[string]float64, err error)
}
