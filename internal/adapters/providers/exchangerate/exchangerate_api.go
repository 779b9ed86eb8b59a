package exchangerate

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/providers"
)

type latestResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// APIProvider fetches rates from ExchangeRate-API's /v4/latest endpoint
type APIProvider struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
}

var _ providers.ExchangeRateProvider = (*APIProvider)(nil)

// NewAPIProvider creates an ExchangeRate-API provider
func NewAPIProvider(baseURL string, timeout time.Duration) *APIProvider {
	return &APIProvider{
		client:  newRestyClient(baseURL, timeout).SetHeader("Accept", "application/json"),
		breaker: newBreaker(entities.RateSourceExchangeRateAPI),
	}
}

// Name returns the source name stored with synced rates
func (p *APIProvider) Name() string {
	return entities.RateSourceExchangeRateAPI
}

// LatestRates returns the latest rates from base to every listed currency
func (p *APIProvider) LatestRates(ctx context.Context, base string) (string, map[string]float64, error) {
	type result struct {
		base  string
		rates map[string]float64
	}

	res, err := execute(p.breaker, "exchange rate api", func() (result, error) {
		var body latestResponse
		resp, err := p.client.R().
			SetContext(ctx).
			SetPathParam("base", base).
			SetResult(&body).
			Get("/v4/latest/{base}")
		if err != nil {
			return result{}, err
		}
		if resp.IsError() {
			return result{}, fmt.Errorf("unexpected status %d", resp.StatusCode())
		}
		if len(body.Rates) == 0 {
			return result{}, fmt.Errorf("response has no rates")
		}
		actual := body.Base
		if actual == "" {
			actual = base
		}
		return result{base: actual, rates: body.Rates}, nil
	})
	if err != nil {
		return "", nil, err
	}
	return res.base, res.rates, nil
}
