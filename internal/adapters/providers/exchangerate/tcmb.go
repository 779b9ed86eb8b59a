package exchangerate

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/providers"
)

// tcmbBase is the currency every TCMB rate is quoted against
const tcmbBase = "TRY"

type tcmbDocument struct {
	Currencies []struct {
		Code         string `xml:"CurrencyCode,attr"`
		ForexSelling string `xml:"ForexSelling"`
	} `xml:"Currency"`
}

// TCMBProvider fetches the Central Bank of the Republic of Turkey daily rates
type TCMBProvider struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
}

var _ providers.ExchangeRateProvider = (*TCMBProvider)(nil)

// NewTCMBProvider creates a TCMB provider
func NewTCMBProvider(baseURL string, timeout time.Duration) *TCMBProvider {
	return &TCMBProvider{
		client:  newRestyClient(baseURL, timeout).SetHeader("Accept", "application/xml"),
		breaker: newBreaker(entities.RateSourceTCMB),
	}
}

// Name returns the source name stored with synced rates
func (p *TCMBProvider) Name() string {
	return entities.RateSourceTCMB
}

// LatestRates ignores base: TCMB quotes "1 X = selling TRY", returned here
// as TRY→X = 1/selling. A zero selling rate is returned as 0.
func (p *TCMBProvider) LatestRates(ctx context.Context, _ string) (string, map[string]float64, error) {
	selling, err := execute(p.breaker, "tcmb", func() (map[string]float64, error) {
		resp, err := p.client.R().SetContext(ctx).Get("/kurlar/today.xml")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
		}
		return parseTCMB(resp.Body())
	})
	if err != nil {
		return "", nil, err
	}

	rates := make(map[string]float64, len(selling))
	for code, rate := range selling {
		if rate == 0 {
			rates[code] = 0
			continue
		}
		rates[code] = 1 / rate
	}
	return tcmbBase, rates, nil
}

// parseTCMB reads ForexSelling per currency code, skipping blank or invalid values
func parseTCMB(body []byte) (map[string]float64, error) {
	var doc tcmbDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse tcmb xml: %w", err)
	}

	selling := make(map[string]float64, len(doc.Currencies))
	for _, c := range doc.Currencies {
		text := strings.TrimSpace(c.ForexSelling)
		if c.Code == "" || text == "" {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			continue
		}
		selling[c.Code] = v
	}
	if len(selling) == 0 {
		return nil, fmt.Errorf("tcmb xml has no rates")
	}
	return selling, nil
}
