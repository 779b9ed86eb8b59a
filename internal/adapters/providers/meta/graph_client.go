package meta

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/providers"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

const (
	testTimeout  = 10 * time.Second
	fetchTimeout = 30 * time.Second
	leadFields   = "id,created_time,field_data"
)

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type leadsPage struct {
	Data []entities.MetaLead `json:"data"`
}

// GraphClient reads Lead Ads submissions from the Facebook Graph API
type GraphClient struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
}

var _ providers.LeadSourceProvider = (*GraphClient)(nil)

// NewGraphClient creates a Graph API client rooted at baseURL (without version)
func NewGraphClient(baseURL string) *GraphClient {
	return &GraphClient{
		client: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json").
			SetRetryCount(1).
			SetRetryWaitTime(time.Second),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "meta-graph",
			MaxRequests: 1,
			Timeout:     2 * time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			},
		}),
	}
}

// TestConnection requests the form object with the config's token
func (c *GraphClient) TestConnection(ctx context.Context, cfg *entities.MetaAPIConfig) error {
	if !cfg.HasCredentials() {
		return apperrors.NewValidationError("meta access token and form id are required")
	}

	ctx, cancel := context.WithTimeout(ctx, testTimeout)
	defer cancel()

	_, err := c.get(ctx, cfg, "/{version}/{form}", nil, nil)
	return err
}

// FetchLeads returns up to limit submissions from the config's form
func (c *GraphClient) FetchLeads(ctx context.Context, cfg *entities.MetaAPIConfig, limit int) ([]entities.MetaLead, error) {
	if !cfg.HasCredentials() {
		return nil, apperrors.NewValidationError("meta access token and form id are required")
	}
	if limit <= 0 {
		limit = 100
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	var page leadsPage
	query := map[string]string{
		"limit":  fmt.Sprintf("%d", limit),
		"fields": leadFields,
	}
	if _, err := c.get(ctx, cfg, "/{version}/{form}/leads", query, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (c *GraphClient) get(ctx context.Context, cfg *entities.MetaAPIConfig, path string, query map[string]string, result interface{}) (*resty.Response, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		var failure graphError
		req := c.client.R().
			SetContext(ctx).
			SetPathParams(map[string]string{"version": cfg.Version(), "form": cfg.FormID}).
			SetQueryParam("access_token", cfg.AccessToken).
			SetQueryParams(query).
			SetError(&failure)
		if result != nil {
			req.SetResult(result)
		}

		resp, err := req.Get(path)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			msg := failure.Error.Message
			if msg == "" {
				msg = fmt.Sprintf("status %d", resp.StatusCode())
			}
			return nil, fmt.Errorf("graph api: %s", msg)
		}
		return resp, nil
	})
	if err != nil {
		return nil, apperrors.NewExternalError("meta graph api request failed", err)
	}
	return out.(*resty.Response), nil
}
