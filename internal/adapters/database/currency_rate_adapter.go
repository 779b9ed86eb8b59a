package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

const currencyRatesTable = "currency_rates"

var currencyRateColumns = []interface{}{
	"id", "tenant_id", "base_currency", "target_currency", "rate", "source", "is_manual", "last_updated",
}

// CurrencyRateAdapter implements CurrencyRateRepository
type CurrencyRateAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.CurrencyRateRepository = (*CurrencyRateAdapter)(nil)

// NewCurrencyRateAdapter creates a new currency rate adapter
func NewCurrencyRateAdapter(client *postgres.Client) *CurrencyRateAdapter {
	return &CurrencyRateAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Get retrieves the stored rate of a pair
func (a *CurrencyRateAdapter) Get(ctx context.Context, tenantID int64, base, target string) (*entities.CurrencyRate, error) {
	query, args, err := a.db.From(currencyRatesTable).
		Select(currencyRateColumns...).
		Where(goqu.Ex{
			"tenant_id":       tenantID,
			"base_currency":   base,
			"target_currency": target,
		}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var rate entities.CurrencyRate
	if err := a.client.DB().GetContext(ctx, &rate, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("currency rate %s/%s not found", base, target))
		}
		return nil, apperrors.NewInternalError("failed to get currency rate", err)
	}
	return &rate, nil
}

// ListByTenant retrieves every stored rate of a tenant
func (a *CurrencyRateAdapter) ListByTenant(ctx context.Context, tenantID int64) ([]*entities.CurrencyRate, error) {
	query, args, err := a.db.From(currencyRatesTable).
		Select(currencyRateColumns...).
		Where(goqu.Ex{"tenant_id": tenantID}).
		Order(goqu.C("base_currency").Asc(), goqu.C("target_currency").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rates := []*entities.CurrencyRate{}
	if err := a.client.DB().SelectContext(ctx, &rates, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list currency rates", err)
	}
	return rates, nil
}

// Upsert inserts or updates a pair. A non-manual rate never overwrites a
// manual row; written is false when the stored manual row was kept.
func (a *CurrencyRateAdapter) Upsert(ctx context.Context, rate *entities.CurrencyRate) (bool, error) {
	if rate == nil {
		return false, apperrors.NewInternalError("currency rate is nil", fmt.Errorf("currency rate is nil"))
	}

	record := goqu.Record{
		"tenant_id":       rate.TenantID,
		"base_currency":   rate.BaseCurrency,
		"target_currency": rate.TargetCurrency,
		"rate":            rate.Rate,
		"source":          rate.Source,
		"is_manual":       rate.IsManual,
		"last_updated":    rate.LastUpdated,
	}
	update := goqu.DoUpdate("tenant_id, base_currency, target_currency", goqu.Record{
		"rate":         rate.Rate,
		"source":       rate.Source,
		"is_manual":    rate.IsManual,
		"last_updated": rate.LastUpdated,
	})
	if !rate.IsManual {
		update = update.Where(goqu.I(currencyRatesTable + ".is_manual").IsFalse())
	}

	query, args, err := a.db.Insert(currencyRatesTable).
		Rows(record).
		OnConflict(update).
		Returning("id").
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build upsert query", err)
	}

	if err := a.client.DB().QueryRowxContext(ctx, query, args...).Scan(&rate.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, apperrors.NewInternalError("failed to upsert currency rate", err)
	}
	return true, nil
}
