package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/medtourclinic/internal/application/services"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
)

// PricingService defines the rate and price operations used by the handler.
type PricingService interface {
	GetRate(ctx context.Context, tenantID int64, from, to string) (float64, bool)
	Convert(ctx context.Context, tenantID int64, amount float64, from, to string) (float64, bool)
	ConversionPreview(ctx context.Context, tenantID int64, amount float64, from string, targets []string) map[string]float64
	ListRates(ctx context.Context, tenantID int64) ([]*entities.CurrencyRate, error)
	SetManualRate(ctx context.Context, tenantID int64, base, target string, rate float64) (*entities.CurrencyRate, error)
	PriceList(ctx context.Context, tenantID int64, currency string) ([]*entities.PricedItem, error)
}

// RateSyncer runs an exchange-rate sync for one tenant.
type RateSyncer interface {
	SyncTenant(ctx context.Context, tenantID int64) (*services.RateSyncResult, error)
}

// CurrencyHandler handles currency rate, conversion and price list requests
type CurrencyHandler struct {
	pricing PricingService
	syncer  RateSyncer
}

// NewCurrencyHandler creates a new currency handler
func NewCurrencyHandler(pricing PricingService, syncer RateSyncer) *CurrencyHandler {
	return &CurrencyHandler{pricing: pricing, syncer: syncer}
}

type pairQuery struct {
	From string `json:"from" validate:"required,len=3,uppercase"`
	To   string `json:"to" validate:"required,len=3,uppercase"`
}

type manualRateRequest struct {
	BaseCurrency   string  `json:"base_currency" validate:"required,len=3,uppercase"`
	TargetCurrency string  `json:"target_currency" validate:"required,len=3,uppercase,nefield=BaseCurrency"`
	Rate           float64 `json:"rate" validate:"gt=0"`
}

func readPair(r *http.Request) (pairQuery, error) {
	q := pairQuery{
		From: strings.TrimSpace(r.URL.Query().Get("from")),
		To:   strings.TrimSpace(r.URL.Query().Get("to")),
	}
	return q, validateStruct(q)
}

// readAmount rejects NaN and infinities, which ParseFloat accepts
func readAmount(r *http.Request) (float64, bool) {
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, false
	}
	return amount, true
}

// GetRate handles GET /api/tenants/{tenantID}/currency/rate
func (h *CurrencyHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	pair, err := readPair(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	rate, ok := h.pricing.GetRate(r.Context(), tenantID, pair.From, pair.To)
	if !ok {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"from": pair.From, "to": pair.To, "found": false})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"from":  pair.From,
		"to":    pair.To,
		"rate":  rate,
		"found": true,
	})
}

// Convert handles GET /api/tenants/{tenantID}/currency/convert
func (h *CurrencyHandler) Convert(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	pair, err := readPair(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	amount, ok := readAmount(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "amount must be a finite number")
		return
	}

	converted, ok := h.pricing.Convert(r.Context(), tenantID, amount, pair.From, pair.To)
	if !ok {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"amount": amount, "from": pair.From, "to": pair.To, "found": false})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"amount":    amount,
		"from":      pair.From,
		"to":        pair.To,
		"converted": converted,
		"found":     true,
	})
}

// Preview handles GET /api/tenants/{tenantID}/currency/preview
func (h *CurrencyHandler) Preview(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	amount, ok := readAmount(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "amount must be a finite number")
		return
	}
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	if !entities.IsSupportedCurrency(from) {
		respondWithError(w, http.StatusBadRequest, "from must be a supported currency")
		return
	}

	var targets []string
	for _, t := range strings.Split(r.URL.Query().Get("to"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		targets = entities.SupportedCurrencies
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"amount":      amount,
		"from":        from,
		"conversions": h.pricing.ConversionPreview(r.Context(), tenantID, amount, from, targets),
	})
}

// ListRates handles GET /api/tenants/{tenantID}/currency/rates
func (h *CurrencyHandler) ListRates(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	rates, err := h.pricing.ListRates(r.Context(), tenantID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"rates": rates, "count": len(rates)})
}

// SetManualRate handles PUT /api/tenants/{tenantID}/currency/rates
func (h *CurrencyHandler) SetManualRate(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var req manualRateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	rate, err := h.pricing.SetManualRate(r.Context(), tenantID, req.BaseCurrency, req.TargetCurrency, req.Rate)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rate)
}

// Sync handles POST /api/tenants/{tenantID}/currency/sync
func (h *CurrencyHandler) Sync(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	result, err := h.syncer.SyncTenant(r.Context(), tenantID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// PriceList handles GET /api/tenants/{tenantID}/price-list
func (h *CurrencyHandler) PriceList(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	items, err := h.pricing.PriceList(r.Context(), tenantID, strings.TrimSpace(r.URL.Query().Get("currency")))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"items": items, "count": len(items)})
}
