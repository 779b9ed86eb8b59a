package routes

import (
	"net/http"

	"github.com/zatekoja/medtourclinic/internal/api/handlers"
	"github.com/zatekoja/medtourclinic/internal/api/middleware"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	healthHandler   *handlers.HealthHandler
	currencyHandler *handlers.CurrencyHandler
	leadHandler     *handlers.LeadHandler
	metaHandler     *handlers.MetaHandler
	chatHandler     *handlers.ChatHandler
	wsHandler       *handlers.WebSocketHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	healthHandler *handlers.HealthHandler,
	currencyHandler *handlers.CurrencyHandler,
	leadHandler *handlers.LeadHandler,
	metaHandler *handlers.MetaHandler,
	chatHandler *handlers.ChatHandler,
	wsHandler *handlers.WebSocketHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		healthHandler:   healthHandler,
		currencyHandler: currencyHandler,
		leadHandler:     leadHandler,
		metaHandler:     metaHandler,
		chatHandler:     chatHandler,
		wsHandler:       wsHandler,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health checks
	r.mux.HandleFunc("GET /health", r.healthHandler.Live)
	r.mux.HandleFunc("GET /ready", r.healthHandler.Ready)

	// Currency and pricing
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/currency/rate", r.currencyHandler.GetRate)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/currency/convert", r.currencyHandler.Convert)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/currency/preview", r.currencyHandler.Preview)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/currency/rates", r.currencyHandler.ListRates)
	r.mux.HandleFunc("PUT /api/tenants/{tenantID}/currency/rates", r.currencyHandler.SetManualRate)
	r.mux.HandleFunc("POST /api/tenants/{tenantID}/currency/sync", r.currencyHandler.Sync)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/price-list", r.currencyHandler.PriceList)

	// Leads. Literal segments take precedence over {id}.
	r.mux.HandleFunc("POST /api/tenants/{tenantID}/leads", r.leadHandler.CreateLead)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/leads", r.leadHandler.ListLeads)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/leads/scores", r.leadHandler.Scores)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/leads/top", r.leadHandler.TopLeads)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/leads/recommendations", r.leadHandler.Recommendations)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/leads/funnel", r.leadHandler.Funnel)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/leads/stats", r.leadHandler.DailyStats)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/leads/export", r.leadHandler.Export)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/leads/analytics/sources", r.leadHandler.Sources)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/leads/analytics/staff", r.leadHandler.Staff)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/leads/analytics/interactions", r.leadHandler.InteractionStats)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/leads/analytics/response-times", r.leadHandler.ResponseTimes)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/leads/analytics/report", r.leadHandler.Report)
	r.mux.HandleFunc("POST /api/tenants/{tenantID}/leads/bulk/status", r.leadHandler.BulkStatus)
	r.mux.HandleFunc("POST /api/tenants/{tenantID}/leads/bulk/assign", r.leadHandler.BulkAssign)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/leads/{id}", r.leadHandler.GetLead)
	r.mux.HandleFunc("PATCH /api/tenants/{tenantID}/leads/{id}/status", r.leadHandler.UpdateStatus)
	r.mux.HandleFunc("POST /api/tenants/{tenantID}/leads/{id}/assign", r.leadHandler.Assign)
	r.mux.HandleFunc("POST /api/tenants/{tenantID}/leads/{id}/interactions", r.leadHandler.AddInteraction)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/leads/{id}/interactions", r.leadHandler.ListInteractions)

	// Meta Lead Ads
	r.mux.HandleFunc("POST /api/tenants/{tenantID}/meta/sync", r.metaHandler.Sync)
	r.mux.HandleFunc("POST /api/tenants/{tenantID}/meta/test", r.metaHandler.TestConnection)

	// Chat
	r.mux.HandleFunc("POST /api/tenants/{tenantID}/chat/messages", r.chatHandler.PostMessage)
	r.mux.HandleFunc("GET /api/tenants/{tenantID}/chat/patients/{patientID}/messages", r.chatHandler.History)

	// Real-time push
	r.mux.HandleFunc("GET /ws/tenants/{tenantID}", r.wsHandler.Stream)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)

	// CORS wraps everything so preflights never reach the mux
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
