package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
)

// MetaLeadSyncer defines the Meta Lead Ads operations used by the handler.
type MetaLeadSyncer interface {
	TestConnection(ctx context.Context, tenantID int64) error
	SyncTenant(ctx context.Context, tenantID int64) (*entities.MetaSyncResult, error)
}

// MetaHandler triggers Lead Ads syncs and connection checks
type MetaHandler struct {
	syncer MetaLeadSyncer
}

// NewMetaHandler creates a new Meta handler
func NewMetaHandler(syncer MetaLeadSyncer) *MetaHandler {
	return &MetaHandler{syncer: syncer}
}

// Sync handles POST /api/tenants/{tenantID}/meta/sync
func (h *MetaHandler) Sync(w http.ResponseWriter, r *http.Request) {
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

// TestConnection handles POST /api/tenants/{tenantID}/meta/test
func (h *MetaHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := h.syncer.TestConnection(r.Context(), tenantID); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "connection successful"})
}
