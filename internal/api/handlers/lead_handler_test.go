package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/zatekoja/medtourclinic/internal/api/handlers"
	"github.com/zatekoja/medtourclinic/internal/application/services"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

func newLeadHandler() (*handlers.LeadHandler, *MockLeadService, *MockLeadAnalytics) {
	leads := new(MockLeadService)
	analytics := new(MockLeadAnalytics)
	return handlers.NewLeadHandler(leads, analytics), leads, analytics
}

var leadPath = map[string]string{"id": "42"}

func TestLeadHandler_CreateLead(t *testing.T) {
	h, leads, _ := newLeadHandler()
	leads.On("CreateLead", mock.Anything, services.CreateLeadInput{
		TenantID:  tenantID,
		Source:    entities.LeadSourceManual,
		FirstName: "Ali",
		Phone:     "+90 555 111 22 33",
		FormData:  entities.FormData{"treatment": "dental"},
	}).Return(&entities.Lead{ID: 42, TenantID: tenantID, Status: entities.LeadStatusNew}, nil)

	w := httptest.NewRecorder()
	body := `{"first_name":"Ali","phone":"+90 555 111 22 33","form_data":{"treatment":"dental"}}`
	h.CreateLead(w, newRequest(http.MethodPost, "/x", body, nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 42.0, decodeBody(t, w)["id"])
	leads.AssertExpectations(t)
}

func TestLeadHandler_CreateLead_Validation(t *testing.T) {
	bodies := map[string]string{
		"bad email":  `{"email":"not-an-email"}`,
		"bad source": `{"source":"tiktok","phone":"1"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			h, leads, _ := newLeadHandler()
			w := httptest.NewRecorder()
			h.CreateLead(w, newRequest(http.MethodPost, "/x", body, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			leads.AssertNotCalled(t, "CreateLead")
		})
	}
}

func TestLeadHandler_ListLeads_Filter(t *testing.T) {
	h, leads, _ := newLeadHandler()
	leads.On("ListLeads", mock.Anything, tenantID, repositories.LeadFilter{
		Status: entities.LeadStatusContacted,
		Source: entities.LeadSourceFacebook,
		Limit:  20,
		Offset: 40,
	}).Return([]entities.ScoredLead{{Lead: &entities.Lead{ID: 1}, Score: 60, Level: "good"}}, nil)

	w := httptest.NewRecorder()
	h.ListLeads(w, newRequest(http.MethodGet, "/x?status=contacted&source=facebook&limit=20&offset=40", "", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decodeBody(t, w)["count"])
}

func TestLeadHandler_ListLeads_UnknownStatus(t *testing.T) {
	h, _, _ := newLeadHandler()

	w := httptest.NewRecorder()
	h.ListLeads(w, newRequest(http.MethodGet, "/x?status=lost", "", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeadHandler_GetLead_NotFound(t *testing.T) {
	h, leads, _ := newLeadHandler()
	leads.On("GetLead", mock.Anything, tenantID, int64(42)).Return(nil, apperrors.NewNotFoundError("lead not found"))

	w := httptest.NewRecorder()
	h.GetLead(w, newRequest(http.MethodGet, "/x", "", leadPath))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "lead not found", decodeBody(t, w)["error"])
}

func TestLeadHandler_UpdateStatus(t *testing.T) {
	h, leads, _ := newLeadHandler()
	userID := int64(3)
	leads.On("UpdateStatus", mock.Anything, tenantID, int64(42), "contacted", &userID).
		Return(&entities.Lead{ID: 42, Status: entities.LeadStatusContacted}, nil)

	w := httptest.NewRecorder()
	h.UpdateStatus(w, newRequest(http.MethodPatch, "/x", `{"status":"contacted","user_id":3}`, leadPath))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "contacted", decodeBody(t, w)["status"])
}

func TestLeadHandler_UpdateStatus_ServiceValidation(t *testing.T) {
	h, leads, _ := newLeadHandler()
	leads.On("UpdateStatus", mock.Anything, tenantID, int64(42), "lost", (*int64)(nil)).
		Return(nil, apperrors.NewValidationError("invalid status: lost"))

	w := httptest.NewRecorder()
	h.UpdateStatus(w, newRequest(http.MethodPatch, "/x", `{"status":"lost"}`, leadPath))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeadHandler_Assign(t *testing.T) {
	h, leads, _ := newLeadHandler()
	leads.On("Assign", mock.Anything, tenantID, int64(42), int64(9)).
		Return(&entities.Lead{ID: 42, Status: entities.LeadStatusAssigned}, nil)

	w := httptest.NewRecorder()
	h.Assign(w, newRequest(http.MethodPost, "/x", `{"user_id":9}`, leadPath))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.Assign(w, newRequest(http.MethodPost, "/x", `{}`, leadPath))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeadHandler_AddInteraction(t *testing.T) {
	h, leads, _ := newLeadHandler()
	leads.On("AddInteraction", mock.Anything, tenantID, int64(42), services.InteractionInput{
		Type:        entities.InteractionCalled,
		Description: "No answer",
	}).Return(&entities.LeadInteraction{ID: 5, LeadID: 42, Type: entities.InteractionCalled}, nil)

	w := httptest.NewRecorder()
	h.AddInteraction(w, newRequest(http.MethodPost, "/x", `{"interaction_type":"called","description":"No answer"}`, leadPath))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	h.AddInteraction(w, newRequest(http.MethodPost, "/x", `{"interaction_type":"fax"}`, leadPath))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeadHandler_TopLeads_Defaults(t *testing.T) {
	h, leads, _ := newLeadHandler()
	leads.On("TopLeads", mock.Anything, tenantID, 10, 0).Return([]entities.ScoredLead{}, nil)

	w := httptest.NewRecorder()
	h.TopLeads(w, newRequest(http.MethodGet, "/x", "", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	leads.AssertExpectations(t)
}

func TestLeadHandler_Scores(t *testing.T) {
	h, leads, _ := newLeadHandler()
	leads.On("BatchScores", mock.Anything, tenantID).
		Return(map[int64]services.LeadScore{42: {Score: 85, Level: "excellent"}}, nil)

	w := httptest.NewRecorder()
	h.Scores(w, newRequest(http.MethodGet, "/x", "", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	scores := decodeBody(t, w)["scores"].(map[string]interface{})
	assert.Equal(t, "excellent", scores["42"].(map[string]interface{})["level"])
}

func TestLeadHandler_Funnel(t *testing.T) {
	h, _, analytics := newLeadHandler()
	analytics.On("ConversionFunnel", mock.Anything, tenantID, 90).
		Return(&services.ConversionFunnel{PeriodDays: 90}, nil)
	analytics.On("ConversionFunnel", mock.Anything, tenantID, 0).
		Return(nil, apperrors.NewValidationError("days must be positive"))

	w := httptest.NewRecorder()
	h.Funnel(w, newRequest(http.MethodGet, "/x?days=90", "", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.Funnel(w, newRequest(http.MethodGet, "/x?days=0", "", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.Funnel(w, newRequest(http.MethodGet, "/x?days=many", "", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeadHandler_Export(t *testing.T) {
	h, leads, _ := newLeadHandler()
	leads.On("ListLeads", mock.Anything, tenantID, repositories.LeadFilter{}).Return([]entities.ScoredLead{
		{Lead: &entities.Lead{ID: 42, FirstName: "Ali", CreatedAt: time.Now()}, Score: 57, Level: "medium"},
	}, nil)

	w := httptest.NewRecorder()
	h.Export(w, newRequest(http.MethodGet, "/x", "", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "leads-7-")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Leads")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "57", rows[1][8])
}

func TestLeadHandler_BulkStatus(t *testing.T) {
	h, leads, _ := newLeadHandler()
	staff := int64(3)
	leads.On("BulkUpdateStatus", mock.Anything, tenantID, []int64{11, 12}, "contacted", &staff).
		Return(&services.BulkResult{Updated: 2, Errors: []string{}}, nil)

	w := httptest.NewRecorder()
	h.BulkStatus(w, newRequest(http.MethodPost, "/x", `{"lead_ids":[11,12],"status":"contacted","user_id":3}`, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, decodeBody(t, w)["updated"])
	leads.AssertExpectations(t)
}

func TestLeadHandler_BulkStatus_Validation(t *testing.T) {
	bodies := map[string]string{
		"no ids":     `{"lead_ids":[],"status":"contacted"}`,
		"no status":  `{"lead_ids":[1]}`,
		"bad user":   `{"lead_ids":[1],"status":"new","user_id":0}`,
		"not a list": `{"lead_ids":1,"status":"new"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			h, leads, _ := newLeadHandler()
			w := httptest.NewRecorder()
			h.BulkStatus(w, newRequest(http.MethodPost, "/x", body, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			leads.AssertNotCalled(t, "BulkUpdateStatus")
		})
	}
}

func TestLeadHandler_BulkAssign_NotFound(t *testing.T) {
	h, leads, _ := newLeadHandler()
	leads.On("BulkAssign", mock.Anything, tenantID, []int64{98}, int64(4), (*int64)(nil)).
		Return(nil, apperrors.NewNotFoundError("no leads found"))

	w := httptest.NewRecorder()
	h.BulkAssign(w, newRequest(http.MethodPost, "/x", `{"lead_ids":[98],"assign_to":4}`, nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeadHandler_Analytics(t *testing.T) {
	h, _, analytics := newLeadHandler()
	analytics.On("SourceBreakdown", mock.Anything, tenantID, 0).
		Return([]services.SourceStats{{Source: entities.LeadSourceFacebook, Total: 3}}, nil)
	analytics.On("StaffPerformance", mock.Anything, tenantID, 30).
		Return([]services.StaffStats{{UserID: 4, Assigned: 2}}, nil)
	analytics.On("InteractionStats", mock.Anything, tenantID, 0).
		Return(map[entities.InteractionType]services.InteractionTypeStats{entities.InteractionCalled: {Count: 2, Success: 1, Failed: 1}}, nil)
	analytics.On("ResponseTimes", mock.Anything, tenantID, 7).
		Return(&services.ResponseTimeStats{AverageHours: 1.5, SampleSize: 3}, nil)
	analytics.On("Report", mock.Anything, tenantID, "weekly").
		Return(&services.LeadReport{Period: "weekly", Days: 7}, nil)

	w := httptest.NewRecorder()
	h.Sources(w, newRequest(http.MethodGet, "/x", "", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["sources"], 1)

	w = httptest.NewRecorder()
	h.Staff(w, newRequest(http.MethodGet, "/x?days=30", "", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.InteractionStats(w, newRequest(http.MethodGet, "/x", "", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	called := decodeBody(t, w)["interactions"].(map[string]interface{})["called"].(map[string]interface{})
	assert.Equal(t, 2.0, called["count"])

	w = httptest.NewRecorder()
	h.ResponseTimes(w, newRequest(http.MethodGet, "/x?days=7", "", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.5, decodeBody(t, w)["average_hours"])

	w = httptest.NewRecorder()
	h.Report(w, newRequest(http.MethodGet, "/x?period=weekly", "", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "weekly", decodeBody(t, w)["period"])

	w = httptest.NewRecorder()
	h.Staff(w, newRequest(http.MethodGet, "/x?days=week", "", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	analytics.AssertExpectations(t)
}
