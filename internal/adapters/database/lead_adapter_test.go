package database_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medtourclinic/internal/adapters/database"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

var leadRowColumns = []string{
	"id", "tenant_id", "source", "source_id", "first_name", "last_name", "email", "phone",
	"form_data", "status", "assigned_to", "notes", "source_created_at", "created_at", "updated_at",
}

func TestLeadAdapter_Create(t *testing.T) {
	client, mock := newMockClient(t)
	sourceID := "9001"
	mock.ExpectQuery(`INSERT INTO "leads" .*'\{"procedure":"FUE"\}'.*'9001'.*RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	lead := &entities.Lead{
		TenantID: tenantID,
		Source:   entities.LeadSourceFacebook,
		SourceID: &sourceID,
		Email:    "a@example.com",
		FormData: entities.FormData{"procedure": "FUE"},
		Status:   entities.LeadStatusNew,
	}
	err := database.NewLeadAdapter(client).Create(context.Background(), lead)

	require.NoError(t, err)
	assert.Equal(t, int64(11), lead.ID)
}

func TestLeadAdapter_GetByID(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	t.Run("scans nullable columns and form data", func(t *testing.T) {
		client, mock := newMockClient(t)
		mock.ExpectQuery(`FROM "leads" WHERE \(\("id" = 11\) AND \("tenant_id" = 7\)\)`).
			WillReturnRows(sqlmock.NewRows(leadRowColumns).AddRow(
				11, tenantID, "facebook", "9001", "Ayşe", "Kaya", "", "+905321112233",
				[]byte(`{"procedure":"FUE","city":"Riyadh"}`), "assigned", 3, "", nil, created, created,
			))

		lead, err := database.NewLeadAdapter(client).GetByID(ctx, tenantID, 11)

		require.NoError(t, err)
		assert.Equal(t, "9001", *lead.SourceID)
		assert.Equal(t, int64(3), *lead.AssignedTo)
		assert.Nil(t, lead.SourceCreatedAt)
		assert.Equal(t, entities.LeadStatusAssigned, lead.Status)
		assert.Equal(t, "Riyadh", lead.FormData["city"])
	})

	t.Run("other tenant's lead is not found", func(t *testing.T) {
		client, mock := newMockClient(t)
		mock.ExpectQuery(`FROM "leads"`).WillReturnError(sql.ErrNoRows)

		_, err := database.NewLeadAdapter(client).GetByID(ctx, tenantID, 12)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestLeadAdapter_ExistsBySourceID(t *testing.T) {
	client, mock := newMockClient(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "leads" WHERE \("source_id" = '9001'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := database.NewLeadAdapter(client).ExistsBySourceID(context.Background(), "9001")

	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLeadAdapter_List_AppliesFilter(t *testing.T) {
	client, mock := newMockClient(t)
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM "leads" WHERE .*"tenant_id" = 7.*"status" = 'new'.*"source" = 'website'.*"created_at" >= .*ORDER BY "created_at" DESC, "id" DESC LIMIT 20 OFFSET 40`).
		WillReturnRows(sqlmock.NewRows(leadRowColumns))

	leads, err := database.NewLeadAdapter(client).List(context.Background(), tenantID, repositories.LeadFilter{
		Status: entities.LeadStatusNew,
		Source: entities.LeadSourceWebsite,
		Since:  &since,
		Limit:  20,
		Offset: 40,
	})

	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestLeadAdapter_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("updates one row", func(t *testing.T) {
		client, mock := newMockClient(t)
		mock.ExpectExec(`UPDATE "leads" SET .*"status"\s?=\s?'contacted'.* WHERE \(\("id" = 11\) AND \("tenant_id" = 7\)\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, database.NewLeadAdapter(client).UpdateStatus(ctx, tenantID, 11, entities.LeadStatusContacted))
	})

	t.Run("no row is not found", func(t *testing.T) {
		client, mock := newMockClient(t)
		mock.ExpectExec(`UPDATE "leads"`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := database.NewLeadAdapter(client).Assign(ctx, tenantID, 99, 3, entities.LeadStatusAssigned)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestLeadAdapter_CountByStatus(t *testing.T) {
	client, mock := newMockClient(t)
	mock.ExpectQuery(`SELECT "status", COUNT\(\*\) AS "count" FROM "leads" WHERE .* GROUP BY "status"`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("new", 3).
			AddRow("converted", 1))

	counts, err := database.NewLeadAdapter(client).CountByStatus(context.Background(), tenantID, time.Now().AddDate(0, 0, -30))

	require.NoError(t, err)
	assert.Equal(t, map[entities.LeadStatus]int{entities.LeadStatusNew: 3, entities.LeadStatusConverted: 1}, counts)
}

func TestLeadInteractionAdapter(t *testing.T) {
	ctx := context.Background()
	client, mock := newMockClient(t)
	adapter := database.NewLeadInteractionAdapter(client)

	mock.ExpectQuery(`INSERT INTO "lead_interactions" .*'status_changed'.*RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	interaction := &entities.LeadInteraction{LeadID: 11, Type: entities.InteractionStatusChanged, Description: "new → assigned", Result: "success"}
	require.NoError(t, adapter.Create(ctx, interaction))
	assert.Equal(t, int64(5), interaction.ID)

	mock.ExpectQuery(`FROM "lead_interactions" WHERE \("lead_id" = 11\) ORDER BY "created_at" DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "lead_id", "user_id", "interaction_type", "description", "result", "created_at"}).
			AddRow(5, 11, nil, "status_changed", "new → assigned", "success", time.Now()))
	list, err := adapter.ListByLead(ctx, 11)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].UserID)
	assert.Equal(t, entities.InteractionStatusChanged, list[0].Type)
}

func TestLeadInteractionAdapter_ListByTenant(t *testing.T) {
	ctx := context.Background()
	client, mock := newMockClient(t)
	adapter := database.NewLeadInteractionAdapter(client)
	columns := []string{"id", "lead_id", "user_id", "interaction_type", "description", "result", "created_at"}

	mock.ExpectQuery(`FROM "lead_interactions" AS "i" INNER JOIN "leads" AS "l" ON \("i"."lead_id" = "l"."id"\) WHERE \("l"."tenant_id" = 7\) ORDER BY "i"."created_at" ASC`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, 11, 3, "called", "", "success", time.Now()).
			AddRow(2, 12, nil, "note", "", "", time.Now()))
	all, err := adapter.ListByTenant(ctx, tenantID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(3), *all[0].UserID)

	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`"l"."tenant_id" = 7.*"l"."created_at" >= '2026-03-01T00:00:00Z'`).
		WillReturnRows(sqlmock.NewRows(columns))
	recent, err := adapter.ListByTenant(ctx, tenantID, &since)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
