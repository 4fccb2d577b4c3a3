package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"marketing-maas/internal/agent"
	"marketing-maas/internal/domain"
	"marketing-maas/internal/infra/memory"
	"marketing-maas/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBus struct {
	mu    sync.Mutex
	kinds []string
}

func (b *fakeBus) Send(sender, recipient, kind string, payload agent.Payload) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.kinds = append(b.kinds, kind)
	return nil
}

func (b *fakeBus) Status() agent.Status {
	return agent.Status{
		Running:     true,
		WorkerCount: 1,
		Workers:     map[string]bool{domain.TrendPredictionID: true},
		Delivered:   7,
	}
}

const createBody = `{
	"campaign_id": "summer",
	"name": "Summer Launch",
	"target_platforms": ["instagram", "tiktok"],
	"start_date": "2026-06-01T00:00:00Z",
	"end_date": "2026-08-31T00:00:00Z",
	"budget": 5000,
	"target_audience": {"age_range": [18, 35], "interests": ["tech"], "location": "EU"},
	"objectives": ["awareness"]
}`

func newTestServer(t *testing.T) (http.Handler, *fakeBus) {
	t.Helper()
	bus := &fakeBus{}
	svc := usecase.NewCampaignService(memory.NewCampaignRepository(slog.Default()), bus, 0, slog.Default())
	mux := http.NewServeMux()
	NewCampaignHandler(svc, slog.Default()).RegisterRoutes(mux)
	return CORSMiddleware(mux), bus
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCampaignHandler_Root(t *testing.T) {
	h, _ := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Marketing MaaS API","version":"1.0.0"}`, rec.Body.String())
}

func TestCampaignHandler_CreateAndGet(t *testing.T) {
	h, bus := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/campaigns", createBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Campaign summer created successfully")
	assert.Equal(t, []string{domain.KindGetTrends, domain.KindGenerateContent}, bus.kinds)

	rec = do(t, h, http.MethodGet, "/campaigns/summer", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Summer Launch", got.Name)
	assert.Equal(t, []int{18, 35}, got.TargetAudience.AgeRange)

	rec = do(t, h, http.MethodPost, "/campaigns", createBody)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCampaignHandler_CreateValidation(t *testing.T) {
	h, bus := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"campaign_id":`},
		{name: "missing fields", body: `{"campaign_id": "x"}`},
		{name: "end before start", body: strings.Replace(createBody, "2026-08-31", "2026-05-01", 1)},
		{name: "inverted age range", body: strings.Replace(createBody, "[18, 35]", "[35, 18]", 1)},
		{name: "negative budget", body: strings.Replace(createBody, "5000", "-1", 1)},
		{name: "no platforms", body: strings.Replace(createBody, `["instagram", "tiktok"]`, `[]`, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/campaigns", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
	assert.Empty(t, bus.kinds)
}

func TestCampaignHandler_List(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/campaigns", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"campaigns":[]}`, rec.Body.String())

	do(t, h, http.MethodPost, "/campaigns", createBody)
	rec = do(t, h, http.MethodGet, "/campaigns/", "")
	var list CampaignListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Campaigns, 1)
	assert.Equal(t, "summer", list.Campaigns[0].ID)
}

func TestCampaignHandler_Update(t *testing.T) {
	h, _ := newTestServer(t)
	do(t, h, http.MethodPost, "/campaigns", createBody)

	rec := do(t, h, http.MethodPatch, "/campaigns/summer", `{"budget": 7500, "objectives": ["sales"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/campaigns/summer", "")
	var got domain.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 7500.0, got.Budget)
	assert.Equal(t, []string{"sales"}, got.Objectives)
	assert.Equal(t, "Summer Launch", got.Name, "absent fields are untouched")

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPatch, "/campaigns/nope", `{"budget": 1}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPatch, "/campaigns/summer", `{"budget": -1}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPatch, "/campaigns/summer", `{"target_audience": {"age_range": [1], "interests": []}}`).Code)
}

func TestCampaignHandler_Delete(t *testing.T) {
	h, _ := newTestServer(t)
	do(t, h, http.MethodPost, "/campaigns", createBody)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/campaigns/summer", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/campaigns/summer", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/campaigns/summer", "").Code)
}

func TestCampaignHandler_Metrics(t *testing.T) {
	h, _ := newTestServer(t)
	do(t, h, http.MethodPost, "/campaigns", createBody)

	rec := do(t, h, http.MethodGet, "/campaigns/summer/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var m domain.CampaignMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, 95000, m.Metrics.Impressions)
	assert.Contains(t, m.PlatformBreakdown, "tiktok")

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/campaigns/nope/metrics", "").Code)
}

func TestCampaignHandler_SystemStatus(t *testing.T) {
	h, _ := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/system/status", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var status agent.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Running)
	assert.Equal(t, uint64(7), status.Delivered)
	assert.True(t, status.Workers[domain.TrendPredictionID])
}

func TestCampaignHandler_RoutingErrors(t *testing.T) {
	h, _ := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/jobs", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/campaigns/a/b", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPut, "/campaigns", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPost, "/system/status", "").Code)
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	h, _ := newTestServer(t)
	rec := do(t, h, http.MethodOptions, "/campaigns", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestRouteTemplate(t *testing.T) {
	assert.Equal(t, "/", routeTemplate("/"))
	assert.Equal(t, "/campaigns", routeTemplate("/campaigns/"))
	assert.Equal(t, "/campaigns/{id}", routeTemplate("/campaigns/summer"))
	assert.Equal(t, "/campaigns/{id}/metrics", routeTemplate("/campaigns/summer/metrics"))
	assert.Equal(t, "/system/status", routeTemplate("/system/status"))
	assert.Equal(t, "unmatched", routeTemplate("/favicon.ico"))
}
