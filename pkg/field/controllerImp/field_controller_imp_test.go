package controllerImp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"canaswarm/entities"
	decisionImp "canaswarm/pkg/decision/serviceImp"
	fieldImp "canaswarm/pkg/field/serviceImp"
	healthImp "canaswarm/pkg/health/controllerImp"
	"canaswarm/pkg/middleware"
	"canaswarm/pkg/report"
	"canaswarm/pkg/storage/repositoryImp"
	"canaswarm/router"
)

const ingestBody = `{
  "field_id": "F001-UsinaGuarani-Piracicaba",
  "crop": "sugarcane",
  "season": "2025/26",
  "harvest_number": 3,
  "total_area_ha": 150.5,
  "analysis_date": "2026-02-20",
  "summary": {"total_estimated_impact_brl": 70000, "avg_profitability_score": 8.0},
  "zones": [
    {
      "zone_id": "Z1", "area_ha": 45.2, "avg_yield_t_ha": 70, "expected_yield_t_ha": 100,
      "profitability_score": 3, "status": "critical",
      "recommendation": {"action": "reform", "priority": "critical", "reason": "compaction"},
      "financial_impact": {"estimated_loss_brl_year": 50000, "reform_cost_brl": 15000, "payback_months": 8}
    },
    {
      "zone_id": "Z2", "area_ha": 60, "avg_yield_t_ha": 95, "expected_yield_t_ha": 100,
      "profitability_score": 9, "status": "optimal",
      "recommendation": {"action": "maintain", "priority": "low", "reason": "healthy"},
      "financial_impact": {"estimated_gain_brl_year": 20000}
    }
  ]
}`

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	store, err := repositoryImp.NewMemoryStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	now := func() time.Time { return time.Date(2026, 2, 20, 23, 15, 0, 0, time.UTC) }
	svc := fieldImp.NewFieldService(store, decisionImp.NewDecisionService(now), 0, zap.NewNop())

	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(zap.NewNop())
	return router.New(e, New(svc, zap.NewNop()), healthImp.NewHealthCtrl(svc, nil))
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) middleware.ErrorResponse {
	t.Helper()
	var body middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, rec.Code, body.StatusCode)
	assert.NotEmpty(t, body.Timestamp)
	return body
}

func TestIngestThenDecision(t *testing.T) {
	e := newServer(t)

	rec := do(e, http.MethodPost, "/api/v1/precision/ingest", ingestBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{
		"message": "Data ingested successfully",
		"field_id": "F001-UsinaGuarani-Piracicaba",
		"zones_analyzed": 2,
		"decision_generated": true,
		"priority": "critical",
		"estimated_roi_brl_year": 30000
	}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/v1/decision?field_id=F001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var d entities.FieldDecision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, entities.PriorityCritical, d.Priority.Level)
	assert.Equal(t, "2026-02-20 23:15:00", d.DecisionDate)
	require.NotEmpty(t, d.NextSteps)
	assert.True(t, strings.HasPrefix(d.NextSteps[0], "URGENT"))
}

func TestIngestErrors(t *testing.T) {
	e := newServer(t)

	rec := do(e, http.MethodPost, "/api/v1/precision/ingest", `{"field_id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	decodeError(t, rec)

	rec = do(e, http.MethodPost, "/api/v1/precision/ingest", strings.Replace(ingestBody, `"crop": "sugarcane"`, `"crop": ""`, 1))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "crop: must not be empty", decodeError(t, rec).Error)

	rec = do(e, http.MethodPost, "/api/v1/precision/ingest", strings.Replace(ingestBody, `"status": "optimal"`, `"status": "great"`, 1))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	decodeError(t, rec)
}

func TestFieldIDQueryBounds(t *testing.T) {
	e := newServer(t)
	for _, target := range []string{
		"/api/v1/decision",
		"/api/v1/decision?field_id=",
		"/api/v1/decision?field_id=" + strings.Repeat("x", 51),
	} {
		rec := do(e, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		decodeError(t, rec)
	}
}

func TestDecisionNotFound(t *testing.T) {
	e := newServer(t)
	rec := do(e, http.MethodGet, "/api/v1/decision?field_id=F404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	decodeError(t, rec)

	rec = do(e, http.MethodPost, "/api/v1/decision/recompute?field_id=F404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFieldsAndStats(t *testing.T) {
	e := newServer(t)

	rec := do(e, http.MethodGet, "/api/v1/fields", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"fields": [], "total": 0}`, rec.Body.String())

	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/api/v1/precision/ingest", ingestBody).Code)

	rec = do(e, http.MethodGet, "/api/v1/fields", "")
	var listing struct {
		Fields []entities.FieldListing `json:"fields"`
		Total  int                     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, 1, listing.Total)
	assert.Equal(t, "F001", listing.Fields[0].FieldID)

	rec = do(e, http.MethodGet, "/api/v1/stats", "")
	var st entities.StorageStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "memory", st.Backend)
	assert.EqualValues(t, 1, st.TotalDecisions)
	assert.InDelta(t, 150.5, st.TotalAreaHa, 1e-9)

	rec = do(e, http.MethodGet, "/api/v1/recommendations?field_id=F001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"season":"2025/26"`)
}

func TestHistoryEndpoint(t *testing.T) {
	e := newServer(t)
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/api/v1/precision/ingest", ingestBody).Code)

	rec := do(e, http.MethodGet, "/api/v1/decision/history?field_id=F001&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		FieldID string                      `json:"field_id"`
		History []entities.DecisionSnapshot `json:"history"`
		Total   int                         `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, "F001", body.History[0].Decision.FieldID[:4])

	rec = do(e, http.MethodGet, "/api/v1/decision/history?field_id=F001&limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportWorkbook(t *testing.T) {
	e := newServer(t)
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/api/v1/precision/ingest", ingestBody).Code)

	rec := do(e, http.MethodGet, "/api/v1/decision/export?field_id=F001-UsinaGuarani-Piracicaba", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="decision_F001.xlsx"`, rec.Header().Get(echo.HeaderContentDisposition))

	x, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer x.Close()
	rows, err := x.GetRows(report.SheetZones)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestRootAndHealth(t *testing.T) {
	e := newServer(t)

	rec := do(e, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ServiceName)

	rec = do(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}
