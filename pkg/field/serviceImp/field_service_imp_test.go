package serviceImp

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"canaswarm/entities"
	decisionImp "canaswarm/pkg/decision/serviceImp"
	"canaswarm/pkg/field/service"
	"canaswarm/pkg/storage/repository"
	"canaswarm/pkg/storage/repositoryImp"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func ptr[T any](v T) *T { return &v }

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newService(t *testing.T) (service.FieldService, repository.Store, *clock) {
	t.Helper()
	store, err := repositoryImp.NewMemoryStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	c := &clock{t: time.Date(2026, 2, 20, 23, 15, 0, 0, time.UTC)}
	return NewFieldService(store, decisionImp.NewDecisionService(c.now), 0, zap.NewNop()), store, c
}

func fieldRecommendations() *entities.FieldRecommendations {
	return &entities.FieldRecommendations{
		FieldID:       "F001-UsinaGuarani-Piracicaba",
		Crop:          "sugarcane",
		Season:        "2025/26",
		HarvestNumber: 3,
		TotalAreaHa:   150.5,
		AnalysisDate:  "2026-02-20",
		Summary:       entities.FieldSummary{TotalEstimatedImpactBRL: 70000, AvgProfitabilityScore: 8},
		Zones: []entities.ManagementZone{
			{
				ZoneID: "Z1", AreaHa: 45.2, AvgYieldTHa: 70, ExpectedYieldTHa: 100, ProfitabilityScore: 3,
				Status:          entities.StatusCritical,
				Recommendation:  entities.ZoneRecommendation{Action: "reform", Priority: entities.PriorityCritical, Reason: "compaction"},
				FinancialImpact: entities.FinancialImpact{EstimatedLoss: ptr(50000.0), ReformCost: ptr(15000.0), PaybackMonths: ptr(8)},
			},
			{
				ZoneID: "Z2", AreaHa: 60, AvgYieldTHa: 95, ExpectedYieldTHa: 100, ProfitabilityScore: 9,
				Status:          entities.StatusOptimal,
				Recommendation:  entities.ZoneRecommendation{Action: "maintain", Priority: entities.PriorityLow, Reason: "healthy"},
				FinancialImpact: entities.FinancialImpact{EstimatedGain: ptr(20000.0)},
			},
		},
	}
}

func TestIngest(t *testing.T) {
	svc, store, _ := newService(t)

	res, err := svc.Ingest(fieldRecommendations())
	require.NoError(t, err)
	assert.Equal(t, "F001-UsinaGuarani-Piracicaba", res.FieldID)
	assert.Equal(t, 2, res.ZonesAnalyzed)
	assert.True(t, res.DecisionGenerated)
	assert.Equal(t, entities.PriorityCritical, res.Priority)
	assert.InDelta(t, 30000.0, res.EstimatedROI, 1e-9)

	d, err := store.GetDecision("F001")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-20 23:15:00", d.DecisionDate)
}

func TestIngestRejectsInvalidInput(t *testing.T) {
	svc, store, _ := newService(t)
	rec := fieldRecommendations()
	rec.Zones[1].Status = "unknown"

	_, err := svc.Ingest(rec)
	var verr *entities.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "zones[1].status", verr.Field)

	_, err = store.GetRecommendations("F001")
	assert.ErrorIs(t, err, repository.ErrNotFound, "nothing stored")
}

func TestDecisionGeneratedOnDemand(t *testing.T) {
	svc, store, _ := newService(t)
	require.NoError(t, store.StoreRecommendations(fieldRecommendations()))

	d, err := svc.Decision("F001")
	require.NoError(t, err)
	assert.Equal(t, entities.PriorityCritical, d.Priority.Level)

	stored, err := store.GetDecision("F001")
	require.NoError(t, err, "on-demand decision is persisted")
	assert.Equal(t, d, stored)
}

func TestDecisionReturnsStoredUntilRecomputed(t *testing.T) {
	svc, _, c := newService(t)
	_, err := svc.Ingest(fieldRecommendations())
	require.NoError(t, err)

	c.t = c.t.Add(time.Hour)
	d, err := svc.Decision("F001")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-20 23:15:00", d.DecisionDate)

	d, err = svc.Recompute("F001")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-21 00:15:00", d.DecisionDate)

	d, err = svc.Decision("F001")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-21 00:15:00", d.DecisionDate)
}

func TestDecisionNotFound(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Decision("F404")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Recompute("F404")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListHistoryAndStats(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Ingest(fieldRecommendations())
	require.NoError(t, err)

	fields, err := svc.ListFields()
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "F001", fields[0].FieldID)
	assert.True(t, fields[0].HasDecision)

	hist, err := svc.History("F001-UsinaGuarani", 0)
	require.NoError(t, err)
	assert.Len(t, hist, 1)

	st, err := svc.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, st.TotalFields)
	assert.EqualValues(t, 1, st.HighPriorityActions)

	rec, err := svc.Recommendations("F001")
	require.NoError(t, err)
	assert.Equal(t, "sugarcane", rec.Crop)
}
