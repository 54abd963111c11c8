package repositoryImp

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"canaswarm/database"
	"canaswarm/entities"
	"canaswarm/pkg/storage/repository"
)

func ptr[T any](v T) *T { return &v }

func newMemory(t *testing.T) repository.Store {
	t.Helper()
	s, err := NewMemoryStore(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newSQLite(t *testing.T) repository.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "intelligence.db")
	db, err := database.OpenSQLite(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	s := NewSQLStore(db, "sqlite", path)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecommendations(fieldID, season string) *entities.FieldRecommendations {
	return &entities.FieldRecommendations{
		FieldID:       fieldID,
		Crop:          "sugarcane",
		Season:        season,
		HarvestNumber: 3,
		TotalAreaHa:   45.5,
		AnalysisDate:  "2025-06-15",
		Summary:       entities.FieldSummary{TotalEstimatedImpactBRL: 125000, AvgProfitabilityScore: 7.8},
		Zones: []entities.ManagementZone{
			{
				ZoneID:             "TEST001-Z1",
				AreaHa:             15.2,
				AvgYieldTHa:        85.5,
				ExpectedYieldTHa:   95,
				ProfitabilityScore: 8.5,
				Status:             entities.StatusWarning,
				Recommendation: entities.ZoneRecommendation{
					Action: "Apply precision irrigation", Priority: entities.PriorityHigh,
					Reason: "High yield potential with water stress detected",
				},
				FinancialImpact: entities.FinancialImpact{EstimatedGain: ptr(45000.0), ReformCost: ptr(12500.0), PaybackMonths: ptr(3)},
			},
			{
				ZoneID:             "TEST001-Z2",
				AreaHa:             30.3,
				AvgYieldTHa:        72.3,
				ExpectedYieldTHa:   78,
				ProfitabilityScore: 6.8,
				Status:             entities.StatusOptimal,
				Recommendation: entities.ZoneRecommendation{
					Action: "Standard irrigation", Priority: entities.PriorityMedium,
					Reason: "Medium yield with standard management sufficient",
				},
				FinancialImpact: entities.FinancialImpact{EstimatedLoss: ptr(1800.0)},
			},
		},
	}
}

func sampleDecision(fieldID, date string) *entities.FieldDecision {
	return &entities.FieldDecision{
		FieldID:      fieldID,
		Crop:         "sugarcane",
		Season:       "2025-2026",
		TotalAreaHa:  45.5,
		AnalysisDate: "2025-06-15",
		DecisionDate: date,
		Priority: entities.PriorityLevel{
			Level: entities.PriorityHigh, Score: 8.2,
			Reason: "Multiple zones require intervention for optimal yield",
		},
		TotalEstimatedROI: 63000,
		Zones: []entities.ZoneDecision{
			{
				ZoneID: "TEST001-Z1", AreaHa: 15.2, CurrentStatus: entities.StatusWarning,
				Action: entities.DecisionAction{
					Action: "Implement precision irrigation system", Priority: entities.PriorityHigh,
					EstimatedROI: 45000, ImplementationCost: ptr(12500.0), PaybackMonths: ptr(3),
					Justification: "High yield potential with precision irrigation needs",
				},
			},
			{
				ZoneID: "TEST001-Z2", AreaHa: 30.3, CurrentStatus: entities.StatusOptimal,
				Action: entities.DecisionAction{
					Action: "Maintain standard irrigation schedule", Priority: entities.PriorityMedium,
					EstimatedROI: 18000, Justification: "Medium yield, standard irrigation sufficient",
				},
			},
		},
		NextSteps: []string{"Implement precision irrigation in Zone 1", "Monitor progress over next 30 days"},
	}
}
