package entities

// Input side: zone analysis produced by the Precision Platform.

type FinancialImpact struct {
	EstimatedLoss *float64 `json:"estimated_loss_brl_year"`
	EstimatedGain *float64 `json:"estimated_gain_brl_year"`
	ReformCost    *float64 `json:"reform_cost_brl"`
	PaybackMonths *int     `json:"payback_months"`
}

type ZoneRecommendation struct {
	Action   string   `json:"action"`
	Priority Priority `json:"priority"`
	Reason   string   `json:"reason"`
}

type ManagementZone struct {
	ZoneID             string             `json:"zone_id"`
	AreaHa             float64            `json:"area_ha"`
	AvgYieldTHa        float64            `json:"avg_yield_t_ha"`
	ExpectedYieldTHa   float64            `json:"expected_yield_t_ha"`
	ProfitabilityScore float64            `json:"profitability_score"`
	Status             ZoneStatus         `json:"status"`
	Recommendation     ZoneRecommendation `json:"recommendation"`
	FinancialImpact    FinancialImpact    `json:"financial_impact"`
}

// YieldGapPct is the shortfall against expected yield, in percent.
// A zone with no expected yield has no measurable gap.
func (z ManagementZone) YieldGapPct() float64 {
	if z.ExpectedYieldTHa == 0 {
		return 0
	}
	return (z.ExpectedYieldTHa - z.AvgYieldTHa) / z.ExpectedYieldTHa * 100
}

type FieldSummary struct {
	TotalEstimatedImpactBRL float64 `json:"total_estimated_impact_brl"`
	AvgProfitabilityScore   float64 `json:"avg_profitability_score"`
}

type FieldRecommendations struct {
	FieldID       string           `json:"field_id"`
	Crop          string           `json:"crop"`
	Season        string           `json:"season"`
	HarvestNumber int              `json:"harvest_number"`
	TotalAreaHa   float64          `json:"total_area_ha"`
	AnalysisDate  string           `json:"analysis_date"` // kept verbatim, never parsed
	Summary       FieldSummary     `json:"summary"`
	Zones         []ManagementZone `json:"zones"`
}
