package entities

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// ValidationError names the first field that broke a constraint.
type ValidationError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Constraint)
}

func invalid(field, constraint string) error {
	return &ValidationError{Field: field, Constraint: constraint}
}

const maxFieldIDLen = 50

// Validate checks a recommendations payload before it reaches storage or
// the decision rules. It stops at the first violation.
func (r *FieldRecommendations) Validate() error {
	if r == nil {
		return invalid("recommendations", "must be present")
	}
	switch {
	case strings.TrimSpace(r.FieldID) == "":
		return invalid("field_id", "must not be empty")
	case utf8.RuneCountInString(r.FieldID) > maxFieldIDLen:
		return invalid("field_id", fmt.Sprintf("must be at most %d characters", maxFieldIDLen))
	case strings.TrimSpace(NormalizeFieldID(r.FieldID)) == "":
		return invalid("field_id", "must not start with "+FieldIDSeparator)
	case strings.TrimSpace(r.Crop) == "":
		return invalid("crop", "must not be empty")
	case strings.TrimSpace(r.Season) == "":
		return invalid("season", "must not be empty")
	case r.HarvestNumber < 0:
		return invalid("harvest_number", "must be >= 0")
	case !finite(r.TotalAreaHa) || r.TotalAreaHa < 0:
		return invalid("total_area_ha", "must be a finite number >= 0")
	case !finite(r.Summary.TotalEstimatedImpactBRL):
		return invalid("summary.total_estimated_impact_brl", "must be a finite number")
	case !finite(r.Summary.AvgProfitabilityScore):
		return invalid("summary.avg_profitability_score", "must be a finite number")
	}

	seen := make(map[string]bool, len(r.Zones))
	for i, z := range r.Zones {
		if err := z.validate(fmt.Sprintf("zones[%d]", i)); err != nil {
			return err
		}
		if seen[z.ZoneID] {
			return invalid(fmt.Sprintf("zones[%d].zone_id", i), "must be unique within the field")
		}
		seen[z.ZoneID] = true
	}
	return nil
}

func (z *ManagementZone) validate(path string) error {
	switch {
	case strings.TrimSpace(z.ZoneID) == "":
		return invalid(path+".zone_id", "must not be empty")
	case !finite(z.AreaHa) || z.AreaHa <= 0:
		return invalid(path+".area_ha", "must be > 0")
	case !finite(z.AvgYieldTHa) || z.AvgYieldTHa < 0:
		return invalid(path+".avg_yield_t_ha", "must be >= 0")
	case !finite(z.ExpectedYieldTHa) || z.ExpectedYieldTHa < 0:
		return invalid(path+".expected_yield_t_ha", "must be >= 0")
	case !finite(z.ProfitabilityScore):
		return invalid(path+".profitability_score", "must be a finite number")
	case !z.Status.Valid():
		return invalid(path+".status", "must be one of optimal, warning, critical")
	case strings.TrimSpace(z.Recommendation.Action) == "":
		return invalid(path+".recommendation.action", "must not be empty")
	case !z.Recommendation.Priority.Valid():
		return invalid(path+".recommendation.priority", "must be one of low, medium, high, critical")
	}

	fi := z.FinancialImpact
	if fi.EstimatedLoss != nil && !finite(*fi.EstimatedLoss) {
		return invalid(path+".financial_impact.estimated_loss_brl_year", "must be a finite number")
	}
	if fi.EstimatedGain != nil && !finite(*fi.EstimatedGain) {
		return invalid(path+".financial_impact.estimated_gain_brl_year", "must be a finite number")
	}
	if fi.ReformCost != nil && (!finite(*fi.ReformCost) || *fi.ReformCost < 0) {
		return invalid(path+".financial_impact.reform_cost_brl", "must be >= 0")
	}
	if fi.PaybackMonths != nil && *fi.PaybackMonths < 0 {
		return invalid(path+".financial_impact.payback_months", "must be >= 0")
	}
	return nil
}

// Validate checks a stored or generated decision.
func (d *FieldDecision) Validate() error {
	if d == nil {
		return invalid("decision", "must be present")
	}
	switch {
	case strings.TrimSpace(d.FieldID) == "":
		return invalid("field_id", "must not be empty")
	case strings.TrimSpace(d.DecisionDate) == "":
		return invalid("decision_date", "must not be empty")
	case !d.Priority.Level.Valid():
		return invalid("priority.level", "must be one of low, medium, high, critical")
	case !finite(d.Priority.Score) || d.Priority.Score < 0 || d.Priority.Score > 10:
		return invalid("priority.score", "must be within [0, 10]")
	case !finite(d.TotalEstimatedROI) || d.TotalEstimatedROI < 0:
		return invalid("total_estimated_roi_brl_year", "must be >= 0")
	}
	for i, z := range d.Zones {
		path := fmt.Sprintf("zones[%d]", i)
		switch {
		case strings.TrimSpace(z.ZoneID) == "":
			return invalid(path+".zone_id", "must not be empty")
		case !z.CurrentStatus.Valid():
			return invalid(path+".current_status", "must be one of optimal, warning, critical")
		case !z.Action.Priority.Valid():
			return invalid(path+".action.priority", "must be one of low, medium, high, critical")
		case !finite(z.Action.EstimatedROI) || z.Action.EstimatedROI < 0:
			return invalid(path+".action.estimated_roi_brl_year", "must be >= 0")
		}
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
