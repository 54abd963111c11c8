package serviceImp

import (
	"math"
	"time"

	"canaswarm/entities"
	"canaswarm/pkg/decision/service"
)

type decisionSvc struct{ now func() time.Time }

// NewDecisionService returns the rule-based generator. now stamps the
// decision date; nil means time.Now.
func NewDecisionService(now func() time.Time) service.DecisionService {
	if now == nil {
		now = time.Now
	}
	return &decisionSvc{now: now}
}

// selectROI returns a zone's signed financial impact. A reported gain wins
// over a reported loss; a loss always counts against the field total.
func selectROI(fi entities.FinancialImpact) float64 {
	switch {
	case fi.EstimatedGain != nil:
		return *fi.EstimatedGain
	case fi.EstimatedLoss != nil:
		return -math.Abs(*fi.EstimatedLoss)
	default:
		return 0
	}
}

func (s *decisionSvc) Generate(rec *entities.FieldRecommendations) *entities.FieldDecision {
	zones := make([]entities.ZoneDecision, 0, len(rec.Zones))
	var total float64
	var critical, warning int

	for _, z := range rec.Zones {
		roi := selectROI(z.FinancialImpact)
		total += roi

		switch z.Status {
		case entities.StatusCritical:
			critical++
		case entities.StatusWarning:
			warning++
		case entities.StatusOptimal:
		}

		zones = append(zones, entities.ZoneDecision{
			ZoneID:        z.ZoneID,
			AreaHa:        z.AreaHa,
			CurrentStatus: z.Status,
			Action: entities.DecisionAction{
				Action:             z.Recommendation.Action,
				Priority:           z.Recommendation.Priority,
				EstimatedROI:       math.Abs(roi),
				ImplementationCost: clone(z.FinancialImpact.ReformCost),
				PaybackMonths:      clone(z.FinancialImpact.PaybackMonths),
				Justification:      justify(z, roi),
			},
		})
	}

	return &entities.FieldDecision{
		FieldID:           rec.FieldID,
		Crop:              rec.Crop,
		Season:            rec.Season,
		TotalAreaHa:       rec.TotalAreaHa,
		AnalysisDate:      rec.AnalysisDate,
		DecisionDate:      s.now().Format(entities.DecisionDateLayout),
		Priority:          calculatePriority(critical, warning, rec.Summary.AvgProfitabilityScore),
		TotalEstimatedROI: math.Abs(total),
		Zones:             zones,
		NextSteps:         nextSteps(rec.Zones),
	}
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
