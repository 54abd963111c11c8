package serviceImp

import (
	"strings"

	"canaswarm/entities"
)

const followUpStep = "Schedule follow-up analysis in 30 days"

func nextSteps(zones []entities.ManagementZone) []string {
	var critical, warning, optimal []string
	var reformBudget float64
	for _, z := range zones {
		switch z.Status {
		case entities.StatusCritical:
			critical = append(critical, z.ZoneID)
			reformBudget += reformCost(z)
		case entities.StatusWarning:
			warning = append(warning, z.ZoneID)
			reformBudget += reformCost(z)
		case entities.StatusOptimal:
			optimal = append(optimal, z.ZoneID)
		}
	}

	steps := make([]string, 0, 6)
	if len(critical) > 0 {
		ids := strings.Join(critical, ", ")
		steps = append(steps,
			"URGENT: Schedule soil analysis for critical zones: "+ids,
			"Request reform quotes for zones: "+ids,
		)
	}
	if len(warning) > 0 {
		steps = append(steps, "Schedule intervention for warning zones: "+strings.Join(warning, ", "))
	}
	if len(optimal) > 0 {
		steps = append(steps, "Monitor optimal zones: "+strings.Join(optimal, ", "))
	}
	if len(critical)+len(warning) > 0 && reformBudget > 0 {
		steps = append(steps, "Budget allocation: "+brl(reformBudget)+" for reforms")
	}
	return append(steps, followUpStep)
}

func reformCost(z entities.ManagementZone) float64 {
	if c := z.FinancialImpact.ReformCost; c != nil {
		return *c
	}
	return 0
}
