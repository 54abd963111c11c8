package entities

// DecisionDateLayout is the format of FieldDecision.DecisionDate.
const DecisionDateLayout = "2006-01-02 15:04:05"

type PriorityLevel struct {
	Level  Priority `json:"level"`
	Score  float64  `json:"score"` // 0..10
	Reason string   `json:"reason"`
}

type DecisionAction struct {
	Action             string   `json:"action"`
	Priority           Priority `json:"priority"`
	EstimatedROI       float64  `json:"estimated_roi_brl_year"`
	ImplementationCost *float64 `json:"implementation_cost_brl"`
	PaybackMonths      *int     `json:"payback_months"`
	Justification      string   `json:"justification"`
}

type ZoneDecision struct {
	ZoneID        string         `json:"zone_id"`
	AreaHa        float64        `json:"area_ha"`
	CurrentStatus ZoneStatus     `json:"current_status"`
	Action        DecisionAction `json:"action"`
}

type FieldDecision struct {
	FieldID           string         `json:"field_id"`
	Crop              string         `json:"crop"`
	Season            string         `json:"season"`
	TotalAreaHa       float64        `json:"total_area_ha"`
	AnalysisDate      string         `json:"analysis_date"`
	DecisionDate      string         `json:"decision_date"`
	Priority          PriorityLevel  `json:"priority"`
	TotalEstimatedROI float64        `json:"total_estimated_roi_brl_year"`
	Zones             []ZoneDecision `json:"zones"`
	NextSteps         []string       `json:"next_steps"`
}

// HighPriorityCount counts zone actions labelled high or critical.
func (d *FieldDecision) HighPriorityCount() int {
	n := 0
	for _, z := range d.Zones {
		if z.Action.Priority.Urgent() {
			n++
		}
	}
	return n
}
