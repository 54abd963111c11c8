package entities

import "time"

// DecisionSnapshot is one immutable history entry.
type DecisionSnapshot struct {
	ID           uint          `json:"id"`
	FieldID      string        `json:"field_id"`
	DecisionID   uint          `json:"decision_id"`
	SnapshotDate time.Time     `json:"snapshot_date"`
	Decision     FieldDecision `json:"decision"`
}

type FieldListing struct {
	FieldID             string  `json:"field_id"`
	Crop                string  `json:"crop"`
	AreaHa              float64 `json:"area_ha"`
	Season              string  `json:"season"`
	AnalysisDate        string  `json:"analysis_date"`
	HasDecision         bool    `json:"has_decision"`
	LastDecisionDate    *string `json:"last_decision_date"`
	HighPriorityActions *int    `json:"high_priority_actions"`
}

type StorageStats struct {
	Backend             string  `json:"backend"`
	Location            string  `json:"location"`
	TotalFields         int64   `json:"total_fields"`
	TotalDecisions      int64   `json:"total_decisions"`
	HistoricalSnapshots int64   `json:"historical_snapshots"`
	TotalAreaHa         float64 `json:"total_area_ha"`
	HighPriorityActions int64   `json:"high_priority_actions"`
}
