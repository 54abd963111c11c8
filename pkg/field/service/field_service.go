package service

import "canaswarm/entities"

// IngestResult summarises what an ingest produced.
type IngestResult struct {
	Message           string            `json:"message"`
	FieldID           string            `json:"field_id"`
	ZonesAnalyzed     int               `json:"zones_analyzed"`
	DecisionGenerated bool              `json:"decision_generated"`
	Priority          entities.Priority `json:"priority"`
	EstimatedROI      float64           `json:"estimated_roi_brl_year"`
}

type FieldService interface {
	// Ingest validates and stores recommendations, then derives and stores a decision.
	Ingest(rec *entities.FieldRecommendations) (*IngestResult, error)
	// Decision returns the stored decision, generating one from stored
	// recommendations when none exists yet.
	Decision(fieldID string) (*entities.FieldDecision, error)
	// Recompute always regenerates from the stored recommendations.
	Recompute(fieldID string) (*entities.FieldDecision, error)
	Recommendations(fieldID string) (*entities.FieldRecommendations, error)
	History(fieldID string, limit int) ([]entities.DecisionSnapshot, error)
	ListFields() ([]entities.FieldListing, error)
	Stats() (*entities.StorageStats, error)
}
