package repository

import (
	"context"
	"errors"

	"canaswarm/entities"
)

// ErrNotFound is returned (wrapped) when a field has no stored record.
var ErrNotFound = errors.New("not found")

// DefaultHistoryLimit applies when GetDecisionHistory gets limit <= 0.
const DefaultHistoryLimit = 10

// Store persists recommendations, decisions and decision history.
// Every method normalizes field ids with entities.NormalizeFieldID.
type Store interface {
	// StoreRecommendations replaces the record for (field, season).
	StoreRecommendations(rec *entities.FieldRecommendations) error
	// GetRecommendations returns the most recently updated record for the field.
	GetRecommendations(fieldID string) (*entities.FieldRecommendations, error)

	// StoreDecision upserts on (field, decision date) and appends a history entry.
	StoreDecision(d *entities.FieldDecision) error
	// GetDecision returns the decision with the latest decision date.
	GetDecision(fieldID string) (*entities.FieldDecision, error)
	// GetDecisionHistory returns up to limit entries, newest first.
	GetDecisionHistory(fieldID string, limit int) ([]entities.DecisionSnapshot, error)

	ListFields() ([]entities.FieldListing, error)
	GetStats() (*entities.StorageStats, error)

	Close() error
}

// Pinger is implemented by stores that can report whether their medium is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
