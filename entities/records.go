package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Relational rows. Field ids are stored normalized; the JSON payload keeps
// the identifier as submitted.

type RecommendationRecord struct {
	ID           uint           `gorm:"primaryKey"`
	FieldID      string         `gorm:"not null;index;uniqueIndex:idx_recommendations_field_season"`
	Crop         string         `gorm:"not null"`
	Season       string         `gorm:"not null;uniqueIndex:idx_recommendations_field_season"`
	TotalAreaHa  float64        `gorm:"not null"`
	AnalysisDate string         `gorm:"not null"`
	DataJSON     datatypes.JSON `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (RecommendationRecord) TableName() string { return "recommendations" }

type DecisionRecord struct {
	ID                uint           `gorm:"primaryKey"`
	FieldID           string         `gorm:"not null;index;uniqueIndex:idx_decisions_field_date"`
	DecisionDate      string         `gorm:"not null;index;uniqueIndex:idx_decisions_field_date"`
	DecisionStatus    string         `gorm:"not null"` // priority level
	TotalActions      int            `gorm:"not null"`
	HighPriorityCount int            `gorm:"not null"`
	DataJSON          datatypes.JSON `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	History []DecisionHistoryRecord `gorm:"foreignKey:DecisionID;constraint:OnDelete:CASCADE"`
}

func (DecisionRecord) TableName() string { return "decisions" }

// DecisionHistoryRecord rows are insert-only.
type DecisionHistoryRecord struct {
	ID           uint           `gorm:"primaryKey"`
	FieldID      string         `gorm:"not null;index:idx_history_field_date,priority:1"`
	DecisionID   uint           `gorm:"not null;index"`
	SnapshotDate time.Time      `gorm:"not null;index:idx_history_field_date,priority:2,sort:desc"`
	DataJSON     datatypes.JSON `gorm:"not null"`
}

func (DecisionHistoryRecord) TableName() string { return "decision_history" }
