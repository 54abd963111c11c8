package repositoryImp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"canaswarm/entities"
	"canaswarm/pkg/storage/repository"
)

type sqlStore struct {
	db       *gorm.DB
	backend  string
	location string
}

// NewSQLStore wraps a migrated gorm connection (see package database).
// backend and location are reported by GetStats.
func NewSQLStore(db *gorm.DB, backend, location string) repository.Store {
	return &sqlStore{db: db, backend: backend, location: location}
}

func (s *sqlStore) StoreRecommendations(rec *entities.FieldRecommendations) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	row := entities.RecommendationRecord{
		FieldID:      entities.NormalizeFieldID(rec.FieldID),
		Crop:         rec.Crop,
		Season:       rec.Season,
		TotalAreaHa:  rec.TotalAreaHa,
		AnalysisDate: rec.AnalysisDate,
		DataJSON:     datatypes.JSON(data),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "field_id"}, {Name: "season"}},
			DoUpdates: clause.AssignmentColumns([]string{"crop", "total_area_ha", "analysis_date", "data_json", "updated_at"}),
		}).Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("store recommendations: %w", err)
	}
	return nil
}

func (s *sqlStore) GetRecommendations(fieldID string) (*entities.FieldRecommendations, error) {
	key := entities.NormalizeFieldID(fieldID)
	var row entities.RecommendationRecord
	err := s.db.Where("field_id = ?", key).
		Order("updated_at DESC").Order("id DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("recommendations for %q: %w", key, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get recommendations: %w", err)
	}
	var out entities.FieldRecommendations
	if err := json.Unmarshal(row.DataJSON, &out); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}
	return &out, nil
}

// StoreDecision upserts the decision row and appends one history row in
// the same transaction, whether the upsert inserted or updated.
func (s *sqlStore) StoreDecision(d *entities.FieldDecision) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode decision: %w", err)
	}
	key := entities.NormalizeFieldID(d.FieldID)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		row := entities.DecisionRecord{
			FieldID:           key,
			DecisionDate:      d.DecisionDate,
			DecisionStatus:    string(d.Priority.Level),
			TotalActions:      len(d.Zones),
			HighPriorityCount: d.HighPriorityCount(),
			DataJSON:          datatypes.JSON(data),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "field_id"}, {Name: "decision_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"decision_status", "total_actions", "high_priority_count", "data_json", "updated_at"}),
		}).Create(&row).Error; err != nil {
			return err
		}

		// the row id is not reliably returned on the update path
		var owner entities.DecisionRecord
		if err := tx.Select("id").
			Where("field_id = ? AND decision_date = ?", key, d.DecisionDate).
			Take(&owner).Error; err != nil {
			return fmt.Errorf("resolve decision id: %w", err)
		}

		return tx.Create(&entities.DecisionHistoryRecord{
			FieldID:      key,
			DecisionID:   owner.ID,
			SnapshotDate: tx.NowFunc(),
			DataJSON:     datatypes.JSON(data),
		}).Error
	})
	if err != nil {
		return fmt.Errorf("store decision: %w", err)
	}
	return nil
}

func (s *sqlStore) GetDecision(fieldID string) (*entities.FieldDecision, error) {
	key := entities.NormalizeFieldID(fieldID)
	var row entities.DecisionRecord
	err := s.db.Where("field_id = ?", key).
		Order("decision_date DESC").Order("id DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("decision for %q: %w", key, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get decision: %w", err)
	}
	var out entities.FieldDecision
	if err := json.Unmarshal(row.DataJSON, &out); err != nil {
		return nil, fmt.Errorf("decode decision: %w", err)
	}
	return &out, nil
}

func (s *sqlStore) GetDecisionHistory(fieldID string, limit int) ([]entities.DecisionSnapshot, error) {
	if limit <= 0 {
		limit = repository.DefaultHistoryLimit
	}
	key := entities.NormalizeFieldID(fieldID)
	var rows []entities.DecisionHistoryRecord
	if err := s.db.Where("field_id = ?", key).
		Order("snapshot_date DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get decision history: %w", err)
	}
	out := make([]entities.DecisionSnapshot, 0, len(rows))
	for _, r := range rows {
		snap := entities.DecisionSnapshot{
			ID:           r.ID,
			FieldID:      r.FieldID,
			DecisionID:   r.DecisionID,
			SnapshotDate: r.SnapshotDate,
		}
		if err := json.Unmarshal(r.DataJSON, &snap.Decision); err != nil {
			return nil, fmt.Errorf("decode history row %d: %w", r.ID, err)
		}
		out = append(out, snap)
	}
	return out, nil
}

// listFieldsSQL joins each field's latest recommendation to its latest decision.
const listFieldsSQL = `
SELECT r.field_id, r.crop, r.total_area_ha AS area_ha, r.season, r.analysis_date,
       d.decision_date, d.high_priority_count
FROM recommendations r
LEFT JOIN decisions d ON d.id = (
    SELECT d2.id FROM decisions d2
    WHERE d2.field_id = r.field_id
    ORDER BY d2.decision_date DESC, d2.id DESC
    LIMIT 1)
WHERE r.id = (
    SELECT r2.id FROM recommendations r2
    WHERE r2.field_id = r.field_id
    ORDER BY r2.updated_at DESC, r2.id DESC
    LIMIT 1)
ORDER BY r.updated_at DESC, r.id DESC`

type listingRow struct {
	FieldID           string
	Crop              string
	AreaHa            float64
	Season            string
	AnalysisDate      string
	DecisionDate      *string
	HighPriorityCount *int
}

func (s *sqlStore) ListFields() ([]entities.FieldListing, error) {
	var rows []listingRow
	if err := s.db.Raw(listFieldsSQL).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	out := make([]entities.FieldListing, 0, len(rows))
	for _, r := range rows {
		out = append(out, entities.FieldListing{
			FieldID:             r.FieldID,
			Crop:                r.Crop,
			AreaHa:              r.AreaHa,
			Season:              r.Season,
			AnalysisDate:        r.AnalysisDate,
			HasDecision:         r.DecisionDate != nil,
			LastDecisionDate:    r.DecisionDate,
			HighPriorityActions: r.HighPriorityCount,
		})
	}
	return out, nil
}

const statsSQL = `
SELECT
    (SELECT COUNT(*) FROM recommendations) AS total_fields,
    (SELECT COUNT(*) FROM decisions) AS total_decisions,
    (SELECT COUNT(*) FROM decision_history) AS historical_snapshots,
    (SELECT COALESCE(SUM(total_area_ha), 0) FROM recommendations) AS total_area_ha,
    (SELECT COALESCE(SUM(high_priority_count), 0) FROM decisions) AS high_priority_actions`

type statsRow struct {
	TotalFields         int64
	TotalDecisions      int64
	HistoricalSnapshots int64
	TotalAreaHa         float64
	HighPriorityActions int64
}

func (s *sqlStore) GetStats() (*entities.StorageStats, error) {
	var r statsRow
	if err := s.db.Raw(statsSQL).Scan(&r).Error; err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return &entities.StorageStats{
		Backend:             s.backend,
		Location:            s.location,
		TotalFields:         r.TotalFields,
		TotalDecisions:      r.TotalDecisions,
		HistoricalSnapshots: r.HistoricalSnapshots,
		TotalAreaHa:         round2(r.TotalAreaHa),
		HighPriorityActions: r.HighPriorityActions,
	}, nil
}

func (s *sqlStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *sqlStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
