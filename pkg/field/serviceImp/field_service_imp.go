package serviceImp

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"canaswarm/entities"
	decision "canaswarm/pkg/decision/service"
	"canaswarm/pkg/field/service"
	"canaswarm/pkg/storage/repository"
)

type fieldSvc struct {
	store        repository.Store
	decisions    decision.DecisionService
	historyLimit int
	log          *zap.Logger
}

func NewFieldService(store repository.Store, decisions decision.DecisionService, historyLimit int, log *zap.Logger) service.FieldService {
	if log == nil {
		log = zap.NewNop()
	}
	if historyLimit <= 0 {
		historyLimit = repository.DefaultHistoryLimit
	}
	return &fieldSvc{store: store, decisions: decisions, historyLimit: historyLimit, log: log.Named("field")}
}

func (s *fieldSvc) Ingest(rec *entities.FieldRecommendations) (*service.IngestResult, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.StoreRecommendations(rec); err != nil {
		return nil, err
	}
	d, err := s.generateAndStore(rec)
	if err != nil {
		return nil, err
	}
	s.log.Info("recommendations ingested",
		zap.String("field_id", rec.FieldID),
		zap.Int("zones", len(rec.Zones)),
		zap.String("priority", d.Priority.Level.String()),
		zap.Float64("roi_brl_year", d.TotalEstimatedROI))

	return &service.IngestResult{
		Message:           "Data ingested successfully",
		FieldID:           rec.FieldID,
		ZonesAnalyzed:     len(rec.Zones),
		DecisionGenerated: true,
		Priority:          d.Priority.Level,
		EstimatedROI:      d.TotalEstimatedROI,
	}, nil
}

func (s *fieldSvc) Decision(fieldID string) (*entities.FieldDecision, error) {
	d, err := s.store.GetDecision(fieldID)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	s.log.Debug("no stored decision, generating on demand", zap.String("field_id", fieldID))
	return s.Recompute(fieldID)
}

func (s *fieldSvc) Recompute(fieldID string) (*entities.FieldDecision, error) {
	rec, err := s.store.GetRecommendations(fieldID)
	if err != nil {
		return nil, err
	}
	return s.generateAndStore(rec)
}

func (s *fieldSvc) generateAndStore(rec *entities.FieldRecommendations) (*entities.FieldDecision, error) {
	d := s.decisions.Generate(rec)
	if err := s.store.StoreDecision(d); err != nil {
		return nil, fmt.Errorf("field %s: %w", rec.FieldID, err)
	}
	return d, nil
}

func (s *fieldSvc) Recommendations(fieldID string) (*entities.FieldRecommendations, error) {
	return s.store.GetRecommendations(fieldID)
}

func (s *fieldSvc) History(fieldID string, limit int) ([]entities.DecisionSnapshot, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	return s.store.GetDecisionHistory(fieldID, limit)
}

func (s *fieldSvc) ListFields() ([]entities.FieldListing, error) { return s.store.ListFields() }

func (s *fieldSvc) Stats() (*entities.StorageStats, error) { return s.store.GetStats() }
