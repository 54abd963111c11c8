package repositoryImp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"canaswarm/entities"
	"canaswarm/pkg/storage/repository"
)

const (
	kindRecommendations = "recommendations"
	kindDecisions       = "decisions"
)

type memRecommendation struct {
	data      []byte
	rec       *entities.FieldRecommendations
	updatedAt time.Time
}

type memDecision struct {
	data     []byte
	dec      *entities.FieldDecision
	storedAt time.Time
}

// memoryStore keeps the latest recommendation and decision per field in
// memory and mirrors each one to <dir>/<field>_<kind>.json.
type memoryStore struct {
	dir string
	log *zap.Logger
	now func() time.Time

	mu        sync.RWMutex
	recs      map[string]memRecommendation
	decisions map[string]memDecision
}

// NewMemoryStore creates dir if needed and loads every readable file in it.
// Files that cannot be parsed are skipped.
func NewMemoryStore(dir string, log *zap.Logger) (repository.Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &memoryStore{
		dir:       dir,
		log:       log.Named("memory-store"),
		now:       time.Now,
		recs:      map[string]memRecommendation{},
		decisions: map[string]memDecision{},
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	s.log.Info("store ready",
		zap.String("dir", dir),
		zap.Int("recommendations", len(s.recs)),
		zap.Int("decisions", len(s.decisions)))
	return s, nil
}

func (s *memoryStore) StoreRecommendations(rec *entities.FieldRecommendations) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	var own entities.FieldRecommendations
	if err := json.Unmarshal(data, &own); err != nil {
		return fmt.Errorf("copy recommendations: %w", err)
	}
	key := entities.NormalizeFieldID(rec.FieldID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeFileAtomic(s.path(key, kindRecommendations), data); err != nil {
		return err
	}
	s.recs[key] = memRecommendation{data: data, rec: &own, updatedAt: s.now()}
	return nil
}

func (s *memoryStore) GetRecommendations(fieldID string) (*entities.FieldRecommendations, error) {
	key := entities.NormalizeFieldID(fieldID)
	s.mu.RLock()
	e, ok := s.recs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("recommendations for %q: %w", key, repository.ErrNotFound)
	}
	var out entities.FieldRecommendations
	if err := json.Unmarshal(e.data, &out); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}
	return &out, nil
}

func (s *memoryStore) StoreDecision(d *entities.FieldDecision) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode decision: %w", err)
	}
	var own entities.FieldDecision
	if err := json.Unmarshal(data, &own); err != nil {
		return fmt.Errorf("copy decision: %w", err)
	}
	key := entities.NormalizeFieldID(d.FieldID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeFileAtomic(s.path(key, kindDecisions), data); err != nil {
		return err
	}
	s.decisions[key] = memDecision{data: data, dec: &own, storedAt: s.now()}
	return nil
}

func (s *memoryStore) GetDecision(fieldID string) (*entities.FieldDecision, error) {
	key := entities.NormalizeFieldID(fieldID)
	s.mu.RLock()
	e, ok := s.decisions[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("decision for %q: %w", key, repository.ErrNotFound)
	}
	var out entities.FieldDecision
	if err := json.Unmarshal(e.data, &out); err != nil {
		return nil, fmt.Errorf("decode decision: %w", err)
	}
	return &out, nil
}

// GetDecisionHistory only knows the current decision, so it returns at
// most one entry.
func (s *memoryStore) GetDecisionHistory(fieldID string, limit int) ([]entities.DecisionSnapshot, error) {
	if limit <= 0 {
		limit = repository.DefaultHistoryLimit
	}
	key := entities.NormalizeFieldID(fieldID)
	s.mu.RLock()
	e, ok := s.decisions[key]
	s.mu.RUnlock()
	if !ok {
		return []entities.DecisionSnapshot{}, nil
	}
	var dec entities.FieldDecision
	if err := json.Unmarshal(e.data, &dec); err != nil {
		return nil, fmt.Errorf("decode decision: %w", err)
	}
	return []entities.DecisionSnapshot{{
		FieldID:      key,
		SnapshotDate: e.storedAt,
		Decision:     dec,
	}}, nil
}

func (s *memoryStore) ListFields() ([]entities.FieldListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.recs))
	for k := range s.recs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := s.recs[keys[i]], s.recs[keys[j]]
		if !a.updatedAt.Equal(b.updatedAt) {
			return a.updatedAt.After(b.updatedAt)
		}
		return keys[i] < keys[j]
	})

	out := make([]entities.FieldListing, 0, len(keys))
	for _, k := range keys {
		rec := s.recs[k].rec
		l := entities.FieldListing{
			FieldID:      k,
			Crop:         rec.Crop,
			AreaHa:       rec.TotalAreaHa,
			Season:       rec.Season,
			AnalysisDate: rec.AnalysisDate,
		}
		if d, ok := s.decisions[k]; ok {
			date := d.dec.DecisionDate
			high := d.dec.HighPriorityCount()
			l.HasDecision = true
			l.LastDecisionDate = &date
			l.HighPriorityActions = &high
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *memoryStore) GetStats() (*entities.StorageStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &entities.StorageStats{
		Backend:             "memory",
		Location:            s.dir,
		TotalFields:         int64(len(s.recs)),
		TotalDecisions:      int64(len(s.decisions)),
		HistoricalSnapshots: int64(len(s.decisions)),
	}
	var area float64
	for _, r := range s.recs {
		area += r.rec.TotalAreaHa
	}
	st.TotalAreaHa = round2(area)
	for _, d := range s.decisions {
		st.HighPriorityActions += int64(d.dec.HighPriorityCount())
	}
	return st, nil
}

func (s *memoryStore) Ping(context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

func (s *memoryStore) Close() error { return nil }

func (s *memoryStore) path(key, kind string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+"_"+kind+".json")
}

// load scans the data directory once at startup.
func (s *memoryStore) load() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read data dir: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		var kind string
		switch {
		case strings.HasSuffix(name, "_"+kindRecommendations+".json"):
			kind = kindRecommendations
		case strings.HasSuffix(name, "_"+kindDecisions+".json"):
			kind = kindDecisions
		default:
			continue
		}
		path := filepath.Join(s.dir, name)
		if err := s.loadFile(path, kind, e); err != nil {
			s.log.Warn("skipping unreadable file", zap.String("file", path), zap.Error(err))
		}
	}
	return nil
}

func (s *memoryStore) loadFile(path, kind string, e os.DirEntry) error {
	info, err := e.Info()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	mod := info.ModTime()

	switch kind {
	case kindRecommendations:
		var rec entities.FieldRecommendations
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		if err := rec.Validate(); err != nil {
			return err
		}
		key := entities.NormalizeFieldID(rec.FieldID)
		if cur, ok := s.recs[key]; ok && cur.updatedAt.After(mod) {
			return nil
		}
		s.recs[key] = memRecommendation{data: data, rec: &rec, updatedAt: mod}
	case kindDecisions:
		var dec entities.FieldDecision
		if err := json.Unmarshal(data, &dec); err != nil {
			return err
		}
		if err := dec.Validate(); err != nil {
			return err
		}
		key := entities.NormalizeFieldID(dec.FieldID)
		if cur, ok := s.decisions[key]; ok && cur.storedAt.After(mod) {
			return nil
		}
		s.decisions[key] = memDecision{data: data, dec: &dec, storedAt: mod}
	}
	return nil
}

// writeFileAtomic replaces path so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
