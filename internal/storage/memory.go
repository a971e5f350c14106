package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/recon-health/recon/internal/metrics"
)

// MemoryStore keeps everything in process memory. It backs tests and
// throwaway dev runs; nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	series map[string][]metrics.DailyMetric
	goals  map[string]*metrics.Goals
	logs   map[string][]ImportLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		series: make(map[string][]metrics.DailyMetric),
		goals:  make(map[string]*metrics.Goals),
		logs:   make(map[string][]ImportLog),
	}
}

func (s *MemoryStore) LoadSeries(_ context.Context, userKey string) ([]metrics.DailyMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.series[userKey]
	out := make([]metrics.DailyMetric, len(stored))
	copy(out, stored)
	return out, nil
}

func (s *MemoryStore) SaveSeries(_ context.Context, userKey string, series []metrics.DailyMetric) error {
	cp := make([]metrics.DailyMetric, len(series))
	copy(cp, series)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Date < cp[j].Date })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.series[userKey] = cp
	return nil
}

func (s *MemoryStore) ClearSeries(_ context.Context, userKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.series, userKey)
	return nil
}

func (s *MemoryStore) LoadGoals(_ context.Context, userKey string) (*metrics.Goals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g := s.goals[userKey]
	if g == nil {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (s *MemoryStore) SaveGoals(_ context.Context, userKey string, goals metrics.Goals) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := goals
	s.goals[userKey] = &cp
	return nil
}

func (s *MemoryStore) InsertImportLog(_ context.Context, entry ImportLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[entry.UserKey] = append(s.logs[entry.UserKey], entry)
	return nil
}

func (s *MemoryStore) QueryImportLogs(_ context.Context, userKey string, limit int) ([]ImportLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.logs[userKey]

	// Newest first.
	out := make([]ImportLog, len(stored))
	copy(out, stored)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
