// Package store keeps uploaded datasets in memory for the session. Nothing
// here survives a restart; durable persistence is intentionally out of
// scope, the dashboard works off fresh exports.
package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/salespulse/backend/internal/models"
)

var ErrNotFound = errors.New("dataset not found")

type Store struct {
	mu       sync.RWMutex
	datasets map[string]models.Dataset
}

func New() *Store {
	return &Store{datasets: map[string]models.Dataset{}}
}

// CreateDataset registers an uploaded batch set and returns it with a fresh
// id. createdAt is supplied by the caller so handlers stay clock-injectable.
func (s *Store) CreateDataset(data models.RawData, teams map[string][]string, seniors []string, createdAt time.Time) models.Dataset {
	d := models.Dataset{
		ID:           uuid.NewString(),
		CreatedAt:    createdAt,
		Data:         data,
		Teams:        teams,
		SeniorAgents: seniors,
	}
	s.mu.Lock()
	s.datasets[d.ID] = d
	s.mu.Unlock()
	return d
}

func (s *Store) GetDataset(id string) (models.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.datasets[id]
	if !ok {
		return models.Dataset{}, ErrNotFound
	}
	return d, nil
}

func (s *Store) DeleteDataset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[id]; !ok {
		return ErrNotFound
	}
	delete(s.datasets, id)
	return nil
}

func (s *Store) ListDatasets() []models.DatasetSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DatasetSummary, 0, len(s.datasets))
	for _, d := range s.datasets {
		out = append(out, Summarize(d))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}

func Summarize(d models.Dataset) models.DatasetSummary {
	return models.DatasetSummary{
		ID:        d.ID,
		CreatedAt: d.CreatedAt,
		RowCounts: map[string]int{
			"trips":         len(d.Data.Trips),
			"quotes":        len(d.Data.Quotes),
			"passthroughs":  len(d.Data.Passthroughs),
			"hot_pass":      len(d.Data.HotPass),
			"bookings":      len(d.Data.Bookings),
			"non_converted": len(d.Data.NonConverted),
		},
	}
}
