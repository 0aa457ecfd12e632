package analysis

import (
	"errors"
	"sync"
	"time"
)

var ErrNoResult = errors.New("no analysis result available")

// Report wraps a Result with run metadata
type Report struct {
	ID             string    `json:"id"`
	RunAt          time.Time `json:"runAt"`
	RiskDatasetID  string    `json:"riskDatasetId,omitempty"`
	RoleDatasetID  string    `json:"roleDatasetId,omitempty"`
	RiskRowsRead   int       `json:"riskRowsRead"`
	RoleRowsRead   int       `json:"roleRowsRead"`
	DurationMillis int64     `json:"durationMillis"`
	Result         *Result   `json:"result"`
}

// ResultStore holds the most recent analysis report. Results are immutable
// once stored; a new run replaces the previous report wholesale.
type ResultStore struct {
	mu     sync.RWMutex
	latest *Report
}

// NewResultStore creates an empty result store
func NewResultStore() *ResultStore {
	return &ResultStore{}
}

// Set replaces the current report
func (s *ResultStore) Set(report *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = report
}

// Latest returns the most recent report
func (s *ResultStore) Latest() (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoResult
	}
	return s.latest, nil
}
