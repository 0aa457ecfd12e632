// Package datasets archives uploaded CSV files so past analysis inputs can
// be re-examined. Files are stored snappy-compressed on disk, with an
// optional replicator pushing copies to object storage.
package datasets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"

	"github.com/rinexis/authreview/pkg/logging"
)

var ErrDatasetNotFound = errors.New("dataset not found")

const (
	indexFileName = "datasets.json"
	datasetsDir   = "datasets"
)

// Dataset kinds
const (
	KindRisk  = "risk"
	KindRoles = "roles"
)

// Dataset describes one archived upload
type Dataset struct {
	ID             string `json:"id"`
	Kind           string `json:"kind"`
	Filename       string `json:"filename"`
	Size           int64  `json:"size"`
	CompressedSize int64  `json:"compressed_size"`
	CreatedAt      int64  `json:"created_at"`
}

// Replicator pushes archived datasets to a secondary location
type Replicator interface {
	Replicate(ctx context.Context, key string, data []byte) error
}

// Archive stores compressed datasets on disk
type Archive struct {
	dataDir    string
	replicator Replicator // may be nil
	logger     logging.Logger

	mu    sync.RWMutex
	index map[string]*Dataset
	order []string // insertion order, oldest first
}

// NewArchive opens (or creates) the dataset archive under dataDir
func NewArchive(dataDir string, replicator Replicator, logger logging.Logger) (*Archive, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	a := &Archive{
		dataDir:    dataDir,
		replicator: replicator,
		logger:     logger,
		index:      make(map[string]*Dataset),
	}

	if err := os.MkdirAll(filepath.Join(dataDir, datasetsDir), 0700); err != nil {
		return nil, fmt.Errorf("failed to create dataset directory: %w", err)
	}
	if err := a.loadIndex(); err != nil {
		return nil, err
	}
	return a, nil
}

// Store compresses and archives a dataset, returning its metadata.
// Replication failures are logged but do not fail the store: the local
// copy is the source of truth.
func (a *Archive) Store(ctx context.Context, kind, filename string, raw []byte) (*Dataset, error) {
	compressed := snappy.Encode(nil, raw)

	ds := &Dataset{
		ID:             uuid.New().String(),
		Kind:           kind,
		Filename:       filename,
		Size:           int64(len(raw)),
		CompressedSize: int64(len(compressed)),
		CreatedAt:      time.Now().Unix(),
	}

	path := a.datasetPath(ds.ID)
	if err := os.WriteFile(path, compressed, 0600); err != nil {
		return nil, fmt.Errorf("failed to write dataset: %w", err)
	}

	a.mu.Lock()
	a.index[ds.ID] = ds
	a.order = append(a.order, ds.ID)
	err := a.saveIndexLocked()
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if a.replicator != nil {
		key := fmt.Sprintf("%s/%s.csv.sz", kind, ds.ID)
		if err := a.replicator.Replicate(ctx, key, compressed); err != nil {
			a.logger.Warn("Dataset replication failed",
				logging.DatasetID(ds.ID),
				logging.Error(err))
		}
	}

	a.logger.Info("Dataset archived",
		logging.DatasetID(ds.ID),
		logging.String("kind", kind),
		logging.Int("bytes", len(raw)))

	return ds, nil
}

// Get returns the decompressed contents of an archived dataset
func (a *Archive) Get(id string) (*Dataset, []byte, error) {
	a.mu.RLock()
	ds, ok := a.index[id]
	a.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}

	compressed, err := os.ReadFile(a.datasetPath(id))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decompress dataset: %w", err)
	}
	return ds, raw, nil
}

// List returns all archived datasets, oldest first
func (a *Archive) List() []*Dataset {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]*Dataset, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.index[id])
	}
	return out
}

// Delete removes an archived dataset
func (a *Archive) Delete(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.index[id]; !ok {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	if err := os.Remove(a.datasetPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove dataset: %w", err)
	}
	delete(a.index, id)
	for i, existing := range a.order {
		if existing == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return a.saveIndexLocked()
}

func (a *Archive) datasetPath(id string) string {
	return filepath.Join(a.dataDir, datasetsDir, id+".csv.sz")
}

func (a *Archive) loadIndex() error {
	path := filepath.Join(a.dataDir, indexFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read dataset index: %w", err)
	}

	var datasets []*Dataset
	if err := json.Unmarshal(data, &datasets); err != nil {
		return fmt.Errorf("failed to unmarshal dataset index: %w", err)
	}
	for _, ds := range datasets {
		a.index[ds.ID] = ds
		a.order = append(a.order, ds.ID)
	}
	return nil
}

func (a *Archive) saveIndexLocked() error {
	datasets := make([]*Dataset, 0, len(a.order))
	for _, id := range a.order {
		datasets = append(datasets, a.index[id])
	}
	data, err := json.MarshalIndent(datasets, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dataset index: %w", err)
	}
	path := filepath.Join(a.dataDir, indexFileName)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write dataset index: %w", err)
	}
	return nil
}
