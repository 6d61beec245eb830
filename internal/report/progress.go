package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/unibench/unibench/internal/bench"
)

// Progress is the snapshot persisted after every completed phase, so a
// fatal abort still yields a report over the cells measured so far.
type Progress struct {
	RunID        string              `json:"run_id"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Scales       []int               `json:"scales"`
	Measurements []bench.Measurement `json:"measurements"`
}

// SaveProgress writes the snapshot to path
func SaveProgress(path string, p Progress) error {
	p.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create progress directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// LoadProgress reads a snapshot from path. A missing file is not an error:
// it simply means a fresh run.
func LoadProgress(path string) (Progress, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Progress{}, nil
		}
		return Progress{}, fmt.Errorf("failed to read progress file: %w", err)
	}

	var p Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return Progress{}, fmt.Errorf("failed to parse progress file: %w", err)
	}
	return p, nil
}
