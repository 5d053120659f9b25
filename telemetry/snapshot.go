package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds grid state for replay.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	RNGSeed int64  `json:"rng_seed"`

	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
	Rule string `json:"rule"`

	Generation uint64 `json:"generation"`

	// Live holds every live cell; Scars holds dead cells with a nonzero
	// death count, so death history survives a round trip.
	Live  []CellState `json:"live"`
	Scars []CellState `json:"scars,omitempty"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// CellState holds one grid position's record.
type CellState struct {
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	BirthGen   uint64 `json:"birth_gen,omitempty"`
	DeathCount uint32 `json:"death_count,omitempty"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Generation)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Generation, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	if snapshot.Rows <= 0 || snapshot.Cols <= 0 {
		return nil, fmt.Errorf("snapshot has invalid dimensions %dx%d", snapshot.Rows, snapshot.Cols)
	}

	return &snapshot, nil
}
