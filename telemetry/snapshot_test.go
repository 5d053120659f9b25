package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:    SnapshotVersion,
		RunID:      "run-1",
		RNGSeed:    42,
		Rows:       10,
		Cols:       12,
		Rule:       "B3/S23",
		Generation: 1000,
		Live: []CellState{
			{Row: 1, Col: 2, BirthGen: 990, DeathCount: 3},
			{Row: 9, Col: 11, BirthGen: 1000},
		},
		Scars: []CellState{{Row: 4, Col: 4, DeathCount: 7}},
		Bookmark: &Bookmark{
			Type:        BookmarkStablePlateau,
			Generation:  1000,
			Description: "plateau",
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expectedName := "snapshot_1000_stable_plateau.json"
	if filepath.Base(path) != expectedName {
		t.Errorf("expected filename %s, got %s", expectedName, filepath.Base(path))
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.RunID != "run-1" || loaded.RNGSeed != 42 || loaded.Generation != 1000 {
		t.Errorf("header mismatch: %+v", loaded)
	}
	if len(loaded.Live) != 2 || loaded.Live[0] != snapshot.Live[0] {
		t.Errorf("live cells mismatch: %+v", loaded.Live)
	}
	if len(loaded.Scars) != 1 || loaded.Scars[0].DeathCount != 7 {
		t.Errorf("scars mismatch: %+v", loaded.Scars)
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkStablePlateau {
		t.Error("bookmark not preserved")
	}
}

func TestLoadSnapshot_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", "{not json"},
		{"wrong version", `{"version": 99, "rows": 2, "cols": 2}`},
		{"zero dims", `{"version": 1, "rows": 0, "cols": 2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadSnapshot(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadSnapshot(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
