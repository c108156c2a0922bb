package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vtmai/celwrite/internal/task"
)

// FileDraftStore keeps autosaved drafts as JSON files under a data
// directory, one file per task type.
type FileDraftStore struct {
	dir string
}

type draftRecord struct {
	Draft   string    `json:"draft"`
	SavedAt time.Time `json:"saved_at"`
}

// NewFileDraftStore creates the backing directory if needed.
func NewFileDraftStore(dir string) (*FileDraftStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create draft store directory %s: %w", dir, err)
	}
	return &FileDraftStore{dir: dir}, nil
}

func (s *FileDraftStore) path(t task.Type) string {
	return filepath.Join(s.dir, fmt.Sprintf("celpip-draft-%s.json", t))
}

// Load returns the saved draft for the task type, if any. A corrupt or
// unreadable file is treated as no draft.
func (s *FileDraftStore) Load(t task.Type) (string, bool) {
	data, err := os.ReadFile(s.path(t))
	if err != nil {
		return "", false
	}
	var rec draftRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.Draft == "" {
		return "", false
	}
	return rec.Draft, true
}

// Save overwrites the draft for the task type.
func (s *FileDraftStore) Save(t task.Type, draft string) error {
	rec := draftRecord{Draft: draft, SavedAt: time.Now()}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := os.WriteFile(s.path(t), data, 0o644); err != nil {
		return fmt.Errorf("failed to write draft file: %w", err)
	}
	return nil
}

// Clear removes the saved draft for the task type. Clearing an absent
// draft is not an error.
func (s *FileDraftStore) Clear(t task.Type) error {
	if err := os.Remove(s.path(t)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove draft file: %w", err)
	}
	return nil
}
