package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// guestDataKey is the fixed application key the guest blob lives under,
// matching the key the web client uses in local storage.
const guestDataKey = "celpip_guest_data"

// GuestRecord is the locally persisted identity and entitlement state of
// an anonymous actor. It is client-observable bookkeeping, not an
// anti-abuse boundary.
type GuestRecord struct {
	AnonID           string `json:"anon_id"`
	HasUsedFreeTest  bool   `json:"hasUsedFreeTest"`
	PromoCodeApplied bool   `json:"promoCodeApplied"`
	RemainingTests   int    `json:"remainingTests"`
}

// GuestStore persists the guest record as a JSON file under the data
// directory.
type GuestStore struct {
	dir string
}

func NewGuestStore(dir string) (*GuestStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create guest store directory %s: %w", dir, err)
	}
	return &GuestStore{dir: dir}, nil
}

func (s *GuestStore) path() string {
	return filepath.Join(s.dir, guestDataKey+".json")
}

// Load returns the guest record, creating one with a fresh random anon id
// and all-false entitlement on first access. A corrupt file is replaced
// the same way; absence of usable state is never an error.
func (s *GuestStore) Load() GuestRecord {
	data, err := os.ReadFile(s.path())
	if err == nil {
		var rec GuestRecord
		if jsonErr := json.Unmarshal(data, &rec); jsonErr == nil && rec.AnonID != "" {
			return rec
		}
		log.Warn().Msg("Guest record file is corrupt, regenerating")
	}
	rec := GuestRecord{AnonID: uuid.NewString()}
	if saveErr := s.Save(rec); saveErr != nil {
		log.Warn().Err(saveErr).Msg("Failed to persist new guest record")
	}
	return rec
}

// Save overwrites the guest record.
func (s *GuestStore) Save(rec GuestRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode guest record: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write guest record: %w", err)
	}
	return nil
}
