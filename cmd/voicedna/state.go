package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jonathan/voicedna/internal/engine"
	"github.com/jonathan/voicedna/internal/types"
)

// localState is the on-disk form of one user's profile and calibration
// rounds. Session transcripts and samples are not kept; the profile already
// carries everything learned from them.
type localState struct {
	UserID  uuid.UUID                `json:"user_id"`
	Profile *types.VoiceDNA          `json:"profile,omitempty"`
	Rounds  []types.CalibrationRound `json:"rounds,omitempty"`
}

// loadState reads path. A missing file starts a new state for a fresh user.
func loadState(path string) (*localState, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &localState{UserID: uuid.New()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var st localState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	if st.UserID == uuid.Nil {
		st.UserID = uuid.New()
	}
	return &st, nil
}

// seed loads the state into an empty store.
func (st *localState) seed(ctx context.Context, store *engine.MemoryStore) error {
	if st.Profile != nil {
		if err := store.SaveVoiceDNA(ctx, st.UserID, st.Profile); err != nil {
			return err
		}
	}
	for i := range st.Rounds {
		st.Rounds[i].UserID = st.UserID
		if err := store.SaveCalibrationRound(ctx, &st.Rounds[i]); err != nil {
			return err
		}
	}
	return nil
}

// capture copies the store's current contents back into the state.
func (st *localState) capture(ctx context.Context, store *engine.MemoryStore) error {
	p, err := store.LoadVoiceDNA(ctx, st.UserID)
	if err != nil {
		return err
	}
	rounds, err := store.ListCalibrationRounds(ctx, st.UserID)
	if err != nil {
		return err
	}
	st.Profile, st.Rounds = p, rounds
	return nil
}

// save writes the state atomically.
func (st *localState) save(path string) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
