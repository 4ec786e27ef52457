package gamification

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// dataVersion is bumped when the schema changes. Version 1 predates
	// the featureUsage block; Load backfills it with zeroed defaults.
	dataVersion = 2

	dataFileName = "gamification.json"
	appDirName   = "scribeflow"
)

// ErrCorruptData is returned when the stored aggregate cannot be parsed
// or carries no recognizable version. Corruption fails loudly instead of
// being coerced to defaults, so user progress is never silently erased.
var ErrCorruptData = errors.New("corrupt gamification data")

// Repository abstracts the persisted aggregate so calculation code and
// the Engine stay store-agnostic.
type Repository interface {
	Load() (*GamificationData, error)
	Save(*GamificationData) error
}

// Store persists GamificationData as a single JSON file under
// ~/.local/state/scribeflow (respecting XDG_STATE_HOME).
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. Pass an empty string to use the
// default XDG state path. The directory is created on first Save.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = defaultStateDir()
	}
	return &Store{dir: dir}
}

// Path returns the full path to the data file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, dataFileName)
}

// Load reads the aggregate from disk. A missing file yields the
// all-default aggregate. Version-1 files are migrated in memory (the
// zeroed featureUsage block is backfilled) after a backup copy is written
// next to the original.
func (s *Store) Load() (*GamificationData, error) {
	raw, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return NewGamificationData(), nil
		}
		return nil, fmt.Errorf("reading gamification data: %w", err)
	}

	var d GamificationData
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}

	switch {
	case d.Version == dataVersion:
	case d.Version == 1:
		if err := s.backupLegacy(raw); err != nil {
			return nil, err
		}
		d.Meta.BackupCount++
		d.Version = dataVersion
	default:
		return nil, fmt.Errorf("%w: unrecognized version %d", ErrCorruptData, d.Version)
	}

	d.initMaps()
	d.Level = LevelSystemFromXP(d.Level.CurrentXP)
	return &d, nil
}

// Save writes the aggregate using an atomic temp-file-then-rename. The
// persistence metadata is stamped here: every successful write bumps
// TotalSaves and refreshes LastSaved.
func (s *Store) Save(d *GamificationData) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	d.Version = dataVersion
	d.Meta.TotalSaves++
	d.Meta.LastSaved = time.Now().UTC()

	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling gamification data: %w", err)
	}
	raw = append(raw, '\n')

	tmp, err := os.CreateTemp(s.dir, ".gamification-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		return fmt.Errorf("renaming data file: %w", err)
	}
	committed = true

	return nil
}

// backupLegacy keeps a copy of the pre-migration file so a failed
// migration never costs the original data.
func (s *Store) backupLegacy(raw []byte) error {
	backup := s.Path() + ".v1.bak"
	if _, err := os.Stat(backup); err == nil {
		return nil
	}
	if err := os.WriteFile(backup, raw, 0o600); err != nil {
		return fmt.Errorf("writing migration backup: %w", err)
	}
	return nil
}

// defaultStateDir returns ~/.local/state/scribeflow, respecting
// XDG_STATE_HOME if set.
func defaultStateDir() string {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".local", "state", appDirName)
}
