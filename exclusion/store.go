package exclusion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/exp/slices"

	"uppat/pattern"
)

// Key derives the artifact key for a model and query pair. Equal
// inputs map to the same key across processes and restarts.
func Key(model []byte, query string) string {
	h := sha256.New()
	h.Write(model)
	h.Write([]byte{0})
	h.Write([]byte(query))
	return hex.EncodeToString(h.Sum(nil))
}

// Digest returns the hex digest of a model, recorded in snapshots so
// an inspected artifact can be matched to its model.
func Digest(model []byte) string {
	sum := sha256.Sum256(model)
	return hex.EncodeToString(sum[:])
}

// Snapshot is the persisted form of a Set. The JSON artifact is meant
// to be inspected, and deleted to force a fresh enumeration.
type Snapshot struct {
	Query       string             `json:"query"`
	ModelDigest string             `json:"model_digest"`
	Patterns    [][]string         `json:"patterns"`
	Refinements []RefinementRecord `json:"refinements,omitempty"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// RefinementRecord is the persisted form of a Refinement.
type RefinementRecord struct {
	Pattern []string `json:"pattern"`
	Path    string   `json:"path"`
}

// Snapshot converts the Set to its persisted form.
func (s *Set) Snapshot(query, modelDigest string) *Snapshot {
	snap := &Snapshot{
		Query:       query,
		ModelDigest: modelDigest,
		Patterns:    make([][]string, len(s.patterns)),
	}
	for i, p := range s.patterns {
		snap.Patterns[i] = p.Clone()
	}
	for _, r := range s.refinements {
		snap.Refinements = append(snap.Refinements, RefinementRecord{
			Pattern: r.Pattern.Clone(),
			Path:    r.Path,
		})
	}
	return snap
}

// RestoreSet rebuilds a Set from a snapshot. A nil snapshot yields an
// empty Set, so the result of a missed Store.Load restores cleanly.
func RestoreSet(snap *Snapshot) *Set {
	s := NewSet()
	if snap == nil {
		return s
	}
	for _, p := range snap.Patterns {
		s.Add(pattern.Pattern(p))
	}
	for _, r := range snap.Refinements {
		s.AddRefinement(Refinement{Pattern: pattern.Pattern(r.Pattern), Path: r.Path})
	}
	return s
}

// Store persists Set snapshots as one JSON file per key under a
// directory. Writes go through a temporary file and a rename, so a
// crash mid-write never leaves a torn artifact behind. The Store does
// no locking; concurrent writers for the same key need external
// coordination.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. The directory is created on
// the first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the artifact path for a key.
func (st *Store) Path(key string) string {
	return filepath.Join(st.dir, key+".json")
}

// Load reads the snapshot for a key. A key that was never saved
// returns nil with no error; an unreadable artifact returns an error.
func (st *Store) Load(key string) (*Snapshot, error) {
	data, err := os.ReadFile(st.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("exclusion: Reading artifact for key %s: %w", key, err)
	}
	snap := &Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("exclusion: Corrupt artifact for key %s: %w", key, err)
	}
	return snap, nil
}

// Save writes the snapshot for a key, stamping its update time. The
// artifact is replaced atomically.
func (st *Store) Save(key string, snap *Snapshot) error {
	stamped := *snap
	stamped.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&stamped, "", "  ")
	if err != nil {
		return fmt.Errorf("exclusion: Encoding artifact for key %s: %w", key, err)
	}

	if err := os.MkdirAll(st.dir, 0o755); err != nil {
		return fmt.Errorf("exclusion: Creating artifact directory: %w", err)
	}
	tmp, err := os.CreateTemp(st.dir, key+".tmp-")
	if err != nil {
		return fmt.Errorf("exclusion: Creating temporary artifact: %w", err)
	}
	if _, err := tmp.Write(data); err == nil {
		err = tmp.Sync()
	}
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("exclusion: Writing artifact for key %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("exclusion: Writing artifact for key %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), st.Path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("exclusion: Replacing artifact for key %s: %w", key, err)
	}
	return nil
}

// Delete removes the artifact for a key. Deleting a key that was
// never saved is not an error.
func (st *Store) Delete(key string) error {
	err := os.Remove(st.Path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("exclusion: Deleting artifact for key %s: %w", key, err)
	}
	return nil
}

// List returns the keys of all saved artifacts, sorted.
func (st *Store) List() ([]string, error) {
	entries, err := os.ReadDir(st.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("exclusion: Listing artifacts: %w", err)
	}
	keys := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	slices.Sort(keys)
	return keys, nil
}
