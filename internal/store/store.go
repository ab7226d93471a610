package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Record is one persisted document. Stores do not interpret fields beyond
// the primary key, so documents with extra or legacy fields round-trip
// unchanged.
type Record = map[string]any

const defaultBackupKeep = 5

// Options tunes a Store. Zero value gives key "id" and 5 retained backups.
type Options struct {
	Key        string
	BackupKeep int // <0 disables backups
	Logger     *zap.SugaredLogger
}

// Store persists one homogeneous collection as a single JSON array file.
// Every mutation rewrites the whole file; the previous content is kept as a
// timestamped .bak.json sibling and old backups are pruned. A file that no
// longer parses is renamed aside as .corrupt.json and reads fall back to an
// empty collection, so a damaged file never takes the app down.
type Store struct {
	path       string
	entity     string
	key        string
	backupKeep int
	log        *zap.SugaredLogger
	mu         sync.Mutex
}

func New(path, entity string, opts Options) *Store {
	key := opts.Key
	if key == "" {
		key = "id"
	}
	keep := opts.BackupKeep
	if keep == 0 {
		keep = defaultBackupKeep
	}
	if keep < 0 {
		keep = 0
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Store{path: path, entity: entity, key: key, backupKeep: keep, log: log}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			s.writeRaw(nil)
		}
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

func (s *Store) stem() string {
	return strings.TrimSuffix(s.path, filepath.Ext(s.path))
}

// readRaw loads the collection. Missing file => empty. Invalid JSON => the
// original bytes are preserved under .corrupt.json and an empty collection
// is returned; corruption is surfaced on disk, not as an error, because the
// caller has no recovery path besides starting over.
func (s *Store) readRaw() []Record {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var out []Record
	if err := json.Unmarshal(b, &out); err != nil {
		corrupt := s.stem() + ".corrupt.json"
		if werr := os.WriteFile(corrupt, b, 0o644); werr == nil {
			s.log.Warnw("fichier corrompu mis de côté", "entity", s.entity, "file", corrupt)
		}
		return nil
	}
	return out
}

func (s *Store) rotateBackups() {
	if s.backupKeep <= 0 {
		return
	}
	files, err := filepath.Glob(s.stem() + ".*.bak.json")
	if err != nil {
		return
	}
	sort.Strings(files)
	for len(files) > s.backupKeep {
		old := files[0]
		files = files[1:]
		if err := os.Remove(old); err != nil {
			s.log.Warnw("suppression backup impossible", "file", old, "err", err)
		}
	}
}

// writeRaw serializes and persists the collection. If the new serialization
// is byte-identical to what is on disk the write is skipped entirely, which
// keeps repeated reconciliations from churning backups.
func (s *Store) writeRaw(data []Record) {
	if data == nil {
		data = []Record{}
	}
	dump, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		s.log.Errorw("serialisation impossible", "entity", s.entity, "err", err)
		return
	}
	if cur, err := os.ReadFile(s.path); err == nil {
		if string(cur) == string(dump) {
			return
		}
		if s.backupKeep > 0 {
			ts := time.Now().Format("20060102-150405.000000000")
			backup := fmt.Sprintf("%s.%s.bak.json", s.stem(), ts)
			if err := os.WriteFile(backup, cur, 0o644); err != nil {
				s.log.Warnw("backup impossible", "file", backup, "err", err)
			}
			s.rotateBackups()
		}
	}
	if err := os.WriteFile(s.path, dump, 0o644); err != nil {
		s.log.Errorw("écriture impossible", "entity", s.entity, "file", s.path, "err", err)
	}
}

// ListAll returns every record in on-disk order.
func (s *Store) ListAll() []Record {
	return s.readRaw()
}

// Get scans for the record whose primary key matches id (string-compared).
func (s *Store) Get(id string) (Record, bool) {
	for _, r := range s.readRaw() {
		if keyString(r[s.key]) == id {
			return r, true
		}
	}
	return nil, false
}

// Find returns every record the predicate accepts. A predicate that panics
// on a record counts as "does not match" for that record.
func (s *Store) Find(pred func(Record) bool) []Record {
	var out []Record
	for _, r := range s.readRaw() {
		if safeMatch(pred, r) {
			out = append(out, r)
		}
	}
	return out
}

// FindOne returns the first record the predicate accepts.
func (s *Store) FindOne(pred func(Record) bool) (Record, bool) {
	for _, r := range s.readRaw() {
		if safeMatch(pred, r) {
			return r, true
		}
	}
	return nil, false
}

func safeMatch(pred func(Record) bool, r Record) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return pred(r)
}

// Add appends a new record, generating a primary key when absent.
func (s *Store) Add(rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec = cloneRecord(rec)
	id := keyString(rec[s.key])
	if id == "" {
		id = uuid.NewString()
		rec[s.key] = id
	}
	data := s.readRaw()
	for _, d := range data {
		if keyString(d[s.key]) == id {
			return nil, &DuplicateKeyError{Entity: s.entity, Key: s.key, Value: id}
		}
	}
	data = append(data, rec)
	s.writeRaw(data)
	return rec, nil
}

// Update merges rec field-by-field over the stored record with the same
// primary key; fields absent from rec keep their prior values, so unknown
// legacy fields survive rewrites untouched.
func (s *Store) Update(rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := keyString(rec[s.key])
	if id == "" {
		return nil, fmt.Errorf("update %s: %w", s.entity, ErrMissingKey)
	}
	data := s.readRaw()
	for i, existing := range data {
		if keyString(existing[s.key]) != id {
			continue
		}
		merged := cloneRecord(existing)
		for k, v := range rec {
			merged[k] = v
		}
		data[i] = merged
		s.writeRaw(data)
		return merged, nil
	}
	return nil, &NotFoundError{Entity: s.entity, Key: s.key, Value: id}
}

// Upsert updates when the key exists, adds otherwise.
func (s *Store) Upsert(rec Record) (Record, error) {
	if keyString(rec[s.key]) == "" {
		return s.Add(rec)
	}
	out, err := s.Update(rec)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return s.Add(rec)
		}
		return nil, err
	}
	return out, nil
}

// Delete removes every record matching id and reports whether anything was
// removed. Absent key is not an error.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.readRaw()
	kept := data[:0]
	for _, d := range data {
		if keyString(d[s.key]) != id {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(data) {
		return false
	}
	s.writeRaw(kept)
	return true
}

func cloneRecord(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func keyString(v any) string {
	if v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
