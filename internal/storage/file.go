package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"outreachbot/internal/outreach"
	logx "outreachbot/pkg/logx"
)

// fileStore is the default dependency-free persistence backend.
//
// Files under the data directory:
//   - contacts.json           (array)
//   - targets.json            (array)
//   - pending_outreach.json   (array)
//   - outreach_log.json       (array, append-only in content)
//   - opt_outs.json           (object: entries array plus summary counters)
//
// Every save is a full-file overwrite through a tmp file + rename, so a
// crash mid-write never corrupts the previous checkpoint.
type fileStore struct {
	log logx.Logger
	dir string

	mu sync.Mutex
}

// optOutDocument mirrors the on-disk opt-out store shape.
type optOutDocument struct {
	OptOuts     []outreach.OptOutEntry `json:"opt_outs"`
	Created     string                 `json:"created,omitempty"`
	LastUpdated string                 `json:"last_updated,omitempty"`
	Total       int                    `json:"total_opt_outs"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	dir := cfg.Path
	if dir == "" {
		dir = "./outreach_data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &fileStore{log: log, dir: dir}, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) LoadContacts() ([]outreach.Contact, error) {
	var out []outreach.Contact
	if err := s.loadJSON("contacts.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *fileStore) SaveContacts(v []outreach.Contact) error {
	return s.saveJSON("contacts.json", emptyNotNull(v))
}

func (s *fileStore) LoadTargets() ([]outreach.Target, error) {
	var out []outreach.Target
	if err := s.loadJSON("targets.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *fileStore) SaveTargets(v []outreach.Target) error {
	return s.saveJSON("targets.json", emptyNotNull(v))
}

func (s *fileStore) LoadPending() ([]outreach.Pending, error) {
	var out []outreach.Pending
	if err := s.loadJSON("pending_outreach.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *fileStore) SavePending(v []outreach.Pending) error {
	return s.saveJSON("pending_outreach.json", emptyNotNull(v))
}

func (s *fileStore) LoadLog() ([]outreach.LogEntry, error) {
	var out []outreach.LogEntry
	if err := s.loadJSON("outreach_log.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *fileStore) AppendLog(entries ...outreach.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var cur []outreach.LogEntry
	if err := s.loadJSONLocked("outreach_log.json", &cur); err != nil {
		return err
	}
	cur = append(cur, entries...)
	return s.saveJSONLocked("outreach_log.json", cur)
}

func (s *fileStore) LoadOptOuts() ([]outreach.OptOutEntry, error) {
	var doc optOutDocument
	if err := s.loadJSON("opt_outs.json", &doc); err != nil {
		return nil, err
	}
	return doc.OptOuts, nil
}

func (s *fileStore) SaveOptOuts(v []outreach.OptOutEntry) error {
	doc := optOutDocument{
		OptOuts:     v,
		LastUpdated: time.Now().Format("2006-01-02"),
		Total:       len(v),
	}
	if doc.OptOuts == nil {
		doc.OptOuts = []outreach.OptOutEntry{}
	}
	return s.saveJSON("opt_outs.json", doc)
}

func (s *fileStore) loadJSON(name string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadJSONLocked(name, out)
}

func (s *fileStore) loadJSONLocked(name string, out any) error {
	path := filepath.Join(s.dir, name)
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		// Fail fast: partial state is unsafe to operate on.
		return fmt.Errorf("store %s: %w", name, err)
	}
	return nil
}

func (s *fileStore) saveJSON(name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveJSONLocked(name, v)
}

func (s *fileStore) saveJSONLocked(name string, v any) error {
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func emptyNotNull[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
