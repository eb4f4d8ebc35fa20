// Package history keeps a most-recently-used list of resolved requests so
// the CLI can surface them without the user re-typing node ids.
package history

import (
	"sync"
	"time"

	"github.com/quiverhttp/quiver/pkg/document"
)

// DefaultMaxEntries bounds the persisted history.
const DefaultMaxEntries = 20

// Entry is one resolved request, keyed by its node id.
type Entry struct {
	RequestID string    `json:"requestId"`
	Name      string    `json:"name"`
	Method    string    `json:"method"`
	URL       string    `json:"url"`
	LastUsed  time.Time `json:"lastUsed"`
	UseCount  int       `json:"useCount"`
}

// Config is the persisted history document. Entries are kept in
// most-recently-used order, newest first.
type Config struct {
	Version string  `json:"version"`
	Entries []Entry `json:"entries"`
}

// Store persists the history document.
type Store struct {
	doc *document.Store
	max int
	mu  sync.Mutex
}

// NewStore creates a history store over the document at path.
func NewStore(path string) *Store {
	return &Store{doc: document.NewStore(path), max: DefaultMaxEntries}
}

func (s *Store) load() (*Config, error) {
	cfg := &Config{Version: "1.0.0"}
	if err := s.doc.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Record moves the entry for requestID to the front, refreshing its name,
// method, and URL to the values just resolved. New ids are inserted at the
// front; the list is trimmed to the store's maximum.
func (s *Store) Record(requestID, name, method, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}

	entry := Entry{
		RequestID: requestID,
		Name:      name,
		Method:    method,
		URL:       url,
		LastUsed:  time.Now().UTC(),
		UseCount:  1,
	}
	for i, e := range cfg.Entries {
		if e.RequestID == requestID {
			entry.UseCount = e.UseCount + 1
			cfg.Entries = append(cfg.Entries[:i], cfg.Entries[i+1:]...)
			break
		}
	}
	cfg.Entries = append([]Entry{entry}, cfg.Entries...)
	if len(cfg.Entries) > s.max {
		cfg.Entries = cfg.Entries[:s.max]
	}

	return s.doc.Save(cfg)
}

// List returns the history, newest first.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	return cfg.Entries, nil
}

// Forget drops the entry for requestID. Unknown ids are a no-op, so callers
// can forget a deleted node without checking whether it was ever resolved.
func (s *Store) Forget(requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}
	for i, e := range cfg.Entries {
		if e.RequestID == requestID {
			cfg.Entries = append(cfg.Entries[:i], cfg.Entries[i+1:]...)
			return s.doc.Save(cfg)
		}
	}
	return nil
}

// Clear removes all entries.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}
	cfg.Entries = nil
	return s.doc.Save(cfg)
}
