// Package document provides whole-document JSON persistence for the
// collection and environment stores.
//
// Each store owns exactly one document. Every mutation reads the entire
// document, transforms an in-memory copy, and rewrites the entire document
// with an atomic rename, so no partially-applied mutation is ever observable
// on disk. A missing document is not an error: callers receive their default
// value untouched. A malformed document degrades the same way, with a warning
// on stderr, on the principle that a corrupt local file must never block the
// user from continuing to work.
//
// Documents live in the XDG data directory by default:
//
//   - Linux: ~/.local/share/quiver/collections.json
//   - macOS: ~/Library/Application Support/quiver/collections.json
//   - Windows: %LOCALAPPDATA%\quiver\collections.json
package document

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/adrg/xdg"
)

// Store reads and writes one JSON document at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store for the document at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the XDG-compliant path for a named document,
// creating parent directories as needed.
func DefaultPath(name string) (string, error) {
	path, err := xdg.DataFile(filepath.Join("quiver", name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve data path for %s: %w", name, err)
	}
	return path, nil
}

// Path returns the document's location on disk.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document into v. A missing file leaves v untouched and
// returns nil. A file that fails to parse also leaves v untouched: the
// failure is logged as a warning and recovery is silent, never a hard error.
func (s *Store) Load(v any) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	// Decode into a fresh value first: json.Unmarshal fills well-typed
	// fields before reporting a type mismatch, and a shape-invalid document
	// must not leave that partial decode behind in v.
	tmp := reflect.New(reflect.TypeOf(v).Elem())
	if err := json.Unmarshal(data, tmp.Interface()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: malformed document %s, starting from an empty one: %v\n", s.path, err)
		return nil
	}
	reflect.ValueOf(v).Elem().Set(tmp.Elem())

	return nil
}

// Save writes v as indented JSON with an atomic rename.
func (s *Store) Save(v any) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath) // Clean up on error
		return fmt.Errorf("failed to save document: %w", err)
	}

	return nil
}
