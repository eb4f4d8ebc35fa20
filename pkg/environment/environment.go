// Package environment manages the stored variable sets and the single
// active-environment pointer used by the resolution pipeline.
package environment

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/quiverhttp/quiver/pkg/document"
)

// DocumentVersion is written to every persisted environments document.
const DocumentVersion = "1.0.0"

// ErrNotFound reports an environment id or name that does not exist.
var ErrNotFound = errors.New("environment not found")

// Variable is one environment variable. Order in an environment is
// preserved; when the set is flattened for substitution the last definition
// of a duplicated key wins.
type Variable struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Environment is a named, ordered variable set. EnvFilePath, when set,
// records the .env file this environment was imported from so it can be
// re-synced later.
type Environment struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Variables   []Variable `json:"variables"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	EnvFilePath string     `json:"envFilePath,omitempty"`
}

// Config is the root persisted environments document. At most one
// environment is active at a time; the pointer may be empty.
type Config struct {
	Version             string         `json:"version"`
	Environments        []*Environment `json:"environments"`
	ActiveEnvironmentID string         `json:"activeEnvironmentId,omitempty"`
}

// NewConfig returns an empty environments document.
func NewConfig() *Config {
	return &Config{
		Version:      DocumentVersion,
		Environments: []*Environment{},
	}
}

// VariableMap flattens the environment's variables into a lookup map.
// Later duplicates of a key overwrite earlier ones.
func (e *Environment) VariableMap() map[string]string {
	if e == nil || len(e.Variables) == 0 {
		return nil
	}
	vars := make(map[string]string, len(e.Variables))
	for _, v := range e.Variables {
		vars[v.Key] = v.Value
	}
	return vars
}

// Store owns the environments document, with the same whole-document
// read/transform/write discipline as the collection store.
type Store struct {
	doc *document.Store
	mu  sync.Mutex
}

// NewStore creates an environment store over the given document.
func NewStore(doc *document.Store) *Store {
	return &Store{doc: doc}
}

func (s *Store) load() (*Config, error) {
	cfg := NewConfig()
	if err := s.doc.Load(cfg); err != nil {
		return nil, err
	}
	if cfg.Version == "" {
		cfg.Version = DocumentVersion
	}
	if cfg.Environments == nil {
		cfg.Environments = []*Environment{}
	}
	return cfg, nil
}

// Config returns the current document snapshot.
func (s *Store) Config() (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Active returns the active environment, or nil when none is set (or the
// pointer is stale).
func (s *Store) Active() (*Environment, error) {
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	if cfg.ActiveEnvironmentID == "" {
		return nil, nil
	}
	for _, env := range cfg.Environments {
		if env.ID == cfg.ActiveEnvironmentID {
			return env, nil
		}
	}
	return nil, nil
}

// Create adds a new empty environment.
func (s *Store) Create(name string) (*Environment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	env := &Environment{
		ID:        uuid.NewString(),
		Name:      name,
		Variables: []Variable{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	cfg.Environments = append(cfg.Environments, env)

	if err := s.doc.Save(cfg); err != nil {
		return nil, err
	}
	return env, nil
}

// Delete removes an environment. If it was active, the active pointer is
// cleared. Returns whether an environment with that id was found.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return false, err
	}

	for i, env := range cfg.Environments {
		if env.ID == id {
			cfg.Environments = append(cfg.Environments[:i], cfg.Environments[i+1:]...)
			if cfg.ActiveEnvironmentID == id {
				cfg.ActiveEnvironmentID = ""
			}
			if err := s.doc.Save(cfg); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// SetActive marks the environment with the given id as active. An empty id
// clears the pointer.
func (s *Store) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}

	if id != "" && findEnv(cfg, id) == nil {
		return fmt.Errorf("set active environment %q: %w", id, ErrNotFound)
	}
	cfg.ActiveEnvironmentID = id

	return s.doc.Save(cfg)
}

// SetVariable sets or updates one variable in an environment, preserving
// the position of an existing key.
func (s *Store) SetVariable(id, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}

	env := findEnv(cfg, id)
	if env == nil {
		return fmt.Errorf("set variable in %q: %w", id, ErrNotFound)
	}

	replaced := false
	for i, v := range env.Variables {
		if v.Key == key {
			env.Variables[i].Value = value
			replaced = true
			break
		}
	}
	if !replaced {
		env.Variables = append(env.Variables, Variable{Key: key, Value: value})
	}
	env.UpdatedAt = time.Now().UTC()

	return s.doc.Save(cfg)
}

// UnsetVariable removes a variable from an environment.
func (s *Store) UnsetVariable(id, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}

	env := findEnv(cfg, id)
	if env == nil {
		return fmt.Errorf("unset variable in %q: %w", id, ErrNotFound)
	}

	for i, v := range env.Variables {
		if v.Key == key {
			env.Variables = append(env.Variables[:i], env.Variables[i+1:]...)
			break
		}
	}
	env.UpdatedAt = time.Now().UTC()

	return s.doc.Save(cfg)
}

// ImportDotenv loads a .env file into the environment, replacing its
// variables, and remembers the file path so Sync can re-read it later.
// Keys are sorted so repeated imports of the same file are deterministic.
func (s *Store) ImportDotenv(id, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}

	env := findEnv(cfg, id)
	if env == nil {
		return fmt.Errorf("import into %q: %w", id, ErrNotFound)
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env.Variables = make([]Variable, 0, len(keys))
	for _, k := range keys {
		env.Variables = append(env.Variables, Variable{Key: k, Value: vars[k]})
	}
	env.EnvFilePath = path
	env.UpdatedAt = time.Now().UTC()

	return s.doc.Save(cfg)
}

// Sync re-imports the environment's recorded .env file.
func (s *Store) Sync(id string) error {
	env, err := s.byID(id)
	if err != nil {
		return err
	}
	if env.EnvFilePath == "" {
		return fmt.Errorf("environment %q has no env file to sync from", env.Name)
	}
	return s.ImportDotenv(id, env.EnvFilePath)
}

// ByName returns the environment with the given name.
func (s *Store) ByName(name string) (*Environment, error) {
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	for _, env := range cfg.Environments {
		if env.Name == name {
			return env, nil
		}
	}
	return nil, fmt.Errorf("environment %q: %w", name, ErrNotFound)
}

func (s *Store) byID(id string) (*Environment, error) {
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	if env := findEnv(cfg, id); env != nil {
		return env, nil
	}
	return nil, fmt.Errorf("environment %q: %w", id, ErrNotFound)
}

func findEnv(cfg *Config, id string) *Environment {
	for _, env := range cfg.Environments {
		if env.ID == id {
			return env
		}
	}
	return nil
}
