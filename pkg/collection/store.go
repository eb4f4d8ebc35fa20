package collection

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quiverhttp/quiver/pkg/document"
	"github.com/quiverhttp/quiver/pkg/request"
)

// Store owns the collections document. Every mutation reads the whole
// document, validates against a freshly built index, applies the structural
// change, and writes the whole document back; validation always completes
// before anything is committed. A single mutex serializes mutations, which
// is the full extent of the required single-writer-per-document discipline.
type Store struct {
	doc *document.Store
	mu  sync.Mutex
}

// NewStore creates a collection store over the given document.
func NewStore(doc *document.Store) *Store {
	return &Store{doc: doc}
}

// load reads the document and indexes it. A document whose shape violates
// the id-uniqueness invariant is treated like any other malformed document:
// warn and continue from an empty one.
func (s *Store) load() (*Config, *index, error) {
	cfg := NewConfig()
	if err := s.doc.Load(cfg); err != nil {
		return nil, nil, err
	}
	if cfg.Version == "" {
		cfg.Version = DocumentVersion
	}
	if cfg.Collections == nil {
		cfg.Collections = []*Node{}
	}

	ix, err := buildIndex(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: malformed document %s, starting from an empty one: %v\n", s.doc.Path(), err)
		cfg = NewConfig()
		ix, _ = buildIndex(cfg)
	}
	return cfg, ix, nil
}

// Config returns the current document snapshot. The snapshot is a private
// copy; read-only resolution over it is safe to run concurrently.
func (s *Store) Config() (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, _, err := s.load()
	return cfg, err
}

// Get returns the node with the given id from the current snapshot.
func (s *Store) Get(id string) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ix, err := s.load()
	if err != nil {
		return nil, err
	}
	node := ix.get(id)
	if node == nil {
		return nil, fmt.Errorf("get node %q: %w", id, ErrNotFound)
	}
	return node, nil
}

// ResolveSettingsFor computes the effective settings visible at the node.
func (s *Store) ResolveSettingsFor(id string) (*Settings, error) {
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	return ResolveSettings(cfg, id)
}

// CreateCollection creates an empty collection under parentID ("" for the
// root level) and persists the document.
func (s *Store) CreateCollection(name, parentID string) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ix, err := s.load()
	if err != nil {
		return nil, err
	}

	if err := validateDestination(ix, parentID); err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}
	if ix.hasSiblingNamed(parentID, name, "") {
		return nil, fmt.Errorf("create collection %q: %w", name, ErrDuplicateName)
	}

	node := newNode(name, TypeCollection)
	node.Children = []*Node{}
	ix.attach(parentID, node)
	touch(ix.get(parentID))

	if err := s.doc.Save(cfg); err != nil {
		return nil, err
	}
	return node, nil
}

// SaveRequest creates or updates a request node. With existingID empty a new
// node is created under parentID ("" for root). With existingID set, it must
// name an existing request node, whose name, request, and timestamp are then
// updated in place; if parentID
// differs from its current parent the node is detached and re-attached in
// the same pass, under the same structural validation as a create.
// Sibling-name uniqueness is always checked against the destination parent,
// excluding the node's own prior slot.
func (s *Store) SaveRequest(name string, req request.HttpRequest, parentID, existingID string) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ix, err := s.load()
	if err != nil {
		return nil, err
	}

	if err := validateDestination(ix, parentID); err != nil {
		return nil, fmt.Errorf("save request %q: %w", name, err)
	}
	if ix.hasSiblingNamed(parentID, name, existingID) {
		return nil, fmt.Errorf("save request %q: %w", name, ErrDuplicateName)
	}

	var node *Node
	if existingID != "" {
		node = ix.get(existingID)
		if node == nil {
			return nil, fmt.Errorf("save request %q: %w", existingID, ErrNotFound)
		}
		// Updating a collection through this path would bypass the cycle
		// check and could re-parent it into its own subtree.
		if node.Type != TypeRequest {
			return nil, fmt.Errorf("save request %q: %w", existingID, ErrNotARequest)
		}
		node.Name = name
		reqCopy := req.Clone()
		node.Request = &reqCopy
		touch(node)

		if currentParent := ix.parents[existingID]; currentParent != parentID {
			oldParent := ix.get(currentParent)
			ix.detach(existingID)
			ix.attach(parentID, node)
			touch(oldParent)
			touch(ix.get(parentID))
		}
	} else {
		node = newNode(name, TypeRequest)
		reqCopy := req.Clone()
		node.Request = &reqCopy
		ix.attach(parentID, node)
		touch(ix.get(parentID))
	}

	if err := s.doc.Save(cfg); err != nil {
		return nil, err
	}
	return node, nil
}

// DeleteNode removes the node, and with it its whole subtree if it is a
// collection. Returns whether a node with that id was found.
func (s *Store) DeleteNode(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ix, err := s.load()
	if err != nil {
		return false, err
	}

	if ix.get(id) == nil {
		return false, nil
	}
	parent := ix.get(ix.parents[id])
	ix.detach(id)
	ix.remove(id)
	touch(parent)

	if err := s.doc.Save(cfg); err != nil {
		return false, err
	}
	return true, nil
}

// RenameNode renames the node after validating sibling-name uniqueness in
// its current parent.
func (s *Store) RenameNode(id, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ix, err := s.load()
	if err != nil {
		return err
	}

	node := ix.get(id)
	if node == nil {
		return fmt.Errorf("rename node %q: %w", id, ErrNotFound)
	}
	if ix.hasSiblingNamed(ix.parents[id], newName, id) {
		return fmt.Errorf("rename node to %q: %w", newName, ErrDuplicateName)
	}

	node.Name = newName
	touch(node)

	return s.doc.Save(cfg)
}

// MoveNode re-parents the node under newParentID ("" for the root level).
// Moving a node into itself or any of its own descendants is rejected, and
// name uniqueness is revalidated at the destination. Timestamps update on
// the moved node and on both touched parents.
func (s *Store) MoveNode(id, newParentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ix, err := s.load()
	if err != nil {
		return err
	}

	node := ix.get(id)
	if node == nil {
		return fmt.Errorf("move node %q: %w", id, ErrNotFound)
	}
	if err := validateDestination(ix, newParentID); err != nil {
		return fmt.Errorf("move node %q: %w", id, err)
	}
	if ix.isSelfOrDescendant(id, newParentID) {
		return fmt.Errorf("move node %q: %w", id, ErrCyclicMove)
	}
	if ix.hasSiblingNamed(newParentID, node.Name, id) {
		return fmt.Errorf("move node %q: %w", id, ErrDuplicateName)
	}

	oldParent := ix.get(ix.parents[id])
	ix.detach(id)
	ix.attach(newParentID, node)
	touch(node)
	touch(oldParent)
	touch(ix.get(newParentID))

	return s.doc.Save(cfg)
}

// UpdateSettings replaces the settings of a collection node.
func (s *Store) UpdateSettings(id string, settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ix, err := s.load()
	if err != nil {
		return err
	}

	node := ix.get(id)
	if node == nil {
		return fmt.Errorf("update settings for %q: %w", id, ErrNotFound)
	}
	if node.Type != TypeCollection {
		return fmt.Errorf("update settings for %q: %w", id, ErrNotACollection)
	}

	node.Settings = settings.Clone()
	touch(node)

	return s.doc.Save(cfg)
}

// validateDestination checks that a prospective parent exists and can hold
// children. An empty id is the root level and always valid.
func validateDestination(ix *index, parentID string) error {
	if parentID == "" {
		return nil
	}
	parent := ix.get(parentID)
	if parent == nil {
		return fmt.Errorf("parent %q: %w", parentID, ErrNotFound)
	}
	if parent.Type != TypeCollection {
		return fmt.Errorf("parent %q: %w", parentID, ErrNotACollection)
	}
	return nil
}

func newNode(name string, typ NodeType) *Node {
	now := time.Now().UTC()
	return &Node{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      typ,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func touch(node *Node) {
	if node != nil {
		node.UpdatedAt = time.Now().UTC()
	}
}
