package collection

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/quiverhttp/quiver/pkg/document"
	"github.com/quiverhttp/quiver/pkg/request"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collections.json")
	return NewStore(document.NewStore(path))
}

func TestCreateCollection(t *testing.T) {
	store := newTestStore(t)

	node, err := store.CreateCollection("api", "")
	if err != nil {
		t.Fatalf("Failed to create collection: %v", err)
	}
	if node.ID == "" {
		t.Error("Expected a fresh id")
	}
	if node.Type != TypeCollection {
		t.Errorf("Expected type collection, got %s", node.Type)
	}
	if node.CreatedAt.IsZero() || node.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}

	child, err := store.CreateCollection("v1", node.ID)
	if err != nil {
		t.Fatalf("Failed to create nested collection: %v", err)
	}

	cfg, err := store.Config()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.Collections) != 1 {
		t.Fatalf("Expected 1 root collection, got %d", len(cfg.Collections))
	}
	if len(cfg.Collections[0].Children) != 1 || cfg.Collections[0].Children[0].ID != child.ID {
		t.Error("Expected child to be attached under its parent")
	}
}

func TestCreateCollectionValidation(t *testing.T) {
	store := newTestStore(t)

	parent, err := store.CreateCollection("api", "")
	if err != nil {
		t.Fatalf("Failed to create collection: %v", err)
	}
	reqNode, err := store.SaveRequest("ping", request.HttpRequest{Method: "GET"}, parent.ID, "")
	if err != nil {
		t.Fatalf("Failed to save request: %v", err)
	}

	tests := []struct {
		name     string
		collName string
		parentID string
		wantErr  error
	}{
		{"missing parent", "x", "nope", ErrNotFound},
		{"parent is a request", "x", reqNode.ID, ErrNotACollection},
		{"duplicate sibling collection", "api", "", ErrDuplicateName},
		{"duplicate against request sibling", "ping", parent.ID, ErrDuplicateName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CreateCollection(tt.collName, tt.parentID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSaveRequestUpdateInPlace(t *testing.T) {
	store := newTestStore(t)

	parent, _ := store.CreateCollection("api", "")
	node, err := store.SaveRequest("users", request.HttpRequest{Method: "GET", URL: "/users"}, parent.ID, "")
	if err != nil {
		t.Fatalf("Failed to save request: %v", err)
	}

	updated, err := store.SaveRequest("list users", request.HttpRequest{Method: "POST", URL: "/users"}, parent.ID, node.ID)
	if err != nil {
		t.Fatalf("Failed to update request: %v", err)
	}
	if updated.ID != node.ID {
		t.Error("Expected update to keep the node id")
	}
	if updated.Name != "list users" || updated.Request.Method != "POST" {
		t.Error("Expected name and request to be updated")
	}

	cfg, _ := store.Config()
	if len(cfg.Collections[0].Children) != 1 {
		t.Errorf("Expected 1 child after in-place update, got %d", len(cfg.Collections[0].Children))
	}
}

func TestSaveRequestReparents(t *testing.T) {
	store := newTestStore(t)

	src, _ := store.CreateCollection("src", "")
	dst, _ := store.CreateCollection("dst", "")
	node, _ := store.SaveRequest("ping", request.HttpRequest{Method: "GET"}, src.ID, "")

	if _, err := store.SaveRequest("ping", request.HttpRequest{Method: "GET"}, dst.ID, node.ID); err != nil {
		t.Fatalf("Failed to re-parent request: %v", err)
	}

	cfg, _ := store.Config()
	var srcNode, dstNode *Node
	for _, root := range cfg.Collections {
		switch root.Name {
		case "src":
			srcNode = root
		case "dst":
			dstNode = root
		}
	}
	if len(srcNode.Children) != 0 {
		t.Error("Expected old parent to lose the child")
	}
	if len(dstNode.Children) != 1 || dstNode.Children[0].ID != node.ID {
		t.Error("Expected new parent to own the child")
	}
}

func TestSaveRequestRejectsCollectionTarget(t *testing.T) {
	store := newTestStore(t)

	parent, _ := store.CreateCollection("parent", "")
	child, _ := store.CreateCollection("child", parent.ID)

	// Updating a collection node through the request path would slip past
	// the cycle check and push parent inside its own subtree, orphaning it.
	if _, err := store.SaveRequest("parent", request.HttpRequest{}, child.ID, parent.ID); !errors.Is(err, ErrNotARequest) {
		t.Fatalf("Expected ErrNotARequest, got %v", err)
	}

	cfg, _ := store.Config()
	if len(cfg.Collections) != 1 {
		t.Fatalf("Expected 1 root collection, got %d", len(cfg.Collections))
	}
	root := cfg.Collections[0]
	if root.ID != parent.ID || len(root.Children) != 1 || root.Children[0].ID != child.ID {
		t.Error("Expected tree to stay intact after rejected save")
	}
}

func TestSaveRequestDuplicateNameAtDestination(t *testing.T) {
	store := newTestStore(t)

	parent, _ := store.CreateCollection("api", "")
	if _, err := store.SaveRequest("ping", request.HttpRequest{}, parent.ID, ""); err != nil {
		t.Fatalf("Failed to save request: %v", err)
	}
	if _, err := store.SaveRequest("ping", request.HttpRequest{}, parent.ID, ""); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Expected ErrDuplicateName, got %v", err)
	}

	// Re-saving the node under its own name must not collide with itself.
	node, _ := store.SaveRequest("pong", request.HttpRequest{}, parent.ID, "")
	if _, err := store.SaveRequest("pong", request.HttpRequest{}, parent.ID, node.ID); err != nil {
		t.Errorf("Expected self-update to succeed, got %v", err)
	}
}

func TestDeleteNode(t *testing.T) {
	store := newTestStore(t)

	parent, _ := store.CreateCollection("api", "")
	child, _ := store.CreateCollection("v1", parent.ID)
	grandchild, _ := store.SaveRequest("ping", request.HttpRequest{}, child.ID, "")

	found, err := store.DeleteNode(parent.ID)
	if err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if !found {
		t.Error("Expected delete to report the node as found")
	}

	cfg, _ := store.Config()
	if len(cfg.Collections) != 0 {
		t.Error("Expected forest to be empty after deleting the root collection")
	}
	for _, id := range []string{parent.ID, child.ID, grandchild.ID} {
		if _, err := store.Get(id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected %s to be gone, got %v", id, err)
		}
	}

	found, err = store.DeleteNode("nope")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if found {
		t.Error("Expected delete of unknown id to report not found")
	}
}

func TestRenameNode(t *testing.T) {
	store := newTestStore(t)

	parent, _ := store.CreateCollection("api", "")
	a, _ := store.CreateCollection("a", parent.ID)
	if _, err := store.CreateCollection("b", parent.ID); err != nil {
		t.Fatalf("Failed to create sibling: %v", err)
	}

	if err := store.RenameNode(a.ID, "b"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Expected ErrDuplicateName, got %v", err)
	}
	if err := store.RenameNode(a.ID, "a"); err != nil {
		t.Errorf("Expected rename to own name to succeed, got %v", err)
	}
	if err := store.RenameNode(a.ID, "c"); err != nil {
		t.Errorf("Failed to rename: %v", err)
	}
	if err := store.RenameNode("nope", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	renamed, _ := store.Get(a.ID)
	if renamed.Name != "c" {
		t.Errorf("Expected name c, got %s", renamed.Name)
	}
}

func TestMoveNode(t *testing.T) {
	store := newTestStore(t)

	a, _ := store.CreateCollection("a", "")
	b, _ := store.CreateCollection("b", a.ID)
	c, _ := store.CreateCollection("c", b.ID)

	// Move c to the root level.
	if err := store.MoveNode(c.ID, ""); err != nil {
		t.Fatalf("Failed to move to root: %v", err)
	}
	cfg, _ := store.Config()
	if len(cfg.Collections) != 2 {
		t.Fatalf("Expected 2 root collections, got %d", len(cfg.Collections))
	}

	// And back under b.
	if err := store.MoveNode(c.ID, b.ID); err != nil {
		t.Fatalf("Failed to move back: %v", err)
	}
	path := AncestorPath(mustConfig(t, store), c.ID)
	want := []string{a.ID, b.ID}
	if len(path) != len(want) || path[0] != want[0] || path[1] != want[1] {
		t.Errorf("Expected ancestor path %v, got %v", want, path)
	}
}

func TestMoveNodeRejectsCycles(t *testing.T) {
	store := newTestStore(t)

	a, _ := store.CreateCollection("a", "")
	b, _ := store.CreateCollection("b", a.ID)
	c, _ := store.CreateCollection("c", b.ID)

	tests := []struct {
		name   string
		id     string
		target string
	}{
		{"into itself", a.ID, a.ID},
		{"into child", a.ID, b.ID},
		{"into grandchild", a.ID, c.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.MoveNode(tt.id, tt.target); !errors.Is(err, ErrCyclicMove) {
				t.Errorf("Expected ErrCyclicMove, got %v", err)
			}
		})
	}
}

func TestMoveNodeDuplicateNameAtDestination(t *testing.T) {
	store := newTestStore(t)

	a, _ := store.CreateCollection("a", "")
	if _, err := store.CreateCollection("x", a.ID); err != nil {
		t.Fatalf("Failed to create: %v", err)
	}
	other, _ := store.CreateCollection("x", "")

	if err := store.MoveNode(other.ID, a.ID); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Expected ErrDuplicateName, got %v", err)
	}
}

func TestMoveUpdatesTimestamps(t *testing.T) {
	store := newTestStore(t)

	a, _ := store.CreateCollection("a", "")
	b, _ := store.CreateCollection("b", "")
	child, _ := store.CreateCollection("child", a.ID)

	beforeA, _ := store.Get(a.ID)
	beforeB, _ := store.Get(b.ID)
	beforeChild := child.UpdatedAt

	if err := store.MoveNode(child.ID, b.ID); err != nil {
		t.Fatalf("Failed to move: %v", err)
	}

	afterA, _ := store.Get(a.ID)
	afterB, _ := store.Get(b.ID)
	afterChild, _ := store.Get(child.ID)

	if !afterChild.UpdatedAt.After(beforeChild) {
		t.Error("Expected moved node timestamp to advance")
	}
	if afterA.UpdatedAt.Before(beforeA.UpdatedAt) || afterA.UpdatedAt.Equal(beforeA.UpdatedAt) {
		t.Error("Expected old parent timestamp to advance")
	}
	if afterB.UpdatedAt.Before(beforeB.UpdatedAt) || afterB.UpdatedAt.Equal(beforeB.UpdatedAt) {
		t.Error("Expected new parent timestamp to advance")
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collections.json")
	store := NewStore(document.NewStore(path))

	a, _ := store.CreateCollection("api", "")
	baseURL := "https://api.test"
	if err := store.UpdateSettings(a.ID, &Settings{BaseURL: &baseURL}); err != nil {
		t.Fatalf("Failed to set settings: %v", err)
	}
	if _, err := store.SaveRequest("ping", request.HttpRequest{Method: "GET", URL: "/ping"}, a.ID, ""); err != nil {
		t.Fatalf("Failed to save request: %v", err)
	}

	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read document: %v", err)
	}

	// Reload through a fresh store and write back without modification.
	store2 := NewStore(document.NewStore(path))
	cfg, err := store2.Config()
	if err != nil {
		t.Fatalf("Failed to reload: %v", err)
	}
	if err := document.NewStore(path).Save(cfg); err != nil {
		t.Fatalf("Failed to re-save: %v", err)
	}
	second, _ := os.ReadFile(path)

	var before, after any
	if err := json.Unmarshal(first, &before); err != nil {
		t.Fatalf("Failed to parse first write: %v", err)
	}
	if err := json.Unmarshal(second, &after); err != nil {
		t.Fatalf("Failed to parse second write: %v", err)
	}
	if !jsonEqual(before, after) {
		t.Error("Expected load/save round-trip to preserve the document")
	}
}

func TestMalformedDocumentRecovers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collections.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	store := NewStore(document.NewStore(path))
	cfg, err := store.Config()
	if err != nil {
		t.Fatalf("Expected silent recovery, got %v", err)
	}
	if len(cfg.Collections) != 0 {
		t.Error("Expected empty config after malformed document")
	}
	if cfg.Version != DocumentVersion {
		t.Errorf("Expected version %s, got %s", DocumentVersion, cfg.Version)
	}

	// The store stays usable.
	if _, err := store.CreateCollection("fresh", ""); err != nil {
		t.Errorf("Expected store to keep working, got %v", err)
	}
}

func TestDuplicateIDTreatedAsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collections.json")
	doc := `{"version":"1.0.0","collections":[
		{"id":"dup","name":"a","type":"collection","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"},
		{"id":"dup","name":"b","type":"collection","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}
	]}`
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	store := NewStore(document.NewStore(path))
	cfg, err := store.Config()
	if err != nil {
		t.Fatalf("Expected silent recovery, got %v", err)
	}
	if len(cfg.Collections) != 0 {
		t.Error("Expected empty config when id uniqueness is violated")
	}
}

func mustConfig(t *testing.T, store *Store) *Config {
	t.Helper()
	cfg, err := store.Config()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func jsonEqual(a, b any) bool {
	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	return string(aj) == string(bj)
}
