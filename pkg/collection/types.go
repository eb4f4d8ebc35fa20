// Package collection implements the persistent collection tree: the forest
// of collection and request nodes, its mutation operations and structural
// invariants, and the resolver that computes the effective settings visible
// at any node.
//
// The persisted document is a nested tree (children inline under their
// parent, in display order). Operations never walk that tree recursively:
// each one builds an id-keyed index over the loaded snapshot, so uniqueness
// and cycle checks are plain map lookups.
package collection

import (
	"time"

	"github.com/quiverhttp/quiver/pkg/request"
)

// DocumentVersion is written to every persisted collections document.
const DocumentVersion = "1.0.0"

// NodeType discriminates collection nodes from request nodes.
type NodeType string

const (
	TypeCollection NodeType = "collection"
	TypeRequest    NodeType = "request"
)

// Settings holds per-collection overrides inherited by every descendant.
// A nil field means "no opinion at this level"; an empty (but present)
// value means "explicitly cleared". The distinction matters to MergeSettings.
type Settings struct {
	BaseURL      *string                `json:"baseUrl,omitempty"`
	Auth         *request.AuthConfig    `json:"auth,omitempty"`
	Headers      []request.KeyValuePair `json:"headers,omitempty"`
	GitRemote    *string                `json:"gitRemote,omitempty"`
	LastSyncedAt *time.Time             `json:"lastSyncedAt,omitempty"`
}

// Node is one entry in the collection forest: either a collection (with
// ordered children and optional settings) or a request (with a request
// definition). Child order is significant and preserved.
type Node struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      NodeType  `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Collection fields.
	Children []*Node   `json:"children,omitempty"`
	Settings *Settings `json:"settings,omitempty"`

	// Request field.
	Request *request.HttpRequest `json:"request,omitempty"`
}

// Config is the root persisted collections document.
type Config struct {
	Version     string  `json:"version"`
	Collections []*Node `json:"collections"`
}

// NewConfig returns an empty collections document.
func NewConfig() *Config {
	return &Config{
		Version:     DocumentVersion,
		Collections: []*Node{},
	}
}

// Clone returns a deep copy of the settings.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	dst := &Settings{
		Headers: request.ClonePairs(s.Headers),
	}
	if s.BaseURL != nil {
		baseURL := *s.BaseURL
		dst.BaseURL = &baseURL
	}
	if s.Auth != nil {
		auth := s.Auth.Clone()
		dst.Auth = &auth
	}
	if s.GitRemote != nil {
		remote := *s.GitRemote
		dst.GitRemote = &remote
	}
	if s.LastSyncedAt != nil {
		synced := *s.LastSyncedAt
		dst.LastSyncedAt = &synced
	}
	return dst
}
