package collection

import (
	"fmt"
	"strings"

	"github.com/quiverhttp/quiver/pkg/request"
)

// AncestorPath returns the ordered ancestor collection ids for nodeID, from
// root to immediate parent, excluding the node itself. Nil if the node does
// not exist in the snapshot.
func AncestorPath(cfg *Config, nodeID string) []string {
	ix, err := buildIndex(cfg)
	if err != nil {
		return nil
	}
	return ix.ancestorPath(nodeID)
}

// FindParentCollectionID returns the id of the node's immediate parent
// collection. The second return is false if the node is unknown; a known
// root-level node yields ("", true).
func FindParentCollectionID(cfg *Config, nodeID string) (string, bool) {
	path := AncestorPath(cfg, nodeID)
	if path == nil {
		ix, err := buildIndex(cfg)
		if err != nil || ix.get(nodeID) == nil {
			return "", false
		}
		return "", true
	}
	if len(path) == 0 {
		return "", true
	}
	return path[len(path)-1], true
}

// FindCollectionPath returns the full ancestor chain for nodeID, identical
// to AncestorPath but kept as a named projection for callers that read
// better with "path" vocabulary.
func FindCollectionPath(cfg *Config, nodeID string) []string {
	return AncestorPath(cfg, nodeID)
}

// MergeSettings merges a root-to-leaf ordered sequence of settings. Later
// entries are closer to the leaf and win ties:
//
//   - BaseURL: the last non-blank value wins outright; earlier values are
//     discarded, never concatenated.
//   - Auth: a later non-none auth replaces any earlier one wholesale (deep
//     copy, no field-level merging). An entry with no auth, or auth of type
//     none, neither adopts nor clears: once a non-none auth is adopted it is
//     never downgraded by a weaker later entry.
//   - Headers: merged case-insensitively by key. A later entry's header with
//     a matching key replaces the earlier pair wholly, value and enabled flag
//     both, keeping the earlier pair's position. Keys only seen earlier are
//     retained, so the final order is all previously-seen keys first, then
//     newly introduced keys, each in first-encounter order.
//
// Nil entries are skipped. The result is freshly allocated and shares no
// memory with the inputs.
func MergeSettings(settings ...*Settings) *Settings {
	merged := &Settings{}
	headerIdx := make(map[string]int)

	for _, s := range settings {
		if s == nil {
			continue
		}

		if s.BaseURL != nil && strings.TrimSpace(*s.BaseURL) != "" {
			baseURL := *s.BaseURL
			merged.BaseURL = &baseURL
		}

		if s.Auth != nil && s.Auth.Type != "" && s.Auth.Type != request.AuthNone {
			auth := s.Auth.Clone()
			merged.Auth = &auth
		}

		for _, header := range s.Headers {
			key := strings.ToLower(header.Key)
			if i, seen := headerIdx[key]; seen {
				merged.Headers[i] = header
			} else {
				headerIdx[key] = len(merged.Headers)
				merged.Headers = append(merged.Headers, header)
			}
		}

		if s.GitRemote != nil && *s.GitRemote != "" {
			remote := *s.GitRemote
			merged.GitRemote = &remote
		}
	}

	return merged
}

// ResolveSettings computes the effective settings visible at nodeID: the
// settings of every ancestor collection merged in root-to-parent order,
// followed by the node's own settings if it is itself a collection. The
// node's own settings therefore take highest precedence.
func ResolveSettings(cfg *Config, nodeID string) (*Settings, error) {
	ix, err := buildIndex(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to index collections: %w", err)
	}

	node := ix.get(nodeID)
	if node == nil {
		return nil, fmt.Errorf("resolve settings for %q: %w", nodeID, ErrNotFound)
	}

	var chain []*Settings
	for _, ancestorID := range ix.ancestorPath(nodeID) {
		if ancestor := ix.get(ancestorID); ancestor != nil && ancestor.Settings != nil {
			chain = append(chain, ancestor.Settings)
		}
	}
	if node.Type == TypeCollection && node.Settings != nil {
		chain = append(chain, node.Settings)
	}

	return MergeSettings(chain...), nil
}
