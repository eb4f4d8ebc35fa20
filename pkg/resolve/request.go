package resolve

import (
	"strings"

	"github.com/quiverhttp/quiver/pkg/collection"
	"github.com/quiverhttp/quiver/pkg/environment"
	"github.com/quiverhttp/quiver/pkg/request"
)

// ResolveRequest composes the full pipeline: variable substitution, base-URL
// prefixing, header merging, and auth inheritance. The result is the value
// handed to the transport collaborator; it carries no unresolved variables
// and no reference back to the tree.
//
// The base URL, when configured, is variable-resolved and then
// unconditionally prepended to a non-empty request URL with exactly one
// separating slash. Detecting "the request URL already looks absolute" is
// deliberately left to the UI layer, not second-guessed here.
//
// Header precedence runs in the opposite direction from settings merging:
// the leaf request always wins over the resolved collection settings.
func ResolveRequest(req request.HttpRequest, settings *collection.Settings, env *environment.Environment) request.HttpRequest {
	resolved := ResolveRequestVariables(req, env)
	if settings == nil {
		return resolved
	}

	vars := env.VariableMap()

	if settings.BaseURL != nil && strings.TrimSpace(*settings.BaseURL) != "" {
		baseURL := strings.TrimSpace(ReplaceVariables(*settings.BaseURL, vars))
		if resolved.URL != "" {
			resolved.URL = joinURL(baseURL, resolved.URL)
		}
	}

	if len(settings.Headers) > 0 {
		inherited := request.ClonePairs(settings.Headers)
		resolvePairs(inherited, vars)
		resolved.Headers = mergeHeaders(inherited, resolved.Headers)
	}

	if resolved.Auth.Type == request.AuthNone || resolved.Auth.Type == "" {
		if !resolved.Auth.DisableInherit && settings.Auth != nil {
			auth := settings.Auth.Clone()
			resolveAuth(&auth, vars)
			resolved.Auth = auth
		}
	}

	return resolved
}

// mergeHeaders seeds the collection headers first, then lays the request
// headers on top, case-insensitively by key. A request header with a
// matching key replaces the inherited pair wholly, keeping its seeded
// position; request-only keys follow in their own order.
func mergeHeaders(inherited, own []request.KeyValuePair) []request.KeyValuePair {
	merged := make([]request.KeyValuePair, len(inherited))
	copy(merged, inherited)

	idx := make(map[string]int, len(merged))
	for i, h := range merged {
		idx[strings.ToLower(h.Key)] = i
	}

	for _, h := range own {
		key := strings.ToLower(h.Key)
		if i, seen := idx[key]; seen {
			merged[i] = h
		} else {
			idx[key] = len(merged)
			merged = append(merged, h)
		}
	}

	return merged
}

// joinURL concatenates base and path with exactly one separating slash,
// regardless of how many either side already carries.
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
