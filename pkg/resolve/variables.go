// Package resolve turns a stored request plus its effective collection
// settings and the active environment into one send-ready HTTP request.
// Everything here is a pure function over its inputs: no resolution step
// can fail, and nothing is mutated in place.
package resolve

import (
	"regexp"
	"strings"

	"github.com/quiverhttp/quiver/pkg/environment"
	"github.com/quiverhttp/quiver/pkg/request"
)

// varPattern matches {{name}} placeholders.
var varPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// ReplaceVariables substitutes {{name}} placeholders from vars. The
// identifier is trimmed before lookup. Placeholders whose identifier is not
// in the map are left verbatim, so an unresolved variable stays visible
// instead of silently vanishing.
func ReplaceVariables(text string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(text, "{{") {
		return text
	}
	return varPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
}

// ResolveRequestVariables applies the active environment's variables to
// every substitutable part of the request: the URL (trimmed afterwards),
// query parameter keys and values, header keys and values, the body
// content, and the populated auth sub-fields. Method, body type, and
// enabled flags pass through unchanged. With no active environment, or one
// without variables, the request is returned as an untouched copy.
func ResolveRequestVariables(req request.HttpRequest, env *environment.Environment) request.HttpRequest {
	vars := env.VariableMap()
	if len(vars) == 0 {
		return req.Clone()
	}

	resolved := req.Clone()
	resolved.URL = strings.TrimSpace(ReplaceVariables(resolved.URL, vars))
	resolvePairs(resolved.QueryParams, vars)
	resolvePairs(resolved.Headers, vars)
	resolved.Body.Content = ReplaceVariables(resolved.Body.Content, vars)
	resolveAuth(&resolved.Auth, vars)
	return resolved
}

func resolvePairs(pairs []request.KeyValuePair, vars map[string]string) {
	for i := range pairs {
		pairs[i].Key = ReplaceVariables(pairs[i].Key, vars)
		pairs[i].Value = ReplaceVariables(pairs[i].Value, vars)
	}
}

func resolveAuth(auth *request.AuthConfig, vars map[string]string) {
	if auth.Basic != nil {
		auth.Basic.Username = ReplaceVariables(auth.Basic.Username, vars)
		auth.Basic.Password = ReplaceVariables(auth.Basic.Password, vars)
	}
	if auth.Bearer != nil {
		auth.Bearer.Token = ReplaceVariables(auth.Bearer.Token, vars)
	}
	if auth.APIKey != nil {
		auth.APIKey.Key = ReplaceVariables(auth.APIKey.Key, vars)
		auth.APIKey.Value = ReplaceVariables(auth.APIKey.Value, vars)
	}
}
