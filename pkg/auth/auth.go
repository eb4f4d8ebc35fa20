// Package auth materializes a resolved AuthConfig into the concrete header
// or query-parameter additions the transport collaborator sends. It also
// resolves keyring secret references and offers JWT claim inspection for
// bearer tokens.
package auth

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/quiverhttp/quiver/pkg/request"
)

// Apply returns a copy of the request with its auth config materialized:
//
//   - basic:   Authorization: Basic base64(username:password)
//   - bearer:  Authorization: Bearer token
//   - api-key: a header named by the key, or a query parameter, per AddTo
//
// A header or query parameter already set on the request is never silently
// overwritten by a generated one; the user's value wins. Credential values
// may be keyring references (see ResolveSecret), which are resolved here.
func Apply(req request.HttpRequest) (request.HttpRequest, error) {
	out := req.Clone()

	switch out.Auth.Type {
	case request.AuthBasic:
		if out.Auth.Basic == nil {
			return out, nil
		}
		username, err := ResolveSecret(out.Auth.Basic.Username)
		if err != nil {
			return out, err
		}
		password, err := ResolveSecret(out.Auth.Basic.Password)
		if err != nil {
			return out, err
		}
		encoded := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		out.Headers = addHeader(out.Headers, "Authorization", "Basic "+encoded)

	case request.AuthBearer:
		if out.Auth.Bearer == nil {
			return out, nil
		}
		token, err := ResolveSecret(out.Auth.Bearer.Token)
		if err != nil {
			return out, err
		}
		out.Headers = addHeader(out.Headers, "Authorization", "Bearer "+token)

	case request.AuthAPIKey:
		if out.Auth.APIKey == nil || out.Auth.APIKey.Key == "" {
			return out, nil
		}
		value, err := ResolveSecret(out.Auth.APIKey.Value)
		if err != nil {
			return out, err
		}
		if out.Auth.APIKey.AddTo == request.APIKeyInQuery {
			out.QueryParams = addParam(out.QueryParams, out.Auth.APIKey.Key, value)
		} else {
			out.Headers = addHeader(out.Headers, out.Auth.APIKey.Key, value)
		}

	case request.AuthNone, "":
		// Nothing to materialize.

	default:
		return out, fmt.Errorf("unsupported auth type %q", out.Auth.Type)
	}

	return out, nil
}

// addHeader appends a generated header unless an enabled one with the same
// name (case insensitive) is already present. Disabled pairs are excluded
// from resolution and must not block materialization.
func addHeader(headers []request.KeyValuePair, key, value string) []request.KeyValuePair {
	for _, h := range headers {
		if h.Enabled && strings.EqualFold(h.Key, key) {
			return headers
		}
	}
	return append(headers, request.KeyValuePair{Key: key, Value: value, Enabled: true})
}

// addParam appends a generated query parameter unless an enabled one with
// the same key is already present.
func addParam(params []request.KeyValuePair, key, value string) []request.KeyValuePair {
	for _, p := range params {
		if p.Enabled && p.Key == key {
			return params
		}
	}
	return append(params, request.KeyValuePair{Key: key, Value: value, Enabled: true})
}
