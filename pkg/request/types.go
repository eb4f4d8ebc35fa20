// Package request defines the HTTP request model shared by the collection
// tree, the resolution pipeline, and the transport collaborator.
package request

// KeyValuePair is the primitive pair used for headers, query parameters,
// and form-style bodies. Disabled pairs are retained in the document but
// excluded from resolution.
type KeyValuePair struct {
	Key     string `json:"key" yaml:"key"`
	Value   string `json:"value" yaml:"value"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// AuthType identifies the authentication scheme of an AuthConfig.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthBasic  AuthType = "basic"
	AuthBearer AuthType = "bearer"
	AuthAPIKey AuthType = "api-key"
)

// APIKeyLocation controls where a generated API key credential is placed.
type APIKeyLocation string

const (
	APIKeyInHeader APIKeyLocation = "header"
	APIKeyInQuery  APIKeyLocation = "query"
)

// BasicAuth holds HTTP Basic credentials.
type BasicAuth struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// BearerAuth holds a bearer token.
type BearerAuth struct {
	Token string `json:"token" yaml:"token"`
}

// APIKeyAuth holds an API key credential and its placement.
type APIKeyAuth struct {
	Key   string         `json:"key" yaml:"key"`
	Value string         `json:"value" yaml:"value"`
	AddTo APIKeyLocation `json:"addTo" yaml:"addTo"`
}

// AuthConfig is a tagged union over the supported authentication schemes.
// Only the field matching Type is meaningful during resolution; the others
// may be populated (so the UI can switch back without losing input) and are
// ignored. DisableInherit is consulted only when Type is AuthNone: it marks
// a request that explicitly opts out of inheriting collection auth.
type AuthConfig struct {
	Type           AuthType    `json:"type" yaml:"type"`
	Basic          *BasicAuth  `json:"basic,omitempty" yaml:"basic,omitempty"`
	Bearer         *BearerAuth `json:"bearer,omitempty" yaml:"bearer,omitempty"`
	APIKey         *APIKeyAuth `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	DisableInherit bool        `json:"disableInherit,omitempty" yaml:"disableInherit,omitempty"`
}

// Body holds the request payload and its declared content kind.
type Body struct {
	Type    string `json:"type" yaml:"type"`
	Content string `json:"content" yaml:"content"`
}

// HttpRequest is one concrete HTTP request definition. Before resolution it
// may contain {{variable}} placeholders and rely on inherited collection
// settings; after the pipeline runs it is send-ready.
type HttpRequest struct {
	URL         string         `json:"url" yaml:"url"`
	Method      string         `json:"method" yaml:"method"`
	Headers     []KeyValuePair `json:"headers" yaml:"headers"`
	QueryParams []KeyValuePair `json:"queryParams" yaml:"queryParams"`
	Body        Body           `json:"body" yaml:"body"`
	Auth        AuthConfig     `json:"auth" yaml:"auth"`
}

// Clone returns a deep copy of the auth config, including the sub-structs of
// inactive types so no user input is lost on copy.
func (a AuthConfig) Clone() AuthConfig {
	dst := AuthConfig{
		Type:           a.Type,
		DisableInherit: a.DisableInherit,
	}
	if a.Basic != nil {
		basic := *a.Basic
		dst.Basic = &basic
	}
	if a.Bearer != nil {
		bearer := *a.Bearer
		dst.Bearer = &bearer
	}
	if a.APIKey != nil {
		apiKey := *a.APIKey
		dst.APIKey = &apiKey
	}
	return dst
}

// ClonePairs copies a key-value slice, preserving order and enabled flags.
func ClonePairs(pairs []KeyValuePair) []KeyValuePair {
	if pairs == nil {
		return nil
	}
	dst := make([]KeyValuePair, len(pairs))
	copy(dst, pairs)
	return dst
}

// Clone returns a deep copy of the request.
func (r HttpRequest) Clone() HttpRequest {
	return HttpRequest{
		URL:         r.URL,
		Method:      r.Method,
		Headers:     ClonePairs(r.Headers),
		QueryParams: ClonePairs(r.QueryParams),
		Body:        r.Body,
		Auth:        r.Auth.Clone(),
	}
}
