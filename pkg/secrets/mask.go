// Package secrets masks credential values before they reach the terminal.
// Masking is presentation-only: the resolved request handed to the
// transport always carries the real values.
package secrets

import (
	"strings"

	"github.com/quiverhttp/quiver/pkg/request"
)

// partialShowChars is how many leading characters a partial mask keeps.
const partialShowChars = 6

// sensitiveHeaders are header names whose values are masked in rendered
// output.
var sensitiveHeaders = []string{
	"authorization",
	"proxy-authorization",
	"x-api-key",
	"x-auth-token",
	"api-key",
	"cookie",
	"set-cookie",
}

// IsSensitiveHeader reports whether a header's value should be masked.
func IsSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, h := range sensitiveHeaders {
		if lower == h {
			return true
		}
	}
	return false
}

// MaskValue partially masks a value, keeping a short prefix so the user can
// still tell which credential is in play. Short values are masked fully.
// An auth-scheme prefix (Basic, Bearer) is preserved.
func MaskValue(value string) string {
	if value == "" {
		return value
	}
	for _, scheme := range []string{"Basic ", "Bearer "} {
		if strings.HasPrefix(value, scheme) {
			return scheme + MaskValue(value[len(scheme):])
		}
	}
	if len(value) <= partialShowChars {
		return "***"
	}
	return value[:partialShowChars] + "***"
}

// MaskRequest returns a copy of the request with sensitive header values
// and populated auth credentials masked.
func MaskRequest(req request.HttpRequest) request.HttpRequest {
	out := req.Clone()

	for i, h := range out.Headers {
		if IsSensitiveHeader(h.Key) {
			out.Headers[i].Value = MaskValue(h.Value)
		}
	}
	if out.Auth.Basic != nil {
		out.Auth.Basic.Password = MaskValue(out.Auth.Basic.Password)
	}
	if out.Auth.Bearer != nil {
		out.Auth.Bearer.Token = MaskValue(out.Auth.Bearer.Token)
	}
	if out.Auth.APIKey != nil {
		out.Auth.APIKey.Value = MaskValue(out.Auth.APIKey.Value)
	}

	return out
}
