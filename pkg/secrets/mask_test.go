package secrets

import (
	"testing"

	"github.com/quiverhttp/quiver/pkg/request"
)

func TestMaskValue(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "empty", value: "", want: ""},
		{name: "short fully masked", value: "abc123", want: "***"},
		{name: "long keeps prefix", value: "sk-live-abcdef123456", want: "sk-liv***"},
		{name: "bearer scheme preserved", value: "Bearer tok_1234567890", want: "Bearer tok_12***"},
		{name: "basic scheme preserved", value: "Basic dXNlcjpwYXNz", want: "Basic dXNlcj***"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskValue(tt.value); got != tt.want {
				t.Errorf("MaskValue(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestIsSensitiveHeader(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"Authorization", true},
		{"AUTHORIZATION", true},
		{"X-Api-Key", true},
		{"Cookie", true},
		{"Content-Type", false},
		{"Accept", false},
	}
	for _, tt := range tests {
		if got := IsSensitiveHeader(tt.header); got != tt.want {
			t.Errorf("IsSensitiveHeader(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestMaskRequest(t *testing.T) {
	req := request.HttpRequest{
		URL:    "https://api.example.com/users",
		Method: "GET",
		Headers: []request.KeyValuePair{
			{Key: "Authorization", Value: "Bearer tok_1234567890", Enabled: true},
			{Key: "Content-Type", Value: "application/json", Enabled: true},
		},
		Auth: request.AuthConfig{
			Type:   request.AuthBearer,
			Bearer: &request.BearerAuth{Token: "tok_1234567890"},
		},
	}

	masked := MaskRequest(req)

	if masked.Headers[0].Value != "Bearer tok_12***" {
		t.Errorf("authorization header not masked: %q", masked.Headers[0].Value)
	}
	if masked.Headers[1].Value != "application/json" {
		t.Errorf("non-sensitive header changed: %q", masked.Headers[1].Value)
	}
	if masked.Auth.Bearer.Token != "tok_12***" {
		t.Errorf("bearer token not masked: %q", masked.Auth.Bearer.Token)
	}

	// The original must be untouched.
	if req.Headers[0].Value != "Bearer tok_1234567890" {
		t.Errorf("input request mutated: %q", req.Headers[0].Value)
	}
	if req.Auth.Bearer.Token != "tok_1234567890" {
		t.Errorf("input auth mutated: %q", req.Auth.Bearer.Token)
	}
}
