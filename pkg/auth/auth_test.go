package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiverhttp/quiver/pkg/request"
)

func TestApplyBasic(t *testing.T) {
	req := request.HttpRequest{
		Auth: request.AuthConfig{
			Type:  request.AuthBasic,
			Basic: &request.BasicAuth{Username: "alice", Password: "s3cret"},
		},
	}

	out, err := Apply(req)
	require.NoError(t, err)
	require.Len(t, out.Headers, 1)

	expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:s3cret"))
	assert.Equal(t, "Authorization", out.Headers[0].Key)
	assert.Equal(t, expected, out.Headers[0].Value)
	assert.True(t, out.Headers[0].Enabled)
}

func TestApplyBearer(t *testing.T) {
	req := request.HttpRequest{
		Auth: request.AuthConfig{
			Type:   request.AuthBearer,
			Bearer: &request.BearerAuth{Token: "tok-123"},
		},
	}

	out, err := Apply(req)
	require.NoError(t, err)
	require.Len(t, out.Headers, 1)
	assert.Equal(t, "Bearer tok-123", out.Headers[0].Value)
}

func TestApplyAPIKey(t *testing.T) {
	t.Run("into a header", func(t *testing.T) {
		req := request.HttpRequest{
			Auth: request.AuthConfig{
				Type:   request.AuthAPIKey,
				APIKey: &request.APIKeyAuth{Key: "X-Api-Key", Value: "k", AddTo: request.APIKeyInHeader},
			},
		}
		out, err := Apply(req)
		require.NoError(t, err)
		require.Len(t, out.Headers, 1)
		assert.Equal(t, "X-Api-Key", out.Headers[0].Key)
		assert.Equal(t, "k", out.Headers[0].Value)
		assert.Empty(t, out.QueryParams)
	})

	t.Run("into a query parameter", func(t *testing.T) {
		req := request.HttpRequest{
			Auth: request.AuthConfig{
				Type:   request.AuthAPIKey,
				APIKey: &request.APIKeyAuth{Key: "api_key", Value: "k", AddTo: request.APIKeyInQuery},
			},
		}
		out, err := Apply(req)
		require.NoError(t, err)
		require.Len(t, out.QueryParams, 1)
		assert.Equal(t, "api_key", out.QueryParams[0].Key)
		assert.Empty(t, out.Headers)
	})
}

func TestApplyNeverOverwritesUserHeader(t *testing.T) {
	req := request.HttpRequest{
		Headers: []request.KeyValuePair{
			{Key: "authorization", Value: "Bearer manual", Enabled: true},
		},
		Auth: request.AuthConfig{
			Type:  request.AuthBasic,
			Basic: &request.BasicAuth{Username: "u", Password: "p"},
		},
	}

	out, err := Apply(req)
	require.NoError(t, err)
	require.Len(t, out.Headers, 1, "no second Authorization header is generated")
	assert.Equal(t, "Bearer manual", out.Headers[0].Value)
}

func TestApplyIgnoresDisabledUserHeader(t *testing.T) {
	// A switched-off Authorization pair is excluded from resolution and
	// must not block materialization.
	req := request.HttpRequest{
		Headers: []request.KeyValuePair{
			{Key: "Authorization", Value: "Bearer stale", Enabled: false},
		},
		Auth: request.AuthConfig{
			Type:   request.AuthBearer,
			Bearer: &request.BearerAuth{Token: "fresh"},
		},
	}

	out, err := Apply(req)
	require.NoError(t, err)
	require.Len(t, out.Headers, 2)
	assert.Equal(t, "Bearer stale", out.Headers[0].Value)
	assert.False(t, out.Headers[0].Enabled)
	assert.Equal(t, "Bearer fresh", out.Headers[1].Value)
	assert.True(t, out.Headers[1].Enabled)
}

func TestApplyIgnoresDisabledUserParam(t *testing.T) {
	req := request.HttpRequest{
		QueryParams: []request.KeyValuePair{
			{Key: "api_key", Value: "stale", Enabled: false},
		},
		Auth: request.AuthConfig{
			Type:   request.AuthAPIKey,
			APIKey: &request.APIKeyAuth{Key: "api_key", Value: "fresh", AddTo: request.APIKeyInQuery},
		},
	}

	out, err := Apply(req)
	require.NoError(t, err)
	require.Len(t, out.QueryParams, 2)
	assert.Equal(t, "fresh", out.QueryParams[1].Value)
	assert.True(t, out.QueryParams[1].Enabled)
}

func TestApplyNone(t *testing.T) {
	out, err := Apply(request.HttpRequest{Auth: request.AuthConfig{Type: request.AuthNone}})
	require.NoError(t, err)
	assert.Empty(t, out.Headers)

	out, err = Apply(request.HttpRequest{})
	require.NoError(t, err)
	assert.Empty(t, out.Headers)
}

func TestApplyMissingCredentials(t *testing.T) {
	// A selected type without its credential struct materializes nothing.
	out, err := Apply(request.HttpRequest{Auth: request.AuthConfig{Type: request.AuthBasic}})
	require.NoError(t, err)
	assert.Empty(t, out.Headers)
}

func TestSecretRefs(t *testing.T) {
	assert.True(t, IsSecretRef("keyring://quiver/token"))
	assert.False(t, IsSecretRef("literal-value"))
	assert.False(t, IsSecretRef(""))

	value, err := ResolveSecret("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", value)

	_, err = ResolveSecret("keyring://missing-account-part")
	assert.Error(t, err)
	_, err = ResolveSecret("keyring:///account")
	assert.Error(t, err)
}
