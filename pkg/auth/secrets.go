package auth

import (
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// secretScheme prefixes credential values that live in the OS keyring
// instead of the collections document: keyring://service/account.
const secretScheme = "keyring://"

// IsSecretRef reports whether a credential value is a keyring reference.
func IsSecretRef(value string) bool {
	return strings.HasPrefix(value, secretScheme)
}

// ResolveSecret resolves a keyring reference to its stored secret. Plain
// values pass through unchanged, so documents can freely mix literal
// credentials with keyring references.
func ResolveSecret(value string) (string, error) {
	if !IsSecretRef(value) {
		return value, nil
	}

	ref := strings.TrimPrefix(value, secretScheme)
	service, account, ok := strings.Cut(ref, "/")
	if !ok || service == "" || account == "" {
		return "", fmt.Errorf("invalid keyring reference %q, expected keyring://service/account", value)
	}

	secret, err := keyring.Get(service, account)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", fmt.Errorf("secret %s/%s not found in keyring", service, account)
		}
		return "", fmt.Errorf("failed to read secret from keyring: %w", err)
	}
	return secret, nil
}

// StoreSecret writes a secret into the OS keyring and returns the reference
// to persist in its place.
func StoreSecret(service, account, secret string) (string, error) {
	if err := keyring.Set(service, account, secret); err != nil {
		return "", fmt.Errorf("failed to store secret in keyring: %w", err)
	}
	return secretScheme + service + "/" + account, nil
}
