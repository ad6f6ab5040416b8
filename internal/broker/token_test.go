package broker

import (
	"strings"
	"testing"

	"github.com/fernet/fernet-go"
)

func generateKey(t *testing.T) string {
	t.Helper()

	var key fernet.Key
	if err := key.Generate(); err != nil {
		t.Fatalf("Failed to generate fernet key: %v", err)
	}
	return key.Encode()
}

func TestTokenEncryption(t *testing.T) {
	t.Run("round-trips a token", func(t *testing.T) {
		key := generateKey(t)
		token := "t.very-secret-api-token"

		encrypted, err := EncryptToken(key, token)
		if err != nil {
			t.Fatalf("EncryptToken() returned unexpected error: %v", err)
		}
		if encrypted == token || strings.Contains(encrypted, "secret") {
			t.Error("Expected token to be unreadable at rest")
		}

		decrypted, err := DecryptToken(key, encrypted)
		if err != nil {
			t.Fatalf("DecryptToken() returned unexpected error: %v", err)
		}
		if decrypted != token {
			t.Errorf("Expected token round-trip, got %q", decrypted)
		}
	})

	t.Run("rejects a wrong key", func(t *testing.T) {
		encrypted, err := EncryptToken(generateKey(t), "token")
		if err != nil {
			t.Fatalf("EncryptToken() returned unexpected error: %v", err)
		}

		if _, err := DecryptToken(generateKey(t), encrypted); err == nil {
			t.Error("Expected decryption with a wrong key to fail")
		}
	})

	t.Run("rejects an invalid key", func(t *testing.T) {
		if _, err := EncryptToken("not-a-key", "token"); err == nil {
			t.Error("Expected an invalid key error")
		}
	})

	t.Run("rejects a tampered value", func(t *testing.T) {
		key := generateKey(t)
		if _, err := DecryptToken(key, "garbage"); err == nil {
			t.Error("Expected a tampered value error")
		}
	})
}
