package broker

import (
	"fmt"

	"github.com/fernet/fernet-go"
)

// The broker API token grants full trading access to the account, so it is
// never stored in clear text. Tokens at rest are fernet-encrypted with the
// key from configuration.

// EncryptToken encrypts an API token for storage.
func EncryptToken(key, token string) (string, error) {
	k, err := fernet.DecodeKey(key)
	if err != nil {
		return "", fmt.Errorf("invalid fernet key: %w", err)
	}
	encrypted, err := fernet.EncryptAndSign([]byte(token), k)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt token: %w", err)
	}
	return string(encrypted), nil
}

// DecryptToken recovers an API token from its stored form. Tokens do not
// expire, so no TTL is enforced.
func DecryptToken(key, encrypted string) (string, error) {
	k, err := fernet.DecodeKey(key)
	if err != nil {
		return "", fmt.Errorf("invalid fernet key: %w", err)
	}
	token := fernet.VerifyAndDecrypt([]byte(encrypted), 0, []*fernet.Key{k})
	if token == nil {
		return "", fmt.Errorf("failed to decrypt token: invalid or tampered value")
	}
	return string(token), nil
}
