package store

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

// SecretBox encrypts card text at rest. Everything else on a card
// (type, domains, tags, persona) stays plaintext so SQL filtering and
// tag search keep working against the stored rows.
type SecretBox struct {
	aead cipher.AEAD
}

// NewSecretBox builds a box from a hex-encoded 32-byte key.
func NewSecretBox(hexKey string) (*SecretBox, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, errors.Wrap(err, "secret key is not valid hex")
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, errors.Errorf("secret key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to construct cipher")
	}
	return &SecretBox{aead: aead}, nil
}

// Seal encrypts plaintext and returns a base64 token with the nonce prefixed.
func (b *SecretBox) Seal(plaintext string) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.Wrap(err, "failed to generate nonce")
	}
	sealed := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a token produced by Seal.
func (b *SecretBox) Open(token string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", errors.Wrap(err, "token is not valid base64")
	}
	if len(raw) < b.aead.NonceSize() {
		return "", errors.New("token is too short")
	}
	nonce, ciphertext := raw[:b.aead.NonceSize()], raw[b.aead.NonceSize():]
	plaintext, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to decrypt token")
	}
	return string(plaintext), nil
}

// LoadOrCreateKey reads the hex key from keyFile, generating and persisting
// a fresh one on first run. The file is created with owner-only permissions.
func LoadOrCreateKey(dataDir string) (string, error) {
	keyFile := filepath.Join(dataDir, "secret.key")
	if raw, err := os.ReadFile(keyFile); err == nil {
		key := string(raw)
		if _, err := NewSecretBox(trimKey(key)); err != nil {
			return "", errors.Wrapf(err, "existing key file %s is unusable", keyFile)
		}
		return trimKey(key), nil
	} else if !os.IsNotExist(err) {
		return "", errors.Wrapf(err, "failed to read key file %s", keyFile)
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", errors.Wrap(err, "failed to generate secret key")
	}
	hexKey := hex.EncodeToString(key)
	if err := os.WriteFile(keyFile, []byte(hexKey+"\n"), 0600); err != nil {
		return "", errors.Wrapf(err, "failed to write key file %s", keyFile)
	}
	return hexKey, nil
}

func trimKey(key string) string {
	for len(key) > 0 && (key[len(key)-1] == '\n' || key[len(key)-1] == '\r' || key[len(key)-1] == ' ') {
		key = key[:len(key)-1]
	}
	return key
}
