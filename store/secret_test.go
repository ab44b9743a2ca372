package store

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testHexKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

func TestSecretBoxRoundTrip(t *testing.T) {
	box, err := NewSecretBox(testHexKey)
	if err != nil {
		t.Fatalf("NewSecretBox: %v", err)
	}

	tests := []string{
		"User prioritizes quality over price",
		"",
		"unicode: crème brûlée 加油",
	}
	for _, plaintext := range tests {
		token, err := box.Seal(plaintext)
		if err != nil {
			t.Fatalf("Seal(%q): %v", plaintext, err)
		}
		if token == plaintext && plaintext != "" {
			t.Errorf("Seal(%q) returned plaintext", plaintext)
		}
		got, err := box.Open(token)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if got != plaintext {
			t.Errorf("round trip = %q, want %q", got, plaintext)
		}
	}
}

func TestSecretBoxNonceVaries(t *testing.T) {
	box, err := NewSecretBox(testHexKey)
	if err != nil {
		t.Fatalf("NewSecretBox: %v", err)
	}

	a, _ := box.Seal("same text")
	b, _ := box.Seal("same text")
	if a == b {
		t.Error("two seals of the same text should differ")
	}
}

func TestSecretBoxRejectsBadKey(t *testing.T) {
	if _, err := NewSecretBox("not-hex"); err == nil {
		t.Error("non-hex key should be rejected")
	}
	if _, err := NewSecretBox(hex.EncodeToString([]byte("short"))); err == nil {
		t.Error("short key should be rejected")
	}
}

func TestSecretBoxRejectsTampering(t *testing.T) {
	box, err := NewSecretBox(testHexKey)
	if err != nil {
		t.Fatalf("NewSecretBox: %v", err)
	}

	token, _ := box.Seal("original")
	tampered := strings.Replace(token, token[10:11], "A", 1)
	if tampered == token {
		tampered = strings.Replace(token, token[10:11], "B", 1)
	}
	if _, err := box.Open(tampered); err == nil {
		t.Error("tampered token should fail to open")
	}
}

func TestLoadOrCreateKey(t *testing.T) {
	dir := t.TempDir()

	key1, err := LoadOrCreateKey(dir)
	if err != nil {
		t.Fatalf("LoadOrCreateKey (create): %v", err)
	}
	if _, err := NewSecretBox(key1); err != nil {
		t.Fatalf("generated key unusable: %v", err)
	}

	key2, err := LoadOrCreateKey(dir)
	if err != nil {
		t.Fatalf("LoadOrCreateKey (load): %v", err)
	}
	if key1 != key2 {
		t.Error("second load should return the persisted key")
	}

	raw, err := os.ReadFile(filepath.Join(dir, "secret.key"))
	if err != nil {
		t.Fatalf("read key file: %v", err)
	}
	if !strings.HasPrefix(string(raw), key1) {
		t.Error("key file should hold the hex key")
	}
}
