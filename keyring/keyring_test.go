package keyring

import (
	"bytes"
	"errors"
	"testing"

	"github.com/yllada/nordvpn-gui/common"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := deriveKey()
	plaintext := []byte("nordvpn-access-token-abc123")

	encrypted, err := encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("encrypt() error = %v", err)
	}

	if encrypted == string(plaintext) {
		t.Error("ciphertext should differ from plaintext")
	}

	decrypted, err := decrypt(encrypted, key)
	if err != nil {
		t.Fatalf("decrypt() error = %v", err)
	}

	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("decrypt() = %q, want %q", decrypted, plaintext)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	plaintext := []byte("secret")
	encrypted, err := encrypt(plaintext, deriveKey())
	if err != nil {
		t.Fatalf("encrypt() error = %v", err)
	}

	wrongKey := make([]byte, keyLength)
	_, err = decrypt(encrypted, wrongKey)
	if !errors.Is(err, common.ErrDecryption) {
		t.Errorf("error = %v, want ErrDecryption", err)
	}
}

func TestDecryptGarbage(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"too short", "YWJj"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decrypt(tt.input, deriveKey())
			if !errors.Is(err, common.ErrDecryption) {
				t.Errorf("error = %v, want ErrDecryption", err)
			}
		})
	}
}

func TestDeriveKeyStable(t *testing.T) {
	a := deriveKey()
	b := deriveKey()
	if !bytes.Equal(a, b) {
		t.Error("deriveKey() should be deterministic on one machine")
	}
	if len(a) != keyLength {
		t.Errorf("key length = %d, want %d", len(a), keyLength)
	}
}

func TestStoreEmptyToken(t *testing.T) {
	s := &Store{useFallback: true}
	if err := s.Store(""); !errors.Is(err, common.ErrTokenStorage) {
		t.Errorf("error = %v, want ErrTokenStorage", err)
	}
}
