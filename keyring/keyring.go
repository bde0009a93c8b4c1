// Package keyring stores the NordVPN access token. The system keyring
// is used when available; otherwise the token is kept in an encrypted
// file under the config directory.
package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"

	zkeyring "github.com/zalando/go-keyring"
	"golang.org/x/crypto/pbkdf2"

	"github.com/yllada/nordvpn-gui/common"
)

const (
	serviceName = "nordvpn-gui"
	accountName = "access-token"

	pbkdf2Iterations = 100_000
	keyLength        = 32
)

// Store is a TokenStore backed by the system keyring with an
// encrypted-file fallback for systems without a secret service.
type Store struct {
	useFallback bool
}

// NewStore returns a token store. It probes the system keyring once
// and falls back to file storage if the keyring is unusable.
func NewStore() *Store {
	s := &Store{}
	if err := zkeyring.Set(serviceName, "probe", "probe"); err != nil {
		common.LogWarn("system keyring unavailable, using encrypted file: %v", err)
		s.useFallback = true
	} else {
		zkeyring.Delete(serviceName, "probe")
	}
	return s
}

// Store saves the access token.
func (s *Store) Store(token string) error {
	if token == "" {
		return common.WrapError(common.ErrTokenStorage, "empty token")
	}

	if !s.useFallback {
		if err := zkeyring.Set(serviceName, accountName, token); err == nil {
			return nil
		} else {
			common.LogWarn("keyring write failed, using encrypted file: %v", err)
			s.useFallback = true
		}
	}
	return s.storeFile(token)
}

// Get retrieves the stored access token. Returns
// common.ErrTokenNotFound when nothing is stored.
func (s *Store) Get() (string, error) {
	if !s.useFallback {
		token, err := zkeyring.Get(serviceName, accountName)
		if err == nil {
			return token, nil
		}
		if err == zkeyring.ErrNotFound {
			return "", common.ErrTokenNotFound
		}
		common.LogWarn("keyring read failed, trying encrypted file: %v", err)
	}
	return s.getFile()
}

// Delete removes the stored access token from both backends.
func (s *Store) Delete() error {
	var keyringErr error
	if !s.useFallback {
		keyringErr = zkeyring.Delete(serviceName, accountName)
		if keyringErr == zkeyring.ErrNotFound {
			keyringErr = nil
		}
	}

	path, err := credentialsPath()
	if err == nil {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return common.WrapError(common.ErrTokenStorage, rmErr.Error())
		}
	}

	if keyringErr != nil {
		return common.WrapError(common.ErrTokenStorage, keyringErr.Error())
	}
	return nil
}

func credentialsPath() (string, error) {
	dir, err := common.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, common.CredentialsFileName), nil
}

func (s *Store) storeFile(token string) error {
	encrypted, err := encrypt([]byte(token), deriveKey())
	if err != nil {
		return err
	}

	path, err := credentialsPath()
	if err != nil {
		return common.WrapError(common.ErrTokenStorage, err.Error())
	}

	if err := os.WriteFile(path, []byte(encrypted), 0600); err != nil {
		return common.WrapError(common.ErrTokenStorage, err.Error())
	}
	return nil
}

func (s *Store) getFile() (string, error) {
	path, err := credentialsPath()
	if err != nil {
		return "", common.WrapError(common.ErrTokenStorage, err.Error())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", common.ErrTokenNotFound
		}
		return "", common.WrapError(common.ErrTokenStorage, err.Error())
	}

	token, err := decrypt(string(data), deriveKey())
	if err != nil {
		return "", err
	}
	return string(token), nil
}

// deriveKey builds the file-encryption key from the machine identity,
// so the credentials file is not portable between hosts.
func deriveKey() []byte {
	secret := machineID()
	salt := sha256.Sum256([]byte(serviceName + ":" + accountName))
	return pbkdf2.Key([]byte(secret), salt[:], pbkdf2Iterations, keyLength, sha256.New)
}

func machineID() string {
	for _, path := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		if data, err := os.ReadFile(path); err == nil {
			if id := strings.TrimSpace(string(data)); id != "" {
				return id
			}
		}
	}
	// Last resort, still better than a constant.
	hostname, _ := os.Hostname()
	return serviceName + "@" + hostname
}

func encrypt(plaintext, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", common.WrapError(common.ErrEncryption, err.Error())
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", common.WrapError(common.ErrEncryption, err.Error())
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", common.WrapError(common.ErrEncryption, err.Error())
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func decrypt(encoded string, key []byte) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, common.WrapError(common.ErrDecryption, err.Error())
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, common.WrapError(common.ErrDecryption, err.Error())
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, common.WrapError(common.ErrDecryption, err.Error())
	}

	if len(data) < gcm.NonceSize() {
		return nil, common.WrapError(common.ErrDecryption, "ciphertext too short")
	}

	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.WrapError(common.ErrDecryption, err.Error())
	}
	return plaintext, nil
}
