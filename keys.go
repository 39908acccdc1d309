package zin

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
)

// KeySize is the length in bytes of every encryption key.
const KeySize = 32

// KeySource supplies raw key material to an encryptor.
// The caller owns the returned slice and wipes it after use.
type KeySource interface {
	Key() ([]byte, error)
}

// KeySourceFunc adapts a function to KeySource.
type KeySourceFunc func() ([]byte, error)

// Key calls f.
func (f KeySourceFunc) Key() ([]byte, error) {
	return f()
}

// randomKey is a random key persisted at path. An empty path gives a key
// that lives only as long as the process.
type randomKey struct {
	path string
}

// RandomKey returns a KeySource that generates a random key on first use
// and stores it at path with 0600 permissions. Later calls read it back.
// With an empty path the key is never persisted.
func RandomKey(path string) KeySource {
	return &randomKey{path: path}
}

func (k *randomKey) Key() ([]byte, error) {
	return loadOrCreate(k.path, KeySize)
}

// Argon2Params configures Argon2id key derivation.
type Argon2Params struct {
	Time    uint32 // Number of iterations
	Memory  uint32 // Memory usage in KiB
	Threads uint8  // Parallelism factor
	SaltLen uint32 // Salt length
}

// DefaultArgon2Params returns recommended Argon2id parameters.
// Based on OWASP recommendations.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    1,
		Memory:  64 * 1024, // 64 MiB
		Threads: 4,
		SaltLen: 16,
	}
}

// passphraseKey derives a key from a passphrase and a persisted salt.
type passphraseKey struct {
	passphrase []byte
	saltPath   string
	params     Argon2Params
}

// PassphraseKey returns a KeySource deriving the key from passphrase with
// Argon2id. The salt is generated on first use and stored at saltPath.
func PassphraseKey(passphrase, saltPath string) KeySource {
	return PassphraseKeyWithParams(passphrase, saltPath, DefaultArgon2Params())
}

// PassphraseKeyWithParams is PassphraseKey with custom Argon2id parameters.
// Changing params changes the derived key.
func PassphraseKeyWithParams(passphrase, saltPath string, params Argon2Params) KeySource {
	return &passphraseKey{
		passphrase: []byte(passphrase),
		saltPath:   saltPath,
		params:     params,
	}
}

func (k *passphraseKey) Key() ([]byte, error) {
	if len(k.passphrase) == 0 {
		return nil, errors.New("passphrase cannot be empty")
	}
	salt, err := loadOrCreate(k.saltPath, int(k.params.SaltLen))
	if err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	return argon2.IDKey(k.passphrase, salt, k.params.Time, k.params.Memory, k.params.Threads, KeySize), nil
}

// loadOrCreate reads size random bytes from path, creating the file on
// first use. An empty path returns fresh bytes without persisting them.
func loadOrCreate(path string, size int) ([]byte, error) {
	if path == "" {
		return randomBytes(size)
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != size {
			return nil, fmt.Errorf("%w: %s holds %d bytes, want %d", ErrInvalidKeySize, path, len(data), size)
		}
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	data, err = randomBytes(size)
	if err != nil {
		return nil, err
	}
	if err := writeSecret(path, data); err != nil {
		if errors.Is(err, fs.ErrExist) {
			// Lost a creation race; use the winner's bytes.
			return loadOrCreate(path, size)
		}
		return nil, err
	}
	return data, nil
}

func randomBytes(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

// writeSecret creates path exclusively with owner-only permissions.
func writeSecret(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
