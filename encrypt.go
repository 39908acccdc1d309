package zin

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/chacha20poly1305"
)

// Encryption errors.
var (
	ErrInvalidKeySize   = errors.New("invalid key size")
	ErrCiphertextShort  = errors.New("ciphertext too short")
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Cipher names a supported AEAD construction.
type Cipher string

const (
	// CipherAES uses AES-256-GCM.
	CipherAES Cipher = "aes"

	// CipherChaCha uses XChaCha20-Poly1305.
	CipherChaCha Cipher = "chacha20"
)

// validCiphers contains all ciphers accepted by NewEncryptor.
var validCiphers = map[Cipher]bool{
	CipherAES:    true,
	CipherChaCha: true,
}

// IsValidCipher returns true if c is a known cipher.
func IsValidCipher(c Cipher) bool {
	return validCiphers[c]
}

// AEADEncryptor encrypts with an AEAD cipher, using the storage key as
// additional data. Key bytes live in a memguard enclave between calls.
type AEADEncryptor struct {
	cipher  Cipher
	keys    KeySource
	newAEAD func(key []byte) (cipher.AEAD, error)

	mu      sync.Mutex
	enclave *memguard.Enclave
}

// NewAESEncryptor returns an AES-256-GCM encryptor keyed from keys.
func NewAESEncryptor(keys KeySource) *AEADEncryptor {
	return &AEADEncryptor{cipher: CipherAES, keys: keys, newAEAD: newGCM}
}

// NewChaChaEncryptor returns an XChaCha20-Poly1305 encryptor keyed from keys.
func NewChaChaEncryptor(keys KeySource) *AEADEncryptor {
	return &AEADEncryptor{cipher: CipherChaCha, keys: keys, newAEAD: chacha20poly1305.NewX}
}

// NewEncryptor returns the encryptor for c.
func NewEncryptor(c Cipher, keys KeySource) (*AEADEncryptor, error) {
	switch c {
	case CipherAES:
		return NewAESEncryptor(keys), nil
	case CipherChaCha:
		return NewChaChaEncryptor(keys), nil
	default:
		return nil, newConfigError("cipher", string(c))
	}
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Cipher returns the AEAD construction in use.
func (e *AEADEncryptor) Cipher() Cipher {
	return e.cipher
}

func (e *AEADEncryptor) String() string {
	return "AEADEncryptor(" + string(e.cipher) + ")"
}

// Init loads the key and moves it into an enclave.
func (e *AEADEncryptor) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.enclave != nil {
		return nil
	}
	if e.keys == nil {
		return errors.New("no key source")
	}

	key, err := e.keys.Key()
	if err != nil {
		return fmt.Errorf("load key: %w", err)
	}
	if len(key) != KeySize {
		memguard.WipeBytes(key)
		return fmt.Errorf("%w: must be %d bytes, got %d", ErrInvalidKeySize, KeySize, len(key))
	}
	if _, err := e.newAEAD(key); err != nil {
		memguard.WipeBytes(key)
		return err
	}

	// NewEnclave wipes key.
	e.enclave = memguard.NewEnclave(key)
	if e.enclave == nil {
		return errors.New("failed to seal key")
	}
	return nil
}

// Destroy drops the key enclave. The encryptor must be re-initialized
// before further use.
func (e *AEADEncryptor) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enclave = nil
}

func (e *AEADEncryptor) aead() (cipher.AEAD, error) {
	e.mu.Lock()
	enclave := e.enclave
	e.mu.Unlock()

	if enclave == nil {
		return nil, ErrNotInitialized
	}

	buf, err := enclave.Open()
	if err != nil {
		return nil, fmt.Errorf("open key: %w", err)
	}
	defer buf.Destroy()

	return e.newAEAD(buf.Bytes())
}

// Encrypt seals plaintext and returns base64(nonce || ciphertext).
func (e *AEADEncryptor) Encrypt(key, plaintext string) (string, error) {
	aead, err := e.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	// Prepend nonce to ciphertext
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), []byte(key))
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt under the same key.
func (e *AEADEncryptor) Decrypt(key, ciphertext string) (string, error) {
	aead, err := e.aead()
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	nonceSize := aead.NonceSize()
	if len(raw) < nonceSize+aead.Overhead() {
		return "", ErrCiphertextShort
	}

	nonce, sealed := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := aead.Open(nil, nonce, sealed, []byte(key))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	return string(plaintext), nil
}

// NoEncryption passes text through unchanged. The Builder falls back to it
// when the configured encryptor cannot be initialized.
type NoEncryption struct{}

// Init always succeeds.
func (NoEncryption) Init() error { return nil }

// Encrypt returns plaintext.
func (NoEncryption) Encrypt(_, plaintext string) (string, error) { return plaintext, nil }

// Decrypt returns ciphertext.
func (NoEncryption) Decrypt(_, ciphertext string) (string, error) { return ciphertext, nil }

func (NoEncryption) String() string { return "NoEncryption" }

// encryptorName identifies e in logs and events.
func encryptorName(e Encryptor) string {
	if s, ok := e.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", e)
}
