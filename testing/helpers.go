// Package testing provides test utilities for zin.
package testing

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/zoobzio/zin"
	"github.com/zoobzio/zin/storage"
)

// TestKey returns a valid 32-byte key for testing.
func TestKey() []byte {
	return []byte("32-byte-key-for-aes-256-encrypt!")
}

// TestKeySource returns a KeySource yielding a fresh copy of TestKey.
func TestKeySource() zin.KeySource {
	return zin.KeySourceFunc(func() ([]byte, error) {
		return TestKey(), nil
	})
}

// TestEncryptor returns an initialized encryptor for c keyed with TestKey.
func TestEncryptor(t testing.TB, c zin.Cipher) *zin.AEADEncryptor {
	t.Helper()
	enc, err := zin.NewEncryptor(c, TestKeySource())
	if err != nil {
		t.Fatalf("NewEncryptor(%q): %v", c, err)
	}
	if err := enc.Init(); err != nil {
		t.Fatalf("Init(): %v", err)
	}
	return enc
}

// Build builds b and destroys the facade when the test ends.
func Build(t testing.TB, b *zin.Builder) *zin.Zin {
	t.Helper()
	z, err := b.Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}
	t.Cleanup(z.Destroy)
	return z
}

// NewZin returns a facade over in-memory storage, encrypted with TestKey.
func NewZin(t testing.TB) *zin.Zin {
	t.Helper()
	return Build(t, zin.NewBuilder().
		SetStorage(storage.NewMemory()).
		SetEncryptor(zin.NewAESEncryptor(TestKeySource())))
}

// RecordingStorage is an in-memory Storage that counts calls.
type RecordingStorage struct {
	*storage.Memory
	calls atomic.Int64
}

// NewRecordingStorage returns an empty RecordingStorage.
func NewRecordingStorage() *RecordingStorage {
	return &RecordingStorage{Memory: storage.NewMemory()}
}

// Calls returns how many storage operations have been made.
func (s *RecordingStorage) Calls() int64 {
	return s.calls.Load()
}

func (s *RecordingStorage) Put(key, value string) error {
	s.calls.Add(1)
	return s.Memory.Put(key, value)
}

func (s *RecordingStorage) Get(key string) (string, error) {
	s.calls.Add(1)
	return s.Memory.Get(key)
}

func (s *RecordingStorage) Delete(key string) error {
	s.calls.Add(1)
	return s.Memory.Delete(key)
}

func (s *RecordingStorage) DeleteAll() error {
	s.calls.Add(1)
	return s.Memory.DeleteAll()
}

func (s *RecordingStorage) Contains(key string) (bool, error) {
	s.calls.Add(1)
	return s.Memory.Contains(key)
}

func (s *RecordingStorage) Count() (int64, error) {
	s.calls.Add(1)
	return s.Memory.Count()
}

// ErrInjected is returned by the failing collaborators below.
var ErrInjected = errors.New("injected failure")

// FailingStorage is in-memory storage whose writes can be made to fail.
type FailingStorage struct {
	*storage.Memory
	FailPut    bool
	FailDelete bool
	FailGet    bool
}

// NewFailingStorage returns an empty FailingStorage that fails nothing.
func NewFailingStorage() *FailingStorage {
	return &FailingStorage{Memory: storage.NewMemory()}
}

func (s *FailingStorage) Put(key, value string) error {
	if s.FailPut {
		return ErrInjected
	}
	return s.Memory.Put(key, value)
}

func (s *FailingStorage) Get(key string) (string, error) {
	if s.FailGet {
		return "", ErrInjected
	}
	return s.Memory.Get(key)
}

func (s *FailingStorage) Delete(key string) error {
	if s.FailDelete {
		return ErrInjected
	}
	return s.Memory.Delete(key)
}

// FailingEncryptor fails the operations whose flag is set and otherwise
// passes text through.
type FailingEncryptor struct {
	FailInit    bool
	FailEncrypt bool
	FailDecrypt bool
	Panic       bool
}

func (e *FailingEncryptor) Init() error {
	if e.FailInit {
		return ErrInjected
	}
	return nil
}

func (e *FailingEncryptor) Encrypt(_, plaintext string) (string, error) {
	if e.Panic {
		panic("encrypt exploded")
	}
	if e.FailEncrypt {
		return "", ErrInjected
	}
	return plaintext, nil
}

func (e *FailingEncryptor) Decrypt(_, ciphertext string) (string, error) {
	if e.Panic {
		panic("decrypt exploded")
	}
	if e.FailDecrypt {
		return "", ErrInjected
	}
	return ciphertext, nil
}

// LogRecorder is a LogInterceptor that keeps every message.
type LogRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *LogRecorder) OnLog(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

// Messages returns a copy of the recorded messages.
func (r *LogRecorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// Contains reports whether any message contains substr.
func (r *LogRecorder) Contains(substr string) bool {
	for _, m := range r.Messages() {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// Profile is a struct value for round-trip tests.
type Profile struct {
	Name  string   `json:"name" yaml:"name" msgpack:"name" xml:"name" bson:"name"`
	Age   int      `json:"age" yaml:"age" msgpack:"age" xml:"age" bson:"age"`
	Email string   `json:"email" yaml:"email" msgpack:"email" xml:"email" bson:"email"`
	Tags  []string `json:"tags" yaml:"tags" msgpack:"tags" xml:"tags" bson:"tags"`
}
