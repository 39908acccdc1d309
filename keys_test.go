package zin

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// fastArgon2 keeps derivation cheap in tests.
var fastArgon2 = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, SaltLen: 16}

func TestRandomKey_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "Zin2.key")

	k1, err := RandomKey(path).Key()
	if err != nil {
		t.Fatalf("Key() error: %v", err)
	}
	if len(k1) != KeySize {
		t.Fatalf("Key() length = %d, want %d", len(k1), KeySize)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("key file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("key file mode = %o, want 600", perm)
	}

	k2, err := RandomKey(path).Key()
	if err != nil {
		t.Fatalf("Key() error: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Error("second Key() should read back the stored key")
	}
}

func TestRandomKey_Ephemeral(t *testing.T) {
	k1, _ := RandomKey("").Key()
	k2, _ := RandomKey("").Key()
	if bytes.Equal(k1, k2) {
		t.Error("ephemeral keys should differ")
	}
}

func TestRandomKey_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Zin2.key")
	if err := os.WriteFile(path, []byte("too short"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := RandomKey(path).Key(); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("Key() error = %v, want ErrInvalidKeySize", err)
	}
}

func TestPassphraseKey_Stable(t *testing.T) {
	salt := filepath.Join(t.TempDir(), "Zin2.salt")

	k1, err := PassphraseKeyWithParams("correct horse", salt, fastArgon2).Key()
	if err != nil {
		t.Fatalf("Key() error: %v", err)
	}
	k2, _ := PassphraseKeyWithParams("correct horse", salt, fastArgon2).Key()
	if !bytes.Equal(k1, k2) {
		t.Error("same passphrase and salt should derive the same key")
	}

	k3, _ := PassphraseKeyWithParams("battery staple", salt, fastArgon2).Key()
	if bytes.Equal(k1, k3) {
		t.Error("different passphrases should derive different keys")
	}
	if len(k1) != KeySize {
		t.Errorf("Key() length = %d, want %d", len(k1), KeySize)
	}
}

func TestPassphraseKey_Empty(t *testing.T) {
	if _, err := PassphraseKey("", "").Key(); err == nil {
		t.Error("expected error for empty passphrase")
	}
}

func TestDefaultArgon2Params(t *testing.T) {
	p := DefaultArgon2Params()
	if p.Time == 0 || p.Memory == 0 || p.Threads == 0 || p.SaltLen == 0 {
		t.Errorf("DefaultArgon2Params() = %+v, want all fields set", p)
	}
}
