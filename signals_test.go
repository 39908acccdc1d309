package zin

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEmitBuilt(_ *testing.T) {
	// Should not panic
	emitBuilt(context.Background(), "AEADEncryptor(aes)", "application/json")
}

func TestEmitEncryptionFallback(_ *testing.T) {
	emitEncryptionFallback(context.Background(), "AEADEncryptor(aes)", errors.New("test error"))
}

func TestEmitPutComplete_Success(_ *testing.T) {
	emitPutComplete(context.Background(), "age", 64, 100*time.Millisecond, StageStore, nil)
}

func TestEmitPutComplete_Error(_ *testing.T) {
	emitPutComplete(context.Background(), "age", 0, 100*time.Millisecond, StageEncrypt, errors.New("test error"))
}

func TestEmitGetComplete_Success(_ *testing.T) {
	emitGetComplete(context.Background(), "age", 100*time.Millisecond, StageDecode, nil)
}

func TestEmitGetComplete_Error(_ *testing.T) {
	emitGetComplete(context.Background(), "age", 100*time.Millisecond, StageDecrypt, errors.New("test error"))
}

func TestEmitDeleteComplete(_ *testing.T) {
	emitDeleteComplete(context.Background(), "age", nil)
	emitDeleteComplete(context.Background(), "age", errors.New("test error"))
}

func TestEmitDestroyed(_ *testing.T) {
	emitDestroyed(context.Background())
}

func TestSignalVariables(t *testing.T) {
	// Verify signals are properly initialized
	signals := []struct {
		name   string
		signal interface{}
	}{
		{"SignalBuilt", SignalBuilt},
		{"SignalEncryptionFallback", SignalEncryptionFallback},
		{"SignalPutComplete", SignalPutComplete},
		{"SignalGetComplete", SignalGetComplete},
		{"SignalDeleteComplete", SignalDeleteComplete},
		{"SignalDestroyed", SignalDestroyed},
	}

	for _, s := range signals {
		if s.signal == nil {
			t.Errorf("%s is nil", s.name)
		}
	}
}

func TestKeyVariables(t *testing.T) {
	keys := []struct {
		name string
		key  interface{}
	}{
		{"KeyKey", KeyKey},
		{"KeyStage", KeyStage},
		{"KeyEncryption", KeyEncryption},
		{"KeyContentType", KeyContentType},
		{"KeyValueSize", KeyValueSize},
		{"KeyDuration", KeyDuration},
		{"KeyError", KeyError},
	}

	for _, k := range keys {
		if k.key == nil {
			t.Errorf("%s is nil", k.name)
		}
	}
}
