package zin

import (
	"errors"
	"fmt"

	"github.com/zoobzio/zin/storage"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrInvalidKey indicates an empty key was passed to Put.
	ErrInvalidKey = errors.New("invalid key")

	// ErrNotBuilt indicates the facade has not been built yet.
	ErrNotBuilt = errors.New("not built")

	// ErrAlreadyBuilt indicates Build was called on a builder that already built its facade.
	ErrAlreadyBuilt = errors.New("already built")

	// ErrStage indicates a pipeline stage failed.
	ErrStage = errors.New("stage failed")

	// ErrPanic indicates a collaborator panicked inside a pipeline stage.
	ErrPanic = errors.New("collaborator panicked")

	// ErrNotFound indicates the key is not present in storage.
	ErrNotFound = storage.ErrNotFound

	// ErrInvalidEnvelope indicates a stored string is not a valid envelope.
	ErrInvalidEnvelope = errors.New("invalid envelope")

	// ErrInvalidDescriptor indicates a type descriptor could not be parsed.
	ErrInvalidDescriptor = errors.New("invalid descriptor")

	// ErrUnsupportedType indicates a value cannot be described or encoded.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrIncompatibleType indicates the requested type cannot hold the stored value.
	ErrIncompatibleType = errors.New("incompatible type")

	// ErrNotInitialized indicates an encryptor was used before Init succeeded.
	ErrNotInitialized = errors.New("encryptor not initialized")

	// ErrInvalidConfig indicates a configuration value is not recognized.
	ErrInvalidConfig = errors.New("invalid config")
)

// Stage names a step of the put or get pipeline.
type Stage string

// Pipeline stages.
const (
	StageEncode  Stage = "encode"
	StageEncrypt Stage = "encrypt"
	StagePack    Stage = "pack"
	StageStore   Stage = "store"
	StageDelete  Stage = "delete"
	StageFetch   Stage = "fetch"
	StageUnpack  Stage = "unpack"
	StageDecrypt Stage = "decrypt"
	StageDecode  Stage = "decode"
)

// StageError reports which pipeline stage failed for which key.
// It matches both ErrStage and its Cause under errors.Is.
type StageError struct {
	Stage Stage  // Stage that failed
	Key   string // Key being written or read
	Cause error  // Error returned by the collaborator
}

func (e *StageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %q: %v", e.Stage, e.Key, e.Cause)
	}
	return fmt.Sprintf("%s %q failed", e.Stage, e.Key)
}

func (e *StageError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrStage}
	}
	return []error{ErrStage, e.Cause}
}

// ConfigError represents a configuration error.
// It wraps a sentinel error with the offending field and value.
type ConfigError struct {
	Err   error  // Underlying sentinel error (ErrInvalidConfig, etc.)
	Field string // Config field that triggered the error
	Value string // Value that was rejected
}

func (e *ConfigError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("%s: %s %q", e.Err.Error(), e.Field, e.Value)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Field)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// newStageError creates a StageError for a failed pipeline step.
func newStageError(stage Stage, key string, cause error) error {
	return &StageError{
		Stage: stage,
		Key:   key,
		Cause: cause,
	}
}

// newConfigError creates a ConfigError for a rejected config value.
func newConfigError(field, value string) error {
	return &ConfigError{
		Err:   ErrInvalidConfig,
		Field: field,
		Value: value,
	}
}
