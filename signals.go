package zin

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for facade events.
var (
	SignalBuilt              = capitan.NewSignal("zin.built", "Facade built and ready")
	SignalEncryptionFallback = capitan.NewSignal("zin.encryption.fallback", "Encryptor failed to initialize, values stored unencrypted")
	SignalPutComplete        = capitan.NewSignal("zin.put.complete", "Put operation finished")
	SignalGetComplete        = capitan.NewSignal("zin.get.complete", "Get operation finished")
	SignalDeleteComplete     = capitan.NewSignal("zin.delete.complete", "Delete operation finished")
	SignalDestroyed          = capitan.NewSignal("zin.destroyed", "Facade resources released")
)

// Keys for typed event data.
var (
	KeyKey         = capitan.NewStringKey("key")
	KeyStage       = capitan.NewStringKey("stage")
	KeyEncryption  = capitan.NewStringKey("encryption")
	KeyContentType = capitan.NewStringKey("content_type")
	KeyValueSize   = capitan.NewIntKey("size")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emitBuilt emits an event when a facade is built.
func emitBuilt(ctx context.Context, encryption, contentType string) {
	capitan.Emit(ctx, SignalBuilt,
		KeyEncryption.Field(encryption),
		KeyContentType.Field(contentType),
	)
}

// emitEncryptionFallback emits an event when the builder substitutes NoEncryption.
func emitEncryptionFallback(ctx context.Context, encryption string, err error) {
	capitan.Error(ctx, SignalEncryptionFallback,
		KeyEncryption.Field(encryption),
		KeyError.Field(err),
	)
}

// emitPutComplete emits an event when a put finishes.
func emitPutComplete(ctx context.Context, key string, size int, duration time.Duration, stage Stage, err error) {
	fields := []capitan.Field{
		KeyKey.Field(key),
		KeyValueSize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyStage.Field(string(stage)), KeyError.Field(err))
		capitan.Error(ctx, SignalPutComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalPutComplete, fields...)
	}
}

// emitGetComplete emits an event when a get finishes.
func emitGetComplete(ctx context.Context, key string, duration time.Duration, stage Stage, err error) {
	fields := []capitan.Field{
		KeyKey.Field(key),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyStage.Field(string(stage)), KeyError.Field(err))
		capitan.Error(ctx, SignalGetComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalGetComplete, fields...)
	}
}

// emitDeleteComplete emits an event when a delete finishes.
func emitDeleteComplete(ctx context.Context, key string, err error) {
	if err != nil {
		capitan.Error(ctx, SignalDeleteComplete, KeyKey.Field(key), KeyError.Field(err))
		return
	}
	capitan.Emit(ctx, SignalDeleteComplete, KeyKey.Field(key))
}

// emitDestroyed emits an event when a facade releases its resources.
func emitDestroyed(ctx context.Context) {
	capitan.Emit(ctx, SignalDestroyed)
}
