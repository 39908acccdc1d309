package zin

import (
	"context"
	"errors"
	"io"
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

// Zin is the facade over the encrypted store.
//
// A Zin starts out unbuilt. Until its Builder's Build runs, every operation
// returns its failure value (ErrNotBuilt, false, nil or 0) without touching
// any collaborator. Once built it stays built.
//
// Zin does not lock around the pipeline. Concurrent Put and Get on the same
// key may interleave at the storage boundary; callers that need atomicity
// across the pipeline must add their own locking.
type Zin struct {
	p atomic.Pointer[pipeline]
}

// pipeline holds the collaborators resolved by the builder.
type pipeline struct {
	storage    Storage
	converter  TextCodec
	encryptor  Encryptor
	serializer EnvelopeCodec
	log        logger

	// closer is set when the builder created the storage itself.
	closer      io.Closer
	destroyOnce sync.Once
}

func (z *Zin) pipeline() *pipeline {
	if z == nil {
		return nil
	}
	return z.p.Load()
}

// IsBuilt reports whether the facade is ready for use.
func (z *Zin) IsBuilt() bool {
	return z.pipeline() != nil
}

// Put encrypts and stores value under key.
//
// An empty key returns ErrInvalidKey before anything else runs. A nil value
// deletes key. Any stage failure returns a *StageError and leaves the
// previously stored value untouched.
func (z *Zin) Put(key string, value any) error {
	p := z.pipeline()
	if p == nil {
		return ErrNotBuilt
	}
	return p.put(key, value)
}

// Get returns the value stored under key, rebuilt as the type it was
// written with. The boolean is false if key is empty, absent or any stage
// fails.
func (z *Zin) Get(key string) (any, bool) {
	p := z.pipeline()
	if p == nil {
		return nil, false
	}
	var v any
	if _, err := p.get(key, &v); err != nil {
		return nil, false
	}
	return v, true
}

// GetOr is Get returning def when nothing can be read.
func (z *Zin) GetOr(key string, def any) any {
	if v, ok := z.Get(key); ok {
		return v
	}
	return def
}

// Get reads the value under key as a T. Scalars and strings round-trip
// exactly; other types are decoded on a best-effort basis and a T of a
// different kind than the stored value reads as absent.
func Get[T any](z *Zin, key string) (T, bool) {
	var v T
	p := z.pipeline()
	if p == nil {
		return v, false
	}

	desc, err := p.get(key, &v)
	if err != nil {
		var zero T
		return zero, false
	}

	if reflect.TypeFor[T]().Kind() != reflect.Interface {
		if want := typeNameFor[T](); want != desc.Type {
			p.log.logf("get %q: stored as %s, read as %s", key, desc.Type, want)
		}
	}
	return v, true
}

// GetOr is Get returning def when nothing can be read.
func GetOr[T any](z *Zin, key string, def T) T {
	if v, ok := Get[T](z, key); ok {
		return v
	}
	return def
}

// Count returns the number of stored keys, or 0 on failure.
func (z *Zin) Count() int64 {
	p := z.pipeline()
	if p == nil {
		return 0
	}
	n, err := protect(p.storage.Count)
	if err != nil {
		p.log.logf("count failed: %v", err)
		return 0
	}
	return n
}

// DeleteAll removes every stored key. Key material is kept.
func (z *Zin) DeleteAll() bool {
	p := z.pipeline()
	if p == nil {
		return false
	}
	if err := protectErr(p.storage.DeleteAll); err != nil {
		p.log.logf("delete all failed: %v", err)
		return false
	}
	p.log.logf("deleted all")
	return true
}

// Delete removes key. Deleting an absent key succeeds.
func (z *Zin) Delete(key string) bool {
	p := z.pipeline()
	if p == nil {
		return false
	}
	return p.delete(key) == nil
}

// Contains reports whether key is stored.
func (z *Zin) Contains(key string) bool {
	p := z.pipeline()
	if p == nil {
		return false
	}
	ok, err := protect(func() (bool, error) { return p.storage.Contains(key) })
	if err != nil {
		p.log.logf("contains %q failed: %v", key, err)
		return false
	}
	return ok
}

// Destroy releases the storage the builder opened and the encryptor's key
// material. It is safe to call more than once, and before Build.
func (z *Zin) Destroy() {
	p := z.pipeline()
	if p == nil {
		return
	}
	p.destroyOnce.Do(p.destroy)
}

func (p *pipeline) put(key string, value any) (err error) {
	if key == "" {
		return ErrInvalidKey
	}
	p.log.logf("put %q", key)

	if isNil(value) {
		p.log.logf("put %q: nil value, deleting", key)
		if err := p.delete(key); err != nil {
			return newStageError(StageDelete, key, err)
		}
		return nil
	}

	start := time.Now()
	var stage Stage
	var size int
	defer func() {
		emitPutComplete(context.Background(), key, size, time.Since(start), stage, err)
	}()

	// 1. Value to text
	stage = StageEncode
	plainText, err := protect(func() (string, error) { return p.converter.Encode(value) })
	if err != nil {
		return p.fail("put", stage, key, err)
	}
	p.log.logf("put %q: encoded %d bytes", key, len(plainText))

	// 2. Encrypt under the key
	stage = StageEncrypt
	cipherText, err := protect(func() (string, error) { return p.encryptor.Encrypt(key, plainText) })
	if err != nil {
		return p.fail("put", stage, key, err)
	}
	p.log.logf("put %q: encrypted to %d bytes", key, len(cipherText))

	// 3. Wrap with the type descriptor
	stage = StagePack
	envelope, err := protect(func() (string, error) { return p.serializer.Pack(cipherText, value) })
	if err != nil {
		return p.fail("put", stage, key, err)
	}
	size = len(envelope)
	p.log.logf("put %q: packed %d bytes", key, size)

	// 4. Persist
	stage = StageStore
	if err := protectErr(func() error { return p.storage.Put(key, envelope) }); err != nil {
		return p.fail("put", stage, key, err)
	}
	p.log.logf("put %q: stored", key)
	return nil
}

// get runs the read pipeline into out and returns the stored descriptor.
func (p *pipeline) get(key string, out any) (desc Descriptor, err error) {
	p.log.logf("get %q", key)
	if key == "" {
		p.log.logf("get: empty key, nothing to read")
		return Descriptor{}, ErrNotFound
	}

	start := time.Now()
	var stage Stage
	defer func() {
		emitGetComplete(context.Background(), key, time.Since(start), stage, err)
	}()

	// 1. Fetch
	stage = StageFetch
	stored, err := protect(func() (string, error) { return p.storage.Get(key) })
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			p.log.logf("get %q: not found", key)
			return Descriptor{}, err
		}
		return Descriptor{}, p.fail("get", stage, key, err)
	}
	p.log.logf("get %q: fetched %d bytes", key, len(stored))

	// 2. Split envelope
	stage = StageUnpack
	envelope, err := protect(func() (Envelope, error) { return p.serializer.Unpack(stored) })
	if err != nil {
		return Descriptor{}, p.fail("get", stage, key, err)
	}
	p.log.logf("get %q: unpacked %s", key, envelope.Descriptor)

	// 3. Decrypt under the key
	stage = StageDecrypt
	plainText, err := protect(func() (string, error) { return p.encryptor.Decrypt(key, envelope.CipherText) })
	if err != nil {
		return Descriptor{}, p.fail("get", stage, key, err)
	}
	p.log.logf("get %q: decrypted %d bytes", key, len(plainText))

	// 4. Text to value
	stage = StageDecode
	if err := protectErr(func() error { return p.converter.Decode(plainText, envelope.Descriptor, out) }); err != nil {
		return Descriptor{}, p.fail("get", stage, key, err)
	}
	p.log.logf("get %q: decoded", key)
	return envelope.Descriptor, nil
}

func (p *pipeline) delete(key string) error {
	err := protectErr(func() error { return p.storage.Delete(key) })
	if err != nil {
		p.log.logf("delete %q failed: %v", key, err)
	} else {
		p.log.logf("delete %q", key)
	}
	emitDeleteComplete(context.Background(), key, err)
	return err
}

func (p *pipeline) fail(op string, stage Stage, key string, err error) error {
	p.log.logf("%s %q: %s failed: %v", op, key, stage, err)
	return newStageError(stage, key, err)
}

func (p *pipeline) destroy() {
	if d, ok := p.encryptor.(Destroyer); ok {
		d.Destroy()
	}
	if p.closer != nil {
		if err := p.closer.Close(); err != nil {
			p.log.logf("close storage: %v", err)
		}
	}
	p.log.logf("destroyed")
	emitDestroyed(context.Background())
}
