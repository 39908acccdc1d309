package zin

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/zoobzio/zin/json"
	"github.com/zoobzio/zin/storage"
)

// StorageNamespace prefixes every key written by the default storage.
//
// NEVER change this value. Data written under the old namespace would no
// longer be found.
const StorageNamespace = "Zin2"

// Builder assembles a Zin. Collaborators that are not set are created on
// first use and reused for the rest of the build.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	storage     Storage
	parser      Parser
	converter   TextCodec
	encryptor   Encryptor
	serializer  EnvelopeCodec
	interceptor LogInterceptor

	level      LogLevel
	dir        string
	passphrase string
	cipher     Cipher

	// encryptorReady is set once the encryptor has been initialized or
	// replaced by the fallback.
	encryptorReady bool
	// ownedStorage is the storage this builder opened, if any.
	ownedStorage io.Closer

	zin   *Zin
	built bool
}

// NewBuilder returns a Builder with no collaborators set.
func NewBuilder() *Builder {
	return &Builder{
		cipher: CipherAES,
		zin:    &Zin{},
	}
}

// Zin returns the facade this builder configures. It is unbuilt until
// Build succeeds.
func (b *Builder) Zin() *Zin {
	return b.zin
}

// SetStorage sets the storage backend. Storage set here is never closed by
// the facade.
func (b *Builder) SetStorage(s Storage) *Builder {
	b.storage = s
	return b
}

// SetParser sets the parser used by the default converter.
func (b *Builder) SetParser(p Parser) *Builder {
	b.parser = p
	return b
}

// SetConverter sets the text codec. The parser is ignored when a converter
// is set.
func (b *Builder) SetConverter(c TextCodec) *Builder {
	b.converter = c
	return b
}

// SetEncryptor sets the encryptor. It is initialized during Build and
// replaced by NoEncryption if Init fails.
func (b *Builder) SetEncryptor(e Encryptor) *Builder {
	b.encryptor = e
	b.encryptorReady = false
	return b
}

// SetSerializer sets the envelope codec.
func (b *Builder) SetSerializer(s EnvelopeCodec) *Builder {
	b.serializer = s
	return b
}

// SetLogInterceptor sets the receiver of diagnostic messages.
func (b *Builder) SetLogInterceptor(l LogInterceptor) *Builder {
	b.interceptor = l
	return b
}

// SetLogLevel sets whether messages reach the interceptor.
func (b *Builder) SetLogLevel(l LogLevel) *Builder {
	b.level = l
	return b
}

// SetDir sets the directory holding the default storage and key files.
// Without a directory the defaults keep everything in memory.
func (b *Builder) SetDir(dir string) *Builder {
	b.dir = dir
	return b
}

// SetPassphrase derives the default encryptor's key from passphrase
// instead of a random key file.
func (b *Builder) SetPassphrase(passphrase string) *Builder {
	b.passphrase = passphrase
	return b
}

// SetCipher selects the default encryptor's cipher.
func (b *Builder) SetCipher(c Cipher) *Builder {
	b.cipher = c
	return b
}

func (b *Builder) getLogInterceptor() LogInterceptor {
	if b.interceptor == nil {
		b.interceptor = noopInterceptor{}
	}
	return b.interceptor
}

func (b *Builder) logger() logger {
	return logger{out: b.getLogInterceptor(), level: b.level}
}

func (b *Builder) getStorage() (Storage, error) {
	if b.storage == nil {
		opts := storage.BadgerOptions{
			Namespace: StorageNamespace,
			InMemory:  b.dir == "",
		}
		if b.dir != "" {
			opts.Dir = filepath.Join(b.dir, "data")
		}
		db, err := storage.NewBadger(opts)
		if err != nil {
			return nil, fmt.Errorf("open default storage: %w", err)
		}
		b.storage = db
		b.ownedStorage = db
	}
	return b.storage, nil
}

func (b *Builder) getParser() Parser {
	if b.parser == nil {
		b.parser = json.New()
	}
	return b.parser
}

func (b *Builder) getConverter() TextCodec {
	if b.converter == nil {
		b.converter = NewConverter(b.getParser())
	}
	return b.converter
}

func (b *Builder) getSerializer() EnvelopeCodec {
	if b.serializer == nil {
		b.serializer = NewSerializer()
	}
	return b.serializer
}

func (b *Builder) keySource() KeySource {
	var keyPath, saltPath string
	if b.dir != "" {
		keyPath = filepath.Join(b.dir, StorageNamespace+".key")
		saltPath = filepath.Join(b.dir, StorageNamespace+".salt")
	}
	if b.passphrase != "" {
		return PassphraseKey(b.passphrase, saltPath)
	}
	return RandomKey(keyPath)
}

// getEncryptor builds the default encryptor if needed and initializes it
// once. A failed Init is replaced by NoEncryption and not retried.
func (b *Builder) getEncryptor() Encryptor {
	if b.encryptorReady {
		return b.encryptor
	}
	if b.encryptor == nil {
		enc, err := NewEncryptor(b.cipher, b.keySource())
		if err != nil {
			b.fallback(fmt.Sprintf("cipher %q", b.cipher), err)
			return b.encryptor
		}
		b.encryptor = enc
	}

	name := encryptorName(b.encryptor)
	if err := protectErr(b.encryptor.Init); err != nil {
		b.fallback(name, err)
		return b.encryptor
	}
	b.encryptorReady = true
	return b.encryptor
}

func (b *Builder) fallback(name string, err error) {
	b.logger().logf("init: %s unavailable, storing without encryption: %v", name, err)
	emitEncryptionFallback(context.Background(), name, err)
	b.encryptor = NoEncryption{}
	b.encryptorReady = true
}

// Build resolves every collaborator and turns the facade built. It returns
// ErrAlreadyBuilt on a second call. If the default storage cannot be
// opened the facade stays unbuilt.
func (b *Builder) Build() (*Zin, error) {
	if b.built {
		return b.zin, ErrAlreadyBuilt
	}

	st, err := b.getStorage()
	if err != nil {
		return b.zin, err
	}

	p := &pipeline{
		storage:    st,
		converter:  b.getConverter(),
		encryptor:  b.getEncryptor(),
		serializer: b.getSerializer(),
		log:        b.logger(),
		closer:     b.ownedStorage,
	}

	name := encryptorName(p.encryptor)
	p.log.logf("init: encryption %s", name)

	b.zin.p.Store(p)
	b.built = true

	emitBuilt(context.Background(), name, contentTypeOf(p.converter))
	return b.zin, nil
}

func contentTypeOf(c TextCodec) string {
	if ct, ok := c.(interface{ ContentType() string }); ok {
		return ct.ContentType()
	}
	return ""
}
