// Package zin provides an embeddable encrypted key-value store.
//
// Values written through a Zin facade pass through a fixed pipeline before
// they reach storage, and through the same pipeline in reverse on the way
// back:
//
//	put: value -> TextCodec.Encode -> Encryptor.Encrypt -> EnvelopeCodec.Pack -> Storage.Put
//	get: Storage.Get -> EnvelopeCodec.Unpack -> Encryptor.Decrypt -> TextCodec.Decode -> value
//
// Any stage that fails ends the operation. Nothing is written on a failed
// put, and a failed get reports "not found".
//
// # Basic Usage
//
//	z, err := zin.NewBuilder().
//	    SetDir("/var/lib/myapp").
//	    Build()
//	if err != nil {
//	    return err
//	}
//	defer z.Destroy()
//
//	_ = z.Put("age", 30)
//	age := zin.GetOr(z, "age", -1) // 30
//
// # Defaults
//
// Every stage is pluggable. Stages that are not supplied are built on first
// use by the Builder:
//
//   - Storage: badger, keyed under StorageNamespace (in-memory without SetDir)
//   - TextCodec: Converter over the json parser
//   - Encryptor: AES-256-GCM keyed from <dir>/Zin2.key, or from a passphrase
//   - EnvelopeCodec: Serializer
//   - LogInterceptor: no-op
//
// If the encryptor fails to initialize, the Builder falls back to
// NoEncryption. The store keeps working but values are stored in the clear.
//
// # Parsers
//
// The text form of a value is produced by a Parser. The following are
// available as subpackages:
//
//   - json - JSON encoding (application/json)
//   - xml - XML encoding (application/xml)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
//
// # Reading values back
//
// Get returns the stored value using the type recorded at write time.
// Reconstruction is guaranteed for scalars and strings and best-effort for
// everything else. The generic helpers decode straight into the requested
// type:
//
//	tags, ok := zin.Get[[]string](z, "tags")
package zin

// Parser provides content-type aware marshaling.
type Parser interface {
	// ContentType returns the MIME type for this parser (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// TextCodec converts values to and from their canonical text form.
type TextCodec interface {
	// Encode returns the text form of value.
	Encode(value any) (string, error)

	// Decode rebuilds a value from text into out, which must be a non-nil
	// pointer. desc is the descriptor recorded when the value was written.
	Decode(text string, desc Descriptor, out any) error
}

// Encryptor encrypts text under a per-key context.
type Encryptor interface {
	// Init prepares key material. It must be safe to call more than once.
	Init() error

	// Encrypt seals plaintext. The ciphertext is bound to key and cannot be
	// opened under any other key.
	Encrypt(key, plaintext string) (string, error)

	// Decrypt opens ciphertext that was sealed under key.
	Decrypt(key, ciphertext string) (string, error)
}

// EnvelopeCodec joins a ciphertext and the descriptor of its value into the
// single string that is persisted.
type EnvelopeCodec interface {
	// Pack derives a descriptor from value and combines it with cipherText.
	Pack(cipherText string, value any) (string, error)

	// Unpack splits a persisted string back into its parts.
	Unpack(envelope string) (Envelope, error)
}

// Storage is raw string persistence.
type Storage interface {
	Put(key, value string) error
	// Get returns storage.ErrNotFound when key is absent.
	Get(key string) (string, error)
	Delete(key string) error
	DeleteAll() error
	Contains(key string) (bool, error)
	Count() (int64, error)
}

// Destroyer is implemented by collaborators that hold resources which
// should be released when the facade is destroyed.
type Destroyer interface {
	Destroy()
}
