package zin

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"time"

	"github.com/zoobzio/sentinel"
)

// binaryContentTypes lists parsers whose output is not printable text.
// Their output is base64 encoded by the Converter.
var binaryContentTypes = map[string]bool{
	"application/msgpack": true,
	"application/bson":    true,
}

// builtinTypes are always resolvable on untyped reads.
var builtinTypes = []any{
	false, "",
	int(0), int8(0), int16(0), int32(0), int64(0),
	uint(0), uint8(0), uint16(0), uint32(0), uint64(0),
	float32(0), float64(0),
	[]byte(nil), []string(nil), []int(nil), []float64(nil), []any(nil),
	map[string]any(nil), map[string]string(nil), map[string]int(nil),
	time.Time{}, time.Duration(0),
}

// Converter is the default TextCodec. It renders values with a Parser and
// keeps a registry of types it has seen so untyped reads can rebuild them.
//
// Converter is safe for concurrent use.
type Converter struct {
	parser Parser
	binary bool
	types  *typeRegistry
}

// NewConverter returns a Converter that renders values with p.
func NewConverter(p Parser) *Converter {
	c := &Converter{
		parser: p,
		binary: binaryContentTypes[p.ContentType()],
		types:  newTypeRegistry(),
	}
	c.types.add(builtinTypes...)
	return c
}

// ContentType returns the content type of the underlying parser.
func (c *Converter) ContentType() string {
	return c.parser.ContentType()
}

// Register records the dynamic types of samples so values of those types
// can be rebuilt by untyped reads. Values of a type are registered
// automatically when they are encoded.
func (c *Converter) Register(samples ...any) {
	c.types.add(samples...)
}

// RegisterType records T with c and scans named structs into sentinel, which
// makes T resolvable by untyped reads on every converter in the process.
func RegisterType[T any](c *Converter) {
	rt := reflect.TypeFor[T]()
	if isNamedStruct(rt) {
		sentinel.Scan[T]()
	}
	c.types.addType(rt)
}

// Encode renders value as text. A string the parser cannot reproduce byte
// for byte is rejected with ErrUnsupportedType rather than stored altered.
func (c *Converter) Encode(value any) (string, error) {
	if value == nil {
		return "", fmt.Errorf("%w: nil value", ErrUnsupportedType)
	}

	data, err := c.parser.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedType, err)
	}
	if err := c.checkString(data, reflect.ValueOf(value)); err != nil {
		return "", err
	}

	c.Register(value)

	if c.binary {
		return base64.StdEncoding.EncodeToString(data), nil
	}
	return string(data), nil
}

// Decode rebuilds a value from text into out.
//
// When out points to an interface the concrete type is taken from desc and
// the registry. Unregistered types decode to whatever the parser produces
// for an untyped target, usually maps and slices of generic values.
func (c *Converter) Decode(text string, desc Descriptor, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: decode target must be a non-nil pointer, got %T", ErrIncompatibleType, out)
	}

	data, err := c.bytes(text)
	if err != nil {
		return err
	}

	target := rv.Elem()
	if target.Kind() != reflect.Interface {
		if !compatible(target.Type(), desc) {
			return fmt.Errorf("%w: stored %s, requested %s", ErrIncompatibleType, desc, target.Type())
		}
		return c.parser.Unmarshal(data, out)
	}

	rt, ok := c.types.lookup(desc.Type)
	if !ok {
		var generic any
		if err := c.parser.Unmarshal(data, &generic); err != nil {
			return err
		}
		return assign(target, reflect.ValueOf(generic))
	}

	ptr := reflect.New(rt)
	if err := c.parser.Unmarshal(data, ptr.Interface()); err != nil {
		return err
	}
	return assign(target, ptr.Elem())
}

// checkString decodes data back when v is a string and fails if the parser
// altered it. JSON replaces invalid UTF-8 and XML replaces characters it
// cannot represent, both without reporting an error.
func (c *Converter) checkString(data []byte, v reflect.Value) error {
	if v.Kind() != reflect.String {
		return nil
	}
	back := reflect.New(v.Type())
	if err := c.parser.Unmarshal(data, back.Interface()); err != nil {
		return fmt.Errorf("%w: %s string does not decode: %w", ErrUnsupportedType, c.parser.ContentType(), err)
	}
	if back.Elem().String() != v.String() {
		return fmt.Errorf("%w: %s cannot carry this string exactly", ErrUnsupportedType, c.parser.ContentType())
	}
	return nil
}

func (c *Converter) bytes(text string) ([]byte, error) {
	if !c.binary {
		return []byte(text), nil
	}
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("decode %s text: %w", c.parser.ContentType(), err)
	}
	return data, nil
}

// assign stores v in the interface target, leaving it nil for a zero v.
func assign(target, v reflect.Value) error {
	if !v.IsValid() {
		target.SetZero()
		return nil
	}
	if !v.Type().AssignableTo(target.Type()) {
		return fmt.Errorf("%w: %s does not implement %s", ErrIncompatibleType, v.Type(), target.Type())
	}
	target.Set(v)
	return nil
}
