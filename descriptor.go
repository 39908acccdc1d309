package zin

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/zoobzio/sentinel"
)

// Kind is the structural class of a stored value.
type Kind string

const (
	// KindScalar covers booleans, numbers and strings.
	KindScalar Kind = "scalar"

	// KindSlice covers slices and arrays.
	KindSlice Kind = "slice"

	// KindMap covers maps.
	KindMap Kind = "map"

	// KindStruct covers structs.
	KindStruct Kind = "struct"

	// KindPointer covers pointers.
	KindPointer Kind = "ptr"
)

// validKinds contains all kinds accepted by ParseDescriptor.
var validKinds = map[Kind]bool{
	KindScalar:  true,
	KindSlice:   true,
	KindMap:     true,
	KindStruct:  true,
	KindPointer: true,
}

// IsValidKind returns true if k is a known kind.
func IsValidKind(k Kind) bool {
	return validKinds[k]
}

// Descriptor records how a value was stored so it can be rebuilt on read.
// Type is the Go type string, or pkgpath.Name for named structs.
type Descriptor struct {
	Kind Kind
	Type string
}

// String returns the persisted form, "<kind>#<type>".
func (d Descriptor) String() string {
	return string(d.Kind) + "#" + d.Type
}

// ParseDescriptor parses the persisted form produced by Descriptor.String.
func ParseDescriptor(s string) (Descriptor, error) {
	kind, typ, ok := strings.Cut(s, "#")
	if !ok || typ == "" {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrInvalidDescriptor, s)
	}
	if !IsValidKind(Kind(kind)) {
		return Descriptor{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidDescriptor, kind)
	}
	return Descriptor{Kind: Kind(kind), Type: typ}, nil
}

// Describe derives the descriptor of value's dynamic type.
func Describe(value any) (Descriptor, error) {
	if value == nil {
		return Descriptor{}, fmt.Errorf("%w: nil value", ErrUnsupportedType)
	}
	return describeType(reflect.TypeOf(value))
}

func describeType(rt reflect.Type) (Descriptor, error) {
	kind, err := kindOf(rt)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Kind: kind, Type: typeName(rt)}, nil
}

// kindOf maps sentinel's classification of rt onto the persisted kinds.
// Types sentinel files as scalars but no parser can encode are rejected.
func kindOf(rt reflect.Type) (Kind, error) {
	switch rt.Kind() {
	case reflect.Invalid, reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Interface:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, rt)
	}

	switch fieldMetadata(rt).Kind {
	case sentinel.KindScalar:
		return KindScalar, nil
	case sentinel.KindSlice:
		return KindSlice, nil
	case sentinel.KindMap:
		return KindMap, nil
	case sentinel.KindStruct:
		return KindStruct, nil
	case sentinel.KindPointer:
		return KindPointer, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, rt)
	}
}

// fieldMetadata classifies rt the way sentinel classifies struct fields.
func fieldMetadata(rt reflect.Type) sentinel.FieldMetadata {
	fm := sentinel.FieldMetadata{
		Name:        rt.Name(),
		Type:        rt.String(),
		ReflectType: rt,
	}

	switch rt.Kind() {
	case reflect.Struct:
		fm.Kind = sentinel.KindStruct
	case reflect.Ptr:
		fm.Kind = sentinel.KindPointer
	case reflect.Slice, reflect.Array:
		fm.Kind = sentinel.KindSlice
	case reflect.Map:
		fm.Kind = sentinel.KindMap
	case reflect.Interface:
		fm.Kind = sentinel.KindInterface
	default:
		fm.Kind = sentinel.KindScalar
	}
	return fm
}

// typeName qualifies named structs with their full package path so two
// packages' User types do not collide.
func typeName(rt reflect.Type) string {
	if isNamedStruct(rt) {
		return rt.PkgPath() + "." + rt.Name()
	}
	return rt.String()
}

func isNamedStruct(rt reflect.Type) bool {
	return rt.Kind() == reflect.Struct && rt.Name() != "" && rt.PkgPath() != ""
}

// typeNameFor is typeName for a static type. Named structs are scanned into
// sentinel on the way, so untyped reads on any converter can rebuild them
// afterwards.
func typeNameFor[T any]() string {
	rt := reflect.TypeFor[T]()
	if isNamedStruct(rt) {
		sentinel.Scan[T]()
	}
	return typeName(rt)
}

// scannedType resolves a descriptor type name through sentinel's cache of
// scanned structs. sentinel keys types by their short package name, so both
// spellings are tried and the result must name the same type.
func scannedType(name string) (reflect.Type, bool) {
	candidates := []string{name}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		candidates = append(candidates, name[i+1:])
	}
	for _, c := range candidates {
		meta, ok := sentinel.Lookup(c)
		if !ok || meta.ReflectType == nil {
			continue
		}
		if typeName(meta.ReflectType) == name {
			return meta.ReflectType, true
		}
	}
	return nil, false
}

// compatible reports whether a value described by desc can be decoded into
// a variable of type want. Interfaces accept anything.
func compatible(want reflect.Type, desc Descriptor) bool {
	if want.Kind() == reflect.Interface {
		return true
	}
	kind, err := kindOf(want)
	if err != nil {
		return false
	}
	return kind == desc.Kind
}

// isNil reports whether value is nil or a nil pointer, map, slice,
// interface, func or channel.
func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
