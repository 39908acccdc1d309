package zin

import (
	"reflect"
	"sync"
)

// typeRegistry maps descriptor type names to the Go types they name, so
// untyped reads can rebuild concrete values.
type typeRegistry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

func newTypeRegistry() *typeRegistry {
	return &typeRegistry{types: make(map[string]reflect.Type)}
}

// add records the dynamic type of each sample. Nil samples are skipped.
func (r *typeRegistry) add(samples ...any) {
	for _, s := range samples {
		if s == nil {
			continue
		}
		r.addType(reflect.TypeOf(s))
	}
}

func (r *typeRegistry) addType(rt reflect.Type) {
	name := typeName(rt)

	// Fast path: read-lock check, encodes of a known type never write.
	r.mu.RLock()
	_, ok := r.types[name]
	r.mu.RUnlock()
	if ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[name] = rt
}

// lookup resolves name from the registry, then from the structs sentinel has
// scanned anywhere in the process. Hits from sentinel are cached.
func (r *typeRegistry) lookup(name string) (reflect.Type, bool) {
	r.mu.RLock()
	rt, ok := r.types[name]
	r.mu.RUnlock()
	if ok {
		return rt, true
	}

	rt, ok = scannedType(name)
	if !ok {
		return nil, false
	}
	r.addType(rt)
	return rt, true
}
