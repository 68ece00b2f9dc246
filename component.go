package silo

import (
	"fmt"
	"reflect"
	"sync"
)

// componentKind is the process-wide record of a payload shape. Kinds are
// issued small integer ids in registration order and shared by every
// Context in the process.
type componentKind struct {
	id       ComponentID
	typ      reflect.Type
	size     uintptr
	zeroFill func([]byte) // nil means plain byte clear
}

var _ Component = &componentKind{}

func (k *componentKind) ID() ComponentID           { return k.id }
func (k *componentKind) Size() uintptr             { return k.size }
func (k *componentKind) PayloadType() reflect.Type { return k.typ }
func (k *componentKind) kind() *componentKind      { return k }

// maxPayloadAlign is the widest alignment the shared component buffers
// guarantee (eight bytes).
const maxPayloadAlign = 8

var kindRegistry = struct {
	mu     sync.Mutex
	byType map[reflect.Type]*componentKind
	byID   []*componentKind
}{byType: make(map[reflect.Type]*componentKind)}

// kindFor returns the kind registered for t, registering it on first use.
// Invalid payloads are a programming error and panic.
func kindFor(t reflect.Type) *componentKind {
	kindRegistry.mu.Lock()
	defer kindRegistry.mu.Unlock()
	if k, ok := kindRegistry.byType[t]; ok {
		return k
	}
	if reason := payloadViolation(t); reason != "" {
		panic(fmt.Sprintf("silo: invalid component payload %v: %s", t, reason))
	}
	k := &componentKind{
		id:   ComponentID(len(kindRegistry.byID)),
		typ:  t,
		size: t.Size(),
	}
	kindRegistry.byType[t] = k
	kindRegistry.byID = append(kindRegistry.byID, k)
	return k
}

func kindByID(id ComponentID) *componentKind {
	kindRegistry.mu.Lock()
	defer kindRegistry.mu.Unlock()
	return kindRegistry.byID[id]
}

// payloadViolation reports why t cannot be stored as a plain byte blob, or
// "" when it can. Payloads must be pointer-free (the buffers move instances
// with raw copies and never run destructors), at most 8-byte aligned,
// and non-empty (instance pointer arithmetic needs a non-zero stride).
func payloadViolation(t reflect.Type) string {
	if t.Size() == 0 {
		return "zero-size payloads are not storable"
	}
	if t.Align() > maxPayloadAlign {
		return fmt.Sprintf("alignment %d exceeds the supported %d", t.Align(), maxPayloadAlign)
	}
	if bad := pointerBearing(t); bad != nil {
		return fmt.Sprintf("kind %v is not trivially copyable", bad.Kind())
	}
	return ""
}

// pointerBearing returns the first nested type that carries a pointer, or
// nil for plain-memory types.
func pointerBearing(t reflect.Type) reflect.Type {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return nil
	case reflect.Array:
		return pointerBearing(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if bad := pointerBearing(t.Field(i).Type); bad != nil {
				return bad
			}
		}
		return nil
	default:
		return t
	}
}

// setZeroTemplate installs a template-copy construct hook: freshly opened
// slots receive a copy of src instead of zeroed bytes.
func (k *componentKind) setZeroTemplate(src []byte) {
	tpl := make([]byte, len(src))
	copy(tpl, src)
	k.zeroFill = func(dst []byte) {
		copy(dst, tpl)
	}
}
