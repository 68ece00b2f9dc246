package silo

import (
	"reflect"
	"unsafe"
)

type factory struct{}

var Factory factory

func (f factory) NewContext() *Context {
	return newContext()
}

func (f factory) NewCursor(ctx *Context, query QueryID) (*Cursor, error) {
	return newCursor(ctx, query)
}

// FactoryNewComponent registers T as a component kind (on first use) and
// returns a typed accessor for it. The payload must be plain memory: no
// pointers, alignment at most 8, non-zero size. Violations panic, they are
// definition-time bugs.
func FactoryNewComponent[T any]() AccessibleComponent[T] {
	return AccessibleComponent[T]{Component: kindFor(reflect.TypeFor[T]())}
}

// FactoryNewComponentWithDefault is FactoryNewComponent with a construct
// template: slots opened by Create receive a copy of def instead of zeroed
// bytes. The template is recorded on the kind, so the latest registration
// wins process-wide.
func FactoryNewComponentWithDefault[T any](def T) AccessibleComponent[T] {
	k := kindFor(reflect.TypeFor[T]())
	k.setZeroTemplate(unsafe.Slice((*byte)(unsafe.Pointer(&def)), k.size))
	return AccessibleComponent[T]{Component: k}
}

// FactoryNewCache builds a string-keyed registry holding at most cap items.
func FactoryNewCache[T any](cap int) Cache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: cap,
	}
}
