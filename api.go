package silo

import (
	"reflect"
	"unsafe"
)

// EntityTypeID identifies a defined entity type within a Context.
type EntityTypeID uint16

// QueryID identifies a defined query within a Context.
type QueryID uint32

// ComponentID is the process-wide identity of a component kind.
type ComponentID uint32

// Component represents a registered payload shape that can be attached to
// entity types and queried. Obtain implementations through
// FactoryNewComponent; the interface is sealed.
type Component interface {
	ID() ComponentID
	Size() uintptr
	PayloadType() reflect.Type

	kind() *componentKind
}

// Visitor receives one pointer per queried component for each live entity.
// The slice is reused between calls; do not retain it.
type Visitor func(ptrs []unsafe.Pointer)

// ControlledVisitor additionally receives a control handle through which
// the visitor may create and destroy entities mid-scan.
type ControlledVisitor func(ctl *QueryControl, ptrs []unsafe.Pointer)

// Cache is a fixed-capacity string-keyed registry. The Context uses one to
// back its naming tables; clients may build their own with FactoryNewCache.
type Cache[T any] interface {
	GetIndex(string) (int, bool)
	GetItem(int) *T
	Register(string, T) (int, error)
}
