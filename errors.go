package silo

import (
	"fmt"
	"reflect"
)

// LockedContextError is returned when a structural mutation is attempted
// while an uncontrolled iteration holds the context.
type LockedContextError struct{}

func (e LockedContextError) Error() string {
	return "context is locked by an active iteration"
}

// SetupCompleteError is returned by definition-phase operations invoked
// after Setup.
type SetupCompleteError struct {
	Op string
}

func (e SetupCompleteError) Error() string {
	return fmt.Sprintf("%s is not allowed after setup", e.Op)
}

// NotSetupError is returned by execution-phase operations invoked before
// Setup.
type NotSetupError struct {
	Op string
}

func (e NotSetupError) Error() string {
	return fmt.Sprintf("%s requires a set up context", e.Op)
}

// DuplicateComponentError is returned when an entity type definition names
// the same component kind twice.
type DuplicateComponentError struct {
	Component Component
}

func (e DuplicateComponentError) Error() string {
	return fmt.Sprintf("duplicate component in entity type: %v", e.Component.PayloadType())
}

// NotAliveError is returned by Destroy for a handle whose generation no
// longer matches its slot.
type NotAliveError struct {
	Entity Entity
}

func (e NotAliveError) Error() string {
	return fmt.Sprintf("entity {type:%d gen:%d index:%d} is not alive",
		e.Entity.Type, e.Entity.Generation, e.Entity.Index)
}

// UnknownEntityTypeError reports an entity type id the context never
// defined.
type UnknownEntityTypeError struct {
	ID EntityTypeID
}

func (e UnknownEntityTypeError) Error() string {
	return fmt.Sprintf("unknown entity type id %d", e.ID)
}

// UnknownQueryError reports a query id the context never defined.
type UnknownQueryError struct {
	ID QueryID
}

func (e UnknownQueryError) Error() string {
	return fmt.Sprintf("unknown query id %d", e.ID)
}

// EmptyQueryError is returned when a query is defined over no components.
type EmptyQueryError struct{}

func (e EmptyQueryError) Error() string {
	return "query requires at least one component"
}

// QueryShapeError is returned by the typed executors when the type
// parameters do not match the declared query tuple. Position is -1 for an
// arity mismatch.
type QueryShapeError struct {
	Position int
	Want     reflect.Type
	Got      reflect.Type
}

func (e QueryShapeError) Error() string {
	if e.Position < 0 {
		return "query arity does not match the typed executor"
	}
	return fmt.Sprintf("query position %d holds %v, not %v", e.Position, e.Want, e.Got)
}

// RegistryFullError is returned when a bounded registry is exhausted.
type RegistryFullError struct {
	What     string
	Capacity int
}

func (e RegistryFullError) Error() string {
	return fmt.Sprintf("%s registry at maximum capacity (%d)", e.What, e.Capacity)
}

// CapacityError reports an invalid buffer capacity configuration.
type CapacityError struct {
	Value int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("capacity must be a positive power of two, got %d", e.Value)
}

// InvalidHandleError reports a serialized entity of the wrong length.
type InvalidHandleError struct {
	Len int
}

func (e InvalidHandleError) Error() string {
	return fmt.Sprintf("entity wire form is %d bytes, got %d", entityWireSize, e.Len)
}

// MissingComponentError reports an asserting access to a component the
// entity's type does not carry. It is used as a panic value.
type MissingComponentError struct {
	Entity  Entity
	Payload reflect.Type
}

func (e MissingComponentError) Error() string {
	return fmt.Sprintf("entity type %d does not carry %v", e.Entity.Type, e.Payload)
}
