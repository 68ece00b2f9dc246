package silo

import "unsafe"

// AccessibleComponent extends a base Component with typed access into a
// Context. It provides methods to retrieve instances through entity
// handles and cursors.
type AccessibleComponent[T any] struct {
	Component
}

// GetFromEntity retrieves the component instance of a live entity. It
// panics with MissingComponentError when the entity's type does not carry
// the component; gate with CheckEntity or use TryGetFromEntity when the
// shape is not statically known. The entity must be alive.
func (a AccessibleComponent[T]) GetFromEntity(ctx *Context, e Entity) *T {
	ptr := ctx.componentPointer(e, a.ID())
	if ptr == nil {
		panic(MissingComponentError{Entity: e, Payload: a.PayloadType()})
	}
	return (*T)(ptr)
}

// TryGetFromEntity retrieves the component instance of a live entity,
// reporting false for dead handles and for types that lack the component.
func (a AccessibleComponent[T]) TryGetFromEntity(ctx *Context, e Entity) (*T, bool) {
	if !ctx.IsAlive(e) {
		return nil, false
	}
	ptr := ctx.componentPointer(e, a.ID())
	if ptr == nil {
		return nil, false
	}
	return (*T)(ptr), true
}

// CheckEntity reports whether the entity's type carries the component.
func (a AccessibleComponent[T]) CheckEntity(ctx *Context, e Entity) bool {
	if int(e.Type) >= len(ctx.entityTypes) {
		return false
	}
	_, ok := ctx.findRefSlot(&ctx.entityTypes[e.Type], a.ID())
	return ok
}

// GetFromCursor retrieves the component instance of the entity at the
// cursor position. Panics with MissingComponentError when the current
// entity type lacks the component.
func (a AccessibleComponent[T]) GetFromCursor(cur *Cursor) *T {
	ctx := cur.ctx
	st := &cur.query.stmts[cur.stmtIndex]
	et := &ctx.entityTypes[st.entityTypeIndex]
	slot, ok := ctx.findRefSlot(et, a.ID())
	if !ok {
		panic(MissingComponentError{Entity: cur.CurrentEntity(), Payload: a.PayloadType()})
	}
	ref := &ctx.refs[et.refsFirst+int(slot)]
	sto := &ctx.components[ref.componentIndex]
	rng := &ctx.ranges[ref.rangeIndex]
	p := rng.first + cur.entityIndex - 1
	return (*T)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(sto.data)), uintptr(p)*sto.kind.size))
}

// CheckCursor reports whether the entity type at the cursor position
// carries the component.
func (a AccessibleComponent[T]) CheckCursor(cur *Cursor) bool {
	st := &cur.query.stmts[cur.stmtIndex]
	_, ok := cur.ctx.findRefSlot(&cur.ctx.entityTypes[st.entityTypeIndex], a.ID())
	return ok
}
