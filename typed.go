package silo

import (
	"reflect"
	"unsafe"
)

// The typed executors are monomorphised per arity: each verifies the
// declared query tuple against its type parameters once, then streams
// typed pointers with no per-entity boxing. Use them when the query shape
// is known at compile time; fall back to RunQuery otherwise.

// RunQuery1 executes a single-component query, handing the visitor one
// typed pointer per live entity.
func RunQuery1[A any](c *Context, id QueryID, fn func(*A)) error {
	q, err := c.queryForRun(id, kindFor(reflect.TypeFor[A]()))
	if err != nil {
		return err
	}
	wasLocked := c.locked
	c.locked = true
	defer func() { c.locked = wasLocked }()

	var a A
	sa := unsafe.Sizeof(a)
	for si := range q.stmts {
		st := &q.stmts[si]
		alive := c.entityTypes[st.entityTypeIndex].alive
		if alive == 0 {
			continue
		}
		pa := c.statementBase(st, 0)
		for j := uintptr(0); j < uintptr(alive); j++ {
			fn((*A)(unsafe.Add(pa, j*sa)))
		}
	}
	return nil
}

// RunQuery2 executes a two-component query; argument order matches the
// declared tuple.
func RunQuery2[A, B any](c *Context, id QueryID, fn func(*A, *B)) error {
	q, err := c.queryForRun(id, kindFor(reflect.TypeFor[A]()), kindFor(reflect.TypeFor[B]()))
	if err != nil {
		return err
	}
	wasLocked := c.locked
	c.locked = true
	defer func() { c.locked = wasLocked }()

	var a A
	var b B
	sa, sb := unsafe.Sizeof(a), unsafe.Sizeof(b)
	for si := range q.stmts {
		st := &q.stmts[si]
		alive := c.entityTypes[st.entityTypeIndex].alive
		if alive == 0 {
			continue
		}
		pa := c.statementBase(st, 0)
		pb := c.statementBase(st, 1)
		for j := uintptr(0); j < uintptr(alive); j++ {
			fn((*A)(unsafe.Add(pa, j*sa)), (*B)(unsafe.Add(pb, j*sb)))
		}
	}
	return nil
}

// RunQuery3 executes a three-component query; argument order matches the
// declared tuple.
func RunQuery3[A, B, C any](c *Context, id QueryID, fn func(*A, *B, *C)) error {
	q, err := c.queryForRun(id,
		kindFor(reflect.TypeFor[A]()), kindFor(reflect.TypeFor[B]()), kindFor(reflect.TypeFor[C]()))
	if err != nil {
		return err
	}
	wasLocked := c.locked
	c.locked = true
	defer func() { c.locked = wasLocked }()

	var a A
	var b B
	var cc C
	sa, sb, sc := unsafe.Sizeof(a), unsafe.Sizeof(b), unsafe.Sizeof(cc)
	for si := range q.stmts {
		st := &q.stmts[si]
		alive := c.entityTypes[st.entityTypeIndex].alive
		if alive == 0 {
			continue
		}
		pa := c.statementBase(st, 0)
		pb := c.statementBase(st, 1)
		pc := c.statementBase(st, 2)
		for j := uintptr(0); j < uintptr(alive); j++ {
			fn((*A)(unsafe.Add(pa, j*sa)), (*B)(unsafe.Add(pb, j*sb)), (*C)(unsafe.Add(pc, j*sc)))
		}
	}
	return nil
}

// RunQuery4 executes a four-component query; argument order matches the
// declared tuple.
func RunQuery4[A, B, C, D any](c *Context, id QueryID, fn func(*A, *B, *C, *D)) error {
	q, err := c.queryForRun(id,
		kindFor(reflect.TypeFor[A]()), kindFor(reflect.TypeFor[B]()),
		kindFor(reflect.TypeFor[C]()), kindFor(reflect.TypeFor[D]()))
	if err != nil {
		return err
	}
	wasLocked := c.locked
	c.locked = true
	defer func() { c.locked = wasLocked }()

	var a A
	var b B
	var cc C
	var d D
	sa, sb, sc, sd := unsafe.Sizeof(a), unsafe.Sizeof(b), unsafe.Sizeof(cc), unsafe.Sizeof(d)
	for si := range q.stmts {
		st := &q.stmts[si]
		alive := c.entityTypes[st.entityTypeIndex].alive
		if alive == 0 {
			continue
		}
		pa := c.statementBase(st, 0)
		pb := c.statementBase(st, 1)
		pc := c.statementBase(st, 2)
		pd := c.statementBase(st, 3)
		for j := uintptr(0); j < uintptr(alive); j++ {
			fn((*A)(unsafe.Add(pa, j*sa)), (*B)(unsafe.Add(pb, j*sb)),
				(*C)(unsafe.Add(pc, j*sc)), (*D)(unsafe.Add(pd, j*sd)))
		}
	}
	return nil
}

// queryForRun validates that the typed executor's shape matches the
// declared tuple.
func (c *Context) queryForRun(id QueryID, kinds ...*componentKind) (*foreachQuery, error) {
	if !c.ready {
		return nil, NotSetupError{Op: "RunQuery"}
	}
	if int(id) >= len(c.queries) {
		return nil, UnknownQueryError{ID: id}
	}
	q := &c.queries[id]
	if len(q.kindIDs) != len(kinds) {
		return nil, QueryShapeError{Position: -1}
	}
	for i, k := range kinds {
		if q.kindIDs[i] != k.id {
			return nil, QueryShapeError{
				Position: i,
				Want:     kindByID(q.kindIDs[i]).typ,
				Got:      k.typ,
			}
		}
	}
	return q, nil
}

// statementBase resolves the address of the first live instance of tuple
// position pos for one statement.
func (c *Context) statementBase(st *queryStatement, pos int) unsafe.Pointer {
	et := &c.entityTypes[st.entityTypeIndex]
	ref := &c.refs[et.refsFirst+int(st.refSlots[pos])]
	sto := &c.components[ref.componentIndex]
	rng := &c.ranges[ref.rangeIndex]
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(sto.data)), uintptr(rng.first)*sto.kind.size)
}
