package silo

import "unsafe"

// RunQuery streams every live entity matched by a compiled query to the
// visitor, one statement (entity type) at a time. Per statement the base
// pointer of each tuple position is resolved once; the inner loop is a
// plain index walk over the ranges. The context is locked for the duration
// of the run: structural mutation from inside the visitor is an error, use
// RunQueryControlled for that.
func (c *Context) RunQuery(id QueryID, visit Visitor) error {
	if !c.ready {
		return NotSetupError{Op: "RunQuery"}
	}
	if int(id) >= len(c.queries) {
		return UnknownQueryError{ID: id}
	}
	q := &c.queries[id]

	wasLocked := c.locked
	c.locked = true
	defer func() { c.locked = wasLocked }()

	n := len(q.kindIDs)
	bases := make([]unsafe.Pointer, n)
	sizes := make([]uintptr, n)
	ptrs := make([]unsafe.Pointer, n)
	for si := range q.stmts {
		st := &q.stmts[si]
		et := &c.entityTypes[st.entityTypeIndex]
		if et.alive == 0 {
			continue
		}
		c.resolveBases(st, bases, sizes)
		for j := uint32(0); j < et.alive; j++ {
			for i := 0; i < n; i++ {
				ptrs[i] = unsafe.Add(bases[i], uintptr(j)*sizes[i])
			}
			visit(ptrs)
		}
	}
	return nil
}

// resolveBases computes, for each tuple position of a statement, the
// address of the first instance of its range plus the instance stride.
func (c *Context) resolveBases(st *queryStatement, bases []unsafe.Pointer, sizes []uintptr) {
	et := &c.entityTypes[st.entityTypeIndex]
	for i, slot := range st.refSlots {
		ref := &c.refs[et.refsFirst+int(slot)]
		sto := &c.components[ref.componentIndex]
		rng := &c.ranges[ref.rangeIndex]
		sizes[i] = sto.kind.size
		bases[i] = unsafe.Add(unsafe.Pointer(unsafe.SliceData(sto.data)), uintptr(rng.first)*sto.kind.size)
	}
}

// statementEntity recovers the identity of the entity at iteration j of a
// statement through the dual map of the tuple's first component.
func (c *Context) statementEntity(st *queryStatement, j uint32) Entity {
	et := &c.entityTypes[st.entityTypeIndex]
	ref := &c.refs[et.refsFirst+int(st.refSlots[0])]
	sto := &c.components[ref.componentIndex]
	rng := &c.ranges[ref.rangeIndex]
	k := sto.physToLogical[rng.first+j]
	return Entity{Type: EntityTypeID(st.entityTypeIndex), Generation: et.generation[k], Index: k}
}

// queryRunState is the iteration state of one controlled run, shared by
// pointer so nested resumes advance the same scan.
type queryRunState struct {
	stmt     int
	j        uint32
	basesFor int
	bases    []unsafe.Pointer
	sizes    []uintptr
	ptrs     []unsafe.Pointer
	mutated  bool
}

// QueryControl lets a controlled visitor mutate the context mid-scan.
// Destroying the current entity makes the executor revisit the element
// swapped into its slot; creating entities re-resolves base pointers so
// buffer reallocation and range slides are observed. Creations of the
// current statement's entity type are visited later in the same run.
type QueryControl struct {
	ctx *Context
	q   *foreachQuery
	st  *queryRunState
}

// RunQueryControlled is RunQuery with a control handle threaded to the
// visitor. Mutations must flow through the handle; the context itself is
// not locked.
func (c *Context) RunQueryControlled(id QueryID, visit ControlledVisitor) error {
	if !c.ready {
		return NotSetupError{Op: "RunQueryControlled"}
	}
	if c.locked {
		return LockedContextError{}
	}
	if int(id) >= len(c.queries) {
		return UnknownQueryError{ID: id}
	}
	q := &c.queries[id]
	n := len(q.kindIDs)
	st := &queryRunState{
		basesFor: -1,
		bases:    make([]unsafe.Pointer, n),
		sizes:    make([]uintptr, n),
		ptrs:     make([]unsafe.Pointer, n),
	}
	c.runControlled(&QueryControl{ctx: c, q: q, st: st}, visit)
	return nil
}

func (c *Context) runControlled(ctl *QueryControl, visit ControlledVisitor) {
	q, st := ctl.q, ctl.st
	for {
		if st.stmt >= len(q.stmts) {
			return
		}
		stmt := &q.stmts[st.stmt]
		et := &c.entityTypes[stmt.entityTypeIndex]
		if st.j >= et.alive {
			st.stmt++
			st.j = 0
			continue
		}
		if st.basesFor != st.stmt {
			c.resolveBases(stmt, st.bases, st.sizes)
			st.basesFor = st.stmt
		}
		for i := range st.bases {
			st.ptrs[i] = unsafe.Add(st.bases[i], uintptr(st.j)*st.sizes[i])
		}
		current := c.statementEntity(stmt, st.j)
		st.mutated = false
		visit(ctl, st.ptrs)
		if st.mutated {
			c.resolveBases(stmt, st.bases, st.sizes)
			if !c.IsAlive(current) {
				// The swap-remove slid another element into slot j;
				// revisit it.
				continue
			}
		}
		st.j++
	}
}

// Entity returns the identity of the entity currently visited.
func (qc *QueryControl) Entity() Entity {
	return qc.ctx.statementEntity(&qc.q.stmts[qc.st.stmt], qc.st.j)
}

// Context returns the context the scan runs against.
func (qc *QueryControl) Context() *Context {
	return qc.ctx
}

// Create makes an entity mid-scan. Entities of the statement currently
// being walked are visited before the run ends; entities of later
// statements are picked up when the scan reaches them.
func (qc *QueryControl) Create(typeID EntityTypeID) (Entity, error) {
	e, err := qc.ctx.Create(typeID)
	if err == nil {
		qc.st.mutated = true
	}
	return e, err
}

// Destroy removes an entity mid-scan. Destroying the current entity is
// safe: its slot is revisited after the swap-in.
func (qc *QueryControl) Destroy(e Entity) error {
	err := qc.ctx.Destroy(e)
	if err == nil {
		qc.st.mutated = true
	}
	return err
}

// Resume re-enters the same scan starting at the iteration after the
// current one, running visit for the remainder. The state is shared, so
// when Resume returns the scan is exhausted and the outer run finishes
// immediately.
func (qc *QueryControl) Resume(visit ControlledVisitor) {
	qc.st.j++
	qc.ctx.runControlled(qc, visit)
	qc.st.mutated = true
}
