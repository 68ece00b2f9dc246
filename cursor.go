package silo

// Cursor iterates the entities matched by a compiled query, one statement
// at a time. The first Next locks the context against structural mutation;
// the lock is released when iteration exhausts or when Reset is called.
// Abandoning a cursor mid-iteration without Reset leaves the context
// locked.
type Cursor struct {
	ctx   *Context
	query *foreachQuery

	stmtIndex   int
	entityIndex uint32
	remaining   uint32
	initialized bool
}

func newCursor(ctx *Context, id QueryID) (*Cursor, error) {
	if !ctx.ready {
		return nil, NotSetupError{Op: "NewCursor"}
	}
	if int(id) >= len(ctx.queries) {
		return nil, UnknownQueryError{ID: id}
	}
	return &Cursor{ctx: ctx, query: &ctx.queries[id]}, nil
}

// Next advances to the following matched entity; it returns false when the
// scan is exhausted, after which the cursor is reset and reusable.
func (c *Cursor) Next() bool {
	if c.entityIndex < c.remaining {
		c.entityIndex++
		return true
	}
	return c.advance()
}

func (c *Cursor) advance() bool {
	if !c.initialized {
		c.initialize()
	}
	for c.stmtIndex < len(c.query.stmts) {
		st := &c.query.stmts[c.stmtIndex]
		c.remaining = c.ctx.entityTypes[st.entityTypeIndex].alive

		if c.entityIndex < c.remaining {
			c.entityIndex++
			return true
		}
		c.stmtIndex++
		c.entityIndex = 0
	}
	c.Reset()
	return false
}

func (c *Cursor) initialize() {
	if c.initialized {
		return
	}
	c.stmtIndex = 0
	c.entityIndex = 0
	c.remaining = 0
	c.initialized = true
	c.ctx.locked = true
}

// Reset returns the cursor to its pre-iteration state and releases the
// context lock.
func (c *Cursor) Reset() {
	c.stmtIndex = 0
	c.entityIndex = 0
	c.remaining = 0
	c.initialized = false
	c.ctx.locked = false
}

// CurrentEntity recovers the identity of the entity at the cursor
// position.
func (c *Cursor) CurrentEntity() Entity {
	st := &c.query.stmts[c.stmtIndex]
	return c.ctx.statementEntity(st, c.entityIndex-1)
}

// RemainingInStatement reports how many entities of the current entity
// type are still unvisited.
func (c *Cursor) RemainingInStatement() int {
	return int(c.remaining - c.entityIndex)
}

// TotalMatched counts the live entities the query currently matches,
// without disturbing iteration state.
func (c *Cursor) TotalMatched() int {
	total := 0
	for si := range c.query.stmts {
		total += int(c.ctx.entityTypes[c.query.stmts[si].entityTypeIndex].alive)
	}
	return total
}
