package silo

import (
	"slices"

	"github.com/TheBitDrifter/mask"
	"go.uber.org/zap"
)

// foreachQuery is an ordered component tuple plus, after Setup, its
// compiled plan: one statement per entity type whose component set covers
// the tuple.
type foreachQuery struct {
	kindIDs []ComponentID
	stmts   []queryStatement
}

// queryStatement pre-resolves a query against one matching entity type:
// refSlots maps each tuple position to the slot of the corresponding
// component ref within the entity type, so execution never re-scans.
type queryStatement struct {
	entityTypeIndex uint32
	refSlots        []uint16
}

// DefineQuery registers an ordered tuple of components to iterate jointly.
// Order is semantic: visitors receive components in tuple order, so (A, B)
// and (B, A) are distinct queries. Identical tuples deduplicate to one id.
// Call strictly before Setup.
func (c *Context) DefineQuery(components ...Component) (QueryID, error) {
	if c.ready {
		return 0, SetupCompleteError{Op: "DefineQuery"}
	}
	if len(components) == 0 {
		return 0, EmptyQueryError{}
	}
	ids := make([]ComponentID, len(components))
	for i, comp := range components {
		if _, err := c.registerComponent(comp); err != nil {
			return 0, err
		}
		ids[i] = comp.ID()
	}
	for qi := range c.queries {
		if slices.Equal(c.queries[qi].kindIDs, ids) {
			return QueryID(qi), nil
		}
	}
	id := QueryID(len(c.queries))
	c.queries = append(c.queries, foreachQuery{kindIDs: ids})
	c.log.Debug("query defined",
		zap.Uint32("id", uint32(id)),
		zap.Int("arity", len(ids)))
	return id, nil
}

// compileQuery records a statement for every entity type whose mask covers
// the query's components, resolving each tuple position to the entity
// type's internal ref slot.
func (c *Context) compileQuery(q *foreachQuery) {
	var qMask mask.Mask
	for _, kid := range q.kindIDs {
		qMask.Mark(uint32(c.kindToIndex[kid]))
	}
	for ti := range c.entityTypes {
		et := &c.entityTypes[ti]
		if !et.mask.ContainsAll(qMask) {
			continue
		}
		slots := make([]uint16, len(q.kindIDs))
		matched := true
		for i, kid := range q.kindIDs {
			slot, ok := c.findRefSlot(et, kid)
			if !ok {
				matched = false
				break
			}
			slots[i] = slot
		}
		if !matched {
			continue
		}
		q.stmts = append(q.stmts, queryStatement{
			entityTypeIndex: uint32(ti),
			refSlots:        slots,
		})
	}
}
