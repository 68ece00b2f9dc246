package silo

import (
	"cmp"
	"iter"
	"slices"
	"unsafe"

	"github.com/TheBitDrifter/mask"
	iter_util "github.com/TheBitDrifter/util/iter"
	"go.uber.org/zap"
)

const (
	// maxComponentsPerContext bounds context-local component indices to
	// the bits available in a mask.Mask.
	maxComponentsPerContext = 64

	// maxEntityTypes keeps entity type ids inside the handle's 16-bit
	// field.
	maxEntityTypes = 1 << 16
)

// componentRef ties one slot of an entity type's component set to the
// context-local component and, after Setup, to its range.
type componentRef struct {
	kindID         ComponentID
	componentIndex uint16
	rangeIndex     uint32
}

// Context manages all entity operations: definition of entity types and
// queries, the one-way Setup transition, and the execution-phase
// create/destroy/get/query surface. It is a single-threaded data
// structure; all operations complete before returning.
type Context struct {
	log             *zap.Logger
	ready           bool
	locked          bool
	initialCapacity uint32

	components  []componentStore
	kindToIndex map[ComponentID]uint16
	refs        []componentRef
	ranges      []componentRange
	entityTypes []entityType
	typesByMask map[mask.Mask]EntityTypeID
	queries     []foreachQuery

	typeNames  Cache[EntityTypeID]
	queryNames Cache[QueryID]
}

func newContext() *Context {
	return &Context{
		log:             Config.logger,
		initialCapacity: Config.initialComponentCapacity,
		kindToIndex:     make(map[ComponentID]uint16),
		typesByMask:     make(map[mask.Mask]EntityTypeID),
		typeNames:       FactoryNewCache[EntityTypeID](1024),
		queryNames:      FactoryNewCache[QueryID](1024),
	}
}

// DefineEntityType registers the set of components an entity type carries.
// The order of components is irrelevant; the set is canonicalised by kind
// id and deduplicated against previously defined types, so equal sets
// yield equal ids. Call strictly before Setup.
func (c *Context) DefineEntityType(components ...Component) (EntityTypeID, error) {
	if c.ready {
		return 0, SetupCompleteError{Op: "DefineEntityType"}
	}
	sorted := make([]Component, len(components))
	copy(sorted, components)
	slices.SortFunc(sorted, func(a, b Component) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].ID() == sorted[i-1].ID() {
			return 0, DuplicateComponentError{Component: sorted[i]}
		}
	}

	var typeMask mask.Mask
	for _, comp := range sorted {
		ci, err := c.registerComponent(comp)
		if err != nil {
			return 0, err
		}
		typeMask.Mark(uint32(ci))
	}
	if id, ok := c.typesByMask[typeMask]; ok {
		return id, nil
	}
	if len(c.entityTypes) >= maxEntityTypes {
		return 0, RegistryFullError{What: "entity type", Capacity: maxEntityTypes}
	}

	id := EntityTypeID(len(c.entityTypes))
	refsFirst := len(c.refs)
	for _, comp := range sorted {
		ci := c.kindToIndex[comp.ID()]
		c.refs = append(c.refs, componentRef{kindID: comp.ID(), componentIndex: ci})
		c.components[ci].rangesCount++
	}
	c.entityTypes = append(c.entityTypes, entityType{
		refsFirst: refsFirst,
		refsCount: len(sorted),
		mask:      typeMask,
	})
	c.typesByMask[typeMask] = id
	c.log.Debug("entity type defined",
		zap.Uint16("id", uint16(id)),
		zap.Any("components", iter_util.Collect(c.EntityTypeComponents(id))))
	return id, nil
}

func (c *Context) registerComponent(comp Component) (uint16, error) {
	if ci, ok := c.kindToIndex[comp.ID()]; ok {
		return ci, nil
	}
	if len(c.components) >= maxComponentsPerContext {
		return 0, RegistryFullError{What: "component", Capacity: maxComponentsPerContext}
	}
	ci := uint16(len(c.components))
	c.kindToIndex[comp.ID()] = ci
	c.components = append(c.components, componentStore{kind: comp.kind()})
	return ci, nil
}

// Setup is the irreversible transition from the definition phase to the
// execution phase. It allocates every component buffer, lays the ranges
// table out in entity-type definition order, and compiles each query into
// statements. Call exactly once.
func (c *Context) Setup() error {
	if c.ready {
		return SetupCompleteError{Op: "Setup"}
	}

	totalRanges := 0
	for i := range c.components {
		sto := &c.components[i]
		sto.rangesFirst = totalRanges
		totalRanges += sto.rangesCount
		sto.capacity = c.initialCapacity
		sto.data = make([]byte, int(uintptr(sto.capacity)*sto.kind.size))
		sto.physToLogical = make([]uint32, sto.capacity)
	}
	c.ranges = make([]componentRange, totalRanges)

	// Entity types claim range slots in definition order; that order is
	// the adjacency used by the slide protocol.
	rangeEnd := make([]int, len(c.components))
	for ti := range c.entityTypes {
		et := &c.entityTypes[ti]
		for r := 0; r < et.refsCount; r++ {
			ref := &c.refs[et.refsFirst+r]
			sto := &c.components[ref.componentIndex]
			ref.rangeIndex = uint32(sto.rangesFirst + rangeEnd[ref.componentIndex])
			rangeEnd[ref.componentIndex]++
			c.ranges[ref.rangeIndex].entityTypeIndex = uint32(ti)
		}
	}

	for qi := range c.queries {
		c.compileQuery(&c.queries[qi])
	}

	c.ready = true
	c.log.Debug("context set up",
		zap.Int("components", len(c.components)),
		zap.Int("entityTypes", len(c.entityTypes)),
		zap.Int("queries", len(c.queries)),
		zap.Int("ranges", totalRanges))
	return nil
}

// IsSetup reports whether the context has entered the execution phase.
func (c *Context) IsSetup() bool {
	return c.ready
}

// Create makes a new entity of a previously defined type. Amortised O(1):
// a logical index is reused FIFO or freshly issued, and one instance slot
// is opened at the end of every owning component range.
func (c *Context) Create(typeID EntityTypeID) (Entity, error) {
	if !c.ready {
		return Entity{}, NotSetupError{Op: "Create"}
	}
	if c.locked {
		return Entity{}, LockedContextError{}
	}
	if int(typeID) >= len(c.entityTypes) {
		return Entity{}, UnknownEntityTypeError{ID: typeID}
	}
	et := &c.entityTypes[typeID]

	var k uint32
	if et.free.len() > 0 {
		k = et.free.pop()
	} else {
		k = uint32(len(et.generation))
		et.generation = append(et.generation, 0)
		for r := 0; r < et.refsCount; r++ {
			rng := &c.ranges[c.refs[et.refsFirst+r].rangeIndex]
			rng.logicalToPhysical = append(rng.logicalToPhysical, 0)
		}
	}

	for r := 0; r < et.refsCount; r++ {
		ref := &c.refs[et.refsFirst+r]
		p := c.componentPushBack(ref.componentIndex, ref.rangeIndex)
		rng := &c.ranges[ref.rangeIndex]
		rng.logicalToPhysical[k] = p - rng.first
		c.components[ref.componentIndex].physToLogical[p] = k
	}
	et.alive++
	return Entity{Type: typeID, Generation: et.generation[k], Index: k}, nil
}

// Destroy removes a live entity. Its logical index is queued for reuse and
// its slot generation is bumped, so outstanding handles stop passing
// IsAlive; each component range swap-removes the instance. The 16-bit
// generation wraps: a stale handle can only collide after 65536 destroys
// of the same slot without an intervening Clear.
func (c *Context) Destroy(e Entity) error {
	if !c.ready {
		return NotSetupError{Op: "Destroy"}
	}
	if c.locked {
		return LockedContextError{}
	}
	if !c.IsAlive(e) {
		return NotAliveError{Entity: e}
	}
	et := &c.entityTypes[e.Type]

	et.free.push(e.Index)
	et.generation[e.Index]++
	et.alive--

	for r := 0; r < et.refsCount; r++ {
		ref := &c.refs[et.refsFirst+r]
		sto := &c.components[ref.componentIndex]
		rng := &c.ranges[ref.rangeIndex]
		dead := rng.first + rng.logicalToPhysical[e.Index]
		last := rng.first + et.alive
		if dead != last {
			size := sto.kind.size
			copy(sto.data[uintptr(dead)*size:uintptr(dead+1)*size],
				sto.data[uintptr(last)*size:uintptr(last+1)*size])
			moved := sto.physToLogical[last]
			sto.physToLogical[dead] = moved
			rng.logicalToPhysical[moved] = dead - rng.first
		}
	}
	return nil
}

// IsAlive reports whether the handle still refers to a live entity.
func (c *Context) IsAlive(e Entity) bool {
	if int(e.Type) >= len(c.entityTypes) {
		return false
	}
	et := &c.entityTypes[e.Type]
	return int(e.Index) < len(et.generation) && et.generation[e.Index] == e.Generation
}

// Clear destroys every entity without releasing memory. Generations bump,
// free lists are rebuilt in index order, and ranges keep their offsets, so
// the next Create reuses existing capacity.
func (c *Context) Clear() error {
	if !c.ready {
		return NotSetupError{Op: "Clear"}
	}
	if c.locked {
		return LockedContextError{}
	}
	for ti := range c.entityTypes {
		et := &c.entityTypes[ti]
		et.free.reset()
		for i := range et.generation {
			et.generation[i]++
			et.free.push(uint32(i))
		}
		et.alive = 0
	}
	return nil
}

// Alive returns the number of live entities of one type.
func (c *Context) Alive(typeID EntityTypeID) int {
	if int(typeID) >= len(c.entityTypes) {
		return 0
	}
	return int(c.entityTypes[typeID].alive)
}

// EntityTypeComponents yields the component kind ids of an entity type in
// canonical (ascending) order.
func (c *Context) EntityTypeComponents(id EntityTypeID) iter.Seq[ComponentID] {
	return func(yield func(ComponentID) bool) {
		if int(id) >= len(c.entityTypes) {
			return
		}
		et := &c.entityTypes[id]
		for r := 0; r < et.refsCount; r++ {
			if !yield(c.refs[et.refsFirst+r].kindID) {
				return
			}
		}
	}
}

// NameEntityType records a string alias for an entity type id.
func (c *Context) NameEntityType(name string, id EntityTypeID) error {
	if int(id) >= len(c.entityTypes) {
		return UnknownEntityTypeError{ID: id}
	}
	_, err := c.typeNames.Register(name, id)
	return err
}

// EntityTypeByName resolves an alias recorded with NameEntityType.
func (c *Context) EntityTypeByName(name string) (EntityTypeID, bool) {
	idx, ok := c.typeNames.GetIndex(name)
	if !ok {
		return 0, false
	}
	return *c.typeNames.GetItem(idx), true
}

// NameQuery records a string alias for a query id.
func (c *Context) NameQuery(name string, id QueryID) error {
	if int(id) >= len(c.queries) {
		return UnknownQueryError{ID: id}
	}
	_, err := c.queryNames.Register(name, id)
	return err
}

// QueryByName resolves an alias recorded with NameQuery.
func (c *Context) QueryByName(name string) (QueryID, bool) {
	idx, ok := c.queryNames.GetIndex(name)
	if !ok {
		return 0, false
	}
	return *c.queryNames.GetItem(idx), true
}

// findRefSlot binary-searches an entity type's id-sorted component refs.
func (c *Context) findRefSlot(et *entityType, kindID ComponentID) (uint16, bool) {
	refs := c.refs[et.refsFirst : et.refsFirst+et.refsCount]
	slot, ok := slices.BinarySearchFunc(refs, kindID, func(r componentRef, id ComponentID) int {
		return cmp.Compare(r.kindID, id)
	})
	if !ok {
		return 0, false
	}
	return uint16(slot), true
}

// componentPointer resolves the payload address of e's instance of kindID,
// or nil when e's type does not carry the kind. The caller must ensure e
// is alive.
func (c *Context) componentPointer(e Entity, kindID ComponentID) unsafe.Pointer {
	et := &c.entityTypes[e.Type]
	slot, ok := c.findRefSlot(et, kindID)
	if !ok {
		return nil
	}
	ref := &c.refs[et.refsFirst+int(slot)]
	sto := &c.components[ref.componentIndex]
	rng := &c.ranges[ref.rangeIndex]
	p := rng.first + rng.logicalToPhysical[e.Index]
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(sto.data)), uintptr(p)*sto.kind.size)
}
