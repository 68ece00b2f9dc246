/*
Package silo provides the storage core of an Entity-Component-System (ECS)
for real-time simulations (games, physics, agent models).

Silo keeps one contiguous growable buffer per component kind, partitioned
into per-entity-type ranges. A compiled query therefore reads plain arrays
of component instances in a single linear pass per matching entity type,
with no pointer chasing and no per-entity dispatch in the hot loop.

A Context passes through two phases. During the definition phase the client
registers entity types (unordered component sets, canonicalised and
deduplicated) and queries (ordered component tuples). Setup is a one-way
transition that allocates component storage and compiles query plans; after
it only Create, Destroy, component access, Clear and query execution are
legal.

Core Concepts:

  - Entity: a (type, generation, index) handle. Generations make handles
    outlive destruction of their referent.
  - Component: a registered fixed-size payload shape with a zero-construct
    hook.
  - Entity type: a canonicalised set of component kinds; the schema is
    frozen at Setup.
  - Query: an ordered tuple of component kinds, compiled at Setup into one
    statement per matching entity type.

Basic Usage:

	ctx := silo.Factory.NewContext()

	position := silo.FactoryNewComponent[Position]()
	velocity := silo.FactoryNewComponent[Velocity]()

	moving, _ := ctx.DefineEntityType(position, velocity)
	motion, _ := ctx.DefineQuery(position, velocity)

	ctx.Setup()

	e, _ := ctx.Create(moving)
	position.GetFromEntity(ctx, e).X = 10

	silo.RunQuery2(ctx, motion, func(pos *Position, vel *Velocity) {
		pos.X += vel.X
		pos.Y += vel.Y
	})

Silo works as a standalone library; it expects a single-threaded host loop
driving all operations.
*/
package silo
