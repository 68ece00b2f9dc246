package silo_test

import (
	"fmt"
	"unsafe"

	"github.com/TheBitDrifter/silo"
)

// Pos is a simple component for 2D coordinates
type Pos struct {
	X float64
	Y float64
}

// Vel is a simple component for 2D movement
type Vel struct {
	X float64
	Y float64
}

// HP is a simple component for hit points
type HP struct {
	Current int32
}

// Example shows basic silo usage with entity creation and queries
func Example_basic() {
	ctx := silo.Factory.NewContext()

	// Define components
	position := silo.FactoryNewComponent[Pos]()
	velocity := silo.FactoryNewComponent[Vel]()

	// Define entity types and queries, then freeze the schema
	still, _ := ctx.DefineEntityType(position)
	moving, _ := ctx.DefineEntityType(position, velocity)
	motion, _ := ctx.DefineQuery(position, velocity)
	everything, _ := ctx.DefineQuery(position)
	ctx.Setup()

	// Create entities
	for i := 0; i < 5; i++ {
		ctx.Create(still)
	}
	player, _ := ctx.Create(moving)
	*position.GetFromEntity(ctx, player) = Pos{X: 10, Y: 20}
	*velocity.GetFromEntity(ctx, player) = Vel{X: 1, Y: 2}

	// Integrate one step for every moving entity
	silo.RunQuery2(ctx, motion, func(p *Pos, v *Vel) {
		p.X += v.X
		p.Y += v.Y
	})

	pos := position.GetFromEntity(ctx, player)
	fmt.Printf("Player moved to (%.1f, %.1f)\n", pos.X, pos.Y)

	// Count every entity carrying a position with a cursor
	cursor, _ := silo.Factory.NewCursor(ctx, everything)
	count := 0
	for cursor.Next() {
		count++
	}
	fmt.Printf("Found %d entities with a position\n", count)

	// Output:
	// Player moved to (11.0, 22.0)
	// Found 6 entities with a position
}

// Example_controlled shows structural mutation from inside a scan
func Example_controlled() {
	ctx := silo.Factory.NewContext()

	health := silo.FactoryNewComponent[HP]()
	mob, _ := ctx.DefineEntityType(health)
	mobs, _ := ctx.DefineQuery(health)
	ctx.Setup()

	for i := 0; i < 4; i++ {
		e, _ := ctx.Create(mob)
		health.GetFromEntity(ctx, e).Current = int32(10 * (i % 2))
	}

	// Cull everything at zero hit points mid-scan
	ctx.RunQueryControlled(mobs, func(ctl *silo.QueryControl, ptrs []unsafe.Pointer) {
		if (*HP)(ptrs[0]).Current == 0 {
			ctl.Destroy(ctl.Entity())
		}
	})

	fmt.Printf("%d mobs standing\n", ctx.Alive(mob))

	// Output:
	// 2 mobs standing
}
