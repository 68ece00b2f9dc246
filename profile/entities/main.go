// Profiling:
// go build ./profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"github.com/TheBitDrifter/silo"
	"github.com/pkg/profile"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

func main() {
	rounds := 50
	entities := 10000
	churn := 5000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, entities, churn)
	p.Stop()
}

func run(rounds, entities, churn int) {
	c1 := silo.FactoryNewComponent[comp1]()
	c2 := silo.FactoryNewComponent[comp2]()

	for range rounds {
		ctx := silo.Factory.NewContext()
		single, _ := ctx.DefineEntityType(c1)
		pair, _ := ctx.DefineEntityType(c1, c2)
		if err := ctx.Setup(); err != nil {
			panic(err)
		}

		handles := make([]silo.Entity, 0, entities*2)
		for i := 0; i < entities; i++ {
			e, _ := ctx.Create(single)
			handles = append(handles, e)
			e, _ = ctx.Create(pair)
			handles = append(handles, e)
		}
		for i := 0; i < churn; i++ {
			slot := (i * 13) % len(handles)
			if ctx.IsAlive(handles[slot]) {
				if err := ctx.Destroy(handles[slot]); err != nil {
					panic(err)
				}
			}
			e, _ := ctx.Create(pair)
			handles[slot] = e
		}
		if err := ctx.Clear(); err != nil {
			panic(err)
		}
	}
}
