// Profiling:
// go build ./profile/query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.pprof

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
	iters := 10000
	entities := 10000
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	run(iters, entities)
	p.Stop()
}

func run(iters, entities int) {
	c1 := silo.FactoryNewComponent[comp1]()
	c2 := silo.FactoryNewComponent[comp2]()

	ctx := silo.Factory.NewContext()
	_, _ = ctx.DefineEntityType(c1)
	pair, _ := ctx.DefineEntityType(c1, c2)
	query, _ := ctx.DefineQuery(c1, c2)
	if err := ctx.Setup(); err != nil {
		panic(err)
	}

	for i := 0; i < entities; i++ {
		e, _ := ctx.Create(pair)
		c1.GetFromEntity(ctx, e).V = int64(i)
	}

	var sum int64
	for range iters {
		err := silo.RunQuery2(ctx, query, func(a *comp1, b *comp2) {
			b.V = a.V + a.W
			sum += b.V
		})
		if err != nil {
			panic(err)
		}
	}
	_ = sum
}
