// Profiling:
// go build ./profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"github.com/cyanidle/bitecs"
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
	bitecs.Bind[comp1](10)
	bitecs.Bind[comp2](75)
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(50, 1000, 1000)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for i := 0; i < rounds; i++ {
		reg := bitecs.NewRegistry()
		if err := bitecs.Define[comp1](reg, bitecs.Freq5); err != nil {
			panic(err)
		}
		if err := bitecs.Define[comp2](reg, bitecs.Freq5); err != nil {
			panic(err)
		}
		ptrs := make([]bitecs.EntityPtr, 0, numEntities)
		for j := 0; j < iters; j++ {
			ptrs = ptrs[:0]
			err := bitecs.Entts2(reg, numEntities, func(e bitecs.EntityPtr, c1 *comp1, c2 *comp2) {
				ptrs = append(ptrs, e)
			})
			if err != nil {
				panic(err)
			}
			bitecs.RunSystem2(reg, 0, func(_ bitecs.EntityPtr, c1 *comp1, c2 *comp2) {
				c1.V += c2.V
				c1.W += c2.W
			})
			reg.DestroyBatch(ptrs)
			job := reg.PrepareCleanup()
			reg.Cleanup(job)
		}
	}
}
