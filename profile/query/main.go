// Profiling:
// go build ./profile/query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.pprof

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

type tag struct{}

func main() {
	bitecs.Bind[comp1](10)
	bitecs.Bind[comp2](75)
	bitecs.Bind[tag](40)
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	run(2000, 100000)
	p.Stop()
}

func run(iters, numEntities int) {
	reg := bitecs.NewRegistry()
	if err := bitecs.Define[comp1](reg, bitecs.Frequent); err != nil {
		panic(err)
	}
	if err := bitecs.Define[comp2](reg, bitecs.Freq5); err != nil {
		panic(err)
	}
	if err := bitecs.Define[tag](reg, bitecs.Freq2); err != nil {
		panic(err)
	}
	// alternate shapes so the scanners realign on run boundaries
	for i := 0; i < numEntities; i++ {
		var err error
		if i%2 == 0 {
			_, err = bitecs.Entt2(reg, comp1{V: int64(i)}, comp2{V: int64(i)})
		} else {
			_, err = bitecs.Entt3(reg, comp1{V: int64(i)}, comp2{V: int64(i)}, tag{})
		}
		if err != nil {
			panic(err)
		}
	}
	for i := 0; i < iters; i++ {
		bitecs.RunSystem2(reg, 0, func(_ bitecs.EntityPtr, c1 *comp1, c2 *comp2) {
			c1.V += c2.V
			c1.W += c2.W
		})
	}
}
