// Profiling:
// go build ./cmd/entbench
// ./entbench && go tool pprof -http=":8000" -nodefraction=0.001 ./entbench mem.pprof

package main

import (
	"fmt"
	"os"

	"github.com/nngn/engine/internal/component"
	"github.com/nngn/engine/internal/core/ecs"
	"github.com/pkg/profile"
)

func main() {
	rounds := 50
	iters := 1000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	if err := run(rounds, iters, entities); err != nil {
		fmt.Fprintf(os.Stderr, "entbench: %v\n", err)
		os.Exit(1)
	}
	p.Stop()
}

// run fills a world, touches every motion component, then removes every
// other entity and refills, so the freelist sees steady churn.
func run(rounds, iters, numEntities int) error {
	for range rounds {
		w, err := ecs.NewWorld(numEntities)
		if err != nil {
			return err
		}
		motion := ecs.NewPtrComponentStore[component.Motion]()
		w.Register(motion)

		ids := make([]ecs.EntityID, 0, numEntities)
		for range iters {
			for len(ids) < numEntities {
				id, err := w.CreateEntity()
				if err != nil {
					return err
				}
				motion.Set(id, &component.Motion{V: component.Vec3{X: 1}})
				ids = append(ids, id)
			}
			ecs.Each1(w, motion, func(_ ecs.EntityID, m *component.Motion) {
				m.P = m.P.Add(m.V)
			})
			kept := ids[:0]
			for i, id := range ids {
				if i%2 == 0 {
					if err := w.Destroy(id); err != nil {
						return err
					}
					continue
				}
				kept = append(kept, id)
			}
			ids = kept
		}
	}
	return nil
}
