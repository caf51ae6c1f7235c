package resolver

import (
	"runtime"
	"sync"

	"martianoff/kera/internal/frontend"
)

// ResolveAll resolves every call site of a unit across a fixed worker
// pool. Each worker reads the same frozen snapshot and writes only its own
// result slot, so no locking is needed; results come back in call order.
func (r *KeraResolver) ResolveAll(sites []frontend.CallSite) []frontend.Resolution {
	out := make([]frontend.Resolution, len(sites))
	if len(sites) == 0 {
		return out
	}

	workers := r.workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(sites) {
		workers = len(sites)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = frontend.Resolution{Site: sites[i], Result: r.Resolve(sites[i])}
			}
		}()
	}
	for i := range sites {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}
