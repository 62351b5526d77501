package polymult

import (
	"sync"
	"sync/atomic"

	"github.com/nthroot-labs/polymult/engine"
)

// HelperPool is a fixed pool of persistent helper goroutines coordinated
// through a mutex and two condition variables plus a shared atomic line
// counter, modeling the work_to_do/helpers_done/main_can_wakeup event
// triple from spec.md §4.B with sync.Cond rather than raw OS events or a
// fresh goroutine per call. Grounded on ring/pool.go's persistent buffer
// pool (generalized here from a passive object pool to an active
// work-dispatch pool) and on utils/structs' generic concurrent-container
// idiom for the pool-of-workers shape.
type HelperPool struct {
	mu          sync.Mutex
	workToDo    *sync.Cond
	helpersDone *sync.Cond

	numHelpers int
	generation uint64
	stopping   bool
	activeDone int

	nextLine   atomic.Int64
	totalLines int
	job        func(lineIdx int)

	eng engine.Engine
}

// NewHelperPool starts numHelpers persistent helper goroutines, each
// holding its own eng.ShallowCopy(). numHelpers may be 0, in which case
// Dispatch runs every line on the calling goroutine alone.
func NewHelperPool(eng engine.Engine, numHelpers int) *HelperPool {
	p := &HelperPool{numHelpers: numHelpers, eng: eng}
	p.workToDo = sync.NewCond(&p.mu)
	p.helpersDone = sync.NewCond(&p.mu)
	for i := 0; i < numHelpers; i++ {
		go p.helperLoop(eng.ShallowCopy())
	}
	return p
}

func (p *HelperPool) helperLoop(local engine.Engine) {
	local.OnHelperStart()
	defer local.OnHelperStop()

	p.mu.Lock()
	// Helpers are spawned while generation is still 0. Starting from 0
	// rather than reading p.generation here means a helper scheduled only
	// after the first Dispatch has bumped the generation still joins that
	// round instead of waiting for the next one.
	var seen uint64
	for {
		for p.generation == seen && !p.stopping {
			p.workToDo.Wait()
		}
		if p.stopping {
			p.mu.Unlock()
			return
		}
		seen = p.generation
		job, total := p.job, p.totalLines
		p.mu.Unlock()

		p.drain(job, total)

		p.mu.Lock()
		p.activeDone++
		if p.activeDone == p.numHelpers {
			p.helpersDone.Signal()
		}
	}
}

// drain repeatedly claims the next unclaimed line index off the shared
// atomic counter and runs job on it until every line in [0,total) has been
// claimed by someone (this goroutine or another).
func (p *HelperPool) drain(job func(int), total int) {
	for {
		idx := int(p.nextLine.Add(1)) - 1
		if idx >= total {
			return
		}
		job(idx)
	}
}

// Dispatch runs job(0)..job(totalLines-1) across the pool's helpers plus
// the calling goroutine ("main"), returning once every line is complete.
// Dispatch is not safe to call concurrently with another Dispatch or with
// Close on the same pool.
func (p *HelperPool) Dispatch(totalLines int, job func(lineIdx int)) {
	if p.numHelpers == 0 || totalLines <= 1 {
		for i := 0; i < totalLines; i++ {
			job(i)
		}
		return
	}

	p.mu.Lock()
	p.job = job
	p.totalLines = totalLines
	p.nextLine.Store(0)
	p.activeDone = 0
	p.generation++
	p.workToDo.Broadcast()
	p.mu.Unlock()

	p.drain(job, totalLines)

	p.mu.Lock()
	for p.activeDone != p.numHelpers {
		p.helpersDone.Wait()
	}
	p.mu.Unlock()
}

// Close stops every helper goroutine. The pool must not be Dispatch-ed
// again afterward.
func (p *HelperPool) Close() {
	p.mu.Lock()
	p.stopping = true
	p.generation++
	p.workToDo.Broadcast()
	p.mu.Unlock()
}

// NumHelpers returns the number of persistent helper goroutines, not
// counting the calling goroutine.
func (p *HelperPool) NumHelpers() int { return p.numHelpers }
