package nn

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// convWorkers is the number of goroutines the convolution kernels fan out
// across the batch dimension. 0 or 1 means sequential.
var convWorkers atomic.Int32

// SetConvWorkers sets the maximum number of goroutines used by Conv1D and
// ConvTranspose1D forward passes. n <= 1 disables parallelism.
func SetConvWorkers(n int) {
	if n < 0 {
		n = 0
	}
	convWorkers.Store(int32(n))
}

// forEachBatch runs fn for every batch index, in parallel when a worker
// count is configured and there is more than one batch element. Each fn call
// writes to a disjoint output region, so no locking is needed.
func forEachBatch(batch int, fn func(b int)) {
	workers := int(convWorkers.Load())
	if workers <= 1 || batch <= 1 {
		for b := 0; b < batch; b++ {
			fn(b)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for b := 0; b < batch; b++ {
		g.Go(func() error {
			fn(b)
			return nil
		})
	}
	g.Wait()
}
