package field

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// WorkerCount resolves the configured worker count against the amount of work.
func WorkerCount(configured, rows int) int {
	if rows <= 0 {
		return 0
	}
	if configured > 0 {
		if configured < rows {
			return configured
		}
		return rows
	}

	workers := runtime.GOMAXPROCS(0)
	if workers <= 0 {
		workers = 1
	}
	if workers > rows {
		workers = rows
	}
	return workers
}

// ForRows splits [0, rows) into contiguous bands and runs fn on each band in
// parallel. It returns once every band has finished, so writes made by fn are
// visible to the caller. fn must only write state owned by its rows.
func ForRows(workers, rows int, fn func(y0, y1 int)) {
	workers = WorkerCount(workers, rows)
	if workers == 0 {
		return
	}
	if workers == 1 {
		fn(0, rows)
		return
	}

	band := (rows + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < rows; y0 += band {
		y0 := y0
		y1 := y0 + band
		if y1 > rows {
			y1 = rows
		}
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}
