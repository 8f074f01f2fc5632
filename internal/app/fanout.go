package app

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// goSafe runs fn on g. A panic in fn fails only that branch: it is reported
// through g.Wait instead of taking down the process.
func goSafe(g *errgroup.Group, branch string, fn func()) {
	g.Go(func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("%s: panic: %v", branch, rec)
			}
		}()
		fn()
		return nil
	})
}
