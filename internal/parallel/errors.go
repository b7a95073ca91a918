// Package parallel runs the fork-join reduction of a π series: workers sum
// disjoint parts of the iteration range into private partial sums, and the
// partials are combined once every worker has returned.
package parallel

import "sync"

// ErrorCollector keeps the first error reported by a group of goroutines.
// It is safe for concurrent use.
//
// Usage:
//
//	var ec parallel.ErrorCollector
//	var wg sync.WaitGroup
//	for tid := range workers {
//	    wg.Add(1)
//	    go func() {
//	        defer wg.Done()
//	        ec.SetError(work(tid))
//	    }()
//	}
//	wg.Wait()
//	if err := ec.Err(); err != nil {
//	    return err
//	}
type ErrorCollector struct {
	once sync.Once
	err  error
}

// SetError records err if it is the first non-nil error.
func (c *ErrorCollector) SetError(err error) {
	if err != nil {
		c.once.Do(func() {
			c.err = err
		})
	}
}

// Err returns the first recorded error. Call it after the goroutines have
// been joined.
func (c *ErrorCollector) Err() error {
	return c.err
}

// Reset clears the collector. It must not be called while goroutines still
// use it.
func (c *ErrorCollector) Reset() {
	c.once = sync.Once{}
	c.err = nil
}
