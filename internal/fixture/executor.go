package fixture

import "time"

// batchPrealloc caps the result slice capacity allocated up front.
const batchPrealloc = 1 << 16

// executor times an operation with collection and tracing suppressed.
type executor[T any] struct {
	op        func() (T, error)
	clock     Clock
	env       Environment
	disableGC bool
}

// callOnce times a single call.
func (e *executor[T]) callOnce() (time.Duration, T, error) {
	restore := suppress(e.env, e.disableGC)
	defer restore()

	start := e.clock.Now()
	result, err := e.op()
	elapsed := e.clock.Now().Sub(start)
	if err != nil {
		var zero T
		return 0, zero, err
	}
	return elapsed, result, nil
}

// callBatch times n consecutive calls and returns their results in call
// order. The batch stops at the first error.
func (e *executor[T]) callBatch(n int) (time.Duration, []T, error) {
	if n < 1 {
		n = 1
	}
	results := make([]T, 0, min(n, batchPrealloc))

	restore := suppress(e.env, e.disableGC)
	defer restore()

	start := e.clock.Now()
	for i := 0; i < n; i++ {
		result, err := e.op()
		if err != nil {
			return 0, nil, err
		}
		results = append(results, result)
	}
	elapsed := e.clock.Now().Sub(start)
	return elapsed, results, nil
}
