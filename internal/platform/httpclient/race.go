package httpclient

import (
	"context"
	"time"
)

type outcome[T any] struct {
	val T
	err error
}

// raceTimeout corre fn contra un timer; gana el primero que termine.
// El perdedor siempre se cancela: si gana fn, el timer se detiene; si gana el
// timer, se cancela el ctx de fn. timedOut indica que ganó el timer.
func raceTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (val T, timedOut bool, err error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	timer := time.NewTimer(d)
	defer timer.Stop()

	// buffer 1: la goroutine nunca queda bloqueada si perdió la carrera
	done := make(chan outcome[T], 1)
	go func() {
		v, err := fn(runCtx)
		done <- outcome[T]{val: v, err: err}
	}()

	select {
	case o := <-done:
		return o.val, false, o.err
	case <-timer.C:
		cancel()
		var zero T
		return zero, true, nil
	}
}
