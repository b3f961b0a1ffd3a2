package capability

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Invoke runs the entry's handler with a hard wall-clock deadline. The
// handler executes on its own goroutine so a hung capability can never
// block the run driver; on timeout the goroutine is abandoned and its
// eventual result discarded.
//
// Panics raised by the handler are recovered into an *UnexpectedError.
// Exceeding the deadline yields a *TimeoutError carrying the configured
// duration.
func Invoke(ctx context.Context, entry *Entry, args map[string]any, timeout time.Duration) (any, error) {
	call, err := callable(entry.Fn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value any
		err   error
	}
	results := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				results <- outcome{err: &UnexpectedError{Message: fmt.Sprint(r)}}
			}
		}()
		value, err := call(ctx, args)
		results <- outcome{value: value, err: err}
	}()

	select {
	case out := <-results:
		// A deadline-aware handler may return the context error itself.
		if out.err != nil && errors.Is(out.err, context.DeadlineExceeded) {
			return nil, &TimeoutError{Timeout: timeout}
		}
		return out.value, out.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &TimeoutError{Timeout: timeout}
		}
		return nil, ctx.Err()
	}
}

// callable resolves the registered Fn into a directly invocable function.
// A factory registered in place of a constructed handler is instantiated
// with no arguments first.
func callable(fn any) (Handler, error) {
	switch f := fn.(type) {
	case Handler:
		return f, nil
	case func(context.Context, map[string]any) (any, error):
		return f, nil
	case Invocable:
		return f.Invoke, nil
	case func() Invocable:
		return f().Invoke, nil
	default:
		return nil, ErrNotInvocable
	}
}
