package utils

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"time"

	"git.agora.community/agora/agora/src/oops"
)

// Returns the provided value, or a default value if the input was zero.
func OrDefault[T comparable](v T, def T) T {
	var zero T
	if v == zero {
		return def
	} else {
		return v
	}
}

type Ordered interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64 | ~string
}

func Min[T Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Clamp[T Ordered](min, t, max T) T {
	return Max(min, Min(t, max))
}

func NumPages(numThings, thingsPerPage int) int {
	return Max(int(math.Ceil(float64(numThings)/float64(thingsPerPage))), 1)
}

// Takes an (error) return and panics if there is an error.
// Helps avoid `if err != nil` in scripts. Use sparingly.
//
// The argument is generic so that concrete error types come through without
// getting wrapped in a never-nil error interface.
func Must[E any](err E) {
	if !isNil(err) {
		panic(err)
	}
}

// Takes a (something, error) return and panics if there is an error.
func Must1[T any, E any](v T, err E) T {
	Must(err)
	return v
}

// Takes a (something, something, error) return and panics if there is an error.
func Must2[T1 any, T2 any, E any](v1 T1, v2 T2, err E) (T1, T2) {
	Must(err)
	return v1, v2
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

/*
Recover a panic and convert it to a returned error. Call it like so:

	func MyFunc() (err error) {
		defer utils.RecoverPanicAsError(&err)
	}

If an error was already present, the panic error mentions it and keeps it in
the chain, so errors.Is still works on the original.
*/
func RecoverPanicAsError(err *error) {
	if r := recover(); r != nil {
		var recoveredErr error
		if rerr, ok := r.(error); ok {
			recoveredErr = rerr
		} else {
			recoveredErr = fmt.Errorf("panic with value: %v", r)
		}
		if *err != nil {
			recoveredErr = fmt.Errorf("%v (while handling error: %w)", recoveredErr, *err)
		}
		*err = oops.New(recoveredErr, "panic recovered as error")
	}
}

var ErrSleepInterrupted = errors.New("sleep interrupted by context cancellation")

func SleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ErrSleepInterrupted
	case <-time.After(d):
		return nil
	}
}
