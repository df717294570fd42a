package result

import "fmt"

// Result holds exactly one of a success value or an error message.
// Reading the wrong branch is a programming error and panics; callers
// are expected to check IsOK first or go through GetOrElse.
type Result[T any] struct {
	ok    bool
	value T
	err   string
}

// Void is the value type for results that carry no payload, such as guards.
type Void struct{}

func Ok[T any](value T) Result[T] {
	return Result[T]{ok: true, value: value}
}

func Fail[T any](err string) Result[T] {
	return Result[T]{ok: false, err: err}
}

func Failf[T any](format string, args ...interface{}) Result[T] {
	return Result[T]{ok: false, err: fmt.Sprintf(format, args...)}
}

func OkVoid() Result[Void] {
	return Ok(Void{})
}

func (r Result[T]) IsOK() bool {
	return r.ok
}

func (r Result[T]) IsFail() bool {
	return !r.ok
}

func (r Result[T]) Value() T {
	if !r.ok {
		panic("cannot get value from failed result")
	}
	return r.value
}

func (r Result[T]) Err() string {
	if r.ok {
		panic("cannot get error from successful result")
	}
	return r.err
}

func (r Result[T]) GetOrElse(fallback T) T {
	if !r.ok {
		return fallback
	}
	return r.value
}

func (r Result[T]) MapError(f func(string) string) Result[T] {
	if r.ok {
		return r
	}
	return Fail[T](f(r.err))
}

// Map applies f to the success value, passing failures through untouched.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if !r.ok {
		return Fail[U](r.err)
	}
	return Ok(f(r.value))
}

// FlatMap chains a result-producing step. Once any prior step has failed,
// later steps never execute.
func FlatMap[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if !r.ok {
		return Fail[U](r.err)
	}
	return f(r.value)
}

// Combine collapses a slice of results into one, returning the first
// failure encountered in slice order.
func Combine[T any](results []Result[T]) Result[[]T] {
	values := make([]T, 0, len(results))
	for _, r := range results {
		if !r.ok {
			return Fail[[]T](r.err)
		}
		values = append(values, r.value)
	}
	return Ok(values)
}
