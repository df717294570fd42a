package result

import (
	"regexp"
	"strings"
	"time"
)

// Guard checks are named precondition validations. Each returns a
// Result[Void] with a deterministic message so callers can surface the
// failure directly to the API layer.

func AgainstNil(value interface{}, name string) Result[Void] {
	if value == nil {
		return Failf[Void]("%s must not be nil", name)
	}
	return OkVoid()
}

func AgainstEmpty(value, name string) Result[Void] {
	if strings.TrimSpace(value) == "" {
		return Failf[Void]("%s must not be empty", name)
	}
	return OkVoid()
}

func InRange(value, min, max float64, name string) Result[Void] {
	if value < min || value > max {
		return Failf[Void]("%s must be between %v and %v, got %v", name, min, max, value)
	}
	return OkVoid()
}

func LengthInRange(value string, min, max int, name string) Result[Void] {
	n := len([]rune(value))
	if n < min || n > max {
		return Failf[Void]("%s must be between %d and %d characters, got %d", name, min, max, n)
	}
	return OkVoid()
}

func GreaterThan(value, min float64, name string) Result[Void] {
	if value <= min {
		return Failf[Void]("%s must be greater than %v, got %v", name, min, value)
	}
	return OkVoid()
}

func AgainstEmptySlice[T any](values []T, name string) Result[Void] {
	if len(values) == 0 {
		return Failf[Void]("%s must not be empty", name)
	}
	return OkVoid()
}

func MatchesPattern(value, pattern, name string) Result[Void] {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Failf[Void]("%s has an invalid pattern", name)
	}
	if !re.MatchString(value) {
		return Failf[Void]("%s has an invalid format", name)
	}
	return OkVoid()
}

func InFuture(t time.Time, name string) Result[Void] {
	if !t.After(time.Now()) {
		return Failf[Void]("%s must be in the future", name)
	}
	return OkVoid()
}

func InPast(t time.Time, name string) Result[Void] {
	if !t.Before(time.Now()) {
		return Failf[Void]("%s must be in the past", name)
	}
	return OkVoid()
}

// Guards returns the first failing guard in argument order, preserving
// check order for callers that combine several preconditions.
func Guards(checks ...Result[Void]) Result[Void] {
	for _, c := range checks {
		if c.IsFail() {
			return c
		}
	}
	return OkVoid()
}
