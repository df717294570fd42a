package result

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_AgainstEmpty(t *testing.T) {
	assert.True(t, AgainstEmpty("value", "name").IsOK())
	assert.Equal(t, "name must not be empty", AgainstEmpty("", "name").Err())
	assert.Equal(t, "name must not be empty", AgainstEmpty("   ", "name").Err())
}

func TestGuard_InRange(t *testing.T) {
	assert.True(t, InRange(5, 1, 10, "value").IsOK())
	assert.True(t, InRange(1, 1, 10, "value").IsOK())
	assert.True(t, InRange(10, 1, 10, "value").IsOK())
	assert.Equal(t, "value must be between 1 and 10, got 0", InRange(0, 1, 10, "value").Err())
	assert.Equal(t, "value must be between 1 and 10, got 11", InRange(11, 1, 10, "value").Err())
}

func TestGuard_LengthInRange(t *testing.T) {
	assert.True(t, LengthInRange("abc", 1, 5, "name").IsOK())
	assert.Equal(t, "name must be between 1 and 5 characters, got 0", LengthInRange("", 1, 5, "name").Err())
	assert.Equal(t, "name must be between 1 and 5 characters, got 6", LengthInRange("abcdef", 1, 5, "name").Err())
}

func TestGuard_GreaterThan(t *testing.T) {
	assert.True(t, GreaterThan(2, 1, "value").IsOK())
	assert.Equal(t, "value must be greater than 1, got 1", GreaterThan(1, 1, "value").Err())
}

func TestGuard_AgainstEmptySlice(t *testing.T) {
	assert.True(t, AgainstEmptySlice([]int{1}, "items").IsOK())
	assert.Equal(t, "items must not be empty", AgainstEmptySlice([]int{}, "items").Err())
}

func TestGuard_MatchesPattern(t *testing.T) {
	assert.True(t, MatchesPattern("08:30", `^\d{2}:\d{2}$`, "time").IsOK())
	assert.Equal(t, "time has an invalid format", MatchesPattern("8.30", `^\d{2}:\d{2}$`, "time").Err())
}

func TestGuard_InFutureAndPast(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	assert.True(t, InFuture(future, "date").IsOK())
	assert.Equal(t, "date must be in the future", InFuture(past, "date").Err())

	assert.True(t, InPast(past, "date").IsOK())
	assert.Equal(t, "date must be in the past", InPast(future, "date").Err())
}

func TestGuards_FirstFailureWins(t *testing.T) {
	r := Guards(
		AgainstEmpty("ok", "first"),
		InRange(0, 1, 10, "second"),
		AgainstEmpty("", "third"),
	)
	require.True(t, r.IsFail())
	assert.Equal(t, "second must be between 1 and 10, got 0", r.Err())

	assert.True(t, Guards(AgainstEmpty("a", "x"), GreaterThan(2, 1, "y")).IsOK())
}
