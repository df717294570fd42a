// Package timeslot implements the immutable booking time slot value object.
// All comparisons operate on minutes since midnight; timezone handling is
// the booking's concern, not the slot's.
package timeslot

import (
	"fmt"
	"regexp"

	"stallbook/internal/result"
)

const (
	// Business hours and duration limits for bookable slots.
	OpeningMinutes     = 8 * 60
	ClosingMinutes     = 18 * 60
	MinDurationMinutes = 15
	MaxDurationMinutes = 8 * 60
)

// Validation messages are kept in Swedish, matching what the marketplace
// shows end users.
const (
	MsgInvalidStart     = "Ogiltig starttid, förväntat format HH:MM"
	MsgInvalidEnd       = "Ogiltig sluttid, förväntat format HH:MM"
	MsgEndBeforeStart   = "Sluttid måste vara efter starttid"
	MsgTooShort         = "Bokningen måste vara minst 15 minuter"
	MsgTooLong          = "Bokningen får vara högst 8 timmar"
	MsgOutsideOpenHours = "Bokningar är endast möjliga mellan 08:00 och 18:00"
)

// Accepts HH:MM between 00:00 and 23:59, with an optional seconds part
// that is ignored.
var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])(:[0-5][0-9])?$`)

// TimeSlot is an immutable start/end pair, stored as minutes since midnight.
type TimeSlot struct {
	start int
	end   int
}

func parseClock(value string) (int, bool) {
	m := clockPattern.FindStringSubmatch(value)
	if m == nil {
		return 0, false
	}
	var hours, minutes int
	fmt.Sscanf(m[1], "%d", &hours)
	fmt.Sscanf(m[2], "%d", &minutes)
	return hours*60 + minutes, true
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Validate checks a start/end pair without allocating a slot. Checks run in
// a fixed order and the first failure wins: parse errors, ordering,
// minimum duration, maximum duration, business hours.
func Validate(start, end string) result.Result[result.Void] {
	startMin, ok := parseClock(start)
	if !ok {
		return result.Fail[result.Void](MsgInvalidStart)
	}
	endMin, ok := parseClock(end)
	if !ok {
		return result.Fail[result.Void](MsgInvalidEnd)
	}
	if endMin <= startMin {
		return result.Fail[result.Void](MsgEndBeforeStart)
	}
	duration := endMin - startMin
	if duration < MinDurationMinutes {
		return result.Fail[result.Void](MsgTooShort)
	}
	if duration > MaxDurationMinutes {
		return result.Fail[result.Void](MsgTooLong)
	}
	if startMin < OpeningMinutes || endMin > ClosingMinutes {
		return result.Fail[result.Void](MsgOutsideOpenHours)
	}
	return result.OkVoid()
}

// New validates and builds a slot with normalized, seconds-stripped times.
func New(start, end string) result.Result[TimeSlot] {
	if v := Validate(start, end); v.IsFail() {
		return result.Fail[TimeSlot](v.Err())
	}
	startMin, _ := parseClock(start)
	endMin, _ := parseClock(end)
	return result.Ok(TimeSlot{start: startMin, end: endMin})
}

// FromDuration derives the end time by adding durationMinutes to start,
// handling hour rollover, then delegates to New. A duration that pushes the
// slot past closing fails exactly like an explicit out-of-hours slot.
func FromDuration(start string, durationMinutes int) result.Result[TimeSlot] {
	startMin, ok := parseClock(start)
	if !ok {
		return result.Fail[TimeSlot](MsgInvalidStart)
	}
	endMin := startMin + durationMinutes
	if endMin >= 24*60 || endMin < 0 {
		return result.Fail[TimeSlot](MsgInvalidEnd)
	}
	return New(formatClock(startMin), formatClock(endMin))
}

func (t TimeSlot) Start() string {
	return formatClock(t.start)
}

func (t TimeSlot) End() string {
	return formatClock(t.end)
}

func (t TimeSlot) StartMinutes() int {
	return t.start
}

func (t TimeSlot) EndMinutes() int {
	return t.end
}

func (t TimeSlot) DurationMinutes() int {
	return t.end - t.start
}

// Overlaps reports whether the two slots share at least one instant.
// Touching endpoints do not overlap.
func (t TimeSlot) Overlaps(other TimeSlot) bool {
	return t.start < other.end && other.start < t.end
}

// Contains reports whether this slot's bounds cover the other's.
// Identical slots contain each other.
func (t TimeSlot) Contains(other TimeSlot) bool {
	return t.start <= other.start && other.end <= t.end
}

// IsAdjacentTo reports whether one slot ends exactly where the other
// starts, in either direction.
func (t TimeSlot) IsAdjacentTo(other TimeSlot) bool {
	return t.end == other.start || other.end == t.start
}

func (t TimeSlot) String() string {
	return t.Start() + "-" + t.End()
}
