package scheduling

import "time"

// SlotStep is the cadence at which candidate start times are generated.
const SlotStep = 30 * time.Minute

// Window is a doctor's working window for one day, half-open [Start, End).
type Window struct {
	Start Clock
	End   Clock
}

// Interval is an existing booking, half-open [Start, End).
type Interval struct {
	Start Clock
	End   Clock
}

// GenerateCandidates returns start, start+step, ... strictly before end.
// A nil window means the doctor does not work that day.
func GenerateCandidates(window *Window, step time.Duration) []Clock {
	if window == nil || step <= 0 || window.End <= window.Start {
		return nil
	}

	var candidates []Clock
	for t := window.Start; t < window.End; t = t.Add(step) {
		candidates = append(candidates, t)
	}
	return candidates
}

// FilterAvailable keeps the candidates where a booking of length duration fits
// inside the window and clears every busy interval. Order is preserved.
//
// Two overlap checks run independently: the candidate start alone against the
// busy bounds, then the duration-extended interval. Both must pass.
func FilterAvailable(candidates []Clock, window Window, duration time.Duration, busy []Interval) []Clock {
	var available []Clock
	for _, t := range candidates {
		end := t.Add(duration)
		if end > window.End {
			continue
		}
		if startsInsideAny(t, busy) {
			continue
		}
		if overlapsAny(t, end, busy) {
			continue
		}
		available = append(available, t)
	}
	return available
}

// AvailableSlots runs generation and filtering and formats the result as HH:mm.
// The returned slice is never nil.
func AvailableSlots(window *Window, duration time.Duration, busy []Interval) []string {
	slots := make([]string, 0)
	if window == nil || duration <= 0 {
		return slots
	}

	for _, t := range FilterAvailable(GenerateCandidates(window, SlotStep), *window, duration, busy) {
		slots = append(slots, t.String())
	}
	return slots
}

func startsInsideAny(t Clock, busy []Interval) bool {
	for _, b := range busy {
		if t >= b.Start && t < b.End {
			return true
		}
	}
	return false
}

func overlapsAny(start, end Clock, busy []Interval) bool {
	for _, b := range busy {
		// [start,end) overlaps [b.Start,b.End) iff start < b.End && end > b.Start.
		if start < b.End && end > b.Start {
			return true
		}
	}
	return false
}
