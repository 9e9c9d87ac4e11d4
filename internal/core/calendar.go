package core

// CalendarStep is one step of a unit availability function: from Time
// onward the unit reports Value until the next step. Value > 0 means
// available.
type CalendarStep struct {
	Time  int
	Value int
}

// Calendar is a step function over time giving instantaneous availability
// of a resource unit. Steps are ordered by time.
type Calendar []CalendarStep

// DefaultHorizon bounds the last open-ended availability window.
const DefaultHorizon = 100000

// AvailableAt reports whether the unit is available at time t.
// An empty calendar means always available.
func (c Calendar) AvailableAt(t int) bool {
	if len(c) == 0 {
		return true
	}
	value := 0
	for _, step := range c {
		if t >= step.Time {
			value = step.Value
		} else {
			break
		}
	}
	return value > 0
}

// Window is a half-open time interval [Start, End).
type Window struct {
	Start, End int
}

// Windows returns the maximal availability intervals of the calendar,
// closing a trailing open interval at horizon.
func (c Calendar) Windows(horizon int) []Window {
	if len(c) == 0 {
		return []Window{{0, horizon}}
	}
	var windows []Window
	openStart := -1
	for _, step := range c {
		switch {
		case step.Value > 0 && openStart < 0:
			openStart = step.Time
		case step.Value == 0 && openStart >= 0:
			windows = append(windows, Window{openStart, step.Time})
			openStart = -1
		}
	}
	if openStart >= 0 {
		windows = append(windows, Window{openStart, horizon})
	}
	return windows
}

// Breakpoints appends every step boundary to dst and returns it.
func (c Calendar) Breakpoints(dst []int) []int {
	for _, step := range c {
		dst = append(dst, step.Time)
	}
	return dst
}
