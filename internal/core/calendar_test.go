package core

import (
	"reflect"
	"testing"
)

func TestCalendarAvailableAt(t *testing.T) {
	cal := Calendar{{0, 100}, {2, 0}, {3, 100}, {5, 0}, {6, 100}, {12, 0}}
	cases := []struct {
		t    int
		want bool
	}{
		{0, true},
		{1, true},
		{2, false},
		{3, true},
		{4, true},
		{5, false},
		{6, true},
		{11, true},
		{12, false},
		{100, false},
	}
	for _, tc := range cases {
		if got := cal.AvailableAt(tc.t); got != tc.want {
			t.Errorf("AvailableAt(%d) = %v, want %v", tc.t, got, tc.want)
		}
	}
}

func TestCalendarAvailableAtEmpty(t *testing.T) {
	var cal Calendar
	if !cal.AvailableAt(0) || !cal.AvailableAt(99999) {
		t.Error("empty calendar must be always available")
	}
}

func TestCalendarStartsOff(t *testing.T) {
	cal := Calendar{{0, 0}, {4, 100}}
	if cal.AvailableAt(0) || cal.AvailableAt(3) {
		t.Error("unit should be off before time 4")
	}
	if !cal.AvailableAt(4) {
		t.Error("unit should be on from time 4")
	}
}

func TestCalendarWindows(t *testing.T) {
	cases := []struct {
		name string
		cal  Calendar
		want []Window
	}{
		{
			"empty",
			nil,
			[]Window{{0, 50}},
		},
		{
			"closed",
			Calendar{{0, 100}, {2, 0}, {3, 100}, {12, 0}},
			[]Window{{0, 2}, {3, 12}},
		},
		{
			"trailing open",
			Calendar{{0, 0}, {4, 100}},
			[]Window{{4, 50}},
		},
		{
			"redundant on steps",
			Calendar{{0, 100}, {2, 50}, {5, 0}},
			[]Window{{0, 5}},
		},
	}
	for _, tc := range cases {
		got := tc.cal.Windows(50)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: Windows(50) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCalendarBreakpoints(t *testing.T) {
	cal := Calendar{{0, 100}, {2, 0}, {3, 100}}
	got := cal.Breakpoints([]int{7})
	want := []int{7, 0, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Breakpoints = %v, want %v", got, want)
	}
}
