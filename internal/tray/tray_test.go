package tray

import (
	"testing"

	"github.com/ayusman/handsign/internal/gesture"
)

func TestTray_Toggle(t *testing.T) {
	tr := New(true)

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.Toggle()
	if tr.IsEnabled() {
		t.Error("expected disabled after first toggle")
	}
	tr.Toggle()
	if !tr.IsEnabled() {
		t.Error("expected enabled after second toggle")
	}

	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Errorf("callback saw %v", got)
	}
}

func TestTray_LastGesture(t *testing.T) {
	tr := New(false)
	if tr.LastGesture() != gesture.None {
		t.Errorf("LastGesture() = %q, want none", tr.LastGesture())
	}

	tr.SetLastGesture(gesture.SwipeRight)
	if tr.LastGesture() != gesture.SwipeRight {
		t.Errorf("LastGesture() = %q", tr.LastGesture())
	}
}

func TestTitles(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{toggleTitle(true), "● Enabled"},
		{toggleTitle(false), "○ Disabled"},
		{lastGestureTitle(gesture.None), "Last: none"},
		{lastGestureTitle(gesture.ClosedFist), "Last: Closed Fist"},
		{lastGestureTitle(gesture.SwipeLeft), "Last: Swipe Left"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestTray_Callbacks(t *testing.T) {
	tr := New(true)

	opened := false
	tr.OnDashboard(func() { opened = true })
	tr.handleDashboard()

	if !opened {
		t.Error("dashboard callback not called")
	}
}
