package gesture

import (
	"errors"
	"testing"

	"github.com/ayusman/handsign/internal/detector"
	"github.com/ayusman/handsign/internal/landmark"
)

const (
	frameWidth  = 640
	frameHeight = 480
)

func adapt(t *testing.T, hand detector.HandLandmarks) landmark.Set {
	t.Helper()
	set, err := landmark.FromNormalized(hand.Points[:], frameWidth, frameHeight)
	if err != nil {
		t.Fatalf("FromNormalized() error = %v", err)
	}
	return set
}

// withWrist returns a copy of set with the wrist moved to x.
func withWrist(set landmark.Set, x int) landmark.Set {
	out := make(landmark.Set, len(set))
	copy(out, set)
	out[detector.Wrist].X = x
	return out
}

func TestClassify_Poses(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		hand detector.HandLandmarks
		want Gesture
	}{
		{"open palm", detector.OpenPalmLandmarks(), OpenHand},
		{"closed fist", detector.ClosedFistLandmarks(), ClosedFist},
		{"pointing", detector.PointingLandmarks(), None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := adapt(t, tt.hand)

			got, state, err := Classify(set, State{}, cfg)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
			if state != StateAt(set.Wrist().X) {
				t.Errorf("state = %+v, want wrist x %d", state, set.Wrist().X)
			}
		})
	}
}

func TestClassify_OpenHandThenSwipeRight(t *testing.T) {
	cfg := DefaultConfig()
	set := adapt(t, detector.OpenPalmLandmarks())
	x := set.Wrist().X

	got, state, err := Classify(set, State{}, cfg)
	if err != nil {
		t.Fatalf("first Classify() error = %v", err)
	}
	if got != OpenHand {
		t.Fatalf("first call = %q, want %q", got, OpenHand)
	}
	if !state.HasPrev || state.PrevWristX != x {
		t.Fatalf("state after first call = %+v, want wrist x %d", state, x)
	}

	got, state, err = Classify(withWrist(set, x+50), state, cfg)
	if err != nil {
		t.Fatalf("second Classify() error = %v", err)
	}
	if got != SwipeRight {
		t.Errorf("second call = %q, want %q", got, SwipeRight)
	}
	if state.PrevWristX != x+50 {
		t.Errorf("state after second call = %d, want %d", state.PrevWristX, x+50)
	}
}

func TestClassify_SwipeOverridesPose(t *testing.T) {
	cfg := DefaultConfig()

	poses := map[string]detector.HandLandmarks{
		"open":     detector.OpenPalmLandmarks(),
		"fist":     detector.ClosedFistLandmarks(),
		"pointing": detector.PointingLandmarks(),
	}

	for name, hand := range poses {
		set := adapt(t, hand)
		x := set.Wrist().X

		t.Run(name+" right", func(t *testing.T) {
			got, _, _ := Classify(withWrist(set, x+41), StateAt(x), cfg)
			if got != SwipeRight {
				t.Errorf("got %q, want %q", got, SwipeRight)
			}
		})

		t.Run(name+" left", func(t *testing.T) {
			got, _, _ := Classify(withWrist(set, x-41), StateAt(x), cfg)
			if got != SwipeLeft {
				t.Errorf("got %q, want %q", got, SwipeLeft)
			}
		})
	}
}

func TestClassify_SwipeBoundary(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		hand detector.HandLandmarks
		diff int
		want Gesture
	}{
		{"open +40", detector.OpenPalmLandmarks(), 40, OpenHand},
		{"open -40", detector.OpenPalmLandmarks(), -40, OpenHand},
		{"fist +40", detector.ClosedFistLandmarks(), 40, ClosedFist},
		{"fist -40", detector.ClosedFistLandmarks(), -40, ClosedFist},
		{"pointing +40", detector.PointingLandmarks(), 40, None},
		{"pointing -40", detector.PointingLandmarks(), -40, None},
		{"pointing +41", detector.PointingLandmarks(), 41, SwipeRight},
		{"pointing -41", detector.PointingLandmarks(), -41, SwipeLeft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := adapt(t, tt.hand)
			x := set.Wrist().X

			got, state, err := Classify(withWrist(set, x+tt.diff), StateAt(x), cfg)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("diff %d: got %q, want %q", tt.diff, got, tt.want)
			}
			if state.PrevWristX != x+tt.diff {
				t.Errorf("state = %d, want %d", state.PrevWristX, x+tt.diff)
			}
		})
	}
}

func TestClassify_StateAlwaysTracksWrist(t *testing.T) {
	cfg := DefaultConfig()
	set := adapt(t, detector.PointingLandmarks())

	for _, prev := range []State{{}, StateAt(0), StateAt(1000), StateAt(set.Wrist().X)} {
		for _, v := range []int{0, 17, 320, 639} {
			_, state, err := Classify(withWrist(set, v), prev, cfg)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if state != StateAt(v) {
				t.Errorf("prev %+v, wrist %d: state = %+v", prev, v, state)
			}
		}
	}
}

func TestClassify_EmptySet(t *testing.T) {
	t.Run("leaves state unchanged", func(t *testing.T) {
		prev := StateAt(123)
		got, state, err := Classify(landmark.Set{}, prev, DefaultConfig())
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if got != None {
			t.Errorf("got %q, want None", got)
		}
		if state != prev {
			t.Errorf("state = %+v, want %+v", state, prev)
		}
	})

	t.Run("stale state still triggers swipe after a gap", func(t *testing.T) {
		cfg := DefaultConfig()
		set := adapt(t, detector.PointingLandmarks())
		x := set.Wrist().X

		_, state, _ := Classify(set, State{}, cfg)
		_, state, _ = Classify(nil, state, cfg)
		_, state, _ = Classify(nil, state, cfg)

		got, _, _ := Classify(withWrist(set, x+100), state, cfg)
		if got != SwipeRight {
			t.Errorf("got %q, want %q", got, SwipeRight)
		}
	})

	t.Run("reset on miss clears state", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ResetOnMiss = true
		set := adapt(t, detector.PointingLandmarks())
		x := set.Wrist().X

		_, state, _ := Classify(set, State{}, cfg)
		_, state, _ = Classify(nil, state, cfg)
		if state.HasPrev {
			t.Fatalf("state should be cleared, got %+v", state)
		}

		got, _, _ := Classify(withWrist(set, x+100), state, cfg)
		if got != None {
			t.Errorf("got %q, want None", got)
		}
	})
}

func TestClassify_InvalidInput(t *testing.T) {
	prev := StateAt(10)
	short := make(landmark.Set, 5)

	got, state, err := Classify(short, prev, DefaultConfig())
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if got != None {
		t.Errorf("got %q, want None", got)
	}
	if state != prev {
		t.Errorf("state = %+v, want %+v", state, prev)
	}
}

func TestClassify_ConfigurableThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SwipeThreshold = 100
	set := adapt(t, detector.OpenPalmLandmarks())
	x := set.Wrist().X

	got, _, _ := Classify(withWrist(set, x+60), StateAt(x), cfg)
	if got != OpenHand {
		t.Errorf("60px under a 100px threshold: got %q, want %q", got, OpenHand)
	}

	got, _, _ = Classify(withWrist(set, x+101), StateAt(x), cfg)
	if got != SwipeRight {
		t.Errorf("101px over a 100px threshold: got %q, want %q", got, SwipeRight)
	}
}

func TestExtended(t *testing.T) {
	t.Run("open palm", func(t *testing.T) {
		ext := Extended(adapt(t, detector.OpenPalmLandmarks()), DefaultConfig())
		if ext != [5]bool{true, true, true, true, true} {
			t.Errorf("Extended() = %v", ext)
		}
	})

	t.Run("pointing", func(t *testing.T) {
		ext := Extended(adapt(t, detector.PointingLandmarks()), DefaultConfig())
		if ext != [5]bool{false, true, false, false, false} {
			t.Errorf("Extended() = %v", ext)
		}
		if CountExtended(ext) != 1 {
			t.Errorf("CountExtended() = %d, want 1", CountExtended(ext))
		}
	})

	t.Run("thumb test is strict", func(t *testing.T) {
		set := adapt(t, detector.OpenPalmLandmarks())
		set[detector.ThumbTip].X = set[detector.ThumbIP].X
		if Extended(set, DefaultConfig())[0] {
			t.Error("equal x should not count as extended")
		}
	})

	t.Run("inverted axes", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ThumbAxis = -1
		cfg.FingerAxis = -1

		// An open palm seen through inverted axes reads as a fist.
		ext := Extended(adapt(t, detector.OpenPalmLandmarks()), cfg)
		if CountExtended(ext) != 0 {
			t.Errorf("Extended() = %v, want none", ext)
		}
	})
}

func TestParse(t *testing.T) {
	for _, g := range All {
		got, err := Parse(string(g))
		if err != nil || got != g {
			t.Errorf("Parse(%q) = %q, %v", g, got, err)
		}
		if g.DisplayName() == "" {
			t.Errorf("%q has no display name", g)
		}
	}

	if _, err := Parse("wave"); err == nil {
		t.Error("expected error for unknown gesture")
	}
	if None.DisplayName() != "" {
		t.Error("None should have an empty display name")
	}
}
