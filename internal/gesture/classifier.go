// Package gesture classifies hand poses and wrist motion into a fixed set of
// gestures.
package gesture

import (
	"fmt"

	"github.com/ayusman/handsign/internal/detector"
	"github.com/ayusman/handsign/internal/landmark"
)

// ErrInvalidInput is returned for sets that are neither empty nor a complete hand.
var ErrInvalidInput = landmark.ErrInvalidInput

// Gesture is a recognized gesture label. The zero value is None.
type Gesture string

const (
	None       Gesture = ""
	OpenHand   Gesture = "open_hand"
	ClosedFist Gesture = "closed_fist"
	SwipeLeft  Gesture = "swipe_left"
	SwipeRight Gesture = "swipe_right"
)

// All lists every gesture other than None.
var All = []Gesture{OpenHand, ClosedFist, SwipeLeft, SwipeRight}

// Parse maps a label back to its Gesture.
func Parse(s string) (Gesture, error) {
	for _, g := range All {
		if string(g) == s {
			return g, nil
		}
	}
	return None, fmt.Errorf("unknown gesture %q", s)
}

// DisplayName returns the human-readable name drawn on screen.
func (g Gesture) DisplayName() string {
	switch g {
	case OpenHand:
		return "Open Hand"
	case ClosedFist:
		return "Closed Fist"
	case SwipeLeft:
		return "Swipe Left"
	case SwipeRight:
		return "Swipe Right"
	default:
		return ""
	}
}

// Config holds the geometric thresholds of the classifier.
type Config struct {
	// SwipeThreshold is the wrist x displacement, in pixels, that must be
	// exceeded between two consecutive hands to count as a swipe.
	SwipeThreshold int

	// ThumbAxis is +1 when an extended thumb tip lies at larger x than the
	// thumb IP joint, -1 for the mirrored geometry.
	ThumbAxis int

	// FingerAxis is +1 when an extended fingertip lies at smaller y than its
	// PIP joint (upright hand), -1 for an inverted image.
	FingerAxis int

	// ResetOnMiss clears the remembered wrist position when a frame has no
	// hand. Off by default, so a swipe can be measured against the last
	// hand seen before a gap.
	ResetOnMiss bool
}

// DefaultConfig returns a 40 pixel swipe threshold for an upright hand seen
// in a mirrored camera image.
func DefaultConfig() Config {
	return Config{
		SwipeThreshold: 40,
		ThumbAxis:      1,
		FingerAxis:     1,
	}
}

// State is the value carried between Classify calls: the wrist x-coordinate
// of the previous hand, if any.
type State struct {
	PrevWristX int  `json:"prev_wrist_x"`
	HasPrev    bool `json:"has_prev"`
}

// StateAt returns a State remembering wrist position x.
func StateAt(x int) State {
	return State{PrevWristX: x, HasPrev: true}
}

// Classify maps one hand and the carried state to a gesture and the state
// for the next call.
//
// A pose with all five fingers extended is OpenHand and one with none is
// ClosedFist. A wrist displacement beyond the swipe threshold since the
// previous hand overrides the pose with SwipeRight or SwipeLeft. The new
// state always records the current wrist x. An empty set returns None and
// leaves the state as is unless cfg.ResetOnMiss is set.
//
// Classify is a pure function; callers that share a State across goroutines
// must serialize their calls themselves.
func Classify(set landmark.Set, state State, cfg Config) (Gesture, State, error) {
	if set.Empty() {
		if cfg.ResetOnMiss {
			return None, State{}, nil
		}
		return None, state, nil
	}
	if len(set) != detector.NumLandmarks {
		return None, state, fmt.Errorf("%w: got %d landmarks, want %d", ErrInvalidInput, len(set), detector.NumLandmarks)
	}

	g := None
	switch CountExtended(Extended(set, cfg)) {
	case 5:
		g = OpenHand
	case 0:
		g = ClosedFist
	}

	wristX := set.Wrist().X
	if state.HasPrev {
		diff := wristX - state.PrevWristX
		if diff > cfg.SwipeThreshold {
			g = SwipeRight
		} else if diff < -cfg.SwipeThreshold {
			g = SwipeLeft
		}
	}

	return g, StateAt(wristX), nil
}

// Extended reports, thumb first, which fingers of a complete hand are
// extended. The thumb compares tip and IP x; the other fingers compare tip
// and PIP y.
func Extended(set landmark.Set, cfg Config) [5]bool {
	var out [5]bool

	thumbAxis := axisSign(cfg.ThumbAxis)
	out[0] = thumbAxis*set[detector.ThumbTip].X > thumbAxis*set[detector.ThumbIP].X

	fingerAxis := axisSign(cfg.FingerAxis)
	for i, tip := range detector.FingerTips {
		out[i+1] = fingerAxis*set[tip].Y < fingerAxis*set[tip-2].Y
	}
	return out
}

// CountExtended returns how many entries of ext are true.
func CountExtended(ext [5]bool) int {
	n := 0
	for _, e := range ext {
		if e {
			n++
		}
	}
	return n
}

// axisSign treats any non-negative axis as +1.
func axisSign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}
