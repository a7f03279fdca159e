// Package landmark converts normalized detector output into pixel-space
// hand landmarks.
package landmark

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/handsign/internal/detector"
)

// ErrInvalidInput is returned for landmark lists of the wrong cardinality,
// out-of-range ids, or unusable frame dimensions.
var ErrInvalidInput = errors.New("invalid landmark input")

// Landmark is one anatomical hand point in pixel coordinates.
type Landmark struct {
	ID int `json:"id"`
	X  int `json:"x"`
	Y  int `json:"y"`
}

// Set holds the landmarks of one hand ordered by id, or nothing when no
// hand was detected in the frame. A non-empty Set built by this package
// always has exactly detector.NumLandmarks entries.
type Set []Landmark

// Empty reports whether the set carries no hand.
func (s Set) Empty() bool {
	return len(s) == 0
}

// Valid reports whether s is empty or a complete, id-ordered hand.
func (s Set) Valid() bool {
	if len(s) == 0 {
		return true
	}
	if len(s) != detector.NumLandmarks {
		return false
	}
	for i, lm := range s {
		if lm.ID != i {
			return false
		}
	}
	return true
}

// At returns the landmark with the given id.
func (s Set) At(id int) (Landmark, error) {
	if id < 0 || id >= len(s) {
		return Landmark{}, fmt.Errorf("%w: id %d outside set of %d", ErrInvalidInput, id, len(s))
	}
	return s[id], nil
}

// Wrist returns landmark 0. It panics on an empty set.
func (s Set) Wrist() Landmark {
	return s[detector.Wrist]
}

// FromNormalized scales normalized points to a width x height frame,
// rounding to the nearest pixel. An empty input yields an empty Set.
func FromNormalized(points []detector.Point3D, width, height int) (Set, error) {
	if len(points) == 0 {
		return Set{}, nil
	}
	if len(points) != detector.NumLandmarks {
		return nil, fmt.Errorf("%w: got %d landmarks, want %d", ErrInvalidInput, len(points), detector.NumLandmarks)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: frame size %dx%d", ErrInvalidInput, width, height)
	}

	set := make(Set, len(points))
	for i, p := range points {
		set[i] = Landmark{
			ID: i,
			X:  int(math.Round(p.X * float64(width))),
			Y:  int(math.Round(p.Y * float64(height))),
		}
	}
	return set, nil
}

// FromHands adapts the hand at index from one frame's detections. Frames
// with no hand at that index yield an empty Set.
func FromHands(hands []detector.HandLandmarks, index, width, height int) (Set, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: hand index %d", ErrInvalidInput, index)
	}
	if index >= len(hands) {
		return Set{}, nil
	}
	return FromNormalized(hands[index].Points[:], width, height)
}
