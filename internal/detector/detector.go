package detector

import (
	"errors"
	"strconv"

	"gocv.io/x/gocv"
)

// ErrMalformedHand is returned when the model reports a hand that does not
// carry exactly NumLandmarks points.
var ErrMalformedHand = errors.New("malformed hand landmarks")

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds the settings passed through to the landmark model.
type Config struct {
	// StaticImageMode treats every frame as unrelated (no tracking).
	StaticImageMode bool

	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		StaticImageMode: false,
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}

// Args renders the config as command-line flags for the landmark service.
func (c Config) Args() []string {
	args := []string{
		"--max-hands", strconv.Itoa(c.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(c.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(c.MinTrackingConf, 'f', -1, 64),
	}
	if c.StaticImageMode {
		args = append(args, "--static-image-mode")
	}
	return args
}
