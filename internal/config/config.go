// Package config loads handsign settings from the environment.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Run modes for cmd/handsign.
const (
	ModeWindow   = "window"
	ModeTray     = "tray"
	ModeHeadless = "headless"
)

// Config holds every tunable of the recognizer. Values come from HANDSIGN_*
// environment variables, optionally seeded from a .env file.
type Config struct {
	CameraID int
	// VideoFile replays a recording instead of the camera when set.
	VideoFile string
	FPS       int
	Mirror    bool

	// Detector pass-through settings.
	StaticImageMode     bool
	MaxHands            int
	DetectionConfidence float64
	TrackingConfidence  float64

	// Classifier settings.
	SwipeThreshold int
	ThumbAxis      int
	FingerAxis     int
	ResetOnMiss    bool

	// Drawing.
	Draw            bool
	PointColor      color.RGBA
	ConnectionColor color.RGBA

	Addr      string
	DataDir   string
	PluginDir string
	Mode      string
}

// Default returns the configuration used when no variables are set.
func Default() *Config {
	dataDir := ".handsign"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".handsign")
	}

	return &Config{
		CameraID:            0,
		FPS:                 15,
		Mirror:              true,
		StaticImageMode:     false,
		MaxHands:            2,
		DetectionConfidence: 0.5,
		TrackingConfidence:  0.5,
		SwipeThreshold:      40,
		ThumbAxis:           1,
		FingerAxis:          1,
		ResetOnMiss:         false,
		Draw:                true,
		PointColor:          color.RGBA{R: 255, G: 0, B: 0, A: 255},
		ConnectionColor:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Addr:                ":8080",
		DataDir:             dataDir,
		PluginDir:           filepath.Join(dataDir, "plugins"),
		Mode:                ModeWindow,
	}
}

// Load reads the given .env files (missing files are skipped) and then the
// process environment. Variables already present in the environment win over
// .env entries.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Default()
	var err error

	cfg.CameraID = getEnvAsInt("HANDSIGN_CAMERA_ID", cfg.CameraID)
	cfg.VideoFile = getEnv("HANDSIGN_VIDEO_FILE", cfg.VideoFile)
	cfg.FPS = getEnvAsInt("HANDSIGN_FPS", cfg.FPS)
	cfg.Mirror = getEnvAsBool("HANDSIGN_MIRROR", cfg.Mirror)
	cfg.StaticImageMode = getEnvAsBool("HANDSIGN_STATIC_IMAGE_MODE", cfg.StaticImageMode)
	cfg.MaxHands = getEnvAsInt("HANDSIGN_MAX_HANDS", cfg.MaxHands)
	cfg.DetectionConfidence = getEnvAsFloat("HANDSIGN_DETECTION_CONFIDENCE", cfg.DetectionConfidence)
	cfg.TrackingConfidence = getEnvAsFloat("HANDSIGN_TRACKING_CONFIDENCE", cfg.TrackingConfidence)
	cfg.SwipeThreshold = getEnvAsInt("HANDSIGN_SWIPE_THRESHOLD", cfg.SwipeThreshold)
	cfg.ThumbAxis = getEnvAsInt("HANDSIGN_THUMB_AXIS", cfg.ThumbAxis)
	cfg.FingerAxis = getEnvAsInt("HANDSIGN_FINGER_AXIS", cfg.FingerAxis)
	cfg.ResetOnMiss = getEnvAsBool("HANDSIGN_RESET_ON_MISS", cfg.ResetOnMiss)
	cfg.Draw = getEnvAsBool("HANDSIGN_DRAW", cfg.Draw)
	cfg.Addr = getEnv("HANDSIGN_ADDR", cfg.Addr)
	cfg.Mode = getEnv("HANDSIGN_MODE", cfg.Mode)

	if dir := os.Getenv("HANDSIGN_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
		cfg.PluginDir = filepath.Join(dir, "plugins")
	}
	cfg.PluginDir = getEnv("HANDSIGN_PLUGIN_DIR", cfg.PluginDir)

	if cfg.PointColor, err = getEnvAsColor("HANDSIGN_POINT_COLOR", cfg.PointColor); err != nil {
		return nil, err
	}
	if cfg.ConnectionColor, err = getEnvAsColor("HANDSIGN_CONNECTION_COLOR", cfg.ConnectionColor); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.ThumbAxis != 1 && c.ThumbAxis != -1 {
		return fmt.Errorf("thumb axis must be 1 or -1, got %d", c.ThumbAxis)
	}
	if c.FingerAxis != 1 && c.FingerAxis != -1 {
		return fmt.Errorf("finger axis must be 1 or -1, got %d", c.FingerAxis)
	}
	if c.SwipeThreshold <= 0 {
		return fmt.Errorf("swipe threshold must be positive, got %d", c.SwipeThreshold)
	}
	if c.MaxHands <= 0 {
		return fmt.Errorf("max hands must be positive, got %d", c.MaxHands)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.DetectionConfidence < 0 || c.DetectionConfidence > 1 {
		return fmt.Errorf("detection confidence must be within [0,1], got %f", c.DetectionConfidence)
	}
	if c.TrackingConfidence < 0 || c.TrackingConfidence > 1 {
		return fmt.Errorf("tracking confidence must be within [0,1], got %f", c.TrackingConfidence)
	}
	switch c.Mode {
	case ModeWindow, ModeTray, ModeHeadless:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsColor parses "r,g,b" with each channel in 0..255.
func getEnvAsColor(key string, defaultValue color.RGBA) (color.RGBA, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return ParseColor(value)
}

// ParseColor parses an "r,g,b" triple into an opaque color.
func ParseColor(s string) (color.RGBA, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return color.RGBA{}, fmt.Errorf("color %q: want r,g,b", s)
	}

	var ch [3]uint8
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 || v > 255 {
			return color.RGBA{}, fmt.Errorf("color %q: channel %d out of range", s, i)
		}
		ch[i] = uint8(v)
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: 255}, nil
}
