// Package app wires capture, hand detection, gesture classification and the
// side effects of a recognized gesture into one pipeline.
package app

import (
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handsign/internal/capture"
	"github.com/ayusman/handsign/internal/detector"
	"github.com/ayusman/handsign/internal/gesture"
	"github.com/ayusman/handsign/internal/landmark"
	"github.com/ayusman/handsign/internal/monitoring"
	"github.com/ayusman/handsign/internal/overlay"
	"github.com/ayusman/handsign/internal/plugin"
	"github.com/ayusman/handsign/internal/store"
)

// Config holds configuration options for the application.
type Config struct {
	Store         *store.Store
	PluginDir     string
	PluginTimeout time.Duration

	Camera   capture.Config
	Detector detector.Config
	Gesture  gesture.Config
	Style    overlay.Style

	// Mirror flips every frame horizontally before detection.
	Mirror bool
	// Draw renders the hand skeleton and gesture label onto the frame.
	Draw bool
	// HandIndex selects which detected hand is classified.
	HandIndex int
}

// DefaultConfig returns a mirrored, annotated pipeline classifying the first
// detected hand.
func DefaultConfig() Config {
	return Config{
		PluginTimeout: plugin.DefaultTimeout,
		Camera:        capture.DefaultConfig(),
		Detector:      detector.DefaultConfig(),
		Gesture:       gesture.DefaultConfig(),
		Style:         overlay.DefaultStyle(),
		Mirror:        true,
		Draw:          true,
	}
}

// GestureEvent describes one recognized gesture.
type GestureEvent struct {
	Gesture gesture.Gesture
	WristX  int
	Hands   int
	Time    time.Time
}

// Result is the outcome of processing one frame.
type Result struct {
	Gesture gesture.Gesture
	Set     landmark.Set
	// Hands is the number of hands the detector reported.
	Hands int
	// State is the classifier state after this frame.
	State gesture.State
}

// App is the main application that orchestrates gesture detection and action execution.
type App struct {
	config     Config
	camera     capture.Camera
	detector   detector.Detector
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor

	// state belongs to whichever goroutine calls Process.
	state gesture.State

	listenersMu      sync.RWMutex
	gestureListeners []func(GestureEvent)
	frameListeners   []func(*gocv.Mat)

	actions sync.WaitGroup

	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.Camera),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(config.PluginTimeout),
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		monitoring.Logf("Using MediaPipe hand detection")
	} else {
		monitoring.Logf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables gesture detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// SetCamera replaces the frame source. It must not be called while the
// pipeline is running.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	if err := a.pluginMgr.Discover(); err != nil {
		return err
	}
	monitoring.Logf("Loaded %d plugins from %s", len(a.pluginMgr.List()), a.pluginMgr.PluginDir())
	return nil
}

// OnGesture registers fn to be called for every recognized gesture. Listeners
// run on the pipeline goroutine and should return quickly.
func (a *App) OnGesture(fn func(GestureEvent)) {
	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()
	a.gestureListeners = append(a.gestureListeners, fn)
}

// OnFrame registers fn to receive every processed frame after annotation.
// The Mat is only valid for the duration of the call.
func (a *App) OnFrame(fn func(*gocv.Mat)) {
	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()
	a.frameListeners = append(a.frameListeners, fn)
}

// Start opens the camera and begins the detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.camera, a.stopCh, a.doneCh)

	monitoring.Logf("Detection pipeline started")
	return nil
}

// Stop halts the pipeline, waits for running actions and releases the
// camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	camera, d := a.camera, a.detector
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}
	a.actions.Wait()

	if err := camera.Close(); err != nil {
		monitoring.Logf("Error closing camera: %v", err)
	}
	if d != nil {
		if err := d.Close(); err != nil {
			monitoring.Logf("Error closing detector: %v", err)
		}
	}

	monitoring.Logf("Detection pipeline stopped")
}

// Running reports whether the pipeline goroutine is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}
