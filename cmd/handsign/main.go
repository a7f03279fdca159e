package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handsign/internal/app"
	"github.com/ayusman/handsign/internal/capture"
	"github.com/ayusman/handsign/internal/config"
	"github.com/ayusman/handsign/internal/detector"
	"github.com/ayusman/handsign/internal/gesture"
	"github.com/ayusman/handsign/internal/monitoring"
	"github.com/ayusman/handsign/internal/overlay"
	"github.com/ayusman/handsign/internal/server"
	"github.com/ayusman/handsign/internal/store"
	"github.com/ayusman/handsign/internal/tray"
)

const escKey = 27

func main() {
	fmt.Println("handsign - Hand Gesture Recognition")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.PluginDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(cfg.DataDir, "handsign.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	a := app.New(appConfig(cfg, st))
	if err := a.DiscoverPlugins(); err != nil {
		monitoring.Logf("Plugin discovery failed: %v", err)
	}

	frames := server.NewFrameBuffer()
	hub := server.NewGestureHub()
	a.OnFrame(frames.Update)
	a.OnGesture(func(ev app.GestureEvent) {
		hub.Publish(server.GestureMessage{
			Gesture:     string(ev.Gesture),
			DisplayName: ev.Gesture.DisplayName(),
			WristX:      ev.WristX,
			Timestamp:   ev.Time.UnixMilli(),
		})
	})

	webDir := findWebDir(cfg.DataDir)
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Plugins:   a.PluginManager(),
		Frames:    frames,
		Gestures:  hub,
		StreamFPS: cfg.FPS,
	})
	httpSrv := srv.HTTPServer(cfg.Addr)
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			monitoring.Logf("Server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Mode {
	case config.ModeWindow:
		err = runWindow(ctx, a)
	case config.ModeTray:
		err = runTray(ctx, a, dashboardURL(cfg.Addr))
	case config.ModeHeadless:
		err = runHeadless(ctx, a)
	}
	if err != nil {
		monitoring.Logf("%s mode: %v", cfg.Mode, err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("Server shutdown: %v", err)
	}
}

// appConfig maps the environment settings onto the pipeline.
func appConfig(cfg *config.Config, st *store.Store) app.Config {
	c := app.DefaultConfig()
	c.Store = st
	c.PluginDir = cfg.PluginDir

	c.Camera = capture.Config{
		DeviceID: cfg.CameraID,
		File:     cfg.VideoFile,
		Width:    capture.DefaultWidth,
		Height:   capture.DefaultHeight,
		FPS:      cfg.FPS,
	}
	c.Detector = detector.Config{
		StaticImageMode: cfg.StaticImageMode,
		MaxHands:        cfg.MaxHands,
		MinConfidence:   cfg.DetectionConfidence,
		MinTrackingConf: cfg.TrackingConfidence,
	}
	c.Gesture = gesture.Config{
		SwipeThreshold: cfg.SwipeThreshold,
		ThumbAxis:      cfg.ThumbAxis,
		FingerAxis:     cfg.FingerAxis,
		ResetOnMiss:    cfg.ResetOnMiss,
	}

	style := overlay.DefaultStyle()
	style.PointColor = cfg.PointColor
	style.ConnectionColor = cfg.ConnectionColor
	c.Style = style

	c.Mirror = cfg.Mirror
	c.Draw = cfg.Draw
	return c
}

// runWindow shows annotated frames until ESC is pressed, the source ends or
// ctx is cancelled. Frames are processed on the calling goroutine because
// the window must be driven from the main thread.
func runWindow(ctx context.Context, a *app.App) error {
	camera := a.Camera()
	if err := camera.Open(); err != nil {
		return err
	}
	defer a.Stop()

	window := gocv.NewWindow("Hand Gesture Recognition")
	defer window.Close()

	a.SetEnabled(true)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, err := camera.ReadFrame()
		if errors.Is(err, capture.ErrEndOfStream) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		if _, err := a.Process(frame); err != nil {
			monitoring.Logf("Error processing frame: %v", err)
		}
		window.IMShow(*frame)
		frame.Close()

		if window.WaitKey(1) == escKey {
			return nil
		}
	}
}

// runTray runs the pipeline in the background behind a tray menu.
func runTray(ctx context.Context, a *app.App, dashboard string) error {
	t := tray.New(true)
	t.OnToggle(a.SetEnabled)
	t.OnDashboard(func() {
		if err := openBrowser(dashboard); err != nil {
			monitoring.Logf("Failed to open dashboard: %v", err)
		}
	})
	a.OnGesture(func(ev app.GestureEvent) {
		t.SetLastGesture(ev.Gesture)
	})

	a.SetEnabled(true)
	if err := a.Start(); err != nil {
		return err
	}
	defer a.Stop()

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
	return nil
}

// runHeadless runs the pipeline until ctx is cancelled.
func runHeadless(ctx context.Context, a *app.App) error {
	a.SetEnabled(true)
	if err := a.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	a.Stop()
	return nil
}

// dashboardURL turns a listen address into a browsable URL.
func dashboardURL(addr string) string {
	host := addr
	if len(host) > 0 && host[0] == ':' {
		host = "localhost" + host
	}
	return "http://" + host + "/"
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

// findWebDir searches for the dashboard directory in common locations.
// It checks "web", "../web", "../../web" and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
