package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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

// Process runs one frame through the pipeline:
//
//  1. mirror the frame when Config.Mirror is set
//  2. detect hands
//  3. convert hand Config.HandIndex to pixel landmarks
//  4. classify against the carried state
//  5. draw every detected hand and the label when Config.Draw is set
//  6. hand the frame to OnFrame listeners
//  7. for a recognized gesture, record it, run its bound action and notify
//     OnGesture listeners
//
// The frame is modified in place. Process owns the classifier state and must
// not be called concurrently, including while the Start loop is running.
// On error the state is left unchanged.
func (a *App) Process(frame *gocv.Mat) (Result, error) {
	if frame == nil || frame.Empty() {
		return Result{State: a.state}, errors.New("process: empty frame")
	}

	if a.config.Mirror {
		gocv.Flip(*frame, frame, 1)
	}

	hands, err := a.Detector().Detect(frame)
	if err != nil {
		return Result{State: a.state}, fmt.Errorf("detect hands: %w", err)
	}

	set, err := landmark.FromHands(hands, a.config.HandIndex, frame.Cols(), frame.Rows())
	if err != nil {
		return Result{State: a.state}, fmt.Errorf("adapt landmarks: %w", err)
	}

	g, state, err := gesture.Classify(set, a.state, a.config.Gesture)
	if err != nil {
		return Result{State: a.state}, fmt.Errorf("classify: %w", err)
	}
	a.state = state

	if a.config.Draw {
		a.drawHands(frame, hands)
		overlay.DrawGesture(frame, g)
	}

	a.listenersMu.RLock()
	for _, fn := range a.frameListeners {
		fn(frame)
	}
	a.listenersMu.RUnlock()

	if g != gesture.None {
		a.handleGesture(GestureEvent{
			Gesture: g,
			WristX:  set.Wrist().X,
			Hands:   len(hands),
			Time:    time.Now(),
		})
	}

	return Result{Gesture: g, Set: set, Hands: len(hands), State: state}, nil
}

// drawHands draws every detected hand, not only the classified one.
func (a *App) drawHands(frame *gocv.Mat, hands []detector.HandLandmarks) {
	for i := range hands {
		set, err := landmark.FromHands(hands, i, frame.Cols(), frame.Rows())
		if err != nil {
			continue
		}
		overlay.DrawHand(frame, set, a.config.Style)
	}
}

// State returns the classifier state carried into the next Process call.
func (a *App) State() gesture.State {
	return a.state
}

// ResetState forgets the previous wrist position.
func (a *App) ResetState() {
	a.state = gesture.State{}
}

// runPipeline reads frames at the camera's rate until stopCh closes or a
// finite source runs out.
func (a *App) runPipeline(camera capture.Camera, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	fps := camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := camera.ReadFrame()
			if errors.Is(err, capture.ErrEndOfStream) {
				monitoring.Logf("Capture source exhausted, pipeline idle")
				return
			}
			if err != nil {
				monitoring.Logf("Error reading frame: %v", err)
				continue
			}

			result, err := a.Process(frame)
			frame.Close()
			if err != nil {
				monitoring.Logf("Error processing frame: %v", err)
				continue
			}
			if result.Gesture != gesture.None {
				monitoring.Logf("Gesture recognized: %s (wrist x %d)", result.Gesture, result.State.PrevWristX)
			}
		}
	}
}

// handleGesture applies the side effects of a recognized gesture.
func (a *App) handleGesture(ev GestureEvent) {
	if a.config.Store != nil {
		err := a.config.Store.Events().Record(&store.Event{
			Gesture:   string(ev.Gesture),
			WristX:    ev.WristX,
			Hands:     ev.Hands,
			CreatedAt: ev.Time,
		})
		if err != nil {
			monitoring.Logf("Failed to record %s: %v", ev.Gesture, err)
		}
	}

	a.executeAction(ev)

	a.listenersMu.RLock()
	defer a.listenersMu.RUnlock()
	for _, fn := range a.gestureListeners {
		fn(ev)
	}
}

// executeAction looks up the action bound to the gesture and runs it on its
// plugin in the background. Unbound or disabled gestures do nothing.
func (a *App) executeAction(ev GestureEvent) {
	if a.config.Store == nil {
		return
	}

	binding, err := a.config.Store.Actions().GetByGesture(string(ev.Gesture))
	if err != nil {
		monitoring.Logf("Failed to look up action for %s: %v", ev.Gesture, err)
		return
	}
	if binding == nil || !binding.Enabled {
		return
	}

	p, err := a.pluginMgr.Get(binding.PluginName)
	if err != nil {
		monitoring.Logf("Action %s for %s: %v", binding.ActionName, ev.Gesture, err)
		return
	}

	params, err := json.Marshal(plugin.GestureParams{
		WristX:    ev.WristX,
		Timestamp: ev.Time.UnixMilli(),
	})
	if err != nil {
		monitoring.Logf("Failed to encode params for %s: %v", ev.Gesture, err)
		return
	}

	req := &plugin.Request{
		Action:  binding.ActionName,
		Gesture: string(ev.Gesture),
		Config:  binding.Config,
		Params:  params,
	}

	a.actions.Add(1)
	go func() {
		defer a.actions.Done()

		resp, err := a.pluginExec.Execute(context.Background(), p, req)
		if err != nil {
			monitoring.Logf("Plugin %s failed for %s: %v", p.Manifest.Name, ev.Gesture, err)
			return
		}
		if !resp.Success {
			monitoring.Logf("Plugin %s reported failure for %s: %s", p.Manifest.Name, ev.Gesture, resp.Error)
			return
		}
		monitoring.Logf("Action triggered for gesture %s: %s/%s", ev.Gesture, p.Manifest.Name, binding.ActionName)
	}()
}

// WaitActions blocks until every action started so far has finished.
func (a *App) WaitActions() {
	a.actions.Wait()
}
