// Command media is a handsign plugin for playback and volume control.
// Linux uses pactl and playerctl, macOS uses AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"

	"github.com/ayusman/handsign/internal/plugin"
)

const defaultVolumeStep = 10

// MediaConfig is the optional binding config.
type MediaConfig struct {
	// Step is the volume change in percent for volume-up and volume-down.
	Step int `json:"step"`
}

// command is one external program invocation.
type command struct {
	name string
	args []string
}

// actionHandler builds the command for an action on the current platform.
type actionHandler func(goos string, cfg MediaConfig) (command, error)

var actionHandlers = map[string]actionHandler{
	"volume-up":        volumeUp,
	"volume-down":      volumeDown,
	"volume-mute":      volumeMute,
	"media-play-pause": mediaKey("play-pause", 100),
	"media-next":       mediaKey("next", 101),
	"media-prev":       mediaKey("previous", 98),
}

func main() {
	var req plugin.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(plugin.Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		writeResponse(plugin.Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	cfg, err := parseConfig(req.Config)
	if err != nil {
		writeResponse(plugin.Response{Error: err.Error()})
		return
	}

	cmd, err := handler(runtime.GOOS, cfg)
	if err == nil {
		err = run(cmd)
	}
	if err != nil {
		writeResponse(plugin.Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)})
		return
	}

	writeResponse(plugin.Response{Success: true})
}

func parseConfig(raw json.RawMessage) (MediaConfig, error) {
	cfg := MediaConfig{Step: defaultVolumeStep}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if cfg.Step <= 0 || cfg.Step > 100 {
		return cfg, fmt.Errorf("step must be in 1..100, got %d", cfg.Step)
	}
	return cfg, nil
}

func osascript(script string) command {
	return command{name: "osascript", args: []string{"-e", script}}
}

func volumeUp(goos string, cfg MediaConfig) (command, error) {
	return volumeChange(goos, cfg.Step, "+")
}

func volumeDown(goos string, cfg MediaConfig) (command, error) {
	return volumeChange(goos, cfg.Step, "-")
}

func volumeChange(goos string, step int, sign string) (command, error) {
	switch goos {
	case "darwin":
		return osascript(fmt.Sprintf(`set volume output volume ((output volume of (get volume settings)) %s %d)`, sign, step)), nil
	case "linux":
		return command{name: "pactl", args: []string{"set-sink-volume", "@DEFAULT_SINK@", sign + strconv.Itoa(step) + "%"}}, nil
	}
	return command{}, fmt.Errorf("unsupported platform %s", goos)
}

func volumeMute(goos string, _ MediaConfig) (command, error) {
	switch goos {
	case "darwin":
		return osascript(`set volume output muted (not (output muted of (get volume settings)))`), nil
	case "linux":
		return command{name: "pactl", args: []string{"set-sink-mute", "@DEFAULT_SINK@", "toggle"}}, nil
	}
	return command{}, fmt.Errorf("unsupported platform %s", goos)
}

// mediaKey presses a media key: playerctl on Linux, a System Events key code
// on macOS.
func mediaKey(playerctl string, keyCode int) actionHandler {
	return func(goos string, _ MediaConfig) (command, error) {
		switch goos {
		case "darwin":
			return osascript(fmt.Sprintf("tell application \"System Events\"\n\tkey code %d\nend tell", keyCode)), nil
		case "linux":
			return command{name: "playerctl", args: []string{playerctl}}, nil
		}
		return command{}, fmt.Errorf("unsupported platform %s", goos)
	}
}

func writeResponse(resp plugin.Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

func run(c command) error {
	output, err := exec.Command(c.name, c.args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
