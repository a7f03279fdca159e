// Command keyboard is a handsign plugin that presses a key combination when
// its gesture is recognized. The binding config names the key:
//
//	{"key": "right", "modifiers": ["ctrl"]}
//
// macOS is driven through AppleScript and Linux through xdotool.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/ayusman/handsign/internal/plugin"
)

// KeystrokeConfig is the binding config of keystroke and shortcut actions.
type KeystrokeConfig struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

// appleModifiers maps user-friendly modifier names to AppleScript equivalents.
var appleModifiers = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

// xdoModifiers maps the same names to xdotool key names.
var xdoModifiers = map[string]string{
	"command": "super",
	"cmd":     "super",
	"option":  "alt",
	"alt":     "alt",
	"control": "ctrl",
	"ctrl":    "ctrl",
	"shift":   "shift",
}

func main() {
	var req plugin.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(plugin.Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	switch req.Action {
	case "keystroke", "shortcut":
		cfg, err := parseConfig(req.Config)
		if err != nil {
			writeResponse(plugin.Response{Error: err.Error()})
			return
		}
		if err := press(cfg); err != nil {
			writeResponse(plugin.Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)})
			return
		}
	default:
		writeResponse(plugin.Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	writeResponse(plugin.Response{Success: true})
}

func parseConfig(raw json.RawMessage) (KeystrokeConfig, error) {
	var cfg KeystrokeConfig
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if cfg.Key == "" {
		return cfg, fmt.Errorf("key is required")
	}
	return cfg, nil
}

func press(cfg KeystrokeConfig) error {
	switch runtime.GOOS {
	case "darwin":
		return run("osascript", "-e", appleScript(cfg))
	case "linux":
		return run("xdotool", "key", xdoChord(cfg))
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
}

// appleScript generates an AppleScript for the given key and modifiers.
func appleScript(cfg KeystrokeConfig) string {
	var mods []string
	for _, m := range cfg.Modifiers {
		if am, ok := appleModifiers[strings.ToLower(m)]; ok {
			mods = append(mods, am)
		}
	}

	if len(mods) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, cfg.Key)
	}
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`, cfg.Key, strings.Join(mods, ", "))
}

// xdoChord builds an xdotool chord such as "ctrl+shift+Right".
func xdoChord(cfg KeystrokeConfig) string {
	var parts []string
	for _, m := range cfg.Modifiers {
		if xm, ok := xdoModifiers[strings.ToLower(m)]; ok {
			parts = append(parts, xm)
		}
	}

	key := cfg.Key
	if len(key) > 1 {
		// Named keys are capitalized in X keysym names.
		key = strings.ToUpper(key[:1]) + key[1:]
	}
	return strings.Join(append(parts, key), "+")
}

func writeResponse(resp plugin.Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

func run(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
