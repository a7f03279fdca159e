package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}
}

func TestExecutor_Execute(t *testing.T) {
	skipOnWindows(t)

	plugin := writePlugin(t, t.TempDir(), "echo", `#!/bin/sh
echo '{"success":true,"data":{"message":"hello world"}}'
`, "keystroke")

	params, _ := json.Marshal(GestureParams{WristX: 320, Timestamp: 1})
	request := &Request{
		Action:  "keystroke",
		Gesture: "swipe_left",
		Config:  json.RawMessage(`{"key":"left"}`),
		Params:  params,
	}

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, request)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if !response.Success {
		t.Errorf("expected success=true, got false")
	}

	var data map[string]interface{}
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "hello world" {
		t.Errorf("expected message 'hello world', got %v", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	skipOnWindows(t)

	plugin := writePlugin(t, t.TempDir(), "capture", `#!/bin/sh
cat > request.json
echo '{"success":true}'
`)

	request := &Request{
		Action:  "press",
		Gesture: "open_hand",
		Params:  json.RawMessage(`{"wrist_x":42,"timestamp":7}`),
	}

	if _, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, request); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	// The plugin runs in its own directory.
	raw, err := os.ReadFile(filepath.Join(plugin.Path, "request.json"))
	if err != nil {
		t.Fatalf("plugin did not write request: %v", err)
	}

	var got Request
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("invalid request JSON %q: %v", raw, err)
	}
	if got.Gesture != "open_hand" || got.Action != "press" {
		t.Errorf("unexpected request %+v", got)
	}

	var params GestureParams
	if err := json.Unmarshal(got.Params, &params); err != nil {
		t.Fatalf("invalid params: %v", err)
	}
	if params.WristX != 42 {
		t.Errorf("params.WristX = %d, want 42", params.WristX)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	skipOnWindows(t)

	plugin := writePlugin(t, t.TempDir(), "slow", "#!/bin/sh\nexec sleep 5\n")

	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), plugin, &Request{Action: "x"})
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestExecutor_Cancelled(t *testing.T) {
	skipOnWindows(t)

	plugin := writePlugin(t, t.TempDir(), "slow", "#!/bin/sh\nexec sleep 5\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecutor(5*time.Second).Execute(ctx, plugin, &Request{Action: "x"})
	if err == nil || !strings.Contains(err.Error(), "cancelled") {
		t.Errorf("expected cancellation error, got %v", err)
	}
}

func TestExecutor_Execute_ErrorResponse(t *testing.T) {
	skipOnWindows(t)

	plugin := writePlugin(t, t.TempDir(), "fails", `#!/bin/sh
echo '{"success":false,"error":"no such key"}'
`)

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "x"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if response.Success {
		t.Error("expected success=false")
	}
	if response.Error != "no such key" {
		t.Errorf("expected error 'no such key', got %q", response.Error)
	}
}

func TestExecutor_Execute_InvalidJSON(t *testing.T) {
	skipOnWindows(t)

	plugin := writePlugin(t, t.TempDir(), "garbage", "#!/bin/sh\necho 'not json'\n")

	_, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "x"})
	if err == nil || !strings.Contains(err.Error(), "failed to parse plugin response") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestExecutor_Execute_NonZeroExit(t *testing.T) {
	skipOnWindows(t)

	plugin := writePlugin(t, t.TempDir(), "crash", "#!/bin/sh\necho 'boom' >&2\nexit 1\n")

	_, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "x"})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected failure carrying stderr, got %v", err)
	}
}

func TestExecutor_UnsupportedAction(t *testing.T) {
	plugin := &Plugin{Manifest: Manifest{Name: "keyboard", Actions: []string{"keystroke"}}}

	_, err := NewExecutor(time.Second).Execute(context.Background(), plugin, &Request{Action: "volume-up"})
	if err == nil {
		t.Error("expected error for unsupported action")
	}
}

func TestNewExecutor(t *testing.T) {
	if got := NewExecutor(0).Timeout(); got != DefaultTimeout {
		t.Errorf("Timeout() = %s, want %s", got, DefaultTimeout)
	}
	if got := NewExecutor(3 * time.Second).Timeout(); got != 3*time.Second {
		t.Errorf("Timeout() = %s, want 3s", got)
	}
}
