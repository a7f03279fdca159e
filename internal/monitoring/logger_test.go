package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})

	Logf("gesture %s", "swipe_left")
	if got != "gesture swipe_left" {
		t.Errorf("expected custom logger output, got %q", got)
	}

	t.Run("nil installs no-op", func(t *testing.T) {
		got = ""
		SetLogger(nil)
		Logf("ignored")
		if got != "" {
			t.Errorf("no-op logger should not reach previous logger, got %q", got)
		}
	})
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should not be nil by default")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()

	Logf("test message: %s", "value")
}
