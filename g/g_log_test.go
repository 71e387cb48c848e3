package g

import (
	"io"
	"os"
	"strings"
	"testing"
)

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	old := os.Stderr
	os.Stderr = w
	fn()
	os.Stderr = old
	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestNewLogger(t *testing.T) {
	out := captureStderr(t, func() {
		quiet := NewLogger(false)
		quiet.Debug("stage {} done", "limits")
		quiet.Warning("seccomp filter mode is not supported")

		NewLogger(true).Debug("closed {} descriptors", 3)
	})
	if strings.Contains(out, "stage limits done") {
		t.Errorf("quiet logger wrote debug output: %q", out)
	}
	if !strings.Contains(out, "seccomp filter mode is not supported") {
		t.Errorf("quiet logger dropped a warning: %q", out)
	}
	if !strings.Contains(out, "closed 3 descriptors") {
		t.Errorf("verbose logger dropped debug output: %q", out)
	}
}

func TestSetLog(t *testing.T) {
	defer CloseLog()
	l := NewLogger(false)
	SetLog(l)
	if GetLog() != l {
		t.Fatal("GetLog does not return the installed logger")
	}
	CloseLog()
	if GetLog() == l {
		t.Error("CloseLog kept the old logger")
	}
}
