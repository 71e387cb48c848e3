package exec

import (
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestErrorMessage(t *testing.T) {
	err := newError(KindLimit, "nproc", os.ErrPermission)
	want := "sandbox: resource limit setup failed, nproc: permission denied"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if got := (&Error{Kind: KindLaunch}).Error(); got != "sandbox: launch failed" {
		t.Errorf("Error() = %q", got)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindOK},
		{newError(KindDescriptor, "fstat 1", os.ErrClosed), KindDescriptor},
		{errors.Wrap(newError(KindFilterUnavailable, "probe", nil), "run"), KindFilterUnavailable},
		{errors.New("write /dev/full: no space left on device"), KindSetup},
		{UsageError("policy", os.ErrNotExist), KindUsage},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestFilterUnavailableMessage(t *testing.T) {
	msg := newError(KindFilterUnavailable, "install", nil).Error()
	if !strings.Contains(msg, "cannot be enforced") {
		t.Errorf("message %q does not say the sandbox cannot be enforced", msg)
	}
	if errors.Cause(newError(KindFilter, "x", os.ErrInvalid)) != os.ErrInvalid {
		t.Error("Cause does not reach the wrapped error")
	}
}
