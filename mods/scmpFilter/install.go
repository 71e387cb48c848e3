//go:build linux

package scmpFilter

import (
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ErrUnavailable means the kernel cannot enforce a seccomp filter, so the
// launch cannot be contained.
var ErrUnavailable = errors.New("seccomp filter mode is not available")

// Supported probes the kernel for seccomp support.
func Supported() error {
	if _, err := unix.PrctlRetInt(unix.PR_GET_SECCOMP, 0, 0, 0, 0); err != nil {
		if err == unix.EINVAL {
			return ErrUnavailable
		}
		return errors.Wrap(err, "PR_GET_SECCOMP")
	}
	return nil
}

// SetNoNewPrivs sets no_new_privs on the calling thread.
func SetNoNewPrivs() error {
	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return errors.Wrap(err, "PR_SET_NO_NEW_PRIVS")
	}
	return nil
}

// NoNewPrivs reports whether no_new_privs is set on the calling thread.
func NoNewPrivs() (bool, error) {
	v, err := unix.PrctlRetInt(unix.PR_GET_NO_NEW_PRIVS, 0, 0, 0, 0)
	if err != nil {
		return false, errors.Wrap(err, "PR_GET_NO_NEW_PRIVS")
	}
	return v == 1, nil
}

// Install loads p on the calling thread. The caller must hold the thread
// (runtime.LockOSThread) and must have set no_new_privs. The filter cannot
// be removed afterwards.
func Install(p *Program) error {
	if len(p.Raw) == 0 {
		return errors.New("empty filter")
	}
	prog := p.SockFprog()
	err := unix.Prctl(unix.PR_SET_SECCOMP, unix.SECCOMP_MODE_FILTER, uintptr(unsafe.Pointer(prog)), 0, 0)
	runtime.KeepAlive(prog)
	if err == unix.EINVAL {
		return ErrUnavailable
	}
	if err != nil {
		return errors.Wrap(err, "PR_SET_SECCOMP")
	}
	return nil
}
