//go:build linux

package main

import (
	"fmt"
	"io"

	"github.com/sdibtacm/seclaunch/mods/scmpFilter"
)

// CheckResult is what --check found out about the host.
type CheckResult struct {
	Backend    string
	Arch       string
	Seccomp    bool
	NoNewPrivs bool
	Error      error
}

// Ok reports whether a launch can be contained on this host.
func (r *CheckResult) Ok() bool {
	return r.Error == nil && r.Seccomp && r.NoNewPrivs && r.Arch != ""
}

func getHostCheckResult() *CheckResult {
	r := &CheckResult{Backend: scmpFilter.Backend}
	if name, _, ok := scmpFilter.NativeArch(); ok {
		r.Arch = name
	}
	if err := scmpFilter.Supported(); err != nil {
		r.Error = err
	} else {
		r.Seccomp = true
	}
	// the flag is only read, a kernel that knows it supports setting it
	if _, err := scmpFilter.NoNewPrivs(); err == nil {
		r.NoNewPrivs = true
	} else if r.Error == nil {
		r.Error = err
	}
	return r
}

func (r *CheckResult) Print(w io.Writer) {
	yesNo := func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	}
	arch := r.Arch
	if arch == "" {
		arch = "unsupported"
	}
	fmt.Fprintf(w, "backend:       %s\n", r.Backend)
	fmt.Fprintf(w, "arch:          %s\n", arch)
	fmt.Fprintf(w, "seccomp:       %s\n", yesNo(r.Seccomp))
	fmt.Fprintf(w, "no_new_privs:  %s\n", yesNo(r.NoNewPrivs))
	if r.Error != nil {
		fmt.Fprintf(w, "error:         %v\n", r.Error)
	}
}
