package main

import (
	"strconv"

	"github.com/sdibtacm/seclaunch/mods/exec"
)

// FileError reports a policy file that could not be used.
type FileError struct {
	// Name is the file name for which the error occurred.
	Name string
	// Err is the underlying error.
	Err error
}

func (e *FileError) Error() string {
	return "sandbox: policy " + strconv.Quote(e.Name) + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error { return e.Err }

const (
	exitSetup = 1
	exitUsage = 2
)

// exitCode maps a failure to the process status.
func exitCode(err error) int {
	if _, ok := err.(*FileError); ok {
		return exitSetup
	}
	if exec.KindOf(err) == exec.KindUsage {
		return exitUsage
	}
	return exitSetup
}
