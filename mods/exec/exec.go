//go:build linux

// Package exec contains the process to its sandbox and replaces it with the
// target program.
//
// A Cmd is prepared first (launch request, stdin handling, rlimit table,
// compiled filter). Nothing touches kernel state until then. Run walks the
// stages in order: sanitize descriptors, set rlimits, install the seccomp
// filter, execve. Each stage refuses to run unless the previous one
// completed, and every failure aborts before the target runs.
//
// The filter and no_new_privs are per-thread, so the caller must have
// locked its goroutine to the OS thread before the first stage.
package exec

import (
	"fmt"
	"syscall"

	"github.com/Boxjan/golib/logs"

	"github.com/sdibtacm/seclaunch/g"
	"github.com/sdibtacm/seclaunch/mods/policy"
	"github.com/sdibtacm/seclaunch/mods/scmpFilter"
)

// Cmd is the sandbox context threaded through the stages.
type Cmd struct {
	Logger *logs.Logger

	ExecSetting *ExecSetting
	Io          *IoSetting
	Resource    *ResourceSetting
	Program     *scmpFilter.Program

	path string
	argv []string
	envv []string

	stage Stage
}

func New() *Cmd {
	return &Cmd{Logger: g.GetLog()}
}

// Stage returns the last completed stage.
func (c *Cmd) Stage() Stage {
	return c.stage
}

// expect fails unless want is the last completed stage.
func (c *Cmd) expect(want, next Stage) error {
	if c.stage != want {
		return newError(KindStageOrder, next.String(),
			fmt.Errorf("requires %q, last completed is %q", want, c.stage))
	}
	return nil
}

func (c *Cmd) complete(s Stage) {
	c.stage = s
	c.Logger.Debug("stage done: {}", s)
}

// Run executes every stage. It only returns on failure; on success the
// process image is the target.
func (c *Cmd) Run() error {
	if err := c.SanitizeDescriptors(); err != nil {
		return err
	}
	if err := c.SetLimits(); err != nil {
		return err
	}
	if err := c.InstallFilter(); err != nil {
		return err
	}
	return c.Launch()
}

// Launch replaces the process with the target. The environment is passed
// through and argv[0] is the path as given.
func (c *Cmd) Launch() error {
	if err := c.expect(StageFilter, StageExec); err != nil {
		return err
	}
	c.Logger.Debug("execve {} {}", c.path, c.argv)
	err := syscall.Exec(c.path, c.argv, c.envv)
	return newError(KindLaunch, c.path, err)
}

// PreparePolicy applies every setting p carries.
func (c *Cmd) PreparePolicy(p *policy.Policy) error {
	if err := p.Validate(); err != nil {
		return UsageError("policy", err)
	}
	if err := c.PrepareIo(&IoSetting{Stdin: p.Stdin}); err != nil {
		return err
	}
	if err := c.PrepareLimit(&ResourceSetting{Limits: p.Limits}); err != nil {
		return err
	}
	return c.PrepareSyscall(p)
}
