//go:build linux

package main

import (
	"github.com/Boxjan/golib/logs"
	"github.com/pkg/errors"

	"github.com/sdibtacm/seclaunch/mods/exec"
	"github.com/sdibtacm/seclaunch/mods/policy"
)

var errRunningNow = errors.New("launch already in progress")

// Command prepares a launch of path with args. The path is used as given,
// without a PATH search, and is also argv[0].
func Command(path string, args ...string) *LaunchConfig {
	launcher := GetDefaultLaunchConfig()

	launcher.Lock()
	launcher.exec.Path = path
	launcher.exec.Args = append([]string{path}, args...)
	launcher.Unlock()

	return launcher
}

func (s *LaunchConfig) SetLogger(logger *logs.Logger) {
	s.Lock()
	if logger != nil {
		s.Logger = logger
	}
	s.Unlock()
}

func (s *LaunchConfig) SetPolicy(p *policy.Policy) {
	s.Lock()
	s.Logger.Debug("policy change before: {}", s.Policy.Name)
	s.Policy = p
	s.Logger.Debug("after: {}", s.Policy.Name)
	s.Unlock()
}

func (s *LaunchConfig) SetEnv(env ...string) {
	s.exec.Env = env
}

func (s *LaunchConfig) GetExec() *exec.ExecSetting {
	return s.exec
}

// Run contains the process and replaces it with the target. It returns
// only when something failed; by then the process may already be partly
// contained and should exit.
func (s *LaunchConfig) Run() error {
	s.Lock()
	defer s.Unlock()

	if s.running {
		return exec.UsageError("run", errRunningNow)
	}
	s.running = true

	cmd, err := s.prepare()
	if err != nil {
		return err
	}
	return cmd.Run()
}
