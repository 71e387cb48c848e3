//go:build linux

package main

import (
	"github.com/sdibtacm/seclaunch/mods/exec"
)

func (s *LaunchConfig) prepare() (cmd *exec.Cmd, err error) {
	c := exec.New()
	c.Logger = s.Logger

	err = c.PrepareExec(s.exec)
	if err != nil {
		return
	}

	err = c.PreparePolicy(s.Policy)
	if err != nil {
		return
	}

	s.Logger.Debug("prepared {} with policy {}: {} syscalls, limits {}",
		s.exec.Path, s.Policy.Name, len(s.Policy.Syscalls), s.Policy.Limits)
	cmd = c
	return
}
