//go:build linux

package exec

import (
	"runtime/debug"
	"syscall"

	"github.com/sdibtacm/seclaunch/mods/policy"
)

// SetLimits installs the rlimit table. The first failure aborts; a partly
// installed table is never reported as success.
func (c *Cmd) SetLimits() error {
	if err := c.expect(StageDescriptors, StageLimits); err != nil {
		return err
	}

	// a collection may start OS threads, which fails once nproc is low
	debug.SetGCPercent(-1)

	for _, l := range c.Resource.Limits {
		if err := setLimit(l); err != nil {
			return newError(KindLimit, string(l.Resource), err)
		}
		c.Logger.Debug("set rlimit {}", l)
	}

	c.complete(StageLimits)
	return nil
}

// setLimit goes through package syscall so that syscall.Exec does not put
// back the NOFILE limit the runtime raised at startup.
func setLimit(l policy.Limit) error {
	nr, _ := l.Resource.Number()
	return syscall.Setrlimit(nr, &syscall.Rlimit{Cur: l.Soft, Max: l.Hard})
}
