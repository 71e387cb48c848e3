//go:build linux

package exec

import (
	"github.com/pkg/errors"

	"github.com/sdibtacm/seclaunch/mods/scmpFilter"
)

// InstallFilter sets no_new_privs and loads the compiled filter on the
// calling thread. Once it returns nil the filter cannot be lifted.
func (c *Cmd) InstallFilter() error {
	if err := c.expect(StageLimits, StageFilter); err != nil {
		return err
	}

	if err := scmpFilter.Supported(); err != nil {
		return c.filterError("probe", err)
	}
	if err := scmpFilter.SetNoNewPrivs(); err != nil {
		return newError(KindFilter, "no_new_privs", err)
	}
	if err := scmpFilter.Install(c.Program); err != nil {
		return c.filterError("install", err)
	}
	c.Logger.Debug("{} filter installed, {} instructions", c.Program.Backend, len(c.Program.Raw))

	c.complete(StageFilter)
	return nil
}

func (c *Cmd) filterError(helper string, err error) error {
	if errors.Cause(err) == scmpFilter.ErrUnavailable {
		c.Logger.Warning("seccomp filter mode is not supported by this kernel, refusing to run the target unconfined")
		return newError(KindFilterUnavailable, helper, err)
	}
	return newError(KindFilter, helper, err)
}
