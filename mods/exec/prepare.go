//go:build linux

package exec

import (
	"os"

	"github.com/pkg/errors"

	"github.com/sdibtacm/seclaunch/mods/policy"
	"github.com/sdibtacm/seclaunch/mods/scmpFilter"
)

// preparing is allowed until the first stage starts
func (c *Cmd) preparing() error {
	if c.stage != StageNone && c.stage != StagePrepared {
		return newError(KindStageOrder, "prepare", errors.Errorf("containment already at %q", c.stage))
	}
	return nil
}

func (c *Cmd) markPrepared() {
	if c.path != "" && c.Io != nil && c.Resource != nil && c.Program != nil {
		c.stage = StagePrepared
	}
}

// PrepareExec records the launch request. The target is run by its literal
// path, so it must be an executable regular file now.
func (c *Cmd) PrepareExec(s *ExecSetting) error {
	if err := c.preparing(); err != nil {
		return err
	}
	if len(s.Path) == 0 {
		return newError(KindUsage, "exec", errors.New("empty target path"))
	}
	if err := checkExecutable(s.Path); err != nil {
		return newError(KindLaunch, s.Path, err)
	}
	c.ExecSetting = s
	c.path = s.Path
	c.argv = s.argv()
	c.envv = s.envv()
	if len(s.Args) == 0 {
		c.Logger.Debug("args is empty, use path as argv[0]")
	}
	c.markPrepared()
	return nil
}

func checkExecutable(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return errors.New("not a regular file")
	}
	if fi.Mode().Perm()&0o111 == 0 {
		return os.ErrPermission
	}
	return nil
}

func (c *Cmd) PrepareIo(s *IoSetting) error {
	if err := c.preparing(); err != nil {
		return err
	}
	if !s.Stdin.Valid() {
		return newError(KindUsage, "stdin", errors.Errorf("unknown stdin mode %q", s.Stdin))
	}
	c.Io = s
	c.markPrepared()
	return nil
}

func (c *Cmd) PrepareLimit(s *ResourceSetting) error {
	if err := c.preparing(); err != nil {
		return err
	}
	for _, l := range s.Limits {
		if _, ok := l.Resource.Number(); !ok {
			return newError(KindUsage, "limit", errors.Errorf("unknown resource %q", l.Resource))
		}
		if l.Soft > l.Hard {
			return newError(KindUsage, "limit", errors.Errorf("%s soft limit above hard limit", l.Resource))
		}
	}
	c.Resource = &ResourceSetting{Limits: append([]policy.Limit(nil), s.Limits...)}
	c.markPrepared()
	return nil
}

// PrepareSyscall compiles the filter for p. Compilation allocates and may
// create files, so it happens here rather than in the filter stage.
func (c *Cmd) PrepareSyscall(p *policy.Policy) error {
	if err := c.preparing(); err != nil {
		return err
	}
	prog, err := scmpFilter.Compile(p)
	if err != nil {
		if errors.Cause(err) == scmpFilter.ErrUnavailable {
			return newError(KindFilterUnavailable, "compile", err)
		}
		return newError(KindFilter, "compile", err)
	}
	c.Program = prog
	c.markPrepared()
	return nil
}
