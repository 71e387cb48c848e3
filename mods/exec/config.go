package exec

import (
	"os"

	"github.com/sdibtacm/seclaunch/mods/policy"
)

// ExecSetting is the launch request: what to execve once containment is
// in place.
type ExecSetting struct {
	Path string
	Args []string // Args[0] is the path as given when empty
	Env  []string // inherited when nil
}

func GetDefaultExecSetting() *ExecSetting {
	return &ExecSetting{}
}

// IoSetting controls the standard descriptors of the target.
type IoSetting struct {
	Stdin policy.StdinMode
}

func GetDefaultIoSetting() *IoSetting {
	return &IoSetting{Stdin: policy.StdinInherit}
}

// ResourceSetting is the rlimit table installed by the limit stage.
type ResourceSetting struct {
	Limits []policy.Limit
}

func GetDefaultResourceSetting() *ResourceSetting {
	return &ResourceSetting{Limits: policy.Lenient().Limits}
}

func (s *ExecSetting) argv() []string {
	if len(s.Args) == 0 {
		return []string{s.Path}
	}
	return s.Args
}

func (s *ExecSetting) envv() []string {
	if s.Env == nil {
		return os.Environ()
	}
	return s.Env
}
