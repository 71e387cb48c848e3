package main

import (
	"os"
	"strconv"
	"sync"

	"github.com/Boxjan/golib/logs"
	"github.com/pkg/errors"

	"github.com/sdibtacm/seclaunch/g"
	"github.com/sdibtacm/seclaunch/mods/exec"
	"github.com/sdibtacm/seclaunch/mods/policy"
)

const (
	EnvDebug  = "SECLAUNCH_DEBUG"
	EnvPolicy = "SECLAUNCH_POLICY"
)

type LaunchConfig struct {
	sync.Mutex
	running bool

	Logger *logs.Logger
	Policy *policy.Policy
	exec   *exec.ExecSetting
}

func GetDefaultLaunchConfig() *LaunchConfig {
	return &LaunchConfig{
		running: false,
		Logger:  g.GetLog(),
		Policy:  policy.Lenient(),
		exec:    exec.GetDefaultExecSetting(),
	}
}

// options are the command line settings.
type options struct {
	preset     string
	presetSet  bool
	policyFile string
	limits     limitFlags
	dump       string
	check      bool
	verbose    bool
}

func debugFromEnv() bool {
	v, err := strconv.ParseBool(os.Getenv(EnvDebug))
	return err == nil && v
}

// resolvePolicy picks the base policy and applies -l overrides. An explicit
// --policy wins over --preset, an explicit --preset wins over
// SECLAUNCH_POLICY.
func (o *options) resolvePolicy() (*policy.Policy, error) {
	file := o.policyFile
	if file == "" && !o.presetSet {
		file = os.Getenv(EnvPolicy)
	}

	var p *policy.Policy
	var err error
	if file != "" {
		if o.presetSet {
			return nil, exec.UsageError("flags", errors.New("--preset and --policy are exclusive"))
		}
		if p, err = policy.LoadFile(file); err != nil {
			return nil, &FileError{Name: file, Err: err}
		}
		g.GetLog().Debug("policy {} loaded from {}", p.Name, file)
	} else {
		if p, err = policy.Preset(o.preset); err != nil {
			return nil, exec.UsageError("preset", err)
		}
	}

	for _, l := range o.limits {
		g.GetLog().Debug("override {}", l)
		p.SetLimit(l)
	}
	if err := p.Validate(); err != nil {
		return nil, exec.UsageError("policy", err)
	}
	return p, nil
}
