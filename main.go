//go:build linux

// Command seclaunch runs a program inside a syscall allowlist and a set of
// resource limits:
//
//	seclaunch [flags] <target-path> [<target-args>...]
//
// It closes inherited descriptors, installs the rlimits, loads a seccomp
// filter and then execs the target in place, so the target inherits all
// of it and cannot lift any of it.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/pflag"

	"github.com/sdibtacm/seclaunch/g"
	"github.com/sdibtacm/seclaunch/mods/exec"
	"github.com/sdibtacm/seclaunch/mods/policy"
)

func init() {
	// no_new_privs and the filter belong to a thread; execve has to happen
	// on the thread that carries them
	runtime.LockOSThread()
}

func main() {
	os.Exit(launch(os.Args[1:], os.Stdout, os.Stderr))
}

// launch runs the command line. On success it does not return.
func launch(args []string, stdout, stderr io.Writer) int {
	o, rest, err := parseArgs(args, stderr)
	if err == pflag.ErrHelp {
		return 0
	}
	if err != nil {
		return fatal(stderr, err)
	}

	g.SetLog(g.NewLogger(o.verbose || debugFromEnv()))

	if o.check {
		r := getHostCheckResult()
		r.Print(stdout)
		if !r.Ok() {
			return exitSetup
		}
		return 0
	}

	p, err := o.resolvePolicy()
	if err != nil {
		return fatal(stderr, err)
	}

	if o.dump != "" {
		if err := dump(stdout, o.dump, p); err != nil {
			return fatal(stderr, err)
		}
		return 0
	}

	if len(rest) == 0 {
		return fatal(stderr, exec.UsageError("args", fmt.Errorf("missing target path")))
	}

	launcher := Command(rest[0], rest[1:]...)
	launcher.SetPolicy(p)
	return fatal(stderr, launcher.Run())
}

func fatal(w io.Writer, err error) int {
	fmt.Fprintf(w, "error: %v\n", err)
	code := exitCode(err)
	if code == exitUsage {
		fmt.Fprintln(w, "usage: seclaunch [flags] <target-path> [<target-args>...]")
	}
	return code
}

func parseArgs(args []string, stderr io.Writer) (*options, []string, error) {
	o := &options{}
	fs := pflag.NewFlagSet("seclaunch", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(stderr)
	fs.StringVarP(&o.preset, "preset", "p", policy.PresetLenient,
		"built-in policy: "+strings.Join(policy.Presets(), ", "))
	fs.StringVarP(&o.policyFile, "policy", "c", "",
		"YAML policy file (default $"+EnvPolicy+")")
	fs.VarP(&o.limits, "limit", "l",
		"override an rlimit, e.g. cpu=10, fsize=20MiB, nofile=256/512 (repeatable)")
	fs.StringVar(&o.dump, "dump", "",
		"print the resolved policy as "+strings.Join(dumpFormats, ", ")+" and exit")
	fs.BoolVar(&o.check, "check", false, "report whether this host can run contained and exit")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging (also $"+EnvDebug+"=1)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: seclaunch [flags] <target-path> [<target-args>...]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil, nil, err
		}
		return nil, nil, exec.UsageError("flags", err)
	}
	o.presetSet = fs.Changed("preset")
	return o, fs.Args(), nil
}
