package policy

import (
	"sort"

	"github.com/pkg/errors"
)

const (
	PresetLenient = "lenient"
	PresetStrict  = "strict"
)

// Lenient is the preset for cooperative language runtimes (JVM, CPython,
// Ruby). It allows thread creation up to 25 processes per user, which the
// JVM needs for its helper threads.
func Lenient() *Policy {
	return &Policy{
		Name:  PresetLenient,
		Stdin: StdinInherit,
		Limits: []Limit{
			Fixed("cpu", 5),
			Fixed("fsize", 10*1024*1024),
			Fixed("locks", 0),
			Fixed("memlock", 0),
			Fixed("nproc", 25),
		},
		Syscalls: Catalog(),
	}
}

// strictDrops are the classes removed from the lenient table for the
// strict preset.
var strictDrops = map[Class]bool{
	ClassProcess: true,
	ClassFSWrite: true,
	ClassIPC:     true,
}

// strictKeeps survive the class filter: the launch and process exit.
var strictKeeps = map[string]bool{
	"execve":     true,
	"exit":       true,
	"exit_group": true,
}

// Strict is the preset for adversarial or resource sensitive runs of
// single-threaded native binaries. No process or thread may be created,
// stdin is the null device and the address space is bounded.
func Strict() *Policy {
	p := &Policy{
		Name:  PresetStrict,
		Stdin: StdinNull,
		Limits: []Limit{
			Fixed("cpu", 5),
			Fixed("as", 256*1024*1024),
			Fixed("data", 256*1024*1024),
			Fixed("fsize", 10*1024*1024),
			Fixed("core", 0),
			Fixed("locks", 0),
			Fixed("memlock", 0),
			Fixed("nproc", 0),
		},
	}
	for _, s := range Catalog() {
		if strictDrops[s.Class] && !strictKeeps[s.Name] {
			continue
		}
		p.Syscalls = append(p.Syscalls, s)
	}
	return p
}

var presets = map[string]func() *Policy{
	PresetLenient: Lenient,
	PresetStrict:  Strict,
}

// Preset returns a fresh copy of the named preset.
func Preset(name string) (*Policy, error) {
	fn, ok := presets[name]
	if !ok {
		return nil, errors.Errorf("unknown preset %q", name)
	}
	return fn(), nil
}

// Presets lists the preset names.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
