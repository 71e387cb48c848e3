package policy

import (
	"runtime"
	"strings"

	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// OCI is the policy rendered as runtime-spec fragments, for reuse in a
// container runtime configuration.
type OCI struct {
	Seccomp *specs.LinuxSeccomp `json:"seccomp"`
	Rlimits []specs.POSIXRlimit `json:"rlimits"`
}

var ociArches = map[string]specs.Arch{
	"amd64":    specs.ArchX86_64,
	"386":      specs.ArchX86,
	"arm64":    specs.ArchAARCH64,
	"arm":      specs.ArchARM,
	"riscv64":  specs.ArchRISCV64,
	"ppc64le":  specs.ArchPPC64LE,
	"s390x":    specs.ArchS390X,
	"mips64le": specs.ArchMIPSEL64,
}

// OCIArch returns the runtime-spec name of the native architecture.
func OCIArch() (specs.Arch, bool) {
	a, ok := ociArches[runtime.GOARCH]
	return a, ok
}

// OCI converts p. Unconditional entries share one allow rule; each
// conditional entry gets its own.
func (p *Policy) OCI() OCI {
	sc := &specs.LinuxSeccomp{DefaultAction: specs.ActKillProcess}
	if a, ok := OCIArch(); ok {
		sc.Architectures = []specs.Arch{a}
	}

	var plain []string
	var conditional []specs.LinuxSyscall
	for _, s := range p.Syscalls {
		if s.Cond == nil {
			plain = append(plain, s.Name)
			continue
		}
		conditional = append(conditional, specs.LinuxSyscall{
			Names:  []string{s.Name},
			Action: specs.ActAllow,
			Args: []specs.LinuxSeccompArg{{
				Index: s.Cond.Arg,
				Value: s.Cond.Value,
				Op:    specs.OpEqualTo,
			}},
		})
	}
	if len(plain) > 0 {
		sc.Syscalls = append(sc.Syscalls, specs.LinuxSyscall{Names: plain, Action: specs.ActAllow})
	}
	sc.Syscalls = append(sc.Syscalls, conditional...)

	rl := make([]specs.POSIXRlimit, 0, len(p.Limits))
	for _, l := range p.Limits {
		rl = append(rl, specs.POSIXRlimit{
			Type: "RLIMIT_" + strings.ToUpper(string(l.Resource)),
			Soft: l.Soft,
			Hard: l.Hard,
		})
	}
	return OCI{Seccomp: sc, Rlimits: rl}
}
