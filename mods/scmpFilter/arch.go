//go:build linux

package scmpFilter

import (
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/sdibtacm/seclaunch/units/helper"
)

type archInfo struct {
	name  string
	audit uint32
}

var nativeArches = map[string]archInfo{
	"amd64":    {"x86_64", unix.AUDIT_ARCH_X86_64},
	"386":      {"x86", unix.AUDIT_ARCH_I386},
	"arm64":    {"aarch64", unix.AUDIT_ARCH_AARCH64},
	"arm":      {"arm", unix.AUDIT_ARCH_ARM},
	"riscv64":  {"riscv64", unix.AUDIT_ARCH_RISCV64},
	"ppc64le":  {"ppc64le", unix.AUDIT_ARCH_PPC64LE},
	"s390x":    {"s390x", unix.AUDIT_ARCH_S390X},
	"mips64le": {"mipsel64", unix.AUDIT_ARCH_MIPSEL64},
}

// NativeArch returns the kernel name and audit value of the running
// architecture.
func NativeArch() (name string, audit uint32, ok bool) {
	a, ok := nativeArches[runtime.GOARCH]
	return a.name, a.audit, ok
}

// x32 syscalls share the x86_64 audit arch and are told apart by this bit.
const x32SyscallBit = 0x40000000

// seccomp_data layout
const (
	offNr   = 0
	offArch = 4
	offArgs = 16
)

// argOffsets returns where the low and high 32-bit halves of argument i
// sit in seccomp_data on this host.
func argOffsets(i uint) (lo, hi uint32) {
	base := uint32(offArgs + 8*i)
	if helper.IsLittleEndian() {
		return base, base + 4
	}
	return base + 4, base
}
