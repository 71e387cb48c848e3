//go:build linux

package scmpFilter

import (
	"runtime"
	"strings"
	"testing"

	"github.com/sdibtacm/seclaunch/mods/policy"
)

func compileOrSkip(t *testing.T, p *policy.Policy) *Program {
	t.Helper()
	if _, _, ok := NativeArch(); !ok {
		t.Skipf("no seccomp arch for %s", runtime.GOARCH)
	}
	prog, err := Compile(p)
	if err != nil {
		t.Fatalf("Compile(%s) failed: %v", p.Name, err)
	}
	return prog
}

func mustEval(t *testing.T, prog *Program, arch uint32, nr int, args ...uint64) Action {
	t.Helper()
	act, err := prog.Evaluate(arch, nr, args...)
	if err != nil {
		t.Fatalf("Evaluate(%d) failed: %v", nr, err)
	}
	return act
}

func TestAllowlistedNamesAllowed(t *testing.T) {
	for _, p := range []*policy.Policy{policy.Lenient(), policy.Strict()} {
		prog := compileOrSkip(t, p)
		skipped := make(map[string]bool)
		for _, name := range prog.Skipped {
			skipped[name] = true
		}
		for _, s := range p.Syscalls {
			nr, ok := SyscallNumber(s.Name)
			if !ok {
				if !skipped[s.Name] {
					t.Errorf("%s: %s has no number but was not skipped", p.Name, s.Name)
				}
				continue
			}
			var args []uint64
			if s.Cond != nil {
				args = make([]uint64, s.Cond.Arg+1)
				args[s.Cond.Arg] = s.Cond.Value
			}
			if act := mustEval(t, prog, prog.AuditArch, nr, args...); act != ActAllow {
				t.Errorf("%s: %s = %s, want allow", p.Name, s.Name, act)
			}
		}
	}
}

// CPython's interpreter startup under glibc, taken from strace of
// python3 -c pass.
var pythonStartup = []string{
	"execve", "brk", "mmap", "mprotect", "munmap", "openat", "read", "close",
	"pread64", "fstat", "newfstatat", "lseek", "ioctl", "getdents64",
	"readlink", "getrandom", "sysinfo", "rt_sigaction", "rt_sigprocmask",
	"set_tid_address", "set_robust_list", "rseq", "prlimit64", "futex",
	"getcwd", "write", "exit_group",
}

func TestPythonStartupAllowed(t *testing.T) {
	p := policy.Lenient()
	prog := compileOrSkip(t, p)
	for _, name := range pythonStartup {
		nr, ok := SyscallNumber(name)
		if !ok {
			continue
		}
		var args []uint64
		if s, _ := p.Lookup(name); s.Cond != nil {
			args = make([]uint64, s.Cond.Arg+1)
			args[s.Cond.Arg] = s.Cond.Value
		}
		if act := mustEval(t, prog, prog.AuditArch, nr, args...); act != ActAllow {
			t.Errorf("%s = %s, want allow", name, act)
		}
	}
}

func TestForbiddenNamesKilled(t *testing.T) {
	prog := compileOrSkip(t, policy.Lenient())
	for _, name := range policy.Forbidden() {
		nr, ok := SyscallNumber(name)
		if !ok {
			continue
		}
		if act := mustEval(t, prog, prog.AuditArch, nr); act != ActKillProcess {
			t.Errorf("%s = %s, want kill-process", name, act)
		}
	}
}

func TestStrictKillsSpawn(t *testing.T) {
	prog := compileOrSkip(t, policy.Strict())
	for _, name := range []string{"clone", "clone3", "vfork", "wait4", "unlink", "shmget"} {
		nr, ok := SyscallNumber(name)
		if !ok {
			continue
		}
		if act := mustEval(t, prog, prog.AuditArch, nr); act != ActKillProcess {
			t.Errorf("%s = %s, want kill-process", name, act)
		}
	}
}

func TestForeignArchKilled(t *testing.T) {
	prog := compileOrSkip(t, policy.Lenient())
	nr, ok := SyscallNumber("read")
	if !ok {
		t.Fatal("read has no number")
	}
	for _, arch := range []uint32{0, 0x40000003, 0xc00000b7, 0xc000003e} {
		if arch == prog.AuditArch {
			continue
		}
		if act := mustEval(t, prog, arch, nr); act != ActKillProcess {
			t.Errorf("arch %#x: read = %s, want kill-process", arch, act)
		}
	}
}

func TestX32Killed(t *testing.T) {
	if runtime.GOARCH != "amd64" {
		t.Skip("x32 only exists on amd64")
	}
	prog := compileOrSkip(t, policy.Lenient())
	nr, _ := SyscallNumber("read")
	if act := mustEval(t, prog, prog.AuditArch, nr|x32SyscallBit); act != ActKillProcess {
		t.Errorf("x32 read = %s, want kill-process", act)
	}
}

func TestPrlimitOwnProcessOnly(t *testing.T) {
	prog := compileOrSkip(t, policy.Lenient())
	nr, ok := SyscallNumber("prlimit64")
	if !ok {
		t.Skip("prlimit64 not on this arch")
	}
	tests := []struct {
		pid  uint64
		want Action
	}{
		{0, ActAllow},
		{1, ActKillProcess},
		{1 << 32, ActKillProcess},
		{^uint64(0), ActKillProcess},
	}
	for _, tt := range tests {
		if act := mustEval(t, prog, prog.AuditArch, nr, tt.pid, 7); act != tt.want {
			t.Errorf("prlimit64(%#x) = %s, want %s", tt.pid, act, tt.want)
		}
	}
}

func TestUnlistedKilled(t *testing.T) {
	prog := compileOrSkip(t, policy.Lenient())
	if act := mustEval(t, prog, prog.AuditArch, 4000); act != ActKillProcess {
		t.Errorf("syscall 4000 = %s, want kill-process", act)
	}
}

func TestSockFprog(t *testing.T) {
	prog := compileOrSkip(t, policy.Strict())
	fprog := prog.SockFprog()
	if int(fprog.Len) != len(prog.Raw) {
		t.Errorf("Len = %d, want %d", fprog.Len, len(prog.Raw))
	}
	if fprog.Filter.Code != prog.Raw[0].Op || fprog.Filter.K != prog.Raw[0].K {
		t.Error("first instruction differs")
	}
	if !strings.Contains(prog.Disassemble(), "0000: ") {
		t.Error("Disassemble printed nothing")
	}
	if prog.Backend == "libseccomp" && prog.PFC == "" {
		t.Error("libseccomp backend produced no pfc")
	}
}

func TestDecodeFilter(t *testing.T) {
	if _, err := decodeFilter(make([]byte, 12)); err == nil {
		t.Error("decodeFilter accepted a truncated entry")
	}
	raw, err := decodeFilter(make([]byte, 16))
	if err != nil || len(raw) != 2 {
		t.Errorf("decodeFilter = %v, %v", raw, err)
	}
}
