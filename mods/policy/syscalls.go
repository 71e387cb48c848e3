package policy

// Runtime tags used in the allowlist table.
const (
	rtGeneral = "general"
	rtC       = "c"
	rtJava    = "java"
	rtPython  = "python"
	rtRuby    = "ruby"
	rtGlibc   = "glibc"
	rtGo      = "go"
)

func rt(tags ...string) []string { return tags }

// allowlist is the lenient table. Each entry records which runtimes were
// observed calling it; the strict preset is derived by dropping classes.
// Names that do not exist on the native architecture are skipped when the
// filter is compiled.
var allowlist = []Syscall{
	// memory
	{Name: "mmap", Class: ClassMemory, Runtimes: rt(rtGeneral), Note: "loader and every allocator"},
	{Name: "mprotect", Class: ClassMemory, Runtimes: rt(rtGeneral), Note: "loader relro, JIT pages"},
	{Name: "munmap", Class: ClassMemory, Runtimes: rt(rtGeneral)},
	{Name: "brk", Class: ClassMemory, Runtimes: rt(rtGeneral), Note: "malloc arena"},
	{Name: "mremap", Class: ClassMemory, Runtimes: rt(rtJava), Note: "realloc of large blocks"},
	{Name: "msync", Class: ClassMemory, Runtimes: rt(rtJava), Note: "hsperfdata mapping"},
	{Name: "mincore", Class: ClassMemory, Runtimes: rt(rtJava), Note: "stack guard probing"},
	{Name: "madvise", Class: ClassMemory, Runtimes: rt(rtJava, rtGo), Note: "heap release"},

	// basic I/O
	{Name: "read", Class: ClassIO, Runtimes: rt(rtGeneral)},
	{Name: "write", Class: ClassIO, Runtimes: rt(rtGeneral)},
	{Name: "open", Class: ClassIO, Runtimes: rt(rtGeneral), Note: "legacy entry point, absent on arm64"},
	{Name: "openat", Class: ClassIO, Runtimes: rt(rtPython, rtGlibc), Note: "glibc routes open() here"},
	{Name: "close", Class: ClassIO, Runtimes: rt(rtGeneral)},
	{Name: "lseek", Class: ClassIO, Runtimes: rt(rtGeneral)},
	{Name: "pread64", Class: ClassIO, Runtimes: rt(rtGlibc), Note: "loader reads ELF notes"},
	{Name: "pwrite64", Class: ClassIO, Runtimes: rt(rtGeneral)},
	{Name: "readv", Class: ClassIO, Runtimes: rt(rtGeneral)},
	{Name: "writev", Class: ClassIO, Runtimes: rt(rtGeneral), Note: "stdio flush, assertion messages"},
	{Name: "pipe", Class: ClassIO, Runtimes: rt(rtGeneral)},
	{Name: "pipe2", Class: ClassIO, Runtimes: rt(rtGlibc, rtGo), Note: "pipe() on newer libcs"},
	{Name: "dup", Class: ClassIO, Runtimes: rt(rtGeneral)},
	{Name: "dup2", Class: ClassIO, Runtimes: rt(rtJava)},
	{Name: "dup3", Class: ClassIO, Runtimes: rt(rtGlibc), Note: "dup2() on arm64"},
	{Name: "fcntl", Class: ClassIO, Runtimes: rt(rtGeneral), Note: "close-on-exec and status flags"},
	{Name: "ioctl", Class: ClassIO, Runtimes: rt(rtGeneral), Note: "isatty via TCGETS"},
	{Name: "select", Class: ClassIO, Runtimes: rt(rtGeneral)},
	{Name: "pselect6", Class: ClassIO, Runtimes: rt(rtGlibc), Note: "select() on arm64"},
	{Name: "poll", Class: ClassIO, Runtimes: rt(rtGeneral)},
	{Name: "ppoll", Class: ClassIO, Runtimes: rt(rtGlibc), Note: "poll() on arm64"},
	{Name: "ftruncate", Class: ClassIO, Runtimes: rt(rtJava)},
	{Name: "getdents", Class: ClassIO, Runtimes: rt(rtGeneral)},
	{Name: "getdents64", Class: ClassIO, Runtimes: rt(rtGlibc, rtGo), Note: "readdir()"},

	// metadata queries
	{Name: "stat", Class: ClassMetadata, Runtimes: rt(rtGeneral)},
	{Name: "fstat", Class: ClassMetadata, Runtimes: rt(rtGeneral)},
	{Name: "lstat", Class: ClassMetadata, Runtimes: rt(rtGeneral)},
	{Name: "newfstatat", Class: ClassMetadata, Runtimes: rt(rtGlibc), Note: "stat family since glibc 2.33"},
	{Name: "statx", Class: ClassMetadata, Runtimes: rt(rtGlibc)},
	{Name: "access", Class: ClassMetadata, Runtimes: rt(rtGeneral), Note: "loader checks ld.so.preload"},
	{Name: "faccessat", Class: ClassMetadata, Runtimes: rt(rtGlibc)},
	{Name: "faccessat2", Class: ClassMetadata, Runtimes: rt(rtGlibc)},
	{Name: "readlink", Class: ClassMetadata, Runtimes: rt(rtGeneral), Note: "/proc/self/exe"},
	{Name: "readlinkat", Class: ClassMetadata, Runtimes: rt(rtGlibc, rtGo)},
	{Name: "getcwd", Class: ClassMetadata, Runtimes: rt(rtJava)},
	{Name: "fchdir", Class: ClassMetadata, Runtimes: rt(rtJava)},
	{Name: "sysinfo", Class: ClassMetadata, Runtimes: rt(rtPython, rtGlibc), Note: "qsort and sysconf(_SC_PHYS_PAGES) at startup"},

	// filesystem writes
	{Name: "mkdir", Class: ClassFSWrite, Runtimes: rt(rtJava), Note: "hsperfdata directory"},
	{Name: "mkdirat", Class: ClassFSWrite, Runtimes: rt(rtJava, rtGlibc)},
	{Name: "link", Class: ClassFSWrite, Runtimes: rt(rtC), Note: "compiler temporaries"},
	{Name: "unlink", Class: ClassFSWrite, Runtimes: rt(rtJava), Note: "javac hangs without it"},
	{Name: "unlinkat", Class: ClassFSWrite, Runtimes: rt(rtJava, rtGlibc)},
	{Name: "symlink", Class: ClassFSWrite, Runtimes: rt(rtC)},
	{Name: "chmod", Class: ClassFSWrite, Runtimes: rt(rtC)},
	{Name: "lchown", Class: ClassFSWrite, Runtimes: rt(rtC)},
	{Name: "umask", Class: ClassFSWrite, Runtimes: rt(rtC)},

	// process lifecycle
	{Name: "clone", Class: ClassProcess, Runtimes: rt(rtJava), Note: "threads; bounded by nproc"},
	{Name: "clone3", Class: ClassProcess, Runtimes: rt(rtGlibc), Note: "pthread_create since glibc 2.34"},
	{Name: "vfork", Class: ClassProcess, Runtimes: rt(rtC), Note: "compiler driver"},
	{Name: "execve", Class: ClassProcess, Runtimes: rt(rtGeneral), Note: "the launch itself"},
	{Name: "wait4", Class: ClassProcess, Runtimes: rt(rtJava)},
	{Name: "exit", Class: ClassProcess, Runtimes: rt(rtGeneral)},
	{Name: "exit_group", Class: ClassProcess, Runtimes: rt(rtPython)},

	// thread bookkeeping
	{Name: "gettid", Class: ClassThread, Runtimes: rt(rtJava)},
	{Name: "set_tid_address", Class: ClassThread, Runtimes: rt(rtPython)},
	{Name: "set_robust_list", Class: ClassThread, Runtimes: rt(rtPython)},
	{Name: "get_robust_list", Class: ClassThread, Runtimes: rt(rtPython, rtJava)},
	{Name: "rseq", Class: ClassThread, Runtimes: rt(rtGlibc), Note: "registered at startup since glibc 2.35"},
	{Name: "arch_prctl", Class: ClassThread, Runtimes: rt(rtPython), Note: "TLS setup, x86 only"},
	{Name: "sched_yield", Class: ClassThread, Runtimes: rt(rtGeneral)},
	{Name: "sched_getaffinity", Class: ClassThread, Runtimes: rt(rtRuby)},

	// synchronization
	{Name: "futex", Class: ClassSync, Runtimes: rt(rtGeneral)},

	// signals
	{Name: "rt_sigaction", Class: ClassSignal, Runtimes: rt(rtGeneral)},
	{Name: "rt_sigprocmask", Class: ClassSignal, Runtimes: rt(rtGeneral)},
	{Name: "rt_sigreturn", Class: ClassSignal, Runtimes: rt(rtGeneral)},
	{Name: "sigaltstack", Class: ClassSignal, Runtimes: rt(rtRuby, rtGo)},
	{Name: "pause", Class: ClassSignal, Runtimes: rt(rtGeneral)},
	{Name: "alarm", Class: ClassSignal, Runtimes: rt(rtGeneral)},
	{Name: "getitimer", Class: ClassSignal, Runtimes: rt(rtGeneral)},
	{Name: "setitimer", Class: ClassSignal, Runtimes: rt(rtGeneral)},

	// clocks
	{Name: "nanosleep", Class: ClassTime, Runtimes: rt(rtGeneral)},
	{Name: "clock_gettime", Class: ClassTime, Runtimes: rt(rtJava), Note: "vDSO fallback"},
	{Name: "clock_getres", Class: ClassTime, Runtimes: rt(rtJava)},
	{Name: "clock_nanosleep", Class: ClassTime, Runtimes: rt(rtGeneral)},
	{Name: "gettimeofday", Class: ClassTime, Runtimes: rt(rtJava)},

	// identity, read-only
	{Name: "getpid", Class: ClassIdentity, Runtimes: rt(rtJava)},
	{Name: "getppid", Class: ClassIdentity, Runtimes: rt(rtJava)},
	{Name: "getpgrp", Class: ClassIdentity, Runtimes: rt(rtJava)},
	{Name: "getuid", Class: ClassIdentity, Runtimes: rt(rtPython)},
	{Name: "getgid", Class: ClassIdentity, Runtimes: rt(rtPython)},
	{Name: "geteuid", Class: ClassIdentity, Runtimes: rt(rtPython)},
	{Name: "getegid", Class: ClassIdentity, Runtimes: rt(rtPython)},
	{Name: "uname", Class: ClassIdentity, Runtimes: rt(rtJava)},

	// resource queries
	{Name: "getrlimit", Class: ClassResource, Runtimes: rt(rtPython)},
	{Name: "setrlimit", Class: ClassResource, Runtimes: rt(rtJava), Note: "can only lower below the installed hard limits"},
	{Name: "prlimit64", Class: ClassResource, Runtimes: rt(rtGlibc, rtGo),
		Note: "get/setrlimit wrappers and exec; own process only", Cond: &ArgEqual{Arg: 0, Value: 0}},
	{Name: "getrusage", Class: ClassResource, Runtimes: rt(rtRuby)},

	// System V shared memory
	{Name: "shmget", Class: ClassIPC, Runtimes: rt(rtJava)},
	{Name: "shmat", Class: ClassIPC, Runtimes: rt(rtJava)},
	{Name: "shmctl", Class: ClassIPC, Runtimes: rt(rtJava)},

	{Name: "getrandom", Class: ClassRandom, Runtimes: rt(rtGlibc, rtPython), Note: "malloc tcache seed, hash randomization"},
}

// forbidden may never appear on an allowlist, whatever the preset or
// policy file says.
var forbidden = map[string]string{
	"socket":            "network",
	"socketpair":        "network",
	"connect":           "network",
	"bind":              "network",
	"listen":            "network",
	"accept":            "network",
	"accept4":           "network",
	"sendto":            "network",
	"recvfrom":          "network",
	"sendmsg":           "network",
	"recvmsg":           "network",
	"sendmmsg":          "network",
	"recvmmsg":          "network",
	"shutdown":          "network",
	"setuid":            "credentials",
	"setgid":            "credentials",
	"setreuid":          "credentials",
	"setregid":          "credentials",
	"setresuid":         "credentials",
	"setresgid":         "credentials",
	"setfsuid":          "credentials",
	"setfsgid":          "credentials",
	"setgroups":         "credentials",
	"capset":            "capabilities",
	"mount":             "namespaces",
	"umount2":           "namespaces",
	"pivot_root":        "namespaces",
	"chroot":            "namespaces",
	"unshare":           "namespaces",
	"setns":             "namespaces",
	"init_module":       "modules",
	"finit_module":      "modules",
	"delete_module":     "modules",
	"ptrace":            "tracing",
	"process_vm_readv":  "tracing",
	"process_vm_writev": "tracing",
	"perf_event_open":   "tracing",
	"bpf":               "kernel",
	"kexec_load":        "kernel",
	"kexec_file_load":   "kernel",
	"reboot":            "kernel",
	"swapon":            "kernel",
	"swapoff":           "kernel",
	"keyctl":            "kernel",
	"add_key":           "kernel",
	"request_key":       "kernel",
}

// IsForbidden reports whether name can never be allowlisted.
func IsForbidden(name string) bool {
	_, ok := forbidden[name]
	return ok
}

// ForbiddenReason returns the category a forbidden syscall belongs to.
func ForbiddenReason(name string) string {
	return forbidden[name]
}

// Forbidden lists the forbidden syscall names.
func Forbidden() []string {
	names := make([]string, 0, len(forbidden))
	for name := range forbidden {
		names = append(names, name)
	}
	return names
}

// Catalog returns the full allowlist table that the presets draw from.
func Catalog() []Syscall {
	return (&Policy{Syscalls: allowlist}).Clone().Syscalls
}

// CatalogEntry returns the table entry for name, so that policy files can
// add a syscall by name and inherit its class and notes.
func CatalogEntry(name string) (Syscall, bool) {
	s, ok := (&Policy{Syscalls: allowlist}).Lookup(name)
	return s.clone(), ok
}
