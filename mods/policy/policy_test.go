package policy

import (
	"strings"
	"testing"
)

func TestPresetsValidate(t *testing.T) {
	for _, name := range Presets() {
		p, err := Preset(name)
		if err != nil {
			t.Fatalf("Preset(%q) failed: %v", name, err)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("preset %s does not validate: %v", name, err)
		}
	}
	if _, err := Preset("paranoid"); err == nil {
		t.Error("Preset(paranoid) succeeded")
	}
}

func TestStrictIsSubsetOfLenient(t *testing.T) {
	lenient, strict := Lenient(), Strict()
	for _, name := range strict.Names() {
		if !lenient.Allows(name) {
			t.Errorf("strict allows %s, lenient does not", name)
		}
	}
	for _, name := range []string{"clone", "clone3", "vfork", "wait4", "unlink", "mkdir", "shmget", "shmat"} {
		if strict.Allows(name) {
			t.Errorf("strict allows %s", name)
		}
	}
	for _, name := range []string{"execve", "exit", "exit_group", "read", "write", "prlimit64", "sysinfo"} {
		if !strict.Allows(name) {
			t.Errorf("strict does not allow %s", name)
		}
	}
}

func TestPresetLimits(t *testing.T) {
	tests := []struct {
		p    *Policy
		r    Resource
		want uint64
	}{
		{Lenient(), "cpu", 5},
		{Lenient(), "fsize", 10 << 20},
		{Lenient(), "nproc", 25},
		{Lenient(), "memlock", 0},
		{Strict(), "nproc", 0},
		{Strict(), "as", 256 << 20},
		{Strict(), "core", 0},
	}
	for _, tt := range tests {
		l, ok := tt.p.Limit(tt.r)
		if !ok {
			t.Errorf("%s: no %s limit", tt.p.Name, tt.r)
			continue
		}
		if l.Soft != tt.want || l.Hard != tt.want {
			t.Errorf("%s: %s = %d/%d, want %d", tt.p.Name, tt.r, l.Soft, l.Hard, tt.want)
		}
	}
	if _, ok := Lenient().Limit("as"); ok {
		t.Error("lenient bounds the address space")
	}
	if Lenient().Stdin != StdinInherit || Strict().Stdin != StdinNull {
		t.Error("unexpected stdin modes")
	}
}

func TestCatalogEntriesNameRuntimes(t *testing.T) {
	for _, s := range Catalog() {
		if len(s.Runtimes) == 0 {
			t.Errorf("%s: no runtimes recorded", s.Name)
		}
		if s.Class == "" {
			t.Errorf("%s: no class", s.Name)
		}
		if IsForbidden(s.Name) {
			t.Errorf("%s is both allowed and forbidden", s.Name)
		}
	}
}

func TestCatalogIsCopied(t *testing.T) {
	c := Catalog()
	c[0].Name = "socket"
	s, ok := CatalogEntry("prlimit64")
	if !ok || s.Cond == nil {
		t.Fatal("prlimit64 is not conditional")
	}
	s.Cond.Value = 42
	if Catalog()[0].Name == "socket" {
		t.Error("Catalog shares its backing array")
	}
	if e, _ := CatalogEntry("prlimit64"); e.Cond.Value != 0 {
		t.Error("CatalogEntry shares its condition")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *Policy)
		want   string
	}{
		{"forbidden", func(p *Policy) { p.Allow(Syscall{Name: "socket"}) }, "forbidden"},
		{"several forbidden", func(p *Policy) {
			p.Allow(Syscall{Name: "ptrace"})
			p.Allow(Syscall{Name: "setuid"})
		}, "ptrace, setuid"},
		{"duplicate", func(p *Policy) { p.Syscalls = append(p.Syscalls, Syscall{Name: "read"}) }, "twice"},
		{"no execve", func(p *Policy) { p.Remove("execve") }, "execve"},
		{"no exit_group", func(p *Policy) { p.Remove("exit_group") }, "exit_group"},
		{"empty", func(p *Policy) { p.Syscalls = nil }, "empty"},
		{"stdin", func(p *Policy) { p.Stdin = "closed" }, "stdin"},
		{"resource", func(p *Policy) { p.SetLimit(Fixed("cores", 1)) }, "unknown resource"},
		{"soft above hard", func(p *Policy) { p.SetLimit(Limit{Resource: "cpu", Soft: 10, Hard: 5}) }, "soft"},
		{"arg index", func(p *Policy) { p.Allow(Syscall{Name: "ioctl", Cond: &ArgEqual{Arg: 6}}) }, "argument index"},
	}
	for _, tt := range tests {
		p := Lenient()
		tt.modify(p)
		err := p.Validate()
		if err == nil {
			t.Errorf("%s: Validate succeeded", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := Lenient()
	c := p.Clone()
	c.Remove("read")
	c.SetLimit(Fixed("cpu", 1))
	if !p.Allows("read") {
		t.Error("Remove on clone changed the original")
	}
	if l, _ := p.Limit("cpu"); l.Hard != 5 {
		t.Error("SetLimit on clone changed the original")
	}
}

func TestLimitString(t *testing.T) {
	tests := []struct {
		l    Limit
		want string
	}{
		{Fixed("cpu", 5), "cpu=5"},
		{Fixed("fsize", 10<<20), "fsize=10MiB"},
		{Fixed("as", Unlimited), "as=unlimited"},
		{Limit{Resource: "nofile", Soft: 256, Hard: 512}, "nofile=256/512"},
	}
	for _, tt := range tests {
		if got := tt.l.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestResourceParse(t *testing.T) {
	if v, err := Resource("fsize").Parse("10MiB"); err != nil || v != 10<<20 {
		t.Errorf("fsize 10MiB = %d, %v", v, err)
	}
	if _, err := Resource("cpu").Parse("10MiB"); err == nil {
		t.Error("cpu accepted a size string")
	}
	if v, err := Resource("nproc").Parse("unlimited"); err != nil || v != Unlimited {
		t.Errorf("nproc unlimited = %d, %v", v, err)
	}
	for _, r := range Resources() {
		if _, ok := r.Number(); !ok {
			t.Errorf("%s has no rlimit number", r)
		}
	}
}
