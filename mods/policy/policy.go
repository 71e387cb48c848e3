// Package policy describes what a launch is allowed to do: the resource
// ceilings, the handling of standard input and the syscall allowlist. A
// Policy is plain data. Installing it is the job of package exec.
package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/sdibtacm/seclaunch/units/helper"
)

// Unlimited is RLIM_INFINITY.
const Unlimited = helper.Unlimited

// StdinMode selects what descriptor 0 refers to when the target starts.
type StdinMode string

const (
	// StdinInherit keeps the invoker's stdin and substitutes the null
	// device only when descriptor 0 is not open.
	StdinInherit StdinMode = "inherit"
	// StdinNull always replaces descriptor 0 with the null device.
	StdinNull StdinMode = "null"
)

func (m StdinMode) Valid() bool {
	return m == StdinInherit || m == StdinNull
}

// Resource names an rlimit kind, using the suffix of RLIMIT_*
// in lower case ("cpu", "nproc", ...).
type Resource string

var resources = map[Resource]int{
	"cpu":        unix.RLIMIT_CPU,
	"fsize":      unix.RLIMIT_FSIZE,
	"data":       unix.RLIMIT_DATA,
	"stack":      unix.RLIMIT_STACK,
	"core":       unix.RLIMIT_CORE,
	"rss":        unix.RLIMIT_RSS,
	"nproc":      unix.RLIMIT_NPROC,
	"nofile":     unix.RLIMIT_NOFILE,
	"memlock":    unix.RLIMIT_MEMLOCK,
	"as":         unix.RLIMIT_AS,
	"locks":      unix.RLIMIT_LOCKS,
	"sigpending": unix.RLIMIT_SIGPENDING,
	"msgqueue":   unix.RLIMIT_MSGQUEUE,
	"nice":       unix.RLIMIT_NICE,
	"rtprio":     unix.RLIMIT_RTPRIO,
	"rttime":     unix.RLIMIT_RTTIME,
}

// byteResources are measured in bytes and accept size strings.
var byteResources = map[Resource]bool{
	"fsize":    true,
	"data":     true,
	"stack":    true,
	"core":     true,
	"rss":      true,
	"memlock":  true,
	"as":       true,
	"msgqueue": true,
}

// Number returns the RLIMIT_* constant.
func (r Resource) Number() (int, bool) {
	n, ok := resources[r]
	return n, ok
}

// IsBytes reports whether the resource is a byte count.
func (r Resource) IsBytes() bool {
	return byteResources[r]
}

// Parse reads a limit value for r. Byte resources take size strings,
// the rest take plain counts (seconds for cpu).
func (r Resource) Parse(s string) (uint64, error) {
	if r.IsBytes() {
		return helper.StrToBytes(s)
	}
	return helper.StrToCount(s)
}

// Format renders v the way Parse reads it.
func (r Resource) Format(v uint64) string {
	if r.IsBytes() {
		return helper.BytesToStr(v)
	}
	if v == Unlimited {
		return "unlimited"
	}
	return fmt.Sprint(v)
}

// Resources lists every known resource name, sorted.
func Resources() []Resource {
	out := make([]Resource, 0, len(resources))
	for r := range resources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Limit is one (soft, hard) ceiling.
type Limit struct {
	Resource Resource
	Soft     uint64
	Hard     uint64
}

// Fixed returns a limit whose soft and hard values are equal, which makes
// the ceiling effective immediately.
func Fixed(r Resource, v uint64) Limit {
	return Limit{Resource: r, Soft: v, Hard: v}
}

func (l Limit) String() string {
	if l.Soft == l.Hard {
		return fmt.Sprintf("%s=%s", l.Resource, l.Resource.Format(l.Hard))
	}
	return fmt.Sprintf("%s=%s/%s", l.Resource, l.Resource.Format(l.Soft), l.Resource.Format(l.Hard))
}

// Class groups allowlist entries by what they give the target.
type Class string

const (
	ClassMemory   Class = "memory"
	ClassIO       Class = "io"
	ClassMetadata Class = "metadata"
	ClassFSWrite  Class = "fs-write"
	ClassProcess  Class = "process"
	ClassThread   Class = "thread"
	ClassSync     Class = "sync"
	ClassSignal   Class = "signal"
	ClassTime     Class = "time"
	ClassIdentity Class = "identity"
	ClassResource Class = "resource"
	ClassIPC      Class = "ipc"
	ClassRandom   Class = "random"
)

// ArgEqual restricts an entry to calls whose argument Arg equals Value.
type ArgEqual struct {
	Arg   uint
	Value uint64
}

// Syscall is one allowlist entry.
type Syscall struct {
	Name     string
	Class    Class
	Runtimes []string // runtimes observed to need the call
	Note     string
	Cond     *ArgEqual
}

func (s Syscall) String() string {
	if s.Cond != nil {
		return fmt.Sprintf("%s(arg%d==%d)", s.Name, s.Cond.Arg, s.Cond.Value)
	}
	return s.Name
}

// Policy is the complete configuration of one launch.
type Policy struct {
	Name     string
	Stdin    StdinMode
	Limits   []Limit
	Syscalls []Syscall
}

// Clone returns a deep copy that can be modified without touching p.
func (p *Policy) Clone() *Policy {
	c := &Policy{
		Name:     p.Name,
		Stdin:    p.Stdin,
		Limits:   append([]Limit(nil), p.Limits...),
		Syscalls: make([]Syscall, len(p.Syscalls)),
	}
	for i, s := range p.Syscalls {
		c.Syscalls[i] = s.clone()
	}
	return c
}

func (s Syscall) clone() Syscall {
	s.Runtimes = append([]string(nil), s.Runtimes...)
	if s.Cond != nil {
		cond := *s.Cond
		s.Cond = &cond
	}
	return s
}

// Allows reports whether name is on the allowlist.
func (p *Policy) Allows(name string) bool {
	_, ok := p.Lookup(name)
	return ok
}

// Lookup returns the allowlist entry for name.
func (p *Policy) Lookup(name string) (Syscall, bool) {
	for _, s := range p.Syscalls {
		if s.Name == name {
			return s, true
		}
	}
	return Syscall{}, false
}

// Names returns the allowlisted syscall names in table order.
func (p *Policy) Names() []string {
	names := make([]string, 0, len(p.Syscalls))
	for _, s := range p.Syscalls {
		names = append(names, s.Name)
	}
	return names
}

// Limit returns the ceiling configured for r.
func (p *Policy) Limit(r Resource) (Limit, bool) {
	for _, l := range p.Limits {
		if l.Resource == r {
			return l, true
		}
	}
	return Limit{}, false
}

// SetLimit replaces the ceiling for l.Resource, or appends it.
func (p *Policy) SetLimit(l Limit) {
	for i := range p.Limits {
		if p.Limits[i].Resource == l.Resource {
			p.Limits[i] = l
			return
		}
	}
	p.Limits = append(p.Limits, l)
}

// Allow adds s to the allowlist, replacing an entry of the same name.
func (p *Policy) Allow(s Syscall) {
	for i := range p.Syscalls {
		if p.Syscalls[i].Name == s.Name {
			p.Syscalls[i] = s
			return
		}
	}
	p.Syscalls = append(p.Syscalls, s)
}

// Remove drops name from the allowlist. It reports whether it was present.
func (p *Policy) Remove(name string) bool {
	for i := range p.Syscalls {
		if p.Syscalls[i].Name == name {
			p.Syscalls = append(p.Syscalls[:i], p.Syscalls[i+1:]...)
			return true
		}
	}
	return false
}

// Validate checks that the policy can be installed as written.
func (p *Policy) Validate() error {
	if !p.Stdin.Valid() {
		return errors.Errorf("policy %s: unknown stdin mode %q", p.Name, p.Stdin)
	}
	seen := make(map[Resource]bool, len(p.Limits))
	for _, l := range p.Limits {
		if _, ok := l.Resource.Number(); !ok {
			return errors.Errorf("policy %s: unknown resource %q", p.Name, l.Resource)
		}
		if seen[l.Resource] {
			return errors.Errorf("policy %s: resource %s listed twice", p.Name, l.Resource)
		}
		seen[l.Resource] = true
		if l.Soft > l.Hard {
			return errors.Errorf("policy %s: %s soft limit above hard limit", p.Name, l.Resource)
		}
	}
	if len(p.Syscalls) == 0 {
		return errors.Errorf("policy %s: empty syscall allowlist", p.Name)
	}
	names := make(map[string]bool, len(p.Syscalls))
	var forbidden []string
	for _, s := range p.Syscalls {
		if s.Name == "" {
			return errors.Errorf("policy %s: allowlist entry without a name", p.Name)
		}
		if names[s.Name] {
			return errors.Errorf("policy %s: syscall %s listed twice", p.Name, s.Name)
		}
		names[s.Name] = true
		if IsForbidden(s.Name) {
			forbidden = append(forbidden, s.Name)
		}
		if s.Cond != nil && s.Cond.Arg > 5 {
			return errors.Errorf("policy %s: %s: argument index %d out of range", p.Name, s.Name, s.Cond.Arg)
		}
	}
	if len(forbidden) > 0 {
		return errors.Errorf("policy %s: forbidden syscalls on allowlist: %s", p.Name, strings.Join(forbidden, ", "))
	}
	for _, required := range []string{"execve", "exit_group"} {
		if !names[required] {
			return errors.Errorf("policy %s: allowlist must contain %s", p.Name, required)
		}
	}
	return nil
}
