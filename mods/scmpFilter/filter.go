//go:build linux

// Package scmpFilter compiles a syscall policy into a seccomp BPF program
// and installs it on the calling thread.
//
// Two backends produce the program. Builds with cgo use libseccomp, builds
// without it assemble the program directly. Both emit the same shape:
// foreign architectures and unlisted syscalls kill the process.
package scmpFilter

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/bpf"
	"golang.org/x/sys/unix"

	"github.com/sdibtacm/seclaunch/g"
	"github.com/sdibtacm/seclaunch/mods/policy"
	"github.com/sdibtacm/seclaunch/units/helper"
)

// Action is the action part of a seccomp return value.
type Action uint32

const (
	ActKillProcess Action = 0x80000000
	ActAllow       Action = 0x7fff0000

	retActionMask = 0xffff0000

	// BPF_MAXINSNS
	maxInstructions = 4096
)

func (a Action) String() string {
	switch a {
	case ActKillProcess:
		return "kill-process"
	case ActAllow:
		return "allow"
	}
	return fmt.Sprintf("action(%#x)", uint32(a))
}

// Program is a compiled filter.
type Program struct {
	Policy    string
	Backend   string
	Arch      string
	AuditArch uint32
	Raw       []bpf.RawInstruction
	// Skipped lists allowlist names with no number on this architecture.
	Skipped []string
	// PFC is libseccomp's pseudo-C rendering; empty for the bpf backend.
	PFC string
}

// Compile builds the filter for p with the backend this binary was built
// with.
func Compile(p *policy.Policy) (*Program, error) {
	name, audit, ok := NativeArch()
	if !ok {
		return nil, errors.Wrap(ErrUnavailable, "unsupported architecture")
	}
	prog := &Program{Policy: p.Name, Backend: Backend, Arch: name, AuditArch: audit}
	if err := compile(p, prog); err != nil {
		return nil, errors.Wrapf(err, "compile %s filter", Backend)
	}
	if len(prog.Raw) == 0 {
		return nil, errors.New("compiled filter is empty")
	}
	if len(prog.Raw) > maxInstructions {
		return nil, errors.Errorf("compiled filter has %d instructions, the kernel takes %d", len(prog.Raw), maxInstructions)
	}
	if len(prog.Skipped) > 0 {
		g.GetLog().Debug("not on {}: {}", name, strings.Join(prog.Skipped, " "))
	}
	g.GetLog().Debug("compiled {} filter for {}: {} instructions", Backend, p.Name, len(prog.Raw))
	return prog, nil
}

// SyscallNumber resolves name on the native architecture.
func SyscallNumber(name string) (int, bool) {
	return syscallNumber(name)
}

// SockFprog converts the program for prctl(PR_SET_SECCOMP).
func (p *Program) SockFprog() *unix.SockFprog {
	filter := make([]unix.SockFilter, len(p.Raw))
	for i, ins := range p.Raw {
		filter[i] = unix.SockFilter{Code: ins.Op, Jt: ins.Jt, Jf: ins.Jf, K: ins.K}
	}
	return &unix.SockFprog{Len: uint16(len(filter)), Filter: &filter[0]}
}

// Evaluate runs the program against one syscall the way the kernel would
// and returns the resulting action.
func (p *Program) Evaluate(arch uint32, nr int, args ...uint64) (Action, error) {
	if len(args) > 6 {
		return 0, errors.Errorf("%d arguments, seccomp_data holds 6", len(args))
	}
	insts, ok := bpf.Disassemble(p.Raw)
	if !ok {
		return 0, errors.New("program contains instructions the VM cannot run")
	}
	vm, err := bpf.NewVM(insts)
	if err != nil {
		return 0, errors.Wrap(err, "load program")
	}
	ret, err := vm.Run(seccompData(arch, nr, args))
	if err != nil {
		return 0, errors.Wrap(err, "run program")
	}
	return Action(uint32(ret) & retActionMask), nil
}

// seccompData lays out a struct seccomp_data. The kernel loads each
// 32-bit word in host order; the VM loads big-endian, so each word is
// stored big-endian at its host offset.
func seccompData(arch uint32, nr int, args []uint64) []byte {
	data := make([]byte, offArgs+8*6)
	binary.BigEndian.PutUint32(data[offNr:], uint32(nr))
	binary.BigEndian.PutUint32(data[offArch:], arch)
	for i, v := range args {
		lo, hi := argOffsets(uint(i))
		binary.BigEndian.PutUint32(data[lo:], uint32(v))
		binary.BigEndian.PutUint32(data[hi:], uint32(v>>32))
	}
	return data
}

// Disassemble renders the program one instruction per line.
func (p *Program) Disassemble() string {
	insts, _ := bpf.Disassemble(p.Raw)
	var b strings.Builder
	for i, ins := range insts {
		fmt.Fprintf(&b, "%04d: %v\n", i, ins)
	}
	return b.String()
}

// decodeFilter reads struct sock_filter entries as libseccomp writes them,
// in host byte order.
func decodeFilter(data []byte) ([]bpf.RawInstruction, error) {
	if len(data)%8 != 0 {
		return nil, errors.Errorf("filter size %d is not a multiple of 8", len(data))
	}
	order := helper.NativeEndian()
	raw := make([]bpf.RawInstruction, len(data)/8)
	for i := range raw {
		b := data[i*8 : i*8+8]
		raw[i] = bpf.RawInstruction{
			Op: order.Uint16(b[0:2]),
			Jt: b[2],
			Jf: b[3],
			K:  order.Uint32(b[4:8]),
		}
	}
	return raw, nil
}
