//go:build linux && !cgo

package scmpFilter

import (
	"runtime"

	"github.com/elastic/go-seccomp-bpf/arch"
	"github.com/pkg/errors"
	"golang.org/x/net/bpf"

	"github.com/sdibtacm/seclaunch/mods/policy"
)

const Backend = "bpf"

func syscallNumber(name string) (int, bool) {
	info, err := arch.GetInfo("")
	if err != nil {
		return 0, false
	}
	nr, ok := info.SyscallNames[name]
	return nr, ok
}

// compile assembles
//
//	ld  [arch]; jeq native, +1; ret KILL
//	ld  [nr];  (amd64) jge x32, ret KILL
//	per entry:  jeq nr, +0, +1; ret ALLOW
//	or, with an argument condition:
//	            jeq nr, +0, +6; ld [lo]; jeq lo, +0, +3; ld [hi]; jeq hi, +0, +1; ret ALLOW; ret KILL
//	ret KILL
func compile(p *policy.Policy, prog *Program) error {
	info, err := arch.GetInfo("")
	if err != nil {
		return errors.Wrap(err, "syscall table")
	}

	kill := bpf.RetConstant{Val: uint32(ActKillProcess)}
	allow := bpf.RetConstant{Val: uint32(ActAllow)}

	insts := []bpf.Instruction{
		bpf.LoadAbsolute{Off: offArch, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: prog.AuditArch, SkipTrue: 1},
		kill,
		bpf.LoadAbsolute{Off: offNr, Size: 4},
	}
	if runtime.GOARCH == "amd64" {
		insts = append(insts,
			bpf.JumpIf{Cond: bpf.JumpGreaterOrEqual, Val: x32SyscallBit, SkipFalse: 1},
			kill,
		)
	}

	for _, s := range p.Syscalls {
		nr, ok := info.SyscallNames[s.Name]
		if !ok {
			prog.Skipped = append(prog.Skipped, s.Name)
			continue
		}
		if s.Cond == nil {
			insts = append(insts,
				bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(nr), SkipFalse: 1},
				allow,
			)
			continue
		}
		lo, hi := argOffsets(s.Cond.Arg)
		insts = append(insts,
			bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(nr), SkipFalse: 6},
			bpf.LoadAbsolute{Off: lo, Size: 4},
			bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(s.Cond.Value), SkipFalse: 3},
			bpf.LoadAbsolute{Off: hi, Size: 4},
			bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(s.Cond.Value >> 32), SkipFalse: 1},
			allow,
			kill,
		)
	}
	insts = append(insts, kill)

	raw, err := bpf.Assemble(insts)
	if err != nil {
		return errors.Wrap(err, "assemble")
	}
	prog.Raw = raw
	return nil
}
