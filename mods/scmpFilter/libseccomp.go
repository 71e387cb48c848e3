//go:build linux && cgo

package scmpFilter

import (
	"io"
	"os"

	"github.com/pkg/errors"
	seccomp "github.com/seccomp/libseccomp-golang"
	"golang.org/x/sys/unix"

	"github.com/sdibtacm/seclaunch/mods/policy"
)

const Backend = "libseccomp"

func syscallNumber(name string) (int, bool) {
	sc, err := seccomp.GetSyscallFromName(name)
	if err != nil {
		return 0, false
	}
	// libseccomp hands out negative pseudo numbers for names that only
	// exist on other architectures.
	if int(sc) < 0 {
		return 0, false
	}
	return int(sc), true
}

func compile(p *policy.Policy, prog *Program) error {
	filter, err := seccomp.NewFilter(seccomp.ActKillProcess)
	if err != nil {
		return errors.Wrap(err, "new filter")
	}
	defer filter.Release()

	if err = filter.SetBadArchAction(seccomp.ActKillProcess); err != nil {
		return errors.Wrap(err, "bad arch action")
	}

	for _, s := range p.Syscalls {
		nr, ok := syscallNumber(s.Name)
		if !ok {
			prog.Skipped = append(prog.Skipped, s.Name)
			continue
		}
		call := seccomp.ScmpSyscall(nr)
		if s.Cond == nil {
			err = filter.AddRule(call, seccomp.ActAllow)
		} else {
			var cond seccomp.ScmpCondition
			cond, err = seccomp.MakeCondition(s.Cond.Arg, seccomp.CompareEqual, s.Cond.Value)
			if err == nil {
				err = filter.AddRuleConditional(call, seccomp.ActAllow, []seccomp.ScmpCondition{cond})
			}
		}
		if err != nil {
			return errors.Wrapf(err, "allow %s", s)
		}
	}

	bpfFile, err := memfd("seclaunch-bpf")
	if err != nil {
		return err
	}
	defer bpfFile.Close()
	if err = filter.ExportBPF(bpfFile); err != nil {
		return errors.Wrap(err, "export bpf")
	}
	data, err := readBack(bpfFile)
	if err != nil {
		return err
	}
	if prog.Raw, err = decodeFilter(data); err != nil {
		return err
	}

	pfcFile, err := memfd("seclaunch-pfc")
	if err != nil {
		return err
	}
	defer pfcFile.Close()
	if err = filter.ExportPFC(pfcFile); err != nil {
		return errors.Wrap(err, "export pfc")
	}
	pfc, err := readBack(pfcFile)
	if err != nil {
		return err
	}
	prog.PFC = string(pfc)
	return nil
}

// memfd returns an anonymous in-memory file. A blocking descriptor handed
// to os.NewFile is not registered with the runtime poller.
func memfd(name string) (*os.File, error) {
	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC)
	if err != nil {
		return nil, errors.Wrap(err, "memfd_create")
	}
	return os.NewFile(uintptr(fd), name), nil
}

func readBack(f *os.File) ([]byte, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "seek %s", f.Name())
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", f.Name())
	}
	return data, nil
}
