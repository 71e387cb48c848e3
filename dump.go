//go:build linux

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/sdibtacm/seclaunch/mods/exec"
	"github.com/sdibtacm/seclaunch/mods/policy"
	"github.com/sdibtacm/seclaunch/mods/scmpFilter"
)

var dumpFormats = []string{"text", "pfc", "bpf", "oci"}

// dump writes the resolved policy in the given format.
func dump(w io.Writer, format string, p *policy.Policy) error {
	switch format {
	case "text":
		prog, err := compile(p)
		if err != nil {
			return err
		}
		dumpText(w, p, prog)
		return nil
	case "pfc":
		prog, err := compile(p)
		if err != nil {
			return err
		}
		if prog.PFC == "" {
			return exec.UsageError("dump", errors.Errorf("pfc output needs the libseccomp backend, this build uses %s", prog.Backend))
		}
		_, err = io.WriteString(w, prog.PFC)
		return err
	case "bpf":
		prog, err := compile(p)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, prog.Disassemble())
		return err
	case "oci":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p.OCI())
	}
	return exec.UsageError("dump", errors.Errorf("unknown format %q, want one of %s", format, strings.Join(dumpFormats, ", ")))
}

func compile(p *policy.Policy) (*scmpFilter.Program, error) {
	prog, err := scmpFilter.Compile(p)
	if err != nil {
		return nil, &exec.Error{Kind: exec.KindFilter, Helper: "compile", Err: err}
	}
	return prog, nil
}

func dumpText(w io.Writer, p *policy.Policy, prog *scmpFilter.Program) {
	fmt.Fprintf(w, "policy: %s\n", p.Name)
	fmt.Fprintf(w, "stdin:  %s\n", p.Stdin)
	fmt.Fprintf(w, "filter: %s backend, %s, %d instructions\n", prog.Backend, prog.Arch, len(prog.Raw))
	fmt.Fprintln(w, "limits:")
	for _, l := range p.Limits {
		fmt.Fprintf(w, "  %s\n", l)
	}
	fmt.Fprintln(w, "syscalls:")
	for _, s := range p.Syscalls {
		line := fmt.Sprintf("  %-20s %-9s %s", s, s.Class, strings.Join(s.Runtimes, ","))
		if s.Note != "" {
			line += "  # " + s.Note
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	if len(prog.Skipped) > 0 {
		fmt.Fprintf(w, "not on %s: %s\n", prog.Arch, strings.Join(prog.Skipped, " "))
	}
}
