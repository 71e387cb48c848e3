package policy

import (
	"bytes"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sdibtacm/seclaunch/g"
)

// File is the on-disk form of a policy.
//
//	name: java
//	inherit: lenient
//	stdin: inherit
//	limits:
//	  cpu: 10
//	  nofile: {soft: 256, hard: 512}
//	syscalls:
//	  add: [sched_getaffinity]
//	  remove: [vfork]
type File struct {
	Name     string                `yaml:"name"`
	Inherit  string                `yaml:"inherit"`
	Stdin    yaml.Node             `yaml:"stdin"`
	Limits   map[string]LimitValue `yaml:"limits"`
	Syscalls SyscallEdits          `yaml:"syscalls"`
}

// stdin reads the stdin key by hand: a bare `null` is YAML's null value
// and would otherwise decode as unset.
func (f *File) stdin() (StdinMode, error) {
	switch f.Stdin.Kind {
	case 0:
		return "", nil
	case yaml.ScalarNode:
		return StdinMode(f.Stdin.Value), nil
	}
	return "", errors.Errorf("line %d: stdin must be inherit or null", f.Stdin.Line)
}

type SyscallEdits struct {
	Add    []string `yaml:"add"`
	Remove []string `yaml:"remove"`
}

// LimitValue holds the unparsed soft and hard values of one limit. A scalar
// sets both.
type LimitValue struct {
	Soft string `yaml:"soft"`
	Hard string `yaml:"hard"`
}

func (v *LimitValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		v.Soft, v.Hard = node.Value, node.Value
		return nil
	case yaml.MappingNode:
		type plain LimitValue
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		*v = LimitValue(p)
		if v.Soft == "" && v.Hard == "" {
			return errors.Errorf("line %d: limit needs soft or hard", node.Line)
		}
		if v.Hard == "" {
			v.Hard = v.Soft
		}
		if v.Soft == "" {
			v.Soft = v.Hard
		}
		return nil
	}
	return errors.Errorf("line %d: limit must be a value or {soft, hard}", node.Line)
}

// LoadFile reads and resolves the policy file at path.
func LoadFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read policy file")
	}
	p, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "policy file %s", path)
	}
	return p, nil
}

// Parse decodes a policy file and resolves it against the presets.
// Unknown keys are rejected.
func Parse(data []byte) (*Policy, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode")
	}
	return f.Resolve()
}

// Resolve builds the policy the file describes. The inherited preset is
// copied, then stdin, limits, additions and removals are applied in that
// order, so a name both added and removed ends up removed.
func (f *File) Resolve() (*Policy, error) {
	log := g.GetLog()

	p := &Policy{Stdin: StdinInherit}
	if f.Inherit != "" {
		base, err := Preset(f.Inherit)
		if err != nil {
			return nil, errors.Wrap(err, "inherit")
		}
		log.Debug("policy inherits preset {}", f.Inherit)
		p = base
	}
	if f.Name != "" {
		p.Name = f.Name
	}
	if p.Name == "" {
		p.Name = "custom"
	}
	stdin, err := f.stdin()
	if err != nil {
		return nil, err
	}
	if stdin != "" {
		p.Stdin = stdin
	}

	keys := make([]string, 0, len(f.Limits))
	for k := range f.Limits {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		l, err := ParseLimit(Resource(k), f.Limits[k].Soft, f.Limits[k].Hard)
		if err != nil {
			return nil, err
		}
		log.Debug("policy {} sets limit {}", p.Name, l)
		p.SetLimit(l)
	}

	for _, name := range f.Syscalls.Add {
		p.Allow(entryFor(name))
	}
	for _, name := range f.Syscalls.Remove {
		if !p.Remove(name) {
			return nil, errors.Errorf("remove %s: not on the allowlist", name)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseLimit builds a limit for r from its textual soft and hard values.
func ParseLimit(r Resource, soft, hard string) (Limit, error) {
	if _, ok := r.Number(); !ok {
		return Limit{}, errors.Errorf("unknown resource %q", r)
	}
	s, err := r.Parse(soft)
	if err != nil {
		return Limit{}, errors.Wrapf(err, "limit %s", r)
	}
	h, err := r.Parse(hard)
	if err != nil {
		return Limit{}, errors.Wrapf(err, "limit %s", r)
	}
	if s > h {
		return Limit{}, errors.Errorf("limit %s: soft %s above hard %s", r, soft, hard)
	}
	return Limit{Resource: r, Soft: s, Hard: h}, nil
}

func entryFor(name string) Syscall {
	if s, ok := CatalogEntry(name); ok {
		return s
	}
	return Syscall{Name: name, Runtimes: []string{"policy"}, Note: "added by policy file"}
}
