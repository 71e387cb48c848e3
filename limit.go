package main

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/sdibtacm/seclaunch/mods/policy"
)

// limitFlags collects repeated -l name=value overrides. The value is one
// number or size for both soft and hard, or soft/hard.
type limitFlags []policy.Limit

func (f *limitFlags) String() string {
	parts := make([]string, 0, len(*f))
	for _, l := range *f {
		parts = append(parts, l.String())
	}
	return strings.Join(parts, ",")
}

func (f *limitFlags) Set(v string) error {
	l, err := parseLimitFlag(v)
	if err != nil {
		return err
	}
	*f = append(*f, l)
	return nil
}

func (f *limitFlags) Type() string {
	return "name=value"
}

func parseLimitFlag(v string) (policy.Limit, error) {
	name, value, ok := strings.Cut(v, "=")
	if !ok || name == "" || value == "" {
		return policy.Limit{}, errors.Errorf("%q: want name=value", v)
	}
	soft, hard, ok := strings.Cut(value, "/")
	if !ok {
		hard = soft
	}
	return policy.ParseLimit(policy.Resource(strings.ToLower(strings.TrimSpace(name))), soft, hard)
}
