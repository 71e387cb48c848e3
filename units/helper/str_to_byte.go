package helper

import (
	"strconv"
	"strings"

	"github.com/docker/go-units"
	"github.com/pkg/errors"
)

// Unlimited mirrors RLIM_INFINITY.
const Unlimited = ^uint64(0)

// StrToBytes parses a size such as "10MiB", "512k" or "1048576".
// Units are binary (1k = 1024). "unlimited" and "infinity" yield Unlimited.
func StrToBytes(str string) (uint64, error) {
	s := strings.TrimSpace(str)
	if isUnlimited(s) {
		return Unlimited, nil
	}
	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid size %q", str)
	}
	if n < 0 {
		return 0, errors.Errorf("invalid size %q: negative", str)
	}
	return uint64(n), nil
}

// StrToCount parses a plain non-negative count, accepting the same
// unlimited spellings as StrToBytes.
func StrToCount(str string) (uint64, error) {
	s := strings.TrimSpace(str)
	if isUnlimited(s) {
		return Unlimited, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid count %q", str)
	}
	return n, nil
}

// BytesToStr is the inverse of StrToBytes for display.
func BytesToStr(n uint64) string {
	if n == Unlimited {
		return "unlimited"
	}
	if n < 1024 {
		return strconv.FormatUint(n, 10)
	}
	return units.BytesSize(float64(n))
}

func isUnlimited(s string) bool {
	switch strings.ToLower(s) {
	case "unlimited", "infinity", "inf":
		return true
	}
	return false
}
