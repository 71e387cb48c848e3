package exec

// Stage is a step of the containment sequence. Each stage requires the one
// before it to have completed.
type Stage int

const (
	StageNone Stage = iota
	StagePrepared
	StageDescriptors
	StageLimits
	StageFilter
	StageExec
)

var stageString = []string{
	"not started",
	"prepare",
	"sanitize descriptors",
	"set rlimit",
	"set seccomp filter",
	"exec",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageString) {
		return "unknown stage"
	}
	return stageString[s]
}

const (
	devNull = "/dev/null"
	procFd  = "/proc/self/fd"

	// used when RLIMIT_NOFILE cannot be read or is infinite
	defaultDescriptorCapacity = 1024
)

// link targets of descriptors the Go runtime poller owns
var runtimeDescriptors = map[string]bool{
	"anon_inode:[eventpoll]": true,
	"anon_inode:[eventfd]":   true,
}
