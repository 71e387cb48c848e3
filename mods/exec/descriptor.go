//go:build linux

package exec

import (
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/sdibtacm/seclaunch/mods/policy"
)

// SanitizeDescriptors leaves 0, 1 and 2 open, with 2 a duplicate of 1, and
// nothing above 2 that would survive execve.
//
// Only raw descriptor syscalls are used here: opening through package os
// may start the runtime poller, whose descriptors cannot be closed under a
// running runtime. Those are marked close-on-exec instead.
func (c *Cmd) SanitizeDescriptors() error {
	if err := c.expect(StagePrepared, StageDescriptors); err != nil {
		return err
	}

	fds, err := listDescriptors()
	if err != nil {
		c.Logger.Debug("can not list {}, scan up to the descriptor limit: {}", procFd, err)
		fds = scanDescriptors(descriptorCapacity())
	}
	var closed, kept int
	for _, fd := range fds {
		if fd <= 2 {
			continue
		}
		if runtimeOwned(fd) {
			if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFD, unix.FD_CLOEXEC); err != nil && err != unix.EBADF {
				return newError(KindDescriptor, "cloexec "+strconv.Itoa(fd), err)
			}
			kept++
			continue
		}
		if err := unix.Close(fd); err != nil && err != unix.EBADF {
			c.Logger.Debug("close {}: {}", fd, err)
		}
		closed++
	}
	c.Logger.Debug("closed {} descriptors, {} runtime descriptors marked close-on-exec", closed, kept)

	for fd := 0; fd <= 2; fd++ {
		if err := ensureOpen(fd); err != nil {
			return err
		}
	}
	if c.Io.Stdin == policy.StdinNull {
		if err := replaceWithNull(0, unix.O_RDONLY); err != nil {
			return err
		}
	}
	if err := unix.Dup3(1, 2, 0); err != nil {
		return newError(KindDescriptor, "dup stdout to stderr", err)
	}

	c.complete(StageDescriptors)
	return nil
}

// listDescriptors reads /proc/self/fd with raw getdents.
func listDescriptors() ([]int, error) {
	dir, err := unix.Open(procFd, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	defer unix.Close(dir)

	var names []string
	buf := make([]byte, 4096)
	for {
		n, err := unix.Getdents(dir, buf)
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			break
		}
		_, _, names = unix.ParseDirent(buf[:n], -1, names)
	}

	fds := make([]int, 0, len(names))
	for _, name := range names {
		fd, err := strconv.Atoi(name)
		if err != nil || fd == dir {
			continue
		}
		fds = append(fds, fd)
	}
	return fds, nil
}

// scanDescriptors probes every number below capacity.
func scanDescriptors(capacity int) []int {
	var fds []int
	for fd := 3; fd < capacity; fd++ {
		if _, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0); err == nil {
			fds = append(fds, fd)
		}
	}
	return fds
}

// descriptorCapacity is getdtablesize(): the soft RLIMIT_NOFILE.
func descriptorCapacity() int {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return defaultDescriptorCapacity
	}
	if rl.Cur == policy.Unlimited || rl.Cur > 1<<30 {
		return defaultDescriptorCapacity
	}
	return int(rl.Cur)
}

// runtimeOwned reports whether fd must not be closed while the runtime is
// live. Descriptors that cannot be identified count as owned.
func runtimeOwned(fd int) bool {
	link, err := descriptorLink(fd)
	if err != nil {
		return true
	}
	return runtimeDescriptors[link]
}

func descriptorLink(fd int) (string, error) {
	buf := make([]byte, 64)
	n, err := unix.Readlink(procFd+"/"+strconv.Itoa(fd), buf)
	if err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}

// ensureOpen makes fd, one of 0, 1 and 2, refer to something the target
// may inherit. A standard descriptor held by the runtime poller is
// close-on-exec and cannot be replaced under the runtime, so it is refused.
func ensureOpen(fd int) error {
	var st unix.Stat_t
	err := unix.Fstat(fd, &st)
	if err == nil {
		if link, err := descriptorLink(fd); err == nil && runtimeDescriptors[link] {
			return newError(KindDescriptor, "descriptor "+strconv.Itoa(fd),
				errors.Errorf("held by the Go runtime (%s), it was closed when the launcher started", link))
		}
		return nil
	}
	if err != unix.EBADF {
		return newError(KindDescriptor, "fstat "+strconv.Itoa(fd), err)
	}
	mode := unix.O_WRONLY
	if fd == 0 {
		mode = unix.O_RDONLY
	}
	nfd, err := unix.Open(devNull, mode, 0)
	if err != nil {
		return newError(KindDescriptor, "open "+devNull, err)
	}
	if nfd != fd {
		unix.Close(nfd)
		return newError(KindDescriptor, "open "+devNull,
			errors.Errorf("landed on descriptor %d, want %d", nfd, fd))
	}
	return nil
}

func replaceWithNull(fd, mode int) error {
	nfd, err := unix.Open(devNull, mode|unix.O_CLOEXEC, 0)
	if err != nil {
		return newError(KindDescriptor, "open "+devNull, err)
	}
	defer unix.Close(nfd)
	if err := unix.Dup3(nfd, fd, 0); err != nil {
		return newError(KindDescriptor, "dup "+devNull+" to "+strconv.Itoa(fd), err)
	}
	return nil
}
