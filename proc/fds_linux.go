//go:build linux

package proc

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sysprims-dev/sysprims"
)

// ListFds walks /proc/<pid>/fd, classifying each entry by the shape of
// its symlink target ("socket:[...]" -> socket, "pipe:[...]" -> pipe,
// "anon_inode:..." -> anon, otherwise a regular path).
func ListFds(pid uint32, filter *FdFilter) (*FdSnapshot, error) {
	if _, err := sysprims.ValidatePID(uint64(pid)); err != nil {
		return nil, err
	}
	dir := fmt.Sprintf("/proc/%d/fd", pid)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &sysprims.Error{Kind: sysprims.ErrNotFound, Op: "ListFds", Msg: "process does not exist", Err: err}
		}
		if os.IsPermission(err) {
			return envelopeFds(pid, nil, []string{"permission denied reading " + dir}), nil
		}
		return nil, &sysprims.Error{Kind: sysprims.ErrSystem, Op: "ListFds", Msg: err.Error(), Err: err}
	}

	var warnings []string
	fds := make([]FdInfo, 0, len(entries))
	for _, e := range entries {
		num, err := strconv.ParseUint(e.Name(), 10, 32)
		if err != nil {
			continue
		}
		target, err := os.Readlink(dir + "/" + e.Name())
		if err != nil {
			warnings = append(warnings, "could not read fd "+e.Name()+": "+err.Error())
			continue
		}
		kind, path := classifyFd(target)
		if !filter.matches(kind) {
			continue
		}
		info := FdInfo{Fd: uint32(num), Kind: kind}
		if path != "" {
			info.Path = &path
		}
		fds = append(fds, info)
	}
	return envelopeFds(pid, fds, warnings), nil
}

func classifyFd(target string) (kind, path string) {
	switch {
	case strings.HasPrefix(target, "socket:["):
		return "socket", ""
	case strings.HasPrefix(target, "pipe:["):
		return "pipe", ""
	case strings.HasPrefix(target, "anon_inode:"):
		return "anon", ""
	default:
		return "file", target
	}
}
