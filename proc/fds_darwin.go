//go:build darwin

package proc

import "github.com/sysprims-dev/sysprims"

// ListFds has no darwin implementation: macOS exposes no procfs, and
// enumerating another process's open files requires libproc's
// proc_pidinfo(PROC_PIDLISTFDS, ...), which this package does not wrap.
// Returns [sysprims.ErrNotSupported] rather than misreporting a live
// process as missing (a bare /proc walk, as on linux, would find no
// directory and mistakenly report ErrNotFound here).
func ListFds(pid uint32, filter *FdFilter) (*FdSnapshot, error) {
	return nil, &sysprims.Error{Kind: sysprims.ErrNotSupported, Op: "ListFds", Msg: "file descriptor enumeration is not supported on darwin"}
}
