//go:build windows

package proc

import "github.com/sysprims-dev/sysprims"

// ListFds has no Windows implementation: there is no portable handle
// enumeration API exposed to unprivileged callers without NtQuerySystemInformation,
// which this package does not wrap. Returns [sysprims.ErrNotSupported].
func ListFds(pid uint32, filter *FdFilter) (*FdSnapshot, error) {
	return nil, &sysprims.Error{Kind: sysprims.ErrNotSupported, Op: "ListFds", Msg: "file descriptor enumeration is not supported on windows"}
}
