package proc

import "github.com/sysprims-dev/sysprims"

const schemaFds = "sysprims.fd_snapshot.v1"

// FdInfo describes a single open file descriptor.
type FdInfo struct {
	Fd   uint32  `json:"fd"`
	Kind string  `json:"kind"`
	Path *string `json:"path,omitempty"`
}

// FdSnapshot is the outcome of [ListFds].
type FdSnapshot struct {
	SchemaID  string   `json:"schema_id"`
	Timestamp string   `json:"timestamp"`
	Platform  string   `json:"platform"`
	Pid       uint32   `json:"pid"`
	Fds       []FdInfo `json:"fds"`
	Warnings  []string `json:"warnings,omitempty"`
}

// FdFilter restricts [ListFds] to descriptors of a given kind
// ("file", "socket", "pipe", "anon", ...).
type FdFilter struct {
	Kind *string
}

func (f *FdFilter) matches(kind string) bool {
	return f == nil || f.Kind == nil || *f.Kind == kind
}

func envelopeFds(pid uint32, fds []FdInfo, warnings []string) *FdSnapshot {
	id, ts, plat := sysprims.Envelope(schemaFds)
	return &FdSnapshot{SchemaID: id, Timestamp: ts, Platform: plat, Pid: pid, Fds: fds, Warnings: warnings}
}
