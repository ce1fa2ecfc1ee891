// Package proc enumerates, filters, and describes running processes,
// open file descriptors, and listening ports. It is a pure read path:
// nothing here participates in a termination decision, and every
// operation is best-effort — fields that cannot be read are left nil
// (and, where the result type has a Warnings field, noted there)
// rather than failing outright, matching how
// github.com/shirou/gopsutil/v3 itself degrades on permission-denied
// per-field reads.
package proc

import (
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/sysprims-dev/sysprims"
)

const schemaProcessSnapshot = "sysprims.process_snapshot.v1"

// ProcessInfo describes a single running process. Pointer fields are
// nil when the underlying value could not be collected (permission
// denied, already exited, or platform does not expose it).
type ProcessInfo struct {
	PID             uint32            `json:"pid"`
	PPID            uint32            `json:"ppid"`
	Name            string            `json:"name"`
	User            *string           `json:"user,omitempty"`
	CPUPercent      float64           `json:"cpu_percent"`
	MemoryKB        uint64            `json:"memory_kb"`
	ElapsedSeconds  *uint64           `json:"elapsed_seconds,omitempty"`
	StartTimeUnixMS *uint64           `json:"start_time_unix_ms,omitempty"`
	ExePath         *string           `json:"exe_path,omitempty"`
	State           *string           `json:"state,omitempty"`
	Cmdline         []string          `json:"cmdline,omitempty"`
	Env             map[string]string `json:"env,omitempty"`
	ThreadCount     *uint32           `json:"thread_count,omitempty"`
}

// ProcessSnapshot is a point-in-time listing of processes.
type ProcessSnapshot struct {
	SchemaID  string        `json:"schema_id"`
	Timestamp string        `json:"timestamp"`
	Platform  string        `json:"platform"`
	Processes []ProcessInfo `json:"processes"`
}

// ProcessFilter restricts [ProcessList] to matching processes. All
// fields are optional and ANDed together.
type ProcessFilter struct {
	NameContains          *string
	NameEquals            *string
	UserEquals            *string
	PIDIn                 []uint32
	PPID                  *uint32
	StateIn                []string
	CPUAbove              *float64
	MemoryAboveKB         *uint64
	RunningForAtLeastSecs *uint64
}

// ProcessOptions controls optional, more expensive detail collection.
// All fields default to false.
type ProcessOptions struct {
	IncludeEnv     bool
	IncludeThreads bool
}

func (f *ProcessFilter) matches(info ProcessInfo) bool {
	if f == nil {
		return true
	}
	if f.NameContains != nil && !strings.Contains(strings.ToLower(info.Name), strings.ToLower(*f.NameContains)) {
		return false
	}
	if f.NameEquals != nil && info.Name != *f.NameEquals {
		return false
	}
	if f.UserEquals != nil && (info.User == nil || *info.User != *f.UserEquals) {
		return false
	}
	if len(f.PIDIn) > 0 {
		found := false
		for _, p := range f.PIDIn {
			if p == info.PID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.PPID != nil && info.PPID != *f.PPID {
		return false
	}
	if len(f.StateIn) > 0 {
		found := false
		for _, s := range f.StateIn {
			if info.State != nil && s == *info.State {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.CPUAbove != nil && info.CPUPercent <= *f.CPUAbove {
		return false
	}
	if f.MemoryAboveKB != nil && info.MemoryKB <= *f.MemoryAboveKB {
		return false
	}
	if f.RunningForAtLeastSecs != nil {
		if info.ElapsedSeconds == nil || *info.ElapsedSeconds < *f.RunningForAtLeastSecs {
			return false
		}
	}
	return true
}

// describe converts a gopsutil handle into a ProcessInfo, collecting
// opts' extra fields. Every per-field gopsutil call is best-effort: a
// failing call just leaves the corresponding pointer nil rather than
// aborting the whole describe.
func describe(p *process.Process, opts *ProcessOptions) ProcessInfo {
	info := ProcessInfo{PID: uint32(p.Pid)}

	if ppid, err := p.Ppid(); err == nil {
		info.PPID = uint32(ppid)
	}
	if name, err := p.Name(); err == nil {
		info.Name = name
	}
	if user, err := p.Username(); err == nil {
		info.User = &user
	}
	if cpu, err := p.CPUPercent(); err == nil {
		info.CPUPercent = cpu
	}
	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		info.MemoryKB = mem.RSS / 1024
	}
	if createMS, err := p.CreateTime(); err == nil {
		u := uint64(createMS)
		info.StartTimeUnixMS = &u
		elapsed := uint64(time.Since(time.UnixMilli(createMS)).Seconds())
		info.ElapsedSeconds = &elapsed
	}
	if exe, err := p.Exe(); err == nil {
		info.ExePath = &exe
	}
	if status, err := p.Status(); err == nil && len(status) > 0 {
		s := status[0]
		info.State = &s
	}
	if cmdline, err := p.CmdlineSlice(); err == nil {
		info.Cmdline = cmdline
	}

	if opts != nil {
		if opts.IncludeEnv {
			if env, err := p.Environ(); err == nil {
				m := make(map[string]string, len(env))
				for _, kv := range env {
					if i := strings.IndexByte(kv, '='); i >= 0 {
						m[kv[:i]] = kv[i+1:]
					}
				}
				info.Env = m
			}
		}
		if opts.IncludeThreads {
			if n, err := p.NumThreads(); err == nil {
				u := uint32(n)
				info.ThreadCount = &u
			}
		}
	}

	return info
}

// ProcessList returns every running process, optionally narrowed by
// filter. Pass nil to return everything.
func ProcessList(filter *ProcessFilter) (*ProcessSnapshot, error) {
	return ProcessListWithOptions(filter, nil)
}

// ProcessListWithOptions returns every running process, optionally
// narrowed by filter, with opts' extra per-process fields collected.
func ProcessListWithOptions(filter *ProcessFilter, opts *ProcessOptions) (*ProcessSnapshot, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, wrapSystem("ProcessList", err)
	}
	out := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		info := describe(p, opts)
		if filter.matches(info) {
			out = append(out, info)
		}
	}
	id, ts, plat := sysprims.Envelope(schemaProcessSnapshot)
	return &ProcessSnapshot{SchemaID: id, Timestamp: ts, Platform: plat, Processes: out}, nil
}

// ProcessGet returns a single process's info by PID.
func ProcessGet(pid uint32) (*ProcessInfo, error) {
	return ProcessGetWithOptions(pid, nil)
}

// ProcessGetWithOptions returns a single process's info by PID, with
// opts' extra fields collected.
func ProcessGetWithOptions(pid uint32, opts *ProcessOptions) (*ProcessInfo, error) {
	if _, err := sysprims.ValidatePID(uint64(pid)); err != nil {
		return nil, err
	}
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, classifyGopsutilErr("ProcessGet", err)
	}
	info := describe(p, opts)
	return &info, nil
}
