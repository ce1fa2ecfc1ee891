package proc

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/sysprims-dev/sysprims"
)

const (
	schemaDescendants     = "sysprims.descendants_result.v1"
	schemaKillDescendants = "sysprims.kill_descendants_result.v1"
)

// CpuMode controls how CPU usage is measured while walking descendants.
type CpuMode string

const (
	// CpuModeLifetime reports gopsutil's lifetime-average CPU percent
	// (a single, cheap call per process).
	CpuModeLifetime CpuMode = "lifetime"
	// CpuModeMonitor takes two CPU samples SampleDuration apart to
	// report an instantaneous rate, at the cost of blocking the call
	// for that long per process.
	CpuModeMonitor CpuMode = "monitor"
)

// DescendantsLevel groups processes at a single depth below the root
// (1 = direct children).
type DescendantsLevel struct {
	Level     uint32        `json:"level"`
	Processes []ProcessInfo `json:"processes"`
}

// DescendantsResult is the outcome of a subtree traversal.
type DescendantsResult struct {
	SchemaID        string             `json:"schema_id"`
	Timestamp       string             `json:"timestamp"`
	Platform        string             `json:"platform"`
	RootPID         uint32             `json:"root_pid"`
	MaxLevels       uint32             `json:"max_levels"`
	Levels          []DescendantsLevel `json:"levels"`
	TotalFound      int                `json:"total_found"`
	MatchedByFilter int                `json:"matched_by_filter"`
}

// DescendantsOptions configures [DescendantsWithOptions].
type DescendantsOptions struct {
	// MaxLevels bounds traversal depth; nil means unbounded.
	MaxLevels *uint32
	// Filter is applied to every discovered descendant.
	Filter *ProcessFilter
	// CpuMode controls per-process CPU measurement.
	CpuMode CpuMode
	// SampleDuration is the two-sample window used when CpuMode is
	// CpuModeMonitor. Zero selects a 100ms default.
	SampleDuration time.Duration
}

// walk performs a level-bounded BFS over gopsutil's Children(), used by
// both Descendants and KillDescendants so their traversal semantics
// (ordering, level numbering, max-depth cutoff) stay identical.
func walk(root *process.Process, maxLevels uint32, mode CpuMode, sample time.Duration) []DescendantsLevel {
	if maxLevels == 0 {
		maxLevels = ^uint32(0)
	}
	levels := make([]DescendantsLevel, 0)
	frontier := []*process.Process{root}
	for level := uint32(1); level <= maxLevels && len(frontier) > 0; level++ {
		var next []*process.Process
		var infos []ProcessInfo
		for _, p := range frontier {
			children, err := p.Children()
			if err != nil {
				continue
			}
			for _, c := range children {
				info := describe(c, nil)
				if mode == CpuModeMonitor {
					d := sample
					if d <= 0 {
						d = 100 * time.Millisecond
					}
					// Percent samples CPU times, sleeps d, and samples again.
					if pct, err := c.Percent(d); err == nil {
						info.CPUPercent = pct
					}
				}
				infos = append(infos, info)
				next = append(next, c)
			}
		}
		if len(infos) == 0 {
			break
		}
		levels = append(levels, DescendantsLevel{Level: level, Processes: infos})
		frontier = next
	}
	return levels
}

// Descendants returns the subtree rooted at pid, up to maxLevels deep
// (1 = direct children only; 0 means unbounded), optionally filtered.
func Descendants(pid uint32, maxLevels uint32, filter *ProcessFilter) (*DescendantsResult, error) {
	return DescendantsWithOptions(pid, &DescendantsOptions{MaxLevels: &maxLevels, Filter: filter})
}

// DescendantsWithOptions returns the subtree rooted at pid using opts'
// depth bound, filter, and CPU measurement mode.
func DescendantsWithOptions(pid uint32, opts *DescendantsOptions) (*DescendantsResult, error) {
	if _, err := sysprims.ValidatePID(uint64(pid)); err != nil {
		return nil, err
	}
	root, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, classifyGopsutilErr("Descendants", err)
	}

	maxLevels := uint32(0)
	var filter *ProcessFilter
	mode := CpuModeLifetime
	sample := time.Duration(0)
	if opts != nil {
		if opts.MaxLevels != nil {
			maxLevels = *opts.MaxLevels
		}
		filter = opts.Filter
		mode = opts.CpuMode
		sample = opts.SampleDuration
	}

	levels := walk(root, maxLevels, mode, sample)

	total := 0
	matched := 0
	filtered := make([]DescendantsLevel, 0, len(levels))
	for _, lvl := range levels {
		total += len(lvl.Processes)
		keep := make([]ProcessInfo, 0, len(lvl.Processes))
		for _, info := range lvl.Processes {
			if filter.matches(info) {
				keep = append(keep, info)
				matched++
			}
		}
		filtered = append(filtered, DescendantsLevel{Level: lvl.Level, Processes: keep})
	}

	id, ts, plat := sysprims.Envelope(schemaDescendants)
	return &DescendantsResult{
		SchemaID:        id,
		Timestamp:       ts,
		Platform:        plat,
		RootPID:         pid,
		MaxLevels:       maxLevels,
		Levels:          filtered,
		TotalFound:      total,
		MatchedByFilter: matched,
	}, nil
}

// KillDescendantsResult is the outcome of [KillDescendants].
type KillDescendantsResult struct {
	SchemaID      string                `json:"schema_id"`
	Timestamp     string                `json:"timestamp"`
	Platform      string                `json:"platform"`
	RootPID       uint32                `json:"root_pid"`
	SignalSent    string                `json:"signal_sent"`
	Succeeded     []uint32              `json:"succeeded"`
	Failed        []KillDescendantsFail `json:"failed"`
	SkippedSafety int                   `json:"skipped_safety"`
}

// KillDescendantsFail records one descendant that could not be signaled.
type KillDescendantsFail struct {
	PID   uint32 `json:"pid"`
	Error string `json:"error"`
}

// KillDescendantsOptions configures [KillDescendantsWithOptions].
type KillDescendantsOptions struct {
	// Signal defaults to sysprims.TerminateRequest.
	Signal sysprims.SignalSpec
	// MaxLevels bounds traversal depth; nil means unbounded.
	MaxLevels *uint32
	// Filter is applied before signaling.
	Filter *ProcessFilter
	// CpuMode and SampleDuration affect filter evaluation the same way
	// as in DescendantsOptions.
	CpuMode        CpuMode
	SampleDuration time.Duration
}

// KillDescendants signals every descendant of pid matching filter.
// Convenience wrapper for [KillDescendantsWithOptions].
func KillDescendants(pid uint32, signal sysprims.SignalSpec, maxLevels uint32, filter *ProcessFilter) (*KillDescendantsResult, error) {
	return KillDescendantsWithOptions(pid, &KillDescendantsOptions{Signal: signal, MaxLevels: &maxLevels, Filter: filter})
}

// safetyExcluded reports whether candidate must never be signaled by
// KillDescendants regardless of filter match: the root itself, this
// process, PID 1 (init/launchd), and the root's own parent — a fixed
// exclusion list layered on top of the Signal-Safety Gate.
func safetyExcluded(candidate, root, self, parent uint32) bool {
	switch candidate {
	case root, self, 1, parent:
		return true
	default:
		return false
	}
}

// KillDescendantsWithOptions signals every descendant of pid matching
// opts.Filter, skipping a fixed safety exclusion list (root, self, PID
// 1, root's parent) regardless of filter match. Skipped PIDs are
// counted in SkippedSafety, not reported as failures.
func KillDescendantsWithOptions(pid uint32, opts *KillDescendantsOptions) (*KillDescendantsResult, error) {
	if _, err := sysprims.ValidatePID(uint64(pid)); err != nil {
		return nil, err
	}
	root, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, classifyGopsutilErr("KillDescendants", err)
	}

	signal := sysprims.TerminateRequest
	maxLevels := uint32(0)
	var filter *ProcessFilter
	mode := CpuModeLifetime
	sample := time.Duration(0)
	if opts != nil {
		if opts.Signal != (sysprims.SignalSpec{}) {
			signal = opts.Signal
		}
		if opts.MaxLevels != nil {
			maxLevels = *opts.MaxLevels
		}
		filter = opts.Filter
		mode = opts.CpuMode
		sample = opts.SampleDuration
	}

	levels := walk(root, maxLevels, mode, sample)

	var parentPID uint32
	if ppid, err := root.Ppid(); err == nil {
		parentPID = uint32(ppid)
	}
	selfPID := uint32(os.Getpid())

	result := &KillDescendantsResult{RootPID: pid, SignalSent: signal.String()}
	for _, lvl := range levels {
		for _, info := range lvl.Processes {
			if !filter.matches(info) {
				continue
			}
			if safetyExcluded(info.PID, pid, selfPID, parentPID) {
				result.SkippedSafety++
				continue
			}
			if err := sysprims.Kill(uint64(info.PID), signal); err != nil {
				result.Failed = append(result.Failed, KillDescendantsFail{PID: info.PID, Error: err.Error()})
				continue
			}
			result.Succeeded = append(result.Succeeded, info.PID)
		}
	}

	id, ts, plat := sysprims.Envelope(schemaKillDescendants)
	result.SchemaID, result.Timestamp, result.Platform = id, ts, plat
	return result, nil
}
