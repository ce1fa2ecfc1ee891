// Package sysprims provides cross-platform process-control primitives:
// running a command under a deadline with guaranteed tree termination,
// terminating an arbitrary process tree with graceful-then-forceful
// escalation, and sending signals through a safety-validated gate.
//
// # Group-by-default
//
// Every spawn establishes a process group (POSIX) or Job Object (Windows)
// before the child runs user code, unless the caller opts into
// [Foreground]. The Reliability field of [SpawnOutcome], [TimeoutOutcome]
// and [TerminateTreeResult] reports whether that establishment was
// [Guaranteed] or degraded to [BestEffort]; callers
// that need to know whether a timeout will actually kill the whole tree
// should inspect that field rather than assume success.
//
// # Safety
//
// [Kill], [KillGroup], and [TerminateTree] accept PIDs only through
// [ValidatePID] (directly or indirectly). PID 0, negative values, and
// values above [MaxSafePID] are rejected before any syscall is made,
// because on POSIX those values sign-extend into broadcast targets.
//
// # Errors
//
// Functions return a *[Error] wrapping one of the [ErrorKind] ordinals.
// Use [errors.As] to recover it and inspect Kind.
package sysprims

import "runtime"

// version is the semver string reported by [Version].
const version = "0.1.0"

// abiVersion is the ordinal reported by [ABIVersion]. Bump it whenever
// the abi package's JSON envelope shape changes incompatibly.
const abiVersion uint32 = 1

// Version returns the library's semver version string.
func Version() string {
	return version
}

// ABIVersion returns the ABI envelope version understood by package abi.
func ABIVersion() uint32 {
	return abiVersion
}

// Platform returns the current platform name: "linux", "macos", "windows",
// or the raw GOOS value for anything else.
func Platform() string {
	switch runtime.GOOS {
	case "darwin":
		return "macos"
	default:
		return runtime.GOOS
	}
}
