package sysprims

// MaxSafePID is the largest PID that cannot sign-extend to a negative
// (and therefore broadcast-interpreted) value on the underlying platform
// signal call.
const MaxSafePID uint64 = 1<<31 - 1 // 2^31 - 1

// PidValue is a process identifier that has passed the Signal-Safety
// Gate. It is constructible only through [ValidatePID] or
// [NewPidValue]; there is no other path to a live PidValue, which is
// what makes it safe to thread through every termination entry point
// without re-checking.
type PidValue struct {
	v uint32
}

// Uint32 returns the validated PID.
func (p PidValue) Uint32() uint32 { return p.v }

// Int returns the validated PID as an int, the shape most POSIX and
// Windows APIs in the standard library and golang.org/x/sys expect.
func (p PidValue) Int() int { return int(p.v) }

// ValidatePID is the Signal-Safety Gate: it accepts a raw, unsigned
// integer PID and produces either a [PidValue] or an [ErrInvalidArgument]
// error. Rejection rules, in order:
//
//  1. Zero is rejected: POSIX kill(0, sig) signals the caller's entire
//     process group, not "no process".
//  2. Negative inputs can't reach this function at all — the signature
//     takes uint64, pushing the rejection to the type boundary.
//  3. Any value above [MaxSafePID] is rejected: it would sign-extend to
//     a negative number on the underlying platform signal call, turning
//     a single-process target into a group/broadcast target.
//
// The error message states the safety rationale, not just "invalid
// PID", per the gate's contract.
func ValidatePID(raw uint64) (PidValue, error) {
	if raw == 0 {
		return PidValue{}, newErr(ErrInvalidArgument, "ValidatePID",
			"pid 0 would signal the caller's entire process group (kill(0, sig) semantics), refusing", nil)
	}
	if raw > MaxSafePID {
		return PidValue{}, newErr(ErrInvalidArgument, "ValidatePID",
			"pid exceeds the safe range (1..2^31-1); a larger value would sign-extend to a negative broadcast target on the underlying signal call", nil)
	}
	return PidValue{v: uint32(raw)}, nil
}

// NewPidValue validates a PID already held as an int32-range uint32,
// the common case when a PID came from os.Process.Pid or a spawn result.
func NewPidValue(pid uint32) (PidValue, error) {
	return ValidatePID(uint64(pid))
}
