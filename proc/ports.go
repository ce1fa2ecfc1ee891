package proc

import (
	gnet "github.com/shirou/gopsutil/v3/net"

	"github.com/sysprims-dev/sysprims"
)

const schemaPortBindings = "sysprims.port_bindings_snapshot.v1"

// Protocol names the transport a [PortBinding] listens on.
type Protocol string

const (
	ProtocolTCP Protocol = "tcp"
	ProtocolUDP Protocol = "udp"
)

// PortBinding describes one listening socket, with best-effort PID and
// process attribution.
type PortBinding struct {
	Protocol  Protocol     `json:"protocol"`
	LocalAddr *string      `json:"local_addr,omitempty"`
	LocalPort uint16       `json:"local_port"`
	State     *string      `json:"state,omitempty"`
	PID       *uint32      `json:"pid,omitempty"`
	Process   *ProcessInfo `json:"process,omitempty"`
}

// PortBindingsSnapshot is the outcome of [ListeningPorts].
type PortBindingsSnapshot struct {
	SchemaID  string        `json:"schema_id"`
	Timestamp string        `json:"timestamp"`
	Platform  string        `json:"platform"`
	Bindings  []PortBinding `json:"bindings"`
	Warnings  []string      `json:"warnings,omitempty"`
}

// PortFilter restricts [ListeningPorts] to matching bindings.
type PortFilter struct {
	Protocol  *Protocol
	LocalPort *uint16
}

func (f *PortFilter) matches(b PortBinding) bool {
	if f == nil {
		return true
	}
	if f.Protocol != nil && *f.Protocol != b.Protocol {
		return false
	}
	if f.LocalPort != nil && *f.LocalPort != b.LocalPort {
		return false
	}
	return true
}

// ListeningPorts returns listening TCP/UDP sockets, cross-referenced
// against the running process table for best-effort PID attribution.
// On macOS, SIP/TCC can suppress socket ownership even for same-user
// processes; callers should treat the result as best-effort and expect
// PID/Process to be nil for some bindings in that case.
func ListeningPorts(filter *PortFilter) (*PortBindingsSnapshot, error) {
	conns, err := gnet.Connections("inet")
	if err != nil {
		return nil, &sysprims.Error{Kind: sysprims.ErrSystem, Op: "ListeningPorts", Msg: err.Error(), Err: err}
	}

	var warnings []string
	procByPID := make(map[uint32]*ProcessInfo)

	bindings := make([]PortBinding, 0, len(conns))
	for _, c := range conns {
		if c.Status != "LISTEN" && c.Status != "" {
			continue
		}
		if c.Status == "" && c.Type != 2 /* SOCK_DGRAM */ {
			continue
		}
		proto := ProtocolTCP
		if c.Type == 2 {
			proto = ProtocolUDP
		}
		b := PortBinding{
			Protocol:  proto,
			LocalPort: uint16(c.Laddr.Port),
		}
		if c.Laddr.IP != "" {
			addr := c.Laddr.IP
			b.LocalAddr = &addr
		}
		if c.Status != "" {
			status := c.Status
			b.State = &status
		}
		if c.Pid > 0 {
			pid := uint32(c.Pid)
			b.PID = &pid
			if cached, ok := procByPID[pid]; ok {
				b.Process = cached
			} else if info, err := ProcessGet(pid); err == nil {
				procByPID[pid] = info
				b.Process = info
			} else {
				warnings = append(warnings, "could not attribute pid to process (possibly exited, or SIP/TCC restricted)")
			}
		}
		if !filter.matches(b) {
			continue
		}
		bindings = append(bindings, b)
	}

	id, ts, plat := sysprims.Envelope(schemaPortBindings)
	return &PortBindingsSnapshot{SchemaID: id, Timestamp: ts, Platform: plat, Bindings: bindings, Warnings: warnings}, nil
}
