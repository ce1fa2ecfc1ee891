// Package abi exposes this module's operations with the exact
// input/output shape of a C-callable boundary — UTF-8 JSON in, UTF-8
// JSON out — without the cgo marshalling a real FFI shim would add.
// There is no free_string equivalent: every returned string is a
// normal Go string owned by the caller's GC, which is the correct
// generalization of "caller must free" to a language with automatic
// memory management.
package abi

import (
	"encoding/json"
	"time"

	"github.com/sysprims-dev/sysprims"
)

// ABIVersion returns the ABI envelope version this package implements.
// Callers must verify it before trusting any JSON shape returned below.
func ABIVersion() uint32 {
	return sysprims.ABIVersion()
}

type envelope struct {
	SchemaID  string          `json:"schema_id"`
	Timestamp string          `json:"timestamp"`
	Platform  string          `json:"platform"`
	Payload   json.RawMessage `json:"payload"`
}

func wrap(schemaID string, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &sysprims.Error{Kind: sysprims.ErrInternal, Op: "abi.wrap", Msg: err.Error(), Err: err}
	}
	env := envelope{
		SchemaID:  schemaID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Platform:  sysprims.Platform(),
		Payload:   body,
	}
	out, err := json.Marshal(env)
	if err != nil {
		return "", &sysprims.Error{Kind: sysprims.ErrInternal, Op: "abi.wrap", Msg: err.Error(), Err: err}
	}
	return string(out), nil
}

// statusCode maps an error returned by the core into the §7 ErrorKind
// ordinal this ABI promises never to renumber. A nil error is
// ErrNone (0).
func statusCode(err error) sysprims.ErrorKind {
	if err == nil {
		return sysprims.ErrNone
	}
	if e, ok := err.(*sysprims.Error); ok {
		return e.Kind
	}
	return sysprims.ErrInternal
}
