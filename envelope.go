package sysprims

import "time"

// Envelope returns the schema_id/timestamp/platform triple every JSON
// result in this module (directly or through package abi) is wrapped
// in, per spec.md §6.
func Envelope(schemaID string) (id, timestamp, platform string) {
	return schemaID, time.Now().UTC().Format(time.RFC3339), Platform()
}
