package abi

import "time"

func msToDuration(ms uint64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
