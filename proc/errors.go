package proc

import (
	"errors"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/sysprims-dev/sysprims"
)

func wrapSystem(op string, err error) error {
	if err == nil {
		return nil
	}
	return &sysprims.Error{Kind: sysprims.ErrSystem, Op: op, Msg: err.Error(), Err: err}
}

// classifyGopsutilErr maps gopsutil's sentinel process.ErrorProcessNotRunning
// to ErrNotFound; every other error, permission failures included,
// becomes ErrSystem.
func classifyGopsutilErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, process.ErrorProcessNotRunning) {
		return &sysprims.Error{Kind: sysprims.ErrNotFound, Op: op, Msg: "process does not exist", Err: err}
	}
	return &sysprims.Error{Kind: sysprims.ErrSystem, Op: op, Msg: err.Error(), Err: err}
}
