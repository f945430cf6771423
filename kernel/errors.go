package kernel

import "errors"

// Boot-time assertions. The switch path itself has no error returns.
var (
	ErrTaskCount      = errors.New("task count does not match NTASK")
	ErrBadTask        = errors.New("task id out of range")
	ErrNoEntry        = errors.New("task has no entry point")
	ErrRegionAlign    = errors.New("stack region not word aligned")
	ErrRegionTooSmall = errors.New("stack region smaller than the trap frame")
	ErrRegionOverlap  = errors.New("stack region overlaps reserved memory")
)
