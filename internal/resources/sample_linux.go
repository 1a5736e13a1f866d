package resources

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// readHostSample reads available memory via sysinfo. Free plus buffer/cache
// pages approximate reclaimable memory the way MemAvailable does.
func readHostSample() (Sample, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return Sample{}, err
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	available := (uint64(info.Freeram) + uint64(info.Bufferram)) * unit
	return Sample{
		AvailableMemoryBytes: available,
		CPUCount:             runtime.NumCPU(),
	}, nil
}
