//go:build !linux

package resources

import "runtime"

// readHostSample has no portable available-memory source off Linux; assume
// enough memory for the smallest tier and let configuration override.
func readHostSample() (Sample, error) {
	return Sample{
		AvailableMemoryBytes: 2 << 30,
		CPUCount:             runtime.NumCPU(),
	}, nil
}
