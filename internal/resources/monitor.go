// Package resources samples host memory and CPU capacity and recommends a
// transcription model tier plus a worker count that fits within them.
//
// The monitor is sampled once at batch start and the recommendation held for
// the batch's lifetime; re-sampling per file would let transient memory dips
// oscillate the tier choice mid-batch.
package resources

import (
	"fmt"
	"runtime"
)

// Sample is a point-in-time reading of host capacity.
type Sample struct {
	AvailableMemoryBytes uint64
	CPUCount             int
}

// Monitor recommends model tiers and concurrency from host capacity.
type Monitor struct {
	// MemoryMargin is the fraction of available memory reserved for the
	// system (default 0.2).
	MemoryMargin float64

	// SafetyFactor inflates per-job memory cost when bounding concurrency
	// (default 1.2).
	SafetyFactor float64

	// sampler allows tests to stub host readings.
	sampler func() (Sample, error)
}

// NewMonitor constructs a Monitor with the given margins. Out-of-range
// values fall back to defaults.
func NewMonitor(memoryMargin, safetyFactor float64) *Monitor {
	if memoryMargin <= 0 || memoryMargin >= 1 {
		memoryMargin = 0.2
	}
	if safetyFactor < 1 {
		safetyFactor = 1.2
	}
	return &Monitor{
		MemoryMargin: memoryMargin,
		SafetyFactor: safetyFactor,
		sampler:      readHostSample,
	}
}

// WithSampler sets a custom host sampler (for testing).
func (m *Monitor) WithSampler(sampler func() (Sample, error)) {
	m.sampler = sampler
}

// SampleHost reads current host capacity.
func (m *Monitor) SampleHost() (Sample, error) {
	sample, err := m.sampler()
	if err != nil {
		return Sample{}, fmt.Errorf("sample host resources: %w", err)
	}
	if sample.CPUCount <= 0 {
		sample.CPUCount = runtime.NumCPU()
	}
	return sample, nil
}

// RecommendTier picks the largest tier whose memory cost fits within
// available memory after reserving the configured margin. The smallest tier
// is the floor; the step function is monotonic in available memory.
func (m *Monitor) RecommendTier(availableMemoryBytes uint64) Tier {
	usable := uint64(float64(availableMemoryBytes) * (1 - m.MemoryMargin))
	chosen := tierTable[0].tier
	for _, entry := range tierTable {
		if entry.memoryBytes <= usable {
			chosen = entry.tier
		}
	}
	return chosen
}

// RecommendConcurrency bounds the worker count by CPU (reserving one core)
// and by how many tier-sized jobs fit in available memory with the safety
// factor applied. The result is always at least 1.
func (m *Monitor) RecommendConcurrency(cpuCount int, tierMemoryCost, availableMemoryBytes uint64) int {
	workers := cpuCount - 1
	if workers < 1 {
		workers = 1
	}
	perJob := uint64(float64(tierMemoryCost) * m.SafetyFactor)
	if perJob > 0 {
		memoryBound := int(availableMemoryBytes / perJob)
		if memoryBound < 1 {
			memoryBound = 1
		}
		if memoryBound < workers {
			workers = memoryBound
		}
	}
	return workers
}
