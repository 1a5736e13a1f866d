package resources

import "strings"

// Tier names a transcription model configuration trading quality for
// memory/CPU cost.
type Tier string

const (
	TierTiny   Tier = "tiny"
	TierBase   Tier = "base"
	TierSmall  Tier = "small"
	TierMedium Tier = "medium"
	TierLarge  Tier = "large-v3"
)

// tierTable is ordered smallest to largest. Memory costs are the observed
// resident footprint of each model during transcription.
var tierTable = []struct {
	tier        Tier
	memoryBytes uint64
	description string
}{
	{TierTiny, 1 << 30, "fastest, lowest quality"},
	{TierBase, 1<<30 + 1<<29, "good balance of speed and quality"},
	{TierSmall, 2 << 30, "better quality, slower"},
	{TierMedium, 4 << 30, "high quality, moderate speed"},
	{TierLarge, 6 << 30, "best quality, slowest"},
}

// ParseTier converts a config string into a known Tier.
func ParseTier(value string) (Tier, bool) {
	normalized := Tier(strings.ToLower(strings.TrimSpace(value)))
	for _, entry := range tierTable {
		if entry.tier == normalized {
			return entry.tier, true
		}
	}
	return "", false
}

// MemoryCost returns the estimated resident memory a tier needs.
func MemoryCost(tier Tier) uint64 {
	for _, entry := range tierTable {
		if entry.tier == tier {
			return entry.memoryBytes
		}
	}
	return tierTable[0].memoryBytes
}

// Description returns a short human-readable summary of a tier.
func Description(tier Tier) string {
	for _, entry := range tierTable {
		if entry.tier == tier {
			return entry.description
		}
	}
	return "unknown tier"
}
