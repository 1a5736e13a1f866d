package ledger

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a batch file.
type Status string

const (
	StatusPending      Status = "pending"
	StatusExtracting   Status = "extracting"
	StatusTranscribing Status = "transcribing"
	StatusChunking     Status = "chunking"
	StatusDone         Status = "done"
	StatusFailed       Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusExtracting,
	StatusTranscribing,
	StatusChunking,
	StatusDone,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// forwardTransitions describes the one-way per-file state machine. Failure is
// reachable from every non-terminal state; there is no re-entry into a prior
// state except via an explicit retry reset at batch resume.
var forwardTransitions = map[Status][]Status{
	StatusPending:      {StatusExtracting, StatusFailed},
	StatusExtracting:   {StatusTranscribing, StatusFailed},
	StatusTranscribing: {StatusChunking, StatusFailed},
	StatusChunking:     {StatusDone, StatusFailed},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, next := range forwardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status ends a file's processing.
func IsTerminal(status Status) bool {
	return status == StatusDone || status == StatusFailed
}

// IsInFlight reports whether a status reflects an in-progress stage.
func IsInFlight(status Status) bool {
	switch status {
	case StatusExtracting, StatusTranscribing, StatusChunking:
		return true
	default:
		return false
	}
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// Batch identifies one batch run and the parameters it was started with.
// Re-running with the same batch ID resumes it.
type Batch struct {
	ID        string
	RootPath  string
	Model     string
	Strategy  string
	CreatedAt time.Time
}

// File is one source file tracked by the ledger.
type File struct {
	ID         int64
	BatchID    string
	SourcePath string
	Status     Status
	Reason     string
	Attempts   int
	OutputPath string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Counts aggregates per-status file totals for one batch.
type Counts struct {
	Total    int
	Pending  int
	InFlight int
	Done     int
	Failed   int
}

// Remaining reports how many files still need processing.
func (c Counts) Remaining() int {
	return c.Pending + c.InFlight
}
