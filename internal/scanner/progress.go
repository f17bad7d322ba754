package scanner

import "time"

// Progress reports scanning progress.
type Progress struct {
	// CurrentPath is the directory most recently entered.
	CurrentPath string
	// FilesScanned is the total files sized so far.
	FilesScanned int64
	// DirsScanned is the total directories listed so far.
	DirsScanned int64
	// BytesFound is the total file bytes seen so far.
	BytesFound uint64
	// Errors is the count of issues recorded.
	Errors int64
	// Done indicates scanning is complete.
	Done bool
	// StartTime is when the scan began.
	StartTime time.Time
	// Duration is elapsed time.
	Duration time.Duration
}

// ItemsPerSecond returns the scan rate.
func (p Progress) ItemsPerSecond() float64 {
	if p.Duration.Seconds() == 0 {
		return 0
	}
	return float64(p.FilesScanned+p.DirsScanned) / p.Duration.Seconds()
}
