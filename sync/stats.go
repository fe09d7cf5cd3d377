// ABOUTME: Mirror outcome counters for operator visibility
// ABOUTME: Tracks attempted/mirrored/skipped/failed without affecting user flows
package sync

import "sync/atomic"

// MirrorStats counts mirror outcomes so sustained provider degradation is
// observable even though individual failures never surface to users.
type MirrorStats struct {
	attempted atomic.Int64
	mirrored  atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

func NewMirrorStats() *MirrorStats {
	return &MirrorStats{}
}

func (s *MirrorStats) recordAttempt() { s.attempted.Add(1) }
func (s *MirrorStats) recordSuccess() { s.mirrored.Add(1) }
func (s *MirrorStats) recordSkip()    { s.skipped.Add(1) }
func (s *MirrorStats) recordFailure() { s.failed.Add(1) }

// Snapshot is a point-in-time copy of the counters, JSON-ready.
type Snapshot struct {
	Attempted int64 `json:"attempted"`
	Mirrored  int64 `json:"mirrored"`
	Skipped   int64 `json:"skipped"`
	Failed    int64 `json:"failed"`
}

func (s *MirrorStats) Snapshot() Snapshot {
	return Snapshot{
		Attempted: s.attempted.Load(),
		Mirrored:  s.mirrored.Load(),
		Skipped:   s.skipped.Load(),
		Failed:    s.failed.Load(),
	}
}
