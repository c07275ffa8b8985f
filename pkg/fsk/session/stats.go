package session

import "time"

// Stats is a snapshot of one finished or running session, fed to the
// monitor server and to the metrics sink.
type Stats struct {
	Direction    string // "send" or "receive"
	StartedAt    time.Time
	Duration     time.Duration
	Blocks       int
	Bytes        int
	CarrierUps   int
	CarrierDowns int
	Result       string
}
