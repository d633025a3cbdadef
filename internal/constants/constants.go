package constants

import "time"

const (
	// A touch older than this (inclusive) earns no credit for a goal.
	TouchStaleWindow = 7000 * time.Millisecond
	PersistDelay     = 700 * time.Millisecond
)

const (
	HostActionTimeout = 5 * time.Second
	RequestTimeout    = 10 * time.Second
	ShutdownTimeout   = 5 * time.Second
)

const (
	EventQueueSize = 256
	TopLimit       = 5
)

const (
	SnapshotSchemaVersion = 1
	SnapshotFileMode      = 0o644
	SnapshotDirMode       = 0o755
)

const (
	AnnounceColorReply = 0x9ad0ff
	AnnounceColorAdmin = 0x00ff00
)
