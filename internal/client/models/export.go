package models

import "time"

// BackupVersion is the only export format version this build understands.
const BackupVersion = 1

// Backup is the versioned full-state export payload. Import rejects any
// other version before touching the store.
type Backup struct {
	Version    int         `json:"version"`
	ExportedAt time.Time   `json:"exportedAt"`
	Documents  []Document  `json:"documents"`
	Stats      []DailyStat `json:"stats"`
	Meta       BackupMeta  `json:"meta"`
}

// BackupMeta carries the singleton records. Nil members mean the source
// store had never written them.
type BackupMeta struct {
	Lifetime *Lifetime `json:"lifetime,omitempty"`
	Streak   *Streak   `json:"streak,omitempty"`
}
