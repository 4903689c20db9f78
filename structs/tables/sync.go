package tables

import (
	"time"

	"github.com/uptrace/bun"
)

// SyncStatus is one row per completed sync run, also the source of the
// differential watermark (MAX(last_sync) per entity type).
type SyncStatus struct {
	bun.BaseModel `bun:"table:sync_status,alias:ss"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	EntityType    string    `bun:"entity_type,notnull" json:"entityType"`
	RecordsSynced int       `bun:"records_synced,notnull" json:"recordsSynced"`
	RecordsFailed int       `bun:"records_failed,notnull" json:"recordsFailed"`
	DurationMs    int64     `bun:"duration_ms,notnull" json:"durationMs"`
	DryRun        bool      `bun:"dry_run,notnull" json:"dryRun"`
	Details       string    `bun:"details" json:"details,omitempty"`
	LastSync      time.Time `bun:"last_sync,notnull" json:"lastSync"`
}

type SystemLog struct {
	tableName struct{}  `bun:"table:system_logs,alias:sl"`
	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Level     string    `bun:"level,notnull" json:"level"`
	Scope     string    `bun:"scope,notnull" json:"scope"`
	Message   string    `bun:"message,notnull" json:"message"`
	Context   string    `bun:"context" json:"context,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
}
