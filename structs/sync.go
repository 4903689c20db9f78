package structs

import "time"

// SyncOptions configures a differential sync run.
type SyncOptions struct {
	Direction string `json:"direction"` // "airtable-to-turso" or "turso-to-airtable"
	Category  string `json:"category,omitempty"`
	BatchSize int    `json:"batchSize,omitempty"`
	DryRun    bool   `json:"dryRun"`
	FullSync  bool   `json:"fullSync,omitempty"` // ignore the watermark, reconcile everything
}

// SyncChange is one intended mutation, collected instead of executed in
// dry-run mode.
type SyncChange struct {
	Action     string `json:"action"` // "insert" or "update"
	EntityType string `json:"entityType"`
	ExternalID string `json:"externalId"`
	Name       string `json:"name,omitempty"`
}

// SyncResult is the outcome of a sync run.
type SyncResult struct {
	Direction     string        `json:"direction"`
	DryRun        bool          `json:"dryRun"`
	RecordsSynced int           `json:"recordsSynced"`
	RecordsFailed int           `json:"recordsFailed"`
	Changes       []SyncChange  `json:"changes,omitempty"`
	Errors        []string      `json:"errors,omitempty"`
	Duration      time.Duration `json:"duration"`
	StartedAt     time.Time     `json:"startedAt"`
}

// SyncHealth is the advisory report comparing the two stores.
type SyncHealth struct {
	AirtableCount   int       `json:"airtableCount"`
	TursoCount      int       `json:"tursoCount"`
	CountDifference int       `json:"countDifference"`
	RecentErrors    int       `json:"recentErrors"`
	StaleRecords    int       `json:"staleRecords"`
	LastSync        time.Time `json:"lastSync"`
	Score           int       `json:"score"` // 0-100
	Recommendations []string  `json:"recommendations"`
}

// Outcome status of one subsystem in a cache invalidation fan-out.
const (
	InvalidationSuccess = "success"
	InvalidationFailure = "failure"
	InvalidationSkipped = "skipped"
)

// InvalidationOutcome is the per-subsystem result of one invalidation.
type InvalidationOutcome struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// InvalidationTargets toggles the three subsystems individually.
type InvalidationTargets struct {
	Cloudinary bool `json:"cloudinary"`
	Airtable   bool `json:"airtable"`
	Cache      bool `json:"cache"`
}

// AllInvalidationTargets enables every subsystem.
func AllInvalidationTargets() InvalidationTargets {
	return InvalidationTargets{Cloudinary: true, Airtable: true, Cache: true}
}

// InvalidationResult aggregates the fan-out for one asset id.
type InvalidationResult struct {
	AssetID  string                         `json:"assetId"`
	Outcomes map[string]InvalidationOutcome `json:"outcomes"`
	Success  bool                           `json:"success"`
}

// BatchInvalidationResult summarizes a batch run.
type BatchInvalidationResult struct {
	Total      int                  `json:"total"`
	Successful int                  `json:"successful"`
	Failed     int                  `json:"failed"`
	Results    []InvalidationResult `json:"results"`
	Duration   time.Duration        `json:"duration"`
}
