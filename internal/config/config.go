package config

const (
	DefaultTimeZone = "Europe/Rome"

	// Import pipeline
	ImportKeyChunk    = 200 // fiscal codes per conflict-lookup round trip
	ImportChunkSize   = 200 // actions per commit chunk
	DefaultMemberType = "Tesserato"
	DefaultMemberYear = "25/26"

	// Ledger listing / bulk metadata updates
	DefaultPageSize = 100
	MaxPageSize     = 500
	BulkPageSize    = 500

	// Stats caching
	BarStatsTTLMinutes = 10

	// Background jobs
	DefaultRetentionSchedule = "30 3 * * *" // nightly audit purge
	DefaultSweepSchedule     = "*/10 * * * *"
	AuditRetentionDays       = 180
)
