package logging

// Standard field names for structured log entries
const (
	FieldOperation = "operation"
	FieldSeason    = "season"
	FieldRole      = "role"
	FieldWorkType  = "work_type"
	FieldRecordID  = "record_id"
	FieldColumns   = "columns"
	FieldRows      = "rows"
	FieldSource    = "source"
	FieldCacheKey  = "cache_key"
)
