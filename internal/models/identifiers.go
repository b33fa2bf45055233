package models

import "regexp"

// maxIdentifierLength is BigQuery's limit for dataset and table names.
const maxIdentifierLength = 1024

var (
	projectIDPattern = regexp.MustCompile(`^[a-z][a-z0-9-]{4,28}[a-z0-9]$`)
	datasetIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	tableIDPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// IsProjectID reports whether id is a well-formed Google Cloud project id:
// 6-30 lowercase letters, digits and hyphens, starting with a letter and
// not ending with a hyphen.
func IsProjectID(id string) bool {
	return projectIDPattern.MatchString(id)
}

// IsDatasetID reports whether id is a valid BigQuery dataset name.
func IsDatasetID(id string) bool {
	return len(id) <= maxIdentifierLength && datasetIDPattern.MatchString(id)
}

// IsTableID reports whether id is a valid billing export table name.
func IsTableID(id string) bool {
	return len(id) <= maxIdentifierLength && tableIDPattern.MatchString(id)
}
