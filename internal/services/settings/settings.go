package settings

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aculich/gcp-billing-watcher/internal/models"
)

// EnvProjectID overrides the project id from the settings file.
const EnvProjectID = "GCP_BILLING_PROJECT_ID"

// Defaults for the settings file.
const (
	DefaultDatasetID              = "billing_export"
	DefaultTableID                = "gcp_billing_export_v1"
	DefaultRefreshIntervalMinutes = 30
	LanguageAuto                  = "auto"
)

var (
	// ErrNotConfigured is returned when no project id is set.
	ErrNotConfigured = errors.New("project id is not set")
	// ErrProjectIDRequired is returned by ValidateProjectID for blank input.
	ErrProjectIDRequired = errors.New("project id is required")
	// ErrProjectIDInvalid is returned by ValidateProjectID for malformed input.
	ErrProjectIDInvalid = errors.New("project id format is invalid")
)

// Settings is a snapshot of the user-editable billing settings.
type Settings struct {
	ProjectID              string  `yaml:"projectId"`
	DatasetID              string  `yaml:"datasetId"`
	TableID                string  `yaml:"tableId"`
	CredentialsPath        string  `yaml:"credentialsPath,omitempty"`
	RefreshIntervalMinutes int     `yaml:"refreshIntervalMinutes"`
	MonthlyBudget          float64 `yaml:"monthlyBudget"`
	Language               string  `yaml:"language"`
	SkipSSLVerification    bool    `yaml:"skipSslVerification"`
}

// Defaults returns settings with every optional field populated.
func Defaults() Settings {
	return Settings{
		DatasetID:              DefaultDatasetID,
		TableID:                DefaultTableID,
		RefreshIntervalMinutes: DefaultRefreshIntervalMinutes,
		Language:               LanguageAuto,
	}
}

// Configured reports whether a project id is present.
func (s Settings) Configured() bool {
	return s.ProjectID != ""
}

// RefreshInterval returns the refresh period as a duration.
func (s Settings) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshIntervalMinutes) * time.Minute
}

// Validate checks the settings. An empty project id is valid and means
// "not configured".
func (s Settings) Validate() error {
	if s.ProjectID != "" {
		if err := ValidateProjectID(s.ProjectID); err != nil {
			return fmt.Errorf("projectId %q: %w", s.ProjectID, err)
		}
	}
	if !models.IsDatasetID(s.DatasetID) {
		return fmt.Errorf("datasetId %q: must contain only letters, digits and underscores", s.DatasetID)
	}
	if !models.IsTableID(s.TableID) {
		return fmt.Errorf("tableId %q: must contain only letters, digits, underscores and dashes", s.TableID)
	}
	if s.RefreshIntervalMinutes <= 0 {
		return fmt.Errorf("refreshIntervalMinutes must be positive, got %d", s.RefreshIntervalMinutes)
	}
	if s.MonthlyBudget < 0 {
		return fmt.Errorf("monthlyBudget must not be negative, got %v", s.MonthlyBudget)
	}
	switch s.Language {
	case LanguageAuto, "en", "ja":
	default:
		return fmt.Errorf("language %q: must be auto, en or ja", s.Language)
	}
	return nil
}

// ValidateProjectID checks a Google Cloud project id: 6-30 characters,
// lowercase letters, digits and hyphens, starting with a letter.
func ValidateProjectID(id string) error {
	if id == "" {
		return ErrProjectIDRequired
	}
	if !models.IsProjectID(id) {
		return ErrProjectIDInvalid
	}
	return nil
}

// withEnv applies environment overrides.
func (s Settings) withEnv() Settings {
	if id := os.Getenv(EnvProjectID); id != "" {
		s.ProjectID = id
	}
	return s
}
