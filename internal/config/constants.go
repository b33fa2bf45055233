package config

import "time"

// Environment variable names.
const (
	EnvSettingsPath  = "GBW_SETTINGS_PATH"
	EnvLogPath       = "GBW_LOG_PATH"
	EnvLogLevel      = "GBW_LOG_LEVEL"
	EnvMetricsAddr   = "GBW_METRICS_ADDR"
	EnvLanguageTag   = "GBW_LANGUAGE_TAG"
	EnvNotifications = "GBW_NOTIFICATIONS"
	EnvQueryTimeout  = "GBW_QUERY_TIMEOUT"
)

// Host locale variables, checked in order after GBW_LANGUAGE_TAG.
var hostLocaleVars = []string{"LC_ALL", "LC_MESSAGES", "LANG"}

const (
	appDirName       = "gcp-billing-watcher"
	settingsFileName = "settings.yaml"
	logFileName      = "gbw.log"

	defaultQueryTimeout = 60 * time.Second
)
