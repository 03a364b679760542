package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	DownloadsPath             string  `json:"downloads_path"`
	MaxConcurrentEnumerations int     `json:"max_concurrent_enumerations"`
	MaxConcurrentDownloads    int     `json:"max_concurrent_downloads"`
	DownloadMaxRetries        int     `json:"download_max_retries"`
	DownloadRetryCooldown     float64 `json:"download_retry_cooldown"`
	DownloadRetryExponent     float64 `json:"download_retry_exponent"`
	AllowedFileSizeDifference float64 `json:"allowed_file_size_difference"`

	// Enumeration settings
	MonthsBack int `json:"months_back"`
	PageSize   int `json:"page_size"`

	// HTTP settings
	RequestTimeoutSeconds  int `json:"request_timeout_seconds"`
	DownloadTimeoutMinutes int `json:"download_timeout_minutes"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		DownloadsPath:             filepath.Join(homeDir, "Videos", "raw", "{timestamp}"),
		MaxConcurrentEnumerations: 3,
		MaxConcurrentDownloads:    5,
		DownloadMaxRetries:        3,
		DownloadRetryCooldown:     1.0,
		DownloadRetryExponent:     2.0,
		AllowedFileSizeDifference: 0.05,

		MonthsBack: 12,
		PageSize:   100,

		RequestTimeoutSeconds:  60,
		DownloadTimeoutMinutes: 60,
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ResolveDownloadDir expands the DownloadsPath template into a concrete
// directory for this run. The {timestamp} placeholder is replaced with
// the run start time so each invocation gets its own directory.
func (s *Settings) ResolveDownloadDir(now time.Time) string {
	path := s.DownloadsPath
	path = strings.ReplaceAll(path, "{timestamp}", now.Format("2006-01-02_15-04-05"))

	if path == "~" || strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		if homeDir, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
		}
	}

	return path
}

// RequestTimeout returns the per-request timeout for API calls.
func (s *Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// DownloadTimeout returns the overall timeout for one file download.
// Recordings run to gigabytes, so this is far looser than the API
// request timeout.
func (s *Settings) DownloadTimeout() time.Duration {
	return time.Duration(s.DownloadTimeoutMinutes) * time.Minute
}
