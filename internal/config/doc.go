// Package config provides configuration management for
// zoom-recording-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Loading API credentials from the environment or a .env file
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads to ~/Videos/raw/{timestamp}
//	// 3 concurrent enumerations, 5 concurrent downloads
//	// 3 download attempts with exponential backoff
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Credentials
//
// The API credentials never live in the settings file. They come from
// the ZOOM_CLIENT_ID, ZOOM_CLIENT_SECRET and ZOOM_ACCOUNT_ID
// environment variables, optionally populated from a .env file:
//
//	creds, err := config.LoadCredentials("")
//	if err != nil {
//	    // Fatal: a variable is missing
//	}
package config
