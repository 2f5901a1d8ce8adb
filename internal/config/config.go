// file: internal/config/config.go
// version: 1.1.0
// guid: 8f9a0b1c-2d3e-4f5a-6b7c-8d9e0f1a2b3c

package config

import (
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	LibraryPath   string // path to the DJ software export XML
	DatabasePath  string // PebbleDB directory for the stored library
	BPMBucketSize int    // histogram bucket width for the BPM distribution
	TopN          int    // list length for top-tracks / top-artists output
	WatchLibrary  bool   // re-parse when the export file changes
}

var AppConfig Config

// InitConfig initializes the application configuration from viper
func InitConfig() {
	viper.SetDefault("database_path", "cratestats.pebble")
	viper.SetDefault("bpm_bucket_size", 10)
	viper.SetDefault("top_n", 10)
	viper.SetDefault("watch_library", false)

	AppConfig = Config{
		LibraryPath:   viper.GetString("library_path"),
		DatabasePath:  viper.GetString("database_path"),
		BPMBucketSize: viper.GetInt("bpm_bucket_size"),
		TopN:          viper.GetInt("top_n"),
		WatchLibrary:  viper.GetBool("watch_library"),
	}

	if AppConfig.BPMBucketSize <= 0 {
		AppConfig.BPMBucketSize = 10
	}
	if AppConfig.TopN <= 0 {
		AppConfig.TopN = 10
	}
}
