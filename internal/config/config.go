// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load(ctx) layers defaults, optional YAML file, and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataRoot is the storage root holding results/, annotations/ and
	// thumbnails/ as produced by the upstream analysis pipeline.
	DataRoot string `koanf:"data_root"`

	// PrettyJSON controls whether persisted documents are indent-formatted.
	PrettyJSON bool `koanf:"pretty_json"`

	// DefaultAnnotators is prepended to the persisted annotator list.
	DefaultAnnotators []string `koanf:"default_annotators"`

	// MaxUploadBytes caps the size of restore payloads.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// TargetPerTechnique is the dataset-building goal per technique class,
	// surfaced in progress statistics.
	TargetPerTechnique int `koanf:"target_per_technique"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		DataRoot:           "data",
		PrettyJSON:         true,
		DefaultAnnotators:  []string{"Coach Mehdi", "Luke", "Analyst"},
		MaxUploadBytes:     8 << 20,
		TargetPerTechnique: 50,
	}
	return c
}
