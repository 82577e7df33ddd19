package config

// DefaultMaxUploadBytes caps an uploaded artifact at 100 MiB.
const DefaultMaxUploadBytes int64 = 100 << 20

// DefaultAllowedExtensions lists the upload extensions accepted by default.
func DefaultAllowedExtensions() []string {
	return []string{".sqlite", ".db", ".sqlite3"}
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "127.0.0.1",
			Port:              5000,
			MaxUploadBytes:    DefaultMaxUploadBytes,
			UploadDir:         "",
			AllowedExtensions: DefaultAllowedExtensions(),
			MaxSessions:       16,
		},
		Storage: StorageConfig{
			Driver: "sqlite3",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Export: ExportConfig{
			Concurrency: 4,
		},
	}
}
