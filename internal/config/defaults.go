package config

const (
	defaultPipelineDir        = "00_Pipeline"
	defaultDocumentFormat     = "yaml"
	defaultVersionPadding     = 4
	defaultLowestVersion      = 1
	defaultShotCamFormat      = ".abc"
	defaultLockTimeoutSeconds = 10
	defaultLockRetryDelayMS   = 50
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Project: Project{
			PipelineDir: defaultPipelineDir,
		},
		Documents: Documents{
			Format: defaultDocumentFormat,
		},
		Versioning: Versioning{
			Padding:       defaultVersionPadding,
			Lowest:        defaultLowestVersion,
			ShotCamFormat: defaultShotCamFormat,
		},
		Locking: Locking{
			TimeoutSeconds: defaultLockTimeoutSeconds,
			RetryDelayMS:   defaultLockRetryDelayMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
