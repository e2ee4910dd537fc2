package config

const (
	defaultWorkDir              = "~/.local/share/arforge/work"
	defaultDataDir              = "~/.local/share/arforge/data"
	defaultLogDir               = "~/.local/share/arforge/logs"
	defaultBlenderBinary        = "blender"
	defaultGltfPipelineBinary   = "gltf-pipeline"
	defaultUSDConverterBinary   = "usd_from_gltf"
	defaultToolTimeoutSeconds   = 600
	defaultWorkerCount          = 2
	defaultQueueCapacity        = 32
	defaultRetentionHours       = 24
	defaultSweepIntervalMinutes = 60
	defaultDracoCompression     = 7
	defaultQuantizePositionBits = 11
	defaultShortLinkAttempts    = 5
	defaultQRCodeSize           = 256
	defaultLogFormat            = ""
	defaultLogLevel             = "info"
	defaultStorageBackend       = "local"
	defaultPublicDir            = "~/.local/share/arforge/public"
	defaultBaseURL              = "http://localhost:5000"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Tools: Tools{
			Blender:        defaultBlenderBinary,
			GltfPipeline:   defaultGltfPipelineBinary,
			USDConverter:   defaultUSDConverterBinary,
			TimeoutSeconds: defaultToolTimeoutSeconds,
		},
		Pipeline: Pipeline{
			WorkerCount:          defaultWorkerCount,
			QueueCapacity:        defaultQueueCapacity,
			RetentionHours:       defaultRetentionHours,
			SweepIntervalMinutes: defaultSweepIntervalMinutes,
			DracoCompression:     defaultDracoCompression,
			QuantizePositionBits: defaultQuantizePositionBits,
		},
		Publish: Publish{
			BaseURL:           defaultBaseURL,
			ShortLinkAttempts: defaultShortLinkAttempts,
			QRCodeSize:        defaultQRCodeSize,
		},
		Storage: Storage{
			Backend:   defaultStorageBackend,
			PublicDir: defaultPublicDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
