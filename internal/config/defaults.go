package config

const (
	defaultOutputDir       = "~/transcriptions"
	defaultCacheDir        = "~/.cache/scribe/audio"
	defaultLogDir          = "~/.local/share/scribe/logs"
	defaultWorkDir         = "~/.local/share/scribe/work"
	defaultWhisperBinary   = "whisper"
	defaultModel           = "auto"
	defaultMaxRetries      = 3
	defaultRetryDelayMS    = 500
	defaultStrategy        = "semantic"
	defaultTargetSize      = 1000
	defaultOverlapSize     = 200
	defaultReviewThreshold = 0.5
	defaultKeywordLimit    = 10
	defaultTopicMinOverlap = 2
	defaultMemoryMargin    = 0.2
	defaultSafetyFactor    = 1.2
	defaultOutputFormat    = "text"
	defaultCacheMaxGiB     = 20
	defaultSettleSeconds   = 3
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			CacheDir:  defaultCacheDir,
			LogDir:    defaultLogDir,
			WorkDir:   defaultWorkDir,
		},
		Transcription: Transcription{
			Binary:       defaultWhisperBinary,
			Model:        defaultModel,
			MaxRetries:   defaultMaxRetries,
			RetryDelayMS: defaultRetryDelayMS,
		},
		Chunking: Chunking{
			Strategy:    defaultStrategy,
			TargetSize:  defaultTargetSize,
			OverlapSize: defaultOverlapSize,
		},
		Quality: Quality{
			ReviewThreshold: defaultReviewThreshold,
		},
		Metadata: Metadata{
			KeywordLimit:    defaultKeywordLimit,
			TopicMinOverlap: defaultTopicMinOverlap,
		},
		Batch: Batch{
			Workers:      0,
			MemoryMargin: defaultMemoryMargin,
			SafetyFactor: defaultSafetyFactor,
		},
		Output: Output{
			Format: defaultOutputFormat,
		},
		AudioCache: AudioCache{
			Enabled: true,
			MaxGiB:  defaultCacheMaxGiB,
		},
		Watch: Watch{
			SettleSeconds: defaultSettleSeconds,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
