package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeChunking()
	c.normalizeBatch()
	c.normalizeOutput()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Binary = strings.TrimSpace(c.Transcription.Binary)
	if c.Transcription.Binary == "" {
		c.Transcription.Binary = defaultWhisperBinary
	}
	c.Transcription.Model = strings.ToLower(strings.TrimSpace(c.Transcription.Model))
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultModel
	}
	c.Transcription.Language = strings.TrimSpace(c.Transcription.Language)
	if c.Transcription.MaxRetries <= 0 {
		c.Transcription.MaxRetries = defaultMaxRetries
	}
	if c.Transcription.RetryDelayMS <= 0 {
		c.Transcription.RetryDelayMS = defaultRetryDelayMS
	}
}

func (c *Config) normalizeChunking() {
	c.Chunking.Strategy = strings.ToLower(strings.TrimSpace(c.Chunking.Strategy))
	if c.Chunking.Strategy == "" {
		c.Chunking.Strategy = defaultStrategy
	}
	if c.Chunking.TargetSize <= 0 {
		c.Chunking.TargetSize = defaultTargetSize
	}
	if c.Chunking.OverlapSize < 0 {
		c.Chunking.OverlapSize = defaultOverlapSize
	}
}

func (c *Config) normalizeBatch() {
	if c.Batch.Workers < 0 {
		c.Batch.Workers = 0
	}
	if c.Batch.MemoryMargin <= 0 || c.Batch.MemoryMargin >= 1 {
		c.Batch.MemoryMargin = defaultMemoryMargin
	}
	if c.Batch.SafetyFactor < 1 {
		c.Batch.SafetyFactor = defaultSafetyFactor
	}
}

func (c *Config) normalizeOutput() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}
