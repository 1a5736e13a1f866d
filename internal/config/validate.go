package config

import (
	"errors"
	"fmt"
)

var knownModels = map[string]struct{}{
	"auto":     {},
	"tiny":     {},
	"base":     {},
	"small":    {},
	"medium":   {},
	"large-v3": {},
}

var knownStrategies = map[string]struct{}{
	"semantic": {},
	"sentence": {},
	"fixed":    {},
}

var knownOutputFormats = map[string]struct{}{
	"text": {},
	"json": {},
	"both": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateChunking(); err != nil {
		return err
	}
	if err := c.validateQuality(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateAudioCache(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if _, ok := knownModels[c.Transcription.Model]; !ok {
		return fmt.Errorf("transcription.model: unknown model %q", c.Transcription.Model)
	}
	return nil
}

func (c *Config) validateChunking() error {
	if _, ok := knownStrategies[c.Chunking.Strategy]; !ok {
		return fmt.Errorf("chunking.strategy: unknown strategy %q", c.Chunking.Strategy)
	}
	if c.Chunking.OverlapSize >= c.Chunking.TargetSize {
		return errors.New("chunking.overlap_size must be smaller than chunking.target_size")
	}
	return nil
}

func (c *Config) validateQuality() error {
	if c.Quality.ReviewThreshold < 0 || c.Quality.ReviewThreshold > 1 {
		return errors.New("quality.review_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if _, ok := knownOutputFormats[c.Output.Format]; !ok {
		return fmt.Errorf("output.format: unknown format %q", c.Output.Format)
	}
	return nil
}

func (c *Config) validateAudioCache() error {
	if c.AudioCache.Enabled && c.AudioCache.MaxGiB <= 0 {
		return errors.New("audio_cache.max_gib must be positive when the cache is enabled")
	}
	return nil
}
