package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateSpeech(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}
	if c.Server.MaxUploadMB < 0 {
		return errors.New("server.max_upload_mb must not be negative")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.UploadDir == "" {
		return errors.New("storage.upload_dir must be set")
	}
	if c.Storage.OutputDir == "" {
		return errors.New("storage.output_dir must be set")
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case "openai", "anthropic", "gemini":
		return nil
	default:
		return fmt.Errorf("llm.provider %q is not supported (use openai, anthropic, or gemini)", c.LLM.Provider)
	}
}

func (c *Config) validateSpeech() error {
	switch c.Speech.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("speech.provider %q is not supported (use openai or gemini)", c.Speech.Provider)
	}
	if c.Speech.MaxCharsPerLine < 0 || c.Speech.MaxLinesPerCue < 0 || c.Speech.MaxCueSeconds < 0 {
		return errors.New("speech cue limits must not be negative")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.MaxConcurrent < 0 {
		return errors.New("media.max_concurrent must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not supported (use debug, info, warn, or error)", c.Logging.Level)
	}
}

// RequireLLMKey reports a missing key for the configured language model.
func (c *Config) RequireLLMKey() error {
	if c.LLM.APIKey != "" {
		return nil
	}
	return fmt.Errorf("llm.api_key is required for provider %s (set %s or edit the config file)",
		c.LLM.Provider, apiKeyEnv[c.LLM.Provider])
}

// RequireSpeechKey reports a missing key for the configured speech model.
func (c *Config) RequireSpeechKey() error {
	if c.Speech.APIKey != "" {
		return nil
	}
	return fmt.Errorf("speech.api_key is required for provider %s (set %s or edit the config file)",
		c.Speech.Provider, apiKeyEnv[c.Speech.Provider])
}
