package service

import (
	"fmt"

	"github.com/ludo-technologies/argscan/domain"
	"github.com/ludo-technologies/argscan/internal/config"
)

// ConfigurationLoaderImpl turns configuration files into arity requests
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration for a scan of targetPath. An empty path
// discovers the config file from targetPath upward; nothing found means
// defaults.
func (c *ConfigurationLoaderImpl) LoadConfig(path, targetPath string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(path, targetPath)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg, nil
}

// LoadRequest loads configuration and converts it into a request for root
func (c *ConfigurationLoaderImpl) LoadRequest(path, root string) (*domain.ArityRequest, error) {
	cfg, err := c.LoadConfig(path, root)
	if err != nil {
		return nil, err
	}

	req := c.ConvertToRequest(cfg)
	req.Root = root
	req.ConfigPath = path
	return req, nil
}

// ConvertToRequest converts a Config to an ArityRequest.
// MinArgs comes from arity.max_args; the scan command overrides it.
func (c *ConfigurationLoaderImpl) ConvertToRequest(cfg *config.Config) *domain.ArityRequest {
	return &domain.ArityRequest{
		// Paths are set by the use case, not from config
		Paths: []string{},

		MinArgs: cfg.Arity.MaxArgs,

		// Output settings
		OutputFormat: domain.OutputFormat(cfg.Output.Format),
		SortBy:       domain.SortCriteria(cfg.Output.SortBy),
		ShowProgress: cfg.Output.Progress,
		LogLevel:     cfg.Output.LogLevel,

		// Traversal settings
		Extensions:       cfg.Analysis.Extensions,
		ExcludePatterns:  cfg.Analysis.ExcludePatterns,
		FollowSymlinks:   cfg.Analysis.FollowSymlinks,
		RespectGitignore: cfg.Analysis.RespectGitignore,

		// Parsing settings
		StrictParse: cfg.Analysis.StrictParse,
		KeepGoing:   cfg.Analysis.KeepGoing,

		// Counting rule
		ReceiverKinds: cfg.Arity.ReceiverKinds,
		IgnoredKinds:  cfg.Arity.IgnoredKinds,

		// Performance
		MaxGoroutines:  cfg.Performance.MaxGoroutines,
		TimeoutSeconds: cfg.Performance.TimeoutSeconds,
	}
}

// ValidateRequest validates a request after flags have been merged into it
func (c *ConfigurationLoaderImpl) ValidateRequest(req *domain.ArityRequest) error {
	if req.MinArgs < 0 {
		return fmt.Errorf("min_args cannot be negative, got %d", req.MinArgs)
	}

	if _, err := domain.ParseOutputFormat(string(req.OutputFormat)); err != nil {
		return err
	}

	if _, err := domain.ParseSortCriteria(string(req.SortBy)); err != nil {
		return err
	}

	if len(req.Extensions) == 0 {
		return fmt.Errorf("at least one source file extension is required")
	}

	return nil
}
