package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/saiset-co/sai-http-stack/types"
)

type Loader struct {
	validator *validator.Validate
}

func NewLoader() *Loader {
	return &Loader{
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// LoadFromFile reads the data-shaped subset of the configuration from a YAML
// file. Factories, overrides and the session handler are func-typed and must
// be wired in code by the host afterwards.
func (l *Loader) LoadFromFile(configPath string) (*types.Config, error) {
	if configPath == "" {
		return nil, types.ErrConfigNotFound
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, types.WrapError(err, "failed to read config file")
	}

	config := l.Defaults()

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, types.Errorf(types.ErrConfigParseFailed, "%v", err)
	}

	if err := l.Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

func (l *Loader) Validate(config *types.Config) error {
	if config == nil {
		return types.ErrConfigIsNil
	}
	if err := l.validator.Struct(config); err != nil {
		return types.Errorf(types.ErrConfigValidateFailed, "%v", err)
	}
	return nil
}

func (l *Loader) Defaults() *types.Config {
	return &types.Config{
		Paths: types.PathsConfig{
			Public: ".tmp/public",
		},
		HTTP: types.HTTPConfig{
			Cache: 365 * 24 * time.Hour,
		},
		Hooks: types.HooksConfig{
			Session: true,
		},
		KeepResponseErrors: false,
	}
}
