package metrics

import (
	"github.com/saiset-co/sai-http-stack/types"
)

type Config struct {
	Enabled bool        `yaml:"enabled" json:"enabled"`
	Type    string      `yaml:"type" json:"type"`
	Config  interface{} `yaml:"config" json:"config"`
}

var customMetricsCreators = make(map[string]types.MetricsManagerCreator)

func RegisterMetricsManager(metricsName string, creator types.MetricsManagerCreator) {
	customMetricsCreators[metricsName] = creator
}

func NewMetricsManager(config *Config, logger types.Logger) (types.MetricsManager, error) {
	if config == nil || !config.Enabled {
		return nil, types.ErrMetricsIsDisabled
	}

	switch config.Type {
	case "", "prometheus":
		return NewPrometheusMetrics(logger, config)
	default:
		if creator, exists := customMetricsCreators[config.Type]; exists {
			return creator(config.Config)
		}
		return nil, types.Errorf(types.ErrMetricsTypeUnknown, "type: %s", config.Type)
	}
}
