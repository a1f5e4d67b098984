package action

import (
	"context"

	"github.com/saiset-co/sai-http-stack/types"
)

// Config selects the bus transport carrying request events off-process.
// An empty Type keeps dispatch in-process only.
type Config struct {
	Enabled bool        `yaml:"enabled" json:"enabled"`
	Type    string      `yaml:"type" json:"type"`
	Config  interface{} `yaml:"config" json:"config"`
}

var customActionCreators = make(map[string]types.ActionBrokerCreator)

// RegisterActionBroker lets hosts plug in transport types beyond the
// bundled websocket and redis brokers.
func RegisterActionBroker(actionBrokerName string, creator types.ActionBrokerCreator) {
	customActionCreators[actionBrokerName] = creator
}

func NewActionBroker(ctx context.Context, config *Config, logger types.Logger, metrics types.MetricsManager) (types.ActionBroker, error) {
	if config == nil || !config.Enabled {
		return nil, types.ErrActionIsDisabled
	}

	return NewEventDispatcher(ctx, config, logger, metrics)
}
