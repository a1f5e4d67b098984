package config

import (
	"sync/atomic"

	"github.com/saiset-co/sai-http-stack/types"
)

// Manager holds the configuration snapshot assembly reads from. The snapshot
// is replaced wholesale on Load; entries assembled from an earlier snapshot
// are never mutated.
type Manager struct {
	config     atomic.Pointer[types.Config]
	configPath string
	loader     *Loader
}

func NewManager(configPath string) (*Manager, error) {
	m := &Manager{
		configPath: configPath,
		loader:     NewLoader(),
	}

	if err := m.Load(); err != nil {
		return nil, types.WrapError(err, "failed to load initial configuration")
	}

	return m, nil
}

// NewStaticManager wraps a host-assembled Config, the usual path when the
// host wires factories and overrides in code. The config is validated once.
func NewStaticManager(config *types.Config) (*Manager, error) {
	m := &Manager{loader: NewLoader()}

	if err := m.loader.Validate(config); err != nil {
		return nil, err
	}

	m.config.Store(config)
	return m, nil
}

func (m *Manager) Load() error {
	config, err := m.loader.LoadFromFile(m.configPath)
	if err != nil {
		return err
	}

	m.config.Store(config)
	return nil
}

func (m *Manager) GetConfig() *types.Config {
	return m.config.Load()
}
