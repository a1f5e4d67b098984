package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saiset-co/sai-http-stack/types"
)

func TestResolveEnvironmentProduction(t *testing.T) {
	t.Setenv(EnvVar, ProductionEnv)

	env := ResolveEnvironment(&types.Config{})
	assert.True(t, env.Production)
}

func TestResolveEnvironmentNonProductionValues(t *testing.T) {
	for _, value := range []string{"", "development", "staging", "Production", "prod"} {
		t.Setenv(EnvVar, value)

		env := ResolveEnvironment(&types.Config{})
		assert.False(t, env.Production, "APP_ENV=%q must not enable production mode", value)
	}
}

func TestResolveEnvironmentSessionCapability(t *testing.T) {
	t.Setenv(EnvVar, "development")

	env := ResolveEnvironment(&types.Config{Hooks: types.HooksConfig{Session: true}})
	assert.True(t, env.SessionEnabled)

	env = ResolveEnvironment(&types.Config{Hooks: types.HooksConfig{Session: false}})
	assert.False(t, env.SessionEnabled)
}

func TestResolveEnvironmentNilConfig(t *testing.T) {
	t.Setenv(EnvVar, ProductionEnv)

	env := ResolveEnvironment(nil)
	assert.True(t, env.Production)
	assert.False(t, env.SessionEnabled)
}
