package config

import (
	"os"

	"github.com/saiset-co/sai-http-stack/types"
)

const (
	// EnvVar is the process-wide variable that gates production behavior.
	EnvVar = "APP_ENV"

	// ProductionEnv is the exact value that enables production mode.
	ProductionEnv = "production"
)

// ResolveEnvironment derives the environment context once at bootstrap: a
// pure read of process state at call time, no side effects. Production mode
// deliberately ignores any environment name the application declares for
// itself; an app may run a custom named environment while still wanting
// strict production dependency behavior, and the two signals must be free to
// diverge.
func ResolveEnvironment(config *types.Config) types.Environment {
	return types.Environment{
		Production:     os.Getenv(EnvVar) == ProductionEnv,
		SessionEnabled: config != nil && config.Hooks.Session,
	}
}
