package types

import (
	"time"
)

type ConfigManager interface {
	Load() error
	GetConfig() *Config
}

// Config is the host-assembled configuration snapshot consumed by one
// assembly call. Data-shaped fields can come from YAML; func-typed fields
// (factories, overrides, session handler) are wired in code by the host.
type Config struct {
	Paths              PathsConfig    `yaml:"paths" json:"paths"`
	HTTP               HTTPConfig     `yaml:"http" json:"http"`
	Session            *SessionConfig `yaml:"session" json:"session"`
	Legacy             *LegacyConfig  `yaml:"-" json:"-"`
	Hooks              HooksConfig    `yaml:"hooks" json:"hooks"`
	KeepResponseErrors bool           `yaml:"keep_response_errors" json:"keep_response_errors"`
}

type PathsConfig struct {
	Public string `yaml:"public" json:"public" validate:"required"`
}

type HTTPConfig struct {
	Cache          time.Duration       `yaml:"cache" json:"cache" validate:"min=0"`
	Middleware     Overrides           `yaml:"-" json:"-"`
	BodyParser     *BodyParserConfig   `yaml:"-" json:"-"`
	MethodOverride HandlerFactory      `yaml:"-" json:"-"`
	CookieParser   CookieParserFactory `yaml:"-" json:"-"`
}

// BodyParserConfig distinguishes "explicitly disabled" from "absent"
// (a nil *BodyParserConfig). An explicit disable suppresses the default
// factory; absence falls back to it.
type BodyParserConfig struct {
	Disabled bool
	Factory  BodyParserFactory
}

// SessionConfig carries the externally configured session middleware and its
// secret. Secret is deliberately untyped: it may arrive from a parsed config
// file, and a non-string value is a configuration defect the assembler
// rejects fatally.
type SessionConfig struct {
	Secret  interface{}    `yaml:"secret" json:"secret"`
	Handler SessionHandler `yaml:"-" json:"-"`
}

// LegacyConfig holds configuration locations retained for backward
// compatibility with older host layouts.
//
// Deprecated: configure the cookie parser under HTTP.CookieParser.
type LegacyConfig struct {
	CookieParser CookieParserFactory `yaml:"-" json:"-"`
}

// HooksConfig is the host capability table. Session reports whether a session
// capability is installed at all; it is distinct from SessionConfig presence.
type HooksConfig struct {
	Session bool `yaml:"session" json:"session"`
}

// Environment is the context threaded into assembly. Production is derived
// from process state once at bootstrap, never from the application's own
// declared environment name; tests can construct either mode directly.
type Environment struct {
	Production     bool
	SessionEnabled bool
}
