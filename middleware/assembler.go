package middleware

import (
	"github.com/saiset-co/sai-http-stack/types"
)

// Context user value keys stamped by built-in entries.
const (
	CtxKeyRequestStart = "requestStartedAt"
	CtxKeyRequestID    = "requestId"
	CtxKeyBody         = "parsedBody"
)

// Assembler produces the default middleware registry for one server start.
// It is a one-shot, non-reentrant construction: the config snapshot and
// environment context are captured at creation and never re-read.
type Assembler struct {
	config  *types.Config
	env     types.Environment
	logger  types.Logger
	metrics types.MetricsManager
	bus     types.ActionBroker
}

// NewAssembler wires an assembler. metrics and bus may be nil; entries then
// skip instrumentation and drop terminal events with a debug log.
func NewAssembler(config *types.Config, env types.Environment, logger types.Logger, metrics types.MetricsManager, bus types.ActionBroker) (*Assembler, error) {
	if config == nil {
		return nil, types.ErrConfigIsNil
	}
	if logger == nil {
		return nil, types.NewErrorf("logger is required")
	}

	return &Assembler{
		config:  config,
		env:     env,
		logger:  logger,
		metrics: metrics,
		bus:     bus,
	}, nil
}

// Assemble merges caller overrides with the built-in defaults into one
// registry holding exactly the recognized entry names. A key present in
// overrides wins verbatim, even when explicitly disabled, and the built-in
// builder for that key is never invoked; every other key gets its builder
// invoked lazily, exactly once, against the captured config snapshot.
// The only assembly failure is a propagated builder defect (currently the
// non-string session secret).
func (a *Assembler) Assemble(overrides types.Overrides) (types.Registry, error) {
	names := types.EntryNames()
	registry := make(types.Registry, len(names))

	for _, name := range names {
		if entry, ok := overrides[name]; ok {
			registry[name] = entry
			a.recordEntry(name, "override", entry.Enabled)
			continue
		}

		entry, err := a.buildDefault(name)
		if err != nil {
			return nil, err
		}
		registry[name] = entry
		a.recordEntry(name, "default", entry.Enabled)
	}

	return registry, nil
}

func (a *Assembler) buildDefault(name string) (types.Entry, error) {
	switch name {
	case types.EntryStartRequestTimer:
		return a.startRequestTimerEntry(), nil
	case types.EntryCookieParser:
		return a.cookieParserEntry()
	case types.EntrySession:
		return a.sessionEntry(), nil
	case types.EntryBodyParser:
		return a.bodyParserEntry(), nil
	case types.EntryCompress:
		return a.compressEntry(), nil
	case types.EntryMethodOverride:
		return a.methodOverrideEntry(), nil
	case types.EntryPoweredBy:
		return a.poweredByEntry(), nil
	case types.EntryWWW:
		return a.wwwEntry(), nil
	case types.EntryFavicon:
		return a.faviconEntry(), nil
	case types.EntryNotFound:
		return a.notFoundEntry(), nil
	case types.EntryServerError:
		return a.serverErrorEntry(), nil
	}
	return types.Disabled, types.Errorf(types.ErrEntryUnknown, "%s", name)
}

func (a *Assembler) recordEntry(name, source string, enabled bool) {
	if a.metrics == nil {
		return
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}

	a.metrics.Counter("middleware_assembled_total", map[string]string{
		"entry":  name,
		"source": source,
		"state":  state,
	}).Inc()
}
