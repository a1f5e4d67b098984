package middleware

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-http-stack/types"
)

// DefaultOrder is the caller convention for installing registry entries. The
// router slot is where the host's own routes run; the terminal entries must
// stay last, 404 before 500.
var DefaultOrder = []string{
	types.EntryStartRequestTimer,
	types.EntryCookieParser,
	types.EntrySession,
	types.EntryBodyParser,
	types.EntryCompress,
	types.EntryMethodOverride,
	types.EntryPoweredBy,
	types.EntryRouter,
	types.EntryWWW,
	types.EntryFavicon,
	types.EntryNotFound,
	types.EntryServerError,
}

type stage struct {
	name  string
	entry types.Entry
}

// Build composes the enabled registry entries, in the given order, into a
// single request handler implementing the continuation contract: a stage
// either invokes next (at most once) or terminates the chain by producing a
// response. next(nil) runs the following normal entry; next(err) skips
// forward to the next error-shaped entry. Disabled entries and unknown names
// are skipped; router names the slot where the host handler runs.
func Build(registry types.Registry, order []string, router types.Handler, logger types.Logger) fasthttp.RequestHandler {
	stages := make([]stage, 0, len(order))

	for _, name := range order {
		if name == types.EntryRouter {
			if router != nil {
				stages = append(stages, stage{name: name, entry: types.Use(router)})
			}
			continue
		}

		entry, ok := registry[name]
		if !ok {
			if logger != nil {
				logger.Debug("Skipping unrecognized pipeline stage", zap.String("entry", name))
			}
			continue
		}
		if !entry.Enabled {
			continue
		}

		stages = append(stages, stage{name: name, entry: entry})
	}

	return func(ctx *fasthttp.RequestCtx) {
		idx := 0

		var next types.Next
		next = func(err error) {
			for idx < len(stages) {
				s := stages[idx]
				idx++

				if err != nil {
					if s.entry.ErrorHandler != nil {
						s.entry.ErrorHandler(err, ctx, next)
						return
					}
					continue
				}

				if s.entry.Handler != nil {
					s.entry.Handler(ctx, next)
					return
				}
				// error-shaped entry with no error pending, skip
			}
		}

		next(nil)
	}
}
