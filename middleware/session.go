package middleware

import (
	"fmt"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-http-stack/types"
	"github.com/saiset-co/sai-http-stack/utils"
)

// sessionEntry wraps the externally configured session middleware so its
// failures become a logged, best-effort client response instead of an
// unhandled pipeline error.
//
// A missing session capability is ordinary (debug log, entry disabled). The
// capability being enabled with no session middleware configured is a
// configuration defect, but a non-fatal one: the feature is disabled with an
// error log rather than aborting assembly.
func (a *Assembler) sessionEntry() types.Entry {
	if !a.env.SessionEnabled {
		a.logger.Debug("Session capability not enabled, skipping session middleware")
		return types.Disabled
	}

	sessionConfig := a.config.Session
	if sessionConfig == nil || sessionConfig.Handler == nil {
		a.logger.Error("Session capability is enabled but no session middleware is configured, sessions disabled")
		return types.Disabled
	}

	inner := sessionConfig.Handler

	return types.Use(func(ctx *fasthttp.RequestCtx, next types.Next) {
		inner(ctx, func(err error) {
			if err == nil {
				next(nil)
				return
			}

			a.logger.ErrorWithErrStack("Session middleware failed", err,
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
			)
			a.countFailure("session")

			if utils.ResponseStarted(ctx) {
				a.logger.Warn("Could not send session error response, a response was already started",
					zap.ByteString("path", ctx.Path()),
				)
				return
			}

			// The error body stays verbose in every mode. Only the body
			// parser funnel is production-aware; see DESIGN.md.
			utils.SendClientError(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("%+v", err))
		})
	})
}

func (a *Assembler) countFailure(entry string) {
	if a.metrics == nil {
		return
	}
	a.metrics.Counter("middleware_failures_total", map[string]string{
		"entry": entry,
	}).Inc()
}
