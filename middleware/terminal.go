package middleware

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-http-stack/types"
)

// The terminal entries detect failures without presenting them: each one
// emits an event on the action bus and produces no response. The caller must
// install them as the last two stages, 404 before 500, after every other
// built-in and every application route.

// notFoundEntry fires when no preceding stage produced a response. It is
// normal-shaped on purpose: an error pending in the chain bypasses it.
func (a *Assembler) notFoundEntry() types.Entry {
	return types.Use(func(ctx *fasthttp.RequestCtx, _ types.Next) {
		a.publishRequestEvent(types.ActionRequestNotFound, types.RequestEvent{
			Method:    string(ctx.Method()),
			Path:      string(ctx.Path()),
			RequestID: requestID(ctx),
		})
	})
}

// serverErrorEntry fires only when an upstream stage passed an error.
func (a *Assembler) serverErrorEntry() types.Entry {
	return types.Catch(func(err error, ctx *fasthttp.RequestCtx, _ types.Next) {
		a.publishRequestEvent(types.ActionRequestErrored, types.RequestEvent{
			Method:    string(ctx.Method()),
			Path:      string(ctx.Path()),
			RequestID: requestID(ctx),
			Error:     err.Error(),
		})
	})
}

func (a *Assembler) publishRequestEvent(action string, event types.RequestEvent) {
	if a.metrics != nil {
		a.metrics.Counter("request_events_total", map[string]string{
			"action": action,
		}).Inc()
	}

	if a.bus == nil {
		a.logger.Debug("No action broker attached, dropping request event",
			zap.String("action", action),
			zap.String("path", event.Path),
		)
		return
	}

	if err := a.bus.Publish(action, event); err != nil {
		a.logger.Error("Failed to publish request event",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
